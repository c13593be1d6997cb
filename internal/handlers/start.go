package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/telegram"
)

const welcomeText = `🎯 Welcome to GiftMind!

I keep track of the people you buy gifts for and the ideas you have for each of them.

Sign in with /login <email> <password> or create an account with /signup <email> <password>. /help lists every command.`

// StartHandler handles the /start command
type StartHandler struct {
	base
}

// NewStartHandler creates a new start command handler
func NewStartHandler(apps *Apps, logger *logrus.Logger) *StartHandler {
	return &StartHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /start command
func (h *StartHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	a, release := h.apps.Acquire(ctx, message.Chat.ID)
	defer release()

	if err := telegram.SendText(bot, message.Chat.ID, welcomeText); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent start message")

	return h.respond(bot, message.Chat.ID, a, "")
}
