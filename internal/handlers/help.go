package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/telegram"
)

const helpText = `📚 GiftMind Help

Account:
• /login <email> <password> - Sign in
• /signup <email> <password> - Create an account
• /logout - Sign out

Recipients:
• /dashboard - Show your recipients
• /add <name> | <occasion> - Add a recipient
• /open <id> - Show the gift ideas of a recipient

Gift ideas (on a recipient's page):
• /idea <text> | <note> - Add a gift idea

Editing (on any list):
• /edit <id> - Start editing an item
• /set <id> <field> <value> - Change a field (name, occasion, text, note)
• /save <id> - Save your changes
• /cancel <id> - Discard your changes
• /delete <id> - Delete an item

Navigation:
• /back - Go back
• /go <page> - Open a page, e.g. /go recipient/3`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if err := telegram.SendText(bot, message.Chat.ID, helpText); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent help message")

	return nil
}
