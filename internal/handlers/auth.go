package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/telegram"
)

type credentialsForm interface {
	Submit(ctx context.Context, email, password string) error
}

// ---------------------------------------------------------------------------
// AuthHandler – /login and /signup <email> <password>
// ---------------------------------------------------------------------------

// AuthHandler fills the sign-in or sign-up form of the chat and submits it.
// The message carrying the password is deleted.
type AuthHandler struct {
	base
	route nav.Name
}

// NewLoginHandler creates the /login handler.
func NewLoginHandler(apps *Apps, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{base: base{apps: apps, logger: logger}, route: nav.Login}
}

// NewSignupHandler creates the /signup handler.
func NewSignupHandler(apps *Apps, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{base: base{apps: apps, logger: logger}, route: nav.Signup}
}

// Handle processes the command.
func (h *AuthHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) > 0 {
		if _, err := bot.Request(tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)); err != nil {
			h.logger.WithError(err).WithField("chat_id", message.Chat.ID).Warn("Failed to delete credentials message")
		}
	}

	return h.withApp(ctx, bot, message, func(a *app.App) string {
		if a.Route().Name != h.route {
			if notice := h.navigate(ctx, message.Chat.ID, a, nav.To(h.route)); notice != "" {
				return notice
			}
		}
		if len(args) != 2 {
			return ""
		}

		form, ok := a.Current().(credentialsForm)
		if !ok {
			return NoticeWrongScreen
		}
		if err := form.Submit(ctx, args[0], args[1]); err != nil {
			h.logger.WithError(err).WithField("chat_id", message.Chat.ID).Info("Authentication failed")
		}
		return ""
	})
}

// ---------------------------------------------------------------------------
// LogoutHandler – /logout
// ---------------------------------------------------------------------------

// LogoutHandler ends the session of the chat.
type LogoutHandler struct {
	base
}

// NewLogoutHandler creates a new LogoutHandler.
func NewLogoutHandler(apps *Apps, logger *logrus.Logger) *LogoutHandler {
	return &LogoutHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /logout command.
func (h *LogoutHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		a.SignOut(ctx)
		h.logger.WithField("chat_id", message.Chat.ID).Info("Signed out")
		return NoticeSignedOut
	})
}
