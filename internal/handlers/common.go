package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/collection"
	"github.com/Kerhoff/GiftMind/internal/editing"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/screens"
	"github.com/Kerhoff/GiftMind/internal/telegram"
)

// Notices sent above the rendered screen.
const (
	NoticeLoadFailed     = "⚠️ Some data could not be loaded."
	NoticeWrongScreen    = "This command is not available on this screen."
	NoticeSignInFirst    = "Please sign in first."
	NoticeInvalidID      = "Please provide a numeric id."
	NoticeUnknownField   = "Unknown field. Recipients have name and occasion, ideas have text and note."
	NoticeUnknownRoute   = "Unknown page. Try /go dashboard or /go recipient/<id>."
	NoticeSignedOut      = "👋 Signed out."
	NoticeRecipientAdded = "✅ Recipient added."
	NoticeIdeaAdded      = "✅ Idea added."
	NoticeSaved          = "✅ Saved."
	NoticeDeleted        = "🗑 Deleted."
	NoticeNotDeleted     = "Nothing was deleted."
)

// base is shared by every handler that works on the app of a chat.
type base struct {
	apps   *Apps
	logger *logrus.Logger
}

// withApp runs fn on the locked app of the chat and replies with the
// notice fn returns followed by the current screen.
func (b base) withApp(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, fn func(a *app.App) string) error {
	a, release := b.apps.Acquire(ctx, message.Chat.ID)
	defer release()

	notice := fn(a)
	return b.respond(bot, message.Chat.ID, a, notice)
}

// respond sends notice followed by the current screen of a.
func (b base) respond(bot telegram.Sender, chatID int64, a *app.App, notice string) error {
	text := Render(a.Current())
	if notice != "" {
		text = esc(notice) + "\n\n" + text
	}
	return telegram.SendMarkdown(bot, chatID, text)
}

// navigate moves a to r. A screen that failed to load is still shown.
func (b base) navigate(ctx context.Context, chatID int64, a *app.App, r nav.Route) string {
	if err := a.Navigate(ctx, r); err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"chat_id": chatID,
			"route":   r.String(),
		}).Warn("Screen loaded with errors")
		return NoticeLoadFailed
	}
	return ""
}

// wrongScreen explains why a command did not apply to the current screen.
func wrongScreen(a *app.App) string {
	switch a.Current().(type) {
	case *screens.Login, *screens.Signup:
		return NoticeSignInFirst
	default:
		return NoticeWrongScreen
	}
}

// itemNotice maps an error of an inline edit or delete to a notice. Errors
// the screen already shows map to "".
func itemNotice(err error, id int64) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, collection.ErrNotFound):
		return fmt.Sprintf("No item #%d on this screen.", id)
	case errors.Is(err, editing.ErrNotEditing):
		return fmt.Sprintf("Item #%d is not being edited. Use /edit %d first.", id, id)
	case errors.Is(err, screens.ErrUnknownField):
		return NoticeUnknownField
	default:
		return ""
	}
}

// parseID reads a positive id from the first argument.
func parseID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	return id, err == nil && id > 0
}

// parsePair splits "first | second" arguments.
func parsePair(args []string) (first, second string) {
	first, second, _ = strings.Cut(strings.Join(args, " "), "|")
	return strings.TrimSpace(first), strings.TrimSpace(second)
}
