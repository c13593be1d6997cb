package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/screens"
	"github.com/Kerhoff/GiftMind/internal/telegram"
)

// inlineEditor is a screen whose list items edit in place.
type inlineEditor interface {
	BeginEdit(id int64) error
	SetDraft(id int64, field, value string) error
	Cancel(id int64)
	Save(ctx context.Context, id int64) error
}

// itemAction is the part an item command differs in.
type itemAction func(ctx context.Context, a *app.App, id int64, args []string) string

// ItemHandler applies one action to an item of the current list.
type ItemHandler struct {
	base
	action itemAction
}

// Handle processes the command.
func (h *ItemHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		id, ok := parseID(args)
		if !ok {
			return NoticeInvalidID
		}
		return h.action(ctx, a, id, args[1:])
	})
}

func editor(a *app.App) (inlineEditor, bool) {
	e, ok := a.Current().(inlineEditor)
	return e, ok
}

// NewEditHandler creates the /edit <id> handler.
func NewEditHandler(apps *Apps, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{base{apps: apps, logger: logger}, func(ctx context.Context, a *app.App, id int64, args []string) string {
		e, ok := editor(a)
		if !ok {
			return wrongScreen(a)
		}
		return itemNotice(e.BeginEdit(id), id)
	}}
}

// NewSetHandler creates the /set <id> <field> <value> handler.
func NewSetHandler(apps *Apps, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{base{apps: apps, logger: logger}, func(ctx context.Context, a *app.App, id int64, args []string) string {
		e, ok := editor(a)
		if !ok {
			return wrongScreen(a)
		}
		if len(args) == 0 {
			return NoticeUnknownField
		}
		return itemNotice(e.SetDraft(id, strings.ToLower(args[0]), strings.Join(args[1:], " ")), id)
	}}
}

// NewSaveHandler creates the /save <id> handler.
func NewSaveHandler(apps *Apps, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{base{apps: apps, logger: logger}, func(ctx context.Context, a *app.App, id int64, args []string) string {
		e, ok := editor(a)
		if !ok {
			return wrongScreen(a)
		}
		if err := e.Save(ctx, id); err != nil {
			logger.WithError(err).WithField("item_id", id).Info("Save failed")
			return itemNotice(err, id)
		}
		return NoticeSaved
	}}
}

// NewCancelHandler creates the /cancel <id> handler.
func NewCancelHandler(apps *Apps, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{base{apps: apps, logger: logger}, func(ctx context.Context, a *app.App, id int64, args []string) string {
		e, ok := editor(a)
		if !ok {
			return wrongScreen(a)
		}
		e.Cancel(id)
		return ""
	}}
}

// NewDeleteHandler creates the /delete <id> handler. Recipients are deleted
// after the user confirms; ideas are deleted right away.
func NewDeleteHandler(apps *Apps, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{base{apps: apps, logger: logger}, func(ctx context.Context, a *app.App, id int64, args []string) string {
		switch s := a.Current().(type) {
		case *screens.Dashboard:
			deleted, err := s.Delete(ctx, id)
			if err != nil {
				logger.WithError(err).WithField("recipient_id", id).Info("Delete failed")
				return itemNotice(err, id)
			}
			if !deleted {
				return NoticeNotDeleted
			}
			return NoticeDeleted
		case *screens.RecipientDetail:
			if err := s.Delete(ctx, id); err != nil {
				logger.WithError(err).WithField("idea_id", id).Info("Delete failed")
				return itemNotice(err, id)
			}
			return NoticeDeleted
		default:
			return wrongScreen(a)
		}
	}}
}
