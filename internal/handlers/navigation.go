package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/telegram"
)

// ---------------------------------------------------------------------------
// DashboardHandler – /dashboard
// ---------------------------------------------------------------------------

// DashboardHandler shows the recipients of the signed-in user.
type DashboardHandler struct {
	base
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(apps *Apps, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /dashboard command.
func (h *DashboardHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		return h.navigate(ctx, message.Chat.ID, a, nav.To(nav.Dashboard))
	})
}

// ---------------------------------------------------------------------------
// OpenHandler – /open <id>
// ---------------------------------------------------------------------------

// OpenHandler shows the gift ideas of one recipient.
type OpenHandler struct {
	base
}

// NewOpenHandler creates a new OpenHandler.
func NewOpenHandler(apps *Apps, logger *logrus.Logger) *OpenHandler {
	return &OpenHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /open command.
func (h *OpenHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		id, ok := parseID(args)
		if !ok {
			return NoticeInvalidID
		}
		return h.navigate(ctx, message.Chat.ID, a, nav.Recipient(id))
	})
}

// ---------------------------------------------------------------------------
// GoHandler – /go <path>
// ---------------------------------------------------------------------------

// GoHandler opens a page by its path, e.g. "recipient/3".
type GoHandler struct {
	base
}

// NewGoHandler creates a new GoHandler.
func NewGoHandler(apps *Apps, logger *logrus.Logger) *GoHandler {
	return &GoHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /go command.
func (h *GoHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		r, err := nav.Parse(path)
		if err != nil {
			return NoticeUnknownRoute
		}
		return h.navigate(ctx, message.Chat.ID, a, r)
	})
}

// ---------------------------------------------------------------------------
// BackHandler – /back
// ---------------------------------------------------------------------------

type backer interface {
	Back(ctx context.Context) error
}

// BackHandler leaves the current page. Forms and recipient pages return to
// the dashboard; elsewhere the previous page is shown.
type BackHandler struct {
	base
}

// NewBackHandler creates a new BackHandler.
func NewBackHandler(apps *Apps, logger *logrus.Logger) *BackHandler {
	return &BackHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /back command.
func (h *BackHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		var err error
		if s, ok := a.Current().(backer); ok {
			err = s.Back(ctx)
		} else {
			err = a.Back(ctx)
		}
		if err != nil {
			h.logger.WithError(err).WithField("chat_id", message.Chat.ID).Warn("Screen loaded with errors")
			return NoticeLoadFailed
		}
		return ""
	})
}
