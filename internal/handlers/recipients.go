package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/screens"
	"github.com/Kerhoff/GiftMind/internal/telegram"
)

// ---------------------------------------------------------------------------
// AddHandler – /add <name> | <occasion>
// ---------------------------------------------------------------------------

// AddHandler fills the add-recipient form and submits it. Without
// arguments it only opens the form.
type AddHandler struct {
	base
}

// NewAddHandler creates a new AddHandler.
func NewAddHandler(apps *Apps, logger *logrus.Logger) *AddHandler {
	return &AddHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /add command.
func (h *AddHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		if _, ok := a.Current().(*screens.AddRecipient); !ok {
			if notice := h.navigate(ctx, message.Chat.ID, a, nav.To(nav.AddRecipient)); notice != "" {
				return notice
			}
		}
		form, ok := a.Current().(*screens.AddRecipient)
		if !ok {
			return wrongScreen(a)
		}
		if len(args) == 0 {
			return ""
		}

		name, occasion := parsePair(args)
		form.SetName(name)
		form.SetOccasion(occasion)
		if err := form.Submit(ctx); err != nil {
			h.logger.WithError(err).WithField("chat_id", message.Chat.ID).Info("Recipient not added")
			return ""
		}

		h.logger.WithField("chat_id", message.Chat.ID).Info("Recipient added")
		return NoticeRecipientAdded
	})
}

// ---------------------------------------------------------------------------
// IdeaHandler – /idea <text> | <note>
// ---------------------------------------------------------------------------

// IdeaHandler adds a gift idea on a recipient page.
type IdeaHandler struct {
	base
}

// NewIdeaHandler creates a new IdeaHandler.
func NewIdeaHandler(apps *Apps, logger *logrus.Logger) *IdeaHandler {
	return &IdeaHandler{base{apps: apps, logger: logger}}
}

// Handle processes the /idea command.
func (h *IdeaHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	return h.withApp(ctx, bot, message, func(a *app.App) string {
		detail, ok := a.Current().(*screens.RecipientDetail)
		if !ok {
			return wrongScreen(a)
		}

		text, note := parsePair(args)
		detail.SetText(text)
		detail.SetNote(note)
		idea, err := detail.AddIdea(ctx)
		if err != nil {
			h.logger.WithError(err).WithField("chat_id", message.Chat.ID).Info("Idea not added")
			return ""
		}

		h.logger.WithFields(logrus.Fields{
			"chat_id": message.Chat.ID,
			"idea_id": idea.ID,
		}).Info("Idea added")
		return NoticeIdeaAdded
	})
}
