package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/collection"
	"github.com/Kerhoff/GiftMind/internal/editing"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

// IdeaRow is one gift idea as rendered.
type IdeaRow struct {
	models.GiftIdea
	Mode  editing.Mode
	Draft models.IdeaFields
	Busy  bool
}

// RecipientDetail shows one recipient and its gift ideas, newest first.
type RecipientDetail struct {
	id         int64
	recipients remote.Recipients
	ideas      *collection.Ideas
	edits      *editing.Controller[models.IdeaFields]
	nav        Navigator
	logger     *logrus.Logger

	mu        sync.Mutex
	recipient *models.Recipient
	form      models.IdeaFields
	err       string
	notice    string
}

func NewRecipientDetail(id int64, d Deps) *RecipientDetail {
	return &RecipientDetail{
		id:         id,
		recipients: d.Store.Recipients(),
		ideas:      collection.NewIdeas(d.Store.Ideas(), id, d.Logger),
		edits:      editing.New[models.IdeaFields](),
		nav:        d.Nav,
		logger:     d.Logger,
	}
}

// Route implements Screen.
func (s *RecipientDetail) Route() nav.Route { return nav.Recipient(s.id) }

// Mount loads the recipient header and its ideas. Both loads run even if
// one fails.
func (s *RecipientDetail) Mount(ctx context.Context) error {
	var headerErr error
	r, err := s.recipients.SelectOne(ctx, s.id)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"op":           remote.OpRecipientsGet,
			"recipient_id": s.id,
		}).Error("Failed to load recipient")
		headerErr = fmt.Errorf("load recipient: %w", err)
	} else {
		s.mu.Lock()
		s.recipient = r
		s.mu.Unlock()
	}

	if err := s.ideas.Load(ctx); err != nil {
		return err
	}
	return headerErr
}

// Recipient returns the loaded recipient, or false while it is loading.
func (s *RecipientDetail) Recipient() (models.Recipient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recipient == nil {
		return models.Recipient{}, false
	}
	return *s.recipient, true
}

// Rows returns the ideas with their edit state.
func (s *RecipientDetail) Rows() []IdeaRow {
	items := s.ideas.Items()
	rows := make([]IdeaRow, len(items))
	for i, idea := range items {
		rows[i] = IdeaRow{GiftIdea: idea, Busy: s.ideas.Busy(idea.ID)}
		if draft, ok := s.edits.Draft(idea.ID); ok {
			rows[i].Mode = editing.Editing
			rows[i].Draft = draft
		}
	}
	return rows
}

// Form returns the new-idea form and its error message.
func (s *RecipientDetail) Form() (models.IdeaFields, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form, s.err
}

// Notice returns the message of the last failed row action.
func (s *RecipientDetail) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *RecipientDetail) setNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// SetText sets the text of the new-idea form.
func (s *RecipientDetail) SetText(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Text = v
}

// SetNote sets the note of the new-idea form.
func (s *RecipientDetail) SetNote(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Note = v
}

// AddIdea creates an idea from the form. On success the form is cleared.
func (s *RecipientDetail) AddIdea(ctx context.Context) (*models.GiftIdea, error) {
	fields, _ := s.Form()
	created, err := s.ideas.Create(ctx, fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = collection.UserMessage(err, collection.MsgIdeaWriteFailed)
		return nil, err
	}
	s.form = models.IdeaFields{}
	s.err = ""
	return created, nil
}

// BeginEdit seeds a draft of idea id from its committed fields.
func (s *RecipientDetail) BeginEdit(id int64) error {
	idea, ok := s.ideas.Get(id)
	if !ok {
		return collection.ErrNotFound
	}
	s.edits.Begin(id, models.IdeaFieldsOf(idea))
	return nil
}

// SetDraft changes one draft field, "text" or "note".
func (s *RecipientDetail) SetDraft(id int64, field, value string) error {
	if field != "text" && field != "note" {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return s.edits.Change(id, func(d *models.IdeaFields) {
		if field == "text" {
			d.Text = value
		} else {
			d.Note = value
		}
	})
}

// Cancel drops the draft of idea id.
func (s *RecipientDetail) Cancel(id int64) {
	s.edits.Cancel(id)
}

// Save writes the draft of idea id. On any failure the idea stays in edit
// mode with its draft.
func (s *RecipientDetail) Save(ctx context.Context, id int64) error {
	s.setNotice("")
	err := s.edits.Save(ctx, id, func(ctx context.Context, d models.IdeaFields) error {
		return s.ideas.Update(ctx, id, d)
	})
	if err != nil {
		s.setNotice(collection.UserMessage(err, collection.MsgWriteFailed))
	}
	return err
}

// Delete removes idea id without asking.
func (s *RecipientDetail) Delete(ctx context.Context, id int64) error {
	s.setNotice("")
	if err := s.ideas.Delete(ctx, id); err != nil {
		s.setNotice(collection.UserMessage(err, collection.MsgWriteFailed))
		return err
	}
	s.edits.Forget(id)
	return nil
}

// Back returns to the dashboard.
func (s *RecipientDetail) Back(ctx context.Context) error {
	return s.nav.Navigate(ctx, nav.To(nav.Dashboard))
}
