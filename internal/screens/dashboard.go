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
)

// RecipientRow is one dashboard row as rendered.
type RecipientRow struct {
	models.RecipientSummary
	Mode  editing.Mode
	Draft models.RecipientFields
	Busy  bool
}

// Dashboard lists the recipients with their idea counts and edits them
// inline. The counts are taken when the screen mounts.
type Dashboard struct {
	recipients *collection.Recipients
	edits      *editing.Controller[models.RecipientFields]
	confirm    collection.ConfirmFunc
	nav        Navigator
	logger     *logrus.Logger

	mu     sync.Mutex
	notice string
}

func NewDashboard(d Deps) *Dashboard {
	return &Dashboard{
		recipients: collection.NewRecipients(d.Store.Recipients(), d.Store.Ideas(), d.Logger),
		edits:      editing.New[models.RecipientFields](),
		confirm:    d.Confirm,
		nav:        d.Nav,
		logger:     d.Logger,
	}
}

// Route implements Screen.
func (s *Dashboard) Route() nav.Route { return nav.To(nav.Dashboard) }

// Mount implements Screen.
func (s *Dashboard) Mount(ctx context.Context) error {
	return s.recipients.Load(ctx)
}

// Rows returns the recipients in list order with their edit state.
func (s *Dashboard) Rows() []RecipientRow {
	items := s.recipients.Items()
	rows := make([]RecipientRow, len(items))
	for i, r := range items {
		rows[i] = RecipientRow{RecipientSummary: r, Busy: s.recipients.Busy(r.ID)}
		if draft, ok := s.edits.Draft(r.ID); ok {
			rows[i].Mode = editing.Editing
			rows[i].Draft = draft
		}
	}
	return rows
}

// Notice returns the message of the last failed action.
func (s *Dashboard) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *Dashboard) setNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// BeginEdit seeds a draft of recipient id from its committed fields.
func (s *Dashboard) BeginEdit(id int64) error {
	r, ok := s.recipients.Get(id)
	if !ok {
		return collection.ErrNotFound
	}
	s.edits.Begin(id, models.RecipientFieldsOf(r.Recipient))
	return nil
}

// SetDraft changes one draft field, "name" or "occasion".
func (s *Dashboard) SetDraft(id int64, field, value string) error {
	if field != "name" && field != "occasion" {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return s.edits.Change(id, func(d *models.RecipientFields) {
		if field == "name" {
			d.Name = value
		} else {
			d.Occasion = value
		}
	})
}

// Cancel drops the draft of id.
func (s *Dashboard) Cancel(id int64) {
	s.edits.Cancel(id)
}

// Save writes the draft of id. On any failure the row stays in edit mode
// with its draft.
func (s *Dashboard) Save(ctx context.Context, id int64) error {
	s.setNotice("")
	err := s.edits.Save(ctx, id, func(ctx context.Context, d models.RecipientFields) error {
		return s.recipients.Update(ctx, id, d)
	})
	if err != nil {
		s.setNotice(collection.UserMessage(err, collection.MsgWriteFailed))
	}
	return err
}

// Delete asks for confirmation and deletes recipient id.
func (s *Dashboard) Delete(ctx context.Context, id int64) (bool, error) {
	s.setNotice("")
	deleted, err := s.recipients.Delete(ctx, id, s.confirm)
	if err != nil {
		s.setNotice(collection.UserMessage(err, collection.MsgWriteFailed))
		return false, err
	}
	if deleted {
		s.edits.Forget(id)
	}
	return deleted, nil
}

// Open shows the ideas of recipient id.
func (s *Dashboard) Open(ctx context.Context, id int64) error {
	return s.nav.Navigate(ctx, nav.Recipient(id))
}

// AddNew shows the add-recipient form.
func (s *Dashboard) AddNew(ctx context.Context) error {
	return s.nav.Navigate(ctx, nav.To(nav.AddRecipient))
}
