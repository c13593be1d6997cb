package screens

import (
	"context"
	"sync"

	"github.com/Kerhoff/GiftMind/internal/collection"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/nav"
)

// AddRecipient is the recipient creation form.
type AddRecipient struct {
	recipients *collection.Recipients
	nav        Navigator

	mu     sync.Mutex
	fields models.RecipientFields
	err    string
}

func NewAddRecipient(d Deps) *AddRecipient {
	return &AddRecipient{
		recipients: collection.NewRecipients(d.Store.Recipients(), d.Store.Ideas(), d.Logger),
		nav:        d.Nav,
	}
}

// Route implements Screen.
func (s *AddRecipient) Route() nav.Route { return nav.To(nav.AddRecipient) }

// Mount implements Screen.
func (s *AddRecipient) Mount(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = models.RecipientFields{}
	s.err = ""
	return nil
}

// Form returns the current field values and error message.
func (s *AddRecipient) Form() (models.RecipientFields, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields, s.err
}

// SetName sets the name field.
func (s *AddRecipient) SetName(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields.Name = v
}

// SetOccasion sets the occasion field.
func (s *AddRecipient) SetOccasion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields.Occasion = v
}

// Submit creates the recipient and returns to the dashboard.
func (s *AddRecipient) Submit(ctx context.Context) error {
	fields, _ := s.Form()
	if _, err := s.recipients.Create(ctx, fields); err != nil {
		s.mu.Lock()
		s.err = collection.UserMessage(err, collection.MsgWriteFailed)
		s.mu.Unlock()
		return err
	}
	return s.nav.Navigate(ctx, nav.To(nav.Dashboard))
}

// Back returns to the dashboard without saving.
func (s *AddRecipient) Back(ctx context.Context) error {
	return s.nav.Navigate(ctx, nav.To(nav.Dashboard))
}
