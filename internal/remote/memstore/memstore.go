// Package memstore is an in-memory implementation of the remote store. The
// bot uses it when STORE_URL is memory://, and the client packages use it in
// tests. Failures can be injected per operation and every call is counted.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/GiftMind/internal/auth"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

// DefaultTTL is the lifetime of sessions issued by the store.
const DefaultTTL = time.Hour

type account struct {
	user models.User
}

type grant struct {
	userID    int64
	expiresAt time.Time
}

// Store holds users, recipients and ideas in memory. The zero value is not
// usable; call New.
type Store struct {
	mu         sync.Mutex
	nextID     int64
	users      map[string]*account
	tokens     map[string]grant
	recipients map[int64]models.Recipient
	ideas      map[int64]models.GiftIdea
	failures   map[string]error
	calls      map[string]int
	hooks      map[string]func()
	now        func() time.Time
	ttl        time.Duration
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:      make(map[string]*account),
		tokens:     make(map[string]grant),
		recipients: make(map[int64]models.Recipient),
		ideas:      make(map[int64]models.GiftIdea),
		failures:   make(map[string]error),
		calls:      make(map[string]int),
		hooks:      make(map[string]func()),
		now:        time.Now,
		ttl:        DefaultTTL,
	}
}

// SetClock replaces the time source used for timestamps and token expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Fail makes every following call of op return err until Recover is called.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Recover clears an injected failure.
func (s *Store) Recover(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// OnCall registers fn to run, without the store lock held, when op is called
// and before it is applied.
func (s *Store) OnCall(op string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[op] = fn
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Unscoped returns a view that owns records with user id 0 and needs no
// token. Tests use it when authentication is irrelevant.
func (s *Store) Unscoped() remote.Store {
	return &view{store: s}
}

// As returns a view whose collection calls are authorized with the token
// supplied by tokens.
func (s *Store) As(tokens remote.TokenSource) remote.Store {
	return &view{store: s, tokens: tokens}
}

// SeedRecipient stores r as is, assigning an id when r.ID is zero.
func (s *Store) SeedRecipient(r models.Recipient) models.Recipient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
		r.UpdatedAt = r.CreatedAt
	}
	s.recipients[r.ID] = r
	return r
}

// SeedIdea stores i as is, assigning an id when i.ID is zero.
func (s *Store) SeedIdea(i models.GiftIdea) models.GiftIdea {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i.ID == 0 {
		i.ID = s.id()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = s.now()
	}
	s.ideas[i.ID] = i
	return i
}

// Recipient returns the stored recipient with id.
func (s *Store) Recipient(id int64) (models.Recipient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[id]
	return r, ok
}

// Idea returns the stored idea with id.
func (s *Store) Idea(id int64) (models.GiftIdea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.ideas[id]
	return i, ok
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// enter counts the call, runs its hook and returns the injected failure.
func (s *Store) enter(op string) error {
	s.mu.Lock()
	s.calls[op]++
	hook := s.hooks[op]
	err := s.failures[op]
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return &remote.StoreError{Op: op, Err: err}
	}
	return nil
}

func (s *Store) session(u models.User) *models.Session {
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)
	s.tokens[token] = grant{userID: u.ID, expiresAt: expiresAt}
	return &models.Session{User: u, AccessToken: token, ExpiresAt: expiresAt}
}

func (s *Store) signUp(ctx context.Context, email, password string) (*models.Session, error) {
	if err := s.enter(remote.OpSignUp); err != nil {
		return nil, err
	}
	if msg := auth.SignUpProblem(email, password); msg != "" {
		return nil, &remote.AuthError{Message: msg}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email = auth.NormalizeEmail(email)
	if _, exists := s.users[email]; exists {
		return nil, &remote.AuthError{Message: auth.MsgAlreadyRegistered}
	}
	u := models.User{ID: s.id(), Email: email, PasswordHash: hash, CreatedAt: s.now()}
	s.users[email] = &account{user: u}
	return s.session(u), nil
}

func (s *Store) signIn(ctx context.Context, email, password string) (*models.Session, error) {
	if err := s.enter(remote.OpSignIn); err != nil {
		return nil, err
	}

	s.mu.Lock()
	acc, ok := s.users[auth.NormalizeEmail(email)]
	s.mu.Unlock()
	if !ok || auth.CheckPassword(acc.user.PasswordHash, password) != nil {
		return nil, &remote.AuthError{Message: auth.MsgInvalidCredentials}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(acc.user), nil
}

func (s *Store) refresh(ctx context.Context, token string) (*models.Session, error) {
	if err := s.enter(remote.OpRefresh); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.tokens[token]
	if !ok || !s.now().Before(g.expiresAt) {
		return nil, remote.ErrUnauthorized
	}
	for _, acc := range s.users {
		if acc.user.ID == g.userID {
			delete(s.tokens, token)
			return s.session(acc.user), nil
		}
	}
	return nil, remote.ErrUnauthorized
}

// owner resolves the user id a view acts for. Must be called with s.mu held.
func (s *Store) owner(tokens remote.TokenSource) (int64, error) {
	if tokens == nil {
		return 0, nil
	}
	g, ok := s.tokens[tokens.AccessToken()]
	if !ok || !s.now().Before(g.expiresAt) {
		return 0, remote.ErrUnauthorized
	}
	return g.userID, nil
}

func (s *Store) selectRecipients(tokens remote.TokenSource) ([]models.Recipient, error) {
	if err := s.enter(remote.OpRecipientsSelect); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return nil, err
	}

	out := make([]models.Recipient, 0, len(s.recipients))
	for _, r := range s.recipients {
		if r.UserID == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) selectRecipient(tokens remote.TokenSource, id int64) (*models.Recipient, error) {
	if err := s.enter(remote.OpRecipientsGet); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return nil, err
	}

	r, ok := s.recipients[id]
	if !ok || r.UserID != owner {
		return nil, &remote.StoreError{Op: remote.OpRecipientsGet, Message: "recipient not found", Err: remote.ErrNotFound}
	}
	return &r, nil
}

func (s *Store) insertRecipient(tokens remote.TokenSource, in models.RecipientInput) (*models.Recipient, error) {
	if err := s.enter(remote.OpRecipientsInsert); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return nil, err
	}

	now := s.now()
	r := models.Recipient{
		ID:        s.id(),
		UserID:    owner,
		Name:      in.Name,
		Occasion:  in.Occasion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.recipients[r.ID] = r
	return &r, nil
}

func (s *Store) updateRecipient(tokens remote.TokenSource, id int64, in models.RecipientInput) error {
	if err := s.enter(remote.OpRecipientsUpdate); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return err
	}

	r, ok := s.recipients[id]
	if !ok || r.UserID != owner {
		return &remote.StoreError{Op: remote.OpRecipientsUpdate, Message: "recipient not found", Err: remote.ErrNotFound}
	}
	r.Name = in.Name
	r.Occasion = in.Occasion
	r.UpdatedAt = s.now()
	s.recipients[id] = r
	return nil
}

func (s *Store) deleteRecipient(tokens remote.TokenSource, id int64) error {
	if err := s.enter(remote.OpRecipientsDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return err
	}

	r, ok := s.recipients[id]
	if !ok || r.UserID != owner {
		return &remote.StoreError{Op: remote.OpRecipientsDelete, Message: "recipient not found", Err: remote.ErrNotFound}
	}
	delete(s.recipients, id)
	for ideaID, idea := range s.ideas {
		if idea.RecipientID == id {
			delete(s.ideas, ideaID)
		}
	}
	return nil
}

// ownsRecipient reports whether the recipient exists and belongs to owner.
// Must be called with s.mu held.
func (s *Store) ownsRecipient(owner, recipientID int64) bool {
	r, ok := s.recipients[recipientID]
	return ok && r.UserID == owner
}

func (s *Store) selectIdeas(tokens remote.TokenSource, recipientID int64) ([]models.GiftIdea, error) {
	if err := s.enter(remote.OpIdeasSelect); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return nil, err
	}

	out := []models.GiftIdea{}
	if !s.ownsRecipient(owner, recipientID) {
		return out, nil
	}
	for _, i := range s.ideas {
		if i.RecipientID == recipientID {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID > out[b].ID
	})
	return out, nil
}

func (s *Store) selectRecipientIDs(tokens remote.TokenSource) ([]int64, error) {
	if err := s.enter(remote.OpIdeasRecipientIDs); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(s.ideas))
	for _, i := range s.ideas {
		if s.ownsRecipient(owner, i.RecipientID) {
			ids = append(ids, i.RecipientID)
		}
	}
	return ids, nil
}

func (s *Store) insertIdea(tokens remote.TokenSource, in models.IdeaInput) (*models.GiftIdea, error) {
	if err := s.enter(remote.OpIdeasInsert); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return nil, err
	}

	if !s.ownsRecipient(owner, in.RecipientID) {
		return nil, &remote.StoreError{Op: remote.OpIdeasInsert, Message: "recipient not found", Err: remote.ErrNotFound}
	}
	i := models.GiftIdea{
		ID:          s.id(),
		RecipientID: in.RecipientID,
		Text:        in.Text,
		Note:        in.Note,
		CreatedAt:   s.now(),
	}
	s.ideas[i.ID] = i
	return &i, nil
}

func (s *Store) updateIdea(tokens remote.TokenSource, id int64, in models.IdeaInput) error {
	if err := s.enter(remote.OpIdeasUpdate); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return err
	}

	i, ok := s.ideas[id]
	if !ok || !s.ownsRecipient(owner, i.RecipientID) {
		return &remote.StoreError{Op: remote.OpIdeasUpdate, Message: "idea not found", Err: remote.ErrNotFound}
	}
	i.Text = in.Text
	i.Note = in.Note
	s.ideas[id] = i
	return nil
}

func (s *Store) deleteIdea(tokens remote.TokenSource, id int64) error {
	if err := s.enter(remote.OpIdeasDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, err := s.owner(tokens)
	if err != nil {
		return err
	}

	i, ok := s.ideas[id]
	if !ok || !s.ownsRecipient(owner, i.RecipientID) {
		return &remote.StoreError{Op: remote.OpIdeasDelete, Message: "idea not found", Err: remote.ErrNotFound}
	}
	delete(s.ideas, id)
	return nil
}

// ErrInjected is a convenience failure for tests.
var ErrInjected = errors.New("injected failure")
