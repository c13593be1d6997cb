// Package memory implements the repositories in process memory. The store
// service uses it when started without a database, and tests use it in place
// of Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/repository"
)

// DB is the shared state behind the three repositories.
type DB struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]models.User
	recipients map[int64]models.Recipient
	ideas      map[int64]models.GiftIdea
	now        func() time.Time
}

// New creates an empty DB.
func New() *DB {
	return &DB{
		users:      make(map[int64]models.User),
		recipients: make(map[int64]models.Recipient),
		ideas:      make(map[int64]models.GiftIdea),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for created_at values.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

// Users returns the user repository.
func (db *DB) Users() repository.UserRepository { return users{db} }

// Recipients returns the recipient repository.
func (db *DB) Recipients() repository.RecipientRepository { return recipients{db} }

// Ideas returns the gift idea repository.
func (db *DB) Ideas() repository.GiftIdeaRepository { return ideas{db} }

type users struct{ db *DB }

func (u users) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, existing := range u.db.users {
		if existing.Email == user.Email {
			return nil, repository.ErrDuplicate
		}
	}
	user.ID = u.db.id()
	user.CreatedAt = u.db.now()
	u.db.users[user.ID] = *user
	return user, nil
}

func (u users) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	user, ok := u.db.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (u users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, user := range u.db.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, nil
}

type recipients struct{ db *DB }

func (r recipients) Create(ctx context.Context, recipient *models.Recipient) (*models.Recipient, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	recipient.ID = r.db.id()
	recipient.CreatedAt = r.db.now()
	recipient.UpdatedAt = recipient.CreatedAt
	r.db.recipients[recipient.ID] = *recipient
	return recipient, nil
}

func (r recipients) GetByID(ctx context.Context, userID, id int64) (*models.Recipient, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rec, ok := r.db.recipients[id]
	if !ok || rec.UserID != userID {
		return nil, nil
	}
	return &rec, nil
}

func (r recipients) GetByUser(ctx context.Context, userID int64) ([]*models.Recipient, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.Recipient
	for _, rec := range r.db.recipients {
		if rec.UserID == userID {
			rec := rec
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r recipients) Update(ctx context.Context, userID, id int64, in models.RecipientInput) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rec, ok := r.db.recipients[id]
	if !ok || rec.UserID != userID {
		return repository.ErrNotFound
	}
	rec.Name = in.Name
	rec.Occasion = in.Occasion
	rec.UpdatedAt = r.db.now()
	r.db.recipients[id] = rec
	return nil
}

func (r recipients) Delete(ctx context.Context, userID, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rec, ok := r.db.recipients[id]
	if !ok || rec.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.db.recipients, id)
	for ideaID, idea := range r.db.ideas {
		if idea.RecipientID == id {
			delete(r.db.ideas, ideaID)
		}
	}
	return nil
}

type ideas struct{ db *DB }

// owned reports whether idea belongs to a recipient of userID. Must be called
// with db.mu held.
func (i ideas) owned(userID int64, idea models.GiftIdea) bool {
	rec, ok := i.db.recipients[idea.RecipientID]
	return ok && rec.UserID == userID
}

func (i ideas) Create(ctx context.Context, idea *models.GiftIdea) (*models.GiftIdea, error) {
	i.db.mu.Lock()
	defer i.db.mu.Unlock()
	idea.ID = i.db.id()
	idea.CreatedAt = i.db.now()
	i.db.ideas[idea.ID] = *idea
	return idea, nil
}

func (i ideas) GetByRecipient(ctx context.Context, userID, recipientID int64) ([]*models.GiftIdea, error) {
	i.db.mu.Lock()
	defer i.db.mu.Unlock()
	var out []*models.GiftIdea
	for _, idea := range i.db.ideas {
		if idea.RecipientID == recipientID && i.owned(userID, idea) {
			idea := idea
			out = append(out, &idea)
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

func (i ideas) GetRecipientIDs(ctx context.Context, userID int64) ([]int64, error) {
	i.db.mu.Lock()
	defer i.db.mu.Unlock()
	out := []int64{}
	for _, idea := range i.db.ideas {
		if i.owned(userID, idea) {
			out = append(out, idea.RecipientID)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out, nil
}

func (i ideas) Update(ctx context.Context, userID, id int64, in models.IdeaInput) error {
	i.db.mu.Lock()
	defer i.db.mu.Unlock()
	idea, ok := i.db.ideas[id]
	if !ok || !i.owned(userID, idea) {
		return repository.ErrNotFound
	}
	idea.Text = in.Text
	idea.Note = in.Note
	i.db.ideas[id] = idea
	return nil
}

func (i ideas) Delete(ctx context.Context, userID, id int64) error {
	i.db.mu.Lock()
	defer i.db.mu.Unlock()
	idea, ok := i.db.ideas[id]
	if !ok || !i.owned(userID, idea) {
		return repository.ErrNotFound
	}
	delete(i.db.ideas, id)
	return nil
}
