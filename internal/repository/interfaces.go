package repository

import (
	"context"

	"github.com/Kerhoff/GiftMind/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// RecipientRepository defines the interface for recipient data operations.
// Every call is scoped to the owning user; records of other users behave as
// missing.
type RecipientRepository interface {
	Create(ctx context.Context, recipient *models.Recipient) (*models.Recipient, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Recipient, error)
	GetByUser(ctx context.Context, userID int64) ([]*models.Recipient, error)
	Update(ctx context.Context, userID, id int64, in models.RecipientInput) error
	Delete(ctx context.Context, userID, id int64) error
}

// GiftIdeaRepository defines the interface for gift idea data operations
type GiftIdeaRepository interface {
	Create(ctx context.Context, idea *models.GiftIdea) (*models.GiftIdea, error)
	// GetByRecipient returns the ideas of one recipient, newest first.
	GetByRecipient(ctx context.Context, userID, recipientID int64) ([]*models.GiftIdea, error)
	// GetRecipientIDs returns the recipient id of every idea owned by the
	// user, one entry per idea.
	GetRecipientIDs(ctx context.Context, userID int64) ([]int64, error)
	Update(ctx context.Context, userID, id int64, in models.IdeaInput) error
	Delete(ctx context.Context, userID, id int64) error
}
