// Package remote defines the contract of the remote auth and CRUD store the
// client core talks to. Implementations live in the httpstore and memstore
// subpackages.
package remote

import (
	"context"

	"github.com/Kerhoff/GiftMind/internal/models"
)

// Auth defines the authentication operations of the store
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, accessToken string) (*models.Session, error)
}

// Recipients defines the recipient collection of the store
type Recipients interface {
	SelectAll(ctx context.Context) ([]models.Recipient, error)
	SelectOne(ctx context.Context, id int64) (*models.Recipient, error)
	Insert(ctx context.Context, in models.RecipientInput) (*models.Recipient, error)
	Update(ctx context.Context, id int64, in models.RecipientInput) error
	Delete(ctx context.Context, id int64) error
}

// Ideas defines the gift idea collection of the store
type Ideas interface {
	// SelectByRecipient returns the ideas of one recipient, newest first.
	SelectByRecipient(ctx context.Context, recipientID int64) ([]models.GiftIdea, error)
	// SelectAllRecipientIDs returns the recipient id of every idea, one entry
	// per idea.
	SelectAllRecipientIDs(ctx context.Context) ([]int64, error)
	Insert(ctx context.Context, in models.IdeaInput) (*models.GiftIdea, error)
	Update(ctx context.Context, id int64, in models.IdeaInput) error
	Delete(ctx context.Context, id int64) error
}

// Store bundles the collections and the auth surface of one store.
type Store interface {
	Auth() Auth
	Recipients() Recipients
	Ideas() Ideas
}

// TokenSource supplies the access token used to authorize collection calls.
type TokenSource interface {
	AccessToken() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// AccessToken implements TokenSource.
func (f TokenFunc) AccessToken() string { return f() }

// Operation names used in StoreError.Op, logs and metrics labels.
const (
	OpSignIn            = "auth.signin"
	OpSignUp            = "auth.signup"
	OpRefresh           = "auth.refresh"
	OpRecipientsSelect  = "recipients.select"
	OpRecipientsGet     = "recipients.get"
	OpRecipientsInsert  = "recipients.insert"
	OpRecipientsUpdate  = "recipients.update"
	OpRecipientsDelete  = "recipients.delete"
	OpIdeasSelect       = "ideas.select"
	OpIdeasRecipientIDs = "ideas.recipient_ids"
	OpIdeasInsert       = "ideas.insert"
	OpIdeasUpdate       = "ideas.update"
	OpIdeasDelete       = "ideas.delete"
)
