package memstore

import (
	"context"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

// view binds a Store to the token source its collection calls act with.
type view struct {
	store  *Store
	tokens remote.TokenSource
}

func (v *view) Auth() remote.Auth             { return authView{v} }
func (v *view) Recipients() remote.Recipients { return recipientsView{v} }
func (v *view) Ideas() remote.Ideas           { return ideasView{v} }

type authView struct{ *view }

func (a authView) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return a.store.signIn(ctx, email, password)
}

func (a authView) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return a.store.signUp(ctx, email, password)
}

func (a authView) Refresh(ctx context.Context, accessToken string) (*models.Session, error) {
	return a.store.refresh(ctx, accessToken)
}

type recipientsView struct{ *view }

func (r recipientsView) SelectAll(ctx context.Context) ([]models.Recipient, error) {
	return r.store.selectRecipients(r.tokens)
}

func (r recipientsView) SelectOne(ctx context.Context, id int64) (*models.Recipient, error) {
	return r.store.selectRecipient(r.tokens, id)
}

func (r recipientsView) Insert(ctx context.Context, in models.RecipientInput) (*models.Recipient, error) {
	return r.store.insertRecipient(r.tokens, in)
}

func (r recipientsView) Update(ctx context.Context, id int64, in models.RecipientInput) error {
	return r.store.updateRecipient(r.tokens, id, in)
}

func (r recipientsView) Delete(ctx context.Context, id int64) error {
	return r.store.deleteRecipient(r.tokens, id)
}

type ideasView struct{ *view }

func (i ideasView) SelectByRecipient(ctx context.Context, recipientID int64) ([]models.GiftIdea, error) {
	return i.store.selectIdeas(i.tokens, recipientID)
}

func (i ideasView) SelectAllRecipientIDs(ctx context.Context) ([]int64, error) {
	return i.store.selectRecipientIDs(i.tokens)
}

func (i ideasView) Insert(ctx context.Context, in models.IdeaInput) (*models.GiftIdea, error) {
	return i.store.insertIdea(i.tokens, in)
}

func (i ideasView) Update(ctx context.Context, id int64, in models.IdeaInput) error {
	return i.store.updateIdea(i.tokens, id, in)
}

func (i ideasView) Delete(ctx context.Context, id int64) error {
	return i.store.deleteIdea(i.tokens, id)
}
