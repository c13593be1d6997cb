package httpstore

import (
	"context"
	"net/http"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

type view struct {
	client *Client
	tokens remote.TokenSource
}

func (v *view) Auth() remote.Auth             { return authClient{v.client} }
func (v *view) Recipients() remote.Recipients { return recipients{v} }
func (v *view) Ideas() remote.Ideas           { return ideas{v} }

func (v *view) do(ctx context.Context, op, method, path string, in, out any) error {
	token := ""
	if v.tokens != nil {
		token = v.tokens.AccessToken()
	}
	return v.client.do(ctx, op, method, path, token, in, out)
}

type recipients struct {
	v *view
}

func (r recipients) SelectAll(ctx context.Context) ([]models.Recipient, error) {
	out := []models.Recipient{}
	if err := r.v.do(ctx, remote.OpRecipientsSelect, http.MethodGet, "/api/recipients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r recipients) SelectOne(ctx context.Context, id int64) (*models.Recipient, error) {
	var out models.Recipient
	if err := r.v.do(ctx, remote.OpRecipientsGet, http.MethodGet, "/api/recipients/"+itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r recipients) Insert(ctx context.Context, in models.RecipientInput) (*models.Recipient, error) {
	var out models.Recipient
	if err := r.v.do(ctx, remote.OpRecipientsInsert, http.MethodPost, "/api/recipients", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r recipients) Update(ctx context.Context, id int64, in models.RecipientInput) error {
	return r.v.do(ctx, remote.OpRecipientsUpdate, http.MethodPut, "/api/recipients/"+itoa(id), in, nil)
}

func (r recipients) Delete(ctx context.Context, id int64) error {
	return r.v.do(ctx, remote.OpRecipientsDelete, http.MethodDelete, "/api/recipients/"+itoa(id), nil, nil)
}

type ideas struct {
	v *view
}

func (i ideas) SelectByRecipient(ctx context.Context, recipientID int64) ([]models.GiftIdea, error) {
	out := []models.GiftIdea{}
	path := "/api/recipients/" + itoa(recipientID) + "/ideas"
	if err := i.v.do(ctx, remote.OpIdeasSelect, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i ideas) SelectAllRecipientIDs(ctx context.Context) ([]int64, error) {
	out := []int64{}
	if err := i.v.do(ctx, remote.OpIdeasRecipientIDs, http.MethodGet, "/api/ideas/recipient-ids", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i ideas) Insert(ctx context.Context, in models.IdeaInput) (*models.GiftIdea, error) {
	var out models.GiftIdea
	if err := i.v.do(ctx, remote.OpIdeasInsert, http.MethodPost, "/api/ideas", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (i ideas) Update(ctx context.Context, id int64, in models.IdeaInput) error {
	return i.v.do(ctx, remote.OpIdeasUpdate, http.MethodPut, "/api/ideas/"+itoa(id), in, nil)
}

func (i ideas) Delete(ctx context.Context, id int64) error {
	return i.v.do(ctx, remote.OpIdeasDelete, http.MethodDelete, "/api/ideas/"+itoa(id), nil, nil)
}
