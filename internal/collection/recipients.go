// Package collection keeps in-memory recipient and gift idea lists in step
// with the remote store. Local state changes only when a load replaces it or
// when the store acknowledges a create, update or delete.
package collection

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/aggregate"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

// Recipients manages the recipient list of the dashboard, including the idea
// counts computed when it is loaded.
type Recipients struct {
	store  remote.Recipients
	ideas  remote.Ideas
	logger *logrus.Logger
	list   *list[models.RecipientSummary]
}

// NewRecipients creates an empty recipient collection.
func NewRecipients(store remote.Recipients, ideas remote.Ideas, logger *logrus.Logger) *Recipients {
	return &Recipients{
		store:  store,
		ideas:  ideas,
		logger: logger,
		list:   newList(func(r models.RecipientSummary) int64 { return r.ID }),
	}
}

// Load fetches all recipients and the recipient ids of all ideas, and
// replaces the local list with the joined result. On failure the previous
// list is kept.
func (c *Recipients) Load(ctx context.Context) error {
	recipients, err := c.store.SelectAll(ctx)
	if err != nil {
		c.logger.WithError(err).WithField("op", remote.OpRecipientsSelect).Error("Failed to load recipients")
		return fmt.Errorf("load recipients: %w", err)
	}

	ids, err := c.ideas.SelectAllRecipientIDs(ctx)
	if err != nil {
		c.logger.WithError(err).WithField("op", remote.OpIdeasRecipientIDs).Error("Failed to load idea counts")
		return fmt.Errorf("load idea counts: %w", err)
	}

	c.list.replace(aggregate.CountIdeas(recipients, ids))
	c.logger.WithField("count", len(recipients)).Debug("Loaded recipients")
	return nil
}

// Items returns a copy of the local list.
func (c *Recipients) Items() []models.RecipientSummary {
	return c.list.snapshot()
}

// Get returns the local recipient with id.
func (c *Recipients) Get(id int64) (models.RecipientSummary, bool) {
	return c.list.get(id)
}

// Busy reports whether a write for id is waiting for the store.
func (c *Recipients) Busy(id int64) bool {
	return c.list.busy(id)
}

// Create validates fields, inserts the recipient and appends the stored
// record to the local list.
func (c *Recipients) Create(ctx context.Context, fields models.RecipientFields) (*models.Recipient, error) {
	in := fields.Normalize()
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Message: MsgNameRequired}
	}

	created, err := c.store.Insert(ctx, in)
	if err != nil {
		c.logger.WithError(err).WithField("op", remote.OpRecipientsInsert).Error("Failed to create recipient")
		return nil, &WriteError{Op: remote.OpRecipientsInsert, Err: err}
	}

	c.list.add(models.RecipientSummary{Recipient: *created}, false)
	c.logger.WithField("recipient_id", created.ID).Info("Recipient created")
	return created, nil
}

// Update validates fields and writes name and occasion of recipient id. The
// local record is merged only after the store accepted the change.
func (c *Recipients) Update(ctx context.Context, id int64, fields models.RecipientFields) error {
	in := fields.Normalize()
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: MsgNameRequired}
	}

	if err := c.list.acquire(id); err != nil {
		return err
	}
	defer c.list.release(id)

	if err := c.store.Update(ctx, id, in); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"op":           remote.OpRecipientsUpdate,
			"recipient_id": id,
		}).Error("Failed to update recipient")
		return &WriteError{Op: remote.OpRecipientsUpdate, Err: err}
	}

	if !c.list.patch(id, func(r *models.RecipientSummary) {
		r.Name = in.Name
		r.Occasion = in.Occasion
	}) {
		c.logger.WithField("recipient_id", id).Debug("Updated recipient is no longer listed")
	}
	return nil
}

// Delete asks confirm and, when the user agrees, deletes recipient id. The
// store removes the recipient's ideas with it. The local record is removed
// only after the store acknowledged the delete. It reports whether the
// recipient was deleted.
func (c *Recipients) Delete(ctx context.Context, id int64, confirm ConfirmFunc) (bool, error) {
	if confirm == nil {
		return false, ErrConfirmRequired
	}
	if err := c.list.acquire(id); err != nil {
		return false, err
	}
	defer c.list.release(id)

	ok, err := confirm(ctx, PromptDeleteRecipient)
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		c.logger.WithField("recipient_id", id).Debug("Recipient delete declined")
		return false, nil
	}

	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"op":           remote.OpRecipientsDelete,
			"recipient_id": id,
		}).Error("Failed to delete recipient")
		return false, &WriteError{Op: remote.OpRecipientsDelete, Err: err}
	}

	c.list.remove(id)
	c.logger.WithField("recipient_id", id).Info("Recipient deleted")
	return true, nil
}
