package collection

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

// Ideas manages the gift ideas of one recipient, newest first.
type Ideas struct {
	store       remote.Ideas
	recipientID int64
	logger      *logrus.Entry
	list        *list[models.GiftIdea]
}

// NewIdeas creates an empty idea collection bound to recipientID.
func NewIdeas(store remote.Ideas, recipientID int64, logger *logrus.Logger) *Ideas {
	return &Ideas{
		store:       store,
		recipientID: recipientID,
		logger:      logger.WithField("recipient_id", recipientID),
		list:        newList(func(i models.GiftIdea) int64 { return i.ID }),
	}
}

// RecipientID returns the recipient the collection is bound to.
func (c *Ideas) RecipientID() int64 {
	return c.recipientID
}

// Load fetches the recipient's ideas and replaces the local list. On failure
// the previous list is kept.
func (c *Ideas) Load(ctx context.Context) error {
	ideas, err := c.store.SelectByRecipient(ctx, c.recipientID)
	if err != nil {
		c.logger.WithError(err).WithField("op", remote.OpIdeasSelect).Error("Failed to load gift ideas")
		return fmt.Errorf("load gift ideas: %w", err)
	}

	sort.SliceStable(ideas, func(a, b int) bool {
		return ideas[a].CreatedAt.After(ideas[b].CreatedAt)
	})
	c.list.replace(ideas)
	c.logger.WithField("count", len(ideas)).Debug("Loaded gift ideas")
	return nil
}

// Items returns a copy of the local list.
func (c *Ideas) Items() []models.GiftIdea {
	return c.list.snapshot()
}

// Get returns the local idea with id.
func (c *Ideas) Get(id int64) (models.GiftIdea, bool) {
	return c.list.get(id)
}

// Busy reports whether a write for id is waiting for the store.
func (c *Ideas) Busy(id int64) bool {
	return c.list.busy(id)
}

// Create validates fields, inserts the idea and puts the stored record at
// the head of the local list.
func (c *Ideas) Create(ctx context.Context, fields models.IdeaFields) (*models.GiftIdea, error) {
	in := fields.Normalize(c.recipientID)
	if in.Text == "" {
		return nil, &ValidationError{Field: "text", Message: MsgIdeaTextRequired}
	}

	created, err := c.store.Insert(ctx, in)
	if err != nil {
		c.logger.WithError(err).WithField("op", remote.OpIdeasInsert).Error("Failed to add gift idea")
		return nil, &WriteError{Op: remote.OpIdeasInsert, Err: err}
	}

	c.list.add(*created, true)
	c.logger.WithField("idea_id", created.ID).Info("Gift idea added")
	return created, nil
}

// Update validates fields and writes text and note of idea id.
func (c *Ideas) Update(ctx context.Context, id int64, fields models.IdeaFields) error {
	in := fields.Normalize(0)
	if in.Text == "" {
		return &ValidationError{Field: "text", Message: MsgIdeaTextRequired}
	}

	if err := c.list.acquire(id); err != nil {
		return err
	}
	defer c.list.release(id)

	if err := c.store.Update(ctx, id, in); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"op":      remote.OpIdeasUpdate,
			"idea_id": id,
		}).Error("Failed to update gift idea")
		return &WriteError{Op: remote.OpIdeasUpdate, Err: err}
	}

	c.list.patch(id, func(i *models.GiftIdea) {
		i.Text = in.Text
		i.Note = in.Note
	})
	return nil
}

// Delete removes idea id from the store and then from the local list.
func (c *Ideas) Delete(ctx context.Context, id int64) error {
	if err := c.list.acquire(id); err != nil {
		return err
	}
	defer c.list.release(id)

	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"op":      remote.OpIdeasDelete,
			"idea_id": id,
		}).Error("Failed to delete gift idea")
		return &WriteError{Op: remote.OpIdeasDelete, Err: err}
	}

	c.list.remove(id)
	c.logger.WithField("idea_id", id).Info("Gift idea deleted")
	return nil
}
