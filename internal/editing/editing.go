// Package editing implements per-item inline edit sessions. Edit state is
// kept in a map keyed by item id, apart from the committed entities.
package editing

import (
	"context"
	"errors"
	"sync"
)

// Mode is the presentation state of one list item.
type Mode int

const (
	View Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "view"
}

// ErrNotEditing is returned when a draft operation targets an item in View.
var ErrNotEditing = errors.New("item is not being edited")

// CommitFunc persists a draft. A nil error moves the item back to View.
type CommitFunc[D any] func(ctx context.Context, draft D) error

// Controller holds the edit sessions of one list. D is the draft type. Items
// edit independently; any number of them may be in Editing at once.
type Controller[D any] struct {
	mu     sync.Mutex
	drafts map[int64]*D
}

// New creates a Controller with every item in View.
func New[D any]() *Controller[D] {
	return &Controller[D]{drafts: make(map[int64]*D)}
}

// Begin moves id to Editing with a draft copied from committed. A draft left
// over from an earlier session is replaced.
func (c *Controller[D]) Begin(id int64, committed D) {
	c.mu.Lock()
	defer c.mu.Unlock()
	draft := committed
	c.drafts[id] = &draft
}

// Cancel discards the draft of id. Cancelling an item in View does nothing.
func (c *Controller[D]) Cancel(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, id)
}

// Forget drops any state held for id, e.g. after the item was removed.
func (c *Controller[D]) Forget(id int64) {
	c.Cancel(id)
}

// Mode returns the presentation state of id.
func (c *Controller[D]) Mode(id int64) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.drafts[id]; ok {
		return Editing
	}
	return View
}

// Draft returns a copy of the draft of id.
func (c *Controller[D]) Draft(id int64) (D, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drafts[id]
	if !ok {
		var zero D
		return zero, false
	}
	return *d, true
}

// Change applies fn to the draft of id. Committed values are never touched.
func (c *Controller[D]) Change(id int64, fn func(*D)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drafts[id]
	if !ok {
		return ErrNotEditing
	}
	fn(d)
	return nil
}

// Save hands the current draft of id to commit. On success the item returns
// to View. On failure it stays in Editing with the draft as last edited, and
// the commit error is returned.
func (c *Controller[D]) Save(ctx context.Context, id int64, commit CommitFunc[D]) error {
	c.mu.Lock()
	session, ok := c.drafts[id]
	if !ok {
		c.mu.Unlock()
		return ErrNotEditing
	}
	draft := *session
	c.mu.Unlock()

	if err := commit(ctx, draft); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A session begun again while the commit was in flight keeps its draft.
	if c.drafts[id] == session {
		delete(c.drafts, id)
	}
	return nil
}

// Editing returns the ids currently in Editing.
func (c *Controller[D]) Editing() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.drafts))
	for id := range c.drafts {
		ids = append(ids, id)
	}
	return ids
}
