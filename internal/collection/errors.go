package collection

import (
	"context"
	"errors"
	"fmt"
)

// Messages shown next to the forms.
const (
	MsgNameRequired     = "Name is required."
	MsgIdeaTextRequired = "Idea text is required."
	MsgWriteFailed      = "Something went wrong. Please try again."
	MsgIdeaWriteFailed  = "Failed to add idea."

	PromptDeleteRecipient = "Are you sure you want to delete this recipient?"
)

var (
	// ErrBusy is returned while an update or delete of the same item is
	// still waiting for the store.
	ErrBusy = errors.New("a change to this item is still in progress")
	// ErrNotFound is returned when the item is not in the local collection.
	ErrNotFound = errors.New("item not found")
	// ErrConfirmRequired is returned by deletes that need a ConfirmFunc.
	ErrConfirmRequired = errors.New("confirmation required")
)

// ValidationError reports a missing required field. The store is not
// contacted when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// WriteError reports a failed insert, update or delete. Local state is left
// as it was before the call.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ConfirmFunc asks the user a yes/no question and blocks until answered.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Always is a ConfirmFunc that answers yes.
func Always(context.Context, string) (bool, error) { return true, nil }

// Never is a ConfirmFunc that answers no.
func Never(context.Context, string) (bool, error) { return false, nil }

// UserMessage returns the text to show for err returned by a write, or an
// empty string for nil. fallback is used for store failures.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if errors.Is(err, ErrBusy) {
		return "Please wait, the previous change is still being saved."
	}
	return fallback
}
