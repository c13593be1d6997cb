package remote

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("store unavailable")
)

// AuthError is returned by sign-in and sign-up. Message is the provider text
// shown to the user as is.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// StoreError describes a failed collection call.
type StoreError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// AuthMessage returns the user-facing text of an authentication failure.
func AuthMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return "Service is unavailable. Please try again later."
	}
	return "Something went wrong. Please try again."
}
