package models

import (
	"strings"
	"time"
)

// User represents an account of the gift store
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DisplayName returns the best display name for the user
func (u *User) DisplayName() string {
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// Session is an authenticated session issued by the store
type Session struct {
	User        User      `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the access token is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}
