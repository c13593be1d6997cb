package models

import (
	"strings"
	"time"
)

// Recipient represents a person the user collects gift ideas for
type Recipient struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Occasion  *string   `json:"occasion" db:"occasion"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OccasionOr returns the occasion or fallback when it is absent.
func (r *Recipient) OccasionOr(fallback string) string {
	if r.Occasion == nil {
		return fallback
	}
	return *r.Occasion
}

// RecipientSummary is a recipient together with the number of gift ideas
// recorded for it when the list was loaded. IdeaCount is never persisted.
type RecipientSummary struct {
	Recipient
	IdeaCount int `json:"idea_count"`
}

// RecipientInput carries the mutable recipient fields to the store.
type RecipientInput struct {
	Name     string  `json:"name"`
	Occasion *string `json:"occasion"`
}

// RecipientFields is the raw form or draft state of a recipient.
type RecipientFields struct {
	Name     string
	Occasion string
}

// RecipientFieldsOf returns the fields of a committed recipient, used to seed
// an edit draft.
func RecipientFieldsOf(r Recipient) RecipientFields {
	return RecipientFields{Name: r.Name, Occasion: r.OccasionOr("")}
}

// Normalize trims the fields. An empty occasion becomes nil.
func (f RecipientFields) Normalize() RecipientInput {
	return RecipientInput{
		Name:     strings.TrimSpace(f.Name),
		Occasion: OptionalString(f.Occasion),
	}
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
