package models

import (
	"strings"
	"time"
)

// GiftIdea represents a gift idea recorded for one recipient
type GiftIdea struct {
	ID          int64     `json:"id" db:"id"`
	RecipientID int64     `json:"recipient_id" db:"recipient_id"`
	Text        string    `json:"text" db:"text"`
	Note        *string   `json:"note" db:"note"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NoteOr returns the note or fallback when it is absent.
func (i *GiftIdea) NoteOr(fallback string) string {
	if i.Note == nil {
		return fallback
	}
	return *i.Note
}

// IdeaInput carries gift idea fields to the store. RecipientID is only
// honoured on insert.
type IdeaInput struct {
	RecipientID int64   `json:"recipient_id,omitempty"`
	Text        string  `json:"text"`
	Note        *string `json:"note"`
}

// IdeaFields is the raw form or draft state of a gift idea.
type IdeaFields struct {
	Text string
	Note string
}

// IdeaFieldsOf returns the fields of a committed idea, used to seed an edit
// draft.
func IdeaFieldsOf(i GiftIdea) IdeaFields {
	return IdeaFields{Text: i.Text, Note: i.NoteOr("")}
}

// Normalize trims the fields. An empty note becomes nil.
func (f IdeaFields) Normalize(recipientID int64) IdeaInput {
	return IdeaInput{
		RecipientID: recipientID,
		Text:        strings.TrimSpace(f.Text),
		Note:        OptionalString(f.Note),
	}
}
