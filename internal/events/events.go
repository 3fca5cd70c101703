// Package events defines the board's domain events and an asynchronous
// in-process bus that fans them out to subscribers.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	SuggestionCreated   Type = "suggestion.created"
	SuggestionDeleted   Type = "suggestion.deleted"
	SuggestionLiked     Type = "suggestion.liked"
	SuggestionModerated Type = "suggestion.moderated"
	CommentAdded        Type = "comment.added"
)

// Event is one change to the board, delivered after the write commits.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Type         Type      `json:"type"`
	SuggestionID int64     `json:"suggestionId"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      any       `json:"payload,omitempty"`
}

// New builds an event with a fresh id.
func New(t Type, suggestionID int64, payload any) Event {
	return Event{
		ID:           uuid.New(),
		Type:         t,
		SuggestionID: suggestionID,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}
}

// Moderation is the payload of SuggestionModerated.
type Moderation struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Likes is the payload of SuggestionLiked.
type Likes struct {
	Likes int64 `json:"likes"`
}
