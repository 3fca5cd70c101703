// Package suggestion provides the suggestion domain model and its SQLite
// data access.
package suggestion

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is where a suggestion is in moderation.
type Status string

const (
	StatusNew      Status = "new"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"

	// StatusUnknown is reported for stored values outside the known set.
	// It is never accepted as input.
	StatusUnknown Status = "unknown"
)

// ParseStatus returns the status named by s.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusNew:
		return StatusNew, true
	case StatusReviewed:
		return StatusReviewed, true
	case StatusResolved:
		return StatusResolved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// statusFromStore maps a stored column value back to a Status.
func statusFromStore(s string) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return StatusUnknown
}

// Priority is the secondary ranking signal. The zero value means unset.
type Priority string

const (
	PriorityUnset  Priority = ""
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// ParsePriority returns the priority named by s. Empty, "none" and
// "unset" clear the priority.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "unset":
		return PriorityUnset, true
	case string(PriorityHigh):
		return PriorityHigh, true
	case string(PriorityNormal):
		return PriorityNormal, true
	case string(PriorityLow):
		return PriorityLow, true
	}
	return "", false
}

// priorityFromStore maps a nullable stored value back to a Priority.
// Unrecognized values read as unset.
func priorityFromStore(s *string) Priority {
	if s == nil {
		return PriorityUnset
	}
	p, ok := ParsePriority(*s)
	if !ok {
		return PriorityUnset
	}
	return p
}

// MarshalJSON encodes an unset priority as null.
func (p Priority) MarshalJSON() ([]byte, error) {
	if p == PriorityUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts null or a priority name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PriorityUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParsePriority(s)
	if !ok {
		return fmt.Errorf("invalid priority %q", s)
	}
	*p = parsed
	return nil
}

// IsHigh reports whether p ranks in the high tier.
func (p Priority) IsHigh() bool { return p == PriorityHigh }

// StoreValue returns the column value for p; nil for unset.
func (p Priority) StoreValue() *string {
	if p == PriorityUnset {
		return nil
	}
	s := string(p)
	return &s
}

// Category is a suggestion's topic label.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryEcology        Category = "ecology"
	CategoryTransport      Category = "transport"
	CategorySafety         Category = "safety"
	CategoryCulture        Category = "culture"
	CategoryOther          Category = "other"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryInfrastructure, CategoryEcology, CategoryTransport,
	CategorySafety, CategoryCulture, CategoryOther,
}

// ParseCategory returns the category named by s. Empty and unrecognized
// labels fall back to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Field length limits, counted in runes.
const (
	MaxNameLen    = 100
	MaxMessageLen = 2000
)

// Suggestion is a community proposal.
type Suggestion struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Message  string    `json:"message"`
	Date     time.Time `json:"date"`
	Likes    int64     `json:"likes"`
	Status   Status    `json:"status"`
	IsPinned bool      `json:"isPinned"`
	Priority Priority  `json:"priority"`
	Category Category  `json:"category"`
}

// Draft is the author-supplied part of a new suggestion.
type Draft struct {
	Name     string
	Message  string
	Category string
}

// Normalize trims the draft and returns the problem with it, if any.
func (d Draft) Normalize() (Draft, string) {
	d.Name = strings.TrimSpace(d.Name)
	d.Message = strings.TrimSpace(d.Message)
	d.Category = string(ParseCategory(d.Category))

	switch {
	case d.Name == "":
		return d, "name is required"
	case d.Message == "":
		return d, "message is required"
	case utf8.RuneCountInString(d.Name) > MaxNameLen:
		return d, "name is too long"
	case utf8.RuneCountInString(d.Message) > MaxMessageLen:
		return d, "message is too long"
	}
	return d, ""
}

// scanSuggestion scans a suggestion from a SQLite row.
func scanSuggestion(row interface{ Scan(...any) error }) (*Suggestion, error) {
	var s Suggestion
	var status, category string
	var priority *string
	var createdAt int64

	err := row.Scan(
		&s.ID, &s.Name, &s.Message, &category, &status,
		&s.IsPinned, &priority, &s.Likes, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = statusFromStore(status)
	s.Priority = priorityFromStore(priority)
	s.Category = ParseCategory(category)
	s.Date = time.Unix(0, createdAt).UTC()

	return &s, nil
}

// FromRow builds a Suggestion from raw column values. Stores other than
// SQLite use it so every backend applies the same enum fallbacks.
func FromRow(id int64, name, message, category, status string, pinned bool,
	priority *string, likes int64, date time.Time) *Suggestion {
	return &Suggestion{
		ID:       id,
		Name:     name,
		Message:  message,
		Date:     date.UTC(),
		Likes:    likes,
		Status:   statusFromStore(status),
		IsPinned: pinned,
		Priority: priorityFromStore(priority),
		Category: ParseCategory(category),
	}
}
