// Package comment provides the comment domain model and its SQLite data
// access.
package comment

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field length limits, counted in runes.
const (
	MaxAuthorLen = 100
	MaxTextLen   = 1000
)

// Comment is a short reply attached to one suggestion.
type Comment struct {
	ID           int64     `json:"id"`
	SuggestionID int64     `json:"suggestionId"`
	Author       string    `json:"author"`
	Text         string    `json:"text"`
	Date         time.Time `json:"date"`
}

// Draft is the author-supplied part of a new comment.
type Draft struct {
	Author string
	Text   string
}

// Normalize trims the draft and returns the problem with it, if any.
func (d Draft) Normalize() (Draft, string) {
	d.Author = strings.TrimSpace(d.Author)
	d.Text = strings.TrimSpace(d.Text)

	switch {
	case d.Author == "":
		return d, "author is required"
	case d.Text == "":
		return d, "text is required"
	case utf8.RuneCountInString(d.Author) > MaxAuthorLen:
		return d, "author is too long"
	case utf8.RuneCountInString(d.Text) > MaxTextLen:
		return d, "text is too long"
	}
	return d, ""
}

func scanComment(row interface{ Scan(...any) error }) (*Comment, error) {
	var c Comment
	var createdAt int64
	if err := row.Scan(&c.ID, &c.SuggestionID, &c.Author, &c.Text, &createdAt); err != nil {
		return nil, err
	}
	c.Date = time.Unix(0, createdAt).UTC()
	return &c, nil
}
