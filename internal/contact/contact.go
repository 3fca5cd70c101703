// Package contact holds the contact form a visitor sends to the board's
// moderators.
package contact

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field length limits, counted in runes.
const (
	MaxNameLen    = 100
	MaxReplyToLen = 200
	MaxMessageLen = 2000
)

// Message is a contact form submission. ReplyTo is free text: a phone
// number, an email address or a Telegram handle.
type Message struct {
	Name     string    `json:"name"`
	ReplyTo  string    `json:"contact"`
	Message  string    `json:"message"`
	Received time.Time `json:"received"`
}

// Normalize trims the message and returns the problem with it, if any.
func (m Message) Normalize() (Message, string) {
	m.Name = strings.TrimSpace(m.Name)
	m.ReplyTo = strings.TrimSpace(m.ReplyTo)
	m.Message = strings.TrimSpace(m.Message)

	switch {
	case m.Name == "":
		return m, "name is required"
	case m.ReplyTo == "":
		return m, "contact is required"
	case m.Message == "":
		return m, "message is required"
	case utf8.RuneCountInString(m.Name) > MaxNameLen:
		return m, "name is too long"
	case utf8.RuneCountInString(m.ReplyTo) > MaxReplyToLen:
		return m, "contact is too long"
	case utf8.RuneCountInString(m.Message) > MaxMessageLen:
		return m, "message is too long"
	}
	return m, ""
}
