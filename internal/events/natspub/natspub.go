// Package natspub forwards board events to NATS.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/events"
)

// SubjectPrefix is prepended to the event type to form the subject.
const SubjectPrefix = "board."

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher publishes each event as a JSON message on
// board.<event type>. A nil Publisher is a no-op.
type Publisher struct {
	conn Conn
	log  *zap.Logger
}

// New creates a publisher over an existing connection.
func New(conn Conn, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{conn: conn, log: log}
}

// Connect dials url and returns a publisher and the connection so the
// caller can drain it on shutdown.
func Connect(url string, log *zap.Logger) (*Publisher, *nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("suggestion-board"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return New(nc, log), nc, nil
}

// Subject returns the subject an event type is published on.
func Subject(t events.Type) string {
	return SubjectPrefix + string(t)
}

// Handle implements events.Handler.
func (p *Publisher) Handle(_ context.Context, e events.Event) error {
	if p == nil || p.conn == nil {
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", e.ID, err)
	}
	if err := p.conn.Publish(Subject(e.Type), data); err != nil {
		return fmt.Errorf("publishing %s: %w", Subject(e.Type), err)
	}

	p.log.Debug("event published",
		zap.String("subject", Subject(e.Type)),
		zap.String("event_id", e.ID.String()),
	)
	return nil
}
