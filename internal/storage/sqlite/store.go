// Package sqlite implements board.Store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/db"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// Store composes the suggestion and comment repositories.
type Store struct {
	db          *sql.DB
	suggestions *suggestion.Repository
	comments    *comment.Repository
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store over an open database.
func New(d *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:          d,
		suggestions: suggestion.NewRepository(d),
		comments:    comment.NewRepository(d),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the database at path and returns a store over it.
func Open(path string, opts ...Option) (*Store, error) {
	d, err := db.Open(path)
	if err != nil {
		return nil, apperr.Unavailable("store.open", err)
	}
	return New(d, opts...), nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) CreateSuggestion(ctx context.Context, d suggestion.Draft) (*suggestion.Suggestion, error) {
	return s.suggestions.Insert(ctx, d, s.now().UTC())
}

func (s *Store) GetSuggestion(ctx context.Context, id int64) (*suggestion.Suggestion, error) {
	return s.suggestions.GetByID(ctx, id)
}

func (s *Store) DeleteSuggestion(ctx context.Context, id int64) error {
	return s.suggestions.Delete(ctx, id)
}

func (s *Store) IncrementLikes(ctx context.Context, id int64) (int64, error) {
	return s.suggestions.IncrementLikes(ctx, id)
}

func (s *Store) SetPinned(ctx context.Context, id int64, pinned bool) (*suggestion.Suggestion, bool, error) {
	return s.suggestions.SetPinned(ctx, id, pinned)
}

func (s *Store) SetPriority(ctx context.Context, id int64, p suggestion.Priority) (*suggestion.Suggestion, bool, error) {
	return s.suggestions.SetPriority(ctx, id, p)
}

func (s *Store) SetStatus(ctx context.Context, id int64, st suggestion.Status) (*suggestion.Suggestion, bool, error) {
	return s.suggestions.SetStatus(ctx, id, st)
}

func (s *Store) AddComment(ctx context.Context, suggestionID int64, d comment.Draft) (*comment.Comment, error) {
	return s.comments.Add(ctx, suggestionID, d, s.now().UTC())
}

// CommentsFor checks the suggestion exists and reads its comments in one
// transaction, so a concurrent delete is seen either fully or not at all.
func (s *Store) CommentsFor(ctx context.Context, suggestionID int64) ([]*comment.Comment, error) {
	var out []*comment.Comment
	err := db.ReadTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := suggestion.NewRepository(tx).Exists(ctx, suggestionID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("comment.list", "suggestion %d not found", suggestionID)
		}
		out, err = comment.NewRepository(tx).ListBySuggestionID(ctx, suggestionID)
		return err
	})
	if err != nil {
		return nil, db.Classify("store.comments_for", err)
	}
	return out, nil
}

// Snapshot reads both tables inside one read transaction.
func (s *Store) Snapshot(ctx context.Context) ([]*suggestion.Suggestion, []*comment.Comment, error) {
	var (
		suggestions []*suggestion.Suggestion
		comments    []*comment.Comment
	)
	err := db.ReadTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if suggestions, err = suggestion.NewRepository(tx).List(ctx); err != nil {
			return err
		}
		comments, err = comment.NewRepository(tx).ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, nil, db.Classify("store.snapshot", err)
	}
	return suggestions, comments, nil
}
