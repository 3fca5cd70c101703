package comment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/db"
)

// Repository provides SQLite data access for comments.
type Repository struct {
	q db.Querier
}

// NewRepository creates a comment repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

const selectColumns = `id, suggestion_id, author, text, created_at`

// Add stores a comment on a suggestion. The foreign key rejects a missing
// suggestion in the same statement, so a concurrent delete cannot leave an
// orphan behind.
func (r *Repository) Add(ctx context.Context, suggestionID int64, d Draft, at time.Time) (*Comment, error) {
	row := r.q.QueryRowContext(ctx,
		`INSERT INTO suggestion_comments (suggestion_id, author, text, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+selectColumns,
		suggestionID, d.Author, d.Text, at.UnixNano(),
	)
	c, err := scanComment(row)
	if db.IsForeignKeyViolation(err) {
		return nil, apperr.NotFound("comment.add", "suggestion %d not found", suggestionID)
	}
	if err != nil {
		return nil, db.Classify("comment.add", fmt.Errorf("inserting comment: %w", err))
	}
	return c, nil
}

// ListBySuggestionID returns the comments on one suggestion, oldest first.
func (r *Repository) ListBySuggestionID(ctx context.Context, suggestionID int64) ([]*Comment, error) {
	return r.query(ctx, "comment.list",
		"SELECT "+selectColumns+" FROM suggestion_comments WHERE suggestion_id = ? ORDER BY created_at, id",
		suggestionID,
	)
}

// ListAll returns every comment, oldest first.
func (r *Repository) ListAll(ctx context.Context) ([]*Comment, error) {
	return r.query(ctx, "comment.list_all",
		"SELECT "+selectColumns+" FROM suggestion_comments ORDER BY created_at, id",
	)
}

func (r *Repository) query(ctx context.Context, op, query string, args ...any) (comments []*Comment, err error) {
	var rows *sql.Rows
	rows, err = r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(op, fmt.Errorf("listing comments: %w", err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = db.Classify(op, fmt.Errorf("closing rows: %w", closeErr))
		}
	}()

	comments = []*Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, db.Classify(op, fmt.Errorf("scanning comment: %w", err))
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Classify(op, fmt.Errorf("iterating comments: %w", err))
	}

	return comments, nil
}
