package suggestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/db"
)

// Repository provides SQLite data access for suggestions. It runs against
// a *sql.DB or a *sql.Tx.
type Repository struct {
	q db.Querier
}

// NewRepository creates a suggestion repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

const selectColumns = `id, name, message, category, status, is_pinned, priority, likes, created_at`

// Insert adds a new suggestion with default moderation state.
func (r *Repository) Insert(ctx context.Context, d Draft, createdAt time.Time) (*Suggestion, error) {
	row := r.q.QueryRowContext(ctx,
		`INSERT INTO suggestions (name, message, category, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+selectColumns,
		d.Name, d.Message, string(ParseCategory(d.Category)), createdAt.UnixNano(),
	)
	s, err := scanSuggestion(row)
	if err != nil {
		return nil, db.Classify("suggestion.insert", fmt.Errorf("inserting suggestion: %w", err))
	}
	return s, nil
}

// GetByID returns a suggestion by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Suggestion, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM suggestions WHERE id = ?", id)

	s, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("suggestion.get", "suggestion %d not found", id)
	}
	if err != nil {
		return nil, db.Classify("suggestion.get", fmt.Errorf("querying suggestion %d: %w", id, err))
	}
	return s, nil
}

// Exists reports whether a suggestion with id exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, "SELECT 1 FROM suggestions WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, db.Classify("suggestion.exists", fmt.Errorf("checking suggestion %d: %w", id, err))
	}
	return true, nil
}

// List returns every suggestion in insertion order. Ranking is applied by
// the caller.
func (r *Repository) List(ctx context.Context) (list []*Suggestion, err error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+selectColumns+" FROM suggestions ORDER BY id")
	if err != nil {
		return nil, db.Classify("suggestion.list", fmt.Errorf("listing suggestions: %w", err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = db.Classify("suggestion.list", fmt.Errorf("closing rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, db.Classify("suggestion.list", fmt.Errorf("scanning suggestion: %w", err))
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Classify("suggestion.list", fmt.Errorf("iterating suggestions: %w", err))
	}

	return list, nil
}

// IncrementLikes atomically adds one like and returns the new count.
func (r *Repository) IncrementLikes(ctx context.Context, id int64) (int64, error) {
	var likes int64
	err := r.q.QueryRowContext(ctx,
		"UPDATE suggestions SET likes = likes + 1 WHERE id = ? RETURNING likes", id,
	).Scan(&likes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("suggestion.like", "suggestion %d not found", id)
	}
	if err != nil {
		return 0, db.Classify("suggestion.like", fmt.Errorf("incrementing likes: %w", err))
	}
	return likes, nil
}

// SetPinned sets the pin flag. It returns the updated suggestion and
// whether the stored value changed.
func (r *Repository) SetPinned(ctx context.Context, id int64, pinned bool) (*Suggestion, bool, error) {
	return r.apply(ctx, "suggestion.pin", "is_pinned", id, pinned)
}

// SetPriority sets or clears the priority.
func (r *Repository) SetPriority(ctx context.Context, id int64, p Priority) (*Suggestion, bool, error) {
	return r.apply(ctx, "suggestion.priority", "priority", id, p.StoreValue())
}

// SetStatus sets the moderation status.
func (r *Repository) SetStatus(ctx context.Context, id int64, st Status) (*Suggestion, bool, error) {
	return r.apply(ctx, "suggestion.status", "status", id, string(st))
}

// apply writes one moderation column in a single statement that only
// matches when the value differs. When nothing matched, the row is read
// back to tell an unchanged suggestion from a missing one.
func (r *Repository) apply(ctx context.Context, op, column string, id int64, value any) (*Suggestion, bool, error) {
	query := fmt.Sprintf(
		"UPDATE suggestions SET %[1]s = ? WHERE id = ? AND %[1]s IS NOT ? RETURNING %[2]s",
		column, selectColumns,
	)
	s, err := scanSuggestion(r.q.QueryRowContext(ctx, query, value, id, value))
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, db.Classify(op, fmt.Errorf("updating %s: %w", column, err))
	}

	s, err = r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return s, false, nil
}

// Delete removes a suggestion by ID. Comments cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM suggestions WHERE id = ?", id)
	if err != nil {
		return db.Classify("suggestion.delete", fmt.Errorf("deleting suggestion: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return db.Classify("suggestion.delete", fmt.Errorf("checking rows affected: %w", err))
	}
	if rows == 0 {
		return apperr.NotFound("suggestion.delete", "suggestion %d not found", id)
	}

	return nil
}
