// Package postgres implements board.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	codeForeignKeyViolation = "23503"
	selectSuggestion        = `id, name, message, category, status, is_pinned, priority, likes, created_at`
	selectComment           = `id, suggestion_id, author, text, created_at`
)

// Store is a PostgreSQL-backed board store. Row-level locking lets writes
// to different suggestions proceed in parallel.
type Store struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// Open connects to dsn, runs migrations and returns a store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperr.Unavailable("store.open", fmt.Errorf("creating pool: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperr.Unavailable("store.open", fmt.Errorf("pinging database: %w", err))
	}

	s := &Store{pool: pool, sqlDB: stdlib.OpenDBFromPool(pool)}
	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.sqlDB, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// DB returns a database/sql handle sharing the pool, for components that
// are written against database/sql.
func (s *Store) DB() *sql.DB { return s.sqlDB }

// Close releases the pool.
func (s *Store) Close() error {
	err := s.sqlDB.Close()
	s.pool.Close()
	return err
}

func (s *Store) CreateSuggestion(ctx context.Context, d suggestion.Draft) (*suggestion.Suggestion, error) {
	row := s.pool.QueryRow(ctx, `
INSERT INTO suggestions (name, message, category)
VALUES ($1, $2, $3)
RETURNING `+selectSuggestion,
		d.Name, d.Message, string(suggestion.ParseCategory(d.Category)),
	)
	sug, err := scanSuggestion(row)
	if err != nil {
		return nil, classify("suggestion.insert", err)
	}
	return sug, nil
}

func (s *Store) GetSuggestion(ctx context.Context, id int64) (*suggestion.Suggestion, error) {
	return getSuggestion(ctx, s.pool, id)
}

func (s *Store) DeleteSuggestion(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM suggestions WHERE id = $1`, id)
	if err != nil {
		return classify("suggestion.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("suggestion.delete", "suggestion %d not found", id)
	}
	return nil
}

func (s *Store) IncrementLikes(ctx context.Context, id int64) (int64, error) {
	var likes int64
	err := s.pool.QueryRow(ctx,
		`UPDATE suggestions SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id,
	).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("suggestion.like", "suggestion %d not found", id)
	}
	if err != nil {
		return 0, classify("suggestion.like", err)
	}
	return likes, nil
}

func (s *Store) SetPinned(ctx context.Context, id int64, pinned bool) (*suggestion.Suggestion, bool, error) {
	return s.apply(ctx, "suggestion.pin", "is_pinned", id, pinned)
}

func (s *Store) SetPriority(ctx context.Context, id int64, p suggestion.Priority) (*suggestion.Suggestion, bool, error) {
	return s.apply(ctx, "suggestion.priority", "priority", id, p.StoreValue())
}

func (s *Store) SetStatus(ctx context.Context, id int64, st suggestion.Status) (*suggestion.Suggestion, bool, error) {
	return s.apply(ctx, "suggestion.status", "status", id, string(st))
}

func (s *Store) apply(ctx context.Context, op, column string, id int64, value any) (*suggestion.Suggestion, bool, error) {
	query := fmt.Sprintf(
		`UPDATE suggestions SET %[1]s = $1 WHERE id = $2 AND %[1]s IS DISTINCT FROM $1 RETURNING %[2]s`,
		column, selectSuggestion,
	)
	sug, err := scanSuggestion(s.pool.QueryRow(ctx, query, value, id))
	if err == nil {
		return sug, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, classify(op, err)
	}

	sug, err = getSuggestion(ctx, s.pool, id)
	if err != nil {
		return nil, false, err
	}
	return sug, false, nil
}

func (s *Store) AddComment(ctx context.Context, suggestionID int64, d comment.Draft) (*comment.Comment, error) {
	row := s.pool.QueryRow(ctx, `
INSERT INTO suggestion_comments (suggestion_id, author, text)
VALUES ($1, $2, $3)
RETURNING `+selectComment,
		suggestionID, d.Author, d.Text,
	)
	c, err := scanComment(row)
	if isForeignKeyViolation(err) {
		return nil, apperr.NotFound("comment.add", "suggestion %d not found", suggestionID)
	}
	if err != nil {
		return nil, classify("comment.add", err)
	}
	return c, nil
}

func (s *Store) CommentsFor(ctx context.Context, suggestionID int64) ([]*comment.Comment, error) {
	var out []*comment.Comment
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM suggestions WHERE id = $1)`, suggestionID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("comment.list", "suggestion %d not found", suggestionID)
		}

		var err error
		out, err = queryComments(ctx, tx,
			`SELECT `+selectComment+` FROM suggestion_comments WHERE suggestion_id = $1 ORDER BY created_at, id`,
			suggestionID,
		)
		return err
	})
	if err != nil {
		return nil, classify("store.comments_for", err)
	}
	return out, nil
}

// Snapshot reads both tables in one REPEATABLE READ transaction.
func (s *Store) Snapshot(ctx context.Context) ([]*suggestion.Suggestion, []*comment.Comment, error) {
	var (
		suggestions []*suggestion.Suggestion
		comments    []*comment.Comment
	)
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		var err error
		if suggestions, err = querySuggestions(ctx, tx); err != nil {
			return err
		}
		comments, err = queryComments(ctx, tx,
			`SELECT `+selectComment+` FROM suggestion_comments ORDER BY created_at, id`)
		return err
	})
	if err != nil {
		return nil, nil, classify("store.snapshot", err)
	}
	return suggestions, comments, nil
}

func (s *Store) readTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("beginning read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	return fn(tx)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getSuggestion(ctx context.Context, q queryer, id int64) (*suggestion.Suggestion, error) {
	sug, err := scanSuggestion(q.QueryRow(ctx, `SELECT `+selectSuggestion+` FROM suggestions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("suggestion.get", "suggestion %d not found", id)
	}
	if err != nil {
		return nil, classify("suggestion.get", err)
	}
	return sug, nil
}

func querySuggestions(ctx context.Context, q queryer) ([]*suggestion.Suggestion, error) {
	rows, err := q.Query(ctx, `SELECT `+selectSuggestion+` FROM suggestions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*suggestion.Suggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sug)
	}
	return out, rows.Err()
}

func queryComments(ctx context.Context, q queryer, query string, args ...any) ([]*comment.Comment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*comment.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanSuggestion(row pgx.Row) (*suggestion.Suggestion, error) {
	var (
		id                              int64
		name, message, category, status string
		pinned                          bool
		priority                        *string
		likes                           int64
		createdAt                       time.Time
	)
	if err := row.Scan(&id, &name, &message, &category, &status, &pinned, &priority, &likes, &createdAt); err != nil {
		return nil, err
	}
	return suggestion.FromRow(id, name, message, category, status, pinned, priority, likes, createdAt), nil
}

func scanComment(row pgx.Row) (*comment.Comment, error) {
	var c comment.Comment
	if err := row.Scan(&c.ID, &c.SuggestionID, &c.Author, &c.Text, &c.Date); err != nil {
		return nil, err
	}
	c.Date = c.Date.UTC()
	return &c, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// classify maps connection failures to Unavailable and context errors to
// Timeout. Already classified errors pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return apperr.Unavailable(op, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.Unavailable(op, err)
	}
	return apperr.FromContext(op, err)
}
