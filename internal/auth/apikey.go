package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/evcraddock/suggestion-board/internal/apperr"
)

const (
	apiKeyBytes  = 32 // 256-bit keys
	apiKeyPrefix = "sb_"
)

// APIKey is the stored representation of an API key (no raw key).
type APIKey struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix"` // first 8 chars for identification
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// APIKeyStore manages moderator API keys. Queries use $N placeholders so
// the store runs on both the sqlite3 and pgx database/sql drivers.
type APIKeyStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewAPIKeyStore creates an API key store.
func NewAPIKeyStore(db *sql.DB) *APIKeyStore {
	return &APIKeyStore{db: db, now: time.Now}
}

// Create generates a new API key with the given name.
// Returns the raw key (shown once to user) and the stored record.
func (s *APIKeyStore) Create(ctx context.Context, name string) (string, *APIKey, error) {
	if name == "" {
		return "", nil, apperr.Validation("apikey.create", "key name is required")
	}

	raw, err := generateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("generating key: %w", err)
	}

	key := &APIKey{
		Name:      name,
		KeyPrefix: raw[:8],
		CreatedAt: time.Unix(s.now().Unix(), 0).UTC(),
	}

	err = s.db.QueryRowContext(ctx,
		"INSERT INTO api_keys (name, key_prefix, key_hash, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		key.Name, key.KeyPrefix, hashAPIKey(raw), key.CreatedAt.Unix(),
	).Scan(&key.ID)
	if err != nil {
		return "", nil, fmt.Errorf("storing key: %w", err)
	}

	return raw, key, nil
}

// List returns all API keys (without the raw key), newest first.
func (s *APIKeyStore) List(ctx context.Context) (keys []APIKey, err error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, key_prefix, created_at, last_used_at FROM api_keys ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	keys = []APIKey{}
	for rows.Next() {
		var k APIKey
		var created int64
		var lastUsed sql.NullInt64
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyPrefix, &created, &lastUsed); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		k.CreatedAt = time.Unix(created, 0).UTC()
		if lastUsed.Valid {
			t := time.Unix(lastUsed.Int64, 0).UTC()
			k.LastUsedAt = &t
		}
		keys = append(keys, k)
	}

	return keys, rows.Err()
}

// Delete removes an API key by ID.
func (s *APIKeyStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM api_keys WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("apikey.delete", "key %d not found", id)
	}

	return nil
}

// Validate checks a raw API key against stored hashes and updates
// last_used_at. It returns the key's name, or "" when the key is unknown.
func (s *APIKeyStore) Validate(ctx context.Context, rawKey string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"UPDATE api_keys SET last_used_at = $1 WHERE key_hash = $2 RETURNING name",
		s.now().Unix(), hashAPIKey(rawKey),
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("validating key: %w", err)
	}
	return name, nil
}

func generateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}

func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
