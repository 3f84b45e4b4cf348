package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/privchat/internal/storage"
)

// KV implements storage.Store on a single kv table. Values are stored as
// text regardless of the raw flag; Get hands serialized records back as
// strings and lets the adapter's decoding take it from there.
type KV struct{ db *DB }

var _ storage.Store = (*KV)(nil)

// NewKV constructs a Postgres-backed store.
func NewKV(db *DB) *KV { return &KV{db: db} }

// Get selects the value for key. Absent keys return (nil, nil).
func (s *KV) Get(ctx context.Context, key string, _ bool) (any, error) {
	const q = `SELECT value FROM kv WHERE key=$1`
	var value string
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Set upserts the value for key.
func (s *KV) Set(ctx context.Context, key string, value any, _ bool) error {
	const q = `
INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := s.db.Pool.Exec(ctx, q, key, asText(value))
	return err
}

// asText coerces the stored value to its textual form. Services write
// strings (password scalars and serialized records); anything else is
// serialized as JSON.
func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return storage.Encode(t)
	}
}
