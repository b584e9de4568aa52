package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ensure SQLiteBackend implements Backend
var _ Backend = (*SQLiteBackend)(nil)

// SQLiteBackend persists cache entries in a local SQLite database so repeated
// runs against the same site skip the network and the extraction collaborator.
type SQLiteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	ttl_seconds INTEGER NOT NULL
);
`

// NewSQLiteBackend opens (creating if needed) the cache database at dsn.
func NewSQLiteBackend(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Get returns the entry stored under key.
func (b *SQLiteBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT payload, created_at, ttl_seconds FROM cache_entries WHERE key = ?`, key)

	var payload []byte
	var createdUnix, ttlSeconds int64
	if err := row.Scan(&payload, &createdUnix, &ttlSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	return Entry{
		Payload:   payload,
		CreatedAt: time.Unix(createdUnix, 0).UTC(),
		TTL:       time.Duration(ttlSeconds) * time.Second,
	}, true, nil
}

// Set upserts the entry under key.
func (b *SQLiteBackend) Set(ctx context.Context, key string, entry Entry) error {
	_, err := b.db.ExecContext(ctx, `
	INSERT INTO cache_entries (key, payload, created_at, ttl_seconds)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		payload = excluded.payload,
		created_at = excluded.created_at,
		ttl_seconds = excluded.ttl_seconds
	`, key, entry.Payload, entry.CreatedAt.Unix(), int64(entry.TTL.Seconds()))
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Count returns the number of keys with the given prefix.
func (b *SQLiteBackend) Count(ctx context.Context, prefix string) (int, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_entries WHERE key LIKE ? || '%'`, prefix)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
