// Package sqlite provides a single-file durable tier for deployments without
// Redis.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/wincounter/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL
)`

// DurableStore keeps session records in a SQLite key-value table. Expiry is
// checked on read against the injected clock; expired rows are purged on
// Open and overwritten by the next Put.
type DurableStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

var _ domain.DurableStore = (*DurableStore)(nil)

// Open opens (or creates) the database at path and prepares the schema.
func Open(ctx context.Context, path string, clock clockwork.Clock) (*DurableStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	s := &DurableStore{db: db, clock: clock}
	if _, err := s.DeleteExpired(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DurableStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE key = ? AND expires_at > ?",
		key, s.clock.Now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return value, nil
}

func (s *DurableStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.clock.Now().Add(ttl).UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite put %s: %w", key, err)
	}
	return nil
}

func (s *DurableStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DeleteExpired removes rows whose TTL has passed and returns how many.
func (s *DurableStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE expires_at <= ?", s.clock.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired rows: %w", err)
	}
	return res.RowsAffected()
}

func (s *DurableStore) Close() error {
	return s.db.Close()
}
