package metacache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"stremsync/internal/logging"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta_cache (
	id         TEXT PRIMARY KEY,
	media_type TEXT NOT NULL,
	payload    BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store is the SQLite-backed metadata cache.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open connects to the cache database at path, creating the file, its
// parent directory and the schema as needed.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "metacache")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached payload for id when one exists and was
// fetched no longer than maxAge ago. maxAge <= 0 disables the age
// check.
func (s *Store) Get(ctx context.Context, id string, maxAge time.Duration) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	var (
		payload   []byte
		fetchedAt int64
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT payload, fetched_at FROM meta_cache WHERE id = ?", id,
		).Scan(&payload, &fetchedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	if maxAge > 0 && time.Since(time.UnixMilli(fetchedAt)) > maxAge {
		return nil, false, nil
	}
	return payload, true, nil
}

// Put stores or replaces the payload for id, stamping it as fetched
// now.
func (s *Store) Put(ctx context.Context, id, mediaType string, payload []byte) error {
	if s == nil || s.db == nil {
		return nil
	}
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			"INSERT OR REPLACE INTO meta_cache (id, media_type, payload, fetched_at) VALUES (?, ?, ?, ?)",
			id, mediaType, payload, time.Now().UnixMilli())
		return execErr
	})
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	s.logger.Debug("cached metadata", logging.String(logging.FieldItemID, id), logging.String("media_type", mediaType))
	return nil
}

// Delete removes the entry for id. Missing entries are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, "DELETE FROM meta_cache WHERE id = ?", id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear drops every cached entry.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, "DELETE FROM meta_cache")
		return execErr
	})
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
