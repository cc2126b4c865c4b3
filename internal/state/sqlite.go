// Package state persists session data in a local SQLite database.
//
// The database holds named blobs, each replaced wholesale on write. Bookmarks
// are stored this way under session.BookmarksKey.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	// SQLite driver
	_ "modernc.org/sqlite"
)

var errNotOpen = errors.New("database not opened")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore is a named-blob store backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new, unopened store.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewWithDB wraps an already open database. The schema is assumed to exist.
func NewWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens the database at path, creating parent directories, and runs
// migrations. Use MemoryPath for a throwaway database.
func (s *SQLiteStore) Open(path string) error {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection: an in-memory database is per connection, and a single
	// writer avoids SQLITE_BUSY on file databases.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := MigrateWithDB(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.path = path
	s.logger.Debug("state store opened", slog.String("path", path))
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path passed to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// GetBlob returns the named blob and whether it exists.
func (s *SQLiteStore) GetBlob(ctx context.Context, name string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, errNotOpen
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %q: %w", name, err)
	}
	return data, true, nil
}

// PutBlob replaces the named blob.
func (s *SQLiteStore) PutBlob(ctx context.Context, name string, data []byte) error {
	if s.db == nil {
		return errNotOpen
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to write blob %q: %w", name, err)
	}

	s.logger.Debug("blob written", slog.String("name", name), slog.Int("bytes", len(data)))
	return nil
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Name      string
	Size      int
	UpdatedAt time.Time
}

// ListBlobs returns every stored blob's metadata ordered by name.
func (s *SQLiteStore) ListBlobs(ctx context.Context) ([]BlobInfo, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, length(data), updated_at FROM blobs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []BlobInfo
	for rows.Next() {
		var info BlobInfo
		var updated string
		if err := rows.Scan(&info.Name, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan blob: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}
