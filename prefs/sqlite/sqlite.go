// Package sqlite provides a preference store backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/meigma/saveblob/prefs"
)

const schema = `CREATE TABLE IF NOT EXISTS prefs (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const timeFormat = time.RFC3339Nano

// Store implements prefs.Store using a single SQLite table.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNow sets the clock used to stamp updated rows.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens a SQLite store at path. Use ":memory:" for a private in-memory
// database.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create prefs table: %w", err)
	}

	s := &Store{sqlDB: sqlDB, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get implements prefs.Store.
func (s *Store) Get(key string) (string, error) {
	return s.GetContext(context.Background(), key)
}

// GetContext is Get with a context.
func (s *Store) GetContext(ctx context.Context, key string) (string, error) {
	var value string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", prefs.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get pref %q: %w", key, err)
	}
	return value, nil
}

// Set implements prefs.Store.
func (s *Store) Set(key, value string) error {
	return s.SetContext(context.Background(), key, value)
}

// SetContext is Set with a context.
func (s *Store) SetContext(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("pref key is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("set pref %q: %w", key, err)
	}
	return nil
}

// Delete implements prefs.Store.
func (s *Store) Delete(key string) error {
	return s.DeleteContext(context.Background(), key)
}

// DeleteContext is Delete with a context.
func (s *Store) DeleteContext(ctx context.Context, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete pref %q: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var raw string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT updated_at FROM prefs WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, prefs.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get pref %q: %w", key, err)
	}
	return time.Parse(timeFormat, raw)
}

var _ prefs.Store = (*Store)(nil)
