// Package bolt provides a preference store backed by a bbolt database file.
package bolt

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/meigma/saveblob/prefs"
)

var bucketPrefs = []byte("prefs")

// Store implements prefs.Store using a single bbolt bucket.
type Store struct {
	db      *bbolt.DB
	logger  *slog.Logger
	timeout time.Duration
	noSync  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout sets how long Open waits for the file lock. Defaults to 1s.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// WithNoSync disables fsync per transaction. Use only in tests.
func WithNoSync(noSync bool) Option {
	return func(s *Store) {
		s.noSync = noSync
	}
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger:  slog.New(slog.DiscardHandler),
		timeout: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: s.timeout,
		NoSync:  s.noSync,
	})
	if err != nil {
		return nil, fmt.Errorf("opening prefs database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPrefs)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket %s: %w", bucketPrefs, err)
	}
	s.db = db

	s.logger.Debug("opened prefs database", slog.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Debug("closing prefs database")
	return s.db.Close()
}

// Get implements prefs.Store.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPrefs)
		if bucket == nil {
			return prefs.ErrNotFound
		}
		v := bucket.Get([]byte(key))
		if v == nil {
			return prefs.ErrNotFound
		}
		// v is only valid for the life of the transaction.
		value = string(v)
		return nil
	})
	return value, err
}

// Set implements prefs.Store.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return errors.New("prefs key is empty")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPrefs).Put([]byte(key), []byte(value))
	})
}

// Delete implements prefs.Store.
func (s *Store) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPrefs).Delete([]byte(key))
	})
}

// Keys returns every stored key in byte order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPrefs).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

var _ prefs.Store = (*Store)(nil)
