// Package disk provides a preference store that keeps one file per key.
package disk

import (
	_ "crypto/sha256" // registers the digest algorithm used for file names
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/saveblob/prefs"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
	defaultFilePerm       = 0o600
)

// Store implements prefs.Store on the local filesystem. Keys are hashed into
// file names so any key string is safe to use.
type Store struct {
	dir            string
	shardPrefixLen int
	dirPerm        os.FileMode
	filePerm       os.FileMode

	mu sync.RWMutex
}

// Option configures a disk store.
type Option func(*Store)

// WithShardPrefixLen sets the number of hex characters used for sharding.
// Use 0 to disable sharding. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(s *Store) {
		s.shardPrefixLen = n
	}
}

// WithDirPerm sets the permissions used for created directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(s *Store) {
		s.dirPerm = mode
	}
}

// WithFilePerm sets the permissions used for entry files.
func WithFilePerm(mode os.FileMode) Option {
	return func(s *Store) {
		s.filePerm = mode
	}
}

// New creates a disk-backed store rooted at dir.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("prefs dir is empty")
	}
	s := &Store{
		dir:            dir,
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
		filePerm:       defaultFilePerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shardPrefixLen < 0 {
		return nil, errors.New("shard prefix length must be >= 0")
	}
	if err := os.MkdirAll(dir, s.dirPerm); err != nil {
		return nil, err
	}
	return s, nil
}

// Get implements prefs.Store.
func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key)) //nolint:gosec // path is derived from a digest, not user input
	if errors.Is(err, fs.ErrNotExist) {
		return "", prefs.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Set implements prefs.Store. The entry is replaced atomically.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), s.dirPerm); err != nil {
		return err
	}
	return writeFile(path, []byte(value), s.filePerm)
}

// Delete implements prefs.Store.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the file that holds key.
func (s *Store) Path(key string) string {
	return s.path(key)
}

func (s *Store) path(key string) string {
	name := digest.FromString(key).Encoded()
	if s.shardPrefixLen <= 0 {
		return filepath.Join(s.dir, name)
	}
	prefixLen := min(s.shardPrefixLen, len(name))
	return filepath.Join(s.dir, name[:prefixLen], name)
}

var _ prefs.Store = (*Store)(nil)
