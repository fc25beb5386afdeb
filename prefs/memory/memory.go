// Package memory provides an in-process preference store.
package memory

import (
	"maps"
	"sync"

	"github.com/meigma/saveblob/prefs"
)

// Store keeps preferences in a map guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get implements prefs.Store.
func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", prefs.ErrNotFound
	}
	return v, nil
}

// Set implements prefs.Store.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete implements prefs.Store.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Snapshot returns a copy of every stored entry.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

var _ prefs.Store = (*Store)(nil)
