// Package testutil holds helpers shared by package tests.
package testutil

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/meigma/saveblob/prefs"
	"github.com/meigma/saveblob/tree"
)

// ErrInjected is returned by FailingStore for operations set to fail.
var ErrInjected = errors.New("testutil: injected failure")

// FailingStore is a concurrency-safe in-memory prefs.Store whose operations
// can be made to fail.
type FailingStore struct {
	mu         sync.RWMutex
	data       map[string]string
	failGet    bool
	failSet    bool
	failDelete bool
	sets       int
	deletes    int
}

// NewFailingStore returns an empty store where nothing fails yet.
func NewFailingStore() *FailingStore {
	return &FailingStore{data: make(map[string]string)}
}

// FailGet makes Get return ErrInjected.
func (s *FailingStore) FailGet(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = fail
}

// FailSet makes Set return ErrInjected.
func (s *FailingStore) FailSet(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = fail
}

// FailDelete makes Delete return ErrInjected.
func (s *FailingStore) FailDelete(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete = fail
}

// Get implements prefs.Store.
func (s *FailingStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failGet {
		return "", ErrInjected
	}
	v, ok := s.data[key]
	if !ok {
		return "", prefs.ErrNotFound
	}
	return v, nil
}

// Set implements prefs.Store.
func (s *FailingStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return ErrInjected
	}
	s.sets++
	s.data[key] = value
	return nil
}

// Delete implements prefs.Store.
func (s *FailingStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return ErrInjected
	}
	s.deletes++
	delete(s.data, key)
	return nil
}

// Sets returns how many successful Set calls were made.
func (s *FailingStore) Sets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets
}

// Deletes returns how many successful Delete calls were made.
func (s *FailingStore) Deletes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deletes
}

// Device is a fixed device identity.
type Device struct {
	DeviceName     string
	DeviceModel    string
	DevicePlatform string
}

// Name returns DeviceName.
func (d Device) Name() string { return d.DeviceName }

// Model returns DeviceModel.
func (d Device) Model() string { return d.DeviceModel }

// Platform returns DevicePlatform.
func (d Device) Platform() string { return d.DevicePlatform }

// Clock returns a clock that always reports t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// SampleTree returns a small payload with nested maps and lists.
func SampleTree() *tree.Tree {
	t := tree.New()
	t.Set("level", tree.Int(7))
	t.Set("coins", tree.Int(1500))
	t.Set("Inventory.owned", tree.Of([]bool{true, false, true}))
	t.Set("Inventory.scores", tree.Of([]int{120, 80}))
	t.Set("User.name", tree.String("ada"))
	t.Set("User.ratio", tree.Float(0.75))
	return t
}

// FlipByte inverts the byte at offset in the file at path.
func FlipByte(tb testing.TB, path string, offset int) {
	tb.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	if err != nil {
		tb.Fatalf("read %s: %v", path, err)
	}
	if offset < 0 || offset >= len(data) {
		tb.Fatalf("offset %d out of range for %d bytes", offset, len(data))
	}
	data[offset] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

var _ prefs.Store = (*FailingStore)(nil)
