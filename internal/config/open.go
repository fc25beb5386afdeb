package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/prefs"
	"github.com/meigma/saveblob/prefs/bolt"
	"github.com/meigma/saveblob/prefs/disk"
	"github.com/meigma/saveblob/prefs/memory"
	"github.com/meigma/saveblob/prefs/sqlite"
)

// SaveDir returns Dir, or the platform default when Dir is empty.
func (c Config) SaveDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return saveblob.DefaultDir()
}

// PrefsLocation returns PrefsPath, or a backend-specific location inside the
// save directory. It is empty for the memory backend.
func (c Config) PrefsLocation() string {
	if c.PrefsPath != "" || c.PrefsBackend == BackendMemory {
		return c.PrefsPath
	}
	switch c.PrefsBackend {
	case BackendDisk:
		return filepath.Join(c.SaveDir(), "prefs")
	case BackendBolt:
		return filepath.Join(c.SaveDir(), "prefs.bolt")
	default:
		return filepath.Join(c.SaveDir(), "prefs.sqlite")
	}
}

// Logger returns a text logger writing to w at LogLevel.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// OpenPrefs opens the configured preference store. The returned close
// function must be called when the store is no longer used.
func (c Config) OpenPrefs(logger *slog.Logger) (prefs.Store, func() error, error) {
	noop := func() error { return nil }
	loc := c.PrefsLocation()

	switch c.PrefsBackend {
	case BackendMemory:
		return memory.New(), noop, nil
	case BackendDisk:
		s, err := disk.New(loc)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case BackendBolt:
		if err := os.MkdirAll(filepath.Dir(loc), 0o700); err != nil {
			return nil, nil, err
		}
		s, err := bolt.Open(loc, bolt.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(loc), 0o700); err != nil {
			return nil, nil, err
		}
		s, err := sqlite.Open(loc)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrBackend, c.PrefsBackend)
	}
}

// BlobOptions returns the Blob options for this configuration.
func (c Config) BlobOptions(store prefs.Store, logger *slog.Logger) []saveblob.Option {
	opts := []saveblob.Option{
		saveblob.WithDir(c.SaveDir()),
		saveblob.WithPreferences(store),
		saveblob.WithLogger(logger),
	}
	if c.Strict {
		opts = append(opts, saveblob.WithStrictReservation())
	}
	return opts
}
