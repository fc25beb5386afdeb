package config

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/prefs"
)

func TestLoadFromDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, cfg.Dir)
	assert.Equal(t, BackendMemory, cfg.PrefsBackend)
	assert.False(t, cfg.Strict)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, saveblob.DefaultDir(), cfg.SaveDir())
	assert.Empty(t, cfg.PrefsLocation())
}

func TestLoadFromValues(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{
		"SAVEBLOB_DIR":           "/tmp/saves",
		"SAVEBLOB_PREFS_BACKEND": "bolt",
		"SAVEBLOB_STRICT":        "true",
		"SAVEBLOB_LOG_LEVEL":     "debug",
		"DIR":                    "/ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/saves", cfg.SaveDir())
	assert.Equal(t, BackendBolt, cfg.PrefsBackend)
	assert.True(t, cfg.Strict)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, filepath.Join("/tmp/saves", "prefs.bolt"), cfg.PrefsLocation())
}

func TestLoadFromErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadFrom(map[string]string{"SAVEBLOB_PREFS_BACKEND": "redis"})
	require.ErrorIs(t, err, ErrBackend)

	_, err = LoadFrom(map[string]string{"SAVEBLOB_STRICT": "maybe"})
	require.Error(t, err)

	_, err = LoadFrom(map[string]string{"SAVEBLOB_LOG_LEVEL": "loud"})
	require.Error(t, err)
}

func TestPrefsLocation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
		want    string
	}{
		{BackendMemory, "", ""},
		{BackendDisk, "", filepath.Join(dir, "prefs")},
		{BackendBolt, "", filepath.Join(dir, "prefs.bolt")},
		{BackendSQLite, "", filepath.Join(dir, "prefs.sqlite")},
		{BackendSQLite, "/elsewhere/p.db", "/elsewhere/p.db"},
	}
	for _, tt := range tests {
		cfg := Config{Dir: dir, PrefsBackend: tt.backend, PrefsPath: tt.path}
		assert.Equal(t, tt.want, cfg.PrefsLocation(), tt.backend)
	}
}

func TestOpenPrefs(t *testing.T) {
	t.Parallel()

	for _, backend := range Backends {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			cfg := Config{Dir: t.TempDir(), PrefsBackend: backend}
			store, closeFn, err := cfg.OpenPrefs(slog.New(slog.DiscardHandler))
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, closeFn()) })

			require.NoError(t, prefs.PutFrame(store, "user42", []byte{1, 2, 3}))
			got, err := prefs.GetFrame(store, "user42")
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3}, got)
		})
	}

	_, _, err := Config{PrefsBackend: "redis"}.OpenPrefs(nil)
	require.ErrorIs(t, err, ErrBackend)
}

func TestBlobOptions(t *testing.T) {
	t.Parallel()

	cfg := Config{Dir: t.TempDir(), PrefsBackend: BackendMemory, Strict: true}
	store, closeFn, err := cfg.OpenPrefs(nil)
	require.NoError(t, err)
	defer closeFn()

	var buf bytes.Buffer
	b, err := saveblob.New("user42", cfg.BlobOptions(store, cfg.Logger(&buf))...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Dir, "user42.sav"), b.Path())
}
