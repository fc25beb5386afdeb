// Package config loads command-line tool configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "SAVEBLOB_"

// Preference store backends.
const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Backends lists the accepted values of PREFS_BACKEND.
var Backends = []string{BackendMemory, BackendDisk, BackendBolt, BackendSQLite}

// ErrBackend is returned for an unknown preference store backend.
var ErrBackend = errors.New("config: unknown preference backend")

// Config holds the tool settings.
type Config struct {
	// Dir holds save files. Empty means the platform default.
	Dir string `env:"DIR"`
	// PrefsBackend selects where fallback entries are kept.
	PrefsBackend string `env:"PREFS_BACKEND" envDefault:"memory"`
	// PrefsPath is the file or directory of a persistent backend. Empty means
	// a location inside Dir.
	PrefsPath string `env:"PREFS_PATH"`
	// Strict makes an oversize save fail instead of writing past the
	// reservation.
	Strict bool `env:"STRICT"`
	// LogLevel is the minimum level written to stderr.
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"warn"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from environ instead of the process
// environment. Keys include the prefix.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the backend is known.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.PrefsBackend) {
		return fmt.Errorf("%w: %q", ErrBackend, c.PrefsBackend)
	}
	return nil
}
