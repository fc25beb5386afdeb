package saveblob

import (
	"log/slog"
	"time"

	"github.com/meigma/saveblob/prefs"
)

// Option configures a Blob.
type Option func(*Blob)

// WithDir sets the directory holding "<identity>.sav" files.
func WithDir(dir string) Option {
	return func(b *Blob) {
		b.dir = dir
	}
}

// WithPath sets the exact primary save file path. Later identity changes
// through SetIdentity use the directory of path.
func WithPath(path string) Option {
	return func(b *Blob) {
		b.savePath = path
	}
}

// WithPreferences sets the fallback store. Defaults to an in-memory store.
func WithPreferences(s prefs.Store) Option {
	return func(b *Blob) {
		b.prefs = s
	}
}

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Blob) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp the modification time.
func WithClock(now func() time.Time) Option {
	return func(b *Blob) {
		if now != nil {
			b.clock = now
		}
	}
}

// WithDevice sets the device whose name and platform are recorded.
func WithDevice(d Device) Option {
	return func(b *Blob) {
		if d != nil {
			b.device = d
		}
	}
}

// WithMigrator sets the hook that upgrades frames written by older
// versions. The default passes the stream through unchanged.
func WithMigrator(m Migrator) Option {
	return func(b *Blob) {
		b.migrator = m
	}
}

// WithCipher replaces the AES-CBC content cipher.
func WithCipher(c Cipher) Option {
	return func(b *Blob) {
		if c != nil {
			b.cipher = c
		}
	}
}

// WithCompressor replaces the zstd content compressor.
func WithCompressor(c Compressor) Option {
	return func(b *Blob) {
		b.compressor = c
	}
}

// WithStrictReservation makes a frame that does not fit the reservation a
// SaveDiskSpace failure. By default it is logged and written anyway.
func WithStrictReservation() Option {
	return func(b *Blob) {
		b.strict = true
	}
}

// WithReservedSize sets the size every primary save file is padded to.
// Files written with a non-default size are still readable with any size.
func WithReservedSize(n int) Option {
	return func(b *Blob) {
		b.reservedSize = n
	}
}

// WithDisabled starts the Blob with saving turned off.
func WithDisabled() Option {
	return func(b *Blob) {
		b.enabled = false
	}
}

// WithMaxContentLength limits the content length accepted from a frame.
// Set limit to 0 to disable the limit.
func WithMaxContentLength(limit int) Option {
	return func(b *Blob) {
		b.maxContentLength = limit
	}
}

// SaveOption configures a single Save call.
type SaveOption func(*saveConfig)

type saveConfig struct {
	backupOnFail bool
}

// SaveWithoutBackup skips the fallback store when the primary write fails.
func SaveWithoutBackup() SaveOption {
	return func(c *saveConfig) {
		c.backupOnFail = false
	}
}
