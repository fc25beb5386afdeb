package saveblob

import (
	"io"
	"log/slog"
)

// Migrator upgrades a frame written by an older format version.
//
// Migrate receives the version that was read and the rest of the frame,
// positioned just after the version record. It returns a reader positioned
// at a content header in the current format. A nil reader or an error marks
// the save as corrupted.
type Migrator interface {
	Migrate(from int32, rest io.Reader) (io.Reader, error)
}

// MigratorFunc adapts a function to Migrator.
type MigratorFunc func(from int32, rest io.Reader) (io.Reader, error)

// Migrate calls f.
func (f MigratorFunc) Migrate(from int32, rest io.Reader) (io.Reader, error) {
	return f(from, rest)
}

// passthroughMigrator reads older frames as if they were current.
type passthroughMigrator struct {
	logger *slog.Logger
}

func (m passthroughMigrator) Migrate(from int32, rest io.Reader) (io.Reader, error) {
	m.logger.Info("no migration registered, reading frame as current version",
		slog.Int("from", int(from)))
	return rest, nil
}
