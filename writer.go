package saveblob

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// writeFile replaces the content of path with data. The write truncates in
// place: a crash part way through leaves a file that fails its checksum.
func writeFile(path string, data []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //nolint:gosec // path is the configured save path
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(data)
	return err
}

// saveError wraps err with the sentinel for state.
func saveError(state SaveState, err error) error {
	switch state {
	case SavePermissionError:
		return fmt.Errorf("%w: %w", ErrPermission, err)
	case SaveDiskSpace:
		return fmt.Errorf("%w: %w", ErrDiskSpace, err)
	default:
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
}

// classifyReadError maps a primary read failure to a load state.
func classifyReadError(err error) LoadState {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return LoadPermissionError
	case errors.Is(err, fs.ErrNotExist):
		return LoadNotFound
	default:
		return LoadCorrupted
	}
}

// loadError wraps err with the sentinel for state.
func loadError(state LoadState, err error) error {
	switch state {
	case LoadOK:
		return nil
	case LoadPermissionError:
		return fmt.Errorf("%w: %w", ErrPermission, err)
	case LoadNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case LoadVersionMismatch:
		return fmt.Errorf("%w: %w", ErrVersionMismatch, err)
	default:
		return fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
}
