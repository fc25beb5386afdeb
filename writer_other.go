//go:build !unix

package saveblob

import (
	"errors"
	"io/fs"
)

// classifyWriteError maps a primary write failure to a save state. Capacity
// errors are not distinguished on this platform.
func classifyWriteError(err error) SaveState {
	if errors.Is(err, fs.ErrPermission) {
		return SavePermissionError
	}
	return SaveWriteError
}
