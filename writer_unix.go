//go:build unix

package saveblob

import (
	"errors"
	"io/fs"
	"syscall"
)

// classifyWriteError maps a primary write failure to a save state.
func classifyWriteError(err error) SaveState {
	switch {
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EROFS):
		return SavePermissionError
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT), errors.Is(err, syscall.EFBIG):
		return SaveDiskSpace
	default:
		return SaveWriteError
	}
}
