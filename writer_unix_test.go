//go:build unix

package saveblob

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyWriteError(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error {
		return &os.PathError{Op: "open", Path: "/saves/user42.sav", Err: err}
	}

	tests := []struct {
		err  error
		want SaveState
	}{
		{wrap(syscall.EACCES), SavePermissionError},
		{wrap(syscall.EPERM), SavePermissionError},
		{wrap(syscall.EROFS), SavePermissionError},
		{fs.ErrPermission, SavePermissionError},
		{wrap(syscall.ENOSPC), SaveDiskSpace},
		{wrap(syscall.EDQUOT), SaveDiskSpace},
		{fmt.Errorf("write: %w", wrap(syscall.EFBIG)), SaveDiskSpace},
		{wrap(syscall.EIO), SaveWriteError},
		{wrap(syscall.ENOTDIR), SaveWriteError},
		{errors.New("something else"), SaveWriteError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyWriteError(tt.err), tt.err.Error())
	}
}

func TestClassifyReadError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LoadPermissionError, classifyReadError(&os.PathError{Err: syscall.EACCES}))
	assert.Equal(t, LoadNotFound, classifyReadError(&os.PathError{Err: syscall.ENOENT}))
	assert.Equal(t, LoadCorrupted, classifyReadError(errors.New("short read")))
}
