//go:build !windows

package disk

import (
	"os"

	"github.com/google/renameio"
)

func writeFile(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}
