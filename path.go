package saveblob

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Extension is the file extension of primary save files.
const Extension = ".sav"

// SavePath returns the primary save file path for identity in dir.
func SavePath(dir, identity string) string {
	return filepath.Join(dir, identity+Extension)
}

// DefaultDir returns the directory used when no directory is configured:
// "saveblob" under the user configuration directory, or the working
// directory when that cannot be determined.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "saveblob")
}

// ListSaves returns the sorted identities that have a save file in dir. A
// missing directory holds no saves.
func ListSaves(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, Extension) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, Extension))
	}
	slices.Sort(ids)
	return ids, nil
}
