package saveblob

import (
	"errors"

	"github.com/meigma/saveblob/internal/crypt"
)

var (
	// ErrPermission is returned when the OS denies access to the save file.
	ErrPermission = errors.New("saveblob: permission denied")

	// ErrDiskSpace is returned when a write fails for lack of capacity, or
	// when a frame exceeds the reservation under WithStrictReservation.
	ErrDiskSpace = errors.New("saveblob: insufficient disk space")

	// ErrDisabled is returned by Save when saving is disabled.
	ErrDisabled = errors.New("saveblob: saving is disabled")

	// ErrWrite is returned for save failures that are neither permission nor
	// capacity related.
	ErrWrite = errors.New("saveblob: write failed")

	// ErrNotFound is returned when neither the save file nor a fallback
	// entry exists.
	ErrNotFound = errors.New("saveblob: save not found")

	// ErrCorrupted is returned when stored data fails any integrity, decode,
	// decrypt, decompress or parse step.
	ErrCorrupted = errors.New("saveblob: save corrupted")

	// ErrVersionMismatch is returned when a save was written by a newer
	// format version than this package supports.
	ErrVersionMismatch = errors.New("saveblob: unsupported save version")

	// ErrReservedKey is returned when a reserved key is set through the
	// generic accessor.
	ErrReservedKey = errors.New("saveblob: reserved key out of range")

	// ErrOversize is returned when a frame does not fit the reservation.
	ErrOversize = errors.New("saveblob: frame exceeds reserved size")
)

// KeyMaterial is the key and IV derived from an identity.
type KeyMaterial = crypt.KeyMaterial

// DeriveKey returns the key material for identity.
func DeriveKey(identity string) KeyMaterial {
	return crypt.Derive(identity)
}
