// Package prefs defines the fallback preference store used when the primary
// save file cannot be written or read.
//
// A store holds one string value per key. Saves are kept under [Key] as the
// base64 text of the length-prefixed frame.
package prefs

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get when the key has no value.
var ErrNotFound = errors.New("prefs: key not found")

// Store is a string key-value store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value at key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Key returns the fallback entry key for identity.
func Key(identity string) string {
	return "Save." + identity + ".sav"
}

// PutFrame stores a length-prefixed frame for identity.
func PutFrame(s Store, identity string, prefixed []byte) error {
	return s.Set(Key(identity), base64.StdEncoding.EncodeToString(prefixed))
}

// GetFrame returns the length-prefixed frame stored for identity. An empty
// entry is reported as ErrNotFound.
func GetFrame(s Store, identity string) ([]byte, error) {
	text, err := s.Get(Key(identity))
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrNotFound
	}
	b, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("prefs: decode entry %q: %w", Key(identity), err)
	}
	return b, nil
}

// DeleteFrame removes the fallback entry for identity.
func DeleteFrame(s Store, identity string) error {
	return s.Delete(Key(identity))
}
