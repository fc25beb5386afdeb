// Package crypt derives per-identity key material and implements the
// symmetric cipher used for save content.
package crypt

import (
	"crypto/sha1" //nolint:gosec // PBKDF2-HMAC-SHA1 is part of the save format
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES key size in bytes.
	KeySize = 16

	// IVSize is the CBC initialization vector size in bytes.
	IVSize = 16

	// Iterations is the PBKDF2 iteration count.
	Iterations = 100

	saltRepeat = 8
)

// KeyMaterial is the key and IV used to encrypt one identity's saves.
// It is derived on demand and never persisted.
type KeyMaterial struct {
	Key []byte
	IV  []byte
}

// Derive returns the key material for identity.
//
// The salt is the identity length, counted in UTF-16 code units, repeated
// eight times and comma separated. The first KeySize derived bytes form the
// key and the next IVSize bytes form the IV.
func Derive(identity string) KeyMaterial {
	out := pbkdf2.Key([]byte(identity), salt(identity), Iterations, KeySize+IVSize, sha1.New)
	return KeyMaterial{
		Key: out[:KeySize:KeySize],
		IV:  out[KeySize:],
	}
}

func salt(identity string) []byte {
	n := strconv.Itoa(len(utf16.Encode([]rune(identity))))
	parts := make([]string, saltRepeat)
	for i := range parts {
		parts[i] = n
	}
	return []byte(strings.Join(parts, ","))
}
