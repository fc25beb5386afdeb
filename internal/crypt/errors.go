package crypt

import "fmt"

// EncryptionError indicates that encrypting a set of data failed.
type EncryptionError struct {
	Cause error
}

func (e *EncryptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("encryption failed: %v", e.Cause)
	}
	return "encryption failed"
}

func (e *EncryptionError) Unwrap() error {
	return e.Cause
}

// DecryptionError indicates that decrypting a set of data failed. Bad key
// material and corrupted content are indistinguishable at this level.
type DecryptionError struct {
	Cause error
}

func (e *DecryptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decryption failed: %v", e.Cause)
	}
	return "decryption failed"
}

func (e *DecryptionError) Unwrap() error {
	return e.Cause
}
