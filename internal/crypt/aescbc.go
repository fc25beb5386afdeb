package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

var (
	errEmpty      = errors.New("empty input")
	errBlockSize  = errors.New("input is not a multiple of the block size")
	errBadPadding = errors.New("invalid padding")
)

// AESCBC encrypts with AES in CBC mode and PKCS#7 padding. Given the same
// key material and plaintext it always produces the same ciphertext.
type AESCBC struct{}

// Encrypt pads and encrypts plain.
func (AESCBC) Encrypt(km KeyMaterial, plain []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &EncryptionError{Cause: fmt.Errorf("unexpected panic: %v", r)}
		}
	}()

	block, err := newBlock(km)
	if err != nil {
		return nil, &EncryptionError{Cause: err}
	}
	padded := pad(plain, block.BlockSize())
	out = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, km.IV).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt decrypts sealed and strips its padding.
func (AESCBC) Decrypt(km KeyMaterial, sealed []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &DecryptionError{Cause: fmt.Errorf("unexpected panic: %v", r)}
		}
	}()

	if len(sealed) == 0 {
		return nil, &DecryptionError{Cause: errEmpty}
	}
	block, err := newBlock(km)
	if err != nil {
		return nil, &DecryptionError{Cause: err}
	}
	if len(sealed)%block.BlockSize() != 0 {
		return nil, &DecryptionError{Cause: errBlockSize}
	}
	plain := make([]byte, len(sealed))
	cipher.NewCBCDecrypter(block, km.IV).CryptBlocks(plain, sealed)
	plain, err = unpad(plain, block.BlockSize())
	if err != nil {
		return nil, &DecryptionError{Cause: err}
	}
	return plain, nil
}

func newBlock(km KeyMaterial) (cipher.Block, error) {
	block, err := aes.NewCipher(km.Key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher block: %w", err)
	}
	if len(km.IV) != block.BlockSize() {
		return nil, fmt.Errorf("IV length %d does not match block size %d", len(km.IV), block.BlockSize())
	}
	return block, nil
}

func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errBadPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}
