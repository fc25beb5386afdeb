// Package frame encodes and decodes the on-disk save layout.
//
// A frame is laid out as:
//
//	[int32 version][int32 len(versionString)][versionString]
//	[int32 headerLength][32-byte hex digest][int32 contentLength]
//	[contentLength bytes of content]
//
// On disk the frame is prefixed with its own length and padded with zeros to
// a fixed reservation. Every integer is little-endian.
package frame

import (
	"bytes"
	"crypto/md5" //nolint:gosec // integrity check, not a security boundary
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// CurrentVersion is the frame version written by this package.
	CurrentVersion int32 = 3

	// VersionUnreadable is returned by DecodeVersion when the version
	// record fails its self-check.
	VersionUnreadable int32 = -1

	// ReservedSize is the number of bytes every primary save file occupies.
	ReservedSize = 1 << 20

	// HashLength is the length of the hex digest stored in the header.
	HashLength = 32

	// MaxVersionStringLength bounds the version string length prefix.
	MaxVersionStringLength = 10

	intSize = 4
)

var (
	// ErrTruncated is returned when the stream ends before a record is complete.
	ErrTruncated = errors.New("frame: truncated")

	// ErrInvalidHash is returned when a digest is not HashLength bytes.
	ErrInvalidHash = errors.New("frame: invalid hash length")
)

// Header is the content header that precedes the encrypted payload.
type Header struct {
	// Length is the header length as stored; HashLength + 4 for frames
	// written by this package.
	Length int32

	// Hash is the uppercase hex digest of the content.
	Hash string

	// ContentLength is the number of content bytes following the header.
	ContentLength int32
}

// EncodeVersion serializes version followed by its decimal string form.
func EncodeVersion(version int32) []byte {
	s := strconv.FormatInt(int64(version), 10)
	buf := make([]byte, 0, 2*intSize+len(s))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(version)) //nolint:gosec // two's complement round trip
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s))) //nolint:gosec // len(s) <= 11
	return append(buf, s...)
}

// DecodeVersion reads a version record. It returns VersionUnreadable if the
// record is truncated, the string length is out of bounds, or the string
// does not agree with the integer.
func DecodeVersion(r io.Reader) int32 {
	version, err := readInt32(r)
	if err != nil {
		return VersionUnreadable
	}
	n, err := readInt32(r)
	if err != nil || n < 0 || n >= MaxVersionStringLength {
		return VersionUnreadable
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return VersionUnreadable
	}
	parsed, err := strconv.ParseInt(string(raw), 10, 32)
	if err != nil || int32(parsed) != version {
		return VersionUnreadable
	}
	return version
}

// EncodeHeader serializes the content header.
func EncodeHeader(hash string, contentLength int32) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidHash, len(hash))
	}
	buf := make([]byte, 0, 3*intSize+HashLength)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(HashLength+intSize))
	buf = append(buf, hash...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(contentLength)) //nolint:gosec // two's complement round trip
	return buf, nil
}

// DecodeHeader reads a content header. The only failure is a truncated stream.
func DecodeHeader(r io.Reader) (Header, error) {
	var h Header
	var err error
	if h.Length, err = readInt32(r); err != nil {
		return Header{}, err
	}
	hash := make([]byte, HashLength)
	if _, err := io.ReadFull(r, hash); err != nil {
		return Header{}, ErrTruncated
	}
	h.Hash = string(hash)
	if h.ContentLength, err = readInt32(r); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Prefix returns frame preceded by its int32 length.
func Prefix(frame []byte) []byte {
	buf := make([]byte, 0, intSize+len(frame))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(frame))) //nolint:gosec // frames are far below 2GiB
	return append(buf, frame...)
}

// Unprefix removes a length prefix written by Prefix. It reports false and
// returns b unchanged when b does not start with its own length.
func Unprefix(b []byte) ([]byte, bool) {
	if len(b) < intSize {
		return b, false
	}
	n := int64(int32(binary.LittleEndian.Uint32(b))) //nolint:gosec // two's complement round trip
	if n != int64(len(b)-intSize) {
		return b, false
	}
	return b[intSize:], true
}

// Pad returns the length-prefixed frame right-padded with zeros to reserved
// bytes. Frames that do not fit are returned prefixed but unpadded.
func Pad(frame []byte, reserved int) []byte {
	size := intSize + len(frame)
	if size >= reserved {
		return Prefix(frame)
	}
	buf := make([]byte, reserved)
	binary.LittleEndian.PutUint32(buf, uint32(len(frame))) //nolint:gosec // frames are far below 2GiB
	copy(buf[intSize:], frame)
	return buf
}

// StripPadding reads the leading length prefix and returns exactly that many
// bytes, discarding any trailing padding.
func StripPadding(r io.Reader) ([]byte, error) {
	n, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrTruncated, n)
	}
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: read %d of %d bytes", ErrTruncated, copied, n)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// HexDigest returns the MD5 digest of b as 32 uppercase hex characters.
func HexDigest(b []byte) string {
	sum := md5.Sum(b) //nolint:gosec // integrity check, not a security boundary
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func readInt32(r io.Reader) (int32, error) {
	var raw [intSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrTruncated
		}
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(raw[:])), nil //nolint:gosec // two's complement round trip
}
