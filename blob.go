package saveblob

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/meigma/saveblob/internal/compress"
	"github.com/meigma/saveblob/internal/crypt"
	"github.com/meigma/saveblob/internal/frame"
	"github.com/meigma/saveblob/prefs"
	"github.com/meigma/saveblob/prefs/memory"
	"github.com/meigma/saveblob/tree"
)

// Reserved and stamped payload keys.
const (
	KeyVersion      = "version"
	KeyPurchases    = "purchases"
	KeyDeviceName   = "deviceName"
	KeyModifiedTime = "modifiedTime"
)

// DefaultMaxContentLength bounds the encrypted content read from a frame.
const DefaultMaxContentLength = 64 << 20

// Cipher encrypts and decrypts save content. Implementations must be
// deterministic for a given key material.
type Cipher interface {
	Encrypt(km KeyMaterial, plain []byte) ([]byte, error)
	Decrypt(km KeyMaterial, sealed []byte) ([]byte, error)
}

// Compressor compresses save content before encryption.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// location is everything derived from an identity. It is replaced as a
// whole when the identity changes.
type location struct {
	identity string
	path     string
	keys     KeyMaterial
}

func newLocation(path, identity string) location {
	return location{
		identity: identity,
		path:     path,
		keys:     crypt.Derive(identity),
	}
}

// Blob is the persisted state of one identity.
//
// A Blob is not safe for concurrent use. Callers must ensure at most one
// operation is in flight per identity.
type Blob struct {
	loc      location
	dir      string
	savePath string

	data       *tree.Tree
	deviceName string
	modified   int64

	enabled          bool
	strict           bool
	reservedSize     int
	maxContentLength int

	prefs      prefs.Store
	logger     *slog.Logger
	clock      func() time.Time
	device     Device
	migrator   Migrator
	cipher     Cipher
	compressor Compressor

	systems []System
}

// New creates an empty Blob for identity.
//
// The save file is "<dir>/<identity>.sav" where dir defaults to DefaultDir.
func New(identity string, opts ...Option) (*Blob, error) {
	b := &Blob{
		data:             tree.New(),
		enabled:          true,
		reservedSize:     frame.ReservedSize,
		maxContentLength: DefaultMaxContentLength,
		logger:           slog.New(slog.DiscardHandler),
		clock:            time.Now,
		device:           HostDevice{},
		cipher:           crypt.AESCBC{},
	}
	for _, opt := range opts {
		opt(b)
	}

	path := b.savePath
	if b.dir == "" {
		if path != "" {
			b.dir = filepath.Dir(path)
		} else {
			b.dir = DefaultDir()
		}
	}
	if path == "" {
		path = SavePath(b.dir, identity)
	}
	if b.reservedSize <= 4 {
		return nil, fmt.Errorf("reserved size must be > 4, got %d", b.reservedSize)
	}
	if b.maxContentLength < 0 {
		return nil, errors.New("max content length must be >= 0")
	}
	if b.prefs == nil {
		b.prefs = memory.New()
	}
	if b.compressor == nil {
		b.compressor = compress.NewZstd()
	}
	if b.migrator == nil {
		b.migrator = passthroughMigrator{logger: b.logger}
	}

	b.loc = newLocation(path, identity)
	return b, nil
}

// Identity returns the identity the Blob is saved under.
func (b *Blob) Identity() string { return b.loc.identity }

// SetIdentity switches to identity. The save path and key material are
// derived again; the payload is kept.
func (b *Blob) SetIdentity(identity string) {
	b.loc = newLocation(SavePath(b.dir, identity), identity)
}

// SetLocation switches to identity saved at path. The payload is kept.
func (b *Blob) SetLocation(path, identity string) {
	b.dir = filepath.Dir(path)
	b.loc = newLocation(path, identity)
}

// Path returns the primary save file path.
func (b *Blob) Path() string { return b.loc.path }

// Enabled reports whether Save writes anything.
func (b *Blob) Enabled() bool { return b.enabled }

// SetEnabled turns saving on or off.
func (b *Blob) SetEnabled(enabled bool) { b.enabled = enabled }

// Version returns the reserved version string, or "" if unset.
func (b *Blob) Version() string {
	v := b.data.Get(KeyVersion)
	if v.Kind() != tree.KindString {
		return ""
	}
	return v.AsString("")
}

// SetVersion sets the reserved version string.
func (b *Blob) SetVersion(version string) {
	b.data.Set(KeyVersion, tree.String(version))
}

// Purchases returns the reserved purchases value.
func (b *Blob) Purchases() tree.Value {
	return b.data.Get(KeyPurchases)
}

// SetPurchases sets the reserved purchases value to a copy of v.
func (b *Blob) SetPurchases(v tree.Value) {
	b.data.Set(KeyPurchases, v.Clone())
}

// Timestamp returns the modification time, in Unix seconds, stamped by the
// last Save or read back by the last load.
func (b *Blob) Timestamp() int64 { return b.modified }

// DeviceName returns the device name stamped by the last Save or read back
// by the last load.
func (b *Blob) DeviceName() string { return b.deviceName }

// Platform returns the platform of the current device.
func (b *Blob) Platform() string { return b.device.Platform() }

// Get returns the value at the dotted key, or null.
func (b *Blob) Get(key string) tree.Value {
	return b.data.Get(key)
}

// Set stores a copy of v at the dotted key. Keys under the reserved
// "version" and "purchases" entries are rejected with an error wrapping
// ErrReservedKey.
func (b *Blob) Set(key string, v tree.Value) error {
	if reserved(key) {
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	b.data.Set(key, v.Clone())
	return nil
}

// Delete removes the value at the dotted key. Reserved entries and anything
// below them are left in place and Delete reports false.
func (b *Blob) Delete(key string) bool {
	if reserved(key) {
		return false
	}
	return b.data.Delete(key)
}

// reserved reports whether key is a reserved entry or lies below one.
func reserved(key string) bool {
	for _, k := range []string{KeyVersion, KeyPurchases} {
		if key == k || strings.HasPrefix(key, k+tree.Separator) {
			return true
		}
	}
	return false
}

// Reset clears the payload and the stamps, derives the key material again,
// and resets and unregisters every system.
func (b *Blob) Reset() {
	b.data = tree.New()
	b.modified = 0
	b.deviceName = ""
	b.loc = newLocation(b.loc.path, b.loc.identity)
	for _, sys := range b.systems {
		sys.Reset()
		sys.Bind(nil)
	}
	b.systems = nil
}

// Tree returns a copy of the payload.
func (b *Blob) Tree() *tree.Tree {
	return b.data.Clone()
}

// String returns the payload as JSON.
func (b *Blob) String() string {
	text, err := b.data.Text()
	if err != nil {
		return ""
	}
	return text
}

// stamp records the current device and time in the payload.
func (b *Blob) stamp() {
	b.deviceName = deviceName(b.device)
	b.modified = b.clock().UTC().Unix()
	b.data.Set(KeyDeviceName, tree.String(b.deviceName))
	b.data.Set(KeyModifiedTime, tree.Int(b.modified))
}

// restoreStamps reads the device and time back from a loaded payload.
func (b *Blob) restoreStamps() {
	if v := b.data.Get(KeyModifiedTime); !v.IsNull() {
		b.modified = v.AsInt64(b.modified)
	}
	if v := b.data.Get(KeyDeviceName); !v.IsNull() {
		b.deviceName = v.AsString(b.deviceName)
	}
}
