// Package system provides the scoped key-value facade that game subsystems
// use to keep their state in a save.
//
// A subsystem embeds [Base] and registers itself with a Blob. Every key it
// reads or writes is resolved under the subsystem name, an optional platform
// segment, and the segments pushed with [Base.PushKey]:
//
//	Inventory.ios.Dragons.fire.level
//	└ name   └ platform └ stack   └ key
package system

import (
	"log/slog"
	"strings"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/tree"
)

// Base implements the keyed access shared by all subsystems. It is not safe
// for concurrent use.
type Base struct {
	name   string
	store  saveblob.Store
	stack  []string
	logger *slog.Logger

	cache      map[string]*cacheEntry
	cacheOrder []string
	dirty      bool
}

// Option configures a Base.
type Option func(*Base)

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBase returns a Base whose keys live under name. An empty name puts keys
// at the top level.
func NewBase(name string, opts ...Option) *Base {
	b := &Base{
		name:   name,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the subsystem name.
func (b *Base) Name() string { return b.name }

// Bind attaches the store that keys resolve against. A nil store detaches.
func (b *Base) Bind(s saveblob.Store) { b.store = s }

// Bound reports whether a store is attached.
func (b *Base) Bound() bool { return b.store != nil }

// PushKey pushes a scope segment. Callers must balance every PushKey with a
// PopKey.
func (b *Base) PushKey(segment string) {
	b.stack = append(b.stack, segment)
}

// PopKey pops the innermost scope segment. It reports false when the stack
// is already empty.
func (b *Base) PopKey() bool {
	if len(b.stack) == 0 {
		b.logger.Warn("pop on empty key stack", slog.String("system", b.name))
		return false
	}
	b.stack = b.stack[:len(b.stack)-1]
	return true
}

// Depth returns the number of pushed scope segments.
func (b *Base) Depth() int { return len(b.stack) }

// KeyOption modifies how a single access resolves or writes its key.
type KeyOption func(*keyConfig)

type keyConfig struct {
	platform    bool
	allowShrink bool
}

// PlatformSpecific inserts the current platform after the subsystem name.
func PlatformSpecific() KeyOption {
	return func(c *keyConfig) {
		c.platform = true
	}
}

// AllowShrink lets an array setter store fewer entries than are stored.
func AllowShrink() KeyOption {
	return func(c *keyConfig) {
		c.allowShrink = true
	}
}

func keyOptions(opts []KeyOption) keyConfig {
	var c keyConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Key returns the full dotted key that key resolves to.
func (b *Base) Key(key string, opts ...KeyOption) string {
	return b.resolve(key, keyOptions(opts))
}

func (b *Base) resolve(key string, c keyConfig) string {
	parts := make([]string, 0, len(b.stack)+3)
	if b.name != "" {
		parts = append(parts, b.name)
	}
	if c.platform && b.store != nil {
		if p := b.store.Platform(); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, b.stack...)
	parts = append(parts, key)
	return strings.Join(parts, ".")
}

// GetValue returns the raw value at key, or null when unbound or absent.
func (b *Base) GetValue(key string, opts ...KeyOption) tree.Value {
	if b.store == nil {
		return tree.Null()
	}
	return b.store.Get(b.Key(key, opts...))
}

// SetValue stores v at key.
func (b *Base) SetValue(key string, v tree.Value, opts ...KeyOption) error {
	if b.store == nil {
		b.logger.Error("set before a store is bound",
			slog.String("system", b.name),
			slog.String("key", key))
		return ErrUnbound
	}
	return b.store.Set(b.Key(key, opts...), v)
}

// Exists reports whether a non-null value is stored at key.
func (b *Base) Exists(key string, opts ...KeyOption) bool {
	return !b.GetValue(key, opts...).IsNull()
}

// GetInt returns the value at key as an int, or def.
func (b *Base) GetInt(key string, def int, opts ...KeyOption) int {
	return b.GetValue(key, opts...).AsInt(def)
}

// GetInt64 returns the value at key as an int64, or def.
func (b *Base) GetInt64(key string, def int64, opts ...KeyOption) int64 {
	return b.GetValue(key, opts...).AsInt64(def)
}

// GetFloat returns the value at key as a float64, or def.
func (b *Base) GetFloat(key string, def float64, opts ...KeyOption) float64 {
	return b.GetValue(key, opts...).AsFloat(def)
}

// GetBool returns the value at key as a bool, or def.
func (b *Base) GetBool(key string, def bool, opts ...KeyOption) bool {
	return b.GetValue(key, opts...).AsBool(def)
}

// GetString returns the value at key as a string, or def.
func (b *Base) GetString(key, def string, opts ...KeyOption) string {
	return b.GetValue(key, opts...).AsString(def)
}

// SetInt stores an int at key.
func (b *Base) SetInt(key string, v int, opts ...KeyOption) error {
	return b.SetValue(key, tree.Int(int64(v)), opts...)
}

// SetInt64 stores an int64 at key.
func (b *Base) SetInt64(key string, v int64, opts ...KeyOption) error {
	return b.SetValue(key, tree.Int(v), opts...)
}

// SetFloat stores a float64 at key.
func (b *Base) SetFloat(key string, v float64, opts ...KeyOption) error {
	return b.SetValue(key, tree.Float(v), opts...)
}

// SetBool stores a bool at key.
func (b *Base) SetBool(key string, v bool, opts ...KeyOption) error {
	return b.SetValue(key, tree.Bool(v), opts...)
}

// SetString stores a string at key.
func (b *Base) SetString(key, v string, opts ...KeyOption) error {
	return b.SetValue(key, tree.String(v), opts...)
}

// SetAt stores v at index of the list at key. A missing list is created and
// a short list is grown with nulls.
func (b *Base) SetAt(key string, index int, v tree.Value, opts ...KeyOption) error {
	if index < 0 {
		return ErrIndex
	}
	current := b.GetValue(key, opts...)
	var items []tree.Value
	if !current.IsNull() {
		list, ok := current.AsList()
		if !ok {
			b.logger.Warn("set at index on a value that is not a list",
				slog.String("system", b.name),
				slog.String("key", b.Key(key, opts...)),
				slog.String("kind", current.Kind().String()))
			return ErrNotList
		}
		items = append(items, list...)
	}
	for len(items) <= index {
		items = append(items, tree.Null())
	}
	items[index] = v
	return b.SetValue(key, tree.List(items...), opts...)
}
