package system

import (
	"log/slog"

	"github.com/meigma/saveblob/tree"
)

// cacheEntry mirrors one stored value in memory so hot paths can read it
// without walking the tree.
type cacheEntry struct {
	def   tree.Value
	value tree.Value
}

// CacheInt registers key as a cached int with default def.
func (b *Base) CacheInt(key string, def int) {
	b.cacheValue(key, tree.Int(int64(def)))
}

// CacheString registers key as a cached string with default def.
func (b *Base) CacheString(key, def string) {
	b.cacheValue(key, tree.String(def))
}

func (b *Base) cacheValue(key string, def tree.Value) {
	if b.cache == nil {
		b.cache = make(map[string]*cacheEntry)
	}
	if _, ok := b.cache[key]; !ok {
		b.cacheOrder = append(b.cacheOrder, key)
	}
	b.cache[key] = &cacheEntry{def: def, value: def}
}

// CachedInt returns the cached int for key, or 0 when key is not cached.
func (b *Base) CachedInt(key string) int {
	if e, ok := b.cache[key]; ok {
		return e.value.AsInt(0)
	}
	return 0
}

// CachedString returns the cached string for key, or "" when key is not
// cached.
func (b *Base) CachedString(key string) string {
	if e, ok := b.cache[key]; ok {
		return e.value.AsString("")
	}
	return ""
}

// SetCachedInt updates a cached int and marks the cache dirty when the value
// changes. Keys that were never registered are ignored.
func (b *Base) SetCachedInt(key string, v int) {
	b.setCached(key, tree.Int(int64(v)))
}

// SetCachedString updates a cached string with the rules of SetCachedInt.
func (b *Base) SetCachedString(key, v string) {
	b.setCached(key, tree.String(v))
}

func (b *Base) setCached(key string, v tree.Value) {
	e, ok := b.cache[key]
	if !ok {
		b.logger.Warn("set on uncached key",
			slog.String("system", b.name),
			slog.String("key", key))
		return
	}
	if e.value.Equal(v) {
		return
	}
	e.value = v
	b.dirty = true
}

// ResetCache restores every cached value to its default and clears the dirty
// flag.
func (b *Base) ResetCache() {
	for _, e := range b.cache {
		e.value = e.def
	}
	b.dirty = false
}

// LoadCache reads every cached key from the store.
func (b *Base) LoadCache() error {
	if b.store == nil {
		return ErrUnbound
	}
	for _, key := range b.cacheOrder {
		e := b.cache[key]
		switch e.def.Kind() {
		case tree.KindInt:
			e.value = tree.Int(int64(b.GetInt(key, e.def.AsInt(0))))
		default:
			e.value = tree.String(b.GetString(key, e.def.AsString("")))
		}
	}
	b.dirty = false
	return nil
}

// SaveCache writes every cached value to the store and clears the dirty
// flag.
func (b *Base) SaveCache() error {
	for _, key := range b.cacheOrder {
		if err := b.SetValue(key, b.cache[key].value); err != nil {
			return err
		}
	}
	b.dirty = false
	return nil
}

// Dirty reports whether a cached value changed since the last load or save.
func (b *Base) Dirty() bool { return b.dirty }

// SetDirty sets the dirty flag.
func (b *Base) SetDirty(dirty bool) { b.dirty = dirty }
