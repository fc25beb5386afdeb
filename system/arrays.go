package system

import (
	"log/slog"

	"github.com/meigma/saveblob/tree"
)

// GetIntArray returns the list at key as ints. Elements that cannot be
// converted read as 0. A missing or non-list value yields nil.
func (b *Base) GetIntArray(key string, opts ...KeyOption) []int {
	return getArray(b, key, opts, func(v tree.Value) int { return v.AsInt(0) })
}

// GetInt64Array returns the list at key as int64s.
func (b *Base) GetInt64Array(key string, opts ...KeyOption) []int64 {
	return getArray(b, key, opts, func(v tree.Value) int64 { return v.AsInt64(0) })
}

// GetFloatArray returns the list at key as float64s.
func (b *Base) GetFloatArray(key string, opts ...KeyOption) []float64 {
	return getArray(b, key, opts, func(v tree.Value) float64 { return v.AsFloat(0) })
}

// GetBoolArray returns the list at key as bools.
func (b *Base) GetBoolArray(key string, opts ...KeyOption) []bool {
	return getArray(b, key, opts, func(v tree.Value) bool { return v.AsBool(false) })
}

// GetStringArray returns the list at key as strings. Null and composite
// elements read as "".
func (b *Base) GetStringArray(key string, opts ...KeyOption) []string {
	return getArray(b, key, opts, func(v tree.Value) string { return v.AsString("") })
}

// SetIntArray stores values as a list at key. It panics with a *ShrinkError
// when values is shorter than the stored list, unless AllowShrink is given.
func (b *Base) SetIntArray(key string, values []int, opts ...KeyOption) error {
	return setArray(b, key, values, opts, func(n int) tree.Value { return tree.Int(int64(n)) })
}

// SetInt64Array stores values as a list at key with the rules of SetIntArray.
func (b *Base) SetInt64Array(key string, values []int64, opts ...KeyOption) error {
	return setArray(b, key, values, opts, tree.Int)
}

// SetFloatArray stores values as a list at key with the rules of SetIntArray.
func (b *Base) SetFloatArray(key string, values []float64, opts ...KeyOption) error {
	return setArray(b, key, values, opts, tree.Float)
}

// SetBoolArray stores values as a list at key with the rules of SetIntArray.
func (b *Base) SetBoolArray(key string, values []bool, opts ...KeyOption) error {
	return setArray(b, key, values, opts, tree.Bool)
}

// SetStringArray stores values as a list at key with the rules of SetIntArray.
func (b *Base) SetStringArray(key string, values []string, opts ...KeyOption) error {
	return setArray(b, key, values, opts, tree.String)
}

func getArray[T any](b *Base, key string, opts []KeyOption, conv func(tree.Value) T) []T {
	items, ok := b.GetValue(key, opts...).AsList()
	if !ok {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = conv(item)
	}
	return out
}

func setArray[T any](b *Base, key string, values []T, opts []KeyOption, conv func(T) tree.Value) error {
	if b.store == nil {
		return b.SetValue(key, tree.Null(), opts...)
	}
	c := keyOptions(opts)
	if !c.allowShrink {
		stored := b.GetValue(key, opts...)
		if stored.Kind() == tree.KindList && len(values) < stored.Len() {
			full := b.resolve(key, c)
			b.logger.Error("array would shrink",
				slog.String("system", b.name),
				slog.String("key", full),
				slog.Int("stored", stored.Len()),
				slog.Int("new", len(values)))
			panic(&ShrinkError{Key: full, Stored: stored.Len(), New: len(values)})
		}
	}
	items := make([]tree.Value, len(values))
	for i, v := range values {
		items[i] = conv(v)
	}
	return b.SetValue(key, tree.List(items...), opts...)
}
