// Package tree implements the nested key-value payload stored in a save.
//
// A [Tree] is a map of named [Value]s addressed by dotted keys such as
// "User.Stats.level". Values form a tagged union of null, bool, int, float,
// string, list and map. Typed accessors never fail: a missing value or one
// that cannot be converted yields the caller's default.
package tree

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is one node of a tree. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    int64
	f    float64
	s    string
	list []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, n: n} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list value holding items. The slice is used directly.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Map returns a map value. A nil map is replaced with an empty one. The
// map is used directly, so later changes through the value, such as a
// nested Tree.Set, are visible to the caller.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, m: m}
}

// Of converts a Go value into a Value. It accepts Value, nil, bools, all
// integer and float widths, strings, json.Number, and slices and string-keyed
// maps of those. Anything else becomes null.
func Of(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return ofUint(uint64(v))
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		return ofUint(v)
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case string:
		return String(v)
	case json.Number:
		return ofNumber(v)
	case []Value:
		return List(v...)
	case map[string]Value:
		return Map(v)
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = Of(item)
		}
		return List(items...)
	case map[string]any:
		m := make(map[string]Value, len(v))
		for k, item := range v {
			m[k] = Of(item)
		}
		return Map(m)
	}
	return ofReflect(reflect.ValueOf(x))
}

func ofUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func ofNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	if f, err := n.Float64(); err == nil {
		return Float(f)
	}
	return String(n.String())
}

func ofReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null()
		}
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = Of(rv.Index(i).Interface())
		}
		return List(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return Null()
		}
		m := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = Of(iter.Value().Interface())
		}
		return Map(m)
	case reflect.Pointer:
		if rv.IsNil() {
			return Null()
		}
		return Of(rv.Elem().Interface())
	default:
		return Null()
	}
}

// Kind returns the type held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt64 converts v to an int64. Floats round half to even; numeric strings
// are parsed; bools become 1 or 0.
func (v Value) AsInt64(def int64) int64 {
	switch v.kind {
	case KindInt:
		return v.n
	case KindFloat:
		return floatToInt(v.f, def)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		s := strings.TrimSpace(v.s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f, def)
		}
	}
	return def
}

// AsInt converts v to an int using the rules of AsInt64.
func (v Value) AsInt(def int) int {
	n := v.AsInt64(int64(def))
	if n < math.MinInt || n > math.MaxInt {
		return def
	}
	return int(n)
}

// AsFloat converts v to a float64.
func (v Value) AsFloat(def float64) float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.n)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64); err == nil {
			return f
		}
	}
	return def
}

// AsBool converts v to a bool. Numbers are true when non-zero; strings must
// spell "true" or "false" in any case.
func (v Value) AsBool(def bool) bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.n != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		s := strings.TrimSpace(v.s)
		if strings.EqualFold(s, "true") {
			return true
		}
		if strings.EqualFold(s, "false") {
			return false
		}
	}
	return def
}

// AsString converts scalar values to their string form.
func (v Value) AsString(def string) string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.n, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return def
}

// AsList returns the items of a list value. The slice aliases v.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// AsMap returns the entries of a map value. The map aliases v.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Len returns the number of items in a list or map, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Interface returns v as plain Go values: nil, bool, int64, float64, string,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.n
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return List(items...)
	case KindMap:
		m := make(map[string]Value, len(v.m))
		for k, item := range v.m {
			m[k] = item.Clone()
		}
		return Map(m)
	default:
		return v
	}
}

// Equal reports whether v and o hold the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.n == o.n
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, item := range v.m {
			other, ok := o.m[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v as JSON for debugging. Unencodable values render as "null".
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "null"
	}
	return string(b)
}

func floatToInt(f float64, def int64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	r := math.RoundToEven(f)
	if r < math.MinInt64 || r >= math.MaxInt64 {
		return def
	}
	return int64(r)
}
