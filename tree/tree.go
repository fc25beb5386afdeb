package tree

import (
	"fmt"
	"slices"
	"strings"
)

// Separator splits a dotted key into path segments.
const Separator = "."

// Tree is a nested map of values addressed by dotted keys.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	root map[string]Value
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{root: map[string]Value{}}
}

// FromMap returns a Tree holding m. The map is used directly.
func FromMap(m map[string]Value) *Tree {
	if m == nil {
		m = map[string]Value{}
	}
	return &Tree{root: m}
}

// Parse returns a Tree decoded from JSON text.
func Parse(text string) (*Tree, error) {
	t := New()
	if err := t.FromText(text); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the value at key, or null when any segment is missing.
func (t *Tree) Get(key string) Value {
	path := split(key)
	m := t.root
	for _, seg := range path[:len(path)-1] {
		child, ok := m[seg]
		if !ok || child.kind != KindMap {
			return Null()
		}
		m = child.m
	}
	return m[path[len(path)-1]]
}

// Has reports whether a value is stored at key.
func (t *Tree) Has(key string) bool {
	path := split(key)
	m := t.root
	for _, seg := range path[:len(path)-1] {
		child, ok := m[seg]
		if !ok || child.kind != KindMap {
			return false
		}
		m = child.m
	}
	_, ok := m[path[len(path)-1]]
	return ok
}

// Set stores v at key, creating intermediate maps as needed. An intermediate
// value that is not a map is replaced.
// v is stored without copying; use Value.Clone to detach it from the
// caller's maps and slices.
func (t *Tree) Set(key string, v Value) {
	path := split(key)
	m := t.root
	for _, seg := range path[:len(path)-1] {
		child, ok := m[seg]
		if !ok || child.kind != KindMap {
			child = Map(nil)
			m[seg] = child
		}
		m = child.m
	}
	m[path[len(path)-1]] = v
}

// Delete removes the value at key and reports whether it existed. Emptied
// parent maps are kept.
func (t *Tree) Delete(key string) bool {
	path := split(key)
	m := t.root
	for _, seg := range path[:len(path)-1] {
		child, ok := m[seg]
		if !ok || child.kind != KindMap {
			return false
		}
		m = child.m
	}
	last := path[len(path)-1]
	if _, ok := m[last]; !ok {
		return false
	}
	delete(m, last)
	return true
}

// Keys returns the sorted top-level keys.
func (t *Tree) Keys() []string {
	keys := make([]string, 0, len(t.root))
	for k := range t.root {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of top-level entries.
func (t *Tree) Len() int { return len(t.root) }

// Root returns a copy of the whole tree as a map value.
func (t *Tree) Root() Value {
	return Map(t.root).Clone()
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	m, _ := t.Root().AsMap()
	return &Tree{root: m}
}

// Equal reports whether t and o hold the same content.
func (t *Tree) Equal(o *Tree) bool {
	if o == nil {
		return false
	}
	return Map(t.root).Equal(Map(o.root))
}

// Text returns the canonical JSON form of t with sorted keys.
func (t *Tree) Text() (string, error) {
	b, err := Map(t.root).MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// String returns Text, or "{}" when t cannot be encoded.
func (t *Tree) String() string {
	s, err := t.Text()
	if err != nil {
		return "{}"
	}
	return s
}

// FromText replaces the content of t with the JSON object in text. On error
// t is left unchanged.
func (t *Tree) FromText(text string) error {
	m, err := decodeObject(text)
	if err != nil {
		return err
	}
	t.root = m
	return nil
}

// Merge folds the JSON object in text into t. Incoming values win, except
// that two maps under the same key are merged recursively. On error t is
// left unchanged.
func (t *Tree) Merge(text string) error {
	m, err := decodeObject(text)
	if err != nil {
		return err
	}
	mergeMaps(t.root, m)
	return nil
}

// MergeTree folds o into t with the rules of Merge.
func (t *Tree) MergeTree(o *Tree) {
	m, _ := o.Root().AsMap()
	mergeMaps(t.root, m)
}

func mergeMaps(dst, src map[string]Value) {
	for k, sv := range src {
		dv, ok := dst[k]
		if ok && dv.kind == KindMap && sv.kind == KindMap {
			mergeMaps(dv.m, sv.m)
			continue
		}
		dst[k] = sv
	}
}

func decodeObject(text string) (map[string]Value, error) {
	raw, err := decodeJSON([]byte(text))
	if err != nil {
		return nil, err
	}
	v := Of(raw)
	m, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, v.Kind())
	}
	return m, nil
}

func split(key string) []string {
	return strings.Split(key, Separator)
}
