package tree

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Sentinel errors for tree access.
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrShapeMismatch = errors.New("tree shape mismatch")
)

// Entry is one (key, value) binding of a map-shaped tree, or a bare value of
// a list-shaped tree (Key empty, HasKey false).
type Entry struct {
	Key    string
	HasKey bool
	Value  Value
}

// Tree is one parsed script block. Entries keep document order and a key may
// repeat; repeated bindings accumulate rather than overwrite. A tree is either
// map-shaped (every entry keyed) or list-shaped (no entry keyed); the shape is
// decided at construction and never changes. Trees are immutable once built
// and safe for concurrent reads.
type Tree struct {
	entries []Entry
	list    bool
}

// Kind implements Value.
func (*Tree) Kind() Kind { return KindTree }

// NewMap builds a map-shaped tree from keyed entries in the given order.
func NewMap(entries ...Entry) *Tree {
	for i := range entries {
		entries[i].HasKey = true
	}
	return &Tree{entries: entries}
}

// NewList builds a list-shaped tree from the given values in order.
func NewList(values ...Value) *Tree {
	entries := make([]Entry, len(values))
	for i, v := range values {
		entries[i] = Entry{Value: v}
	}
	return &Tree{entries: entries, list: true}
}

// IsList reports whether the tree is list-shaped. An empty tree is
// map-shaped; an empty block in a script file is indistinguishable from an
// empty list, and callers overwhelmingly treat blocks as maps.
func (t *Tree) IsList() bool { return t.list }

// Len returns the number of entries, counting repeated keys once per binding.
func (t *Tree) Len() int { return len(t.entries) }

// Has reports whether key is bound at least once. It is false on list-shaped
// trees rather than an error, to keep presence checks cheap.
func (t *Tree) Has(key string) bool {
	for i := range t.entries {
		if t.entries[i].HasKey && t.entries[i].Key == key {
			return true
		}
	}
	return false
}

// Get returns the value bound to key. A key bound once yields its single
// value; a repeated key yields a List of every binding in document order.
// Absent keys fail with ErrKeyNotFound, and any keyed access on a list-shaped
// tree fails with ErrShapeMismatch.
func (t *Tree) Get(key string) (Value, error) {
	if t.list {
		return nil, fmt.Errorf("get %q on list-shaped tree: %w", key, ErrShapeMismatch)
	}
	var matches List
	for i := range t.entries {
		if t.entries[i].Key == key {
			matches = append(matches, t.entries[i].Value)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	case 1:
		return matches[0], nil
	default:
		return matches, nil
	}
}

// GetOr returns the value bound to key, or def when the key is absent or the
// tree is list-shaped.
func (t *Tree) GetOr(key string, def Value) Value {
	v, err := t.Get(key)
	if err != nil {
		return def
	}
	return v
}

// Entries iterates raw (key, value) entries in insertion order without
// merging repeated keys. The sequence is restartable. On list-shaped trees
// the yielded key is the empty string.
func (t *Tree) Entries() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i := range t.entries {
			if !yield(t.entries[i].Key, t.entries[i].Value) {
				return
			}
		}
	}
}

// AsList returns the ordered values of a list-shaped tree. Map-shaped trees,
// including empty ones, fail with ErrShapeMismatch.
func (t *Tree) AsList() ([]Value, error) {
	if !t.list {
		return nil, fmt.Errorf("as_list on map-shaped tree: %w", ErrShapeMismatch)
	}
	values := make([]Value, len(t.entries))
	for i := range t.entries {
		values[i] = t.entries[i].Value
	}
	return values, nil
}

// Keys returns the distinct keys of a map-shaped tree in first-occurrence
// order, ignoring repetition count. List-shaped trees fail with
// ErrShapeMismatch.
func (t *Tree) Keys() ([]string, error) {
	if t.list {
		return nil, fmt.Errorf("keys on list-shaped tree: %w", ErrShapeMismatch)
	}
	seen := make(map[string]struct{}, len(t.entries))
	keys := make([]string, 0, len(t.entries))
	for i := range t.entries {
		if _, dup := seen[t.entries[i].Key]; dup {
			continue
		}
		seen[t.entries[i].Key] = struct{}{}
		keys = append(keys, t.entries[i].Key)
	}
	return keys, nil
}

// String renders the tree in script-like notation on one line.
func (t *Tree) String() string {
	var b strings.Builder
	_ = b.WriteByte('{')
	for i := range t.entries {
		_ = b.WriteByte(' ')
		if t.entries[i].HasKey {
			_, _ = b.WriteString(t.entries[i].Key)
			_, _ = b.WriteString(" = ")
		}
		_, _ = b.WriteString(t.entries[i].Value.String())
	}
	_, _ = b.WriteString(" }")
	return b.String()
}
