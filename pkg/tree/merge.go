package tree

import (
	"fmt"
	"iter"
)

// FindAll iterates every value bound to key, in document order. A binding
// whose value is already a List (for example after MergeDuplicateKeys) is
// unwrapped element by element. The sequence is empty when the key is absent
// or the tree is list-shaped, which makes it convenient for files that may or
// may not repeat a key.
func (t *Tree) FindAll(key string) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for i := range t.entries {
			if !t.entries[i].HasKey || t.entries[i].Key != key {
				continue
			}
			if l, ok := t.entries[i].Value.(List); ok {
				for _, v := range l {
					if !yield(v) {
						return
					}
				}
				continue
			}
			if !yield(t.entries[i].Value) {
				return
			}
		}
	}
}

// FindAllRecursively is FindAll over the whole tree, descending into nested
// blocks of either shape.
func (t *Tree) FindAllRecursively(key string) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		t.findAllRec(key, yield)
	}
}

func (t *Tree) findAllRec(key string, yield func(Value) bool) bool {
	for i := range t.entries {
		e := &t.entries[i]
		if e.HasKey && e.Key == key {
			if !yield(e.Value) {
				return false
			}
			continue
		}
		if sub, ok := e.Value.(*Tree); ok {
			if !sub.findAllRec(key, yield) {
				return false
			}
		}
	}
	return true
}

// Filter returns a new tree holding only the entries for which pred returns
// true. The shape of the receiver is kept.
func (t *Tree) Filter(pred func(key string, v Value) bool) *Tree {
	kept := make([]Entry, 0, len(t.entries))
	for i := range t.entries {
		if pred(t.entries[i].Key, t.entries[i].Value) {
			kept = append(kept, t.entries[i])
		}
	}
	return &Tree{entries: kept, list: t.list}
}

// MergeDuplicateKeys returns a new tree in which every key repeated with
// block values is collapsed into a single block, later bindings overriding
// earlier ones. Keys repeated with non-block values are left alone. The
// collapsed binding keeps the position of the key's first occurrence.
func (t *Tree) MergeDuplicateKeys() (*Tree, error) {
	if t.list {
		return nil, fmt.Errorf("merge duplicate keys on list-shaped tree: %w", ErrShapeMismatch)
	}

	groups := make(map[string][]*Tree)
	counts := make(map[string]int)
	for i := range t.entries {
		key := t.entries[i].Key
		counts[key]++
		if sub, ok := t.entries[i].Value.(*Tree); ok {
			groups[key] = append(groups[key], sub)
		}
	}

	entries := make([]Entry, 0, len(t.entries))
	emitted := make(map[string]struct{})
	for i := range t.entries {
		key := t.entries[i].Key
		if counts[key] < 2 || len(groups[key]) != counts[key] {
			entries = append(entries, t.entries[i])
			continue
		}
		if _, done := emitted[key]; done {
			continue
		}
		emitted[key] = struct{}{}
		merged := groups[key][0]
		for _, sub := range groups[key][1:] {
			var err error
			merged, err = merged.Override(sub)
			if err != nil {
				return nil, fmt.Errorf("merging duplicate key %q: %w", key, err)
			}
		}
		entries = append(entries, Entry{Key: key, HasKey: true, Value: merged})
	}
	return &Tree{entries: entries}, nil
}

// Override returns a new tree combining the receiver with other, later keys
// replacing earlier bindings wholesale. Both trees must be map-shaped. This
// is the merge used across files where a later file redefines an entity.
func (t *Tree) Override(other *Tree) (*Tree, error) {
	if t.list || other.list {
		return nil, fmt.Errorf("override on list-shaped tree: %w", ErrShapeMismatch)
	}
	replaced := make(map[string]struct{}, other.Len())
	for i := range other.entries {
		replaced[other.entries[i].Key] = struct{}{}
	}
	entries := make([]Entry, 0, len(t.entries)+len(other.entries))
	for i := range t.entries {
		if _, gone := replaced[t.entries[i].Key]; gone {
			continue
		}
		entries = append(entries, t.entries[i])
	}
	entries = append(entries, other.entries...)
	return &Tree{entries: entries}, nil
}

// Merge returns a new tree combining the receiver with other. A key whose
// single binding is a block on both sides merges recursively; any other
// collision keeps both bindings, so Get yields the accumulated List. Both
// trees must be map-shaped.
func (t *Tree) Merge(other *Tree) (*Tree, error) {
	if t.list || other.list {
		return nil, fmt.Errorf("merge on list-shaped tree: %w", ErrShapeMismatch)
	}

	entries := make([]Entry, len(t.entries), len(t.entries)+len(other.entries))
	copy(entries, t.entries)

	for i := range other.entries {
		o := other.entries[i]
		idx := singleBindingIndex(entries, o.Key)
		if idx >= 0 {
			mine, mineOK := entries[idx].Value.(*Tree)
			theirs, theirsOK := o.Value.(*Tree)
			if mineOK && theirsOK && !mine.list && !theirs.list {
				merged, err := mine.Merge(theirs)
				if err != nil {
					return nil, fmt.Errorf("merging key %q: %w", o.Key, err)
				}
				entries[idx].Value = merged
				continue
			}
		}
		entries = append(entries, o)
	}
	return &Tree{entries: entries}, nil
}

// singleBindingIndex returns the index of key's only binding, or -1 when the
// key is absent or repeated.
func singleBindingIndex(entries []Entry, key string) int {
	found := -1
	for i := range entries {
		if entries[i].Key != key {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = i
	}
	return found
}
