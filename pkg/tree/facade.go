package tree

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is the sentinel wrapped by every TypeError.
var ErrTypeMismatch = errors.New("value type mismatch")

// TypeError reports a typed accessor that found a value of the wrong kind.
type TypeError struct {
	Key  string
	Want Kind
	Got  Kind
}

// Error implements error.
func (e *TypeError) Error() string {
	return fmt.Sprintf("key %q: want %s, got %s: %v", e.Key, e.Want, e.Got, ErrTypeMismatch)
}

// Unwrap lets errors.Is match ErrTypeMismatch.
func (e *TypeError) Unwrap() error { return ErrTypeMismatch }

// The typed accessors below are the read API that domain object builders use.
// Each performs Get, checks the variant tag and fails with a TypeError on a
// mismatch, so that every type assumption is verified at this boundary
// instead of trusted downstream.

// GetString returns the string bound to key.
func (t *Tree) GetString(key string) (string, error) {
	v, err := t.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(String)
	if !ok {
		return "", &TypeError{Key: key, Want: KindString, Got: v.Kind()}
	}
	return string(s), nil
}

// GetBool returns the boolean bound to key.
func (t *Tree) GetBool(key string) (bool, error) {
	v, err := t.Get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(Bool)
	if !ok {
		return false, &TypeError{Key: key, Want: KindBool, Got: v.Kind()}
	}
	return bool(b), nil
}

// GetInt returns the integer bound to key.
func (t *Tree) GetInt(key string) (int64, error) {
	v, err := t.Get(key)
	if err != nil {
		return 0, err
	}
	i, ok := v.(Int)
	if !ok {
		return 0, &TypeError{Key: key, Want: KindInt, Got: v.Kind()}
	}
	return int64(i), nil
}

// GetFloat returns the float bound to key. Integer values are widened,
// since script files routinely write 1 where a fraction is meant.
func (t *Tree) GetFloat(key string) (float64, error) {
	v, err := t.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case Float:
		return float64(n), nil
	case Int:
		return float64(n), nil
	default:
		return 0, &TypeError{Key: key, Want: KindFloat, Got: v.Kind()}
	}
}

// GetDate returns the date bound to key.
func (t *Tree) GetDate(key string) (Date, error) {
	v, err := t.Get(key)
	if err != nil {
		return Date{}, err
	}
	d, ok := v.(Date)
	if !ok {
		return Date{}, &TypeError{Key: key, Want: KindDate, Got: v.Kind()}
	}
	return d, nil
}

// GetColor returns the color bound to key.
func (t *Tree) GetColor(key string) (Color, error) {
	v, err := t.Get(key)
	if err != nil {
		return Color{}, err
	}
	c, ok := v.(Color)
	if !ok {
		return Color{}, &TypeError{Key: key, Want: KindColor, Got: v.Kind()}
	}
	return c, nil
}

// GetTree returns the nested block bound to key.
func (t *Tree) GetTree(key string) (*Tree, error) {
	v, err := t.Get(key)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Tree)
	if !ok {
		return nil, &TypeError{Key: key, Want: KindTree, Got: v.Kind()}
	}
	return sub, nil
}

// GetTrees returns every block bound to key: the nested trees of a repeated
// key, or a one-element slice for a single binding. Any non-tree binding
// fails with a TypeError.
func (t *Tree) GetTrees(key string) ([]*Tree, error) {
	v, err := t.Get(key)
	if err != nil {
		return nil, err
	}
	values, ok := v.(List)
	if !ok {
		values = List{v}
	}
	trees := make([]*Tree, len(values))
	for i, item := range values {
		sub, ok := item.(*Tree)
		if !ok {
			return nil, &TypeError{Key: key, Want: KindTree, Got: item.Kind()}
		}
		trees[i] = sub
	}
	return trees, nil
}

// GetStrings returns every string bound to key, unwrapping repetition the
// same way as GetTrees.
func (t *Tree) GetStrings(key string) ([]string, error) {
	v, err := t.Get(key)
	if err != nil {
		return nil, err
	}
	values, ok := v.(List)
	if !ok {
		values = List{v}
	}
	out := make([]string, len(values))
	for i, item := range values {
		s, ok := item.(String)
		if !ok {
			return nil, &TypeError{Key: key, Want: KindString, Got: item.Kind()}
		}
		out[i] = string(s)
	}
	return out, nil
}

// GetStringOr returns the string bound to key, or def when the key is absent.
// A present value of the wrong kind still fails.
func (t *Tree) GetStringOr(key, def string) (string, error) {
	if !t.Has(key) {
		return def, nil
	}
	return t.GetString(key)
}

// GetBoolOr returns the boolean bound to key, or def when the key is absent.
func (t *Tree) GetBoolOr(key string, def bool) (bool, error) {
	if !t.Has(key) {
		return def, nil
	}
	return t.GetBool(key)
}

// GetIntOr returns the integer bound to key, or def when the key is absent.
func (t *Tree) GetIntOr(key string, def int64) (int64, error) {
	if !t.Has(key) {
		return def, nil
	}
	return t.GetInt(key)
}

// GetFloatOr returns the float bound to key, or def when the key is absent.
func (t *Tree) GetFloatOr(key string, def float64) (float64, error) {
	if !t.Has(key) {
		return def, nil
	}
	return t.GetFloat(key)
}
