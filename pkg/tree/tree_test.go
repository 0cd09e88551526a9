package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSingleKey(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "owner", Value: String("SWE")},
		Entry{Key: "development", Value: Int(12)},
	)

	v, err := tr.Get("owner")
	require.NoError(t, err)
	assert.Equal(t, String("SWE"), v)

	// Trees are immutable, so repeated reads must agree.
	again, err := tr.Get("owner")
	require.NoError(t, err)
	assert.Equal(t, v, again)
}

func TestGetRepeatedKeyAggregates(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "core", Value: String("SWE")},
		Entry{Key: "owner", Value: String("SWE")},
		Entry{Key: "core", Value: String("DAN")},
		Entry{Key: "core", Value: String("NOR")},
	)

	v, err := tr.Get("core")
	require.NoError(t, err)
	require.IsType(t, List{}, v)
	assert.Equal(t, List{String("SWE"), String("DAN"), String("NOR")}, v,
		"repeated bindings must aggregate in document order")
}

func TestGetAbsentKey(t *testing.T) {
	t.Parallel()

	tr := NewMap(Entry{Key: "owner", Value: String("SWE")})

	_, err := tr.Get("controller")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorContains(t, err, "controller")
}

func TestGetOr(t *testing.T) {
	t.Parallel()

	tr := NewMap(Entry{Key: "owner", Value: String("SWE")})

	assert.Equal(t, String("SWE"), tr.GetOr("owner", String("none")))
	assert.Equal(t, String("none"), tr.GetOr("controller", String("none")))
}

func TestEntriesRoundTrip(t *testing.T) {
	t.Parallel()

	in := []Entry{
		{Key: "a", Value: Int(1)},
		{Key: "b", Value: String("x")},
		{Key: "a", Value: Int(2)},
	}
	tr := NewMap(in...)

	collect := func() ([]string, []Value) {
		var keys []string
		var values []Value
		for k, v := range tr.Entries() {
			keys = append(keys, k)
			values = append(values, v)
		}
		return keys, values
	}

	keys, values := collect()
	assert.Equal(t, []string{"a", "b", "a"}, keys, "entries must keep insertion order and multiplicity")
	assert.Equal(t, []Value{Int(1), String("x"), Int(2)}, values)

	// Restartable: a second full iteration yields the same sequence.
	keys2, values2 := collect()
	assert.Equal(t, keys, keys2)
	assert.Equal(t, values, values2)
}

func TestEntriesEarlyStop(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "a", Value: Int(1)},
		Entry{Key: "b", Value: Int(2)},
	)

	var seen int
	for range tr.Entries() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestListShapedTree(t *testing.T) {
	t.Parallel()

	tr := NewList(Int(10), Int(20), Int(30))
	require.True(t, tr.IsList())

	values, err := tr.AsList()
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(10), Int(20), Int(30)}, values)

	_, err = tr.Get("anything")
	assert.ErrorIs(t, err, ErrShapeMismatch, "keyed access on a list-shaped tree must fail")

	_, err = tr.Keys()
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMapShapedTreeRejectsAsList(t *testing.T) {
	t.Parallel()

	tr := NewMap(Entry{Key: "a", Value: Int(1)})
	_, err := tr.AsList()
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEmptyBlockIsMapShaped(t *testing.T) {
	t.Parallel()

	tr := NewMap()
	assert.False(t, tr.IsList())
	assert.Zero(t, tr.Len())

	keys, err := tr.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = tr.AsList()
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestKeysDistinctFirstOccurrence(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "b", Value: Int(1)},
		Entry{Key: "a", Value: Int(2)},
		Entry{Key: "b", Value: Int(3)},
	)

	keys, err := tr.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, keys)
}

func TestHas(t *testing.T) {
	t.Parallel()

	tr := NewMap(Entry{Key: "a", Value: Int(1)})
	assert.True(t, tr.Has("a"))
	assert.False(t, tr.Has("b"))
	assert.False(t, NewList(Int(1)).Has("a"))
}

func TestTreeString(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "owner", Value: String("SWE")},
		Entry{Key: "cost", Value: NewList(Int(1), Int(2))},
	)
	assert.Equal(t, "{ owner = SWE cost = { 1 2 } }", tr.String())
}
