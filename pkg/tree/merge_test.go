package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAll(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "core", Value: String("SWE")},
		Entry{Key: "owner", Value: String("SWE")},
		Entry{Key: "core", Value: String("DAN")},
	)

	var cores []Value
	for v := range tr.FindAll("core") {
		cores = append(cores, v)
	}
	assert.Equal(t, []Value{String("SWE"), String("DAN")}, cores)

	var none []Value
	for v := range tr.FindAll("missing") {
		none = append(none, v)
	}
	assert.Empty(t, none)
}

func TestFindAllUnwrapsLists(t *testing.T) {
	t.Parallel()

	tr := NewMap(Entry{Key: "core", Value: List{String("SWE"), String("DAN")}})

	var cores []Value
	for v := range tr.FindAll("core") {
		cores = append(cores, v)
	}
	assert.Equal(t, []Value{String("SWE"), String("DAN")}, cores)
}

func TestFindAllRecursively(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "modifier", Value: String("top")},
		Entry{Key: "if", Value: NewMap(
			Entry{Key: "modifier", Value: String("nested")},
			Entry{Key: "else", Value: NewMap(
				Entry{Key: "modifier", Value: String("deep")},
			)},
		)},
	)

	var found []Value
	for v := range tr.FindAllRecursively("modifier") {
		found = append(found, v)
	}
	assert.Equal(t, []Value{String("top"), String("nested"), String("deep")}, found)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "limit", Value: String("x")},
		Entry{Key: "modifier", Value: String("y")},
	)

	kept := tr.Filter(func(k string, _ Value) bool { return k != "limit" })
	assert.Equal(t, 1, kept.Len())
	assert.True(t, kept.Has("modifier"))
	assert.False(t, kept.Has("limit"))

	// The receiver is untouched.
	assert.Equal(t, 2, tr.Len())
}

func TestMergeDuplicateKeys(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "terrain", Value: NewMap(
			Entry{Key: "plains", Value: Int(1)},
			Entry{Key: "hills", Value: Int(2)},
		)},
		Entry{Key: "climate", Value: String("cold")},
		Entry{Key: "terrain", Value: NewMap(
			Entry{Key: "hills", Value: Int(9)},
			Entry{Key: "marsh", Value: Int(3)},
		)},
	)

	merged, err := tr.MergeDuplicateKeys()
	require.NoError(t, err)

	keys, err := merged.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"terrain", "climate"}, keys, "collapsed key keeps its first position")

	terrain, err := merged.GetTree("terrain")
	require.NoError(t, err)

	hills, err := terrain.GetInt("hills")
	require.NoError(t, err)
	assert.Equal(t, int64(9), hills, "later binding overrides")

	plains, err := terrain.GetInt("plains")
	require.NoError(t, err)
	assert.Equal(t, int64(1), plains)

	marsh, err := terrain.GetInt("marsh")
	require.NoError(t, err)
	assert.Equal(t, int64(3), marsh)
}

func TestMergeDuplicateKeysLeavesScalarsAlone(t *testing.T) {
	t.Parallel()

	tr := NewMap(
		Entry{Key: "a", Value: Int(1)},
		Entry{Key: "a", Value: Int(2)},
	)

	merged, err := tr.MergeDuplicateKeys()
	require.NoError(t, err)

	v, err := merged.Get("a")
	require.NoError(t, err)
	assert.Equal(t, List{Int(1), Int(2)}, v)
}

func TestOverride(t *testing.T) {
	t.Parallel()

	base := NewMap(
		Entry{Key: "a", Value: Int(1)},
		Entry{Key: "b", Value: Int(2)},
	)
	patch := NewMap(Entry{Key: "a", Value: Int(10)})

	out, err := base.Override(patch)
	require.NoError(t, err)

	a, err := out.GetInt("a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), a)

	b, err := out.GetInt("b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b)

	// Inputs are unchanged.
	orig, err := base.GetInt("a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), orig)
}

func TestMergeRecursesIntoBlocks(t *testing.T) {
	t.Parallel()

	base := NewMap(
		Entry{Key: "country", Value: NewMap(Entry{Key: "tag", Value: String("SWE")})},
		Entry{Key: "year", Value: Int(1444)},
	)
	other := NewMap(
		Entry{Key: "country", Value: NewMap(Entry{Key: "rank", Value: Int(2)})},
		Entry{Key: "year", Value: Int(1445)},
	)

	out, err := base.Merge(other)
	require.NoError(t, err)

	country, err := out.GetTree("country")
	require.NoError(t, err)
	tag, err := country.GetString("tag")
	require.NoError(t, err)
	assert.Equal(t, "SWE", tag)
	rank, err := country.GetInt("rank")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	// Scalar collisions accumulate instead of overwriting.
	years, err := out.Get("year")
	require.NoError(t, err)
	assert.Equal(t, List{Int(1444), Int(1445)}, years)
}

func TestMergeRejectsListShape(t *testing.T) {
	t.Parallel()

	_, err := NewList(Int(1)).Merge(NewMap())
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewMap().Override(NewList(Int(1)))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
