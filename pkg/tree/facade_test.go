package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *Tree {
	return NewMap(
		Entry{Key: "name", Value: String("stockholm")},
		Entry{Key: "size", Value: Int(1000)},
		Entry{Key: "tax", Value: Float(0.35)},
		Entry{Key: "capital", Value: Bool(true)},
		Entry{Key: "founded", Value: Date{Year: 1252, Month: 7, Day: 12}},
		Entry{Key: "color", Value: Color{Space: ColorRGB, Values: [3]float64{20, 50, 210}}},
		Entry{Key: "pop", Value: NewMap(Entry{Key: "size", Value: Int(40)})},
		Entry{Key: "pop", Value: NewMap(Entry{Key: "size", Value: Int(60)})},
		Entry{Key: "era", Value: String("medieval")},
		Entry{Key: "era", Value: String("renaissance")},
	)
}

func TestTypedAccessors(t *testing.T) {
	t.Parallel()

	tr := testTree()

	s, err := tr.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "stockholm", s)

	i, err := tr.GetInt("size")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), i)

	f, err := tr.GetFloat("tax")
	require.NoError(t, err)
	assert.InDelta(t, 0.35, f, 1e-9)

	b, err := tr.GetBool("capital")
	require.NoError(t, err)
	assert.True(t, b)

	d, err := tr.GetDate("founded")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 1252, Month: 7, Day: 12}, d)

	c, err := tr.GetColor("color")
	require.NoError(t, err)
	assert.Equal(t, ColorRGB, c.Space)
}

func TestGetFloatWidensInt(t *testing.T) {
	t.Parallel()

	f, err := testTree().GetFloat("size")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, f)
}

func TestTypeMismatchDetail(t *testing.T) {
	t.Parallel()

	_, err := testTree().GetInt("name")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "name", typeErr.Key)
	assert.Equal(t, KindInt, typeErr.Want)
	assert.Equal(t, KindString, typeErr.Got)
	assert.Contains(t, typeErr.Error(), `"name"`)
}

func TestTypedAccessorAbsentKey(t *testing.T) {
	t.Parallel()

	_, err := testTree().GetInt("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NotErrorIs(t, err, ErrTypeMismatch)
}

func TestGetTrees(t *testing.T) {
	t.Parallel()

	tr := testTree()

	pops, err := tr.GetTrees("pop")
	require.NoError(t, err)
	require.Len(t, pops, 2)

	first, err := pops[0].GetInt("size")
	require.NoError(t, err)
	assert.Equal(t, int64(40), first)

	// A single binding still comes back as a one-element slice.
	one := NewMap(Entry{Key: "pop", Value: NewMap(Entry{Key: "size", Value: Int(5)})})
	single, err := one.GetTrees("pop")
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = tr.GetTrees("era")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestGetStrings(t *testing.T) {
	t.Parallel()

	tr := testTree()

	eras, err := tr.GetStrings("era")
	require.NoError(t, err)
	assert.Equal(t, []string{"medieval", "renaissance"}, eras)

	one, err := tr.GetStrings("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"stockholm"}, one)

	_, err = tr.GetStrings("pop")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDefaultingAccessors(t *testing.T) {
	t.Parallel()

	tr := testTree()

	i, err := tr.GetIntOr("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)

	s, err := tr.GetStringOr("name", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "stockholm", s)

	b, err := tr.GetBoolOr("missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	f, err := tr.GetFloatOr("missing", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	// Present but mistyped values still fail rather than defaulting.
	_, err = tr.GetIntOr("name", 7)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
