package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDecoder returns a fixed document and counts invocations.
type countingDecoder struct {
	doc   string
	calls atomic.Int64
}

func (d *countingDecoder) Decode(context.Context, string) ([]byte, error) {
	d.calls.Add(1)
	return []byte(d.doc), nil
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := &Store{Dir: t.TempDir(), Version: "1.0"}
	dgst := digest.FromString("hello")

	_, ok, err := s.Get(dgst)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(dgst, []byte(`{"a": "1"}`)))

	doc, ok, err := s.Get(dgst)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": "1"}`, string(doc))
}

func TestStorePrune(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := &Store{Dir: dir, Version: "0.9"}
	cur := &Store{Dir: dir, Version: "1.0"}
	dgst := digest.FromString("x")

	require.NoError(t, old.Put(dgst, []byte("{}")))
	require.NoError(t, cur.Put(dgst, []byte("{}")))

	require.NoError(t, cur.Prune())

	_, ok, err := cur.Get(dgst)
	require.NoError(t, err)
	assert.True(t, ok, "current namespace survives")

	_, ok, err = old.Get(dgst)
	require.NoError(t, err)
	assert.False(t, ok, "stale namespace is gone")
}

func TestCachingDecoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(file, []byte("a = 1"), 0o644))

	inner := &countingDecoder{doc: `{"a": "1"}`}
	collector := NewCollector()
	d := &CachingDecoder{
		Inner:     inner,
		Store:     &Store{Dir: t.TempDir(), Version: "1.0"},
		Collector: collector,
	}

	doc, err := d.Decode(t.Context(), file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "1"}`, string(doc))
	assert.Equal(t, int64(1), inner.calls.Load())

	// Second decode of unchanged content is served from cache.
	doc, err = d.Decode(t.Context(), file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "1"}`, string(doc))
	assert.Equal(t, int64(1), inner.calls.Load())

	// Changing the file changes the digest and misses.
	require.NoError(t, os.WriteFile(file, []byte("a = 2"), 0o644))
	_, err = d.Decode(t.Context(), file)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())

	r := collector.Report()
	require.Len(t, r.Folders, 1)
	assert.Equal(t, 3, r.Folders[0].Files)
	assert.Equal(t, 1, r.Folders[0].Hits)
	assert.InDelta(t, 1.0/3.0, r.HitRate(), 1e-9)
}

func TestCollectorEmptyReport(t *testing.T) {
	t.Parallel()

	r := NewCollector().Report()
	assert.Empty(t, r.Folders)
	assert.Zero(t, r.HitRate())
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.Observe("/game/common/a.txt", true, 0)
	c.Observe("/game/common/b.txt", false, 0)

	var buf bytes.Buffer
	PrintReport(&buf, c.Report())
	assert.Contains(t, buf.String(), "Cache summary:")
	assert.Contains(t, buf.String(), "1/2 cached")
	assert.Contains(t, buf.String(), "Overall: 1/2 cached")
}
