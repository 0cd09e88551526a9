// Package cache persists decoder output between runs and reports hit rates.
// Decoding a full game install shells out to the external decoder thousands
// of times; keying the result by content digest makes repeat runs cheap and
// survives game patches, since changed files change their digest.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
)

// Decoder is the decode function being cached. It structurally matches
// parser.Decoder.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]byte, error)
}

// Store is a content-addressed cache of intermediate JSON documents on disk.
// The version namespace keeps documents of different game versions apart so
// stale entries can be pruned wholesale.
type Store struct {
	// Dir is the cache root directory.
	Dir string
	// Version namespaces entries, typically the game version string.
	Version string
}

// entryPath maps a digest to its file under the store.
func (s *Store) entryPath(dgst digest.Digest) string {
	return filepath.Join(s.Dir, s.Version, dgst.Algorithm().String(), dgst.Encoded()+".json")
}

// Get returns the cached document for dgst, or ok=false on a miss.
func (s *Store) Get(dgst digest.Digest) (doc []byte, ok bool, err error) {
	doc, err = os.ReadFile(s.entryPath(dgst))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", dgst, err)
	}
	return doc, true, nil
}

// Put stores the document for dgst. Writes go through a temp file and rename
// so a concurrent reader never observes a partial entry.
func (s *Store) Put(dgst digest.Digest, doc []byte) error {
	path := s.entryPath(dgst)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing cache entry %s: %w", dgst, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing cache entry %s: %w", dgst, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("committing cache entry %s: %w", dgst, err)
	}
	return nil
}

// Prune removes every version namespace except the store's own.
func (s *Store) Prune() error {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == s.Version {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.Dir, e.Name())); err != nil {
			return fmt.Errorf("pruning cache namespace %s: %w", e.Name(), err)
		}
	}
	return nil
}

// CachingDecoder wraps a Decoder with a Store. A nil Collector disables
// statistics.
type CachingDecoder struct {
	Inner     Decoder
	Store     *Store
	Collector *Collector
}

// Decode returns the cached document for the file's current contents, or
// falls through to the inner decoder and caches its output. Cache write
// failures are not fatal; the decode result still stands.
func (d *CachingDecoder) Decode(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	dgst := digest.FromBytes(contents)

	if doc, ok, err := d.Store.Get(dgst); err == nil && ok {
		d.observe(path, true, time.Since(start))
		return doc, nil
	}

	doc, err := d.Inner.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	d.observe(path, false, time.Since(start))
	// A cache write failure must not fail the decode.
	_ = d.Store.Put(dgst, doc)
	return doc, nil
}

func (d *CachingDecoder) observe(path string, hit bool, dur time.Duration) {
	if d.Collector != nil {
		d.Collector.Observe(path, hit, dur)
	}
}
