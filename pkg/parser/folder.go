package parser

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdxwikis/pdxtree/pkg/tree"
)

// FileTree pairs a parsed file with its path relative to the session base.
type FileTree struct {
	Path string
	Tree *tree.Tree
}

// FolderOpts controls multi-file parsing.
type FolderOpts struct {
	// Recursive includes subfolders.
	Recursive bool
	// Extension selects files by extension, without the dot. Empty means "txt".
	Extension string
	// Overwrite makes a later file's top-level keys replace earlier bindings
	// wholesale. When false, colliding blocks merge recursively and other
	// collisions accumulate (tree.Merge semantics).
	Overwrite bool
	// Parallelism caps concurrent decoder processes. 0 means unlimited.
	Parallelism int
}

// ParseFiles parses every file matching the glob, relative to the session
// base, in alphabetical order. Files are decoded in parallel; results come
// back in path order. The first failure aborts the run.
func (p *Parser) ParseFiles(ctx context.Context, glob string) ([]FileTree, error) {
	paths, err := filepath.Glob(filepath.Join(p.Base, glob))
	if err != nil {
		return nil, fmt.Errorf("bad glob %q: %w", glob, err)
	}
	sort.Strings(paths)
	return p.parseAll(ctx, paths, 0)
}

// ParseFolderAsOneFile parses every matching file in folder and folds the
// per-file trees into one, in alphabetical file order. Games split one
// logical namespace across many files, so most callers want the combined
// view.
func (p *Parser) ParseFolderAsOneFile(ctx context.Context, folder string, opts FolderOpts) (*tree.Tree, error) {
	paths, err := p.listFolder(folder, opts)
	if err != nil {
		return nil, err
	}

	parsed, err := p.parseAll(ctx, paths, opts.Parallelism)
	if err != nil {
		return nil, err
	}

	result := tree.NewMap()
	for _, ft := range parsed {
		if opts.Overwrite {
			result, err = result.Override(ft.Tree)
		} else {
			result, err = result.Merge(ft.Tree)
		}
		if err != nil {
			return nil, fmt.Errorf("folding %s: %w", ft.Path, err)
		}
	}
	return result, nil
}

func (p *Parser) listFolder(folder string, opts FolderOpts) ([]string, error) {
	ext := opts.Extension
	if ext == "" {
		ext = "txt"
	}
	root := filepath.Join(p.Base, folder)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !opts.Recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// parseAll decodes and builds the given absolute paths concurrently,
// preserving input order in the result.
func (p *Parser) parseAll(ctx context.Context, paths []string, parallelism int) ([]FileTree, error) {
	results := make([]FileTree, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, path := range paths {
		// Walked paths already include Base; hand ParseFile the relative
		// form so it resolves the same file against either base form.
		rel, relErr := filepath.Rel(p.Base, path)
		if relErr != nil {
			rel = path
		}
		g.Go(func() error {
			t, err := p.ParseFile(ctx, rel)
			if p.OnFile != nil {
				p.OnFile(FileEvent{Path: rel, Err: err})
			}
			if err != nil {
				return err
			}
			results[i] = FileTree{Path: rel, Tree: t}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
