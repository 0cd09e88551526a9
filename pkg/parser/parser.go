package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pdxwikis/pdxtree/pkg/tree"
)

// Decoder turns one script or asset file into the intermediate JSON document
// consumed by the Builder. Implementations must preserve duplicate keys as
// repeated object members and keep source order; leaves are raw string
// tokens. The process-spawning implementation lives in internal/decoder, and
// a caching decorator in internal/cache.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]byte, error)
}

// FileEvent reports the outcome of parsing one file during a multi-file run.
type FileEvent struct {
	Path string
	Err  error
}

// Parser is one parsing session over a base folder. It owns no global state;
// construct one per game installation and pass it to consumers explicitly.
type Parser struct {
	// Base is the folder the relative paths of Parse* calls resolve against.
	Base string
	// Decoder converts script files into intermediate JSON.
	Decoder Decoder
	// Workarounds are applied to the script text before decoding.
	Workarounds []Workaround
	// Mode is the duplicate-key convention the decoder was invoked with.
	Mode DuplicateKeyMode
	// Log receives recovered-anomaly warnings. Nil means slog.Default.
	Log *slog.Logger
	// OnFile, when set, is called after each file of a multi-file parse.
	// It may be called from multiple goroutines.
	OnFile func(FileEvent)
}

// New returns a Parser for the given base folder and decoder.
func New(base string, dec Decoder) *Parser {
	return &Parser{Base: base, Decoder: dec}
}

// ParseFile parses one script file, relative to the session base folder,
// into a Tree.
func (p *Parser) ParseFile(ctx context.Context, rel string) (*tree.Tree, error) {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Base, rel)
	}

	raw, err := p.decodeWithWorkarounds(ctx, path)
	if err != nil {
		return nil, err
	}

	t, err := p.parseIntermediate(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

// ParseReader builds a Tree from an already-decoded intermediate JSON
// document, bypassing the decoder. Useful for tests and for callers that
// cache decoder output themselves.
func (p *Parser) ParseReader(r io.Reader) (*tree.Tree, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading intermediate document: %w", err)
	}
	return p.parseIntermediate(raw)
}

func (p *Parser) parseIntermediate(raw []byte) (*tree.Tree, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decoding intermediate document: %w", err)
	}
	b := NewBuilder(p.Log)
	b.Mode = p.Mode
	return b.Build(&node)
}

// decodeWithWorkarounds runs the decoder on path, routing through a rewritten
// temp file when the session carries workarounds.
func (p *Parser) decodeWithWorkarounds(ctx context.Context, path string) ([]byte, error) {
	if len(p.Workarounds) == 0 {
		return p.Decoder.Decode(ctx, path)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	contents = stripBOM(contents)
	for _, w := range p.Workarounds {
		contents = w.Apply(contents)
	}

	tmp, err := os.CreateTemp("", "pdxtree-workaround-*.txt")
	if err != nil {
		return nil, fmt.Errorf("creating workaround temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(contents); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("writing workaround temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing workaround temp file: %w", err)
	}

	return p.Decoder.Decode(ctx, tmpName)
}

// stripBOM drops a UTF-8 byte order mark; most game files carry one.
func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xef, 0xbb, 0xbf})
}
