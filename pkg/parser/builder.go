// Package parser builds tree.Tree values from the intermediate JSON emitted
// by an external Clausewitz script decoder.
package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/pdxwikis/pdxtree/pkg/tree"
)

// Sentinel errors for build failures.
var (
	ErrNotABlock          = errors.New("intermediate node is not a block")
	ErrUnsupportedNode    = errors.New("unsupported intermediate node")
	ErrMalformedStructure = errors.New("malformed block structure")
)

// Unkeyed entries of a mixed keyed/unkeyed block arrive from the decoder
// under this reserved key. Well-formed documents never produce it.
const unkeyedKey = ""

// colorSpaces maps decoder color-block markers to color spaces.
var colorSpaces = map[string]tree.ColorSpace{
	"rgb":    tree.ColorRGB,
	"hsv":    tree.ColorHSV,
	"hsv360": tree.ColorHSV360,
}

// DuplicateKeyMode selects how the decoder represented repeated keys in the
// intermediate JSON.
type DuplicateKeyMode int

const (
	// DuplicatePreserve: a repeated key appears as repeated object members,
	// one per binding.
	DuplicatePreserve DuplicateKeyMode = iota
	// DuplicateGroup: every member's value is an array of that key's
	// bindings, even when there is only one.
	DuplicateGroup
)

// Builder assembles Trees from decoded intermediate nodes. It is a pure
// transformation with no I/O; construct one per parsing run and pass it
// explicitly rather than sharing a package-level instance. The zero value is
// usable, expects preserve-mode input and logs warnings through slog.Default.
type Builder struct {
	// Mode is the duplicate-key convention of the intermediate document.
	Mode DuplicateKeyMode

	log      *slog.Logger
	warnings int
}

// NewBuilder returns a preserve-mode Builder that reports recovered
// anomalies to log. A nil log falls back to slog.Default.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// Warnings returns the number of malformed structures recovered so far.
func (b *Builder) Warnings() int { return b.warnings }

func (b *Builder) logger() *slog.Logger {
	if b.log != nil {
		return b.log
	}
	return slog.Default()
}

// Build constructs a Tree from one decoded block. The node must be a mapping
// or sequence (or a document wrapping one); scalars fail with ErrNotABlock
// since a block never decodes to a bare token.
func (b *Builder) Build(node *yaml.Node) (*tree.Tree, error) {
	node = unwrapDocument(node)
	if node == nil {
		return nil, fmt.Errorf("nil intermediate node: %w", ErrNotABlock)
	}

	switch node.Kind {
	case yaml.MappingNode:
		return b.buildMap(node)
	case yaml.SequenceNode:
		return b.buildList(node)
	case yaml.ScalarNode:
		return nil, fmt.Errorf("scalar %q at block position: %w", node.Value, ErrNotABlock)
	default:
		return nil, fmt.Errorf("node kind %d: %w", node.Kind, ErrUnsupportedNode)
	}
}

// BuildValue constructs the Value for a node nested under a key: a scalar is
// coerced, a color-marked block becomes a Color, and anything else becomes a
// nested Tree.
func (b *Builder) BuildValue(node *yaml.Node) (tree.Value, error) {
	node = unwrapDocument(node)
	if node == nil {
		return nil, fmt.Errorf("nil intermediate node: %w", ErrUnsupportedNode)
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return scalarValue(node), nil
	case yaml.MappingNode:
		if c, ok := b.colorValue(node); ok {
			return c, nil
		}
		return b.buildMap(node)
	case yaml.SequenceNode:
		return b.buildList(node)
	default:
		return nil, fmt.Errorf("node kind %d: %w", node.Kind, ErrUnsupportedNode)
	}
}

// buildMap walks mapping pairs in order, appending one entry per binding.
// Duplicate keys are kept as-is; merging happens lazily in tree.Get so that
// Entries still exposes original order and multiplicity. Unkeyed entries of a
// mixed block are dropped with a warning so the rest of the document parses.
func (b *Builder) buildMap(node *yaml.Node) (*tree.Tree, error) {
	entries := make([]tree.Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("non-scalar key at line %d: %w", keyNode.Line, ErrMalformedStructure)
		}
		if keyNode.Value == unkeyedKey {
			b.warnings++
			b.logger().Warn("dropping unkeyed entry in keyed block",
				slog.Int("line", valNode.Line),
				slog.String("reason", ErrMalformedStructure.Error()),
			)
			continue
		}
		if b.Mode == DuplicateGroup && valNode.Kind == yaml.SequenceNode {
			// Each element is one binding of the key.
			for _, occ := range valNode.Content {
				v, err := b.BuildValue(occ)
				if err != nil {
					return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
				}
				entries = append(entries, tree.Entry{Key: keyNode.Value, Value: v})
			}
			continue
		}
		v, err := b.BuildValue(valNode)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
		}
		entries = append(entries, tree.Entry{Key: keyNode.Value, Value: v})
	}
	return tree.NewMap(entries...), nil
}

func (b *Builder) buildList(node *yaml.Node) (*tree.Tree, error) {
	values := make([]tree.Value, len(node.Content))
	for i, item := range node.Content {
		v, err := b.BuildValue(item)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		values[i] = v
	}
	return tree.NewList(values...), nil
}

// scalarValue turns a decoded leaf into a scalar. The decoder contract is to
// deliver leaves as raw string tokens, but pre-typed booleans from older
// decoder versions are accepted as well.
func scalarValue(node *yaml.Node) tree.Value {
	if node.Tag == "!!bool" {
		return tree.Bool(node.Value == "true")
	}
	if node.Tag == "!!null" {
		return tree.String("")
	}
	return tree.Coerce(node.Value)
}

// colorValue recognizes the decoder's color marker: a block holding exactly
// one rgb/hsv/hsv360 key over a 3-element numeric sequence. In group mode
// the channel sequence arrives wrapped in a single-binding array.
func (b *Builder) colorValue(node *yaml.Node) (tree.Color, bool) {
	if len(node.Content) != 2 || node.Content[0].Kind != yaml.ScalarNode {
		return tree.Color{}, false
	}
	space, ok := colorSpaces[node.Content[0].Value]
	if !ok {
		return tree.Color{}, false
	}
	seq := node.Content[1]
	if b.Mode == DuplicateGroup && seq.Kind == yaml.SequenceNode &&
		len(seq.Content) == 1 && seq.Content[0].Kind == yaml.SequenceNode {
		seq = seq.Content[0]
	}
	if seq.Kind != yaml.SequenceNode || len(seq.Content) != 3 {
		return tree.Color{}, false
	}
	var c tree.Color
	c.Space = space
	for i, item := range seq.Content {
		if item.Kind != yaml.ScalarNode {
			return tree.Color{}, false
		}
		switch n := tree.Coerce(item.Value).(type) {
		case tree.Int:
			c.Values[i] = float64(n)
		case tree.Float:
			c.Values[i] = float64(n)
		default:
			return tree.Color{}, false
		}
	}
	return c, true
}

// unwrapDocument steps through document wrapper nodes produced by yaml.v3.
func unwrapDocument(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	return node
}
