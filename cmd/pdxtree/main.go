// Package main provides the CLI entry point for pdxtree.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/pdxwikis/pdxtree/internal/cache"
	"github.com/pdxwikis/pdxtree/internal/config"
	"github.com/pdxwikis/pdxtree/internal/decoder"
	"github.com/pdxwikis/pdxtree/internal/localization"
	"github.com/pdxwikis/pdxtree/internal/logging"
	"github.com/pdxwikis/pdxtree/internal/progress"
	"github.com/pdxwikis/pdxtree/pkg/parser"
	"github.com/pdxwikis/pdxtree/pkg/tree"
)

// errUnknownDuplicateKeys indicates an unrecognized --duplicate-keys value.
var errUnknownDuplicateKeys = errors.New("unknown duplicate-keys mode")

// errKeyPathNotFound indicates a dotted key path segment that is missing or
// not a block.
var errKeyPathNotFound = errors.New("key path not found")

// app bundles dependencies so CLI action handlers become testable methods.
type app struct {
	newDecoder func(binary string, mode decoder.DuplicateKeys) parser.Decoder
	stdout     io.Writer
	isTTY      bool
	format     string // resolved output format (pretty, json, text)
}

func main() {
	a := &app{
		newDecoder: defaultDecoder,
		stdout:     os.Stdout,
		isTTY:      term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("CI") == "",
	}

	if err := a.command().Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

// defaultDecoder builds the subprocess-spawning decoder.
func defaultDecoder(binary string, mode decoder.DuplicateKeys) parser.Decoder {
	d := decoder.New(binary)
	d.Mode = mode
	return d
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "pdxtree",
		Usage: "parse Paradox game script files into inspectable trees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "decoder",
				Usage:   "external script decoder binary",
				Value:   "rakaly",
				Sources: cli.EnvVars("PDXTREE_DECODER"),
			},
			&cli.StringFlag{
				Name:    "duplicate-keys",
				Usage:   "decoder duplicate-key convention (preserve, group)",
				Value:   "preserve",
				Sources: cli.EnvVars("PDXTREE_DUPLICATE_KEYS"),
			},
			&cli.StringFlag{
				Name:    "format",
				Usage:   "output format (auto, pretty, json, text)",
				Value:   "auto",
				Sources: cli.EnvVars("PDXTREE_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("PDXTREE_LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			a.format = cmd.String("format")
			if a.format == "auto" {
				if a.isTTY {
					a.format = "pretty"
				} else {
					a.format = "text"
				}
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
				return ctx, fmt.Errorf("invalid log level %q: %w", cmd.String("log-level"), err)
			}
			logger, err := logging.NewLogger(a.stdout, a.format, level)
			if err != nil {
				return ctx, fmt.Errorf("initializing logger: %w", err)
			}
			slog.SetDefault(logger)
			return logging.WithLogger(ctx, logger), nil
		},
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Usage:     "parse one script file and print its tree",
				ArgsUsage: "<file>",
				Flags:     cacheFlags(),
				Action:    a.dumpAction,
			},
			{
				Name:      "get",
				Usage:     "parse one script file and print the value at a dotted key path",
				ArgsUsage: "<file> <key.path>",
				Flags:     cacheFlags(),
				Action:    a.getAction,
			},
			{
				Name:      "folder",
				Usage:     "parse every script file in a folder as one tree",
				ArgsUsage: "<dir>",
				Flags: append(cacheFlags(),
					&cli.BoolFlag{
						Name:  "recursive",
						Usage: "include subfolders",
					},
					&cli.StringFlag{
						Name:  "extension",
						Usage: "file extension to parse, without the dot",
						Value: "txt",
					},
					&cli.BoolFlag{
						Name:  "merge",
						Usage: "merge colliding top-level blocks instead of overwriting",
					},
					&cli.IntFlag{
						Name:    "parallelism",
						Aliases: []string{"j"},
						Usage:   "max concurrent decoder processes (0 = unlimited)",
						Value:   0,
					},
					&cli.StringFlag{
						Name:  "progress",
						Usage: "progress output mode (auto, tui, plain, quiet)",
						Value: "auto",
					},
					&cli.BoolFlag{
						Name:  "boring",
						Usage: "use ASCII instead of emoji in TUI output",
					},
					&cli.BoolFlag{
						Name:  "cache-stats",
						Usage: "print cache hit/miss statistics after the run",
					},
					&cli.StringFlag{
						Name:  "keys",
						Usage: "print the subtree at this dotted key path instead of a summary",
					},
				),
				Action: a.folderAction,
			},
			{
				Name:      "localize",
				Usage:     "resolve a localisation key from a game's localisation folder",
				ArgsUsage: "<dir> <key>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "localisation language",
						Value: "english",
					},
					&cli.StringFlag{
						Name:  "default",
						Usage: "fallback when the key is not found",
					},
				},
				Action: a.localizeAction,
			},
			{
				Name:  "games",
				Usage: "list the configured games",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Usage:   "games configuration file",
						Value:   "games.toml",
						Sources: cli.EnvVars("PDXTREE_CONFIG"),
					},
				},
				Action: a.gamesAction,
			},
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		},
	}
}

// cacheFlags returns the shared flag set for commands that invoke the decoder.
func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "decode cache directory (empty = user cache dir)",
			Sources: cli.EnvVars("PDXTREE_CACHE_DIR"),
		},
		&cli.StringFlag{
			Name:  "cache-version",
			Usage: "cache namespace, typically the game version",
			Value: "default",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "bypass the decode cache",
		},
		&cli.BoolFlag{
			Name:  "no-workarounds",
			Usage: "disable script text rewrites applied before decoding",
		},
	}
}

// duplicateMode maps the --duplicate-keys flag onto the decoder invocation
// mode and the matching builder convention.
func duplicateMode(s string) (decoder.DuplicateKeys, parser.DuplicateKeyMode, error) {
	switch s {
	case "preserve":
		return decoder.Preserve, parser.DuplicatePreserve, nil
	case "group":
		return decoder.Group, parser.DuplicateGroup, nil
	default:
		return "", 0, fmt.Errorf("%w: %q (valid: preserve, group)", errUnknownDuplicateKeys, s)
	}
}

// buildParser assembles a parsing session from the CLI flags: the subprocess
// decoder, optionally wrapped in the decode cache, plus workarounds and the
// duplicate-key convention. The returned collector is nil unless
// --cache-stats is set.
func (a *app) buildParser(ctx context.Context, cmd *cli.Command, base string) (*parser.Parser, *cache.Collector, error) {
	decMode, treeMode, err := duplicateMode(cmd.String("duplicate-keys"))
	if err != nil {
		return nil, nil, err
	}

	dec := a.newDecoder(cmd.String("decoder"), decMode)

	var collector *cache.Collector
	if !cmd.Bool("no-cache") {
		dir := cmd.String("cache-dir")
		if dir == "" {
			ucd, err := os.UserCacheDir()
			if err != nil {
				return nil, nil, fmt.Errorf("resolving cache dir: %w", err)
			}
			dir = filepath.Join(ucd, "pdxtree")
		}
		if cmd.Bool("cache-stats") {
			collector = cache.NewCollector()
		}
		dec = &cache.CachingDecoder{
			Inner:     dec,
			Store:     &cache.Store{Dir: dir, Version: cmd.String("cache-version")},
			Collector: collector,
		}
	}

	p := parser.New(base, dec)
	p.Mode = treeMode
	p.Log = logging.FromContext(ctx)
	if !cmd.Bool("no-workarounds") {
		p.Workarounds = []parser.Workaround{parser.UnmarkedList, parser.QuestionmarkEquals}
	}
	return p, collector, nil
}

func (a *app) dumpAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("usage: pdxtree dump <file>")
	}

	p, _, err := a.buildParser(ctx, cmd, filepath.Dir(path))
	if err != nil {
		return err
	}

	t, err := p.ParseFile(ctx, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	_, _ = fmt.Fprintln(a.stdout, t.String())
	return nil
}

func (a *app) getAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().Get(0)
	keyPath := cmd.Args().Get(1)
	if path == "" || keyPath == "" {
		return errors.New("usage: pdxtree get <file> <key.path>")
	}

	p, _, err := a.buildParser(ctx, cmd, filepath.Dir(path))
	if err != nil {
		return err
	}

	t, err := p.ParseFile(ctx, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	v, err := lookupKeyPath(t, keyPath)
	if err != nil {
		return fmt.Errorf("looking up %q in %s: %w", keyPath, path, err)
	}

	_, _ = fmt.Fprintln(a.stdout, v.String())
	return nil
}

// lookupKeyPath walks a dotted key path through nested blocks.
func lookupKeyPath(t *tree.Tree, keyPath string) (tree.Value, error) {
	segs := strings.Split(keyPath, ".")
	var v tree.Value = t
	for i, seg := range segs {
		sub, ok := v.(*tree.Tree)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a block",
				errKeyPathNotFound, strings.Join(segs[:i], "."))
		}
		var err error
		v, err = sub.Get(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: at segment %q: %w", errKeyPathNotFound, seg, err)
		}
	}
	return v, nil
}

func (a *app) folderAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		return errors.New("usage: pdxtree folder <dir>")
	}

	if cmd.Int("parallelism") < 0 {
		return fmt.Errorf("invalid value %d for flag --parallelism: must be >= 0", cmd.Int("parallelism"))
	}

	p, collector, err := a.buildParser(ctx, cmd, dir)
	if err != nil {
		return err
	}

	display, err := a.selectDisplay(cmd.String("progress"), cmd.Bool("boring"))
	if err != nil {
		return err
	}

	events := make(chan progress.Event)
	p.OnFile = func(e parser.FileEvent) {
		events <- progress.Event{Path: e.Path, Err: e.Err}
	}

	opts := parser.FolderOpts{
		Recursive:   cmd.Bool("recursive"),
		Extension:   cmd.String("extension"),
		Overwrite:   !cmd.Bool("merge"),
		Parallelism: int(cmd.Int("parallelism")),
	}

	var t *tree.Tree
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := display.Run(gctx, filepath.Base(dir), events)
		// Drain after an early display failure so in-flight OnFile sends
		// never block the parse goroutine.
		for range events { //nolint:revive // intentionally draining
		}
		return err
	})
	g.Go(func() error {
		defer close(events)
		var parseErr error
		t, parseErr = p.ParseFolderAsOneFile(gctx, ".", opts)
		if parseErr != nil {
			return fmt.Errorf("parsing folder %s: %w", dir, parseErr)
		}
		return nil
	})
	runErr := g.Wait()

	if collector != nil {
		cache.PrintReport(a.stdout, collector.Report())
	}
	if runErr != nil {
		return runErr
	}

	if keyPath := cmd.String("keys"); keyPath != "" {
		v, err := lookupKeyPath(t, keyPath)
		if err != nil {
			return fmt.Errorf("looking up %q in %s: %w", keyPath, dir, err)
		}
		_, _ = fmt.Fprintln(a.stdout, v.String())
		return nil
	}

	a.printFolderSummary(dir, t)
	return nil
}

func (a *app) printFolderSummary(dir string, t *tree.Tree) {
	_, _ = fmt.Fprintf(a.stdout, "Parsed folder '%s'\n", dir)
	_, _ = fmt.Fprintf(a.stdout, "  Top-level bindings: %d\n", t.Len())
	keys, err := t.Keys()
	if err != nil {
		return
	}
	for _, k := range keys {
		_, _ = fmt.Fprintf(a.stdout, "    - %s\n", k)
	}
}

func (a *app) localizeAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.Args().Get(0)
	key := cmd.Args().Get(1)
	if dir == "" || key == "" {
		return errors.New("usage: pdxtree localize <dir> <key>")
	}

	l := localization.New(cmd.String("language"))
	if err := l.LoadFolder(dir); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(a.stdout, l.Localize(key, cmd.String("default")))
	return nil
}

func (a *app) gamesAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	for _, short := range cfg.ShortNames() {
		g := cfg.Games[short]
		_, _ = fmt.Fprintf(a.stdout, "%s: %s %s\n", short, g.Name, g.Version)
		_, _ = fmt.Fprintf(a.stdout, "  path: %s\n", g.Path)
		if g.WikiDomain != "" {
			_, _ = fmt.Fprintf(a.stdout, "  wiki: %s\n", g.WikiDomain)
		}
	}
	return nil
}

func (a *app) selectDisplay(mode string, boring bool) (progress.Display, error) {
	switch mode {
	case "auto":
		if a.isTTY && a.format == "pretty" {
			return &progress.TUI{Boring: boring}, nil
		}
		return &progress.Plain{}, nil
	case "tui":
		return &progress.TUI{Boring: boring}, nil
	case "plain":
		return &progress.Plain{}, nil
	case "quiet":
		return &progress.Quiet{}, nil
	default:
		return nil, fmt.Errorf("unknown progress mode %q (valid: auto, tui, plain, quiet)", mode)
	}
}
