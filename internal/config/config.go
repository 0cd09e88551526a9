// Package config loads game definitions from a TOML configuration file.
//
// Each configured game names the script folder to parse, the game version
// the wiki documents, and the wiki the output is destined for. The file
// holds one [games.<shortname>] table per game:
//
//	[games.eu4]
//	name = "Europa Universalis IV"
//	path = "/opt/steam/eu4"
//	version = "1.37"
//	wiki_domain = "eu4.paradoxwikis.com"
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

var (
	// ErrNoGames is returned when the configuration defines no games at all.
	ErrNoGames = errors.New("configuration defines no games")
	// ErrUnknownGame is returned when a requested short name is not configured.
	ErrUnknownGame = errors.New("unknown game")
	// ErrInvalidGame is returned when a game entry is missing required fields.
	ErrInvalidGame = errors.New("invalid game entry")
)

// Game describes one configured game installation.
type Game struct {
	// Name is the full display name, e.g. "Europa Universalis IV".
	Name string `toml:"name"`
	// ShortName is the table key the game was configured under.
	ShortName string `toml:"-"`
	// Path is the root of the game installation to read script files from.
	Path string `toml:"path"`
	// Version is the game version the generated output documents.
	Version string `toml:"version"`
	// WikiDomain is the wiki the output is destined for.
	WikiDomain string `toml:"wiki_domain"`
	// Language selects the localization language; defaults to english.
	Language string `toml:"language"`
}

// Config holds every configured game keyed by short name.
type Config struct {
	Games map[string]Game `toml:"games"`
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates TOML configuration bytes.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if len(cfg.Games) == 0 {
		return nil, ErrNoGames
	}
	for short, g := range cfg.Games {
		g.ShortName = short
		if g.Language == "" {
			g.Language = "english"
		}
		if err := g.validate(); err != nil {
			return nil, err
		}
		cfg.Games[short] = g
	}
	return &cfg, nil
}

func (g Game) validate() error {
	switch {
	case g.Name == "":
		return fmt.Errorf("%w: game %q has no name", ErrInvalidGame, g.ShortName)
	case g.Path == "":
		return fmt.Errorf("%w: game %q has no path", ErrInvalidGame, g.ShortName)
	case g.Version == "":
		return fmt.Errorf("%w: game %q has no version", ErrInvalidGame, g.ShortName)
	}
	return nil
}

// Game looks up a configured game by short name.
func (c *Config) Game(short string) (Game, error) {
	g, ok := c.Games[short]
	if !ok {
		return Game{}, fmt.Errorf("%w: %q (have %v)", ErrUnknownGame, short, c.ShortNames())
	}
	return g, nil
}

// ShortNames returns the configured short names in sorted order.
func (c *Config) ShortNames() []string {
	names := make([]string, 0, len(c.Games))
	for short := range c.Games {
		names = append(names, short)
	}
	sort.Strings(names)
	return names
}
