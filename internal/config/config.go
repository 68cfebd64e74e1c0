package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths scanned into the music library

	UndoDepth int `koanf:"undo_depth"` // max undoable playlist changes (default: 100)

	// Dynamic playlist settings
	Dynamic DynamicConfig `koanf:"dynamic"`

	// Last.fm settings (enables the similar-artists generator when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`
}

// DynamicConfig holds dynamic playlist tuning.
type DynamicConfig struct {
	Lookahead     int   `koanf:"lookahead"`      // upcoming generated tracks to keep queued (default: 20)
	History       int   `koanf:"history"`        // played generated tracks to keep before truncating (default: 5)
	VetoGenerated *bool `koanf:"veto_generated"` // run veto listeners on generator output (default: false)
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in library_sources
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/clementine/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "clementine", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm credentials are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetUndoDepth returns the undo depth with the default applied.
func (c *Config) GetUndoDepth() int {
	if c.UndoDepth <= 0 {
		return 100
	}
	return c.UndoDepth
}

// GetDynamicConfig returns the dynamic playlist configuration with defaults applied.
func (c *Config) GetDynamicConfig() DynamicConfig {
	cfg := c.Dynamic

	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 20
	}
	if cfg.History <= 0 {
		cfg.History = 5
	}
	if cfg.VetoGenerated == nil {
		f := false
		cfg.VetoGenerated = &f
	}

	return cfg
}
