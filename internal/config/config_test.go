package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml (highest priority)
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "clementine", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func TestHasLastfmConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "both key and secret set",
			config:   Config{Lastfm: LastfmConfig{APIKey: "key", APISecret: "secret"}},
			expected: true,
		},
		{
			name:     "only key set",
			config:   Config{Lastfm: LastfmConfig{APIKey: "key"}},
			expected: false,
		},
		{
			name:     "nothing set",
			config:   Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.HasLastfmConfig(); got != tt.expected {
				t.Errorf("HasLastfmConfig() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetUndoDepth(t *testing.T) {
	cfg := Config{}
	if got := cfg.GetUndoDepth(); got != 100 {
		t.Errorf("default GetUndoDepth() = %d, want 100", got)
	}

	cfg.UndoDepth = 25
	if got := cfg.GetUndoDepth(); got != 25 {
		t.Errorf("GetUndoDepth() = %d, want 25", got)
	}

	cfg.UndoDepth = -1
	if got := cfg.GetUndoDepth(); got != 100 {
		t.Errorf("negative GetUndoDepth() = %d, want 100", got)
	}
}

func TestGetDynamicConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := Config{}
		dyn := cfg.GetDynamicConfig()

		if dyn.Lookahead != 20 {
			t.Errorf("Lookahead = %d, want 20", dyn.Lookahead)
		}
		if dyn.History != 5 {
			t.Errorf("History = %d, want 5", dyn.History)
		}
		if dyn.VetoGenerated == nil || *dyn.VetoGenerated {
			t.Error("VetoGenerated should default to false")
		}
	})

	t.Run("explicit values preserved", func(t *testing.T) {
		veto := true
		cfg := Config{Dynamic: DynamicConfig{Lookahead: 3, History: 2, VetoGenerated: &veto}}
		dyn := cfg.GetDynamicConfig()

		if dyn.Lookahead != 3 {
			t.Errorf("Lookahead = %d, want 3", dyn.Lookahead)
		}
		if dyn.History != 2 {
			t.Errorf("History = %d, want 2", dyn.History)
		}
		if dyn.VetoGenerated == nil || !*dyn.VetoGenerated {
			t.Error("VetoGenerated should stay true")
		}
	})
}
