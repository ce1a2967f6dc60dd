package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/draftline/ast-identity/internal/identity"
)

// Config holds user-overridable settings.
// Loaded from .astidconfig in the workspace root.
type Config struct {
	Identity IdentityConfig `yaml:"identity"`

	// StorePath overrides the workspace database location.
	StorePath string `yaml:"store_path"`
}

// IdentityConfig holds reconciliation-specific settings.
type IdentityConfig struct {
	// FuzzyThreshold is the minimum fuzzy-match score for reusing an
	// identity after a structural move. Default: 55.
	FuzzyThreshold *int `yaml:"fuzzy_threshold"`

	// Languages restricts which hosted languages are tracked.
	// Default: all of them.
	Languages []string `yaml:"languages"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// Load reads .astidconfig from the given directory.
// Returns default config if the file doesn't exist.
func Load(dir string) *Config {
	cfg := DefaultConfig()

	path := filepath.Join(dir, ".astidconfig")
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // file not found or unreadable — use defaults
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig() // invalid YAML — use defaults
	}

	return cfg
}

// EffectiveFuzzyThreshold returns the configured minimum fuzzy score,
// or the default if not set.
func (c *Config) EffectiveFuzzyThreshold() int {
	if c.Identity.FuzzyThreshold != nil {
		return *c.Identity.FuzzyThreshold
	}
	return identity.DefaultFuzzyThreshold
}

// LanguageEnabled reports whether a hosted language is tracked.
func (c *Config) LanguageEnabled(language string) bool {
	if len(c.Identity.Languages) == 0 {
		return true
	}
	for _, l := range c.Identity.Languages {
		if l == language {
			return true
		}
	}
	return false
}
