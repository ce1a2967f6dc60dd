package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/draftline/ast-identity/internal/identity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".astidconfig"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	if cfg.EffectiveFuzzyThreshold() != identity.DefaultFuzzyThreshold {
		t.Errorf("threshold = %d, want default %d", cfg.EffectiveFuzzyThreshold(), identity.DefaultFuzzyThreshold)
	}
	if !cfg.LanguageEnabled("yaml") || !cfg.LanguageEnabled("sql") {
		t.Error("all languages should be enabled by default")
	}
	if cfg.StorePath != "" {
		t.Errorf("unexpected store path %q", cfg.StorePath)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := writeConfig(t, `
identity:
  fuzzy_threshold: 70
  languages:
    - yaml
    - hcl
store_path: /tmp/custom.db
`)
	cfg := Load(dir)
	if cfg.EffectiveFuzzyThreshold() != 70 {
		t.Errorf("threshold = %d, want 70", cfg.EffectiveFuzzyThreshold())
	}
	if !cfg.LanguageEnabled("yaml") || !cfg.LanguageEnabled("hcl") {
		t.Error("listed languages must be enabled")
	}
	if cfg.LanguageEnabled("toml") {
		t.Error("unlisted language must be disabled")
	}
	if cfg.StorePath != "/tmp/custom.db" {
		t.Errorf("store path = %q", cfg.StorePath)
	}
}

func TestLoadZeroThresholdIsRespected(t *testing.T) {
	// An explicit 0 disables the score floor; it must not be confused
	// with unset.
	dir := writeConfig(t, "identity:\n  fuzzy_threshold: 0\n")
	cfg := Load(dir)
	if cfg.EffectiveFuzzyThreshold() != 0 {
		t.Errorf("threshold = %d, want 0", cfg.EffectiveFuzzyThreshold())
	}
}

func TestLoadInvalidYAMLUsesDefaults(t *testing.T) {
	dir := writeConfig(t, "identity: [not a mapping")
	cfg := Load(dir)
	if cfg.EffectiveFuzzyThreshold() != identity.DefaultFuzzyThreshold {
		t.Errorf("threshold = %d, want default", cfg.EffectiveFuzzyThreshold())
	}
}
