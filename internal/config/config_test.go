package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
	if cfg.Consensus.DefaultRule != RuleStrong {
		t.Fatalf("default rule = %q, want strong", cfg.Consensus.DefaultRule)
	}
	if cfg.Consensus.MinScore != 70 {
		t.Fatalf("min score = %d, want 70", cfg.Consensus.MinScore)
	}
	if cfg.Reasoning.DBPath != ".tetrad/tetrad.db" {
		t.Fatalf("db path = %q, want .tetrad/tetrad.db", cfg.Reasoning.DBPath)
	}
	if cfg.Cache.Capacity != 1000 || cfg.Cache.TTLSecs != 300 {
		t.Fatalf("cache defaults = %+v", cfg.Cache)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Consensus.DefaultRule != RuleStrong {
		t.Fatal("missing file should yield defaults")
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetrad.toml")
	content := `
[consensus]
default_rule = "golden"
min_score = 80
max_loops = 5

[executors.codex]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Consensus.DefaultRule != RuleGolden {
		t.Fatalf("default_rule = %q, want golden", cfg.Consensus.DefaultRule)
	}
	if cfg.Consensus.MinScore != 80 || cfg.Consensus.MaxLoops != 5 {
		t.Fatalf("consensus = %+v", cfg.Consensus)
	}
	if cfg.Executors.Codex.Enabled {
		t.Fatal("codex should be disabled")
	}
	// Fields not present in the file keep their defaults.
	if cfg.Executors.Gemini.Command != "gemini" {
		t.Fatalf("gemini command = %q, want default preserved", cfg.Executors.Gemini.Command)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.General.LogLevel = "verbose" },
		func(c *Config) { c.General.TimeoutSecs = 0 },
		func(c *Config) { c.Executors.Codex.Enabled = true; c.Executors.Codex.Command = "" },
		func(c *Config) { c.Consensus.DefaultRule = "loose" },
		func(c *Config) { c.Consensus.MaxLoops = 0 },
		func(c *Config) { c.Reasoning.Enabled = true; c.Reasoning.DBPath = "" },
		func(c *Config) { c.Cache.Enabled = true; c.Cache.Capacity = 0 },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error, got nil", i)
		}
	}
}

func TestExecutorLookup(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.Executor("codex"); !ok {
		t.Fatal("codex should be a known executor")
	}
	if _, ok := cfg.Executor("nonexistent"); ok {
		t.Fatal("unknown executor name should report false")
	}
}
