// Package config loads and validates tetrad's TOML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	TimeoutSecs  uint64 `toml:"timeout_secs"`
	WatchConfig  bool   `toml:"watch_config"`
}

// ExecutorConfig configures one reviewer subprocess.
type ExecutorConfig struct {
	Enabled     bool     `toml:"enabled"`
	Command     string   `toml:"command"`
	Args        []string `toml:"args"`
	TimeoutSecs uint64   `toml:"timeout_secs"`
	Weight      uint8    `toml:"weight"`
}

// ExecutorsConfig groups the three default reviewer configurations.
type ExecutorsConfig struct {
	Codex  ExecutorConfig `toml:"codex"`
	Gemini ExecutorConfig `toml:"gemini"`
	Qwen   ExecutorConfig `toml:"qwen"`
}

// ConsensusRuleName names one of the three voting rules.
type ConsensusRuleName string

const (
	RuleGolden ConsensusRuleName = "golden"
	RuleStrong ConsensusRuleName = "strong"
	RuleWeak   ConsensusRuleName = "weak"
)

// ConsensusConfig configures the Consensus Engine.
type ConsensusConfig struct {
	DefaultRule ConsensusRuleName `toml:"default_rule"`
	MinScore    uint8             `toml:"min_score"`
	MaxLoops    uint8             `toml:"max_loops"`
}

// ReasoningConfig configures the Reasoning Bank.
type ReasoningConfig struct {
	Enabled                bool   `toml:"enabled"`
	DBPath                 string `toml:"db_path"`
	MaxPatternsPerQuery    int    `toml:"max_patterns_per_query"`
	ConsolidationInterval  int    `toml:"consolidation_interval"`
}

// CacheConfig configures the Evaluation Cache.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Capacity int    `toml:"capacity"`
	TTLSecs  uint64 `toml:"ttl_secs"`
}

// Config is the root tetrad.toml document.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Executors ExecutorsConfig `toml:"executors"`
	Consensus ConsensusConfig `toml:"consensus"`
	Reasoning ReasoningConfig `toml:"reasoning"`
	Cache     CacheConfig     `toml:"cache"`
}

// DefaultConfig returns the configuration documented in SPEC_FULL.md §6.1.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:    "info",
			LogFormat:   "text",
			TimeoutSecs: 60,
		},
		Executors: ExecutorsConfig{
			Codex:  ExecutorConfig{Enabled: true, Command: "codex", Args: []string{"exec", "--json"}, TimeoutSecs: 30, Weight: 5},
			Gemini: ExecutorConfig{Enabled: true, Command: "gemini", Args: []string{"-o", "json"}, TimeoutSecs: 30, Weight: 5},
			Qwen:   ExecutorConfig{Enabled: true, Command: "qwen", Args: []string{}, TimeoutSecs: 30, Weight: 5},
		},
		Consensus: ConsensusConfig{
			DefaultRule: RuleStrong,
			MinScore:    70,
			MaxLoops:    3,
		},
		Reasoning: ReasoningConfig{
			Enabled:               true,
			DBPath:                ".tetrad/tetrad.db",
			MaxPatternsPerQuery:   10,
			ConsolidationInterval: 100,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
			TTLSecs:  300,
		},
	}
}

// LoadConfig reads path and merges it over DefaultConfig. A missing file is
// not an error: defaults are returned unmodified, mirroring the teacher's
// LoadConfig semantics of tolerating an absent config file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for internally-consistent
// values, mirroring the teacher's exhaustive per-field Validate().
func (c *Config) Validate() error {
	switch c.General.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: general.log_level %q is not one of trace/debug/info/warn/error", c.General.LogLevel)
	}
	switch c.General.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: general.log_format %q is not one of text/json", c.General.LogFormat)
	}
	if c.General.TimeoutSecs == 0 {
		return fmt.Errorf("config: general.timeout_secs must be > 0")
	}
	for name, ex := range map[string]ExecutorConfig{"codex": c.Executors.Codex, "gemini": c.Executors.Gemini, "qwen": c.Executors.Qwen} {
		if ex.Enabled && ex.Command == "" {
			return fmt.Errorf("config: executors.%s.command must not be empty when enabled", name)
		}
		if ex.TimeoutSecs == 0 {
			return fmt.Errorf("config: executors.%s.timeout_secs must be > 0", name)
		}
		if ex.Weight < 1 || ex.Weight > 10 {
			return fmt.Errorf("config: executors.%s.weight must be in [1,10]", name)
		}
	}
	switch c.Consensus.DefaultRule {
	case RuleGolden, RuleStrong, RuleWeak:
	default:
		return fmt.Errorf("config: consensus.default_rule %q is not one of golden/strong/weak", c.Consensus.DefaultRule)
	}
	if c.Consensus.MinScore > 100 {
		return fmt.Errorf("config: consensus.min_score must be in [0,100]")
	}
	if c.Consensus.MaxLoops == 0 {
		return fmt.Errorf("config: consensus.max_loops must be > 0")
	}
	if c.Reasoning.Enabled && c.Reasoning.DBPath == "" {
		return fmt.Errorf("config: reasoning.db_path must not be empty when enabled")
	}
	if c.Reasoning.MaxPatternsPerQuery <= 0 {
		return fmt.Errorf("config: reasoning.max_patterns_per_query must be > 0")
	}
	if c.Reasoning.ConsolidationInterval <= 0 {
		return fmt.Errorf("config: reasoning.consolidation_interval must be > 0")
	}
	if c.Cache.Enabled && c.Cache.Capacity <= 0 {
		return fmt.Errorf("config: cache.capacity must be > 0 when enabled")
	}
	if c.Cache.TTLSecs == 0 {
		return fmt.Errorf("config: cache.ttl_secs must be > 0")
	}
	return nil
}

// Executor returns the named executor's configuration and whether it
// exists.
func (c *Config) Executor(name string) (ExecutorConfig, bool) {
	switch name {
	case "codex":
		return c.Executors.Codex, true
	case "gemini":
		return c.Executors.Gemini, true
	case "qwen":
		return c.Executors.Qwen, true
	default:
		return ExecutorConfig{}, false
	}
}
