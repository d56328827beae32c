package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all cosquare configuration.
type Config struct {
	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Relational inference over square facts
	Inference InferenceConfig `yaml:"inference"`

	// Interactive shell
	Shell ShellConfig `yaml:"shell"`

	// Batch solving
	Batch BatchConfig `yaml:"batch"`
}

// InferenceConfig configures the Datalog engine used to strengthen squares.
type InferenceConfig struct {
	// FactLimit caps the facts accepted per solve; 0 disables the cap.
	FactLimit int `yaml:"fact_limit"`
	// AxiomPath replaces the built-in axiom program when set.
	AxiomPath string `yaml:"axiom_path"`
}

// ShellConfig configures the line-oriented shell.
type ShellConfig struct {
	Prompt    string `yaml:"prompt"`
	Banner    string `yaml:"banner"`
	Separator string `yaml:"separator"`
}

// BatchConfig configures concurrent solving of many inputs.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Inference: InferenceConfig{
			FactLimit: 10000,
		},
		Shell: ShellConfig{
			Prompt:    "> ",
			Banner:    "=== Cosquare 0.1 ===\nType `help` for the notation, `bye` to quit.",
			Separator: "------------------------------------<o=oo=o>------------------------------------",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("COSQUARE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("COSQUARE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Batch.Workers = n
		}
	}
	if v := os.Getenv("COSQUARE_FACT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Inference.FactLimit = n
		}
	}
	if path := os.Getenv("COSQUARE_AXIOMS"); path != "" {
		c.Inference.AxiomPath = path
	}
}

// Validate checks that values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be >= 1, got %d", c.Batch.Workers)
	}
	if c.Inference.FactLimit < 0 {
		return fmt.Errorf("inference.fact_limit must be >= 0, got %d", c.Inference.FactLimit)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}
