// Package config loads optional project configuration for batch runs from
// a YAML file, with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NormalizeConfig mirrors the normalizer options in file form.
type NormalizeConfig struct {
	// StructuralReinjection defaults to true when absent from the file.
	StructuralReinjection *bool `yaml:"structural_reinjection"`
	SplitWordRepair       bool  `yaml:"split_word_repair"`
}

// Config is the user-editable project configuration.
type Config struct {
	RawDir    string          `yaml:"raw_dir"`
	CleanDir  string          `yaml:"clean_dir"`
	OutDir    string          `yaml:"out_dir"`
	Pattern   string          `yaml:"pattern"`
	Only      string          `yaml:"only"`
	Workers   int             `yaml:"workers"`
	Normalize NormalizeConfig `yaml:"normalize"`
}

// Environment variable overrides, applied after file values.
const (
	EnvRawDir   = "SLUGLINE_RAW_DIR"
	EnvCleanDir = "SLUGLINE_CLEAN_DIR"
	EnvOutDir   = "SLUGLINE_OUT_DIR"
	EnvWorkers  = "SLUGLINE_WORKERS"
)

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		RawDir:   "data/raw",
		CleanDir: "data/clean",
		OutDir:   "data/processed",
		Pattern:  "*.txt",
		Workers:  4,
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path yields defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*.txt"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvRawDir); v != "" {
		cfg.RawDir = v
	}
	if v := os.Getenv(EnvCleanDir); v != "" {
		cfg.CleanDir = v
	}
	if v := os.Getenv(EnvOutDir); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
}

// StructuralReinjectionEnabled resolves the tri-state file value.
func (n NormalizeConfig) StructuralReinjectionEnabled() bool {
	if n.StructuralReinjection == nil {
		return true
	}
	return *n.StructuralReinjection
}
