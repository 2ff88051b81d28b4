// Package config loads the tally.yaml workspace configuration and its
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace config file at the repository root.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Import ImportConfig `yaml:"import"`
	Rules  RulesConfig  `yaml:"rules"`
	Log    LogConfig    `yaml:"log"`
	Git    GitConfig    `yaml:"git"`
}

// LedgerConfig selects the transaction store.
type LedgerConfig struct {
	Backend string `yaml:"backend"` // "csv" or "sqlite"
	Path    string `yaml:"path"`
}

// ImportConfig controls statement ingestion.
type ImportConfig struct {
	Dir                string `yaml:"dir"`
	Workers            int    `yaml:"workers"`
	AllowLossyDecoding bool   `yaml:"allow_lossy_decoding"`
	MarkProcessed      bool   `yaml:"mark_processed"`
}

// RulesConfig locates the categorization rule files.
type RulesConfig struct {
	GlobalPath string `yaml:"global_path"`
	UserPath   string `yaml:"user_path"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Backend: "csv",
			Path:    "ledger/transactions.csv",
		},
		Import: ImportConfig{
			Dir:                "import",
			AllowLossyDecoding: true,
			MarkProcessed:      true,
		},
		Rules: RulesConfig{
			GlobalPath: "rules/global-rules.yaml",
			UserPath:   "rules/user-rules.yaml",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// LoadWorkspace reads <root>/tally.yaml, falling back to defaults when the
// file does not exist, then applies <root>/.env and the process environment.
func LoadWorkspace(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := LoadEnv(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// ApplyEnv overrides fields from TALLY_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("TALLY_LEDGER_BACKEND"); v != "" {
		c.Ledger.Backend = v
	}
	if v := os.Getenv("TALLY_LEDGER_PATH"); v != "" {
		c.Ledger.Path = v
	}
	if v := os.Getenv("TALLY_IMPORT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid TALLY_IMPORT_WORKERS %q", v)
		}
		c.Import.Workers = n
	}
	if v := os.Getenv("TALLY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Resolve returns p relative to root unless it is already absolute.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
