// Package config loads pathtrack settings: defaults, then a YAML file, then
// PATHTRACK_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
)

const EnvPrefix = "PATHTRACK_"

type Config struct {
	// Document is the learning path loaded at startup: a file path or an http(s) URL.
	Document            string    `yaml:"document" koanf:"document"`
	DBPath              string    `yaml:"db_path" koanf:"db_path"`
	ExportDir           string    `yaml:"export_dir" koanf:"export_dir"`
	FetchTimeoutSeconds int       `yaml:"fetch_timeout_seconds" koanf:"fetch_timeout_seconds"`
	Log                 LogConfig `yaml:"log" koanf:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
	File   string `yaml:"file" koanf:"file"`
}

// Dir returns the directory holding the config file, database and log.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "pathtrack")
}

// DefaultPath is where Load looks when no --config is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yml")
}

func DefaultConfig() *Config {
	dir := Dir()
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = filepath.Join(dir, "pathtrack.db")
	}
	return &Config{
		Document:            curriculum.DefaultSource,
		DBPath:              dbPath,
		ExportDir:           ".",
		FetchTimeoutSeconds: 10,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(dir, "pathtrack.log"),
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PATHTRACK_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// PATHTRACK_LOG_LEVEL -> log.level, PATHTRACK_DB_PATH -> db_path.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "off": true, "disabled": true,
}

func (c *Config) Validate() error {
	if c.Document == "" {
		return fmt.Errorf("document is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch_timeout_seconds must be positive")
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log.format %q: must be json or console", c.Log.Format)
	}
	return nil
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *Config) expandPaths() {
	c.DBPath = expandTilde(c.DBPath)
	c.ExportDir = expandTilde(c.ExportDir)
	c.Log.File = expandTilde(c.Log.File)
	if !strings.Contains(c.Document, "://") {
		c.Document = expandTilde(c.Document)
	}
}

func expandTilde(path string) string {
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
