package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "devops_learning_path.json", cfg.Document)
	assert.Equal(t, 10, cfg.FetchTimeoutSeconds)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Document, cfg.Document)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	original := DefaultConfig()
	original.Document = "https://example.com/path.json"
	original.ExportDir = "/tmp/exports"
	original.FetchTimeoutSeconds = 3
	original.Log.Level = "debug"

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("document: k8s.json\nlog:\n  level: warn\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "k8s.json", cfg.Document)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.FetchTimeoutSeconds)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("document: from-file.json\n"), 0o644))

	t.Setenv("PATHTRACK_DOCUMENT", "from-env.json")
	t.Setenv("PATHTRACK_LOG_LEVEL", "error")
	t.Setenv("PATHTRACK_DB_PATH", "/tmp/pt.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.Document)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/pt.db", cfg.DBPath)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("document: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty document", func(c *Config) { c.Document = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero timeout", func(c *Config) { c.FetchTimeoutSeconds = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.db"), expandTilde("~/x.db"))
	assert.Equal(t, "/abs/x.db", expandTilde("/abs/x.db"))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "log.level", envKey("PATHTRACK_LOG_LEVEL"))
	assert.Equal(t, "export_dir", envKey("PATHTRACK_EXPORT_DIR"))
}
