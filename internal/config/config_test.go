package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "/tmp/ledger.db"
	cfg.Profile.Name = "Anna"
	cfg.Ingest.MinConfidence = 0.8

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Database.Path, got.Database.Path)
	assert.Equal(t, cfg.Profile.Name, got.Profile.Name)
	assert.Equal(t, cfg.Profile.Currency, got.Profile.Currency)
	assert.InDelta(t, 0.8, got.Ingest.MinConfidence, 0.001)
	assert.Equal(t, cfg.Ingest.Inbox, got.Ingest.Inbox)
	assert.Equal(t, cfg.Log.Level, got.Log.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./data/ledger.db", cfg.Database.Path)
	assert.Equal(t, "User", cfg.Profile.Name)
	assert.Equal(t, "RUB", cfg.Profile.Currency)
	assert.InDelta(t, 0.5, cfg.Ingest.MinConfidence, 0.001)
	assert.Equal(t, "console", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  name: Ivan\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ivan", cfg.Profile.Name)
	assert.Equal(t, "RUB", cfg.Profile.Currency)
	assert.Equal(t, "./data/ledger.db", cfg.Database.Path)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: ./data/ledger.db")
	assert.Contains(t, contents, "currency: RUB")
	assert.Contains(t, contents, "min_confidence: 0.5")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("POCKETLEDGER_DB_PATH", "/var/lib/ledger.db")
	t.Setenv("POCKETLEDGER_CURRENCY", "EUR")
	t.Setenv("POCKETLEDGER_MIN_CONFIDENCE", "0.9")
	t.Setenv("POCKETLEDGER_LOG_LEVEL", "")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "/var/lib/ledger.db", cfg.Database.Path)
	assert.Equal(t, "EUR", cfg.Profile.Currency)
	assert.InDelta(t, 0.9, cfg.Ingest.MinConfidence, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POCKETLEDGER_PROFILE_NAME=Dotenv\n"), 0o644))
	t.Setenv("POCKETLEDGER_PROFILE_NAME", "")
	os.Unsetenv("POCKETLEDGER_PROFILE_NAME")

	require.NoError(t, LoadDotEnv(path))
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "Dotenv", cfg.Profile.Name)

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "database path cannot be empty"},
		{"empty name", func(c *Config) { c.Profile.Name = " " }, "profile name cannot be empty"},
		{"bad currency", func(c *Config) { c.Profile.Currency = "RUBLE" }, `invalid currency "RUBLE"`},
		{"confidence too high", func(c *Config) { c.Ingest.MinConfidence = 1.5 }, "invalid min confidence 1.5"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, `invalid log format "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = ""
	cfg.Profile.Currency = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path")
	assert.Contains(t, err.Error(), "currency")
}

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	cfg.Ingest.AuditLog = "/var/log/ingest.csv"
	cfg.ResolvePaths("/home/me/ledger")

	assert.Equal(t, filepath.Join("/home/me/ledger", "data", "ledger.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join("/home/me/ledger", "inbox"), cfg.Ingest.Inbox)
	assert.Equal(t, "/var/log/ingest.csv", cfg.Ingest.AuditLog)
}
