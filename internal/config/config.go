package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name looked up in the working directory.
const FileName = "pocketledger.yaml"

// Config represents the top-level pocketledger.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Profile  ProfileConfig  `yaml:"profile"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig locates the SQLite ledger file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProfileConfig seeds the profile created on first access.
type ProfileConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// IngestConfig controls how structured AI output is accepted.
type IngestConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
	Inbox         string  `yaml:"inbox"`
	AuditLog      string  `yaml:"audit_log"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a pocketledger.yaml file from disk.
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

// LoadOrDefault reads path if it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
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

// Default returns a Config with sensible defaults for a new installation.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "./data/ledger.db",
		},
		Profile: ProfileConfig{
			Name:     "User",
			Currency: "RUB",
		},
		Ingest: IngestConfig{
			MinConfidence: 0.5,
			Inbox:         "./inbox",
			AuditLog:      "./data/ingest-log.csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ResolvePaths makes relative file paths relative to base, normally the
// directory holding the config file.
func (c *Config) ResolvePaths(base string) {
	for _, p := range []*string{&c.Database.Path, &c.Ingest.Inbox, &c.Ingest.AuditLog} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// LoadDotEnv loads variables from a .env file if one is present.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from POCKETLEDGER_* environment variables.
func (c *Config) ApplyEnv() {
	c.Database.Path = getEnv("POCKETLEDGER_DB_PATH", c.Database.Path)
	c.Profile.Name = getEnv("POCKETLEDGER_PROFILE_NAME", c.Profile.Name)
	c.Profile.Currency = getEnv("POCKETLEDGER_CURRENCY", c.Profile.Currency)
	c.Ingest.MinConfidence = getEnvFloat("POCKETLEDGER_MIN_CONFIDENCE", c.Ingest.MinConfidence)
	c.Ingest.Inbox = getEnv("POCKETLEDGER_INBOX", c.Ingest.Inbox)
	c.Ingest.AuditLog = getEnv("POCKETLEDGER_AUDIT_LOG", c.Ingest.AuditLog)
	c.Log.Level = getEnv("POCKETLEDGER_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("POCKETLEDGER_LOG_FORMAT", c.Log.Format)
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, "database path cannot be empty")
	}
	if strings.TrimSpace(c.Profile.Name) == "" {
		errs = append(errs, "profile name cannot be empty")
	}
	if len(c.Profile.Currency) != 3 {
		errs = append(errs, fmt.Sprintf("invalid currency %q: must be a 3-letter code", c.Profile.Currency))
	}
	if c.Ingest.MinConfidence < 0 || c.Ingest.MinConfidence > 1 {
		errs = append(errs, fmt.Sprintf("invalid min confidence %v: must be between 0 and 1", c.Ingest.MinConfidence))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format %q: must be console or json", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
