// Package config provides configuration loading for the chatbot: a YAML
// config file with .env overlay and environment variable overrides for
// secrets.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session store backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendSQLite = "sqlite"
	SessionBackendMemory = "memory"
)

// Intent oracle providers.
const (
	OracleAnthropic = "anthropic"
	OracleOpenAI    = "openai"
	OracleRules     = "rules"
)

// RestaurantConfig holds restaurant-facing settings used in outbound
// messages and deposit math.
type RestaurantConfig struct {
	Name           string  `yaml:"name"`
	Currency       string  `yaml:"currency"`
	DepositPercent float64 `yaml:"deposit_percent"`
}

// StorageConfig selects the persistence backends.
type StorageConfig struct {
	// PostgresDSN backs the catalog and order gateways. Empty selects the
	// in-memory dev implementations.
	PostgresDSN string `yaml:"postgres_dsn"`
	// SessionBackend is one of redis, sqlite, memory.
	SessionBackend string `yaml:"session_backend"`
	RedisAddr      string `yaml:"redis_addr"`
	SQLitePath     string `yaml:"sqlite_path"`
}

// OracleConfig selects and configures the intent classifier.
type OracleConfig struct {
	Provider string `yaml:"provider"` // anthropic, openai or rules
	Model    string `yaml:"model"`
	// APIKey is normally left empty in the file and supplied via
	// ANTHROPIC_API_KEY / OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9090"; empty disables the listener
}

// Config is the root configuration for the bot.
type Config struct {
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Storage    StorageConfig    `yaml:"storage"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// Default returns a configuration that runs entirely in-process: in-memory
// sessions and gateways, rule-based intent classification, no metrics
// listener.
func Default() *Config {
	return &Config{
		Restaurant: RestaurantConfig{
			Name:           "Momo House",
			Currency:       "Rs.",
			DepositPercent: 0.20,
		},
		Storage: StorageConfig{
			SessionBackend: SessionBackendMemory,
			RedisAddr:      "localhost:6379",
			SQLitePath:     "sessions.db",
		},
		Oracle: OracleConfig{
			Provider: OracleRules,
		},
	}
}

// Load reads the YAML config at path, overlaying defaults. A missing file is
// not an error: defaults plus environment overrides apply. A .env file in
// the working directory is loaded first so that env overrides work in dev.
func Load(path string) (*Config, error) {
	// Best effort; absence of .env is normal outside dev.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Secrets are
// expected to arrive this way rather than through the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		c.Storage.SessionBackend = v
	}
	if v := os.Getenv("ORACLE_PROVIDER"); v != "" {
		c.Oracle.Provider = v
	}
	if c.Oracle.APIKey == "" {
		switch c.Oracle.Provider {
		case OracleAnthropic:
			c.Oracle.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case OracleOpenAI:
			c.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Storage.SessionBackend {
	case SessionBackendRedis, SessionBackendSQLite, SessionBackendMemory:
	default:
		return fmt.Errorf("unknown session backend %q", c.Storage.SessionBackend)
	}

	switch c.Oracle.Provider {
	case OracleRules:
	case OracleAnthropic, OracleOpenAI:
		if c.Oracle.APIKey == "" {
			return fmt.Errorf("oracle provider %q requires an API key", c.Oracle.Provider)
		}
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}

	if c.Restaurant.DepositPercent < 0 || c.Restaurant.DepositPercent > 1 {
		return fmt.Errorf("deposit_percent must be within [0, 1], got %v", c.Restaurant.DepositPercent)
	}
	return nil
}
