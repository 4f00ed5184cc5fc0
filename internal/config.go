package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file
type Config struct {
	APIURL         string        `env:"DATALK_API_URL" envDefault:"http://127.0.0.1:8000"`
	Home           string        `env:"DATALK_HOME"`
	Timeout        time.Duration `env:"DATALK_TIMEOUT" envDefault:"60s"`
	HealthInterval time.Duration `env:"DATALK_HEALTH_INTERVAL" envDefault:"30s"`
	SchemaTTL      time.Duration `env:"DATALK_SCHEMA_TTL" envDefault:"5m"`
}

// LoadConfig loads envFile (if given) and parses the environment.
// Without envFile a .env in the working directory is used when present.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		LogInfo("Loading env from file %s", envFile)
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file %q: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			LogWarn("Ignoring unreadable .env: %v", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Home = filepath.Join(homeDir, ".datalk")
	}
	return &cfg, nil
}

// StorePath is the SQLite file holding workbench state
func (c *Config) StorePath() string {
	return filepath.Join(c.Home, "workbench.db")
}
