// ABOUTME: Environment-driven configuration with storage backend factory.
// ABOUTME: Loads .env first, fails fast when required credentials are absent.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/avolkov/aquacal/internal/storage"
)

// Config holds all runtime settings.
type Config struct {
	// TelegramToken authenticates the bot transport.
	TelegramToken string `env:"BOT_TG_TOKEN"`
	// WeatherKey is the OpenWeatherMap API key.
	WeatherKey string `env:"OW_API_KEY"`
	WeatherURL string `env:"OW_API_URL" envDefault:"http://api.openweathermap.org/data/2.5/weather"`
	FoodURL    string `env:"OFF_API_URL" envDefault:"https://world.openfoodfacts.org/cgi/search.pl"`

	// DefaultCity is assigned by the '+' sentinel during setup.
	DefaultCity string `env:"AQUACAL_DEFAULT_CITY" envDefault:"Moscow"`

	// Backend selects the storage backend: "memory" (default) or "badger".
	Backend string `env:"AQUACAL_BACKEND" envDefault:"memory"`
	// DataDir is where the badger backend keeps its files. Defaults to
	// the XDG data directory.
	DataDir string `env:"AQUACAL_DATA_DIR"`

	// SessionTTL is how long an abandoned setup dialogue survives.
	SessionTTL time.Duration `env:"AQUACAL_SESSION_TTL" envDefault:"30m"`

	// MetricsAddr exposes prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `env:"AQUACAL_METRICS_ADDR"`

	LogLevel string `env:"AQUACAL_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ValidateBot checks the credentials the Telegram bot requires.
func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return errors.New("BOT_TG_TOKEN is required")
	}
	if c.WeatherKey == "" {
		return errors.New("OW_API_KEY is required")
	}
	return nil
}

// GetDataDir returns the data directory, defaulting to the XDG path.
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "aquacal")
}

// OpenStore creates a Store implementation based on the configured backend.
func (c *Config) OpenStore() (storage.Store, error) {
	switch c.Backend {
	case "", "memory":
		return storage.NewMemoryStore(), nil
	case "badger":
		return storage.OpenBadger(c.GetDataDir())
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}
