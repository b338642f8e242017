package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name,
// `default:""` provides a fallback, and `required:"true"` makes a variable
// mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	HttpServer ServerConfig
	Auth       AuthConfig
	Store      StoreConfig
}

// ServerConfig holds HTTP server-specific configuration.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// AuthConfig holds session-token and seeded-credential settings.
type AuthConfig struct {
	JWTSecret    string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL     time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"12h"`
	SeedPassword string        `envconfig:"SEED_USER_PASSWORD" default:"password123"`
}

// StoreConfig holds the initial store-wide settings. These seed the settings
// store at startup and can be edited at runtime via the settings API.
type StoreConfig struct {
	Name              string  `envconfig:"STORE_NAME" default:"My POS Store"`
	Currency          string  `envconfig:"STORE_CURRENCY" default:"USD"`
	TaxRate           float64 `envconfig:"TAX_RATE" default:"0.10"`
	LowStockThreshold int     `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
}

var cfg Config

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	log.Println("Loading service configuration...")
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.Store.TaxRate < 0 || cfg.Store.TaxRate > 1 {
		return nil, fmt.Errorf("TAX_RATE must be between 0 and 1, got %v", cfg.Store.TaxRate)
	}
	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}
