package config

import (
	"fmt"
	"time"

	"github.com/cadencehq/cadence/internal/env"
)

// ServerConfig holds all configuration for the API server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	Auth            AuthConfig
	Archive         ArchiveConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"CADENCE_SHUTDOWN_TIMEOUT" default:"15s"`
}

// HTTPConfig holds HTTP server configuration. Zero values fall back to
// the infrastructure defaults.
type HTTPConfig struct {
	Host              string        `env:"CADENCE_HTTP_HOST"`
	Port              string        `env:"CADENCE_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"CADENCE_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"CADENCE_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"CADENCE_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"CADENCE_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"CADENCE_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"CADENCE_HTTP_MAX_BODY_BYTES"`
}

// AuthConfig holds the service token guarding the API.
type AuthConfig struct {
	ServiceToken string `env:"CADENCE_SERVICE_TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.ServiceToken == "" {
		return fmt.Errorf("CADENCE_SERVICE_TOKEN is required")
	}
	return nil
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
