package config

import (
	"fmt"
	"time"

	"github.com/cadencehq/cadence/internal/env"
)

// NotifierConfig holds all configuration for the notifier binary.
type NotifierConfig struct {
	Database        DatabaseConfig
	Loop            NotifierLoopConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"CADENCE_SHUTDOWN_TIMEOUT" default:"15s"`
}

// NotifierLoopConfig tunes the reminder loop.
type NotifierLoopConfig struct {
	Interval         time.Duration `env:"CADENCE_NOTIFIER_INTERVAL" default:"15m"`
	OperationTimeout time.Duration `env:"CADENCE_NOTIFIER_OPERATION_TIMEOUT" default:"60s"`
	SendTimeout      time.Duration `env:"CADENCE_NOTIFIER_SEND_TIMEOUT" default:"10s"`

	// LedgerPath is the SQLite file tracking deliveries.
	LedgerPath    string `env:"CADENCE_NOTIFIER_LEDGER_PATH" default:"./cadence-deliveries.db"`
	RetentionDays int    `env:"CADENCE_NOTIFIER_LEDGER_RETENTION_DAYS" default:"30"`
}

// Validate validates the notifier loop configuration.
func (c *NotifierLoopConfig) Validate() error {
	if c.LedgerPath == "" {
		return fmt.Errorf("CADENCE_NOTIFIER_LEDGER_PATH is required")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("CADENCE_NOTIFIER_LEDGER_RETENTION_DAYS must not be negative")
	}
	return nil
}

// LoadNotifierConfig loads and validates notifier configuration from environment.
func LoadNotifierConfig() (*NotifierConfig, error) {
	cfg := &NotifierConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load notifier config: %w", err)
	}

	return cfg, nil
}
