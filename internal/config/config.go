// Package config provides configuration management for the retrieval worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoDatasetsEnabled        = errors.New("at least one dataset must be enabled")
	ErrMissingOutputDir         = errors.New("output.base_dir is required")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrMissingEntsoeToken       = errors.New("entsoe.api_token is required when the tso dataset is enabled")
)

// Config represents the complete worker configuration.
type Config struct {
	Datasets DatasetsConfig `yaml:"datasets"`
	Output   OutputConfig   `yaml:"output"`
	Retry    RetryPolicy    `yaml:"retry"`
	Logging  LoggingConfig  `yaml:"logging"`
	Entsoe   EntsoeConfig   `yaml:"entsoe"`
}

// DatasetsConfig toggles the individual dataset pipelines.
type DatasetsConfig struct {
	OSM         bool `yaml:"osm"`
	GridKit     bool `yaml:"gridkit"`
	PowerPlants bool `yaml:"powerplants"`
	TSO         bool `yaml:"tso"`
	CORDIS      bool `yaml:"cordis"`
}

// OutputConfig defines where dataset outputs are written.
type OutputConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// EntsoeConfig carries the transparency-platform credential.
type EntsoeConfig struct {
	APIToken string `yaml:"api_token"`
}

// RetryPolicy defines retry behavior for the fetch client.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() *Config {
	return &Config{
		Datasets: DatasetsConfig{
			OSM:         true,
			GridKit:     true,
			PowerPlants: true,
			TSO:         true,
			CORDIS:      true,
		},
		Output: OutputConfig{
			BaseDir: "output",
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file, applies environment
// overrides and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides the dataset toggles and the ENTSO-E credential from
// the process environment. Recognized variables: RUN_OSM, RUN_GRIDKIT,
// RUN_POWERPLANTS, RUN_TSO, RUN_CORDIS and ENTSOE_API_TOKEN.
func (c *Config) ApplyEnv() {
	applyBoolEnv("RUN_OSM", &c.Datasets.OSM)
	applyBoolEnv("RUN_GRIDKIT", &c.Datasets.GridKit)
	applyBoolEnv("RUN_POWERPLANTS", &c.Datasets.PowerPlants)
	applyBoolEnv("RUN_TSO", &c.Datasets.TSO)
	applyBoolEnv("RUN_CORDIS", &c.Datasets.CORDIS)

	if token := os.Getenv("ENTSOE_API_TOKEN"); token != "" {
		c.Entsoe.APIToken = token
	}
}

func applyBoolEnv(name string, target *bool) {
	val, ok := os.LookupEnv(name)
	if !ok {
		return
	}

	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		*target = true
	case "0", "false", "no", "off":
		*target = false
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Datasets.OSM && !c.Datasets.GridKit && !c.Datasets.PowerPlants &&
		!c.Datasets.TSO && !c.Datasets.CORDIS {
		return ErrNoDatasetsEnabled
	}

	if c.Output.BaseDir == "" {
		return ErrMissingOutputDir
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Datasets.TSO && c.Entsoe.APIToken == "" {
		return ErrMissingEntsoeToken
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{OSM: %t, GridKit: %t, PowerPlants: %t, TSO: %t, CORDIS: %t, Output: %s}",
		c.Datasets.OSM,
		c.Datasets.GridKit,
		c.Datasets.PowerPlants,
		c.Datasets.TSO,
		c.Datasets.CORDIS,
		c.Output.BaseDir,
	)
}
