package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Datasets.TSO = false // no token in defaults

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	content := `
datasets:
  osm: false
  gridkit: true
  powerplants: false
  tso: false
  cordis: false
output:
  base_dir: /tmp/out
retry:
  max_attempts: 5
  initial_delay_ms: 100
  max_delay_ms: 1000
  backoff_multiplier: 1.5
  timeout_sec: 60
logging:
  level: debug
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Datasets.OSM || !cfg.Datasets.GridKit {
		t.Errorf("dataset toggles = %+v, want only gridkit enabled", cfg.Datasets)
	}

	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Retry.MaxAttempts)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RUN_OSM", "0")
	t.Setenv("RUN_TSO", "true")
	t.Setenv("ENTSOE_API_TOKEN", "secret-token")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Datasets.OSM {
		t.Error("RUN_OSM=0 did not disable osm")
	}

	if !cfg.Datasets.TSO {
		t.Error("RUN_TSO=true did not enable tso")
	}

	if cfg.Entsoe.APIToken != "secret-token" {
		t.Errorf("APIToken = %q, want env value", cfg.Entsoe.APIToken)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name: "no datasets",
			mutate: func(c *Config) {
				c.Datasets = DatasetsConfig{}
			},
			wantErr: ErrNoDatasetsEnabled,
		},
		{
			name: "missing output dir",
			mutate: func(c *Config) {
				c.Output.BaseDir = ""
			},
			wantErr: ErrMissingOutputDir,
		},
		{
			name: "bad max attempts",
			mutate: func(c *Config) {
				c.Retry.MaxAttempts = 0
			},
			wantErr: ErrInvalidMaxAttempts,
		},
		{
			name: "bad multiplier",
			mutate: func(c *Config) {
				c.Retry.BackoffMultiplier = 0.5
			},
			wantErr: ErrInvalidBackoffMultiplier,
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name: "tso without token",
			mutate: func(c *Config) {
				c.Datasets.TSO = true
				c.Entsoe.APIToken = ""
			},
			wantErr: ErrMissingEntsoeToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Datasets.TSO = false
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := &RetryPolicy{
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 0},
		{2, 100 * time.Millisecond},
		{3, 200 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{10, 1000 * time.Millisecond}, // capped
	}

	for _, tt := range tests {
		if got := rp.GetRetryDelay(tt.attempt); got != tt.want {
			t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
