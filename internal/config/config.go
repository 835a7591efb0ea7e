// Package config loads runtime configuration from YAML files with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	FeedEndpoint  string `yaml:"feed_endpoint"`
	MetricsAddr   string `yaml:"metrics_addr"`

	Report ReportConfig `yaml:"report"`
}

// ReportConfig contains report generation parameters.
type ReportConfig struct {
	// RollingWindowDays is the window for rolling Sharpe/volatility/drawdown.
	RollingWindowDays int `yaml:"rolling_window_days"`
	// TargetPointCount is the downsampled series length for display.
	TargetPointCount int `yaml:"target_point_count"`
	// RiskFreeRate is the annual risk-free rate used by Sharpe.
	RiskFreeRate float64 `yaml:"risk_free_rate"`
	// OutputDir is where rendered reports are written.
	OutputDir string `yaml:"output_dir"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		MetricsAddr: ":9090",
		Report: ReportConfig{
			RollingWindowDays: 30,
			TargetPointCount:  20,
			RiskFreeRate:      0.02,
			OutputDir:         "reports",
		},
	}
}

// Load reads the YAML file at path (if non-empty), applies environment
// overrides on top of the defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides fields from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.ClickhouseDSN = v
	}
	if v := os.Getenv("FEED_ENDPOINT"); v != "" {
		c.FeedEndpoint = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("ROLLING_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Report.RollingWindowDays = n
		}
	}
	if v := os.Getenv("TARGET_POINT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Report.TargetPointCount = n
		}
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Report.RiskFreeRate = f
		}
	}
	if v := os.Getenv("REPORT_OUTPUT_DIR"); v != "" {
		c.Report.OutputDir = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Report.RollingWindowDays < 2 {
		return fmt.Errorf("report.rolling_window_days must be at least 2")
	}
	if c.Report.TargetPointCount < 2 {
		return fmt.Errorf("report.target_point_count must be at least 2")
	}
	if c.Report.RiskFreeRate < 0 {
		return fmt.Errorf("report.risk_free_rate must not be negative")
	}
	return nil
}
