package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Winglet-Hell/grow-money-sub001/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Parse   ParseConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

// ParseConfig tunes the ingestion pipeline.
type ParseConfig struct {
	// ReportingCurrency is the ISO-4217 code all amounts are normalized to.
	ReportingCurrency string
	// SampleRows bounds how many data rows schema inference samples per column.
	SampleRows int
	// HeaderScanRows bounds how many leading rows are searched for the header.
	HeaderScanRows int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Parse: ParseConfig{
			ReportingCurrency: getEnv("REPORTING_CURRENCY", "USD"),
			SampleRows:        getEnvAsInt("PARSE_SAMPLE_ROWS", 20),
			HeaderScanRows:    getEnvAsInt("PARSE_HEADER_SCAN_ROWS", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if !money.IsValidCode(cfg.Parse.ReportingCurrency) {
		return nil, fmt.Errorf("invalid REPORTING_CURRENCY %q", cfg.Parse.ReportingCurrency)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
