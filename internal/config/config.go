package config

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	OutputPath string `envconfig:"OUTPUT_PATH" default:"output/results.csv"`
	Runner     string `envconfig:"RUNNER" default:"direct"`

	MinAmount  decimal.Decimal `envconfig:"MIN_AMOUNT" default:"20"`
	CutoffDate string          `envconfig:"CUTOFF_DATE" default:"2010-01-01"`

	DatabaseURL         string        `envconfig:"DATABASE_URL"`
	DatabaseMaxConns    int32         `envconfig:"DATABASE_MAX_CONNS" default:"4"`
	DatabaseMaxConnLife time.Duration `envconfig:"DATABASE_MAX_CONN_LIFE" default:"1h"`

	RedisURL string        `envconfig:"REDIS_URL"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"24h"`

	MetricsFile    string `envconfig:"METRICS_FILE"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"production"`
}

var runners = map[string]bool{"direct": true, "prism": true}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("OUTPUT_PATH must not be empty")
	}
	if !runners[c.Runner] {
		return fmt.Errorf("unsupported RUNNER %q, want direct or prism", c.Runner)
	}
	if _, err := civil.ParseDate(c.CutoffDate); err != nil {
		return fmt.Errorf("invalid CUTOFF_DATE %q: %w", c.CutoffDate, err)
	}
	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be positive, got %d", c.DatabaseMaxConns)
	}
	return nil
}

// FilterRule returns the row filter configured by MIN_AMOUNT and CUTOFF_DATE.
func (c *Config) FilterRule() domain.FilterRule {
	return domain.FilterRule{MinAmount: c.MinAmount, Cutoff: c.CutoffDate}
}

func (c *Config) Development() bool {
	return c.Environment == "development"
}
