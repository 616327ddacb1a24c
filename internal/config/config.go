package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"TaxSentinel/internal/rates"
	"TaxSentinel/internal/retry"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheFile   = "file"
)

// Config holds all application configuration.
type Config struct {
	RateSource struct {
		URL     string        `yaml:"url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"rate_source"`
	Retry struct {
		MaxAttempts    int           `yaml:"max_attempts"`
		InitialBackoff time.Duration `yaml:"initial_backoff"`
		MaxBackoff     time.Duration `yaml:"max_backoff"`
	} `yaml:"retry"`
	Cache struct {
		Backend string        `yaml:"backend"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		FilePath string `yaml:"file_path"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
	// FallbackRates overrides individual embedded constants, keyed by rate key.
	FallbackRates map[string]string `yaml:"fallback_rates"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("RATE_SOURCE_URL"); v != "" {
		cfg.RateSource.URL = v
	}
	if v := os.Getenv("RATE_SOURCE_API_KEY"); v != "" {
		cfg.RateSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = ttl
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Redis.DB = db
		}
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.RateSource.Timeout == 0 {
		cfg.RateSource.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialBackoff == 0 {
		cfg.Retry.InitialBackoff = time.Second
	}
	if cfg.Retry.MaxBackoff == 0 {
		cfg.Retry.MaxBackoff = 8 * time.Second
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheMemory
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = "localhost:6379"
	}
	if cfg.Cache.FilePath == "" {
		cfg.Cache.FilePath = "data/rate_cache.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tax_sentinel.db"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 6 * * *"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheFile:
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, file; got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.InitialBackoff < 0 || c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		return fmt.Errorf("retry backoff must satisfy 0 <= initial_backoff <= max_backoff")
	}
	if c.RateSource.Timeout <= 0 {
		return fmt.Errorf("rate_source.timeout must be positive")
	}
	if c.Schedule.RefreshCron == "" {
		return fmt.Errorf("schedule.refresh_cron is required")
	}
	if _, err := c.FallbackOverrides(); err != nil {
		return err
	}
	return nil
}

// FallbackOverrides parses fallback_rates into decimals.
func (c *Config) FallbackOverrides() (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(c.FallbackRates))
	for key, raw := range c.FallbackRates {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("fallback_rates.%s: %w", key, err)
		}
		if v.IsNegative() {
			return nil, fmt.Errorf("fallback_rates.%s must not be negative", key)
		}
		out[key] = v
	}
	return out, nil
}

// RetryPolicy builds the retry policy for live rate fetches. Only transport
// failures and transient feed statuses are retried.
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy("rate fetch")
	p.MaxAttempts = c.Retry.MaxAttempts
	p.InitialBackoff = c.Retry.InitialBackoff
	p.MaxBackoff = c.Retry.MaxBackoff
	p.AttemptTimeout = c.RateSource.Timeout
	p.Retryable = rates.IsRetryable
	return p
}
