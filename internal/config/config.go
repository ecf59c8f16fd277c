package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	RecordsAPIURL     string        `mapstructure:"RECORDS_API_URL"`
	RecordsAPITimeout time.Duration `mapstructure:"RECORDS_API_TIMEOUT"`
	SearchPageSize    int           `mapstructure:"SEARCH_PAGE_SIZE"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL"`
	CORSOrigins       []string      `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("RECORDS_API_TIMEOUT", "10s")
	v.SetDefault("SEARCH_PAGE_SIZE", 100)
	v.SetDefault("CACHE_TTL", "10s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("RECORDS_API_URL")
	v.BindEnv("RECORDS_API_TIMEOUT")
	v.BindEnv("SEARCH_PAGE_SIZE")
	v.BindEnv("REDIS_URL")
	v.BindEnv("CACHE_TTL")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.RecordsAPIURL == "" {
		return fmt.Errorf("RECORDS_API_URL is required")
	}
	if c.RecordsAPITimeout <= 0 {
		return fmt.Errorf("RECORDS_API_TIMEOUT must be positive, got %s", c.RecordsAPITimeout)
	}
	if c.SearchPageSize <= 0 {
		return fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", c.SearchPageSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// CacheEnabled reports whether a snapshot cache should be wired up.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}
