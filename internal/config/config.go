// Package config loads server settings from defaults, an optional YAML file,
// an optional .env file and SYMCALC_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Config holds every server setting. List values in the environment are
// separated by semicolons.
type Config struct {
	Addr         string `yaml:"addr" env:"SYMCALC_ADDR"`
	LogLevel     string `yaml:"log_level" env:"SYMCALC_LOG_LEVEL"`
	LogFormat    string `yaml:"log_format" env:"SYMCALC_LOG_FORMAT"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" env:"SYMCALC_MAX_BODY_BYTES"`

	CacheSize int           `yaml:"cache_size" env:"SYMCALC_CACHE_SIZE"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"SYMCALC_CACHE_TTL"`
	RedisAddr string        `yaml:"redis_addr" env:"SYMCALC_REDIS_ADDR"`
	RedisDB   int           `yaml:"redis_db" env:"SYMCALC_REDIS_DB"`

	RateLimitRPS   float64  `yaml:"rate_limit_rps" env:"SYMCALC_RATE_LIMIT_RPS"`
	RateLimitBurst int      `yaml:"rate_limit_burst" env:"SYMCALC_RATE_LIMIT_BURST"`
	CORSOrigins    []string `yaml:"cors_origins" env:"SYMCALC_CORS_ORIGINS"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"SYMCALC_READ_HEADER_TIMEOUT"`
	WriteTimeout      time.Duration `yaml:"write_timeout" env:"SYMCALC_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env:"SYMCALC_IDLE_TIMEOUT"`
}

// Default returns the settings used when nothing overrides them. Caching is
// in-process, rate limiting is off and writes have no deadline.
func Default() *Config {
	return &Config{
		Addr:              ":8080",
		LogLevel:          "info",
		LogFormat:         "json",
		MaxBodyBytes:      1 << 20,
		CacheSize:         1024,
		CacheTTL:          time.Hour,
		RateLimitBurst:    20,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Load builds a Config. An empty path skips the YAML layer; a named file
// that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if _, err := os.Stat(DotEnvFile); err == nil {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr is required")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("log_format must be json or text, got %q", c.LogFormat))
	}
	if c.MaxBodyBytes <= 0 {
		problems = append(problems, "max_body_bytes must be positive")
	}
	if c.RedisAddr == "" && c.CacheSize < 0 {
		problems = append(problems, "cache_size must not be negative")
	}
	if c.CacheTTL < 0 {
		problems = append(problems, "cache_ttl must not be negative")
	}
	if c.RateLimitRPS < 0 {
		problems = append(problems, "rate_limit_rps must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		problems = append(problems, "rate_limit_burst must be at least 1 when rate limiting is on")
	}
	if c.ReadHeaderTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		problems = append(problems, "timeouts must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
