package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "symcalc.yaml", `
addr: ":9090"
log_format: text
cache_size: 16
cache_ttl: 10m
cors_origins:
  - http://app.example
read_header_timeout: 2s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://app.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Second, cfg.ReadHeaderTimeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "symcalc.yaml", "addr: \":9090\"\n")
	t.Setenv("SYMCALC_ADDR", ":7070")
	t.Setenv("SYMCALC_RATE_LIMIT_RPS", "2.5")
	t.Setenv("SYMCALC_CORS_ORIGINS", "http://a.example;http://b.example")
	t.Setenv("SYMCALC_IDLE_TIMEOUT", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.IdleTimeout)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DotEnvFile, "SYMCALC_LOG_LEVEL=debug\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("SYMCALC_LOG_LEVEL")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "addr: [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("SYMCALC_CACHE_SIZE", "lots")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"zero body", func(c *Config) { c.MaxBodyBytes = 0 }},
		{"negative rps", func(c *Config) { c.RateLimitRPS = -1 }},
		{"no burst", func(c *Config) { c.RateLimitRPS = 1; c.RateLimitBurst = 0 }},
		{"negative timeout", func(c *Config) { c.WriteTimeout = -time.Second }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
