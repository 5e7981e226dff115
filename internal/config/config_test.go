package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodgram.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// clearEnv blanks every variable Load reads; empty values are ignored.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "GITHUB_CLIENT_ID",
		"GITHUB_CLIENT_SECRET", "GITHUB_CALLBACK_URL", "LOG_LEVEL", "LOG_FORMAT",
		"ENV", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Database.Path, cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
database:
  path: /tmp/recipes.db
auth:
  jwt_secret: a-very-long-secret-value
  token_ttl: 2h
log:
  level: debug
  format: json
cors:
  allowed_origins: ["https://foodgram.example"]
rate_limit:
  rps: 5
  burst: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "/tmp/recipes.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"https://foodgram.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, RateLimitConfig{RPS: 5, Burst: 10}, cfg.RateLimit)
	assert.Equal(t, ":9090", cfg.Addr())
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.applyEnvOverrides(mapLookup(map[string]string{
		"PORT":                 "7000",
		"DB_PATH":              ":memory:",
		"JWT_SECRET":           "env-secret-0123456789",
		"TOKEN_TTL":            "90m",
		"GITHUB_CLIENT_ID":     "gh-id",
		"GITHUB_CLIENT_SECRET": "gh-secret",
		"LOG_LEVEL":            "warn",
		"ENV":                  "production",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"RATE_LIMIT_RPS":       "2.5",
		"RATE_LIMIT_BURST":     "3",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.GitHubEnabled())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "production", cfg.Log.Environment)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, RateLimitConfig{RPS: 2.5, Burst: 3}, cfg.RateLimit)
}

func TestApplyEnvOverrides_InvalidValues(t *testing.T) {
	for _, key := range []string{"PORT", "TOKEN_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Run(key, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.applyEnvOverrides(mapLookup(map[string]string{key: "not-a-number"}))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"no db path", func(c *Config) { c.Database.Path = "" }, true},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, true},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, true},
		{"rate limit off", func(c *Config) { c.RateLimit = RateLimitConfig{} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "6060")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}
