package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:          AppConfig{Environment: "development", DataPath: "/data"},
		Logger:       LoggerConfig{Level: "info"},
		Database:     DatabaseConfig{Driver: DriverSQLite, Path: "/data/tags.db"},
		Auth:         AuthConfig{AccessTokenDuration: time.Hour},
		Localization: LocalizationConfig{DefaultLanguage: "en"},
		RateLimit:    RateLimitConfig{RequestsPerMinute: 60, Burst: 10},
	}
}

// noEnvFile keeps Load from picking up a .env in the working directory.
func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true}, // case insensitive
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]func(*Config){
		"unknown driver":     func(c *Config) { c.Database.Driver = "postgres" },
		"unknown language":   func(c *Config) { c.Localization.DefaultLanguage = "xx" },
		"zero token ttl":     func(c *Config) { c.Auth.AccessTokenDuration = 0 },
		"negative rate":      func(c *Config) { c.RateLimit.RequestsPerMinute = -1 },
		"rate without burst": func(c *Config) { c.RateLimit.Burst = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load([]string{noEnvFile(t), "-data-path=" + dataDir})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dataDir, "tags.db"), cfg.Database.Path)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, filepath.Join(dataDir, "search"), cfg.Search.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, "en", cfg.Localization.DefaultLanguage)
	assert.False(t, cfg.Tag.RequireColorHash)
	assert.Equal(t, 600, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 60, cfg.RateLimit.Burst)
}

func TestLoad_Precedence(t *testing.T) {
	dataDir := t.TempDir()
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`# comment
SERVER_PORT=7000
LOG_LEVEL="warn"
DB_DRIVER=badger
`), 0o600))

	// Empty values register a restore; the .env loader fills unset keys.
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TAG_COLOR_REQUIRE_HASH", "yes")

	cfg, err := Load([]string{
		"-env-file=" + envFile,
		"-data-path=" + dataDir,
		"-port=9090",
		"-cors-origins=http://a.test, http://b.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port, "flag beats .env")
	assert.Equal(t, "debug", cfg.Logger.Level, "env beats .env")
	assert.Equal(t, DriverBadger, cfg.Database.Driver, ".env beats default")
	assert.Equal(t, filepath.Join(dataDir, "badger"), cfg.Database.Path)
	assert.True(t, cfg.Tag.RequireColorHash)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string][]string{
		"duration": {"-read-timeout=soon"},
		"int":      {"-rate-limit=lots"},
		"driver":   {"-db-driver=mysql"},
		"flag":     {"-no-such-flag"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			args = append(args, noEnvFile(t), "-data-path="+t.TempDir())
			_, err := Load(args)
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/tags", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tags"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/a/../b", "")
	require.NoError(t, err)
	assert.Equal(t, "/b", got)
}

func TestGetBoolConfigValue(t *testing.T) {
	t.Setenv("TEST_BOOL", "")
	assert.True(t, getBoolConfigValue("", "TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("1", "TEST_BOOL", false))
	assert.True(t, getBoolConfigValue("YES", "TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("off", "TEST_BOOL", true))
}
