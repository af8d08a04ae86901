package internal_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *internal.Config {
	cfg := &internal.Config{
		Database: internal.DatabaseConfig{Source: "postgres://localhost/expensehub", MaxOpenConns: 10, MaxIdleConns: 2},
		Security: internal.SecurityConfig{
			SessionSecret: "0123456789abcdef0123456789abcdef",
			UploadSecret:  "fedcba9876543210fedcba9876543210",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &internal.Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.Storage.UploadTTL)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxSizeBytes)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*internal.Config)
		want   string
	}{
		{"missing database", func(c *internal.Config) { c.Database.Source = "" }, "source is required"},
		{"short session secret", func(c *internal.Config) { c.Security.SessionSecret = "short" }, "session secret"},
		{"short upload secret", func(c *internal.Config) { c.Security.UploadSecret = "short" }, "upload secret"},
		{"bcrypt cost", func(c *internal.Config) { c.Security.BCryptCost = 40 }, "bcrypt_cost"},
		{"idle above open", func(c *internal.Config) { c.Database.MaxIdleConns = 50 }, "max_idle_conns"},
		{"log level", func(c *internal.Config) { c.Observability.Logging.Level = "loud" }, "unknown level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Source = ""
	cfg.Security.SessionSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database config")
	assert.Contains(t, err.Error(), "security config")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/expensehub")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("UPLOAD_SECRET", "fedcba9876543210fedcba9876543210")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("COOKIE_SECURE", "false")

	cfg := internal.LoadConfigFromEnv()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Security.SessionTTL)
	assert.False(t, cfg.Security.CookieSecure)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.NoError(t, cfg.Validate())
}
