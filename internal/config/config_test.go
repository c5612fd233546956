package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CRON_WORKERS", "8")
	t.Setenv("CRON_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 8, cfg.Cron.Workers)
	assert.Equal(t, 24*time.Hour, cfg.Cron.Interval)
	assert.Equal(t, 15*time.Second, cfg.App.ShutdownTimeout)
}

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD is required")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"APP_PORT":             "eighty",
		"CRON_INTERVAL":        "daily",
		"CRON_ENABLED":         "maybe",
		"APP_SHUTDOWN_TIMEOUT": "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("STORAGE_DRIVER", "memory")
			t.Setenv("JWT_SECRET_KEY", "secret")
			t.Setenv(key, value)

			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWT:     JWTConfig{Secret: "s"},
		Storage: StorageConfig{Driver: StorageDriverMemory},
		Cron:    CronConfig{Workers: 1, Interval: time.Hour, TimeZone: "UTC"},
	}
	require.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.JWT.Secret = ""
	assert.Error(t, noSecret.Validate())

	badDriver := valid
	badDriver.Storage.Driver = "sqlite"
	assert.Error(t, badDriver.Validate())

	badZone := valid
	badZone.Cron.TimeZone = "Mars/Olympus"
	assert.Error(t, badZone.Validate())
}

func TestSlogLevel(t *testing.T) {
	cfg := Config{App: AppConfig{LogLevel: "DEBUG"}}
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	cfg.App.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
