package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.PlanIdleTimeout)
	assert.Equal(t, int64(2<<20), cfg.MaxImportBytes)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Origins())

	opts := cfg.EngineOptions()
	assert.Equal(t, 100.0, opts.ElementWidth)
	assert.Equal(t, 2, opts.ElementPax)
	assert.Equal(t, 50.0, opts.GridPitch)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("GRID_PITCH", "25")
	t.Setenv("DEFAULT_PAX", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 25.0, cfg.EngineOptions().GridPitch)
	assert.Equal(t, 6, cfg.EngineOptions().ElementPax)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := Load()
	assert.Error(t, err)
}

func TestUnknownLevelIsInfo(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
