package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/tableplan/tableplan/internal/engine"
)

type Config struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins  string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	TokenSecret     string        `envconfig:"TOKEN_SECRET" default:"dev-secret-change-in-production"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	PlanIdleTimeout time.Duration `envconfig:"PLAN_IDLE_TIMEOUT" default:"30m"`
	GridPitch       float64       `envconfig:"GRID_PITCH" default:"50"`
	DefaultWidth    float64       `envconfig:"DEFAULT_WIDTH" default:"100"`
	DefaultHeight   float64       `envconfig:"DEFAULT_HEIGHT" default:"100"`
	DefaultPax      int           `envconfig:"DEFAULT_PAX" default:"2"`
	MaxImportBytes  int64         `envconfig:"MAX_IMPORT_BYTES" default:"2097152"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EngineOptions returns the element defaults and grid pitch for new plans.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.ElementWidth = c.DefaultWidth
	opts.ElementHeight = c.DefaultHeight
	opts.ElementPax = c.DefaultPax
	opts.GridPitch = c.GridPitch
	return opts
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level maps LogLevel to a slog level. Unknown names mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
