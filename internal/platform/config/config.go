// Package config binds process configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends selectable via VINDEX_STORE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr string `env:"VINDEX_ADDR" envDefault:":8080"`

	// Remote decoder
	DecoderBaseURL   string        `env:"VINDEX_DECODER_URL" envDefault:"https://vpic.nhtsa.dot.gov/api/vehicles/DecodeVinValues"`
	DecoderFormat    string        `env:"VINDEX_DECODER_FORMAT" envDefault:"json"`
	DecoderModelYear string        `env:"VINDEX_DECODER_MODELYEAR"`
	DecoderTimeout   time.Duration `env:"VINDEX_DECODER_TIMEOUT" envDefault:"10s"`

	// Store backing
	StoreBackend string `env:"VINDEX_STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath   string `env:"VINDEX_SQLITE_PATH" envDefault:"vin_cache.db"`
	PostgresDSN  string `env:"VINDEX_POSTGRES_DSN"`
	RedisURL     string `env:"VINDEX_REDIS_URL"`

	// Export destination directory
	ExportDir string `env:"VINDEX_EXPORT_DIR" envDefault:"."`
}

// Load builds a Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.StoreBackend {
	case BackendSQLite, BackendPostgres, BackendRedis, BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == BackendPostgres && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("postgres backend requires VINDEX_POSTGRES_DSN")
	}
	if cfg.StoreBackend == BackendRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis backend requires VINDEX_REDIS_URL")
	}
	return cfg, nil
}
