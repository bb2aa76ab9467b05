// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" env-default:":8080"`

	DatabaseURL string `env:"DATABASE_URL" env-default:"postgres://localhost:5432/kitclaim?sslmode=disable"`

	// HS256 secret for the session tokens minted by the platform gateway.
	AuthSecret string `env:"AUTH_SECRET" env-default:"dev-secret"`

	ClaimRateLimit  int           `env:"CLAIM_RATE_LIMIT" env-default:"30"`
	ClaimRateWindow time.Duration `env:"CLAIM_RATE_WINDOW" env-default:"1m"`

	SeedDemoData bool `env:"SEED_DEMO_DATA" env-default:"false"`
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
