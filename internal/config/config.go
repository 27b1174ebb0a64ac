package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr     string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath       string     `env:"DB_PATH" envDefault:"data/globetrotter.db"`
	CatalogPath  string     `env:"CATALOG_PATH"`
	RedisURL     string     `env:"REDIS_URL"`
	RateLimitRPS int        `env:"RATE_LIMIT_RPS" envDefault:"20"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat    string     `env:"LOG_FORMAT" envDefault:"json"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
