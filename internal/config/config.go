package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTP
	Store    Store
	Auth     Auth
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Metrics  bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}
	if err := config.Store.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
