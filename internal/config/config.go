package config

import (
	"github.com/caarlos0/env/v11"

	"sable-ads/internal/config/configs"
)

// Config gathers every configuration section the service needs. Values come
// from environment variables via the caarlos0/env library; nested sections
// carry an envPrefix so their fields parse under it. Defaults live on the
// individual types in the configs package. Construct one with Load.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). It is attached
	// to log records so entries from different deployments can be told apart.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP configures the HTTP server. Variables prefixed with HTTP_
	// populate this section.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Variables prefixed with LOG_
	// populate this section.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Variables prefixed with
	// PSQL_ populate this section.
	Psql configs.Postgres `envPrefix:"PSQL_"`
}

// Load parses the environment into a Config, applying defaults for any
// variable that is unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
