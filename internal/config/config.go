// Package config loads server configuration from AGENCY_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	LogLevel string  `env:"LOG_LEVEL" envDefault:"info"`
	Server   Server  `envPrefix:"SERVER_"`
	Storage  Storage `envPrefix:"STORAGE_"`
	Session  Session `envPrefix:"SESSION_"`
}

type Server struct {
	Host     string `env:"HOST" envDefault:"127.0.0.1"`
	Port     int    `env:"PORT" envDefault:"5000"`
	MaxConns int    `env:"MAX_CONNS" envDefault:"256"`
}

// Storage selects the store backing the site. Driver "memory" is the
// volatile reference store; "sqlite" persists under DataDir.
type Storage struct {
	Driver  string `env:"DRIVER" envDefault:"sqlite"`
	DataDir string `env:"DATA_DIR" envDefault:"./data"`
}

type Session struct {
	TTL           time.Duration `env:"TTL" envDefault:"12h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "AGENCY_"}); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Storage.Driver != "sqlite" && cfg.Storage.Driver != "memory" {
		return Config{}, fmt.Errorf("unknown storage driver %q (want sqlite or memory)", cfg.Storage.Driver)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
