// Package config holds the server process settings, read from the
// environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the puzzle-server process configuration. Everything about the
// event itself (days, rewards, grid, gate) lives in the event config file;
// this only covers process wiring.
type Config struct {
	Addr        string `env:"PUZZLE_ADDR" envDefault:":8080"`
	DBPath      string `env:"PUZZLE_DB_PATH" envDefault:"puzzle.db"`
	EventConfig string `env:"PUZZLE_EVENT_CONFIG" envDefault:"event.json"`

	// DayOverride forces a specific day id (0 picks the applicable day).
	DayOverride int `env:"PUZZLE_DAY" envDefault:"0"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
