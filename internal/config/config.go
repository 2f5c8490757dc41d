// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/game"
)

// Config is everything cmd/dualcrawl reads from the environment.
type Config struct {
	// Seed for the run; 0 picks one from the clock.
	Seed      int64       `env:"DUALCRAWL_SEED"`
	MaxLevels int         `env:"DUALCRAWL_MAX_LEVELS" envDefault:"21"`
	StartView camera.Mode `env:"DUALCRAWL_START_VIEW" envDefault:"grid"`
	FogOfWar  bool        `env:"DUALCRAWL_FOG_OF_WAR" envDefault:"true"`
	TestMode  bool        `env:"DUALCRAWL_TEST_MODE"`

	SavePath string `env:"DUALCRAWL_SAVE_PATH" envDefault:"dualcrawl.db"`
	SaveSlot string `env:"DUALCRAWL_SAVE_SLOT" envDefault:"autosave"`
	// Resume loads SaveSlot at start-up when it exists.
	Resume bool `env:"DUALCRAWL_RESUME" envDefault:"true"`

	LogFile  string     `env:"DUALCRAWL_LOG_FILE" envDefault:"dualcrawl.log"`
	LogLevel slog.Level `env:"DUALCRAWL_LOG_LEVEL" envDefault:"INFO"`

	// SpectateAddr serves the spectator feed; empty disables it.
	SpectateAddr string `env:"DUALCRAWL_SPECTATE_ADDR"`

	Telemetry        bool   `env:"DUALCRAWL_TELEMETRY" envDefault:"true"`
	HoneycombAPIKey  string `env:"HONEYCOMB_DUALCRAWL_API_KEY"`
	HoneycombDataset string `env:"HONEYCOMB_DUALCRAWL_DATASET" envDefault:"dualcrawl"`
}

// Load reads the given .env files (".env" when none are named) into the
// process environment, then parses Config. Missing files are skipped;
// variables already set win over file contents.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxLevels < 1 {
		return Config{}, fmt.Errorf("parse env: DUALCRAWL_MAX_LEVELS must be at least 1, got %d", cfg.MaxLevels)
	}
	return cfg, nil
}

// Game returns the session options.
func (c Config) Game() game.Config {
	return game.Config{
		Seed:      c.Seed,
		MaxLevels: c.MaxLevels,
		FogOfWar:  c.FogOfWar,
		TestMode:  c.TestMode,
		StartMode: c.StartView,
	}
}
