package game

import "github.com/samdwyer/dualcrawl/internal/camera"

// DefaultMaxLevels is the depth of a full run.
const DefaultMaxLevels = 21

// Config holds session options.
type Config struct {
	// Seed for random number generation. Used for reproducible dungeon generation.
	// A seed of 0 means a random seed will be generated.
	Seed int64

	// MaxLevels is the last level; clearing it wins the game.
	MaxLevels int

	// FogOfWar hides cells the player has not seen.
	FogOfWar bool

	// TestMode skips difficulty adjustment and autosave.
	TestMode bool

	// StartMode is the view the session opens in.
	StartMode camera.Mode
}

func (c Config) maxLevels() int {
	if c.MaxLevels <= 0 {
		return DefaultMaxLevels
	}
	return c.MaxLevels
}
