package gamedata

import "github.com/gdamore/tcell/v2"

// Level thresholds at which the enemy mix changes.
const (
	Tier1MaxLevel = 7
	Tier2MaxLevel = 14
)

// EnemyDef defines an enemy type loaded from JSON.
type EnemyDef struct {
	ID          string `json:"id"`          // Unique identifier (e.g., "zombie")
	Name        string `json:"name"`        // Display name (e.g., "Zombie")
	Glyph       string `json:"glyph"`       // Single character for rendering (e.g., "z")
	Color       string `json:"color"`       // Hex color code (e.g., "#00FF00")
	Health      int    `json:"health"`      // Base and maximum health
	Strength    int    `json:"strength"`    // Base damage
	Dexterity   int    `json:"dexterity"`   // Hit chance modifier
	Hostility   int    `json:"hostility"`   // Aggro range in tiles
	TierWeights [3]int `json:"tierWeights"` // Spawn weight per level tier; zero never spawns
}

// GlyphRune returns the glyph as a rune for rendering.
func (e *EnemyDef) GlyphRune() rune {
	if len(e.Glyph) == 0 {
		return '?'
	}
	return rune(e.Glyph[0])
}

// TCellColor returns the color as a tcell.Color.
func (e *EnemyDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(e.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// WeightAt returns the spawn weight of this enemy on the given level.
func (e *EnemyDef) WeightAt(level int) int {
	switch {
	case level <= Tier1MaxLevel:
		return e.TierWeights[0]
	case level <= Tier2MaxLevel:
		return e.TierWeights[1]
	default:
		return e.TierWeights[2]
	}
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []EnemyDef `json:"enemies"`
}

// LoadEnemies loads enemy definitions from the embedded enemies.json file.
func LoadEnemies() ([]EnemyDef, error) {
	file, err := Load[EnemiesFile]("enemies.json")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}
