// Package world provides the grid model: positions, tiles, rooms and dungeon layout.
package world

// Tile represents a single map tile.
type Tile rune

const (
	// TileWall represents an impassable wall tile.
	TileWall Tile = '#'
	// TileFloor represents a passable room floor tile.
	TileFloor Tile = '.'
	// TileCorridor represents a passable corridor tile.
	TileCorridor Tile = '+'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileFloor || t == TileCorridor
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	if t == TileCorridor {
		return '░'
	}
	return rune(t)
}
