package world

import "fmt"

// Position is an integer grid cell. It is a value type: every holder owns its copy.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// Add returns the position one step in the given direction.
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Manhattan returns the Manhattan distance to other.
func (p Position) Manhattan(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// Chebyshev returns the king-move distance to other.
func (p Position) Chebyshev(other Position) int {
	return max(abs(p.X-other.X), abs(p.Y-other.Y))
}

// IsAdjacent reports whether other is one of the eight surrounding cells.
func (p Position) IsAdjacent(other Position) bool {
	return p != other && p.Chebyshev(other) == 1
}

// String formats the position as (x,y).
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a unit step on the grid.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Cardinal and diagonal directions. Y grows downward.
var (
	None      = Direction{}
	North     = Direction{DX: 0, DY: -1}
	South     = Direction{DX: 0, DY: 1}
	East      = Direction{DX: 1, DY: 0}
	West      = Direction{DX: -1, DY: 0}
	NorthEast = Direction{DX: 1, DY: -1}
	NorthWest = Direction{DX: -1, DY: -1}
	SouthEast = Direction{DX: 1, DY: 1}
	SouthWest = Direction{DX: -1, DY: 1}
)

// Cardinals lists the four orthogonal directions.
var Cardinals = []Direction{North, East, South, West}

// Diagonals lists the four diagonal directions.
var Diagonals = []Direction{NorthEast, SouthEast, SouthWest, NorthWest}

// Neighbors lists all eight surrounding directions, cardinals first.
var Neighbors = append(append([]Direction{}, Cardinals...), Diagonals...)

// IsZero reports whether the direction is the zero step.
func (d Direction) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// IsStep reports whether d moves exactly one cell, orthogonally or diagonally.
func (d Direction) IsStep() bool {
	return !d.IsZero() && abs(d.DX) <= 1 && abs(d.DY) <= 1
}

// String returns a compass name for the direction.
func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case NorthEast:
		return "northeast"
	case NorthWest:
		return "northwest"
	case SouthEast:
		return "southeast"
	case SouthWest:
		return "southwest"
	default:
		return "unknown"
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
