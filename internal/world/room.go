package world

// Room represents a rectangular room in the dungeon.
type Room struct {
	X      int `json:"x"` // Top-left corner
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center cell of the room.
func (r Room) Center() Position {
	return Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains returns true if the given cell is inside the room.
func (r Room) Contains(p Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersects returns true if this room overlaps with another room.
func (r Room) Intersects(other Room) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Area returns the number of cells covered by the room.
func (r Room) Area() int {
	return r.Width * r.Height
}
