package level

import (
	"math"

	"github.com/samdwyer/dualcrawl/internal/world"
)

// Fog-of-war ray parameters.
const (
	SightRange   = 10
	rayStepAngle = 5
)

// Fog tracks which cells the player has seen and which are in view now.
// Inside a room the whole room and its walls are in view; in a corridor
// rays are cast up to SightRange and stop at walls.
type Fog struct {
	width, height int
	explored      []bool
	visible       []bool
}

// NewFog creates fog covering a width x height map.
func NewFog(width, height int) *Fog {
	return &Fog{
		width:    width,
		height:   height,
		explored: make([]bool, width*height),
		visible:  make([]bool, width*height),
	}
}

func (f *Fog) index(p world.Position) (int, bool) {
	if p.X < 0 || p.X >= f.width || p.Y < 0 || p.Y >= f.height {
		return 0, false
	}
	return p.Y*f.width + p.X, true
}

func (f *Fog) reveal(p world.Position) {
	if i, ok := f.index(p); ok {
		f.visible[i] = true
		f.explored[i] = true
	}
}

// Update recomputes the view from p.
func (f *Fog) Update(d *world.Dungeon, p world.Position) {
	clear(f.visible)

	if idx := d.RoomIndexAt(p); idx >= 0 {
		r := d.Rooms[idx]
		for y := r.Y - 1; y <= r.Y+r.Height; y++ {
			for x := r.X - 1; x <= r.X+r.Width; x++ {
				f.reveal(world.Pos(x, y))
			}
		}
		return
	}

	f.reveal(p)
	for angle := 0; angle < 360; angle += rayStepAngle {
		rad := float64(angle) * math.Pi / 180
		dx, dy := math.Cos(rad), math.Sin(rad)
		for dist := 1; dist <= SightRange; dist++ {
			cell := world.Pos(
				p.X+int(math.Round(dx*float64(dist))),
				p.Y+int(math.Round(dy*float64(dist))),
			)
			f.reveal(cell)
			if !d.IsPassable(cell) {
				break
			}
		}
	}
}

// IsVisible reports whether p is in view.
func (f *Fog) IsVisible(p world.Position) bool {
	i, ok := f.index(p)
	return ok && f.visible[i]
}

// IsExplored reports whether p has ever been seen.
func (f *Fog) IsExplored(p world.Position) bool {
	i, ok := f.index(p)
	return ok && f.explored[i]
}

// ExploredRows encodes the explored mask as rows of '0' and '1'.
func (f *Fog) ExploredRows() []string {
	rows := make([]string, f.height)
	buf := make([]byte, f.width)
	for y := range f.height {
		for x := range f.width {
			buf[x] = '0'
			if f.explored[y*f.width+x] {
				buf[x] = '1'
			}
		}
		rows[y] = string(buf)
	}
	return rows
}

// RestoreExplored marks cells from rows produced by ExploredRows. Rows or
// columns beyond the fog bounds are ignored.
func (f *Fog) RestoreExplored(rows []string) {
	for y, row := range rows {
		for x := range len(row) {
			if i, ok := f.index(world.Pos(x, y)); ok && row[x] == '1' {
				f.explored[i] = true
			}
		}
	}
}
