// Package camera keeps the continuous first-person viewpoint aligned with the
// character's grid position.
package camera

import (
	"fmt"
	"math"

	"github.com/samdwyer/dualcrawl/internal/world"
)

// DefaultOffset centres a continuous coordinate inside its grid cell.
const DefaultOffset = 0.5

// DefaultFOV is the horizontal field of view in degrees.
const DefaultFOV = 66.0

// Mode selects which view drives presentation.
type Mode int

const (
	// ModeGrid shows the level from above.
	ModeGrid Mode = iota
	// ModeFirstPerson shows the corridor ahead of the camera.
	ModeFirstPerson
)

// String returns the persisted name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeGrid:
		return "grid"
	case ModeFirstPerson:
		return "first_person"
	default:
		return "unknown"
	}
}

// ParseMode maps a persisted name to a mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "grid", "2d":
		return ModeGrid, nil
	case "first_person", "3d":
		return ModeFirstPerson, nil
	}
	return ModeGrid, fmt.Errorf("unknown view mode %q", name)
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeGrid {
		return ModeFirstPerson
	}
	return ModeGrid
}

// Coordinate is a point in continuous world space. One grid cell is one unit.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String returns "(x, y)" with two decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", c.X, c.Y)
}

// GridToContinuous places p at offset within its cell.
func GridToContinuous(p world.Position, offset float64) Coordinate {
	return Coordinate{X: float64(p.X) + offset, Y: float64(p.Y) + offset}
}

// ContinuousToGrid returns the cell containing c.
func ContinuousToGrid(c Coordinate) world.Position {
	return world.Pos(int(math.Floor(c.X)), int(math.Floor(c.Y)))
}

// Camera is the first-person viewpoint. Angle is in degrees, 0 facing east and
// increasing clockwise on screen (towards +Y).
type Camera struct {
	Coordinate Coordinate `json:"coordinate"`
	Angle      float64    `json:"angle"`
	FOV        float64    `json:"fov"`
}

// New returns a camera centred on p facing east.
func New(p world.Position) *Camera {
	return &Camera{
		Coordinate: GridToContinuous(p, DefaultOffset),
		FOV:        DefaultFOV,
	}
}

// Rotate turns the camera by deg, keeping the angle in [0, 360).
func (c *Camera) Rotate(deg float64) {
	c.Angle = math.Mod(c.Angle+deg, 360)
	if c.Angle < 0 {
		c.Angle += 360
	}
}

// Heading returns the cardinal direction nearest to the view angle.
func (c *Camera) Heading() world.Direction {
	quadrant := int(math.Round(c.Angle/90)) % 4
	switch quadrant {
	case 1:
		return world.South
	case 2:
		return world.West
	case 3:
		return world.North
	default:
		return world.East
	}
}

// Forward returns the unit view vector.
func (c *Camera) Forward() (dx, dy float64) {
	rad := c.Angle * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// Relative maps a view-relative step (forward, back, strafe) to a grid direction.
// Quarter turns clockwise from the heading: 0 forward, 1 right, 2 back, 3 left.
func (c *Camera) Relative(quarterTurns int) world.Direction {
	h := c.Heading()
	for range ((quarterTurns % 4) + 4) % 4 {
		h = world.Direction{DX: -h.DY, DY: h.DX}
	}
	return h
}
