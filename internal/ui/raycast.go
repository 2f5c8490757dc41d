package ui

import (
	"math"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// Ray is what one screen column sees.
type Ray struct {
	Distance float64 // perpendicular distance to the wall face
	Side     int     // 0 for a face crossed along X, 1 along Y
	Cell     world.Position
	Angle    float64 // ray angle relative to the view centre, degrees
}

// Cast walks one ray per column across the camera's field of view using a
// grid DDA. Rays that leave the map stop at the border.
func Cast(d *world.Dungeon, cam camera.Camera, columns int) []Ray {
	if columns <= 0 {
		return nil
	}
	fx, fy := cam.Forward()
	plane := math.Tan(cam.FOV * math.Pi / 360)
	px, py := -fy*plane, fx*plane

	rays := make([]Ray, columns)
	limit := d.Width + d.Height
	for col := range columns {
		offset := 2*float64(col)/float64(columns) - 1
		if columns == 1 {
			offset = 0
		}
		dx, dy := fx+px*offset, fy+py*offset
		rays[col] = march(d, cam.Coordinate, dx, dy, limit)
		rays[col].Angle = math.Atan(offset*plane) * 180 / math.Pi
	}
	return rays
}

func march(d *world.Dungeon, origin camera.Coordinate, dx, dy float64, limit int) Ray {
	cell := camera.ContinuousToGrid(origin)
	deltaX, deltaY := math.Inf(1), math.Inf(1)
	if dx != 0 {
		deltaX = math.Abs(1 / dx)
	}
	if dy != 0 {
		deltaY = math.Abs(1 / dy)
	}

	stepX, sideX := 1, (float64(cell.X)+1-origin.X)*deltaX
	if dx < 0 {
		stepX, sideX = -1, (origin.X-float64(cell.X))*deltaX
	}
	stepY, sideY := 1, (float64(cell.Y)+1-origin.Y)*deltaY
	if dy < 0 {
		stepY, sideY = -1, (origin.Y-float64(cell.Y))*deltaY
	}

	side := 0
	for range limit {
		if sideX < sideY {
			sideX += deltaX
			cell.X += stepX
			side = 0
		} else {
			sideY += deltaY
			cell.Y += stepY
			side = 1
		}
		if !d.IsPassable(cell) {
			break
		}
	}

	dist := sideY - deltaY
	if side == 0 {
		dist = sideX - deltaX
	}
	return Ray{Distance: math.Max(dist, 0.01), Side: side, Cell: cell}
}

// project returns the screen column of a point seen from cam, its distance
// along the view axis and whether it lies inside the field of view.
func project(cam camera.Camera, x, y float64, columns int) (col int, depth float64, ok bool) {
	fx, fy := cam.Forward()
	vx, vy := x-cam.Coordinate.X, y-cam.Coordinate.Y
	depth = vx*fx + vy*fy
	if depth <= 0.1 {
		return 0, 0, false
	}
	lateral := vx*-fy + vy*fx
	plane := math.Tan(cam.FOV * math.Pi / 360)
	offset := lateral / (depth * plane)
	if offset < -1 || offset >= 1 {
		return 0, 0, false
	}
	return int((offset + 1) / 2 * float64(columns)), depth, true
}
