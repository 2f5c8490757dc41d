package camera

import (
	"errors"
	"fmt"

	"github.com/samdwyer/dualcrawl/internal/world"
)

// ErrDesynchronized reports a camera that no longer projects onto the
// character's grid cell.
var ErrDesynchronized = errors.New("camera desynchronized from grid position")

// Locatable exposes an authoritative grid position.
type Locatable interface {
	GridPosition() world.Position
}

// Placeable is a Locatable that can be moved.
type Placeable interface {
	Locatable
	MoveTo(p world.Position)
}

// Synchronizer converts between grid positions and camera coordinates.
type Synchronizer struct {
	Offset float64
}

// NewSynchronizer returns a synchronizer using DefaultOffset.
func NewSynchronizer() Synchronizer {
	return Synchronizer{Offset: DefaultOffset}
}

// SyncToGrid moves target onto the cell under the camera. Used when leaving
// first-person mode. Returns the resulting position.
func (s Synchronizer) SyncToGrid(target Placeable, cam *Camera) world.Position {
	p := ContinuousToGrid(cam.Coordinate)
	if p != target.GridPosition() {
		target.MoveTo(p)
	}
	return p
}

// SyncToContinuous centres the camera on source's cell. The view angle is reset
// to east unless preserveOrientation is set.
func (s Synchronizer) SyncToContinuous(cam *Camera, source Locatable, preserveOrientation bool) {
	cam.Coordinate = GridToContinuous(source.GridPosition(), s.Offset)
	if !preserveOrientation {
		cam.Angle = 0
	}
}

// ValidateAlignment checks that the camera projects onto source's cell.
func (s Synchronizer) ValidateAlignment(cam *Camera, source Locatable) error {
	got := ContinuousToGrid(cam.Coordinate)
	if want := source.GridPosition(); got != want {
		return fmt.Errorf("%w: camera %s maps to %s, grid at %s", ErrDesynchronized, cam.Coordinate, got, want)
	}
	return nil
}
