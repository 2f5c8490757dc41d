package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/game"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// ViewState is what key mapping needs to know about the session.
type ViewState struct {
	Mode      camera.Mode
	Camera    camera.Camera
	Selecting bool
	AllowNone bool
}

// ViewOf captures the view state of s.
func ViewOf(s *game.Session) ViewState {
	v := ViewState{Mode: s.Mode}
	if s.Camera != nil {
		v.Camera = *s.Camera
	}
	if s.Pending != nil {
		v.Selecting = true
		v.AllowNone = s.Pending.AllowNone
	}
	return v
}

// Input maps key presses to player actions. The same key produces the same
// kind of action in both views; only the direction differs.
type Input struct{}

// Map returns the action for ev, or game.None() for unbound keys.
func (Input) Map(ev *tcell.EventKey, v ViewState) game.PlayerAction {
	if v.Selecting {
		return mapSelection(ev, v)
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.Quit()
	case tcell.KeyTab:
		return game.ToggleMode()
	case tcell.KeyEnter:
		return game.Interact(world.Direction{})
	case tcell.KeyUp:
		return game.Move(v.step(world.North, 0))
	case tcell.KeyDown:
		return game.Move(v.step(world.South, 2))
	case tcell.KeyLeft:
		if v.Mode == camera.ModeFirstPerson {
			return game.RotateLeft()
		}
		return game.Move(world.West)
	case tcell.KeyRight:
		if v.Mode == camera.ModeFirstPerson {
			return game.RotateRight()
		}
		return game.Move(world.East)
	case tcell.KeyRune:
	default:
		return game.None()
	}

	switch ev.Rune() {
	case 'w':
		return game.Move(v.step(world.North, 0))
	case 's':
		return game.Move(v.step(world.South, 2))
	case 'a':
		return game.Move(v.step(world.West, 3))
	case 'd':
		return game.Move(v.step(world.East, 1))
	case 'W':
		return game.Attack(v.step(world.North, 0))
	case 'S':
		return game.Attack(v.step(world.South, 2))
	case 'A':
		return game.Attack(v.step(world.West, 3))
	case 'D':
		return game.Attack(v.step(world.East, 1))
	case ',', '<':
		return game.RotateLeft()
	case '.', '>':
		return game.RotateRight()
	case 'h', 'H':
		return game.Use(game.ActionUseWeapon)
	case 'j', 'J':
		return game.Use(game.ActionUseFood)
	case 'k', 'K':
		return game.Use(game.ActionUseElixir)
	case 'e', 'E':
		return game.Use(game.ActionUseScroll)
	case 'f', 'F':
		return game.Interact(world.Direction{})
	case ' ', 'z':
		return game.Wait()
	case 'v', 'V':
		return game.ToggleMode()
	case 'q', 'Q':
		return game.Quit()
	}
	return game.None()
}

// step picks the grid direction in the grid view and the camera-relative one
// in first person.
func (v ViewState) step(grid world.Direction, quarterTurns int) world.Direction {
	if v.Mode == camera.ModeFirstPerson {
		return v.Camera.Relative(quarterTurns)
	}
	return grid
}

func mapSelection(ev *tcell.EventKey, v ViewState) game.PlayerAction {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.Cancel()
	case tcell.KeyRune:
	default:
		return game.None()
	}
	r := ev.Rune()
	switch {
	case r == 'q' || r == 'Q':
		return game.Cancel()
	case r == '0' && v.AllowNone:
		return game.Select(game.NoneChoice)
	case r >= '1' && r <= '9':
		return game.Select(int(r - '1'))
	}
	return game.None()
}
