package game

import "github.com/samdwyer/dualcrawl/internal/world"

// ActionKind identifies what the player wants to do.
type ActionKind int

const (
	// ActionNone does nothing and never takes a turn.
	ActionNone ActionKind = iota
	// ActionMove steps one cell, fighting or unlocking whatever is there.
	ActionMove
	// ActionAttack strikes an adjacent enemy without moving.
	ActionAttack
	// ActionUseFood opens the food selection.
	ActionUseFood
	// ActionUseWeapon opens the weapon selection.
	ActionUseWeapon
	// ActionUseElixir opens the elixir selection.
	ActionUseElixir
	// ActionUseScroll opens the scroll selection.
	ActionUseScroll
	// ActionInteract acts on an adjacent cell without stepping into it.
	ActionInteract
	// ActionRotate turns the camera.
	ActionRotate
	// ActionToggleMode switches between the grid and first-person views.
	ActionToggleMode
	// ActionQuit ends the run.
	ActionQuit
	// ActionWait passes the turn.
	ActionWait
	// ActionSelect picks an entry from a pending selection.
	ActionSelect
)

// String returns a human-readable action name.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionUseFood:
		return "use_food"
	case ActionUseWeapon:
		return "use_weapon"
	case ActionUseElixir:
		return "use_elixir"
	case ActionUseScroll:
		return "use_scroll"
	case ActionInteract:
		return "interact"
	case ActionRotate:
		return "rotate"
	case ActionToggleMode:
		return "toggle_mode"
	case ActionQuit:
		return "quit"
	case ActionWait:
		return "wait"
	case ActionSelect:
		return "select"
	default:
		return "unknown"
	}
}

// NoneChoice is the selection index meaning "none of these".
const NoneChoice = -1

// PlayerAction is one player intent. It carries no knowledge of which view
// produced it.
type PlayerAction struct {
	Kind      ActionKind
	Direction world.Direction
	target    int
	hasTarget bool
}

// Target returns the selection index, if the action carries one.
func (a PlayerAction) Target() (int, bool) {
	return a.target, a.hasTarget
}

// Move steps one cell in d.
func Move(d world.Direction) PlayerAction {
	return PlayerAction{Kind: ActionMove, Direction: d}
}

// Attack strikes the adjacent cell in d without moving.
func Attack(d world.Direction) PlayerAction {
	return PlayerAction{Kind: ActionAttack, Direction: d}
}

// Interact acts on the adjacent cell in d. A zero direction means the cell
// the camera faces.
func Interact(d world.Direction) PlayerAction {
	return PlayerAction{Kind: ActionInteract, Direction: d}
}

// Wait passes the turn.
func Wait() PlayerAction {
	return PlayerAction{Kind: ActionWait}
}

// Use opens the item selection for kind.
func Use(kind ActionKind) PlayerAction {
	return PlayerAction{Kind: kind}
}

// RotateLeft turns the camera a quarter turn anticlockwise.
func RotateLeft() PlayerAction {
	return PlayerAction{Kind: ActionRotate, Direction: world.West}
}

// RotateRight turns the camera a quarter turn clockwise.
func RotateRight() PlayerAction {
	return PlayerAction{Kind: ActionRotate, Direction: world.East}
}

// ToggleMode switches between the grid and first-person views.
func ToggleMode() PlayerAction {
	return PlayerAction{Kind: ActionToggleMode}
}

// Quit ends the run.
func Quit() PlayerAction {
	return PlayerAction{Kind: ActionQuit}
}

// Select picks item i of the pending selection, or NoneChoice.
func Select(i int) PlayerAction {
	return PlayerAction{Kind: ActionSelect, target: i, hasTarget: true}
}

// Cancel abandons the pending selection.
func Cancel() PlayerAction {
	return PlayerAction{Kind: ActionSelect}
}

// None is the empty intent.
func None() PlayerAction {
	return PlayerAction{}
}
