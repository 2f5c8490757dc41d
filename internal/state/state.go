// Package state implements the session lifecycle state machine.
package state

import (
	"errors"
	"fmt"
	"sync"
)

// State is one lifecycle state of a game session.
type State int

const (
	// Initializing is the state before the first level exists.
	Initializing State = iota
	// Playing accepts player actions.
	Playing
	// Asleep means the next action only wakes the character.
	Asleep
	// ItemSelection means an inventory choice is pending.
	ItemSelection
	// LevelTransition is held while the next level is generated.
	LevelTransition
	// GameOver is terminal: the character died or quit.
	GameOver
	// Victory is terminal: the last level was cleared.
	Victory
)

// All lists every state in declaration order.
var All = []State{Initializing, Playing, Asleep, ItemSelection, LevelTransition, GameOver, Victory}

// String returns the persisted name of the state.
func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Playing:
		return "playing"
	case Asleep:
		return "asleep"
	case ItemSelection:
		return "item_selection"
	case LevelTransition:
		return "level_transition"
	case GameOver:
		return "game_over"
	case Victory:
		return "victory"
	default:
		return "unknown"
	}
}

// ParseState maps a persisted name back to a State.
func ParseState(name string) (State, bool) {
	for _, s := range All {
		if s.String() == name {
			return s, true
		}
	}
	return Initializing, false
}

// IsTerminal reports whether s ends the session.
func (s State) IsTerminal() bool {
	return s == GameOver || s == Victory
}

// ErrInvalidTransition is matched by every rejected transition.
var ErrInvalidTransition = errors.New("invalid state transition")

// TransitionError describes a rejected transition.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s", e.From, e.To)
}

// Is matches ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// transitions lists the allowed destinations per source state.
var transitions = map[State][]State{
	Initializing:    {Playing},
	Playing:         {Asleep, ItemSelection, LevelTransition, GameOver, Victory},
	Asleep:          {Playing},
	ItemSelection:   {Playing},
	LevelTransition: {Playing},
	GameOver:        {},
	Victory:         {},
}

// Allowed returns a copy of the destinations reachable from s.
func Allowed(s State) []State {
	return append([]State(nil), transitions[s]...)
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Machine owns the current state. Safe for concurrent readers.
type Machine struct {
	mu       sync.RWMutex
	current  State
	previous State
}

// NewMachine returns a machine in the Initializing state.
func NewMachine() *Machine {
	return &Machine{current: Initializing, previous: Initializing}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Previous returns the state before the last successful transition.
func (m *Machine) Previous() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous
}

// Is reports whether the machine is in s.
func (m *Machine) Is(s State) bool {
	return m.Current() == s
}

// IsTerminal reports whether the machine is in GameOver or Victory.
func (m *Machine) IsTerminal() bool {
	return m.Current().IsTerminal()
}

// CanTransitionTo reports whether TransitionTo(target) would succeed now.
func (m *Machine) CanTransitionTo(target State) bool {
	return CanTransition(m.Current(), target)
}

// TransitionTo moves to target if the table allows it. On failure the state is
// unchanged and the error matches ErrInvalidTransition.
func (m *Machine) TransitionTo(target State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !CanTransition(m.current, target) {
		return &TransitionError{From: m.current, To: target}
	}
	m.previous = m.current
	m.current = target
	return nil
}

// Restore sets the state without consulting the table. Only persistence
// recovery calls this.
func (m *Machine) Restore(target State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = target
	m.previous = target
}
