package state

// LegacyFlags is the boolean encoding older saves used instead of a state name.
type LegacyFlags struct {
	Victory          bool `json:"victory,omitempty"`
	GameOver         bool `json:"game_over,omitempty"`
	Asleep           bool `json:"asleep,omitempty"`
	PendingSelection bool `json:"pending_selection,omitempty"`
}

// Resolve collapses the flags into one state with the precedence
// Victory > GameOver > Asleep > ItemSelection > Playing.
//
// This is a best-effort repair of ambiguous data, not a recovery of what the
// player actually saw: a save carrying both terminal flags was already corrupt.
func (f LegacyFlags) Resolve() State {
	switch {
	case f.Victory:
		return Victory
	case f.GameOver:
		return GameOver
	case f.Asleep:
		return Asleep
	case f.PendingSelection:
		return ItemSelection
	default:
		return Playing
	}
}

// FlagsFor encodes s as legacy flags, for readers of the old format.
func FlagsFor(s State) LegacyFlags {
	return LegacyFlags{
		Victory:          s == Victory,
		GameOver:         s == GameOver,
		Asleep:           s == Asleep,
		PendingSelection: s == ItemSelection,
	}
}
