package save

import (
	"context"
	"log/slog"

	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/game"
)

// AutosaveSlot is the slot written between levels.
const AutosaveSlot = "autosave"

// Autosaver writes the session into one slot. It satisfies game.Saver.
type Autosaver struct {
	store *Store
	slot  string
}

var _ game.Saver = (*Autosaver)(nil)

// NewAutosaver saves into slot, or AutosaveSlot when slot is empty.
func NewAutosaver(store *Store, slot string) *Autosaver {
	if slot == "" {
		slot = AutosaveSlot
	}
	return &Autosaver{store: store, slot: slot}
}

// Save captures s and stores it.
func (a *Autosaver) Save(ctx context.Context, s *game.Session) error {
	return a.store.SaveSlot(ctx, a.slot, Capture(s))
}

// RecordRuns adds every finished game of s to the leaderboard. The returned
// handler is already subscribed on the session's notifier.
func RecordRuns(store *Store, s *game.Session, logger *slog.Logger) event.Handler {
	return event.On(s.Notifier, func(ctx context.Context, ev event.GameEnded) error {
		st := *s.Stats()
		st.Victory = ev.Victory
		st.FinalHealth = ev.FinalHealth
		st.FinalStrength = ev.FinalStrength
		st.FinalDexterity = ev.FinalDexterity
		_, err := store.RecordRun(ctx, Run{
			SessionID: s.ID.String(),
			Victory:   ev.Victory,
			Level:     ev.Level,
			Treasure:  s.Character.Backpack.Treasure,
			Enemies:   st.EnemiesDefeated,
			Reason:    ev.Reason,
			Stats:     st,
		})
		if err != nil {
			logger.WarnContext(ctx, "run not recorded", "error", err)
		}
		return err
	})
}
