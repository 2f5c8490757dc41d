// Package track feeds run statistics from domain events.
package track

import (
	"context"
	"time"

	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/stats"
)

// Tracker feeds Statistics from domain events. Each attack reaches it once,
// through the AttackPerformed event the combat resolver publishes.
type Tracker struct {
	stats    *stats.Statistics
	notifier *event.Notifier
	now      func() time.Time
	handlers map[event.Kind]event.Handler
}

// NewTracker creates a tracker writing into s.
func NewTracker(s *stats.Statistics, n *event.Notifier) *Tracker {
	return &Tracker{stats: s, notifier: n, now: time.Now}
}

// Stats returns the statistics being fed.
func (t *Tracker) Stats() *stats.Statistics {
	return t.stats
}

// Start subscribes to the notifier. Calling it twice is a no-op.
func (t *Tracker) Start() {
	if t.handlers != nil {
		return
	}
	n := t.notifier
	t.handlers = map[event.Kind]event.Handler{
		event.KindCharacterMoved: event.On(n, func(_ context.Context, ev event.CharacterMoved) error {
			if !ev.Transition && ev.From != ev.To {
				t.stats.RecordMovement()
			}
			return nil
		}),
		event.KindItemCollected: event.On(n, func(context.Context, event.ItemCollected) error {
			t.stats.RecordItemCollected()
			return nil
		}),
		event.KindAttackPerformed: event.On(n, func(_ context.Context, ev event.AttackPerformed) error {
			switch ev.Attacker {
			case event.RolePlayer:
				t.stats.RecordAttack(ev.Hit, ev.Damage)
			case event.RoleEnemy:
				if ev.Hit {
					t.stats.RecordHitTaken(ev.Damage)
				}
			}
			return nil
		}),
		event.KindEnemyDefeated: event.On(n, func(_ context.Context, ev event.EnemyDefeated) error {
			t.stats.RecordEnemyDefeated(ev.Treasure.Value)
			return nil
		}),
		event.KindItemUsed: event.On(n, func(_ context.Context, ev event.ItemUsed) error {
			t.stats.RecordItemUsed(ev.Item.Kind)
			return nil
		}),
		event.KindLevelGenerated: event.On(n, func(_ context.Context, ev event.LevelGenerated) error {
			t.stats.RecordLevelReached(ev.Number)
			return nil
		}),
		event.KindGameEnded: event.On(n, func(_ context.Context, ev event.GameEnded) error {
			t.stats.RecordGameEnd(ev.FinalHealth, ev.FinalStrength, ev.FinalDexterity, ev.Victory, t.now())
			return nil
		}),
	}
}

// Stop unsubscribes every handler registered by Start.
func (t *Tracker) Stop() {
	for kind, h := range t.handlers {
		t.notifier.Unsubscribe(kind, h)
	}
	t.handlers = nil
}
