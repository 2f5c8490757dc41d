package game

import (
	"context"
	"math/rand"

	"github.com/samdwyer/dualcrawl/internal/ai"
	"github.com/samdwyer/dualcrawl/internal/combat"
	"github.com/samdwyer/dualcrawl/internal/level"
)

// Engine bundles a session with the components that act on it.
type Engine struct {
	Session    *Session
	Levels     *Levels
	Movement   *Movement
	Turns      *EnemyTurns
	Inventory  *Inventory
	Dispatcher *Dispatcher
}

// NewEngine wires the turn pipeline around s. Combat and enemy decisions draw
// from rng.
func NewEngine(s *Session, gen level.Generator, rng *rand.Rand, opts ...LevelsOption) *Engine {
	resolver := combat.NewResolver(rng, combat.PublishSink(s.Notifier), combat.WithDepth(s.LevelNumber))
	levels := NewLevels(s, gen, opts...)
	movement := NewMovement(s, resolver, levels)
	turns := NewEnemyTurns(s, resolver, ai.New(rng))
	inv := NewInventory(s)
	return &Engine{
		Session:    s,
		Levels:     levels,
		Movement:   movement,
		Turns:      turns,
		Inventory:  inv,
		Dispatcher: NewDispatcher(movement, movement, inv, turns, s, s, s.Messages),
	}
}

// Start generates the first level and begins play.
func (e *Engine) Start(ctx context.Context) error {
	return e.Levels.Start(ctx)
}

// Process handles one player action.
func (e *Engine) Process(ctx context.Context, a PlayerAction) (bool, error) {
	return e.Dispatcher.Process(ctx, a)
}
