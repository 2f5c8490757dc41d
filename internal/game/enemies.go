package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/dualcrawl/internal/ai"
	"github.com/samdwyer/dualcrawl/internal/combat"
	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
)

// EnemyTurns runs every living enemy once after the player's turn.
type EnemyTurns struct {
	s        *Session
	resolver *combat.Resolver
	brain    *ai.Brain
	tracer   trace.Tracer
}

// NewEnemyTurns creates the enemy turn sequence for s.
func NewEnemyTurns(s *Session, resolver *combat.Resolver, brain *ai.Brain) *EnemyTurns {
	return &EnemyTurns{s: s, resolver: resolver, brain: brain, tracer: telemetry.Tracer("enemy")}
}

// Run ticks the character's elixirs, then lets each enemy attack or move.
// Attacks are accounted for by the resolver alone. The sequence stops as soon
// as the character dies.
func (t *EnemyTurns) Run(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, "enemy.turns")
	defer span.End()

	s := t.s
	for _, msg := range s.Character.TickElixirs() {
		s.Messages.Add(msg)
	}

	enemies := s.Level.LivingEnemies()
	span.SetAttributes(attribute.Int("enemies", len(enemies)))

	asleep := false
	for _, e := range enemies {
		if s.IsTerminal() {
			break
		}
		if !e.IsAlive() {
			continue
		}
		player := s.Character.GridPosition()
		if e.Position.Manhattan(player) != 1 {
			if p, ok := t.brain.NextMove(e, player, s.Level); ok {
				e.MoveTo(p)
			}
			continue
		}
		if ai.Lurking(e) {
			continue
		}
		if !ai.ShouldAttack(e) {
			ai.Rest(e)
			continue
		}

		res := t.resolver.ResolveEnemyAttack(ctx, e, s.Character)
		s.Messages.Add(res.Message())
		fx := t.brain.AttackEffects(e, res.Hit)
		if fx.HealthSteal > 0 {
			stolen := s.Character.DrainMaxHealth(fx.HealthSteal)
			s.Messages.Add(fmt.Sprintf("%s stole %d max health!", e.Name, stolen))
		}
		if fx.Sleep {
			asleep = true
			s.Messages.Add(e.Name + " puts you to sleep!")
		}
		if fx.Counterattack {
			s.Messages.Add(e.Name + " counterattacks!")
		}
		ai.AfterAttack(e, res.Hit)

		if res.Killed {
			s.Messages.Add("You have died!")
			return s.EndGame(ctx, false, "Killed by "+e.Name)
		}
	}

	if asleep && s.Machine.Is(state.Playing) {
		return s.Sleep(ctx)
	}
	return nil
}
