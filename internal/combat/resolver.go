// Package combat resolves single attacks between the character and enemies.
package combat

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
)

// Balance constants.
const (
	BaseHitChance    = 0.5
	DexterityPerHit  = 0.02
	MinHitChance     = 0.10
	MaxHitChance     = 0.95
	DamageSpreadLow  = 0.8
	DamageSpreadHigh = 1.2
	MinDamage        = 1

	TreasurePerDepth    = 0.1
	TreasureFloorBase   = 10
	TreasureFloorPerLvl = 2
)

// Rand is the randomness source. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Sink receives exactly one record per resolved attack.
type Sink interface {
	RecordAttack(ctx context.Context, attack event.AttackPerformed)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, attack event.AttackPerformed)

// RecordAttack calls f.
func (f SinkFunc) RecordAttack(ctx context.Context, attack event.AttackPerformed) {
	f(ctx, attack)
}

// PublishSink records attacks by publishing them on a notifier.
func PublishSink(n *event.Notifier) Sink {
	return SinkFunc(func(ctx context.Context, attack event.AttackPerformed) {
		n.Publish(ctx, attack)
	})
}

// Result is the outcome of one attack.
type Result struct {
	Hit      bool
	Damage   int
	Killed   bool
	Messages []string
	Treasure *entity.Item
}

// Message joins the result messages into one line.
func (r Result) Message() string {
	return strings.Join(r.Messages, " ")
}

// Resolver computes attacks. It is the only code that applies combat damage.
type Resolver struct {
	rng    Rand
	sink   Sink
	depth  func() int
	tracer trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDepth supplies the current level number for treasure scaling.
func WithDepth(depth func() int) Option {
	return func(r *Resolver) { r.depth = depth }
}

// WithTracer overrides the component tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) { r.tracer = t }
}

// NewResolver creates a resolver recording into sink.
func NewResolver(rng Rand, sink Sink, opts ...Option) *Resolver {
	r := &Resolver{
		rng:    rng,
		sink:   sink,
		depth:  func() int { return 1 },
		tracer: telemetry.Tracer("combat"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HitChance returns the probability that an attacker with dexterity attacker
// lands a blow on a defender with dexterity defender.
func HitChance(attacker, defender int) float64 {
	chance := BaseHitChance + float64(attacker-defender)*DexterityPerHit
	return min(MaxHitChance, max(MinHitChance, chance))
}

// combatant is what an attack needs from either side.
type combatant interface {
	Power() int
	Agility() int
	TakeDamage(amount int) int
	IsAlive() bool
}

var (
	_ combatant = (*entity.Character)(nil)
	_ combatant = (*entity.Enemy)(nil)
)

// ResolvePlayerAttack resolves the character striking e.
func (r *Resolver) ResolvePlayerAttack(ctx context.Context, c *entity.Character, e *entity.Enemy) Result {
	ctx, span := r.tracer.Start(ctx, "combat.player_attack")
	defer span.End()

	var res Result
	if v, ok := e.Traits.(*entity.VampireTraits); ok && v.FirstAttackPending {
		v.FirstAttackPending = false
		res.Messages = append(res.Messages, "The vampire's mist deflects your first strike!")
	} else {
		res = r.strike(c, e)
	}
	res.Messages = append([]string{attackMessage(c.Name(), e.Name, res)}, res.Messages...)

	if res.Killed {
		treasure := entity.NewTreasure(r.treasure(e)).At(e.Position)
		res.Treasure = &treasure
	}

	span.SetAttributes(
		attribute.String("enemy", e.Kind.String()),
		attribute.Bool("hit", res.Hit),
		attribute.Int("damage", res.Damage),
		attribute.Bool("killed", res.Killed),
	)
	r.record(ctx, event.RolePlayer, c.Name(), e.Name, res)
	return res
}

// ResolveEnemyAttack resolves e striking the character.
func (r *Resolver) ResolveEnemyAttack(ctx context.Context, e *entity.Enemy, c *entity.Character) Result {
	ctx, span := r.tracer.Start(ctx, "combat.enemy_attack")
	defer span.End()

	res := r.strike(e, c)
	res.Messages = []string{attackMessage(e.Name, c.Name(), res)}

	span.SetAttributes(
		attribute.String("enemy", e.Kind.String()),
		attribute.Bool("hit", res.Hit),
		attribute.Int("damage", res.Damage),
		attribute.Bool("killed", res.Killed),
	)
	r.record(ctx, event.RoleEnemy, e.Name, c.Name(), res)
	return res
}

func (r *Resolver) strike(attacker, defender combatant) Result {
	if r.rng.Float64() >= HitChance(attacker.Agility(), defender.Agility()) {
		return Result{}
	}
	damage := max(MinDamage, int(float64(attacker.Power())*r.spread()))
	defender.TakeDamage(damage)
	return Result{Hit: true, Damage: damage, Killed: !defender.IsAlive()}
}

func (r *Resolver) treasure(e *entity.Enemy) int {
	depth := max(1, r.depth())
	base := e.MaxHealth + 2*e.Strength + 2*e.Dexterity + 3*e.Hostility
	scale := 1 + TreasurePerDepth*float64(depth-1)
	value := int(float64(base) * scale * r.spread())
	return max(TreasureFloorBase+TreasureFloorPerLvl*depth, value)
}

func (r *Resolver) spread() float64 {
	return DamageSpreadLow + (DamageSpreadHigh-DamageSpreadLow)*r.rng.Float64()
}

func (r *Resolver) record(ctx context.Context, role event.Role, attacker, defender string, res Result) {
	if r.sink == nil {
		return
	}
	r.sink.RecordAttack(ctx, event.AttackPerformed{
		Attacker: role,
		Name:     attacker,
		Target:   defender,
		Hit:      res.Hit,
		Damage:   res.Damage,
		Killed:   res.Killed,
	})
}

func attackMessage(attacker, defender string, res Result) string {
	switch {
	case !res.Hit:
		return fmt.Sprintf("%s attacked %s but missed!", attacker, defender)
	case res.Killed:
		return fmt.Sprintf("%s hit %s for %d damage and killed them!", attacker, defender, res.Damage)
	default:
		return fmt.Sprintf("%s hit %s for %d damage!", attacker, defender, res.Damage)
	}
}
