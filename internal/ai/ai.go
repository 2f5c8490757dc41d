// Package ai decides what each enemy variant does on its turn.
package ai

import (
	"math/rand"

	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// Behaviour timers and odds.
const (
	GhostTeleportMin     = 3
	GhostTeleportMax     = 5
	GhostInvisibilityMin = 4
	GhostInvisibilityMax = 7
	SnakeTurnMin         = 3
	SnakeTurnMax         = 6
	SnakeSleepChance     = 0.3
	VampireStealMin      = 2
	VampireStealMax      = 5
)

// Effects are the extra consequences of an enemy's successful hit.
type Effects struct {
	HealthSteal   int
	Sleep         bool
	Counterattack bool
}

// Brain makes enemy decisions. It owns no state beyond its randomness; all
// per-enemy memory lives in the enemy's traits.
type Brain struct {
	rng *rand.Rand
}

// New creates a Brain drawing from rng.
func New(rng *rand.Rand) *Brain {
	return &Brain{rng: rng}
}

func (b *Brain) between(lo, hi int) int {
	return lo + b.rng.Intn(hi-lo+1)
}

// NextMove returns where e wants to go this turn. The player's cell and
// cells held by other living enemies are never returned.
func (b *Brain) NextMove(e *entity.Enemy, player world.Position, l *level.Level) (world.Position, bool) {
	if m, ok := e.Traits.(*entity.MimicTraits); ok && m.Disguised {
		return e.Position, false
	}

	distance := e.Position.Manhattan(player)
	if distance <= e.Hostility {
		e.Chasing = true
	}

	switch t := e.Traits.(type) {
	case *entity.GhostTraits:
		return b.ghost(e, t, player, l, distance)
	case *entity.OgreTraits:
		return b.ogre(e, t, player, l, distance)
	case *entity.SnakeMageTraits:
		return b.snake(e, t, player, l, distance)
	case *entity.MimicTraits:
		if e.Chasing && distance > 1 {
			return chase(e, e.Position, player, l)
		}
		return e.Position, false
	default:
		return b.standard(e, player, l, distance)
	}
}

func (b *Brain) standard(e *entity.Enemy, player world.Position, l *level.Level, distance int) (world.Position, bool) {
	if e.Chasing {
		if distance > 1 {
			return chase(e, e.Position, player, l)
		}
		return e.Position, false
	}
	return b.wander(e, e.Position, player, l)
}

func (b *Brain) ghost(e *entity.Enemy, t *entity.GhostTraits, player world.Position, l *level.Level, distance int) (world.Position, bool) {
	if t.TeleportCooldown <= 0 {
		if room := l.Dungeon.RoomIndexAt(e.Position); room >= 0 {
			p, ok := l.Dungeon.RandomPointInRoom(b.rng, room)
			if ok && p != player && !blocked(e, p, player, l) {
				t.TeleportCooldown = b.between(GhostTeleportMin, GhostTeleportMax)
				return p, p != e.Position
			}
		}
	}
	t.TeleportCooldown--

	if t.InvisibilityCooldown <= 0 {
		t.Invisible = !t.Invisible
		t.InvisibilityCooldown = b.between(GhostInvisibilityMin, GhostInvisibilityMax)
	}
	t.InvisibilityCooldown--
	if distance == 1 {
		t.Invisible = false
	}

	if e.Chasing && distance > 1 {
		return chase(e, e.Position, player, l)
	}
	return e.Position, false
}

// ogre covers two cells per turn and skips a turn after landing a hit.
func (b *Brain) ogre(e *entity.Enemy, t *entity.OgreTraits, player world.Position, l *level.Level, distance int) (world.Position, bool) {
	if t.Resting {
		t.Resting = false
		t.WillCounterattack = true
		return e.Position, false
	}

	if e.Chasing {
		if distance <= 1 {
			return e.Position, false
		}
		first, ok := chase(e, e.Position, player, l)
		if !ok || first.Manhattan(player) == 1 {
			return first, ok
		}
		if second, ok := chase(e, first, player, l); ok {
			return second, true
		}
		return first, true
	}

	first, ok := b.wander(e, e.Position, player, l)
	if !ok {
		return first, false
	}
	if second, ok := b.wander(e, first, player, l); ok && second != e.Position {
		return second, true
	}
	return first, true
}

func (b *Brain) snake(e *entity.Enemy, t *entity.SnakeMageTraits, player world.Position, l *level.Level, distance int) (world.Position, bool) {
	t.DirectionCooldown--
	if t.DirectionCooldown <= 0 || t.Diagonal.IsZero() {
		t.Diagonal = world.Diagonals[b.rng.Intn(len(world.Diagonals))]
		t.DirectionCooldown = b.between(SnakeTurnMin, SnakeTurnMax)
	}

	if e.Chasing {
		if distance <= 1 {
			return e.Position, false
		}
		toward := world.Direction{DX: sign(player.X - e.Position.X), DY: sign(player.Y - e.Position.Y)}
		if p := e.Position.Add(toward); l.IsWalkable(p) && !blocked(e, p, player, l) {
			return p, true
		}
	}
	if p := e.Position.Add(t.Diagonal); l.IsWalkable(p) && !blocked(e, p, player, l) {
		return p, true
	}
	return e.Position, false
}

func (b *Brain) wander(e *entity.Enemy, from, player world.Position, l *level.Level) (world.Position, bool) {
	var options []world.Position
	for _, d := range world.Cardinals {
		if p := from.Add(d); l.IsWalkable(p) {
			options = append(options, p)
		}
	}
	if len(options) == 0 {
		return from, false
	}
	p := options[b.rng.Intn(len(options))]
	if blocked(e, p, player, l) {
		return from, false
	}
	return p, true
}

func chase(e *entity.Enemy, from, player world.Position, l *level.Level) (world.Position, bool) {
	next, ok := world.NextStep(from, player, l.IsWalkable)
	if !ok || blocked(e, next, player, l) {
		return from, false
	}
	return next, true
}

func blocked(self *entity.Enemy, p, player world.Position, l *level.Level) bool {
	if p == player {
		return true
	}
	other := l.EnemyAt(p)
	return other != nil && other != self
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 1
}

// Lurking reports whether e passes its turn even when next to the player.
func Lurking(e *entity.Enemy) bool {
	m, ok := e.Traits.(*entity.MimicTraits)
	return ok && m.Disguised
}

// ShouldAttack reports whether an adjacent e attacks this turn.
func ShouldAttack(e *entity.Enemy) bool {
	if t, ok := e.Traits.(*entity.OgreTraits); ok {
		return !t.Resting
	}
	return true
}

// Rest spends a turn in which e declined to attack.
func Rest(e *entity.Enemy) {
	if t, ok := e.Traits.(*entity.OgreTraits); ok {
		t.Resting = false
		t.WillCounterattack = true
	}
}

// AttackEffects rolls the variant effects of an attack. Misses have none.
func (b *Brain) AttackEffects(e *entity.Enemy, hit bool) Effects {
	var fx Effects
	if !hit {
		return fx
	}
	switch t := e.Traits.(type) {
	case *entity.VampireTraits:
		fx.HealthSteal = b.between(VampireStealMin, VampireStealMax)
	case *entity.SnakeMageTraits:
		fx.Sleep = b.rng.Float64() < SnakeSleepChance
	case *entity.OgreTraits:
		if t.WillCounterattack {
			fx.Counterattack = true
			t.WillCounterattack = false
		}
	}
	return fx
}

// AfterAttack updates e once its attack has resolved.
func AfterAttack(e *entity.Enemy, hit bool) {
	if t, ok := e.Traits.(*entity.OgreTraits); ok && hit {
		t.Resting = true
	}
}

// Reveal drops a mimic's disguise. It reports whether e was disguised.
func Reveal(e *entity.Enemy) bool {
	m, ok := e.Traits.(*entity.MimicTraits)
	if !ok || !m.Disguised {
		return false
	}
	m.Disguised = false
	e.Chasing = true
	return true
}
