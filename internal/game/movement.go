package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/dualcrawl/internal/ai"
	"github.com/samdwyer/dualcrawl/internal/combat"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// MoveResult reports what a step or an attack did.
type MoveResult struct {
	Consumed     bool
	Moved        bool
	LevelChanged bool
	Combat       *combat.Result
}

// advancer moves the run to the next level.
type advancer interface {
	AdvanceAndSetup(ctx context.Context) (bool, error)
}

// Movement applies the character's steps and every fight they start.
type Movement struct {
	s        *Session
	resolver *combat.Resolver
	levels   advancer
	tracer   trace.Tracer
}

// NewMovement creates the movement coordinator for s.
func NewMovement(s *Session, resolver *combat.Resolver, levels advancer) *Movement {
	return &Movement{s: s, resolver: resolver, levels: levels, tracer: telemetry.Tracer("movement")}
}

// Move steps the character one cell in dir. Walking into an enemy fights it
// instead; the character only enters the cell if the enemy died. Walking into
// a locked door tries to unlock it.
func (m *Movement) Move(ctx context.Context, dir world.Direction) (MoveResult, error) {
	ctx, span := m.tracer.Start(ctx, "movement.move")
	defer span.End()

	s := m.s
	from := s.Character.GridPosition()
	to := from.Add(dir)
	span.SetAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	)

	if !dir.IsStep() {
		s.Messages.Add("You can't move there - it's a wall!")
		return MoveResult{}, nil
	}
	if door := s.Level.DoorAt(to); door != nil && door.Locked {
		return m.openDoor(ctx, door), nil
	}
	if !s.Level.IsWalkable(to) {
		s.Messages.Add("You can't move there - it's a wall!")
		return MoveResult{}, nil
	}

	var out MoveResult
	if enemy := s.Level.EnemyAt(to); enemy != nil {
		res, defeated, err := m.engage(ctx, enemy)
		out = MoveResult{Consumed: true, Combat: &res}
		if err != nil || s.IsTerminal() || !defeated {
			span.SetAttributes(attribute.Bool("blocked", true))
			return out, err
		}
	}

	stepped, err := m.step(ctx, from, to)
	stepped.Combat = out.Combat
	return stepped, err
}

// Attack strikes the enemy in the adjacent cell in dir without moving.
func (m *Movement) Attack(ctx context.Context, dir world.Direction) (MoveResult, error) {
	target := m.s.Character.GridPosition().Add(dir)
	enemy := m.s.Level.EnemyAt(target)
	if !dir.IsStep() || enemy == nil {
		m.s.Messages.Add("Nothing to attack there")
		return MoveResult{}, nil
	}
	res, _, err := m.engage(ctx, enemy)
	return MoveResult{Consumed: true, Combat: &res}, err
}

// Interact acts on the adjacent cell in dir: fights an enemy, unlocks a door,
// picks up an item or takes the stairs.
func (m *Movement) Interact(ctx context.Context, dir world.Direction) (MoveResult, error) {
	s := m.s
	target := s.Character.GridPosition().Add(dir)
	door := s.Level.DoorAt(target)
	switch {
	case !dir.IsStep():
	case s.Level.EnemyAt(target) != nil:
		return m.Attack(ctx, dir)
	case door != nil && door.Locked:
		return m.openDoor(ctx, door), nil
	case s.Level.IsExit(target):
		return m.Move(ctx, dir)
	default:
		if _, ok := s.Level.ItemAt(target); ok {
			return MoveResult{Consumed: m.pickUp(ctx, target)}, nil
		}
	}
	s.Messages.Add("Nothing to interact with")
	return MoveResult{}, nil
}

// openDoor unlocks door when the matching key is carried. Unlocking takes
// the turn but leaves the character in place; a missing key costs nothing.
func (m *Movement) openDoor(ctx context.Context, door *level.Door) MoveResult {
	_, span := m.tracer.Start(ctx, "movement.open_door")
	defer span.End()
	span.SetAttributes(attribute.String("door.color", door.Color.String()))

	s := m.s
	if !s.Character.Backpack.HasKey(door.Color) {
		s.Messages.Add(fmt.Sprintf("Locked %s door - need %s key!", door.Color, door.Color))
		return MoveResult{}
	}
	door.Locked = false
	s.Messages.Add(fmt.Sprintf("Unlocked %s door!", door.Color))
	return MoveResult{Consumed: true}
}

// engage has the character attack enemy. A disguised mimic is revealed
// first. defeated reports that the enemy died and has been removed.
func (m *Movement) engage(ctx context.Context, enemy *entity.Enemy) (combat.Result, bool, error) {
	s := m.s
	if ai.Lurking(enemy) {
		ai.Reveal(enemy)
		s.Messages.Add("It's a MIMIC! The item was a trap!")
	}

	res := m.resolver.ResolvePlayerAttack(ctx, s.Character, enemy)
	s.Messages.Add(res.Message())
	if !res.Killed {
		return res, false, nil
	}
	if !s.Level.RemoveEnemy(enemy) {
		return res, false, fmt.Errorf("remove defeated %s at %s: not on level", enemy.Name, enemy.Position)
	}
	var treasure entity.Item
	if res.Treasure != nil {
		treasure = *res.Treasure
		s.Character.Backpack.Add(treasure)
		s.Messages.Add(fmt.Sprintf("Found %d treasure!", treasure.Value))
	}
	s.publish(ctx, event.EnemyDefeated{Enemy: *enemy, Treasure: treasure})
	return res, true, nil
}

// step moves the character from one free cell to the next.
func (m *Movement) step(ctx context.Context, from, to world.Position) (MoveResult, error) {
	s := m.s
	if _, ok := s.Level.ItemAt(to); ok {
		m.pickUp(ctx, to)
	}
	s.Character.MoveTo(to)
	s.publish(ctx, event.CharacterMoved{From: from, To: to, Mode: s.Mode})
	s.updateVisibility()

	out := MoveResult{Consumed: true, Moved: true}
	if s.Level.IsExit(to) {
		advanced, err := m.levels.AdvanceAndSetup(ctx)
		if err != nil {
			return out, fmt.Errorf("take stairs: %w", err)
		}
		out.LevelChanged = advanced
	}
	return out, nil
}

// pickUp moves the item on p into the backpack if there is room.
func (m *Movement) pickUp(ctx context.Context, p world.Position) bool {
	s := m.s
	item, ok := s.Level.ItemAt(p)
	if !ok {
		return false
	}
	if !s.Character.Backpack.Add(item) {
		s.Messages.Add("Backpack full! Can't pick up item.")
		return false
	}
	s.Level.TakeItem(p)
	s.Messages.Add("Picked up " + item.Describe())
	s.publish(ctx, event.ItemCollected{Item: item})
	return true
}
