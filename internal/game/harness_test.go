package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/samdwyer/dualcrawl/internal/ai"
	"github.com/samdwyer/dualcrawl/internal/combat"
	"github.com/samdwyer/dualcrawl/internal/difficulty"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// gallery is one open room; the player starts at (2,2) and the stairs are at (9,2).
var gallery = []string{
	"############",
	"#..........#",
	"#..........#",
	"#..........#",
	"############",
}

func newLevel(t *testing.T, number int) *level.Level {
	t.Helper()
	d, err := world.FromRows(gallery, []world.Room{{X: 1, Y: 1, Width: 10, Height: 3}})
	if err != nil {
		t.Fatalf("FromRows() error = %v", err)
	}
	return &level.Level{
		Number:  number,
		Dungeon: d,
		Start:   world.Pos(2, 2),
		Exit:    world.Pos(9, 2),
		Fog:     level.NewFog(d.Width, d.Height),
	}
}

// fakeGenerator hands out gallery levels and records what was asked for.
type fakeGenerator struct {
	t        *testing.T
	calls    []int
	err      error
	populate func(*level.Level)
}

func (g *fakeGenerator) Generate(_ context.Context, number int, _ difficulty.Modifiers) (*level.Level, error) {
	g.calls = append(g.calls, number)
	if g.err != nil {
		return nil, g.err
	}
	l := newLevel(g.t, number)
	if g.populate != nil {
		g.populate(l)
	}
	return l, nil
}

// scriptedRand replays fixed rolls, repeating the last one.
type scriptedRand struct {
	rolls []float64
	i     int
}

func (r *scriptedRand) Float64() float64 {
	v := r.rolls[min(r.i, len(r.rolls)-1)]
	r.i++
	return v
}

// failingSaver always fails.
type failingSaver struct {
	calls int
}

func (f *failingSaver) Save(context.Context, *Session) error {
	f.calls++
	return context.DeadlineExceeded
}

type harness struct {
	t      *testing.T
	s      *Session
	gen    *fakeGenerator
	eng    *Engine
	events []event.Event
}

// newHarness starts a session on level 1 of the gallery. populate runs on
// every generated level; combat draws from rolls (all misses by default).
func newHarness(t *testing.T, populate func(*level.Level), rolls ...float64) *harness {
	t.Helper()
	return newHarnessWith(t, Config{MaxLevels: 3, TestMode: true}, populate, nil, rolls...)
}

func newHarnessWith(t *testing.T, cfg Config, populate func(*level.Level), saver Saver, rolls ...float64) *harness {
	t.Helper()
	if len(rolls) == 0 {
		rolls = []float64{0.99}
	}
	logger := telemetry.DiscardLogger()
	n := event.NewNotifier(logger)
	s := NewSession(n, cfg, logger)
	gen := &fakeGenerator{t: t, populate: populate}

	resolver := combat.NewResolver(&scriptedRand{rolls: rolls}, combat.PublishSink(n),
		combat.WithDepth(s.LevelNumber),
		combat.WithTracer(telemetry.NoopTracer()),
	)
	var opts []LevelsOption
	if saver != nil {
		opts = append(opts, WithSaver(saver))
	}
	levels := NewLevels(s, gen, opts...)
	movement := NewMovement(s, resolver, levels)
	turns := NewEnemyTurns(s, resolver, ai.New(rand.New(rand.NewSource(1))))
	inv := NewInventory(s)
	h := &harness{
		t:   t,
		s:   s,
		gen: gen,
		eng: &Engine{
			Session:    s,
			Levels:     levels,
			Movement:   movement,
			Turns:      turns,
			Inventory:  inv,
			Dispatcher: NewDispatcher(movement, movement, inv, turns, s, s, s.Messages),
		},
	}

	record := event.Func(func(_ context.Context, ev event.Event) error {
		h.events = append(h.events, ev)
		return nil
	})
	for _, k := range event.Kinds {
		n.Subscribe(k, record)
	}
	if err := h.eng.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	h.events = nil
	return h
}

func (h *harness) process(a PlayerAction) bool {
	h.t.Helper()
	consumed, err := h.eng.Process(context.Background(), a)
	if err != nil {
		h.t.Fatalf("Process(%s) error = %v", a.Kind, err)
	}
	return consumed
}

func (h *harness) count(kind event.Kind) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind() == kind {
			n++
		}
	}
	return n
}

func (h *harness) attacks() []event.AttackPerformed {
	var out []event.AttackPerformed
	for _, ev := range h.events {
		if a, ok := ev.(event.AttackPerformed); ok {
			out = append(out, a)
		}
	}
	return out
}

func zombieAt(p world.Position, health int) *entity.Enemy {
	return &entity.Enemy{
		ID:        1,
		Kind:      entity.Zombie,
		Name:      "Zombie",
		Glyph:     'z',
		Position:  p,
		Health:    health,
		MaxHealth: health,
		Strength:  5,
		Dexterity: 10,
		Traits:    &entity.ZombieTraits{},
	}
}

func mimicAt(p world.Position, strength int) *entity.Enemy {
	return &entity.Enemy{
		ID:        2,
		Kind:      entity.Mimic,
		Name:      "Mimic",
		Glyph:     'm',
		Position:  p,
		Health:    60,
		MaxHealth: 60,
		Strength:  strength,
		Dexterity: 10,
		Hostility: 2,
		Traits:    &entity.MimicTraits{Disguised: true, Disguise: '%'},
	}
}

func with(enemies ...*entity.Enemy) func(*level.Level) {
	return func(l *level.Level) {
		for _, e := range enemies {
			copied := *e
			l.Enemies = append(l.Enemies, &copied)
		}
	}
}
