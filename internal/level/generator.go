package level

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/dualcrawl/internal/difficulty"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/gamedata"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// ErrInvalidLayout reports a generated level the player could not finish.
var ErrInvalidLayout = errors.New("invalid level layout")

// Enemy population parameters.
const (
	EnemyCountBase   = 3
	MinEnemies       = 2
	MaxEnemies       = 15
	MaxEnemiesInRoom = 4
	EnemyStatScaling = 1.1

	minLevelFactor     = 0.3
	levelFactorDivisor = 30.0
	layoutAttempts     = 5
	placementAttempts  = 20
)

// Generator produces level content.
type Generator interface {
	Generate(ctx context.Context, number int, mods difficulty.Modifiers) (*Level, error)
}

// Procedural builds BSP levels populated from the embedded game data.
type Procedural struct {
	rng     *rand.Rand
	enemies *gamedata.EnemyRegistry
	items   gamedata.ItemTable
	width   int
	height  int
	tracer  trace.Tracer
}

// NewProcedural creates a generator drawing from rng.
func NewProcedural(rng *rand.Rand, enemies *gamedata.EnemyRegistry, items gamedata.ItemTable) *Procedural {
	return &Procedural{
		rng:     rng,
		enemies: enemies,
		items:   items,
		width:   world.DefaultWidth,
		height:  world.DefaultHeight,
		tracer:  telemetry.Tracer("level"),
	}
}

// Generate builds level number. The layout is validated before it is populated.
func (g *Procedural) Generate(ctx context.Context, number int, mods difficulty.Modifiers) (*Level, error) {
	ctx, span := g.tracer.Start(ctx, "level.generate")
	defer span.End()
	span.SetAttributes(attribute.Int("level.number", number))

	if number < 1 {
		err := fmt.Errorf("generate level %d: level numbers start at 1", number)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	mods = mods.Clamped()

	var lvl *Level
	var err error
	for range layoutAttempts {
		if err = ctx.Err(); err != nil {
			break
		}
		lvl, err = g.layout(ctx, number)
		if err == nil {
			break
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("generate level %d: %w", number, err)
	}

	g.spawnEnemies(lvl, mods)
	g.spawnItems(lvl, mods)

	span.SetAttributes(
		attribute.Int("level.rooms", len(lvl.Dungeon.Rooms)),
		attribute.Int("level.enemies", len(lvl.Enemies)),
		attribute.Int("level.items", len(lvl.Items)),
		attribute.Int("level.doors", len(lvl.Doors)),
	)
	return lvl, nil
}

func (g *Procedural) layout(ctx context.Context, number int) (*Level, error) {
	d := world.NewDungeon(g.width, g.height, g.rng)
	d.Generate(ctx)
	if len(d.Rooms) < 2 {
		return nil, fmt.Errorf("%w: %d rooms", ErrInvalidLayout, len(d.Rooms))
	}

	start := g.rng.Intn(len(d.Rooms))
	exit := g.rng.Intn(len(d.Rooms) - 1)
	if exit >= start {
		exit++
	}
	lvl := &Level{
		Number:    number,
		Dungeon:   d,
		StartRoom: start,
		ExitRoom:  exit,
		Start:     d.Rooms[start].Center(),
		Exit:      d.Rooms[exit].Center(),
		Fog:       NewFog(d.Width, d.Height),
	}
	if err := Validate(lvl); err != nil {
		return nil, err
	}
	if err := placeKeys(g.rng, lvl); err != nil {
		return nil, err
	}
	return lvl, nil
}

// Validate checks that the start and exit are walkable and that the exit can
// be reached, picking up each key before its door. held lists keys the
// character already carries.
func Validate(l *Level, held ...entity.KeyColor) error {
	switch {
	case l.Dungeon == nil:
		return fmt.Errorf("%w: no layout", ErrInvalidLayout)
	case !l.IsWalkable(l.Start):
		return fmt.Errorf("%w: start %s is not walkable", ErrInvalidLayout, l.Start)
	case !l.IsWalkable(l.Exit):
		return fmt.Errorf("%w: exit %s is not walkable", ErrInvalidLayout, l.Exit)
	case l.Start == l.Exit:
		return fmt.Errorf("%w: start and exit coincide at %s", ErrInvalidLayout, l.Start)
	}
	return checkKeys(l, held)
}

// otherRooms lists every room index except the start room.
func otherRooms(l *Level) []int {
	rooms := make([]int, 0, len(l.Dungeon.Rooms)-1)
	for i := range l.Dungeon.Rooms {
		if i != l.StartRoom {
			rooms = append(rooms, i)
		}
	}
	return rooms
}

// EnemyCount returns how many enemies level number receives.
func EnemyCount(number int, mods difficulty.Modifiers) int {
	count := int(float64(EnemyCountBase+number) * mods.EnemyCount)
	return min(MaxEnemies, max(MinEnemies, count))
}

// StatFactor returns the enemy stat multiplier for level number.
func StatFactor(number int, mods difficulty.Modifiers) float64 {
	return math.Pow(EnemyStatScaling, float64(number-1)) * mods.EnemyStat
}

func (g *Procedural) spawnEnemies(l *Level, mods difficulty.Modifiers) {
	rooms := otherRooms(l)
	perRoom := make(map[int]int)
	target := EnemyCount(l.Number, mods)

	for spawned := 0; spawned < target && len(rooms) > 0; {
		pick := g.rng.Intn(len(rooms))
		room := rooms[pick]
		def := g.enemies.SpawnRandom(g.rng, l.Number)
		if def == nil {
			return
		}
		p, ok := g.freeCellInRoom(l, room)
		if !ok {
			rooms = append(rooms[:pick], rooms[pick+1:]...)
			continue
		}
		if g.addEnemy(l, def, p, mods) {
			spawned++
			perRoom[room]++
		}
		if perRoom[room] >= MaxEnemiesInRoom {
			rooms = append(rooms[:pick], rooms[pick+1:]...)
		}
	}
}

func (g *Procedural) addEnemy(l *Level, def *gamedata.EnemyDef, p world.Position, mods difficulty.Modifiers) bool {
	e, err := entity.NewEnemyFromDef(def, p)
	if err != nil {
		return false
	}
	e.ID = len(l.Enemies) + 1
	e.Scale(StatFactor(l.Number, mods))
	l.Enemies = append(l.Enemies, e)
	return true
}

// ItemCounts returns the number of food, weapon, elixir and scroll drops.
func (g *Procedural) ItemCounts(number, rooms int, mods difficulty.Modifiers) (food, weapons, elixirs, scrolls int) {
	factor := max(minLevelFactor, 1-float64(number)/levelFactorDivisor) * mods.ItemSpawn
	n := float64(rooms)
	food = max(g.items.Food.MinCount, int(g.items.Food.SpawnRate*n*factor*mods.Healing))
	weapons = max(g.items.Weapon.MinCount, int(g.items.Weapon.SpawnRate*n))
	elixirs = int(g.items.Elixir.SpawnRate * n * factor)
	scrolls = int(g.items.Scroll.SpawnRate * n * factor)
	return food, weapons, elixirs, scrolls
}

func (g *Procedural) spawnItems(l *Level, mods difficulty.Modifiers) {
	rooms := otherRooms(l)
	food, weapons, elixirs, scrolls := g.ItemCounts(l.Number, len(rooms), mods)

	plan := []struct {
		count int
		build func() entity.Item
	}{
		{food, func() entity.Item { return g.food(l.Number, mods) }},
		{weapons, func() entity.Item { return g.weapon(l.Number) }},
		{elixirs, func() entity.Item { return g.elixir(l.Number) }},
		{scrolls, func() entity.Item { return g.scroll(l.Number) }},
	}
	for _, step := range plan {
		for range step.count {
			room := rooms[g.rng.Intn(len(rooms))]
			p, ok := g.freeCellInRoom(l, room)
			if !ok {
				continue
			}
			item := step.build()
			if g.rollMimic(l.Number) {
				g.placeMimic(l, p, item.Kind.Glyph(), mods)
				continue
			}
			l.DropItem(item.At(p))
		}
	}
}

func (g *Procedural) rollMimic(number int) bool {
	return number >= g.items.Mimic.MinLevel && g.rng.Float64() < g.items.Mimic.Chance
}

func (g *Procedural) placeMimic(l *Level, p world.Position, disguise rune, mods difficulty.Modifiers) {
	def := g.enemies.GetByID(entity.Mimic.String())
	if def == nil {
		return
	}
	if g.addEnemy(l, def, p, mods) {
		l.Enemies[len(l.Enemies)-1].Traits = &entity.MimicTraits{Disguised: true, Disguise: disguise}
	}
}

func (g *Procedural) food(number int, mods difficulty.Modifiers) entity.Item {
	t := g.items.Food
	healing := int(float64(t.Healing.Roll(g.rng)+number*t.PerLevel) * mods.Healing)
	return entity.NewFood(healing)
}

func (g *Procedural) weapon(number int) entity.Item {
	t := g.items.Weapon
	bonus := t.Bonus.Roll(g.rng) + gamedata.LevelBonus(number, t.LevelsPerUp)
	name := "Weapon"
	if len(t.Names) > 0 {
		name = t.Names[g.rng.Intn(len(t.Names))]
	}
	return entity.NewWeapon(fmt.Sprintf("%s +%d", name, bonus), bonus)
}

func (g *Procedural) elixir(number int) entity.Item {
	t := g.items.Elixir
	stat := entity.Stats[g.rng.Intn(len(entity.Stats))]
	bonus := t.Bonus.Roll(g.rng) + gamedata.LevelBonus(number, t.LevelsPerUp)
	return entity.NewElixir(stat, bonus, t.Duration.Roll(g.rng))
}

func (g *Procedural) scroll(number int) entity.Item {
	t := g.items.Scroll
	stat := entity.Stats[g.rng.Intn(len(entity.Stats))]
	bonus := t.Bonus.Roll(g.rng) + gamedata.LevelBonus(number, t.LevelsPerUp)
	return entity.NewScroll(stat, bonus)
}

// EmergencyHealing returns the healing of an emergency ration on level number.
func (g *Procedural) EmergencyHealing(number int) int {
	return g.items.Food.Emergency + number*g.items.Food.EmergencyStep
}

// Rand exposes the generator's randomness for placement helpers.
func (g *Procedural) Rand() *rand.Rand {
	return g.rng
}

func (g *Procedural) freeCellInRoom(l *Level, room int) (world.Position, bool) {
	for range placementAttempts {
		p, ok := l.Dungeon.RandomPointInRoom(g.rng, room)
		if ok && p != l.Start && l.IsFree(p) {
			return p, true
		}
	}
	return world.Position{}, false
}
