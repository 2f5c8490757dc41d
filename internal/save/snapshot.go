// Package save persists sessions and finished runs.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/difficulty"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/game"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/stats"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// Version is the snapshot format written by this package. Version 1 saves
// carry only legacy flags instead of a state name.
const Version = 2

// ErrCorrupt reports a snapshot that cannot be turned back into a session.
var ErrCorrupt = errors.New("corrupt snapshot")

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Version    int                    `json:"version" jsonschema:"minimum=1"`
	SessionID  string                 `json:"session_id,omitempty"`
	SavedAt    time.Time              `json:"saved_at"`
	State      string                 `json:"state,omitempty" jsonschema:"enum=initializing,enum=playing,enum=asleep,enum=item_selection,enum=level_transition,enum=game_over,enum=victory"`
	Legacy     *state.LegacyFlags     `json:"legacy,omitempty" jsonschema:"description=Read-only fallback for saves without a state name"`
	Mode       camera.Mode            `json:"mode"`
	Character  entity.Character       `json:"character"`
	Camera     *camera.Camera         `json:"camera,omitempty"`
	Level      LevelRecord            `json:"level"`
	Difficulty difficulty.Modifiers   `json:"difficulty"`
	Stats      *stats.Statistics      `json:"stats,omitempty"`
	Pending    *game.SelectionRequest `json:"pending,omitempty"`
}

// LevelRecord is one floor in text form.
type LevelRecord struct {
	Number    int            `json:"number" jsonschema:"minimum=1"`
	Tiles     []string       `json:"tiles"`
	Rooms     []world.Room   `json:"rooms"`
	Start     world.Position `json:"start"`
	Exit      world.Position `json:"exit"`
	StartRoom int            `json:"start_room"`
	ExitRoom  int            `json:"exit_room"`
	Enemies   []EnemyRecord  `json:"enemies"`
	Items     []entity.Item  `json:"items"`
	Doors     []level.Door   `json:"doors,omitempty"`
	Explored  []string       `json:"explored,omitempty"`
}

// EnemyRecord is one enemy with its variant state flattened.
type EnemyRecord struct {
	ID        int              `json:"id"`
	Kind      entity.EnemyKind `json:"kind"`
	Name      string           `json:"name"`
	Glyph     string           `json:"glyph"`
	Position  world.Position   `json:"position"`
	Health    int              `json:"health"`
	MaxHealth int              `json:"max_health"`
	Strength  int              `json:"strength"`
	Dexterity int              `json:"dexterity"`
	Hostility int              `json:"hostility"`
	Chasing   bool             `json:"chasing,omitempty"`
	Traits    TraitsRecord     `json:"traits"`
}

// TraitsRecord holds the union of every variant's fields. Only those of the
// enemy's kind are meaningful.
type TraitsRecord struct {
	FirstAttackPending   bool            `json:"first_attack_pending,omitempty"`
	Invisible            bool            `json:"invisible,omitempty"`
	TeleportCooldown     int             `json:"teleport_cooldown,omitempty"`
	InvisibilityCooldown int             `json:"invisibility_cooldown,omitempty"`
	Resting              bool            `json:"resting,omitempty"`
	WillCounterattack    bool            `json:"will_counterattack,omitempty"`
	Diagonal             world.Direction `json:"diagonal,omitzero"`
	DirectionCooldown    int             `json:"direction_cooldown,omitempty"`
	Disguised            bool            `json:"disguised,omitempty"`
	Disguise             string          `json:"disguise,omitempty"`
}

// Capture records the current content of s. The snapshot shares backpack
// storage with s until it is encoded.
func Capture(s *game.Session) Snapshot {
	cam := *s.Camera
	return Snapshot{
		Version:    Version,
		SessionID:  s.ID.String(),
		SavedAt:    time.Now().UTC(),
		State:      s.Current().String(),
		Mode:       s.Mode,
		Character:  *s.Character,
		Camera:     &cam,
		Level:      captureLevel(s.Level),
		Difficulty: s.Difficulty.Modifiers(),
		Stats:      s.Stats(),
		Pending:    s.Pending,
	}
}

func captureLevel(l *level.Level) LevelRecord {
	rec := LevelRecord{
		Number:    l.Number,
		Tiles:     l.Dungeon.Rows(),
		Rooms:     append([]world.Room(nil), l.Dungeon.Rooms...),
		Start:     l.Start,
		Exit:      l.Exit,
		StartRoom: l.StartRoom,
		ExitRoom:  l.ExitRoom,
		Items:     append([]entity.Item{}, l.Items...),
		Doors:     append([]level.Door(nil), l.Doors...),
		Enemies:   make([]EnemyRecord, 0, len(l.Enemies)),
	}
	if l.Fog != nil {
		rec.Explored = l.Fog.ExploredRows()
	}
	for _, e := range l.Enemies {
		if e.IsAlive() {
			rec.Enemies = append(rec.Enemies, captureEnemy(e))
		}
	}
	return rec
}

func captureEnemy(e *entity.Enemy) EnemyRecord {
	rec := EnemyRecord{
		ID:        e.ID,
		Kind:      e.Kind,
		Name:      e.Name,
		Glyph:     string(e.Glyph),
		Position:  e.Position,
		Health:    e.Health,
		MaxHealth: e.MaxHealth,
		Strength:  e.Strength,
		Dexterity: e.Dexterity,
		Hostility: e.Hostility,
		Chasing:   e.Chasing,
	}
	switch t := e.Traits.(type) {
	case *entity.VampireTraits:
		rec.Traits.FirstAttackPending = t.FirstAttackPending
	case *entity.GhostTraits:
		rec.Traits.Invisible = t.Invisible
		rec.Traits.TeleportCooldown = t.TeleportCooldown
		rec.Traits.InvisibilityCooldown = t.InvisibilityCooldown
	case *entity.OgreTraits:
		rec.Traits.Resting = t.Resting
		rec.Traits.WillCounterattack = t.WillCounterattack
	case *entity.SnakeMageTraits:
		rec.Traits.Diagonal = t.Diagonal
		rec.Traits.DirectionCooldown = t.DirectionCooldown
	case *entity.MimicTraits:
		rec.Traits.Disguised = t.Disguised
		rec.Traits.Disguise = string(t.Disguise)
	}
	return rec
}

// ResolveState returns the saved lifecycle state. Saves without a valid
// state name fall back to their legacy flags, then to Playing.
func (snap Snapshot) ResolveState() state.State {
	if snap.State != "" {
		if st, ok := state.ParseState(snap.State); ok {
			return st
		}
	}
	if snap.Legacy != nil {
		return snap.Legacy.Resolve()
	}
	return state.Playing
}

// Restoration rebuilds the session content recorded in snap.
func (snap Snapshot) Restoration() (game.Restoration, error) {
	c := snap.Character
	if c.Backpack.Items == nil {
		c.Backpack = entity.NewBackpack()
	}
	lvl, err := snap.Level.build(c.Backpack.Keys())
	if err != nil {
		return game.Restoration{}, err
	}
	r := game.Restoration{
		State:      snap.ResolveState(),
		Mode:       snap.Mode,
		Level:      lvl,
		Character:  &c,
		Difficulty: snap.Difficulty,
		Stats:      snap.Stats,
		Pending:    snap.Pending,
	}
	if id, err := uuid.Parse(snap.SessionID); err == nil {
		r.ID = id
	}
	if snap.Camera != nil {
		cam := *snap.Camera
		if cam.FOV == 0 {
			cam.FOV = camera.DefaultFOV
		}
		r.Camera = &cam
	}
	return r, nil
}

// build rebuilds the level. held lists the keys the character carries, which
// may already have opened doors on the way to the exit.
func (rec LevelRecord) build(held []entity.KeyColor) (*level.Level, error) {
	if rec.Number < 1 {
		return nil, fmt.Errorf("%w: level number %d", ErrCorrupt, rec.Number)
	}
	d, err := world.FromRows(rec.Tiles, rec.Rooms)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	lvl := &level.Level{
		Number:    rec.Number,
		Dungeon:   d,
		Start:     rec.Start,
		Exit:      rec.Exit,
		StartRoom: rec.StartRoom,
		ExitRoom:  rec.ExitRoom,
		Items:     append([]entity.Item(nil), rec.Items...),
		Doors:     append([]level.Door(nil), rec.Doors...),
		Fog:       level.NewFog(d.Width, d.Height),
	}
	lvl.Fog.RestoreExplored(rec.Explored)
	for _, er := range rec.Enemies {
		lvl.Enemies = append(lvl.Enemies, er.build())
	}
	if err := level.Validate(lvl, held...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return lvl, nil
}

func (rec EnemyRecord) build() *entity.Enemy {
	e := &entity.Enemy{
		ID:        rec.ID,
		Kind:      rec.Kind,
		Name:      rec.Name,
		Glyph:     firstRune(rec.Glyph, '?'),
		Position:  rec.Position,
		Health:    rec.Health,
		MaxHealth: rec.MaxHealth,
		Strength:  rec.Strength,
		Dexterity: rec.Dexterity,
		Hostility: rec.Hostility,
		Chasing:   rec.Chasing,
		Traits:    entity.DefaultTraits(rec.Kind),
	}
	t := rec.Traits
	switch tr := e.Traits.(type) {
	case *entity.VampireTraits:
		tr.FirstAttackPending = t.FirstAttackPending
	case *entity.GhostTraits:
		tr.Invisible = t.Invisible
		tr.TeleportCooldown = t.TeleportCooldown
		tr.InvisibilityCooldown = t.InvisibilityCooldown
	case *entity.OgreTraits:
		tr.Resting = t.Resting
		tr.WillCounterattack = t.WillCounterattack
	case *entity.SnakeMageTraits:
		if !t.Diagonal.IsZero() {
			tr.Diagonal = t.Diagonal
		}
		tr.DirectionCooldown = t.DirectionCooldown
	case *entity.MimicTraits:
		tr.Disguised = t.Disguised
		tr.Disguise = firstRune(t.Disguise, tr.Disguise)
	}
	return e
}

func firstRune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}

// Apply restores snap into s. The session takes over the saved session id
// so a resumed run is recorded under the id it started with.
func Apply(ctx context.Context, s *game.Session, snap Snapshot) error {
	r, err := snap.Restoration()
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	s.Restore(ctx, r)
	return nil
}

// Encode serialises snap as JSON.
func Encode(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot. Saves without a version are treated as version 1.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if snap.Version == 0 {
		snap.Version = 1
	}
	return snap, nil
}
