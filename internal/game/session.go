// Package game runs a session: the player's actions, the enemies' replies and
// the progression from level to level.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/difficulty"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/stats"
	"github.com/samdwyer/dualcrawl/internal/stats/track"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// Visibility is updated once after every step the character takes.
type Visibility interface {
	Update(d *world.Dungeon, p world.Position)
}

// Session holds the state of one run. The character's grid position is
// authoritative; the camera follows it.
type Session struct {
	ID         uuid.UUID
	Config     Config
	Machine    *state.Machine
	Notifier   *event.Notifier
	Character  *entity.Character
	Level      *level.Level
	Camera     *camera.Camera
	Mode       camera.Mode
	Difficulty *difficulty.Manager
	Messages   *MessageLog
	Pending    *SelectionRequest
	Visibility Visibility

	depth   int
	tracker *track.Tracker
	sync    camera.Synchronizer
	base    *slog.Logger
	logger  *slog.Logger
}

// NewSession starts a fresh run on n. Any subscriptions left on n from an
// earlier session are cleared first.
func NewSession(n *event.Notifier, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	n.Reset()

	id := uuid.New()
	s := &Session{
		ID:         id,
		Config:     cfg,
		Machine:    state.NewMachine(),
		Notifier:   n,
		Character:  entity.NewCharacter(world.Position{}),
		Camera:     camera.New(world.Position{}),
		Mode:       cfg.StartMode,
		Difficulty: difficulty.NewManager(),
		Messages:   &MessageLog{},
		sync:       camera.NewSynchronizer(),
		base:       logger,
	}
	s.bindID(id)
	s.UseStats(stats.New())
	event.On(n, func(context.Context, event.CharacterMoved) error {
		s.sync.SyncToContinuous(s.Camera, s.Character, true)
		return nil
	})
	return s
}

// bindID sets the session ID and the logger that reports it.
func (s *Session) bindID(id uuid.UUID) {
	s.ID = id
	s.logger = s.base.With("session", id.String())
}

// UseStats replaces the statistics the session accumulates into.
func (s *Session) UseStats(st *stats.Statistics) {
	if s.tracker != nil {
		s.tracker.Stop()
	}
	s.tracker = track.NewTracker(st, s.Notifier)
	s.tracker.Start()
}

// Stats returns the run's statistics.
func (s *Session) Stats() *stats.Statistics {
	return s.tracker.Stats()
}

// LevelNumber returns the current level number, starting at 1.
func (s *Session) LevelNumber() int {
	return s.depth
}

// MaxLevels returns the last level of the run.
func (s *Session) MaxLevels() int {
	return s.Config.maxLevels()
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Current returns the lifecycle state.
func (s *Session) Current() state.State {
	return s.Machine.Current()
}

// IsTerminal reports whether the run is over.
func (s *Session) IsTerminal() bool {
	return s.Machine.IsTerminal()
}

func (s *Session) publish(ctx context.Context, ev event.Event) {
	s.Notifier.Publish(ctx, ev)
}

func (s *Session) transition(ctx context.Context, target state.State, reason string) error {
	from := s.Machine.Current()
	if err := s.Machine.TransitionTo(target); err != nil {
		return err
	}
	s.publish(ctx, event.StateChanged{From: from, To: target, Reason: reason})
	return nil
}

// EndGame moves to Victory or GameOver and announces the outcome.
func (s *Session) EndGame(ctx context.Context, victory bool, reason string) error {
	target := state.GameOver
	if victory {
		target = state.Victory
	}
	if err := s.transition(ctx, target, reason); err != nil {
		return fmt.Errorf("end game: %w", err)
	}
	s.logger.InfoContext(ctx, "game ended",
		"victory", victory,
		"reason", reason,
		"level", s.depth,
	)
	c := s.Character
	s.publish(ctx, event.GameEnded{
		Victory:        victory,
		Level:          s.depth,
		Reason:         reason,
		FinalHealth:    c.Health,
		FinalStrength:  c.Strength,
		FinalDexterity: c.Dexterity,
	})
	return nil
}

// Wake ends the player's sleep.
func (s *Session) Wake(ctx context.Context) error {
	return s.transition(ctx, state.Playing, "woke up")
}

// Sleep puts the player to sleep until their next action.
func (s *Session) Sleep(ctx context.Context) error {
	return s.transition(ctx, state.Asleep, "put to sleep")
}

// Quit ends the run at the player's request.
func (s *Session) Quit(ctx context.Context, reason string) error {
	if err := s.EndGame(ctx, false, reason); err != nil {
		return err
	}
	s.Messages.Add(reason + ".")
	return nil
}

// Heading returns the direction the camera faces.
func (s *Session) Heading() world.Direction {
	return s.Camera.Heading()
}

// Rotate turns the camera by quarter turns, positive clockwise.
func (s *Session) Rotate(quarterTurns int) {
	s.Camera.Rotate(float64(90 * quarterTurns))
	s.Messages.Add("Facing " + directionName(s.Camera.Heading()))
}

// ToggleMode switches view and checks that both views agree on the cell.
func (s *Session) ToggleMode(ctx context.Context) error {
	next := s.Mode.Toggle()
	switch next {
	case camera.ModeGrid:
		s.sync.SyncToGrid(s.Character, s.Camera)
	case camera.ModeFirstPerson:
		s.sync.SyncToContinuous(s.Camera, s.Character, true)
	}
	if err := s.sync.ValidateAlignment(s.Camera, s.Character); err != nil {
		s.logger.ErrorContext(ctx, "view switch left camera misaligned", "error", err)
		return fmt.Errorf("switch view to %s: %w", next, err)
	}
	s.Mode = next
	s.Messages.Add("Switched to " + viewName(next) + " view")
	return nil
}

// ValidateAlignment checks that the camera sits on the character's cell.
func (s *Session) ValidateAlignment() error {
	return s.sync.ValidateAlignment(s.Camera, s.Character)
}

// place puts the character on a freshly generated level.
func (s *Session) place(ctx context.Context, lvl *level.Level, number int) {
	from := s.Character.GridPosition()
	s.Level = lvl
	s.depth = number
	s.Character.Backpack.DropKeys()
	s.Character.MoveTo(lvl.Start)
	if s.Config.FogOfWar && lvl.Fog != nil {
		s.Visibility = lvl.Fog
	}
	s.updateVisibility()

	s.publish(ctx, event.LevelGenerated{Level: lvl, Start: lvl.Start, Number: number})
	s.publish(ctx, event.CharacterMoved{From: from, To: lvl.Start, Mode: s.Mode, Transition: true})
}

func (s *Session) updateVisibility() {
	if s.Visibility != nil && s.Level != nil {
		s.Visibility.Update(s.Level.Dungeon, s.Character.GridPosition())
	}
}

// Restoration is the saved content a session is rebuilt from.
type Restoration struct {
	ID         uuid.UUID
	State      state.State
	Mode       camera.Mode
	Level      *level.Level
	Character  *entity.Character
	Camera     *camera.Camera
	Difficulty difficulty.Modifiers
	Stats      *stats.Statistics
	Pending    *SelectionRequest
}

// Restore replaces the session content with r. The lifecycle state is set
// directly, without consulting the transition table. The camera keeps its
// saved orientation but is re-centred on the character. A non-nil r.ID
// becomes the session ID.
func (s *Session) Restore(ctx context.Context, r Restoration) {
	if r.ID != uuid.Nil {
		s.bindID(r.ID)
	}
	st := r.State
	if st == state.ItemSelection && r.Pending == nil {
		st = state.Playing
	}
	s.Machine.Restore(st)

	s.Level = r.Level
	s.depth = r.Level.Number
	s.Character = r.Character
	s.Mode = r.Mode
	s.Pending = r.Pending
	if st != state.ItemSelection {
		s.Pending = nil
	}
	s.Camera = r.Camera
	if s.Camera == nil {
		s.Camera = camera.New(s.Character.GridPosition())
	}
	s.sync.SyncToContinuous(s.Camera, s.Character, true)
	s.Difficulty.Restore(r.Difficulty)
	if r.Stats != nil {
		s.UseStats(r.Stats)
	}

	s.Visibility = nil
	if s.Config.FogOfWar && r.Level.Fog != nil {
		s.Visibility = r.Level.Fog
	}
	s.updateVisibility()
	s.logger.InfoContext(ctx, "session restored", "state", st.String(), "level", s.depth)
}

func directionName(d world.Direction) string {
	switch d {
	case world.North:
		return "North"
	case world.South:
		return "South"
	case world.West:
		return "West"
	default:
		return "East"
	}
}

func viewName(m camera.Mode) string {
	if m == camera.ModeFirstPerson {
		return "first-person"
	}
	return "grid"
}
