package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/dualcrawl/internal/difficulty"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
)

// ErrTransitionNotBegun reports a level completion without a matching Begin.
var ErrTransitionNotBegun = fmt.Errorf("level transition not begun: %w", state.ErrInvalidTransition)

// Saver persists a session between levels.
type Saver interface {
	Save(ctx context.Context, s *Session) error
}

// emergencyRations is implemented by generators that can place extra food.
type emergencyRations interface {
	EmergencyHealing(number int) int
	Rand() *rand.Rand
}

// Levels sequences level generation against the lifecycle state.
type Levels struct {
	s      *Session
	gen    level.Generator
	saver  Saver
	logger *slog.Logger
	tracer trace.Tracer
}

// LevelsOption configures Levels.
type LevelsOption func(*Levels)

// WithSaver autosaves after every completed level transition.
func WithSaver(sv Saver) LevelsOption {
	return func(l *Levels) { l.saver = sv }
}

// NewLevels creates the level manager for s.
func NewLevels(s *Session, gen level.Generator, opts ...LevelsOption) *Levels {
	l := &Levels{
		s:      s,
		gen:    gen,
		logger: s.Logger().With("component", "levels"),
		tracer: telemetry.Tracer("level"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start generates level 1 and begins play.
func (l *Levels) Start(ctx context.Context) error {
	if !l.s.Machine.Is(state.Initializing) {
		return fmt.Errorf("start session: %w", &state.TransitionError{From: l.s.Current(), To: state.Playing})
	}
	lvl, err := l.generate(ctx, 1)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	l.s.place(ctx, lvl, 1)
	if err := l.s.transition(ctx, state.Playing, "session started"); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	l.s.Messages.Add("Welcome to the dungeon! Find the stairs to descend.")
	return nil
}

// Begin enters the level transition.
func (l *Levels) Begin(ctx context.Context) error {
	if err := l.s.transition(ctx, state.LevelTransition, "descending"); err != nil {
		return fmt.Errorf("begin level transition: %w", err)
	}
	return nil
}

// Complete leaves the level transition. Calling it without Begin is a
// programming error reported as ErrTransitionNotBegun.
func (l *Levels) Complete(ctx context.Context) error {
	if cur := l.s.Current(); cur != state.LevelTransition {
		return fmt.Errorf("complete level transition from %s: %w", cur, ErrTransitionNotBegun)
	}
	if err := l.s.transition(ctx, state.Playing, "arrived"); err != nil {
		return fmt.Errorf("complete level transition: %w", err)
	}
	return nil
}

// AdvanceToNextLevel bumps the level number. It returns false and changes
// nothing when the last level has been reached.
func (l *Levels) AdvanceToNextLevel() bool {
	if l.s.depth >= l.s.MaxLevels() {
		return false
	}
	l.s.depth++
	return true
}

// AdvanceAndSetup descends to the next level, or wins the game from the last
// one. Generation failures roll the level number back and are returned.
// Autosave and hint failures only produce a warning.
func (l *Levels) AdvanceAndSetup(ctx context.Context) (bool, error) {
	ctx, span := l.tracer.Start(ctx, "level.advance")
	defer span.End()

	s := l.s
	prev := s.depth
	if !l.AdvanceToNextLevel() {
		s.Messages.Add("Congratulations! You've completed all levels!")
		span.SetAttributes(attribute.Bool("victory", true))
		return false, s.EndGame(ctx, true, "Completed all levels")
	}
	span.SetAttributes(attribute.Int("level.number", s.depth))

	if err := l.Begin(ctx); err != nil {
		s.depth = prev
		return false, err
	}
	lvl, err := l.generate(ctx, s.depth)
	if err != nil {
		s.depth = prev
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.logger.ErrorContext(ctx, "level generation failed", "level", prev+1, "error", err)
		return false, errors.Join(err, s.transition(ctx, state.Playing, "level generation failed"))
	}
	s.place(ctx, lvl, s.depth)
	if err := l.Complete(ctx); err != nil {
		return false, err
	}

	msg := fmt.Sprintf("Advanced to level %d!", s.depth)
	if !s.Config.TestMode {
		msg += " (" + s.Difficulty.Hint() + ")"
	}
	s.Messages.Add(msg)
	l.autosave(ctx)
	return true, nil
}

func (l *Levels) autosave(ctx context.Context) {
	if l.saver == nil || l.s.Config.TestMode {
		return
	}
	if err := l.saver.Save(ctx, l.s); err != nil {
		l.logger.WarnContext(ctx, "autosave failed", "level", l.s.depth, "error", err)
		l.s.Messages.Add("[Warning: Autosave failed]")
	}
}

// generate builds and validates level number, then tops up food for a
// struggling player.
func (l *Levels) generate(ctx context.Context, number int) (*level.Level, error) {
	s := l.s
	mods := difficulty.Neutral()
	if !s.Config.TestMode {
		var score float64
		mods, score = s.Difficulty.Adjust(s.Character, s.Stats(), number)
		l.logger.DebugContext(ctx, "difficulty adjusted", "level", number, "score", score, "modifiers", mods.Description())
	}

	lvl, err := l.gen.Generate(ctx, number, mods)
	if err != nil {
		return nil, err
	}
	if err := level.Validate(lvl); err != nil {
		return nil, fmt.Errorf("generate level %d: %w", number, err)
	}

	if rations, ok := l.gen.(emergencyRations); ok && !s.Config.TestMode && s.Difficulty.NeedsEmergencyHealing(s.Character) {
		if lvl.PlaceEmergencyFood(rations.Rand(), lvl.Start, rations.EmergencyHealing(number)) {
			s.Messages.Add("You sense food nearby...")
		}
	}
	return lvl, nil
}
