// Package app runs the interactive game: it wires the terminal, the session,
// persistence and the spectator feed around the main loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/game"
	"github.com/samdwyer/dualcrawl/internal/gamedata"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/save"
	"github.com/samdwyer/dualcrawl/internal/spectate"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
	"github.com/samdwyer/dualcrawl/internal/ui"
)

// Leaderboard lines shown when a run ends.
const topRuns = 5

// Terminal is the screen the loop draws on and reads keys from.
type Terminal interface {
	ui.Canvas
	PollEvent() tcell.Event
	Interrupt()
	Sync()
}

// Option configures an App.
type Option func(*App)

// WithStore autosaves into slot between levels, resumes from it and records
// finished runs.
func WithStore(store *save.Store, slot string) Option {
	return func(a *App) {
		a.store = store
		a.slot = slot
		if a.slot == "" {
			a.slot = save.AutosaveSlot
		}
	}
}

// WithSpectators streams the session to hub.
func WithSpectators(hub *spectate.Hub) Option {
	return func(a *App) { a.hub = hub }
}

// App holds the entire game.
type App struct {
	term     Terminal
	renderer *ui.Renderer
	input    ui.Input
	feedback *ui.Log
	session  *game.Session
	engine   *game.Engine
	store    *save.Store
	slot     string
	hub      *spectate.Hub
	logger   *slog.Logger
	running  bool
}

// New builds the session and its engine. Nothing is generated until Start.
func New(term Terminal, cfg game.Config, gen level.Generator, rng *rand.Rand, enemies *gamedata.EnemyRegistry, logger *slog.Logger, opts ...Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{term: term, logger: logger, running: true}
	for _, opt := range opts {
		opt(a)
	}

	a.session = game.NewSession(event.NewNotifier(logger), cfg, logger)
	var levelOpts []game.LevelsOption
	if a.store != nil {
		levelOpts = append(levelOpts, game.WithSaver(save.NewAutosaver(a.store, a.slot)))
	}
	a.engine = game.NewEngine(a.session, gen, rng, levelOpts...)

	// Subscribers go on after NewSession, which resets the notifier.
	a.feedback = ui.NewLog()
	a.feedback.Attach(a.session.Notifier)
	if a.hub != nil {
		a.hub.Attach(a.session.Notifier)
	}
	if a.store != nil {
		save.RecordRuns(a.store, a.session, logger)
	}
	a.renderer = ui.NewRenderer(term, enemies, a.feedback)
	return a
}

// Session returns the running session.
func (a *App) Session() *game.Session {
	return a.session
}

// Start resumes the saved run when resume is set and one exists, otherwise
// generates the first level.
func (a *App) Start(ctx context.Context, resume bool) error {
	tracer := telemetry.Tracer("app")
	ctx, span := tracer.Start(ctx, "app.start")
	defer span.End()

	if resume && a.store != nil {
		resumed, err := a.resume(ctx)
		if err != nil {
			a.logger.WarnContext(ctx, "saved run not resumed", "slot", a.slot, "error", err)
		}
		if resumed {
			span.SetAttributes(
				attribute.Bool("app.resumed", true),
				attribute.Int("level.number", a.session.LevelNumber()),
			)
			a.session.Messages.Add(fmt.Sprintf("Welcome back! Resuming level %d.", a.session.LevelNumber()))
			return nil
		}
	}

	if err := a.engine.Start(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("start session: %w", err)
	}
	span.SetAttributes(
		attribute.Bool("app.resumed", false),
		attribute.String("session.id", a.session.ID.String()),
	)
	return nil
}

func (a *App) resume(ctx context.Context) (bool, error) {
	snap, err := a.store.LoadSlot(ctx, a.slot)
	if errors.Is(err, save.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if snap.ResolveState().IsTerminal() {
		return false, nil
	}
	if err := save.Apply(ctx, a.session, snap); err != nil {
		return false, err
	}
	return true, nil
}

// Run executes the main loop until the player leaves or ctx is cancelled. An
// unfinished run is saved on the way out.
func (a *App) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, a.term.Interrupt)
	defer stop()

	for a.running {
		a.renderer.Render(a.session)
		if err := a.handleInput(ctx); err != nil {
			return err
		}
	}

	if !a.session.IsTerminal() && a.store != nil {
		// The loop may be leaving because ctx is done.
		saveCtx := context.WithoutCancel(ctx)
		if err := a.store.SaveSlot(saveCtx, a.slot, save.Capture(a.session)); err != nil {
			a.logger.WarnContext(saveCtx, "run not saved on exit", "slot", a.slot, "error", err)
		}
	}
	return nil
}

// handleInput processes a single input event.
func (a *App) handleInput(ctx context.Context) error {
	switch ev := a.term.PollEvent().(type) {
	case nil:
		a.running = false
	case *tcell.EventInterrupt:
		if ctx.Err() != nil {
			a.running = false
		}
	case *tcell.EventResize:
		a.term.Sync()
	case *tcell.EventKey:
		return a.handleKeyEvent(ctx, ev)
	}
	return nil
}

// handleKeyEvent maps a key to an action and runs it.
func (a *App) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) error {
	if a.session.IsTerminal() {
		a.running = false
		return nil
	}

	action := a.input.Map(ev, ui.ViewOf(a.session))
	if action.Kind == game.ActionNone {
		return nil
	}
	if _, err := a.engine.Process(ctx, action); err != nil {
		return fmt.Errorf("process %s: %w", action.Kind, err)
	}
	if a.session.IsTerminal() {
		a.finish(ctx)
	}
	return nil
}

// finish clears the finished run's save and loads the leaderboard.
func (a *App) finish(ctx context.Context) {
	if a.store == nil {
		return
	}
	if err := a.store.DeleteSlot(ctx, a.slot); err != nil {
		a.logger.WarnContext(ctx, "finished run's save not removed", "slot", a.slot, "error", err)
	}
	runs, err := a.store.TopRuns(ctx, topRuns)
	if err != nil {
		a.logger.WarnContext(ctx, "leaderboard unavailable", "error", err)
		return
	}
	scores := make([]ui.Score, 0, len(runs))
	for _, run := range runs {
		scores = append(scores, ui.Score{
			Level:    run.Level,
			Treasure: run.Treasure,
			Victory:  run.Victory,
			Reason:   run.Reason,
		})
	}
	a.renderer.SetScores(scores)
}
