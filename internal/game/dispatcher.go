package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
	"github.com/samdwyer/dualcrawl/internal/world"
)

type mover interface {
	Move(ctx context.Context, dir world.Direction) (MoveResult, error)
}

type engager interface {
	Attack(ctx context.Context, dir world.Direction) (MoveResult, error)
	Interact(ctx context.Context, dir world.Direction) (MoveResult, error)
}

type inventory interface {
	Request(ctx context.Context, t SelectionType) error
	Complete(ctx context.Context, choice int, chosen bool) (bool, error)
}

type enemyTurns interface {
	Run(ctx context.Context) error
}

type viewSwitcher interface {
	Heading() world.Direction
	Rotate(quarterTurns int)
	ToggleMode(ctx context.Context) error
}

type lifecycle interface {
	Current() state.State
	IsTerminal() bool
	Wake(ctx context.Context) error
	Quit(ctx context.Context, reason string) error
}

type messenger interface {
	Begin()
	Add(msg string)
}

// Dispatcher routes player actions. It behaves the same whichever view
// produced the action.
type Dispatcher struct {
	mover     mover
	engager   engager
	inventory inventory
	turns     enemyTurns
	view      viewSwitcher
	life      lifecycle
	messages  messenger
	tracer    trace.Tracer
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(m mover, e engager, inv inventory, turns enemyTurns, view viewSwitcher, life lifecycle, msgs messenger) *Dispatcher {
	return &Dispatcher{
		mover:     m,
		engager:   e,
		inventory: inv,
		turns:     turns,
		view:      view,
		life:      life,
		messages:  msgs,
		tracer:    telemetry.Tracer("action"),
	}
}

// Process handles one action and reports whether it used up the turn.
// Errors signal broken invariants, never ordinary refusals.
func (d *Dispatcher) Process(ctx context.Context, a PlayerAction) (bool, error) {
	ctx, span := d.tracer.Start(ctx, "action.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("action", a.Kind.String()),
		attribute.String("state", d.life.Current().String()),
	)

	consumed, err := d.process(ctx, a)
	span.SetAttributes(attribute.Bool("consumed", consumed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return consumed, fmt.Errorf("process %s: %w", a.Kind, err)
	}
	return consumed, nil
}

func (d *Dispatcher) process(ctx context.Context, a PlayerAction) (bool, error) {
	d.messages.Begin()

	switch cur := d.life.Current(); {
	case cur == state.Asleep:
		d.messages.Add("You are asleep and cannot act this turn!")
		if err := d.life.Wake(ctx); err != nil {
			return false, err
		}
		return true, d.turns.Run(ctx)
	case d.life.IsTerminal():
		d.messages.Add("Game is over!")
		return false, nil
	case cur == state.ItemSelection:
		choice, chosen := a.Target()
		if a.Kind != ActionSelect {
			chosen = false
		}
		used, err := d.inventory.Complete(ctx, choice, chosen)
		if err != nil || !used {
			return false, err
		}
		return true, d.afterTurn(ctx)
	}

	var res MoveResult
	var err error
	switch a.Kind {
	case ActionMove:
		res, err = d.mover.Move(ctx, a.Direction)
	case ActionWait:
		d.messages.Add("You wait.")
		res.Consumed = true
	case ActionAttack:
		res, err = d.engager.Attack(ctx, a.Direction)
	case ActionInteract:
		dir := a.Direction
		if dir.IsZero() {
			dir = d.view.Heading()
		}
		res, err = d.engager.Interact(ctx, dir)
	case ActionUseFood:
		return false, d.inventory.Request(ctx, SelectFood)
	case ActionUseWeapon:
		return false, d.inventory.Request(ctx, SelectWeapon)
	case ActionUseElixir:
		return false, d.inventory.Request(ctx, SelectElixir)
	case ActionUseScroll:
		return false, d.inventory.Request(ctx, SelectScroll)
	case ActionRotate:
		d.view.Rotate(a.Direction.DX)
		return false, nil
	case ActionToggleMode:
		return false, d.view.ToggleMode(ctx)
	case ActionQuit:
		return true, d.life.Quit(ctx, "Game quit by player")
	default:
		return false, nil
	}
	if err != nil || !res.Consumed {
		return res.Consumed, err
	}
	if res.LevelChanged {
		return true, nil
	}
	return true, d.afterTurn(ctx)
}

func (d *Dispatcher) afterTurn(ctx context.Context) error {
	if d.life.IsTerminal() {
		return nil
	}
	return d.turns.Run(ctx)
}
