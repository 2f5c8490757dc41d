package game

import (
	"context"
	"errors"
	"testing"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/world"
)

func TestMoveIntoEmptyCell(t *testing.T) {
	h := newHarness(t, nil)

	if !h.process(Move(world.East)) {
		t.Fatal("Process(Move East) = false, want true")
	}
	if got := h.s.Character.Position; got != world.Pos(3, 2) {
		t.Errorf("Position = %s, want (3, 2)", got)
	}
	if n := h.count(event.KindCharacterMoved); n != 1 {
		t.Errorf("CharacterMoved published %d times, want 1", n)
	}
	if n := h.count(event.KindAttackPerformed); n != 0 {
		t.Errorf("AttackPerformed published %d times, want 0", n)
	}
	if err := h.s.ValidateAlignment(); err != nil {
		t.Errorf("ValidateAlignment() = %v", err)
	}
	if want := (camera.Coordinate{X: 3.5, Y: 2.5}); h.s.Camera.Coordinate != want {
		t.Errorf("camera = %s, want %s", h.s.Camera.Coordinate, want)
	}
}

func TestMoveIntoLethalEnemy(t *testing.T) {
	// The player misses, then the brute's certain, lethal reply ends the run.
	// A second brute beside the player must never get its turn.
	brute := zombieAt(world.Pos(3, 2), 50)
	brute.Strength = 500
	second := zombieAt(world.Pos(2, 1), 50)
	second.ID, second.Strength = 3, 500
	h := newHarness(t, with(brute, second), 0.99, 0.0, 0.6)

	if !h.process(Move(world.East)) {
		t.Fatal("Process(Move East) = false, want true")
	}
	if got := h.s.Current(); got != state.GameOver {
		t.Errorf("state = %s, want game_over", got)
	}
	if got := h.s.Character.Position; got != world.Pos(2, 2) {
		t.Errorf("dead character moved to %s", got)
	}
	if n := h.count(event.KindCharacterMoved); n != 0 {
		t.Errorf("CharacterMoved published %d times, want 0", n)
	}
	attacks := h.attacks()
	if len(attacks) != 2 {
		t.Fatalf("attacks = %+v, want the player's swing and one reply", attacks)
	}
	if a := attacks[0]; a.Attacker != event.RolePlayer || a.Hit {
		t.Errorf("first attack = %+v, want a player miss", a)
	}
	if a := attacks[1]; a.Attacker != event.RoleEnemy || !a.Hit || !a.Killed {
		t.Errorf("reply = %+v, want a killing enemy hit", a)
	}
	if n := h.count(event.KindGameEnded); n != 1 {
		t.Errorf("GameEnded published %d times, want 1", n)
	}
	if h.process(Move(world.West)) {
		t.Error("Process() after death = true, want false")
	}
}

func TestRestoreCorruptedFlags(t *testing.T) {
	h := newHarness(t, nil)
	flags := state.LegacyFlags{Victory: true, GameOver: true}

	h.s.Restore(context.Background(), Restoration{
		State:     flags.Resolve(),
		Level:     h.s.Level,
		Character: h.s.Character,
	})

	if got := h.s.Current(); got != state.Victory {
		t.Errorf("state = %s, want victory", got)
	}
	if h.process(Move(world.East)) {
		t.Error("Process() after victory = true, want false")
	}
}

func TestAsleepActionWakes(t *testing.T) {
	h := newHarness(t, with(zombieAt(world.Pos(2, 1), 50)))
	if err := h.s.Sleep(context.Background()); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	h.events = nil

	if !h.process(Move(world.East)) {
		t.Fatal("Process() while asleep = false, want true")
	}
	if got := h.s.Current(); got != state.Playing {
		t.Errorf("state = %s, want playing", got)
	}
	if got := h.s.Character.Position; got != world.Pos(2, 2) {
		t.Errorf("sleeping character moved to %s", got)
	}
	if n := h.count(event.KindCharacterMoved); n != 0 {
		t.Errorf("CharacterMoved published %d times, want 0", n)
	}
	attacks := h.attacks()
	if len(attacks) != 1 || attacks[0].Attacker != event.RoleEnemy {
		t.Errorf("attacks = %+v, want one enemy turn", attacks)
	}
}

func TestOneAttackOneRecord(t *testing.T) {
	// Player hits for 10, zombie survives and hits back for 5.
	h := newHarness(t, with(zombieAt(world.Pos(3, 2), 100)), 0.0, 0.6, 0.0, 0.6)

	if !h.process(Move(world.East)) {
		t.Fatal("Process() = false, want true")
	}
	st := h.s.Stats()
	if st.AttacksMade != 1 || st.DamageDealt != 10 {
		t.Errorf("attacks made %d dealt %d, want 1 and 10", st.AttacksMade, st.DamageDealt)
	}
	if st.HitsTaken != 1 || st.DamageReceived != 5 {
		t.Errorf("hits taken %d received %d, want 1 and 5", st.HitsTaken, st.DamageReceived)
	}
	if n := len(h.attacks()); n != 2 {
		t.Errorf("AttackPerformed published %d times, want 2", n)
	}
	if got := h.s.Character.Position; got != world.Pos(2, 2) {
		t.Errorf("character moved into a living enemy: %s", got)
	}
}

func TestProcessRouting(t *testing.T) {
	tests := []struct {
		name     string
		action   PlayerAction
		consumed bool
		want     state.State
	}{
		{"none", None(), false, state.Playing},
		{"wall", Move(world.Direction{DX: 0, DY: -2}), false, state.Playing},
		{"long jump", Move(world.Direction{DX: 5, DY: 1}), false, state.Playing},
		{"long diagonal", Move(world.Direction{DX: 2, DY: -1}), false, state.Playing},
		{"no direction", Move(world.None), false, state.Playing},
		{"wait", Wait(), true, state.Playing},
		{"rotate", RotateRight(), false, state.Playing},
		{"toggle", ToggleMode(), false, state.Playing},
		{"empty food", Use(ActionUseFood), false, state.Playing},
		{"attack air", Attack(world.East), false, state.Playing},
		{"attack far", Attack(world.Direction{DX: 3}), false, state.Playing},
		{"interact far", Interact(world.Direction{DX: 7}), false, state.Playing},
		{"quit", Quit(), true, state.GameOver},
		{"stray select", Select(0), false, state.Playing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			if got := h.process(tt.action); got != tt.consumed {
				t.Errorf("Process() = %v, want %v", got, tt.consumed)
			}
			if got := h.s.Current(); got != tt.want {
				t.Errorf("state = %s, want %s", got, tt.want)
			}
			if got := h.s.Character.Position; got != world.Pos(2, 2) {
				t.Errorf("Position = %s, want (2, 2)", got)
			}
		})
	}
}

func TestRotateAndToggleKeepViewsAligned(t *testing.T) {
	h := newHarness(t, nil)

	h.process(RotateRight())
	if got := h.s.Heading(); got != world.South {
		t.Errorf("Heading() = %s, want south", got)
	}
	h.process(ToggleMode())
	if h.s.Mode != camera.ModeFirstPerson {
		t.Fatalf("Mode = %s, want first_person", h.s.Mode)
	}

	// Forward in first person is a grid move along the heading.
	if !h.process(Move(h.s.Camera.Relative(0))) {
		t.Fatal("forward move refused")
	}
	if got := h.s.Character.Position; got != world.Pos(2, 3) {
		t.Errorf("Position = %s, want (2, 3)", got)
	}
	if h.s.Camera.Angle != 90 {
		t.Errorf("Angle = %v, want orientation kept at 90", h.s.Camera.Angle)
	}

	h.process(ToggleMode())
	if h.s.Mode != camera.ModeGrid {
		t.Errorf("Mode = %s, want grid", h.s.Mode)
	}
	if err := h.s.ValidateAlignment(); err != nil {
		t.Errorf("ValidateAlignment() = %v", err)
	}
}

func TestLeavingFirstPersonFollowsCamera(t *testing.T) {
	h := newHarness(t, nil)
	h.process(ToggleMode())
	h.s.Camera.Coordinate = camera.Coordinate{X: 5.2, Y: 2.7}

	h.process(ToggleMode())
	if got := h.s.Character.Position; got != world.Pos(5, 2) {
		t.Errorf("Position = %s, want the camera cell (5, 2)", got)
	}
	if err := h.s.ValidateAlignment(); err != nil {
		t.Errorf("ValidateAlignment() = %v", err)
	}
}

func TestValidateAlignmentDetectsDrift(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Camera.Coordinate = camera.Coordinate{X: 8.5, Y: 1.5}

	err := h.s.ValidateAlignment()
	if !errors.Is(err, camera.ErrDesynchronized) {
		t.Errorf("ValidateAlignment() = %v, want ErrDesynchronized", err)
	}
}

func TestInteractUsesHeading(t *testing.T) {
	h := newHarness(t, with(zombieAt(world.Pos(3, 2), 100)), 0.0, 0.6)

	if !h.process(Interact(world.None)) {
		t.Fatal("Interact() with an enemy ahead = false, want true")
	}
	player := 0
	for _, a := range h.attacks() {
		if a.Attacker == event.RolePlayer {
			player++
		}
	}
	if player != 1 {
		t.Errorf("player attacks = %d, want 1", player)
	}

	h.process(RotateLeft())
	h.process(RotateLeft())
	if h.process(Interact(world.None)) {
		t.Error("Interact() facing an empty cell = true, want false")
	}
}
