package camera

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/samdwyer/dualcrawl/internal/world"
)

type token struct {
	pos world.Position
}

func (t *token) GridPosition() world.Position { return t.pos }
func (t *token) MoveTo(p world.Position)      { t.pos = p }

func TestGridToContinuous(t *testing.T) {
	tests := []struct {
		p      world.Position
		offset float64
		want   Coordinate
	}{
		{world.Pos(0, 0), 0.5, Coordinate{0.5, 0.5}},
		{world.Pos(3, 7), 0.5, Coordinate{3.5, 7.5}},
		{world.Pos(3, 7), 0, Coordinate{3, 7}},
	}
	for _, tt := range tests {
		if got := GridToContinuous(tt.p, tt.offset); got != tt.want {
			t.Errorf("GridToContinuous(%s, %v) = %s, want %s", tt.p, tt.offset, got, tt.want)
		}
	}
}

func TestContinuousToGrid(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want world.Position
	}{
		{Coordinate{0.5, 0.5}, world.Pos(0, 0)},
		{Coordinate{3.999, 7.001}, world.Pos(3, 7)},
		{Coordinate{4, 7}, world.Pos(4, 7)},
		{Coordinate{-0.5, 1.2}, world.Pos(-1, 1)},
	}
	for _, tt := range tests {
		if got := ContinuousToGrid(tt.c); got != tt.want {
			t.Errorf("ContinuousToGrid(%s) = %s, want %s", tt.c, got, tt.want)
		}
	}
}

func TestSyncRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := world.Pos(rapid.IntRange(-200, 200).Draw(t, "x"), rapid.IntRange(-200, 200).Draw(t, "y"))
		offset := rapid.Float64Range(0, 0.999).Draw(t, "offset")
		angle := rapid.Float64Range(0, 359).Draw(t, "angle")

		s := Synchronizer{Offset: offset}
		tok := &token{pos: start}
		cam := &Camera{Angle: angle}

		s.SyncToContinuous(cam, tok, true)
		if err := s.ValidateAlignment(cam, tok); err != nil {
			t.Fatalf("ValidateAlignment() after SyncToContinuous: %v", err)
		}
		if cam.Angle != angle {
			t.Fatalf("angle changed to %v with orientation preserved", cam.Angle)
		}

		s.SyncToGrid(tok, cam)
		if tok.pos != start {
			t.Fatalf("round trip moved %s to %s", start, tok.pos)
		}
	})
}

func TestSyncToGridFollowsCamera(t *testing.T) {
	s := NewSynchronizer()
	tok := &token{pos: world.Pos(1, 1)}
	cam := &Camera{Coordinate: Coordinate{4.2, 2.9}}

	if got := s.SyncToGrid(tok, cam); got != world.Pos(4, 2) || tok.pos != world.Pos(4, 2) {
		t.Errorf("SyncToGrid() = %s, token at %s", got, tok.pos)
	}
}

func TestSyncToContinuousResetsOrientation(t *testing.T) {
	s := NewSynchronizer()
	cam := &Camera{Angle: 180}
	s.SyncToContinuous(cam, &token{pos: world.Pos(2, 2)}, false)
	if cam.Angle != 0 {
		t.Errorf("Angle = %v, want 0", cam.Angle)
	}
}

func TestValidateAlignmentDetectsDrift(t *testing.T) {
	s := NewSynchronizer()
	cam := New(world.Pos(5, 5))
	tok := &token{pos: world.Pos(6, 5)}

	err := s.ValidateAlignment(cam, tok)
	if !errors.Is(err, ErrDesynchronized) {
		t.Errorf("ValidateAlignment() = %v, want ErrDesynchronized", err)
	}
}

func TestRotateAndHeading(t *testing.T) {
	cam := New(world.Pos(0, 0))
	tests := []struct {
		deg  float64
		want world.Direction
	}{
		{90, world.South},
		{90, world.West},
		{90, world.North},
		{90, world.East},
		{-90, world.North},
		{-40, world.North},
		{-10, world.West},
	}
	for _, tt := range tests {
		cam.Rotate(tt.deg)
		if got := cam.Heading(); got != tt.want {
			t.Errorf("Rotate(%v) angle %v heading %s, want %s", tt.deg, cam.Angle, got, tt.want)
		}
		if cam.Angle < 0 || cam.Angle >= 360 {
			t.Errorf("Angle %v out of range", cam.Angle)
		}
	}
}

func TestRelative(t *testing.T) {
	cam := New(world.Pos(0, 0))
	cam.Rotate(270)
	tests := []struct {
		turns int
		want  world.Direction
	}{
		{0, world.North},
		{1, world.East},
		{2, world.South},
		{3, world.West},
		{-1, world.West},
	}
	for _, tt := range tests {
		if got := cam.Relative(tt.turns); got != tt.want {
			t.Errorf("Relative(%d) = %s, want %s", tt.turns, got, tt.want)
		}
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("3d")); err != nil || m != ModeFirstPerson {
		t.Errorf("UnmarshalText(3d) = %v, %v", m, err)
	}
	if m.Toggle() != ModeGrid {
		t.Error("Toggle() from first person should be grid")
	}
	if Mode(9).String() != "unknown" {
		t.Error("Mode(9).String() should be unknown")
	}
	if err := m.UnmarshalText([]byte("iso")); err == nil {
		t.Error("UnmarshalText(iso) should fail")
	}
}
