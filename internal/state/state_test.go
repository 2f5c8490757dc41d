package state

import (
	"errors"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{Initializing, "initializing"},
		{Playing, "playing"},
		{Asleep, "asleep"},
		{ItemSelection, "item_selection"},
		{LevelTransition, "level_transition"},
		{GameOver, "game_over"},
		{Victory, "victory"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestParseStateRoundTrip(t *testing.T) {
	for _, s := range All {
		got, ok := ParseState(s.String())
		if !ok || got != s {
			t.Errorf("ParseState(%q) = %v, %v; want %v, true", s.String(), got, ok, s)
		}
	}
	if _, ok := ParseState("dancing"); ok {
		t.Error("ParseState(\"dancing\") should fail")
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from State
		to   State
		ok   bool
	}{
		{Initializing, Playing, true},
		{Initializing, GameOver, false},
		{Playing, Asleep, true},
		{Playing, ItemSelection, true},
		{Playing, LevelTransition, true},
		{Playing, GameOver, true},
		{Playing, Victory, true},
		{Playing, Playing, false},
		{Asleep, Playing, true},
		{Asleep, GameOver, false},
		{ItemSelection, Playing, true},
		{ItemSelection, LevelTransition, false},
		{LevelTransition, Playing, true},
		{LevelTransition, Victory, false},
		{GameOver, Playing, false},
		{GameOver, Victory, false},
		{Victory, GameOver, false},
		{Victory, Playing, false},
	}

	for _, tt := range tests {
		m := NewMachine()
		m.Restore(tt.from)
		err := m.TransitionTo(tt.to)
		if tt.ok {
			if err != nil {
				t.Errorf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("%s -> %s: Current() = %s", tt.from, tt.to, m.Current())
			}
			if m.Previous() != tt.from {
				t.Errorf("%s -> %s: Previous() = %s", tt.from, tt.to, m.Previous())
			}
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s -> %s: error = %v, want ErrInvalidTransition", tt.from, tt.to, err)
		}
		if m.Current() != tt.from {
			t.Errorf("%s -> %s: state mutated to %s on failure", tt.from, tt.to, m.Current())
		}
	}
}

func TestTransitionErrorDetails(t *testing.T) {
	m := NewMachine()
	m.Restore(GameOver)

	err := m.TransitionTo(Playing)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("TransitionTo() error = %v, want *TransitionError", err)
	}
	if te.From != GameOver || te.To != Playing {
		t.Errorf("TransitionError = %+v, want GameOver -> Playing", te)
	}
	if got := te.Error(); got != "invalid state transition game_over -> playing" {
		t.Errorf("Error() = %q", got)
	}
}

func TestTransitionIffAllowedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(All).Draw(t, "from")
		to := rapid.SampledFrom(All).Draw(t, "to")

		m := NewMachine()
		m.Restore(from)
		err := m.TransitionTo(to)

		allowed := false
		for _, s := range Allowed(from) {
			allowed = allowed || s == to
		}
		if allowed != (err == nil) {
			t.Fatalf("%s -> %s: allowed=%v err=%v", from, to, allowed, err)
		}
		if err != nil && m.Current() != from {
			t.Fatalf("failed transition mutated state to %s", m.Current())
		}
		if err == nil && m.Current() != to {
			t.Fatalf("successful transition left state %s", m.Current())
		}
	})
}

func TestRestoreAlwaysSucceedsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMachine()
		steps := rapid.SliceOf(rapid.SampledFrom(All)).Draw(t, "steps")
		for _, s := range steps {
			_ = m.TransitionTo(s)
		}

		target := rapid.SampledFrom(All).Draw(t, "target")
		m.Restore(target)
		if m.Current() != target {
			t.Fatalf("Restore(%s) left %s", target, m.Current())
		}
		if m.IsTerminal() != (target == GameOver || target == Victory) {
			t.Fatalf("IsTerminal() = %v for %s", m.IsTerminal(), target)
		}
	})
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, s := range []State{GameOver, Victory} {
		if len(Allowed(s)) != 0 {
			t.Errorf("Allowed(%s) = %v, want none", s, Allowed(s))
		}
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false", s)
		}
	}
}

func TestConcurrentReaders(t *testing.T) {
	m := NewMachine()
	if err := m.TransitionTo(Playing); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s := m.Current()
				if s != Playing && s != Asleep {
					t.Errorf("observed unexpected state %s", s)
					return
				}
			}
		}()
	}
	for j := 0; j < 500; j++ {
		_ = m.TransitionTo(Asleep)
		_ = m.TransitionTo(Playing)
	}
	wg.Wait()
}

func TestLegacyFlagsResolve(t *testing.T) {
	tests := []struct {
		name  string
		flags LegacyFlags
		want  State
	}{
		{"none", LegacyFlags{}, Playing},
		{"victory and game over", LegacyFlags{Victory: true, GameOver: true}, Victory},
		{"all set", LegacyFlags{Victory: true, GameOver: true, Asleep: true, PendingSelection: true}, Victory},
		{"game over and asleep", LegacyFlags{GameOver: true, Asleep: true}, GameOver},
		{"asleep", LegacyFlags{Asleep: true}, Asleep},
		{"asleep with selection", LegacyFlags{Asleep: true, PendingSelection: true}, Asleep},
		{"selection", LegacyFlags{PendingSelection: true}, ItemSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.Resolve(); got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFlagsForRoundTrip(t *testing.T) {
	for _, s := range []State{Playing, Asleep, ItemSelection, GameOver, Victory} {
		if got := FlagsFor(s).Resolve(); got != s {
			t.Errorf("FlagsFor(%s).Resolve() = %s", s, got)
		}
	}
}
