package ui

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/game"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// fakeCanvas records the last rune drawn in every cell.
type fakeCanvas struct {
	width, height int
	cells         map[world.Position]rune
	shown         int
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{width: w, height: h, cells: make(map[world.Position]rune)}
}

func (c *fakeCanvas) SetContent(x, y int, r rune, _ tcell.Style) {
	c.cells[world.Pos(x, y)] = r
}
func (c *fakeCanvas) Size() (int, int) { return c.width, c.height }
func (c *fakeCanvas) Clear()           { clear(c.cells) }
func (c *fakeCanvas) Show()            { c.shown++ }

func (c *fakeCanvas) row(y int) string {
	var b strings.Builder
	for x := range c.width {
		if r, ok := c.cells[world.Pos(x, y)]; ok {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func (c *fakeCanvas) contains(text string) bool {
	for y := range c.height {
		if strings.Contains(c.row(y), text) {
			return true
		}
	}
	return false
}

var hall = []string{
	"#########",
	"#.......#",
	"#.......#",
	"#########",
}

func hallSession(t *testing.T) *game.Session {
	t.Helper()
	d, err := world.FromRows(hall, []world.Room{{X: 1, Y: 1, Width: 7, Height: 2}})
	if err != nil {
		t.Fatalf("FromRows() error = %v", err)
	}
	s := game.NewSession(event.NewNotifier(telemetry.DiscardLogger()), game.Config{}, telemetry.DiscardLogger())
	s.Level = &level.Level{Number: 1, Dungeon: d, Start: world.Pos(1, 1), Exit: world.Pos(7, 2)}
	s.Character.MoveTo(world.Pos(1, 1))
	s.Camera = camera.New(world.Pos(1, 1))
	return s
}

func TestCast(t *testing.T) {
	d, err := world.FromRows(hall, nil)
	if err != nil {
		t.Fatalf("FromRows() error = %v", err)
	}
	east := camera.Camera{Coordinate: camera.Coordinate{X: 1.5, Y: 1.5}, FOV: camera.DefaultFOV}
	south := east
	south.Angle = 90

	tests := []struct {
		name string
		cam  camera.Camera
		dist float64
		side int
		cell world.Position
	}{
		{"down the hall", east, 6.5, 0, world.Pos(8, 1)},
		{"into the near wall", south, 1.5, 1, world.Pos(1, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rays := Cast(d, tt.cam, 1)
			if len(rays) != 1 {
				t.Fatalf("Cast() returned %d rays, want 1", len(rays))
			}
			got := rays[0]
			if math.Abs(got.Distance-tt.dist) > 1e-9 || got.Side != tt.side || got.Cell != tt.cell {
				t.Errorf("Cast() = %+v, want distance %v side %d cell %s", got, tt.dist, tt.side, tt.cell)
			}
		})
	}

	if rays := Cast(d, east, 0); rays != nil {
		t.Errorf("Cast() with no columns = %v, want nil", rays)
	}
}

func TestProject(t *testing.T) {
	cam := camera.Camera{Coordinate: camera.Coordinate{X: 1.5, Y: 1.5}, FOV: camera.DefaultFOV}

	col, depth, ok := project(cam, 4.5, 1.5, 10)
	if !ok || col != 5 || math.Abs(depth-3) > 1e-9 {
		t.Errorf("project(ahead) = %d, %v, %v, want 5, 3, true", col, depth, ok)
	}
	if _, _, ok := project(cam, 0.5, 1.5, 10); ok {
		t.Error("project(behind) reported visible")
	}
	if _, _, ok := project(cam, 2.5, 8.5, 10); ok {
		t.Error("project(far to the side) reported visible")
	}
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func special(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestInputMap(t *testing.T) {
	grid := ViewState{Mode: camera.ModeGrid}
	fp := ViewState{Mode: camera.ModeFirstPerson, Camera: camera.Camera{FOV: camera.DefaultFOV}}
	fpSouth := fp
	fpSouth.Camera.Angle = 90
	menu := ViewState{Selecting: true}
	weapons := ViewState{Selecting: true, AllowNone: true}

	tests := []struct {
		name string
		ev   *tcell.EventKey
		view ViewState
		want game.PlayerAction
	}{
		{"grid w", key('w'), grid, game.Move(world.North)},
		{"grid up", special(tcell.KeyUp), grid, game.Move(world.North)},
		{"grid left", special(tcell.KeyLeft), grid, game.Move(world.West)},
		{"first person w follows heading", key('w'), fp, game.Move(world.East)},
		{"first person a strafes", key('a'), fp, game.Move(world.North)},
		{"first person s facing south", key('s'), fpSouth, game.Move(world.North)},
		{"first person d facing south", key('d'), fpSouth, game.Move(world.West)},
		{"first person left rotates", special(tcell.KeyLeft), fp, game.RotateLeft()},
		{"first person right rotates", special(tcell.KeyRight), fp, game.RotateRight()},
		{"attack", key('W'), fp, game.Attack(world.East)},
		{"food", key('j'), grid, game.Use(game.ActionUseFood)},
		{"weapon", key('h'), grid, game.Use(game.ActionUseWeapon)},
		{"elixir", key('k'), grid, game.Use(game.ActionUseElixir)},
		{"scroll", key('e'), grid, game.Use(game.ActionUseScroll)},
		{"interact", key('f'), fp, game.Interact(world.Direction{})},
		{"wait", key(' '), grid, game.Wait()},
		{"toggle", special(tcell.KeyTab), grid, game.ToggleMode()},
		{"quit", key('q'), grid, game.Quit()},
		{"unbound", key('x'), grid, game.None()},
		{"select second", key('2'), menu, game.Select(1)},
		{"select none", key('0'), weapons, game.Select(game.NoneChoice)},
		{"none not offered", key('0'), menu, game.None()},
		{"cancel", special(tcell.KeyEscape), menu, game.Cancel()},
		{"movement ignored in menu", key('w'), menu, game.None()},
	}
	var in Input
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := in.Map(tt.ev, tt.view); got != tt.want {
				t.Errorf("Map() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewOf(t *testing.T) {
	s := hallSession(t)
	s.Pending = &game.SelectionRequest{Type: game.SelectWeapon, AllowNone: true}

	v := ViewOf(s)
	if !v.Selecting || !v.AllowNone || v.Mode != camera.ModeGrid {
		t.Errorf("ViewOf() = %+v", v)
	}
}

func TestLogAgesWithSteps(t *testing.T) {
	ctx := context.Background()
	l := NewLog()

	l.Handle(ctx, event.AttackPerformed{Attacker: event.RolePlayer, Target: "Zombie", Hit: true, Damage: 10})
	entries := l.Entries()
	if len(entries) != 1 || entries[0].Text != "HIT Zombie for 10 damage!" {
		t.Fatalf("Entries() = %+v", entries)
	}
	if m, ok := l.Marker(); !ok || m.Glyph != 'X' {
		t.Errorf("Marker() = %+v, %v, want X", m, ok)
	}

	l.Handle(ctx, event.CharacterMoved{Transition: true})
	if _, ok := l.Marker(); !ok {
		t.Error("placement on a level aged the marker")
	}
	l.Handle(ctx, event.CharacterMoved{})
	if _, ok := l.Marker(); ok {
		t.Error("marker still shown after a step")
	}
	for range 3 {
		l.Handle(ctx, event.CharacterMoved{})
	}
	if got := l.Entries(); len(got) != 0 {
		t.Errorf("Entries() after four steps = %+v, want none", got)
	}
}

func TestLogIsBoundedAndResetPerLevel(t *testing.T) {
	ctx := context.Background()
	n := event.NewNotifier(telemetry.DiscardLogger())
	l := NewLog()
	l.Attach(n)

	for range logCapacity + 3 {
		n.Publish(ctx, event.AttackPerformed{Attacker: event.RoleEnemy, Name: "Ghost"})
	}
	if got := len(l.Entries()); got != logCapacity {
		t.Errorf("entries = %d, want %d", got, logCapacity)
	}

	n.Publish(ctx, event.LevelGenerated{Number: 4})
	if got := len(l.Entries()); got != 0 || l.Level() != 4 {
		t.Errorf("after level change: entries %d level %d, want 0 and 4", got, l.Level())
	}
}

func TestRenderGrid(t *testing.T) {
	s := hallSession(t)
	s.Level.Items = []entity.Item{{Kind: entity.ItemTreasure, Value: 5, Position: world.Pos(3, 2)}}
	s.Messages.Add("Hello")
	c := newFakeCanvas(80, 8)

	NewRenderer(c, nil, nil).Render(s)

	if c.shown != 1 {
		t.Errorf("Show() called %d times, want 1", c.shown)
	}
	if got := c.row(1); !strings.HasPrefix(got, "#@......#") {
		t.Errorf("row 1 = %q", got)
	}
	if got := c.row(2); !strings.HasPrefix(got, "#..$...>#") {
		t.Errorf("row 2 = %q", got)
	}
	if !c.contains("HP 100/100") || !c.contains("[map]") {
		t.Errorf("status line missing: %q", c.row(5))
	}
	if !c.contains("Hello") {
		t.Error("message line missing")
	}
}

func TestRenderDoorsAndKeys(t *testing.T) {
	s := hallSession(t)
	s.Level.Doors = []level.Door{
		{Color: entity.KeyRed, Position: world.Pos(4, 1), Locked: true},
		{Color: entity.KeyBlue, Position: world.Pos(4, 2)},
	}
	s.Level.Items = []entity.Item{entity.NewKey(entity.KeyRed).At(world.Pos(2, 2))}
	s.Character.Backpack.Add(entity.NewKey(entity.KeyBlue))
	c := newFakeCanvas(120, 8)

	NewRenderer(c, nil, nil).Render(s)

	if got := c.row(1); !strings.HasPrefix(got, "#@..▣...#") {
		t.Errorf("row 1 = %q", got)
	}
	if got := c.row(2); !strings.HasPrefix(got, "#.k.□..>#") {
		t.Errorf("row 2 = %q", got)
	}
	status := c.row(5)
	if !strings.Contains(status, "[map]  k") {
		t.Errorf("status line %q does not list the carried key", status)
	}
}

func TestRenderHidesUnexploredCells(t *testing.T) {
	s := hallSession(t)
	fog := level.NewFog(9, 4)
	s.Level.Fog = fog
	s.Visibility = fog
	c := newFakeCanvas(20, 8)

	NewRenderer(c, nil, nil).Render(s)

	if got := c.row(1); strings.TrimSpace(got) != "" {
		t.Errorf("row 1 before any reveal = %q, want blank", got)
	}
}

func TestRenderSelection(t *testing.T) {
	s := hallSession(t)
	s.Pending = &game.SelectionRequest{
		Type:  game.SelectFood,
		Title: "Select Food to Consume",
		Items: []entity.Item{entity.NewFood(20)},
	}
	c := newFakeCanvas(40, 10)

	NewRenderer(c, nil, nil).Render(s)

	for _, want := range []string{"Select Food to Consume", "1) Food (+20 health)", "Esc) cancel"} {
		if !c.contains(want) {
			t.Errorf("selection box missing %q", want)
		}
	}
}

func TestRenderFirstPerson(t *testing.T) {
	s := hallSession(t)
	s.Mode = camera.ModeFirstPerson
	c := newFakeCanvas(90, 13)

	NewRenderer(c, nil, NewLog()).Render(s)

	horizon := (13 - hudHeight) / 2
	if got := c.cells[world.Pos(45, horizon)]; got != '+' {
		t.Errorf("crosshair = %q, want '+'", got)
	}
	walls := 0
	for _, r := range c.cells {
		if strings.ContainsRune(string(wallShades), r) {
			walls++
		}
	}
	if walls == 0 {
		t.Error("no wall drawn in first person")
	}
	if !c.contains("[3D facing east]") {
		t.Errorf("status line = %q", c.row(13-hudHeight))
	}
}
