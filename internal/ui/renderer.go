package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/game"
	"github.com/samdwyer/dualcrawl/internal/gamedata"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// Rows below the view: status, message line and feedback.
const hudHeight = 3

// Score is one leaderboard line shown when a run ends.
type Score struct {
	Level    int
	Treasure int
	Victory  bool
	Reason   string
}

// Renderer draws a session on a canvas.
type Renderer struct {
	canvas Canvas
	log    *Log
	colors map[string]tcell.Color
	scores []Score
}

// NewRenderer creates a renderer. Enemy colours come from enemies; log may be
// nil.
func NewRenderer(canvas Canvas, enemies *gamedata.EnemyRegistry, log *Log) *Renderer {
	colors := make(map[string]tcell.Color)
	if enemies != nil {
		for _, def := range enemies.All() {
			colors[def.ID] = def.TCellColor()
		}
	}
	return &Renderer{canvas: canvas, log: log, colors: colors}
}

// SetScores sets the leaderboard drawn under the end-of-run banner.
func (r *Renderer) SetScores(scores []Score) {
	r.scores = scores
}

// Render draws the current frame and flushes it.
func (r *Renderer) Render(s *game.Session) {
	r.canvas.Clear()
	width, height := r.canvas.Size()
	viewHeight := max(height-hudHeight, 1)

	if s.Level != nil {
		if s.Mode == camera.ModeFirstPerson {
			r.renderFirstPerson(s, width, viewHeight)
		} else {
			r.renderGrid(s, width, viewHeight)
		}
	}
	r.renderHUD(s, width, viewHeight)
	if s.Pending != nil {
		r.renderSelection(s.Pending, width, viewHeight)
	}
	if s.IsTerminal() {
		r.renderBanner(s, width, viewHeight)
	}
	r.canvas.Show()
}

// visibility reports whether p is in view and whether it was ever seen.
func visibility(s *game.Session, p world.Position) (visible, explored bool) {
	fog := s.Level.Fog
	if s.Visibility == nil || fog == nil {
		return true, true
	}
	return fog.IsVisible(p), fog.IsExplored(p)
}

func (r *Renderer) renderGrid(s *game.Session, width, height int) {
	d := s.Level.Dungeon
	pos := s.Character.GridPosition()

	// Scroll so the character stays on screen when the map is larger.
	ox := clamp(pos.X-width/2, 0, max(d.Width-width, 0))
	oy := clamp(pos.Y-height/2, 0, max(d.Height-height, 0))

	for y := 0; y < min(height, d.Height); y++ {
		for x := 0; x < min(width, d.Width); x++ {
			p := world.Pos(x+ox, y+oy)
			visible, explored := visibility(s, p)
			if !explored {
				continue
			}
			tile := d.Tile(p)
			style := tileStyle(tile)
			if !visible {
				style = style.Dim(true)
			}
			r.canvas.SetContent(x, y, tile.Rune(), style)
		}
	}

	draw := func(p world.Position, glyph rune, style tcell.Style) {
		if visible, _ := visibility(s, p); !visible {
			return
		}
		if x, y := p.X-ox, p.Y-oy; x >= 0 && x < width && y >= 0 && y < height {
			r.canvas.SetContent(x, y, glyph, style)
		}
	}

	draw(s.Level.Exit, '>', tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	for _, door := range s.Level.Doors {
		draw(door.Position, doorGlyph(door), keyStyle(door.Color))
	}
	for _, item := range s.Level.Items {
		draw(item.Position, item.Kind.Glyph(), styleOf(item))
	}
	for _, e := range s.Level.LivingEnemies() {
		if g, ok := e.Traits.(*entity.GhostTraits); ok && g.Invisible {
			continue
		}
		draw(e.Position, e.DisplayGlyph(), r.enemyStyle(e))
	}
	draw(pos, '@', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
}

// Wall shading from near to far.
var wallShades = []rune{'█', '▓', '▒', '░'}

func (r *Renderer) renderFirstPerson(s *game.Session, width, height int) {
	cam := *s.Camera
	rays := Cast(s.Level.Dungeon, cam, width)
	horizon := height / 2

	for x, ray := range rays {
		wall := min(int(float64(height)/ray.Distance), height)
		top := horizon - wall/2
		shade := wallShades[min(int(ray.Distance/2.5), len(wallShades)-1)]
		style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
		if ray.Side == 1 {
			style = style.Foreground(tcell.ColorGray)
		}
		if ray.Cell == s.Level.Exit {
			style = style.Foreground(tcell.ColorWhite)
		}
		for y := range height {
			switch {
			case y >= top && y < top+wall:
				r.canvas.SetContent(x, y, shade, style)
			case y >= horizon:
				r.canvas.SetContent(x, y, '.', tcell.StyleDefault.Foreground(tcell.ColorDarkGray))
			}
		}
	}

	sprite := func(p world.Position, glyph rune, style tcell.Style) {
		if visible, _ := visibility(s, p); !visible {
			return
		}
		c := camera.GridToContinuous(p, camera.DefaultOffset)
		col, depth, ok := project(cam, c.X, c.Y, width)
		if !ok || depth >= rays[col].Distance {
			return
		}
		y := min(horizon+int(float64(height)/(depth*4)), height-1)
		r.canvas.SetContent(col, y, glyph, style)
	}
	if s.Level.Exit != s.Character.GridPosition() {
		sprite(s.Level.Exit, '>', tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	}
	for _, door := range s.Level.Doors {
		if door.Locked {
			sprite(door.Position, doorGlyph(door), keyStyle(door.Color))
		}
	}
	for _, item := range s.Level.Items {
		sprite(item.Position, item.Kind.Glyph(), styleOf(item))
	}
	for _, e := range s.Level.LivingEnemies() {
		if g, ok := e.Traits.(*entity.GhostTraits); ok && g.Invisible {
			continue
		}
		sprite(e.Position, e.DisplayGlyph(), r.enemyStyle(e))
	}

	// Crosshair, replaced by the feedback marker after a blow.
	cx, cy := width/2, horizon
	if m, ok := r.marker(); ok {
		r.canvas.SetContent(cx, cy, m.Glyph, tcell.StyleDefault.Foreground(m.Color).Bold(true))
	} else {
		r.canvas.SetContent(cx, cy, '+', tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
}

func (r *Renderer) marker() (Marker, bool) {
	if r.log == nil {
		return Marker{}, false
	}
	return r.log.Marker()
}

func (r *Renderer) renderHUD(s *game.Session, width, top int) {
	c := s.Character
	weapon := "none"
	if c.Weapon != nil {
		weapon = fmt.Sprintf("%s(+%d)", c.Weapon.Name, c.Weapon.Value)
	}
	status := fmt.Sprintf("Level %d/%d  HP %d/%d  Str %d  Dex %d  Weapon %s  Gold %d  %s",
		s.LevelNumber(), s.MaxLevels(), c.Health, c.MaxHealth, c.Strength, c.Dexterity,
		weapon, c.Backpack.Treasure, viewLabel(s))
	healthStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	if c.Health*4 <= c.MaxHealth {
		healthStyle = healthStyle.Foreground(tcell.ColorRed)
	}
	r.text(0, top, status, width, healthStyle)
	x := len([]rune(status)) + 2
	for _, color := range c.Backpack.Keys() {
		if x >= width {
			break
		}
		r.canvas.SetContent(x, top, entity.ItemKey.Glyph(), keyStyle(color))
		x++
	}
	r.text(0, top+1, s.Messages.Current(), width, tcell.StyleDefault.Foreground(tcell.ColorLightGray))

	if r.log == nil {
		return
	}
	x = 0
	for _, e := range r.log.Entries() {
		r.text(x, top+2, e.Text, width-x, tcell.StyleDefault.Foreground(e.Color))
		x += len([]rune(e.Text)) + 2
		if x >= width {
			break
		}
	}
}

func viewLabel(s *game.Session) string {
	if s.Mode == camera.ModeFirstPerson {
		return "[3D facing " + headingName(s.Heading()) + "]"
	}
	return "[map]"
}

func headingName(d world.Direction) string {
	switch d {
	case world.North:
		return "north"
	case world.South:
		return "south"
	case world.West:
		return "west"
	default:
		return "east"
	}
}

func (r *Renderer) renderSelection(req *game.SelectionRequest, width, height int) {
	lines := []string{req.Title}
	if req.AllowNone {
		lines = append(lines, "0) none")
	}
	for i, item := range req.Items {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, describe(item)))
	}
	lines = append(lines, "Esc) cancel")

	boxWidth := 0
	for _, l := range lines {
		boxWidth = max(boxWidth, len([]rune(l)))
	}
	boxWidth = min(boxWidth+4, width)
	x0 := max((width-boxWidth)/2, 0)
	y0 := max((height-len(lines))/2-1, 0)
	style := tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	for i := range len(lines) + 2 {
		r.text(x0, y0+i, strings.Repeat(" ", boxWidth), boxWidth, style)
	}
	for i, l := range lines {
		r.text(x0+2, y0+1+i, l, boxWidth-2, style)
	}
}

func describe(item entity.Item) string {
	switch item.Kind {
	case entity.ItemFood:
		return fmt.Sprintf("Food (+%d health)", item.Value)
	case entity.ItemWeapon:
		return fmt.Sprintf("%s (+%d strength)", item.Name, item.Value)
	case entity.ItemElixir:
		return fmt.Sprintf("Elixir of %s (+%d for %d turns)", item.Stat, item.Value, item.Duration)
	case entity.ItemScroll:
		return fmt.Sprintf("Scroll of %s (+%d)", item.Stat, item.Value)
	case entity.ItemKey:
		return item.Describe()
	default:
		return fmt.Sprintf("%s (%d)", item.Kind, item.Value)
	}
}

func (r *Renderer) renderBanner(s *game.Session, width, height int) {
	text := "GAME OVER - press any key"
	style := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	if s.Current() == state.Victory {
		text = "VICTORY! - press any key"
		style = style.Foreground(tcell.ColorGold)
	}
	y := max(height/2-len(r.scores)/2-1, 0)
	r.text(max((width-len(text))/2, 0), y, text, width, style)

	for i, sc := range r.scores {
		outcome := sc.Reason
		if sc.Victory {
			outcome = "Victory"
		}
		line := fmt.Sprintf("%d. Level %-2d %5d gold  %s", i+1, sc.Level, sc.Treasure, outcome)
		r.text(max((width-len(line))/2, 0), y+2+i, line, width, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}
}

// text writes s from (x, y), clipped to width cells.
func (r *Renderer) text(x, y int, s string, width int, style tcell.Style) {
	i := 0
	for _, ch := range s {
		if i >= width {
			return
		}
		r.canvas.SetContent(x+i, y, ch, style)
		i++
	}
}

// tileStyle returns the appropriate style for a tile type.
func tileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TileFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case world.TileCorridor:
		return tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	default:
		return tcell.StyleDefault
	}
}

func doorGlyph(d level.Door) rune {
	if d.Locked {
		return '▣'
	}
	return '□'
}

var keyColors = map[entity.KeyColor]tcell.Color{
	entity.KeyRed:    tcell.ColorRed,
	entity.KeyBlue:   tcell.ColorBlue,
	entity.KeyYellow: tcell.ColorYellow,
	entity.KeyGreen:  tcell.ColorGreen,
	entity.KeyPurple: tcell.ColorPurple,
}

func keyStyle(c entity.KeyColor) tcell.Style {
	color, ok := keyColors[c]
	if !ok {
		color = tcell.ColorWhite
	}
	return tcell.StyleDefault.Foreground(color).Bold(true)
}

func styleOf(item entity.Item) tcell.Style {
	if item.Kind == entity.ItemKey {
		return keyStyle(item.Color)
	}
	return itemStyle(item.Kind)
}

func itemStyle(kind entity.ItemKind) tcell.Style {
	switch kind {
	case entity.ItemTreasure:
		return tcell.StyleDefault.Foreground(tcell.ColorGold)
	case entity.ItemFood:
		return tcell.StyleDefault.Foreground(tcell.ColorGreenYellow)
	case entity.ItemWeapon:
		return tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
	case entity.ItemElixir:
		return tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	case entity.ItemScroll:
		return tcell.StyleDefault.Foreground(tcell.ColorWheat)
	default:
		return tcell.StyleDefault
	}
}

func (r *Renderer) enemyStyle(e *entity.Enemy) tcell.Style {
	if e.IsHidden() {
		for _, kind := range entity.ItemKinds {
			if kind.Glyph() == e.DisplayGlyph() {
				return itemStyle(kind)
			}
		}
	}
	color, ok := r.colors[e.Kind.String()]
	if !ok {
		color = tcell.ColorRed
	}
	return tcell.StyleDefault.Foreground(color).Bold(true)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
