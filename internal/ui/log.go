package ui

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dualcrawl/internal/event"
)

const (
	logCapacity = 6
	entryTurns  = 4
)

// Entry is one line of combat feedback.
type Entry struct {
	Text  string
	Color tcell.Color
	turns int
}

// Marker is the flash drawn over the view centre after a blow.
type Marker struct {
	Glyph rune
	Color tcell.Color
	turns int
}

// Log turns domain events into short-lived feedback lines and markers.
// Entries age by one on every step the character takes.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	marker  Marker
	level   int
}

// NewLog creates an empty feedback log.
func NewLog() *Log {
	return &Log{}
}

// Attach subscribes the log to the rendering feed of n.
func (l *Log) Attach(n *event.Notifier) {
	for _, kind := range []event.Kind{
		event.KindAttackPerformed,
		event.KindEnemyDefeated,
		event.KindItemCollected,
		event.KindLevelGenerated,
		event.KindCharacterMoved,
	} {
		n.Subscribe(kind, l)
	}
}

// Handle records ev.
func (l *Log) Handle(_ context.Context, ev event.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch e := ev.(type) {
	case event.AttackPerformed:
		switch {
		case e.Attacker == event.RoleEnemy && e.Hit:
			l.push(fmt.Sprintf("Took %d damage!", e.Damage), tcell.ColorRed)
			l.marker = Marker{Glyph: '!', Color: tcell.ColorRed, turns: 2}
		case e.Attacker == event.RoleEnemy:
			l.push(e.Name+" missed you", tcell.ColorGray)
		case e.Hit:
			l.push(fmt.Sprintf("HIT %s for %d damage!", e.Target, e.Damage), tcell.ColorOrangeRed)
			l.marker = Marker{Glyph: 'X', Color: tcell.ColorRed, turns: 1}
		default:
			l.push("Missed "+e.Target+"!", tcell.ColorYellow)
			l.marker = Marker{Glyph: 'o', Color: tcell.ColorYellow, turns: 1}
		}
	case event.EnemyDefeated:
		l.push(fmt.Sprintf("Killed %s! +%d treasure", e.Enemy.Name, e.Treasure.Value), tcell.ColorGreen)
		l.marker = Marker{Glyph: '*', Color: tcell.ColorGreen, turns: 2}
	case event.ItemCollected:
		name := e.Item.Name
		if name == "" {
			name = e.Item.Kind.String()
		}
		l.push("Picked up: "+name, tcell.ColorDarkCyan)
	case event.LevelGenerated:
		l.entries = l.entries[:0]
		l.marker = Marker{}
		l.level = e.Number
	case event.CharacterMoved:
		if !e.Transition {
			l.age()
		}
	}
	return nil
}

func (l *Log) push(text string, color tcell.Color) {
	l.entries = append(l.entries, Entry{Text: text, Color: color, turns: entryTurns})
	if over := len(l.entries) - logCapacity; over > 0 {
		l.entries = slices.Delete(l.entries, 0, over)
	}
}

func (l *Log) age() {
	l.entries = slices.DeleteFunc(l.entries, func(e Entry) bool {
		return e.turns <= 1
	})
	for i := range l.entries {
		l.entries[i].turns--
	}
	if l.marker.turns > 0 {
		l.marker.turns--
	}
}

// Entries returns the live lines, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Marker returns the active flash, if any.
func (l *Log) Marker() (Marker, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.marker, l.marker.turns > 0
}

// Level returns the number of the last level announced.
func (l *Log) Level() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}
