// Package level holds the content of one dungeon floor and builds new ones.
package level

import (
	"math/rand"
	"slices"

	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// Level is one floor: layout, occupants and loot.
type Level struct {
	Number    int
	Dungeon   *world.Dungeon
	Start     world.Position
	Exit      world.Position
	StartRoom int
	ExitRoom  int
	Enemies   []*entity.Enemy
	Items     []entity.Item
	Doors     []Door
	Fog       *Fog
}

// IsWalkable reports whether p is floor or corridor and not behind a locked door.
func (l *Level) IsWalkable(p world.Position) bool {
	if !l.Dungeon.IsPassable(p) {
		return false
	}
	d := l.DoorAt(p)
	return d == nil || !d.Locked
}

// IsExit reports whether p is the stairs down.
func (l *Level) IsExit(p world.Position) bool {
	return p == l.Exit
}

// EnemyAt returns the living enemy on p, or nil.
func (l *Level) EnemyAt(p world.Position) *entity.Enemy {
	for _, e := range l.Enemies {
		if e.IsAlive() && e.Position == p {
			return e
		}
	}
	return nil
}

// LivingEnemies returns the enemies still alive, in spawn order.
func (l *Level) LivingEnemies() []*entity.Enemy {
	out := make([]*entity.Enemy, 0, len(l.Enemies))
	for _, e := range l.Enemies {
		if e.IsAlive() {
			out = append(out, e)
		}
	}
	return out
}

// RemoveEnemy drops e from the level. Returns false if it was not present.
func (l *Level) RemoveEnemy(e *entity.Enemy) bool {
	i := slices.Index(l.Enemies, e)
	if i < 0 {
		return false
	}
	l.Enemies = slices.Delete(l.Enemies, i, i+1)
	return true
}

// ItemAt returns the item lying on p.
func (l *Level) ItemAt(p world.Position) (entity.Item, bool) {
	for _, it := range l.Items {
		if it.Position == p {
			return it, true
		}
	}
	return entity.Item{}, false
}

// TakeItem removes and returns the item lying on p.
func (l *Level) TakeItem(p world.Position) (entity.Item, bool) {
	for i, it := range l.Items {
		if it.Position == p {
			l.Items = slices.Delete(l.Items, i, i+1)
			return it, true
		}
	}
	return entity.Item{}, false
}

// DropItem places item on the floor at its position.
func (l *Level) DropItem(item entity.Item) {
	l.Items = append(l.Items, item)
}

// IsFree reports whether p is walkable and holds no enemy, item or stairs.
func (l *Level) IsFree(p world.Position) bool {
	if !l.IsWalkable(p) || l.IsExit(p) {
		return false
	}
	if _, ok := l.ItemAt(p); ok {
		return false
	}
	for _, e := range l.Enemies {
		if e.Position == p {
			return false
		}
	}
	return true
}

// FreeNeighbor returns a free cell orthogonally adjacent to p.
func (l *Level) FreeNeighbor(p world.Position) (world.Position, bool) {
	for _, d := range world.Cardinals {
		if n := p.Add(d); l.IsFree(n) {
			return n, true
		}
	}
	return world.Position{}, false
}

// PlaceEmergencyFood drops a food item next to p, or elsewhere in p's room.
func (l *Level) PlaceEmergencyFood(rng *rand.Rand, p world.Position, healing int) bool {
	room := l.Dungeon.RoomIndexAt(p)
	if room < 0 {
		return false
	}
	for _, d := range world.Cardinals {
		n := p.Add(d)
		if l.Dungeon.Rooms[room].Contains(n) && l.IsFree(n) {
			l.DropItem(entity.NewFood(healing).At(n))
			return true
		}
	}
	for range 5 {
		n, ok := l.Dungeon.RandomPointInRoom(rng, room)
		if ok && n != p && l.IsFree(n) {
			l.DropItem(entity.NewFood(healing).At(n))
			return true
		}
	}
	return false
}
