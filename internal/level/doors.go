package level

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// ErrKeyPlacement reports a level whose keys could not be laid out so that
// each is reachable before its door.
var ErrKeyPlacement = errors.New("key placement failed")

// Key distribution by level tier.
const (
	TierOneMaxLevel = 7
	TierTwoMaxLevel = 14
	TierOneKeys     = 3
	TierTwoKeys     = 4
	TierThreeKeys   = 5

	keyPlacementAttempts = 15
)

// Door blocks a corridor until it is opened with the key of its color.
type Door struct {
	Color    entity.KeyColor `json:"color"`
	Position world.Position  `json:"position"`
	Locked   bool            `json:"locked"`
}

// DoorAt returns the door on p, or nil.
func (l *Level) DoorAt(p world.Position) *Door {
	for i := range l.Doors {
		if l.Doors[i].Position == p {
			return &l.Doors[i]
		}
	}
	return nil
}

// KeyCount returns how many colored keys level number receives.
func KeyCount(number int) int {
	switch {
	case number <= TierOneMaxLevel:
		return TierOneKeys
	case number <= TierTwoMaxLevel:
		return TierTwoKeys
	default:
		return TierThreeKeys
	}
}

// reachable floods from the start through open cells, picking up every key
// it passes until no new door opens. It returns the cells reached and the
// colors collected along the way.
func reachable(l *Level, held []entity.KeyColor) (map[world.Position]bool, map[entity.KeyColor]bool) {
	have := make(map[entity.KeyColor]bool, len(held))
	for _, c := range held {
		have[c] = true
	}
	for {
		reach := world.Flood(l.Start, func(p world.Position) bool {
			if !l.Dungeon.IsPassable(p) {
				return false
			}
			d := l.DoorAt(p)
			return d == nil || !d.Locked || have[d.Color]
		})
		found := false
		for _, it := range l.Items {
			if it.Kind == entity.ItemKey && reach[it.Position] && !have[it.Color] {
				have[it.Color] = true
				found = true
			}
		}
		if !found {
			return reach, have
		}
	}
}

// checkKeys verifies that the exit can be reached and that every locked
// door's key is found before the door is needed.
func checkKeys(l *Level, held []entity.KeyColor) error {
	reach, have := reachable(l, held)
	for _, d := range l.Doors {
		if d.Locked && !have[d.Color] {
			return fmt.Errorf("%w: %s key for the door at %s cannot be reached", ErrInvalidLayout, d.Color, d.Position)
		}
	}
	if !reach[l.Exit] {
		return fmt.Errorf("%w: exit %s unreachable from %s", ErrInvalidLayout, l.Exit, l.Start)
	}
	return nil
}

// doorCandidates lists corridor cells that form a one-cell passage into a
// room other than the start room.
func doorCandidates(l *Level) []world.Position {
	d := l.Dungeon
	var out []world.Position
	for y := range d.Height {
		for x := range d.Width {
			p := world.Pos(x, y)
			if d.Tile(p) != world.TileCorridor {
				continue
			}
			open, entrance, nearStart := 0, false, false
			for _, dir := range world.Cardinals {
				n := p.Add(dir)
				if !d.IsPassable(n) {
					continue
				}
				open++
				switch room := d.RoomIndexAt(n); {
				case room == l.StartRoom:
					nearStart = true
				case room >= 0:
					entrance = true
				}
			}
			if open == 2 && entrance && !nearStart {
				out = append(out, p)
			}
		}
	}
	return out
}

// placeKeys locks doors on the level and drops their keys so that every key
// lies on the start side of its own door. Layouts too small for a key room
// other than the start and exit rooms get fewer keys.
func placeKeys(rng *rand.Rand, l *Level) error {
	count := min(KeyCount(l.Number), len(l.Dungeon.Rooms)-2)
	if count <= 0 {
		return nil
	}
	colors := entity.KeyColors[:count]
	candidates := doorCandidates(l)
	if len(candidates) < count {
		return fmt.Errorf("%w: %d door sites for %d keys", ErrKeyPlacement, len(candidates), count)
	}

	for range keyPlacementAttempts {
		doors, keys, ok := tryPlaceKeys(rng, l, colors, candidates)
		if !ok {
			continue
		}
		trial := *l
		trial.Doors = doors
		trial.Items = append(append([]entity.Item(nil), l.Items...), keys...)
		if checkKeys(&trial, nil) == nil {
			l.Doors = doors
			l.Items = trial.Items
			return nil
		}
	}
	return fmt.Errorf("%w: level %d after %d attempts", ErrKeyPlacement, l.Number, keyPlacementAttempts)
}

func tryPlaceKeys(rng *rand.Rand, l *Level, colors []entity.KeyColor, candidates []world.Position) ([]Door, []entity.Item, bool) {
	sites := append([]world.Position(nil), candidates...)
	rng.Shuffle(len(sites), func(i, j int) { sites[i], sites[j] = sites[j], sites[i] })

	doors := make([]Door, 0, len(colors))
	for _, p := range sites {
		if len(doors) == len(colors) {
			break
		}
		if nextToDoor(doors, p) {
			continue
		}
		doors = append(doors, Door{Color: colors[len(doors)], Position: p, Locked: true})
	}
	if len(doors) < len(colors) {
		return nil, nil, false
	}

	keys := make([]entity.Item, 0, len(colors))
	perRoom := make(map[int]int)
	taken := make(map[world.Position]bool)
	for _, door := range doors {
		// Rooms reachable with only this door shut.
		reach := world.Flood(l.Start, func(p world.Position) bool {
			return p != door.Position && l.Dungeon.IsPassable(p)
		})
		var rooms []int
		fewest := -1
		for i, room := range l.Dungeon.Rooms {
			if i == l.StartRoom || i == l.ExitRoom || !reach[room.Center()] {
				continue
			}
			switch n := perRoom[i]; {
			case fewest < 0 || n < fewest:
				fewest, rooms = n, []int{i}
			case n == fewest:
				rooms = append(rooms, i)
			}
		}
		if len(rooms) == 0 {
			return nil, nil, false
		}
		room := rooms[rng.Intn(len(rooms))]
		p, ok := keyCell(rng, l, room, taken)
		if !ok {
			return nil, nil, false
		}
		taken[p] = true
		perRoom[room]++
		keys = append(keys, entity.NewKey(door.Color).At(p))
	}
	return doors, keys, true
}

func nextToDoor(doors []Door, p world.Position) bool {
	for _, d := range doors {
		if d.Position.Chebyshev(p) <= 1 {
			return true
		}
	}
	return false
}

func keyCell(rng *rand.Rand, l *Level, room int, taken map[world.Position]bool) (world.Position, bool) {
	for range placementAttempts {
		p, ok := l.Dungeon.RandomPointInRoom(rng, room)
		if ok && !taken[p] && p != l.Start && l.IsFree(p) {
			return p, true
		}
	}
	return world.Position{}, false
}
