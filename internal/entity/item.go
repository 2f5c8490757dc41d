package entity

import (
	"fmt"

	"github.com/samdwyer/dualcrawl/internal/world"
)

// ItemKind identifies what an item does.
type ItemKind int

const (
	// ItemTreasure is gold, tallied rather than stored.
	ItemTreasure ItemKind = iota
	// ItemFood restores health.
	ItemFood
	// ItemWeapon replaces the wielded weapon.
	ItemWeapon
	// ItemElixir raises a stat for a number of turns.
	ItemElixir
	// ItemScroll raises a stat permanently.
	ItemScroll
	// ItemKey opens doors of its color.
	ItemKey
)

// ItemKinds lists the kinds the player uses from the backpack.
var ItemKinds = []ItemKind{ItemFood, ItemWeapon, ItemElixir, ItemScroll}

// String returns the item kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemTreasure:
		return "treasure"
	case ItemFood:
		return "food"
	case ItemWeapon:
		return "weapon"
	case ItemElixir:
		return "elixir"
	case ItemScroll:
		return "scroll"
	case ItemKey:
		return "key"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ItemKind) UnmarshalText(text []byte) error {
	for _, kind := range append([]ItemKind{ItemTreasure, ItemKey}, ItemKinds...) {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown item kind %q", text)
}

// Glyph returns the map symbol for the kind.
func (k ItemKind) Glyph() rune {
	switch k {
	case ItemTreasure:
		return '$'
	case ItemFood:
		return '%'
	case ItemWeapon:
		return '('
	case ItemElixir:
		return '!'
	case ItemScroll:
		return '?'
	case ItemKey:
		return 'k'
	default:
		return '*'
	}
}

// Stat is a character attribute an elixir or scroll raises.
type Stat int

const (
	// StatStrength scales damage dealt.
	StatStrength Stat = iota
	// StatDexterity scales the chance to hit and be hit.
	StatDexterity
	// StatMaxHealth caps health.
	StatMaxHealth
)

// Stats lists the boostable attributes.
var Stats = []Stat{StatStrength, StatDexterity, StatMaxHealth}

// String returns the stat name.
func (s Stat) String() string {
	switch s {
	case StatStrength:
		return "strength"
	case StatDexterity:
		return "dexterity"
	case StatMaxHealth:
		return "max_health"
	default:
		return "unknown"
	}
}

// MarshalText encodes the stat by name.
func (s Stat) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stat name.
func (s *Stat) UnmarshalText(text []byte) error {
	for _, stat := range Stats {
		if stat.String() == string(text) {
			*s = stat
			return nil
		}
	}
	return fmt.Errorf("unknown stat %q", text)
}

// label is the human form used in messages.
func (s Stat) label() string {
	switch s {
	case StatStrength:
		return "Strength"
	case StatDexterity:
		return "Dexterity"
	case StatMaxHealth:
		return "Max Health"
	default:
		return "Unknown"
	}
}

// Item is anything that can lie on the floor or sit in the backpack.
// Value means: treasure worth, food healing, weapon strength bonus, or
// elixir/scroll stat bonus. Color is set on keys only.
type Item struct {
	Kind     ItemKind       `json:"kind"`
	Name     string         `json:"name,omitempty"`
	Value    int            `json:"value"`
	Stat     Stat           `json:"stat"`
	Duration int            `json:"duration,omitempty"`
	Color    KeyColor       `json:"color,omitzero"`
	Position world.Position `json:"position"`
}

// NewTreasure creates a treasure pile worth value.
func NewTreasure(value int) Item {
	return Item{Kind: ItemTreasure, Name: "Treasure", Value: value}
}

// NewFood creates food restoring healing health.
func NewFood(healing int) Item {
	return Item{Kind: ItemFood, Name: "Food", Value: healing}
}

// NewWeapon creates a weapon adding bonus to strength.
func NewWeapon(name string, bonus int) Item {
	return Item{Kind: ItemWeapon, Name: name, Value: bonus}
}

// NewElixir creates a temporary stat boost.
func NewElixir(stat Stat, bonus, duration int) Item {
	return Item{Kind: ItemElixir, Name: "Elixir", Stat: stat, Value: bonus, Duration: duration}
}

// NewScroll creates a permanent stat boost.
func NewScroll(stat Stat, bonus int) Item {
	return Item{Kind: ItemScroll, Name: "Scroll", Stat: stat, Value: bonus}
}

// At returns a copy of the item placed at p.
func (i Item) At(p world.Position) Item {
	i.Position = p
	return i
}

// Describe returns a one-line description for menus and pickup messages.
func (i Item) Describe() string {
	switch i.Kind {
	case ItemTreasure:
		return fmt.Sprintf("%d treasure", i.Value)
	case ItemFood:
		return fmt.Sprintf("food (heals %d HP)", i.Value)
	case ItemWeapon:
		return i.Name
	case ItemElixir:
		return fmt.Sprintf("elixir (%s +%d for %d turns)", i.Stat.label(), i.Value, i.Duration)
	case ItemScroll:
		return fmt.Sprintf("scroll (%s +%d)", i.Stat.label(), i.Value)
	case ItemKey:
		return i.Color.String() + " key"
	default:
		return "item"
	}
}
