package entity

import (
	"fmt"

	"github.com/samdwyer/dualcrawl/internal/gamedata"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// EnemyKind identifies an enemy variant.
type EnemyKind int

const (
	// Zombie is slow and sturdy.
	Zombie EnemyKind = iota
	// Vampire drains maximum health and deflects the first strike.
	Vampire
	// Ghost teleports within its room and turns invisible.
	Ghost
	// Ogre covers two cells a turn and rests after landing a hit.
	Ogre
	// SnakeMage moves diagonally and can put the player to sleep.
	SnakeMage
	// Mimic lies disguised as an item until disturbed.
	Mimic
)

// EnemyKinds lists every variant.
var EnemyKinds = []EnemyKind{Zombie, Vampire, Ghost, Ogre, SnakeMage, Mimic}

// String returns the data identifier of the kind.
func (k EnemyKind) String() string {
	switch k {
	case Zombie:
		return "zombie"
	case Vampire:
		return "vampire"
	case Ghost:
		return "ghost"
	case Ogre:
		return "ogre"
	case SnakeMage:
		return "snake_mage"
	case Mimic:
		return "mimic"
	default:
		return "unknown"
	}
}

// ParseEnemyKind maps a data identifier to a kind.
func ParseEnemyKind(id string) (EnemyKind, error) {
	for _, k := range EnemyKinds {
		if k.String() == id {
			return k, nil
		}
	}
	return Zombie, fmt.Errorf("unknown enemy kind %q", id)
}

// MarshalText encodes the kind by name.
func (k EnemyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *EnemyKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEnemyKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Enemy is a hostile creature on the current level.
type Enemy struct {
	ID        int
	Kind      EnemyKind
	Name      string
	Glyph     rune
	Position  world.Position
	Health    int
	MaxHealth int
	Strength  int
	Dexterity int
	Hostility int
	Chasing   bool
	Traits    Traits
}

// NewEnemyFromDef creates an enemy from a data-driven definition.
func NewEnemyFromDef(def *gamedata.EnemyDef, p world.Position) (*Enemy, error) {
	kind, err := ParseEnemyKind(def.ID)
	if err != nil {
		return nil, err
	}
	return &Enemy{
		Kind:      kind,
		Name:      def.Name,
		Glyph:     def.GlyphRune(),
		Position:  p,
		Health:    def.Health,
		MaxHealth: def.Health,
		Strength:  def.Strength,
		Dexterity: def.Dexterity,
		Hostility: def.Hostility,
		Traits:    DefaultTraits(kind),
	}, nil
}

// IsAlive returns true while health is above zero.
func (e *Enemy) IsAlive() bool {
	return e.Health > 0
}

// Power returns the enemy's damage stat.
func (e *Enemy) Power() int {
	return e.Strength
}

// Agility returns dexterity.
func (e *Enemy) Agility() int {
	return e.Dexterity
}

// TakeDamage reduces health, flooring at zero. Returns damage actually taken.
func (e *Enemy) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	taken := min(amount, e.Health)
	e.Health -= taken
	return taken
}

// MoveTo places the enemy on p.
func (e *Enemy) MoveTo(p world.Position) {
	e.Position = p
}

// Scale multiplies health, strength and dexterity by factor.
func (e *Enemy) Scale(factor float64) {
	e.MaxHealth = max(1, int(float64(e.MaxHealth)*factor))
	e.Health = e.MaxHealth
	e.Strength = int(float64(e.Strength) * factor)
	e.Dexterity = int(float64(e.Dexterity) * factor)
}

// IsHidden reports whether the enemy currently shows as something else or nothing.
func (e *Enemy) IsHidden() bool {
	switch t := e.Traits.(type) {
	case *MimicTraits:
		return t.Disguised
	case *GhostTraits:
		return t.Invisible
	}
	return false
}

// DisplayGlyph returns what the map shows at the enemy's cell.
func (e *Enemy) DisplayGlyph() rune {
	if t, ok := e.Traits.(*MimicTraits); ok && t.Disguised {
		return t.Disguise
	}
	return e.Glyph
}
