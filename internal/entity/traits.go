package entity

import "github.com/samdwyer/dualcrawl/internal/world"

// Traits is the closed set of per-variant enemy state. Every variant carries
// its full field set, so behaviour code switches on the concrete type.
type Traits interface {
	isTraits()
}

// ZombieTraits has no special state.
type ZombieTraits struct{}

// VampireTraits tracks the guaranteed miss of the first attack against it.
type VampireTraits struct {
	FirstAttackPending bool `json:"first_attack_pending"`
}

// GhostTraits tracks teleport and invisibility timers.
type GhostTraits struct {
	Invisible            bool `json:"invisible"`
	TeleportCooldown     int  `json:"teleport_cooldown"`
	InvisibilityCooldown int  `json:"invisibility_cooldown"`
}

// OgreTraits tracks the rest after a hit and the counterattack that follows.
type OgreTraits struct {
	Resting           bool `json:"resting"`
	WillCounterattack bool `json:"will_counterattack"`
}

// SnakeMageTraits tracks the current diagonal heading.
type SnakeMageTraits struct {
	Diagonal          world.Direction `json:"diagonal"`
	DirectionCooldown int             `json:"direction_cooldown"`
}

// MimicTraits tracks the item disguise.
type MimicTraits struct {
	Disguised bool `json:"disguised"`
	Disguise  rune `json:"disguise"`
}

func (*ZombieTraits) isTraits()    {}
func (*VampireTraits) isTraits()   {}
func (*GhostTraits) isTraits()     {}
func (*OgreTraits) isTraits()      {}
func (*SnakeMageTraits) isTraits() {}
func (*MimicTraits) isTraits()     {}

// DefaultTraits returns fresh traits for a newly spawned enemy of kind.
func DefaultTraits(kind EnemyKind) Traits {
	switch kind {
	case Vampire:
		return &VampireTraits{FirstAttackPending: true}
	case Ghost:
		return &GhostTraits{}
	case Ogre:
		return &OgreTraits{}
	case SnakeMage:
		return &SnakeMageTraits{Diagonal: world.SouthEast}
	case Mimic:
		return &MimicTraits{Disguised: true, Disguise: ItemFood.Glyph()}
	default:
		return &ZombieTraits{}
	}
}
