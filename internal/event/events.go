// Package event defines domain events and the per-session notifier that delivers them.
package event

import (
	"github.com/samdwyer/dualcrawl/internal/camera"
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/state"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// Kind identifies an event variant for subscription.
type Kind int

const (
	// KindLevelGenerated marks a LevelGenerated event.
	KindLevelGenerated Kind = iota
	// KindCharacterMoved marks a CharacterMoved event.
	KindCharacterMoved
	// KindItemCollected marks an ItemCollected event.
	KindItemCollected
	// KindAttackPerformed marks an AttackPerformed event.
	KindAttackPerformed
	// KindEnemyDefeated marks an EnemyDefeated event.
	KindEnemyDefeated
	// KindItemUsed marks an ItemUsed event.
	KindItemUsed
	// KindStateChanged marks a StateChanged event.
	KindStateChanged
	// KindGameEnded marks a GameEnded event.
	KindGameEnded
)

// Kinds lists every variant.
var Kinds = []Kind{
	KindLevelGenerated, KindCharacterMoved, KindItemCollected, KindAttackPerformed,
	KindEnemyDefeated, KindItemUsed, KindStateChanged, KindGameEnded,
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLevelGenerated:
		return "level_generated"
	case KindCharacterMoved:
		return "character_moved"
	case KindItemCollected:
		return "item_collected"
	case KindAttackPerformed:
		return "attack_performed"
	case KindEnemyDefeated:
		return "enemy_defeated"
	case KindItemUsed:
		return "item_used"
	case KindStateChanged:
		return "state_changed"
	case KindGameEnded:
		return "game_ended"
	default:
		return "unknown"
	}
}

// Event is the closed set of domain events.
type Event interface {
	Kind() Kind
	isEvent()
}

// Role says who swung in an attack.
type Role int

const (
	// RolePlayer is the character attacking an enemy.
	RolePlayer Role = iota
	// RoleEnemy is an enemy attacking the character.
	RoleEnemy
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// LevelGenerated is published once a new level is in place.
type LevelGenerated struct {
	Level  *level.Level
	Start  world.Position
	Number int
}

// CharacterMoved is published once per applied character step or placement.
type CharacterMoved struct {
	From       world.Position
	To         world.Position
	Mode       camera.Mode
	Transition bool // placement on a new level rather than a step
}

// ItemCollected is published when an item enters the backpack.
type ItemCollected struct {
	Item entity.Item
}

// AttackPerformed is published once per resolved attack.
type AttackPerformed struct {
	Attacker Role
	Name     string // attacker display name
	Target   string // defender display name
	Hit      bool
	Damage   int
	Killed   bool
}

// EnemyDefeated is published once per enemy removed from the level.
type EnemyDefeated struct {
	Enemy    entity.Enemy
	Treasure entity.Item
}

// ItemUsed is published when a backpack item is consumed or equipped.
type ItemUsed struct {
	Item entity.Item
}

// StateChanged is published after a lifecycle transition made during play.
type StateChanged struct {
	From   state.State
	To     state.State
	Reason string
}

// GameEnded is published once when the session reaches a terminal state.
type GameEnded struct {
	Victory        bool
	Level          int
	Reason         string
	FinalHealth    int
	FinalStrength  int
	FinalDexterity int
}

func (LevelGenerated) Kind() Kind  { return KindLevelGenerated }
func (CharacterMoved) Kind() Kind  { return KindCharacterMoved }
func (ItemCollected) Kind() Kind   { return KindItemCollected }
func (AttackPerformed) Kind() Kind { return KindAttackPerformed }
func (EnemyDefeated) Kind() Kind   { return KindEnemyDefeated }
func (ItemUsed) Kind() Kind        { return KindItemUsed }
func (StateChanged) Kind() Kind    { return KindStateChanged }
func (GameEnded) Kind() Kind       { return KindGameEnded }

func (LevelGenerated) isEvent()  {}
func (CharacterMoved) isEvent()  {}
func (ItemCollected) isEvent()   {}
func (AttackPerformed) isEvent() {}
func (EnemyDefeated) isEvent()   {}
func (ItemUsed) isEvent()        {}
func (StateChanged) isEvent()    {}
func (GameEnded) isEvent()       {}
