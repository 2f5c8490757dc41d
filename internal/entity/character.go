// Package entity provides the player character, enemies and items.
package entity

import (
	"fmt"

	"github.com/samdwyer/dualcrawl/internal/world"
)

// Starting character attributes.
const (
	InitialHealth    = 100
	InitialStrength  = 10
	InitialDexterity = 10

	// minHealthAfterExpiry keeps an expiring max-health elixir from killing.
	minHealthAfterExpiry = 1
)

// ActiveElixir is a temporary boost still in effect.
type ActiveElixir struct {
	Stat           Stat `json:"stat"`
	Bonus          int  `json:"bonus"`
	RemainingTurns int  `json:"remaining_turns"`
}

// Character is the player-controlled adventurer.
type Character struct {
	Position  world.Position `json:"position"`
	Health    int            `json:"health"`
	MaxHealth int            `json:"max_health"`
	Strength  int            `json:"strength"`
	Dexterity int            `json:"dexterity"`
	Weapon    *Item          `json:"weapon,omitempty"`
	Backpack  Backpack       `json:"backpack"`
	Elixirs   []ActiveElixir `json:"elixirs,omitempty"`
}

// NewCharacter creates a character with starting stats at p.
func NewCharacter(p world.Position) *Character {
	return &Character{
		Position:  p,
		Health:    InitialHealth,
		MaxHealth: InitialHealth,
		Strength:  InitialStrength,
		Dexterity: InitialDexterity,
		Backpack:  NewBackpack(),
	}
}

// Name returns the display name used in combat messages.
func (c *Character) Name() string {
	return "You"
}

// IsAlive returns true while health is above zero.
func (c *Character) IsAlive() bool {
	return c.Health > 0
}

// GridPosition returns a copy of the character's cell.
func (c *Character) GridPosition() world.Position {
	return c.Position
}

// MoveTo places the character on p.
func (c *Character) MoveTo(p world.Position) {
	c.Position = p
}

// WeaponBonus returns the equipped weapon's strength bonus.
func (c *Character) WeaponBonus() int {
	if c.Weapon == nil {
		return 0
	}
	return c.Weapon.Value
}

// Power returns strength plus weapon bonus.
func (c *Character) Power() int {
	return c.Strength + c.WeaponBonus()
}

// Agility returns dexterity.
func (c *Character) Agility() int {
	return c.Dexterity
}

// TakeDamage reduces health, flooring at zero. Returns damage actually taken.
func (c *Character) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	taken := min(amount, c.Health)
	c.Health -= taken
	return taken
}

// Heal restores health up to the maximum. Returns the amount healed.
func (c *Character) Heal(amount int) int {
	before := c.Health
	c.Health = min(c.MaxHealth, c.Health+amount)
	return c.Health - before
}

// DrainMaxHealth permanently lowers maximum health, never below one.
func (c *Character) DrainMaxHealth(amount int) int {
	drained := min(amount, c.MaxHealth-1)
	if drained < 0 {
		drained = 0
	}
	c.MaxHealth -= drained
	c.Health = min(c.Health, c.MaxHealth)
	return drained
}

// Eat consumes a food item.
func (c *Character) Eat(food Item) string {
	healed := c.Heal(food.Value)
	return fmt.Sprintf("Ate food and restored %d HP!", healed)
}

// Equip wields weapon and returns the previously wielded one, if any.
func (c *Character) Equip(weapon Item) (*Item, string) {
	old := c.Weapon
	c.Weapon = &weapon
	if old != nil {
		return old, fmt.Sprintf("Equipped %s, unequipped %s", weapon.Name, old.Name)
	}
	return nil, fmt.Sprintf("Equipped %s", weapon.Name)
}

// Unequip removes the wielded weapon.
func (c *Character) Unequip() (*Item, string) {
	old := c.Weapon
	c.Weapon = nil
	if old == nil {
		return nil, "No weapon equipped"
	}
	return old, fmt.Sprintf("Unequipped %s", old.Name)
}

// Drink applies an elixir for its duration.
func (c *Character) Drink(elixir Item) string {
	c.Elixirs = append(c.Elixirs, ActiveElixir{
		Stat:           elixir.Stat,
		Bonus:          elixir.Value,
		RemainingTurns: elixir.Duration,
	})
	c.applyStat(elixir.Stat, elixir.Value)
	return fmt.Sprintf("Drank elixir! %s +%d for %d turns", elixir.Stat.label(), elixir.Value, elixir.Duration)
}

// Read applies a scroll permanently.
func (c *Character) Read(scroll Item) string {
	c.applyStat(scroll.Stat, scroll.Value)
	return fmt.Sprintf("Read scroll! %s +%d (permanent)", scroll.Stat.label(), scroll.Value)
}

func (c *Character) applyStat(stat Stat, bonus int) {
	switch stat {
	case StatStrength:
		c.Strength += bonus
	case StatDexterity:
		c.Dexterity += bonus
	case StatMaxHealth:
		c.MaxHealth += bonus
		c.Health += bonus
	}
}

// TickElixirs counts down active elixirs and reverts expired ones.
func (c *Character) TickElixirs() []string {
	var messages []string
	active := c.Elixirs[:0]
	for _, e := range c.Elixirs {
		e.RemainingTurns--
		if e.RemainingTurns > 0 {
			active = append(active, e)
			continue
		}
		switch e.Stat {
		case StatStrength:
			c.Strength -= e.Bonus
		case StatDexterity:
			c.Dexterity -= e.Bonus
		case StatMaxHealth:
			c.MaxHealth -= e.Bonus
			c.Health = min(c.Health, c.MaxHealth)
			if c.Health <= 0 {
				c.Health = minHealthAfterExpiry
			}
		}
		messages = append(messages, fmt.Sprintf("Elixir wore off: %s -%d", e.Stat.label(), e.Bonus))
	}
	c.Elixirs = active
	return messages
}
