package entity

import (
	"testing"

	"github.com/samdwyer/dualcrawl/internal/gamedata"
	"github.com/samdwyer/dualcrawl/internal/world"
)

func TestBackpackLimits(t *testing.T) {
	b := NewBackpack()
	for i := 0; i < MaxItemsPerKind; i++ {
		if !b.Add(NewFood(10)) {
			t.Fatalf("Add() #%d rejected below limit", i)
		}
	}
	if b.Add(NewFood(10)) {
		t.Error("Add() accepted an item beyond the per-kind limit")
	}
	if !b.Add(NewScroll(StatStrength, 2)) {
		t.Error("Add() rejected a different kind")
	}
	if !b.Add(NewTreasure(25)) || !b.Add(NewTreasure(5)) {
		t.Error("Add() rejected treasure")
	}
	if got := b.Count(ItemTreasure); got != 30 {
		t.Errorf("Count(treasure) = %d, want 30", got)
	}
	if got := b.Count(ItemFood); got != MaxItemsPerKind {
		t.Errorf("Count(food) = %d, want %d", got, MaxItemsPerKind)
	}
}

func TestBackpackRemove(t *testing.T) {
	b := NewBackpack()
	b.Add(NewWeapon("Sword +3", 3))
	b.Add(NewWeapon("Axe +5", 5))

	list := b.List(ItemWeapon)
	item, ok := b.Remove(ItemWeapon, 0)
	if !ok || item.Name != "Sword +3" {
		t.Fatalf("Remove(0) = %+v, %v", item, ok)
	}
	if list[0].Name != "Sword +3" {
		t.Error("List() result aliased the backpack")
	}
	if _, ok := b.Remove(ItemWeapon, 5); ok {
		t.Error("Remove() out of range should fail")
	}
	if got := b.List(ItemWeapon); len(got) != 1 || got[0].Name != "Axe +5" {
		t.Errorf("List() after remove = %+v", got)
	}
}

func TestCharacterDamageAndHeal(t *testing.T) {
	c := NewCharacter(world.Pos(1, 1))

	if got := c.TakeDamage(30); got != 30 || c.Health != 70 {
		t.Errorf("TakeDamage(30) = %d, health %d", got, c.Health)
	}
	if got := c.Heal(50); got != 30 || c.Health != c.MaxHealth {
		t.Errorf("Heal(50) = %d, health %d", got, c.Health)
	}
	if got := c.TakeDamage(500); got != 100 || c.IsAlive() {
		t.Errorf("TakeDamage(500) = %d, alive %v", got, c.IsAlive())
	}
}

func TestCharacterEquip(t *testing.T) {
	c := NewCharacter(world.Pos(0, 0))
	if c.Power() != InitialStrength {
		t.Errorf("Power() unarmed = %d", c.Power())
	}

	old, _ := c.Equip(NewWeapon("Mace +4", 4))
	if old != nil {
		t.Errorf("Equip() first weapon returned %v", old)
	}
	if c.Power() != InitialStrength+4 {
		t.Errorf("Power() armed = %d, want %d", c.Power(), InitialStrength+4)
	}

	old, msg := c.Equip(NewWeapon("Spear +6", 6))
	if old == nil || old.Name != "Mace +4" {
		t.Errorf("Equip() swap returned %v", old)
	}
	if msg != "Equipped Spear +6, unequipped Mace +4" {
		t.Errorf("Equip() message = %q", msg)
	}

	old, _ = c.Unequip()
	if old == nil || c.Weapon != nil {
		t.Error("Unequip() did not clear weapon")
	}
	if _, msg := c.Unequip(); msg != "No weapon equipped" {
		t.Errorf("Unequip() bare message = %q", msg)
	}
}

func TestElixirExpiry(t *testing.T) {
	c := NewCharacter(world.Pos(0, 0))
	c.Drink(NewElixir(StatStrength, 5, 2))
	c.Drink(NewElixir(StatMaxHealth, 20, 1))

	if c.Strength != InitialStrength+5 || c.MaxHealth != 120 || c.Health != 120 {
		t.Fatalf("after drinking: str %d max %d hp %d", c.Strength, c.MaxHealth, c.Health)
	}

	msgs := c.TickElixirs()
	if len(msgs) != 1 || msgs[0] != "Elixir wore off: Max Health -20" {
		t.Errorf("first tick messages = %v", msgs)
	}
	if c.MaxHealth != 100 || c.Health != 100 {
		t.Errorf("after max-health expiry: max %d hp %d", c.MaxHealth, c.Health)
	}

	msgs = c.TickElixirs()
	if len(msgs) != 1 || c.Strength != InitialStrength || len(c.Elixirs) != 0 {
		t.Errorf("second tick: msgs %v str %d active %d", msgs, c.Strength, len(c.Elixirs))
	}
}

func TestElixirExpiryKeepsCharacterAlive(t *testing.T) {
	c := NewCharacter(world.Pos(0, 0))
	c.Drink(NewElixir(StatMaxHealth, 50, 1))
	c.Health = 0

	c.TickElixirs()
	if c.Health != 1 {
		t.Errorf("Health after expiry = %d, want 1", c.Health)
	}
}

func TestScrollIsPermanent(t *testing.T) {
	c := NewCharacter(world.Pos(0, 0))
	msg := c.Read(NewScroll(StatDexterity, 3))
	if c.Dexterity != InitialDexterity+3 {
		t.Errorf("Dexterity = %d", c.Dexterity)
	}
	if msg != "Read scroll! Dexterity +3 (permanent)" {
		t.Errorf("Read() message = %q", msg)
	}
	c.TickElixirs()
	if c.Dexterity != InitialDexterity+3 {
		t.Error("scroll bonus expired")
	}
}

func TestDrainMaxHealth(t *testing.T) {
	c := NewCharacter(world.Pos(0, 0))
	if got := c.DrainMaxHealth(4); got != 4 || c.MaxHealth != 96 || c.Health != 96 {
		t.Errorf("DrainMaxHealth(4) = %d, max %d hp %d", got, c.MaxHealth, c.Health)
	}
	c.MaxHealth = 3
	if got := c.DrainMaxHealth(10); got != 2 || c.MaxHealth != 1 {
		t.Errorf("DrainMaxHealth floor = %d, max %d", got, c.MaxHealth)
	}
}

func TestNewEnemyFromDef(t *testing.T) {
	registry := gamedata.MustLoadEnemyRegistry()

	for _, kind := range EnemyKinds {
		def := registry.GetByID(kind.String())
		if def == nil {
			t.Fatalf("no definition for %s", kind)
		}
		e, err := NewEnemyFromDef(def, world.Pos(3, 4))
		if err != nil {
			t.Fatalf("NewEnemyFromDef(%s) error = %v", kind, err)
		}
		if e.Kind != kind || e.Health != def.Health || e.Position != world.Pos(3, 4) {
			t.Errorf("NewEnemyFromDef(%s) = %+v", kind, e)
		}
		if e.Traits == nil {
			t.Errorf("%s has nil traits", kind)
		}
	}

	if _, err := NewEnemyFromDef(&gamedata.EnemyDef{ID: "dragon"}, world.Pos(0, 0)); err == nil {
		t.Error("NewEnemyFromDef() with unknown id should fail")
	}
}

func TestDefaultTraits(t *testing.T) {
	if v, ok := DefaultTraits(Vampire).(*VampireTraits); !ok || !v.FirstAttackPending {
		t.Error("vampire should start with a pending first-attack miss")
	}
	if m, ok := DefaultTraits(Mimic).(*MimicTraits); !ok || !m.Disguised {
		t.Error("mimic should start disguised")
	}
	if _, ok := DefaultTraits(Zombie).(*ZombieTraits); !ok {
		t.Error("zombie traits have wrong type")
	}
}

func TestEnemyHiddenAndGlyph(t *testing.T) {
	e := &Enemy{Kind: Mimic, Glyph: 'm', Traits: &MimicTraits{Disguised: true, Disguise: '!'}}
	if !e.IsHidden() || e.DisplayGlyph() != '!' {
		t.Errorf("disguised mimic: hidden %v glyph %c", e.IsHidden(), e.DisplayGlyph())
	}
	e.Traits.(*MimicTraits).Disguised = false
	if e.IsHidden() || e.DisplayGlyph() != 'm' {
		t.Errorf("revealed mimic: hidden %v glyph %c", e.IsHidden(), e.DisplayGlyph())
	}
}

func TestEnemyScale(t *testing.T) {
	e := &Enemy{Health: 40, MaxHealth: 40, Strength: 8, Dexterity: 4}
	e.TakeDamage(10)
	e.Scale(1.5)
	if e.MaxHealth != 60 || e.Health != 60 || e.Strength != 12 || e.Dexterity != 6 {
		t.Errorf("Scale(1.5) = %+v", e)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{SnakeMage.String(), "snake_mage"},
		{EnemyKind(42).String(), "unknown"},
		{ItemElixir.String(), "elixir"},
		{ItemKind(42).String(), "unknown"},
		{StatMaxHealth.String(), "max_health"},
		{Stat(42).String(), "unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}

	var k ItemKind
	if err := k.UnmarshalText([]byte("scroll")); err != nil || k != ItemScroll {
		t.Errorf("UnmarshalText(scroll) = %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("key")); err != nil || k != ItemKey {
		t.Errorf("UnmarshalText(key) = %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("wand")); err == nil {
		t.Error("UnmarshalText(wand) should fail")
	}

	var c KeyColor
	if err := c.UnmarshalText([]byte("purple")); err != nil || c != KeyPurple {
		t.Errorf("UnmarshalText(purple) = %v, %v", c, err)
	}
	if err := c.UnmarshalText([]byte("teal")); err == nil {
		t.Error("UnmarshalText(teal) should fail")
	}
}

func TestBackpackKeys(t *testing.T) {
	b := NewBackpack()
	if b.HasKey(KeyRed) {
		t.Error("empty backpack holds a red key")
	}
	b.Add(NewKey(KeyRed))
	b.Add(NewKey(KeyGreen))
	b.Add(NewFood(5))

	if !b.HasKey(KeyRed) || !b.HasKey(KeyGreen) || b.HasKey(KeyBlue) {
		t.Errorf("keys = %v, want red and green", b.Keys())
	}
	if got := NewKey(KeyGreen).Describe(); got != "green key" {
		t.Errorf("Describe() = %q, want green key", got)
	}

	b.DropKeys()
	if len(b.Keys()) != 0 {
		t.Errorf("keys after DropKeys = %v", b.Keys())
	}
	if b.Count(ItemFood) != 1 {
		t.Error("DropKeys discarded food")
	}
}

func TestItemDescribe(t *testing.T) {
	tests := []struct {
		item Item
		want string
	}{
		{NewTreasure(12), "12 treasure"},
		{NewFood(20), "food (heals 20 HP)"},
		{NewWeapon("Axe +4", 4), "Axe +4"},
		{NewElixir(StatStrength, 3, 7), "elixir (Strength +3 for 7 turns)"},
		{NewScroll(StatMaxHealth, 2), "scroll (Max Health +2)"},
	}
	for _, tt := range tests {
		if got := tt.item.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
