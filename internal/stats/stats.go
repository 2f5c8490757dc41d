// Package stats accumulates per-run gameplay statistics.
package stats

import (
	"fmt"
	"time"

	"github.com/samdwyer/dualcrawl/internal/entity"
)

// Statistics is the running tally for one game.
type Statistics struct {
	TreasureCollected int `json:"treasure_collected"`
	LevelReached      int `json:"level_reached"`
	EnemiesDefeated   int `json:"enemies_defeated"`

	FoodConsumed    int `json:"food_consumed"`
	ElixirsUsed     int `json:"elixirs_used"`
	ScrollsRead     int `json:"scrolls_read"`
	WeaponsEquipped int `json:"weapons_equipped"`

	AttacksMade    int `json:"attacks_made"`
	HitsTaken      int `json:"hits_taken"`
	DamageDealt    int `json:"damage_dealt"`
	DamageReceived int `json:"damage_received"`

	TilesMoved     int `json:"tiles_moved"`
	ItemsCollected int `json:"items_collected"`

	Deaths         int       `json:"deaths"`
	Victory        bool      `json:"victory"`
	FinalHealth    int       `json:"final_health"`
	FinalStrength  int       `json:"final_strength"`
	FinalDexterity int       `json:"final_dexterity"`
	Timestamp      time.Time `json:"timestamp,omitzero"`
}

// New returns statistics for a run starting on level 1.
func New() *Statistics {
	return &Statistics{LevelReached: 1}
}

// RecordAttack counts one player attack.
func (s *Statistics) RecordAttack(hit bool, damage int) {
	s.AttacksMade++
	if hit {
		s.DamageDealt += damage
	}
}

// RecordHitTaken counts one enemy hit on the player.
func (s *Statistics) RecordHitTaken(damage int) {
	s.HitsTaken++
	s.DamageReceived += damage
}

// RecordEnemyDefeated counts a kill and its payout.
func (s *Statistics) RecordEnemyDefeated(treasure int) {
	s.EnemiesDefeated++
	s.TreasureCollected += treasure
}

// RecordMovement counts one tile walked.
func (s *Statistics) RecordMovement() {
	s.TilesMoved++
}

// RecordItemCollected counts one pickup.
func (s *Statistics) RecordItemCollected() {
	s.ItemsCollected++
}

// RecordItemUsed counts one consumed or equipped item of kind.
func (s *Statistics) RecordItemUsed(kind entity.ItemKind) {
	switch kind {
	case entity.ItemFood:
		s.FoodConsumed++
	case entity.ItemElixir:
		s.ElixirsUsed++
	case entity.ItemScroll:
		s.ScrollsRead++
	case entity.ItemWeapon:
		s.WeaponsEquipped++
	}
}

// RecordLevelReached keeps the deepest level seen.
func (s *Statistics) RecordLevelReached(level int) {
	s.LevelReached = max(s.LevelReached, level)
}

// RecordGameEnd stores the final character state.
func (s *Statistics) RecordGameEnd(health, strength, dexterity int, victory bool, at time.Time) {
	s.FinalHealth = health
	s.FinalStrength = strength
	s.FinalDexterity = dexterity
	s.Victory = victory
	s.Timestamp = at
	if !victory {
		s.Deaths = 1
	}
}

// Summary renders the statistics as display lines.
func (s *Statistics) Summary(maxLevels int) []string {
	victory := "No"
	if s.Victory {
		victory = "YES"
	}
	lines := []string{
		"=== PROGRESSION ===",
		fmt.Sprintf("Deepest Level: %d/%d", s.LevelReached, maxLevels),
		fmt.Sprintf("Treasure: %d", s.TreasureCollected),
		fmt.Sprintf("Victory: %s", victory),
		"",
		"=== COMBAT ===",
		fmt.Sprintf("Enemies Defeated: %d", s.EnemiesDefeated),
		fmt.Sprintf("Attacks Made: %d", s.AttacksMade),
		fmt.Sprintf("Hits Taken: %d", s.HitsTaken),
		fmt.Sprintf("Damage Dealt: %d", s.DamageDealt),
		fmt.Sprintf("Damage Received: %d", s.DamageReceived),
		"",
		"=== ITEMS ===",
		fmt.Sprintf("Items Collected: %d", s.ItemsCollected),
		fmt.Sprintf("Food Consumed: %d", s.FoodConsumed),
		fmt.Sprintf("Elixirs Used: %d", s.ElixirsUsed),
		fmt.Sprintf("Scrolls Read: %d", s.ScrollsRead),
		fmt.Sprintf("Weapons Equipped: %d", s.WeaponsEquipped),
		"",
		"=== EXPLORATION ===",
		fmt.Sprintf("Tiles Traversed: %d", s.TilesMoved),
	}
	if s.TilesMoved > 0 {
		lines = append(lines, fmt.Sprintf("Items per Tile: %.3f", float64(s.ItemsCollected)/float64(s.TilesMoved)))
	}
	return lines
}
