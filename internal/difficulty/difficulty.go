// Package difficulty adapts level content to how well the player is doing.
package difficulty

import (
	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/stats"
)

// Modifier bounds and step sizes.
const (
	MinModifier    = 0.5
	MaxModifier    = 1.5
	AdjustmentRate = 0.1
	DriftRate      = AdjustmentRate * 0.3

	ExcellentScore  = 1.3
	StrugglingScore = 0.8

	EmergencyHealth     = 0.25
	CriticalHealth      = 0.15
	EmergencyHealingMod = 1.2
)

// Modifiers scale level content. 1.0 everywhere is neutral.
type Modifiers struct {
	EnemyCount float64 `json:"enemy_count"`
	EnemyStat  float64 `json:"enemy_stat"`
	ItemSpawn  float64 `json:"item_spawn"`
	Healing    float64 `json:"healing"`
}

// Neutral returns modifiers that leave content unchanged.
func Neutral() Modifiers {
	return Modifiers{EnemyCount: 1, EnemyStat: 1, ItemSpawn: 1, Healing: 1}
}

// Clamped returns m with every field inside [MinModifier, MaxModifier].
// Zero fields are treated as neutral.
func (m Modifiers) Clamped() Modifiers {
	fix := func(v float64) float64 {
		if v == 0 {
			return 1
		}
		return clamp(v)
	}
	return Modifiers{
		EnemyCount: fix(m.EnemyCount),
		EnemyStat:  fix(m.EnemyStat),
		ItemSpawn:  fix(m.ItemSpawn),
		Healing:    fix(m.Healing),
	}
}

// Description names the overall difficulty.
func (m Modifiers) Description() string {
	avg := (m.EnemyCount + m.EnemyStat + (2 - m.ItemSpawn)) / 3
	switch {
	case avg > 1.3:
		return "Very Hard"
	case avg > 1.15:
		return "Hard"
	case avg > 0.95:
		return "Normal"
	case avg > 0.75:
		return "Easy"
	default:
		return "Very Easy"
	}
}

// Manager tracks modifiers across levels.
type Manager struct {
	mods Modifiers
}

// NewManager starts at neutral difficulty.
func NewManager() *Manager {
	return &Manager{mods: Neutral()}
}

// Modifiers returns the current modifiers.
func (m *Manager) Modifiers() Modifiers {
	return m.mods
}

// Restore replaces the modifiers, e.g. from a save.
func (m *Manager) Restore(mods Modifiers) {
	m.mods = mods.Clamped()
}

// Reset returns to neutral.
func (m *Manager) Reset() {
	m.mods = Neutral()
}

// Hint is the message shown when a new level starts.
func (m *Manager) Hint() string {
	return "Difficulty: " + m.mods.Description()
}

// Adjust scores the run so far and moves the modifiers one step.
// Returns the new modifiers and the score.
func (m *Manager) Adjust(c *entity.Character, s *stats.Statistics, level int) (Modifiers, float64) {
	score := PerformanceScore(c, s, level)
	switch {
	case score > ExcellentScore:
		m.step(+1)
	case score < StrugglingScore:
		m.step(-1)
	default:
		m.drift()
	}
	return m.mods, score
}

// step moves towards harder (+1) or easier (-1) content.
func (m *Manager) step(sign float64) {
	m.mods.EnemyCount = clamp(m.mods.EnemyCount + sign*AdjustmentRate)
	m.mods.EnemyStat = clamp(m.mods.EnemyStat + sign*AdjustmentRate*0.5)
	m.mods.ItemSpawn = clamp(m.mods.ItemSpawn - sign*AdjustmentRate)
	m.mods.Healing = clamp(m.mods.Healing - sign*AdjustmentRate*0.5)
}

func (m *Manager) drift() {
	m.mods.EnemyCount = towardNeutral(m.mods.EnemyCount)
	m.mods.ItemSpawn = towardNeutral(m.mods.ItemSpawn)
}

// NeedsEmergencyHealing reports whether the next level should carry extra food.
func (m *Manager) NeedsEmergencyHealing(c *entity.Character) bool {
	if c.MaxHealth <= 0 {
		return false
	}
	pct := float64(c.Health) / float64(c.MaxHealth)
	return pct < CriticalHealth || (pct < EmergencyHealth && m.mods.Healing > EmergencyHealingMod)
}

// PerformanceScore weighs health, combat, resource use and pace. 1.0 is par.
func PerformanceScore(c *entity.Character, s *stats.Statistics, level int) float64 {
	type part struct {
		score, weight float64
	}
	var parts []part
	if v, ok := healthScore(c); ok {
		parts = append(parts, part{v, 1.5})
	}
	if v, ok := combatScore(s); ok {
		parts = append(parts, part{v, 1.2})
	}
	if v, ok := resourceScore(s); ok {
		parts = append(parts, part{v, 1.0})
	}
	parts = append(parts, part{speedScore(s, level), 0.8})

	var sum, weights float64
	for _, p := range parts {
		sum += p.score * p.weight
		weights += p.weight
	}
	return sum / weights
}

func healthScore(c *entity.Character) (float64, bool) {
	if c.MaxHealth <= 0 {
		return 0, false
	}
	pct := float64(c.Health) / float64(c.MaxHealth)
	switch {
	case pct > 0.8:
		return 1.8, true
	case pct > 0.6:
		return 1.3, true
	case pct > 0.4:
		return 1.0, true
	case pct > 0.2:
		return 0.7, true
	default:
		return 0.4, true
	}
}

func combatScore(s *stats.Statistics) (float64, bool) {
	if s.HitsTaken <= 0 || s.AttacksMade <= 0 {
		return 0, false
	}
	ratio := float64(s.DamageDealt) / float64(max(1, s.DamageReceived))
	switch {
	case ratio > 3.0:
		return 1.8, true
	case ratio > 2.0:
		return 1.4, true
	case ratio > 1.0:
		return 1.1, true
	case ratio > 0.5:
		return 0.9, true
	case ratio > 0.3:
		return 0.6, true
	default:
		return 0.4, true
	}
}

func resourceScore(s *stats.Statistics) (float64, bool) {
	if s.ItemsCollected <= 0 {
		return 0, false
	}
	used := s.FoodConsumed + s.ElixirsUsed + s.ScrollsRead
	ratio := float64(used) / float64(s.ItemsCollected)
	switch {
	case ratio > 0.5:
		return 1.2, true
	case ratio > 0.3:
		return 1.0, true
	default:
		return 1.4, true
	}
}

func speedScore(s *stats.Statistics, level int) float64 {
	expected := float64(level * 3)
	defeated := float64(s.EnemiesDefeated)
	switch {
	case defeated < expected*0.5:
		return 0.8
	case defeated > expected*1.5:
		return 1.3
	default:
		return 1.0
	}
}

func clamp(v float64) float64 {
	return min(MaxModifier, max(MinModifier, v))
}

func towardNeutral(v float64) float64 {
	switch {
	case v > 1:
		return max(1, v-DriftRate)
	case v < 1:
		return min(1, v+DriftRate)
	}
	return v
}
