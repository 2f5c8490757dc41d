package gamedata

import "math/rand"

// Range is an inclusive integer range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Roll returns a uniform value in [Min, Max].
func (r Range) Roll(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// ItemTable holds item generation parameters loaded from JSON.
type ItemTable struct {
	Food struct {
		Healing       Range   `json:"healing"`
		PerLevel      int     `json:"perLevel"`
		SpawnRate     float64 `json:"spawnRate"`
		MinCount      int     `json:"minCount"`
		Emergency     int     `json:"emergency"`
		EmergencyStep int     `json:"emergencyPerLevel"`
	} `json:"food"`
	Weapon struct {
		Names       []string `json:"names"`
		Bonus       Range    `json:"bonus"`
		LevelsPerUp int      `json:"levelsPerBonus"`
		SpawnRate   float64  `json:"spawnRate"`
		MinCount    int      `json:"minCount"`
	} `json:"weapon"`
	Elixir struct {
		Bonus       Range   `json:"bonus"`
		Duration    Range   `json:"duration"`
		LevelsPerUp int     `json:"levelsPerBonus"`
		SpawnRate   float64 `json:"spawnRate"`
	} `json:"elixir"`
	Scroll struct {
		Bonus       Range   `json:"bonus"`
		LevelsPerUp int     `json:"levelsPerBonus"`
		SpawnRate   float64 `json:"spawnRate"`
	} `json:"scroll"`
	Mimic struct {
		Chance   float64 `json:"chance"`
		MinLevel int     `json:"minLevel"`
	} `json:"mimic"`
}

// LoadItemTable loads item parameters from the embedded items.json file.
func LoadItemTable() (ItemTable, error) {
	return Load[ItemTable]("items.json")
}

// MustLoadItemTable loads item parameters, panicking on error.
func MustLoadItemTable() ItemTable {
	return MustLoad[ItemTable]("items.json")
}

// LevelBonus returns level / per, the stepwise bonus for deeper levels.
func LevelBonus(level, per int) int {
	if per <= 0 {
		return 0
	}
	return level / per
}
