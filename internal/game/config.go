package game

import "time"

// Config holds configuration for the game engine.
type Config struct {
	// StartingCash is the cash balance at game start.
	StartingCash float64 `yaml:"starting_cash"`
	// Rounds is the number of rounds before the game is over.
	Rounds int `yaml:"rounds"`
	// RoundDuration is the simulated length of a round.
	RoundDuration time.Duration `yaml:"round_duration"`
	// Step is the fixed simulation step.
	Step time.Duration `yaml:"step"`
	// MaxStepsPerTick bounds catch-up after a long stall.
	MaxStepsPerTick int `yaml:"max_steps_per_tick"`

	// PriceInterval is how often prices move.
	PriceInterval time.Duration `yaml:"price_interval"`
	// NewsChancePerSecond is the chance of an unscheduled news item per simulated second.
	NewsChancePerSecond float64 `yaml:"news_chance_per_second"`
	// HealthInterval is how often market health drifts.
	HealthInterval time.Duration `yaml:"health_interval"`
	// HealthDrift is the largest random move in market health per roll.
	HealthDrift float64 `yaml:"health_drift"`
	// SnapshotInterval is how often net worth is recorded.
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	// MissionInterval is how often missions are re-evaluated.
	MissionInterval time.Duration `yaml:"mission_interval"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		StartingCash:        10000,
		Rounds:              10,
		RoundDuration:       60 * time.Second,
		Step:                100 * time.Millisecond,
		MaxStepsPerTick:     50,
		PriceInterval:       time.Second,
		NewsChancePerSecond: 0.02,
		HealthInterval:      2 * time.Second,
		HealthDrift:         3,
		SnapshotInterval:    5 * time.Second,
		MissionInterval:     time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StartingCash <= 0 {
		c.StartingCash = d.StartingCash
	}
	if c.Rounds <= 0 {
		c.Rounds = d.Rounds
	}
	if c.RoundDuration <= 0 {
		c.RoundDuration = d.RoundDuration
	}
	if c.Step <= 0 {
		c.Step = d.Step
	}
	if c.MaxStepsPerTick <= 0 {
		c.MaxStepsPerTick = d.MaxStepsPerTick
	}
	if c.PriceInterval <= 0 {
		c.PriceInterval = d.PriceInterval
	}
	if c.NewsChancePerSecond < 0 {
		c.NewsChancePerSecond = 0
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = d.HealthInterval
	}
	if c.HealthDrift < 0 {
		c.HealthDrift = 0
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = d.SnapshotInterval
	}
	if c.MissionInterval <= 0 {
		c.MissionInterval = d.MissionInterval
	}
	return c
}
