package runner

import "time"

// Config tunes the autoplay runner.
type Config struct {
	// TickInterval is how often the strategy sees a fresh snapshot.
	TickInterval time.Duration `yaml:"tick_interval"`
	// EventBuffer sizes the Events channel.
	EventBuffer int `yaml:"event_buffer"`
	// DropEvents discards events when nobody is reading instead of blocking the runner.
	DropEvents bool `yaml:"drop_events"`
	// AutoAdvance calls NextRound whenever a round has run out of time.
	AutoAdvance bool `yaml:"auto_advance"`
}

// DefaultConfig ticks ten times a second and advances rounds on its own.
func DefaultConfig() Config {
	return Config{
		TickInterval: 100 * time.Millisecond,
		EventBuffer:  256,
		DropEvents:   true,
		AutoAdvance:  true,
	}
}
