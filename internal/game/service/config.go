package service

import (
	"time"

	"github.com/zappabad/marketrush/internal/game"
)

// Config holds configuration for the game service.
type Config struct {
	// Game configures the engine.
	Game game.Config `yaml:"game"`
	// CommandBuffer is the size of the inbound command channel.
	CommandBuffer int `yaml:"command_buffer"`
	// FrameInterval is how often wall time is fed to the engine.
	// Zero or negative disables the clock; time then only moves through Advance.
	FrameInterval time.Duration `yaml:"frame_interval"`
	// ExternalEventBuffer is the size of the notification channel.
	// Notifications are dropped when it is full.
	ExternalEventBuffer int `yaml:"external_event_buffer"`
	// UserID identifies the player for score submission. Empty skips submission.
	UserID string `yaml:"user_id"`
	// SubmitTimeout bounds a single score submission.
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Game:                game.DefaultConfig(),
		CommandBuffer:       64,
		FrameInterval:       50 * time.Millisecond,
		ExternalEventBuffer: 64,
		SubmitTimeout:       5 * time.Second,
	}
}
