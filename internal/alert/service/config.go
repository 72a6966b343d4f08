package service

import "time"

// Config holds configuration for the alert service.
type Config struct {
	// Capacity is the maximum number of alerts to keep.
	Capacity int `yaml:"capacity"`
	// DisplayFor is how long an alert stays active.
	DisplayFor time.Duration `yaml:"display_for"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:   100,
		DisplayFor: 4 * time.Second,
	}
}
