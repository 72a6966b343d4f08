// Package config loads marketrush settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	alertsvc "github.com/zappabad/marketrush/internal/alert/service"
	gamesvc "github.com/zappabad/marketrush/internal/game/service"
	"github.com/zappabad/marketrush/internal/logger"
	"github.com/zappabad/marketrush/internal/trader/runner"
	"github.com/zappabad/marketrush/internal/trader/strategy"
)

// Config holds all application configuration.
type Config struct {
	Log      logger.Config   `yaml:"log"`
	Service  gamesvc.Config  `yaml:"service"`
	Alerts   alertsvc.Config `yaml:"alerts"`
	Autoplay struct {
		Runner   runner.Config           `yaml:"runner"`
		Strategy strategy.MomentumConfig `yaml:"strategy"`
	} `yaml:"autoplay"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9102".
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Log:     logger.DefaultConfig(),
		Service: gamesvc.DefaultConfig(),
		Alerts:  alertsvc.DefaultConfig(),
	}
	cfg.Autoplay.Runner = runner.DefaultConfig()
	cfg.Autoplay.Strategy = strategy.DefaultMomentumConfig()
	cfg.Database.SQLitePath = "data/marketrush.db"
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MARKETRUSH_USER_ID"); v != "" {
		cfg.Service.UserID = v
	}
	if v := os.Getenv("MARKETRUSH_ROUND_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MARKETRUSH_ROUND_DURATION: %w", err)
		}
		cfg.Service.Game.RoundDuration = d
	}
	if v := os.Getenv("MARKETRUSH_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	return cfg, nil
}

// Validate checks the values the game cannot run without.
func (c *Config) Validate() error {
	g := c.Service.Game
	if g.StartingCash <= 0 {
		return fmt.Errorf("service.game.starting_cash must be positive")
	}
	if g.Rounds <= 0 {
		return fmt.Errorf("service.game.rounds must be positive")
	}
	if g.RoundDuration <= 0 {
		return fmt.Errorf("service.game.round_duration must be positive")
	}
	if g.Step <= 0 || g.Step > g.RoundDuration {
		return fmt.Errorf("service.game.step must be in (0, round_duration]")
	}
	if f := c.Autoplay.Strategy.PositionFraction; f <= 0 || f > 1 {
		return fmt.Errorf("autoplay.strategy.position_fraction must be in (0, 1]")
	}
	return nil
}
