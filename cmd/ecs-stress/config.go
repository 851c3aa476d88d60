package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Run     RunConfig     `toml:"run"`
	Logging LoggingConfig `toml:"logging"`
	Profile ProfileConfig `toml:"profile"`
}

type RunConfig struct {
	Duration      time.Duration `toml:"duration"`
	Entities      int           `toml:"entities"`
	MaxComponents int           `toml:"max_components"` // per entity, at least Position
	Lifetime      float64       `toml:"lifetime"`       // seconds before a decaying entity is destroyed
	Seed          int64         `toml:"seed"`           // 0 = time based
	DrainChanges  bool          `toml:"drain_changes"`  // clear change windows at end of frame
	SnapshotPath  string        `toml:"snapshot_path"`  // write the final world here when set
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu" or "mem"
	Path string `toml:"path"`
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Run.Entities < 0 {
		return fmt.Errorf("run.entities must not be negative")
	}
	if c.Run.MaxComponents < 1 || c.Run.MaxComponents > len(optionalComponents)+1 {
		return fmt.Errorf("run.max_components must be between 1 and %d", len(optionalComponents)+1)
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile.mode %q is not one of cpu, mem", c.Profile.Mode)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Run: RunConfig{
			Duration:      10 * time.Second,
			Entities:      10000,
			MaxComponents: 5,
			Lifetime:      2.0,
			DrainChanges:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}

func newLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
