package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds connector configuration.
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Volume VolumeConfig `toml:"volume"`
	Replay ReplayConfig `toml:"replay"`
	Log    LogConfig    `toml:"log"`
}

// CanvasConfig controls anchor geometry.
type CanvasConfig struct {
	AnchorSegments int     `toml:"anchor_segments"`
	AnchorSize     float64 `toml:"anchor_size"`
	AnchorGap      float64 `toml:"anchor_gap"`
}

// VolumeConfig controls volume links.
type VolumeConfig struct {
	Placeholder string `toml:"placeholder"`
}

// ReplayConfig controls the replay driver.
type ReplayConfig struct {
	Capacity string `toml:"capacity"` // "linked", "available"
	ReadOnly bool   `toml:"read_only"`
	EmitHCL  bool   `toml:"emit_hcl"`
	MaxTicks int    `toml:"max_ticks"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "json", "text"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{AnchorSegments: 30, AnchorSize: 10, AnchorGap: 4},
		Volume: VolumeConfig{Placeholder: "/container/project/path"},
		Replay: ReplayConfig{Capacity: "linked", EmitHCL: true, MaxTicks: 100},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// ConfigDir returns the connector config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "connector")
}

// DefaultPath returns the config file inside ConfigDir.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path over the defaults. A missing file yields the
// defaults; an empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path (DefaultPath when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Canvas.AnchorSegments < 1 {
		return fmt.Errorf("canvas.anchor_segments must be at least 1, got %d", c.Canvas.AnchorSegments)
	}
	if c.Canvas.AnchorSize <= 0 || c.Canvas.AnchorGap < 0 {
		return fmt.Errorf("canvas.anchor_size must be positive and canvas.anchor_gap not negative")
	}
	switch c.Replay.Capacity {
	case "available", "linked":
	default:
		return fmt.Errorf("replay.capacity must be \"available\" or \"linked\", got %q", c.Replay.Capacity)
	}
	if c.Replay.MaxTicks < 1 {
		return fmt.Errorf("replay.max_ticks must be at least 1, got %d", c.Replay.MaxTicks)
	}
	return nil
}
