package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	CatalogPath string `koanf:"catalog_path"` // TOML track catalog (default: catalog.toml next to the config)
	MediaRoot   string `koanf:"media_root"`   // base dir for relative local track paths

	Playback PlaybackConfig `koanf:"playback"`

	// mpv driver for external video playback (enabled when mpv is on PATH
	// or a binary is configured)
	Mpv MpvConfig `koanf:"mpv"`

	Log LogConfig `koanf:"log"`
}

// PlaybackConfig holds session tuning.
type PlaybackConfig struct {
	Volume         float64 `koanf:"volume"`           // initial shared volume 0-1 (default: 0.7)
	ProgressTickMs int     `koanf:"progress_tick_ms"` // progress poll interval (default: 500)
	SeekStepSec    int     `koanf:"seek_step_sec"`    // arrow-key seek step (default: 5)
}

// MpvConfig holds the external video driver configuration.
type MpvConfig struct {
	Binary     string `koanf:"binary"`      // mpv executable (default: "mpv")
	SocketPath string `koanf:"socket_path"` // IPC socket (default: per-process temp path)
}

// LogConfig holds file logging configuration.
type LogConfig struct {
	Dir   string `koanf:"dir"`   // log directory; empty disables file logging
	Level string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		CatalogPath: "catalog.toml",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.CatalogPath = expandPath(cfg.CatalogPath)
	cfg.MediaRoot = expandPath(cfg.MediaRoot)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)
	cfg.Mpv.SocketPath = expandPath(cfg.Mpv.SocketPath)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/showdeck/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "showdeck", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlaybackConfig returns the playback configuration with defaults
// applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = 0.7
	}
	if cfg.ProgressTickMs <= 0 {
		cfg.ProgressTickMs = 500
	}
	if cfg.SeekStepSec <= 0 {
		cfg.SeekStepSec = 5
	}

	return cfg
}

// ProgressTick returns the progress poll interval as a duration.
func (p PlaybackConfig) ProgressTick() time.Duration {
	return time.Duration(p.ProgressTickMs) * time.Millisecond
}

// SeekStep returns the arrow-key seek step as a duration.
func (p PlaybackConfig) SeekStep() time.Duration {
	return time.Duration(p.SeekStepSec) * time.Second
}

// MpvBinary returns the configured mpv executable, defaulting to "mpv".
func (c *Config) MpvBinary() string {
	if c.Mpv.Binary == "" {
		return "mpv"
	}
	return c.Mpv.Binary
}
