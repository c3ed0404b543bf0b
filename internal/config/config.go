package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/oneko/internal/settings"
)

const (
	DefaultSleepHotkey          = "Mod4-Mod1-z"
	DefaultModeHotkey           = "Mod4-Mod1-m"
	DefaultBackgroundColor      = "#000000"
	DefaultTopologyPollInterval = 2000
	DefaultPointerPollInterval  = 100
	DefaultDoubleClickInterval  = 400

	MinTopologyPollInterval = 250
	MinPointerPollInterval  = 16
)

// Config holds the daemon configuration.
type Config struct {
	Display         string `yaml:"display,omitempty"`
	XAuthority      string `yaml:"xauthority,omitempty"`
	SpriteDir       string `yaml:"sprite_dir,omitempty"`
	SettingsPath    string `yaml:"settings_path,omitempty"`
	BackgroundColor string `yaml:"background_color"`
	LogLevel        string `yaml:"log_level"`
	SleepHotkey     string `yaml:"sleep_hotkey"`
	ModeHotkey      string `yaml:"mode_hotkey"`

	TopologyPollIntervalMs int `yaml:"topology_poll_interval_ms"`
	PointerPollIntervalMs  int `yaml:"pointer_poll_interval_ms"`
	DoubleClickMs          int `yaml:"double_click_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		BackgroundColor:        DefaultBackgroundColor,
		LogLevel:               "info",
		SleepHotkey:            DefaultSleepHotkey, // Super+Alt+Z for "zzz"
		ModeHotkey:             DefaultModeHotkey,
		TopologyPollIntervalMs: DefaultTopologyPollInterval,
		PointerPollIntervalMs:  DefaultPointerPollInterval,
		DoubleClickMs:          DefaultDoubleClickInterval,
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if _, err := parseHexColor(c.BackgroundColor); err != nil {
		return &ValidationError{Path: "background_color", Err: err}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.SleepHotkey != "" && c.SleepHotkey == c.ModeHotkey {
		return &ValidationError{Path: "mode_hotkey", Err: fmt.Errorf("mode_hotkey must differ from sleep_hotkey")}
	}
	if c.TopologyPollIntervalMs < MinTopologyPollInterval {
		return &ValidationError{Path: "topology_poll_interval_ms", Err: fmt.Errorf("topology_poll_interval_ms must be >= %d", MinTopologyPollInterval)}
	}
	if c.PointerPollIntervalMs < MinPointerPollInterval {
		return &ValidationError{Path: "pointer_poll_interval_ms", Err: fmt.Errorf("pointer_poll_interval_ms must be >= %d", MinPointerPollInterval)}
	}
	if c.DoubleClickMs <= 0 {
		return &ValidationError{Path: "double_click_ms", Err: fmt.Errorf("double_click_ms must be > 0")}
	}
	return nil
}

// Background returns the color painted behind transparent sprite pixels.
func (c *Config) Background() color.NRGBA {
	col, err := parseHexColor(c.BackgroundColor)
	if err != nil {
		col, _ = parseHexColor(DefaultBackgroundColor)
	}
	return col
}

func (c *Config) TopologyPollInterval() time.Duration {
	return time.Duration(c.TopologyPollIntervalMs) * time.Millisecond
}

func (c *Config) PointerPollInterval() time.Duration {
	return time.Duration(c.PointerPollIntervalMs) * time.Millisecond
}

func (c *Config) DoubleClickInterval() time.Duration {
	return time.Duration(c.DoubleClickMs) * time.Millisecond
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolveSettingsPath returns settings_path, or the default location in the
// user config directory.
func (c *Config) ResolveSettingsPath() (string, error) {
	if p := strings.TrimSpace(c.SettingsPath); p != "" {
		return expandHome(p)
	}
	return settings.DefaultPath()
}

// ResolveSpriteDir returns sprite_dir, or ~/.local/share/oneko/sprites.
func (c *Config) ResolveSpriteDir() (string, error) {
	if p := strings.TrimSpace(c.SpriteDir); p != "" {
		return expandHome(p)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "oneko", "sprites"), nil
}

// Save writes the configuration to path, creating parent directories.
//
// Note: comments in an existing file are not preserved.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q must be in #rrggbb form", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q must be in #rrggbb form", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
