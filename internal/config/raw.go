package config

// RawConfig is the file form of Config. Nil fields were not set in the file
// and keep their defaults.
type RawConfig struct {
	Display                *string `yaml:"display"`
	XAuthority             *string `yaml:"xauthority"`
	SpriteDir              *string `yaml:"sprite_dir"`
	SettingsPath           *string `yaml:"settings_path"`
	BackgroundColor        *string `yaml:"background_color"`
	LogLevel               *string `yaml:"log_level"`
	SleepHotkey            *string `yaml:"sleep_hotkey"`
	ModeHotkey             *string `yaml:"mode_hotkey"`
	TopologyPollIntervalMs *int    `yaml:"topology_poll_interval_ms"`
	PointerPollIntervalMs  *int    `yaml:"pointer_poll_interval_ms"`
	DoubleClickMs          *int    `yaml:"double_click_ms"`
}

// BuildEffectiveConfig overlays raw onto the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	setString(&cfg.Display, raw.Display)
	setString(&cfg.XAuthority, raw.XAuthority)
	setString(&cfg.SpriteDir, raw.SpriteDir)
	setString(&cfg.SettingsPath, raw.SettingsPath)
	setString(&cfg.BackgroundColor, raw.BackgroundColor)
	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.SleepHotkey, raw.SleepHotkey)
	setString(&cfg.ModeHotkey, raw.ModeHotkey)
	setInt(&cfg.TopologyPollIntervalMs, raw.TopologyPollIntervalMs)
	setInt(&cfg.PointerPollIntervalMs, raw.PointerPollIntervalMs)
	setInt(&cfg.DoubleClickMs, raw.DoubleClickMs)

	return cfg
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
