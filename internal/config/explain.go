package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value for a top-level key and where it came
// from.
func Explain(res *LoadResult, key string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, Source{}, fmt.Errorf("key is empty")
	}

	value, err := lookupValue(res.Config, key)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[key]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, key string) (any, error) {
	switch key {
	case "display":
		return cfg.Display, nil
	case "xauthority":
		return cfg.XAuthority, nil
	case "sprite_dir":
		return cfg.SpriteDir, nil
	case "settings_path":
		return cfg.SettingsPath, nil
	case "background_color":
		return cfg.BackgroundColor, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "sleep_hotkey":
		return cfg.SleepHotkey, nil
	case "mode_hotkey":
		return cfg.ModeHotkey, nil
	case "topology_poll_interval_ms":
		return cfg.TopologyPollIntervalMs, nil
	case "pointer_poll_interval_ms":
		return cfg.PointerPollIntervalMs, nil
	case "double_click_ms":
		return cfg.DoubleClickMs, nil
	default:
		return nil, fmt.Errorf("unknown config key %q", key)
	}
}
