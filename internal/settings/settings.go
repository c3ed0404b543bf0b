// Package settings persists the companion's user-facing choices: skin,
// inversion, behavior mode and the login-item flag.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/sprite"
)

// FileName is the settings file name inside the user config directory.
const FileName = "oneko-settings.json"

// Settings is the persisted record. Field names match the on-disk JSON.
type Settings struct {
	Variant    sprite.Variant `json:"variant"`
	KuroNeko   bool           `json:"kuroNeko"`
	Mode       engine.Mode    `json:"mode"`
	AutoLaunch bool           `json:"autoLaunch"`
}

// Defaults returns the settings used when nothing has been saved yet.
func Defaults() Settings {
	return Settings{
		Variant:    sprite.DefaultVariant,
		KuroNeko:   false,
		Mode:       engine.ModeFollow,
		AutoLaunch: false,
	}
}

// Appearance returns the engine appearance described by s.
func (s Settings) Appearance() engine.Appearance {
	return engine.Appearance{Variant: s.Variant, Inverted: s.KuroNeko}
}

// Patch is a partial update. Nil fields are left alone. ForceSleep is the
// legacy boolean that predates Mode.
type Patch struct {
	Variant    *sprite.Variant `json:"variant,omitempty"`
	KuroNeko   *bool           `json:"kuroNeko,omitempty"`
	Mode       *engine.Mode    `json:"mode,omitempty"`
	AutoLaunch *bool           `json:"autoLaunch,omitempty"`
	ForceSleep *bool           `json:"forceSleep,omitempty"`
}

// Apply returns s with p merged in. A ForceSleep patch sets Mode to sleep,
// or back to follow when cleared while asleep; an explicit Mode in the same
// patch wins.
func (s Settings) Apply(p Patch) Settings {
	if p.ForceSleep != nil {
		if *p.ForceSleep {
			s.Mode = engine.ModeSleep
		} else if s.Mode == engine.ModeSleep {
			s.Mode = engine.ModeFollow
		}
	}
	if p.Variant != nil {
		s.Variant = *p.Variant
	}
	if p.KuroNeko != nil {
		s.KuroNeko = *p.KuroNeko
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.AutoLaunch != nil {
		s.AutoLaunch = *p.AutoLaunch
	}
	return s
}

// onDisk mirrors the file format including the legacy key.
type onDisk struct {
	Variant    *string `json:"variant"`
	KuroNeko   *bool   `json:"kuroNeko"`
	Mode       *string `json:"mode"`
	AutoLaunch *bool   `json:"autoLaunch"`
	ForceSleep *bool   `json:"forceSleep"`
}

// Decode parses a settings file, merging it over the defaults. Unknown
// variants or modes fall back to their defaults.
func Decode(data []byte) (Settings, error) {
	s := Defaults()

	var raw onDisk
	if err := json.Unmarshal(data, &raw); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}

	if raw.Variant != nil {
		if v, err := sprite.ParseVariant(*raw.Variant); err == nil {
			s.Variant = v
		}
	}
	if raw.KuroNeko != nil {
		s.KuroNeko = *raw.KuroNeko
	}
	if raw.AutoLaunch != nil {
		s.AutoLaunch = *raw.AutoLaunch
	}

	if raw.Mode != nil && *raw.Mode != "" {
		if m, err := engine.ParseMode(*raw.Mode); err == nil {
			s.Mode = m
		}
	} else if raw.ForceSleep != nil && *raw.ForceSleep {
		s.Mode = engine.ModeSleep
	}
	return s, nil
}

// Encode renders s in the on-disk format. The legacy key is never written.
func Encode(s Settings) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DefaultPath returns the settings path inside the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "oneko", FileName), nil
}

// Store reads and writes the settings file.
type Store struct {
	path string

	mu        sync.Mutex
	lastSaved []byte
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing or corrupt file yields the
// defaults; the problem is only logged.
func (s *Store) Load() Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Settings: failed to read %s: %v", s.path, err)
		}
		return Defaults()
	}
	settings, err := Decode(data)
	if err != nil {
		log.Printf("Settings: %s: %v (using defaults)", s.path, err)
		return Defaults()
	}
	return settings
}

// Save writes the settings atomically via a temp file and rename.
func (s *Store) Save(settings Settings) error {
	data, err := Encode(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".oneko-settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings: %w", err)
	}

	s.lastSaved = data
	return nil
}

// IsOwnWrite reports whether data is exactly what this store last saved.
func (s *Store) IsOwnWrite(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved != nil && bytes.Equal(bytes.TrimSpace(data), bytes.TrimSpace(s.lastSaved))
}
