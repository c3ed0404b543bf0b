package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/sprite"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Settings
	}{
		{
			name: "empty object uses defaults",
			data: `{}`,
			want: Defaults(),
		},
		{
			name: "full record",
			data: `{"variant":"dog","kuroNeko":true,"mode":"taskbar","autoLaunch":true}`,
			want: Settings{Variant: sprite.VariantDog, KuroNeko: true, Mode: engine.ModeTaskbarRoam, AutoLaunch: true},
		},
		{
			name: "legacy forceSleep without mode",
			data: `{"variant":"classic","kuroNeko":false,"forceSleep":true}`,
			want: Settings{Variant: sprite.VariantClassic, Mode: engine.ModeSleep},
		},
		{
			name: "explicit mode wins over forceSleep",
			data: `{"mode":"follow","forceSleep":true}`,
			want: Settings{Variant: sprite.VariantClassic, Mode: engine.ModeFollow},
		},
		{
			name: "unknown values fall back",
			data: `{"variant":"hamster","mode":"zoom"}`,
			want: Defaults(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Decode = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLegacyForceSleepIsNotWrittenBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`{"variant":"classic","kuroNeko":false,"forceSleep":true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewStore(path)
	loaded := store.Load()
	if loaded.Mode != engine.ModeSleep {
		t.Fatalf("mode = %q, want sleep", loaded.Mode)
	}
	if err := store.Save(loaded); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "forceSleep") {
		t.Fatalf("legacy key written back: %s", data)
	}
	if !strings.Contains(string(data), `"mode": "sleep"`) {
		t.Fatalf("mode not persisted: %s", data)
	}
	if !store.IsOwnWrite(data) {
		t.Fatal("saved bytes not recognized as own write")
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()

	if got := NewStore(filepath.Join(dir, "missing.json")).Load(); got != Defaults() {
		t.Fatalf("missing file = %+v", got)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := NewStore(corrupt).Load(); got != Defaults() {
		t.Fatalf("corrupt file = %+v", got)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "oneko", FileName)
	store := NewStore(path)
	want := Settings{Variant: sprite.VariantTora, KuroNeko: true, Mode: engine.ModeTaskbarRoam}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := store.Load(); got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
	if store.IsOwnWrite([]byte(`{"variant":"dog"}`)) {
		t.Fatal("foreign bytes reported as own write")
	}
}

func TestApply(t *testing.T) {
	on, off := true, false
	sleep := engine.ModeSleep
	dog := sprite.VariantDog

	tests := []struct {
		name  string
		start Settings
		patch Patch
		want  engine.Mode
	}{
		{"forceSleep on", Defaults(), Patch{ForceSleep: &on}, engine.ModeSleep},
		{"forceSleep off while asleep", Settings{Mode: engine.ModeSleep}, Patch{ForceSleep: &off}, engine.ModeFollow},
		{"forceSleep off while roaming", Settings{Mode: engine.ModeTaskbarRoam}, Patch{ForceSleep: &off}, engine.ModeTaskbarRoam},
		{"explicit mode", Defaults(), Patch{Mode: &sleep}, engine.ModeSleep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.Apply(tt.patch).Mode; got != tt.want {
				t.Fatalf("mode = %q, want %q", got, tt.want)
			}
		})
	}

	got := Defaults().Apply(Patch{Variant: &dog, KuroNeko: &on})
	if got.Variant != sprite.VariantDog || !got.KuroNeko || got.Mode != engine.ModeFollow {
		t.Fatalf("Apply = %+v", got)
	}
	if a := got.Appearance(); a.Variant != sprite.VariantDog || !a.Inverted {
		t.Fatalf("Appearance = %+v", a)
	}
}
