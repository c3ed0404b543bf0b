package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/oneko/internal/config"
	"github.com/1broseidon/oneko/internal/geometry"
	"github.com/1broseidon/oneko/internal/ipc"
)

type fakeDaemon struct {
	status   ipc.StatusData
	displays []ipc.DisplayInfo
	modes    []string
	variants []string
	reloads  int
	fail     error
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	s := f.status
	return &s, nil
}

func (f *fakeDaemon) GetDisplays() (*ipc.DisplaysData, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return &ipc.DisplaysData{Displays: f.displays}, nil
}

func (f *fakeDaemon) SetMode(mode string) (*ipc.StatusData, error) {
	f.modes = append(f.modes, mode)
	f.status.Mode = mode
	return f.GetStatus()
}

func (f *fakeDaemon) SetVariant(variant string) (*ipc.StatusData, error) {
	f.variants = append(f.variants, variant)
	f.status.Variant = variant
	return f.GetStatus()
}

func (f *fakeDaemon) SetInverted(inverted *bool) (*ipc.StatusData, error) {
	if inverted == nil {
		f.status.Inverted = !f.status.Inverted
	} else {
		f.status.Inverted = *inverted
	}
	return f.GetStatus()
}

func (f *fakeDaemon) ToggleSleep() (*ipc.StatusData, error) {
	if f.status.Mode == "sleep" {
		f.status.Mode = f.status.LastNonSleep
	} else {
		f.status.Mode = "sleep"
	}
	return f.GetStatus()
}

func (f *fakeDaemon) Reload() error {
	f.reloads++
	return nil
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{
		status: ipc.StatusData{Mode: "follow", LastNonSleep: "follow", Variant: "classic"},
		displays: []ipc.DisplayInfo{
			{
				ID:          1,
				Name:        "DP-1",
				Primary:     true,
				Bounds:      geometry.Rect{Width: 1920, Height: 1080},
				WorkArea:    geometry.Rect{Width: 1920, Height: 1040},
				TaskbarEdge: "bottom",
				SleepTarget: geometry.Point{X: 1904, Y: 1027},
			},
			{
				ID:          2,
				Name:        "HDMI-1",
				Bounds:      geometry.Rect{X: 1920, Width: 1920, Height: 1080},
				WorkArea:    geometry.Rect{X: 1920, Width: 1920, Height: 1080},
				TaskbarEdge: "none",
				SleepTarget: geometry.Point{X: 3824, Y: 1064},
			},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCompanionTabAppliesSelectedMode(t *testing.T) {
	d := newFakeDaemon()
	status, _ := d.GetStatus()
	ct := NewCompanionTab(d, status)
	ct, _ = ct.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	// Items are modes first: follow, sleep, taskbar.
	ct.list.Select(2)
	ct, cmd := ct.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("expected a clear-status command")
	}
	if len(d.modes) != 1 || d.modes[0] != "taskbar" {
		t.Fatalf("SetMode calls = %v", d.modes)
	}
	if ct.Status().Mode != "taskbar" || ct.statusText != "mode: taskbar" {
		t.Fatalf("status = %+v, text %q", ct.Status(), ct.statusText)
	}
	item, ok := ct.list.Items()[2].(companionItem)
	if !ok || !item.current {
		t.Fatalf("taskbar item not marked current: %+v", ct.list.Items()[2])
	}
}

func TestCompanionTabShortcuts(t *testing.T) {
	d := newFakeDaemon()
	status, _ := d.GetStatus()
	ct := NewCompanionTab(d, status)

	ct, _ = ct.Update(key("i"))
	if !ct.Status().Inverted {
		t.Fatalf("expected inverted after 'i'")
	}
	ct, _ = ct.Update(key("s"))
	if ct.Status().Mode != "sleep" {
		t.Fatalf("mode after 's' = %q", ct.Status().Mode)
	}
	ct, _ = ct.Update(key("s"))
	if ct.Status().Mode != "follow" {
		t.Fatalf("mode after second 's' = %q", ct.Status().Mode)
	}
}

func TestCompanionTabWithoutDaemon(t *testing.T) {
	ct := NewCompanionTab(nil, nil)
	ct, _ = ct.Update(key("enter"))
	if ct.statusText != "daemon not connected" {
		t.Fatalf("statusText = %q", ct.statusText)
	}
	ct, _ = ct.Update(clearStatusMsg{})
	if ct.statusText != "" {
		t.Fatalf("status not cleared: %q", ct.statusText)
	}
}

func TestBuildCompanionItemsMarksCurrent(t *testing.T) {
	items := buildCompanionItems(&ipc.StatusData{Mode: "sleep", Variant: "dog", Inverted: true})

	current := map[string]bool{}
	for _, it := range items {
		ci := it.(companionItem)
		if ci.current {
			current[ci.Title()] = true
		}
	}
	for _, want := range []string{"* mode: sleep", "* skin: dog", "* invert colors", "* toggle sleep"} {
		if !current[want] {
			t.Fatalf("missing current item %q in %v", want, current)
		}
	}
	if len(current) != 4 {
		t.Fatalf("unexpected current items: %v", current)
	}
}

func TestRenderTopology(t *testing.T) {
	d := newFakeDaemon()
	lines := renderTopology(d.displays, 0, 40, 10)
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	for i, l := range lines {
		if n := utf8.RuneCountInString(l); n != 40 {
			t.Fatalf("line %d has %d runes, want 40", i, n)
		}
	}

	all := strings.Join(lines, "\n")
	for _, want := range []string{"1*", "2", "z", "░", "╔", "┐"} {
		if !strings.Contains(all, want) {
			t.Fatalf("preview missing %q:\n%s", want, all)
		}
	}
}

func TestRenderTopologyEmpty(t *testing.T) {
	lines := renderTopology(nil, 0, 8, 3)
	if len(lines) != 3 || strings.TrimSpace(strings.Join(lines, "")) != "" {
		t.Fatalf("expected blank canvas, got %q", lines)
	}
}

func TestDisplaysTab(t *testing.T) {
	d := newFakeDaemon()
	dt := NewDisplaysTab(d)
	if len(dt.displays) != 2 || dt.err != nil {
		t.Fatalf("displays = %+v, err %v", dt.displays, dt.err)
	}

	dt, _ = dt.Update(key("j"))
	dt, _ = dt.Update(key("j"))
	if dt.selected != 1 {
		t.Fatalf("selected = %d, want 1", dt.selected)
	}
	dt, _ = dt.Update(key("k"))
	if dt.selected != 0 {
		t.Fatalf("selected = %d, want 0", dt.selected)
	}

	d.fail = errors.New("boom")
	dt, _ = dt.Update(key("r"))
	if dt.err == nil || len(dt.displays) != 0 {
		t.Fatalf("expected refresh error, got %+v", dt)
	}

	dt, _ = dt.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(dt.View(), "boom") {
		t.Fatalf("view should show the error")
	}
}

func TestConfigTabApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	ct := NewConfigTab(cfg, "", nil)
	ct.loadFormValues()

	ct.fModeHotkey = " Mod4-m "
	ct.fBackgroundColor = "#102030"
	ct.fLogLevel = "debug"
	ct.fSpriteDir = "~/skins"
	ct.fTopologyPoll = "500"
	ct.fPointerPoll = "5" // below the minimum, ignored
	ct.fDoubleClick = "x"
	ct.applyForm()

	if cfg.ModeHotkey != "Mod4-m" || cfg.BackgroundColor != "#102030" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.SpriteDir != "~/skins" || cfg.TopologyPollIntervalMs != 500 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.PointerPollIntervalMs != config.DefaultPointerPollInterval || cfg.DoubleClickMs != config.DefaultDoubleClickInterval {
		t.Fatalf("invalid values should be ignored: %+v", cfg)
	}
}

func TestConfigValidators(t *testing.T) {
	if err := validateColor("#abcdef"); err != nil {
		t.Fatalf("validateColor: %v", err)
	}
	if err := validateColor("red"); err == nil {
		t.Fatalf("expected error for red")
	}

	v := validateMinInt(16)
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"16", false},
		{" 100 ", false},
		{"15", true},
		{"abc", true},
	}
	for _, tt := range tests {
		if err := v(tt.in); (err != nil) != tt.wantErr {
			t.Fatalf("validateMinInt(16)(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestComputeChanges(t *testing.T) {
	orig := config.DefaultConfig()
	changes, err := computeChanges(orig, cloneConfig(orig))
	if err != nil || len(changes) != 0 {
		t.Fatalf("expected no changes, got %+v, %v", changes, err)
	}

	curr := cloneConfig(orig)
	curr.LogLevel = "debug"
	curr.SpriteDir = "/skins"
	changes, err = computeChanges(orig, curr)
	if err != nil {
		t.Fatalf("computeChanges: %v", err)
	}

	want := map[string]configChange{
		"log_level":  {key: "log_level", previous: "info", next: "debug"},
		"sprite_dir": {key: "sprite_dir", previous: "", next: "/skins"},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d changes, want %d: %+v", len(changes), len(want), changes)
	}
	for _, c := range changes {
		if want[c.key] != c {
			t.Fatalf("change %+v, want %+v", c, want[c.key])
		}
	}

	// Removing an omitempty key still shows up.
	changes, _ = computeChanges(curr, orig)
	found := false
	for _, c := range changes {
		if c.key == "sprite_dir" && c.previous == "/skins" && c.next == "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing sprite_dir removal: %+v", changes)
	}
}

func TestModelTabNavigation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newModel(path, newFakeDaemon())
	if !m.daemonConnected || m.status.Mode != "follow" {
		t.Fatalf("model not connected: %+v", m.status)
	}

	steps := []struct {
		key  string
		want Tab
	}{
		{"2", TabDisplays},
		{"3", TabConfig},
		{"tab", TabCompanion},
		{"1", TabCompanion},
	}
	var tm tea.Model = m
	for _, st := range steps {
		tm, _ = tm.Update(key(st.key))
		if got := tm.(model).activeTab; got != st.want {
			t.Fatalf("after %q active tab = %v, want %v", st.key, got, st.want)
		}
	}
}

func TestModelSaveWritesConfigAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	d := newFakeDaemon()
	m := newModel(path, d)
	m.cfg.LogLevel = "debug"

	var tm tea.Model = m
	tm, _ = tm.Update(key("ctrl+s"))
	if tm.(model).saveOverlay.phase != savePreview {
		t.Fatalf("expected diff preview")
	}
	tm, _ = tm.Update(key("enter"))
	got := tm.(model)
	if !got.saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", got.saveOverlay.err)
	}
	if d.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", d.reloads)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "log_level: debug") {
		t.Fatalf("saved config missing change:\n%s", data)
	}

	// A second save with nothing new reports no changes.
	tm, _ = tm.Update(key("x"))
	tm, _ = tm.Update(key("ctrl+s"))
	if err := tm.(model).saveOverlay.err; err == nil || !strings.Contains(err.Error(), "no changes") {
		t.Fatalf("expected no changes, got %v", err)
	}
}

func TestModelWithoutDaemon(t *testing.T) {
	d := newFakeDaemon()
	d.fail = errors.New("connection refused")
	m := newModel(filepath.Join(t.TempDir(), "config.yaml"), d)
	if m.daemonConnected || m.status != nil {
		t.Fatalf("expected disconnected model")
	}
	if m.displaysTab.err == nil {
		t.Fatalf("displays tab should carry the error")
	}
}
