package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/oneko/internal/config"
)

// ConfigTab is the sub-model for viewing and editing the daemon config.
type ConfigTab struct {
	cfg     *config.Config
	path    string
	loadErr error

	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fSleepHotkey     string
	fModeHotkey      string
	fBackgroundColor string
	fLogLevel        string
	fSpriteDir       string
	fTopologyPoll    string
	fPointerPoll     string
	fDoubleClick     string
}

// NewConfigTab creates a ConfigTab editing cfg, which lives at path.
func NewConfigTab(cfg *config.Config, path string, loadErr error) ConfigTab {
	return ConfigTab{cfg: cfg, path: path, loadErr: loadErr}
}

// Update implements tea.Model.
func (c ConfigTab) Update(msg tea.Msg) (ConfigTab, tea.Cmd) {
	if c.editing {
		return c.updateEditing(msg)
	}
	return c.updateDisplay(msg)
}

func (c ConfigTab) updateDisplay(msg tea.Msg) (ConfigTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			c.startEditing()
			return c, c.form.Init()
		}
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	}
	return c, nil
}

func (c ConfigTab) updateEditing(msg tea.Msg) (ConfigTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			c.editing = false
			c.form = nil
			return c, nil
		}
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.applyForm()
		c.editing = false
		c.form = nil
		return c, nil
	}

	return c, cmd
}

func (c *ConfigTab) loadFormValues() {
	cfg := c.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c.fSleepHotkey = cfg.SleepHotkey
	c.fModeHotkey = cfg.ModeHotkey
	c.fBackgroundColor = cfg.BackgroundColor
	c.fLogLevel = cfg.LogLevel
	c.fSpriteDir = cfg.SpriteDir
	c.fTopologyPoll = strconv.Itoa(cfg.TopologyPollIntervalMs)
	c.fPointerPoll = strconv.Itoa(cfg.PointerPollIntervalMs)
	c.fDoubleClick = strconv.Itoa(cfg.DoubleClickMs)
}

func (c *ConfigTab) startEditing() {
	c.loadFormValues()

	w := c.width - 4
	if w < 40 {
		w = 40
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("sleep_hotkey").
				Title("Sleep Hotkey").
				Description("X11 keybinding that toggles sleep").
				Value(&c.fSleepHotkey),

			huh.NewInput().
				Key("mode_hotkey").
				Title("Mode Hotkey").
				Description("X11 keybinding that cycles follow, sleep and taskbar").
				Value(&c.fModeHotkey),

			huh.NewInput().
				Key("background_color").
				Title("Background Color").
				Description("Painted behind transparent sprite pixels (#rrggbb)").
				Validate(validateColor).
				Value(&c.fBackgroundColor),

			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warning", "warning"),
					huh.NewOption("error", "error"),
				).
				Value(&c.fLogLevel),

			huh.NewInput().
				Key("sprite_dir").
				Title("Sprite Directory").
				Description("Overrides the built-in skins (empty for default)").
				Value(&c.fSpriteDir),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("topology_poll_interval_ms").
				Title("Topology Poll (ms)").
				Description(fmt.Sprintf("Display layout re-check interval, >= %d", config.MinTopologyPollInterval)).
				Validate(validateMinInt(config.MinTopologyPollInterval)).
				Value(&c.fTopologyPoll),

			huh.NewInput().
				Key("pointer_poll_interval_ms").
				Title("Pointer Poll (ms)").
				Description(fmt.Sprintf("Pointer sampling interval, >= %d", config.MinPointerPollInterval)).
				Validate(validateMinInt(config.MinPointerPollInterval)).
				Value(&c.fPointerPoll),

			huh.NewInput().
				Key("double_click_ms").
				Title("Double Click (ms)").
				Description("Maximum gap between clicks of a double click").
				Validate(validateMinInt(1)).
				Value(&c.fDoubleClick),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	c.editing = true
}

func validateColor(s string) error {
	candidate := config.DefaultConfig()
	candidate.BackgroundColor = s
	return candidate.Validate()
}

func validateMinInt(floor int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if v < floor {
			return fmt.Errorf("must be >= %d", floor)
		}
		return nil
	}
}

func (c *ConfigTab) applyForm() {
	if c.cfg == nil {
		return
	}

	if c.fSleepHotkey != "" {
		c.cfg.SleepHotkey = strings.TrimSpace(c.fSleepHotkey)
	}
	if c.fModeHotkey != "" {
		c.cfg.ModeHotkey = strings.TrimSpace(c.fModeHotkey)
	}
	if validateColor(c.fBackgroundColor) == nil {
		c.cfg.BackgroundColor = strings.TrimSpace(c.fBackgroundColor)
	}
	if c.fLogLevel != "" {
		c.cfg.LogLevel = c.fLogLevel
	}
	c.cfg.SpriteDir = strings.TrimSpace(c.fSpriteDir)
	if v, err := strconv.Atoi(strings.TrimSpace(c.fTopologyPoll)); err == nil && v >= config.MinTopologyPollInterval {
		c.cfg.TopologyPollIntervalMs = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(c.fPointerPoll)); err == nil && v >= config.MinPointerPollInterval {
		c.cfg.PointerPollIntervalMs = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(c.fDoubleClick)); err == nil && v > 0 {
		c.cfg.DoubleClickMs = v
	}
}

// View implements tea.Model.
func (c ConfigTab) View() string {
	if c.editing && c.form != nil {
		return c.viewEditing()
	}
	return c.viewDisplay()
}

func (c ConfigTab) viewDisplay() string {
	cfg := c.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(c.width).
			Height(c.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Width(22).
		Foreground(lipgloss.Color("250"))
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	errStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		dimStyle.Render("  " + displayOrDefault(c.path, "(default location)")),
	}
	if c.loadErr != nil {
		lines = append(lines, errStyle.Render("  load failed, showing defaults: "+c.loadErr.Error()))
	}
	lines = append(lines,
		"",
		row("Sleep Hotkey", cfg.SleepHotkey),
		row("Mode Hotkey", cfg.ModeHotkey),
		"",
		row("Background Color", cfg.BackgroundColor),
		row("Sprite Directory", displayOrDefault(cfg.SpriteDir, "(built-in)")),
		row("Log Level", cfg.LogLevel),
		"",
		row("Topology Poll", fmt.Sprintf("%d ms", cfg.TopologyPollIntervalMs)),
		row("Pointer Poll", fmt.Sprintf("%d ms", cfg.PointerPollIntervalMs)),
		row("Double Click", fmt.Sprintf("%d ms", cfg.DoubleClickMs)),
		"",
		dimStyle.Render("  Press 'e' to edit settings, ctrl-s to save"),
	)

	return lipgloss.NewStyle().
		Width(c.width).
		Height(c.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (c ConfigTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Config") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	content := header + "\n\n" + c.form.View()

	return lipgloss.NewStyle().
		Width(c.width).
		Height(c.height).
		Padding(1, 2).
		Render(content)
}

func displayOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
