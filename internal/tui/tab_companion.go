package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/oneko/internal/engine"
	"github.com/1broseidon/oneko/internal/ipc"
	"github.com/1broseidon/oneko/internal/sprite"
)

type actionKind int

const (
	actionMode actionKind = iota
	actionVariant
	actionInvert
	actionSleep
)

// companionItem implements list.Item for the companion action menu.
type companionItem struct {
	kind    actionKind
	value   string
	current bool
}

func (i companionItem) Title() string {
	prefix := "  "
	if i.current {
		prefix = "* "
	}
	switch i.kind {
	case actionMode:
		return prefix + "mode: " + i.value
	case actionVariant:
		return prefix + "skin: " + i.value
	case actionInvert:
		return prefix + "invert colors"
	default:
		return prefix + "toggle sleep"
	}
}

func (i companionItem) Description() string { return "" }
func (i companionItem) FilterValue() string { return i.value }

// statusMsg is sent after an IPC action completes.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// CompanionTab is the sub-model for switching mode, skin and inversion.
type CompanionTab struct {
	list   list.Model
	daemon Daemon
	status *ipc.StatusData

	statusText string

	width  int
	height int
	ready  bool
}

// NewCompanionTab creates a CompanionTab showing status, which may be nil
// when the daemon is not running.
func NewCompanionTab(daemon Daemon, status *ipc.StatusData) CompanionTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(buildCompanionItems(status), delegate, 0, 0)
	l.Title = "Companion"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return CompanionTab{
		list:   l,
		daemon: daemon,
		status: status,
	}
}

func buildCompanionItems(status *ipc.StatusData) []list.Item {
	var mode, variant string
	var inverted bool
	if status != nil {
		mode = status.Mode
		variant = status.Variant
		inverted = status.Inverted
	}

	var items []list.Item
	for _, m := range engine.Modes() {
		items = append(items, companionItem{kind: actionMode, value: string(m), current: string(m) == mode})
	}
	for _, v := range sprite.Variants() {
		items = append(items, companionItem{kind: actionVariant, value: string(v), current: string(v) == variant})
	}
	items = append(items,
		companionItem{kind: actionInvert, value: "invert", current: inverted},
		companionItem{kind: actionSleep, value: "sleep", current: mode == string(engine.ModeSleep)},
	)
	return items
}

// Status returns the last status reported by the daemon.
func (ct CompanionTab) Status() *ipc.StatusData {
	return ct.status
}

// SetStatus replaces the displayed status and refreshes the markers.
func (ct *CompanionTab) SetStatus(status *ipc.StatusData) {
	ct.status = status
	ct.list.SetItems(buildCompanionItems(status))
}

// Init implements tea.Model.
func (ct CompanionTab) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (ct CompanionTab) Update(msg tea.Msg) (CompanionTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ct.width = msg.Width
		ct.height = msg.Height
		ct.updateListSize()
		ct.ready = true
		return ct, nil

	case statusMsg:
		ct.statusText = msg.text
		return ct, clearStatusAfter()

	case clearStatusMsg:
		ct.statusText = ""
		return ct, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "a":
			return ct.applySelected()
		case "i":
			return ct.apply("inversion toggled", func() (*ipc.StatusData, error) {
				return ct.daemon.SetInverted(nil)
			})
		case "s":
			return ct.apply("sleep toggled", ct.daemonToggleSleep)
		}
	}

	var cmd tea.Cmd
	ct.list, cmd = ct.list.Update(msg)
	return ct, cmd
}

func (ct CompanionTab) daemonToggleSleep() (*ipc.StatusData, error) {
	return ct.daemon.ToggleSleep()
}

func (ct *CompanionTab) updateListSize() {
	// Reserve 2 lines for status bar at bottom of the tab content
	listHeight := ct.height - 2
	if listHeight < 1 {
		listHeight = 1
	}
	ct.list.SetSize(ct.sidebarWidth(), listHeight)
}

func (ct CompanionTab) sidebarWidth() int {
	sw := ct.width * 35 / 100
	if sw < 20 {
		sw = 20
	}
	if sw > 40 {
		sw = 40
	}
	return sw
}

func (ct CompanionTab) selectedItem() (companionItem, bool) {
	item, ok := ct.list.SelectedItem().(companionItem)
	return item, ok
}

func (ct CompanionTab) applySelected() (CompanionTab, tea.Cmd) {
	item, ok := ct.selectedItem()
	if !ok {
		return ct, nil
	}
	switch item.kind {
	case actionMode:
		return ct.apply("mode: "+item.value, func() (*ipc.StatusData, error) {
			return ct.daemon.SetMode(item.value)
		})
	case actionVariant:
		return ct.apply("skin: "+item.value, func() (*ipc.StatusData, error) {
			return ct.daemon.SetVariant(item.value)
		})
	case actionInvert:
		return ct.apply("inversion toggled", func() (*ipc.StatusData, error) {
			return ct.daemon.SetInverted(nil)
		})
	default:
		return ct.apply("sleep toggled", ct.daemonToggleSleep)
	}
}

func (ct CompanionTab) apply(done string, call func() (*ipc.StatusData, error)) (CompanionTab, tea.Cmd) {
	if ct.daemon == nil {
		ct.statusText = "daemon not connected"
		return ct, clearStatusAfter()
	}
	status, err := call()
	if err != nil {
		ct.statusText = fmt.Sprintf("error: %v", err)
		return ct, clearStatusAfter()
	}
	ct.SetStatus(status)
	ct.statusText = done
	return ct, clearStatusAfter()
}

// View implements tea.Model.
func (ct CompanionTab) View() string {
	if !ct.ready || ct.width == 0 || ct.height == 0 {
		return ""
	}

	sidebarWidth := ct.sidebarWidth()
	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(ct.height - 2).
		Render(ct.list.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", max(ct.height-2, 1)))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, ct.renderDetails())
	status := renderTabStatus(ct.statusText, "enter/a:apply  i:invert  s:sleep", ct.width)
	return lipgloss.JoinVertical(lipgloss.Left, columns, status)
}

func (ct CompanionTab) renderDetails() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("250"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	s := ct.status
	if s == nil {
		return " " + titleStyle.Render("Status") + "\n\n " + dimStyle.Render("daemon not running")
	}

	row := func(label, value string) string {
		return " " + labelStyle.Render(label) + valueStyle.Render(value)
	}
	roam := s.RoamEdge
	if roam == "" {
		roam = "-"
	}
	lines := []string{
		" " + titleStyle.Render("Status"),
		"",
		row("Mode", s.Mode),
		row("Last active", s.LastNonSleep),
		row("Skin", s.Variant),
		row("Inverted", fmt.Sprintf("%t", s.Inverted)),
		"",
		row("Position", fmt.Sprintf("%.0f, %.0f", s.Position.X, s.Position.Y)),
		row("Target", fmt.Sprintf("%.0f, %.0f", s.Target.X, s.Target.Y)),
		row("Animation", s.Animation),
		row("Sprite", s.Sprite),
		row("Display", fmt.Sprintf("%d", s.DisplayID)),
		row("Roam edge", roam),
		row("Grabbing", fmt.Sprintf("%t", s.Grabbing)),
		row("Uptime", (time.Duration(s.UptimeSeconds) * time.Second).String()),
	}
	return strings.Join(lines, "\n")
}
