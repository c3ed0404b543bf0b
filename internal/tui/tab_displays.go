package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/oneko/internal/ipc"
)

// DisplaysTab shows the daemon's view of the monitor layout and taskbars.
type DisplaysTab struct {
	daemon   Daemon
	displays []ipc.DisplayInfo
	err      error
	selected int

	width  int
	height int
}

// NewDisplaysTab creates a DisplaysTab and fetches the current layout.
func NewDisplaysTab(daemon Daemon) DisplaysTab {
	dt := DisplaysTab{daemon: daemon}
	dt.refresh()
	return dt
}

func (dt *DisplaysTab) refresh() {
	if dt.daemon == nil {
		dt.displays = nil
		dt.err = fmt.Errorf("daemon not connected")
		return
	}
	data, err := dt.daemon.GetDisplays()
	if err != nil {
		dt.displays = nil
		dt.err = err
		return
	}
	dt.err = nil
	dt.displays = data.Displays
	if dt.selected >= len(dt.displays) {
		dt.selected = 0
	}
}

// Update implements tea.Model.
func (dt DisplaysTab) Update(msg tea.Msg) (DisplaysTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dt.width = msg.Width
		dt.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			dt.refresh()
		case "up", "k":
			if dt.selected > 0 {
				dt.selected--
			}
		case "down", "j":
			if dt.selected < len(dt.displays)-1 {
				dt.selected++
			}
		}
	}
	return dt, nil
}

// View implements tea.Model.
func (dt DisplaysTab) View() string {
	if dt.width == 0 || dt.height == 0 {
		return ""
	}

	status := renderTabStatus("", "j/k:select  r:refresh", dt.width)
	bodyH := dt.height - 1
	if bodyH < 1 {
		bodyH = 1
	}

	if dt.err != nil || len(dt.displays) == 0 {
		msg := "no displays reported"
		if dt.err != nil {
			msg = dt.err.Error()
		}
		body := lipgloss.NewStyle().
			Width(dt.width).
			Height(bodyH).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render(msg)
		return lipgloss.JoinVertical(lipgloss.Left, body, status)
	}

	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	var rows []string
	for i, d := range dt.displays {
		name := d.Name
		if d.Primary {
			name += " (primary)"
		}
		line := fmt.Sprintf("%d  %-20s %s", d.ID, name, summarizeDisplay(d))
		if i == dt.selected {
			rows = append(rows, selStyle.Render("> "+line))
		} else {
			rows = append(rows, rowStyle.Render("  "+line))
		}
	}
	table := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(rows, "\n"))

	previewH := bodyH - lipgloss.Height(table) - 1
	if previewH < 3 {
		previewH = 3
	}
	lines := renderTopology(dt.displays, dt.selected, dt.width-4, previewH)
	preview := lipgloss.NewStyle().
		Foreground(lipgloss.Color("247")).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, table, "", preview, status)
}
