// Package tui is the interactive terminal control panel for the companion.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/oneko/internal/ipc"
)

// Daemon is the IPC surface the panel drives. *ipc.Client satisfies it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	SetMode(mode string) (*ipc.StatusData, error)
	SetVariant(variant string) (*ipc.StatusData, error)
	SetInverted(inverted *bool) (*ipc.StatusData, error)
	ToggleSleep() (*ipc.StatusData, error)
	Reload() error
}

// TUI is the terminal control panel.
type TUI struct {
	configPath string
	daemon     Daemon
}

// New creates a panel editing the config at configPath (empty means the
// default location) and talking to the daemon over the default socket.
func New(configPath string) *TUI {
	return &TUI{
		configPath: configPath,
		daemon:     ipc.NewClient(),
	}
}

// Run starts the TUI main loop.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(t.configPath, t.daemon), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
