package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/oneko/internal/config"
	"github.com/1broseidon/oneko/internal/ipc"
)

const refreshInterval = 2 * time.Second

// refreshMsg triggers a poll of the daemon status.
type refreshMsg struct{}

func refreshAfter() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	cfg        *config.Config
	daemon     Daemon

	// Tab navigation
	activeTab Tab

	// Sub-models
	companionTab CompanionTab
	displaysTab  DisplaysTab
	configTab    ConfigTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Daemon state
	daemonConnected bool
	status          *ipc.StatusData

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string, daemon Daemon) model {
	m := model{
		configPath: configPath,
		daemon:     daemon,
		activeTab:  TabCompanion,
	}

	loadErr := m.loadConfig()

	// Snapshot original config for diff preview on save
	m.originalConfig = cloneConfig(m.cfg)

	m.refreshDaemonStatus()

	m.companionTab = NewCompanionTab(daemon, m.status)
	m.displaysTab = NewDisplaysTab(daemon)
	m.configTab = NewConfigTab(m.cfg, m.configPath, loadErr)

	return m
}

// loadConfig reads the config, falling back to defaults so the panel can
// still be used to write a fixed file.
func (m *model) loadConfig() error {
	if m.configPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			m.configPath = p
		}
	}

	res, err := config.LoadFromPath(m.configPath)
	if err != nil {
		m.cfg = config.DefaultConfig()
		return err
	}
	m.cfg = res.Config
	return nil
}

func (m *model) refreshDaemonStatus() {
	if m.daemon == nil {
		m.daemonConnected = false
		m.status = nil
		return
	}
	status, err := m.daemon.GetStatus()
	if err != nil {
		m.daemonConnected = false
		m.status = nil
		return
	}
	m.daemonConnected = true
	m.status = status
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.companionTab, _ = m.companionTab.Update(subMsg)
	m.displaysTab, _ = m.displaysTab.Update(subMsg)
	m.configTab, _ = m.configTab.Update(subMsg)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return refreshAfter()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(refreshMsg); ok {
		m.refreshDaemonStatus()
		m.companionTab.SetStatus(m.status)
		return m, refreshAfter()
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			var daemon Daemon
			if m.daemonConnected {
				daemon = m.daemon
			}
			m.saveOverlay = m.saveOverlay.Update(msg, m.cfg, m.configPath, daemon)
			// After successful save, update the original snapshot
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.cfg)
			}
		case tea.WindowSizeMsg:
			m.resize(msg.Width, msg.Height)
		}
		return m, nil
	}

	// ctrl+s triggers save overlay from any context (including form editing)
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.cfg != nil {
			m.saveOverlay.Show(m.originalConfig, m.cfg)
		}
		return m, nil
	}

	// The config form consumes keys; only ctrl+c escapes to quit
	if m.activeTab == TabConfig && m.configTab.editing {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.resize(msg.Width, msg.Height)
			return m, nil
		}
		var cmd tea.Cmd
		m.configTab, cmd = m.configTab.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabCompanion
			return m, nil
		case "2":
			m.activeTab = TabDisplays
			return m, nil
		case "3":
			m.activeTab = TabConfig
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	// Delegate to active tab's sub-model
	var cmd tea.Cmd
	switch m.activeTab {
	case TabCompanion:
		m.companionTab, cmd = m.companionTab.Update(msg)
		if s := m.companionTab.Status(); s != nil {
			m.status = s
			m.daemonConnected = true
		}
	case TabDisplays:
		m.displaysTab, cmd = m.displaysTab.Update(msg)
	case TabConfig:
		m.configTab, cmd = m.configTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var mode, variant string
	if m.status != nil {
		mode = m.status.Mode
		variant = m.status.Variant
	}
	statusBar := renderStatusBar(m.daemonConnected, mode, variant, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabCompanion:
			content = m.companionTab.View()
		case TabDisplays:
			content = m.displaysTab.View()
		case TabConfig:
			content = m.configTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
