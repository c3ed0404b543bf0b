package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/oneko/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing changes, awaiting confirm
	saveResult            // showing outcome message
)

// configChange is one top-level key whose value differs between the saved
// and the edited config. An empty side means the key is omitted there.
type configChange struct {
	key      string
	previous string
	next     string
}

// SaveOverlay shows pending config changes and writes them on confirmation.
type SaveOverlay struct {
	phase    savePhase
	changes  []configChange
	err      error
	reloaded bool
	offset   int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the pending changes and opens the preview.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.offset = 0

	changes, err := computeChanges(original, current)
	switch {
	case err != nil:
		s.phase = saveResult
		s.err = err
	case len(changes) == 0:
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
	default:
		s.changes = changes
		s.phase = savePreview
	}
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. A nil daemon skips the
// reload after a successful write.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, daemon Daemon) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}

	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}

	switch km.String() {
	case "esc", "n":
		s.phase = saveHidden
	case "enter", "y":
		s.err = cfg.Save(path)
		if s.err == nil && daemon != nil {
			s.reloaded = daemon.Reload() == nil
		}
		s.phase = saveResult
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(s.changes)-1 {
			s.offset++
		}
	}
	return s
}

// View renders the overlay centered in the content area.
func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return placeBox(width, height, 80, s.previewContent(width, height))
	case saveResult:
		return placeBox(width, height, 60, s.resultContent())
	}
	return ""
}

func (s SaveOverlay) previewContent(areaW, areaH int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	oldStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	newStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	footStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// title, blank, blank, footer, border and padding
	rows := areaH - 10
	if rows < 3 {
		rows = 3
	}
	end := s.offset + rows
	if end > len(s.changes) {
		end = len(s.changes)
	}

	keyW := 0
	for _, c := range s.changes {
		if len(c.key) > keyW {
			keyW = len(c.key)
		}
	}

	var lines []string
	for _, c := range s.changes[s.offset:end] {
		lines = append(lines, keyStyle.Render(fmt.Sprintf("%-*s  ", keyW, c.key))+
			oldStyle.Render(valueOrUnset(c.previous))+
			footStyle.Render(" → ")+
			newStyle.Render(valueOrUnset(c.next)))
	}

	title := titleStyle.Render(fmt.Sprintf("Save Config: %d pending change(s)", len(s.changes)))
	footer := footStyle.Render("enter: save  esc: cancel  j/k: scroll")
	return title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + footer
}

func (s SaveOverlay) resultContent() string {
	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).
			Render("Error: " + s.err.Error())
	} else {
		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		msg = okStyle.Bold(true).Render("Config saved successfully")
		if s.reloaded {
			msg += "\n" + okStyle.Render("Daemon reloaded")
		}
	}
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	return msg + "\n\n" + footer
}

// placeBox draws content in a rounded box at most maxW wide, centered in the
// area.
func placeBox(areaW, areaH, maxW int, content string) string {
	boxW := areaW - 8
	if boxW > maxW {
		boxW = maxW
	}
	if boxW < 30 {
		boxW = 30
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, box)
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

// computeChanges compares the YAML form of two configs key by key, in the
// order the keys appear in current.
func computeChanges(original, current *config.Config) ([]configChange, error) {
	if original == nil || current == nil {
		return nil, nil
	}
	prevKeys, prev, err := yamlScalars(original)
	if err != nil {
		return nil, err
	}
	nextKeys, next, err := yamlScalars(current)
	if err != nil {
		return nil, err
	}

	keys := nextKeys
	for _, k := range prevKeys {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}

	var changes []configChange
	for _, k := range keys {
		if prev[k] != next[k] {
			changes = append(changes, configChange{key: k, previous: prev[k], next: next[k]})
		}
	}
	return changes, nil
}

// yamlScalars returns the top-level keys of cfg's YAML encoding in document
// order together with their scalar values.
func yamlScalars(cfg *config.Config) ([]string, map[string]string, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if doc.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("config did not encode to a mapping")
	}

	keys := make([]string, 0, len(doc.Content)/2)
	values := make(map[string]string, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		k := doc.Content[i].Value
		keys = append(keys, k)
		values[k] = doc.Content[i+1].Value
	}
	return keys, values, nil
}

// cloneConfig returns an independent copy of cfg.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	return &clone
}
