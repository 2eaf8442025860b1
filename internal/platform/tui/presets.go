package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/chaosynth/internal/engine"
)

// Preset browser layout constants
const (
	browserChrome = 8  // title, frame, help and margins
	nameMinWidth  = 12 // name column never shrinks below this
	kindWidth     = 12
	updatedWidth  = 14
)

// PresetKeyMap defines the key bindings for the preset browser.
type PresetKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Load   key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k PresetKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Load, k.Delete, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k PresetKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Load, k.Delete},
		{k.Back, k.Quit},
	}
}

// DefaultPresetKeyMap returns default key bindings.
func DefaultPresetKeyMap() PresetKeyMap {
	return PresetKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Load: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// PresetBrowser is the Bubble Tea model for the preset list. It runs either
// embedded in the console or as its own program.
type PresetBrowser struct {
	engine     *engine.Engine
	presets    []engine.PresetInfo
	table      table.Model
	help       help.Model
	keys       PresetKeyMap
	theme      Theme
	width      int
	height     int
	message    string
	loaded     string // name of the preset applied last
	standalone bool
	readOnly   bool // load and delete are disabled
	quitting   bool
	goingBack  bool
}

// NewPresetBrowser creates a browser over the engine's preset store. A
// read-only browser lists presets but cannot load or delete them.
func NewPresetBrowser(e *engine.Engine, theme Theme, width, height int, readOnly bool) PresetBrowser {
	h := help.New()
	h.ShowAll = false
	h.Width = width

	m := PresetBrowser{
		engine:   e,
		keys:     DefaultPresetKeyMap(),
		help:     h,
		theme:    theme,
		width:    width,
		height:   height,
		readOnly: readOnly,
	}
	if readOnly {
		m.keys.Load.SetEnabled(false)
		m.keys.Delete.SetEnabled(false)
	}
	m.table = m.createTable()
	m.reload()
	return m
}

// createTable creates a table sized to the current window.
func (m *PresetBrowser) createTable() table.Model {
	nameWidth := max(m.width-4-2*kindWidth-updatedWidth-8, nameMinWidth)
	columns := []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Chaos", Width: kindWidth},
		{Title: "Bio", Width: kindWidth},
		{Title: "Updated", Width: updatedWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-browserChrome, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// reload reads the preset list from the store.
func (m *PresetBrowser) reload() {
	infos, err := m.engine.PresetInfos()
	if err != nil {
		m.presets = nil
		m.message = err.Error()
	} else {
		m.presets = infos
	}
	m.updateTableRows()
}

func (m *PresetBrowser) updateTableRows() {
	rows := make([]table.Row, len(m.presets))
	for i, p := range m.presets {
		chaosKind, bioKind := p.Preset.Chaos.Kind, p.Preset.Bio.Kind
		if !p.Valid {
			chaosKind, bioKind = "invalid", "-"
		}
		rows[i] = table.Row{
			p.Name,
			chaosKind,
			bioKind,
			p.UpdatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoBottom()
	}
}

func (m PresetBrowser) selected() (engine.PresetInfo, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.presets) {
		return engine.PresetInfo{}, false
	}
	return m.presets[i], true
}

// Init initializes the browser.
func (m PresetBrowser) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m PresetBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			return m.back()

		case key.Matches(msg, m.keys.Load):
			p, ok := m.selected()
			if !ok {
				return m, nil
			}
			if err := m.engine.LoadPreset(p.Name); err != nil {
				m.message = err.Error()
				return m, nil
			}
			m.loaded = p.Name
			return m.back()

		case key.Matches(msg, m.keys.Delete):
			p, ok := m.selected()
			if !ok {
				return m, nil
			}
			if err := m.engine.DeletePreset(p.Name); err != nil {
				m.message = err.Error()
			} else {
				m.message = fmt.Sprintf("deleted %q", p.Name)
			}
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m PresetBrowser) back() (tea.Model, tea.Cmd) {
	m.goingBack = true
	if m.standalone {
		return m, tea.Quit
	}
	return m, nil
}

// View renders the browser.
func (m PresetBrowser) View() string {
	if m.quitting || (m.goingBack && m.standalone) {
		return ""
	}

	var b strings.Builder
	title := fmt.Sprintf("PRESETS (%d)", len(m.presets))
	if m.readOnly {
		title += " - READ ONLY"
	}
	b.WriteString(m.theme.BrowserTitle.Render(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title)))
	b.WriteString("\n\n")

	var content string
	switch {
	case !m.engine.HasPresets():
		content = m.theme.BrowserEmpty.Render("Preset storage is unavailable.")
	case len(m.presets) == 0:
		content = m.theme.BrowserEmpty.Render("No presets saved yet.\nPress s in the console to save one.")
	default:
		content = m.table.View()
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.theme.BrowserFrame.Render(content)))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(m.theme.Message.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.HUDControls.Render(m.help.View(m.keys)))

	return b.String()
}

// IsGoingBack returns true if the user closed the browser.
func (m PresetBrowser) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if the user wants to quit entirely.
func (m PresetBrowser) IsQuitting() bool {
	return m.quitting
}

// Loaded returns the name of the preset the user applied, if any.
func (m PresetBrowser) Loaded() string {
	return m.loaded
}

// RunPresetBrowser runs the browser as its own program and returns the name
// of the loaded preset, or "" when none was loaded.
func RunPresetBrowser(e *engine.Engine, theme Theme, width, height int) (string, error) {
	model := NewPresetBrowser(e, theme, width, height, false)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := finalModel.(PresetBrowser)
	if !ok {
		return "", nil
	}
	return m.Loaded(), nil
}
