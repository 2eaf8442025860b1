package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/chaosynth/internal/core"
	"github.com/vovakirdan/chaosynth/internal/engine"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/registry"
)

// Console tuning
const (
	densityStep = 0.05
	speedStep   = 0.1
	morphAmount = 1.0
	historyRows = 32
	chromeRows  = 3 // header, status line, help
	messageTTL  = 3 * time.Second
)

// Options configures a console.
type Options struct {
	Config core.RuntimeConfig

	// Headless consoles advance the engine clock themselves; otherwise an
	// audio output owns the clock and the console only syncs the scheduler.
	Headless bool

	// ReadOnly consoles only switch focus, browse and quit.
	ReadOnly bool

	Title string
	Theme *Theme // nil selects DefaultTheme
}

// Model is the Bubble Tea model for the live console.
type Model struct {
	engine     *engine.Engine
	screen     *core.Screen
	config     core.RuntimeConfig
	opts       Options
	theme      Theme
	keyMapper  *KeyMapper
	help       help.Model
	inputFrame core.InputFrame
	focus      registry.Family
	message    string
	warning    bool
	messageAt  time.Time
	browser    *PresetBrowser
	quitting   bool
}

// NewModel creates a console over e.
func NewModel(e *engine.Engine, opts Options) Model {
	cfg := opts.Config
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	if opts.Title == "" {
		opts.Title = "chaosynth"
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	h := help.New()
	h.ShowAll = false

	return Model{
		engine:     e,
		screen:     core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-chromeRows, 1)),
		config:     cfg,
		opts:       opts,
		theme:      theme,
		keyMapper:  NewKeyMapper(DefaultKeyMap()),
		help:       h,
		inputFrame: core.NewInputFrame(),
		focus:      registry.FamilyChaos,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.browser != nil {
		return m.updateBrowser(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// updateBrowser routes messages to the preset browser while it is open.
// Ticks keep the engine running underneath.
func (m Model) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		m.advance()
		return m, tickCmd(m.config.TickRate)
	}
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
		m.screen.Resize(wsm.Width, max(wsm.Height-chromeRows, 1))
		m.help.Width = wsm.Width
	}

	updated, cmd := m.browser.Update(msg)
	b := updated.(PresetBrowser)
	m.browser = &b

	switch {
	case b.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case b.IsGoingBack():
		if name := b.Loaded(); name != "" {
			m.setMessage(fmt.Sprintf("loaded preset %q", name), false)
		}
		m.browser = nil
		return m, nil
	}
	return m, cmd
}

// handleKey collects actions for the next tick.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}
	if msg.String() == "?" {
		m.help.ShowAll = !m.help.ShowAll
	}
	if m.opts.ReadOnly {
		keep := m.inputFrame.Has(core.ActionSwitchFocus)
		browse := m.inputFrame.Has(core.ActionPresets)
		m.inputFrame.Clear()
		if keep {
			m.inputFrame.Set(core.ActionSwitchFocus)
		}
		if browse {
			m.inputFrame.Set(core.ActionPresets)
		}
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, max(msg.Height-chromeRows, 1))
	m.help.Width = msg.Width
	return m, nil
}

// handleTick applies collected actions, then moves the engine forward.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.applyActions()
	m.inputFrame.Clear()
	m.advance()

	if m.message != "" && time.Since(m.messageAt) > messageTTL {
		m.message = ""
	}
	return m, tickCmd(m.config.TickRate)
}

// advance moves the scheduler, and the audio clock in headless mode.
func (m *Model) advance() {
	if m.opts.Headless {
		m.engine.Step(m.config.TickInterval())
	} else {
		m.engine.Sync()
	}
	if vis := m.engine.Visualizer(); !vis.Running() {
		vis.Update()
	}
}

// focused returns the orchestrator the console is controlling.
func (m *Model) focused() *orchestrator.Orchestrator {
	if m.focus == registry.FamilyBio {
		return m.engine.Bio()
	}
	return m.engine.Chaos()
}

// applyActions executes the actions in the input frame.
func (m *Model) applyActions() {
	if m.inputFrame.Empty() {
		return
	}
	o := m.focused()
	st := o.Settings()

	for _, action := range orderedActions {
		if !m.inputFrame.Has(action) {
			continue
		}
		switch action {
		case core.ActionSwitchFocus:
			if m.focus == registry.FamilyChaos {
				m.focus = registry.FamilyBio
			} else {
				m.focus = registry.FamilyChaos
			}
		case core.ActionNextKind, core.ActionPrevKind:
			step := 1
			if action == core.ActionPrevKind {
				step = -1
			}
			next := registry.Next(o.Family(), st.Kind, step)
			m.report(o.SetKind(next), "kind "+next)
		case core.ActionToggle:
			if o.State() == orchestrator.Running {
				o.Stop()
				m.setMessage(string(o.Family())+" stopped", false)
			} else {
				o.Start(m.engine.Scheduler())
				m.setMessage(string(o.Family())+" started", false)
			}
		case core.ActionMorph:
			if m.engine.Chaos().Perturb(morphAmount) {
				m.setMessage("morph", false)
			}
		case core.ActionQuantize:
			v := 1.0
			if st.Quantize {
				v = 0
			}
			m.report(o.UpdateParameter(orchestrator.ParamQuantize, v), "")
		case core.ActionDensityUp, core.ActionDensityDown:
			m.nudge(o, orchestrator.ParamDensity, st.Density, densityStep, action == core.ActionDensityUp)
		case core.ActionSpeedUp, core.ActionSpeedDown:
			m.nudge(o, orchestrator.ParamSpeed, st.Speed, speedStep, action == core.ActionSpeedUp)
		case core.ActionReset:
			o.Reset()
			m.setMessage(string(o.Family())+" reset", false)
		case core.ActionSavePreset:
			m.savePreset()
		case core.ActionPresets:
			b := NewPresetBrowser(m.engine, m.theme, m.config.ScreenW, m.config.ScreenH, m.opts.ReadOnly)
			m.browser = &b
		}
	}
}

// orderedActions fixes the order actions are applied within one tick.
var orderedActions = []core.Action{
	core.ActionSwitchFocus,
	core.ActionNextKind,
	core.ActionPrevKind,
	core.ActionToggle,
	core.ActionMorph,
	core.ActionQuantize,
	core.ActionDensityUp,
	core.ActionDensityDown,
	core.ActionSpeedUp,
	core.ActionSpeedDown,
	core.ActionReset,
	core.ActionSavePreset,
	core.ActionPresets,
}

// nudge moves a parameter one step, clamped to its range.
func (m *Model) nudge(o *orchestrator.Orchestrator, name string, current, step float64, up bool) {
	lo, hi, _ := orchestrator.ParameterRange(o.Family(), name)
	if !up {
		step = -step
	}
	v := core.ClampF(current+step, lo, hi)
	m.report(o.UpdateParameter(name, v), fmt.Sprintf("%s %.2f", name, v))
}

func (m *Model) savePreset() {
	name := "live-" + time.Now().Format("20060102-150405")
	if err := m.engine.SavePreset(name); err != nil {
		if errors.Is(err, engine.ErrPresetsUnavailable) {
			m.setMessage("presets unavailable", true)
			return
		}
		m.setMessage("save failed: "+err.Error(), true)
		return
	}
	m.setMessage(fmt.Sprintf("saved preset %q", name), false)
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.setMessage(err.Error(), true)
		return
	}
	if ok != "" {
		m.setMessage(ok, false)
	}
}

func (m *Model) setMessage(text string, warning bool) {
	m.message = text
	m.warning = warning
	m.messageAt = time.Now()
}

// Focus returns the family the console is controlling.
func (m Model) Focus() registry.Family {
	return m.focus
}

// Message returns the current status line text.
func (m Model) Message() string {
	return m.message
}

// BrowserOpen reports whether the preset browser is showing.
func (m Model) BrowserOpen() bool {
	return m.browser != nil
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.browser != nil {
		return m.browser.View()
	}

	drawConsole(m.screen, frame{
		status:  m.engine.Status(),
		focus:   m.focus,
		bands:   m.engine.Visualizer().Bands(max(m.config.ScreenW/2-4, 1)),
		history: m.engine.History(historyRows),
	})

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	if m.message != "" {
		style := m.theme.Message
		if m.warning {
			style = m.theme.Warning
		}
		b.WriteString(style.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.HUDControls.Render(m.help.View(m.keyMapper.Keys())))
	return b.String()
}

func (m Model) header() string {
	sep := m.theme.HUDSeparator.Render(" │ ")
	mode := "live"
	if m.opts.Headless {
		mode = "headless"
	}
	if m.opts.ReadOnly {
		mode += " read-only"
	}
	return m.theme.HUDTitle.Render(m.opts.Title) + sep +
		m.theme.HUDValue.Render(fmt.Sprintf("t=%.1fs", m.engine.Now().Seconds())) + sep +
		m.theme.HUDValue.Render(mode)
}

// Run starts the Bubble Tea program for e.
func Run(e *engine.Engine, opts Options) error {
	model := NewModel(e, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
