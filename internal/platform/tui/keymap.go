package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/chaosynth/internal/core"
)

// KeyMap defines the console key bindings.
type KeyMap struct {
	NextKind    key.Binding
	PrevKind    key.Binding
	SwitchFocus key.Binding
	Morph       key.Binding
	Toggle      key.Binding
	Quantize    key.Binding
	DensityUp   key.Binding
	DensityDown key.Binding
	SpeedUp     key.Binding
	SpeedDown   key.Binding
	SavePreset  key.Binding
	Presets     key.Binding
	Reset       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchFocus, k.NextKind, k.Toggle, k.Morph, k.Presets, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SwitchFocus, k.NextKind, k.PrevKind, k.Toggle, k.Reset},
		{k.DensityUp, k.DensityDown, k.SpeedUp, k.SpeedDown, k.Quantize},
		{k.Morph, k.SavePreset, k.Presets, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextKind: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next kind"),
		),
		PrevKind: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev kind"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "chaos/bio"),
		),
		Morph: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "morph"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/stop"),
		),
		Quantize: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "quantize"),
		),
		DensityUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "density +"),
		),
		DensityDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "density -"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "speed +"),
		),
		SpeedDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "speed -"),
		),
		SavePreset: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save preset"),
		),
		Presets: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "presets"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to console actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys  KeyMap
	table []actionBinding
}

type actionBinding struct {
	binding *key.Binding
	action  core.Action
}

// NewKeyMapper creates a key mapper over keys.
func NewKeyMapper(keys KeyMap) *KeyMapper {
	km := &KeyMapper{keys: keys}
	add := func(b *key.Binding, a core.Action) {
		km.table = append(km.table, actionBinding{binding: b, action: a})
	}
	add(&km.keys.Quit, core.ActionQuit)
	add(&km.keys.NextKind, core.ActionNextKind)
	add(&km.keys.PrevKind, core.ActionPrevKind)
	add(&km.keys.SwitchFocus, core.ActionSwitchFocus)
	add(&km.keys.Morph, core.ActionMorph)
	add(&km.keys.Toggle, core.ActionToggle)
	add(&km.keys.Quantize, core.ActionQuantize)
	add(&km.keys.DensityUp, core.ActionDensityUp)
	add(&km.keys.DensityDown, core.ActionDensityDown)
	add(&km.keys.SpeedUp, core.ActionSpeedUp)
	add(&km.keys.SpeedDown, core.ActionSpeedDown)
	add(&km.keys.SavePreset, core.ActionSavePreset)
	add(&km.keys.Presets, core.ActionPresets)
	add(&km.keys.Reset, core.ActionReset)
	return km
}

// Keys returns the bindings the mapper was built with.
func (km *KeyMapper) Keys() KeyMap {
	return km.keys
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	for _, entry := range km.table {
		if key.Matches(msg, *entry.binding) {
			return entry.action, entry.action == core.ActionQuit
		}
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone && !isQuit {
		frame.Set(action)
	}
	return isQuit
}
