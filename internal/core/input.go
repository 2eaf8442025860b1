package core

// Action represents a semantic console action, abstracted from physical key presses.
type Action int

const (
	ActionNone         Action = iota
	ActionNextKind            // Right, L - cycle focused generator kind forward
	ActionPrevKind            // Left, H - cycle focused generator kind backward
	ActionSwitchFocus         // Tab - toggle focus between chaos and bio
	ActionMorph               // M - perturb chaotic state
	ActionToggle              // Space - start/stop the focused orchestrator
	ActionQuantize            // Z - toggle pitch quantization
	ActionDensityUp           // ] - raise density
	ActionDensityDown         // [ - lower density
	ActionSpeedUp             // Up, K - raise speed
	ActionSpeedDown           // Down, J - lower speed
	ActionSavePreset          // S - snapshot parameters as a preset
	ActionPresets             // P - open preset browser
	ActionReset               // R - reset generator state
	ActionQuit                // Q, Ctrl+C - exit session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionNextKind:
		return "NextKind"
	case ActionPrevKind:
		return "PrevKind"
	case ActionSwitchFocus:
		return "SwitchFocus"
	case ActionMorph:
		return "Morph"
	case ActionToggle:
		return "Toggle"
	case ActionQuantize:
		return "Quantize"
	case ActionDensityUp:
		return "DensityUp"
	case ActionDensityDown:
		return "DensityDown"
	case ActionSpeedUp:
		return "SpeedUp"
	case ActionSpeedDown:
		return "SpeedDown"
	case ActionSavePreset:
		return "SavePreset"
	case ActionPresets:
		return "Presets"
	case ActionReset:
		return "Reset"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame represents the actions collected during one console tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}
