// Package midimap routes MIDI control changes to orchestrator parameters.
package midimap

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"

	"github.com/vovakirdan/chaosynth/internal/core"
)

// Target receives parameter updates. Orchestrators implement it.
type Target interface {
	UpdateParameter(name string, value float64) error
}

// Binding maps one controller number to a parameter range on a target.
type Binding struct {
	Controller uint8   `yaml:"cc" json:"cc"`
	Target     string  `yaml:"target" json:"target"`
	Param      string  `yaml:"param" json:"param"`
	Min        float64 `yaml:"min" json:"min"`
	Max        float64 `yaml:"max" json:"max"`
}

// Scale maps a 7-bit controller value onto the binding's range.
func (b Binding) Scale(value uint8) float64 {
	v := float64(min(value, 127)) / 127
	return core.Lerp(b.Min, b.Max, v)
}

// Mapper dispatches control changes to targets. It is safe for concurrent use.
type Mapper struct {
	mu       sync.RWMutex
	targets  map[string]Target
	bindings map[uint8][]Binding
	logger   *log.Logger
}

// New creates a mapper over named targets.
func New(targets map[string]Target, logger *log.Logger) *Mapper {
	if logger == nil {
		logger = log.Default()
	}
	return &Mapper{
		targets:  targets,
		bindings: make(map[uint8][]Binding),
		logger:   logger,
	}
}

// Map adds a binding. One controller may drive several parameters.
func (m *Mapper) Map(b Binding) error {
	if b.Controller > 127 {
		return fmt.Errorf("midimap: controller %d out of range", b.Controller)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.targets[b.Target]; !ok {
		return fmt.Errorf("midimap: unknown target %q", b.Target)
	}
	m.bindings[b.Controller] = append(m.bindings[b.Controller], b)
	return nil
}

// Unmap removes every binding on a controller.
func (m *Mapper) Unmap(controller uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, controller)
}

// Bindings returns all bindings ordered by controller.
func (m *Mapper) Bindings() []Binding {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Binding
	for _, bs := range m.bindings {
		out = append(out, bs...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Controller < out[j].Controller })
	return out
}

// HandleControl applies a control change and returns how many parameters
// accepted the update. Rejected updates are logged by the target.
func (m *Mapper) HandleControl(controller, value uint8) int {
	m.mu.RLock()
	bindings := append([]Binding(nil), m.bindings[controller]...)
	m.mu.RUnlock()

	applied := 0
	for _, b := range bindings {
		target := m.targets[b.Target]
		if err := target.UpdateParameter(b.Param, b.Scale(value)); err != nil {
			m.logger.Debug("midi update rejected", "cc", controller, "param", b.Param, "err", err)
			continue
		}
		applied++
	}
	if len(bindings) == 0 {
		m.logger.Debug("unmapped controller", "cc", controller, "value", value)
	}
	return applied
}

// HandleMessage applies msg if it is a control change. Reports whether it was one.
func (m *Mapper) HandleMessage(msg midi.Message) bool {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		m.logger.Debug("unhandled MIDI message", "msg", msg.String())
		return false
	}
	m.HandleControl(cc, val)
	return true
}

// messageLength returns the size of a channel message by status byte, or 0
// for system and data bytes.
func messageLength(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 3
	case 0xC0, 0xD0:
		return 2
	}
	return 0
}

// HandleBytes parses a raw stream of channel messages and applies the
// control changes. Running status is not supported. Returns the number of
// control changes seen.
func (m *Mapper) HandleBytes(data []byte) (int, error) {
	n := 0
	for i := 0; i < len(data); {
		size := messageLength(data[i])
		if size == 0 {
			return n, fmt.Errorf("midimap: unsupported status byte 0x%02X at offset %d", data[i], i)
		}
		if i+size > len(data) {
			return n, fmt.Errorf("midimap: truncated message at offset %d", i)
		}
		if m.HandleMessage(midi.Message(data[i : i+size])) {
			n++
		}
		i += size
	}
	return n, nil
}
