package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/storage"
)

// ErrPresetsUnavailable is returned by preset operations when no store could
// be opened.
var ErrPresetsUnavailable = errors.New("presets unavailable")

// Preset is the settings of both orchestrators.
type Preset struct {
	Chaos orchestrator.Settings `json:"chaos"`
	Bio   orchestrator.Settings `json:"bio"`
}

// PresetInfo describes a stored preset.
type PresetInfo struct {
	Name      string    `json:"name"`
	Preset    Preset    `json:"preset"`
	UpdatedAt time.Time `json:"updated_at"`
	Valid     bool      `json:"valid"`
}

// CurrentPreset captures the live settings.
func (e *Engine) CurrentPreset() Preset {
	return Preset{Chaos: e.chaos.Settings(), Bio: e.bio.Settings()}
}

// HasPresets reports whether a preset store is available.
func (e *Engine) HasPresets() bool {
	return e.presets != nil
}

// SavePreset stores the live settings under name.
func (e *Engine) SavePreset(name string) error {
	return e.PutPreset(name, e.CurrentPreset())
}

// PutPreset stores p under name without applying it.
func (e *Engine) PutPreset(name string, p Preset) error {
	if e.presets == nil {
		return ErrPresetsUnavailable
	}
	payload, err := storage.Encode(p)
	if err != nil {
		return err
	}
	if err := e.presets.Set(name, payload); err != nil {
		e.logger.Warn("preset save failed", "name", name, "err", err)
		return err
	}
	e.logger.Info("preset saved", "name", name)
	return nil
}

// GetPreset reads a stored preset.
func (e *Engine) GetPreset(name string) (Preset, error) {
	var p Preset
	if e.presets == nil {
		return p, ErrPresetsUnavailable
	}
	payload, err := e.presets.Get(name)
	if err != nil {
		return p, err
	}
	if err := storage.Decode(payload, &p); err != nil {
		return p, err
	}
	return p, nil
}

// LoadPreset applies a stored preset to both orchestrators. Invalid fields
// keep their current values; the returned error lists them.
func (e *Engine) LoadPreset(name string) error {
	p, err := e.GetPreset(name)
	if err != nil {
		return err
	}
	return e.ApplyPreset(p)
}

// ApplyPreset applies p to both orchestrators.
func (e *Engine) ApplyPreset(p Preset) error {
	err := errors.Join(
		e.chaos.ApplySettings(p.Chaos),
		e.bio.ApplySettings(p.Bio),
	)
	if err != nil {
		return fmt.Errorf("engine: preset partially applied: %w", err)
	}
	return nil
}

// ListPresets returns stored preset names, sorted.
func (e *Engine) ListPresets() ([]string, error) {
	if e.presets == nil {
		return nil, ErrPresetsUnavailable
	}
	return e.presets.List()
}

// PresetInfos returns every stored preset with its decoded settings.
// Undecodable payloads are reported with Valid false.
func (e *Engine) PresetInfos() ([]PresetInfo, error) {
	if e.presets == nil {
		return nil, ErrPresetsUnavailable
	}
	entries, err := e.presets.Entries()
	if err != nil {
		return nil, err
	}
	infos := make([]PresetInfo, 0, len(entries))
	for _, entry := range entries {
		info := PresetInfo{Name: entry.Name, UpdatedAt: entry.UpdatedAt}
		info.Valid = storage.Decode(entry.Payload, &info.Preset) == nil
		infos = append(infos, info)
	}
	return infos, nil
}

// DeletePreset removes a stored preset.
func (e *Engine) DeletePreset(name string) error {
	if e.presets == nil {
		return ErrPresetsUnavailable
	}
	return e.presets.Remove(name)
}
