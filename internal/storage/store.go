// Package storage persists named presets as flat name to JSON object records.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxNameLength bounds preset names.
const MaxNameLength = 64

var (
	// ErrPresetNotFound is returned when a preset name has no stored payload.
	ErrPresetNotFound = errors.New("preset not found")
	// ErrInvalidPreset is returned for empty names or payloads that are not JSON objects.
	ErrInvalidPreset = errors.New("invalid preset")
)

// Entry is one stored preset.
type Entry struct {
	Name      string
	Payload   json.RawMessage
	UpdatedAt time.Time
}

// PresetStore is the persistence boundary used by the engine.
type PresetStore interface {
	Get(name string) (json.RawMessage, error)
	Set(name string, payload json.RawMessage) error
	List() ([]string, error)
	Entries() ([]Entry, error)
	Remove(name string) error
	Close() error
}

// NormalizeName trims the name and checks it is usable as a key.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("storage: empty preset name: %w", ErrInvalidPreset)
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("storage: preset name longer than %d: %w", MaxNameLength, ErrInvalidPreset)
	}
	return name, nil
}

func validatePayload(payload json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil || obj == nil {
		return fmt.Errorf("storage: payload is not a JSON object: %w", ErrInvalidPreset)
	}
	return nil
}
