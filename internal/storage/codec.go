package storage

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is written into every encoded preset document.
const CurrentVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Encode wraps v in a versioned JSON object suitable for PresetStore.Set.
func Encode(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot encode preset: %w", err)
	}
	out, err := json.Marshal(envelope{Version: CurrentVersion, Data: data})
	if err != nil {
		return nil, fmt.Errorf("storage: cannot encode preset: %w", err)
	}
	return out, nil
}

// Decode unwraps a payload produced by Encode into v.
func Decode(payload json.RawMessage, v any) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("storage: cannot decode preset: %w", err)
	}
	if env.Version != CurrentVersion {
		return fmt.Errorf("storage: unsupported preset version %d: %w", env.Version, ErrInvalidPreset)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("storage: preset has no data: %w", ErrInvalidPreset)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("storage: cannot decode preset: %w", err)
	}
	return nil
}
