package config

import (
	_ "embed"

	"github.com/vovakirdan/chaosynth/internal/midimap"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/registry"
)

//go:embed defaults/chaosynth.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Default returns the hardcoded configuration.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			MaxVoices:  64,
			TickRate:   60,
			Output:     true,
			Window:     1024,
		},
		Pool: PoolConfig{
			Sine:     8,
			Square:   4,
			Sawtooth: 4,
			Triangle: 6,
		},
		Chaos:    orchestrator.DefaultSettings(registry.FamilyChaos),
		Bio:      orchestrator.DefaultSettings(registry.FamilyBio),
		Triggers: orchestrator.DefaultTriggers(),
		MIDI: []midimap.Binding{
			{Controller: 1, Target: string(registry.FamilyChaos), Param: orchestrator.ParamDensity, Min: 0, Max: 1},
			{Controller: 2, Target: string(registry.FamilyChaos), Param: orchestrator.ParamSpeed, Min: 0.1, Max: 5},
			{Controller: 7, Target: string(registry.FamilyChaos), Param: orchestrator.ParamVolume, Min: 0, Max: 1},
			{Controller: 11, Target: string(registry.FamilyBio), Param: orchestrator.ParamVolume, Min: 0, Max: 1},
			{Controller: 74, Target: string(registry.FamilyBio), Param: orchestrator.ParamDensity, Min: 0, Max: 1},
		},
		Presets: PresetsConfig{
			Backend: "sqlite",
			Path:    "~/.chaosynth/presets.db",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8740",
		},
		SSH: SSHConfig{
			Host:        "0.0.0.0",
			Port:        23235,
			HostKeyPath: ".ssh/chaosynth_ed25519",
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.chaosynth/chaosynth.log",
		},
	}
}
