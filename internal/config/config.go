// Package config provides YAML-based configuration loading for chaosynth.
package config

import (
	"github.com/vovakirdan/chaosynth/internal/midimap"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/voice"
)

// Config is the complete process configuration.
type Config struct {
	Audio    AudioConfig           `yaml:"audio"`
	Pool     PoolConfig            `yaml:"pool"`
	Chaos    orchestrator.Settings `yaml:"chaos"`
	Bio      orchestrator.Settings `yaml:"bio"`
	Triggers orchestrator.Triggers `yaml:"triggers"`
	MIDI     []midimap.Binding     `yaml:"midi"`
	Presets  PresetsConfig         `yaml:"presets"`
	Server   ServerConfig          `yaml:"server"`
	SSH      SSHConfig             `yaml:"ssh"`
	Log      LogConfig             `yaml:"log"`
}

// AudioConfig defines the software mixer and output device.
type AudioConfig struct {
	SampleRate int  `yaml:"sample_rate"` // Hz
	MaxVoices  int  `yaml:"max_voices"`  // Mixer oscillator limit
	TickRate   int  `yaml:"tick_rate"`   // Scheduler refresh rate in Hz
	Output     bool `yaml:"output"`      // Stream to the sound card
	Window     int  `yaml:"window"`      // Visualizer FFT size, power of two
}

// PoolConfig defines the voice pool capacity per waveform.
type PoolConfig struct {
	Sine     int `yaml:"sine"`
	Square   int `yaml:"square"`
	Sawtooth int `yaml:"sawtooth"`
	Triangle int `yaml:"triangle"`
}

// Capacity returns the pool layout in the form voice.NewPool expects.
func (p PoolConfig) Capacity() map[voice.Waveform]int {
	return map[voice.Waveform]int{
		voice.Sine:     p.Sine,
		voice.Square:   p.Square,
		voice.Sawtooth: p.Sawtooth,
		voice.Triangle: p.Triangle,
	}
}

// PresetsConfig selects the preset store backend.
type PresetsConfig struct {
	Backend string `yaml:"backend"` // "sqlite" or "memory"
	Path    string `yaml:"path"`    // SQLite file, ~ is expanded
}

// ServerConfig defines the HTTP control API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SSHConfig defines the SSH watch server.
type SSHConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	HostKeyPath string `yaml:"host_key"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Console mode log file, ~ is expanded
}
