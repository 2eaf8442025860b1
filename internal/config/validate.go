package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/registry"
	"github.com/vovakirdan/chaosynth/internal/storage"
)

// Limits on audio and pool settings.
const (
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxTickRate     = 240
	MaxPoolCapacity = 64
)

// Validate returns a copy of cfg where every invalid field is replaced by its
// default, plus one warning per replaced field.
func Validate(cfg Config) (Config, []string) {
	def := Default()
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if cfg.Audio.SampleRate < MinSampleRate || cfg.Audio.SampleRate > MaxSampleRate {
		warn("audio.sample_rate %d out of range, using %d", cfg.Audio.SampleRate, def.Audio.SampleRate)
		cfg.Audio.SampleRate = def.Audio.SampleRate
	}
	if cfg.Audio.MaxVoices <= 0 {
		warn("audio.max_voices %d must be positive, using %d", cfg.Audio.MaxVoices, def.Audio.MaxVoices)
		cfg.Audio.MaxVoices = def.Audio.MaxVoices
	}
	if cfg.Audio.TickRate <= 0 || cfg.Audio.TickRate > MaxTickRate {
		warn("audio.tick_rate %d out of range, using %d", cfg.Audio.TickRate, def.Audio.TickRate)
		cfg.Audio.TickRate = def.Audio.TickRate
	}
	if w := cfg.Audio.Window; w < 64 || w&(w-1) != 0 {
		warn("audio.window %d must be a power of two >= 64, using %d", w, def.Audio.Window)
		cfg.Audio.Window = def.Audio.Window
	}

	pool := []struct {
		name string
		v    *int
		def  int
	}{
		{"sine", &cfg.Pool.Sine, def.Pool.Sine},
		{"square", &cfg.Pool.Square, def.Pool.Square},
		{"sawtooth", &cfg.Pool.Sawtooth, def.Pool.Sawtooth},
		{"triangle", &cfg.Pool.Triangle, def.Pool.Triangle},
	}
	for _, p := range pool {
		if *p.v < 1 || *p.v > MaxPoolCapacity {
			warn("pool.%s %d out of range, using %d", p.name, *p.v, p.def)
			*p.v = p.def
		}
	}

	var err error
	if cfg.Chaos, err = cfg.Chaos.Validate(registry.FamilyChaos, def.Chaos); err != nil {
		warn("chaos: %v", err)
	}
	if cfg.Bio, err = cfg.Bio.Validate(registry.FamilyBio, def.Bio); err != nil {
		warn("bio: %v", err)
	}

	cfg.Triggers = validateTriggers(cfg.Triggers, def.Triggers, warn)

	valid := cfg.MIDI[:0:0]
	for _, b := range cfg.MIDI {
		family := registry.Family(b.Target)
		if !family.Valid() {
			warn("midi cc %d: unknown target %q, dropped", b.Controller, b.Target)
			continue
		}
		if _, _, ok := orchestrator.ParameterRange(family, b.Param); !ok {
			warn("midi cc %d: unknown parameter %q, dropped", b.Controller, b.Param)
			continue
		}
		if b.Controller > 127 {
			warn("midi cc %d out of range, dropped", b.Controller)
			continue
		}
		valid = append(valid, b)
	}
	cfg.MIDI = valid

	switch cfg.Presets.Backend {
	case "", storage.BackendMemory, storage.BackendSQLite:
	default:
		warn("presets.backend %q unsupported, using %q", cfg.Presets.Backend, def.Presets.Backend)
		cfg.Presets.Backend = def.Presets.Backend
	}
	if cfg.Presets.Backend == storage.BackendSQLite && cfg.Presets.Path == "" {
		warn("presets.path empty, using %s", def.Presets.Path)
		cfg.Presets.Path = def.Presets.Path
	}

	if cfg.SSH.Port <= 0 || cfg.SSH.Port > 65535 {
		warn("ssh.port %d out of range, using %d", cfg.SSH.Port, def.SSH.Port)
		cfg.SSH.Port = def.SSH.Port
	}

	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		warn("log.level %q unknown, using %q", cfg.Log.Level, def.Log.Level)
		cfg.Log.Level = def.Log.Level
	}

	return cfg, warnings
}

func validateTriggers(t, def orchestrator.Triggers, warn func(string, ...any)) orchestrator.Triggers {
	fields := []struct {
		name string
		v    *float64
		def  float64
		max  float64
	}{
		{"lorenz", &t.Lorenz, def.Lorenz, 10},
		{"rossler", &t.Rossler, def.Rossler, 10},
		{"chua", &t.Chua, def.Chua, 10},
		{"henon", &t.Henon, def.Henon, 10},
		{"logistic", &t.Logistic, def.Logistic, 10},
		{"dna", &t.DNA, def.DNA, 10},
		{"heartbeat", &t.Heartbeat, def.Heartbeat, 10},
		{"brainwave", &t.Brainwave, def.Brainwave, 10},
		{"fibonacci", &t.Fibonacci, def.Fibonacci, 10},
		{"automaton", &t.Automaton, def.Automaton, 10},
		{"ecosystem", &t.Ecosystem, def.Ecosystem, 10},
		{"genetic", &t.Genetic, def.Genetic, 10},
		{"expression_threshold", &t.ExpressionThreshold, def.ExpressionThreshold, 1},
		{"coherence_threshold", &t.CoherenceThreshold, def.CoherenceThreshold, 1},
		{"evolve_probability", &t.EvolveProbability, def.EvolveProbability, 1},
	}
	for _, f := range fields {
		// NaN fails both comparisons.
		if !(*f.v >= 0 && *f.v <= f.max) {
			warn("triggers.%s %v out of range, using %v", f.name, *f.v, f.def)
			*f.v = f.def
		}
	}
	return t
}

// LogWarnings reports validation warnings through logger.
func LogWarnings(logger *log.Logger, warnings []string) {
	if logger == nil {
		logger = log.Default()
	}
	for _, w := range warnings {
		logger.Warn("config", "problem", strings.TrimSpace(w))
	}
}
