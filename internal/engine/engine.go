// Package engine wires the audio backend, voice pool, scheduler, both
// orchestrators, the visualizer, the MIDI mapper and the preset store into
// one host-facing object. Consoles, the daemon and headless renders all
// drive an Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/chaosynth/internal/audio"
	"github.com/vovakirdan/chaosynth/internal/config"
	"github.com/vovakirdan/chaosynth/internal/midimap"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/registry"
	"github.com/vovakirdan/chaosynth/internal/scheduler"
	"github.com/vovakirdan/chaosynth/internal/storage"
	"github.com/vovakirdan/chaosynth/internal/visualizer"
	"github.com/vovakirdan/chaosynth/internal/voice"
)

// HistorySize is the number of recent trigger events kept for display.
const HistorySize = 64

// ErrUnknownTarget is returned for target names other than chaos and bio.
var ErrUnknownTarget = errors.New("unknown target")

// Options configures New.
type Options struct {
	Config config.Config
	Seed   int64
	Logger *log.Logger

	// Store overrides the store described by Config.Presets. When nil and
	// the configured store cannot be opened, the engine runs without presets.
	Store storage.PresetStore

	// Observer receives every trigger event after it is recorded.
	Observer func(orchestrator.Event)
}

// Engine is safe for concurrent use.
type Engine struct {
	cfg    config.Config
	logger *log.Logger

	audio *audio.Engine
	pool  *voice.Pool
	sched *scheduler.Scheduler
	chaos *orchestrator.Orchestrator
	bio   *orchestrator.Orchestrator
	vis   *visualizer.Visualizer
	midi  *midimap.Mapper

	presets  storage.PresetStore
	observer func(orchestrator.Event)

	mu      sync.Mutex
	history []orchestrator.Event
}

// New builds an idle engine. Invalid configuration fields fall back to their
// defaults with a warning.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg, warnings := config.Validate(opts.Config)
	config.LogWarnings(logger, warnings)

	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		observer: opts.Observer,
	}

	e.audio = audio.NewEngine(cfg.Audio.SampleRate, cfg.Audio.MaxVoices, logger.WithPrefix("audio"))
	e.pool = voice.NewPool(e.audio, cfg.Pool.Capacity(), logger.WithPrefix("pool"))
	e.sched = scheduler.New(e.pool)
	e.vis = visualizer.New(e.audio, cfg.Audio.SampleRate, cfg.Audio.Window)

	master := e.audio.Master()
	mix := func(env voice.Node) {
		e.audio.Connect(env, master)
	}

	var err error
	e.chaos, err = orchestrator.New(registry.FamilyChaos, orchestrator.Config{
		Pool:     e.pool,
		Mix:      mix,
		RNG:      rand.New(rand.NewSource(opts.Seed)),
		Logger:   logger,
		Triggers: cfg.Triggers,
		Settings: cfg.Chaos,
		Observer: e.record,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.bio, err = orchestrator.New(registry.FamilyBio, orchestrator.Config{
		Pool:     e.pool,
		Mix:      mix,
		RNG:      rand.New(rand.NewSource(opts.Seed + 1)),
		Logger:   logger,
		Triggers: cfg.Triggers,
		Settings: cfg.Bio,
		Observer: e.record,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e.midi = midimap.New(map[string]midimap.Target{
		string(registry.FamilyChaos): e.chaos,
		string(registry.FamilyBio):   e.bio,
	}, logger.WithPrefix("midi"))
	for _, b := range cfg.MIDI {
		if err := e.midi.Map(b); err != nil {
			logger.Warn("midi binding skipped", "cc", b.Controller, "err", err)
		}
	}

	e.presets = opts.Store
	if e.presets == nil {
		store, err := storage.NewStore(cfg.Presets.Backend, cfg.Presets.Path)
		if err != nil {
			logger.Warn("presets unavailable", "backend", cfg.Presets.Backend, "err", err)
		} else {
			e.presets = store
		}
	}

	return e, nil
}

// record keeps the event in history and forwards it to the observer.
func (e *Engine) record(ev orchestrator.Event) {
	e.mu.Lock()
	if len(e.history) >= HistorySize {
		copy(e.history, e.history[1:])
		e.history = e.history[:HistorySize-1]
	}
	e.history = append(e.history, ev)
	e.mu.Unlock()

	if e.observer != nil {
		e.observer(ev)
	}
}

// Config returns the validated configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Audio returns the software audio backend.
func (e *Engine) Audio() *audio.Engine { return e.audio }

// Pool returns the shared voice pool.
func (e *Engine) Pool() *voice.Pool { return e.pool }

// Scheduler returns the tick scheduler.
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }

// Chaos returns the chaos orchestrator.
func (e *Engine) Chaos() *orchestrator.Orchestrator { return e.chaos }

// Bio returns the bio orchestrator.
func (e *Engine) Bio() *orchestrator.Orchestrator { return e.bio }

// Visualizer returns the spectrum visualizer.
func (e *Engine) Visualizer() *visualizer.Visualizer { return e.vis }

// MIDI returns the MIDI mapper.
func (e *Engine) MIDI() *midimap.Mapper { return e.midi }

// Orchestrator resolves a target name ("chaos" or "bio").
func (e *Engine) Orchestrator(target string) (*orchestrator.Orchestrator, error) {
	switch registry.Family(target) {
	case registry.FamilyChaos:
		return e.chaos, nil
	case registry.FamilyBio:
		return e.bio, nil
	}
	return nil, fmt.Errorf("engine: %q: %w", target, ErrUnknownTarget)
}

// Start starts both orchestrators on the scheduler.
func (e *Engine) Start() {
	e.chaos.Start(e.sched)
	e.bio.Start(e.sched)
}

// Stop stops both orchestrators, releasing every voice they hold.
func (e *Engine) Stop() {
	e.chaos.Stop()
	e.bio.Stop()
}

// Running reports whether either orchestrator is running.
func (e *Engine) Running() bool {
	return e.chaos.State() == orchestrator.Running || e.bio.State() == orchestrator.Running
}

// Step renders d of audio and then advances the scheduler to the new clock.
// Hosts without a sound device use it to move time.
func (e *Engine) Step(d time.Duration) int {
	e.audio.Advance(d)
	return e.sched.Advance(e.audio.Now())
}

// Sync advances the scheduler to the audio clock. Hosts whose clock is
// driven by an output device call it periodically.
func (e *Engine) Sync() int {
	return e.sched.Advance(e.audio.Now())
}

// Run calls Sync every tick interval until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(e.cfg.Audio.TickRate)
	return e.sched.Run(ctx, interval, e.audio.Now)
}

// Now returns the engine clock.
func (e *Engine) Now() time.Duration {
	return e.audio.Now()
}

// History returns up to n recent trigger events, oldest first. n <= 0 returns all.
func (e *Engine) History(n int) []orchestrator.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n <= 0 || n > len(e.history) {
		n = len(e.history)
	}
	out := make([]orchestrator.Event, n)
	copy(out, e.history[len(e.history)-n:])
	return out
}

// Close stops the engine, the visualizer and the preset store.
func (e *Engine) Close() error {
	e.Stop()
	e.vis.Stop()
	if err := storage.CloseIfSupported(e.presets); err != nil {
		return fmt.Errorf("engine: close presets: %w", err)
	}
	return nil
}

// Status is a point-in-time view of the whole engine.
type Status struct {
	Now          time.Duration       `json:"now"`
	Chaos        orchestrator.Status `json:"chaos"`
	Bio          orchestrator.Status `json:"bio"`
	Pool         []voice.Usage       `json:"pool"`
	ActiveVoices int                 `json:"active_voices"`
	Presets      bool                `json:"presets"`
	Bindings     []midimap.Binding   `json:"midi"`
}

// Status returns the current status.
func (e *Engine) Status() Status {
	return Status{
		Now:          e.audio.Now(),
		Chaos:        e.chaos.Status(),
		Bio:          e.bio.Status(),
		Pool:         e.pool.Usage(),
		ActiveVoices: e.audio.ActiveVoices(),
		Presets:      e.presets != nil,
		Bindings:     e.midi.Bindings(),
	}
}
