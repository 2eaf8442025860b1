// Package orchestrator turns bank output into voices. An Orchestrator owns
// one bank (chaos or bio), ticks on a scheduler, applies a per-kind trigger
// policy and leases voices from the shared pool.
package orchestrator

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/chaosynth/internal/bio"
	"github.com/vovakirdan/chaosynth/internal/chaos"
	"github.com/vovakirdan/chaosynth/internal/registry"
	"github.com/vovakirdan/chaosynth/internal/scheduler"
	"github.com/vovakirdan/chaosynth/internal/voice"
)

// State is the lifecycle state of an orchestrator.
type State int

const (
	Idle State = iota
	Running
)

// String returns a human-readable state name.
func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Tick intervals.
const (
	BioInterval      = 100 * time.Millisecond
	MaxChaosRate     = 60.0 // Hz
	chaosRatePerUnit = 20.0 // Hz per unit of speed
	MinChaosInterval = time.Second / 60

	envelopeFloor = 0.001
)

// Event records one tick that produced voice requests.
type Event struct {
	At       time.Duration
	Family   registry.Family
	Kind     string
	Requests []voice.Request
	Acquired int
}

// Stats counts orchestrator activity since construction.
type Stats struct {
	Ticks     int
	Triggers  int
	Voices    int
	Skipped   int // requests refused by the pool
	Evolution int // genetic generations run
}

// Config holds the collaborators and initial configuration.
type Config struct {
	Pool     *voice.Pool
	Mix      func(voice.Node) // receives every configured envelope
	RNG      *rand.Rand
	Logger   *log.Logger
	Triggers Triggers
	Settings Settings
	Observer func(Event) // optional, called outside the lock
}

// Orchestrator drives one bank. All methods are safe for concurrent use.
type Orchestrator struct {
	lifecycle sync.Mutex // serializes Start and Stop, including the release sweep
	mu        sync.Mutex

	family   registry.Family
	owner    string
	pool     *voice.Pool
	mix      func(voice.Node)
	observer func(Event)
	rng      *rand.Rand
	logger   *log.Logger
	triggers Triggers

	settings  Settings
	quantizer Quantizer

	chaosBank *chaos.Bank
	chaosSys  chaos.System
	bioBank   *bio.Bank
	bioModel  bio.Model

	state  State
	sched  *scheduler.Scheduler
	task   scheduler.TaskID
	last   time.Duration
	ticked bool

	cursor int // automaton column
	stats  Stats
	recent Event
}

// New creates an idle orchestrator for a family. Invalid settings fall back
// to the family defaults with a warning.
func New(family registry.Family, cfg Config) (*Orchestrator, error) {
	if !family.Valid() {
		return nil, fmt.Errorf("orchestrator: unknown family %q", family)
	}
	if cfg.Pool == nil {
		return nil, fmt.Errorf("orchestrator: pool is required")
	}
	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewSource(1))
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Triggers == (Triggers{}) {
		cfg.Triggers = DefaultTriggers()
	}

	o := &Orchestrator{
		family:   family,
		owner:    fmt.Sprintf("%s-%s", family, uuid.NewString()),
		pool:     cfg.Pool,
		mix:      cfg.Mix,
		observer: cfg.Observer,
		rng:      cfg.RNG,
		logger:   cfg.Logger.With("orchestrator", string(family)),
		triggers: cfg.Triggers,
	}

	if family == registry.FamilyChaos {
		o.chaosBank = chaos.NewBank(o.rng)
	} else {
		o.bioBank = bio.NewBank(o.rng)
	}

	defaults := DefaultSettings(family)
	settings := cfg.Settings
	if settings == (Settings{}) {
		settings = defaults
	}
	valid, err := settings.Validate(family, defaults)
	if err != nil {
		o.logger.Warn("invalid settings, using defaults for bad fields", "err", err)
	}
	o.settings = valid
	o.quantizer, _ = NewQuantizer(valid.Root, valid.Scale)
	o.selectKind(valid.Kind)
	o.applyMutation()

	return o, nil
}

// selectKind resolves the active system or model. Caller holds mu or owns o.
func (o *Orchestrator) selectKind(kind string) {
	if o.chaosBank != nil {
		o.chaosSys, _ = chaos.ParseSystem(kind)
	} else {
		o.bioModel, _ = bio.ParseModel(kind)
	}
}

// Family returns the orchestrator's family.
func (o *Orchestrator) Family() registry.Family {
	return o.family
}

// Owner returns the identity used for pool leases.
func (o *Orchestrator) Owner() string {
	return o.owner
}

// Start registers the tick with sched. Starting a running orchestrator is a no-op.
func (o *Orchestrator) Start(sched *scheduler.Scheduler) {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == Running {
		return
	}
	o.state = Running
	o.sched = sched
	o.ticked = false
	o.task = sched.Add(o.tick, 0)
	o.logger.Info("started", "kind", o.settings.Kind)
}

// Stop unregisters the tick and force-releases every voice this
// orchestrator holds. Deferred releases that fire later are no-ops.
func (o *Orchestrator) Stop() {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	o.mu.Lock()
	if o.state != Running {
		o.mu.Unlock()
		return
	}
	o.state = Idle
	sched, task := o.sched, o.task
	o.sched = nil
	o.mu.Unlock()

	sched.Cancel(task)
	n := o.pool.ReleaseOwner(o.owner)
	o.logger.Info("stopped", "released", n)
}

// State returns the lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// interval returns the delay until the next tick. Caller holds mu.
func (o *Orchestrator) interval() time.Duration {
	if o.family == registry.FamilyBio {
		return BioInterval
	}
	rate := math.Min(MaxChaosRate, chaosRatePerUnit*o.settings.Speed)
	if rate <= 0 {
		return MinChaosInterval
	}
	return max(time.Duration(float64(time.Second)/rate), MinChaosInterval)
}

// Interval returns the current tick interval.
func (o *Orchestrator) Interval() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.interval()
}

func (o *Orchestrator) tick(now time.Duration) time.Duration {
	o.mu.Lock()
	if o.state != Running {
		o.mu.Unlock()
		return 0
	}
	ev := o.tickLocked(now)
	next := o.interval()
	observer := o.observer
	o.mu.Unlock()

	if observer != nil && ev != nil {
		observer(*ev)
	}
	return next
}

// Tick runs one tick at time now without a scheduler. Hosts that drive the
// orchestrator directly use it; it works in any state.
func (o *Orchestrator) Tick(now time.Duration) *Event {
	o.mu.Lock()
	ev := o.tickLocked(now)
	observer := o.observer
	o.mu.Unlock()

	if observer != nil && ev != nil {
		observer(*ev)
	}
	return ev
}

// tickLocked computes parameters, evaluates the trigger policy, then
// acquires voices, in that order. Caller holds mu.
func (o *Orchestrator) tickLocked(now time.Duration) *Event {
	elapsed := o.interval()
	if o.ticked {
		elapsed = max(now-o.last, 0)
	}
	o.last = now
	o.ticked = true
	o.stats.Ticks++

	dt := elapsed.Seconds() * o.settings.Speed

	var reqs []voice.Request
	if o.chaosBank != nil {
		out := o.chaosBank.Step(o.chaosSys, dt)
		reqs = o.chaosPolicy(out)
	} else {
		out := o.bioBank.Step(o.bioModel, dt)
		reqs = o.bioPolicy(out)
		if o.bioModel == bio.Genetic && o.rng.Float64() < o.triggers.EvolveProbability {
			o.bioBank.Evolve()
			o.stats.Evolution++
		}
	}
	if len(reqs) == 0 {
		return nil
	}

	if o.settings.Quantize {
		for i := range reqs {
			reqs[i].Frequency = o.quantizer.Quantize(reqs[i].Frequency)
		}
	}

	o.stats.Triggers++
	ev := &Event{At: now, Family: o.family, Kind: o.settings.Kind, Requests: reqs}
	for _, req := range reqs {
		if o.play(now, req) {
			ev.Acquired++
		}
	}
	o.recent = *ev
	return ev
}

// play acquires one voice and shapes its envelope. req is already
// quantized. Caller holds mu.
func (o *Orchestrator) play(now time.Duration, req voice.Request) bool {
	attack := seconds(o.settings.Attack)
	releaseAt := now + req.Duration + seconds(o.settings.ReleaseGrace)

	h, ok := o.pool.Acquire(o.owner, req, releaseAt)
	if !ok {
		o.stats.Skipped++
		return false
	}

	o.pool.SetLevel(h, now, 0)
	o.pool.RampLinear(h, now+attack, req.Amplitude)
	o.pool.RampExponential(h, now+max(req.Duration, attack), envelopeFloor)
	o.pool.StopAt(h, releaseAt)
	if o.mix != nil {
		o.mix(h.Envelope)
	}

	o.stats.Voices++
	return true
}

// SetKind switches the active system or model and resets the bank.
// An unknown kind leaves the current one active.
func (o *Orchestrator) SetKind(kind string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.setKindLocked(kind)
}

func (o *Orchestrator) setKindLocked(kind string) error {
	if !registry.Exists(o.family, kind) {
		o.logger.Warn("unknown kind, keeping current", "kind", kind, "current", o.settings.Kind)
		return fmt.Errorf("orchestrator: %s kind %q: %w", o.family, kind, ErrUnknownKind)
	}
	if kind == o.settings.Kind {
		return nil
	}
	o.settings.Kind = kind
	o.selectKind(kind)
	o.resetLocked()
	o.logger.Info("kind changed", "kind", kind)
	return nil
}

// Kind returns the active generator kind.
func (o *Orchestrator) Kind() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings.Kind
}

// Reset restores the bank to its initial state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked()
}

func (o *Orchestrator) resetLocked() {
	if o.chaosBank != nil {
		o.chaosBank.Reset()
	} else {
		o.bioBank.Reset()
	}
	o.applyMutation()
	o.cursor = 0
}

// applyMutation forwards the mutation rate to the bio bank. Caller holds mu
// or owns o.
func (o *Orchestrator) applyMutation() {
	if o.bioBank != nil {
		o.bioBank.SetMutationRate(o.settings.Mutation)
	}
}

// Perturb nudges the chaotic state. It reports false for bio orchestrators.
func (o *Orchestrator) Perturb(amount float64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.chaosBank == nil {
		return false
	}
	o.chaosBank.Perturb(amount)
	return true
}

// UpdateParameter changes one parameter live. Invalid names or values keep
// the last valid value, log a warning and return ErrInvalidParameter.
// The model parameter selects a kind by index and resets the bank.
func (o *Orchestrator) UpdateParameter(name string, value float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := o.updateLocked(name, value)
	if err != nil {
		o.logger.Warn("invalid parameter, keeping last value", "name", name, "value", value)
	}
	return err
}

func (o *Orchestrator) updateLocked(name string, value float64) error {
	switch name {
	case ParamKind:
		ids := registry.IDs(o.family)
		i := int(math.Round(value))
		if math.IsNaN(value) || i < 0 || i >= len(ids) {
			return invalid(name, value)
		}
		return o.setKindLocked(ids[i])
	case ParamScale:
		names := ScaleNames()
		i := int(math.Round(value))
		if math.IsNaN(value) || i < 0 || i >= len(names) {
			return invalid(name, value)
		}
		o.settings.Scale = names[i]
		o.quantizer, _ = NewQuantizer(o.settings.Root, o.settings.Scale)
		return nil
	}

	if name == ParamMutation && o.family != registry.FamilyBio {
		return invalid(name, value)
	}
	if err := o.settings.set(name, value); err != nil {
		return err
	}
	switch name {
	case ParamRoot:
		o.quantizer, _ = NewQuantizer(o.settings.Root, o.settings.Scale)
	case ParamMutation:
		o.applyMutation()
	}
	return nil
}

// SetScale selects a scale by name.
func (o *Orchestrator) SetScale(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	q, err := NewQuantizer(o.settings.Root, name)
	if err != nil {
		o.logger.Warn("unknown scale, keeping current", "scale", name)
		return fmt.Errorf("%w: %w", err, ErrInvalidParameter)
	}
	o.settings.Scale = name
	o.quantizer = q
	return nil
}

// Settings returns a copy of the live configuration.
func (o *Orchestrator) Settings() Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// ApplySettings replaces the live configuration. Invalid fields keep their
// current values; the returned error lists them. A kind change resets the bank.
func (o *Orchestrator) ApplySettings(s Settings) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	valid, err := s.Validate(o.family, o.settings)
	if err != nil {
		o.logger.Warn("invalid settings, keeping last values for bad fields", "err", err)
	}
	kindChanged := valid.Kind != o.settings.Kind
	o.settings = valid
	o.quantizer, _ = NewQuantizer(valid.Root, valid.Scale)
	if kindChanged {
		o.selectKind(valid.Kind)
		o.resetLocked()
	}
	o.applyMutation()
	return err
}

// Status is a point-in-time view for consoles and the HTTP API.
type Status struct {
	Family   registry.Family `json:"family"`
	State    string          `json:"state"`
	Settings Settings        `json:"settings"`
	Interval time.Duration   `json:"interval"`
	Stats    Stats           `json:"stats"`
	Owned    int             `json:"owned"`
	Last     *Event          `json:"last,omitempty"`
}

// Status returns the current status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	st := Status{
		Family:   o.family,
		State:    o.state.String(),
		Settings: o.settings,
		Interval: o.interval(),
		Stats:    o.stats,
	}
	if o.recent.Kind != "" {
		last := o.recent
		st.Last = &last
	}
	o.mu.Unlock()

	st.Owned = o.pool.Owned(o.owner)
	return st
}
