package voice

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ID identifies one lease of a pool slot. Generation changes on every
// acquisition, so a stale ID never matches a reused slot.
type ID struct {
	Slot       int
	Generation uint64
}

// Handle is a leased voice.
type Handle struct {
	ID        ID
	Kind      Waveform
	Voice     Node
	Envelope  Node
	Owner     string
	ReleaseAt time.Duration
}

type slot struct {
	generation uint64
	busy       bool
	owner      string
	voice      Node
	envelope   Node
	releaseAt  time.Duration
}

// Usage reports occupancy of one waveform kind.
type Usage struct {
	Kind     Waveform `json:"kind"`
	Active   int      `json:"active"`
	Capacity int      `json:"capacity"`
}

// Pool is a fixed-capacity arena of voice slots per waveform.
// It is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	backend Backend
	slots   map[Waveform][]slot
	logger  *log.Logger
}

// NewPool creates a pool with the given capacity per waveform. Kinds missing
// from capacity get no slots.
func NewPool(backend Backend, capacity map[Waveform]int, logger *log.Logger) *Pool {
	if logger == nil {
		logger = log.Default()
	}
	p := &Pool{
		backend: backend,
		slots:   make(map[Waveform][]slot, len(capacity)),
		logger:  logger,
	}
	for kind, n := range capacity {
		p.slots[kind] = make([]slot, max(n, 0))
	}
	return p
}

// Backend returns the backend the pool forwards to.
func (p *Pool) Backend() Backend {
	return p.backend
}

// Acquire leases a free slot of req.Waveform for owner and starts the voice
// with a silent envelope. releaseAt registers a deferred release run by
// Expire; zero means none. Returns false when the kind is exhausted or the
// backend refuses; callers skip the voice.
func (p *Pool) Acquire(owner string, req Request, releaseAt time.Duration) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	slots := p.slots[req.Waveform]
	idx := -1
	for i := range slots {
		if !slots[i].busy {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.logger.Debug("voice pool exhausted", "kind", req.Waveform, "owner", owner)
		return Handle{}, false
	}

	v, ok := p.backend.AcquireVoice(req)
	if !ok {
		p.logger.Debug("backend refused voice", "kind", req.Waveform)
		return Handle{}, false
	}
	env, ok := p.backend.AcquireEnvelope(v, 0)
	if !ok {
		p.backend.ReleaseVoice(v)
		p.logger.Debug("backend refused envelope", "kind", req.Waveform)
		return Handle{}, false
	}
	p.backend.Connect(v, env)

	s := &slots[idx]
	s.generation++
	s.busy = true
	s.owner = owner
	s.voice = v
	s.envelope = env
	s.releaseAt = releaseAt

	return Handle{
		ID:        ID{Slot: idx, Generation: s.generation},
		Kind:      req.Waveform,
		Voice:     v,
		Envelope:  env,
		Owner:     owner,
		ReleaseAt: releaseAt,
	}, true
}

// live returns the slot a handle still owns, or nil. Caller holds mu.
func (p *Pool) live(h Handle) *slot {
	slots := p.slots[h.Kind]
	if h.ID.Slot < 0 || h.ID.Slot >= len(slots) {
		return nil
	}
	s := &slots[h.ID.Slot]
	if !s.busy || s.generation != h.ID.Generation {
		return nil
	}
	return s
}

// free returns a slot's resources to the backend. Caller holds mu.
func (p *Pool) free(s *slot) {
	p.backend.ReleaseEnvelope(s.envelope)
	p.backend.ReleaseVoice(s.voice)
	s.busy = false
	s.owner = ""
	s.voice = 0
	s.envelope = 0
	s.releaseAt = 0
}

// Release frees a handle. Releasing a stale or already released handle is a
// no-op. Reports whether a slot was freed.
func (p *Pool) Release(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.live(h)
	if s == nil {
		return false
	}
	p.free(s)
	return true
}

// ReleaseOwner frees every handle held by owner and returns how many.
func (p *Pool) ReleaseOwner(owner string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, slots := range p.slots {
		for i := range slots {
			if slots[i].busy && slots[i].owner == owner {
				p.free(&slots[i])
				n++
			}
		}
	}
	return n
}

// Expire runs deferred releases due at or before now and returns how many fired.
func (p *Pool) Expire(now time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, slots := range p.slots {
		for i := range slots {
			s := &slots[i]
			if s.busy && s.releaseAt > 0 && s.releaseAt <= now {
				p.free(s)
				n++
			}
		}
	}
	return n
}

// SetLevel sets a live handle's envelope level at time at.
func (p *Pool) SetLevel(h Handle, at time.Duration, level float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.live(h)
	if s == nil {
		return false
	}
	p.backend.SetLevel(s.envelope, at, level)
	return true
}

// RampLinear schedules a linear envelope ramp ending at time at.
func (p *Pool) RampLinear(h Handle, at time.Duration, level float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.live(h)
	if s == nil {
		return false
	}
	p.backend.RampLinear(s.envelope, at, level)
	return true
}

// RampExponential schedules an exponential envelope ramp ending at time at.
func (p *Pool) RampExponential(h Handle, at time.Duration, level float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.live(h)
	if s == nil {
		return false
	}
	p.backend.RampExponential(s.envelope, at, level)
	return true
}

// StopAt schedules a live handle's oscillator to stop.
func (p *Pool) StopAt(h Handle, at time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.live(h)
	if s == nil {
		return false
	}
	p.backend.StopAt(s.voice, at)
	return true
}

// Active returns the number of leased slots of a kind.
func (p *Pool) Active(kind Waveform) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, s := range p.slots[kind] {
		if s.busy {
			n++
		}
	}
	return n
}

// Usage returns occupancy for every waveform kind.
func (p *Pool) Usage() []Usage {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Usage, 0, len(Waveforms))
	for _, kind := range Waveforms {
		u := Usage{Kind: kind, Capacity: len(p.slots[kind])}
		for _, s := range p.slots[kind] {
			if s.busy {
				u.Active++
			}
		}
		out = append(out, u)
	}
	return out
}

// Owned returns the number of live handles held by owner.
func (p *Pool) Owned(owner string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, slots := range p.slots {
		for _, s := range slots {
			if s.busy && s.owner == owner {
				n++
			}
		}
	}
	return n
}
