// Package audio is a software voice backend: a small oscillator mixer with
// per-voice envelope automation, rendered on demand into float32 stereo.
// The clock is the number of rendered frames, so the mix and the scheduler
// share one timeline whether frames are pulled by a sound card or by a
// headless render loop.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/chaosynth/internal/voice"
)

// Defaults for NewEngine.
const (
	DefaultSampleRate = 44100
	DefaultMaxVoices  = 64
	tapSize           = 4096
	masterGain        = 0.25
)

// Engine implements voice.Backend. It is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	maxVoices  int
	frames     int64

	nextNode voice.Node
	master   voice.Node
	voices   map[voice.Node]*oscillator
	envs     map[voice.Node]*envelope

	tap    []float64 // mono mix ring
	tapPos int

	advMu   sync.Mutex // guards scratch
	scratch []float32
	logger  *log.Logger
}

var _ voice.Backend = (*Engine)(nil)

// NewEngine creates an engine. maxVoices bounds live oscillators across all
// waveforms; non-positive values use the defaults.
func NewEngine(sampleRate, maxVoices int, logger *log.Logger) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		sampleRate: sampleRate,
		maxVoices:  maxVoices,
		voices:     make(map[voice.Node]*oscillator),
		envs:       make(map[voice.Node]*envelope),
		tap:        make([]float64, tapSize),
		logger:     logger,
	}
	e.master = e.alloc()
	return e
}

func (e *Engine) alloc() voice.Node {
	e.nextNode++
	return e.nextNode
}

// SampleRate returns the engine's sample rate in Hz.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Master returns the output bus node. Envelopes connected to it are audible.
func (e *Engine) Master() voice.Node {
	return e.master
}

func (e *Engine) nowLocked() time.Duration {
	return time.Duration(e.frames) * time.Second / time.Duration(e.sampleRate)
}

// Now returns the time of the next frame to be rendered.
func (e *Engine) Now() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nowLocked()
}

// AcquireVoice creates an oscillator. Returns false at the voice limit.
func (e *Engine) AcquireVoice(req voice.Request) (voice.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.voices) >= e.maxVoices || req.Frequency <= 0 || math.IsNaN(req.Frequency) {
		return 0, false
	}
	n := e.alloc()
	e.voices[n] = newOscillator(req)
	return n, true
}

// AcquireEnvelope creates an envelope starting at initial. Returns false when
// v is not a live voice.
func (e *Engine) AcquireEnvelope(v voice.Node, initial float64) (voice.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.voices[v]; !ok {
		return 0, false
	}
	n := e.alloc()
	e.envs[n] = &envelope{initial: initial, created: e.nowLocked()}
	return n, true
}

func (e *Engine) automate(env voice.Node, a automation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if en, ok := e.envs[env]; ok {
		en.schedule(a)
	}
}

// SetLevel jumps the envelope to level at time at.
func (e *Engine) SetLevel(env voice.Node, at time.Duration, level float64) {
	e.automate(env, automation{at: at, level: level, kind: setValue})
}

// RampLinear ramps linearly from the previous event to level at time at.
func (e *Engine) RampLinear(env voice.Node, at time.Duration, level float64) {
	e.automate(env, automation{at: at, level: level, kind: linearRamp})
}

// RampExponential ramps exponentially from the previous event to level at time at.
func (e *Engine) RampExponential(env voice.Node, at time.Duration, level float64) {
	e.automate(env, automation{at: at, level: level, kind: exponentialRamp})
}

// Connect routes voice to envelope or envelope to the master bus. Other
// pairs are ignored.
func (e *Engine) Connect(src, dst voice.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if osc, ok := e.voices[src]; ok {
		if _, ok := e.envs[dst]; ok {
			osc.env = dst
			return
		}
	}
	if en, ok := e.envs[src]; ok && dst == e.master {
		en.routed = true
		return
	}
	e.logger.Debug("ignored connection", "src", src, "dst", dst)
}

// StopAt silences a voice from time at onwards.
func (e *Engine) StopAt(v voice.Node, at time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if osc, ok := e.voices[v]; ok {
		osc.stopAt = at
	}
}

// ReleaseVoice frees an oscillator. Unknown nodes are ignored.
func (e *Engine) ReleaseVoice(v voice.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.voices, v)
}

// ReleaseEnvelope frees an envelope. Unknown nodes are ignored.
func (e *Engine) ReleaseEnvelope(env voice.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.envs, env)
}

// ActiveVoices returns the number of live oscillators.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

// Render fills dst with interleaved stereo frames and advances the clock.
// len(dst) should be even; a trailing odd sample is zeroed.
func (e *Engine) Render(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sr := float64(e.sampleRate)
	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		t := e.nowLocked()
		var l, r float64
		for _, osc := range e.voices {
			s := osc.next(sr)
			if osc.stopAt > 0 && t >= osc.stopAt {
				continue
			}
			en, ok := e.envs[osc.env]
			if !ok || !en.routed {
				continue
			}
			s *= en.levelAt(t)
			l += s * osc.gainL
			r += s * osc.gainR
		}
		l = clamp(l * masterGain)
		r = clamp(r * masterGain)
		dst[2*f] = float32(l)
		dst[2*f+1] = float32(r)

		e.tap[e.tapPos] = (l + r) / 2
		e.tapPos = (e.tapPos + 1) % len(e.tap)
		e.frames++
	}
	if len(dst)%2 == 1 {
		dst[len(dst)-1] = 0
	}

	now := e.nowLocked()
	for _, en := range e.envs {
		en.prune(now)
	}
}

// Advance renders and discards d worth of frames. Headless hosts use it to
// move the clock.
func (e *Engine) Advance(d time.Duration) {
	frames := int(d * time.Duration(e.sampleRate) / time.Second)
	if frames <= 0 {
		return
	}
	e.advMu.Lock()
	defer e.advMu.Unlock()
	if cap(e.scratch) < frames*2 {
		e.scratch = make([]float32, frames*2)
	}
	e.Render(e.scratch[:frames*2])
}

// Tap copies the most recent mono mix samples into dst, oldest first, and
// returns how many were written.
func (e *Engine) Tap(dst []float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := min(len(dst), len(e.tap))
	start := e.tapPos - n
	for i := 0; i < n; i++ {
		dst[i] = e.tap[((start+i)%len(e.tap)+len(e.tap))%len(e.tap)]
	}
	return n
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
