// Package voice manages short-lived sound-producing voices: a bounded arena
// of slots per waveform kind, leased to orchestrators and realized by an
// audio backend.
package voice

import (
	"fmt"
	"time"
)

// Waveform is the oscillator shape of a voice. Each waveform is a separate
// resource kind with its own capacity.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

// Waveforms lists every kind in declaration order.
var Waveforms = []Waveform{Sine, Square, Sawtooth, Triangle}

var waveformNames = [...]string{"sine", "square", "sawtooth", "triangle"}

// String returns the waveform's name.
func (w Waveform) String() string {
	if w < Sine || w > Triangle {
		return "unknown"
	}
	return waveformNames[w]
}

// MarshalText encodes the waveform by name.
func (w Waveform) MarshalText() ([]byte, error) {
	if w < Sine || w > Triangle {
		return nil, fmt.Errorf("voice: invalid waveform %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText decodes a waveform name.
func (w *Waveform) UnmarshalText(text []byte) error {
	parsed, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWaveform resolves a waveform name.
func ParseWaveform(name string) (Waveform, error) {
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("voice: unknown waveform %q", name)
}

// Node is an opaque backend reference to a voice, an envelope or a bus.
// The zero Node is never issued.
type Node uint64

// Modulation is an optional secondary oscillator applied to a voice's pitch.
type Modulation struct {
	Waveform  Waveform
	Frequency float64 // Hz
	Depth     float64 // Hz of deviation
}

// Request describes a voice to start. It is immutable once built.
type Request struct {
	Waveform   Waveform
	Frequency  float64 // Hz
	Amplitude  float64 // target peak level, 0..1
	Duration   time.Duration
	Detune     float64 // cents
	Pan        float64 // -1..1
	Modulation *Modulation
}

// Backend realizes voices as sound. Times are offsets on the backend's
// monotonic clock.
type Backend interface {
	Now() time.Duration
	AcquireVoice(req Request) (Node, bool)
	AcquireEnvelope(voice Node, initial float64) (Node, bool)
	SetLevel(env Node, at time.Duration, level float64)
	RampLinear(env Node, at time.Duration, level float64)
	RampExponential(env Node, at time.Duration, level float64)
	Connect(src, dst Node)
	StopAt(voice Node, at time.Duration)
	ReleaseVoice(voice Node)
	ReleaseEnvelope(env Node)
}
