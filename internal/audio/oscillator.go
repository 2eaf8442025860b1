package audio

import (
	"math"
	"time"

	"github.com/vovakirdan/chaosynth/internal/voice"
)

type oscillator struct {
	waveform  voice.Waveform
	frequency float64 // Hz including detune
	gainL     float64
	gainR     float64
	mod       *voice.Modulation
	phase     float64 // [0, 1)
	modPhase  float64
	env       voice.Node
	stopAt    time.Duration // zero means never
}

func newOscillator(req voice.Request) *oscillator {
	// equal-power pan
	angle := (req.Pan + 1) * math.Pi / 4
	return &oscillator{
		waveform:  req.Waveform,
		frequency: req.Frequency * math.Pow(2, req.Detune/1200),
		gainL:     math.Cos(angle),
		gainR:     math.Sin(angle),
		mod:       req.Modulation,
	}
}

func shape(w voice.Waveform, phase float64) float64 {
	switch w {
	case voice.Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case voice.Sawtooth:
		return 2*phase - 1
	case voice.Triangle:
		return 4*math.Abs(phase-0.5) - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// next returns the current sample and advances the phase by one frame.
func (o *oscillator) next(sampleRate float64) float64 {
	s := shape(o.waveform, o.phase)

	freq := o.frequency
	if o.mod != nil {
		freq += o.mod.Depth * shape(o.mod.Waveform, o.modPhase)
		o.modPhase += o.mod.Frequency / sampleRate
		o.modPhase -= math.Floor(o.modPhase)
	}
	o.phase += freq / sampleRate
	o.phase -= math.Floor(o.phase)
	return s
}
