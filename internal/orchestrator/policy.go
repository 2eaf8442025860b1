package orchestrator

import (
	"math"

	"github.com/vovakirdan/chaosynth/internal/bio"
	"github.com/vovakirdan/chaosynth/internal/chaos"
	"github.com/vovakirdan/chaosynth/internal/core"
	"github.com/vovakirdan/chaosynth/internal/voice"
)

// chance draws from the orchestrator's RNG. Caller holds mu.
func (o *Orchestrator) chance(p float64) bool {
	return o.rng.Float64() < p
}

// request builds a voice request with the configured duration. Caller holds mu.
func (o *Orchestrator) request(w voice.Waveform, freq, level float64) voice.Request {
	return voice.Request{
		Waveform:  w,
		Frequency: freq,
		Amplitude: core.ClampF(level*o.settings.Volume, 0, 1),
		Duration:  seconds(o.settings.Duration),
	}
}

func (o *Orchestrator) chaosPolicy(out chaos.Output) []voice.Request {
	density := o.settings.Density

	switch out.System {
	case chaos.Lorenz:
		p := out.Lorenz
		if !o.chance(density * o.triggers.Lorenz) {
			return nil
		}
		req := o.request(voice.Sine, p.Frequency, p.Amplitude)
		req.Detune = p.Detune
		req.Pan = p.Pan
		req.Modulation = &voice.Modulation{
			Waveform:  voice.Sine,
			Frequency: p.Resonance / 4,
			Depth:     p.FilterCutoff / 400,
		}
		return []voice.Request{req}

	case chaos.Rossler:
		p := out.Rossler
		if !p.Trigger || !o.chance(density*o.triggers.Rossler) {
			return nil
		}
		req := o.request(voice.Square, 80+40*float64(p.Subdivision), p.Accent)
		req.Duration /= 2
		req.Pan = p.Swing*2 - 0.3
		return []voice.Request{req}

	case chaos.Chua:
		p := out.Chua
		if !p.Glitch || !o.chance(density*o.triggers.Chua) {
			return nil
		}
		req := o.request(voice.Sawtooth, 50*float64(p.BitDepth), 0.3+0.5*p.Distortion)
		if p.Stutter {
			req.Duration /= 4
			req.Modulation = &voice.Modulation{
				Waveform:  voice.Square,
				Frequency: 8,
				Depth:     req.Frequency * p.Distortion * 0.5,
			}
		}
		if p.Reverse {
			req.Detune = -25
		}
		return []voice.Request{req}

	case chaos.Henon:
		p := out.Henon
		if !p.Gate || !o.chance(density*o.triggers.Henon) {
			return nil
		}
		root := o.request(voice.Triangle, p.Pitch, p.Velocity)
		third := o.request(voice.Triangle, p.Pitch*o.quantizer.Interval(p.Degree, 2), p.Velocity*0.7)
		return []voice.Request{root, third}

	case chaos.Logistic:
		p := out.Logistic
		if !o.chance(p.Probability * density * o.triggers.Logistic) {
			return nil
		}
		req := o.request(voice.Sine, 200+600*p.Variation, 0.3+0.4*p.Density)
		if p.Complexity > 0.5 {
			req.Waveform = voice.Triangle
		}
		return []voice.Request{req}
	}
	return nil
}

func (o *Orchestrator) bioPolicy(out bio.Output) []voice.Request {
	density := o.settings.Density

	switch out.Model {
	case bio.DNA:
		p := out.DNA
		if p.GeneExpression < o.triggers.ExpressionThreshold || !o.chance(density*p.Density*o.triggers.DNA) {
			return nil
		}
		degree := p.Scale[o.rng.Intn(len(p.Scale))]
		freq := p.BaseFrequency * math.Pow(2, float64(degree)/12)
		return []voice.Request{o.request(voice.Sine, freq, 0.4+0.4*p.GeneExpression)}

	case bio.Heartbeat:
		p := out.Heartbeat
		if !p.Kick || p.Coherence < o.triggers.CoherenceThreshold || !o.chance(density*o.triggers.Heartbeat) {
			return nil
		}
		systolic := o.request(voice.Sine, p.Frequency, 0.5+0.5*math.Abs(p.Systolic))
		systolic.Duration /= 2
		diastolic := o.request(voice.Triangle, p.Frequency*1.5, 0.6*math.Abs(p.Diastolic))
		diastolic.Duration /= 2
		return []voice.Request{systolic, diastolic}

	case bio.Brainwave:
		p := out.Brainwave
		if !o.chance(density * p.Energy * o.triggers.Brainwave) {
			return nil
		}
		bass := o.request(voice.Sine, p.BassFrequency, 0.3+0.5*p.Relaxation)
		high := o.request(voice.Triangle, p.HighFrequency, 0.2+0.4*p.Creativity)
		if p.Meditation {
			bass.Duration *= 2
			high.Duration *= 2
		}
		return []voice.Request{bass, high}

	case bio.Fibonacci:
		p := out.Fibonacci
		if !o.chance(density * p.Intensity * o.triggers.Fibonacci) {
			return nil
		}
		freq := p.Frequencies[p.Fibonacci%len(p.Frequencies)]
		req := o.request(voice.Sine, freq, 0.5)
		req.Modulation = &voice.Modulation{
			Waveform:  voice.Sine,
			Frequency: p.Harmony[p.Fibonacci%len(p.Harmony)],
			Depth:     freq * 0.01,
		}
		return []voice.Request{req}

	case bio.Automaton:
		p := out.Automaton
		if len(p.Triggers) == 0 {
			return nil
		}
		col := o.cursor % len(p.Triggers)
		o.cursor = (o.cursor + 1) % len(p.Triggers)
		if !p.Triggers[col] || !o.chance(density*o.triggers.Automaton) {
			return nil
		}
		n := len(o.quantizer.Degrees)
		if n == 0 {
			return nil
		}
		octave := (col / n) % 3
		semis := 12*octave + o.quantizer.Degrees[col%n]
		freq := o.settings.Root * math.Pow(2, float64(semis)/12)
		return []voice.Request{o.request(voice.Square, freq, 0.3+0.4*p.Complexity)}

	case bio.Ecosystem:
		p := out.Ecosystem
		if !o.chance(density * o.triggers.Ecosystem * (1 + math.Min(p.Tension, 1))) {
			return nil
		}
		total := p.Prey + p.Predators
		prey := o.request(voice.Sine, p.PreyFrequency, 0.3+0.6*p.Prey/total)
		predator := o.request(voice.Sawtooth, p.PredatorFrequency, 0.3+0.6*p.Predators/total)
		return []voice.Request{prey, predator}

	case bio.Genetic:
		p := out.Genetic
		if !o.chance(density * o.triggers.Genetic) {
			return nil
		}
		level := 0.3 + 0.4*math.Min(p.Fitness/float64(bio.GeneCount), 1)
		return []voice.Request{o.request(voice.Triangle, p.Frequency, level)}
	}
	return nil
}
