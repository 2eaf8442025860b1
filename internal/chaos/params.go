package chaos

import "math"

// OperatingBand is the assumed range of raw state components.
// ScaleToRange clamps inputs to [-OperatingBand, OperatingBand].
const OperatingBand = 20.0

// ScaleToRange clamps v to the operating band and rescales it linearly to [min, max].
func ScaleToRange(v, min, max float64) float64 {
	if v < -OperatingBand {
		v = -OperatingBand
	}
	if v > OperatingBand {
		v = OperatingBand
	}
	return min + (v+OperatingBand)/(2*OperatingBand)*(max-min)
}

// henonGain stretches Hénon coordinates, which live in roughly [-1.5, 1.5],
// across the operating band before scaling.
const henonGain = 10.0

// LorenzParams drives a melodic voice.
type LorenzParams struct {
	Frequency    float64 // Hz, 100..800
	Amplitude    float64 // 0.1..0.8
	FilterCutoff float64 // Hz, 200..4000
	Pan          float64 // -1..1
	Detune       float64 // cents, -50..50
	Resonance    float64 // Q, 0.1..20
}

// RosslerParams drives rhythm.
type RosslerParams struct {
	Trigger     bool
	Tempo       float64 // BPM, 60..180
	Swing       float64 // 0..0.3
	Accent      float64 // 0.3..1
	Subdivision int     // 1..8
}

// ChuaParams drives glitch effects.
type ChuaParams struct {
	Glitch     bool
	BitDepth   int     // 4..16 bits
	Distortion float64 // 0..1
	Stutter    bool
	Reverse    bool
}

// HenonParams drives pitch and chord choice.
type HenonParams struct {
	Pitch    float64 // Hz, 200..1000
	Velocity float64 // 0.2..1
	Gate     bool
	Degree   int // scale degree index, 0..6
}

// LogisticParams drives density and variation.
type LogisticParams struct {
	Density     float64
	Variation   float64
	Probability float64
	Complexity  float64
}

// Output is the result of stepping one system. Only the field matching
// System is populated; State holds the raw state after the step.
type Output struct {
	System   System
	State    Vec3
	Lorenz   LorenzParams
	Rossler  RosslerParams
	Chua     ChuaParams
	Henon    HenonParams
	Logistic LogisticParams
}

func mapLorenz(s Vec3) LorenzParams {
	x, y, z := s[0], s[1], s[2]
	return LorenzParams{
		Frequency:    ScaleToRange(x, 100, 800),
		Amplitude:    ScaleToRange(y, 0.1, 0.8),
		FilterCutoff: ScaleToRange(z, 200, 4000),
		Pan:          ScaleToRange(x, -1, 1),
		Detune:       ScaleToRange(y, -50, 50),
		Resonance:    ScaleToRange(z, 0.1, 20),
	}
}

func mapRossler(s Vec3) RosslerParams {
	x, y, z := s[0], s[1], s[2]
	return RosslerParams{
		Trigger:     math.Abs(x) > 5,
		Tempo:       ScaleToRange(y, 60, 180),
		Swing:       ScaleToRange(z, 0, 0.3),
		Accent:      ScaleToRange(x, 0.3, 1),
		Subdivision: int(math.Round(ScaleToRange(y, 1, 8))),
	}
}

func mapChua(s Vec3) ChuaParams {
	x, y, z := s[0], s[1], s[2]
	return ChuaParams{
		Glitch:     math.Abs(x) > 2,
		BitDepth:   int(math.Round(ScaleToRange(y, 4, 16))),
		Distortion: ScaleToRange(z, 0, 1),
		Stutter:    math.Abs(y) > 0.2,
		Reverse:    z < 0,
	}
}

func mapHenon(x, y float64) HenonParams {
	return HenonParams{
		Pitch:    ScaleToRange(x*henonGain, 200, 1000),
		Velocity: ScaleToRange(y*henonGain, 0.2, 1),
		Gate:     math.Abs(x) > 0.5,
		Degree:   int(ScaleToRange(x*henonGain, 0, 6.999)),
	}
}

func mapLogistic(x float64) LogisticParams {
	complexity := 0.0
	if x >= 0.5 {
		complexity = (x - 0.5) * 2
	}
	return LogisticParams{
		Density:     x,
		Variation:   1 - x,
		Probability: x,
		Complexity:  complexity,
	}
}
