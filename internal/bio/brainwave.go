package bio

import "math"

// Band is one brainwave frequency band.
type Band struct {
	Name      string
	Frequency float64 // Hz
	Amplitude float64
	Phase     float64
}

// Band indices.
const (
	Delta = iota
	Theta
	Alpha
	Beta
	Gamma
	bandCount
)

func defaultBands() [bandCount]Band {
	return [bandCount]Band{
		{Name: "delta", Frequency: 2, Amplitude: 1.0},
		{Name: "theta", Frequency: 6, Amplitude: 0.8},
		{Name: "alpha", Frequency: 10, Amplitude: 0.6},
		{Name: "beta", Frequency: 20, Amplitude: 0.4},
		{Name: "gamma", Frequency: 40, Amplitude: 0.2},
	}
}

// meditationThreshold is the theta power above which Meditation is set.
const meditationThreshold = 0.5

// BrainwaveParams is the output of one brainwave step.
type BrainwaveParams struct {
	Values        [bandCount]float64 // amplitude·sin(phase) per band
	BassFrequency float64
	MidFrequency  float64
	HighFrequency float64
	Energy        float64 // 0..1
	Creativity    float64 // 0..1
	Relaxation    float64 // 0..1
	Focus         float64 // beta power minus theta power
	Meditation    bool
}

func stepBands(bands *[bandCount]Band, dt float64) BrainwaveParams {
	var v [bandCount]float64
	for i := range bands {
		bands[i].Phase += dt * bands[i].Frequency * 2 * math.Pi
		v[i] = bands[i].Amplitude * math.Sin(bands[i].Phase)
	}

	norm := func(i int) float64 { return math.Abs(v[i]) / bands[i].Amplitude }
	thetaPower := v[Theta] * v[Theta]

	return BrainwaveParams{
		Values:        v,
		BassFrequency: 110 + 55*v[Delta],
		MidFrequency:  220 + 110*v[Alpha],
		HighFrequency: 440 + 220*(v[Beta]+v[Gamma]),
		Energy:        (norm(Beta) + norm(Gamma)) / 2,
		Creativity:    (norm(Theta) + norm(Alpha)) / 2,
		Relaxation:    (norm(Alpha) + norm(Delta)) / 2,
		Focus:         v[Beta]*v[Beta] - thetaPower,
		Meditation:    thetaPower > meditationThreshold,
	}
}
