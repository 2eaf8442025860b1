package bio

import "math"

// Heartbeat defaults.
const (
	DefaultHeartRate   = 60.0 // BPM
	DefaultVariability = 0.1
	kickThreshold      = 0.8
)

// HeartbeatParams is the output of one heartbeat step.
type HeartbeatParams struct {
	Tempo       float64 // BPM, within BaseRate·[1-v, 1+v]
	Variability float64 // current modulation term
	Coherence   float64 // 0..1
	Kick        bool
	Systolic    float64 // -1..1
	Diastolic   float64 // -1..1
	Frequency   float64 // Hz, low thump pitch
}

type heartbeat struct {
	Phase       float64
	BaseRate    float64
	Variability float64
}

func newHeartbeat() heartbeat {
	return heartbeat{BaseRate: DefaultHeartRate, Variability: DefaultVariability}
}

func (h *heartbeat) step(dt float64) HeartbeatParams {
	h.Phase += dt

	term := math.Sin(h.Phase*0.1) * h.Variability
	tempo := h.BaseRate * (1 + term)
	coherence := (math.Sin(h.Phase*0.05) + 1) / 2

	beat := h.Phase * 2 * math.Pi * tempo / 60
	systolic := math.Sin(beat)

	return HeartbeatParams{
		Tempo:       tempo,
		Variability: term,
		Coherence:   coherence,
		Kick:        systolic > kickThreshold,
		Systolic:    systolic,
		Diastolic:   math.Sin(beat + math.Pi/3),
		Frequency:   40 + 40*coherence,
	}
}
