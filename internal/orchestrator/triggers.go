package orchestrator

// Triggers holds the per-kind probability multipliers and thresholds used
// by the trigger policies. A multiplier scales the density parameter into a
// per-tick trigger probability.
type Triggers struct {
	Lorenz   float64 `yaml:"lorenz" json:"lorenz"`
	Rossler  float64 `yaml:"rossler" json:"rossler"`
	Chua     float64 `yaml:"chua" json:"chua"`
	Henon    float64 `yaml:"henon" json:"henon"`
	Logistic float64 `yaml:"logistic" json:"logistic"`

	DNA       float64 `yaml:"dna" json:"dna"`
	Heartbeat float64 `yaml:"heartbeat" json:"heartbeat"`
	Brainwave float64 `yaml:"brainwave" json:"brainwave"`
	Fibonacci float64 `yaml:"fibonacci" json:"fibonacci"`
	Automaton float64 `yaml:"automaton" json:"automaton"`
	Ecosystem float64 `yaml:"ecosystem" json:"ecosystem"`
	Genetic   float64 `yaml:"genetic" json:"genetic"`

	ExpressionThreshold float64 `yaml:"expression_threshold" json:"expression_threshold"` // DNA GC content gate
	CoherenceThreshold  float64 `yaml:"coherence_threshold" json:"coherence_threshold"`   // heartbeat coherence gate
	EvolveProbability   float64 `yaml:"evolve_probability" json:"evolve_probability"`     // genetic generation per tick
}

// DefaultTriggers returns the tuned defaults.
func DefaultTriggers() Triggers {
	return Triggers{
		Lorenz:   0.8,
		Rossler:  1.0,
		Chua:     0.6,
		Henon:    0.7,
		Logistic: 0.5,

		DNA:       0.8,
		Heartbeat: 0.9,
		Brainwave: 0.6,
		Fibonacci: 0.7,
		Automaton: 1.0,
		Ecosystem: 0.4,
		Genetic:   0.6,

		ExpressionThreshold: 0.25,
		CoherenceThreshold:  0.3,
		EvolveProbability:   0.1,
	}
}
