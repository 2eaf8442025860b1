package bio

import "math"

// Lotka-Volterra coefficients.
const (
	PreyGrowth    = 0.1
	Predation     = 0.075
	PredatorGain  = 0.05
	PredatorDecay = 0.125

	vegetationGrowth  = 0.05
	VegetationCap     = 300.0
	grazing           = 0.01
	interactionScale  = 10.0 // divides prey·predator encounters
	ecosystemTickSpan = 0.1  // seconds covered by one unit step

	populationFloor   = 1.0
	populationCeiling = 10000.0
)

// Canonical starting populations.
const (
	InitialPrey       = 40.0
	InitialPredators  = 10.0
	InitialVegetation = 250.0
)

// EcosystemParams is the output of one ecosystem step.
type EcosystemParams struct {
	Prey              float64
	Predators         float64
	Vegetation        float64
	PreyFrequency     float64 // Hz
	PredatorFrequency float64 // Hz
	VegetationDensity float64 // vegetation / cap
	Balance           float64 // prey / (predators + 1)
	Tension           float64 // sum of absolute deltas
	Stability         float64 // 1 / (1 + tension)
}

type ecosystem struct {
	Prey       float64
	Predators  float64
	Vegetation float64
}

func newEcosystem() ecosystem {
	return ecosystem{Prey: InitialPrey, Predators: InitialPredators, Vegetation: InitialVegetation}
}

func clampPopulation(v float64) float64 {
	if math.IsNaN(v) || v < populationFloor {
		return populationFloor
	}
	if v > populationCeiling {
		return populationCeiling
	}
	return v
}

// step integrates one Euler step covering dt seconds. Negative dt is treated as zero.
func (e *ecosystem) step(dt float64) EcosystemParams {
	h := math.Max(dt, 0) / ecosystemTickSpan

	encounters := e.Prey * e.Predators / interactionScale
	dPrey := PreyGrowth*e.Prey*(e.Vegetation/VegetationCap) - Predation*encounters
	dPred := PredatorGain*encounters - PredatorDecay*e.Predators
	dVeg := vegetationGrowth*e.Vegetation*(1-e.Vegetation/VegetationCap) - grazing*e.Prey

	prev := *e
	e.Prey = clampPopulation(e.Prey + dPrey*h)
	e.Predators = clampPopulation(e.Predators + dPred*h)
	e.Vegetation = math.Min(clampPopulation(e.Vegetation+dVeg*h), VegetationCap)

	tension := math.Abs(e.Prey-prev.Prey) + math.Abs(e.Predators-prev.Predators) + math.Abs(e.Vegetation-prev.Vegetation)

	return EcosystemParams{
		Prey:              e.Prey,
		Predators:         e.Predators,
		Vegetation:        e.Vegetation,
		PreyFrequency:     math.Min(220+e.Prey*2, 880),
		PredatorFrequency: math.Min(55+e.Predators*4, 440),
		VegetationDensity: e.Vegetation / VegetationCap,
		Balance:           e.Prey / (e.Predators + 1),
		Tension:           tension,
		Stability:         1 / (1 + tension),
	}
}
