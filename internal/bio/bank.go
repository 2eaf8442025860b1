// Package bio implements the biological model bank: seven stateful models
// (DNA walker, heartbeat, brainwaves, Fibonacci spiral, Rule 30 automaton,
// Lotka-Volterra ecosystem and a genetic population) stepped on demand and
// mapped to musical parameters.
package bio

import (
	"fmt"
	"math/rand"
	"reflect"

	"github.com/vovakirdan/chaosynth/internal/registry"
)

// Model identifies one of the bank's biological models.
type Model int

const (
	DNA Model = iota
	Heartbeat
	Brainwave
	Fibonacci
	Automaton
	Ecosystem
	Genetic
)

var modelIDs = [...]string{"dna", "heartbeat", "brainwave", "fibonacci", "automaton", "ecosystem", "genetic"}

var modelTitles = [...]string{
	"DNA sequence walker",
	"Heartbeat variability",
	"Brainwave bands",
	"Fibonacci spiral",
	"Rule 30 automaton",
	"Lotka-Volterra ecosystem",
	"Genetic melody",
}

var modelDescriptions = [...]string{
	"codons choose root and mode, GC content gates notes",
	"kick on systole, coherence shapes the pulse",
	"delta to gamma oscillators, bass and high pairs",
	"golden-ratio frequency ladder",
	"active cells trigger notes",
	"prey and predator voices in tension",
	"evolving gene sequence played as a melody",
}

func init() {
	for m := DNA; m <= Genetic; m++ {
		registry.Register(registry.KindInfo{
			Family:      registry.FamilyBio,
			ID:          modelIDs[m],
			Title:       modelTitles[m],
			Description: modelDescriptions[m],
		})
	}
}

// String returns the model's registry ID.
func (m Model) String() string {
	if m < DNA || m > Genetic {
		return "unknown"
	}
	return modelIDs[m]
}

// ParseModel resolves a registry ID to a Model.
func ParseModel(id string) (Model, error) {
	for i, name := range modelIDs {
		if name == id {
			return Model(i), nil
		}
	}
	return 0, fmt.Errorf("bio: unknown model %q", id)
}

// Output is the result of stepping one model. Only the field matching Model
// is populated.
type Output struct {
	Model     Model
	DNA       DNAParams
	Heartbeat HeartbeatParams
	Brainwave BrainwaveParams
	Fibonacci FibonacciParams
	Automaton AutomatonParams
	Ecosystem EcosystemParams
	Genetic   GeneticParams
}

// Bank owns the state of every biological model.
type Bank struct {
	rng *rand.Rand

	dna        dnaWalker
	heartbeat  heartbeat
	bands      [bandCount]Band
	spiral     spiral
	automaton  automaton
	ecosystem  ecosystem
	population population
}

// NewBank creates a bank with construction-time defaults. The RNG seeds the
// DNA sequence and the genetic population and drives evolution; nil falls
// back to a fixed seed.
func NewBank(rng *rand.Rand) *Bank {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &Bank{rng: rng}
	b.Reset()
	return b
}

// Reset restores every model to construction-time defaults. The DNA sequence
// and the genetic population are drawn fresh from the RNG.
func (b *Bank) Reset() {
	b.dna = dnaWalker{Sequence: b.newSequence()}
	b.heartbeat = newHeartbeat()
	b.bands = defaultBands()
	b.spiral = spiral{}
	b.automaton = newAutomaton(AutomatonWidth)
	b.ecosystem = newEcosystem()
	b.population = newPopulation(b.rng)
}

// Step advances one model by deltaTime seconds and returns its parameters.
// Models without a notion of time advance one discrete step.
func (b *Bank) Step(m Model, deltaTime float64) Output {
	out := Output{Model: m}
	switch m {
	case DNA:
		out.DNA = b.dna.step()
	case Heartbeat:
		out.Heartbeat = b.heartbeat.step(deltaTime)
	case Brainwave:
		out.Brainwave = stepBands(&b.bands, deltaTime)
	case Fibonacci:
		out.Fibonacci = b.spiral.step()
	case Automaton:
		out.Automaton = b.automaton.step()
	case Ecosystem:
		out.Ecosystem = b.ecosystem.step(deltaTime)
	case Genetic:
		out.Genetic = b.population.step()
	}
	return out
}

// Evolve runs one generation of the genetic population.
func (b *Bank) Evolve() {
	b.population.evolve(b.rng)
}

// SetMutationRate sets the per-gene mutation probability, clamped to [0, 1].
func (b *Bank) SetMutationRate(rate float64) {
	b.population.MutationRate = min(max(rate, 0), 1)
}

// Generation returns the number of generations evolved since the last reset.
func (b *Bank) Generation() int {
	return b.population.Generation
}

// Population returns a deep copy of the genetic population.
func (b *Bank) Population() []Individual {
	out := make([]Individual, len(b.population.Individuals))
	for i, ind := range b.population.Individuals {
		out[i] = ind.clone()
	}
	return out
}

// Cells returns a copy of the automaton row.
func (b *Bank) Cells() []bool {
	return b.automaton.Cells()
}

// State is a deep copy of every model's mutable state, excluding the
// RNG-drawn DNA sequence and genetic genes.
type State struct {
	DNACursor      int
	DNALength      int
	HeartPhase     float64
	BandPhases     [bandCount]float64
	SpiralAngle    float64
	FibonacciIndex int
	Cells          []bool
	Prey           float64
	Predators      float64
	Vegetation     float64
	PopulationSize int
	Generation     int
	GeneCursor     int
	MutationRate   float64
}

// Snapshot returns the deterministic part of the bank's state.
func (b *Bank) Snapshot() State {
	s := State{
		DNACursor:      b.dna.Cursor,
		DNALength:      len(b.dna.Sequence),
		HeartPhase:     b.heartbeat.Phase,
		SpiralAngle:    b.spiral.Angle,
		FibonacciIndex: b.spiral.Index,
		Cells:          b.automaton.Cells(),
		Prey:           b.ecosystem.Prey,
		Predators:      b.ecosystem.Predators,
		Vegetation:     b.ecosystem.Vegetation,
		PopulationSize: len(b.population.Individuals),
		Generation:     b.population.Generation,
		GeneCursor:     b.population.Cursor,
		MutationRate:   b.population.MutationRate,
	}
	for i, band := range b.bands {
		s.BandPhases[i] = band.Phase
	}
	return s
}

// Equal reports whether two snapshots match.
func (s State) Equal(o State) bool {
	return reflect.DeepEqual(s, o)
}
