package bio

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/chaosynth/internal/core"
)

// Genetic population defaults.
const (
	PopulationSize      = 8
	GeneCount           = 8
	DefaultMutationRate = 0.1
	TournamentSize      = 3
	similarityDistance  = 0.5
)

// Individual is one member of the genetic population.
type Individual struct {
	Genes   []float64 // each in [0, 1]
	Fitness float64
}

func (ind Individual) clone() Individual {
	return Individual{Genes: append([]float64(nil), ind.Genes...), Fitness: ind.Fitness}
}

// Fitness rewards neighbouring genes that sit close together and a low
// overall spread. It is never negative.
func Fitness(genes []float64) float64 {
	score := 0.0
	for i := 1; i < len(genes); i++ {
		if d := math.Abs(genes[i] - genes[i-1]); d < similarityDistance {
			score += similarityDistance - d
		}
	}
	return score + math.Max(0, 1-core.Variance(genes))
}

// GeneticParams is the output of one genetic step.
type GeneticParams struct {
	Best       []float64
	Fitness    float64
	Generation int
	Diversity  float64 // mean pairwise L1 distance
	Gene       float64 // gene under the read cursor
	Frequency  float64 // Hz, two octaves above 220 at most
}

type population struct {
	Individuals  []Individual
	Generation   int
	MutationRate float64
	Cursor       int
}

func newPopulation(rng *rand.Rand) population {
	p := population{
		Individuals:  make([]Individual, PopulationSize),
		MutationRate: DefaultMutationRate,
	}
	for i := range p.Individuals {
		genes := make([]float64, GeneCount)
		for g := range genes {
			genes[g] = rng.Float64()
		}
		p.Individuals[i] = Individual{Genes: genes, Fitness: Fitness(genes)}
	}
	return p
}

// tournament picks the fittest of TournamentSize random individuals.
func (p *population) tournament(rng *rand.Rand) Individual {
	best := p.Individuals[rng.Intn(len(p.Individuals))]
	for i := 1; i < TournamentSize; i++ {
		candidate := p.Individuals[rng.Intn(len(p.Individuals))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// evolve replaces the population with one new generation.
func (p *population) evolve(rng *rand.Rand) {
	next := make([]Individual, len(p.Individuals))
	for i := range next {
		a := p.tournament(rng)
		b := p.tournament(rng)

		genes := make([]float64, len(a.Genes))
		cut := 1 + rng.Intn(len(genes)-1)
		copy(genes[:cut], a.Genes[:cut])
		copy(genes[cut:], b.Genes[cut:])

		for g := range genes {
			if rng.Float64() < p.MutationRate {
				genes[g] = rng.Float64()
			}
		}
		next[i] = Individual{Genes: genes, Fitness: Fitness(genes)}
	}
	p.Individuals = next
	p.Generation++
}

func (p *population) best() Individual {
	best := p.Individuals[0]
	for _, ind := range p.Individuals[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

func (p *population) diversity() float64 {
	total, pairs := 0.0, 0
	for i := range p.Individuals {
		for j := i + 1; j < len(p.Individuals); j++ {
			for g := range p.Individuals[i].Genes {
				total += math.Abs(p.Individuals[i].Genes[g] - p.Individuals[j].Genes[g])
			}
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

func (p *population) step() GeneticParams {
	best := p.best()
	p.Cursor = (p.Cursor + 1) % len(best.Genes)
	gene := best.Genes[p.Cursor]

	return GeneticParams{
		Best:       append([]float64(nil), best.Genes...),
		Fitness:    best.Fitness,
		Generation: p.Generation,
		Diversity:  p.diversity(),
		Gene:       gene,
		Frequency:  220 * math.Pow(2, gene*2),
	}
}
