package bio

import "github.com/vovakirdan/chaosynth/internal/core"

// DNALength is the number of symbols in a generated sequence.
const DNALength = 64

const nucleotides = "ATGC"

// codon maps a nucleotide to a musical mode.
type codon struct {
	Frequency float64
	ScaleName string
	Scale     [7]int
	Density   float64
}

var codons = map[byte]codon{
	'A': {Frequency: 261.63, ScaleName: "major", Scale: [7]int{0, 2, 4, 5, 7, 9, 11}, Density: 0.7},
	'T': {Frequency: 293.66, ScaleName: "minor", Scale: [7]int{0, 2, 3, 5, 7, 8, 10}, Density: 0.5},
	'G': {Frequency: 329.63, ScaleName: "lydian", Scale: [7]int{0, 2, 4, 6, 7, 9, 11}, Density: 0.8},
	'C': {Frequency: 246.94, ScaleName: "locrian", Scale: [7]int{0, 1, 3, 5, 6, 8, 10}, Density: 0.3},
}

// expressionWindow is how many recent symbols feed GeneExpression.
const expressionWindow = 8

// DNAParams is the output of one DNA step.
type DNAParams struct {
	Symbol         byte
	Position       int
	BaseFrequency  float64
	ScaleName      string
	Scale          [7]int // semitone offsets
	Density        float64
	GeneExpression float64 // GC fraction of the last 8 symbols
}

type dnaWalker struct {
	Sequence []byte
	Cursor   int
}

func (b *Bank) newSequence() []byte {
	seq := make([]byte, DNALength)
	for i := range seq {
		seq[i] = nucleotides[b.rng.Intn(len(nucleotides))]
	}
	return seq
}

func (d *dnaWalker) step() DNAParams {
	n := len(d.Sequence)
	d.Cursor = (d.Cursor + 1) % n

	sym := d.Sequence[d.Cursor]
	c := codons[sym]

	gc := 0
	for i := 0; i < expressionWindow; i++ {
		s := d.Sequence[core.Wrap(d.Cursor-i, n)]
		if s == 'G' || s == 'C' {
			gc++
		}
	}

	return DNAParams{
		Symbol:         sym,
		Position:       d.Cursor,
		BaseFrequency:  c.Frequency,
		ScaleName:      c.ScaleName,
		Scale:          c.Scale,
		Density:        c.Density,
		GeneExpression: float64(gc) / expressionWindow,
	}
}
