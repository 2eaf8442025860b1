package orchestrator

import (
	"fmt"
	"math"
	"sort"
)

// Scales maps scale names to semitone offsets from the root.
var Scales = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"locrian":    {0, 1, 3, 5, 6, 8, 10},
	"pentatonic": {0, 2, 4, 7, 9},
	"blues":      {0, 3, 5, 6, 7, 10},
	"chromatic":  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"wholetone":  {0, 2, 4, 6, 8, 10},
}

// ScaleNames returns the scale names in sorted order. UpdateParameter
// addresses scales by their index in this list.
func ScaleNames() []string {
	names := make([]string, 0, len(Scales))
	for name := range Scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Quantizer snaps frequencies to the nearest degree of a scale.
type Quantizer struct {
	Root    float64 // Hz
	Degrees []int   // semitone offsets within one octave
}

// NewQuantizer builds a quantizer for a named scale.
func NewQuantizer(root float64, scale string) (Quantizer, error) {
	degrees, ok := Scales[scale]
	if !ok {
		return Quantizer{}, fmt.Errorf("orchestrator: unknown scale %q", scale)
	}
	if root <= 0 {
		return Quantizer{}, fmt.Errorf("orchestrator: root must be positive, got %v", root)
	}
	return Quantizer{Root: root, Degrees: degrees}, nil
}

// Quantize returns the scale frequency nearest to freq. The octave above the
// last degree is a candidate too, so values just below the next root snap up.
// Non-positive input is returned unchanged.
func (q Quantizer) Quantize(freq float64) float64 {
	if freq <= 0 || q.Root <= 0 || len(q.Degrees) == 0 {
		return freq
	}

	semis := 12 * math.Log2(freq/q.Root)
	octave := math.Floor(semis / 12)
	offset := semis - 12*octave

	best := float64(q.Degrees[0])
	bestDist := math.Abs(offset - best)
	for _, d := range q.Degrees[1:] {
		if dist := math.Abs(offset - float64(d)); dist < bestDist {
			best, bestDist = float64(d), dist
		}
	}
	if dist := math.Abs(offset - 12); dist < bestDist {
		best = 12
	}

	return q.Root * math.Pow(2, (12*octave+best)/12)
}

// Interval returns the frequency ratio from scale degree index degree to the
// degree steps above it, crossing octaves as needed.
func (q Quantizer) Interval(degree, steps int) float64 {
	n := len(q.Degrees)
	if n == 0 {
		return 1
	}
	semis := func(i int) int {
		oct := i / n
		if i%n < 0 {
			oct--
		}
		return 12*oct + q.Degrees[((i%n)+n)%n]
	}
	return math.Pow(2, float64(semis(degree+steps)-semis(degree))/12)
}
