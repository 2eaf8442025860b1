package bio

import "math"

// Phi is the golden ratio.
var Phi = (1 + math.Sqrt(5)) / 2

var fibonacci = [...]int{1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233, 377, 610, 987}

// spiralBase is the root of the golden-ratio frequency ladder.
const spiralBase = 220.0

// FibonacciParams is the output of one spiral step.
type FibonacciParams struct {
	Angle       float64
	Fibonacci   int
	Intensity   float64 // 0..1, follows the spiral's sine
	Frequencies [4]float64
	Harmony     [5]float64 // ratios including the conjugate 1/φ
}

type spiral struct {
	Angle float64
	Index int
}

func (s *spiral) step() FibonacciParams {
	s.Angle += Phi * 0.1
	s.Index = (s.Index + 1) % len(fibonacci)

	var freqs [4]float64
	for k := range freqs {
		freqs[k] = spiralBase * math.Pow(Phi, float64(k))
	}

	return FibonacciParams{
		Angle:       s.Angle,
		Fibonacci:   fibonacci[s.Index],
		Intensity:   (math.Sin(s.Angle) + 1) / 2,
		Frequencies: freqs,
		Harmony:     [5]float64{1, Phi, Phi * Phi, 1 / Phi, 1 / (Phi * Phi)},
	}
}
