package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},   // within range
		{-5, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5.5, 0.0, 10.0, 5.5},
		{-5.5, 0.0, 10.0, 0.0},
		{15.5, 0.0, 10.0, 10.0},
	}

	for _, tc := range tests {
		result := ClampF(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		i, n     int
		expected int
	}{
		{"inside", 3, 8, 3},
		{"at length", 8, 8, 0},
		{"past length", 11, 8, 3},
		{"negative", -1, 8, 7},
		{"far negative", -17, 8, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Wrap(tc.i, tc.n); got != tc.expected {
				t.Errorf("Wrap(%d, %d) = %d, expected %d", tc.i, tc.n, got, tc.expected)
			}
		})
	}
}

func TestMeanVariance(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if m := Mean(xs); m != 5 {
		t.Errorf("Mean() = %f, expected 5", m)
	}
	if v := Variance(xs); v != 4 {
		t.Errorf("Variance() = %f, expected 4", v)
	}
	if Mean(nil) != 0 || Variance(nil) != 0 {
		t.Error("Mean/Variance of empty slice should be 0")
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(100, 200, 0.25); got != 125 {
		t.Errorf("Lerp(100, 200, 0.25) = %f, expected 125", got)
	}
	if !AlmostEqual(Lerp(-1, 1, 0.5), 0, 1e-12) {
		t.Error("Lerp(-1, 1, 0.5) should be 0")
	}
	if AlmostEqual(1, 1.5, 0.1) {
		t.Error("AlmostEqual(1, 1.5, 0.1) should be false")
	}
	if !AlmostEqual(math.Pi, 3.14159, 1e-5) {
		t.Error("AlmostEqual(Pi, 3.14159, 1e-5) should be true")
	}
}
