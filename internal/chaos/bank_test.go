package chaos

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/chaosynth/internal/registry"
)

var allSystems = []System{Lorenz, Rossler, Chua, Henon, Logistic}

func TestStepDeterministic(t *testing.T) {
	a := NewBank(rand.New(rand.NewSource(1)))
	b := NewBank(rand.New(rand.NewSource(99)))

	for i := 0; i < 500; i++ {
		for _, s := range allSystems {
			oa := a.Step(s, 0.016)
			ob := b.Step(s, 0.016)
			if oa != ob {
				t.Fatalf("step %d %s: outputs differ: %+v vs %+v", i, s, oa, ob)
			}
		}
	}
}

func TestResetMatchesFresh(t *testing.T) {
	b := NewBank(rand.New(rand.NewSource(7)))
	for i := 0; i < 100; i++ {
		for _, s := range allSystems {
			b.Step(s, 0.05)
		}
	}
	b.Perturb(3)
	b.Reset()

	fresh := NewBank(nil)
	if b.Snapshot() != fresh.Snapshot() {
		t.Errorf("Snapshot() after Reset = %+v, expected %+v", b.Snapshot(), fresh.Snapshot())
	}
}

func TestPerturbOnlyTouchesLorenzAndRossler(t *testing.T) {
	b := NewBank(rand.New(rand.NewSource(42)))
	before := b.Snapshot()
	b.Perturb(1)
	after := b.Snapshot()

	if after.Lorenz == before.Lorenz {
		t.Error("Perturb() should change Lorenz state")
	}
	if after.Rossler == before.Rossler {
		t.Error("Perturb() should change Rössler state")
	}
	if after.Chua != before.Chua || after.HenonX != before.HenonX || after.Logistic != before.Logistic {
		t.Error("Perturb() should leave Chua, Hénon and logistic untouched")
	}

	for i := range after.Lorenz {
		if d := math.Abs(after.Lorenz[i] - before.Lorenz[i]); d > 0.5 {
			t.Errorf("Lorenz[%d] moved by %v, expected at most 0.5", i, d)
		}
	}
}

func TestPerturbSeeded(t *testing.T) {
	a := NewBank(rand.New(rand.NewSource(5)))
	b := NewBank(rand.New(rand.NewSource(5)))
	a.Perturb(2)
	b.Perturb(2)
	if a.Snapshot() != b.Snapshot() {
		t.Error("Perturb() with identical seeds should produce identical state")
	}
}

func TestScaleToRange(t *testing.T) {
	tests := []struct {
		v, min, max float64
		expected    float64
	}{
		{0, 0, 1, 0.5},
		{-20, 100, 800, 100},
		{20, 100, 800, 800},
		{-1000, 100, 800, 100},
		{1000, -1, 1, 1},
		{10, 0, 40, 30},
	}

	for _, tt := range tests {
		got := ScaleToRange(tt.v, tt.min, tt.max)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("ScaleToRange(%v, %v, %v) = %v, expected %v", tt.v, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestLorenzStaysBounded(t *testing.T) {
	b := NewBank(nil)
	for i := 0; i < 5000; i++ {
		out := b.Step(Lorenz, 1.0/60)
		for k, c := range out.State {
			if math.IsNaN(c) || math.Abs(c) > 100 {
				t.Fatalf("step %d: state[%d] = %v escaped the attractor", i, k, c)
			}
		}
		p := out.Lorenz
		if p.Frequency < 100 || p.Frequency > 800 {
			t.Fatalf("Frequency = %v, expected within [100, 800]", p.Frequency)
		}
		if p.Pan < -1 || p.Pan > 1 {
			t.Fatalf("Pan = %v, expected within [-1, 1]", p.Pan)
		}
	}
}

func TestRosslerSubdivisionRange(t *testing.T) {
	b := NewBank(nil)
	for i := 0; i < 2000; i++ {
		p := b.Step(Rossler, 0.05).Rossler
		if p.Subdivision < 1 || p.Subdivision > 8 {
			t.Fatalf("Subdivision = %d, expected within [1, 8]", p.Subdivision)
		}
		if p.Tempo < 60 || p.Tempo > 180 {
			t.Fatalf("Tempo = %v, expected within [60, 180]", p.Tempo)
		}
	}
}

func TestChuaMapping(t *testing.T) {
	p := mapChua(Vec3{2.5, 0.3, -1})
	if !p.Glitch || !p.Stutter || !p.Reverse {
		t.Errorf("mapChua() flags = %+v, expected glitch, stutter and reverse", p)
	}
	if p.BitDepth < 4 || p.BitDepth > 16 {
		t.Errorf("BitDepth = %d, expected within [4, 16]", p.BitDepth)
	}
	calm := mapChua(Vec3{0.5, 0.1, 1})
	if calm.Glitch || calm.Stutter || calm.Reverse {
		t.Errorf("mapChua() calm flags = %+v, expected none", calm)
	}
}

func TestHenonFirstIterations(t *testing.T) {
	b := NewBank(nil)

	out := b.Step(Henon, 0)
	if out.State[0] != 1 || out.State[1] != 0 {
		t.Errorf("first Hénon iterate = (%v, %v), expected (1, 0)", out.State[0], out.State[1])
	}
	if !out.Henon.Gate {
		t.Error("Gate should open when |x| > 0.5")
	}

	out = b.Step(Henon, 0)
	if math.Abs(out.State[0]+0.4) > 1e-12 || math.Abs(out.State[1]-0.3) > 1e-12 {
		t.Errorf("second Hénon iterate = (%v, %v), expected (-0.4, 0.3)", out.State[0], out.State[1])
	}

	for i := 0; i < 1000; i++ {
		d := b.Step(Henon, 0).Henon.Degree
		if d < 0 || d > 6 {
			t.Fatalf("Degree = %d, expected within [0, 6]", d)
		}
	}
}

func TestLogisticMapping(t *testing.T) {
	tests := []struct {
		x          float64
		complexity float64
	}{
		{0.2, 0},
		{0.5, 0},
		{0.75, 0.5},
		{1, 1},
	}
	for _, tt := range tests {
		p := mapLogistic(tt.x)
		if math.Abs(p.Complexity-tt.complexity) > 1e-12 {
			t.Errorf("mapLogistic(%v).Complexity = %v, expected %v", tt.x, p.Complexity, tt.complexity)
		}
		if math.Abs(p.Variation-(1-tt.x)) > 1e-12 {
			t.Errorf("mapLogistic(%v).Variation = %v, expected %v", tt.x, p.Variation, 1-tt.x)
		}
	}

	b := NewBank(nil)
	out := b.Step(Logistic, 0)
	if math.Abs(out.Logistic.Density-0.975) > 1e-12 {
		t.Errorf("first logistic iterate = %v, expected 0.975", out.Logistic.Density)
	}
}

func TestIntegrateSubsteps(t *testing.T) {
	calls := 0
	derive := func(Vec3) Vec3 { calls++; return Vec3{1, 0, 0} }

	got := integrate(Vec3{}, 0.25, 1.25, derive)
	if calls != 5 {
		t.Errorf("integrate() made %d substeps, expected 5", calls)
	}
	if got[0] != 1.25 {
		t.Errorf("integrate() x = %v, expected 1.25", got[0])
	}

	calls = 0
	integrate(Vec3{}, 0.01, 100, derive)
	if calls != maxSubsteps {
		t.Errorf("integrate() with huge dt made %d substeps, expected %d", calls, maxSubsteps)
	}

	calls = 0
	integrate(Vec3{}, 0.01, 0, derive)
	if calls != 1 {
		t.Errorf("integrate() with dt=0 made %d substeps, expected 1", calls)
	}
}

func TestParseSystem(t *testing.T) {
	for _, s := range allSystems {
		got, err := ParseSystem(s.String())
		if err != nil || got != s {
			t.Errorf("ParseSystem(%q) = %v, %v, expected %v", s.String(), got, err, s)
		}
		if !registry.Exists(registry.FamilyChaos, s.String()) {
			t.Errorf("system %q is not registered", s)
		}
	}
	if _, err := ParseSystem("duffing"); err == nil {
		t.Error("ParseSystem() of unknown system should fail")
	}
}
