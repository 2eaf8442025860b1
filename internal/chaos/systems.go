package chaos

import "math"

// Vec3 is the state of a three-dimensional continuous system.
type Vec3 [3]float64

// finite reports whether every component is a finite number.
func (v Vec3) finite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// LorenzSystem is the classic Lorenz attractor.
type LorenzSystem struct {
	Sigma, Rho, Beta float64
	H                float64 // native integration step
	State            Vec3
}

// Derive returns the time derivative at s.
func (l *LorenzSystem) Derive(s Vec3) Vec3 {
	return Vec3{
		l.Sigma * (s[1] - s[0]),
		s[0]*(l.Rho-s[2]) - s[1],
		s[0]*s[1] - l.Beta*s[2],
	}
}

// RosslerSystem is the Rössler attractor.
type RosslerSystem struct {
	A, B, C float64
	H       float64
	State   Vec3
}

// Derive returns the time derivative at s.
func (r *RosslerSystem) Derive(s Vec3) Vec3 {
	return Vec3{
		-s[1] - s[2],
		s[0] + r.A*s[1],
		r.B + s[2]*(s[0]-r.C),
	}
}

// ChuaSystem is Chua's circuit with a piecewise-linear diode.
type ChuaSystem struct {
	Alpha, Beta float64
	M0, M1      float64 // inner and outer diode slopes
	H           float64
	State       Vec3
}

func (c *ChuaSystem) diode(x float64) float64 {
	return c.M1*x + 0.5*(c.M0-c.M1)*(math.Abs(x+1)-math.Abs(x-1))
}

// Derive returns the time derivative at s.
func (c *ChuaSystem) Derive(s Vec3) Vec3 {
	return Vec3{
		c.Alpha * (s[1] - s[0] - c.diode(s[0])),
		s[0] - s[1] + s[2],
		-c.Beta * s[1],
	}
}

// HenonMap is the two-dimensional Hénon map.
type HenonMap struct {
	A, B float64
	X, Y float64
}

// Iterate applies the map once.
func (h *HenonMap) Iterate() {
	h.X, h.Y = 1-h.A*h.X*h.X+h.Y, h.B*h.X
}

// LogisticMap is the one-dimensional logistic map.
type LogisticMap struct {
	R float64
	X float64
}

// Iterate applies the map once.
func (l *LogisticMap) Iterate() {
	l.X = l.R * l.X * (1 - l.X)
}

func defaultLorenz() LorenzSystem {
	return LorenzSystem{Sigma: 10, Rho: 28, Beta: 8.0 / 3.0, H: 0.01, State: Vec3{1, 1, 1}}
}

func defaultRossler() RosslerSystem {
	return RosslerSystem{A: 0.2, B: 0.2, C: 5.7, H: 0.05, State: Vec3{1, 1, 1}}
}

func defaultChua() ChuaSystem {
	return ChuaSystem{Alpha: 15.6, Beta: 28, M0: -1.143, M1: -0.714, H: 0.01, State: Vec3{0.7, 0, 0}}
}

func defaultHenon() HenonMap {
	return HenonMap{A: 1.4, B: 0.3}
}

func defaultLogistic() LogisticMap {
	return LogisticMap{R: 3.9, X: 0.5}
}

// maxSubsteps bounds the work done by a single Step call.
const maxSubsteps = 64

// integrate advances state by dt with explicit Euler in steps no larger than h.
// A non-positive dt advances by exactly one native step.
func integrate(state Vec3, h, dt float64, derive func(Vec3) Vec3) Vec3 {
	n := 1
	step := h
	if dt > 0 {
		n = int(math.Ceil(dt / h))
		if n < 1 {
			n = 1
		}
		if n > maxSubsteps {
			n = maxSubsteps
		}
		step = math.Min(h, dt/float64(n))
	}

	for i := 0; i < n; i++ {
		d := derive(state)
		for k := range state {
			state[k] += d[k] * step
		}
	}
	return state
}
