// Package chaos implements the dynamical system bank: five chaotic systems
// stepped on demand and mapped to musical parameters.
//
// Stepping is a pure function of state, parameters and dt. The only source of
// randomness is Perturb, which draws from the injected RNG.
package chaos

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/chaosynth/internal/registry"
)

// System identifies one of the bank's dynamical systems.
type System int

const (
	Lorenz System = iota
	Rossler
	Chua
	Henon
	Logistic
)

var systemIDs = [...]string{"lorenz", "rossler", "chua", "henon", "logistic"}

var systemTitles = [...]string{
	"Lorenz attractor",
	"Rössler attractor",
	"Chua's circuit",
	"Hénon map",
	"Logistic map",
}

var systemDescriptions = [...]string{
	"melodic line: pitch, amplitude, cutoff, pan",
	"rhythm: trigger, tempo, swing, accent",
	"glitch: bit depth, distortion, stutter",
	"chords: pitch, velocity, gate, degree",
	"texture: density, variation, probability",
}

func init() {
	for s := Lorenz; s <= Logistic; s++ {
		registry.Register(registry.KindInfo{
			Family:      registry.FamilyChaos,
			ID:          systemIDs[s],
			Title:       systemTitles[s],
			Description: systemDescriptions[s],
		})
	}
}

// String returns the system's registry ID.
func (s System) String() string {
	if s < Lorenz || s > Logistic {
		return "unknown"
	}
	return systemIDs[s]
}

// ParseSystem resolves a registry ID to a System.
func ParseSystem(id string) (System, error) {
	for i, name := range systemIDs {
		if name == id {
			return System(i), nil
		}
	}
	return 0, fmt.Errorf("chaos: unknown system %q", id)
}

// Bank owns the state of every dynamical system.
type Bank struct {
	rng *rand.Rand

	lorenz   LorenzSystem
	rossler  RosslerSystem
	chua     ChuaSystem
	henon    HenonMap
	logistic LogisticMap
}

// NewBank creates a bank in canonical state. rng is used only by Perturb;
// nil falls back to a fixed seed.
func NewBank(rng *rand.Rand) *Bank {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &Bank{rng: rng}
	b.Reset()
	return b
}

// Reset restores every system to its canonical initial vector.
func (b *Bank) Reset() {
	b.lorenz = defaultLorenz()
	b.rossler = defaultRossler()
	b.chua = defaultChua()
	b.henon = defaultHenon()
	b.logistic = defaultLogistic()
}

// Step advances one system and returns its mapped parameters.
// Continuous systems integrate over dt; discrete maps iterate once.
func (b *Bank) Step(s System, dt float64) Output {
	out := Output{System: s}

	switch s {
	case Lorenz:
		b.lorenz.State = integrate(b.lorenz.State, b.lorenz.H, dt, b.lorenz.Derive)
		if !b.lorenz.State.finite() {
			b.lorenz.State = defaultLorenz().State
		}
		out.State = b.lorenz.State
		out.Lorenz = mapLorenz(out.State)
	case Rossler:
		b.rossler.State = integrate(b.rossler.State, b.rossler.H, dt, b.rossler.Derive)
		if !b.rossler.State.finite() {
			b.rossler.State = defaultRossler().State
		}
		out.State = b.rossler.State
		out.Rossler = mapRossler(out.State)
	case Chua:
		b.chua.State = integrate(b.chua.State, b.chua.H, dt, b.chua.Derive)
		if !b.chua.State.finite() {
			b.chua.State = defaultChua().State
		}
		out.State = b.chua.State
		out.Chua = mapChua(out.State)
	case Henon:
		b.henon.Iterate()
		if !(Vec3{b.henon.X, b.henon.Y}).finite() {
			b.henon = defaultHenon()
		}
		out.State = Vec3{b.henon.X, b.henon.Y, 0}
		out.Henon = mapHenon(b.henon.X, b.henon.Y)
	case Logistic:
		b.logistic.Iterate()
		out.State = Vec3{b.logistic.X, 0, 0}
		out.Logistic = mapLogistic(b.logistic.X)
	}

	return out
}

// Perturb nudges the Lorenz and Rössler states by uniform noise in
// [-amount/2, amount/2] per component.
func (b *Bank) Perturb(amount float64) {
	for i := range b.lorenz.State {
		b.lorenz.State[i] += (b.rng.Float64() - 0.5) * amount
	}
	for i := range b.rossler.State {
		b.rossler.State[i] += (b.rng.Float64() - 0.5) * amount
	}
}

// State is a copy of every system's mutable state.
type State struct {
	Lorenz   Vec3
	Rossler  Vec3
	Chua     Vec3
	HenonX   float64
	HenonY   float64
	Logistic float64
}

// Snapshot returns the current state of every system.
func (b *Bank) Snapshot() State {
	return State{
		Lorenz:   b.lorenz.State,
		Rossler:  b.rossler.State,
		Chua:     b.chua.State,
		HenonX:   b.henon.X,
		HenonY:   b.henon.Y,
		Logistic: b.logistic.X,
	}
}
