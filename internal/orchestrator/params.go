package orchestrator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/chaosynth/internal/bio"
	"github.com/vovakirdan/chaosynth/internal/registry"
)

// Settings is the complete live configuration of an orchestrator. It is the
// payload stored in presets.
type Settings struct {
	Kind         string  `json:"kind" yaml:"kind"`
	Density      float64 `json:"density" yaml:"density"`             // 0..1, scales trigger probability
	Speed        float64 `json:"speed" yaml:"speed"`                 // 0.1..5, evolution rate
	Volume       float64 `json:"volume" yaml:"volume"`               // 0..1
	Duration     float64 `json:"duration" yaml:"duration"`           // seconds
	Attack       float64 `json:"attack" yaml:"attack"`               // seconds
	ReleaseGrace float64 `json:"release_grace" yaml:"release_grace"` // seconds after decay before release
	Quantize     bool    `json:"quantize" yaml:"quantize"`
	Root         float64 `json:"root" yaml:"root"` // Hz
	Scale        string  `json:"scale" yaml:"scale"`
	Mutation     float64 `json:"mutation" yaml:"mutation"` // 0..1, genetic per-gene rate, bio only
}

// DefaultSettings returns the defaults for a family.
func DefaultSettings(family registry.Family) Settings {
	s := Settings{
		Density:      0.5,
		Speed:        1,
		Volume:       0.5,
		Duration:     0.8,
		Attack:       0.02,
		ReleaseGrace: 0.1,
		Quantize:     true,
		Root:         220,
		Scale:        "minor",
		Mutation:     bio.DefaultMutationRate,
	}
	switch family {
	case registry.FamilyChaos:
		s.Kind = "lorenz"
	case registry.FamilyBio:
		s.Kind = "heartbeat"
		s.Duration = 1.2
	}
	return s
}

// Parameter names accepted by UpdateParameter.
const (
	ParamKind         = "model"
	ParamDensity      = "density"
	ParamSpeed        = "speed"
	ParamVolume       = "volume"
	ParamDuration     = "duration"
	ParamAttack       = "attack"
	ParamReleaseGrace = "release_grace"
	ParamQuantize     = "quantize"
	ParamRoot         = "root"
	ParamScale        = "scale"
	ParamMutation     = "mutation"
)

type paramRange struct {
	min, max float64
}

var ranges = map[string]paramRange{
	ParamDensity:      {0, 1},
	ParamSpeed:        {0.1, 5},
	ParamVolume:       {0, 1},
	ParamDuration:     {0.05, 5},
	ParamAttack:       {0.001, 1},
	ParamReleaseGrace: {0, 2},
	ParamQuantize:     {0, 1},
	ParamRoot:         {27.5, 880},
	ParamMutation:     {0, 1},
}

// ParameterNames lists every name accepted by UpdateParameter.
func ParameterNames() []string {
	return []string{
		ParamKind, ParamDensity, ParamSpeed, ParamVolume, ParamDuration,
		ParamAttack, ParamReleaseGrace, ParamQuantize, ParamRoot, ParamScale,
		ParamMutation,
	}
}

// ParameterRange returns the accepted range for a parameter. Index-valued
// parameters report [0, count-1].
func ParameterRange(family registry.Family, name string) (min, max float64, ok bool) {
	switch name {
	case ParamKind:
		return 0, float64(len(registry.IDs(family)) - 1), true
	case ParamScale:
		return 0, float64(len(Scales) - 1), true
	case ParamMutation:
		if family != registry.FamilyBio {
			return 0, 0, false
		}
	}
	r, ok := ranges[name]
	return r.min, r.max, ok
}

func invalid(name string, value any) error {
	return fmt.Errorf("orchestrator: %s=%v: %w", name, value, ErrInvalidParameter)
}

// set validates and applies one numeric field of s. Kind and scale are
// handled by the caller.
func (s *Settings) set(name string, value float64) error {
	r, ok := ranges[name]
	if !ok {
		return invalid(name, value)
	}
	if math.IsNaN(value) || value < r.min || value > r.max {
		return invalid(name, value)
	}

	switch name {
	case ParamDensity:
		s.Density = value
	case ParamSpeed:
		s.Speed = value
	case ParamVolume:
		s.Volume = value
	case ParamDuration:
		s.Duration = value
	case ParamAttack:
		s.Attack = value
	case ParamReleaseGrace:
		s.ReleaseGrace = value
	case ParamQuantize:
		s.Quantize = value >= 0.5
	case ParamRoot:
		s.Root = value
	case ParamMutation:
		s.Mutation = value
	}
	return nil
}

// Validate checks every field and returns a copy where invalid fields are
// replaced by the matching field of fallback, plus the joined errors.
func (s Settings) Validate(family registry.Family, fallback Settings) (Settings, error) {
	out := fallback
	var errs []error

	if registry.Exists(family, s.Kind) {
		out.Kind = s.Kind
	} else {
		errs = append(errs, fmt.Errorf("orchestrator: kind %q: %w", s.Kind, ErrUnknownKind))
	}
	if _, ok := Scales[s.Scale]; ok {
		out.Scale = s.Scale
	} else {
		errs = append(errs, invalid(ParamScale, s.Scale))
	}

	quantize := 0.0
	if s.Quantize {
		quantize = 1
	}
	fields := map[string]float64{
		ParamDensity:      s.Density,
		ParamSpeed:        s.Speed,
		ParamVolume:       s.Volume,
		ParamDuration:     s.Duration,
		ParamAttack:       s.Attack,
		ParamReleaseGrace: s.ReleaseGrace,
		ParamQuantize:     quantize,
		ParamRoot:         s.Root,
		ParamMutation:     s.Mutation,
	}
	for _, name := range ParameterNames() {
		v, ok := fields[name]
		if !ok {
			continue
		}
		if err := out.set(name, v); err != nil {
			errs = append(errs, err)
		}
	}

	return out, errors.Join(errs...)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
