package audio

import (
	"math"
	"sort"
	"time"
)

type rampKind int

const (
	setValue rampKind = iota
	linearRamp
	exponentialRamp
)

// automation is one scheduled envelope change. Ramps end at their time and
// start from the previous event.
type automation struct {
	at    time.Duration
	level float64
	kind  rampKind
}

type envelope struct {
	initial float64
	created time.Duration
	events  []automation
	routed  bool // connected to the master bus
}

func (e *envelope) schedule(a automation) {
	i := sort.Search(len(e.events), func(i int) bool { return e.events[i].at > a.at })
	e.events = append(e.events, automation{})
	copy(e.events[i+1:], e.events[i:])
	e.events[i] = a
}

// levelAt evaluates the envelope at t.
func (e *envelope) levelAt(t time.Duration) float64 {
	prevT, prevV := e.created, e.initial
	for _, ev := range e.events {
		if ev.at <= t {
			prevT, prevV = ev.at, ev.level
			continue
		}

		span := float64(ev.at - prevT)
		frac := 0.0
		if span > 0 {
			frac = math.Min(math.Max(float64(t-prevT)/span, 0), 1)
		}
		switch ev.kind {
		case linearRamp:
			return prevV + (ev.level-prevV)*frac
		case exponentialRamp:
			if prevV <= 0 || ev.level <= 0 {
				return prevV
			}
			return prevV * math.Pow(ev.level/prevV, frac)
		default:
			return prevV
		}
	}
	return prevV
}

// prune folds events that ended before t into the starting point.
func (e *envelope) prune(t time.Duration) {
	n := 0
	for n < len(e.events) && e.events[n].at <= t {
		n++
	}
	// keep the last past event as the ramp origin
	if n > 1 {
		last := e.events[n-1]
		e.initial, e.created = last.level, last.at
		e.events = append(e.events[:0], e.events[n:]...)
	}
}
