package core

import "time"

// RuntimeConfig contains process-wide settings handed to every host
// (console, daemon, headless render). Generators read the seed from it so
// that a run can be reproduced exactly.
type RuntimeConfig struct {
	ScreenW    int   // Console width in characters
	ScreenH    int   // Console height in characters
	TickRate   int   // Host refresh rate in Hz (drives the scheduler)
	SampleRate int   // Audio sample rate in Hz
	Seed       int64 // RNG seed; 0 means derive from the clock
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:    80,
		ScreenH:    24,
		TickRate:   60,
		SampleRate: 44100,
		Seed:       0,
	}
}

// ResolvedSeed returns the configured seed, or a time-based one when unset.
func (c RuntimeConfig) ResolvedSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

// TickInterval returns the host refresh period.
func (c RuntimeConfig) TickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}
