package audio

import (
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/chaosynth/internal/voice"
)

func startVoice(t *testing.T, e *Engine, req voice.Request) (voice.Node, voice.Node) {
	t.Helper()
	v, ok := e.AcquireVoice(req)
	if !ok {
		t.Fatal("AcquireVoice() failed")
	}
	env, ok := e.AcquireEnvelope(v, 0)
	if !ok {
		t.Fatal("AcquireEnvelope() failed")
	}
	e.Connect(v, env)
	e.Connect(env, e.Master())
	return v, env
}

func peak(buf []float32) float64 {
	p := 0.0
	for _, s := range buf {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}

func TestClockAdvancesWithFrames(t *testing.T) {
	e := NewEngine(1000, 4, nil)
	e.Render(make([]float32, 2*250))
	if got := e.Now(); got != 250*time.Millisecond {
		t.Errorf("Now() = %v, expected 250ms", got)
	}
	e.Advance(time.Second)
	if got := e.Now(); got != 1250*time.Millisecond {
		t.Errorf("Now() after Advance = %v, expected 1.25s", got)
	}
}

func TestSilentUntilRouted(t *testing.T) {
	e := NewEngine(8000, 4, nil)
	v, ok := e.AcquireVoice(voice.Request{Waveform: voice.Square, Frequency: 440})
	if !ok {
		t.Fatal("AcquireVoice() failed")
	}
	env, _ := e.AcquireEnvelope(v, 1)
	e.Connect(v, env)

	buf := make([]float32, 200)
	e.Render(buf)
	if peak(buf) != 0 {
		t.Error("envelope not connected to master should be silent")
	}

	e.Connect(env, e.Master())
	e.Render(buf)
	if peak(buf) == 0 {
		t.Error("routed voice should be audible")
	}
}

func TestEnvelopeShape(t *testing.T) {
	en := &envelope{}
	en.schedule(automation{at: 0, level: 0, kind: setValue})
	en.schedule(automation{at: 100 * time.Millisecond, level: 1, kind: linearRamp})
	en.schedule(automation{at: time.Second, level: 0.001, kind: exponentialRamp})

	tests := []struct {
		at       time.Duration
		expected float64
	}{
		{0, 0},
		{50 * time.Millisecond, 0.5},
		{100 * time.Millisecond, 1},
		{550 * time.Millisecond, math.Pow(0.001, 0.5)},
		{time.Second, 0.001},
		{2 * time.Second, 0.001},
	}
	for _, tt := range tests {
		if got := en.levelAt(tt.at); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("levelAt(%v) = %v, expected %v", tt.at, got, tt.expected)
		}
	}

	en.prune(500 * time.Millisecond)
	if got := en.levelAt(550 * time.Millisecond); math.Abs(got-math.Pow(0.001, 0.5)) > 1e-9 {
		t.Errorf("levelAt() after prune = %v, expected unchanged curve", got)
	}
}

func TestStopAtSilences(t *testing.T) {
	e := NewEngine(1000, 4, nil)
	v, env := startVoice(t, e, voice.Request{Waveform: voice.Square, Frequency: 100})
	e.SetLevel(env, 0, 1)
	e.StopAt(v, 100*time.Millisecond)

	first := make([]float32, 2*100)
	e.Render(first)
	if peak(first) == 0 {
		t.Error("voice should sound before its stop time")
	}
	after := make([]float32, 2*100)
	e.Render(after)
	if peak(after) != 0 {
		t.Error("voice should be silent after its stop time")
	}
}

func TestVoiceLimit(t *testing.T) {
	e := NewEngine(1000, 2, nil)
	req := voice.Request{Waveform: voice.Sine, Frequency: 220}

	a, _ := e.AcquireVoice(req)
	e.AcquireVoice(req)
	if _, ok := e.AcquireVoice(req); ok {
		t.Error("AcquireVoice() beyond the limit should fail")
	}
	e.ReleaseVoice(a)
	if _, ok := e.AcquireVoice(req); !ok {
		t.Error("AcquireVoice() after release should succeed")
	}
	if _, ok := e.AcquireVoice(voice.Request{Frequency: 0}); ok {
		t.Error("AcquireVoice() with zero frequency should fail")
	}
}

func TestAcquireEnvelopeRequiresVoice(t *testing.T) {
	e := NewEngine(1000, 2, nil)
	if _, ok := e.AcquireEnvelope(999, 0); ok {
		t.Error("AcquireEnvelope() for an unknown voice should fail")
	}
}

func TestTapReturnsRecentMix(t *testing.T) {
	e := NewEngine(1000, 2, nil)
	_, env := startVoice(t, e, voice.Request{Waveform: voice.Square, Frequency: 10})
	e.SetLevel(env, 0, 1)
	e.Render(make([]float32, 2*50))

	dst := make([]float64, 50)
	if n := e.Tap(dst); n != 50 {
		t.Fatalf("Tap() = %d, expected 50", n)
	}
	// square at 10 Hz and 1 kHz: first 50 frames are the positive half
	for i, s := range dst {
		if s <= 0 {
			t.Fatalf("tap[%d] = %v, expected positive half-wave", i, s)
		}
	}
}

func TestPanGains(t *testing.T) {
	left := newOscillator(voice.Request{Frequency: 1, Pan: -1})
	if math.Abs(left.gainL-1) > 1e-12 || math.Abs(left.gainR) > 1e-12 {
		t.Errorf("hard left gains = (%v, %v), expected (1, 0)", left.gainL, left.gainR)
	}
	center := newOscillator(voice.Request{Frequency: 1})
	if math.Abs(center.gainL-center.gainR) > 1e-12 {
		t.Errorf("center gains = (%v, %v), expected equal", center.gainL, center.gainR)
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		w        voice.Waveform
		phase    float64
		expected float64
	}{
		{voice.Sine, 0.25, 1},
		{voice.Square, 0.75, -1},
		{voice.Sawtooth, 0, -1},
		{voice.Triangle, 0.5, -1},
		{voice.Triangle, 0, 1},
	}
	for _, tt := range tests {
		if got := shape(tt.w, tt.phase); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("shape(%v, %v) = %v, expected %v", tt.w, tt.phase, got, tt.expected)
		}
	}
}

func TestEncodeFloat32LE(t *testing.T) {
	e := NewEngine(1000, 2, nil)
	p := make([]byte, 4*8)
	encode(e, nil, p)
	for i, b := range p {
		if b != 0 {
			t.Fatalf("byte %d = %d, expected silence", i, b)
		}
	}
	if got := e.Now(); got != 4*time.Millisecond {
		t.Errorf("Now() after encoding 4 frames = %v, expected 4ms", got)
	}
}

func TestPacedOutputMovesClock(t *testing.T) {
	e := NewEngine(1000, 2, nil)
	out := NewPacedOutput(e, time.Millisecond)
	if err := out.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for e.Now() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if e.Now() == 0 {
		t.Error("paced output never advanced the clock")
	}
}
