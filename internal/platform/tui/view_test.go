package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/chaosynth/internal/core"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/registry"
	"github.com/vovakirdan/chaosynth/internal/voice"
)

func TestDrawConsoleNarrowShowsFocusedPanel(t *testing.T) {
	e := newTestEngine(t)
	s := core.NewScreen(40, 30)

	drawConsole(s, frame{status: e.Status(), focus: registry.FamilyBio})
	out := s.String()
	if !strings.Contains(out, "BIO") {
		t.Error("narrow console missing focused BIO panel")
	}
	if strings.Contains(out, "CHAOS") {
		t.Error("narrow console should hide the unfocused panel")
	}
}

func TestDrawConsoleTooSmall(t *testing.T) {
	s := core.NewScreen(10, 4)
	drawConsole(s, frame{})
	if !strings.Contains(s.String(), "window too small") {
		t.Errorf("small screen = %q, expected notice", s.String())
	}
}

func TestFormatEvent(t *testing.T) {
	ev := orchestrator.Event{
		At:     1500 * time.Millisecond,
		Family: registry.FamilyChaos,
		Kind:   "lorenz",
		Requests: []voice.Request{
			{Waveform: voice.Sine, Frequency: 440},
			{Waveform: voice.Square, Frequency: 220},
		},
		Acquired: 1,
	}
	got := formatEvent(ev)
	for _, want := range []string{"1.50s", "chaos", "lorenz", "440.0Hz", "(1 skipped)"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent() = %q, missing %q", got, want)
		}
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		text     string
		n        int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 0, ""},
		{"héllo wörld", 5, "héll…"},
	}
	for _, tt := range tests {
		if got := clip(tt.text, tt.n); got != tt.expected {
			t.Errorf("clip(%q, %d) = %q, expected %q", tt.text, tt.n, got, tt.expected)
		}
	}
}
