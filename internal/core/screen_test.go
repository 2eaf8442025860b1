package core

import (
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(10, 5)

	if s.Width() != 10 {
		t.Errorf("Width() = %d, expected 10", s.Width())
	}
	if s.Height() != 5 {
		t.Errorf("Height() = %d, expected 5", s.Height())
	}

	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			if s.Get(x, y) != ' ' {
				t.Errorf("Get(%d, %d) = %q, expected ' '", x, y, s.Get(x, y))
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 5)

	s.Set(3, 2, 'X')
	if s.Get(3, 2) != 'X' {
		t.Errorf("Get(3, 2) = %q, expected 'X'", s.Get(3, 2))
	}

	// Out of bounds should not panic
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' {
		t.Error("Get out of bounds should return space")
	}
}

func TestScreenSetColored(t *testing.T) {
	s := NewScreen(4, 1)
	s.SetColored(1, 0, '#', ColorCyan)

	cell := s.GetCell(1, 0)
	if cell.Rune != '#' || cell.Color != ColorCyan {
		t.Errorf("GetCell(1, 0) = %+v, expected {# Cyan}", cell)
	}
	if s.GetCell(9, 9).Rune != ' ' {
		t.Error("GetCell out of bounds should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(5, 5)
	s.SetColored(2, 2, 'X', ColorRed)
	s.Clear()

	if cell := s.GetCell(2, 2); cell.Rune != ' ' || cell.Color != ColorDefault {
		t.Errorf("after Clear(), GetCell(2, 2) = %+v, expected blank", cell)
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawText(2, 1, "Hello")

	expected := "Hello"
	for i, r := range expected {
		if s.Get(2+i, 1) != r {
			t.Errorf("Get(%d, 1) = %q, expected %q", 2+i, s.Get(2+i, 1), r)
		}
	}

	// Clipping
	s2 := NewScreen(5, 1)
	s2.DrawText(3, 0, "ABCDE")
	if s2.Row(0) != "   AB" {
		t.Errorf("clipped Row(0) = %q, expected %q", s2.Row(0), "   AB")
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawBox(1, 1, 5, 4, ColorDefault)

	corners := []struct {
		x, y int
		r    rune
	}{
		{1, 1, '┌'},
		{5, 1, '┐'},
		{1, 4, '└'},
		{5, 4, '┘'},
		{3, 1, '─'},
		{3, 4, '─'},
		{1, 2, '│'},
		{5, 3, '│'},
	}
	for _, c := range corners {
		if got := s.Get(c.x, c.y); got != c.r {
			t.Errorf("Get(%d, %d) = %q, expected %q", c.x, c.y, got, c.r)
		}
	}

	if s.Get(3, 2) != ' ' {
		t.Error("box interior should stay blank")
	}
}

func TestScreenDrawBar(t *testing.T) {
	tests := []struct {
		fraction float64
		expected string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{2, "████"},
		{-1, "░░░░"},
	}

	for _, tt := range tests {
		s := NewScreen(4, 1)
		s.DrawBar(0, 0, 4, tt.fraction, ColorGreen)
		if got := s.Row(0); got != tt.expected {
			t.Errorf("DrawBar(%v) = %q, expected %q", tt.fraction, got, tt.expected)
		}
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawHLine(0, 0, 5, 'A')
	s.DrawHLine(0, 1, 5, 'B')
	s.DrawHLine(0, 2, 5, 'C')

	expected := "AAAAA\nBBBBB\nCCCCC"
	if s.String() != expected {
		t.Errorf("String() = %q, expected %q", s.String(), expected)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 5)
	s.DrawText(0, 0, "Hello")

	s.Resize(20, 10)

	if s.Width() != 20 || s.Height() != 10 {
		t.Errorf("after Resize, dimensions = %dx%d, expected 20x10", s.Width(), s.Height())
	}
	if s.Row(0)[:5] != "Hello" {
		t.Errorf("Resize should preserve content, got %q", s.Row(0)[:5])
	}

	s.Resize(3, 1)
	if s.Row(0) != "Hel" {
		t.Errorf("shrinking Resize Row(0) = %q, expected %q", s.Row(0), "Hel")
	}
}

func TestScreenRowOutOfBounds(t *testing.T) {
	s := NewScreen(10, 5)
	if s.Row(-1) != "          " {
		t.Errorf("Row(-1) = %q, expected spaces", s.Row(-1))
	}
}

func TestLevelColor(t *testing.T) {
	tests := []struct {
		level    float64
		expected Color
	}{
		{0.1, ColorGreen},
		{0.7, ColorYellow},
		{0.9, ColorBrightRed},
	}
	for _, tt := range tests {
		if got := LevelColor(tt.level); got != tt.expected {
			t.Errorf("LevelColor(%v) = %v, expected %v", tt.level, got, tt.expected)
		}
	}
}

func TestActionString(t *testing.T) {
	if ActionMorph.String() != "Morph" {
		t.Errorf("ActionMorph.String() = %q, expected Morph", ActionMorph.String())
	}
	if Action(999).String() != "Unknown" {
		t.Error("unknown action should stringify as Unknown")
	}

	f := NewInputFrame()
	if !f.Empty() {
		t.Error("new frame should be empty")
	}
	f.Set(ActionToggle)
	if !f.Has(ActionToggle) || f.Has(ActionQuit) {
		t.Error("Has() reported wrong actions")
	}
	f.Clear()
	if !f.Empty() {
		t.Error("Clear() should empty the frame")
	}
}
