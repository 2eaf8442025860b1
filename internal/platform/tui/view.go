package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/chaosynth/internal/core"
	"github.com/vovakirdan/chaosynth/internal/engine"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/registry"
)

// Console layout constants
const (
	panelHeight   = 9
	meterHeight   = 6
	minWideWidth  = 64 // Below this only the focused panel is drawn
	labelWidth    = 9
	barValueWidth = 6
)

// frame is everything drawConsole needs for one refresh.
type frame struct {
	status  engine.Status
	focus   registry.Family
	bands   []float64
	history []orchestrator.Event
}

// drawConsole renders a frame onto s.
func drawConsole(s *core.Screen, f frame) {
	s.Clear()
	w, h := s.Width(), s.Height()
	if w < 20 || h < panelHeight {
		s.DrawText(0, 0, "window too small")
		return
	}

	if w >= minWideWidth {
		half := w / 2
		drawPanel(s, 0, 0, half, f.status.Chaos, f.focus == registry.FamilyChaos)
		drawPanel(s, half, 0, w-half, f.status.Bio, f.focus == registry.FamilyBio)
	} else {
		st := f.status.Chaos
		if f.focus == registry.FamilyBio {
			st = f.status.Bio
		}
		drawPanel(s, 0, 0, w, st, true)
	}

	y := panelHeight
	if h-y >= meterHeight {
		half := w / 2
		drawPool(s, 0, y, half, f.status)
		drawSpectrum(s, half, y, w-half, f.bands)
		y += meterHeight
	}
	if h-y >= 3 {
		drawEvents(s, 0, y, w, h-y, f.history)
	}
}

// drawTitle writes a label into a box's top border.
func drawTitle(s *core.Screen, x, y int, title string, c core.Color) {
	s.DrawTextColored(x+2, y, " "+title+" ", c)
}

func drawPanel(s *core.Screen, x, y, w int, st orchestrator.Status, focused bool) {
	border := core.ColorGray
	titleColor := core.ColorWhite
	if focused {
		border = core.ColorBrightCyan
		titleColor = core.ColorBrightCyan
	}
	s.DrawBox(x, y, w, panelHeight, border)

	family := "CHAOS"
	if st.Family == registry.FamilyBio {
		family = "BIO"
	}
	drawTitle(s, x, y, family, titleColor)

	cx, inner := x+2, w-4
	kind := st.Settings.Kind
	if info, err := registry.Lookup(st.Family, kind); err == nil {
		kind = info.Title
	}
	ids := registry.IDs(st.Family)
	pos := 0
	for i, id := range ids {
		if id == st.Settings.Kind {
			pos = i + 1
		}
	}
	s.DrawTextColored(cx, y+1, clip(fmt.Sprintf("%-*s%s (%d/%d)", labelWidth, "kind", kind, pos, len(ids)), inner), core.ColorBrightWhite)

	stateColor := core.ColorGray
	if st.State == orchestrator.Running.String() {
		stateColor = core.ColorBrightGreen
	}
	s.DrawTextColored(cx, y+2, clip(fmt.Sprintf("%-*s%-8s every %s", labelWidth, "state", st.State, st.Interval.Round(time.Millisecond)), inner), stateColor)

	speedLo, speedHi, _ := orchestrator.ParameterRange(st.Family, orchestrator.ParamSpeed)
	drawMeter(s, cx, y+3, inner, "density", st.Settings.Density, st.Settings.Density)
	drawMeter(s, cx, y+4, inner, "speed", (st.Settings.Speed-speedLo)/(speedHi-speedLo), st.Settings.Speed)
	drawMeter(s, cx, y+5, inner, "volume", st.Settings.Volume, st.Settings.Volume)

	quant := "off"
	if st.Settings.Quantize {
		quant = "on"
	}
	s.DrawText(cx, y+6, clip(fmt.Sprintf("%-*s%s @ %.0fHz  quantize %s", labelWidth, "scale", st.Settings.Scale, st.Settings.Root, quant), inner))

	stats := st.Stats
	line := fmt.Sprintf("ticks %d  trig %d  voices %d/%d  skip %d", stats.Ticks, stats.Triggers, st.Owned, stats.Voices, stats.Skipped)
	if st.Family == registry.FamilyBio && stats.Evolution > 0 {
		line += fmt.Sprintf("  gen %d", stats.Evolution)
	}
	s.DrawTextColored(cx, y+7, clip(line, inner), core.ColorGray)
}

// drawMeter draws "label [bar] value" on one row.
func drawMeter(s *core.Screen, x, y, width int, label string, fraction, value float64) {
	barWidth := width - labelWidth - barValueWidth
	if barWidth < 4 {
		s.DrawText(x, y, clip(fmt.Sprintf("%-*s%.2f", labelWidth, label, value), width))
		return
	}
	s.DrawText(x, y, label)
	s.DrawBar(x+labelWidth, y, barWidth, fraction, core.LevelColor(fraction))
	s.DrawText(x+labelWidth+barWidth+1, y, fmt.Sprintf("%.2f", value))
}

func drawPool(s *core.Screen, x, y, w int, st engine.Status) {
	s.DrawBox(x, y, w, meterHeight, core.ColorGray)
	drawTitle(s, x, y, fmt.Sprintf("VOICES %d", st.ActiveVoices), core.ColorWhite)

	inner := w - 4
	for i, u := range st.Pool {
		if i >= meterHeight-2 {
			break
		}
		row := y + 1 + i
		label := fmt.Sprintf("%-*s", labelWidth, u.Kind.String())
		count := fmt.Sprintf(" %d/%d", u.Active, u.Capacity)
		barWidth := inner - labelWidth - len(count)
		s.DrawText(x+2, row, label)
		if barWidth >= 4 {
			frac := 0.0
			if u.Capacity > 0 {
				frac = float64(u.Active) / float64(u.Capacity)
			}
			s.DrawBar(x+2+labelWidth, row, barWidth, frac, core.LevelColor(frac))
			s.DrawText(x+2+labelWidth+barWidth, row, count)
		} else {
			s.DrawText(x+2+labelWidth, row, clip(count, inner-labelWidth))
		}
	}
}

// drawSpectrum draws one vertical bar per band.
func drawSpectrum(s *core.Screen, x, y, w int, bands []float64) {
	s.DrawBox(x, y, w, meterHeight, core.ColorGray)
	drawTitle(s, x, y, "SPECTRUM", core.ColorWhite)

	rows := meterHeight - 2
	for i, level := range bands {
		if i >= w-4 {
			break
		}
		filled := core.Clamp(int(math.Round(level*float64(rows))), 0, rows)
		for r := 0; r < filled; r++ {
			s.SetColored(x+2+i, y+rows-r, '█', core.LevelColor(level))
		}
	}
}

// drawEvents lists the newest trigger events first.
func drawEvents(s *core.Screen, x, y, w, h int, history []orchestrator.Event) {
	s.DrawBox(x, y, w, h, core.ColorGray)
	drawTitle(s, x, y, "EVENTS", core.ColorWhite)

	rows := h - 2
	for i := 0; i < rows && i < len(history); i++ {
		ev := history[len(history)-1-i]
		color := core.ColorMagenta
		if ev.Family == registry.FamilyBio {
			color = core.ColorGreen
		}
		s.DrawTextColored(x+2, y+1+i, clip(formatEvent(ev), w-4), color)
	}
}

// formatEvent renders one event as a single log line.
func formatEvent(ev orchestrator.Event) string {
	line := fmt.Sprintf("%8.2fs %-5s %-10s", ev.At.Seconds(), ev.Family, ev.Kind)
	for _, req := range ev.Requests {
		line += fmt.Sprintf(" %s %.1fHz", req.Waveform, req.Frequency)
	}
	if skipped := len(ev.Requests) - ev.Acquired; skipped > 0 {
		line += fmt.Sprintf(" (%d skipped)", skipped)
	}
	return line
}

// clip truncates text to at most n runes.
func clip(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
