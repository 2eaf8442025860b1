package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Palette used by the console panels.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// LevelColor picks a meter color for a normalized level: green when calm,
// yellow when busy, red near saturation.
func LevelColor(level float64) Color {
	switch {
	case level >= 0.85:
		return ColorBrightRed
	case level >= 0.6:
		return ColorYellow
	default:
		return ColorGreen
	}
}
