package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme contains the lipgloss styles used around the console screen buffer.
type Theme struct {
	// Header bar
	HUDTitle     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style

	// Status line
	Message lipgloss.Style
	Warning lipgloss.Style

	// Preset browser
	BrowserTitle lipgloss.Style
	BrowserEmpty lipgloss.Style
	BrowserFrame lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		Message: lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),

		BrowserTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).MarginBottom(1),
		BrowserEmpty: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4),
		BrowserFrame: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	}
}

// MonochromeTheme returns a grayscale theme for terminals without color.
func MonochromeTheme() Theme {
	theme := DefaultTheme()
	theme.HUDTitle = lipgloss.NewStyle().Bold(true)
	theme.Message = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	theme.Warning = lipgloss.NewStyle().Bold(true)
	theme.BrowserTitle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	return theme
}

// ThemeByName resolves "default" or "mono"; anything else is the default.
func ThemeByName(name string) Theme {
	if name == "mono" {
		return MonochromeTheme()
	}
	return DefaultTheme()
}
