package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors as ANSI codes so they follow the terminal palette.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Thresholds are the levels at which a metric turns yellow and red.
type Thresholds struct {
	Warning  float64
	Critical float64
}

var (
	// PercentThresholds color usage percentages such as memory.
	PercentThresholds = Thresholds{Warning: 60, Critical: 80}

	// TemperatureThresholds color sensor readings in °C. Broadcom radios
	// idle in the 50s and throttle in the high 80s.
	TemperatureThresholds = Thresholds{Warning: 70, Critical: 85}
)

// Color returns the severity color for v.
func (t Thresholds) Color(v float64) lipgloss.Color {
	switch {
	case v >= t.Critical:
		return ColorError
	case v >= t.Warning:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// SetColorMode applies the output.color setting. "never" strips styling,
// "always" forces ANSI colors even when stdout is not a terminal, and
// anything else leaves lipgloss to detect the terminal.
func SetColorMode(mode string) {
	switch mode {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
}
