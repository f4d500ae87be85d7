package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Progress bar block characters.
const (
	progressFilled = '█'
	progressEmpty  = '░'
)

// RenderUsageBar draws a usage bar for percent (clamped to 0-100) followed
// by the percentage, e.g. "████████░░░░  67%". The bar is colored with
// PercentThresholds.
func RenderUsageBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}

	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	filled := int((percent / 100.0) * float64(width))

	var sb strings.Builder
	sb.Grow(width * 3)
	sb.WriteString(strings.Repeat(string(progressFilled), filled))
	sb.WriteString(strings.Repeat(string(progressEmpty), width-filled))

	style := lipgloss.NewStyle().Foreground(PercentThresholds.Color(percent))
	return style.Render(sb.String()) + fmt.Sprintf(" %3.0f%%", percent)
}
