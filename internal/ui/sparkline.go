package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the last width values of data scaled between their
// min and max, in the info color. Used for transfer rates, which have no
// natural ceiling.
func RenderSparkline(data []float64, width int) string {
	blocks := sparkline(data, width)
	if blocks == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(ColorInfo).Render(blocks)
}

// RenderThresholdSparkline draws like RenderSparkline but colors the line by
// the severity of the most recent value.
func RenderThresholdSparkline(data []float64, width int, t Thresholds) string {
	blocks := sparkline(data, width)
	if blocks == "" {
		return ""
	}
	color := t.Color(data[len(data)-1])
	return lipgloss.NewStyle().Foreground(color).Render(blocks)
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal

	for _, v := range data {
		var level int
		switch {
		case valueRange == 0 && v == 0:
			// An idle link stays on the floor.
			level = 0
		case valueRange == 0:
			level = numLevels / 2
		default:
			level = int((v - minVal) / valueRange * float64(numLevels-1))
			if level < 0 {
				level = 0
			} else if level >= numLevels {
				level = numLevels - 1
			}
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}
	return sb.String()
}
