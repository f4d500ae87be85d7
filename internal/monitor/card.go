package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// Card layout constants
const (
	cardWidth      = 46 // inner width, excluding border and padding
	cardLabelWidth = 8
	cardGraphWidth = 16
)

var cardLabelStyle = LabelStyle.Width(cardLabelWidth)

// firstLine returns the headline of a structured error, without the ✗.
func firstLine(msg string) string {
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "✗"))
		if line != "" {
			return line
		}
	}
	return ""
}

// truncateWithEllipsis truncates a string to maxLen, adding ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// renderCard renders one router card.
func (m Model) renderCard(name string, selected bool) string {
	glyph, glyphStyle := m.status[name].Glyph()
	lines := []string{
		glyphStyle.Render(glyph) + " " + RouterNameStyle.Render(name) + " " + MutedStyle.Render(m.status[name].String()),
	}

	snap := m.snapshots[name]
	if snap != nil {
		lines = append(lines, MutedStyle.Render(snap.Router))
		lines = append(lines, m.renderCardMetrics(name, snap)...)
	}

	if errMsg, ok := m.errors[name]; ok {
		lines = append(lines, ErrorStyle.Render(truncateWithEllipsis(firstLine(errMsg), cardWidth)))
	} else if snap != nil && len(snap.Errors) > 0 {
		parts := make([]string, 0, len(snap.Errors))
		for part := range snap.Errors {
			parts = append(parts, part)
		}
		sort.Strings(parts)
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorWarning).
			Render(truncateWithEllipsis("unavailable: "+strings.Join(parts, ", "), cardWidth)))
	}

	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	return style.Width(cardWidth + 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCardMetrics(name string, snap *asuswrt.Snapshot) []string {
	var lines []string
	row := func(label, value string) {
		lines = append(lines, cardLabelStyle.Render(label)+value)
	}

	if _, failed := snap.Errors["rates"]; !failed {
		rx := m.history.Get(name, MetricRX, cardGraphWidth)
		tx := m.history.Get(name, MetricTX, cardGraphWidth)
		row("down", fmt.Sprintf("%-12s %s", asuswrt.HumanRate(snap.Rates.RX), ui.RenderSparkline(rx, cardGraphWidth)))
		row("up", fmt.Sprintf("%-12s %s", asuswrt.HumanRate(snap.Rates.TX), ui.RenderSparkline(tx, cardGraphWidth)))
	}

	if _, failed := snap.Errors["load"]; !failed {
		row("load", ValueStyle.Render(fmt.Sprintf("%.2f %.2f %.2f", snap.Load[0], snap.Load[1], snap.Load[2])))
	}

	if snap.Memory != nil && snap.Memory.TotalKB > 0 {
		pct := float64(snap.Memory.UsedKB()) / float64(snap.Memory.TotalKB) * 100
		row("memory", ui.RenderUsageBar(pct, cardGraphWidth))
	}

	for _, sensor := range sortedSensors(snap.Temperatures) {
		value := snap.Temperatures[sensor]
		color := ui.TemperatureThresholds.Color(value)
		readings := m.history.GetTemperature(name, sensor, cardGraphWidth)
		row(sensor, lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%-12s", fmt.Sprintf("%.1f°C", value)))+
			" "+ui.RenderThresholdSparkline(readings, cardGraphWidth, ui.TemperatureThresholds))
	}

	if _, failed := snap.Errors["devices"]; !failed {
		row("devices", ValueStyle.Render(fmt.Sprintf("%d", len(snap.Devices))))
	}
	return lines
}

func sortedSensors(temps map[string]float64) []string {
	sensors := make([]string, 0, len(temps))
	for s := range temps {
		sensors = append(sensors, s)
	}
	sort.Strings(sensors)
	return sensors
}
