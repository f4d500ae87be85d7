package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// TableStyles returns the header, cell and selection styles shared by every
// table in the CLI and the watch dashboard.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorMuted).
		Bold(false)
	return s
}

// Columns converts TableColumns to bubbles columns.
func Columns(columns []TableColumn) []table.Column {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return cols
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(Columns(columns)),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)
	t.SetStyles(TableStyles())
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
// Columns with a zero width are sized to their widest cell.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	columns = fitColumns(columns, rows)
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	styles := TableStyles()
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return t.View()
}

func fitColumns(columns []TableColumn, rows [][]string) []TableColumn {
	fitted := make([]TableColumn, len(columns))
	copy(fitted, columns)
	for i := range fitted {
		if fitted[i].Width > 0 {
			continue
		}
		w := lipgloss.Width(fitted[i].Title)
		for _, row := range rows {
			if i < len(row) && lipgloss.Width(row[i]) > w {
				w = lipgloss.Width(row[i])
			}
		}
		fitted[i].Width = w
	}
	return fitted
}

// RenderKeyValues renders "key  value" lines with the keys aligned, in the
// order given.
func RenderKeyValues(keys []string, values map[string]string) string {
	width := 0
	for _, k := range keys {
		if lipgloss.Width(k) > width {
			width = lipgloss.Width(k)
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(keyStyle.Render(padRight(k, width)))
		b.WriteString("  ")
		b.WriteString(values[k])
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
