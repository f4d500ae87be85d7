package monitor

import tea "github.com/charmbracelet/bubbletea"

// SortOrder defines how devices are sorted in the detail table.
type SortOrder int

const (
	SortByName SortOrder = iota
	SortByIP
	SortByMAC
	SortBySignal
	sortOrderCount
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByIP:
		return "IP"
	case SortByMAC:
		return "MAC"
	case SortBySignal:
		return "signal"
	default:
		return "name"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return (s + 1) % sortOrderCount
}

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyCycleSort   = "s"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and reports whether the key was
// handled. Unhandled keys in the detail view go to the device table.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		if m.collecting {
			return true, nil
		}
		m.collecting = true
		return true, m.collectCmd()

	case KeyCycleSort:
		m.sortOrder = m.sortOrder.Next()
		m.refreshDeviceTable()
		return true, nil

	case KeyCollapse:
		m.viewMode = ViewList
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewList && len(m.names) > 0 {
			m.viewMode = ViewDetail
			m.refreshDeviceTable()
		}
		return true, nil
	}

	// Navigation keys move the router selection in the list and the
	// table cursor in the detail view.
	if m.viewMode == ViewDetail {
		return false, nil
	}

	switch key {
	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.names)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if len(m.names) > 0 {
			m.selected = len(m.names) - 1
		}
		return true, nil
	}

	return false, nil
}
