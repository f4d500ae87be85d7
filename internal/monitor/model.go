package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// tickMsg is sent when it is time to poll again.
type tickMsg time.Time

// resultsMsg carries one poll of every router.
type resultsMsg struct {
	results []Result
	time    time.Time
}

// Model is the Bubble Tea model for the watch dashboard.
type Model struct {
	collector *Collector
	interval  time.Duration
	history   *History
	now       func() time.Time

	names     []string
	snapshots map[string]*asuswrt.Snapshot
	status    map[string]RouterStatus
	errors    map[string]string

	selected   int
	viewMode   ViewMode
	sortOrder  SortOrder
	showHelp   bool
	collecting bool
	quitting   bool
	lastUpdate time.Time

	devices table.Model

	width  int
	height int
}

// NewModel creates a dashboard for the routers of collector, polling every
// interval and keeping historySize samples per metric.
func NewModel(collector *Collector, interval time.Duration, historySize int) Model {
	names := collector.Names()
	status := make(map[string]RouterStatus, len(names))
	for _, name := range names {
		status[name] = StatusConnecting
	}

	devices := table.New(
		table.WithColumns(ui.Columns(deviceColumns)),
		table.WithFocused(true),
	)
	devices.SetStyles(ui.TableStyles())

	return Model{
		collector: collector,
		interval:  interval,
		history:   NewHistory(historySize),
		now:       time.Now,
		names:     names,
		snapshots: make(map[string]*asuswrt.Snapshot),
		status:    status,
		errors:    make(map[string]string),
		devices:   devices,
		width:     80,
		height:    24,
	}
}

// Init starts the tick timer and triggers an initial poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.collectCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		if m.viewMode == ViewDetail {
			var cmd tea.Cmd
			m.devices, cmd = m.devices.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDeviceTable()

	case tickMsg:
		if m.collecting {
			return m, m.tickCmd()
		}
		m.collecting = true
		return m, tea.Batch(m.tickCmd(), m.collectCmd())

	case resultsMsg:
		m.collecting = false
		m.lastUpdate = msg.time
		m.applyResults(msg.results)
		m.refreshDeviceTable()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) collectCmd() tea.Cmd {
	collector := m.collector
	now := m.now
	return func() tea.Msg {
		results := collector.Collect(context.Background())
		return resultsMsg{results: results, time: now()}
	}
}

// applyResults stores each router's snapshot and status. A router that
// failed keeps its previous snapshot so the cards stay populated.
func (m *Model) applyResults(results []Result) {
	for _, r := range results {
		if r.Err != nil {
			m.status[r.Name] = StatusOffline
			m.errors[r.Name] = r.Err.Error()
			continue
		}

		m.snapshots[r.Name] = r.Snapshot
		m.history.Push(r.Name, r.Snapshot)
		delete(m.errors, r.Name)

		if len(r.Snapshot.Errors) > 0 {
			m.status[r.Name] = StatusDegraded
		} else {
			m.status[r.Name] = StatusOnline
		}
	}
}

// SelectedRouter returns the name of the highlighted router, or "".
func (m Model) SelectedRouter() string {
	if m.selected < 0 || m.selected >= len(m.names) {
		return ""
	}
	return m.names[m.selected]
}

// OnlineCount returns the number of routers whose last poll succeeded.
func (m Model) OnlineCount() int {
	count := 0
	for _, s := range m.status {
		if s == StatusOnline || s == StatusDegraded {
			count++
		}
	}
	return count
}

// SecondsSinceUpdate returns whole seconds since the last poll completed.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.lastUpdate).Seconds())
}
