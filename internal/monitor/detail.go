package monitor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/internal/util"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

var deviceColumns = []ui.TableColumn{
	{Title: "MAC", Width: 17},
	{Title: "IP", Width: 15},
	{Title: "NAME", Width: 22},
	{Title: "IFACE", Width: 7},
	{Title: "BAND", Width: 5},
	{Title: "RSSI", Width: 5},
	{Title: "STATUS", Width: 10},
}

// detailChrome is the height of the detail title, blank line, header and
// footer around the device table.
const detailChrome = 7

// sortDevices orders devices for the table. Ties fall back to MAC so the
// order is stable between polls.
func sortDevices(devices map[string]asuswrt.Device, order SortOrder) []asuswrt.Device {
	list := make([]asuswrt.Device, 0, len(devices))
	for _, mac := range asuswrt.SortedMACs(devices) {
		list = append(list, devices[mac])
	}

	less := func(a, b asuswrt.Device) bool {
		switch order {
		case SortByIP:
			return ipKey(a.IP) < ipKey(b.IP)
		case SortBySignal:
			// Strongest first; no reading sorts last.
			return rssiKey(a.RSSI) > rssiKey(b.RSSI)
		case SortByMAC:
			return false
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return less(list[i], list[j])
	})
	return list
}

// ipKey pads each IPv4 octet so addresses sort numerically; anything else
// sorts after IPv4 in plain string order.
func ipKey(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return "~" + ip
	}
	for i, p := range parts {
		if len(p) < 3 {
			parts[i] = strings.Repeat("0", 3-len(p)) + p
		}
	}
	return strings.Join(parts, ".")
}

func rssiKey(rssi *int) int {
	if rssi == nil {
		return -1 << 31
	}
	return *rssi
}

func deviceRows(devices []asuswrt.Device) []table.Row {
	rows := make([]table.Row, len(devices))
	for i, d := range devices {
		rssi := ""
		if d.RSSI != nil {
			rssi = strconv.Itoa(*d.RSSI)
		}
		status := d.Status
		if status == "" {
			status = "-"
		}
		rows[i] = table.Row{d.MAC, d.IP, d.Name, d.Interface.ID, d.Interface.Name, rssi, status}
	}
	return rows
}

// refreshDeviceTable loads the selected router's devices into the table.
func (m *Model) refreshDeviceTable() {
	snap := m.snapshots[m.SelectedRouter()]
	if snap == nil {
		m.devices.SetRows(nil)
		return
	}
	m.devices.SetRows(deviceRows(sortDevices(snap.Devices, m.sortOrder)))
	m.resizeDeviceTable()
}

func (m *Model) resizeDeviceTable() {
	h := m.height - detailChrome
	if h < 3 {
		h = 3
	}
	m.devices.SetHeight(h)
}

// renderDetail renders the device table of the selected router.
func (m Model) renderDetail() string {
	name := m.SelectedRouter()
	snap := m.snapshots[name]

	var b strings.Builder
	title := RouterNameStyle.Render(name)
	if snap == nil {
		b.WriteString(title + "\n\n")
		b.WriteString(MutedStyle.Render("No data yet"))
		return b.String()
	}

	b.WriteString(title)
	b.WriteString(LabelStyle.Render(fmt.Sprintf("  %s, sorted by %s", util.Count(len(snap.Devices), "device", "devices"), m.sortOrder)))
	if msg, ok := snap.Errors["devices"]; ok {
		b.WriteString("  " + ErrorStyle.Render(firstLine(msg)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.devices.View())
	return b.String()
}
