package asuswrt

import (
	"context"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/parsers"
)

// deviceSource is one step of the device scan.
type deviceSource struct {
	name    string
	command string
	merge   func(s *deviceSet, lines []string)
}

func (a *AsusWrt) deviceSources() []deviceSource {
	sources := []deviceSource{
		{name: "wl", command: commands.WL, merge: a.mergeWL},
		{name: "arp", command: commands.ARP, merge: a.mergeARP},
		{name: "neigh", command: commands.IPNeigh, merge: a.mergeNeigh},
	}
	if a.settings.Mode != ModeAP {
		sources = append(sources, deviceSource{
			name: "leases", command: commands.Leases(a.settings.Dnsmasq), merge: a.mergeLeases,
		})
	}
	return append(sources, deviceSource{
		name: "clientlist", command: commands.ClientList, merge: a.mergeClientList,
	})
}

// GetConnectedDevices reads every device source in order and merges them by
// MAC. With reachableOnly, devices whose neighbour state is FAILED or STALE
// are dropped; Settings.RequireIP drops devices without an IP. Both filters
// apply together.
//
// It returns nil and no error when nothing is left after filtering, and a
// NO_DATA error when every source failed.
func (a *AsusWrt) GetConnectedDevices(ctx context.Context, reachableOnly bool) (map[string]Device, error) {
	set := newDeviceSet(a.log)
	sources := a.deviceSources()
	answered := 0
	var lastErr error

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lines, err := a.conn.RunCommand(ctx, src.command)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			if src.name == "wl" {
				a.log.Debug("wl: no wireless association list: %v", err)
			} else {
				a.log.Warn("%s: source unavailable: %v", src.name, err)
			}
			continue
		}

		answered++
		src.merge(set, lines)
	}

	if answered == 0 {
		return nil, errors.WrapWithCode(lastErr, errors.ErrNoData,
			"Router answered none of the device queries",
			"Check the connection settings; the router may be unreachable")
	}

	devices := set.result(reachableOnly, a.settings.RequireIP)
	if len(devices) == 0 {
		return nil, nil
	}
	return devices, nil
}

// mergeWL starts a bare device for every associated wireless client.
func (a *AsusWrt) mergeWL(s *deviceSet, lines []string) {
	for _, mac := range parsers.ParseWL(lines, a.log) {
		s.reset(mac)
	}
}

func (a *AsusWrt) mergeARP(s *deviceSet, lines []string) {
	for _, row := range parsers.ParseARP(lines, a.log) {
		d := s.ensure(row.MAC)
		s.setIP(d, row.IP, "arp")
		s.overwrite(d, &d.Interface.ID, "interface", row.Interface, "arp")
	}
}

// mergeNeigh records status verbatim. A row without an IP keeps the known one.
func (a *AsusWrt) mergeNeigh(s *deviceSet, lines []string) {
	for _, row := range parsers.ParseNeigh(lines, a.log) {
		if row.MAC == "" {
			continue
		}
		d := s.ensure(row.MAC)
		d.Status = row.Status
		s.setIP(d, row.IP, "neigh")
	}
}

// mergeLeases only enriches devices found by the earlier sources.
func (a *AsusWrt) mergeLeases(s *deviceSet, lines []string) {
	for _, row := range parsers.ParseLeases(lines, a.log) {
		d, ok := s.get(row.MAC)
		if !ok {
			continue
		}
		s.setIP(d, row.IP, "leases")
		s.overwrite(d, &d.Name, "name", row.Host, "leases")
	}
}

// mergeClientList applies clientlist.json. A corrupt file leaves the devices
// untouched.
func (a *AsusWrt) mergeClientList(s *deviceSet, lines []string) {
	data := strings.TrimSpace(strings.Join(lines, "\n"))
	if data == "" {
		return
	}
	entries, err := parsers.ParseClientList(data)
	if err != nil {
		a.log.Info("clientlist.json is corrupt: %v", err)
		return
	}
	for _, e := range entries {
		d := s.ensure(e.MAC)
		s.setIP(d, e.IP, "clientlist")
		d.RSSI = e.RSSI
		s.overwrite(d, &d.Interface.Name, "band", e.Band, "clientlist")
		s.overwrite(d, &d.Interface.MAC, "access point", e.APMAC, "clientlist")
	}
}
