package asuswrt

import (
	"sort"

	"github.com/rileyhilliard/asuswrt/internal/logger"
)

// Neighbour states reported by `ip neigh` that the reachable filter drops.
const (
	StatusFailed = "FAILED"
	StatusStale  = "STALE"
)

// Interface identifies where a device is attached. ID is the router-side
// interface (e.g. br0), Name the band from clientlist.json and MAC the access
// point the client is associated with. Empty fields are unknown.
type Interface struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	MAC  string `json:"mac,omitempty" yaml:"mac,omitempty"`
}

// Device is one client seen by the router. MAC is upper case with colons and
// is the map key in GetConnectedDevices. Empty strings and a nil RSSI mean
// no source reported the value.
type Device struct {
	MAC       string    `json:"mac" yaml:"mac"`
	IP        string    `json:"ip,omitempty" yaml:"ip,omitempty"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Status    string    `json:"status,omitempty" yaml:"status,omitempty"`
	RSSI      *int      `json:"rssi,omitempty" yaml:"rssi,omitempty"`
	Interface Interface `json:"interface" yaml:"interface"`
}

// Reachable is false for devices the kernel has given up on.
func (d Device) Reachable() bool {
	return d.Status != StatusFailed && d.Status != StatusStale
}

// SortedMACs returns the keys of devices in order, for stable output.
func SortedMACs(devices map[string]Device) []string {
	macs := make([]string, 0, len(devices))
	for mac := range devices {
		macs = append(macs, mac)
	}
	sort.Strings(macs)
	return macs
}

// deviceSet accumulates devices across sources. Later sources overwrite
// earlier values; a conflicting name or interface is logged first.
type deviceSet struct {
	devices map[string]*Device
	log     logger.Logger
}

func newDeviceSet(log logger.Logger) *deviceSet {
	return &deviceSet{devices: make(map[string]*Device), log: log}
}

func (s *deviceSet) get(mac string) (*Device, bool) {
	d, ok := s.devices[mac]
	return d, ok
}

// ensure returns the device for mac, creating it when unseen.
func (s *deviceSet) ensure(mac string) *Device {
	if d, ok := s.devices[mac]; ok {
		return d
	}
	d := &Device{MAC: mac}
	s.devices[mac] = d
	return d
}

// reset replaces any device for mac with a bare one.
func (s *deviceSet) reset(mac string) {
	s.devices[mac] = &Device{MAC: mac}
}

func (s *deviceSet) setIP(d *Device, ip, source string) {
	if ip == "" {
		return
	}
	if d.IP != "" && d.IP != ip {
		s.log.Debug("%s: ip of %s changes from %s to %s", source, d.MAC, d.IP, ip)
	}
	d.IP = ip
}

// overwrite sets *field to value, warning when a different known value is replaced.
func (s *deviceSet) overwrite(d *Device, field *string, what, value, source string) {
	if value == "" {
		return
	}
	if *field != "" && *field != value {
		s.log.Warn("%s: %s of %s mismatch, %q replaces %q", source, what, d.MAC, value, *field)
	}
	*field = value
}

// result copies the accumulated devices through the filters.
func (s *deviceSet) result(reachableOnly, requireIP bool) map[string]Device {
	out := make(map[string]Device, len(s.devices))
	for mac, d := range s.devices {
		if reachableOnly && !d.Reachable() {
			continue
		}
		if requireIP && d.IP == "" {
			continue
		}
		out[mac] = *d
	}
	return out
}
