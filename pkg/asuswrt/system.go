package asuswrt

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/parsers"
)

// MemInfo is the router's memory usage in kB.
type MemInfo = parsers.MemInfo

// LoadAverage holds the 1, 5 and 15 minute load averages.
type LoadAverage [3]float64

// GetLoadAverage reads /proc/loadavg.
func (a *AsusWrt) GetLoadAverage(ctx context.Context) (LoadAverage, error) {
	lines, err := a.conn.RunCommand(ctx, commands.LoadAvg)
	if err != nil {
		return LoadAverage{}, err
	}
	load, err := parsers.ParseLoadAvg(lines)
	if err != nil {
		return LoadAverage{}, errors.WrapWithCode(err, errors.ErrParse, "Couldn't parse /proc/loadavg", "")
	}
	return LoadAverage(load), nil
}

// GetMemInfo reads /proc/meminfo.
func (a *AsusWrt) GetMemInfo(ctx context.Context) (MemInfo, error) {
	lines, err := a.conn.RunCommand(ctx, commands.MemInfo)
	if err != nil {
		return MemInfo{}, err
	}
	info, err := parsers.ParseMemInfo(lines)
	if err != nil {
		return MemInfo{}, errors.WrapWithCode(err, errors.ErrParse, "Couldn't parse /proc/meminfo", "")
	}
	return info, nil
}

// IsProcessRunning reports whether pidof finds a process called name.
func (a *AsusWrt) IsProcessRunning(ctx context.Context, name string) (bool, error) {
	lines, err := a.conn.RunCommand(ctx, commands.PidOf(name))
	if err != nil {
		return false, err
	}
	for _, field := range strings.Fields(strings.Join(lines, " ")) {
		if _, err := strconv.Atoi(field); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// GetDNSRecords returns the static host records from /etc/hosts keyed by IP.
func (a *AsusWrt) GetDNSRecords(ctx context.Context) (map[string][]string, error) {
	lines, err := a.conn.RunCommand(ctx, commands.Hosts)
	if err != nil {
		return nil, err
	}
	return parsers.ParseHosts(lines), nil
}

var hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9.-]{0,251}[A-Za-z0-9])?$`)

// AddDNSRecord appends "ip hostname" to /etc/hosts unless it is already there
// and makes dnsmasq reload the file. The record does not survive a reboot.
func (a *AsusWrt) AddDNSRecord(ctx context.Context, ip, hostname string) error {
	if net.ParseIP(ip) == nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not an IP address", ip), "")
	}
	if !hostnamePattern.MatchString(hostname) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid hostname", hostname),
			"Use letters, digits, dots and dashes only")
	}
	_, err := a.conn.RunCommand(ctx, commands.AddHost(ip, hostname))
	return err
}
