// Package parsers turns raw router command output into records. Every
// function is pure: unmatched lines are skipped and reported to the supplied
// logger, never returned as errors.
package parsers

import (
	"regexp"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/logger"
)

// Patterns for the line-oriented sources. Named groups become field names.
var (
	LeasesPattern = regexp.MustCompile(
		`\w+\s` +
			`(?P<mac>(([0-9a-fA-F]{2}[:-]){5}([0-9a-fA-F]{2})))\s` +
			`(?P<ip>([0-9]{1,3}[\.]){3}[0-9]{1,3})\s` +
			`(?P<host>([^\s]+))`)

	WLPattern = regexp.MustCompile(
		`\w+\s` +
			`(?P<mac>(([0-9A-F]{2}[:-]){5}([0-9A-F]{2})))`)

	NeighPattern = regexp.MustCompile(
		`(?P<ip>([0-9]{1,3}[\.]){3}[0-9]{1,3}|` +
			`([0-9a-fA-F]{1,4}:){1,7}[0-9a-fA-F]{0,4}(:[0-9a-fA-F]{1,4}){1,7})\s` +
			`\w+\s` +
			`\w+.+\s` +
			`(\w+\s(?P<mac>(([0-9a-fA-F]{2}[:-]){5}([0-9a-fA-F]{2}))))?\s` +
			`\s?(router)?` +
			`\s?(nud)?` +
			`(?P<status>(\w+))`)

	ARPPattern = regexp.MustCompile(
		`.+\s` +
			`\((?P<ip>([0-9]{1,3}[\.]){3}[0-9]{1,3})\)\s` +
			`.+\s` +
			`(?P<mac>(([0-9a-fA-F]{2}[:-]){5}([0-9a-fA-F]{2})))` +
			`.+\s` +
			`(?P<interface>([\w.-]+))`)

	VPNListPattern = regexp.MustCompile(
		`(?P<description>.+?)>` +
			`(?P<type>.+?)>` +
			`(?P<id>.+?)>` +
			`(?P<username>.*?)>` +
			`(?P<password>.*?)(?:<|$)`)
)

// Fields holds the named groups that took part in a match. Optional groups
// that did not match are absent rather than empty.
type Fields map[string]string

// ParseLines matches every non-blank line against re and returns one Fields
// per matching line, in input order.
func ParseLines(lines []string, re *regexp.Regexp, log logger.Logger) []Fields {
	if log == nil {
		log = logger.Noop()
	}
	names := re.SubexpNames()

	var rows []Fields
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			log.Debug("no match for line %q", line)
			continue
		}
		row := make(Fields)
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			row[name] = line[loc[2*i]:loc[2*i+1]]
		}
		rows = append(rows, row)
	}
	return rows
}

// NormalizeMAC returns mac in upper-case colon-separated form.
func NormalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(mac), "-", ":"))
}

// ARPRow is one resolved entry of `arp -n`.
type ARPRow struct {
	IP        string
	MAC       string
	Interface string
}

// NeighRow is one entry of `ip neigh`. MAC and IP may be empty.
type NeighRow struct {
	IP     string
	MAC    string
	Status string
}

// LeaseRow is one dnsmasq lease. Host is empty when the lease has no name.
type LeaseRow struct {
	MAC  string
	IP   string
	Host string
}

// ParseWL extracts associated client MACs from the wireless loop output.
func ParseWL(lines []string, log logger.Logger) []string {
	var macs []string
	for _, row := range ParseLines(lines, WLPattern, log) {
		macs = append(macs, NormalizeMAC(row["mac"]))
	}
	return macs
}

// ParseARP parses `arp -n` output. Incomplete entries have no MAC and are skipped.
func ParseARP(lines []string, log logger.Logger) []ARPRow {
	var rows []ARPRow
	for _, row := range ParseLines(lines, ARPPattern, log) {
		rows = append(rows, ARPRow{
			IP:        row["ip"],
			MAC:       NormalizeMAC(row["mac"]),
			Interface: row["interface"],
		})
	}
	return rows
}

// ParseNeigh parses `ip neigh` output.
func ParseNeigh(lines []string, log logger.Logger) []NeighRow {
	var rows []NeighRow
	for _, row := range ParseLines(lines, NeighPattern, log) {
		rows = append(rows, NeighRow{
			IP:     row["ip"],
			MAC:    NormalizeMAC(row["mac"]),
			Status: row["status"],
		})
	}
	return rows
}

// ParseLeases parses dnsmasq.leases lines of the form
// "<expiry> <mac> <ip> <host> <client-id>". DUID lines are ignored and the
// placeholder host "*" becomes empty.
func ParseLeases(lines []string, log logger.Logger) []LeaseRow {
	var kept []string
	for _, line := range lines {
		if strings.HasPrefix(line, "duid ") {
			continue
		}
		kept = append(kept, line)
	}

	var rows []LeaseRow
	for _, row := range ParseLines(kept, LeasesPattern, log) {
		host := row["host"]
		if host == "*" {
			host = ""
		}
		rows = append(rows, LeaseRow{
			MAC:  NormalizeMAC(row["mac"]),
			IP:   row["ip"],
			Host: host,
		})
	}
	return rows
}
