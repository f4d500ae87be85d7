package parsers

import (
	"strconv"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/logger"
)

// VPNEntry is one client of the vpnc_clientlist nvram value, which joins
// "description>type>id>username>password" records with '<'.
type VPNEntry struct {
	Description string
	Type        string
	ID          int
	Username    string
	Password    string
}

// ParseVPNList parses a vpnc_clientlist value. Entries with a non-numeric id
// are logged and skipped.
func ParseVPNList(value string, log logger.Logger) []VPNEntry {
	if log == nil {
		log = logger.Noop()
	}
	names := VPNListPattern.SubexpNames()

	var entries []VPNEntry
	for _, m := range VPNListPattern.FindAllStringSubmatch(strings.TrimSpace(value), -1) {
		row := make(Fields)
		for i, name := range names {
			if name != "" {
				row[name] = m[i]
			}
		}
		id, err := strconv.Atoi(strings.TrimSpace(row["id"]))
		if err != nil {
			log.Debug("skipping vpn entry with id %q", row["id"])
			continue
		}
		entries = append(entries, VPNEntry{
			Description: strings.TrimPrefix(row["description"], "<"),
			Type:        row["type"],
			ID:          id,
			Username:    row["username"],
			Password:    row["password"],
		})
	}
	return entries
}
