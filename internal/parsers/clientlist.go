package parsers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ClientListEntry is one client of /tmp/clientlist.json, flattened from the
// {ap mac: {band: {client mac: {ip, rssi}}}} layout.
type ClientListEntry struct {
	APMAC string
	Band  string
	MAC   string
	IP    string
	RSSI  *int
}

type clientListClient struct {
	IP   json.RawMessage `json:"ip"`
	RSSI json.RawMessage `json:"rssi"`
}

// ParseClientList decodes clientlist.json. Entries are ordered by AP, band and
// client MAC so merges are deterministic.
func ParseClientList(data string) ([]ClientListEntry, error) {
	var raw map[string]map[string]map[string]clientListClient
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("decode clientlist.json: %w", err)
	}

	var entries []ClientListEntry
	for _, apMAC := range sortedKeys(raw) {
		bands := raw[apMAC]
		for _, band := range sortedKeys(bands) {
			clients := bands[band]
			for _, mac := range sortedKeys(clients) {
				c := clients[mac]
				entries = append(entries, ClientListEntry{
					APMAC: NormalizeMAC(apMAC),
					Band:  band,
					MAC:   NormalizeMAC(mac),
					IP:    rawString(c.IP),
					RSSI:  rawInt(c.RSSI),
				})
			}
		}
	}
	return entries, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rawString returns a JSON string value, or "" for null, absent or non-string values.
func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// rawInt accepts both "-83" and -83. Empty, zero-length and invalid values are nil.
func rawInt(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	text := rawString(raw)
	if text == "" {
		text = strings.TrimSpace(string(raw))
	}
	if text == "" || text == "null" {
		return nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &v
}
