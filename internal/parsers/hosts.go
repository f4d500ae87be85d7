package parsers

import "strings"

// ParseHosts parses /etc/hosts into hostnames keyed by IP. Comments and blank
// lines are skipped; repeated IPs accumulate names in file order.
func ParseHosts(lines []string) map[string][]string {
	records := make(map[string][]string)
	for _, line := range lines {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		ip := fields[0]
		for _, name := range fields[1:] {
			if !contains(records[ip], name) {
				records[ip] = append(records[ip], name)
			}
		}
	}
	return records
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
