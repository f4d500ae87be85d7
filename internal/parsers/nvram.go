package parsers

import (
	"regexp"
	"strings"
)

// ParseNVRAM extracts the requested keys from `nvram show` output. Keys that
// are missing or have an empty value are left out. The "size: N bytes"
// trailer is ignored.
func ParseNVRAM(lines []string, keys []string) map[string]string {
	patterns := make(map[string]*regexp.Regexp, len(keys))
	for _, key := range keys {
		patterns[key] = regexp.MustCompile("^" + regexp.QuoteMeta(key) + "=(.*)$")
	}

	result := make(map[string]string)
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "size:") {
			continue
		}
		for key, re := range patterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if value := strings.TrimSpace(m[1]); value != "" {
				result[key] = value
			}
		}
	}
	return result
}
