// Package util holds small string helpers shared by the command builders
// and the CLI.
package util

import "strings"

// shellSafe lists the characters that never need quoting in a BusyBox sh
// argument.
const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789._-+/:="

// ShellQuote returns s as a single shell word. Plain words are returned as
// is; anything else is wrapped in single quotes with embedded quotes escaped.
func ShellQuote(s string) string {
	if s != "" && strings.Trim(s, shellSafe) == "" {
		return s
	}
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}
