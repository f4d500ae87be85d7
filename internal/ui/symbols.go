package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Operation succeeded
	SymbolFail    = "✗" // Operation failed
	SymbolOnline  = "●" // Device reachable, VPN connected
	SymbolPending = "◐" // VPN connecting
	SymbolOffline = "○" // Device stale or failed, VPN down
)
