// Package ui provides the terminal rendering used by the asuswrt CLI and the
// watch dashboard.
//
// Colors are ANSI codes so output follows the terminal palette:
//
//	ColorSuccess   (green)  - reachable devices, connected VPNs
//	ColorError     (red)    - failures, critical readings
//	ColorWarning   (yellow) - warnings, elevated readings
//	ColorInfo      (cyan)   - transfer rates
//	ColorMuted     (gray)   - secondary text
//
// Thresholds map a reading to one of those colors. PercentThresholds is
// used for memory usage and TemperatureThresholds for router sensors.
//
// Tables are Bubbles tables: RenderSimpleTable renders one as plain CLI
// output and TableStyles styles the interactive one in the dashboard.
// RenderSparkline and RenderUsageBar draw history and usage inline.
package ui
