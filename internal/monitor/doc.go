// Package monitor implements the `asuswrt watch` dashboard.
//
// The dashboard polls one or more routers on an interval and shows a card per
// router with WAN transfer rates, load, memory, temperatures and the number
// of connected devices. Enter opens the device table of the selected router.
//
// # Architecture
//
// The package uses Bubble Tea (Model-Update-View):
//
//   - Model: routers, their latest snapshots, selection and view mode
//   - Update: keystrokes, ticks and poll results
//   - View: renders the current state to a string
//
// # Key Components
//
//	Model     - The Bubble Tea model containing all dashboard state
//	Collector - Polls every router in parallel and hands snapshots to a Sink
//	History   - Ring buffers per router for sparklines
//
// # Message Flow
//
//  1. tickMsg fires at the configured interval
//  2. collectCmd() runs Collector.Collect in the background
//  3. resultsMsg arrives with one Result per router
//  4. View() re-renders with the new snapshots
package monitor
