// Package cli implements the asuswrt command-line interface.
//
// Every command is a cobra.Command that resolves one router from the config
// file and the global connection flags, calls the matching accessor on
// pkg/asuswrt and renders the result.
//
// # Command Structure
//
//	asuswrt devices               - Connected devices
//	asuswrt rates                 - WAN transfer rates or totals
//	asuswrt temps                 - Temperature sensors
//	asuswrt load                  - Load average and memory
//	asuswrt interfaces            - Per-interface counters
//	asuswrt running <process>     - Process check
//	asuswrt nvram <group|key...>  - NVRAM values
//	asuswrt vpn [list|start|stop] - VPN clients
//	asuswrt hosts [list|add]      - Static DNS records
//	asuswrt watch                 - Live dashboard and NATS publishing
//	asuswrt init                  - Add a router to the config
//	asuswrt doctor                - Check the config and the router
//
// # Output
//
// --output selects table (the default), json or yaml. JSON output is wrapped
// in a JSONEnvelope, errors included, so scripts can branch on the error
// code. Logs always go to stderr through zerolog.
//
// # Router Selection
//
// --router picks a configured router; without it the config's default is
// used. --host, --user, --key, --port, --telnet and --ask-pass override the
// selected entry. --host alone talks to an unconfigured router with default
// settings.
package cli
