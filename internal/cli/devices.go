package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/internal/util"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

var devicesReachable bool

// devicesCmd lists the clients the router knows about
var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"clients"},
	Short:   "List connected devices",
	Long: `List the devices the router sees, merged from the wireless association
lists, the ARP and neighbour tables, the DHCP leases and clientlist.json.

Examples:
  asuswrt devices
  asuswrt devices --reachable
  asuswrt devices -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			devices, err := router.GetConnectedDevices(ctx, devicesReachable)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), devices, writeString(renderDevices(devices)))
		})
	},
}

func init() {
	devicesCmd.Flags().BoolVar(&devicesReachable, "reachable", false, "hide devices the router marks FAILED or STALE")
}

// renderDevices renders devices ordered by MAC.
func renderDevices(devices map[string]asuswrt.Device) string {
	if len(devices) == 0 {
		return "No devices found\n"
	}

	columns := []ui.TableColumn{
		{Title: " "},
		{Title: "MAC"},
		{Title: "IP"},
		{Title: "NAME"},
		{Title: "IFACE"},
		{Title: "BAND"},
		{Title: "RSSI"},
	}
	rows := make([][]string, 0, len(devices))
	for _, mac := range asuswrt.SortedMACs(devices) {
		d := devices[mac]
		rows = append(rows, []string{
			deviceSymbol(d),
			d.MAC,
			orDash(d.IP),
			orDash(d.Name),
			orDash(d.Interface.ID),
			orDash(d.Interface.Name),
			rssiText(d.RSSI),
		})
	}

	var b strings.Builder
	b.WriteString(ui.RenderSimpleTable(columns, rows))
	b.WriteString("\n")
	b.WriteString(util.Count(len(devices), "device", "devices") + "\n")
	return b.String()
}

func deviceSymbol(d asuswrt.Device) string {
	if d.Reachable() {
		return ui.SymbolOnline
	}
	return ui.SymbolOffline
}

func rssiText(rssi *int) string {
	if rssi == nil {
		return "-"
	}
	return strconv.Itoa(*rssi)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
