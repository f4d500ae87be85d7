package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// vpnCmd groups the VPN client commands
var vpnCmd = &cobra.Command{
	Use:   "vpn",
	Short: "List, start and stop VPN clients",
	Long: `Manage the router's OpenVPN clients.

Examples:
  asuswrt vpn list
  asuswrt vpn start 1
  asuswrt vpn stop 1`,
}

var vpnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured VPN clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			clients, err := router.GetVPNClients(ctx)
			if err != nil {
				return err
			}
			if clients == nil {
				clients = []asuswrt.VPNClient{}
			}
			return render(cmd.OutOrStdout(), clients, writeString(renderVPNClients(clients)))
		})
	},
}

var vpnStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a VPN client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return vpnAction(cmd, args[0], true)
	},
}

var vpnStopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Stop a VPN client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return vpnAction(cmd, args[0], false)
	},
}

func init() {
	vpnCmd.AddCommand(vpnListCmd, vpnStartCmd, vpnStopCmd)
}

func vpnAction(cmd *cobra.Command, arg string, start bool) error {
	id, err := ParseVPNID(arg)
	if err != nil {
		return err
	}

	return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
		action, verb := "stop", "stopped"
		if start {
			action, verb = "start", "started"
			err = router.StartVPNClient(ctx, id)
		} else {
			err = router.StopVPNClient(ctx, id)
		}
		if err != nil {
			return err
		}

		result := map[string]interface{}{"id": id, "action": action}
		msg := fmt.Sprintf("%s VPN client %d %s\n", ui.SymbolSuccess, id, verb)
		return render(cmd.OutOrStdout(), result, writeString(msg))
	})
}

func renderVPNClients(clients []asuswrt.VPNClient) string {
	if len(clients) == 0 {
		return "No VPN clients configured\n"
	}

	columns := []ui.TableColumn{
		{Title: " "},
		{Title: "ID"},
		{Title: "DESCRIPTION"},
		{Title: "TYPE"},
		{Title: "USER"},
		{Title: "STATE"},
	}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			vpnSymbol(c.State),
			strconv.Itoa(c.ID),
			orDash(c.Description),
			orDash(c.Type),
			orDash(c.Username),
			string(c.State),
		})
	}
	return ui.RenderSimpleTable(columns, rows) + "\n"
}

func vpnSymbol(state asuswrt.VPNState) string {
	switch state {
	case asuswrt.VPNOn:
		return ui.SymbolOnline
	case asuswrt.VPNStarting:
		return ui.SymbolPending
	default:
		return ui.SymbolOffline
	}
}
