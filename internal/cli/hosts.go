package cli

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// hostsCmd groups the static DNS record commands
var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Read and add static DNS records",
	Long: `Read the router's /etc/hosts or add a record to it. dnsmasq reloads the
file after a record is added. Records added here are lost on reboot.

Examples:
  asuswrt hosts list
  asuswrt hosts add 192.168.1.20 nas.lan`,
}

var hostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List static DNS records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			records, err := router.GetDNSRecords(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), records, writeString(renderDNSRecords(records)))
		})
	},
}

var hostsAddCmd = &cobra.Command{
	Use:   "add <ip> <hostname>",
	Short: "Add a static DNS record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, hostname := args[0], args[1]
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			if err := router.AddDNSRecord(ctx, ip, hostname); err != nil {
				return err
			}
			result := map[string]string{"ip": ip, "hostname": hostname}
			msg := fmt.Sprintf("%s %s now resolves to %s\n", ui.SymbolSuccess, hostname, ip)
			return render(cmd.OutOrStdout(), result, writeString(msg))
		})
	},
}

func init() {
	hostsCmd.AddCommand(hostsListCmd, hostsAddCmd)
}

// renderDNSRecords renders one line per address, IPv4 before IPv6, each
// group in numeric order.
func renderDNSRecords(records map[string][]string) string {
	if len(records) == 0 {
		return "No static DNS records\n"
	}

	ips := make([]string, 0, len(records))
	for ip := range records {
		ips = append(ips, ip)
	}
	sort.Slice(ips, func(i, j int) bool {
		return compareIP(ips[i], ips[j]) < 0
	})

	columns := []ui.TableColumn{{Title: "IP"}, {Title: "NAMES"}}
	rows := make([][]string, 0, len(ips))
	for _, ip := range ips {
		rows = append(rows, []string{ip, strings.Join(records[ip], " ")})
	}
	return ui.RenderSimpleTable(columns, rows) + "\n"
}

func compareIP(a, b string) int {
	ipA, ipB := net.ParseIP(a), net.ParseIP(b)
	if ipA == nil || ipB == nil {
		return strings.Compare(a, b)
	}
	v4A, v4B := ipA.To4() != nil, ipB.To4() != nil
	if v4A != v4B {
		if v4A {
			return -1
		}
		return 1
	}
	return strings.Compare(string(ipA.To16()), string(ipB.To16()))
}
