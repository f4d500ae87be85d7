package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// usageBarWidth is the number of cells in the memory bar.
const usageBarWidth = 20

// loadCmd shows load and memory
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Show load average and memory use",
	Long: `Show the 1, 5 and 15 minute load averages and memory in use, excluding
buffers and page cache.

Examples:
  asuswrt load
  asuswrt load -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			load, err := router.GetLoadAverage(ctx)
			if err != nil {
				return err
			}
			mem, err := router.GetMemInfo(ctx)
			if err != nil {
				return err
			}

			data := systemStatus{Load: load, Memory: mem}
			return render(cmd.OutOrStdout(), data, writeString(renderSystemStatus(data)))
		})
	},
}

// interfacesCmd dumps /proc/net/dev
var interfacesCmd = &cobra.Command{
	Use:     "interfaces",
	Aliases: []string{"ifaces"},
	Short:   "Show traffic counters per interface",
	Long: `Show the byte, packet and error counters of every network interface.
Use it to find the names for wan_interface and vlan_interface.

Examples:
  asuswrt interfaces`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			counters, err := router.GetInterfacesCounters(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), counters, writeString(renderInterfaces(counters)))
		})
	},
}

// runningCmd checks a process on the router
var runningCmd = &cobra.Command{
	Use:   "running <process>",
	Short: "Check whether a process runs on the router",
	Long: `Check whether a process runs on the router. Exits non-zero when it
doesn't, so it can be used from scripts.

Examples:
  asuswrt running dnsmasq
  asuswrt running vpnclient1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			running, err := router.IsProcessRunning(ctx, name)
			if err != nil {
				return err
			}

			symbol, state := ui.SymbolSuccess, "is running"
			if !running {
				symbol, state = ui.SymbolFail, "is not running"
			}
			data := map[string]interface{}{"process": name, "running": running}
			if err := render(cmd.OutOrStdout(), data, writeString(fmt.Sprintf("%s %s %s\n", symbol, name, state))); err != nil {
				return err
			}
			if !running {
				return errNotRunning
			}
			return nil
		})
	},
}

// errNotRunning sets the exit status of `running` without printing anything.
var errNotRunning = &silentError{}

// silentError makes Execute exit non-zero without printing, for commands
// that already reported the problem.
type silentError struct{}

func (*silentError) Error() string { return "" }

type systemStatus struct {
	Load   asuswrt.LoadAverage `json:"load" yaml:"load"`
	Memory asuswrt.MemInfo     `json:"memory" yaml:"memory"`
}

func renderSystemStatus(s systemStatus) string {
	memPercent := 0.0
	if s.Memory.TotalKB > 0 {
		memPercent = float64(s.Memory.UsedKB()) / float64(s.Memory.TotalKB) * 100
	}

	keys := []string{"load", "memory", "used"}
	values := map[string]string{
		"load":   fmt.Sprintf("%.2f %.2f %.2f", s.Load[0], s.Load[1], s.Load[2]),
		"memory": ui.RenderUsageBar(memPercent, usageBarWidth),
		"used": fmt.Sprintf("%s of %s",
			humanize.IBytes(s.Memory.UsedKB()*1024),
			humanize.IBytes(s.Memory.TotalKB*1024)),
	}
	if s.Memory.SwapTotalKB > 0 {
		keys = append(keys, "swap")
		values["swap"] = fmt.Sprintf("%s free of %s",
			humanize.IBytes(s.Memory.SwapFreeKB*1024),
			humanize.IBytes(s.Memory.SwapTotalKB*1024))
	}
	return ui.RenderKeyValues(keys, values)
}

func renderInterfaces(counters map[string]asuswrt.InterfaceCounters) string {
	if len(counters) == 0 {
		return "No interfaces found\n"
	}

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := []ui.TableColumn{
		{Title: "IFACE"},
		{Title: "RX"},
		{Title: "TX"},
		{Title: "RX PKTS"},
		{Title: "TX PKTS"},
		{Title: "ERRS"},
		{Title: "DROP"},
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		c := counters[name]
		rows = append(rows, []string{
			name,
			humanize.Bytes(c.RxBytes),
			humanize.Bytes(c.TxBytes),
			humanize.Comma(int64(c.RxPackets)),
			humanize.Comma(int64(c.TxPackets)),
			humanize.Comma(int64(c.RxErrs + c.TxErrs)),
			humanize.Comma(int64(c.RxDrop + c.TxDrop)),
		})
	}
	return strings.TrimRight(ui.RenderSimpleTable(columns, rows), "\n") + "\n"
}
