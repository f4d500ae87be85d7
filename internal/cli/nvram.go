package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

var nvramKeys bool

// nvramCmd reads router settings
var nvramCmd = &cobra.Command{
	Use:   "nvram <group | key...>",
	Short: "Read NVRAM settings",
	Long: `Read NVRAM values. A single argument naming a known group reads every key
of that group; anything else is read as a list of keys. Keys without a
value are left out.

Groups: ` + strings.Join(commands.NVRAMGroupNames(), ", ") + `

Examples:
  asuswrt nvram WLAN
  asuswrt nvram model firmver buildno
  asuswrt nvram --keys dhcp_start`,
	Args: cobra.MinimumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return commands.NVRAMGroupNames(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			values, err := readNVRAM(ctx, router, args)
			if err != nil {
				return err
			}
			if values == nil {
				return errors.New(errors.ErrNoData,
					"The router returned no NVRAM output",
					"Check the user can run 'nvram show' on the router")
			}
			return render(cmd.OutOrStdout(), values, writeString(renderNVRAM(values)))
		})
	},
}

func init() {
	nvramCmd.Flags().BoolVar(&nvramKeys, "keys", false, "treat every argument as a key, even a group name")
}

func readNVRAM(ctx context.Context, router *asuswrt.AsusWrt, args []string) (map[string]string, error) {
	if len(args) == 1 && !nvramKeys {
		if _, ok := commands.NVRAMGroup(args[0]); ok {
			return router.GetNVRAM(ctx, args[0])
		}
	}
	return router.GetNVRAMKeys(ctx, args...)
}

func renderNVRAM(values map[string]string) string {
	if len(values) == 0 {
		return "No values set\n"
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return ui.RenderKeyValues(keys, values)
}
