package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// tempsCmd reads the temperature sensors
var tempsCmd = &cobra.Command{
	Use:     "temps",
	Aliases: []string{"temperatures"},
	Short:   "Show CPU and radio temperatures",
	Long: `Show every temperature sensor the router exposes, in degrees Celsius.
Sensors the firmware doesn't report are left out.

Examples:
  asuswrt temps
  asuswrt temps -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			temps, err := router.GetTemperatures(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), temps, writeString(renderTemperatures(temps)))
		})
	},
}

// renderTemperatures renders one aligned line per sensor, colored against
// ui.TemperatureThresholds.
func renderTemperatures(temps map[string]float64) string {
	if len(temps) == 0 {
		return "No temperature sensors found\n"
	}

	sensors := make([]string, 0, len(temps))
	for sensor := range temps {
		sensors = append(sensors, sensor)
	}
	sort.Strings(sensors)

	values := make(map[string]string, len(temps))
	for _, sensor := range sensors {
		v := temps[sensor]
		style := lipgloss.NewStyle().Foreground(ui.TemperatureThresholds.Color(v))
		values[sensor] = style.Render(fmt.Sprintf("%.1f°C", v))
	}
	return ui.RenderKeyValues(sensors, values)
}
