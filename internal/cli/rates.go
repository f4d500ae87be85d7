package cli

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/asuswrt/internal/ui"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

var (
	ratesHuman  bool
	ratesTotal  bool
	ratesSample time.Duration
)

// ratesCmd shows WAN throughput
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show WAN transfer rates",
	Long: `Show the current WAN download and upload rates. The router counters are
sampled twice, --sample apart, and the difference is the rate.

With --total the cumulative bytes since the counters last reset are shown
instead.

Examples:
  asuswrt rates
  asuswrt rates --human --sample 5s
  asuswrt rates --total -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd, func(ctx context.Context, router *asuswrt.AsusWrt) error {
			if ratesTotal {
				total, err := router.GetTotalTransfer(ctx)
				if err != nil {
					return err
				}
				return renderTransfer(cmd, total, humanize.Bytes)
			}

			rates, err := sampleRates(ctx, router, ratesSample)
			if err != nil {
				return err
			}
			return renderTransfer(cmd, rates, asuswrt.HumanRate)
		})
	},
}

func init() {
	ratesCmd.Flags().BoolVarP(&ratesHuman, "human", "H", false, "print sizes like 1.2 MB/s")
	ratesCmd.Flags().BoolVar(&ratesTotal, "total", false, "show cumulative bytes instead of rates")
	ratesCmd.Flags().DurationVar(&ratesSample, "sample", time.Second, "time between the two counter samples")
}

// sampleRates primes the rate state, waits, then reads the rate over the
// window. The wait is stretched to the router's rate interval so the second
// read isn't served from the previous sample.
func sampleRates(ctx context.Context, router *asuswrt.AsusWrt, wait time.Duration) (asuswrt.TransferRates, error) {
	if _, err := router.GetCurrentTransferRates(ctx); err != nil {
		return asuswrt.TransferRates{}, err
	}
	if ri := router.Settings().RateInterval; ri > wait {
		wait = ri
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return asuswrt.TransferRates{}, ctx.Err()
	case <-timer.C:
	}
	return router.GetCurrentTransferRates(ctx)
}

func renderTransfer(cmd *cobra.Command, t asuswrt.TransferRates, human func(uint64) string) error {
	var data interface{} = t
	if ratesHuman {
		data = map[string]string{"rx": human(t.RX), "tx": human(t.TX)}
	}

	text := ui.RenderKeyValues([]string{"down", "up"}, map[string]string{
		"down": formatTransfer(t.RX, human),
		"up":   formatTransfer(t.TX, human),
	})
	return render(cmd.OutOrStdout(), data, writeString(text))
}

func formatTransfer(v uint64, human func(uint64) string) string {
	if ratesHuman {
		return human(v)
	}
	return humanize.Comma(int64(v))
}
