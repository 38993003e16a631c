package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/g0hal/rcc"
	"omibyte.io/g0hal/targets"
)

var (
	peripheralsOpts = struct {
		chip string
	}{}

	peripheralsCmd = &cobra.Command{
		Use:   "peripherals",
		Short: "List clock-gated peripherals",
		Long:  "List every clock-gated peripheral with its bus and bit position, optionally only those present on a chip.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *targets.TargetInfo
			if peripheralsOpts.chip != "" {
				t, err := targets.All().FindByChip(peripheralsOpts.chip)
				if err != nil {
					return fmt.Errorf("chip %s: %w", peripheralsOpts.chip, err)
				}
				target = &t
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBUS\tBIT\tRESET\tSLEEP\tTIMER")
			for _, p := range rcc.Peripherals() {
				if target != nil && !target.HasPeripheral(p.String()) {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", p, p.Bus(), p.Bit(), yesNo(p.HasReset()), yesNo(p.HasSleepMode()), yesNo(p.IsTimer()))
			}
			return w.Flush()
		},
	}
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func init() {
	peripheralsCmd.Flags().StringVar(&peripheralsOpts.chip, "chip", Environment()["G0HAL_CHIP"], "only peripherals present on this chip. Default: $G0HAL_CHIP")
}
