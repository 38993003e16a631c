package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/g0hal/logging"
	"omibyte.io/g0hal/rcc"
	"omibyte.io/g0hal/units"
)

var (
	pllOpts = struct {
		source string
		input  string
		bypass bool
	}{}

	pllCmd = &cobra.Command{
		Use:   "pll",
		Short: "PLL helpers",
	}

	pllSolveCmd = &cobra.Command{
		Use:     "solve TARGET",
		Short:   "Find PLL dividers for an R output frequency",
		Example: "  rccctl pll solve 64MHz\n  rccctl pll solve --source hse --input 8MHz 56MHz",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := units.ParseHertz(args[0])
			if err != nil {
				return err
			}

			var src rcc.PLLSource
			switch strings.ToLower(pllOpts.source) {
			case "hsi", "hsi16":
				src = rcc.PLLSrcHSI()
			case "hse":
				in, err := units.ParseHertz(pllOpts.input)
				if err != nil {
					return fmt.Errorf("--input: %w", err)
				}
				if pllOpts.bypass {
					src = rcc.PLLSrcHSEBypass(in)
				} else {
					src = rcc.PLLSrcHSE(in)
				}
			default:
				return fmt.Errorf("unknown PLL source %q", pllOpts.source)
			}

			cfg, err := rcc.SolvePLL(src, target)
			if err != nil {
				return err
			}
			taps, err := cfg.Outputs()
			if err != nil {
				return err
			}

			logging.Debug(logging.ComponentPLL, "solved", "target", target, "config", cfg.String(), "vco", cfg.VCO())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pll:  %s\n", cfg)
			fmt.Fprintf(out, "vco:  %s\n", cfg.VCO())
			fmt.Fprintf(out, "pllr: %s\n", taps.R)
			if taps.R != target {
				fmt.Fprintf(out, "error: %s below target\n", target-taps.R)
			}
			return nil
		},
	}
)

func init() {
	pllSolveCmd.Flags().StringVar(&pllOpts.source, "source", "hsi", "PLL input (hsi, hse)")
	pllSolveCmd.Flags().StringVar(&pllOpts.input, "input", "8MHz", "HSE frequency")
	pllSolveCmd.Flags().BoolVar(&pllOpts.bypass, "bypass", false, "HSE driven by an external clock")
	pllCmd.AddCommand(pllSolveCmd)
}
