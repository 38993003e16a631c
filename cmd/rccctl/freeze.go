package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"omibyte.io/g0hal/board"
	"omibyte.io/g0hal/logging"
	"omibyte.io/g0hal/poll"
	"omibyte.io/g0hal/rcc"
	"omibyte.io/g0hal/sim"
)

var errNoBoard = errors.New("no board file given (use --board or $G0HAL_BOARD)")

var (
	freezeOpts = struct {
		board     string
		trace     bool
		registers bool
		hse       bool
		lse       bool
		timeout   time.Duration
	}{}

	freezeCmd = &cobra.Command{
		Use:   "freeze",
		Short: "Bring up a board on the register simulator",
		Long: "Freeze the clock tree described by a board file on the register simulator, enable its " +
			"peripherals and print the resulting clocks. The register trace shows every store in order.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if freezeOpts.board == "" {
				return errNoBoard
			}
			f, err := board.Load(freezeOpts.board)
			if err != nil {
				return err
			}

			logging.Info(logging.ComponentSim, "simulating board", "board", f.Name, "hse", freezeOpts.hse, "lse", freezeOpts.lse)
			dev := sim.New(sim.Options{HSE: freezeOpts.hse, LSE: freezeOpts.lse})
			raw := rcc.New(dev, rcc.WithPoller(poll.Poller{Timeout: freezeOpts.timeout, Clock: poll.SystemClock}))

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*freezeOpts.timeout)
			defer cancel()
			handle, err := board.Bringup(ctx, raw, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "board:   %s (%s)\n", f.Name, f.Chip)
			fmt.Fprintf(out, "clocks:  %s\n", handle.Clocks())
			enabled, _ := f.Peripherals()
			names := make([]string, len(enabled))
			for i, p := range enabled {
				names[i] = p.String()
			}
			fmt.Fprintf(out, "enabled: %s\n", strings.Join(names, " "))
			fmt.Fprintf(out, "reset:   %s\n", handle.ResetReason())

			if freezeOpts.trace {
				fmt.Fprintln(out, "\ntrace:")
				for _, w := range dev.Writes() {
					fmt.Fprintf(out, "  %s\n", w)
				}
			}
			if freezeOpts.registers {
				fmt.Fprintln(out, "\nregisters:")
				for _, r := range dev.Registers() {
					fmt.Fprintf(out, "  %-11s %#08x = %#08x\n", r.Name, r.Addr, r.Value)
				}
			}
			return nil
		},
	}
)

func init() {
	env := Environment()
	freezeCmd.Flags().StringVarP(&freezeOpts.board, "board", "f", env["G0HAL_BOARD"], "board file. Default: $G0HAL_BOARD")
	freezeCmd.Flags().BoolVar(&freezeOpts.trace, "trace", false, "print the register write trace")
	freezeCmd.Flags().BoolVar(&freezeOpts.registers, "registers", false, "print the final register values")
	freezeCmd.Flags().BoolVar(&freezeOpts.hse, "hse", true, "simulate a fitted HSE crystal")
	freezeCmd.Flags().BoolVar(&freezeOpts.lse, "lse", true, "simulate a fitted LSE crystal")
	freezeCmd.Flags().DurationVar(&freezeOpts.timeout, "timeout", poll.DefaultTimeout, "timeout of each hardware wait")
}
