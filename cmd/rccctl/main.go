// Command rccctl plans, simulates and inspects STM32G0 clock trees.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/g0hal/logging"
)

var (
	rootOpts = struct {
		logLevel  string
		logFormat string
	}{}

	rootCmd = &cobra.Command{
		Use:               "rccctl",
		Short:             "STM32G0 clock tree tool",
		Long:              "Plan, simulate and inspect STM32G0 clock configurations and peripheral bring-up.",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}
)

func init() {
	env := Environment()
	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log-level", env["G0HAL_LOG_LEVEL"], "log level (debug, info, warn, error). Default: $G0HAL_LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logFormat, "log-format", env["G0HAL_LOG_FORMAT"], "log format (text, json). Default: $G0HAL_LOG_FORMAT")

	rootCmd.AddCommand(freezeCmd, treeCmd, pllCmd, peripheralsCmd, envCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(rootOpts.logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", rootOpts.logLevel)
	}
	logging.SetLevel(level)

	switch strings.ToLower(rootOpts.logFormat) {
	case "text":
		logging.SetLogger(logging.New(cmd.ErrOrStderr(), logging.FormatText))
	case "json":
		logging.SetLogger(logging.New(cmd.ErrOrStderr(), logging.FormatJSON))
	default:
		return fmt.Errorf("invalid log format %q", rootOpts.logFormat)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
