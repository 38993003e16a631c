package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Env map[string]string

// Environment returns the settings rccctl reads from the process
// environment, with their defaults applied.
func Environment() Env {
	return Env{
		"G0HAL_LOG_LEVEL":  getenv("G0HAL_LOG_LEVEL", "warn"),
		"G0HAL_LOG_FORMAT": getenv("G0HAL_LOG_FORMAT", "text"),
		"G0HAL_BOARD":      getenv("G0HAL_BOARD", ""),
		"G0HAL_CHIP":       getenv("G0HAL_CHIP", ""),
	}
}

func (e Env) Value(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return ""
}

// List returns KEY=value pairs sorted by key.
func (e Env) List() []string {
	keys := maps.Keys(e)
	slices.Sort(keys)
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		result = append(result, fmt.Sprintf("%s=%s", key, e[key]))
	}
	return result
}

func getenv(key, _default string) (value string) {
	value = os.Getenv(key)
	if len(value) == 0 {
		value = _default
	}
	return value
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print rccctl environment information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, line := range Environment().List() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	},
}
