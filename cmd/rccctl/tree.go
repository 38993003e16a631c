package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/g0hal/board"
	"omibyte.io/g0hal/clocktree"
	"omibyte.io/g0hal/rcc"
)

var (
	treeOpts = struct {
		board string
		dot   bool
		path  string
	}{}

	treeCmd = &cobra.Command{
		Use:   "tree",
		Short: "Show the clock tree of a configuration",
		Long: "Print the clock signals of a board file (or the reset configuration) in propagation order, " +
			"the chain feeding one signal, or the whole tree in Graphviz DOT format.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rcc.DefaultConfig()
			if treeOpts.board != "" {
				f, err := board.Load(treeOpts.board)
				if err != nil {
					return err
				}
				if cfg, err = f.Config(); err != nil {
					return err
				}
			}
			clocks, err := cfg.Plan()
			if err != nil {
				return err
			}
			tree, err := clocktree.Build(cfg, clocks)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if treeOpts.dot {
				b, err := tree.DOT()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}

			var nodes []*clocktree.Node
			if treeOpts.path != "" {
				nodes, err = tree.Path(treeOpts.path)
			} else {
				nodes, err = tree.Order()
			}
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			for _, n := range nodes {
				fmt.Fprintf(w, "%s\t%s\t%s\n", n.Name, n.Kind, n.Freq)
			}
			return w.Flush()
		},
	}
)

func init() {
	treeCmd.Flags().StringVarP(&treeOpts.board, "board", "f", Environment()["G0HAL_BOARD"], "board file. Default: $G0HAL_BOARD, else the reset configuration")
	treeCmd.Flags().BoolVar(&treeOpts.dot, "dot", false, "print Graphviz DOT")
	treeCmd.Flags().StringVar(&treeOpts.path, "path", "", "print only the chain feeding this signal")
}
