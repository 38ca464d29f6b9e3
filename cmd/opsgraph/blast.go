package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var blastCmd = &cobra.Command{
	Use:   "blast [id]",
	Short: "Compute the blast radius of a node failure",
	Long: `Blast computes the impact set of a node going down: everything it
transitively depends on, everything that transitively depends on it, and the
teams owning any impacted node.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		engine, store, err := openEngine(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		blast, err := engine.BlastRadius(ctx, args[0])
		if err != nil {
			fatal("computing blast radius", err)
		}
		if blast == nil {
			fmt.Fprintf(os.Stderr, "node %q not found\n", args[0])
			os.Exit(1)
		}
		printJSON(blast)
	},
}

func init() {
	rootCmd.AddCommand(blastCmd)
}
