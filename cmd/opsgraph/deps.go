package main

import (
	"context"

	"github.com/spf13/cobra"
)

var downstreamCmd = &cobra.Command{
	Use:   "downstream [id]",
	Short: "List everything a node transitively depends on",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		engine, store, err := openEngine(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		nodes, err := engine.Downstream(ctx, args[0])
		if err != nil {
			fatal("walking dependencies", err)
		}
		printJSON(nodes)
	},
}

var upstreamCmd = &cobra.Command{
	Use:   "upstream [id]",
	Short: "List everything that transitively depends on a node",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		engine, store, err := openEngine(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		nodes, err := engine.Upstream(ctx, args[0])
		if err != nil {
			fatal("walking dependents", err)
		}
		printJSON(nodes)
	},
}

func init() {
	rootCmd.AddCommand(downstreamCmd)
	rootCmd.AddCommand(upstreamCmd)
}
