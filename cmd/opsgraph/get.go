package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a node by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		engine, store, err := openEngine(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		node, err := engine.GetNode(ctx, args[0])
		if err != nil {
			fatal("getting node", err)
		}
		if node == nil {
			fmt.Fprintf(os.Stderr, "node %q not found\n", args[0])
			os.Exit(1)
		}
		printJSON(node)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
