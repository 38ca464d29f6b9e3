package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path [from] [to]",
	Short: "Find a shortest dependency path between two nodes",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		engine, store, err := openEngine(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		path, err := engine.Path(ctx, args[0], args[1])
		if err != nil {
			fatal("finding path", err)
		}
		if path == nil {
			fmt.Fprintf(os.Stderr, "no dependency path from %q to %q\n", args[0], args[1])
			os.Exit(1)
		}
		printJSON(path)
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
