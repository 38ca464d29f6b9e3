package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ownerCmd = &cobra.Command{
	Use:   "owner [id]",
	Short: "Show the team that owns a node",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		engine, store, err := openEngine(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		owner, err := engine.GetOwner(ctx, args[0])
		if err != nil {
			fatal("resolving owner", err)
		}
		if owner == nil {
			fmt.Fprintf(os.Stderr, "no owning team found for %q\n", args[0])
			os.Exit(1)
		}
		printJSON(owner)
	},
}

func init() {
	rootCmd.AddCommand(ownerCmd)
}
