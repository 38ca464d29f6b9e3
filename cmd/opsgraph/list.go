package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsgraph/opsgraph/pkg/core"
)

var listFilters []string

var listCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List nodes of a type",
	Long: `List all nodes of the given type (service, database, cache, team,
k8s-deployment, k8s-service), optionally narrowed by exact-match property
filters such as --filter image=postgres:16.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		filters := make(map[string]any, len(listFilters))
		for _, f := range listFilters {
			key, value, ok := strings.Cut(f, "=")
			if !ok {
				fmt.Fprintf(os.Stderr, "invalid filter %q, expected key=value\n", f)
				os.Exit(1)
			}
			filters[key] = value
		}

		engine, store, err := openEngine(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		nodes, err := engine.ListNodes(ctx, core.NodeType(args[0]), filters)
		if err != nil {
			fatal("listing nodes", err)
		}
		printJSON(nodes)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "Exact-match property filter (key=value), repeatable")
}
