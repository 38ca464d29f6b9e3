package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opsgraph/opsgraph/pkg/query"
	"github.com/opsgraph/opsgraph/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over HTTP",
	Long: `Serve starts a read-only HTTP API over the graph store. Every query
operation is exposed as a JSON endpoint; nothing mutates the graph.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store, err := openStore(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(ctx)

		engine := query.New(store, query.WithLogger(slog.Default()))
		api := server.New(engine, server.WithLogger(slog.Default()))
		if err := api.Run(serveAddr); err != nil {
			fatal("serving", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
}
