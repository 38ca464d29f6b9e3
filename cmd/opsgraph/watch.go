package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsgraph/opsgraph"
	"github.com/opsgraph/opsgraph/pkg/watch"
)

var cooldown time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and re-ingest on every source change",
	Long: `Watch performs an initial ingestion of the directory, then keeps the
graph in sync: every create, modify, delete, or rename of a source file
triggers a debounced full re-ingestion. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			fatal("connecting to graph store", err)
		}
		defer store.Close(context.Background())

		svc := opsgraph.New(store, opsgraph.WithLogger(slog.Default()))
		w, err := svc.Watch(ctx, args[0], watch.WithCooldown(cooldown))
		if err != nil {
			fatal("starting watcher", err)
		}

		fmt.Printf("watching %s (cooldown %s), press Ctrl+C to stop\n", args[0], cooldown)
		<-ctx.Done()

		if err := w.Stop(context.Background()); err != nil {
			fatal("stopping watcher", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&cooldown, "cooldown", watch.DefaultCooldown, "Quiet period before a change triggers re-ingestion")
}
