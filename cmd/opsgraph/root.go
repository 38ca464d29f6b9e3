package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsgraph/opsgraph/pkg/adapters/neo4j"
	"github.com/opsgraph/opsgraph/pkg/query"
)

var (
	verbose  bool
	storeURI string
	user     string
	password string
	database string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "opsgraph",
	Short: "A dependency and ownership graph engine for infrastructure sources",
	Long: `opsgraph normalizes declarative infrastructure files (compose manifests,
Kubernetes resources, team registries) into a queryable graph of services,
datastores, and the teams that own them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeURI, "uri", envOr("NEO4J_URI", "bolt://localhost:7687"), "Neo4j connection URI")
	rootCmd.PersistentFlags().StringVar(&user, "user", envOr("NEO4J_USER", "neo4j"), "Neo4j username")
	rootCmd.PersistentFlags().StringVar(&password, "password", envOr("NEO4J_PASSWORD", ""), "Neo4j password")
	rootCmd.PersistentFlags().StringVar(&database, "database", envOr("NEO4J_DATABASE", ""), "Neo4j database name")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openStore connects to the configured Neo4j instance and verifies it is
// reachable before any command touches it.
func openStore(ctx context.Context) (*neo4j.Store, error) {
	store, err := neo4j.New(neo4j.Config{
		URI:      storeURI,
		Username: user,
		Password: password,
		Database: database,
		Logger:   slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		store.Close(ctx)
		return nil, err
	}
	return store, nil
}

// openEngine is the read-side variant of openStore.
func openEngine(ctx context.Context) (*query.Engine, *neo4j.Store, error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return query.New(store, query.WithLogger(slog.Default())), store, nil
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fatal("encoding JSON", err)
	}
}
