// Package opsgraph is the composition root for the opsgraph engine.
//
// It connects the core domain (nodes, edges, connector and store ports) with
// the infrastructure adapters (Neo4j, in-memory) using the Hexagonal
// Architecture pattern.
//
// Philosophy:
//
// Infrastructure knowledge already exists, scattered across declarative
// files: compose manifests, Kubernetes resources, team registries. opsgraph
// treats those files as the source of truth and continuously normalizes them
// into one queryable dependency and ownership graph. Nothing is declared
// twice; the graph is always derived.
//
// Features:
//
//   - **Connectors**: pluggable per-format normalizers (Compose, Kubernetes, Teams).
//   - **Idempotent ingestion**: re-running over unchanged sources changes nothing.
//   - **Queries**: lookups, transitive closures, shortest paths, ownership, blast radius.
//   - **Watching**: debounced re-ingestion on source file changes.
//   - **Extensible**: any store offering the core.GraphStore primitives plugs in.
//
// Usage:
//
//	store := memory.New()
//	svc := opsgraph.New(store, opsgraph.WithLogger(logger))
//
//	// Ingest a directory of source files
//	report, err := svc.Ingest(ctx, "./infra")
//
//	// Query the resulting graph
//	blast, err := svc.Query().BlastRadius(ctx, "database-orders-db")
package opsgraph
