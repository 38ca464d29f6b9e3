package opsgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"

	"github.com/opsgraph/opsgraph/pkg/connectors"
	"github.com/opsgraph/opsgraph/pkg/core"
	"github.com/opsgraph/opsgraph/pkg/ingest"
	"github.com/opsgraph/opsgraph/pkg/query"
	"github.com/opsgraph/opsgraph/pkg/retry"
	"github.com/opsgraph/opsgraph/pkg/watch"
)

// Service is the composition root: it wires connectors, the ingestion
// pipeline, the graph store, and the query engine into one entry point.
type Service struct {
	store      core.GraphStore
	connectors []core.Connector
	pipeline   *ingest.Pipeline
	engine     *query.Engine
	logger     *slog.Logger
	policy     retry.Policy
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets the logger for the service and everything it wires.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConnectors replaces the default connector set. Order matters: the
// first connector claiming a document parses it.
func WithConnectors(cs []core.Connector) Option {
	return func(s *Service) {
		if len(cs) > 0 {
			s.connectors = cs
		}
	}
}

// WithRetryPolicy replaces the merge retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// New creates a Service over the given store.
func New(store core.GraphStore, opts ...Option) *Service {
	s := &Service{
		store:      store,
		connectors: connectors.Default(),
		logger:     slog.Default(),
		policy:     retry.Default,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pipeline = ingest.New(s.connectors, ingest.WithLogger(s.logger))
	s.engine = query.New(store, query.WithLogger(s.logger))
	return s
}

// Report summarizes one ingestion run end to end.
type Report struct {
	// Result is the per-file, per-document pipeline outcome.
	Result *ingest.Result
	// Stats is the edge merge summary from the store.
	Stats core.MergeStats
}

// Ingest runs the full pipeline over dir and merges the result into the
// store: nodes first, then edges, so edges never race their endpoints.
// Merges are retried per the service policy; after exhaustion the error
// wraps core.ErrStoreUnavailable.
func (s *Service) Ingest(ctx context.Context, dir string) (*Report, error) {
	result, err := s.pipeline.Run(ctx, dir)
	if err != nil {
		return nil, err
	}

	var stats core.MergeStats
	err = s.policy.Do(ctx, func() error {
		if err := s.store.MergeNodes(ctx, result.Nodes); err != nil {
			return err
		}
		st, err := s.store.MergeEdges(ctx, result.Edges)
		if err != nil {
			return err
		}
		stats = st
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: merge failed after %d attempts: %w",
			core.ErrStoreUnavailable, s.policy.Attempts, err)
	}

	s.logger.Info("ingestion complete",
		"dir", dir,
		"nodes", len(result.Nodes),
		"edges", stats.Merged,
		"dangling", stats.Dangling,
		"matched", result.Matched(),
		"skipped", result.Skipped(),
		"failed", result.Failed(),
	)

	return &Report{Result: result, Stats: stats}, nil
}

// Query exposes the read-side engine.
func (s *Service) Query() *query.Engine {
	return s.engine
}

// Watch creates and starts a watcher over dir that re-ingests on every
// source file change. The initial ingestion runs before Start returns.
// The caller owns the watcher and must Stop it.
func (s *Service) Watch(ctx context.Context, dir string, opts ...watch.Option) (*watch.Watcher, error) {
	onChange := func(ctx context.Context) error {
		_, err := s.Ingest(ctx, dir)
		return err
	}

	opts = append([]watch.Option{watch.WithLogger(s.logger)}, opts...)
	w := watch.New(dir, onChange, opts...)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Connectors []string `json:"connectors"`
	Attempts   int      `json:"merge_attempts"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	names := make([]string, 0, len(s.connectors))
	for _, c := range s.connectors {
		names = append(names, c.Name())
	}
	return ServiceState{Connectors: names, Attempts: s.policy.Attempts}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "graph-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
