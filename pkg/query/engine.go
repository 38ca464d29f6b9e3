// Package query implements the read-only traversal operations over the
// persisted graph: lookup, typed listing, transitive dependency closures,
// shortest paths, ownership, and blast-radius aggregation.
//
// The engine is side-effect free and holds no state between calls; every
// operation re-reads the backing store. Absence is always a nil result,
// never an error.
package query

import (
	"context"
	"log/slog"

	"github.com/opsgraph/opsgraph/pkg/core"
)

// Engine answers queries against a core.GraphStore.
// It is safe for concurrent use; all mutual exclusion is delegated to the
// backing store.
type Engine struct {
	store  core.GraphStore
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine over the given store.
func New(store core.GraphStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path is a single shortest directed dependency path.
type Path struct {
	// Nodes are the node ids along the path, endpoints included.
	Nodes []string `json:"nodes"`
	// Relationships are the edge types between consecutive nodes.
	Relationships []core.EdgeType `json:"relationships"`
}

// BlastRadius is the combined impact set of a node failure.
type BlastRadius struct {
	// Node is the failing node itself.
	Node core.Node `json:"node"`
	// Downstream are the resources the node transitively depends on.
	Downstream []core.Node `json:"downstream"`
	// Upstream are the resources that transitively depend on the node.
	Upstream []core.Node `json:"upstream"`
	// Teams are the deduplicated owners of every impacted node.
	Teams []core.Node `json:"teams"`
}

// GetNode retrieves a node by id; nil when absent.
func (e *Engine) GetNode(ctx context.Context, id string) (*core.Node, error) {
	return e.store.GetNode(ctx, id)
}

// ListNodes returns all nodes of a type matching the conjunction of
// exact-match property filters.
func (e *Engine) ListNodes(ctx context.Context, t core.NodeType, filters map[string]any) ([]core.Node, error) {
	return e.store.ListNodes(ctx, t, filters)
}

// Downstream returns every node reachable from id via one or more
// DEPENDS_ON edges: the resources id transitively depends on. The result is
// deduplicated, excludes id itself, and terminates on cycles.
func (e *Engine) Downstream(ctx context.Context, id string) ([]core.Node, error) {
	return e.closure(ctx, id, core.DirectionOut)
}

// Upstream is the reverse closure: every node that transitively depends
// on id.
func (e *Engine) Upstream(ctx context.Context, id string) ([]core.Node, error) {
	return e.closure(ctx, id, core.DirectionIn)
}

// closure walks DEPENDS_ON edges breadth-first with a visited set. Depth is
// unbounded; the visited set is the only cycle guard.
func (e *Engine) closure(ctx context.Context, id string, dir core.Direction) ([]core.Node, error) {
	visited := map[string]bool{id: true}
	queue := []string{id}

	var result []core.Node
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		neighbors, err := e.store.Neighbors(ctx, current, core.EdgeDependsOn, dir)
		if err != nil {
			return nil, err
		}

		for _, n := range neighbors {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			result = append(result, n)
			queue = append(queue, n.ID)
		}
	}

	return result, nil
}

// Path finds a single shortest directed DEPENDS_ON path from fromID to
// toID, by edge count. It is nil when either endpoint is missing or no
// directed chain connects them. Tie-break among equal-length paths is
// implementation-defined.
func (e *Engine) Path(ctx context.Context, fromID, toID string) (*Path, error) {
	for _, id := range []string{fromID, toID} {
		node, err := e.store.GetNode(ctx, id)
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, nil
		}
	}

	if fromID == toID {
		return &Path{Nodes: []string{fromID}, Relationships: []core.EdgeType{}}, nil
	}

	parent := map[string]string{fromID: ""}
	queue := []string{fromID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		neighbors, err := e.store.Neighbors(ctx, current, core.EdgeDependsOn, core.DirectionOut)
		if err != nil {
			return nil, err
		}

		for _, n := range neighbors {
			if _, seen := parent[n.ID]; seen {
				continue
			}
			parent[n.ID] = current

			if n.ID == toID {
				return buildPath(parent, fromID, toID), nil
			}
			queue = append(queue, n.ID)
		}
	}

	return nil, nil
}

func buildPath(parent map[string]string, fromID, toID string) *Path {
	var reversed []string
	for id := toID; id != ""; id = parent[id] {
		reversed = append(reversed, id)
		if id == fromID {
			break
		}
	}

	nodes := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		nodes = append(nodes, reversed[i])
	}

	relationships := make([]core.EdgeType, len(nodes)-1)
	for i := range relationships {
		relationships[i] = core.EdgeDependsOn
	}

	return &Path{Nodes: nodes, Relationships: relationships}
}

// GetOwner returns the team reached via a single OWNED_BY edge out of id.
// Ownership is not transitive; nil when the node has no owner.
func (e *Engine) GetOwner(ctx context.Context, id string) (*core.Node, error) {
	owners, err := e.store.Neighbors(ctx, id, core.EdgeOwnedBy, core.DirectionOut)
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, nil
	}
	if len(owners) > 1 {
		e.logger.Warn("node has multiple owners, using first", "id", id, "owners", len(owners))
	}
	return &owners[0], nil
}

// BlastRadius computes the impact set of a node failure: its full
// downstream and upstream closures plus the deduplicated owners of every
// impacted node. Nodes without an owner are skipped. Nil when id does not
// exist.
func (e *Engine) BlastRadius(ctx context.Context, id string) (*BlastRadius, error) {
	root, err := e.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	downstream, err := e.Downstream(ctx, id)
	if err != nil {
		return nil, err
	}
	upstream, err := e.Upstream(ctx, id)
	if err != nil {
		return nil, err
	}

	impacted := make(map[string]bool)
	var teams []core.Node
	seenTeams := make(map[string]bool)

	for _, n := range append(append([]core.Node{}, downstream...), upstream...) {
		if impacted[n.ID] {
			continue
		}
		impacted[n.ID] = true

		owner, err := e.GetOwner(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		if owner == nil || seenTeams[owner.ID] {
			continue
		}
		seenTeams[owner.ID] = true
		teams = append(teams, *owner)
	}

	return &BlastRadius{
		Node:       *root,
		Downstream: downstream,
		Upstream:   upstream,
		Teams:      teams,
	}, nil
}
