package core

import "context"

// Direction selects which way an edge is followed during expansion.
type Direction int

const (
	// DirectionOut follows edges from the node to its targets.
	DirectionOut Direction = iota
	// DirectionIn follows edges pointing at the node.
	DirectionIn
)

// MergeStats summarizes an edge merge against the store.
type MergeStats struct {
	// Merged counts edges whose endpoints both existed.
	Merged int
	// Dangling counts edges dropped because an endpoint was missing.
	Dangling int
}

// GraphStore is the contract for the backing labeled-graph store.
// Adhering to this interface keeps ingestion and querying independent of the
// storage mechanism (Neo4j, in-memory, anything offering the same primitives).
//
// Node merge is an upsert keyed on id with last-write-wins property
// semantics. Edge merge is match-based: an edge whose endpoint does not yet
// exist writes nothing and is reported in MergeStats.Dangling.
type GraphStore interface {
	// MergeNodes upserts nodes keyed on id, overwriting named properties.
	MergeNodes(ctx context.Context, nodes []Node) error

	// MergeEdges creates edges between existing endpoints, idempotently.
	MergeEdges(ctx context.Context, edges []Edge) (MergeStats, error)

	// GetNode retrieves a node by id. Absence is (nil, nil), never an error.
	GetNode(ctx context.Context, id string) (*Node, error)

	// ListNodes returns all nodes of a type matching the conjunction of
	// exact-match property filters.
	ListNodes(ctx context.Context, t NodeType, filters map[string]any) ([]Node, error)

	// Neighbors expands one hop along edges of the given type.
	Neighbors(ctx context.Context, id string, et EdgeType, dir Direction) ([]Node, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Connector normalizes one raw declarative document format into nodes and
// edges. Implementations are pure: no I/O, no partial side effects.
type Connector interface {
	// Name identifies the connector in outcome logs.
	Name() string

	// CanHandle is a cheap structural predicate on the decoded document.
	// It must not fail on malformed input; it returns false instead.
	CanHandle(filename string, doc map[string]any) bool

	// Parse turns the document into normalized nodes and edges.
	// Shape violations are reported as *ParseError.
	Parse(doc map[string]any) ([]Node, []Edge, error)
}
