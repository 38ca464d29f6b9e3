// Package neo4j adapts a Neo4j database to the core.GraphStore port.
//
// The adapter issues only the four primitives the core relies on: node
// upsert by id (MERGE + SET), match-based edge creation, node match, and
// one-hop neighbor expansion. Traversal logic lives in pkg/query, so any
// labeled-property-graph store offering these primitives could replace this
// adapter.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/opsgraph/opsgraph/pkg/core"
)

// Config holds the connection settings for the backing store.
type Config struct {
	URI      string
	Username string
	Password string
	// Database selects a named database; empty means the server default.
	Database string
	Logger   *slog.Logger
}

// Store implements core.GraphStore over the Bolt protocol.
type Store struct {
	driver   neo4j.DriverWithContext
	uri      string
	database string
	logger   *slog.Logger
}

// New creates a store client. The connection is lazy; use Ping to verify
// the server is actually reachable.
func New(cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		driver:   driver,
		uri:      cfg.URI,
		database: cfg.Database,
		logger:   logger,
	}, nil
}

// Ping verifies connectivity with the backing store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the driver's connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// labelTable maps node types to store labels. Unknown types fall back to
// Resource so an extended connector cannot produce an unlabeled node.
var labelTable = map[core.NodeType]string{
	core.NodeTypeService:    "Service",
	core.NodeTypeDatabase:   "Database",
	core.NodeTypeCache:      "Cache",
	core.NodeTypeTeam:       "Team",
	core.NodeTypeDeployment: "K8sDeployment",
	core.NodeTypeK8sService: "K8sService",
}

const fallbackLabel = "Resource"

func labelFor(t core.NodeType) string {
	if label, ok := labelTable[t]; ok {
		return label
	}
	return fallbackLabel
}

func typeForLabel(labels []string) core.NodeType {
	for _, label := range labels {
		for t, l := range labelTable {
			if l == label {
				return t
			}
		}
	}
	return ""
}

// MergeNodes upserts nodes keyed on id. Labels come from the fixed type
// table; metadata is flattened to scalars before transmission because the
// store has no native nested-value support.
func (s *Store) MergeNodes(ctx context.Context, nodes []core.Node) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	for _, node := range nodes {
		// The label comes from the closed type table, never from input.
		query := fmt.Sprintf(`
			MERGE (n:%s {id: $id})
			SET n.name = $name,
			    n.source = $source,
			    n += $props
		`, labelFor(node.Type))

		_, err := session.Run(ctx, query, map[string]any{
			"id":     node.ID,
			"name":   node.Name,
			"source": node.Source,
			"props":  node.Metadata.Flatten(),
		})
		if err != nil {
			return fmt.Errorf("failed to merge node %s: %w", node.ID, err)
		}
	}

	return nil
}

// MergeEdges creates edges between already-existing endpoints. The MATCH
// clauses make the merge write zero edges when an endpoint is missing;
// those drops are counted and logged rather than failing the merge.
func (s *Store) MergeEdges(ctx context.Context, edges []core.Edge) (core.MergeStats, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	var stats core.MergeStats
	for _, edge := range edges {
		// Edge types are a closed set, safe to interpolate.
		query := fmt.Sprintf(`
			MATCH (a {id: $from})
			MATCH (b {id: $to})
			MERGE (a)-[r:%s]->(b)
			RETURN r
		`, edge.Type)

		result, err := session.Run(ctx, query, map[string]any{
			"from": edge.From,
			"to":   edge.To,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to merge edge %s->%s: %w", edge.From, edge.To, err)
		}

		if result.Next(ctx) {
			stats.Merged++
		} else {
			stats.Dangling++
			s.logger.Warn("dropped edge with missing endpoint",
				"from", edge.From, "to", edge.To, "type", edge.Type)
		}
		if err := result.Err(); err != nil {
			return stats, fmt.Errorf("failed to merge edge %s->%s: %w", edge.From, edge.To, err)
		}
	}

	return stats, nil
}

// GetNode implements core.GraphStore. Absence is (nil, nil).
func (s *Store) GetNode(ctx context.Context, id string) (*core.Node, error) {
	records, err := s.read(ctx, "MATCH (n {id: $id}) RETURN n", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	node := nodeFromRecord(records[0])
	return &node, nil
}

// identifierPattern guards filter keys: they are interpolated into the
// query text because the store protocol cannot parameterize property names.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ListNodes returns all nodes carrying the type's label that match every
// filter exactly.
func (s *Store) ListNodes(ctx context.Context, t core.NodeType, filters map[string]any) ([]core.Node, error) {
	params := make(map[string]any, len(filters))
	var clauses []string

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !identifierPattern.MatchString(key) {
			return nil, fmt.Errorf("invalid filter property %q", key)
		}
		clauses = append(clauses, fmt.Sprintf("n.%s = $%s", key, key))
		params[key] = filters[key]
	}

	query := fmt.Sprintf("MATCH (n:%s)", labelFor(t))
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " RETURN n ORDER BY n.id"

	records, err := s.read(ctx, query, params)
	if err != nil {
		return nil, err
	}

	nodes := make([]core.Node, 0, len(records))
	for _, record := range records {
		nodes = append(nodes, nodeFromRecord(record))
	}
	return nodes, nil
}

// Neighbors expands one hop along edges of the given type.
func (s *Store) Neighbors(ctx context.Context, id string, et core.EdgeType, dir core.Direction) ([]core.Node, error) {
	pattern := fmt.Sprintf("(a {id: $id})-[:%s]->(n)", et)
	if dir == core.DirectionIn {
		pattern = fmt.Sprintf("(n)-[:%s]->(a {id: $id})", et)
	}

	records, err := s.read(ctx, "MATCH "+pattern+" RETURN DISTINCT n ORDER BY n.id", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}

	nodes := make([]core.Node, 0, len(records))
	for _, record := range records {
		nodes = append(nodes, nodeFromRecord(record))
	}
	return nodes, nil
}

func (s *Store) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return records, nil
}

// nodeFromRecord converts the store's node representation back into the
// domain shape: id, name and source come out of the property bag, the type
// derives from the label, and everything else is metadata.
func nodeFromRecord(record *neo4j.Record) core.Node {
	value, _ := record.Get("n")
	dbNode, ok := value.(neo4j.Node)
	if !ok {
		return core.Node{}
	}

	node := core.Node{
		Type:     typeForLabel(dbNode.Labels),
		Metadata: core.Metadata{},
	}

	for key, v := range dbNode.Props {
		switch key {
		case "id":
			node.ID, _ = v.(string)
		case "name":
			node.Name, _ = v.(string)
		case "source":
			node.Source, _ = v.(string)
		default:
			node.Metadata[key] = v
		}
	}

	return node
}
