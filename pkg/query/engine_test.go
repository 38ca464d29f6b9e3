package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgraph/opsgraph/pkg/adapters/memory"
	"github.com/opsgraph/opsgraph/pkg/core"
)

// seedStore builds this dependency graph:
//
//	gateway -> api -> orders-db
//	           api -> redis-sessions
//	billing -> orders-db
//
// with orders-team owning api and orders-db, and billing-team owning
// billing. gateway and redis-sessions are unowned.
func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.MergeNodes(ctx, []core.Node{
		core.NewNode(core.NodeTypeService, "gateway", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "api", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "billing", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeDatabase, "orders-db", core.Metadata{"image": "postgres:15"}, "docker-compose.yml"),
		core.NewNode(core.NodeTypeCache, "redis-sessions", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeTeam, "orders-team", nil, "teams.yaml"),
		core.NewNode(core.NodeTypeTeam, "billing-team", nil, "teams.yaml"),
	}))

	_, err := s.MergeEdges(ctx, []core.Edge{
		{From: "service-gateway", To: "service-api", Type: core.EdgeDependsOn},
		{From: "service-api", To: "database-orders-db", Type: core.EdgeDependsOn},
		{From: "service-api", To: "cache-redis-sessions", Type: core.EdgeDependsOn},
		{From: "service-billing", To: "database-orders-db", Type: core.EdgeDependsOn},
		{From: "service-api", To: "team-orders-team", Type: core.EdgeOwnedBy},
		{From: "database-orders-db", To: "team-orders-team", Type: core.EdgeOwnedBy},
		{From: "service-billing", To: "team-billing-team", Type: core.EdgeOwnedBy},
	})
	require.NoError(t, err)

	return s
}

func ids(nodes []core.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestGetNode(t *testing.T) {
	e := New(seedStore(t))
	ctx := context.Background()

	node, err := e.GetNode(ctx, "service-api")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "api", node.Name)

	absent, err := e.GetNode(ctx, "service-ghost")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestListNodes(t *testing.T) {
	e := New(seedStore(t))
	ctx := context.Background()

	services, err := e.ListNodes(ctx, core.NodeTypeService, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"service-gateway", "service-api", "service-billing"}, ids(services))

	filtered, err := e.ListNodes(ctx, core.NodeTypeDatabase, map[string]any{"image": "postgres:15"})
	require.NoError(t, err)
	assert.Equal(t, []string{"database-orders-db"}, ids(filtered))
}

func TestDownstream(t *testing.T) {
	e := New(seedStore(t))

	down, err := e.Downstream(context.Background(), "service-gateway")
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"service-api", "database-orders-db", "cache-redis-sessions"},
		ids(down))
}

func TestUpstream(t *testing.T) {
	e := New(seedStore(t))

	up, err := e.Upstream(context.Background(), "database-orders-db")
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"service-api", "service-gateway", "service-billing"},
		ids(up))
}

// For any edge A DEPENDS_ON B: B is in downstream(A) and A is in
// upstream(B).
func TestClosureSymmetry(t *testing.T) {
	e := New(seedStore(t))
	ctx := context.Background()

	down, err := e.Downstream(ctx, "service-api")
	require.NoError(t, err)
	assert.Contains(t, ids(down), "database-orders-db")

	up, err := e.Upstream(ctx, "database-orders-db")
	require.NoError(t, err)
	assert.Contains(t, ids(up), "service-api")
}

func TestClosureMissingNodeIsEmpty(t *testing.T) {
	e := New(seedStore(t))

	down, err := e.Downstream(context.Background(), "service-ghost")
	require.NoError(t, err)
	assert.Empty(t, down)
}

// Cyclic graphs terminate, and a node never appears in its own closure.
func TestClosureCycleTermination(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.MergeNodes(ctx, []core.Node{
		core.NewNode(core.NodeTypeService, "a", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "b", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "c", nil, "docker-compose.yml"),
	}))
	_, err := s.MergeEdges(ctx, []core.Edge{
		{From: "service-a", To: "service-b", Type: core.EdgeDependsOn},
		{From: "service-b", To: "service-c", Type: core.EdgeDependsOn},
		{From: "service-c", To: "service-a", Type: core.EdgeDependsOn},
	})
	require.NoError(t, err)

	e := New(s)
	for _, id := range []string{"service-a", "service-b", "service-c"} {
		down, err := e.Downstream(ctx, id)
		require.NoError(t, err)
		assert.NotContains(t, ids(down), id, "self-inclusion in downstream(%s)", id)
		assert.Len(t, down, 2)

		up, err := e.Upstream(ctx, id)
		require.NoError(t, err)
		assert.NotContains(t, ids(up), id, "self-inclusion in upstream(%s)", id)
		assert.Len(t, up, 2)
	}
}

func TestPath(t *testing.T) {
	e := New(seedStore(t))

	path, err := e.Path(context.Background(), "service-gateway", "database-orders-db")
	require.NoError(t, err)
	require.NotNil(t, path)

	assert.Equal(t, []string{"service-gateway", "service-api", "database-orders-db"}, path.Nodes)
	assert.Equal(t, []core.EdgeType{core.EdgeDependsOn, core.EdgeDependsOn}, path.Relationships)
}

// Path follows edge direction: an undirected connection is not a path.
func TestPathDirected(t *testing.T) {
	e := New(seedStore(t))
	ctx := context.Background()

	path, err := e.Path(ctx, "database-orders-db", "service-gateway")
	require.NoError(t, err)
	assert.Nil(t, path)

	// Siblings share a dependency but have no directed chain.
	path, err = e.Path(ctx, "service-billing", "service-gateway")
	require.NoError(t, err)
	assert.Nil(t, path)
}

// A node trivially reaches itself: one node, zero relationships.
func TestPathSameEndpoints(t *testing.T) {
	e := New(seedStore(t))

	path, err := e.Path(context.Background(), "service-api", "service-api")
	require.NoError(t, err)
	require.NotNil(t, path)

	assert.Equal(t, []string{"service-api"}, path.Nodes)
	assert.Empty(t, path.Relationships)
}

func TestPathMissingEndpoint(t *testing.T) {
	e := New(seedStore(t))

	path, err := e.Path(context.Background(), "service-gateway", "database-ghost")
	require.NoError(t, err)
	assert.Nil(t, path)
}

// With several equal-length paths, only length and endpoints are defined.
func TestPathShortestAmongAlternatives(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.MergeNodes(ctx, []core.Node{
		core.NewNode(core.NodeTypeService, "a", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "b1", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "b2", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "c", nil, "docker-compose.yml"),
		core.NewNode(core.NodeTypeService, "d", nil, "docker-compose.yml"),
	}))
	_, err := s.MergeEdges(ctx, []core.Edge{
		// Two 2-hop routes a->c, one 3-hop route via d.
		{From: "service-a", To: "service-b1", Type: core.EdgeDependsOn},
		{From: "service-a", To: "service-b2", Type: core.EdgeDependsOn},
		{From: "service-b1", To: "service-c", Type: core.EdgeDependsOn},
		{From: "service-b2", To: "service-c", Type: core.EdgeDependsOn},
		{From: "service-b1", To: "service-d", Type: core.EdgeDependsOn},
		{From: "service-d", To: "service-c", Type: core.EdgeDependsOn},
	})
	require.NoError(t, err)

	path, err := New(s).Path(ctx, "service-a", "service-c")
	require.NoError(t, err)
	require.NotNil(t, path)

	assert.Len(t, path.Nodes, 3)
	assert.Equal(t, "service-a", path.Nodes[0])
	assert.Equal(t, "service-c", path.Nodes[len(path.Nodes)-1])
}

func TestGetOwner(t *testing.T) {
	e := New(seedStore(t))
	ctx := context.Background()

	owner, err := e.GetOwner(ctx, "service-api")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "team-orders-team", owner.ID)

	// Ownership is a single hop, never transitive.
	unowned, err := e.GetOwner(ctx, "service-gateway")
	require.NoError(t, err)
	assert.Nil(t, unowned)
}

func TestBlastRadius(t *testing.T) {
	e := New(seedStore(t))

	blast, err := e.BlastRadius(context.Background(), "database-orders-db")
	require.NoError(t, err)
	require.NotNil(t, blast)

	assert.Equal(t, "database-orders-db", blast.Node.ID)
	assert.Empty(t, blast.Downstream)
	assert.ElementsMatch(t,
		[]string{"service-api", "service-gateway", "service-billing"},
		ids(blast.Upstream))

	// Owners of the impacted set, deduplicated, unowned nodes skipped.
	assert.ElementsMatch(t, []string{"team-orders-team", "team-billing-team"}, ids(blast.Teams))
}

func TestBlastRadiusMissingNode(t *testing.T) {
	e := New(seedStore(t))

	blast, err := e.BlastRadius(context.Background(), "database-ghost")
	require.NoError(t, err)
	assert.Nil(t, blast)
}

func TestBlastRadiusBothDirections(t *testing.T) {
	e := New(seedStore(t))

	blast, err := e.BlastRadius(context.Background(), "service-api")
	require.NoError(t, err)
	require.NotNil(t, blast)

	assert.ElementsMatch(t, []string{"database-orders-db", "cache-redis-sessions"}, ids(blast.Downstream))
	assert.ElementsMatch(t, []string{"service-gateway"}, ids(blast.Upstream))
	assert.ElementsMatch(t, []string{"team-orders-team"}, ids(blast.Teams))
}
