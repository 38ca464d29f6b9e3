// Package memory provides an in-process core.GraphStore.
//
// It mirrors the merge semantics of the real backing store (upsert by id,
// last-write-wins properties, match-based edge creation with counted
// dangling drops) so the ingestion pipeline and query engine can be
// exercised without a running graph database.
package memory

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/opsgraph/opsgraph/pkg/core"
)

type edgeKey struct {
	from string
	to   string
	typ  core.EdgeType
}

// Store implements core.GraphStore on plain maps.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]core.Node
	edges map[edgeKey]struct{}
	out   map[string]map[core.EdgeType]map[string]struct{}
	in    map[string]map[core.EdgeType]map[string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		nodes: make(map[string]core.Node),
		edges: make(map[edgeKey]struct{}),
		out:   make(map[string]map[core.EdgeType]map[string]struct{}),
		in:    make(map[string]map[core.EdgeType]map[string]struct{}),
	}
}

// MergeNodes upserts nodes keyed on id. Properties present in a later write
// overwrite earlier values; properties absent from the later write persist.
func (s *Store) MergeNodes(_ context.Context, nodes []core.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, node := range nodes {
		flat := node.Metadata.Flatten()

		existing, ok := s.nodes[node.ID]
		if !ok {
			s.nodes[node.ID] = core.Node{
				ID:       node.ID,
				Type:     node.Type,
				Name:     node.Name,
				Metadata: core.Metadata(flat),
				Source:   node.Source,
			}
			continue
		}

		existing.Type = node.Type
		existing.Name = node.Name
		existing.Source = node.Source
		if existing.Metadata == nil {
			existing.Metadata = core.Metadata{}
		}
		for k, v := range flat {
			existing.Metadata[k] = v
		}
		s.nodes[node.ID] = existing
	}

	return nil
}

// MergeEdges creates edges between existing endpoints. An edge referencing a
// missing endpoint writes nothing and is counted as dangling; repeated
// merges of the same edge are no-ops.
func (s *Store) MergeEdges(_ context.Context, edges []core.Edge) (core.MergeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats core.MergeStats
	for _, edge := range edges {
		if _, ok := s.nodes[edge.From]; !ok {
			stats.Dangling++
			continue
		}
		if _, ok := s.nodes[edge.To]; !ok {
			stats.Dangling++
			continue
		}

		key := edgeKey{from: edge.From, to: edge.To, typ: edge.Type}
		if _, ok := s.edges[key]; !ok {
			s.edges[key] = struct{}{}
			s.link(s.out, edge.From, edge.Type, edge.To)
			s.link(s.in, edge.To, edge.Type, edge.From)
		}
		stats.Merged++
	}

	return stats, nil
}

func (s *Store) link(index map[string]map[core.EdgeType]map[string]struct{}, id string, et core.EdgeType, other string) {
	byType, ok := index[id]
	if !ok {
		byType = make(map[core.EdgeType]map[string]struct{})
		index[id] = byType
	}
	set, ok := byType[et]
	if !ok {
		set = make(map[string]struct{})
		byType[et] = set
	}
	set[other] = struct{}{}
}

// GetNode implements core.GraphStore. Absence is (nil, nil).
func (s *Store) GetNode(_ context.Context, id string) (*core.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	copied := cloneNode(node)
	return &copied, nil
}

// ListNodes returns all nodes of a type matching every filter exactly.
// Filters apply to stored properties: metadata keys plus id, name and source.
func (s *Store) ListNodes(_ context.Context, t core.NodeType, filters map[string]any) ([]core.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Node
	for _, node := range s.nodes {
		if node.Type != t {
			continue
		}
		if !matches(node, filters) {
			continue
		}
		out = append(out, cloneNode(node))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matches(node core.Node, filters map[string]any) bool {
	for key, want := range filters {
		var got any
		switch key {
		case "id":
			got = node.ID
		case "name":
			got = node.Name
		case "source":
			got = node.Source
		default:
			got = node.Metadata[key]
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Neighbors expands one hop along edges of the given type.
func (s *Store) Neighbors(_ context.Context, id string, et core.EdgeType, dir core.Direction) ([]core.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.out
	if dir == core.DirectionIn {
		index = s.in
	}

	set := index[id][et]
	out := make([]core.Node, 0, len(set))
	for other := range set {
		if node, ok := s.nodes[other]; ok {
			out = append(out, cloneNode(node))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements core.GraphStore. No resources to release.
func (s *Store) Close(context.Context) error { return nil }

// Len reports the stored node and edge counts. Test helper.
func (s *Store) Len() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.edges)
}

func cloneNode(n core.Node) core.Node {
	copied := n
	if n.Metadata != nil {
		copied.Metadata = make(core.Metadata, len(n.Metadata))
		for k, v := range n.Metadata {
			copied.Metadata[k] = v
		}
	}
	return copied
}
