// Node and Edge are the central entities of the domain.
package core

import "encoding/json"

// NodeType classifies an infrastructure entity.
// The set is closed at connector-definition time.
type NodeType string

const (
	NodeTypeService    NodeType = "service"
	NodeTypeDatabase   NodeType = "database"
	NodeTypeCache      NodeType = "cache"
	NodeTypeTeam       NodeType = "team"
	NodeTypeDeployment NodeType = "k8s-deployment"
	NodeTypeK8sService NodeType = "k8s-service"
)

// EdgeType is the relationship type between two nodes.
type EdgeType string

const (
	EdgeDependsOn EdgeType = "DEPENDS_ON"
	EdgeOwnedBy   EdgeType = "OWNED_BY"
)

// Metadata represents the flexible key-value pairs associated with a node.
type Metadata map[string]any

// Node represents an infrastructure entity in the graph.
// ID is the sole merge key; Name is not guaranteed unique across types.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// Edge is a directed, typed relationship between two node ids.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Type EdgeType `json:"type"`
}

// NodeID derives the globally unique node identity.
// Two nodes with the same derived id merge into one logical node.
func NodeID(t NodeType, name string) string {
	return string(t) + "-" + name
}

// NewNode builds a node with its identity derived from type and name.
func NewNode(t NodeType, name string, metadata Metadata, source string) Node {
	return Node{
		ID:       NodeID(t, name),
		Type:     t,
		Name:     name,
		Metadata: metadata,
		Source:   source,
	}
}

// Flatten reduces metadata to what a labeled-property-graph store accepts:
// scalars and homogeneous scalar lists pass through, nil values are dropped,
// and anything nested is serialized to a JSON string.
func (m Metadata) Flatten() map[string]any {
	flat := make(map[string]any, len(m))

	for key, value := range m {
		if value == nil {
			continue
		}

		if isScalar(value) {
			flat[key] = value
			continue
		}

		if list, ok := value.([]any); ok && allScalar(list) {
			flat[key] = list
			continue
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			continue
		}
		flat[key] = string(encoded)
	}

	return flat
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func allScalar(list []any) bool {
	for _, v := range list {
		if !isScalar(v) {
			return false
		}
	}
	return true
}
