package neo4j

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	URI      string `json:"uri"`
	Database string `json:"database,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	return StoreState{
		URI:      s.uri,
		Database: s.database,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "graph-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
