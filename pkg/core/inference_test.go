package core

import "testing"

func TestInferResourceType(t *testing.T) {
	tests := []struct {
		name  string
		image string
		want  NodeType
	}{
		{name: "orders-db", image: "", want: NodeTypeDatabase},
		{name: "orders", image: "postgres:15", want: NodeTypeDatabase},
		{name: "orders", image: "mysql:8", want: NodeTypeDatabase},
		{name: "catalog", image: "mongo:7", want: NodeTypeDatabase},
		{name: "sessions", image: "redis:7-alpine", want: NodeTypeCache},
		{name: "redis-sessions", image: "", want: NodeTypeCache},
		{name: "api-gateway", image: "internal/gateway:1.2", want: NodeTypeService},
		{name: "api-gateway", image: "", want: NodeTypeService},
		// Suffix beats image: a "-db" name is a database regardless of tag.
		{name: "sessions-db", image: "redis:7", want: NodeTypeDatabase},
		// Matching is case-insensitive on the image.
		{name: "metrics", image: "Postgres:15", want: NodeTypeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.image, func(t *testing.T) {
			if got := InferResourceType(tt.name, tt.image); got != tt.want {
				t.Errorf("InferResourceType(%q, %q) = %q, want %q", tt.name, tt.image, got, tt.want)
			}
		})
	}
}
