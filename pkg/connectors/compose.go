package connectors

import (
	"errors"
	"sort"

	"github.com/opsgraph/opsgraph/pkg/core"
)

// Compose parses docker-compose style manifests: a top-level "services"
// mapping whose entries may declare depends_on relations.
type Compose struct{}

// Name implements core.Connector.
func (c *Compose) Name() string { return "compose" }

// CanHandle matches any document with a top-level services mapping.
func (c *Compose) CanHandle(_ string, doc map[string]any) bool {
	if doc == nil {
		return false
	}
	_, ok := doc["services"]
	return ok
}

// Parse emits one node per declared service and one DEPENDS_ON edge per
// depends_on entry. Dependencies referenced by name only get their type
// inferred by the shared policy so the derived id matches whatever document
// eventually defines them.
func (c *Compose) Parse(doc map[string]any) ([]core.Node, []core.Edge, error) {
	services, ok := doc["services"].(map[string]any)
	if !ok {
		return nil, nil, &core.ParseError{Connector: c.Name(), Err: errors.New("services is not a mapping")}
	}

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	var nodes []core.Node
	var edges []core.Edge

	// First pass: declare every service so dependency edges can reuse the
	// inferred types instead of re-deriving them from a bare name.
	inferred := make(map[string]core.NodeType, len(names))
	for _, name := range names {
		def := mapValue(services, name)
		t := core.InferResourceType(name, stringValue(def, "image"))
		inferred[name] = t
		nodes = append(nodes, c.buildNode(name, def, t))
	}

	for _, name := range names {
		def := mapValue(services, name)
		from := core.NodeID(inferred[name], name)

		for _, dep := range dependencyNames(def) {
			depType, ok := inferred[dep]
			if !ok {
				depType = core.InferResourceType(dep, "")
			}
			edges = append(edges, core.Edge{
				From: from,
				To:   core.NodeID(depType, dep),
				Type: core.EdgeDependsOn,
			})
		}
	}

	return nodes, edges, nil
}

// dependencyNames reads depends_on in both compose syntaxes: the short form
// (a list of names) and the long form (a mapping of name to condition).
func dependencyNames(def map[string]any) []string {
	if def == nil {
		return nil
	}

	switch deps := def["depends_on"].(type) {
	case []any:
		out := make([]string, 0, len(deps))
		for _, v := range deps {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		out := make([]string, 0, len(deps))
		for name := range deps {
			out = append(out, name)
		}
		sort.Strings(out)
		return out
	}
	return nil
}

func (c *Compose) buildNode(name string, def map[string]any, t core.NodeType) core.Node {
	metadata := core.Metadata{}
	if image := stringValue(def, "image"); image != "" {
		metadata["image"] = image
	}
	if ports := listValue(def, "ports"); ports != nil {
		metadata["ports"] = ports
	}
	if def != nil {
		if env, ok := def["environment"]; ok {
			metadata["environment"] = env
		}
		if labels, ok := def["labels"]; ok {
			metadata["labels"] = labels
		}
	}

	return core.NewNode(t, name, metadata, "docker-compose.yml")
}
