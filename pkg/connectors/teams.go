package connectors

import (
	"errors"

	"github.com/opsgraph/opsgraph/pkg/core"
)

// Teams parses ownership registries: a top-level "teams" list where each
// team names the resources it owns.
//
// Ownership is expressed exclusively as OWNED_BY edges from resource nodes
// to team nodes, never as a node attribute. Owned resources referenced by
// name only become stub nodes typed by the shared inference policy; if a
// manifest elsewhere defines the same resource, both merge into one node.
type Teams struct{}

// Name implements core.Connector.
func (t *Teams) Name() string { return "teams" }

// CanHandle matches any document with a top-level teams key.
func (t *Teams) CanHandle(_ string, doc map[string]any) bool {
	if doc == nil {
		return false
	}
	_, ok := doc["teams"]
	return ok
}

// Parse emits one team node per entry, one stub node per owned resource,
// and one OWNED_BY edge from each resource to its team.
func (t *Teams) Parse(doc map[string]any) ([]core.Node, []core.Edge, error) {
	raw, ok := doc["teams"].([]any)
	if !ok {
		return nil, nil, &core.ParseError{Connector: t.Name(), Err: errors.New("teams is not a list")}
	}

	var nodes []core.Node
	var edges []core.Edge

	for _, entry := range raw {
		team, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		teamName := stringValue(team, "name")
		if teamName == "" {
			continue
		}

		teamID := core.NodeID(core.NodeTypeTeam, teamName)
		nodes = append(nodes, t.buildTeamNode(teamName, team))

		for _, resource := range stringList(team, "owns") {
			resourceType := core.InferResourceType(resource, "")

			nodes = append(nodes, core.NewNode(resourceType, resource, core.Metadata{}, "teams.yaml"))
			edges = append(edges, core.Edge{
				From: core.NodeID(resourceType, resource),
				To:   teamID,
				Type: core.EdgeOwnedBy,
			})
		}
	}

	return nodes, edges, nil
}

func (t *Teams) buildTeamNode(name string, team map[string]any) core.Node {
	metadata := core.Metadata{}
	for _, key := range []string{"lead", "slack_channel", "pagerduty_schedule"} {
		if v, ok := team[key]; ok && v != nil {
			metadata[key] = v
		}
	}
	return core.NewNode(core.NodeTypeTeam, name, metadata, "teams.yaml")
}
