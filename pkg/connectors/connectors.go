// Package connectors holds the format-specific parsers that normalize raw
// declarative documents into graph nodes and edges.
//
// Each connector implements core.Connector: a cheap structural CanHandle
// predicate plus a pure Parse. The set is closed; dispatch happens in the
// fixed priority order returned by Default.
package connectors

import "github.com/opsgraph/opsgraph/pkg/core"

// Default returns the connector set in dispatch priority order.
// The ingestion pipeline hands each document to the first connector whose
// CanHandle returns true.
func Default() []core.Connector {
	return []core.Connector{
		&Teams{},
		&Compose{},
		&Kubernetes{},
	}
}

// stringValue reads a string field from a decoded document, tolerating
// absence and non-string values.
func stringValue(doc map[string]any, key string) string {
	if doc == nil {
		return ""
	}
	s, _ := doc[key].(string)
	return s
}

// mapValue reads a nested mapping, returning nil when absent or mistyped.
func mapValue(doc map[string]any, key string) map[string]any {
	if doc == nil {
		return nil
	}
	m, _ := doc[key].(map[string]any)
	return m
}

// listValue reads a nested list, returning nil when absent or mistyped.
func listValue(doc map[string]any, key string) []any {
	if doc == nil {
		return nil
	}
	l, _ := doc[key].([]any)
	return l
}

// stringList reads a list field and keeps only its string entries.
func stringList(doc map[string]any, key string) []string {
	raw := listValue(doc, key)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
