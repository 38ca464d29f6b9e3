package core

import "strings"

// Known engine substrings for classifying container images.
var databaseEngines = []string{"postgres", "mysql", "mongo"}

// InferResourceType classifies a resource from its name and declared image.
// Every connector that needs to type an implicit dependency (a dependency
// referenced by name only, with no definition of its own) applies this same
// policy, so derived ids stay stable across documents and connectors.
//
// A name ending in "-db" or an image matching a known database engine is a
// database; an image matching redis or a name starting with redis is a
// cache; everything else is a service.
func InferResourceType(name, image string) NodeType {
	if strings.HasSuffix(name, "-db") {
		return NodeTypeDatabase
	}

	image = strings.ToLower(image)

	for _, engine := range databaseEngines {
		if image != "" && strings.Contains(image, engine) {
			return NodeTypeDatabase
		}
	}

	if strings.Contains(image, "redis") || strings.HasPrefix(name, "redis") {
		return NodeTypeCache
	}

	return NodeTypeService
}
