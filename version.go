package opsgraph

import _ "embed"

// Version is the library version, embedded from the VERSION file so the CLI
// and the module never disagree.
//
//go:embed VERSION
var Version string
