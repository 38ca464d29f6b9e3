package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrStoreUnavailable signals the backing graph store could not be
	// reached. Merge callers retry before surfacing it.
	ErrStoreUnavailable = errors.New("graph store unavailable")
)

// ParseError reports that a document matched a connector but violated the
// connector's structural assumptions. It is contained per document by the
// ingestion pipeline and never aborts a run.
type ParseError struct {
	Connector string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("connector %s: %v", e.Connector, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
