// Package ingest discovers source documents, dispatches them to connectors,
// and aggregates the normalized nodes and edges.
//
// Faults are contained per document: a connector failure or an unparseable
// file is logged in the outcome list and never aborts the run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/opsgraph/opsgraph/pkg/core"
)

// SourcePattern matches the source documents the pipeline ingests.
const SourcePattern = "*.{yml,yaml}"

// Status classifies the outcome of a single structural document.
type Status string

const (
	// StatusMatched means a connector handled the document.
	StatusMatched Status = "matched"
	// StatusSkipped means no connector recognized the document. Not an error.
	StatusSkipped Status = "skipped"
	// StatusFailed means a connector matched but its parse failed, or the
	// file itself could not be decoded.
	StatusFailed Status = "failed"
)

// Outcome records what happened to one structural document.
type Outcome struct {
	File      string `json:"file"`
	Document  int    `json:"document"`
	Connector string `json:"connector,omitempty"`
	Status    Status `json:"status"`
	Err       error  `json:"-"`
}

// Result aggregates a full pipeline run.
// Nodes and edges are a pure concatenation of every successful parse;
// deduplication is deferred to the store merge.
type Result struct {
	Nodes    []core.Node
	Edges    []core.Edge
	Outcomes []Outcome
}

// Matched returns the number of documents handled by a connector.
func (r *Result) Matched() int { return r.count(StatusMatched) }

// Skipped returns the number of documents no connector recognized.
func (r *Result) Skipped() int { return r.count(StatusSkipped) }

// Failed returns the number of documents that failed to parse.
func (r *Result) Failed() int { return r.count(StatusFailed) }

func (r *Result) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Pipeline runs connectors over a flat directory of YAML documents.
type Pipeline struct {
	connectors []core.Connector
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for per-document reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pipeline over the given connector set.
// Connector order is dispatch priority: each document goes to the first
// connector whose CanHandle returns true.
func New(connectors []core.Connector, opts ...Option) *Pipeline {
	p := &Pipeline{
		connectors: connectors,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run enumerates source documents under dir (flat, non-recursive) and parses
// each structural document with the first matching connector.
//
// Run only fails when the directory itself cannot be read; everything below
// that boundary is contained and reported in Result.Outcomes.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, matchErr := doublestar.Match(SourcePattern, entry.Name())
		if matchErr != nil || !ok {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := &Result{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.runFile(dir, name, result)
	}

	p.logger.Info("ingestion complete",
		"files", len(names),
		"nodes", len(result.Nodes),
		"edges", len(result.Edges),
		"matched", result.Matched(),
		"skipped", result.Skipped(),
		"failed", result.Failed(),
	)

	return result, nil
}

func (p *Pipeline) runFile(dir, name string, result *Result) {
	documents, err := loadDocuments(filepath.Join(dir, name))
	if err != nil {
		// Malformed syntax is caught at the load boundary: zero documents
		// for this file, recorded and never propagated.
		p.logger.Warn("failed to load source file", "file", name, "error", err)
		result.Outcomes = append(result.Outcomes, Outcome{
			File:   name,
			Status: StatusFailed,
			Err:    err,
		})
		return
	}

	for i, doc := range documents {
		result.Outcomes = append(result.Outcomes, p.runDocument(name, i, doc, result))
	}
}

func (p *Pipeline) runDocument(file string, index int, doc map[string]any, result *Result) Outcome {
	for _, connector := range p.connectors {
		if !connector.CanHandle(file, doc) {
			continue
		}

		nodes, edges, err := connector.Parse(doc)
		if err != nil {
			p.logger.Warn("connector parse failed",
				"file", file, "document", index, "connector", connector.Name(), "error", err)
			return Outcome{File: file, Document: index, Connector: connector.Name(), Status: StatusFailed, Err: err}
		}

		result.Nodes = append(result.Nodes, nodes...)
		result.Edges = append(result.Edges, edges...)

		p.logger.Debug("document matched",
			"file", file, "document", index, "connector", connector.Name(),
			"nodes", len(nodes), "edges", len(edges))
		return Outcome{File: file, Document: index, Connector: connector.Name(), Status: StatusMatched}
	}

	p.logger.Debug("no matching connector", "file", file, "document", index)
	return Outcome{File: file, Document: index, Status: StatusSkipped}
}

// loadDocuments reads a YAML file as a stream of structural documents.
func loadDocuments(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var documents []map[string]any
	decoder := yaml.NewDecoder(f)
	for {
		var doc any
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
		// Only mapping documents are candidates for connectors; scalars,
		// lists, and the nils produced by empty segments are dropped.
		if mapping, ok := doc.(map[string]any); ok {
			documents = append(documents, mapping)
		}
	}

	return documents, nil
}
