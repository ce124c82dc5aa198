// Package transpiler orchestrates one transpilation run: source graph
// construction, flow assembly, optional enrichment, layout, structural
// validation, and package serialization, in that order.
//
// The structural stages are pure and deterministic; enrichment is the only
// stage allowed to touch the network, and it degrades gracefully. Each run
// owns its own target graph, so independent records can be transpiled
// concurrently against one shared, read-only mapping table.
package transpiler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crossflowio/crossflow/internal/bpmn"
	"github.com/crossflowio/crossflow/internal/ctxlog"
	"github.com/crossflowio/crossflow/internal/enrich"
	"github.com/crossflowio/crossflow/internal/flow"
	"github.com/crossflowio/crossflow/internal/layout"
	"github.com/crossflowio/crossflow/internal/mapping"
	"github.com/crossflowio/crossflow/internal/source"
	"github.com/crossflowio/crossflow/internal/validate"
)

// Pipeline transpiles normalized records into target packages. It is safe
// for concurrent use: the mapping table is read-only and all per-run state
// stays inside Run.
type Pipeline struct {
	Table *mapping.Table

	// Generator is optional; nil disables enrichment.
	Generator enrich.Generator
	// EnrichTimeout bounds each description call.
	EnrichTimeout time.Duration
	// AnnotateRun writes the run id into the package manifest. Off by
	// default: the id is random, so stamping it trades reproducibility
	// for traceability.
	AnnotateRun bool
}

// Result is the outcome of one successful run.
type Result struct {
	// RunID identifies the run in logs; it is never written into the
	// deterministic package content.
	RunID    string
	Package  *bpmn.Package
	Graph    *flow.Graph
	Diagram  *layout.Diagram
	Warnings []string
}

// Run transpiles one normalized record. Fatal errors (malformed source,
// structural violations) abort with the implicated ids; unsupported
// component types and enrichment failures degrade to warnings.
func (p *Pipeline) Run(ctx context.Context, rec *source.Record) (*Result, error) {
	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("run_id", runID, "process", rec.Process)
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Debug("Transpilation run starting.", "platform", rec.Platform,
		"nodes", len(rec.Nodes), "edges", len(rec.Edges))

	sg, err := source.BuildGraph(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("building source graph: %w", err)
	}

	fg, warnings, err := flow.Assemble(ctx, sg, p.Table)
	if err != nil {
		return nil, fmt.Errorf("assembling target graph: %w", err)
	}

	if p.Generator != nil {
		timeout := p.EnrichTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		enrich.Annotate(ctx, fg, p.Generator, timeout)
	}

	diagram := layout.Layout(fg)

	if err := validate.Ensure(fg, diagram); err != nil {
		return nil, err
	}
	logger.Debug("Structural validation passed.")

	manifestRunID := ""
	if p.AnnotateRun {
		manifestRunID = runID
	}
	pkg, err := bpmn.Serialize(fg, diagram, manifestRunID)
	if err != nil {
		return nil, fmt.Errorf("serializing package: %w", err)
	}

	logger.Info("Transpilation run finished.",
		"target_nodes", len(fg.Nodes), "target_edges", len(fg.Edges),
		"files", len(pkg.Files), "warnings", len(warnings))

	return &Result{
		RunID:    runID,
		Package:  pkg,
		Graph:    fg,
		Diagram:  diagram,
		Warnings: warnings,
	}, nil
}
