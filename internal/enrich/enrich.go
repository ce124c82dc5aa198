// Package enrich integrates the external description generator: a service
// that supplies human-readable descriptions for assembled flow nodes.
//
// Enrichment is strictly best-effort. It runs after structural assembly and
// before layout, never mutates graph structure, and a timeout or failure
// degrades to an empty description instead of failing the transpilation.
package enrich

import (
	"context"
	"time"

	"github.com/crossflowio/crossflow/internal/ctxlog"
	"github.com/crossflowio/crossflow/internal/flow"
)

// Generator produces an optional natural-language description for one
// target node given its id and translated configuration.
type Generator interface {
	Describe(ctx context.Context, nodeID string, config map[string]string) (string, error)
}

// Annotate fills the description of every service task and gateway in the
// graph using the generator. Per-node failures are logged and skipped; the
// graph's structure is never touched.
func Annotate(ctx context.Context, g *flow.Graph, gen Generator, perNodeTimeout time.Duration) {
	if gen == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)

	for _, n := range g.Nodes {
		switch n.Kind {
		case flow.KindServiceTask, flow.KindGateway, flow.KindParallelGateway:
		default:
			continue
		}

		config := make(map[string]string, len(n.Config))
		for _, c := range n.Config {
			config[c.Key] = c.Value
		}

		nodeCtx, cancel := context.WithTimeout(ctx, perNodeTimeout)
		desc, err := gen.Describe(nodeCtx, n.ID, config)
		cancel()
		if err != nil {
			logger.Warn("Description enrichment failed, leaving description empty.",
				"node", n.ID, "error", err)
			continue
		}
		n.Description = desc
	}
}
