package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/crossflowio/crossflow/internal/ctxlog"
	"github.com/crossflowio/crossflow/internal/mapping"
	"github.com/crossflowio/crossflow/internal/source"
)

// assembly is the working state of one Assemble call.
type assembly struct {
	graph *Graph
	table *mapping.Table
	ids   *idAllocator

	warnings []string

	// exec maps a source node id to its execution-lane node (task,
	// gateway, or event).
	exec map[string]*Node
	// part maps a source node id to its participant node, for source nodes
	// that map to a participant outright.
	part map[string]*Node
	// anchor maps a participant-mapped source node id to the execution
	// node its control path flows through.
	anchor map[string]*Node
}

// Assemble projects a validated source graph onto a target flow graph using
// the given mapping table. It returns the assembled graph plus the warnings
// accumulated along the way (unsupported types, unrecognized reference
// expressions). Warnings never abort the run; structural impossibilities do.
func Assemble(ctx context.Context, sg *source.Graph, table *mapping.Table) (*Graph, []string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Assemble: starting target graph assembly.", "process", sg.Record.Process)

	a := &assembly{
		graph:  NewGraph(sg.Record.Process),
		table:  table,
		ids:    newIDAllocator(),
		exec:   make(map[string]*Node),
		part:   make(map[string]*Node),
		anchor: make(map[string]*Node),
	}

	start := a.newNode(KindStartEvent, "Start")
	a.graph.EntryID = start.ID

	order := sg.TopologicalOrder()

	// First pass: one target node (or decomposition sub-graph) per source node.
	for _, id := range order {
		if err := a.createNodes(ctx, sg.Node(id)); err != nil {
			return nil, nil, err
		}
	}
	logger.Debug("Assemble: node creation complete.", "node_count", len(a.graph.Nodes))

	// Wire the start event into the entry node's execution path.
	entryExec := a.exec[sg.Record.EntryID]
	if entryExec == nil {
		return nil, nil, fmt.Errorf("entry node %q maps to a participant; a process cannot start at an external endpoint", sg.Record.EntryID)
	}
	a.addSequenceFlow(start, entryExec, "", false)

	// Second pass: re-project every source edge.
	for _, id := range order {
		if err := a.projectEdges(ctx, sg, sg.Node(id)); err != nil {
			return nil, nil, err
		}
	}
	logger.Debug("Assemble: edge projection complete.", "edge_count", len(a.graph.Edges))

	// Final pass: terminate every open execution path in a shared end event.
	a.closeTerminals()

	logger.Debug("Assemble: assembly successful.",
		"nodes", len(a.graph.Nodes), "edges", len(a.graph.Edges), "warnings", len(a.warnings))
	return a.graph, a.warnings, nil
}

// newNode allocates an id and appends a node of the given kind.
func (a *assembly) newNode(kind NodeKind, name string) *Node {
	n := &Node{
		ID:   a.ids.next(idPrefix(kind)),
		Kind: kind,
		Name: name,
	}
	a.graph.AddNode(n)
	return n
}

// createNodes maps one source node and instantiates its target node or, for
// decomposing entries, its full sub-graph atomically.
func (a *assembly) createNodes(ctx context.Context, n *source.Node) error {
	logger := ctxlog.FromContext(ctx)

	res, err := a.table.Map(n.Type, n.Config)
	if err != nil {
		var unsup *mapping.UnsupportedTypeError
		if !errors.As(err, &unsup) {
			return fmt.Errorf("mapping source node %q: %w", n.ID, err)
		}
		// Losing a node silently is a correctness bug: emit a visible,
		// non-executable placeholder and keep going.
		placeholder := a.newNode(KindServiceTask, n.ID)
		placeholder.ActivityType = "Unsupported"
		placeholder.Unsupported = true
		placeholder.SourceID = n.ID
		a.exec[n.ID] = placeholder
		a.warn(fmt.Sprintf("source node %q: %v; emitted placeholder %s", n.ID, err, placeholder.ID))
		logger.Warn("Unsupported source type, emitted placeholder.", "source_node", n.ID, "type", n.Type)
		return nil
	}

	for _, w := range res.Warnings {
		a.warn(fmt.Sprintf("source node %q: %s", n.ID, w))
		logger.Warn("Reference expression passed through as literal.", "source_node", n.ID, "detail", w)
	}

	switch res.Kind {
	case mapping.KindServiceTask:
		task := a.newNode(KindServiceTask, n.ID)
		task.ActivityType = res.ActivityType
		task.Config = res.Config
		task.SourceID = n.ID
		a.exec[n.ID] = task

		if res.Participant != nil {
			a.emitParticipant(task, n, res.Participant)
		}

	case mapping.KindGateway:
		gw := a.newNode(KindGateway, n.ID)
		gw.Config = res.Config
		gw.SourceID = n.ID
		a.exec[n.ID] = gw

	case mapping.KindEvent:
		ev := a.newNode(KindEndEvent, n.ID)
		ev.Config = res.Config
		ev.SourceID = n.ID
		a.exec[n.ID] = ev

	case mapping.KindParticipant:
		p := a.newNode(KindParticipant, n.ID)
		p.Role = res.Role
		p.Config = res.Config
		p.SourceID = n.ID
		a.part[n.ID] = p

	default:
		return fmt.Errorf("mapping source node %q: unexpected target kind %q", n.ID, res.Kind)
	}
	return nil
}

// emitParticipant creates the participant half of a decomposing entry plus
// the message flow between it and the service task, atomically with the
// task itself.
func (a *assembly) emitParticipant(task *Node, n *source.Node, spec *mapping.ParticipantSpec) {
	name := n.ID
	if spec.NameKey != "" {
		if v, ok := n.ConfigValue(spec.NameKey); ok {
			name = v
		}
	}
	p := a.newNode(KindParticipant, name)
	p.Role = spec.Role
	p.SourceID = n.ID

	a.addMessageFlowByRole(task, p)
}

// addMessageFlowByRole creates a message flow between a service task and a
// participant, directed by the participant's role: senders feed the flow,
// receivers are fed by it.
func (a *assembly) addMessageFlowByRole(task, p *Node) {
	from, to := task, p
	if p.Role == mapping.RoleSender || p.Role == mapping.RoleEndpointSender {
		from, to = p, task
	}
	a.graph.AddEdge(&Edge{
		ID:   a.ids.next("MessageFlow"),
		Kind: EdgeMessageFlow,
		From: from.ID,
		To:   to.ID,
	})
}

// addSequenceFlow creates a control edge between two execution-lane nodes.
func (a *assembly) addSequenceFlow(from, to *Node, guard string, isDefault bool) *Edge {
	e := &Edge{
		ID:      a.ids.next("SequenceFlow"),
		Kind:    EdgeSequenceFlow,
		From:    from.ID,
		To:      to.ID,
		Guard:   guard,
		Default: isDefault,
	}
	a.graph.AddEdge(e)
	return e
}

// projectEdges re-creates the outgoing edges of one source node on the
// target graph, preserving declared order as branch priority.
func (a *assembly) projectEdges(ctx context.Context, sg *source.Graph, n *source.Node) error {
	logger := ctxlog.FromContext(ctx)

	edges := sg.EdgesFrom(n.ID)
	if len(edges) == 0 {
		return nil
	}

	from, err := a.routeSource(n)
	if err != nil {
		return err
	}

	// A non-gateway node with control fan-out routes its branches through a
	// synthesized gateway so the split stays explicit in the target model.
	ctrl := sg.ControlEdgesFrom(n.ID)
	if len(ctrl) >= 2 && from.Kind != KindGateway && from.Kind != KindParallelGateway {
		kind := KindParallelGateway
		for _, e := range ctrl {
			if e.Kind == source.EdgeConditional {
				kind = KindGateway
				break
			}
		}
		gw := a.newNode(kind, n.ID+"_split")
		gw.SourceID = n.ID
		a.addSequenceFlow(from, gw, "", false)
		from = gw
		logger.Debug("Synthesized fan-out gateway.", "source_node", n.ID, "gateway", gw.ID)
	}

	for _, e := range edges {
		target := sg.Node(e.To)

		// Edges into a participant-mapped node become message flows from
		// the nearest preceding service task; the control path continues
		// from the same point via the participant's anchor.
		if p := a.part[e.To]; p != nil {
			mfSrc := a.nearestTask(from)
			if mfSrc == nil {
				return fmt.Errorf("edge %q: no service task precedes participant %q to carry its message flow", e.ID, target.ID)
			}
			a.addMessageFlowByRole(mfSrc, p)
			if e.Kind == source.EdgeConditional && e.Guard != "" {
				a.warn(fmt.Sprintf("edge %q: guard %q dropped; message flows to %q cannot carry conditions", e.ID, e.Guard, target.ID))
			}
			if a.anchor[e.To] == nil {
				a.anchor[e.To] = from
			}
			continue
		}

		to := a.exec[e.To]
		if to == nil {
			return fmt.Errorf("edge %q: target node %q was not assembled", e.ID, e.To)
		}

		guard := ""
		isDefault := false
		if e.Kind == source.EdgeConditional {
			if e.Guard == "" {
				// The unguarded conditional branch is the declared
				// fallthrough.
				isDefault = true
			} else {
				rewritten, ok := mapping.RewriteExpression(e.Guard)
				if !ok {
					a.warn(fmt.Sprintf("edge %q: unrecognized reference in guard %q passed through as literal", e.ID, e.Guard))
				}
				guard = rewritten
			}
		}
		a.addSequenceFlow(from, to, guard, isDefault)
	}
	return nil
}

// nearestTask resolves the service task a message flow departs from: the
// given node itself, or the closest task reached by walking incoming
// sequence flows. Message flows must connect a task and a participant, so
// a gateway or event sitting between them is skipped over. Returns nil
// when no task precedes the node.
func (a *assembly) nearestTask(start *Node) *Node {
	seen := make(map[string]bool)
	queue := []*Node{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || seen[cur.ID] {
			continue
		}
		seen[cur.ID] = true
		if cur.Kind == KindServiceTask {
			return cur
		}
		for _, e := range a.graph.Incoming(cur.ID) {
			if e.Kind == EdgeSequenceFlow {
				queue = append(queue, a.graph.Node(e.From))
			}
		}
	}
	return nil
}

// routeSource resolves the target node that outgoing control edges of a
// source node depart from.
func (a *assembly) routeSource(n *source.Node) (*Node, error) {
	if exec := a.exec[n.ID]; exec != nil {
		return exec, nil
	}
	// Participant-mapped nodes pass control through their anchor: the
	// execution node that preceded them.
	if anchor := a.anchor[n.ID]; anchor != nil {
		return anchor, nil
	}
	return nil, fmt.Errorf("node %q: no execution path reaches this participant, cannot continue its control flow", n.ID)
}

// closeTerminals routes every execution node without outgoing control flow
// into one shared end event. Flows that already terminate in a mapped end
// event are left alone.
func (a *assembly) closeTerminals() {
	var terminals []*Node
	for _, n := range a.graph.Nodes {
		if n.IsParticipant() || n.Kind == KindEndEvent {
			continue
		}
		if len(a.sequenceOut(n.ID)) == 0 {
			terminals = append(terminals, n)
		}
	}
	if len(terminals) == 0 {
		return
	}

	end := a.newNode(KindEndEvent, "End")
	for _, t := range terminals {
		a.addSequenceFlow(t, end, "", false)
	}
}

// sequenceOut returns the outgoing sequence flows of a target node.
func (a *assembly) sequenceOut(id string) []*Edge {
	var out []*Edge
	for _, e := range a.graph.Outgoing(id) {
		if e.Kind == EdgeSequenceFlow {
			out = append(out, e)
		}
	}
	return out
}

func (a *assembly) warn(msg string) {
	a.warnings = append(a.warnings, msg)
}
