// Package validate checks an assembled flow graph and its diagram against
// the structural invariants the target runtime enforces on import. Every
// check is independently reportable; any violation blocks serialization, so
// the engine never emits a package known to fail import validation.
package validate

import (
	"fmt"
	"strings"

	"github.com/crossflowio/crossflow/internal/flow"
	"github.com/crossflowio/crossflow/internal/layout"
	"github.com/crossflowio/crossflow/internal/mapping"
)

// Violation is one broken invariant, naming the rule and the offending
// node/edge ids.
type Violation struct {
	Rule    string
	Detail  string
	NodeIDs []string
	EdgeIDs []string
}

// String renders the violation for logs and error output.
func (v Violation) String() string {
	var sb strings.Builder
	sb.WriteString(v.Rule)
	sb.WriteString(": ")
	sb.WriteString(v.Detail)
	if len(v.NodeIDs) > 0 {
		fmt.Fprintf(&sb, " (nodes: %s)", strings.Join(v.NodeIDs, ", "))
	}
	if len(v.EdgeIDs) > 0 {
		fmt.Fprintf(&sb, " (edges: %s)", strings.Join(v.EdgeIDs, ", "))
	}
	return sb.String()
}

// Rule names, one per structural invariant.
const (
	RuleShapePerNode     = "shape-per-node"
	RuleEdgePerFlow      = "diagram-edge-per-flow"
	RuleParticipantRole  = "participant-role"
	RuleMessageFlowKinds = "message-flow-endpoints"
	RuleEntryAndTerminal = "entry-and-terminal"
)

// StructuralViolationError aborts serialization when any invariant is
// broken. It carries every violation found, not just the first.
type StructuralViolationError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *StructuralViolationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("structural validation failed:\n- %s", strings.Join(msgs, "\n- "))
}

// Check runs all structural checks and returns every violation found.
func Check(g *flow.Graph, d *layout.Diagram) []Violation {
	var out []Violation
	out = append(out, checkShapes(g, d)...)
	out = append(out, checkDiagramEdges(g, d)...)
	out = append(out, checkParticipantRoles(g)...)
	out = append(out, checkMessageFlows(g)...)
	out = append(out, checkEntryAndTerminal(g)...)
	return out
}

// Ensure runs Check and wraps a non-empty result into a
// StructuralViolationError.
func Ensure(g *flow.Graph, d *layout.Diagram) error {
	if violations := Check(g, d); len(violations) > 0 {
		return &StructuralViolationError{Violations: violations}
	}
	return nil
}

// checkShapes verifies every node has exactly one diagram shape.
func checkShapes(g *flow.Graph, d *layout.Diagram) []Violation {
	var out []Violation

	count := make(map[string]int, len(d.Shapes))
	for _, s := range d.Shapes {
		count[s.NodeID]++
	}
	for _, n := range g.Nodes {
		switch count[n.ID] {
		case 1:
		case 0:
			out = append(out, Violation{Rule: RuleShapePerNode, Detail: "node has no diagram shape", NodeIDs: []string{n.ID}})
		default:
			out = append(out, Violation{Rule: RuleShapePerNode, Detail: fmt.Sprintf("node has %d diagram shapes", count[n.ID]), NodeIDs: []string{n.ID}})
		}
	}
	for nodeID := range count {
		if g.Node(nodeID) == nil {
			out = append(out, Violation{Rule: RuleShapePerNode, Detail: "diagram shape references unknown node", NodeIDs: []string{nodeID}})
		}
	}
	return out
}

// checkDiagramEdges verifies every edge has exactly one diagram edge whose
// endpoints lie on the boundaries of its source and target shapes.
func checkDiagramEdges(g *flow.Graph, d *layout.Diagram) []Violation {
	var out []Violation

	count := make(map[string]int, len(d.Edges))
	byEdge := make(map[string]layout.Edge, len(d.Edges))
	for _, de := range d.Edges {
		count[de.EdgeID]++
		byEdge[de.EdgeID] = de
	}

	for _, e := range g.Edges {
		switch count[e.ID] {
		case 0:
			out = append(out, Violation{Rule: RuleEdgePerFlow, Detail: "edge has no diagram edge", EdgeIDs: []string{e.ID}})
			continue
		case 1:
		default:
			out = append(out, Violation{Rule: RuleEdgePerFlow, Detail: fmt.Sprintf("edge has %d diagram edges", count[e.ID]), EdgeIDs: []string{e.ID}})
			continue
		}

		de := byEdge[e.ID]
		if len(de.Waypoints) < 2 {
			out = append(out, Violation{Rule: RuleEdgePerFlow, Detail: "diagram edge has fewer than two waypoints", EdgeIDs: []string{e.ID}})
			continue
		}
		if s := d.ShapeFor(e.From); s == nil || !onBoundary(s, de.Waypoints[0]) {
			out = append(out, Violation{Rule: RuleEdgePerFlow, Detail: "diagram edge start does not anchor on the source shape", NodeIDs: []string{e.From}, EdgeIDs: []string{e.ID}})
		}
		if s := d.ShapeFor(e.To); s == nil || !onBoundary(s, de.Waypoints[len(de.Waypoints)-1]) {
			out = append(out, Violation{Rule: RuleEdgePerFlow, Detail: "diagram edge end does not anchor on the target shape", NodeIDs: []string{e.To}, EdgeIDs: []string{e.ID}})
		}
	}

	for edgeID := range count {
		if g.Edge(edgeID) == nil {
			out = append(out, Violation{Rule: RuleEdgePerFlow, Detail: "diagram edge references unknown edge", EdgeIDs: []string{edgeID}})
		}
	}
	return out
}

// onBoundary reports whether a point lies on the border of a shape.
func onBoundary(s *layout.Shape, p layout.Point) bool {
	withinX := p.X >= s.X && p.X <= s.X+s.Width
	withinY := p.Y >= s.Y && p.Y <= s.Y+s.Height
	if !withinX || !withinY {
		return false
	}
	return p.X == s.X || p.X == s.X+s.Width || p.Y == s.Y || p.Y == s.Y+s.Height
}

// checkParticipantRoles verifies every participant carries a role from the
// closed enumeration.
func checkParticipantRoles(g *flow.Graph) []Violation {
	valid := map[mapping.Role]bool{
		mapping.RoleSender:           true,
		mapping.RoleReceiver:         true,
		mapping.RoleEndpointSender:   true,
		mapping.RoleEndpointReceiver: true,
	}

	var out []Violation
	for _, n := range g.Nodes {
		if !n.IsParticipant() {
			continue
		}
		if !valid[n.Role] {
			out = append(out, Violation{Rule: RuleParticipantRole, Detail: fmt.Sprintf("participant carries invalid role %q", n.Role), NodeIDs: []string{n.ID}})
		}
	}
	return out
}

// checkMessageFlows verifies message flows connect a service task and a
// participant, and sequence flows never cross the participant boundary.
func checkMessageFlows(g *flow.Graph) []Violation {
	var out []Violation
	for _, e := range g.Edges {
		from, to := g.Node(e.From), g.Node(e.To)
		if from == nil || to == nil {
			out = append(out, Violation{Rule: RuleMessageFlowKinds, Detail: "edge references unknown node", EdgeIDs: []string{e.ID}})
			continue
		}
		switch e.Kind {
		case flow.EdgeMessageFlow:
			taskAndParticipant := (from.Kind == flow.KindServiceTask && to.IsParticipant()) ||
				(from.IsParticipant() && to.Kind == flow.KindServiceTask)
			if !taskAndParticipant {
				out = append(out, Violation{
					Rule:    RuleMessageFlowKinds,
					Detail:  fmt.Sprintf("message flow must connect a service task and a participant, got %s and %s", from.Kind, to.Kind),
					NodeIDs: []string{from.ID, to.ID},
					EdgeIDs: []string{e.ID},
				})
			}
		case flow.EdgeSequenceFlow:
			if from.IsParticipant() || to.IsParticipant() {
				out = append(out, Violation{
					Rule:    RuleMessageFlowKinds,
					Detail:  "sequence flow must not cross a participant boundary",
					NodeIDs: []string{from.ID, to.ID},
					EdgeIDs: []string{e.ID},
				})
			}
		}
	}
	return out
}

// checkEntryAndTerminal verifies the graph has exactly one entry and at
// least one terminal node reachable from it.
func checkEntryAndTerminal(g *flow.Graph) []Violation {
	var out []Violation

	var entries []string
	for _, n := range g.Nodes {
		if n.IsParticipant() {
			continue
		}
		hasIncoming := false
		for _, e := range g.Incoming(n.ID) {
			if e.Kind == flow.EdgeSequenceFlow {
				hasIncoming = true
				break
			}
		}
		if !hasIncoming {
			entries = append(entries, n.ID)
		}
	}
	if len(entries) != 1 {
		out = append(out, Violation{
			Rule:    RuleEntryAndTerminal,
			Detail:  fmt.Sprintf("graph must have exactly one entry, found %d", len(entries)),
			NodeIDs: entries,
		})
		return out
	}

	// Walk sequence flows from the entry looking for a terminal.
	visited := make(map[string]bool)
	stack := []string{entries[0]}
	terminalReached := false
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		hasOutgoing := false
		for _, e := range g.Outgoing(id) {
			if e.Kind != flow.EdgeSequenceFlow {
				continue
			}
			hasOutgoing = true
			stack = append(stack, e.To)
		}
		if !hasOutgoing {
			terminalReached = true
		}
	}
	if !terminalReached {
		out = append(out, Violation{
			Rule:    RuleEntryAndTerminal,
			Detail:  "no terminal node is reachable from the entry",
			NodeIDs: entries,
		})
	}
	return out
}
