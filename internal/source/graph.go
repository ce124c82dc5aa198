package source

import (
	"context"
	"sort"

	"github.com/crossflowio/crossflow/internal/ctxlog"
)

// Graph is the validated, indexed form of a Record. It is read-only after
// BuildGraph returns; the assembler only traverses it.
type Graph struct {
	Record *Record

	nodes map[string]*Node
	edges map[string]*Edge
	entry string
}

// Build constructs a validated source graph from a normalized record.
//
// Validation happens in passes: id uniqueness, edge endpoint resolution,
// entry designation, then cycle detection over control edges. Any defect
// aborts with a MalformedSourceError naming the implicated ids.
func BuildGraph(ctx context.Context, rec *Record) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("BuildGraph: starting source graph construction.", "process", rec.Process)

	g := &Graph{
		Record: rec,
		nodes:  make(map[string]*Node, len(rec.Nodes)),
		edges:  make(map[string]*Edge, len(rec.Edges)),
		entry:  rec.EntryID,
	}

	// First pass: index nodes, rejecting duplicates.
	for i := range rec.Nodes {
		n := &rec.Nodes[i]
		if _, exists := g.nodes[n.ID]; exists {
			return nil, &MalformedSourceError{Reason: "duplicate node id", NodeIDs: []string{n.ID}}
		}
		g.nodes[n.ID] = n
	}

	// Second pass: index edges and resolve endpoints.
	for i := range rec.Edges {
		e := &rec.Edges[i]
		if _, exists := g.edges[e.ID]; exists {
			return nil, &MalformedSourceError{Reason: "duplicate edge id", EdgeIDs: []string{e.ID}}
		}
		if _, ok := g.nodes[e.From]; !ok {
			return nil, &MalformedSourceError{Reason: "edge references unknown source node", NodeIDs: []string{e.From}, EdgeIDs: []string{e.ID}}
		}
		if _, ok := g.nodes[e.To]; !ok {
			return nil, &MalformedSourceError{Reason: "edge references unknown target node", NodeIDs: []string{e.To}, EdgeIDs: []string{e.ID}}
		}
		g.edges[e.ID] = e
	}

	// Third pass: every outgoing reference must resolve to an edge that
	// actually departs from the declaring node.
	for _, n := range rec.Nodes {
		for _, edgeID := range n.Outgoing {
			e, ok := g.edges[edgeID]
			if !ok {
				return nil, &MalformedSourceError{Reason: "node references unknown outgoing edge", NodeIDs: []string{n.ID}, EdgeIDs: []string{edgeID}}
			}
			if e.From != n.ID {
				return nil, &MalformedSourceError{Reason: "outgoing edge departs from a different node", NodeIDs: []string{n.ID, e.From}, EdgeIDs: []string{edgeID}}
			}
		}
	}

	if err := g.validateEntry(); err != nil {
		return nil, err
	}
	logger.Debug("BuildGraph: entry validation passed.", "entry", g.entry)

	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("BuildGraph: cycle detection passed.", "nodes", len(g.nodes), "edges", len(g.edges))

	return g, nil
}

// validateEntry checks that the declared entry node exists and is the only
// node without incoming control edges. A second entry-like node means the
// parser handed over an ambiguous process.
func (g *Graph) validateEntry() error {
	if _, ok := g.nodes[g.entry]; !ok {
		return &MalformedSourceError{Reason: "declared entry node does not exist", NodeIDs: []string{g.entry}}
	}

	// Any incoming edge, message edges included, disqualifies a node from
	// being entry-like.
	incoming := make(map[string]int, len(g.nodes))
	for _, e := range g.edges {
		incoming[e.To]++
	}

	var rootless []string
	for id := range g.nodes {
		if incoming[id] == 0 && id != g.entry {
			rootless = append(rootless, id)
		}
	}
	if len(rootless) > 0 {
		sort.Strings(rootless)
		return &MalformedSourceError{
			Reason:  "process has more than one entry-like node",
			NodeIDs: append([]string{g.entry}, rootless...),
		}
	}
	return nil
}

// detectCycles checks for circular control-edge references using DFS. A true
// cycle cannot be expressed in the target diagramming model, so it is a
// fatal input defect. Message edges are excluded: they cross participant
// boundaries and carry no control order.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		visiting[n.ID] = true
		for _, e := range g.ControlEdgesFrom(n.ID) {
			next := g.nodes[e.To]
			if visiting[next.ID] {
				return &MalformedSourceError{Reason: "cycle detected among control edges", NodeIDs: []string{n.ID, next.ID}, EdgeIDs: []string{e.ID}}
			}
			if !visited[next.ID] {
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		delete(visiting, n.ID)
		visited[n.ID] = true
		return nil
	}

	for _, id := range g.NodeIDs() {
		if !visited[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Entry returns the designated entry node.
func (g *Graph) Entry() *Node {
	return g.nodes[g.entry]
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id string) *Edge {
	return g.edges[id]
}

// NodeIDs returns all node ids in lexical order. The stable order matters
// only for reproducible iteration; execution order comes from
// TopologicalOrder.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgesFrom returns the outgoing edges of a node in declared order.
func (g *Graph) EdgesFrom(id string) []*Edge {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	edges := make([]*Edge, 0, len(n.Outgoing))
	for _, edgeID := range n.Outgoing {
		edges = append(edges, g.edges[edgeID])
	}
	return edges
}

// ControlEdgesFrom returns the outgoing sequence and conditional edges of a
// node in declared order, skipping message edges.
func (g *Graph) ControlEdgesFrom(id string) []*Edge {
	var edges []*Edge
	for _, e := range g.EdgesFrom(id) {
		if e.Kind == EdgeMessage {
			continue
		}
		edges = append(edges, e)
	}
	return edges
}

// TopologicalOrder returns all node ids reachable from the entry in a
// deterministic topological order: a node is emitted only after all its
// control-edge predecessors, and ties are broken by the order in which
// nodes were first reached following declared edge order. Nodes not
// reachable from the entry are appended afterwards in lexical order so no
// node is ever silently dropped.
func (g *Graph) TopologicalOrder() []string {
	indegree := make(map[string]int, len(g.nodes))
	for _, e := range g.edges {
		if e.Kind == EdgeMessage {
			continue
		}
		indegree[e.To]++
	}

	var order []string
	emitted := make(map[string]bool, len(g.nodes))
	queue := []string{g.entry}
	queued := map[string]bool{g.entry: true}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		emitted[id] = true

		for _, e := range g.ControlEdgesFrom(id) {
			indegree[e.To]--
			if indegree[e.To] == 0 && !queued[e.To] {
				queue = append(queue, e.To)
				queued[e.To] = true
			}
		}
	}

	for _, id := range g.NodeIDs() {
		if !emitted[id] {
			order = append(order, id)
		}
	}
	return order
}
