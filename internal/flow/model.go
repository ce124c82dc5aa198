package flow

import (
	"github.com/crossflowio/crossflow/internal/mapping"
	"github.com/crossflowio/crossflow/internal/source"
)

// NodeKind is the closed enumeration of target node kinds.
type NodeKind string

// Node kind constants.
const (
	KindStartEvent      NodeKind = "startEvent"
	KindEndEvent        NodeKind = "endEvent"
	KindServiceTask     NodeKind = "serviceTask"
	KindGateway         NodeKind = "exclusiveGateway"
	KindParallelGateway NodeKind = "parallelGateway"
	KindParticipant     NodeKind = "participant"
)

// Node is one element of the assembled target graph. Nodes live for the
// duration of one transpilation run and are then serialized and discarded.
type Node struct {
	ID           string
	Kind         NodeKind
	Name         string
	ActivityType string
	// Role is set only on participant nodes, always from the mapping
	// table's closed enumeration.
	Role   mapping.Role
	Config []source.ConfigEntry
	// Description is filled only by the external description generator;
	// the core never writes it.
	Description string
	// Unsupported marks a visible placeholder emitted for a source type
	// without a mapping entry.
	Unsupported bool
	// SourceID is the originating source node id, empty for synthesized
	// nodes (events, fan-out gateways).
	SourceID string
}

// IsParticipant reports whether the node sits outside the execution lane.
func (n *Node) IsParticipant() bool {
	return n.Kind == KindParticipant
}

// EdgeKind distinguishes control-order edges from cross-boundary messaging.
type EdgeKind string

// Edge kind constants.
const (
	EdgeSequenceFlow EdgeKind = "sequenceFlow"
	EdgeMessageFlow  EdgeKind = "messageFlow"
)

// Edge is one connection of the assembled target graph.
type Edge struct {
	ID   string
	Kind EdgeKind
	From string
	To   string
	// Guard carries the translated condition of a conditional source edge.
	Guard string
	// Default marks the unguarded fallthrough branch of a gateway.
	Default bool
}

// Graph is the assembled target flow graph.
type Graph struct {
	Name string
	// Nodes in first-reference order; the layout engine uses this order as
	// its stable tie-break.
	Nodes []*Node
	Edges []*Edge
	// EntryID is the id of the start event.
	EntryID string

	nodesByID map[string]*Node
	edgesByID map[string]*Edge
}

// NewGraph returns an empty target graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:      name,
		nodesByID: make(map[string]*Node),
		edgesByID: make(map[string]*Edge),
	}
}

// AddNode appends a node to the graph.
func (g *Graph) AddNode(n *Node) {
	g.Nodes = append(g.Nodes, n)
	g.nodesByID[n.ID] = n
}

// AddEdge appends an edge to the graph.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
	g.edgesByID[e.ID] = e
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodesByID[id]
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id string) *Edge {
	return g.edgesByID[id]
}

// Outgoing returns the edges departing from a node, in creation order.
func (g *Graph) Outgoing(id string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges arriving at a node, in creation order.
func (g *Graph) Incoming(id string) []*Edge {
	var in []*Edge
	for _, e := range g.Edges {
		if e.To == id {
			in = append(in, e)
		}
	}
	return in
}
