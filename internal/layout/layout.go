// Package layout assigns deterministic diagram coordinates to an assembled
// flow graph.
//
// The algorithm is a plain layered layout: a node's column is its longest
// control-path distance from the start event, its row is the order in which
// same-column nodes were first referenced during assembly. Participants are
// placed in a dedicated lane below the execution lane, aligned with the
// service task they exchange messages with. There is no force simulation
// and no obstacle avoidance; correctness of the shape/edge anchoring takes
// priority over aesthetics, and identical graphs always produce identical
// coordinates.
package layout

import (
	"github.com/crossflowio/crossflow/internal/flow"
)

// Grid constants. Columns and lanes are fixed so tests can assert exact
// coordinates.
const (
	originX = 40
	laneY   = 100

	columnWidth = 160
	rowHeight   = 120

	participantLaneY   = 360
	participantRowStep = 170
)

// Shape is the visual counterpart of one target node.
type Shape struct {
	NodeID string
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the shape's center point.
func (s *Shape) Center() Point {
	return Point{X: s.X + s.Width/2, Y: s.Y + s.Height/2}
}

// Point is a diagram coordinate.
type Point struct {
	X int
	Y int
}

// Edge is the visual counterpart of one target edge: its routed waypoints.
type Edge struct {
	EdgeID    string
	Waypoints []Point
}

// Diagram holds the visual metadata of one flow graph.
type Diagram struct {
	Shapes []*Shape
	Edges  []Edge

	shapeByNode map[string]*Shape
}

// ShapeFor returns the shape of a node, or nil.
func (d *Diagram) ShapeFor(nodeID string) *Shape {
	return d.shapeByNode[nodeID]
}

// nodeSize returns the fixed dimensions for a node kind.
func nodeSize(kind flow.NodeKind) (w, h int) {
	switch kind {
	case flow.KindStartEvent, flow.KindEndEvent:
		return 32, 32
	case flow.KindGateway, flow.KindParallelGateway:
		return 40, 40
	case flow.KindParticipant:
		return 100, 140
	default:
		return 100, 60
	}
}

// Layout computes shapes and edge routes for the graph. It is a pure
// function of node/edge identity and topology.
func Layout(g *flow.Graph) *Diagram {
	d := &Diagram{shapeByNode: make(map[string]*Shape, len(g.Nodes))}

	columns := columnOf(g)

	// Execution-lane nodes: column by topological depth, row by
	// first-reference order within the column.
	rowsUsed := make(map[int]int)
	for _, n := range g.Nodes {
		if n.IsParticipant() {
			continue
		}
		col := columns[n.ID]
		row := rowsUsed[col]
		rowsUsed[col]++

		w, h := nodeSize(n.Kind)
		// Center shapes of differing heights on the lane axis.
		d.addShape(n.ID, originX+col*columnWidth+(columnWidth-w)/2, laneY+row*rowHeight+(60-h)/2, w, h)
	}

	// Participants: aligned with their message-flow peer, stacked within
	// the participant lane when a column hosts several.
	partRows := make(map[int]int)
	for _, n := range g.Nodes {
		if !n.IsParticipant() {
			continue
		}
		col := 0
		if peer := messagePeer(g, n.ID); peer != "" {
			col = columns[peer]
		}
		row := partRows[col]
		partRows[col]++

		w, h := nodeSize(n.Kind)
		d.addShape(n.ID, originX+col*columnWidth+(columnWidth-w)/2, participantLaneY+row*participantRowStep, w, h)
	}

	for _, e := range g.Edges {
		d.Edges = append(d.Edges, Edge{
			EdgeID:    e.ID,
			Waypoints: route(d.ShapeFor(e.From), d.ShapeFor(e.To)),
		})
	}

	return d
}

func (d *Diagram) addShape(nodeID string, x, y, w, h int) {
	s := &Shape{NodeID: nodeID, X: x, Y: y, Width: w, Height: h}
	d.Shapes = append(d.Shapes, s)
	d.shapeByNode[nodeID] = s
}

// columnOf computes each execution node's column as its longest sequence
// flow distance from the start event. The graph is acyclic, so relaxing
// edges in topological order converges in one pass over a node ordering
// obtained by repeated relaxation.
func columnOf(g *flow.Graph) map[string]int {
	cols := make(map[string]int, len(g.Nodes))

	// Longest-path relaxation. Sequence flows only; message flows do not
	// advance the column.
	changed := true
	for changed {
		changed = false
		for _, e := range g.Edges {
			if e.Kind != flow.EdgeSequenceFlow {
				continue
			}
			if next := cols[e.From] + 1; next > cols[e.To] {
				cols[e.To] = next
				changed = true
			}
		}
	}
	return cols
}

// messagePeer finds the non-participant endpoint of the first message flow
// touching the given participant.
func messagePeer(g *flow.Graph, participantID string) string {
	for _, e := range g.Edges {
		if e.Kind != flow.EdgeMessageFlow {
			continue
		}
		if e.From == participantID {
			return e.To
		}
		if e.To == participantID {
			return e.From
		}
	}
	return ""
}

// route computes the waypoints between two shapes: a straight line when the
// shapes share an axis, otherwise a single elbow. Endpoints always lie on
// the shape boundaries.
func route(from, to *Shape) []Point {
	if from == nil || to == nil {
		return nil
	}
	fc, tc := from.Center(), to.Center()

	switch {
	case fc.Y == tc.Y && tc.X >= fc.X:
		// Straight horizontal, left to right.
		return []Point{{X: from.X + from.Width, Y: fc.Y}, {X: to.X, Y: tc.Y}}
	case fc.Y == tc.Y:
		// Straight horizontal, right to left.
		return []Point{{X: from.X, Y: fc.Y}, {X: to.X + to.Width, Y: tc.Y}}
	case fc.X == tc.X && tc.Y >= fc.Y:
		// Straight vertical, downwards.
		return []Point{{X: fc.X, Y: from.Y + from.Height}, {X: tc.X, Y: to.Y}}
	case fc.X == tc.X:
		// Straight vertical, upwards.
		return []Point{{X: fc.X, Y: from.Y}, {X: tc.X, Y: to.Y + to.Height}}
	case tc.Y > fc.Y:
		// Elbow: out of the right or left side, then down into the top.
		start := Point{X: from.X + from.Width, Y: fc.Y}
		if tc.X < fc.X {
			start = Point{X: from.X, Y: fc.Y}
		}
		return []Point{start, {X: tc.X, Y: fc.Y}, {X: tc.X, Y: to.Y}}
	default:
		// Elbow upwards.
		start := Point{X: from.X + from.Width, Y: fc.Y}
		if tc.X < fc.X {
			start = Point{X: from.X, Y: fc.Y}
		}
		return []Point{start, {X: tc.X, Y: fc.Y}, {X: tc.X, Y: to.Y + to.Height}}
	}
}
