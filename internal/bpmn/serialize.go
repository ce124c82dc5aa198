package bpmn

import (
	"encoding/xml"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/crossflowio/crossflow/internal/flow"
	"github.com/crossflowio/crossflow/internal/layout"
)

// Namespace URIs of the target dialect.
const (
	nsBpmn2  = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	nsBpmndi = "http://www.omg.org/spec/BPMN/20100524/DI"
	nsDc     = "http://www.omg.org/spec/DD/20100524/DC"
	nsDi     = "http://www.omg.org/spec/DD/20100524/DI"
	nsIfl    = "http:///com.sap.ifl.model/Ifl.xsd"
	nsXsi    = "http://www.w3.org/2001/XMLSchema-instance"
)

// flowFileDir is where the flow document lives inside the package.
const flowFileDir = "src/main/resources/scenarioflows/integrationflow"

// Package is the rendered target artifact: file path to content.
type Package struct {
	Files map[string][]byte
}

// FileNames returns the package's file paths in sorted order.
func (p *Package) FileNames() []string {
	names := make([]string, 0, len(p.Files))
	for name := range p.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serialize renders a validated graph and diagram into the target package.
// The caller is expected to have run structural validation; Serialize only
// renders. A non-empty runID is stamped into the manifest; passing ""
// keeps the whole package byte-reproducible.
func Serialize(g *flow.Graph, d *layout.Diagram, runID string) (*Package, error) {
	doc := buildDefinitions(g, d)

	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to render flow document: %w", err)
	}
	content := append([]byte(xml.Header), body...)
	content = append(content, '\n')

	slug := Slug(g.Name)
	return &Package{
		Files: map[string][]byte{
			path.Join(flowFileDir, slug+".iflw"): content,
			"META-INF/MANIFEST.MF":               manifest(g, runID),
		},
	}, nil
}

// buildDefinitions projects the graph and diagram onto the XML document
// model with the fixed element ordering.
func buildDefinitions(g *flow.Graph, d *layout.Diagram) *Definitions {
	doc := &Definitions{
		XMLNSBpmn2:  nsBpmn2,
		XMLNSBpmndi: nsBpmndi,
		XMLNSDc:     nsDc,
		XMLNSDi:     nsDi,
		XMLNSIfl:    nsIfl,
		XMLNSXsi:    nsXsi,
		ID:          "Definitions_1",
		Collaboration: Collaboration{
			ID:   "Collaboration_1",
			Name: g.Name,
		},
		Process: Process{
			ID:   "Process_1",
			Name: g.Name,
		},
		Diagram: Diagram{
			ID: "BPMNDiagram_1",
			Plane: Plane{
				ID:          "BPMNPlane_1",
				BpmnElement: "Collaboration_1",
			},
		},
	}

	// Nodes, grouped by element type, each group in first-reference order.
	for _, n := range g.Nodes {
		switch n.Kind {
		case flow.KindStartEvent:
			doc.Process.StartEvents = append(doc.Process.StartEvents, Event{
				ID: n.ID, Name: n.Name, Incoming: incomingIDs(g, n.ID), Outgoing: outgoingIDs(g, n.ID),
			})
		case flow.KindEndEvent:
			doc.Process.EndEvents = append(doc.Process.EndEvents, Event{
				ID: n.ID, Name: n.Name, Incoming: incomingIDs(g, n.ID), Outgoing: outgoingIDs(g, n.ID),
			})
		case flow.KindServiceTask:
			doc.Process.ServiceTasks = append(doc.Process.ServiceTasks, ServiceTask{
				ID: n.ID, Name: n.Name, Extensions: nodeExtensions(n),
				Incoming: incomingIDs(g, n.ID), Outgoing: outgoingIDs(g, n.ID),
			})
		case flow.KindGateway:
			doc.Process.ExclusiveGateways = append(doc.Process.ExclusiveGateways, Gateway{
				ID: n.ID, Name: n.Name, Default: defaultFlow(g, n.ID),
				Extensions: nodeExtensions(n),
				Incoming:   incomingIDs(g, n.ID), Outgoing: outgoingIDs(g, n.ID),
			})
		case flow.KindParallelGateway:
			doc.Process.ParallelGateways = append(doc.Process.ParallelGateways, Gateway{
				ID: n.ID, Name: n.Name, Extensions: nodeExtensions(n),
				Incoming: incomingIDs(g, n.ID), Outgoing: outgoingIDs(g, n.ID),
			})
		case flow.KindParticipant:
			doc.Collaboration.Participants = append(doc.Collaboration.Participants, Participant{
				ID: n.ID, IflType: string(n.Role), Name: n.Name,
			})
		}
	}

	// Flows after nodes.
	for _, e := range g.Edges {
		switch e.Kind {
		case flow.EdgeSequenceFlow:
			sf := SequenceFlow{ID: e.ID, SourceRef: e.From, TargetRef: e.To}
			if e.Guard != "" {
				sf.Condition = &Condition{Type: "bpmn2:tFormalExpression", Value: e.Guard}
			}
			doc.Process.SequenceFlows = append(doc.Process.SequenceFlows, sf)
		case flow.EdgeMessageFlow:
			doc.Collaboration.MessageFlows = append(doc.Collaboration.MessageFlows, MessageFlow{
				ID: e.ID, SourceRef: e.From, TargetRef: e.To,
			})
		}
	}

	// Diagram section last: shapes then edges, in layout emission order
	// (which mirrors graph order).
	for _, s := range d.Shapes {
		doc.Diagram.Plane.Shapes = append(doc.Diagram.Plane.Shapes, Shape{
			ID:          "BPMNShape_" + s.NodeID,
			BpmnElement: s.NodeID,
			Bounds:      Bounds{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height},
		})
	}
	for _, de := range d.Edges {
		edge := Edge{ID: "BPMNEdge_" + de.EdgeID, BpmnElement: de.EdgeID}
		for _, wp := range de.Waypoints {
			edge.Waypoints = append(edge.Waypoints, Waypoint{X: wp.X, Y: wp.Y})
		}
		doc.Diagram.Plane.Edges = append(doc.Diagram.Plane.Edges, edge)
	}

	return doc
}

// nodeExtensions renders a node's activity type, description, and
// translated configuration as ifl properties. Gateways carry at most a
// description; the other keys are only ever set on service tasks.
func nodeExtensions(n *flow.Node) *ExtensionElements {
	var props []Property
	if n.ActivityType != "" {
		props = append(props, Property{Key: "activityType", Value: n.ActivityType})
	}
	if n.Description != "" {
		props = append(props, Property{Key: "description", Value: n.Description})
	}
	if n.Unsupported {
		props = append(props, Property{Key: "unsupported", Value: "true"})
	}
	for _, c := range n.Config {
		props = append(props, Property{Key: c.Key, Value: c.Value})
	}
	if len(props) == 0 {
		return nil
	}
	return &ExtensionElements{Properties: props}
}

// incomingIDs lists a node's incoming sequence flow ids in creation order.
func incomingIDs(g *flow.Graph, nodeID string) []string {
	var ids []string
	for _, e := range g.Incoming(nodeID) {
		if e.Kind == flow.EdgeSequenceFlow {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// outgoingIDs lists a node's outgoing sequence flow ids in creation order.
func outgoingIDs(g *flow.Graph, nodeID string) []string {
	var ids []string
	for _, e := range g.Outgoing(nodeID) {
		if e.Kind == flow.EdgeSequenceFlow {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// defaultFlow returns the id of a gateway's default branch, if any.
func defaultFlow(g *flow.Graph, nodeID string) string {
	for _, e := range g.Outgoing(nodeID) {
		if e.Kind == flow.EdgeSequenceFlow && e.Default {
			return e.ID
		}
	}
	return ""
}

var slugRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Slug renders a process name as a file/bundle safe identifier.
func Slug(name string) string {
	s := slugRe.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "flow"
	}
	return s
}
