// Package bpmn renders a validated flow graph and its diagram into the
// target BPMN-based XML dialect and the package manifest.
//
// Rendering is pure: element ordering is fixed (process nodes, then flows,
// then participants and message flows, then diagram shapes, then diagram
// edges, each group in graph first-reference order), so repeated runs over
// identical input produce byte-identical output.
package bpmn

import "encoding/xml"

// Definitions is the document root of the target dialect.
type Definitions struct {
	XMLName xml.Name `xml:"bpmn2:definitions"`

	XMLNSBpmn2  string `xml:"xmlns:bpmn2,attr"`
	XMLNSBpmndi string `xml:"xmlns:bpmndi,attr"`
	XMLNSDc     string `xml:"xmlns:dc,attr"`
	XMLNSDi     string `xml:"xmlns:di,attr"`
	XMLNSIfl    string `xml:"xmlns:ifl,attr"`
	XMLNSXsi    string `xml:"xmlns:xsi,attr"`

	ID string `xml:"id,attr"`

	Collaboration Collaboration `xml:"bpmn2:collaboration"`
	Process       Process       `xml:"bpmn2:process"`
	Diagram       Diagram       `xml:"bpmndi:BPMNDiagram"`
}

// Collaboration holds the participants and the message flows crossing the
// process boundary.
type Collaboration struct {
	ID           string        `xml:"id,attr"`
	Name         string        `xml:"name,attr,omitempty"`
	Participants []Participant `xml:"bpmn2:participant"`
	MessageFlows []MessageFlow `xml:"bpmn2:messageFlow"`
}

// Participant is an external system endpoint. Its role travels in the
// ifl:type attribute, which the target runtime requires on every
// participant.
type Participant struct {
	ID      string `xml:"id,attr"`
	IflType string `xml:"ifl:type,attr"`
	Name    string `xml:"name,attr,omitempty"`
}

// MessageFlow is a cross-boundary edge between a service task and a
// participant.
type MessageFlow struct {
	ID        string `xml:"id,attr"`
	SourceRef string `xml:"sourceRef,attr"`
	TargetRef string `xml:"targetRef,attr"`
}

// Process holds the executable elements of the single integration process.
type Process struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`

	StartEvents       []Event        `xml:"bpmn2:startEvent"`
	ServiceTasks      []ServiceTask  `xml:"bpmn2:serviceTask"`
	ExclusiveGateways []Gateway      `xml:"bpmn2:exclusiveGateway"`
	ParallelGateways  []Gateway      `xml:"bpmn2:parallelGateway"`
	EndEvents         []Event        `xml:"bpmn2:endEvent"`
	SequenceFlows     []SequenceFlow `xml:"bpmn2:sequenceFlow"`
}

// Event is a start or end event.
type Event struct {
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name,attr,omitempty"`
	Incoming []string `xml:"bpmn2:incoming,omitempty"`
	Outgoing []string `xml:"bpmn2:outgoing,omitempty"`
}

// ServiceTask is one executable step. Its activity type and translated
// configuration travel as ifl:property extension elements.
type ServiceTask struct {
	ID         string             `xml:"id,attr"`
	Name       string             `xml:"name,attr,omitempty"`
	Extensions *ExtensionElements `xml:"bpmn2:extensionElements,omitempty"`
	Incoming   []string           `xml:"bpmn2:incoming,omitempty"`
	Outgoing   []string           `xml:"bpmn2:outgoing,omitempty"`
}

// Gateway is an exclusive or parallel routing element. Enriched
// descriptions travel the same ifl:property channel tasks use.
type Gateway struct {
	ID         string             `xml:"id,attr"`
	Name       string             `xml:"name,attr,omitempty"`
	Default    string             `xml:"default,attr,omitempty"`
	Extensions *ExtensionElements `xml:"bpmn2:extensionElements,omitempty"`
	Incoming   []string           `xml:"bpmn2:incoming,omitempty"`
	Outgoing   []string           `xml:"bpmn2:outgoing,omitempty"`
}

// SequenceFlow is a control-order edge within the process lane.
type SequenceFlow struct {
	ID        string     `xml:"id,attr"`
	SourceRef string     `xml:"sourceRef,attr"`
	TargetRef string     `xml:"targetRef,attr"`
	Condition *Condition `xml:"bpmn2:conditionExpression,omitempty"`
}

// Condition carries a translated guard expression.
type Condition struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

// ExtensionElements wraps the ifl:property list of an element.
type ExtensionElements struct {
	Properties []Property `xml:"ifl:property"`
}

// Property is one key/value extension entry.
type Property struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

// Diagram is the visual metadata section.
type Diagram struct {
	ID    string `xml:"id,attr"`
	Plane Plane  `xml:"bpmndi:BPMNPlane"`
}

// Plane anchors all shapes and edges to the collaboration.
type Plane struct {
	ID          string  `xml:"id,attr"`
	BpmnElement string  `xml:"bpmnElement,attr"`
	Shapes      []Shape `xml:"bpmndi:BPMNShape"`
	Edges       []Edge  `xml:"bpmndi:BPMNEdge"`
}

// Shape is the visual counterpart of one node.
type Shape struct {
	ID          string `xml:"id,attr"`
	BpmnElement string `xml:"bpmnElement,attr"`
	Bounds      Bounds `xml:"dc:Bounds"`
}

// Bounds is a shape rectangle.
type Bounds struct {
	X      int `xml:"x,attr"`
	Y      int `xml:"y,attr"`
	Width  int `xml:"width,attr"`
	Height int `xml:"height,attr"`
}

// Edge is the visual counterpart of one flow, as a waypoint polyline.
type Edge struct {
	ID          string     `xml:"id,attr"`
	BpmnElement string     `xml:"bpmnElement,attr"`
	Waypoints   []Waypoint `xml:"di:waypoint"`
}

// Waypoint is one point of an edge route.
type Waypoint struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
}
