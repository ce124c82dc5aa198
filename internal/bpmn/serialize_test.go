package bpmn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crossflowio/crossflow/internal/flow"
	"github.com/crossflowio/crossflow/internal/layout"
	"github.com/crossflowio/crossflow/internal/mapping"
	"github.com/crossflowio/crossflow/internal/source"
)

// fixtureGraph builds a graph covering every element type the serializer
// renders: events, a task with config, a gateway with a guarded and a
// default branch, and a messaging participant.
func fixtureGraph() *flow.Graph {
	g := flow.NewGraph("Order Intake")
	g.AddNode(&flow.Node{ID: "StartEvent_1", Kind: flow.KindStartEvent, Name: "Start"})
	g.AddNode(&flow.Node{ID: "ServiceTask_1", Kind: flow.KindServiceTask, Name: "A", ActivityType: "JMSSend",
		Config: []source.ConfigEntry{{Key: "destination", Value: "Inbox"}}})
	g.AddNode(&flow.Node{ID: "ExclusiveGateway_1", Kind: flow.KindGateway, Name: "route"})
	g.AddNode(&flow.Node{ID: "ServiceTask_2", Kind: flow.KindServiceTask, Name: "B", ActivityType: "Logger"})
	g.AddNode(&flow.Node{ID: "EndEvent_1", Kind: flow.KindEndEvent, Name: "End"})
	g.AddNode(&flow.Node{ID: "Participant_1", Kind: flow.KindParticipant, Name: "Inbox", Role: mapping.RoleEndpointReceiver})

	g.AddEdge(&flow.Edge{ID: "SequenceFlow_1", Kind: flow.EdgeSequenceFlow, From: "StartEvent_1", To: "ServiceTask_1"})
	g.AddEdge(&flow.Edge{ID: "SequenceFlow_2", Kind: flow.EdgeSequenceFlow, From: "ServiceTask_1", To: "ExclusiveGateway_1"})
	g.AddEdge(&flow.Edge{ID: "SequenceFlow_3", Kind: flow.EdgeSequenceFlow, From: "ExclusiveGateway_1", To: "ServiceTask_2", Guard: "{{amount}} > 100"})
	g.AddEdge(&flow.Edge{ID: "SequenceFlow_4", Kind: flow.EdgeSequenceFlow, From: "ExclusiveGateway_1", To: "EndEvent_1", Default: true})
	g.AddEdge(&flow.Edge{ID: "SequenceFlow_5", Kind: flow.EdgeSequenceFlow, From: "ServiceTask_2", To: "EndEvent_1"})
	g.AddEdge(&flow.Edge{ID: "MessageFlow_1", Kind: flow.EdgeMessageFlow, From: "ServiceTask_1", To: "Participant_1"})
	g.EntryID = "StartEvent_1"
	return g
}

func renderFixture(t *testing.T) (*Package, string) {
	t.Helper()

	g := fixtureGraph()
	pkg, err := Serialize(g, layout.Layout(g), "")
	require.NoError(t, err)

	doc, ok := pkg.Files["src/main/resources/scenarioflows/integrationflow/Order_Intake.iflw"]
	require.True(t, ok, "flow document missing, files: %v", pkg.FileNames())
	return pkg, string(doc)
}

func TestSerialize_PackageLayout(t *testing.T) {
	t.Parallel()

	pkg, _ := renderFixture(t)
	require.Equal(t, []string{
		"META-INF/MANIFEST.MF",
		"src/main/resources/scenarioflows/integrationflow/Order_Intake.iflw",
	}, pkg.FileNames())
}

func TestSerialize_FlowDocument(t *testing.T) {
	t.Parallel()

	_, doc := renderFixture(t)

	require.True(t, strings.HasPrefix(doc, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>"))
	require.True(t, strings.HasSuffix(doc, "\n"))

	// Fixed document skeleton ids.
	require.Contains(t, doc, `id="Definitions_1"`)
	require.Contains(t, doc, `<bpmn2:collaboration id="Collaboration_1"`)
	require.Contains(t, doc, `<bpmn2:process id="Process_1"`)
	require.Contains(t, doc, `bpmnElement="Collaboration_1"`)

	// The participant carries its role as the ifl type attribute.
	require.Contains(t, doc, `<bpmn2:participant id="Participant_1" ifl:type="EndpointReceiver" name="Inbox">`)

	// The task's activity type and translated config surface as properties.
	require.Contains(t, doc, "<key>activityType</key>")
	require.Contains(t, doc, "<value>JMSSend</value>")
	require.Contains(t, doc, "<key>destination</key>")
	require.Contains(t, doc, "<value>Inbox</value>")

	// Guarded branch keeps its condition; the fallthrough is the default.
	require.Contains(t, doc, `xsi:type="bpmn2:tFormalExpression"`)
	require.Contains(t, doc, "{{amount}} &gt; 100")
	require.Contains(t, doc, `default="SequenceFlow_4"`)

	// Every node has a shape and every edge a diagram edge.
	for _, id := range []string{"StartEvent_1", "ServiceTask_1", "ExclusiveGateway_1", "ServiceTask_2", "EndEvent_1", "Participant_1"} {
		require.Contains(t, doc, `<bpmndi:BPMNShape id="BPMNShape_`+id+`"`)
	}
	for _, id := range []string{"SequenceFlow_1", "SequenceFlow_2", "SequenceFlow_3", "SequenceFlow_4", "SequenceFlow_5", "MessageFlow_1"} {
		require.Contains(t, doc, `<bpmndi:BPMNEdge id="BPMNEdge_`+id+`"`)
	}
}

func TestSerialize_GatewayDescriptionRenders(t *testing.T) {
	t.Parallel()

	g := fixtureGraph()
	g.Node("ExclusiveGateway_1").Description = "Routes orders by amount."

	pkg, err := Serialize(g, layout.Layout(g), "")
	require.NoError(t, err)

	doc := string(pkg.Files["src/main/resources/scenarioflows/integrationflow/Order_Intake.iflw"])
	gw := doc[strings.Index(doc, "<bpmn2:exclusiveGateway"):]
	gw = gw[:strings.Index(gw, "</bpmn2:exclusiveGateway>")]
	require.Contains(t, gw, "<key>description</key>")
	require.Contains(t, gw, "<value>Routes orders by amount.</value>")
}

func TestSerialize_ElementOrdering(t *testing.T) {
	t.Parallel()

	_, doc := renderFixture(t)

	// Collaboration before process, process before diagram; within the
	// plane, shapes before edges.
	collab := strings.Index(doc, "<bpmn2:collaboration")
	process := strings.Index(doc, "<bpmn2:process")
	diagram := strings.Index(doc, "<bpmndi:BPMNDiagram")
	firstShape := strings.Index(doc, "<bpmndi:BPMNShape")
	firstEdge := strings.Index(doc, "<bpmndi:BPMNEdge")

	require.True(t, collab < process, "collaboration must precede the process")
	require.True(t, process < diagram, "process must precede the diagram")
	require.True(t, firstShape < firstEdge, "shapes must precede diagram edges")
}

func TestSerialize_ByteIdenticalReRuns(t *testing.T) {
	t.Parallel()

	g := fixtureGraph()
	first, err := Serialize(g, layout.Layout(g), "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		g := fixtureGraph()
		again, err := Serialize(g, layout.Layout(g), "")
		require.NoError(t, err)

		require.Equal(t, first.FileNames(), again.FileNames())
		for _, name := range first.FileNames() {
			require.Equal(t, first.Files[name], again.Files[name], "file %s differs between runs", name)
		}
	}
}

func TestSerialize_Manifest(t *testing.T) {
	t.Parallel()

	pkg, _ := renderFixture(t)
	mf := string(pkg.Files["META-INF/MANIFEST.MF"])

	want := "Manifest-Version: 1.0\r\n" +
		"Bundle-ManifestVersion: 2\r\n" +
		"Bundle-Name: Order Intake\r\n" +
		"Bundle-SymbolicName: Order_Intake; singleton:=true\r\n" +
		"Bundle-Version: 1.0.0\r\n" +
		"Origin-Process: Order Intake\r\n"
	require.Equal(t, want, mf)
}

func TestSerialize_ManifestWithRunID(t *testing.T) {
	t.Parallel()

	g := fixtureGraph()
	pkg, err := Serialize(g, layout.Layout(g), "run-123")
	require.NoError(t, err)

	mf := string(pkg.Files["META-INF/MANIFEST.MF"])
	require.True(t, strings.HasSuffix(mf, "Origin-Process: Order Intake\r\nOrigin-Run-Id: run-123\r\n"))
}

func TestSlug(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		want string
	}{
		{"Order Intake", "Order_Intake"},
		{"already_safe-1", "already_safe-1"},
		{"  padded  ", "padded"},
		{"päy/löad", "p_y_l_ad"},
		{"///", "flow"},
		{"", "flow"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.want, Slug(tc.name), "Slug(%q)", tc.name)
	}
}
