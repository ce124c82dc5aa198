package source

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// linearRecord builds the simplest useful fixture: A -> B -> C in sequence.
func linearRecord() *Record {
	return &Record{
		Process:  "linear",
		Platform: "mule",
		EntryID:  "A",
		Nodes: []Node{
			{ID: "A", Type: "http-listener", Outgoing: []string{"e1"}},
			{ID: "B", Type: "xslt", Outgoing: []string{"e2"}},
			{ID: "C", Type: "http-respond"},
		},
		Edges: []Edge{
			{ID: "e1", From: "A", To: "B", Kind: EdgeSequence},
			{ID: "e2", From: "B", To: "C", Kind: EdgeSequence},
		},
	}
}

func TestBuildGraph_Linear(t *testing.T) {
	t.Parallel()

	g, err := BuildGraph(context.Background(), linearRecord())
	require.NoError(t, err)

	require.Equal(t, "A", g.Entry().ID)
	require.NotNil(t, g.Node("B"))
	require.Nil(t, g.Node("Z"))
	require.NotNil(t, g.Edge("e1"))

	if diff := cmp.Diff([]string{"A", "B", "C"}, g.TopologicalOrder()); diff != "" {
		t.Errorf("topological order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGraph_DuplicateIDs(t *testing.T) {
	t.Parallel()

	t.Run("duplicate node id", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Nodes = append(rec.Nodes, Node{ID: "B", Type: "logger"})

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "duplicate node id")
	})

	t.Run("duplicate edge id", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Edges = append(rec.Edges, Edge{ID: "e1", From: "B", To: "C", Kind: EdgeSequence})

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "duplicate edge id")
	})
}

func TestBuildGraph_DanglingReferences(t *testing.T) {
	t.Parallel()

	t.Run("edge to unknown node", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Edges[1].To = "ghost"

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "edge references unknown target node")
	})

	t.Run("node references unknown edge", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Nodes[2].Outgoing = []string{"ghost"}

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "node references unknown outgoing edge")
	})

	t.Run("outgoing edge departs elsewhere", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		// C claims e1, but e1 departs from A.
		rec.Nodes[2].Outgoing = []string{"e1"}

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "outgoing edge departs from a different node")
	})
}

func TestBuildGraph_EntryValidation(t *testing.T) {
	t.Parallel()

	t.Run("entry does not exist", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.EntryID = "ghost"

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "declared entry node does not exist")
	})

	t.Run("second rootless node", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Nodes = append(rec.Nodes, Node{ID: "X", Type: "logger"})

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "more than one entry-like node")

		var malformed *MalformedSourceError
		require.True(t, errors.As(err, &malformed))
		require.Contains(t, malformed.NodeIDs, "X")
	})

	t.Run("message-fed node is not entry-like", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Nodes = append(rec.Nodes, Node{ID: "Q", Type: "queue"})
		rec.Nodes[2].Outgoing = []string{"m1"}
		rec.Edges = append(rec.Edges, Edge{ID: "m1", From: "C", To: "Q", Kind: EdgeMessage})

		_, err := BuildGraph(context.Background(), rec)
		require.NoError(t, err)
	})
}

func TestBuildGraph_CycleDetection(t *testing.T) {
	t.Parallel()

	t.Run("control cycle is fatal", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Nodes[2].Outgoing = []string{"e3"}
		rec.Edges = append(rec.Edges, Edge{ID: "e3", From: "C", To: "A", Kind: EdgeSequence})

		_, err := BuildGraph(context.Background(), rec)
		requireMalformed(t, err, "cycle detected among control edges")
	})

	t.Run("message edge back-reference is not a cycle", func(t *testing.T) {
		t.Parallel()
		rec := linearRecord()
		rec.Nodes[2].Outgoing = []string{"m1"}
		rec.Edges = append(rec.Edges, Edge{ID: "m1", From: "C", To: "A", Kind: EdgeMessage})

		_, err := BuildGraph(context.Background(), rec)
		require.NoError(t, err)
	})
}

func TestTopologicalOrder_BranchAndMerge(t *testing.T) {
	t.Parallel()

	// A fans out to B and C (declared in that order), both merge into D.
	rec := &Record{
		Process:  "diamond",
		Platform: "mule",
		EntryID:  "A",
		Nodes: []Node{
			{ID: "A", Type: "choice", Outgoing: []string{"e1", "e2"}},
			{ID: "B", Type: "xslt", Outgoing: []string{"e3"}},
			{ID: "C", Type: "logger", Outgoing: []string{"e4"}},
			{ID: "D", Type: "http-respond"},
		},
		Edges: []Edge{
			{ID: "e1", From: "A", To: "B", Kind: EdgeConditional, Guard: "${route}"},
			{ID: "e2", From: "A", To: "C", Kind: EdgeConditional},
			{ID: "e3", From: "B", To: "D", Kind: EdgeSequence},
			{ID: "e4", From: "C", To: "D", Kind: EdgeSequence},
		},
	}

	g, err := BuildGraph(context.Background(), rec)
	require.NoError(t, err)

	// D comes last because it waits on both predecessors; B precedes C
	// because edge declaration order is the tie-break.
	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, g.TopologicalOrder()); diff != "" {
		t.Errorf("topological order mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, g.EdgesFrom("A"), 2)
	require.Len(t, g.ControlEdgesFrom("A"), 2)
	require.Empty(t, g.EdgesFrom("D"))
}

func TestTopologicalOrder_UnreachableNodesAppended(t *testing.T) {
	t.Parallel()

	// Q is fed only by a message edge and is unreachable via control flow;
	// it must still appear in the order, after the reachable nodes.
	rec := linearRecord()
	rec.Nodes = append(rec.Nodes, Node{ID: "Q", Type: "queue"})
	rec.Nodes[2].Outgoing = []string{"m1"}
	rec.Edges = append(rec.Edges, Edge{ID: "m1", From: "C", To: "Q", Kind: EdgeMessage})

	g, err := BuildGraph(context.Background(), rec)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"A", "B", "C", "Q"}, g.TopologicalOrder()); diff != "" {
		t.Errorf("topological order mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedSourceError_Message(t *testing.T) {
	t.Parallel()

	err := &MalformedSourceError{
		Reason:  "duplicate node id",
		NodeIDs: []string{"A", "B"},
		EdgeIDs: []string{"e1"},
	}
	require.Equal(t, "malformed source: duplicate node id (nodes: A, B) (edges: e1)", err.Error())
}

// requireMalformed asserts that err is a MalformedSourceError with the
// given reason.
func requireMalformed(t *testing.T, err error, reason string) {
	t.Helper()

	require.Error(t, err)
	var malformed *MalformedSourceError
	require.True(t, errors.As(err, &malformed), "expected MalformedSourceError, got %T: %v", err, err)
	require.Equal(t, reason, malformed.Reason)
}
