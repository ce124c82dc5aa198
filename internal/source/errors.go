package source

import (
	"fmt"
	"strings"
)

// MalformedSourceError reports a structural defect in the normalized record
// that makes transpilation impossible: a missing or ambiguous entry node, a
// dangling edge reference, a duplicate id, or a true cycle among control
// edges. It always carries the implicated node/edge ids so the caller can
// pinpoint the offending source construct.
type MalformedSourceError struct {
	Reason  string
	NodeIDs []string
	EdgeIDs []string
}

// Error implements the error interface.
func (e *MalformedSourceError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed source: ")
	sb.WriteString(e.Reason)
	if len(e.NodeIDs) > 0 {
		fmt.Fprintf(&sb, " (nodes: %s)", strings.Join(e.NodeIDs, ", "))
	}
	if len(e.EdgeIDs) > 0 {
		fmt.Fprintf(&sb, " (edges: %s)", strings.Join(e.EdgeIDs, ", "))
	}
	return sb.String()
}
