package bpmn

import (
	"bytes"
	"fmt"

	"github.com/crossflowio/crossflow/internal/flow"
)

// manifest renders the package manifest. Header order is fixed and by
// default nothing time- or run-dependent is written, so the manifest is as
// reproducible as the flow document. A non-empty runID adds the one
// opt-in volatile header, Origin-Run-Id.
func manifest(g *flow.Graph, runID string) []byte {
	slug := Slug(g.Name)

	var buf bytes.Buffer
	write := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}

	write("Manifest-Version", "1.0")
	write("Bundle-ManifestVersion", "2")
	write("Bundle-Name", g.Name)
	write("Bundle-SymbolicName", slug+"; singleton:=true")
	write("Bundle-Version", "1.0.0")
	write("Origin-Process", g.Name)
	if runID != "" {
		write("Origin-Run-Id", runID)
	}

	return buf.Bytes()
}
