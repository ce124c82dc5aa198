package integration_tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crossflowio/crossflow/internal/testutil"
)

// basicMappings is the shared mapping table for the end-to-end tests.
const basicMappings = `
	mapping "http-listener" {
		target        = "service_task"
		activity_type = "HTTPReceiver"
	}

	mapping "xslt" {
		target        = "service_task"
		activity_type = "XSLTMapping"
	}

	mapping "http-respond" {
		target        = "service_task"
		activity_type = "HTTPResponse"
	}

	mapping "queue-write" {
		target        = "service_task"
		activity_type = "JMSSend"

		rename {
			queue = "destination"
		}

		emits_participant {
			role     = "EndpointReceiver"
			name_key = "destination"
		}
	}
`

func TestTranspile_LinearProcessEndToEnd(t *testing.T) {
	t.Parallel()

	result := testutil.RunTranspile(t, map[string]string{
		"mappings/table.hcl": basicMappings,
		"records/linear.json": `{
			"process": "linear-flow",
			"platform": "mule",
			"entry": "A",
			"nodes": [
				{"id": "A", "type": "http-listener", "outgoing": ["e1"]},
				{"id": "B", "type": "xslt", "outgoing": ["e2"]},
				{"id": "C", "type": "http-respond"}
			],
			"edges": [
				{"id": "e1", "from": "A", "to": "B", "kind": "sequence"},
				{"id": "e2", "from": "B", "to": "C", "kind": "sequence"}
			]
		}`,
	})
	require.NoError(t, result.Err)

	doc := string(testutil.ReadPackageFile(t, result,
		"linear-flow/src/main/resources/scenarioflows/integrationflow/linear-flow.iflw"))

	require.Equal(t, 3, strings.Count(doc, "<bpmn2:serviceTask "))
	require.Contains(t, doc, "HTTPReceiver")
	require.Contains(t, doc, "XSLTMapping")
	require.Contains(t, doc, "HTTPResponse")
	require.NotContains(t, doc, "<bpmn2:participant")

	mf := string(testutil.ReadPackageFile(t, result, "linear-flow/META-INF/MANIFEST.MF"))
	require.Contains(t, mf, "Bundle-Name: linear-flow")
}

func TestTranspile_DecomposingProcessEndToEnd(t *testing.T) {
	t.Parallel()

	result := testutil.RunTranspile(t, map[string]string{
		"mappings/table.hcl": basicMappings,
		"records/writer.json": `{
			"process": "writer",
			"platform": "mule",
			"entry": "A",
			"nodes": [
				{"id": "A", "type": "http-listener", "outgoing": ["e1"]},
				{"id": "W", "type": "queue-write", "config": [{"key": "queue", "value": "Inbox"}]}
			],
			"edges": [
				{"id": "e1", "from": "A", "to": "W", "kind": "sequence"}
			]
		}`,
	})
	require.NoError(t, result.Err)

	doc := string(testutil.ReadPackageFile(t, result,
		"writer/src/main/resources/scenarioflows/integrationflow/writer.iflw"))

	require.Contains(t, doc, `ifl:type="EndpointReceiver"`)
	require.Contains(t, doc, `name="Inbox"`)
	require.Contains(t, doc, "<bpmn2:messageFlow")
	require.Contains(t, doc, "<key>destination</key>")
}

func TestTranspile_BatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	// One good record, one with a dangling edge. The batch must write the
	// good package and report the bad record in the summary error.
	result := testutil.RunTranspile(t, map[string]string{
		"mappings/table.hcl": basicMappings,
		"records/good.json": `{
			"process": "good",
			"platform": "mule",
			"entry": "A",
			"nodes": [{"id": "A", "type": "http-listener"}],
			"edges": []
		}`,
		"records/bad.json": `{
			"process": "bad",
			"platform": "mule",
			"entry": "A",
			"nodes": [{"id": "A", "type": "http-listener", "outgoing": ["e1"]}],
			"edges": [{"id": "e1", "from": "A", "to": "ghost", "kind": "sequence"}]
		}`,
	})

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "1 of 2 records failed to transpile")
	require.Contains(t, result.Err.Error(), "bad.json")

	testutil.ReadPackageFile(t, result, "good/META-INF/MANIFEST.MF")
}

func TestTranspile_UnsupportedTypeWarnsInLogs(t *testing.T) {
	t.Parallel()

	result := testutil.RunTranspile(t, map[string]string{
		"mappings/table.hcl": basicMappings,
		"records/mystery.json": `{
			"process": "mystery",
			"platform": "mule",
			"entry": "A",
			"nodes": [
				{"id": "A", "type": "http-listener", "outgoing": ["e1"]},
				{"id": "X", "type": "telepathy"}
			],
			"edges": [{"id": "e1", "from": "A", "to": "X", "kind": "sequence"}]
		}`,
	})
	require.NoError(t, result.Err)

	require.Contains(t, result.LogOutput, "telepathy")
	require.Contains(t, result.LogOutput, "placeholder")

	doc := string(testutil.ReadPackageFile(t, result,
		"mystery/src/main/resources/scenarioflows/integrationflow/mystery.iflw"))
	require.Contains(t, doc, "<key>unsupported</key>")
}

func TestTranspile_EmptyInputDirIsANoop(t *testing.T) {
	t.Parallel()

	result := testutil.RunTranspile(t, map[string]string{
		"mappings/table.hcl": basicMappings,
		"records/.keep":      "",
	})
	require.NoError(t, result.Err)
	require.Contains(t, result.LogOutput, "No record files found")
}

func TestTranspile_BrokenMappingTableFailsStartup(t *testing.T) {
	t.Parallel()

	result := testutil.RunTranspile(t, map[string]string{
		"mappings/table.hcl": `mapping "a" { target = "lane" }`,
		"records/r.json": `{
			"process": "p", "platform": "mule", "entry": "A",
			"nodes": [{"id": "A", "type": "http-listener"}]
		}`,
	})
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "failed to load mapping table")
	require.Contains(t, result.Err.Error(), `unknown target kind "lane"`)
}
