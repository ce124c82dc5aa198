package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_HelpExitsCleanly(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	require.NoError(t, run(out, []string{"-h"}))
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_InvalidFlagReturnsExitError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, []string{"-log-format", "xml", "records/"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log-format")
}

func TestRun_TranspilesARecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	mappingsDir := filepath.Join(dir, "mappings")
	require.NoError(t, os.Mkdir(mappingsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(mappingsDir, "table.hcl"), []byte(`
		mapping "http-listener" {
			target        = "service_task"
			activity_type = "HTTPReceiver"
		}
	`), 0644))

	recordPath := filepath.Join(dir, "record.json")
	require.NoError(t, os.WriteFile(recordPath, []byte(`{
		"process": "solo",
		"platform": "mule",
		"entry": "A",
		"nodes": [{"id": "A", "type": "http-listener"}]
	}`), 0644))

	outDir := filepath.Join(dir, "out")
	err := run(&bytes.Buffer{}, []string{
		"-mappings", mappingsDir,
		"-out", outDir,
		recordPath,
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "solo", "META-INF", "MANIFEST.MF"))
	require.NoError(t, err)
}
