// Package testutil provides shared helpers for exercising the transpiler
// in tests: a thread-safe log buffer, fixture writers, and an end-to-end
// harness that runs a full batch over temporary files.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crossflowio/crossflow/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles materializes the given relative-path -> content map under a
// fresh temporary directory and returns its root.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return tmpDir
}

// HarnessResult holds the outcomes of an end-to-end transpilation run.
type HarnessResult struct {
	LogOutput string
	Err       error
	OutputDir string
	App       *app.App
}

// RunTranspile provides a standardized harness for end-to-end tests. The
// files map uses relative paths: entries under "records/" are treated as
// input records and entries under "mappings/" as mapping tables.
func RunTranspile(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunTranspileWithContext(context.Background(), t, files)
}

// RunTranspileWithContext runs the harness with a caller-provided context.
func RunTranspileWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	tmpDir := WriteFiles(t, files)
	outDir := filepath.Join(tmpDir, "out")

	appConfig, err := app.NewConfig(app.Config{
		InputPath:     filepath.Join(tmpDir, "records"),
		MappingsPath:  filepath.Join(tmpDir, "mappings"),
		OutputDir:     outDir,
		EnrichTimeout: 5 * time.Second,
		Workers:       4,
		LogFormat:     "text",
		LogLevel:      "debug",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}

	testApp, err := app.New(logBuffer, appConfig)
	if err != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       err,
			OutputDir: outDir,
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("CROSSFLOW_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		OutputDir: outDir,
		App:       testApp,
	}
}

// ReadPackageFile reads a file written by the harness under the output
// directory, failing the test when it does not exist.
func ReadPackageFile(t *testing.T, result *HarnessResult, relPath string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(result.OutputDir, filepath.FromSlash(relPath)))
	require.NoError(t, err, "expected package file %s to exist", relPath)
	return data
}
