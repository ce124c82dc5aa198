package source

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/crossflowio/crossflow/internal/ctxlog"
)

//go:embed record_schema.json
var recordSchema []byte

// LoadRecord reads a normalized process record from a JSON file, validates it
// against the embedded record schema, and decodes it. Schema violations are
// reported together so a broken parser hand-off surfaces every defect at
// once.
func LoadRecord(ctx context.Context, path string) (*Record, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading normalized record.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file %s: %w", path, err)
	}

	rec, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("record file %s: %w", path, err)
	}

	logger.Debug("Record loaded.", "process", rec.Process, "platform", rec.Platform,
		"nodes", len(rec.Nodes), "edges", len(rec.Edges))
	return rec, nil
}

// ParseRecord validates and decodes a normalized record from raw JSON bytes.
func ParseRecord(data []byte) (*Record, error) {
	schemaLoader := gojsonschema.NewBytesLoader(recordSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("record validation error: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, fmt.Errorf("record does not conform to schema:\n- %s", strings.Join(msgs, "\n- "))
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	return &rec, nil
}
