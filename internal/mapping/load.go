package mapping

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/crossflowio/crossflow/internal/ctxlog"
	"github.com/crossflowio/crossflow/internal/fsutil"
)

// Load reads every .hcl mapping file under the given paths, decodes the
// mapping blocks, and returns a validated, immutable Table. Malformed or
// inconsistent entries abort the load with all defects reported together.
func Load(ctx context.Context, paths ...string) (*Table, error) {
	logger := ctxlog.FromContext(ctx)

	var filePaths []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtension(p, ".hcl")
		if err != nil {
			logger.Error("Failed to walk mapping path.", "path", p, "error", err)
			return nil, err
		}
		filePaths = append(filePaths, found...)
	}
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no .hcl mapping files found under %v", paths)
	}
	logger.Debug("Found mapping files to load.", "files", filePaths)

	table := &Table{entries: make(map[string]*Entry)}
	parser := hclparse.NewParser()

	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse mapping file %s: %w", filePath, diags)
		}
		if err := loadFile(hclFile, table); err != nil {
			return nil, fmt.Errorf("mapping file %s: %w", filePath, err)
		}
	}

	if err := table.validate(); err != nil {
		return nil, err
	}

	logger.Info("Mapping table loaded.", "entries", table.Len(), "files", len(filePaths))
	return table, nil
}

// loadFile decodes all mapping blocks of one parsed HCL file into the table.
func loadFile(file *hcl.File, table *Table) error {
	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return diags
	}

	for _, block := range content.Blocks {
		sourceType := block.Labels[0]
		if prev, exists := table.entries[sourceType]; exists {
			return fmt.Errorf("duplicate mapping for source type %q (first declared at %s, redeclared at %s)",
				sourceType, prev.DeclRange, block.DefRange)
		}

		var raw entrySchema
		if diags := gohcl.DecodeBody(block.Body, nil, &raw); diags.HasErrors() {
			return fmt.Errorf("mapping %q: %w", sourceType, diags)
		}

		entry, err := buildEntry(sourceType, &raw, block.DefRange)
		if err != nil {
			return err
		}

		table.entries[sourceType] = entry
		table.order = append(table.order, sourceType)
	}
	return nil
}

// buildEntry translates the decoded HCL schema into the immutable Entry model.
func buildEntry(sourceType string, raw *entrySchema, declRange hcl.Range) (*Entry, error) {
	entry := &Entry{
		SourceType:   sourceType,
		Kind:         TargetKind(raw.Target),
		ActivityType: raw.ActivityType,
		Role:         Role(raw.Role),
		Unsupported:  raw.Unsupported,
		DeclRange:    declRange,
	}

	if raw.Rename != nil {
		pairs, err := orderedAttributes(raw.Rename.Body)
		if err != nil {
			return nil, fmt.Errorf("mapping %q rename block: %w", sourceType, err)
		}
		for _, p := range pairs {
			entry.Renames = append(entry.Renames, Rename{From: p.key, To: p.value})
		}
	}

	if raw.Defaults != nil {
		pairs, err := orderedAttributes(raw.Defaults.Body)
		if err != nil {
			return nil, fmt.Errorf("mapping %q defaults block: %w", sourceType, err)
		}
		for _, p := range pairs {
			entry.Defaults = append(entry.Defaults, Default{Key: p.key, Value: p.value})
		}
	}

	if raw.EmitsParticipant != nil {
		entry.Participant = &ParticipantSpec{
			Role:    Role(raw.EmitsParticipant.Role),
			NameKey: raw.EmitsParticipant.NameKey,
		}
	}

	return entry, nil
}

// attrPair is one evaluated key = value attribute of a rename or defaults
// block, remembering its source position for ordering.
type attrPair struct {
	key   string
	value string
	pos   int
}

// orderedAttributes evaluates the free-form attributes of a block body and
// returns them in declaration order. HCL attribute maps are unordered, so
// declaration order is recovered from source ranges; the order matters
// because renames and defaults apply deterministically first-declared-first.
func orderedAttributes(body hcl.Body) ([]attrPair, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	pairs := make([]attrPair, 0, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		str, err := ctyToString(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		pairs = append(pairs, attrPair{key: name, value: str, pos: attr.Range.Start.Byte})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })
	return pairs, nil
}

// ctyToString renders a cty value (string, number, or bool) as the string
// form used in target configuration.
func ctyToString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", fmt.Errorf("value must not be null")
	}
	conv, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("value is not convertible to string: %w", err)
	}
	return conv.AsString(), nil
}
