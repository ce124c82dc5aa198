package mapping

import (
	"fmt"

	"github.com/crossflowio/crossflow/internal/source"
)

// UnsupportedTypeError reports that a source component type has no usable
// mapping entry. It is recoverable: the assembler reacts by emitting a
// visible placeholder node rather than dropping the step.
type UnsupportedTypeError struct {
	SourceType string
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no mapping for source component type %q", e.SourceType)
}

// Result is the outcome of mapping one source node.
type Result struct {
	Kind         TargetKind
	ActivityType string
	// Role is set when Kind is KindParticipant.
	Role Role
	// Participant is set for decomposing service task entries.
	Participant *ParticipantSpec
	// Config is the translated configuration in deterministic order:
	// source keys first (declared order, renamed), then injected defaults.
	Config []source.ConfigEntry
	// Warnings lists configuration values whose reference syntax was not
	// recognized and passed through as literals.
	Warnings []string
}

// Map translates a source component type and its configuration into the
// target component shape. Lookup is exact-match; renaming, default
// injection, and reference rewriting follow the matched entry
// deterministically, so the same input always yields the same result.
func (t *Table) Map(sourceType string, config []source.ConfigEntry) (*Result, error) {
	entry := t.entries[sourceType]
	if entry == nil || entry.Unsupported {
		return nil, &UnsupportedTypeError{SourceType: sourceType}
	}

	res := &Result{
		Kind:         entry.Kind,
		ActivityType: entry.ActivityType,
		Role:         entry.Role,
		Participant:  entry.Participant,
	}

	renames := make(map[string]string, len(entry.Renames))
	for _, r := range entry.Renames {
		renames[r.From] = r.To
	}

	present := make(map[string]bool, len(config))
	for _, c := range config {
		key := c.Key
		if renamed, ok := renames[key]; ok {
			key = renamed
		}
		value, recognized := RewriteValue(c.Value)
		if !recognized {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("type %q, key %q: unrecognized reference expression %q passed through as literal", sourceType, key, c.Value))
		}
		res.Config = append(res.Config, source.ConfigEntry{Key: key, Value: value})
		present[key] = true
	}

	// Defaults fill only the gaps; a value carried over from the source
	// always wins.
	for _, d := range entry.Defaults {
		if present[d.Key] {
			continue
		}
		res.Config = append(res.Config, source.ConfigEntry{Key: d.Key, Value: d.Value})
	}

	return res, nil
}
