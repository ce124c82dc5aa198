package mapping

import (
	"fmt"
	"strings"
)

// validate performs the load-time consistency check over the whole table.
// Every defect is collected so a broken table surfaces all problems at once
// instead of one per run attempt.
func (t *Table) validate() error {
	var errs []string

	for _, sourceType := range t.order {
		entry := t.entries[sourceType]

		if entry.Unsupported {
			if entry.Kind != "" || entry.Role != "" || entry.Participant != nil {
				errs = append(errs, fmt.Sprintf("mapping %q: unsupported entries must not declare target, role, or emits_participant (%s)", sourceType, entry.DeclRange))
			}
			continue
		}

		if entry.Kind == "" {
			errs = append(errs, fmt.Sprintf("mapping %q: missing target kind (%s)", sourceType, entry.DeclRange))
		} else if !validKinds[entry.Kind] {
			errs = append(errs, fmt.Sprintf("mapping %q: unknown target kind %q (%s)", sourceType, entry.Kind, entry.DeclRange))
		}

		switch entry.Kind {
		case KindParticipant:
			if entry.Role == "" {
				errs = append(errs, fmt.Sprintf("mapping %q: participant entry lacks a role (%s)", sourceType, entry.DeclRange))
			} else if !validRoles[entry.Role] {
				errs = append(errs, fmt.Sprintf("mapping %q: unknown participant role %q (%s)", sourceType, entry.Role, entry.DeclRange))
			}
		default:
			if entry.Role != "" {
				errs = append(errs, fmt.Sprintf("mapping %q: role is only valid on participant entries (%s)", sourceType, entry.DeclRange))
			}
		}

		if entry.Participant != nil {
			if entry.Kind != KindServiceTask {
				errs = append(errs, fmt.Sprintf("mapping %q: emits_participant is only valid on service_task entries (%s)", sourceType, entry.DeclRange))
			}
			if entry.Participant.Role == "" {
				errs = append(errs, fmt.Sprintf("mapping %q: emits_participant lacks a role (%s)", sourceType, entry.DeclRange))
			} else if !validRoles[entry.Participant.Role] {
				errs = append(errs, fmt.Sprintf("mapping %q: emits_participant has unknown role %q (%s)", sourceType, entry.Participant.Role, entry.DeclRange))
			}
		}

		seen := make(map[string]bool, len(entry.Renames))
		targets := make(map[string]bool, len(entry.Renames))
		for _, r := range entry.Renames {
			if seen[r.From] {
				errs = append(errs, fmt.Sprintf("mapping %q: duplicate rename for key %q (%s)", sourceType, r.From, entry.DeclRange))
			}
			seen[r.From] = true
			if targets[r.To] {
				errs = append(errs, fmt.Sprintf("mapping %q: rename collision on target key %q (%s)", sourceType, r.To, entry.DeclRange))
			}
			targets[r.To] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("mapping table validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
