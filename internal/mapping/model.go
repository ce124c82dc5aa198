package mapping

import (
	"github.com/hashicorp/hcl/v2"
)

// TargetKind is the closed set of logical component kinds a mapping entry
// may produce. New source types are additive table entries, not new code
// paths, so this enumeration only grows when the target dialect itself does.
type TargetKind string

// Target kind constants.
const (
	KindServiceTask TargetKind = "service_task"
	KindParticipant TargetKind = "participant"
	KindGateway     TargetKind = "gateway"
	KindEvent       TargetKind = "event"
)

// Role is the closed enumeration of participant roles the target runtime
// accepts. A participant-producing entry must declare exactly one; the role
// is never inferred from graph structure.
type Role string

// Participant role constants.
const (
	RoleSender           Role = "Sender"
	RoleReceiver         Role = "Receiver"
	RoleEndpointSender   Role = "EndpointSender"
	RoleEndpointReceiver Role = "EndpointReceiver"
)

// validRoles is the lookup used by load-time validation.
var validRoles = map[Role]bool{
	RoleSender:           true,
	RoleReceiver:         true,
	RoleEndpointSender:   true,
	RoleEndpointReceiver: true,
}

// validKinds is the lookup used by load-time validation.
var validKinds = map[TargetKind]bool{
	KindServiceTask: true,
	KindParticipant: true,
	KindGateway:     true,
	KindEvent:       true,
}

// Rename maps one source configuration key to its target key.
type Rename struct {
	From string
	To   string
}

// Default is a target configuration value injected when the source
// configuration does not provide the key.
type Default struct {
	Key   string
	Value string
}

// ParticipantSpec describes the participant a decomposing entry emits next
// to its service task, and the message flow between them.
type ParticipantSpec struct {
	// Role the emitted participant carries.
	Role Role
	// NameKey optionally names the source configuration key whose value
	// becomes the participant's display name (e.g. the queue name).
	NameKey string
}

// Entry is one loaded mapping rule: source type in, target shape out.
type Entry struct {
	SourceType   string
	Kind         TargetKind
	ActivityType string
	// Role is set only for entries with Kind == KindParticipant.
	Role        Role
	Renames     []Rename
	Defaults    []Default
	Participant *ParticipantSpec
	Unsupported bool

	// DeclRange is where the entry was declared, for load-time diagnostics.
	DeclRange hcl.Range
}

// Table is the full component mapping table for one run. It is immutable
// after Load and safe for concurrent readers.
type Table struct {
	entries map[string]*Entry
	order   []string // source types in load order
}

// Lookup returns the entry for a source type, or nil.
func (t *Table) Lookup(sourceType string) *Entry {
	return t.entries[sourceType]
}

// SourceTypes returns all mapped source types in load order.
func (t *Table) SourceTypes() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}
