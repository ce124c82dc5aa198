package mapping

import (
	"github.com/hashicorp/hcl/v2"
)

// fileSchema describes the top-level structure of a mapping table HCL file:
// any number of `mapping "<source-type>" { ... }` blocks.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "mapping", LabelNames: []string{"source_type"}},
	},
}

// entrySchema represents the body of a single mapping block.
type entrySchema struct {
	Target       string `hcl:"target,optional"`
	ActivityType string `hcl:"activity_type,optional"`
	Role         string `hcl:"role,optional"`
	Unsupported  bool   `hcl:"unsupported,optional"`

	Rename           *attrBlock        `hcl:"rename,block"`
	Defaults         *attrBlock        `hcl:"defaults,block"`
	EmitsParticipant *participantBlock `hcl:"emits_participant,block"`
}

// attrBlock captures a block whose attributes are free-form key = value
// pairs (the rename table and the default values).
type attrBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// participantBlock represents the `emits_participant` block of a
// decomposing entry.
type participantBlock struct {
	Role    string `hcl:"role"`
	NameKey string `hcl:"name_key,optional"`
}
