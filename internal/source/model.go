package source

// EdgeKind classifies a connection between two source process steps.
type EdgeKind string

// Edge kind constants, matching the normalized record vocabulary.
const (
	EdgeSequence    EdgeKind = "sequence"
	EdgeMessage     EdgeKind = "message"
	EdgeConditional EdgeKind = "conditional"
)

// ConfigEntry is a single key/value pair of a node's configuration. The
// normalized record keeps configuration as an ordered list rather than a map
// because declaration order is significant on both legacy platforms.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Node is one step or participant of the source process. Nodes are read-only
// inputs for a transpilation run; nothing in the pipeline mutates them.
type Node struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Config   []ConfigEntry `json:"config,omitempty"`
	Outgoing []string      `json:"outgoing,omitempty"` // edge ids, declared order
}

// ConfigValue returns the value for the given configuration key and whether
// it was present.
func (n *Node) ConfigValue(key string) (string, bool) {
	for _, c := range n.Config {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// Edge is a directed connection between two source nodes. Guard is only
// meaningful for conditional edges.
type Edge struct {
	ID    string   `json:"id"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Kind  EdgeKind `json:"kind"`
	Guard string   `json:"guard,omitempty"`
}

// Record is the normalized process definition handed over by the source
// parser: the unit of one transpilation run.
type Record struct {
	Process  string `json:"process"`
	Platform string `json:"platform"`
	EntryID  string `json:"entry"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}
