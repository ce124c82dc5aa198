package flow

import "fmt"

// idAllocator hands out stable, human-readable element ids. Counters are
// per prefix and ids are allocated in first-reference order, which makes a
// re-run over the same input produce identical ids.
type idAllocator struct {
	counters map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{counters: make(map[string]int)}
}

// next returns the next id for the given prefix, e.g. "ServiceTask_3".
func (a *idAllocator) next(prefix string) string {
	a.counters[prefix]++
	return fmt.Sprintf("%s_%d", prefix, a.counters[prefix])
}

// idPrefix maps a node kind to its id prefix.
func idPrefix(kind NodeKind) string {
	switch kind {
	case KindStartEvent:
		return "StartEvent"
	case KindEndEvent:
		return "EndEvent"
	case KindServiceTask:
		return "ServiceTask"
	case KindGateway:
		return "ExclusiveGateway"
	case KindParallelGateway:
		return "ParallelGateway"
	case KindParticipant:
		return "Participant"
	default:
		return "Element"
	}
}
