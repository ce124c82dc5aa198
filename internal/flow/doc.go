// Package flow defines the target flow graph model and the assembler that
// projects a validated source graph onto it.
//
// The assembler walks the source graph in deterministic topological order,
// maps every node through the component mapping table, and re-creates the
// connections: control edges become sequence flows, edges into external
// endpoints become message flows between a service task and a participant,
// and conditional fan-out is routed through gateways whose branch order
// preserves the declared source edge order. Source nodes without a mapping
// entry become visible, annotated placeholder tasks; a node is never
// silently dropped.
//
// All generated identifiers are allocated from per-kind counters in
// first-reference order, so assembling the same source graph twice yields
// an identical target graph.
package flow
