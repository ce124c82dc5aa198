// Package source defines the normalized representation of a legacy
// integration process as delivered by the upstream source parser, and builds
// a validated directed graph from it.
//
// The parser hands over a flat Record: nodes, edges, and a declared entry
// node id. This package never re-reads the original Mule XML or Sterling
// BPML; it only consumes the normalized JSON form. Records are validated
// against an embedded JSON Schema before any graph work happens, so a
// malformed hand-off is rejected with a precise reason instead of surfacing
// later as a confusing assembly failure.
//
// BuildGraph enforces the structural contract the downstream assembler
// relies on: exactly one entry node, no true cycles among control edges,
// and declared edge order preserved per node (it encodes branch priority).
package source
