// Package mapping implements the component mapping table: the declarative,
// auditable translation rules from legacy source component types to target
// flow component types.
//
// Tables are authored as HCL files (one `mapping` block per source type) and
// loaded once per process run. Loading is strict: duplicate source types,
// invalid target kinds, missing participant roles, and rename collisions are
// all reported at load time, never masked until a transpilation trips over
// them. After load the table is immutable and safe for concurrent reads.
//
// Map performs the per-node translation: exact-match lookup, configuration
// key renaming, default injection, and rewriting of source platform
// reference expressions into the target reference syntax. Unknown source
// types yield a typed UnsupportedTypeError; the assembler decides what to
// do with it (it emits a visible placeholder, never drops the node).
package mapping
