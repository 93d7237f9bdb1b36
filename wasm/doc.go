// Package wasm decodes Wasm 1.0 binary modules into an in-memory
// representation backed by an arena.Arena. It covers the type, function,
// export, and code sections plus their instruction stream; every other
// section is structurally skipped rather than interpreted.
//
// Decoding is purely structural: opcodes and indices are checked for
// well-formedness (known tags, in-range indices, balanced block nesting)
// but type-checking, control-flow validation beyond nesting, and
// execution are out of scope. Structural failures surface as
// *wasmerr.Error values carrying a phase and kind, plus the byte offset
// of the failing read or tag where one is recorded (ordering and
// index-range errors carry none). Arena exhaustion is not returned: a
// declared count too large for the arena makes the arena panic.
package wasm
