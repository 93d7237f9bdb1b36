// Package wasmerr provides the structured error type shared by arena and
// wasm.
//
// Errors are categorized by Phase (where in the load pipeline the error
// occurred) and Kind (what went wrong). Structural failures - bad tags,
// out-of-range indices, ordering violations, truncated input - are
// returned as *Error values; they are never panics. Only the allocator's
// own fatal conditions (zero-capacity arena, out-of-memory) panic, and
// they do so by wrapping an *Error as well so a recover() at a CLI
// boundary can still render a useful message.
//
// Use the Builder for multi-field construction:
//
//	err := wasmerr.New(wasmerr.PhaseType, wasmerr.KindUnknownTag).
//		Detail("value-type byte 0x%02x", b).
//		Build()
//
// or one of the convenience constructors for the common cases.
package wasmerr
