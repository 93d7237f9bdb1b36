package wasmerr

import (
	"fmt"
	"strings"
)

// Phase indicates which stage of the load pipeline produced the error.
type Phase string

const (
	PhaseHeader   Phase = "header"   // magic/version preamble
	PhaseSection  Phase = "section"  // section id/size framing
	PhaseType     Phase = "type"     // type section
	PhaseFunction Phase = "function" // function section
	PhaseExport   Phase = "export"   // export section
	PhaseCode     Phase = "code"     // code section
	PhaseExpr     Phase = "expr"     // instruction stream decode
	PhaseArena    Phase = "arena"    // arena allocation
)

// Kind categorizes the error within its phase.
type Kind string

const (
	KindBoundsExhausted   Kind = "bounds_exhausted"   // reader ran past the end of input
	KindLEB128Exhausted   Kind = "leb128_exhausted"   // LEB128 sequence never terminated
	KindLEB128Overflow    Kind = "leb128_overflow"    // LEB128 sequence overlong for target width
	KindUnknownTag        Kind = "unknown_tag"        // section id / value-type / export-kind byte not recognized
	KindOrderingViolation Kind = "ordering_violation" // section referenced before its definition
	KindIndexOutOfRange   Kind = "index_out_of_range" // type/function index beyond its section
	KindUnknownOpcode     Kind = "unknown_opcode"     // opcode byte not in the supported set
	KindArenaOverflow     Kind = "arena_overflow"     // allocation would exceed arena capacity
)

// Error is the structured error type used by arena and wasm.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Offset int // byte offset into the input where the error was observed, -1 if not applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Phase and Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind, Offset: -1}}
}

// Offset sets the byte offset the error was observed at.
func (b *Builder) Offset(n int) *Builder {
	b.err.Offset = n
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// BoundsExhausted reports a read that would advance the reader past length.
func BoundsExhausted(offset int) *Error {
	return New(PhaseSection, KindBoundsExhausted).Offset(offset).Build()
}

// LEB128Exhausted reports a LEB128 sequence with no terminating byte.
func LEB128Exhausted(phase Phase, offset int) *Error {
	return New(phase, KindLEB128Exhausted).Offset(offset).Detail("input exhausted before continuation bit cleared").Build()
}

// LEB128Overflow reports an overlong LEB128 sequence for the target width.
func LEB128Overflow(phase Phase, offset int, bits int) *Error {
	return New(phase, KindLEB128Overflow).Offset(offset).Detail("sequence exceeds %d-bit target width", bits).Build()
}

// UnknownTag reports a tag byte (section id, value-type, export-kind) outside the enumerated set.
func UnknownTag(phase Phase, offset int, tag byte) *Error {
	return New(phase, KindUnknownTag).Offset(offset).Detail("unrecognized tag byte 0x%02x", tag).Build()
}

// OrderingViolation reports a section referencing another section that has not yet been parsed.
func OrderingViolation(phase Phase, referencedSection string) *Error {
	return New(phase, KindOrderingViolation).Detail("references %s before it was defined", referencedSection).Build()
}

// IndexOutOfRange reports an index beyond the bounds of the section it indexes into.
func IndexOutOfRange(phase Phase, what string, idx, length uint32) *Error {
	return New(phase, KindIndexOutOfRange).Detail("%s index %d out of range (section has %d entries)", what, idx, length).Build()
}

// UnknownOpcode reports an opcode byte not in the supported instruction set.
func UnknownOpcode(offset int, opcode byte) *Error {
	return New(PhaseExpr, KindUnknownOpcode).Offset(offset).Detail("unknown or unimplemented opcode 0x%02x", opcode).Build()
}

// ArenaOverflow reports an allocation that would exceed the arena's capacity.
// The arena panics with it: like a zero capacity or a failed reservation,
// it is implementation-fatal rather than a structural parse failure.
func ArenaOverflow(used, requested, capacity int) *Error {
	return New(PhaseArena, KindArenaOverflow).Detail("Arena out of memory (used=%d requested=%d capacity=%d)", used, requested, capacity).Build()
}
