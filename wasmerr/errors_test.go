package wasmerr_test

import (
	"errors"
	"testing"

	"github.com/hesforge/wasmloader/wasmerr"
)

func TestErrorFormatting(t *testing.T) {
	err := wasmerr.New(wasmerr.PhaseType, wasmerr.KindUnknownTag).
		Offset(12).
		Detail("unrecognized tag byte 0x%02x", 0x99).
		Build()

	got := err.Error()
	want := "[type] unknown_tag at offset 12: unrecognized tag byte 0x99"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := wasmerr.New(wasmerr.PhaseCode, wasmerr.KindBoundsExhausted).Cause(cause).Build()

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestErrorIs(t *testing.T) {
	a := wasmerr.New(wasmerr.PhaseExpr, wasmerr.KindUnknownOpcode).Build()
	b := wasmerr.New(wasmerr.PhaseExpr, wasmerr.KindUnknownOpcode).Offset(5).Build()
	c := wasmerr.New(wasmerr.PhaseExpr, wasmerr.KindLEB128Exhausted).Build()

	if !errors.Is(a, b) {
		t.Errorf("errors with same phase/kind should match via Is")
	}
	if errors.Is(a, c) {
		t.Errorf("errors with different kind should not match via Is")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *wasmerr.Error
		kind wasmerr.Kind
	}{
		{"bounds", wasmerr.BoundsExhausted(4), wasmerr.KindBoundsExhausted},
		{"leb128 exhausted", wasmerr.LEB128Exhausted(wasmerr.PhaseType, 2), wasmerr.KindLEB128Exhausted},
		{"leb128 overflow", wasmerr.LEB128Overflow(wasmerr.PhaseFunction, 2, 32), wasmerr.KindLEB128Overflow},
		{"unknown tag", wasmerr.UnknownTag(wasmerr.PhaseType, 1, 0x99), wasmerr.KindUnknownTag},
		{"ordering", wasmerr.OrderingViolation(wasmerr.PhaseExport, "function section"), wasmerr.KindOrderingViolation},
		{"index", wasmerr.IndexOutOfRange(wasmerr.PhaseFunction, "type", 3, 2), wasmerr.KindIndexOutOfRange},
		{"opcode", wasmerr.UnknownOpcode(10, 0xFE), wasmerr.KindUnknownOpcode},
		{"arena overflow", wasmerr.ArenaOverflow(100, 50, 120), wasmerr.KindArenaOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Errorf("Error() returned empty string")
			}
		})
	}
}
