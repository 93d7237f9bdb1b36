package binary

import (
	"encoding/binary"

	"github.com/hesforge/wasmloader/arena"
	"github.com/hesforge/wasmloader/wasmerr"
)

// Reader is a cursor over a borrowed, immutable byte slice. It owns
// nothing; it is a view. Position always satisfies 0 <= pos <= len(buf).
type Reader struct {
	buf []byte
	pos int
}

// From creates a reader positioned at the start of buf.
func From(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Position returns the current byte offset.
func (r *Reader) Position() int { return r.pos }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// CanRead reports whether position is in [0, length) - i.e. whether at
// least one more byte can be read.
func (r *Reader) CanRead() bool { return r.pos < len(r.buf) }

// Skip advances the position by n bytes. It returns an error rather than
// mutating state if doing so would overshoot the buffer.
func (r *Reader) Skip(phase wasmerr.Phase, n int) error {
	if r.pos+n > len(r.buf) {
		return wasmerr.BoundsExhausted(r.pos)
	}
	r.pos += n
	return nil
}

// GetU8 returns the byte at the current position and advances by one.
func (r *Reader) GetU8(phase wasmerr.Phase) (byte, error) {
	if !r.CanRead() {
		return 0, wasmerr.BoundsExhausted(r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// PeekU8 returns the byte at the current position without advancing.
func (r *Reader) PeekU8() (byte, bool) {
	if !r.CanRead() {
		return 0, false
	}
	return r.buf[r.pos], true
}

// leb128Error maps a decode status to the wasmerr.Kind it should raise:
// an exhausted input differs from a syntactically complete but overlong
// (overflow) one, and the two deserve distinct diagnostics.
func leb128Error(phase wasmerr.Phase, pos int, bits int, st status) error {
	if st == statusOverflow {
		return wasmerr.LEB128Overflow(phase, pos, bits)
	}
	return wasmerr.LEB128Exhausted(phase, pos)
}

// GetU32 reads an unsigned 32-bit LEB128 integer, advancing by the number
// of bytes consumed.
func (r *Reader) GetU32(phase wasmerr.Phase) (uint32, error) {
	v, n, st := DecodeU32(r.buf, r.pos)
	if st != statusOK {
		return 0, leb128Error(phase, r.pos, 32, st)
	}
	r.pos += n
	return v, nil
}

// GetU64 reads an unsigned 64-bit LEB128 integer.
func (r *Reader) GetU64(phase wasmerr.Phase) (uint64, error) {
	v, n, st := DecodeU64(r.buf, r.pos)
	if st != statusOK {
		return 0, leb128Error(phase, r.pos, 64, st)
	}
	r.pos += n
	return v, nil
}

// GetI32 reads a signed 32-bit LEB128 integer.
func (r *Reader) GetI32(phase wasmerr.Phase) (int32, error) {
	v, n, st := DecodeS32(r.buf, r.pos)
	if st != statusOK {
		return 0, leb128Error(phase, r.pos, 32, st)
	}
	r.pos += n
	return v, nil
}

// GetI64 reads a signed 64-bit LEB128 integer.
func (r *Reader) GetI64(phase wasmerr.Phase) (int64, error) {
	v, n, st := DecodeS64(r.buf, r.pos)
	if st != statusOK {
		return 0, leb128Error(phase, r.pos, 64, st)
	}
	r.pos += n
	return v, nil
}

// GetS33 reads a signed 33-bit LEB128 integer, used only for the
// blocktype type-index re-interpretation.
func (r *Reader) GetS33(phase wasmerr.Phase) (int64, error) {
	v, n, st := DecodeS33(r.buf, r.pos)
	if st != statusOK {
		return 0, leb128Error(phase, r.pos, 33, st)
	}
	r.pos += n
	return v, nil
}

// CopyBytes copies n bytes into a caller-provided sink, advancing the
// position.
func (r *Reader) CopyBytes(phase wasmerr.Phase, dest []byte) error {
	n := len(dest)
	if r.pos+n > len(r.buf) {
		return wasmerr.BoundsExhausted(r.pos)
	}
	copy(dest, r.buf[r.pos:r.pos+n])
	r.pos += n
	return nil
}

// CopyIntoArena allocates n bytes in a, copies them from the reader, and
// advances the position. It returns a reference to the arena slice.
func (r *Reader) CopyIntoArena(phase wasmerr.Phase, a *arena.Arena, n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, wasmerr.BoundsExhausted(r.pos)
	}
	dst := a.WriteBytes(r.buf[r.pos : r.pos+n])
	r.pos += n
	return dst, nil
}

// CopyIntoArenaCString is CopyIntoArena, except it allocates n+1 bytes and
// writes a trailing zero byte for host convenience.
func (r *Reader) CopyIntoArenaCString(phase wasmerr.Phase, a *arena.Arena, n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, wasmerr.BoundsExhausted(r.pos)
	}
	dst := a.Alloc(n + 1)
	copy(dst, r.buf[r.pos:r.pos+n])
	dst[n] = 0
	r.pos += n
	return dst, nil
}

// Remaining returns a view of the bytes between the current position and
// the end of the buffer, without advancing.
func (r *Reader) Remaining() []byte {
	return r.buf[r.pos:]
}

// GetU32LE reads a fixed-width little-endian uint32 (four raw bytes, no
// LEB128 decoding). Used for the magic/version preamble fields.
func (r *Reader) GetU32LE() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, wasmerr.BoundsExhausted(r.pos)
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}
