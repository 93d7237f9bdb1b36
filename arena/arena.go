package arena

import (
	"unsafe"

	"github.com/hesforge/wasmloader/wasmerr"
)

// alignment is the byte alignment every allocation is rounded up to. It is
// sized to cover the worst-case alignment of values the module parser
// places in the arena (the widest field of any record is a uint64 /
// pointer-sized slice header), per the implementation note in spec.md §9.
const alignment = 8

// Arena is a bump allocator over a single reserved byte region. There is
// no per-object free: Reset reclaims everything at once, Destroy releases
// the backing region to the MemoryProvider it came from.
type Arena struct {
	provider  MemoryProvider
	data      []byte
	used      int
	destroyed bool
}

// New reserves capacity bytes from DefaultProvider and returns a fresh
// Arena. It panics if capacity is zero or the reservation fails; both are
// implementation-fatal conditions, not structural parse failures.
func New(capacity int) *Arena {
	return NewWithProvider(capacity, DefaultProvider)
}

// NewWithProvider is New with an explicit MemoryProvider, primarily for
// tests that want a heap-backed arena without depending on mmap.
func NewWithProvider(capacity int, provider MemoryProvider) *Arena {
	if capacity <= 0 {
		panic(wasmerr.New(wasmerr.PhaseArena, wasmerr.KindArenaOverflow).
			Detail("arena capacity must be greater than zero").Build())
	}
	data, err := provider.Reserve(capacity)
	if err != nil {
		panic(wasmerr.New(wasmerr.PhaseArena, wasmerr.KindArenaOverflow).
			Detail("reserve %d bytes", capacity).Cause(err).Build())
	}
	Logger().Sugar().Debugf("arena: reserved %d bytes", capacity)
	return &Arena{provider: provider, data: data}
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

func (a *Arena) checkAlive() {
	if a.destroyed {
		panic("arena: use after destroy")
	}
}

// Used returns the number of bytes bumped so far, including alignment
// padding.
func (a *Arena) Used() int { return a.used }

// Capacity returns the total number of usable bytes in the arena.
func (a *Arena) Capacity() int { return len(a.data) }

// Remaining returns the number of bytes that can still be allocated
// before Alloc would overflow.
func (a *Arena) Remaining() int {
	start := alignUp(a.used, alignment)
	if start > len(a.data) {
		return 0
	}
	return len(a.data) - start
}

// Alloc bumps used by n bytes, aligned to the arena's alignment, and
// returns the pre-bump byte range. It panics with a KindArenaOverflow
// *wasmerr.Error if doing so would exceed capacity.
func (a *Arena) Alloc(n int) []byte {
	a.checkAlive()
	if n < 0 {
		panic("arena: negative allocation size")
	}
	start := alignUp(a.used, alignment)
	if start+n > len(a.data) {
		err := wasmerr.ArenaOverflow(a.used, n, len(a.data))
		Logger().Sugar().Errorf("%v", err)
		panic(err)
	}
	a.used = start + n
	if n == 0 {
		return a.data[start:start]
	}
	return a.data[start : start+n : start+n]
}

// WriteBytes copies src into a fresh allocation and returns the arena's
// copy.
func (a *Arena) WriteBytes(src []byte) []byte {
	dst := a.Alloc(len(src))
	copy(dst, src)
	return dst
}

// Reset sets used back to zero. Every reference handed out since the
// arena was created (or last reset) becomes invalid; callers must ensure
// none are still in use.
func (a *Arena) Reset() {
	a.checkAlive()
	a.used = 0
}

// Destroy releases the arena's backing region back to its MemoryProvider.
// The arena is unusable afterwards.
func (a *Arena) Destroy() {
	a.checkAlive()
	a.provider.Unreserve(a.data)
	a.data = nil
	a.destroyed = true
}

// PushArray allocates room for count values of T and returns it as a
// slice backed directly by arena memory. It is a free function rather
// than a method because Go methods cannot introduce new type parameters
// beyond the receiver's own.
func PushArray[T any](a *Arena, count int) []T {
	if count == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * count
	buf := a.Alloc(size)
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), count)
}

// WriteValue copies v into the arena and returns a pointer to the arena's
// copy.
func WriteValue[T any](a *Arena, v T) *T {
	size := int(unsafe.Sizeof(v))
	buf := a.Alloc(size)
	p := (*T)(unsafe.Pointer(&buf[0]))
	*p = v
	return p
}
