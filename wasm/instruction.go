package wasm

// Instruction is a single decoded operation: an opcode byte plus a flat
// set of immediate fields, only a subset of which is meaningful for any
// given Opcode. This is a tagged struct rather than a tagged union
// behind an interface: Instruction values are bulk-copied into
// arena-backed memory (arena.PushArray), whose backing store is never
// scanned by the garbage collector. An `any` field would box each
// concrete immediate into its own heap allocation reachable only through
// a pointer sitting in that unscanned memory - invisible to the
// collector, and so a use-after-free hazard. Every field here is either
// a plain value or a slice whose backing array was itself allocated
// from the same arena as the Instruction slice it lives in, so nothing
// here depends on the GC tracing into arena memory: the arena's single
// backing allocation is kept alive as one unit for as long as the
// owning Arena is reachable.
type Instruction struct {
	Opcode byte

	// Block is populated for block, loop, and if.
	Block Blocktype

	// Index is populated for br, br_if, call, ref.func, local.get/set/tee,
	// and global.get/set - they share one field because Opcode already
	// disambiguates which index space it names.
	Index uint32

	// TypeIdx and TableIdx are populated for call_indirect.
	TypeIdx  uint32
	TableIdx uint32

	// MemAlign and MemOffset are populated for every load/store
	// instruction (the memarg immediate).
	MemAlign  uint32
	MemOffset uint32

	// I32Value is populated for i32.const.
	I32Value int32

	// I64Value is populated for i64.const.
	I64Value int64

	// SelectTypes is populated for the typed `select t*` form: an
	// explicit result value-type vector, arena-owned.
	SelectTypes []ValType

	// BrLabels and BrDefault are populated for br_table: a label vector
	// plus the default label taken when the index is out of range.
	BrLabels  []uint32
	BrDefault uint32

	// RefHeapType is populated for ref.null: the heap type being nulled,
	// encoded as a reference-type byte (FuncRef or ExternRef).
	RefHeapType ValType
}
