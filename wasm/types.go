package wasm

// FuncType is a function signature: an optional parameter sequence and
// an optional result sequence, both arena-owned.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Export binds a name to an item in one of the module's index spaces.
// Name is arena-owned, UTF-8, and zero-terminated for host convenience.
type Export struct {
	Name []byte
	Kind byte
	Idx  uint64
}

// Locals is a single run-length compressed local declaration: Count
// consecutive locals of Type.
type Locals struct {
	Count uint32
	Type  ValType
}

// Code is one function body: its declared size in bytes (recorded as read;
// the decoder does not use it to bound or skip the body), its locals
// declarations, and its decoded expression.
type Code struct {
	Locals []Locals
	Body   []Instruction
	Size   uint32
}

// Blocktype is the immediate of block, loop, and if: either empty, a
// single value-type, or a signed type index into the type section.
type Blocktype struct {
	Kind    byte // BlocktypeEmpty, BlocktypeValue, or BlocktypeIndex
	Value   ValType
	TypeIdx uint32
}

// Module is the in-memory result of a successful parse. Every slice is
// backed by the Arena the Parser that produced it was created with; the
// slices remain valid exactly as long as that Arena lives.
type Module struct {
	Types    []FuncType // from the type section
	Funcs    []uint32   // from the function section: type index per declared function
	Exports  []Export
	Code     []Code
}
