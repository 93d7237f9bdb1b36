package wasm

// Magic and Version are the fixed four-byte preamble fields every Wasm
// binary module must begin with.
const (
	Magic   uint32 = 0x6D736100 // "\0asm" little-endian
	Version uint32 = 0x00000001
)

// Section ids. Sections the parser does not interpret (everything except
// Type, Function, Export, Code) are skipped by advancing the reader past
// their declared size.
const (
	SectionCustom    byte = 0
	SectionType      byte = 1
	SectionImport    byte = 2
	SectionFunction  byte = 3
	SectionTable     byte = 4
	SectionMemory    byte = 5
	SectionGlobal    byte = 6
	SectionExport    byte = 7
	SectionStart     byte = 8
	SectionElement   byte = 9
	SectionCode      byte = 10
	SectionData      byte = 11
	SectionDataCount byte = 12
)

// ValType is a WebAssembly value-type tag. The supported set is the
// closed Wasm 1.0 set named in spec.md §3; any other byte is rejected.
type ValType byte

const (
	ValI32     ValType = 0x7F
	ValI64     ValType = 0x7E
	ValF32     ValType = 0x7D
	ValF64     ValType = 0x7C
	ValV128    ValType = 0x7B
	ValFuncRef ValType = 0x70
	ValExtern  ValType = 0x6F
)

// IsValidValType reports whether b decodes to one of the supported
// value-type tags.
func IsValidValType(b byte) bool {
	switch ValType(b) {
	case ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValExtern:
		return true
	default:
		return false
	}
}

// FuncTypeByte is the marker byte that must prefix every type-section
// entry.
const FuncTypeByte byte = 0x60

// Export descriptor kinds.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
)

// Blocktype sentinel byte: an empty block signature.
const BlocktypeEmptyByte byte = 0x40

// Blocktype kinds, tagging which field of Blocktype is populated.
const (
	BlocktypeEmpty byte = iota
	BlocktypeValue
	BlocktypeIndex
)

// Control flow and parametric opcodes (§6's minimum required set).
const (
	OpUnreachable  byte = 0x00
	OpNop          byte = 0x01
	OpBlock        byte = 0x02
	OpLoop         byte = 0x03
	OpIf           byte = 0x04
	OpElse         byte = 0x05
	OpEnd          byte = 0x0B
	OpBr           byte = 0x0C
	OpBrIf         byte = 0x0D
	OpBrTable      byte = 0x0E
	OpReturn       byte = 0x0F
	OpCall         byte = 0x10
	OpCallIndirect byte = 0x11
	OpDrop         byte = 0x1A
	OpSelect       byte = 0x1B
	OpSelectT      byte = 0x1C
)

// Variable and global access opcodes.
const (
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
)

// Memory access opcodes (memarg-carrying subset named in §6).
const (
	OpI32Load    byte = 0x28
	OpI64Load    byte = 0x29
	OpF32Load    byte = 0x2A
	OpF64Load    byte = 0x2B
	OpI32Load8S  byte = 0x2C
	OpI32Store   byte = 0x36
	OpI64Store   byte = 0x37
	OpF32Store   byte = 0x38
)

// Numeric constant opcodes.
const (
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
)

// i32 comparison and equality-to-zero family, plus i32.add - all
// no-immediate.
const (
	OpI32Eqz  byte = 0x45
	OpI32Eq   byte = 0x46
	OpI32Ne   byte = 0x47
	OpI32LtS  byte = 0x48
	OpI32LtU  byte = 0x49
	OpI32GtS  byte = 0x4A
	OpI32GtU  byte = 0x4B
	OpI32LeS  byte = 0x4C
	OpI32LeU  byte = 0x4D
	OpI32GeS  byte = 0x4E
	OpI32GeU  byte = 0x4F
	OpI32Add  byte = 0x6A
)

// Reference-type opcodes.
const (
	OpRefNull   byte = 0xD0
	OpRefIsNull byte = 0xD1
	OpRefFunc   byte = 0xF2
)
