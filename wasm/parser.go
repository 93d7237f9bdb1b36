package wasm

import (
	"github.com/hesforge/wasmloader/arena"
	"github.com/hesforge/wasmloader/wasm/internal/binary"
	"github.com/hesforge/wasmloader/wasmerr"
)

// Parser holds an arena, a reader over the module bytes, and an optional
// slot per section it knows how to decode. Slots are populated in the
// order sections are encountered; the saw* flags (rather than nil-slice
// checks) distinguish "section absent" from "section present with zero
// entries" for the ordering checks in ParseNextSection and
// parseExportSection.
type Parser struct {
	Arena *arena.Arena
	r     *binary.Reader

	TypeSection     []FuncType
	FunctionSection []uint32
	ExportSection   []Export
	CodeSection     []Code

	sawType, sawFunction, sawExport, sawCode bool
}

// NewParser creates a Parser over data, allocating all structured output
// through a.
func NewParser(a *arena.Arena, data []byte) *Parser {
	return &Parser{Arena: a, r: binary.From(data)}
}

// CheckHeader reads the four-byte magic number and reports whether it
// matches "\0asm".
func (p *Parser) CheckHeader() bool {
	magic, err := p.r.GetU32LE()
	return err == nil && magic == Magic
}

// CheckVersion reads the four-byte version field and reports whether it
// matches the supported Wasm binary version.
func (p *Parser) CheckVersion() bool {
	version, err := p.r.GetU32LE()
	return err == nil && version == Version
}

// ParseNextSection reads one section header and, for a section this
// parser supports, its payload. Unsupported section ids are skipped by
// advancing the reader past their declared size.
func (p *Parser) ParseNextSection() error {
	id, err := p.r.GetU8(wasmerr.PhaseSection)
	if err != nil {
		return err
	}
	size, err := p.r.GetU32(wasmerr.PhaseSection)
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}

	start := p.r.Position()

	switch id {
	case SectionType:
		if err := p.parseTypeSection(); err != nil {
			return err
		}
	case SectionFunction:
		if !p.sawType {
			return wasmerr.OrderingViolation(wasmerr.PhaseFunction, "type section")
		}
		if err := p.parseFunctionSection(); err != nil {
			return err
		}
	case SectionExport:
		if err := p.parseExportSection(); err != nil {
			return err
		}
	case SectionCode:
		if !p.sawFunction {
			return wasmerr.OrderingViolation(wasmerr.PhaseCode, "function section")
		}
		if err := p.parseCodeSection(); err != nil {
			return err
		}
	default:
		return p.r.Skip(wasmerr.PhaseSection, int(size))
	}

	if consumed := p.r.Position() - start; consumed != int(size) {
		return wasmerr.New(wasmerr.PhaseSection, wasmerr.KindBoundsExhausted).
			Detail("section declared %d bytes, decoder consumed %d", size, consumed).Build()
	}
	return nil
}

// Parse runs the full pipeline over data: preamble check, then repeated
// ParseNextSection until the reader is exhausted. It allocates all
// structured output through a.
func Parse(a *arena.Arena, data []byte) (*Module, error) {
	p := NewParser(a, data)

	if !p.CheckHeader() {
		return nil, wasmerr.New(wasmerr.PhaseHeader, wasmerr.KindUnknownTag).
			Detail("missing \\0asm magic number").Build()
	}
	if !p.CheckVersion() {
		return nil, wasmerr.New(wasmerr.PhaseHeader, wasmerr.KindUnknownTag).
			Detail("unsupported wasm binary version").Build()
	}

	for p.r.CanRead() {
		if err := p.ParseNextSection(); err != nil {
			return nil, err
		}
	}
	return p.Module(), nil
}

// ParseModule is a convenience wrapper that creates a fresh Arena of
// arenaCapacity bytes and parses data into it. The caller owns the
// returned Arena's lifetime: Reset it for reuse, or Destroy it once the
// Module is no longer needed.
func ParseModule(data []byte, arenaCapacity int) (*Module, *arena.Arena, error) {
	a := arena.New(arenaCapacity)
	m, err := Parse(a, data)
	if err != nil {
		return nil, a, err
	}
	return m, a, nil
}

// Module assembles the parser's populated section slots into a Module.
// Sections never encountered remain nil slices.
func (p *Parser) Module() *Module {
	return &Module{
		Types:   p.TypeSection,
		Funcs:   p.FunctionSection,
		Exports: p.ExportSection,
		Code:    p.CodeSection,
	}
}

func (p *Parser) parseTypeSection() error {
	count, err := p.r.GetU32(wasmerr.PhaseType)
	if err != nil {
		return err
	}
	types := arena.PushArray[FuncType](p.Arena, int(count))
	for i := uint32(0); i < count; i++ {
		marker, err := p.r.GetU8(wasmerr.PhaseType)
		if err != nil {
			return err
		}
		if marker != FuncTypeByte {
			return wasmerr.UnknownTag(wasmerr.PhaseType, p.r.Position()-1, marker)
		}
		ft, err := p.readFuncType()
		if err != nil {
			return err
		}
		types[i] = ft
	}
	p.TypeSection = types
	p.sawType = true
	return nil
}

func (p *Parser) readFuncType() (FuncType, error) {
	params, err := p.readValTypeVec()
	if err != nil {
		return FuncType{}, err
	}
	results, err := p.readValTypeVec()
	if err != nil {
		return FuncType{}, err
	}
	return FuncType{Params: params, Results: results}, nil
}

func (p *Parser) readValTypeVec() ([]ValType, error) {
	count, err := p.r.GetU32(wasmerr.PhaseType)
	if err != nil {
		return nil, err
	}
	vec := arena.PushArray[ValType](p.Arena, int(count))
	for i := uint32(0); i < count; i++ {
		b, err := p.r.GetU8(wasmerr.PhaseType)
		if err != nil {
			return nil, err
		}
		if !IsValidValType(b) {
			return nil, wasmerr.UnknownTag(wasmerr.PhaseType, p.r.Position()-1, b)
		}
		vec[i] = ValType(b)
	}
	return vec, nil
}

func (p *Parser) parseFunctionSection() error {
	count, err := p.r.GetU32(wasmerr.PhaseFunction)
	if err != nil {
		return err
	}
	funcs := arena.PushArray[uint32](p.Arena, int(count))
	for i := uint32(0); i < count; i++ {
		idx, err := p.r.GetU32(wasmerr.PhaseFunction)
		if err != nil {
			return err
		}
		if int(idx) >= len(p.TypeSection) {
			return wasmerr.IndexOutOfRange(wasmerr.PhaseFunction, "type", idx, uint32(len(p.TypeSection)))
		}
		funcs[i] = idx
	}
	p.FunctionSection = funcs
	p.sawFunction = true
	return nil
}

func (p *Parser) parseExportSection() error {
	count, err := p.r.GetU32(wasmerr.PhaseExport)
	if err != nil {
		return err
	}
	exports := arena.PushArray[Export](p.Arena, int(count))
	for i := uint32(0); i < count; i++ {
		nameLen, err := p.r.GetU32(wasmerr.PhaseExport)
		if err != nil {
			return err
		}
		name, err := p.r.CopyIntoArenaCString(wasmerr.PhaseExport, p.Arena, int(nameLen))
		if err != nil {
			return err
		}
		kind, err := p.r.GetU8(wasmerr.PhaseExport)
		if err != nil {
			return err
		}
		switch kind {
		case KindFunc, KindTable, KindMemory, KindGlobal:
		default:
			return wasmerr.UnknownTag(wasmerr.PhaseExport, p.r.Position()-1, kind)
		}

		id, err := p.r.GetU32(wasmerr.PhaseExport)
		if err != nil {
			return err
		}
		if kind == KindFunc {
			if !p.sawFunction {
				return wasmerr.OrderingViolation(wasmerr.PhaseExport, "function section")
			}
			if int(id) >= len(p.FunctionSection) {
				return wasmerr.IndexOutOfRange(wasmerr.PhaseExport, "function", id, uint32(len(p.FunctionSection)))
			}
		}
		// table/memory/global export ids are read but not bounds-checked:
		// their defining sections are outside this loader's supported set
		// (spec.md §9 Open Question).

		exports[i] = Export{Name: name, Kind: kind, Idx: uint64(id)}
	}
	p.ExportSection = exports
	p.sawExport = true
	return nil
}

func (p *Parser) parseCodeSection() error {
	count, err := p.r.GetU32(wasmerr.PhaseCode)
	if err != nil {
		return err
	}
	code := arena.PushArray[Code](p.Arena, int(count))
	for i := uint32(0); i < count; i++ {
		size, err := p.r.GetU32(wasmerr.PhaseCode)
		if err != nil {
			return err
		}
		locals, err := p.readLocalsDecl()
		if err != nil {
			return err
		}
		body, err := p.decodeExpression()
		if err != nil {
			return err
		}
		code[i] = Code{Size: size, Locals: locals, Body: body}
	}
	p.CodeSection = code
	p.sawCode = true
	return nil
}

func (p *Parser) readLocalsDecl() ([]Locals, error) {
	count, err := p.r.GetU32(wasmerr.PhaseCode)
	if err != nil {
		return nil, err
	}
	decls := arena.PushArray[Locals](p.Arena, int(count))
	for i := uint32(0); i < count; i++ {
		n, err := p.r.GetU32(wasmerr.PhaseCode)
		if err != nil {
			return nil, err
		}
		b, err := p.r.GetU8(wasmerr.PhaseCode)
		if err != nil {
			return nil, err
		}
		if !IsValidValType(b) {
			return nil, wasmerr.UnknownTag(wasmerr.PhaseCode, p.r.Position()-1, b)
		}
		decls[i] = Locals{Count: n, Type: ValType(b)}
	}
	return decls, nil
}

// decodeExpression decodes a flat instruction sequence terminated by an
// `end` opcode at depth zero. The terminating end is not stored; this is
// the "end sentinel" convention adopted from the original source and
// recorded as an Open Question resolution in spec.md §9.
func (p *Parser) decodeExpression() ([]Instruction, error) {
	var out []Instruction
	depth := 0

exprLoop:
	for {
		opcode, err := p.r.GetU8(wasmerr.PhaseExpr)
		if err != nil {
			return nil, err
		}
		opcodePos := p.r.Position() - 1

		switch opcode {
		case OpEnd:
			if depth == 0 {
				break exprLoop
			}
			depth--
			out = append(out, Instruction{Opcode: opcode})

		case OpBlock, OpLoop, OpIf:
			bt, err := p.readBlocktype()
			if err != nil {
				return nil, err
			}
			depth++
			out = append(out, Instruction{Opcode: opcode, Block: bt})

		case OpElse,
			OpUnreachable, OpNop, OpReturn, OpDrop, OpSelect,
			OpI32Eqz, OpI32Eq, OpI32Ne,
			OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU,
			OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU,
			OpI32Add, OpRefIsNull:
			out = append(out, Instruction{Opcode: opcode})

		case OpBr, OpBrIf, OpCall, OpRefFunc,
			OpLocalGet, OpLocalSet, OpLocalTee,
			OpGlobalGet, OpGlobalSet:
			idx, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			out = append(out, Instruction{Opcode: opcode, Index: idx})

		case OpCallIndirect:
			typeIdx, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			tableIdx, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			out = append(out, Instruction{Opcode: opcode, TypeIdx: typeIdx, TableIdx: tableIdx})

		case OpI32Load, OpI64Load, OpF32Load, OpF64Load, OpI32Load8S,
			OpI32Store, OpI64Store, OpF32Store:
			align, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			offset, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			out = append(out, Instruction{Opcode: opcode, MemAlign: align, MemOffset: offset})

		case OpI32Const:
			v, err := p.r.GetI32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			out = append(out, Instruction{Opcode: opcode, I32Value: v})

		case OpI64Const:
			v, err := p.r.GetI64(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			out = append(out, Instruction{Opcode: opcode, I64Value: v})

		case OpSelectT:
			n, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			types := arena.PushArray[ValType](p.Arena, int(n))
			for i := range types {
				b, err := p.r.GetU8(wasmerr.PhaseExpr)
				if err != nil {
					return nil, err
				}
				if !IsValidValType(b) {
					return nil, wasmerr.UnknownTag(wasmerr.PhaseExpr, p.r.Position()-1, b)
				}
				types[i] = ValType(b)
			}
			out = append(out, Instruction{Opcode: opcode, SelectTypes: types})

		case OpBrTable:
			n, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			labels := arena.PushArray[uint32](p.Arena, int(n))
			for i := range labels {
				v, err := p.r.GetU32(wasmerr.PhaseExpr)
				if err != nil {
					return nil, err
				}
				labels[i] = v
			}
			def, err := p.r.GetU32(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			out = append(out, Instruction{Opcode: opcode, BrLabels: labels, BrDefault: def})

		case OpRefNull:
			b, err := p.r.GetU8(wasmerr.PhaseExpr)
			if err != nil {
				return nil, err
			}
			if ValType(b) != ValFuncRef && ValType(b) != ValExtern {
				return nil, wasmerr.UnknownTag(wasmerr.PhaseExpr, p.r.Position()-1, b)
			}
			out = append(out, Instruction{Opcode: opcode, RefHeapType: ValType(b)})

		default:
			return nil, wasmerr.UnknownOpcode(opcodePos, opcode)
		}
	}

	result := arena.PushArray[Instruction](p.Arena, len(out))
	copy(result, out)
	return result, nil
}

// readBlocktype decodes block, loop, and if's immediate: 0x40 for empty,
// a value-type tag, or - for anything else - the byte (plus any
// continuation bytes) re-interpreted as a signed 33-bit LEB128 type
// index.
func (p *Parser) readBlocktype() (Blocktype, error) {
	b, ok := p.r.PeekU8()
	if !ok {
		return Blocktype{}, wasmerr.BoundsExhausted(p.r.Position())
	}

	switch {
	case b == BlocktypeEmptyByte:
		_ = p.r.Skip(wasmerr.PhaseExpr, 1)
		return Blocktype{Kind: BlocktypeEmpty}, nil
	case IsValidValType(b):
		_ = p.r.Skip(wasmerr.PhaseExpr, 1)
		return Blocktype{Kind: BlocktypeValue, Value: ValType(b)}, nil
	default:
		idx, err := p.r.GetS33(wasmerr.PhaseExpr)
		if err != nil {
			return Blocktype{}, err
		}
		if idx < 0 {
			return Blocktype{}, wasmerr.New(wasmerr.PhaseExpr, wasmerr.KindUnknownTag).
				Offset(p.r.Position()).Detail("negative blocktype type index %d", idx).Build()
		}
		return Blocktype{Kind: BlocktypeIndex, TypeIdx: uint32(idx)}, nil
	}
}
