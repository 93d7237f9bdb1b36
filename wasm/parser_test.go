package wasm_test

import (
	"testing"

	"github.com/hesforge/wasmloader/arena"
	"github.com/hesforge/wasmloader/wasm"
)

type heapProvider struct{}

func (heapProvider) Reserve(size int) ([]byte, error) { return make([]byte, size), nil }
func (heapProvider) Unreserve([]byte)                 {}

func newTestArena(t *testing.T, capacity int) *arena.Arena {
	t.Helper()
	return arena.NewWithProvider(capacity, heapProvider{})
}

func leb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

var preamble = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func TestParseMinimalModule(t *testing.T) {
	a := newTestArena(t, 4096)
	m, err := wasm.Parse(a, preamble)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Types) != 0 || len(m.Funcs) != 0 || len(m.Exports) != 0 || len(m.Code) != 0 {
		t.Fatalf("expected an empty module, got %+v", m)
	}
}

func TestParseInvalidMagic(t *testing.T) {
	a := newTestArena(t, 64)
	data := append([]byte{0x00, 0x00, 0x00, 0x00}, preamble[4:]...)
	if _, err := wasm.Parse(a, data); err == nil {
		t.Error("expected error for invalid magic")
	}
}

func TestParseInvalidVersion(t *testing.T) {
	a := newTestArena(t, 64)
	data := append(append([]byte{}, preamble[:4]...), 0x02, 0x00, 0x00, 0x00)
	if _, err := wasm.Parse(a, data); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	a := newTestArena(t, 64)
	if _, err := wasm.Parse(a, []byte{0x00, 0x61, 0x73}); err == nil {
		t.Error("expected error for truncated header")
	}
}

// buildTypeOnlyModule assembles a module with a single type section entry:
// (i32) -> (i32).
func buildTypeOnlyModule() []byte {
	var body []byte
	body = append(body, leb(1)...) // one type
	body = append(body, 0x60)      // func marker
	body = append(body, leb(1)...)
	body = append(body, byte(wasm.ValI32))
	body = append(body, leb(1)...)
	body = append(body, byte(wasm.ValI32))

	out := append([]byte{}, preamble...)
	out = append(out, wasm.SectionType)
	out = append(out, leb(uint32(len(body)))...)
	out = append(out, body...)
	return out
}

func TestParseTypeSectionOnly(t *testing.T) {
	a := newTestArena(t, 4096)
	m, err := wasm.Parse(a, buildTypeOnlyModule())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Types) != 1 {
		t.Fatalf("expected 1 type, got %d", len(m.Types))
	}
	ft := m.Types[0]
	if len(ft.Params) != 1 || ft.Params[0] != wasm.ValI32 {
		t.Errorf("unexpected params: %+v", ft.Params)
	}
	if len(ft.Results) != 1 || ft.Results[0] != wasm.ValI32 {
		t.Errorf("unexpected results: %+v", ft.Results)
	}
}

// buildAddExportModule assembles a minimal module with a type, a function
// referencing it, and an export named "add" pointing at that function.
func buildAddExportModule() []byte {
	var typeBody []byte
	typeBody = append(typeBody, leb(1)...)
	typeBody = append(typeBody, 0x60)
	typeBody = append(typeBody, leb(2)...)
	typeBody = append(typeBody, byte(wasm.ValI32), byte(wasm.ValI32))
	typeBody = append(typeBody, leb(1)...)
	typeBody = append(typeBody, byte(wasm.ValI32))

	var funcBody []byte
	funcBody = append(funcBody, leb(1)...)
	funcBody = append(funcBody, leb(0)...)

	var exportBody []byte
	exportBody = append(exportBody, leb(1)...)
	exportBody = append(exportBody, leb(uint32(len("add")))...)
	exportBody = append(exportBody, []byte("add")...)
	exportBody = append(exportBody, wasm.KindFunc)
	exportBody = append(exportBody, leb(0)...)

	out := append([]byte{}, preamble...)
	out = append(out, wasm.SectionType)
	out = append(out, leb(uint32(len(typeBody)))...)
	out = append(out, typeBody...)
	out = append(out, wasm.SectionFunction)
	out = append(out, leb(uint32(len(funcBody)))...)
	out = append(out, funcBody...)
	out = append(out, wasm.SectionExport)
	out = append(out, leb(uint32(len(exportBody)))...)
	out = append(out, exportBody...)
	return out
}

func TestParseTypeFunctionExportModule(t *testing.T) {
	a := newTestArena(t, 4096)
	m, err := wasm.Parse(a, buildAddExportModule())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Exports) != 1 {
		t.Fatalf("expected 1 export, got %d", len(m.Exports))
	}
	got := m.Exports[0]
	if string(got.Name) != "add\x00" {
		t.Errorf("got export name %q, want %q", got.Name, "add\x00")
	}
	if got.Kind != wasm.KindFunc || got.Idx != 0 {
		t.Errorf("unexpected export descriptor: %+v", got)
	}
}

func TestParseExportBeforeFunctionSectionIsOrderingViolation(t *testing.T) {
	var exportBody []byte
	exportBody = append(exportBody, leb(1)...)
	exportBody = append(exportBody, leb(1)...)
	exportBody = append(exportBody, []byte("f")...)
	exportBody = append(exportBody, wasm.KindFunc)
	exportBody = append(exportBody, leb(0)...)

	out := append([]byte{}, preamble...)
	out = append(out, wasm.SectionExport)
	out = append(out, leb(uint32(len(exportBody)))...)
	out = append(out, exportBody...)

	a := newTestArena(t, 4096)
	if _, err := wasm.Parse(a, out); err == nil {
		t.Error("expected ordering violation when export references an undefined function section")
	}
}

func TestParseUnknownOpcodeRejected(t *testing.T) {
	var typeBody []byte
	typeBody = append(typeBody, leb(1)...)
	typeBody = append(typeBody, 0x60, 0x00, 0x00)

	var funcBody []byte
	funcBody = append(funcBody, leb(1)...)
	funcBody = append(funcBody, leb(0)...)

	var exprBody []byte
	exprBody = append(exprBody, 0xFE) // not in the supported opcode set
	exprBody = append(exprBody, wasm.OpEnd)

	var codeEntry []byte
	codeEntry = append(codeEntry, leb(0)...) // zero locals decls
	codeEntry = append(codeEntry, exprBody...)

	var codeBody []byte
	codeBody = append(codeBody, leb(1)...)
	codeBody = append(codeBody, leb(uint32(len(codeEntry)))...)
	codeBody = append(codeBody, codeEntry...)

	out := append([]byte{}, preamble...)
	out = append(out, wasm.SectionType)
	out = append(out, leb(uint32(len(typeBody)))...)
	out = append(out, typeBody...)
	out = append(out, wasm.SectionFunction)
	out = append(out, leb(uint32(len(funcBody)))...)
	out = append(out, funcBody...)
	out = append(out, wasm.SectionCode)
	out = append(out, leb(uint32(len(codeBody)))...)
	out = append(out, codeBody...)

	a := newTestArena(t, 4096)
	if _, err := wasm.Parse(a, out); err == nil {
		t.Error("expected unknown opcode 0xFE to be rejected")
	}
}

func TestParseCodeSectionEndIsNotStored(t *testing.T) {
	var typeBody []byte
	typeBody = append(typeBody, leb(1)...)
	typeBody = append(typeBody, 0x60, 0x00, 0x00)

	var funcBody []byte
	funcBody = append(funcBody, leb(1)...)
	funcBody = append(funcBody, leb(0)...)

	var exprBody []byte
	exprBody = append(exprBody, wasm.OpNop)
	exprBody = append(exprBody, wasm.OpEnd)

	var codeEntry []byte
	codeEntry = append(codeEntry, leb(0)...)
	codeEntry = append(codeEntry, exprBody...)

	var codeBody []byte
	codeBody = append(codeBody, leb(1)...)
	codeBody = append(codeBody, leb(uint32(len(codeEntry)))...)
	codeBody = append(codeBody, codeEntry...)

	out := append([]byte{}, preamble...)
	out = append(out, wasm.SectionType)
	out = append(out, leb(uint32(len(typeBody)))...)
	out = append(out, typeBody...)
	out = append(out, wasm.SectionFunction)
	out = append(out, leb(uint32(len(funcBody)))...)
	out = append(out, funcBody...)
	out = append(out, wasm.SectionCode)
	out = append(out, leb(uint32(len(codeBody)))...)
	out = append(out, codeBody...)

	a := newTestArena(t, 4096)
	m, err := wasm.Parse(a, out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Code) != 1 {
		t.Fatalf("expected 1 code entry, got %d", len(m.Code))
	}
	body := m.Code[0].Body
	if len(body) != 1 || body[0].Opcode != wasm.OpNop {
		t.Errorf("expected exactly [nop] with end dropped, got %+v", body)
	}
}

func TestParseBlockNestingBalances(t *testing.T) {
	var typeBody []byte
	typeBody = append(typeBody, leb(1)...)
	typeBody = append(typeBody, 0x60, 0x00, 0x00)

	var funcBody []byte
	funcBody = append(funcBody, leb(1)...)
	funcBody = append(funcBody, leb(0)...)

	var exprBody []byte
	exprBody = append(exprBody, wasm.OpBlock, wasm.BlocktypeEmptyByte)
	exprBody = append(exprBody, wasm.OpNop)
	exprBody = append(exprBody, wasm.OpEnd) // closes the block
	exprBody = append(exprBody, wasm.OpEnd) // closes the function

	var codeEntry []byte
	codeEntry = append(codeEntry, leb(0)...)
	codeEntry = append(codeEntry, exprBody...)

	var codeBody []byte
	codeBody = append(codeBody, leb(1)...)
	codeBody = append(codeBody, leb(uint32(len(codeEntry)))...)
	codeBody = append(codeBody, codeEntry...)

	out := append([]byte{}, preamble...)
	out = append(out, wasm.SectionType)
	out = append(out, leb(uint32(len(typeBody)))...)
	out = append(out, typeBody...)
	out = append(out, wasm.SectionFunction)
	out = append(out, leb(uint32(len(funcBody)))...)
	out = append(out, funcBody...)
	out = append(out, wasm.SectionCode)
	out = append(out, leb(uint32(len(codeBody)))...)
	out = append(out, codeBody...)

	a := newTestArena(t, 4096)
	m, err := wasm.Parse(a, out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := m.Code[0].Body
	if len(body) != 3 {
		t.Fatalf("expected [block, nop, end] with only the top-level end dropped, got %+v", body)
	}
	if body[0].Opcode != wasm.OpBlock || body[1].Opcode != wasm.OpNop || body[2].Opcode != wasm.OpEnd {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestParseModuleCreatesOwnArena(t *testing.T) {
	m, a, err := wasm.ParseModule(buildTypeOnlyModule(), 4096)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	defer a.Destroy()
	if a.Used() == 0 {
		t.Error("expected ParseModule's arena to have allocated something")
	}
	if len(m.Types) != 1 {
		t.Errorf("expected 1 type, got %d", len(m.Types))
	}
}
