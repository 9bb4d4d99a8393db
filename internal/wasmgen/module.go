package wasmgen

// sectionID identifies a wasm module section (Core spec §5.5.2).
type sectionID byte

const (
	secType     sectionID = 1
	secImport   sectionID = 2
	secFunction sectionID = 3
	secTable    sectionID = 4
	secMemory   sectionID = 5
	secGlobal   sectionID = 6
	secExport   sectionID = 7
	secStart    sectionID = 8
	secElement  sectionID = 9
	secCode     sectionID = 10
	secData     sectionID = 11
)

// FuncType is one entry of the type section.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is one entry of the import section. This module only imports
// functions (the runtime's rts_fn_imports, §6.2); memory/table/global
// imports are not needed since jankgo owns and exports its own memory.
type Import struct {
	Module, Name string
	TypeIndex    uint32
}

// Global is one entry of the global section.
type Global struct {
	Type    ValType
	Mutable bool
	InitI32 int32
}

// Export is one entry of the export section.
type Export struct {
	Name string
	Kind byte // 0=func, 1=table, 2=mem, 3=global
	Index uint32
}

// Func is one function: its type index plus its already-encoded,
// length-unprefixed body (locals vector + instruction stream + End).
type Func struct {
	TypeIndex uint32
	Body      []byte
}

const (
	ExportFunc   byte = 0x00
	ExportTable  byte = 0x01
	ExportMemory byte = 0x02
	ExportGlobal byte = 0x03
)

// Module accumulates the pieces of a wasm binary in declaration order, then
// Encode lays them out into the canonical section order (§4.6: type,
// import, function, memory, global, export, code, data).
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []Func
	Globals []Global
	Exports []Export
	Memory  MemoryLimits
	Data    []DataSegment
}

// MemoryLimits is the single memory this module declares (§4.6.2): an
// initial page count and, if HasMax, a maximum.
type MemoryLimits struct {
	Initial uint32
	Max     uint32
	HasMax  bool
}

// DataSegment is an active data segment loaded at a fixed offset (§6.4).
type DataSegment struct {
	Offset int32
	Bytes  []byte
}

func NewModule() *Module {
	return &Module{Memory: MemoryLimits{Initial: 1}}
}

// AddType interns ft (by value equality) and returns its index.
func (m *Module) AddType(ft FuncType) uint32 {
	for i, existing := range m.Types {
		if valTypesEqual(existing.Params, ft.Params) && valTypesEqual(existing.Results, ft.Results) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}

func valTypesEqual(a, b []ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AddImport registers a function import and returns its function index
// (imports occupy function indices 0..n before any locally defined
// function, per the Core spec's single function-index space).
func (m *Module) AddImport(module, name string, typeIdx uint32) uint32 {
	m.Imports = append(m.Imports, Import{Module: module, Name: name, TypeIndex: typeIdx})
	return uint32(len(m.Imports) - 1)
}

// AddFunction registers a locally defined function and returns its function
// index in the shared function-index space (after all imports).
func (m *Module) AddFunction(typeIdx uint32, body []byte) uint32 {
	m.Funcs = append(m.Funcs, Func{TypeIndex: typeIdx, Body: body})
	return uint32(len(m.Imports) + len(m.Funcs) - 1)
}

func (m *Module) AddGlobal(g Global) uint32 {
	m.Globals = append(m.Globals, g)
	return uint32(len(m.Globals) - 1)
}

func (m *Module) AddExport(name string, kind byte, index uint32) {
	m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Index: index})
}

func (m *Module) AddData(offset int32, bytes []byte) {
	m.Data = append(m.Data, DataSegment{Offset: offset, Bytes: bytes})
}

// Encode serializes the module to the wasm binary format.
func (m *Module) Encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00} // \0asm, version 1

	out = m.appendSection(out, secType, m.encodeTypeSection())
	if len(m.Imports) > 0 {
		out = m.appendSection(out, secImport, m.encodeImportSection())
	}
	out = m.appendSection(out, secFunction, m.encodeFunctionSection())
	out = m.appendSection(out, secMemory, m.encodeMemorySection())
	if len(m.Globals) > 0 {
		out = m.appendSection(out, secGlobal, m.encodeGlobalSection())
	}
	if len(m.Exports) > 0 {
		out = m.appendSection(out, secExport, m.encodeExportSection())
	}
	out = m.appendSection(out, secCode, m.encodeCodeSection())
	if len(m.Data) > 0 {
		out = m.appendSection(out, secData, m.encodeDataSection())
	}
	return out
}

func (m *Module) appendSection(out []byte, id sectionID, body []byte) []byte {
	out = append(out, byte(id))
	out = append(out, withLenPrefix(body)...)
	return out
}

func (m *Module) encodeTypeSection() []byte {
	var body []byte
	body = encodeU32(body, uint32(len(m.Types)))
	for _, ft := range m.Types {
		body = append(body, 0x60) // func type tag
		body = encodeU32(body, uint32(len(ft.Params)))
		for _, p := range ft.Params {
			body = append(body, byte(p))
		}
		body = encodeU32(body, uint32(len(ft.Results)))
		for _, r := range ft.Results {
			body = append(body, byte(r))
		}
	}
	return body
}

func (m *Module) encodeImportSection() []byte {
	var body []byte
	body = encodeU32(body, uint32(len(m.Imports)))
	for _, imp := range m.Imports {
		body = encodeName(body, imp.Module)
		body = encodeName(body, imp.Name)
		body = append(body, 0x00) // import kind: func
		body = encodeU32(body, imp.TypeIndex)
	}
	return body
}

func (m *Module) encodeFunctionSection() []byte {
	var body []byte
	body = encodeU32(body, uint32(len(m.Funcs)))
	for _, f := range m.Funcs {
		body = encodeU32(body, f.TypeIndex)
	}
	return body
}

func (m *Module) encodeMemorySection() []byte {
	var body []byte
	body = encodeU32(body, 1)
	if m.Memory.HasMax {
		body = append(body, 0x01)
		body = encodeU32(body, m.Memory.Initial)
		body = encodeU32(body, m.Memory.Max)
	} else {
		body = append(body, 0x00)
		body = encodeU32(body, m.Memory.Initial)
	}
	return body
}

func (m *Module) encodeGlobalSection() []byte {
	var body []byte
	body = encodeU32(body, uint32(len(m.Globals)))
	for _, g := range m.Globals {
		body = append(body, byte(g.Type))
		if g.Mutable {
			body = append(body, 0x01)
		} else {
			body = append(body, 0x00)
		}
		body = append(body, byte(OpI32Const))
		body = encodeS32(body, g.InitI32)
		body = append(body, byte(OpEnd))
	}
	return body
}

func (m *Module) encodeExportSection() []byte {
	var body []byte
	body = encodeU32(body, uint32(len(m.Exports)))
	for _, e := range m.Exports {
		body = encodeName(body, e.Name)
		body = append(body, e.Kind)
		body = encodeU32(body, e.Index)
	}
	return body
}

func (m *Module) encodeCodeSection() []byte {
	var body []byte
	body = encodeU32(body, uint32(len(m.Funcs)))
	for _, f := range m.Funcs {
		body = append(body, withLenPrefix(f.Body)...)
	}
	return body
}

func (m *Module) encodeDataSection() []byte {
	var body []byte
	body = encodeU32(body, uint32(len(m.Data)))
	for _, d := range m.Data {
		body = append(body, 0x00) // active, memory index 0
		body = append(body, byte(OpI32Const))
		body = encodeS32(body, d.Offset)
		body = append(body, byte(OpEnd))
		body = encodeU32(body, uint32(len(d.Bytes)))
		body = append(body, d.Bytes...)
	}
	return body
}

func encodeName(buf []byte, s string) []byte {
	buf = encodeU32(buf, uint32(len(s)))
	return append(buf, []byte(s)...)
}
