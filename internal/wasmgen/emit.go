package wasmgen

import (
	"sort"

	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lowir"
)

// Emitter lowers a lowir.Program into a wasm Module (§4.6); the pipeline
// hands it internal/anf's output without running lowir's Checker first.
// Build order: register the runtime's function imports (§6.2), reserve one
// wasm function index per LowIR function in a fixed sorted order so
// forward references resolve, then emit each body, then lay down the data
// segment (string table + inline-cache slots, §6.4) and the module's
// exports (§6.3).
type Emitter struct {
	prog      *lowir.Program
	sessionID string
	m         *Module

	// funcIndex covers both runtime imports and LowIR functions: PrimCall
	// looks a builtin name up here, Call/ClosureCall/ClosureAlloc look a
	// LowIR function name up here. One shared map matches the wasm spec's
	// single function-index space.
	funcIndex map[string]uint32
}

func NewEmitter(prog *lowir.Program, sessionID string) *Emitter {
	return &Emitter{prog: prog, sessionID: sessionID, m: NewModule(), funcIndex: map[string]uint32{}}
}

// Emit runs the full pipeline and returns the encoded module bytes.
func (e *Emitter) Emit() ([]byte, error) {
	e.registerImports()

	names := make([]string, 0, len(e.prog.Functions))
	for name := range e.prog.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	typeIdx := make(map[string]uint32, len(names))
	for _, name := range names {
		fn := e.prog.Functions[name]
		ft := e.funcTypeFor(fn)
		ti := e.m.AddType(ft)
		typeIdx[name] = ti
		e.funcIndex[name] = uint32(len(e.m.Imports) + len(e.m.Funcs))
		// Reserve the slot now so forward calls resolve during body
		// emission; the body bytes are filled in on the second pass below.
		e.m.Funcs = append(e.m.Funcs, Func{TypeIndex: ti})
	}

	for i, name := range names {
		fn := e.prog.Functions[name]
		body, err := e.emitFunctionBody(fn)
		if err != nil {
			return nil, err
		}
		e.m.Funcs[i].Body = body
	}

	e.emitDataSegment()

	mainIdx, ok := e.funcIndex["main"]
	if !ok {
		diag.Bug("program has no \"main\" function to export")
	}
	e.m.AddExport("main", ExportFunc, mainIdx)
	e.m.AddExport("memory", ExportMemory, 0)

	return e.m.Encode(), nil
}

func (e *Emitter) registerImports() {
	names := make([]string, 0, len(e.prog.RtsFnImports))
	for name := range e.prog.RtsFnImports {
		names = append(names, name)
	}
	names = append(names, "gc_enter_fn", "gc_exit_fn",
		"set_in_current_shadow_frame_slot", "set_any_in_current_shadow_frame_slot",
		"float_box_new", "float_box_read", "alloc",
		"object_get_cached", "array_get", "print",
		"array_new", "array_set", "array_push", "array_len", "string_len",
		"object_new", "object_set",
		"closure_new", "closure_set_capture")
	sort.Strings(names)

	for _, name := range names {
		if _, ok := e.funcIndex[name]; ok {
			continue
		}
		ft := e.importSignature(name)
		ti := e.m.AddType(ft)
		idx := e.m.AddImport("env", name, ti)
		e.funcIndex[name] = idx
	}
}

// importSignature gives every known runtime import its real signature, and
// falls back to a zero-arg/i64-result guess for anything in
// prog.RtsFnImports this emitter doesn't recognize by name — §6.2 allows
// the runtime to expose imports beyond this compiler's fixed table, and a
// PrimCall to one of those is still legal as long as the caller's own
// arg/result count is consistent with how it's used.
func (e *Emitter) importSignature(name string) FuncType {
	switch name {
	case "gc_enter_fn":
		return FuncType{Params: []ValType{ValI32}}
	case "gc_exit_fn":
		return FuncType{}
	case "set_in_current_shadow_frame_slot":
		// (ptr, slot) -> () (§4.6.4): republishes an i32-shaped GC root
		// (String/Array/DynObject/Env/Closure/Ref/Function) into this
		// frame's shadow-stack slot every time its local is (re)assigned.
		return FuncType{Params: []ValType{ValI32, ValI32}}
	case "set_any_in_current_shadow_frame_slot":
		// (any, slot) -> (): the Any-boxed counterpart, since an Any-typed
		// local's payload may or may not be a heap pointer depending on its
		// runtime tag — the GC itself decides that from the tag, not codegen.
		return FuncType{Params: []ValType{AnyRepr, ValI32}}
	case "float_box_new":
		return FuncType{Params: []ValType{ValF64}, Results: []ValType{ValI32}}
	case "float_box_read":
		return FuncType{Params: []ValType{ValI32}, Results: []ValType{ValF64}}
	case "alloc":
		return FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}
	case "object_get_cached":
		// (obj_ptr, field_name_offset, inline_cache_slot_offset) -> Any
		// (§4.6.7): the cache slot lets the runtime remember the field's
		// offset within this hidden class across repeated lookups.
		return FuncType{Params: []ValType{ValI32, ValI32, ValI32}, Results: []ValType{AnyRepr}}
	case "array_get":
		return FuncType{Params: []ValType{ValI32, ValI32}, Results: []ValType{AnyRepr}}
	case "print":
		return FuncType{Params: []ValType{AnyRepr}}
	case "array_new":
		// (length) -> array_ptr (§4.6.7): elements start Undefined-filled.
		return FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}
	case "array_set":
		return FuncType{Params: []ValType{ValI32, ValI32, AnyRepr}}
	case "array_push":
		// (ptr, boxed_val) -> new_ptr (§4.6.6 typed leaf): push grows the
		// array into a fresh allocation rather than mutating in place, since
		// this subset's arrays don't track spare capacity.
		return FuncType{Params: []ValType{ValI32, AnyRepr}, Results: []ValType{ValI32}}
	case "array_len":
		return FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}
	case "string_len":
		return FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}
	case "object_new":
		return FuncType{Results: []ValType{ValI32}}
	case "object_set":
		// (obj_ptr, field_name_offset, value) -> Any (§4.6.7): may trigger a
		// hidden-class transition when the field is new to this object, and
		// returns the (possibly reallocated) object boxed as Ptr.
		return FuncType{Params: []ValType{ValI32, ValI32, AnyRepr}, Results: []ValType{AnyRepr}}
	case "closure_new":
		return FuncType{Params: []ValType{ValI32, ValI32}, Results: []ValType{ValI32}}
	case "closure_set_capture":
		return FuncType{Params: []ValType{ValI32, AnyRepr, ValI32}}
	default:
		if ty, ok := e.prog.RtsFnImports[name]; ok {
			params := make([]ValType, len(ty.Args))
			for i, a := range ty.Args {
				params[i] = valTypeOf(a)
			}
			var results []ValType
			if ty.Result != nil {
				results = []ValType{valTypeOf(*ty.Result)}
			}
			return FuncType{Params: params, Results: results}
		}
		return FuncType{Results: []ValType{AnyRepr}}
	}
}

func (e *Emitter) mustImport(name string) uint32 {
	idx, ok := e.funcIndex[name]
	if !ok {
		diag.Bug("runtime import %q was never registered", name)
	}
	return idx
}

// funcTypeFor builds fn's wasm signature, prepending an i32 env parameter
// when fn is a closure body (§4.6.4: "ClosureCall implicitly prepends the
// callee's own captured Env").
func (e *Emitter) funcTypeFor(fn *lowir.Function) FuncType {
	params := make([]ValType, 0, len(fn.Params)+1)
	if fn.IsClosure {
		params = append(params, ValI32)
	}
	for _, p := range fn.Params {
		params = append(params, valTypeOf(p.Ty))
	}
	var results []ValType
	if fn.FnType.Result != nil && !fn.FnType.Result.IsMissing() {
		results = []ValType{valTypeOf(*fn.FnType.Result)}
	} else {
		results = []ValType{AnyRepr}
	}
	return FuncType{Params: params, Results: results}
}

func (e *Emitter) emitDataSegment() {
	if len(e.prog.Data.Bytes) == 0 {
		return
	}
	e.m.AddData(0, e.prog.Data.Bytes)
}

// internString delegates to the program's data-segment interning table so
// every reference to the same source string literal shares one offset.
func (e *Emitter) internString(s string) int {
	return e.prog.Intern(s)
}

func (e *Emitter) err(format string, args ...any) error {
	return diag.NewCompileError(diag.LowIRTypeError, diag.NoPos, e.sessionID, format, args...)
}
