package wasmgen

import (
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lowir"
	"github.com/funvibe/jankgo/internal/types"
)

// localSlot records a local's wasm index and representation type.
type localSlot struct {
	index uint32
	ty    ValType
}

// ctrlFrame is one entry of the structured-control-flow stack: every
// block/loop/if opcode emitted pushes one, so a later Break's relative
// branch depth can be computed as (len(frames)-1-i) for the matching
// frame, per the Core spec's "br targets count outward from the
// innermost enclosing structured instruction" rule.
type ctrlFrame struct {
	label        string
	isBreakTarget bool
}

// funcEmitter holds the state for lowering a single LowIR function body to
// wasm bytecode: the local variable table, a growing instruction buffer,
// and the control-flow frame stack Break resolves against.
type funcEmitter struct {
	e      *Emitter
	locals map[string]localSlot
	nextIdx uint32
	paramCount uint32
	code   []byte
	frames []ctrlFrame
	gcRootCount int32
	// gcSlots maps a GC-root local's name to its shadow-frame slot index
	// (§4.6.4), assigned in collectLocals in declaration order, separate
	// from the local's own wasm index since the shadow frame is sized by
	// root count alone.
	gcSlots map[string]int32
	scratchCount int
	// switchCount mints a fresh label prefix per emitBrTableDispatch call
	// (dispatch.go), so nested or sibling dispatchers never collide.
	switchCount int
}

func (fe *funcEmitter) push(op Opcode)        { fe.code = append(fe.code, byte(op)) }
func (fe *funcEmitter) pushByte(b byte)       { fe.code = append(fe.code, b) }
func (fe *funcEmitter) pushU32(n uint32)      { fe.code = encodeU32(fe.code, n) }
func (fe *funcEmitter) pushConstI32(n int32)  { fe.push(OpI32Const); fe.code = encodeS32(fe.code, n) }
func (fe *funcEmitter) pushConstI64(n int64)  { fe.push(OpI64Const); fe.code = encodeS64(fe.code, n) }
func (fe *funcEmitter) pushConstF64(bits uint64) { fe.push(OpF64Const); fe.code = encodeF64(fe.code, bits) }

func (fe *funcEmitter) err(format string, args ...any) error {
	return fe.e.err(format, args...)
}

// emitFunctionBody compiles fn into its encoded wasm code-section entry:
// the LEB128 local-declaration vector followed by the instruction stream
// and a trailing End.
func (e *Emitter) emitFunctionBody(fn *lowir.Function) ([]byte, error) {
	fe := &funcEmitter{e: e, locals: map[string]localSlot{}, gcSlots: map[string]int32{}}

	if fn.IsClosure {
		fe.locals["$env"] = localSlot{index: fe.nextIdx, ty: ValI32}
		fe.nextIdx++
	}
	for _, p := range fn.Params {
		fe.locals[p.Id] = localSlot{index: fe.nextIdx, ty: valTypeOf(p.Ty)}
		fe.nextIdx++
	}
	fe.paramCount = fe.nextIdx
	fe.collectLocals(fn.Body)

	if err := fe.emitGCPrologue(); err != nil {
		return nil, err
	}
	if err := fe.emitStmt(fn.Body); err != nil {
		return nil, err
	}
	fe.emitGCEpilogue()

	var resultTy types.Type
	if fn.FnType.Result != nil {
		resultTy = *fn.FnType.Result
	} else {
		resultTy = types.Any()
	}
	// A function whose body falls off the end without an explicit Return
	// needs a value of its declared result type on the stack so wasm
	// validation's implicit-return rule is satisfied.
	fe.pushDefaultValue(resultTy)
	fe.push(OpEnd)

	return append(encodeLocalDecls(fe.localDecls()), fe.code...), nil
}

// collectLocals walks the statement tree once, before any code is
// generated, assigning a wasm local index to every Var-bound identifier
// (mirroring internal/vm/compiler.go's single-pass Compiler.localCount
// bookkeeping rather than a separate liveness/frame-layout analysis).
func (fe *funcEmitter) collectLocals(s *lowir.Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case lowir.SkVar:
		if _, ok := fe.locals[s.Id]; !ok {
			ty := valTypeOf(s.Ty)
			fe.locals[s.Id] = localSlot{index: fe.nextIdx, ty: ty}
			fe.nextIdx++
			if s.Ty.IsGCRoot() {
				fe.gcSlots[s.Id] = fe.gcRootCount
				fe.gcRootCount++
			}
		}
	case lowir.SkIf:
		fe.collectLocals(s.Then)
		fe.collectLocals(s.Else)
	case lowir.SkLoop:
		fe.collectLocals(s.Body)
	case lowir.SkLabel:
		fe.collectLocals(s.Body)
	case lowir.SkBlock:
		for _, child := range s.Stmts {
			fe.collectLocals(child)
		}
	}
}

// localDecls groups the non-parameter locals into the wasm
// count-of-a-type-run encoding the local-declarations vector expects.
func (fe *funcEmitter) localDecls() []struct {
	count uint32
	ty    ValType
} {
	ordered := make([]localSlot, 0, len(fe.locals))
	for _, slot := range fe.locals {
		if slot.index >= fe.paramCount {
			ordered = append(ordered, slot)
		}
	}
	sortSlotsByIndex(ordered)

	var runs []struct {
		count uint32
		ty    ValType
	}
	for _, slot := range ordered {
		if len(runs) > 0 && runs[len(runs)-1].ty == slot.ty {
			runs[len(runs)-1].count++
			continue
		}
		runs = append(runs, struct {
			count uint32
			ty    ValType
		}{count: 1, ty: slot.ty})
	}
	return runs
}

func sortSlotsByIndex(s []localSlot) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].index > s[j].index; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func encodeLocalDecls(runs []struct {
	count uint32
	ty    ValType
}) []byte {
	var buf []byte
	buf = encodeU32(buf, uint32(len(runs)))
	for _, r := range runs {
		buf = encodeU32(buf, r.count)
		buf = append(buf, byte(r.ty))
	}
	return buf
}

// emitGCPrologue calls the runtime's gc_enter_fn with this frame's GC-root
// slot count (§4.6.4, §6.2). Each individual root is republished into its
// slot as it is (re)assigned — see emitStmt's SkVar/SkAssign handling and
// emitShadowFramePublish — so a mid-function collection never sweeps a
// value only reachable from a still-live local.
func (fe *funcEmitter) emitGCPrologue() error {
	fe.pushConstI32(fe.gcRootCount)
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("gc_enter_fn"))
	return nil
}

func (fe *funcEmitter) emitGCEpilogue() {
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("gc_exit_fn"))
}

// emitShadowFramePublish republishes the value already sitting at the top
// of the stack (left there by a preceding local.tee) into this frame's
// shadow-stack slot, per §4.6.4's literal recipe: "after evaluating and
// storing the value via tee_local, push the slot index and call
// set_in_current_shadow_frame_slot[ty]". The Any-boxed representation gets
// its own import since the runtime, not codegen, decides from the Any's
// tag whether the slot actually holds a heap pointer.
func (fe *funcEmitter) emitShadowFramePublish(ty ValType, slot int32) {
	fe.pushConstI32(slot)
	fe.push(OpCall)
	if ty == AnyRepr {
		fe.pushU32(fe.e.mustImport("set_any_in_current_shadow_frame_slot"))
	} else {
		fe.pushU32(fe.e.mustImport("set_in_current_shadow_frame_slot"))
	}
}

// pushDefaultValue pushes a zero value of the given wasm representation,
// used as a function's implicit fall-off-the-end result.
func (fe *funcEmitter) pushDefaultValue(t types.Type) {
	switch valTypeOf(t) {
	case ValF64:
		fe.pushConstF64(0)
	case ValI64:
		fe.pushConstI64(int64(TagUndefined))
	default:
		fe.pushConstI32(0)
	}
}

// emitLocalStore stores the value on top of the stack into id's local,
// republishing it to the shadow frame first via tee_local when id is a
// GC-root, per §4.6.4.
func (fe *funcEmitter) emitLocalStore(id string, slot localSlot) {
	gcSlot, isRoot := fe.gcSlots[id]
	if !isRoot {
		fe.push(OpLocalSet)
		fe.pushU32(slot.index)
		return
	}
	fe.push(OpLocalTee)
	fe.pushU32(slot.index)
	fe.emitShadowFramePublish(slot.ty, gcSlot)
}

func (fe *funcEmitter) localFor(name string) (localSlot, error) {
	slot, ok := fe.locals[name]
	if !ok {
		return localSlot{}, fe.err("unbound identifier %q during code generation", name)
	}
	return slot, nil
}
