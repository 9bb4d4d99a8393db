package wasmgen

import (
	"fmt"

	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lowir"
)

// emitExprValue pushes e's result onto the stack (§4.6.5/§4.6.6).
func (fe *funcEmitter) emitExprValue(e *lowir.Expr) error {
	switch e.Kind {
	case lowir.EkAtom:
		return fe.emitAtom(e.Atom)

	case lowir.EkArrayNew:
		if err := fe.emitAtom(e.Index); err != nil {
			return err
		}
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("array_new"))

	case lowir.EkArraySet:
		slot, err := fe.localFor(e.BaseId)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(slot.index)
		if err := fe.emitAtom(e.Index); err != nil {
			return err
		}
		if err := fe.emitAtom(e.Value); err != nil {
			return err
		}
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("array_set"))

	case lowir.EkObjectEmpty:
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("object_new"))

	case lowir.EkObjectSet:
		slot, err := fe.localFor(e.BaseId)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(slot.index)
		off := fe.e.internString(e.Field.StringVal)
		fe.pushConstI32(int32(off))
		if err := fe.emitAtom(e.Value); err != nil {
			return err
		}
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("object_set"))

	case lowir.EkPrimCall:
		for _, argID := range e.Args {
			slot, err := fe.localFor(argID)
			if err != nil {
				return err
			}
			fe.push(OpLocalGet)
			fe.pushU32(slot.index)
		}
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport(e.FunId))

	case lowir.EkCall:
		for _, argID := range e.Args {
			slot, err := fe.localFor(argID)
			if err != nil {
				return err
			}
			fe.push(OpLocalGet)
			fe.pushU32(slot.index)
		}
		idx, ok := fe.e.funcIndex[e.FunId]
		if !ok {
			return fe.err("call to undefined function %q", e.FunId)
		}
		fe.push(OpCall)
		fe.pushU32(idx)

	case lowir.EkClosureCall:
		return fe.emitClosureCall(e)

	case lowir.EkAnyMethodCall:
		return fe.emitAnyMethodCall(e)

	case lowir.EkNewRef:
		return fe.emitNewRef(e)

	case lowir.EkClosureAlloc:
		return fe.emitClosureAlloc(e)

	default:
		diag.Bug("unknown LowIR expr kind %d during code generation", e.Kind)
	}
	return nil
}

// emitNewRef allocates a one-word heap cell and stores the init value into
// it (§4.6.2 "ref cell"), returning the pointer. The init value is stashed
// in a scratch local first since wasm has no stack instruction to
// duplicate a value from below the top (needed here because alloc's
// result, not the init value, must be on top for the address-then-value
// store convention).
func (fe *funcEmitter) emitNewRef(e *lowir.Expr) error {
	initTy := valTypeOf(e.RefInit.Ty)
	if err := fe.emitAtom(e.RefInit); err != nil {
		return err
	}
	initScratch := fe.reserveScratch(initTy)
	fe.push(OpLocalSet)
	fe.pushU32(initScratch)

	fe.pushConstI32(sizeOfValType(initTy))
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("alloc"))
	ptrScratch := fe.reserveScratch(ValI32)
	fe.push(OpLocalTee)
	fe.pushU32(ptrScratch)

	fe.push(OpLocalGet)
	fe.pushU32(initScratch)
	fe.push(storeOpForType(e.RefInit.Ty))
	fe.pushByte(2)
	fe.pushByte(0)

	fe.push(OpLocalGet)
	fe.pushU32(ptrScratch)
	return nil
}

// reserveScratch allocates a fresh function-local scratch slot of the given
// type, outside the normal named-local table, for an intermediate value a
// single expression needs to hold across more than one instruction (wasm
// has no stack-duplicate-below-top instruction). Every call mints a new
// slot rather than reusing one by type, since two scratch values live
// concurrently within a single expression (e.g. NewRef's init value and its
// freshly allocated pointer).
func (fe *funcEmitter) reserveScratch(ty ValType) uint32 {
	fe.scratchCount++
	key := fmt.Sprintf("$scratch%d", fe.scratchCount)
	idx := fe.nextIdx
	fe.nextIdx++
	fe.locals[key] = localSlot{index: idx, ty: ty}
	return idx
}

func sizeOfValType(t ValType) int32 {
	switch t {
	case ValI64, ValF64:
		return 8
	default:
		return 4
	}
}

// emitClosureCall pushes every argument, then the callee's captured Env as
// the implicit 0th parameter, then calls through call_indirect against the
// closure's function-pointer slot stored in its heap object (§4.6.4,
// §4.6.6): closures are called indirectly because the callee is a runtime
// value, not a statically known function index.
func (fe *funcEmitter) emitClosureCall(e *lowir.Expr) error {
	for _, argID := range e.Args {
		slot, err := fe.localFor(argID)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(slot.index)
	}
	closureSlot, err := fe.localFor(e.FunId)
	if err != nil {
		return err
	}
	fe.push(OpLocalGet)
	fe.pushU32(closureSlot.index) // env pointer == the closure object pointer itself
	fe.push(OpLocalGet)
	fe.pushU32(closureSlot.index)
	fe.push(OpI32Load) // function-pointer slot at offset 0 of the closure object
	fe.pushByte(2)
	fe.pushByte(0)
	fe.push(OpCallIndirect)
	ft := fe.closureCallType(e)
	fe.pushU32(fe.e.m.AddType(ft))
	fe.pushByte(0) // table index 0
	return nil
}

func (fe *funcEmitter) closureCallType(e *lowir.Expr) FuncType {
	params := make([]ValType, 0, len(e.Args)+1)
	params = append(params, ValI32) // env
	for range e.Args {
		params = append(params, AnyRepr)
	}
	return FuncType{Params: params, Results: []ValType{valTypeOf(e.Ty)}}
}

// emitAnyMethodCall dispatches a method invocation on an Any receiver by
// its discriminant tag via a nested Block/BrTable (§4.6.6): the outer
// dispatch picks the receiver's runtime shape, the Ptr arm loads the heap
// object's own type byte and dispatches again into the shape-specific
// method. Everything but the eventual typed leaf call or ClosureCall is
// built by emitAnyDispatch (dispatch.go) and emitAnyMethodPtrArm (this
// file) so AnyLength
// can share the same tree with do_call = false.
func (fe *funcEmitter) emitAnyMethodCall(e *lowir.Expr) error {
	recvSlot, err := fe.localFor(e.AnyId)
	if err != nil {
		return err
	}
	var argSlot *localSlot
	if len(e.Args) > 0 {
		s, err := fe.localFor(e.Args[0])
		if err != nil {
			return err
		}
		argSlot = &s
	}

	resultScratch, err := fe.emitAnyDispatch(recvSlot.index, AnyRepr, func(ptrScratch, res uint32) error {
		return fe.emitAnyMethodPtrArm(ptrScratch, res, e.MethodLit, argSlot)
	})
	if err != nil {
		return err
	}
	fe.push(OpLocalGet)
	fe.pushU32(resultScratch)
	return nil
}

// emitAnyMethodPtrArm is emitAnyMethodCall's Ptr arm: it reads the heap
// object's own type byte and dispatches again on {Object, String, Array,
// ...} per runtimeabi.HeapType's actual numbering (not spec.md's prose
// enumeration order, which doesn't match it), calling the shape's typed
// leaf host helper or, for an Object, resolving the method as a
// closure-valued field and invoking it directly.
func (fe *funcEmitter) emitAnyMethodPtrArm(ptrScratch, resultScratch uint32, method string, argSlot *localSlot) error {
	heapTagScratch := fe.emitHeapTagOf(ptrScratch)

	return fe.emitBrTableDispatch(int(HeapTagObjectPtrPtr)+1, func() error {
		fe.push(OpLocalGet)
		fe.pushU32(heapTagScratch)
		return nil
	}, func(j int) error {
		switch HeapTag(j) {
		case HeapTagArray:
			return fe.emitTypedLeafMethod(ptrScratch, resultScratch, "array", method, argSlot)
		case HeapTagString:
			return fe.emitTypedLeafMethod(ptrScratch, resultScratch, "string", method, argSlot)
		case HeapTagClass:
			return fe.emitObjectMethodCall(ptrScratch, resultScratch, method, argSlot)
		default:
			fe.push(OpUnreachable)
			return nil
		}
	}, func() error {
		fe.push(OpUnreachable)
		return nil
	})
}

// emitTypedLeafMethod calls the shape's typed runtime leaf operation
// (array_push/array_len/string_len, §6.2) and boxes its raw result into
// resultScratch — "<type>_<method>" per §4.6.6. A (shape, method) pair this
// subset doesn't define traps rather than falling back to Undefined: a
// valid program's inference never reaches one.
func (fe *funcEmitter) emitTypedLeafMethod(ptrScratch, resultScratch uint32, shape, method string, argSlot *localSlot) error {
	fe.push(OpLocalGet)
	fe.pushU32(ptrScratch)
	switch {
	case shape == "array" && method == "push":
		if argSlot == nil {
			return fe.err("array.push requires one argument")
		}
		fe.push(OpLocalGet)
		fe.pushU32(argSlot.index)
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("array_push"))
		fe.emitBoxPtr(TagPtr)
	case shape == "array" && method == "length":
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("array_len"))
		fe.emitBoxI32(TagI32, true)
	case shape == "string" && method == "length":
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("string_len"))
		fe.emitBoxI32(TagI32, true)
	default:
		fe.push(OpDrop) // drop the ptr already pushed above
		fe.push(OpUnreachable)
		return nil
	}
	fe.push(OpLocalSet)
	fe.pushU32(resultScratch)
	return nil
}

// emitObjectMethodCall resolves method as a closure-valued field on the
// DynObject at ptrScratch (via the same object_get_cached import plain
// field reads use) and invokes it exactly like a ClosureCall, since a
// method stored on an object is just a closure under a field name
// (§4.6.6's "materializes the method via ObjectGet, FromAny to the closure
// type, and emits a ClosureCall").
func (fe *funcEmitter) emitObjectMethodCall(ptrScratch, resultScratch uint32, method string, argSlot *localSlot) error {
	fe.push(OpLocalGet)
	fe.pushU32(ptrScratch)
	off := fe.e.internString(method)
	fe.pushConstI32(int32(off))
	cacheSlot := fe.e.prog.NewCacheSlot()
	fe.pushConstI32(int32(cacheSlot))
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("object_get_cached"))

	closureScratch := fe.reserveScratch(ValI32)
	fe.emitUnboxI32()
	fe.push(OpLocalSet)
	fe.pushU32(closureScratch)

	if argSlot != nil {
		fe.push(OpLocalGet)
		fe.pushU32(argSlot.index)
	}
	fe.push(OpLocalGet)
	fe.pushU32(closureScratch) // env pointer == the closure object itself
	fe.push(OpLocalGet)
	fe.pushU32(closureScratch)
	fe.push(OpI32Load) // function-pointer slot at offset 0 of the closure object
	fe.pushByte(2)
	fe.pushByte(0)
	fe.push(OpCallIndirect)
	params := []ValType{ValI32}
	if argSlot != nil {
		params = append(params, AnyRepr)
	}
	fe.pushU32(fe.e.m.AddType(FuncType{Params: params, Results: []ValType{AnyRepr}}))
	fe.pushByte(0) // table index 0
	fe.push(OpLocalSet)
	fe.pushU32(resultScratch)
	return nil
}

func (fe *funcEmitter) emitClosureAlloc(e *lowir.Expr) error {
	fnIdx, ok := fe.e.funcIndex[e.ClosureFn]
	if !ok {
		return fe.err("ClosureAlloc references undefined function %q", e.ClosureFn)
	}
	fe.pushConstI32(int32(fnIdx))
	fe.pushConstI32(int32(len(e.ClosureEnv)))
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("closure_new"))
	envPtr := fe.reserveScratch(ValI32)
	fe.push(OpLocalTee)
	fe.pushU32(envPtr)
	for i, slot := range e.ClosureEnv {
		capSlot, err := fe.localFor(slot.Id)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(envPtr)
		fe.push(OpLocalGet)
		fe.pushU32(capSlot.index)
		fe.pushConstI32(int32(i))
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport("closure_set_capture"))
	}
	fe.push(OpLocalGet)
	fe.pushU32(envPtr)
	return nil
}
