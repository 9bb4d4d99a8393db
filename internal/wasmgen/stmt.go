package wasmgen

import (
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lowir"
	"github.com/funvibe/jankgo/internal/types"
)

// storeOpForType picks the wasm store instruction matching a value's
// representation (§4.6.1): f64 stores go through f64.store, Any (the boxed
// i64 union) through i64.store, everything else (Int/Bool/every heap
// reference) through i32.store.
func storeOpForType(t types.Type) Opcode {
	switch valTypeOf(t) {
	case ValF64:
		return OpF64Store
	case ValI64:
		return OpI64Store
	default:
		return OpI32Store
	}
}

func (fe *funcEmitter) emitStmt(s *lowir.Stmt) error {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case lowir.SkVar:
		slot, err := fe.localFor(s.Id)
		if err != nil {
			return err
		}
		if s.Expr == nil {
			return nil
		}
		if err := fe.emitExprValue(s.Expr); err != nil {
			return err
		}
		fe.emitLocalStore(s.Id, slot)

	case lowir.SkAssign:
		slot, err := fe.localFor(s.Id)
		if err != nil {
			return err
		}
		if err := fe.emitExprValue(s.Expr); err != nil {
			return err
		}
		fe.emitLocalStore(s.Id, slot)

	case lowir.SkStore:
		slot, err := fe.localFor(s.Id)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(slot.index)
		if err := fe.emitExprValue(s.Expr); err != nil {
			return err
		}
		fe.push(storeOpForType(s.Expr.Ty))
		fe.pushByte(2) // alignment hint
		fe.pushByte(0) // offset

	case lowir.SkExpression:
		if err := fe.emitExprValue(s.Expr); err != nil {
			return err
		}
		// array_set and void runtime imports (print) leave nothing to drop.
		leavesValue := true
		switch s.Expr.Kind {
		case lowir.EkArraySet:
			leavesValue = false
		case lowir.EkPrimCall:
			leavesValue = len(fe.e.importSignature(s.Expr.FunId).Results) > 0
		}
		if leavesValue {
			fe.push(OpDrop)
		}

	case lowir.SkIf:
		if err := fe.emitAtom(s.Cond); err != nil {
			return err
		}
		fe.push(OpIf)
		fe.pushByte(BlockTypeEmpty)
		fe.frames = append(fe.frames, ctrlFrame{})
		if err := fe.emitStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			fe.push(OpElse)
			if err := fe.emitStmt(s.Else); err != nil {
				return err
			}
		}
		fe.push(OpEnd)
		fe.frames = fe.frames[:len(fe.frames)-1]

	case lowir.SkLoop:
		return fe.emitLoop("", s.Body)

	case lowir.SkLabel:
		if bodyLoop := s.Body; bodyLoop != nil && bodyLoop.Kind == lowir.SkLoop {
			return fe.emitLoop(s.Label, bodyLoop.Body)
		}
		fe.push(OpBlock)
		fe.pushByte(BlockTypeEmpty)
		fe.frames = append(fe.frames, ctrlFrame{label: s.Label, isBreakTarget: true})
		if err := fe.emitStmt(s.Body); err != nil {
			return err
		}
		fe.push(OpEnd)
		fe.frames = fe.frames[:len(fe.frames)-1]

	case lowir.SkBreak:
		depth, err := fe.breakDepth(s.Label)
		if err != nil {
			return err
		}
		fe.push(OpBr)
		fe.pushU32(depth)

	case lowir.SkReturn:
		if s.Value != nil {
			if err := fe.emitAtom(s.Value); err != nil {
				return err
			}
		}
		fe.push(OpReturn)

	case lowir.SkBlock:
		for _, child := range s.Stmts {
			if err := fe.emitStmt(child); err != nil {
				return err
			}
		}

	case lowir.SkEmpty:
		// no-op

	case lowir.SkTrap:
		fe.push(OpUnreachable)

	default:
		diag.Bug("unknown LowIR statement kind %d during code generation", s.Kind)
	}
	return nil
}

// emitLoop compiles a Loop (optionally carrying label) into the standard
// `block $label { loop { body ; br 0 (continue) } }` shape: the outer block
// is Break's exit target, the inner loop's trailing unconditional branch is
// what makes it actually repeat (§4.6.5).
func (fe *funcEmitter) emitLoop(label string, body *lowir.Stmt) error {
	fe.push(OpBlock)
	fe.pushByte(BlockTypeEmpty)
	fe.frames = append(fe.frames, ctrlFrame{label: label, isBreakTarget: true})

	fe.push(OpLoop)
	fe.pushByte(BlockTypeEmpty)
	fe.frames = append(fe.frames, ctrlFrame{})

	if err := fe.emitStmt(body); err != nil {
		return err
	}
	fe.push(OpBr)
	fe.pushU32(0)

	fe.push(OpEnd) // loop
	fe.frames = fe.frames[:len(fe.frames)-1]
	fe.push(OpEnd) // block
	fe.frames = fe.frames[:len(fe.frames)-1]
	return nil
}

// breakDepth resolves a Break's label (empty means innermost break target)
// to a wasm relative branch depth, counting outward from the top of the
// control-flow frame stack.
func (fe *funcEmitter) breakDepth(label string) (uint32, error) {
	for i := len(fe.frames) - 1; i >= 0; i-- {
		f := fe.frames[i]
		if !f.isBreakTarget {
			continue
		}
		if label == "" || f.label == label {
			return uint32(len(fe.frames) - 1 - i), nil
		}
	}
	return 0, fe.err("break to unresolved label %q", label)
}
