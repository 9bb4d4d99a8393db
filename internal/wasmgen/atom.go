package wasmgen

import (
	"math"

	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lowir"
	"github.com/funvibe/jankgo/internal/types"
)

// emitAtom pushes a's value onto the stack (§4.6.1/§4.6.5 atom lowering).
func (fe *funcEmitter) emitAtom(a *lowir.Atom) error {
	switch a.Kind {
	case lowir.AkLitInt:
		fe.pushConstI32(int32(a.IntVal))
	case lowir.AkLitFloat:
		fe.pushConstF64(math.Float64bits(a.FloatVal))
	case lowir.AkLitBool:
		if a.BoolVal {
			fe.pushConstI32(1)
		} else {
			fe.pushConstI32(0)
		}
	case lowir.AkLitString:
		off := fe.e.internString(a.StringVal)
		fe.pushConstI32(int32(off))
	case lowir.AkLitUndefined:
		fe.emitBoxConstant(TagUndefined)
	case lowir.AkLitNull:
		fe.emitBoxConstant(TagNull)
	case lowir.AkId:
		slot, err := fe.localFor(a.Id)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(slot.index)
	case lowir.AkBinary:
		return fe.emitBinary(a)
	case lowir.AkUnary:
		return fe.emitUnary(a)
	case lowir.AkToAny:
		return fe.emitToAny(a)
	case lowir.AkFromAny:
		return fe.emitFromAny(a)
	case lowir.AkFloatToInt:
		if err := fe.emitAtom(a.Operand); err != nil {
			return err
		}
		fe.push(OpI32TruncF64S)
	case lowir.AkIntToFloat:
		if err := fe.emitAtom(a.Operand); err != nil {
			return err
		}
		fe.push(OpF64ConvertI32S)
	case lowir.AkEnvGet:
		fe.push(OpLocalGet)
		fe.pushU32(fe.locals["$env"].index)
		fe.push(OpI32Load)
		fe.pushByte(2)
		fe.pushByte(uint8(4 + a.EnvIndex*4)) // slot 0 reserved for the function pointer (§4.6.4)
	case lowir.AkDeref:
		slot, err := fe.localFor(a.Id)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(slot.index)
		fe.push(loadOpForType(a.Ty))
		fe.pushByte(2)
		fe.pushByte(0)
	case lowir.AkObjectGet:
		return fe.emitObjectGet(a)
	case lowir.AkArrayGet:
		return fe.emitArrayGet(a)
	case lowir.AkAnyLength:
		slot, err := fe.localFor(a.Id)
		if err != nil {
			return err
		}
		resultScratch, err := fe.emitAnyDispatch(slot.index, ValI32, fe.emitAnyLengthPtrArm)
		if err != nil {
			return err
		}
		fe.push(OpLocalGet)
		fe.pushU32(resultScratch)
	case lowir.AkPrimApp:
		for _, argID := range a.Args {
			slot, err := fe.localFor(argID)
			if err != nil {
				return err
			}
			fe.push(OpLocalGet)
			fe.pushU32(slot.index)
		}
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport(a.PrimName))
	case lowir.AkGetPrimFunc:
		fe.pushConstI32(int32(fe.e.mustImport(a.PrimName)))
	default:
		diag.Bug("unknown LowIR atom kind %d during code generation", a.Kind)
	}
	return nil
}

func loadOpForType(t types.Type) Opcode {
	switch valTypeOf(t) {
	case ValF64:
		return OpF64Load
	case ValI64:
		return OpI64Load
	default:
		return OpI32Load
	}
}

func (fe *funcEmitter) emitBinary(a *lowir.Atom) error {
	if err := fe.emitAtom(a.Lhs); err != nil {
		return err
	}
	if err := fe.emitAtom(a.Rhs); err != nil {
		return err
	}
	isFloat := a.Lhs.Ty.Tag == types.TFloat
	op, err := binaryOpcode(a.Op, isFloat)
	if err != nil {
		return fe.err("%v", err)
	}
	fe.push(op)
	return nil
}

func (fe *funcEmitter) emitUnary(a *lowir.Atom) error {
	switch a.Op {
	case "!":
		if err := fe.emitAtom(a.Operand); err != nil {
			return err
		}
		fe.push(OpI32Eqz)
	case "-":
		fe.pushConstI32(0)
		if err := fe.emitAtom(a.Operand); err != nil {
			return err
		}
		fe.push(OpI32Sub)
	case "+":
		return fe.emitAtom(a.Operand)
	default:
		return fe.err("unknown unary operator %q", a.Op)
	}
	return nil
}

func (fe *funcEmitter) emitToAny(a *lowir.Atom) error {
	if err := fe.emitAtom(a.Operand); err != nil {
		return err
	}
	switch a.Operand.Ty.Tag {
	case types.TInt:
		fe.emitBoxI32(TagI32, true)
	case types.TBool:
		fe.emitBoxI32(TagBool, false)
	case types.TFloat:
		fe.emitBoxF64()
	case types.TClosure, types.TFunction:
		fe.emitBoxPtr(TagClosure)
	default:
		fe.emitBoxPtr(TagPtr)
	}
	return nil
}

func (fe *funcEmitter) emitFromAny(a *lowir.Atom) error {
	if err := fe.emitAtom(a.Operand); err != nil {
		return err
	}
	switch a.Ty.Tag {
	case types.TFloat:
		fe.emitUnboxF64()
	default:
		fe.emitUnboxI32()
	}
	return nil
}

func (fe *funcEmitter) emitObjectGet(a *lowir.Atom) error {
	slot, err := fe.localFor(a.Id)
	if err != nil {
		return err
	}
	fe.push(OpLocalGet)
	fe.pushU32(slot.index)
	off := fe.e.internString(a.Field.StringVal)
	fe.pushConstI32(int32(off))
	cacheSlot := fe.e.prog.NewCacheSlot()
	fe.pushConstI32(int32(cacheSlot))
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("object_get_cached"))
	return nil
}

func (fe *funcEmitter) emitArrayGet(a *lowir.Atom) error {
	slot, err := fe.localFor(a.Id)
	if err != nil {
		return err
	}
	fe.push(OpLocalGet)
	fe.pushU32(slot.index)
	if err := fe.emitAtom(a.Index); err != nil {
		return err
	}
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("array_get"))
	return nil
}

// emitAnyLengthPtrArm is AnyLength's Ptr arm, sharing emitAnyDispatch's tree
// with emitAnyMethodCall's but with "do_call = false" (§4.6.6): no method
// name or argument to resolve, just the shape's length leaf, and the
// result stays a raw i32 rather than a boxed Any since AnyLength's static
// type is plain Int.
func (fe *funcEmitter) emitAnyLengthPtrArm(ptrScratch, resultScratch uint32) error {
	heapTagScratch := fe.emitHeapTagOf(ptrScratch)

	return fe.emitBrTableDispatch(int(HeapTagObjectPtrPtr)+1, func() error {
		fe.push(OpLocalGet)
		fe.pushU32(heapTagScratch)
		return nil
	}, func(j int) error {
		var importName string
		switch HeapTag(j) {
		case HeapTagArray:
			importName = "array_len"
		case HeapTagString:
			importName = "string_len"
		default:
			fe.push(OpUnreachable)
			return nil
		}
		fe.push(OpLocalGet)
		fe.pushU32(ptrScratch)
		fe.push(OpCall)
		fe.pushU32(fe.e.mustImport(importName))
		fe.push(OpLocalSet)
		fe.pushU32(resultScratch)
		return nil
	}, func() error {
		fe.push(OpUnreachable)
		return nil
	})
}
