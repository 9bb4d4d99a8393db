package wasmgen

import "github.com/funvibe/jankgo/internal/types"

// valTypeOf maps a LowIR Type to its wasm local/value representation
// (§4.6.1): Int/Bool compile to i32, Float to f64, Any to the boxed i64
// union, and every heap reference (Array, DynObject, String, Ref, Closure,
// Function, Env) to an i32 offset into linear memory.
func valTypeOf(t types.Type) ValType {
	switch t.Tag {
	case types.TInt, types.TBool:
		return ValI32
	case types.TFloat:
		return ValF64
	case types.TAny:
		return AnyRepr
	default:
		return ValI32
	}
}
