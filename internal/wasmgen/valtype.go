package wasmgen

// ValType is a wasm value type encoding byte (Core spec §5.3.1).
type ValType byte

const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
	ValF32 ValType = 0x7D
	ValF64 ValType = 0x7C
)

// AnyRepr is i64: the 7-tag boxed union of §4.6.1, packed as
// (payload << 8) | tag in the low byte, small integers and booleans
// stored directly in the payload and pointers/closures holding a heap
// offset.
const AnyRepr = ValI64

// Tag is one of the 7 runtime tags the Any box discriminates on (§4.6.1).
type Tag int32

const (
	TagI32 Tag = iota
	TagF64
	TagBool
	TagPtr
	TagClosure
	TagUndefined
	TagNull
)
