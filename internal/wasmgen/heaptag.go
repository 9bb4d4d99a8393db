package wasmgen

// HeapTag is the type_tag byte of a heap object's header (§3.5), read back
// via i32.load8_u at a pointer's offset 0 during an Any Ptr arm's secondary
// dispatch (§4.6.6). It must stay numerically identical to
// runtimeabi.HeapType — the two packages sit on opposite sides of the wasm
// ABI boundary and are deliberately not import-coupled, the same reason Tag
// (valtype.go) duplicates runtimeabi.AnyTag.
type HeapTag byte

const (
	HeapTagClass HeapTag = iota // a DynObject laid out per its hidden class
	HeapTagString
	HeapTagArray
	HeapTagHT
	HeapTagEnv
	HeapTagRef
	HeapTagClosure
	HeapTagF64
	HeapTagObjectPtrPtr
)
