package runtimeabi

// AnyTag is the low-byte discriminant of a boxed Any value (§4.6.1). These
// values must stay numerically identical to internal/wasmgen's Tag — the
// two packages sit on opposite sides of the wasm ABI boundary and are
// deliberately not import-coupled (a real deployment may compile the
// runtime and the emitter from entirely separate trees), so the encoding is
// duplicated here rather than shared, the way a wire protocol's constants
// get redefined on both ends of a socket.
type AnyTag int32

const (
	AnyI32 AnyTag = iota
	AnyF64
	AnyBool
	AnyPtr
	AnyClosure
	AnyUndefined
	AnyNull
)

// HeapType is the type_tag byte of a heap object's Tag header (§3.5).
type HeapType byte

const (
	HeapClass HeapType = iota // a DynObject laid out per its hidden class
	HeapString
	HeapArray
	HeapHT
	HeapEnv
	HeapRef
	HeapClosure
	HeapF64
	HeapObjectPtrPtr
)

// Word-size constants (§4.6.2).
const (
	TagSize   = 4
	LengthSize = 4
	FnObjSize = 4
	AnySize   = 8
)

// header is the decoded form of the word-sized Tag preceding every heap
// allocation: type_tag (1 byte), marked (1 byte), class_tag (2 bytes,
// meaningful only when TypeTag == HeapClass) — §3.5.
type header struct {
	TypeTag  HeapType
	Marked   bool
	ClassTag uint16
}

func encodeHeader(h header) uint32 {
	v := uint32(h.TypeTag)
	if h.Marked {
		v |= 1 << 8
	}
	v |= uint32(h.ClassTag) << 16
	return v
}

func decodeHeader(v uint32) header {
	return header{
		TypeTag:  HeapType(v & 0xFF),
		Marked:   v&(1<<8) != 0,
		ClassTag: uint16(v >> 16),
	}
}

func readHeader(mem Memory, ptr uint32) header {
	return decodeHeader(mem.ReadUint32(ptr))
}

func writeHeader(mem Memory, ptr uint32, h header) {
	mem.WriteUint32(ptr, encodeHeader(h))
}

func setMarked(mem Memory, ptr uint32, marked bool) {
	h := readHeader(mem, ptr)
	h.Marked = marked
	writeHeader(mem, ptr, h)
}

// BoxI32 / BoxBool / BoxPtr / BoxClosure / BoxUndefined / BoxNull and their
// inverses give the Go-side reference implementation of §4.6.1's Any
// encoding: tag in the low byte, payload in the remaining 56 bits. Any_F64
// is the one payload that does not fit inline — see float box helpers in
// host.go — so it has no Box/Unbox pair here.
func boxTagPayload(tag AnyTag, payload uint64) uint64 {
	return (payload << 8) | uint64(byte(tag))
}

func unboxTag(any uint64) AnyTag { return AnyTag(any & 0xFF) }
func unboxPayload(any uint64) uint64 { return any >> 8 }

func BoxI32(v int32) uint64      { return boxTagPayload(AnyI32, uint64(uint32(v))) }
func BoxBool(v bool) uint64 {
	if v {
		return boxTagPayload(AnyBool, 1)
	}
	return boxTagPayload(AnyBool, 0)
}
func BoxPtr(ptr uint32) uint64     { return boxTagPayload(AnyPtr, uint64(ptr)) }
func BoxClosure(ptr uint32) uint64 { return boxTagPayload(AnyClosure, uint64(ptr)) }
func BoxUndefined() uint64         { return boxTagPayload(AnyUndefined, 0) }
func BoxNull() uint64              { return boxTagPayload(AnyNull, 0) }

func UnboxI32(any uint64) int32  { return int32(uint32(unboxPayload(any))) }
func UnboxBool(any uint64) bool  { return unboxPayload(any) != 0 }
func UnboxPtr(any uint64) uint32 { return uint32(unboxPayload(any)) }
