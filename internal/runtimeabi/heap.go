package runtimeabi

import "github.com/funvibe/jankgo/internal/diag"

// Heap owns the free list over a Memory and grows it on demand, matching
// §3.5's "contiguous byte buffer of configurable size, aligned to W". W is
// fixed at 8 here (double-word), matching ANY_SIZE's alignment requirement.
const wordAlign = 8
const growBytes = 64 * 1024 // one wasm page

type Heap struct {
	mem       Memory
	freeList  FreeList
	watermark uint32 // next never-yet-allocated offset, bumped when the free list is empty

	// allocated tracks every live allocation's pointer in allocation order,
	// so GC's sweep phase (gc.go) never has to guess whether a given byte
	// range is a live object or stale bytes inside an already-freed block —
	// Free() doesn't scrub payload bytes, so a raw sequential walk of the
	// heap buffer can't tell live from dead on its own.
	allocated []uint32
}

// NewHeap wraps mem, reserving the first wordAlign bytes as a permanent
// null region so a zero pointer is never a valid allocation.
func NewHeap(mem Memory) *Heap {
	return &Heap{mem: mem, watermark: wordAlign}
}

func align(n uint32) uint32 {
	return (n + wordAlign - 1) &^ (wordAlign - 1)
}

// alloc reserves size bytes for a payload of heap type t (and, for
// HeapClass, the given class tag), returning the pointer to its Tag header.
// The payload begins immediately after the header at ptr+TagSize.
func (h *Heap) alloc(t HeapType, classTag uint16, payloadSize uint32) uint32 {
	total := align(TagSize + payloadSize)
	ptr, ok := h.freeList.Alloc(total)
	if !ok {
		ptr = h.bump(total)
	}
	writeHeader(h.mem, ptr, header{TypeTag: t, Marked: false, ClassTag: classTag})
	h.allocated = append(h.allocated, ptr)
	return ptr
}

// AllPointers returns every currently-tracked live allocation, in
// allocation order. GC's sweep phase consults this rather than walking raw
// memory.
func (h *Heap) AllPointers() []uint32 { return h.allocated }

// ReplaceAllPointers installs the post-sweep survivor set.
func (h *Heap) ReplaceAllPointers(ptrs []uint32) { h.allocated = ptrs }

func (h *Heap) bump(size uint32) uint32 {
	if h.watermark+size > h.mem.Size() {
		grow := size
		if grow < growBytes {
			grow = growBytes
		}
		if !h.mem.Grow(grow) {
			diag.Bug("runtimeabi: heap exhausted requesting %d bytes (gc() already attempted by caller)", size)
		}
	}
	ptr := h.watermark
	h.watermark += size
	return ptr
}

// blockSize recovers an allocation's total size (header + payload) from its
// runtime-known shape, needed when the GC sweeps a block back to the free
// list. DynObject size comes from the class table (the header alone doesn't
// carry field count), so sweep looks it up via the ClassTable the GC holds;
// every other shape is self-describing from its own header/length fields.
func (h *Heap) blockSize(ptr uint32, classes *ClassTable) uint32 {
	hd := readHeader(h.mem, ptr)
	switch hd.TypeTag {
	case HeapClass:
		return align(TagSize + uint32(classes.Size(hd.ClassTag))*AnySize)
	case HeapArray:
		length := h.mem.ReadUint32(ptr + TagSize)
		return align(TagSize + LengthSize + length*AnySize)
	case HeapString:
		length := h.mem.ReadUint32(ptr + TagSize)
		return align(TagSize + LengthSize + length)
	case HeapClosure:
		length := h.mem.ReadUint32(ptr + TagSize)
		return align(TagSize + LengthSize + FnObjSize + length*AnySize)
	case HeapEnv:
		length := h.mem.ReadUint32(ptr + TagSize)
		return align(TagSize + LengthSize + length*AnySize)
	case HeapRef:
		// Ref cells are fixed at one Any-sized slot in this implementation;
		// a tighter packing (e.g. 4 bytes for a non-pointer inner type)
		// would need the inner type tagged alongside the header, which
		// §4.6.2 doesn't allocate room for.
		return align(TagSize + AnySize)
	case HeapF64:
		return align(TagSize + 8)
	default:
		diag.Bug("runtimeabi: blockSize: unrecognized heap type %d at %d", hd.TypeTag, ptr)
		return 0
	}
}

// Free returns a block to the allocator's free list, used by the sweep
// phase of GC (gc.go) once it determines a block is unreachable.
func (h *Heap) Free(ptr uint32, size uint32) { h.freeList.Free(ptr, size) }

// BlockSize exposes blockSize for the sweep phase.
func (h *Heap) BlockSize(ptr uint32, classes *ClassTable) uint32 { return h.blockSize(ptr, classes) }

// Watermark is the first never-yet-allocated offset. Sweep does not use it:
// it visits the blocks listed by AllPointers().
func (h *Heap) Watermark() uint32 { return h.watermark }

func (h *Heap) TypeAt(ptr uint32) HeapType   { return readHeader(h.mem, ptr).TypeTag }
func (h *Heap) ClassTagAt(ptr uint32) uint16 { return readHeader(h.mem, ptr).ClassTag }
func (h *Heap) IsMarked(ptr uint32) bool     { return readHeader(h.mem, ptr).Marked }
func (h *Heap) SetMarked(ptr uint32, v bool) { setMarked(h.mem, ptr, v) }

func (h *Heap) Mem() Memory { return h.mem }

// --- shape-specific allocators (§4.6.2) ---

// AllocArray reserves Tag + length(u32) + length*Any, with every element
// set to a boxed Undefined (per array_new's contract in §6.2).
func (h *Heap) AllocArray(length uint32) uint32 {
	ptr := h.alloc(HeapArray, 0, LengthSize+length*AnySize)
	h.mem.WriteUint32(ptr+TagSize, length)
	base := ptr + TagSize + LengthSize
	for i := uint32(0); i < length; i++ {
		h.mem.WriteUint64(base+i*AnySize, BoxUndefined())
	}
	return ptr
}

func (h *Heap) ArrayLen(ptr uint32) uint32 { return h.mem.ReadUint32(ptr + TagSize) }

func (h *Heap) ArrayGet(ptr uint32, index uint32) uint64 {
	if index >= h.ArrayLen(ptr) {
		diag.Bug("runtimeabi: array index %d out of bounds (len %d)", index, h.ArrayLen(ptr))
	}
	base := ptr + TagSize + LengthSize
	return h.mem.ReadUint64(base + index*AnySize)
}

func (h *Heap) ArraySet(ptr uint32, index uint32, v uint64) {
	if index >= h.ArrayLen(ptr) {
		diag.Bug("runtimeabi: array index %d out of bounds (len %d)", index, h.ArrayLen(ptr))
	}
	base := ptr + TagSize + LengthSize
	h.mem.WriteUint64(base+index*AnySize, v)
}

// AllocObject allocates a DynObject laid out for classTag (one Any per
// field of that class); field writes go through ClassTable-driven transitions in
// host.go's ObjectSet, which may reallocate into a larger class layout.
func (h *Heap) AllocObject(classTag uint16, classes *ClassTable) uint32 {
	n := classes.Size(classTag)
	ptr := h.alloc(HeapClass, classTag, uint32(n)*AnySize)
	return ptr
}

func (h *Heap) ObjectFieldAt(ptr uint32, slot int) uint64 {
	return h.mem.ReadUint64(ptr + TagSize + uint32(slot)*AnySize)
}

func (h *Heap) SetObjectFieldAt(ptr uint32, slot int, v uint64) {
	h.mem.WriteUint64(ptr+TagSize+uint32(slot)*AnySize, v)
}

// AllocClosure reserves Tag + length(u32) + fn-index(u32) + length*Any and
// fills in the function-table index; captured slots are written
// separately, one per ClosureSetCapture call (§4.6.4).
func (h *Heap) AllocClosure(fnIndex uint32, envLen uint32) uint32 {
	ptr := h.alloc(HeapClosure, 0, LengthSize+FnObjSize+envLen*AnySize)
	h.mem.WriteUint32(ptr+TagSize, envLen)
	h.mem.WriteUint32(ptr+TagSize+LengthSize, fnIndex)
	return ptr
}

func (h *Heap) ClosureFuncIndex(ptr uint32) uint32 { return h.mem.ReadUint32(ptr + TagSize + LengthSize) }
func (h *Heap) ClosureEnvLen(ptr uint32) uint32    { return h.mem.ReadUint32(ptr + TagSize) }

func (h *Heap) SetClosureCapture(ptr uint32, index uint32, v uint64) {
	if index >= h.ClosureEnvLen(ptr) {
		diag.Bug("runtimeabi: closure capture index %d out of bounds (env len %d)", index, h.ClosureEnvLen(ptr))
	}
	base := ptr + TagSize + LengthSize + FnObjSize
	h.mem.WriteUint64(base+index*AnySize, v)
}

func (h *Heap) ClosureCapture(ptr uint32, index uint32) uint64 {
	base := ptr + TagSize + LengthSize + FnObjSize
	return h.mem.ReadUint64(base + index*AnySize)
}

// AllocRefCell reserves a one-slot Ref cell holding an Any-sized payload —
// §4.6.2 sizes a Ref by "its declared inner type's wasm size", but since
// this package only ever sees Ref cells through NewRef's boxed-or-raw value
// (never the LowIR type itself), it conservatively reserves a full Any-sized
// slot and lets the caller write whichever width it actually needs into the
// low bytes.
func (h *Heap) AllocRefCell() uint32 {
	return h.alloc(HeapRef, 0, AnySize)
}

// AllocFloatCell backs a boxed Any(F64): a bare 8-byte heap cell holding the
// raw bits (§4.6.1's simplification, mirrored from internal/wasmgen/box.go).
func (h *Heap) AllocFloatCell(v float64) uint32 {
	ptr := h.alloc(HeapF64, 0, 8)
	h.mem.WriteFloat64(ptr+TagSize, v)
	return ptr
}

func (h *Heap) ReadFloatCell(ptr uint32) float64 { return h.mem.ReadFloat64(ptr + TagSize) }

// AllocString copies s into a fresh Tag + length(u32) + UTF-8 bytes block.
func (h *Heap) AllocString(s string) uint32 {
	ptr := h.alloc(HeapString, 0, LengthSize+uint32(len(s)))
	h.mem.WriteUint32(ptr+TagSize, uint32(len(s)))
	base := ptr + TagSize + LengthSize
	for i := 0; i < len(s); i++ {
		h.mem.WriteByte(base+uint32(i), s[i])
	}
	return ptr
}

func (h *Heap) StringLen(ptr uint32) uint32 { return h.mem.ReadUint32(ptr + TagSize) }
