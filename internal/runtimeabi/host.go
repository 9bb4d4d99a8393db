package runtimeabi

// HostRuntime bundles the Heap, ClassTable, ShadowStack and GC into the
// exact set of host-function-shaped methods internal/wasmgen emits calls
// to (emit.go's registerImports list), so a wazero module builder can
// export each method as an "env.<name>" host function with a one-line
// wrapper. Method names here match the import names 1:1 (CamelCase of the
// snake_case import), not §6.2's larger table — see abi.go's doc comment
// for why the two tables differ.
type HostRuntime struct {
	Heap    *Heap
	Classes *ClassTable
	Stack   *ShadowStack
	GC      *GC

	// gcThreshold bytes of bump-allocation since the last collection before
	// Alloc triggers one; 0 disables automatic collection (tests that want
	// full control over when Collect runs).
	gcThreshold uint32
	sinceLastGC uint32
	printer     Printer
}

func NewHostRuntime(mem Memory) *HostRuntime {
	heap := NewHeap(mem)
	classes := NewClassTable()
	stack := &ShadowStack{}
	return &HostRuntime{
		Heap:    heap,
		Classes: classes,
		Stack:   stack,
		GC:      NewGC(heap, classes, stack),
	}
}

// SetGCThreshold enables automatic collection once at least n bytes have
// been bump-allocated since the last cycle (§4.7's "invoked automatically
// ... when the bump allocator's watermark would exceed the heap's current
// size" simplified to a configurable byte budget, since this Go-side heap
// grows in large page-sized increments rather than a fixed ceiling).
func (h *HostRuntime) SetGCThreshold(n uint32) { h.gcThreshold = n }

func (h *HostRuntime) maybeCollect(justAllocated uint32) {
	if h.gcThreshold == 0 {
		return
	}
	h.sinceLastGC += justAllocated
	if h.sinceLastGC >= h.gcThreshold {
		h.GC.Collect()
		h.sinceLastGC = 0
	}
}

// --- GC bracketing (§4.6.4, §4.7) ---

func (h *HostRuntime) GCEnterFn(numSlots int32) { h.Stack.EnterFrame(numSlots) }
func (h *HostRuntime) GCExitFn()                { h.Stack.ExitFrame() }

func (h *HostRuntime) SetInCurrentShadowFrameSlot(ptr uint32, slot int32) {
	h.Stack.PublishPtr(slot, ptr)
}

func (h *HostRuntime) SetAnyInCurrentShadowFrameSlot(any uint64, slot int32) {
	h.Stack.PublishAny(slot, any)
}

// --- bump/free-list allocation ---

// Alloc is the generic "reserve n raw bytes" import used for shapes the
// emitter doesn't have a dedicated allocator call for; it bypasses the
// Tag-header shapes entirely and hands back a bare offset; opaque-use
// callers (e.g. closure/env capture scratch space) are responsible for
// never passing the result to a shape-specific Heap accessor.
func (h *HostRuntime) Alloc(n uint32) uint32 {
	ptr := h.Heap.bump(align(n))
	h.maybeCollect(n)
	return ptr
}

// --- floats (§4.6.1's boxed-F64 simplification) ---

func (h *HostRuntime) FloatBoxNew(v float64) uint32 {
	ptr := h.Heap.AllocFloatCell(v)
	h.maybeCollect(8)
	return ptr
}

func (h *HostRuntime) FloatBoxRead(ptr uint32) float64 { return h.Heap.ReadFloatCell(ptr) }

// --- arrays ---

func (h *HostRuntime) ArrayNew(length uint32) uint32 {
	ptr := h.Heap.AllocArray(length)
	h.maybeCollect(length * AnySize)
	return ptr
}

func (h *HostRuntime) ArrayGet(ptr uint32, index uint32) uint64 { return h.Heap.ArrayGet(ptr, index) }

func (h *HostRuntime) ArraySet(ptr uint32, index uint32, v uint64) { h.Heap.ArraySet(ptr, index, v) }

// ArrayPush grows ptr's array by one element into a fresh allocation
// (§4.6.6's array_push typed leaf): this subset's arrays carry no spare
// capacity, so every push reallocates and copies rather than mutating ptr
// in place, and the emitter rebinds its local to the returned pointer.
func (h *HostRuntime) ArrayPush(ptr uint32, v uint64) uint32 {
	n := h.Heap.ArrayLen(ptr)
	grown := h.Heap.AllocArray(n + 1)
	for i := uint32(0); i < n; i++ {
		h.Heap.ArraySet(grown, i, h.Heap.ArrayGet(ptr, i))
	}
	h.Heap.ArraySet(grown, n, v)
	h.maybeCollect((n + 1) * AnySize)
	return grown
}

func (h *HostRuntime) ArrayLen(ptr uint32) uint32 { return h.Heap.ArrayLen(ptr) }

func (h *HostRuntime) StringLen(ptr uint32) uint32 { return h.Heap.StringLen(ptr) }

// --- objects / hidden classes ---

func (h *HostRuntime) ObjectNew() uint32 {
	ptr := h.Heap.AllocObject(0, h.Classes)
	h.maybeCollect(TagSize)
	return ptr
}

// readFieldName resolves the NUL-terminated field-name string the emitter
// placed in the data segment at nameOffset (§6.4): field names are emitted
// as plain UTF-8 bytes with a trailing 0, since wasm data segments carry no
// length prefix of their own and this subset's field names never contain a
// NUL byte.
func readFieldName(mem Memory, nameOffset uint32) string {
	var b []byte
	for off := nameOffset; ; off++ {
		c := mem.ReadByte(off)
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

// ObjectSet writes field (named by the string at nameOffset) on the object
// at ptr, transitioning to a new hidden class first if this object's
// current class doesn't already have that field (§4.7's hidden-class
// transition, grounded on class.go's Transition trie). Growing the class
// means the object's storage must grow too, so a transitioned object is
// reallocated and its surviving fields copied — ObjectSet therefore
// returns the (possibly new) object pointer, boxed as an Any(Ptr) so the
// emitter can rebind the local holding it.
func (h *HostRuntime) ObjectSet(ptr uint32, nameOffset uint32, v uint64) uint64 {
	tag := h.Heap.ClassTagAt(ptr)
	field := readFieldName(h.Heap.Mem(), nameOffset)

	if slot, ok := h.Classes.SlotOf(tag, field); ok {
		h.Heap.SetObjectFieldAt(ptr, slot, v)
		return BoxPtr(ptr)
	}

	newTag := h.Classes.Transition(tag, field)
	newPtr := h.Heap.AllocObject(newTag, h.Classes)
	for slot, name := range h.Classes.Fields(tag) {
		newSlot, _ := h.Classes.SlotOf(newTag, name)
		h.Heap.SetObjectFieldAt(newPtr, newSlot, h.Heap.ObjectFieldAt(ptr, slot))
	}
	newSlot, _ := h.Classes.SlotOf(newTag, field)
	h.Heap.SetObjectFieldAt(newPtr, newSlot, v)
	h.maybeCollect(uint32(h.Classes.Size(newTag)) * AnySize)
	return BoxPtr(newPtr)
}

// ObjectGetCached reads field (named at nameOffset) from ptr. cacheSlot is
// accepted to match the import's three-argument signature (§4.6.7's
// inline-cache slot), but this implementation always resolves the field by
// name through the class table rather than trusting a cached offset — a
// from-scratch Go runtime has no cheaper path to "is the cached offset
// still valid for this object's current class" than the lookup itself.
func (h *HostRuntime) ObjectGetCached(ptr uint32, nameOffset uint32, cacheSlot uint32) uint64 {
	field := readFieldName(h.Heap.Mem(), nameOffset)
	tag := h.Heap.ClassTagAt(ptr)
	slot, ok := h.Classes.SlotOf(tag, field)
	if !ok {
		return BoxUndefined()
	}
	return h.Heap.ObjectFieldAt(ptr, slot)
}

// --- closures ---

func (h *HostRuntime) ClosureNew(fnIndex uint32, envLen uint32) uint32 {
	ptr := h.Heap.AllocClosure(fnIndex, envLen)
	h.maybeCollect(envLen * AnySize)
	return ptr
}

func (h *HostRuntime) ClosureSetCapture(ptr uint32, v uint64, index uint32) {
	h.Heap.SetClosureCapture(ptr, index, v)
}

// --- diagnostics ---

// Printer renders one boxed Any value for the "print" import; cmd/jankgo
// supplies the concrete implementation (closing over its chosen io.Writer)
// via SetPrinter when wiring HostRuntime into a wazero module.
type Printer func(tag AnyTag, payload uint64, mem Memory)

func (h *HostRuntime) SetPrinter(p Printer) { h.printer = p }

// Print is the runtime side of the emitted "print" import (§6.2); a nil
// printer (no SetPrinter call yet) is a no-op rather than a panic, so unit
// tests that exercise print-using programs don't all need one configured.
func (h *HostRuntime) Print(any uint64) {
	if h.printer == nil {
		return
	}
	h.printer(unboxTag(any), unboxPayload(any), h.Heap.Mem())
}
