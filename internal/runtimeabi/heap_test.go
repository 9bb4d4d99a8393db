package runtimeabi

import "testing"

func newTestHeap() *Heap {
	return NewHeap(NewByteMemory(64 * 1024))
}

func TestHeapAllocArrayRoundTrip(t *testing.T) {
	h := newTestHeap()
	ptr := h.AllocArray(3)

	if got := h.ArrayLen(ptr); got != 3 {
		t.Fatalf("ArrayLen = %d, want 3", got)
	}
	for i := uint32(0); i < 3; i++ {
		if got := h.ArrayGet(ptr, i); got != BoxUndefined() {
			t.Errorf("element %d = %#x, want Undefined", i, got)
		}
	}

	h.ArraySet(ptr, 1, BoxI32(42))
	if got := h.ArrayGet(ptr, 1); UnboxI32(got) != 42 {
		t.Errorf("ArrayGet(1) = %d, want 42", UnboxI32(got))
	}
	if h.TypeAt(ptr) != HeapArray {
		t.Errorf("TypeAt = %v, want HeapArray", h.TypeAt(ptr))
	}
}

func TestHeapAllocObjectFieldLayout(t *testing.T) {
	h := newTestHeap()
	classes := NewClassTable()

	ptr := h.AllocObject(0, classes)
	newTag := classes.Transition(0, "x")

	// AllocObject sized the object for class 0 (zero fields); growing the
	// class after the fact is exactly ObjectSet's reallocation job, not
	// this test's — it only checks that a freshly-sized object for the
	// post-transition class has room for the new field.
	grown := h.AllocObject(newTag, classes)
	slot, ok := classes.SlotOf(newTag, "x")
	if !ok || slot != 0 {
		t.Fatalf("SlotOf(newTag, x) = (%d, %v), want (0, true)", slot, ok)
	}
	h.SetObjectFieldAt(grown, slot, BoxI32(7))
	if got := h.ObjectFieldAt(grown, slot); UnboxI32(got) != 7 {
		t.Errorf("ObjectFieldAt = %d, want 7", UnboxI32(got))
	}
	if h.ClassTagAt(ptr) != 0 {
		t.Errorf("original object's class tag changed unexpectedly")
	}
}

func TestHeapAllocClosureCaptures(t *testing.T) {
	h := newTestHeap()
	ptr := h.AllocClosure(5, 2)

	if got := h.ClosureFuncIndex(ptr); got != 5 {
		t.Errorf("ClosureFuncIndex = %d, want 5", got)
	}
	if got := h.ClosureEnvLen(ptr); got != 2 {
		t.Errorf("ClosureEnvLen = %d, want 2", got)
	}

	h.SetClosureCapture(ptr, 0, BoxBool(true))
	h.SetClosureCapture(ptr, 1, BoxI32(99))

	if got := h.ClosureCapture(ptr, 0); !UnboxBool(got) {
		t.Errorf("capture 0 = false, want true")
	}
	if got := h.ClosureCapture(ptr, 1); UnboxI32(got) != 99 {
		t.Errorf("capture 1 = %d, want 99", UnboxI32(got))
	}
}

func TestHeapAllocFloatCell(t *testing.T) {
	h := newTestHeap()
	ptr := h.AllocFloatCell(3.5)
	if got := h.ReadFloatCell(ptr); got != 3.5 {
		t.Errorf("ReadFloatCell = %v, want 3.5", got)
	}
}

func TestHeapAllocStringRoundTrip(t *testing.T) {
	h := newTestHeap()
	ptr := h.AllocString("hello")
	if got := h.StringLen(ptr); got != 5 {
		t.Errorf("StringLen = %d, want 5", got)
	}
}

func TestHeapMarkBitIsolated(t *testing.T) {
	h := newTestHeap()
	ptr := h.AllocArray(1)
	if h.IsMarked(ptr) {
		t.Fatalf("freshly allocated block should start unmarked")
	}
	h.SetMarked(ptr, true)
	if !h.IsMarked(ptr) {
		t.Fatalf("SetMarked(true) did not stick")
	}
}

func TestHeapReusesFreedBlockViaFreeList(t *testing.T) {
	h := newTestHeap()
	classes := NewClassTable()

	ptr := h.AllocObject(0, classes)
	size := h.BlockSize(ptr, classes)
	h.Free(ptr, size)

	reused, ok := h.freeList.Alloc(size)
	if !ok || reused != ptr {
		t.Fatalf("freed block was not recycled: got (%d, %v), want (%d, true)", reused, ok, ptr)
	}
}
