package runtimeabi

import "testing"

func newTestGC() (*Heap, *ClassTable, *ShadowStack, *GC) {
	heap := NewHeap(NewByteMemory(64 * 1024))
	classes := NewClassTable()
	stack := &ShadowStack{}
	return heap, classes, stack, NewGC(heap, classes, stack)
}

func TestGCSweepsUnrootedArray(t *testing.T) {
	heap, classes, _, gc := newTestGC()
	heap.AllocArray(2)

	if len(heap.AllPointers()) != 1 {
		t.Fatalf("expected one live allocation before collection, got %d", len(heap.AllPointers()))
	}
	gc.Collect()
	if len(heap.AllPointers()) != 0 {
		t.Errorf("expected the unrooted array to be swept, %d pointers survived", len(heap.AllPointers()))
	}
	_ = classes
}

func TestGCKeepsRootedArray(t *testing.T) {
	heap, _, stack, gc := newTestGC()
	ptr := heap.AllocArray(1)

	stack.EnterFrame(1)
	stack.PublishPtr(0, ptr)
	gc.Collect()
	stack.ExitFrame()

	survivors := heap.AllPointers()
	if len(survivors) != 1 || survivors[0] != ptr {
		t.Fatalf("rooted array did not survive collection: %v", survivors)
	}
	if heap.IsMarked(ptr) {
		t.Errorf("surviving object's mark bit should be cleared after sweep")
	}
}

func TestGCTracesArrayElements(t *testing.T) {
	heap, _, stack, gc := newTestGC()
	inner := heap.AllocArray(0)
	outer := heap.AllocArray(1)
	heap.ArraySet(outer, 0, BoxPtr(inner))

	stack.EnterFrame(1)
	stack.PublishPtr(0, outer)
	gc.Collect()
	stack.ExitFrame()

	survivors := heap.AllPointers()
	if len(survivors) != 2 {
		t.Fatalf("expected both outer and inner arrays to survive, got %v", survivors)
	}
}

func TestGCTracesObjectFields(t *testing.T) {
	heap, classes, stack, gc := newTestGC()
	tag := classes.Transition(0, "next")
	child := heap.AllocObject(0, classes)
	parent := heap.AllocObject(tag, classes)
	slot, _ := classes.SlotOf(tag, "next")
	heap.SetObjectFieldAt(parent, slot, BoxPtr(child))

	stack.EnterFrame(1)
	stack.PublishPtr(0, parent)
	gc.Collect()
	stack.ExitFrame()

	survivors := heap.AllPointers()
	if len(survivors) != 2 {
		t.Fatalf("expected parent and its linked child to survive, got %v", survivors)
	}
}

func TestGCTracesClosureCaptures(t *testing.T) {
	heap, _, stack, gc := newTestGC()
	captured := heap.AllocArray(0)
	closure := heap.AllocClosure(0, 1)
	heap.SetClosureCapture(closure, 0, BoxPtr(captured))

	stack.EnterFrame(1)
	stack.PublishPtr(0, closure)
	gc.Collect()
	stack.ExitFrame()

	survivors := heap.AllPointers()
	if len(survivors) != 2 {
		t.Fatalf("expected closure and its capture to survive, got %v", survivors)
	}
}

func TestGCFreesReclaimedBlockForReuse(t *testing.T) {
	heap, classes, _, gc := newTestGC()
	ptr := heap.AllocObject(0, classes)
	size := heap.BlockSize(ptr, classes)

	gc.Collect()

	reused, ok := heap.freeList.Alloc(size)
	if !ok || reused != ptr {
		t.Fatalf("swept block was not returned to the free list: got (%d, %v)", reused, ok)
	}
}
