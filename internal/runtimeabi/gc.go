package runtimeabi

import "github.com/funvibe/jankgo/internal/diag"

// GC is a precise mark-and-sweep collector over a Heap, tracing roots from
// a ShadowStack (§3.5, §4.7). Grounded on the same mark/sweep vocabulary as
// other_examples' gavlooth-purple_go runtime generator (its `mark`
// field and free-list recycling in pkg/codegen/runtime.go), generalized
// from that file's single-shape Obj graph to this heap's three traced
// shapes (Array, DynObject, Closure); every other shape is a leaf.
type GC struct {
	heap    *Heap
	classes *ClassTable
	stack   *ShadowStack
}

func NewGC(heap *Heap, classes *ClassTable, stack *ShadowStack) *GC {
	return &GC{heap: heap, classes: classes, stack: stack}
}

// Collect runs one full mark-and-sweep cycle. §4.7 invariant 3: this must
// only be called when the shadow stack accurately reflects every live
// root — the emitter's obligation, not this collector's to verify.
func (g *GC) Collect() {
	g.mark()
	g.sweep()
}

func (g *GC) mark() {
	for _, root := range g.stack.Roots() {
		g.markPtr(root)
	}
}

// markPtr marks ptr and recursively marks everything it references,
// short-circuiting on a pointer already marked (handles both shared
// sub-objects and any accidental cycle without extra bookkeeping).
func (g *GC) markPtr(ptr uint32) {
	if ptr == 0 || g.heap.IsMarked(ptr) {
		return
	}
	g.heap.SetMarked(ptr, true)

	switch g.heap.TypeAt(ptr) {
	case HeapArray:
		n := g.heap.ArrayLen(ptr)
		for i := uint32(0); i < n; i++ {
			g.markAny(g.heap.ArrayGet(ptr, i))
		}
	case HeapClass:
		tag := g.heap.ClassTagAt(ptr)
		for slot := 0; slot < g.classes.Size(tag); slot++ {
			g.markAny(g.heap.ObjectFieldAt(ptr, slot))
		}
	case HeapClosure:
		n := g.heap.ClosureEnvLen(ptr)
		for i := uint32(0); i < n; i++ {
			g.markAny(g.heap.ClosureCapture(ptr, i))
		}
	case HeapEnv, HeapRef, HeapHT, HeapString, HeapF64, HeapObjectPtrPtr:
		// String/F64 cells hold no outgoing pointers. HeapEnv/HeapRef/HeapHT
		// are reserved shapes this subset's front end never actually
		// allocates (closures carry their env inline, §4.6.2); tracing them
		// as leaves is the conservative-but-harmless choice if a future
		// front end starts using them before this switch is extended.
	default:
		diag.Bug("runtimeabi: mark: unrecognized heap type %d at %d", g.heap.TypeAt(ptr), ptr)
	}
}

// markAny marks the pointer payload of a boxed Any, if its tag carries one.
func (g *GC) markAny(any uint64) {
	switch unboxTag(any) {
	case AnyPtr, AnyClosure:
		g.markPtr(UnboxPtr(any))
	case AnyF64:
		g.markPtr(UnboxPtr(any)) // payload is the float-cell pointer (§4.6.1)
	}
}

// sweep reclaims every tracked allocation that survived mark() unmarked,
// then clears every surviving object's mark bit for the next cycle (§3.5:
// "marked is false between GC cycles").
func (g *GC) sweep() {
	survivors := g.heap.AllPointers()[:0]
	for _, ptr := range g.heap.AllPointers() {
		if g.heap.IsMarked(ptr) {
			g.heap.SetMarked(ptr, false)
			survivors = append(survivors, ptr)
			continue
		}
		size := g.heap.BlockSize(ptr, g.classes)
		g.heap.Free(ptr, size)
	}
	g.heap.ReplaceAllPointers(survivors)
}
