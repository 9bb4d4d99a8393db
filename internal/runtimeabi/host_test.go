package runtimeabi

import "testing"

// writeCString stores a NUL-terminated field name into mem at offset,
// mirroring how the emitter lays out field-name strings in the data
// segment (§6.4).
func writeCString(mem Memory, offset uint32, s string) {
	for i := 0; i < len(s); i++ {
		mem.WriteByte(offset+uint32(i), s[i])
	}
	mem.WriteByte(offset+uint32(len(s)), 0)
}

func newTestHost() (*HostRuntime, Memory) {
	mem := NewByteMemory(64 * 1024)
	return NewHostRuntime(mem), mem
}

func TestHostObjectSetThenGetCached(t *testing.T) {
	host, mem := newTestHost()
	const nameOff = 1024
	writeCString(mem, nameOff, "x")

	ptr := host.ObjectNew()
	newAny := host.ObjectSet(ptr, nameOff, BoxI32(5))
	newPtr := UnboxPtr(newAny)

	got := host.ObjectGetCached(newPtr, nameOff, 0)
	if UnboxI32(got) != 5 {
		t.Fatalf("ObjectGetCached = %d, want 5", UnboxI32(got))
	}
}

func TestHostObjectSetGrowsClassOnSecondField(t *testing.T) {
	host, mem := newTestHost()
	const nameX, nameY = 1024, 1040
	writeCString(mem, nameX, "x")
	writeCString(mem, nameY, "y")

	ptr := host.ObjectNew()
	afterX := UnboxPtr(host.ObjectSet(ptr, nameX, BoxI32(1)))
	afterY := UnboxPtr(host.ObjectSet(afterX, nameY, BoxI32(2)))

	if UnboxI32(host.ObjectGetCached(afterY, nameX, 0)) != 1 {
		t.Errorf("field x lost across the class transition")
	}
	if UnboxI32(host.ObjectGetCached(afterY, nameY, 0)) != 2 {
		t.Errorf("field y not set correctly")
	}
}

func TestHostObjectGetCachedMissingFieldIsUndefined(t *testing.T) {
	host, mem := newTestHost()
	const nameOff = 1024
	writeCString(mem, nameOff, "missing")

	ptr := host.ObjectNew()
	got := host.ObjectGetCached(ptr, nameOff, 0)
	if got != BoxUndefined() {
		t.Errorf("ObjectGetCached on a missing field = %#x, want Undefined", got)
	}
}

func TestHostArrayPushGrowsLength(t *testing.T) {
	host, _ := newTestHost()

	ptr := host.ArrayNew(0)
	grown := host.ArrayPush(ptr, BoxI32(9))

	if host.ArrayLen(grown) != 1 {
		t.Fatalf("ArrayLen after push = %d, want 1", host.ArrayLen(grown))
	}
	if UnboxI32(host.ArrayGet(grown, 0)) != 9 {
		t.Errorf("pushed element = %d, want 9", UnboxI32(host.ArrayGet(grown, 0)))
	}
}

func TestHostStringLen(t *testing.T) {
	host, _ := newTestHost()
	ptr := host.Heap.AllocString("hello")
	if host.StringLen(ptr) != 5 {
		t.Fatalf("StringLen = %d, want 5", host.StringLen(ptr))
	}
}

func TestHostClosureCaptureRoundTrip(t *testing.T) {
	host, _ := newTestHost()
	ptr := host.ClosureNew(3, 1)
	host.ClosureSetCapture(ptr, BoxBool(true), 0)

	if !UnboxBool(host.Heap.ClosureCapture(ptr, 0)) {
		t.Errorf("closure capture did not round-trip")
	}
}

func TestHostGCBracketingTracksDepth(t *testing.T) {
	host, _ := newTestHost()
	host.GCEnterFn(2)
	if host.Stack.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1 after GCEnterFn", host.Stack.Depth())
	}
	host.GCExitFn()
	if host.Stack.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0 after GCExitFn", host.Stack.Depth())
	}
}

func TestHostAutoCollectReclaimsUnrootedAllocations(t *testing.T) {
	host, _ := newTestHost()
	host.SetGCThreshold(1) // collect on every allocation

	host.ArrayNew(4) // never rooted; immediately collectible
	if len(host.Heap.AllPointers()) != 0 {
		t.Errorf("expected the threshold-triggered GC to reclaim the unrooted array, got %v", host.Heap.AllPointers())
	}
}

func TestHostPrintIsNoopWithoutPrinter(t *testing.T) {
	host, _ := newTestHost()
	host.Print(BoxI32(1)) // must not panic with no SetPrinter call
}

func TestHostPrintInvokesConfiguredPrinter(t *testing.T) {
	host, _ := newTestHost()
	var gotTag AnyTag
	var gotPayload uint64
	host.SetPrinter(func(tag AnyTag, payload uint64, mem Memory) {
		gotTag, gotPayload = tag, payload
	})
	host.Print(BoxI32(11))
	if gotTag != AnyI32 || int32(gotPayload) != 11 {
		t.Errorf("printer received (%v, %d), want (AnyI32, 11)", gotTag, gotPayload)
	}
}
