package runtimeabi

import "github.com/funvibe/jankgo/internal/diag"

// rootSlot holds one GC-root-typed local's last-published value: either a
// raw heap pointer (ptr-shaped locals — Array/String/DynObject/Ref/Env/
// Closure) or a full boxed Any (locals typed Any, which may or may not
// currently hold a pointer). isAny discriminates which reading applies.
type rootSlot struct {
	ptr   uint32
	any   uint64
	isAny bool
	live  bool
}

// frame is one function activation's root vector, sized to that function's
// slot count at gc_enter_fn time (§4.6.4).
type frame struct {
	slots []rootSlot
}

// ShadowStack is the runtime-maintained stack of frames §4.7 requires every
// allocation to be able to trace roots through (consulted only during gc(),
// per the GLOSSARY). EnterFrame/ExitFrame bracket a function body exactly
// the way gc_enter_fn/gc_exit_fn bracket it in emitted code
// (internal/wasmgen/codegen.go's emitGCPrologue/emitGCEpilogue).
type ShadowStack struct {
	frames []*frame
}

func (s *ShadowStack) EnterFrame(numSlots int32) {
	if numSlots < 0 {
		diag.Bug("runtimeabi: gc_enter_fn called with negative slot count %d", numSlots)
	}
	s.frames = append(s.frames, &frame{slots: make([]rootSlot, numSlots)})
}

func (s *ShadowStack) ExitFrame() {
	if len(s.frames) == 0 {
		diag.Bug("runtimeabi: gc_exit_fn called with no matching gc_enter_fn")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *ShadowStack) current() *frame {
	if len(s.frames) == 0 {
		diag.Bug("runtimeabi: shadow-frame access outside any gc_enter_fn/gc_exit_fn bracket")
	}
	return s.frames[len(s.frames)-1]
}

// PublishPtr records a raw heap pointer for the current frame's slot
// (set_in_current_shadow_frame_slot, §6.2).
func (s *ShadowStack) PublishPtr(slot int32, ptr uint32) {
	f := s.current()
	f.slots[slot] = rootSlot{ptr: ptr, live: ptr != 0}
}

// PublishAny records a boxed Any for the current frame's slot
// (set_any_in_current_shadow_frame_slot, §6.2) — live only when the tag is
// one that can carry a heap pointer (Ptr or Closure; F64's payload is also
// a pointer, to a float cell allocated on the same Heap, so it is traced too).
func (s *ShadowStack) PublishAny(slot int32, any uint64) {
	f := s.current()
	tag := unboxTag(any)
	live := tag == AnyPtr || tag == AnyClosure || tag == AnyF64
	f.slots[slot] = rootSlot{any: any, isAny: true, live: live}
}

// Roots yields every currently-live heap pointer reachable from the shadow
// stack, the GC mark phase's starting set.
func (s *ShadowStack) Roots() []uint32 {
	var roots []uint32
	for _, f := range s.frames {
		for _, sl := range f.slots {
			if !sl.live {
				continue
			}
			if sl.isAny {
				roots = append(roots, UnboxPtr(sl.any))
			} else {
				roots = append(roots, sl.ptr)
			}
		}
	}
	return roots
}

// Depth reports the number of currently-open frames, for diagnostics and
// for the "gc() only between entry and exit" invariant checks in tests.
func (s *ShadowStack) Depth() int { return len(s.frames) }
