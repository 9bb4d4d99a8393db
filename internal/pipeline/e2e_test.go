package pipeline

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/funvibe/jankgo/internal/runtimeabi"
)

// run compiles source end to end through the real pipeline, instantiates
// the emitted module under a real wazero runtime wired to the real
// runtimeabi host (not wasmgen's stub host — that package only checks
// emission; this one exercises GC bracketing, the heap and the class
// table too), runs "main", and returns every Any value the program
// printed, in order. This replaces the teacher's old tests/functional_test.go
// fixture-file harness (it shelled out to `go build` plus a compiled funxy
// binary over a corpus of .lang/.want files, none of which exist for this
// language) with something that runs entirely in-process against §8
// invariant 4 ("the emitted module, once instantiated, behaves per the ABI
// this document specifies"). Printed values stand in for a return value:
// top-level statements have no §6.3 return slot of their own, the way a
// JS module's top level runs for effect rather than yielding a result.
func run(t *testing.T, source string) []uint64 {
	t.Helper()
	return runWithGCThreshold(t, source, 0)
}

// runWithGCThreshold is run but with the host's automatic collector armed
// at gcThreshold bytes (0 keeps it disabled, matching run's old behavior) —
// used to drive a real mid-program collection through a real compiled
// module instead of gc_test.go's manual stack.PublishPtr poking, per §8
// invariant 3.
func runWithGCThreshold(t *testing.T, source string, gcThreshold uint32) []uint64 {
	t.Helper()

	wasm, err := Compile("e2e", "e2e.js", source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	host := runtimeabi.NewHostRuntime(runtimeabi.NewByteMemory(65536))
	host.SetGCThreshold(gcThreshold)
	var printed []uint64
	host.SetPrinter(func(tag runtimeabi.AnyTag, payload uint64, mem runtimeabi.Memory) {
		printed = append(printed, (payload<<8)|uint64(byte(tag)))
	})
	if _, err := runtimeabi.BuildEnvModule(ctx, rt, host).Instantiate(ctx); err != nil {
		t.Fatalf("building env host module: %v", err)
	}

	mod, err := rt.Instantiate(ctx, wasm)
	if err != nil {
		t.Fatalf("instantiating emitted module: %v", err)
	}
	runtimeabi.BindMemory(host, mod)

	main := mod.ExportedFunction("main")
	if main == nil {
		t.Fatal("emitted module does not export \"main\"")
	}
	if _, err := main.Call(ctx); err != nil {
		t.Fatalf("calling main: %v", err)
	}
	return printed
}

func TestE2E_ArithmeticPrintsUnboxedInt(t *testing.T) {
	printed := run(t, `print(1 + 2);`)
	if len(printed) != 1 {
		t.Fatalf("want 1 printed value, got %d", len(printed))
	}
	if v := runtimeabi.UnboxI32(printed[0]); v != 3 {
		t.Fatalf("want 3, got %d", v)
	}
}

func TestE2E_FunctionCallPrintsArgSum(t *testing.T) {
	printed := run(t, `function add(a, b) { return a + b; } print(add(4, 5));`)
	if len(printed) != 1 {
		t.Fatalf("want 1 printed value, got %d", len(printed))
	}
	if v := runtimeabi.UnboxI32(printed[0]); v != 9 {
		t.Fatalf("want 9, got %d", v)
	}
}

func TestE2E_ConditionalPrintsBothBranches(t *testing.T) {
	printed := run(t, `
if (1 + 1 == 2) { print(true); } else { print(false); }
var i = 0;
while (i < 3) { print(i); i = i + 1; }
`)
	if len(printed) != 4 {
		t.Fatalf("want 4 printed values, got %d", len(printed))
	}
	if !runtimeabi.UnboxBool(printed[0]) {
		t.Fatal("want the condition branch to print true")
	}
	for i := 0; i < 3; i++ {
		if v := runtimeabi.UnboxI32(printed[i+1]); int(v) != i {
			t.Fatalf("loop iteration %d: want %d, got %d", i, i, v)
		}
	}
}

// TestE2E_ArraySurvivesMidFunctionGCViaShadowFramePublish drives a real
// threshold-triggered collection mid-function against a compiled program
// that keeps one array alive in a local the whole time while repeatedly
// allocating throwaway ones (§4.6.4, §8 invariant 3: "every heap
// allocation ... is preceded by a shadow-frame publication call for that
// slot" — before that publication was wired up, keep's backing array had
// no shadow-stack root at all and a threshold-triggered gc() during the
// loop would reclaim it out from under the still-live local).
func TestE2E_ArraySurvivesMidFunctionGCViaShadowFramePublish(t *testing.T) {
	printed := runWithGCThreshold(t, `
var keep = [11, 22, 33];
var i = 0;
while (i < 50) {
  var junk = [1, 2, 3, 4, 5, 6, 7, 8];
  i = i + 1;
}
print(keep[0]);
print(keep[1]);
print(keep[2]);
`, 200) // crossed every few junk arrays, so the loop gc()s many times over without
	// ever landing exactly on keep's own (24-byte) allocation before it is rooted

	if len(printed) != 3 {
		t.Fatalf("want 3 printed values, got %d", len(printed))
	}
	want := []int32{11, 22, 33}
	for i, w := range want {
		if v := runtimeabi.UnboxI32(printed[i]); v != w {
			t.Fatalf("keep[%d] = %d, want %d (array was collected out from under its live local)", i, v, w)
		}
	}
}
