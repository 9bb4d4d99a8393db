package pipeline

import (
	"testing"

	"github.com/funvibe/jankgo/internal/diag"
)

func TestCompileProducesWasmMagicHeader(t *testing.T) {
	wasm, err := Compile("sess-1", "test.js", "var x = 1 + 2;")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if len(wasm) < 8 {
		t.Fatalf("expected at least a wasm header, got %d bytes", len(wasm))
	}
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for i, b := range want {
		if wasm[i] != b {
			t.Fatalf("byte %d: got %#x, want %#x", i, wasm[i], b)
		}
	}
}

func TestCompileSurfacesParseErrorAsCompileError(t *testing.T) {
	_, err := Compile("sess-2", "bad.js", "var x = ;")
	if err == nil {
		t.Fatal("expected a parse error, got nil")
	}
	ce, ok := err.(*diag.CompileError)
	if !ok {
		t.Fatalf("expected *diag.CompileError, got %T", err)
	}
	if ce.Kind != diag.ParseError {
		t.Fatalf("expected ParseError, got %v", ce.Kind)
	}
	if ce.SessionID != "sess-2" {
		t.Fatalf("expected session id to round-trip, got %q", ce.SessionID)
	}
}

// stageSpy records whether Process was ever invoked, so the no-op-on-error
// contract can be asserted on a Processor that never belongs downstream of
// a real failure.
type stageSpy struct {
	called bool
}

func (s *stageSpy) Process(ctx *PipelineContext) *PipelineContext {
	s.called = true
	return ctx
}

func TestPipelineRunStillInvokesLaterStagesOnError(t *testing.T) {
	// Run's contract is "run every stage regardless", not short-circuit —
	// the individual stage bodies are what guard against doing work on a
	// broken context. A spy after a forced error must still be *called*,
	// even though a well-behaved stage would do nothing with it.
	failing := Processor(stageFunc(func(ctx *PipelineContext) *PipelineContext {
		ctx.Err = diag.NewCompileError(diag.ParseError, diag.NoPos, "s", "boom")
		return ctx
	}))
	spy := &stageSpy{}
	ctx := New(failing, spy).Run(NewPipelineContext("s", "t.js", ""))
	if !spy.called {
		t.Fatal("expected later stage to still run")
	}
	if ctx.Err == nil {
		t.Fatal("expected ctx.Err to survive to the end of the run")
	}
}

type stageFunc func(ctx *PipelineContext) *PipelineContext

func (f stageFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

func TestStagesPrefixStopsBeforeNormalize(t *testing.T) {
	// Run only the parse+infer prefix of Stages() on a well-typed program,
	// confirming Program is set and LowIR is left unset when the run stops
	// early.
	ctx := NewPipelineContext("s", "t.js", "var x = 1;")
	ctx = New(Stages()[:2]...).Run(ctx)
	if ctx.Err != nil {
		t.Fatalf("unexpected error: %v", ctx.Err)
	}
	if ctx.Program == nil {
		t.Fatal("expected Program to be set after parse+infer prefix")
	}
	if ctx.LowIR != nil {
		t.Fatal("expected LowIR to remain nil before the normalize stage runs")
	}
}
