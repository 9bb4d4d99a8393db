package pipeline

import (
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/lowir"
)

// TestMain lets go-snaps prune snapshots nothing in this package references
// anymore, the same cleanup hook its own README prescribes.
func TestMain(m *testing.M) {
	code := m.Run()
	snaps.Clean(m)
	os.Exit(code)
}

// runPrefix runs stages[:n] and returns the resulting context, failing the
// test on any pipeline error.
func runPrefix(t *testing.T, source string, n int) *PipelineContext {
	t.Helper()
	ctx := NewPipelineContext("golden", "golden.js", source)
	ctx = New(Stages()[:n]...).Run(ctx)
	if ctx.Err != nil {
		t.Fatalf("pipeline error: %v", ctx.Err)
	}
	return ctx
}

// TestHighIRGolden snapshots internal/ast.Sprint's rendering of a fully
// inferred program, catching accidental regressions in either the printer
// or the Coercion/Ty annotations inference leaves behind.
func TestHighIRGolden(t *testing.T) {
	ctx := runPrefix(t, `
var x = 1 + 2;
var y = x + "3";
function add(a, b) {
  return a + b;
}
add(x, y);
`, 2)
	snaps.MatchSnapshot(t, ast.Sprint(ctx.Program))
}

// TestLowIRGolden snapshots internal/lowir.Sprint's rendering of the
// A-normalized form of the same program, catching regressions in ANF
// lowering (continuation shape choice, closure environment layout).
func TestLowIRGolden(t *testing.T) {
	ctx := runPrefix(t, `
var x = 1 + 2;
var y = x + "3";
function add(a, b) {
  return a + b;
}
add(x, y);
`, 3)
	snaps.MatchSnapshot(t, lowir.Sprint(ctx.LowIR))
}
