// Package pipeline wires the compiler's stages — parse, infer, normalize,
// emit — into the single public entry point §6.1 calls compile(js_source) →
// bytes. It follows the teacher's own stage-orchestration idiom
// (Pipeline/Processor): each stage is a Processor that reads and mutates a
// shared PipelineContext, and a Pipeline runs them in order. A stage that
// fails sets ctx.Err; every later stage treats an already-failed context as
// a no-op rather than short-circuiting the loop itself.
package pipeline

import (
	"github.com/funvibe/jankgo/internal/anf"
	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/infer"
	"github.com/funvibe/jankgo/internal/lowir"
	"github.com/funvibe/jankgo/internal/parser"
	"github.com/funvibe/jankgo/internal/wasmgen"
)

// PipelineContext threads one compile() invocation's state through every
// stage.
type PipelineContext struct {
	SessionID string
	File      string
	Source    string

	Program *ast.Stmt
	LowIR   *lowir.Program
	Wasm    []byte

	Err error
}

// NewPipelineContext seeds a context for one source file. sessionID tags
// every diag.CompileError this compile produces; internal/cache keys do not
// include it.
func NewPipelineContext(sessionID, file, source string) *PipelineContext {
	return &PipelineContext{SessionID: sessionID, File: file, Source: source}
}

// Processor is one compile stage. Process must be a no-op (returning ctx
// unchanged) once ctx.Err is already set.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline runs a fixed sequence of Processors over one PipelineContext.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order, regardless of whether an earlier stage
// set ctx.Err.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}

type parseStage struct{}

func (parseStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	stmt, err := parser.Parse(ctx.Source, ctx.File)
	if err != nil {
		ctx.Err = diag.NewCompileError(diag.ParseError, diag.NoPos, ctx.SessionID, "%v", err)
		return ctx
	}
	ctx.Program = stmt
	return ctx
}

type inferStage struct{}

func (inferStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	if err := infer.Infer(ctx.Program, ctx.SessionID); err != nil {
		ctx.Err = err
		return ctx
	}
	return ctx
}

type normalizeStage struct{}

func (normalizeStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	ctx.LowIR = anf.Normalize(ctx.Program)
	return ctx
}

type emitStage struct{}

func (emitStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	wasm, err := wasmgen.NewEmitter(ctx.LowIR, ctx.SessionID).Emit()
	if err != nil {
		ctx.Err = err
		return ctx
	}
	ctx.Wasm = wasm
	return ctx
}

// Stages returns the standard parse → infer → normalize → emit pipeline.
// cmd/jankgo's dump-highir/dump-lowir subcommands run a prefix of it
// (Stages()[:2] and Stages()[:3]) when they need to stop partway through and
// inspect an intermediate ctx field.
func Stages() []Processor {
	return []Processor{parseStage{}, inferStage{}, normalizeStage{}, emitStage{}}
}

// Compile is §6.1's public contract: compile(js_source) → bytes. file is
// used only for diagnostic positions; it need not exist on disk.
func Compile(sessionID, file, source string) ([]byte, error) {
	ctx := NewPipelineContext(sessionID, file, source)
	ctx = New(Stages()...).Run(ctx)
	if ctx.Err != nil {
		return nil, ctx.Err
	}
	return ctx.Wasm, nil
}
