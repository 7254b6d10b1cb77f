package pipeline

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/token"
)

// PipelineContext is the state threaded through the compilation stages.
type PipelineContext struct {
	FilePath    string
	SourceCode  string
	RequireMain bool

	Tokens  []token.Token
	Program *ast.Program
	IR      string

	// DepCache, when set, is shared with nested parsers created by imports.
	DepCache *ast.DependencyCache

	Errors []*diagnostics.Error
}

// Failed reports whether any prior stage produced an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// AddError records a diagnostic, tagging it with the context's file.
func (ctx *PipelineContext) AddError(err *diagnostics.Error) {
	ctx.Errors = append(ctx.Errors, err.WithFile(ctx.FilePath))
}

// FirstError returns the earliest recorded diagnostic, if any.
func (ctx *PipelineContext) FirstError() *diagnostics.Error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages guard on ctx.Failed themselves, so a
// failing stage stops the work downstream while diagnostics accumulate.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
