package parser

import (
	"path/filepath"

	"github.com/bolt-lang/bolt/internal/pipeline"
)

// ParserProcessor adapts the parser to the compilation pipeline.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.Tokens == nil {
		return ctx
	}

	p := New(ctx.Tokens).
		WithSourceCode(ctx.SourceCode).
		WithRequireMain(ctx.RequireMain)

	if ctx.DepCache != nil {
		p.WithDependencyCache(ctx.DepCache)
	}
	if ctx.FilePath != "" {
		p.WithRelativePath(filepath.Dir(ctx.FilePath))
	}

	program, err := p.Parse()
	if err != nil {
		ctx.AddError(err)
		return ctx
	}

	ctx.Program = program
	return ctx
}
