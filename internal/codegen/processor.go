package codegen

import (
	"github.com/bolt-lang/bolt/internal/pipeline"
)

// CodegenProcessor adapts the code generator to the compilation pipeline.
type CodegenProcessor struct{}

func (cp *CodegenProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.Program == nil {
		return ctx
	}

	generator := New(ctx.Program).WithSource(ctx.SourceCode)
	ctx.IR = generator.Generate()

	return ctx
}
