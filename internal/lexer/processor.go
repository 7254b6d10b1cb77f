package lexer

import (
	"github.com/bolt-lang/bolt/internal/pipeline"
)

// LexerProcessor adapts the lexer to the compilation pipeline.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens, err := Lex(ctx.SourceCode)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Tokens = tokens
	return ctx
}
