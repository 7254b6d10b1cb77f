// Package compiler ties the pipeline stages into the library entry point.
package compiler

import (
	"github.com/bolt-lang/bolt/internal/codegen"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/lexer"
	"github.com/bolt-lang/bolt/internal/parser"
	"github.com/bolt-lang/bolt/internal/pipeline"
)

// Compile runs source through lexing, parsing/analysis and code generation
// and returns the textual IR. path, when known, anchors relative imports and
// diagnostics. The first error stops the compilation.
func Compile(source, path string) (string, *diagnostics.Error) {
	ctx := &pipeline.PipelineContext{
		FilePath:    path,
		SourceCode:  source,
		RequireMain: true,
	}

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&codegen.CodegenProcessor{},
	)

	ctx = p.Run(ctx)

	if err := ctx.FirstError(); err != nil {
		return "", err
	}
	return ctx.IR, nil
}
