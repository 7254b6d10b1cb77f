package parser

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseTypeCast handles `expr as T`. Legal casts: pointer to pointer,
// pointer and the platform integer in either direction, integer/boolean
// pairs of any width, and integer/float in either direction.
func (p *Parser) parseTypeCast(base *ast.TypedExpr, scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	if _, err := p.expectNext(token.AS); err != nil {
		return nil, err
	}

	castTo, toSpan, err := p.parseDataType(scope.Generics)
	if err != nil {
		return nil, err
	}

	if !types.CanBeConvertedTo(base.Type, castTo) {
		return nil, diagnostics.InvalidCast(base.Type.String(), castTo.String(), base.Span.Extend(toSpan))
	}

	return &ast.TypedExpr{
		Expr: &ast.CastExpr{
			Value:  base,
			To:     castTo,
			ToSpan: toSpan,
		},
		Type: castTo,
		Span: base.Span.Extend(toSpan),
	}, nil
}
