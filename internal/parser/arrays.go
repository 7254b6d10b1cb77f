package parser

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseArrayLiteral handles `[e1, e2, ...]`. All elements must share one
// type; empty arrays are rejected.
func (p *Parser) parseArrayLiteral(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	open, err := p.expectNext(token.LBRACKET)
	if err != nil {
		return nil, err
	}
	span := open.Span

	var elements []*ast.TypedExpr
	end, err := p.walkSeparatedValues(token.COMMA, token.RBRACKET, func() *diagnostics.Error {
		element, err := p.parseExpression(scope)
		if err != nil {
			return err
		}
		elements = append(elements, element)
		return nil
	})
	if err != nil {
		return nil, err
	}
	span = span.Extend(end)

	if len(elements) == 0 {
		return nil, diagnostics.EmptyArray(span)
	}

	elemType, err := checkAllTypesSame(elements)
	if err != nil {
		return nil, err
	}

	return &ast.TypedExpr{
		Expr: &ast.Literal{
			Kind: ast.LitArray,
			Array: &ast.ArrayLiteral{
				ElemType: elemType,
				Values:   elements,
				Span:     span,
			},
		},
		Type: types.Array{Elem: elemType, Len: len(elements)},
		Span: span,
	}, nil
}

// parseIndexing handles `base[idx]` through the Index trait. A user override
// must return a pointer; its pointee becomes the expression's apparent type,
// so indexing composes the same way on both sides of an assignment.
func (p *Parser) parseIndexing(base *ast.TypedExpr, scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	if _, err := p.expectNext(token.LBRACKET); err != nil {
		return nil, err
	}
	idx, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expectNext(token.RBRACKET)
	if err != nil {
		return nil, err
	}

	traitParams := []types.DataType{base.Type, idx.Type}
	if !p.implementsTrait(base.Type, types.TraitIndex, traitParams) {
		return nil, diagnostics.IndexError(base.Type.String(), base.Span.Extend(closeTok.Span))
	}

	info := p.Program.GetTypeInfo(base.Type)
	resultType, _ := info.TraitReturnType(types.TraitIndex, traitParams)

	if _, overridden := info.TraitOverrideName(types.TraitIndex, traitParams); overridden {
		pointer, ok := resultType.(types.Pointer)
		if !ok {
			return nil, diagnostics.TraitRequirementsNotFulfilled("Index function must return a pointer", base.Span)
		}
		resultType = pointer.Elem
	}

	return &ast.TypedExpr{
		Expr: &ast.IndexExpr{Base: base, Idx: idx},
		Type: resultType,
		Span: base.Span.Extend(closeTok.Span),
	}, nil
}
