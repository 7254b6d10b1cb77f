package parser

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseVariableDecl handles `let [mut] name[: T] = expr`. An annotated type
// must match the initializer exactly; without one the type is inferred. The
// binding shadows any existing one of the same name.
func (p *Parser) parseVariableDecl(scope *ast.Block) (ast.Statement, *diagnostics.Error) {
	start, err := p.expectNext(token.LET)
	if err != nil {
		return nil, err
	}

	next, err := p.expectNext(token.MUT, token.IDENT)
	if err != nil {
		return nil, err
	}

	isMutable := false
	if next.Type == token.MUT {
		isMutable = true
		next, err = p.expectNext(token.IDENT)
		if err != nil {
			return nil, err
		}
	}

	name := next.Lexeme
	nameSpan := next.Span

	var declaredType types.DataType
	if peeked, perr := p.peek(); perr == nil && peeked.Type == token.COLON {
		p.pos++
		declaredType, _, err = p.parseDataType(scope.Generics)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectNext(token.ASSIGN); err != nil {
		return nil, err
	}

	value, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}

	varType := declaredType
	if varType == nil {
		varType = value.Type
	} else if !varType.Equal(value.Type) {
		return nil, diagnostics.WrongType(varType.String(), value.Type.String(), nameSpan.Extend(value.Span))
	}

	if types.IsNone(varType) {
		return nil, diagnostics.VoidVariable(nameSpan)
	}

	scope.Variables[name] = &ast.Variable{
		Name:     name,
		NameSpan: nameSpan,
		Mutable:  isMutable,
		Type:     varType,
	}

	return &ast.VariableDecl{
		Mutable:  isMutable,
		Name:     name,
		NameSpan: nameSpan,
		Type:     declaredType,
		Value:    value,
		Span:     start.Span.Extend(value.Span),
	}, nil
}

func (p *Parser) parseVariable(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	tok, err := p.expectNext(token.IDENT)
	if err != nil {
		return nil, err
	}

	variable, ok := scope.GetVariable(tok.Lexeme)
	if !ok {
		return nil, diagnostics.VariableNotFound(tok.Lexeme, tok.Span)
	}

	return &ast.TypedExpr{
		Expr: &ast.VariableExpr{
			Variable: ast.Variable{
				Name:     tok.Lexeme,
				NameSpan: tok.Span,
				Mutable:  variable.Mutable,
				Type:     variable.Type,
			},
		},
		Type: variable.Type,
		Span: tok.Span,
	}, nil
}

// parseVariableReassignment handles `<lvalue> = expr`, `+=` and `-=`. The
// base variable of the target must be mutable. Compound operators fold into
// `<lvalue> = <lvalue> op expr` and type-check through the matching trait.
func (p *Parser) parseVariableReassignment(scope *ast.Block) (ast.Statement, *diagnostics.Error) {
	target, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}

	baseVar, err := findBaseVariable(target)
	if err != nil {
		return nil, err
	}

	variable, ok := scope.GetVariable(baseVar.Name)
	if !ok {
		return nil, diagnostics.VariableNotFound(baseVar.Name, target.Span)
	}
	if !variable.Mutable {
		return nil, diagnostics.VariableNotMutable(variable.Name, variable.NameSpan)
	}

	opTok, derr := p.nextToken()
	if derr != nil {
		return nil, derr
	}
	if !opTok.IsReassignmentOperator() {
		return nil, diagnostics.UnexpectedToken(opTok.String(), opTok.Span)
	}

	newValue, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}

	if !newValue.Type.Equal(target.Type) {
		return nil, diagnostics.WrongType(baseVar.Type.String(), newValue.Type.String(), opTok.Span)
	}

	if opTok.Type != token.ASSIGN {
		op := ast.OpAdd
		if opTok.Type == token.MINUS_ASSIGN {
			op = ast.OpSubtract
		}

		operationTrait := op.Trait()
		traitParams := []types.DataType{target.Type, newValue.Type}
		if !p.implementsTrait(target.Type, operationTrait, traitParams) {
			return nil, diagnostics.WrongType(target.Type.String(), newValue.Type.String(), opTok.Span)
		}
		resultType, _ := p.Program.GetTypeInfo(target.Type).TraitReturnType(operationTrait, traitParams)
		if !resultType.Equal(target.Type) {
			return nil, diagnostics.WrongType(target.Type.String(), resultType.String(), opTok.Span)
		}

		newValue = &ast.TypedExpr{
			Expr: &ast.BinaryExpr{
				Lhs:    target,
				Op:     op,
				OpSpan: opTok.Span,
				Rhs:    newValue,
			},
			Type: resultType,
			Span: target.Span.Extend(newValue.Span),
		}
	}

	return &ast.VariableMutation{
		Target: target,
		Value:  newValue,
		Span:   target.Span.Extend(newValue.Span),
	}, nil
}

// findBaseVariable digs through index, field-access and deref chains to the
// variable being assigned to.
func findBaseVariable(expr *ast.TypedExpr) (*ast.Variable, *diagnostics.Error) {
	switch e := expr.Expr.(type) {
	case *ast.VariableExpr:
		v := e.Variable
		return &v, nil
	case *ast.IndexExpr:
		return findBaseVariableOf(e.Base)
	case *ast.FieldAccessExpr:
		return findBaseVariableOf(e.Base)
	case *ast.DerefExpr:
		return findBaseVariableOf(e.Value)
	}
	return nil, diagnostics.InvalidReassign(expr.Span)
}

func findBaseVariableOf(base *ast.TypedExpr) (*ast.Variable, *diagnostics.Error) {
	if v, ok := base.Expr.(*ast.VariableExpr); ok {
		variable := v.Variable
		return &variable, nil
	}
	return findBaseVariable(base)
}
