package parser

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

func binaryOperatorFromToken(t token.Token) (ast.BinaryOperator, bool) {
	switch t.Type {
	case token.PLUS:
		return ast.OpAdd, true
	case token.MINUS:
		return ast.OpSubtract, true
	case token.ASTERISK:
		return ast.OpMultiply, true
	case token.SLASH:
		return ast.OpDivide, true
	case token.PERCENT:
		return ast.OpModulo, true
	case token.EQ:
		return ast.OpEqual, true
	case token.NOT_EQ:
		return ast.OpNotEqual, true
	case token.LT:
		return ast.OpLessThan, true
	case token.LTE:
		return ast.OpLessThanOrEqual, true
	case token.GT:
		return ast.OpGreaterThan, true
	case token.GTE:
		return ast.OpGreaterThanOrEqual, true
	case token.AND:
		return ast.OpAnd, true
	case token.OR:
		return ast.OpOr, true
	}
	return 0, false
}

func (p *Parser) parseExpression(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	lhs, err := p.parsePrimaryExpression(nil, scope)
	if err != nil {
		return nil, err
	}
	return p.parseBinaryExpression(lhs, 0, scope)
}

func (p *Parser) parsePrimaryExpression(previous *ast.TypedExpr, scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	var expr *ast.TypedExpr
	var err *diagnostics.Error

	if previous != nil {
		expr = previous
	} else {
		next, perr := p.peek()
		if perr != nil {
			return nil, perr
		}

		switch {
		case next.Type == token.AMPERSAND:
			expr, err = p.parseReference(scope)

		case next.Type.IsOperator():
			expr, err = p.parseUnaryExpression(scope)

		case next.Type == token.LBRACE:
			var block *ast.Block
			block, err = p.parseBlock(scope)
			if err == nil {
				expr = &ast.TypedExpr{
					Expr: &ast.BlockExpr{Body: block},
					Type: block.ReturnType,
					Span: block.Span,
				}
			}

		case next.Type == token.LPAREN:
			expr, err = p.parseParenthesizedExpression(scope)

		case next.Type == token.INT || next.Type == token.FLOAT ||
			next.Type == token.TRUE || next.Type == token.FALSE:
			expr, err = p.parseLiteral()

		case next.Type == token.TILDE:
			expr, err = p.parseDeref(scope)

		case next.Type == token.IDENT:
			expr, err = p.parseIdentifierExpression(next.Lexeme, scope)

		case next.Type == token.LBRACKET:
			expr, err = p.parseArrayLiteral(scope)

		default:
			expr, err = p.parseMacro(scope)
		}
	}
	if err != nil {
		return nil, err
	}

	// Postfix forms: indexing, method call or field access, type cast. Each
	// recurses so chains like a.b[i].c compose.
	if next, perr := p.peek(); perr == nil && next.Type == token.LBRACKET {
		indexExpr, ierr := p.parseIndexing(expr, scope)
		if ierr != nil {
			return nil, ierr
		}
		expr, err = p.parsePrimaryExpression(indexExpr, scope)
		if err != nil {
			return nil, err
		}
	}

	if next, perr := p.peek(); perr == nil && next.Type == token.PERIOD {
		after, aerr := p.peekNth(2)
		isCall := aerr == nil && (after.Type == token.LPAREN || after.Type == token.LT)

		if isCall {
			p.pos++
			call, cerr := p.parseFuncCall(scope, expr)
			if cerr != nil {
				return nil, cerr
			}
			expr, err = p.parsePrimaryExpression(call, scope)
		} else {
			access, ferr := p.parseFieldAccess(expr)
			if ferr != nil {
				return nil, ferr
			}
			expr, err = p.parsePrimaryExpression(access, scope)
		}
		if err != nil {
			return nil, err
		}
	}

	if next, perr := p.peek(); perr == nil && next.Type == token.AS {
		cast, cerr := p.parseTypeCast(expr, scope)
		if cerr != nil {
			return nil, cerr
		}
		expr, err = p.parsePrimaryExpression(cast, scope)
		if err != nil {
			return nil, err
		}
	}

	return expr, nil
}

// parseIdentifierExpression dispatches an identifier head: function call,
// class literal, static method call, data-type literal or plain variable.
func (p *Parser) parseIdentifierExpression(name string, scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	next, err := p.peekNth(1)
	if err != nil {
		return nil, err
	}

	switch {
	case next.Type == token.LPAREN:
		return p.parseFuncCall(scope, nil)

	case next.Type == token.LT:
		closed, ferr := p.findAhead([]token.TokenType{token.GT}, func(t token.Token) bool {
			switch t.Type {
			case token.SEMICOLON, token.RBRACE, token.LBRACE:
				return true
			}
			return false
		})
		if ferr != nil {
			return nil, ferr
		}
		if closed {
			// Foo<T>{...} is a class literal, f<T>(...) a generic call.
			hasBrace, ferr := p.findAhead([]token.TokenType{token.LBRACE}, func(t token.Token) bool {
				return t.Type == token.SEMICOLON || t.Type == token.RBRACE
			})
			if ferr != nil {
				return nil, ferr
			}
			if !hasBrace {
				return p.parseFuncCall(scope, nil)
			}
			return p.parseClassLiteral(scope)
		}

	case next.Type == token.LBRACE && p.Program.CustomTypes.Has(name):
		return p.parseClassLiteral(scope)

	case next.Type == token.COLON && p.Program.CustomTypes.Has(name):
		// Static method call: Name::method(...).
		nameTok, nerr := p.nextToken()
		if nerr != nil {
			return nil, nerr
		}
		if _, err := p.expectNext(token.COLON); err != nil {
			return nil, err
		}
		if _, err := p.expectNext(token.COLON); err != nil {
			return nil, err
		}

		entry, _ := p.Program.CustomTypes.Get(name)
		caller := &ast.TypedExpr{
			Expr: &ast.ClassNameExpr{Name: name},
			Type: entry.Type,
			Span: nameTok.Span,
		}
		return p.parseFuncCall(scope, caller)
	}

	if p.Program.CustomTypes.Has(name) || scope.HasGeneric(name) {
		return p.parseDataTypeLiteral(scope)
	}
	if _, ok := types.FromName(name); ok {
		return p.parseDataTypeLiteral(scope)
	}
	return p.parseVariable(scope)
}

// parseBinaryExpression is an operator-precedence climb. After both operands
// are known the operator is resolved through the trait engine: a user trait
// record rewrites the operator into a method call during code generation and
// contributes the result type here.
func (p *Parser) parseBinaryExpression(lhs *ast.TypedExpr, minPrecedence int, scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	for {
		opTok, perr := p.peek()
		if perr != nil || !opTok.Type.IsOperator() {
			break
		}

		firstOp, ok := binaryOperatorFromToken(opTok)
		if !ok {
			return nil, diagnostics.InvalidOperator(opTok.String(), opTok.Span)
		}

		if firstOp.Precedence() < minPrecedence {
			break
		}

		p.pos++
		rhs, err := p.parsePrimaryExpression(nil, scope)
		if err != nil {
			return nil, err
		}

		operationTrait := firstOp.Trait()

		for {
			secondTok, serr := p.peek()
			if serr != nil || !secondTok.Type.IsOperator() {
				break
			}
			secondOp, ok := binaryOperatorFromToken(secondTok)
			if !ok {
				return nil, diagnostics.InvalidOperator(secondTok.String(), secondTok.Span)
			}
			if secondOp.Precedence() <= firstOp.Precedence() {
				break
			}

			rhs, err = p.parseBinaryExpression(rhs, firstOp.Precedence()+1, scope)
			if err != nil {
				return nil, err
			}
		}

		exprSpan := lhs.Span.Extend(rhs.Span)
		traitParams := []types.DataType{lhs.Type, rhs.Type}

		if !p.implementsTrait(lhs.Type, operationTrait, traitParams) {
			return nil, diagnostics.WrongType(lhs.Type.String(), rhs.Type.String(), exprSpan)
		}

		resultType, _ := p.Program.GetTypeInfo(lhs.Type).TraitReturnType(operationTrait, traitParams)

		lhs = &ast.TypedExpr{
			Expr: &ast.BinaryExpr{
				Lhs:    lhs,
				Op:     firstOp,
				OpSpan: opTok.Span,
				Rhs:    rhs,
			},
			Type: resultType,
			Span: exprSpan,
		}
	}

	return lhs, nil
}

// parseUnaryExpression handles `-expr` and `!expr`. Unary minus is lowered
// immediately into `(-1) * expr`; the AST has no negation node.
func (p *Parser) parseUnaryExpression(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	opTok, err := p.nextToken()
	if err != nil {
		return nil, err
	}

	switch opTok.Type {
	case token.MINUS:
		expr, err := p.parseExpression(scope)
		if err != nil {
			return nil, err
		}
		exprType := expr.Type

		if !types.IsInteger(exprType) && !types.IsFloat(exprType) {
			return nil, diagnostics.InvalidOperator(opTok.String(), opTok.Span)
		}

		minusOne := &ast.TypedExpr{
			Expr: ast.IntLiteral(-1),
			Type: exprType,
		}
		if types.IsFloat(exprType) {
			minusOne.Expr = ast.FloatLiteral(-1)
		}

		return &ast.TypedExpr{
			Expr: &ast.BinaryExpr{
				Lhs:    minusOne,
				Op:     ast.OpMultiply,
				OpSpan: opTok.Span,
				Rhs:    expr,
			},
			Type: exprType,
			Span: opTok.Span.Extend(expr.Span),
		}, nil

	case token.BANG:
		expr, err := p.parseExpression(scope)
		if err != nil {
			return nil, err
		}

		traitParams := []types.DataType{expr.Type}
		if !p.implementsTrait(expr.Type, types.TraitBooleanNot, traitParams) {
			return nil, diagnostics.WrongType(types.Boolean.String(), expr.Type.String(), opTok.Span.Extend(expr.Span))
		}
		resultType, _ := p.Program.GetTypeInfo(expr.Type).TraitReturnType(types.TraitBooleanNot, traitParams)

		return &ast.TypedExpr{
			Expr: &ast.UnaryExpr{Op: ast.OpNot, Expr: expr},
			Type: resultType,
			Span: opTok.Span.Extend(expr.Span),
		}, nil
	}

	return nil, diagnostics.InvalidOperator(opTok.String(), opTok.Span)
}

func (p *Parser) parseParenthesizedExpression(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	if _, err := p.expectNext(token.LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectNext(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseLiteral() (*ast.TypedExpr, *diagnostics.Error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}

	var lit *ast.Literal
	switch tok.Type {
	case token.INT:
		lit = ast.IntLiteral(tok.Int)
	case token.FLOAT:
		lit = ast.FloatLiteral(tok.Float)
	case token.TRUE:
		lit = ast.BoolLiteral(true)
	case token.FALSE:
		lit = ast.BoolLiteral(false)
	default:
		return nil, diagnostics.UnexpectedToken(tok.String(), tok.Span)
	}

	return &ast.TypedExpr{
		Expr: lit,
		Type: lit.Type(),
		Span: tok.Span,
	}, nil
}

// parseDataTypeLiteral reads a type name used as a first-class value; only
// size_of accepts one.
func (p *Parser) parseDataTypeLiteral(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	name := tok.Lexeme

	var t types.DataType
	if entry, ok := p.Program.CustomTypes.Get(name); ok {
		t = entry.Type
	}
	if t == nil {
		if prim, ok := types.FromName(name); ok {
			t = prim
		}
	}
	if t == nil && scope.HasGeneric(name) {
		t = types.Generic{Name: name}
	}
	if t == nil {
		return nil, diagnostics.ClassDoesNotExist(name, tok.Span)
	}

	return &ast.TypedExpr{
		Expr: &ast.Literal{Kind: ast.LitType, TypeValue: t},
		Type: types.TypeValue,
		Span: tok.Span,
	}, nil
}

func (p *Parser) parseDeref(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	if _, err := p.expectNext(token.TILDE); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}

	pointer, ok := expr.Type.(types.Pointer)
	if !ok {
		return nil, diagnostics.CannotDerefType(expr.Type.String(), expr.Span)
	}

	return &ast.TypedExpr{
		Expr: &ast.DerefExpr{Value: expr},
		Type: pointer.Elem,
		Span: expr.Span,
	}, nil
}

func (p *Parser) parseReference(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	if _, err := p.expectNext(token.AMPERSAND); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}

	return &ast.TypedExpr{
		Expr: &ast.ReferenceExpr{Value: expr},
		Type: types.NewPointer(expr.Type),
		Span: expr.Span,
	}, nil
}
