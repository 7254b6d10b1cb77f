// Package parser builds the type-annotated AST. Parsing and semantic
// analysis are interleaved: identifiers resolve against the program tables as
// they are read, operators dispatch through the trait engine, and generic
// types and functions are monomorphised on demand the moment a concrete
// instantiation is seen.
package parser

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

type Parser struct {
	tokens []token.Token
	pos    int

	Program *ast.Program

	// count feeds generated names (list macro temporaries).
	count int

	// relativePath is the directory imports resolve against; empty means the
	// working directory.
	relativePath string
}

func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		Program: ast.NewProgram(),
	}
}

func (p *Parser) WithSourceCode(source string) *Parser {
	p.Program.SourceCode = source
	return p
}

func (p *Parser) WithRequireMain(requireMain bool) *Parser {
	p.Program.RequireMain = requireMain
	return p
}

func (p *Parser) WithDependencyCache(cache *ast.DependencyCache) *Parser {
	p.Program.DepCache = cache
	return p
}

func (p *Parser) WithImportStack(stack []string) *Parser {
	p.Program.ImportStack = stack
	return p
}

func (p *Parser) WithRelativePath(path string) *Parser {
	p.relativePath = path
	return p
}

// Parse consumes the token stream and returns the completed program.
func (p *Parser) Parse() (*ast.Program, *diagnostics.Error) {
	for p.pos < len(p.tokens) {
		next := p.tokens[p.pos]

		switch next.Type {
		case token.DEF, token.EXTERN:
			if _, err := p.parseFuncDef(); err != nil {
				return nil, err
			}
		case token.CLASS:
			if _, err := p.parseClassDef(); err != nil {
				return nil, err
			}
		case token.IMPORT:
			if err := p.parseImport(); err != nil {
				return nil, err
			}
		default:
			return nil, diagnostics.UnexpectedToken(next.String(), next.Span)
		}
	}

	if p.Program.RequireMain && !p.Program.Functions.Has("main") {
		return nil, diagnostics.NoMainFunction(position.Span{})
	}

	return p.Program, nil
}

func (p *Parser) nextCount() int {
	p.count++
	return p.count
}

func (p *Parser) nextToken() (token.Token, *diagnostics.Error) {
	if p.pos >= len(p.tokens) {
		return token.Token{}, diagnostics.UnexpectedEOF(position.Span{})
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, nil
}

func (p *Parser) peek() (token.Token, *diagnostics.Error) {
	return p.peekNth(0)
}

func (p *Parser) peekNth(nth int) (token.Token, *diagnostics.Error) {
	if p.pos+nth >= len(p.tokens) {
		return token.Token{}, diagnostics.UnexpectedEOF(position.Span{})
	}
	return p.tokens[p.pos+nth], nil
}

// expectNext consumes the next token, which must have one of the expected
// types.
func (p *Parser) expectNext(expected ...token.TokenType) (token.Token, *diagnostics.Error) {
	tok, err := p.nextToken()
	if err != nil {
		return token.Token{}, err
	}
	for _, tt := range expected {
		if tok.Type == tt {
			return tok, nil
		}
	}

	if len(expected) == 1 {
		return token.Token{}, diagnostics.UnexpectedTokenExpected(expected[0].String(), tok.String(), tok.Span)
	}
	return token.Token{}, diagnostics.UnexpectedToken(tok.String(), tok.Span)
}

// findAhead scans forward for any of the wanted token types, stopping at the
// first token the stop predicate accepts. Returns whether one was found
// before the stop.
func (p *Parser) findAhead(wanted []token.TokenType, stop func(token.Token) bool) (bool, *diagnostics.Error) {
	for i := 0; ; i++ {
		next, err := p.peekNth(i)
		if err != nil {
			return false, err
		}
		if stop(next) {
			return false, nil
		}
		for _, tt := range wanted {
			if next.Type == tt {
				return true, nil
			}
		}
	}
}

// walkSeparatedValues drives the callback over a separator-delimited list and
// consumes the terminator.
func (p *Parser) walkSeparatedValues(separator, terminator token.TokenType, callback func() *diagnostics.Error) (position.Span, *diagnostics.Error) {
	first, err := p.peek()
	if err != nil {
		return position.Span{}, err
	}
	span := first.Span

	if first.Type == terminator {
		p.pos++
		return span, nil
	}

	if err := callback(); err != nil {
		return span, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return span, err
		}
		if tok.Type == terminator {
			span = span.Extend(tok.Span)
			p.pos++
			break
		}

		p.pos++
		if tok.Type == separator {
			next, err := p.peek()
			if err != nil {
				return span, err
			}
			if next.Type == terminator {
				span = span.Extend(tok.Span)
				p.pos++
				break
			}
			if err := callback(); err != nil {
				return span, err
			}
		}
	}

	return span, nil
}

// walkToTerminator drives the callback until the terminator and consumes it.
func (p *Parser) walkToTerminator(terminator token.TokenType, callback func() *diagnostics.Error) (position.Span, *diagnostics.Error) {
	first, err := p.peek()
	if err != nil {
		return position.Span{}, err
	}
	span := first.Span

	if first.Type == terminator {
		p.pos++
		return span, nil
	}

	if err := callback(); err != nil {
		return span, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return span, err
		}
		if tok.Type == terminator {
			span = span.Extend(tok.Span)
			p.pos++
			break
		}
		if err := callback(); err != nil {
			return span, err
		}
	}

	return span, nil
}

// parseBlock parses `{ ... }`. The new block copies the surrounding scope's
// variable table and records every inherited binding as a potential closure
// parameter, so block expressions can later be lowered into functions.
func (p *Parser) parseBlock(scope *ast.Block) (*ast.Block, *diagnostics.Error) {
	start, err := p.expectNext(token.LBRACE)
	if err != nil {
		return nil, err
	}

	block := ast.NewBlock()
	block.Span = start.Span
	block.Generics = scope.Generics
	block.FunctionDepth = scope.FunctionDepth
	for name, v := range scope.Variables {
		block.Variables[name] = v
	}
	for _, v := range scope.SortedVariables() {
		block.ClosureParams = append(block.ClosureParams, ast.FunctionParam{
			Name:     v.Name,
			NameSpan: v.NameSpan,
			Type:     v.Type,
		})
	}

	end, err := p.walkToTerminator(token.RBRACE, func() *diagnostics.Error {
		stmt, err := p.parseStatement(block)
		if err != nil {
			return err
		}
		block.Statements = append(block.Statements, stmt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	block.Span = block.Span.Extend(end)

	returnType, derr := validateBlockReturn(block)
	if derr != nil {
		return nil, derr
	}
	if returnType != nil {
		block.ReturnType = returnType
	} else {
		block.ReturnType = types.None
	}

	return block, nil
}

func (p *Parser) parseStatement(scope *ast.Block) (ast.Statement, *diagnostics.Error) {
	next, err := p.peek()
	if err != nil {
		return nil, err
	}

	requiresSemicolon := true
	var stmt ast.Statement

	switch next.Type {
	case token.LET:
		stmt, err = p.parseVariableDecl(scope)
	case token.RETURN:
		stmt, err = p.parseReturn(scope)
	case token.IF:
		stmt, err = p.parseIf(scope)
		requiresSemicolon = false
	case token.WHILE:
		stmt, err = p.parseWhile(scope)
		requiresSemicolon = false
	default:
		isReassignment, ferr := p.findAhead(
			[]token.TokenType{token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN},
			func(t token.Token) bool {
				return t.Type == token.SEMICOLON || t.Type == token.LBRACE
			},
		)
		if ferr != nil {
			return nil, ferr
		}

		if isReassignment {
			stmt, err = p.parseVariableReassignment(scope)
		} else {
			var expr *ast.TypedExpr
			expr, err = p.parseExpression(scope)
			if err == nil {
				stmt = &ast.ExprStatement{Expr: expr, Span: expr.Span}
			}
		}
	}
	if err != nil {
		return nil, err
	}

	after, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch after.Type {
	case token.SEMICOLON:
		p.pos++
	case token.RBRACE:
	default:
		if requiresSemicolon {
			if _, err := p.expectNext(token.SEMICOLON); err != nil {
				return nil, err
			}
		}
	}

	return stmt, nil
}

// parseDataType reads a type: `*T`, `[T; N]`, a class (optionally applied to
// generic arguments, monomorphising on the spot), an in-scope generic, or a
// primitive name.
func (p *Parser) parseDataType(generics []string) (types.DataType, position.Span, *diagnostics.Error) {
	next, err := p.nextToken()
	if err != nil {
		return nil, position.Span{}, err
	}

	switch next.Type {
	case token.ASTERISK:
		inner, innerSpan, err := p.parseDataType(generics)
		if err != nil {
			return nil, position.Span{}, err
		}
		return types.NewPointer(inner), next.Span.Extend(innerSpan), nil

	case token.IDENT:
		name := next.Lexeme

		if entry, ok := p.Program.CustomTypes.Get(name); ok {
			custom, isCustom := entry.Type.(*types.CustomType)
			if isCustom {
				peeked, perr := p.peek()
				if perr == nil && custom.IsGeneric() && peeked.Type == token.LT {
					args, aerr := p.collectGenericAnnotations(generics)
					if aerr != nil {
						return nil, position.Span{}, aerr
					}

					subtype, serr := p.subtypeCustom(custom, args, true, next.Span)
					if serr != nil {
						return nil, position.Span{}, serr
					}
					return subtype, next.Span, nil
				}
				return entry.Type, next.Span, nil
			}
		}

		for _, g := range generics {
			if g == name {
				return types.Generic{Name: name}, next.Span, nil
			}
		}

		if t, ok := types.FromName(name); ok {
			return t, next.Span, nil
		}
		return nil, position.Span{}, diagnostics.UnexpectedToken(next.String(), next.Span)

	case token.LBRACKET:
		elem, _, err := p.parseDataType(generics)
		if err != nil {
			return nil, position.Span{}, err
		}
		if _, err := p.expectNext(token.SEMICOLON); err != nil {
			return nil, position.Span{}, err
		}
		lenTok, err := p.expectNext(token.INT)
		if err != nil {
			return nil, position.Span{}, err
		}
		if lenTok.Int < 1 {
			return nil, position.Span{}, diagnostics.EmptyArray(lenTok.Span)
		}
		end, err := p.expectNext(token.RBRACKET)
		if err != nil {
			return nil, position.Span{}, err
		}
		return types.Array{Elem: elem, Len: int(lenTok.Int)}, next.Span.Extend(end.Span), nil
	}

	return nil, position.Span{}, diagnostics.UnexpectedToken(next.String(), next.Span)
}

// collectGenericAnnotations parses `<T1, T2, ...>`.
func (p *Parser) collectGenericAnnotations(generics []string) ([]types.DataType, *diagnostics.Error) {
	if _, err := p.expectNext(token.LT); err != nil {
		return nil, err
	}

	var annotations []types.DataType
	_, err := p.walkSeparatedValues(token.COMMA, token.GT, func() *diagnostics.Error {
		t, _, err := p.parseDataType(generics)
		if err != nil {
			return err
		}
		annotations = append(annotations, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return annotations, nil
}

// getTypeFromName resolves a primitive or registered class name.
func (p *Parser) getTypeFromName(name string, span position.Span) (types.DataType, *diagnostics.Error) {
	if t, ok := types.FromName(name); ok {
		return t, nil
	}
	if entry, ok := p.Program.CustomTypes.Get(name); ok {
		return entry.Type, nil
	}
	return nil, diagnostics.ClassDoesNotExist(name, span)
}

func (p *Parser) implementsTrait(t types.DataType, trait types.Trait, params []types.DataType) bool {
	return p.Program.GetTypeInfo(t).ImplementsTrait(trait, params)
}

func (p *Parser) getFunction(name string, span position.Span) (*ast.Function, *diagnostics.Error) {
	if fn, ok := p.Program.Functions.Get(name); ok {
		return fn, nil
	}
	return nil, diagnostics.FunctionDoesNotExist(name, span)
}
