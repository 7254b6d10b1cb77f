package parser

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseClassDef handles `class Name[<T...>] { field: T, ... }`.
func (p *Parser) parseClassDef() (types.DataType, *diagnostics.Error) {
	if _, err := p.nextToken(); err != nil { // "class"
		return nil, err
	}

	nameTok, err := p.expectNext(token.IDENT)
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme

	var generics []string
	isGeneric := false
	if peeked, perr := p.peek(); perr == nil && peeked.Type == token.LT {
		isGeneric = true
		generics, err = p.parseGenerics()
		if err != nil {
			return nil, err
		}
	}

	fields, fieldsSpan, err := p.parseClassFields(generics)
	if err != nil {
		return nil, err
	}

	classSpan := nameTok.Span.Extend(fieldsSpan)

	if existing, ok := p.Program.CustomTypes.Get(name); ok {
		return nil, diagnostics.ClassAlreadyExists(name, existing.Span)
	}

	class := &types.CustomType{
		DisplayName: name,
		Name:        name,
		Fields:      fields,
		Generics:    generics,
		GenericDecl: isGeneric,
	}

	p.Program.CustomTypes.Set(name, &ast.SpannedType{Type: class, Span: classSpan})
	p.Program.DataTypes.Set(class.InternalName(), types.NewDataTypeInfo(class))

	return class, nil
}

func (p *Parser) parseClassFields(generics []string) ([]types.Field, position.Span, *diagnostics.Error) {
	open, err := p.expectNext(token.LBRACE)
	if err != nil {
		return nil, position.Span{}, err
	}
	span := open.Span

	var fields []types.Field
	end, err := p.walkSeparatedValues(token.COMMA, token.RBRACE, func() *diagnostics.Error {
		nameTok, err := p.expectNext(token.IDENT)
		if err != nil {
			return err
		}
		if _, err := p.expectNext(token.COLON); err != nil {
			return err
		}
		fieldType, _, err := p.parseDataType(generics)
		if err != nil {
			return err
		}

		for _, f := range fields {
			if f.Name == nameTok.Lexeme {
				return diagnostics.FieldNameAlreadyExists(nameTok.Lexeme, nameTok.Span)
			}
		}

		fields = append(fields, types.Field{Name: nameTok.Lexeme, Type: fieldType})
		return nil
	})
	if err != nil {
		return nil, position.Span{}, err
	}

	return fields, span.Extend(end), nil
}

// parseClassLiteral handles `Foo { f: v, ... }` and `Foo<T...> { ... }`. A
// generic class without explicit annotations infers its arguments from the
// field values.
func (p *Parser) parseClassLiteral(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	nameTok, err := p.expectNext(token.IDENT)
	if err != nil {
		return nil, err
	}
	span := nameTok.Span

	var genericAnnotations []types.DataType

	next, err := p.peek()
	if err != nil {
		return nil, err
	}
	var blockStart position.Span
	switch next.Type {
	case token.LT:
		genericAnnotations, err = p.collectGenericAnnotations(scope.Generics)
		if err != nil {
			return nil, err
		}
		open, oerr := p.nextToken()
		if oerr != nil {
			return nil, oerr
		}
		blockStart = open.Span
	case token.LBRACE:
		open, oerr := p.nextToken()
		if oerr != nil {
			return nil, oerr
		}
		blockStart = open.Span
	default:
		_, err := p.expectNext(token.LBRACE, token.LT)
		return nil, err
	}

	classType, err := p.getTypeFromName(nameTok.Lexeme, nameTok.Span)
	if err != nil {
		return nil, err
	}

	var fields []ast.ClassLiteralField
	end, err := p.walkSeparatedValues(token.COMMA, token.RBRACE, func() *diagnostics.Error {
		fieldTok, err := p.expectNext(token.IDENT)
		if err != nil {
			return err
		}
		if _, err := p.expectNext(token.COLON); err != nil {
			return err
		}
		value, err := p.parseExpression(scope)
		if err != nil {
			return err
		}

		fields = append(fields, ast.ClassLiteralField{
			Name:     fieldTok.Lexeme,
			NameSpan: fieldTok.Span,
			Value:    value,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if custom, ok := classType.(*types.CustomType); ok && custom.IsGeneric() {
		specifics := genericAnnotations
		if len(specifics) == 0 {
			// Infer the arguments positionally from the field values.
			for _, f := range fields {
				specifics = append(specifics, f.Value.Type)
			}
		}
		for _, g := range scope.Generics {
			specifics = append(specifics, types.Generic{Name: g})
		}

		subtype, serr := p.subtypeCustom(custom, specifics, true, nameTok.Span)
		if serr != nil {
			return nil, serr
		}
		classType = subtype
	}

	span = span.Extend(end)

	if custom, ok := classType.(*types.CustomType); ok {
		for i, field := range fields {
			if i >= len(custom.Fields) {
				break
			}
			defined := custom.Fields[i]
			if defined.Name != field.Name {
				return nil, diagnostics.WrongClassFields(fieldNames(custom.Fields), literalFieldNames(fields), blockStart)
			}
			if !defined.Type.Equal(field.Value.Type) {
				return nil, diagnostics.WrongType(defined.Type.String(), field.Value.Type.String(), field.Value.Span)
			}
		}

		if len(custom.Fields) != len(fields) {
			return nil, diagnostics.WrongClassFields(fieldNames(custom.Fields), literalFieldNames(fields), blockStart)
		}
	}

	return &ast.TypedExpr{
		Expr: &ast.Literal{
			Kind: ast.LitClass,
			Class: &ast.ClassLiteral{
				Type:   classType,
				Fields: fields,
				Span:   blockStart,
			},
		},
		Type: classType,
		Span: span,
	}, nil
}

func fieldNames(fields []types.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func literalFieldNames(fields []ast.ClassLiteralField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// parseFieldAccess handles `expr.field`.
func (p *Parser) parseFieldAccess(base *ast.TypedExpr) (*ast.TypedExpr, *diagnostics.Error) {
	if _, err := p.expectNext(token.PERIOD); err != nil {
		return nil, err
	}

	custom, ok := base.Type.(*types.CustomType)
	if !ok {
		return nil, diagnostics.CannotAccessFields(base.Type.String(), base.Span)
	}

	fieldTok, err := p.expectNext(token.IDENT)
	if err != nil {
		return nil, err
	}

	for idx, field := range custom.Fields {
		if field.Name == fieldTok.Lexeme {
			return &ast.TypedExpr{
				Expr: &ast.FieldAccessExpr{
					Base:      base,
					Field:     fieldTok.Lexeme,
					FieldSpan: fieldTok.Span,
					FieldIdx:  idx,
				},
				Type: field.Type,
				Span: base.Span.Extend(fieldTok.Span),
			}, nil
		}
	}

	return nil, diagnostics.ClassFieldDoesNotExist(fieldTok.Lexeme, custom.DisplayName, fieldTok.Span)
}

// parseGenerics reads `<T, U, ...>` of a definition site.
func (p *Parser) parseGenerics() ([]string, *diagnostics.Error) {
	if _, err := p.nextToken(); err != nil { // "<"
		return nil, err
	}

	var generics []string
	_, err := p.walkSeparatedValues(token.COMMA, token.GT, func() *diagnostics.Error {
		nameTok, err := p.expectNext(token.IDENT)
		if err != nil {
			return err
		}
		generics = append(generics, nameTok.Lexeme)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return generics, nil
}
