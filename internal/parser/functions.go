package parser

import (
	"fmt"
	"strings"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseFuncDef handles `[extern] def name[<T...>](params) [for Class] [-> T]
// { ... }`. Methods attach to their owning type; methods whose name is a
// trait short name become trait implementations and are re-mangled so
// operator dispatch finds them.
func (p *Parser) parseFuncDef() (*ast.Function, *diagnostics.Error) {
	isExtern := false

	start, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	if start.Type == token.EXTERN {
		isExtern = true
		if _, err := p.nextToken(); err != nil {
			return nil, err
		}
	}

	nameTok, err := p.expectNext(token.IDENT)
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme
	span := start.Span.Extend(nameTok.Span)

	var generics []string
	if peeked, perr := p.peek(); perr == nil && peeked.Type == token.LT {
		generics, err = p.parseGenerics()
		if err != nil {
			return nil, err
		}
	}

	params, paramsSpan, err := p.parseFuncParams(generics)
	if err != nil {
		return nil, err
	}

	var parentClass types.DataType

	next, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch next.Type {
	case token.FOR:
		p.pos++
		parentClass, _, err = p.parseDataType(generics)
		if err != nil {
			return nil, err
		}
		// The source writes the bare owning type; the receiver slot adopts
		// it here.
		if len(params) > 0 && params[0].Name == ast.SelfParamName {
			params[0].Type = parentClass
		}
	case token.ARROW, token.LBRACE:
	default:
		return nil, diagnostics.UnexpectedToken(next.String(), next.Span)
	}

	returnType, returnSpan, err := p.parseFuncReturnType(generics)
	if err != nil {
		return nil, err
	}

	variables := make(map[string]*ast.Variable)
	for _, param := range params {
		if _, exists := variables[param.Name]; exists {
			return nil, diagnostics.ParamNameAlreadyExists(param.Name, param.NameSpan)
		}
		variables[param.Name] = param.ToVariable()
	}

	function := &ast.Function{
		DisplayName:     name,
		DisplaySpan:     span,
		Name:            name,
		Params:          params,
		ParamsSpan:      paramsSpan,
		ReturnType:      returnType,
		ReturnSpan:      returnSpan,
		IsExtern:        isExtern,
		MethodOf:        parentClass,
		GenericSubtypes: ast.NewOrderedMap[*ast.Function](),
	}
	function.Body = &ast.Block{
		Variables:  variables,
		Generics:   generics,
		ReturnType: returnType,
	}

	if parentClass != nil {
		info := p.Program.GetTypeInfoMut(parentClass)

		if info.HasMethod(name) {
			return nil, diagnostics.MethodAlreadyExists(name, parentClass.String(), span)
		}

		functionName := name

		if trait, isTrait := types.TraitNames[name]; isTrait {
			if function.IsStaticMethod() {
				return nil, diagnostics.TraitIsStaticMethod(span)
			}

			paramTypes := make([]types.DataType, len(params))
			for i, param := range params {
				paramTypes[i] = param.Type
			}

			if info.ImplementsTrait(trait, paramTypes) {
				return nil, diagnostics.TraitAlreadyImplemented(trait.String(), parentClass.String(), span)
			}

			if trait == types.TraitIndex && !types.IsPointer(returnType) {
				return nil, diagnostics.TraitRequirementsNotFulfilled("Index function must return a pointer", span)
			}

			if len(params)-1 != trait.ParamLen() {
				return nil, diagnostics.TraitParamCountMismatch(trait.String(), trait.ParamLen(), len(params)-1, span)
			}

			typeNames := make([]string, len(paramTypes))
			for i, t := range paramTypes {
				typeNames[i] = t.String()
			}
			functionName = fmt.Sprintf("%s_%s", trait, strings.Join(typeNames, "_"))
			overrideName := fmt.Sprintf("%s_%s", parentClass.InternalName(), functionName)

			if !info.AddTrait(types.TraitRecord{
				Trait:    trait,
				Params:   paramTypes,
				Override: overrideName,
				Return:   returnType,
			}) {
				return nil, diagnostics.TraitAlreadyImplemented(trait.String(), parentClass.String(), span)
			}

			function.TraitOf = parentClass
		} else {
			info.Methods = append(info.Methods, name)
		}

		function.Name = fmt.Sprintf("%s_%s", parentClass.InternalName(), functionName)
	} else if existing, ok := p.Program.Functions.Get(function.Name); ok {
		return nil, diagnostics.FunctionAlreadyExists(name, existing.DisplaySpan)
	}

	// Registered before the body parses so recursive calls resolve.
	p.Program.Functions.Set(function.Name, function)

	if !isExtern {
		body, err := p.parseBlock(function.Body)
		if err != nil {
			return nil, err
		}
		function.Body = body

		if !body.ReturnType.Equal(function.ReturnType) {
			return nil, diagnostics.WrongReturnType(
				function.ReturnType.String(),
				body.ReturnType.String(),
				span.Extend(body.Span),
			)
		}
	}

	return function, nil
}

func (p *Parser) parseFuncParams(generics []string) ([]ast.FunctionParam, position.Span, *diagnostics.Error) {
	open, err := p.expectNext(token.LPAREN)
	if err != nil {
		return nil, position.Span{}, err
	}
	span := open.Span

	var params []ast.FunctionParam
	end, err := p.walkSeparatedValues(token.COMMA, token.RPAREN, func() *diagnostics.Error {
		nameTok, err := p.expectNext(token.IDENT)
		if err != nil {
			return err
		}

		if nameTok.Lexeme == ast.SelfParamName {
			// The receiver's type is filled in once `for Class` is seen.
			params = append(params, ast.FunctionParam{
				Name:     nameTok.Lexeme,
				NameSpan: nameTok.Span,
				Type:     types.None,
				TypeSpan: nameTok.Span,
			})
			return nil
		}

		if _, err := p.expectNext(token.COLON); err != nil {
			return err
		}
		paramType, typeSpan, err := p.parseDataType(generics)
		if err != nil {
			return err
		}

		params = append(params, ast.FunctionParam{
			Name:     nameTok.Lexeme,
			NameSpan: nameTok.Span,
			Type:     paramType,
			TypeSpan: typeSpan,
		})
		return nil
	})
	if err != nil {
		return nil, position.Span{}, err
	}

	return params, span.Extend(end), nil
}

// parseFuncReturnType reads `-> T`; a directly following `{` means void.
func (p *Parser) parseFuncReturnType(generics []string) (types.DataType, position.Span, *diagnostics.Error) {
	next, err := p.peek()
	if err != nil {
		return nil, position.Span{}, err
	}

	switch next.Type {
	case token.ARROW:
		p.pos++
	case token.LBRACE:
		return types.None, position.Span{}, nil
	default:
		if _, err := p.expectNext(token.ARROW); err != nil {
			return nil, position.Span{}, err
		}
	}

	return p.parseDataType(generics)
}

// parseFuncCall parses `name[<T...>](args)`, resolving methods against the
// caller's type, inferring or applying generic arguments and producing the
// concrete specialisation for generic callees.
func (p *Parser) parseFuncCall(scope *ast.Block, caller *ast.TypedExpr) (*ast.TypedExpr, *diagnostics.Error) {
	nameTok, err := p.expectNext(token.IDENT)
	if err != nil {
		return nil, err
	}
	displayName := nameTok.Lexeme
	functionName := nameTok.Lexeme
	span := nameTok.Span

	var genericAnnotations []types.DataType
	if peeked, perr := p.peek(); perr == nil && peeked.Type == token.LT {
		genericAnnotations, err = p.collectGenericAnnotations(scope.Generics)
		if err != nil {
			return nil, err
		}
	}

	open, err := p.expectNext(token.LPAREN)
	if err != nil {
		return nil, err
	}
	argsSpan := open.Span

	var fn *ast.Function
	if caller != nil {
		if custom, ok := caller.Type.(*types.CustomType); ok {
			// Prefer the implementation on the concrete subtype, falling
			// back to the generic template's.
			functionName = fmt.Sprintf("%s_%s", custom.Name, displayName)
			fn, _ = p.Program.Functions.Get(functionName)
			if fn == nil && custom.SubtypeOf != "" {
				functionName = fmt.Sprintf("%s_%s", custom.SubtypeOf, displayName)
				fn, _ = p.Program.Functions.Get(functionName)
			}
		} else {
			functionName = fmt.Sprintf("%s_%s", caller.Type.InternalName(), displayName)
			fn, _ = p.Program.Functions.Get(functionName)
		}
		if fn == nil {
			return nil, diagnostics.MethodDoesNotExist(displayName, caller.Type.String(), span)
		}
	} else {
		fn, err = p.getFunction(functionName, span)
		if err != nil {
			return nil, err
		}
	}

	var args []*ast.TypedExpr

	if caller != nil {
		_, callerIsClassName := caller.Expr.(*ast.ClassNameExpr)

		if len(fn.Params) > 0 {
			selfParam := fn.Params[0]
			receiverMatches := caller.Type.Equal(selfParam.Type)
			if !receiverMatches {
				if callerCustom, ok := caller.Type.(*types.CustomType); ok {
					if paramCustom, ok := selfParam.Type.(*types.CustomType); ok {
						receiverMatches = callerCustom.SubtypeOf == paramCustom.Name
					}
				}
			}

			if receiverMatches {
				if callerIsClassName {
					return nil, diagnostics.MethodIsNotStatic(functionName, caller.Type.String(), span)
				}
				args = append(args, caller)
			}
		} else if fn.IsStaticMethod() && !callerIsClassName {
			return nil, diagnostics.MethodIsStatic(functionName, caller.Type.String(), span)
		}
	}

	end, err := p.walkSeparatedValues(token.COMMA, token.RPAREN, func() *diagnostics.Error {
		arg, err := p.parseExpression(scope)
		if err != nil {
			return err
		}
		argsSpan = span.Extend(arg.Span)
		args = append(args, arg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	span = span.Extend(end)

	if fn.IsGeneric() {
		paramTypes := make([]types.DataType, len(fn.Params))
		for i, param := range fn.Params {
			paramTypes[i] = param.Type
		}

		// Generics appearing only in the return type cannot be inferred from
		// the arguments; they require an explicit annotation.
		extraAnnotations := make(genericMap)
		var annotationOrder []string

		returnTypeGenerics := types.GenericNames(fn.ReturnType)
		if len(returnTypeGenerics) > 0 {
			paramTypes = append(paramTypes, fn.ReturnType)

			paramGenerics := make(map[string]bool)
			for _, param := range fn.Params {
				for _, g := range types.GenericNames(param.Type) {
					paramGenerics[g] = true
				}
			}
			uncovered := false
			for _, g := range returnTypeGenerics {
				if !paramGenerics[g] {
					uncovered = true
				}
			}

			if uncovered || len(genericAnnotations) > 0 {
				if len(genericAnnotations) != len(returnTypeGenerics) {
					return nil, diagnostics.WrongGenericParamCount(len(returnTypeGenerics), len(genericAnnotations), span)
				}
				for i, genericName := range returnTypeGenerics {
					extraAnnotations[genericName] = genericAnnotations[i]
					annotationOrder = append(annotationOrder, genericName)
				}
			}
		}

		specificTypes := make([]types.DataType, 0, len(args)+1)
		for _, arg := range args {
			specificTypes = append(specificTypes, arg.Type)
		}
		specificTypes = append(specificTypes, fn.ReturnType)

		specifics, bindings := handleGenerics(specificTypes, paramTypes, extraAnnotations, annotationOrder)

		cacheKey := types.SubtypeKey(specifics)
		if cached, ok := fn.GenericSubtypes.Get(cacheKey); ok {
			fn = cached
		} else {
			var callerType types.DataType
			if caller != nil {
				callerType = caller.Type
			}

			subtype, err := p.subtypeFunction(fn, bindings, callerType, true)
			if err != nil {
				return nil, err
			}
			fn.GenericSubtypes.Set(cacheKey, subtype)
			fn = subtype
		}
	}

	for i, arg := range args {
		if i >= len(fn.Params) {
			break
		}
		if !fn.Params[i].Type.Equal(arg.Type) {
			return nil, diagnostics.WrongType(fn.Params[i].Type.String(), arg.Type.String(), arg.Span)
		}
	}

	if len(fn.Params) != len(args) {
		expected := make([]string, len(fn.Params))
		for i, param := range fn.Params {
			expected[i] = param.Type.String()
		}
		got := make([]string, len(args))
		for i, arg := range args {
			got[i] = arg.Type.String()
		}
		return nil, diagnostics.WrongArguments(expected, got, argsSpan)
	}

	return &ast.TypedExpr{
		Expr: &ast.CallExpr{
			Function: fn,
			Args:     args,
			ArgsSpan: argsSpan,
		},
		Type: fn.ReturnType,
		Span: span,
	}, nil
}
