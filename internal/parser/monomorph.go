package parser

import (
	"strings"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/types"
)

// genericMap binds generic parameter names to concrete types.
type genericMap map[string]types.DataType

// subtypeCustom produces (or reuses) the specialisation of a generic class
// template for a concrete argument tuple. The specialisation is registered in
// the program and in the template's instantiation cache before any dependent
// specialisation is produced, which terminates recursive instantiations such
// as List<List<T>>.
func (p *Parser) subtypeCustom(template *types.CustomType, specific []types.DataType, handleTraits bool, span position.Span) (*types.CustomType, *diagnostics.Error) {
	m := make(genericMap)
	n := len(template.Generics)
	if len(specific) < n {
		n = len(specific)
	}
	for i := 0; i < n; i++ {
		m[template.Generics[i]] = specific[i]
	}

	bound := make([]types.DataType, 0, len(template.Generics))
	for _, g := range template.Generics {
		if t, ok := m[g]; ok {
			bound = append(bound, t)
		}
	}

	// An incomplete or still-generic binding cannot specialise; the template
	// stays as-is.
	if len(bound) < len(template.Generics) {
		return template, nil
	}
	for _, t := range bound {
		if t.IsGeneric() {
			return template, nil
		}
	}

	name := types.MangledName(template.Name, bound)

	if entry, ok := p.Program.CustomTypes.Get(name); ok {
		if existing, ok := entry.Type.(*types.CustomType); ok {
			return existing, nil
		}
	}

	out := &types.CustomType{
		DisplayName: types.DisplayNameWith(template.DisplayName, bound),
		Name:        name,
		SubtypeOf:   template.Name,
	}

	// Register before substituting the fields so that self-referential
	// instantiations resolve against the entry instead of recursing.
	p.Program.CustomTypes.Set(out.Name, &ast.SpannedType{Type: out, Span: span})
	template.CacheSubtype(types.SubtypeKey(specific), out)

	fields := make([]types.Field, len(template.Fields))
	for i, f := range template.Fields {
		sub, err := p.substType(f.Type, m, true)
		if err != nil {
			return nil, err
		}
		fields[i] = types.Field{Name: f.Name, Type: sub}
	}
	out.Fields = fields

	templateInfo := p.Program.GetTypeInfo(template)
	newInfo := types.NewDataTypeInfo(out)
	newInfo.Methods = append([]string(nil), templateInfo.Methods...)

	if handleTraits {
		for _, record := range templateInfo.Traits {
			newRecord := types.TraitRecord{
				Trait:    record.Trait,
				Params:   make([]types.DataType, len(record.Params)),
				Override: record.Override,
				Return:   record.Return,
			}

			// The first parameter is the receiver; it becomes the subtype.
			for i, param := range record.Params {
				if i == 0 {
					newRecord.Params[0] = out
					continue
				}
				sub, err := p.substType(param, m, false)
				if err != nil {
					return nil, err
				}
				newRecord.Params[i] = sub
			}
			sub, err := p.substType(record.Return, m, false)
			if err != nil {
				return nil, err
			}
			newRecord.Return = sub

			traitFn, ok := p.Program.Functions.Get(record.Override)
			if !ok {
				continue
			}
			fnSub, err := p.subtypeFunction(traitFn, m, nil, false)
			if err != nil {
				return nil, err
			}
			newRecord.Override = fnSub.Name
			p.Program.Functions.Set(fnSub.Name, fnSub)

			newInfo.AddTrait(newRecord)
		}

		p.Program.DataTypes.Set(out.Name, newInfo)
	}

	return out, nil
}

// substType replaces generic placeholders in t by the bindings of m,
// monomorphising any still-generic class it contains.
func (p *Parser) substType(t types.DataType, m genericMap, handleTraits bool) (types.DataType, *diagnostics.Error) {
	switch tt := t.(type) {
	case types.Generic:
		if bound, ok := m[tt.Name]; ok {
			return bound.Clone(), nil
		}
		return tt, nil

	case types.Pointer:
		elem, err := p.substType(tt.Elem, m, handleTraits)
		if err != nil {
			return nil, err
		}
		return types.NewPointer(elem), nil

	case types.Array:
		elem, err := p.substType(tt.Elem, m, handleTraits)
		if err != nil {
			return nil, err
		}
		return types.Array{Elem: elem, Len: tt.Len}, nil

	case *types.CustomType:
		if !tt.IsGeneric() {
			return tt, nil
		}

		template := tt
		if tt.SubtypeOf != "" {
			if entry, ok := p.Program.CustomTypes.Get(tt.SubtypeOf); ok {
				if base, ok := entry.Type.(*types.CustomType); ok {
					template = base
				}
			}
		}

		specific := make([]types.DataType, len(template.Generics))
		for i, g := range template.Generics {
			if bound, ok := m[g]; ok {
				specific[i] = bound
			} else {
				specific[i] = types.Generic{Name: g}
			}
		}

		return p.subtypeCustom(template, specific, handleTraits, position.Span{})
	}

	return t, nil
}

// subtypeFunction clones a generic function template with every generic slot
// substituted. The caller, when given, becomes the specialised receiver.
func (p *Parser) subtypeFunction(f *ast.Function, m genericMap, caller types.DataType, handleTraits bool) (*ast.Function, *diagnostics.Error) {
	params := make([]ast.FunctionParam, len(f.Params))
	for i, param := range f.Params {
		sub, err := p.substType(param.Type, m, handleTraits)
		if err != nil {
			return nil, err
		}
		params[i] = ast.FunctionParam{
			Name:     param.Name,
			NameSpan: param.NameSpan,
			Type:     sub,
			TypeSpan: param.TypeSpan,
		}
	}

	body, err := p.substBlock(f.Body, m)
	if err != nil {
		return nil, err
	}

	var mangleParts []string
	for _, g := range f.GenericNames() {
		if bound, ok := m[g]; ok {
			mangleParts = append(mangleParts, bound.InternalName())
		}
	}
	name := f.Name + "--" + strings.Join(mangleParts, ".")

	methodOf := f.MethodOf
	if caller != nil {
		if custom, ok := caller.(*types.CustomType); ok && !f.IsStaticMethod() {
			methodOf = custom
		}
	}

	// A generic that stayed unbound, or was bound to another generic, keeps
	// the clone generic; such clones are never emitted themselves.
	var remaining []string
	for _, g := range f.GenericNames() {
		bound, ok := m[g]
		if !ok || bound.IsGeneric() {
			remaining = append(remaining, g)
		}
	}
	body.Generics = remaining

	return &ast.Function{
		DisplayName:     f.DisplayName,
		DisplaySpan:     f.DisplaySpan,
		Name:            name,
		Params:          params,
		ParamsSpan:      f.ParamsSpan,
		Body:            body,
		ReturnType:      body.ReturnType,
		ReturnSpan:      f.ReturnSpan,
		IsExtern:        f.IsExtern,
		MethodOf:        methodOf,
		GenericSubtypes: ast.NewOrderedMap[*ast.Function](),
		IsBuiltin:       f.IsBuiltin,
	}, nil
}

func (p *Parser) substBlock(b *ast.Block, m genericMap) (*ast.Block, *diagnostics.Error) {
	if b == nil {
		return ast.NewBlock(), nil
	}

	out := ast.NewBlock()
	out.FunctionDepth = b.FunctionDepth
	out.Span = b.Span

	returnType, err := p.substType(b.ReturnType, m, true)
	if err != nil {
		return nil, err
	}
	out.ReturnType = returnType

	for _, g := range b.Generics {
		if _, ok := m[g]; !ok {
			out.Generics = append(out.Generics, g)
		}
	}

	for name, v := range b.Variables {
		sub, err := p.substType(v.Type, m, true)
		if err != nil {
			return nil, err
		}
		out.Variables[name] = &ast.Variable{
			Name:     v.Name,
			NameSpan: v.NameSpan,
			Mutable:  v.Mutable,
			Type:     sub,
		}
	}

	for _, param := range b.ClosureParams {
		sub, err := p.substType(param.Type, m, true)
		if err != nil {
			return nil, err
		}
		out.ClosureParams = append(out.ClosureParams, ast.FunctionParam{
			Name:     param.Name,
			NameSpan: param.NameSpan,
			Type:     sub,
			TypeSpan: param.TypeSpan,
		})
	}

	for _, stmt := range b.Statements {
		sub, err := p.substStatement(stmt, m)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, sub)
	}

	return out, nil
}

func (p *Parser) substStatement(stmt ast.Statement, m genericMap) (ast.Statement, *diagnostics.Error) {
	switch s := stmt.(type) {
	case *ast.IfStatement:
		condition, err := p.substExpr(s.Condition, m)
		if err != nil {
			return nil, err
		}
		trueBranch, err := p.substBlock(s.TrueBranch, m)
		if err != nil {
			return nil, err
		}
		var elseIfs []*ast.ElseIfBranch
		for _, branch := range s.ElseIfs {
			cond, err := p.substExpr(branch.Condition, m)
			if err != nil {
				return nil, err
			}
			body, err := p.substBlock(branch.Body, m)
			if err != nil {
				return nil, err
			}
			elseIfs = append(elseIfs, &ast.ElseIfBranch{Condition: cond, Body: body, Span: branch.Span})
		}
		var falseBranch *ast.Block
		if s.FalseBranch != nil {
			falseBranch, err = p.substBlock(s.FalseBranch, m)
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfStatement{
			Condition:   condition,
			TrueBranch:  trueBranch,
			ElseIfs:     elseIfs,
			FalseBranch: falseBranch,
			Span:        s.Span,
		}, nil

	case *ast.WhileStatement:
		condition, err := p.substExpr(s.Condition, m)
		if err != nil {
			return nil, err
		}
		body, err := p.substBlock(s.Body, m)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStatement{Condition: condition, Body: body, Span: s.Span}, nil

	case *ast.VariableDecl:
		value, err := p.substExpr(s.Value, m)
		if err != nil {
			return nil, err
		}
		var declared types.DataType
		if s.Type != nil {
			declared, err = p.substType(s.Type, m, true)
			if err != nil {
				return nil, err
			}
		}
		return &ast.VariableDecl{
			Mutable:  s.Mutable,
			Name:     s.Name,
			NameSpan: s.NameSpan,
			Type:     declared,
			Value:    value,
			Span:     s.Span,
		}, nil

	case *ast.ReturnStatement:
		value, err := p.substExpr(s.Value, m)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatement{Value: value, Span: s.Span}, nil

	case *ast.ExprStatement:
		expr, err := p.substExpr(s.Expr, m)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStatement{Expr: expr, Span: s.Span}, nil

	case *ast.VariableMutation:
		target, err := p.substExpr(s.Target, m)
		if err != nil {
			return nil, err
		}
		value, err := p.substExpr(s.Value, m)
		if err != nil {
			return nil, err
		}
		return &ast.VariableMutation{Target: target, Value: value, Span: s.Span}, nil
	}

	return stmt, nil
}

func (p *Parser) substExpr(te *ast.TypedExpr, m genericMap) (*ast.TypedExpr, *diagnostics.Error) {
	if te == nil {
		return nil, nil
	}

	exprType, err := p.substType(te.Type, m, true)
	if err != nil {
		return nil, err
	}

	out := &ast.TypedExpr{Type: exprType, Raw: te.Raw, Span: te.Span}

	switch e := te.Expr.(type) {
	case *ast.Literal:
		switch e.Kind {
		case ast.LitArray:
			elemType, err := p.substType(e.Array.ElemType, m, true)
			if err != nil {
				return nil, err
			}
			values := make([]*ast.TypedExpr, len(e.Array.Values))
			for i, v := range e.Array.Values {
				values[i], err = p.substExpr(v, m)
				if err != nil {
					return nil, err
				}
			}
			out.Expr = &ast.Literal{Kind: ast.LitArray, Array: &ast.ArrayLiteral{
				ElemType: elemType,
				Values:   values,
				Span:     e.Array.Span,
			}}

		case ast.LitClass:
			classType, err := p.substType(e.Class.Type, m, true)
			if err != nil {
				return nil, err
			}
			fields := make([]ast.ClassLiteralField, len(e.Class.Fields))
			for i, f := range e.Class.Fields {
				value, err := p.substExpr(f.Value, m)
				if err != nil {
					return nil, err
				}
				fields[i] = ast.ClassLiteralField{Name: f.Name, NameSpan: f.NameSpan, Value: value}
			}
			out.Expr = &ast.Literal{Kind: ast.LitClass, Class: &ast.ClassLiteral{
				Type:   classType,
				Fields: fields,
				Span:   e.Class.Span,
			}}

		case ast.LitType:
			typeValue, err := p.substType(e.TypeValue, m, true)
			if err != nil {
				return nil, err
			}
			out.Expr = &ast.Literal{Kind: ast.LitType, TypeValue: typeValue}

		default:
			lit := *e
			out.Expr = &lit
		}

	case *ast.VariableExpr:
		varType, err := p.substType(e.Variable.Type, m, true)
		if err != nil {
			return nil, err
		}
		v := e.Variable
		v.Type = varType
		out.Expr = &ast.VariableExpr{Variable: v}

	case *ast.BinaryExpr:
		lhs, err := p.substExpr(e.Lhs, m)
		if err != nil {
			return nil, err
		}
		rhs, err := p.substExpr(e.Rhs, m)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.BinaryExpr{Lhs: lhs, Op: e.Op, OpSpan: e.OpSpan, Rhs: rhs}

	case *ast.UnaryExpr:
		inner, err := p.substExpr(e.Expr, m)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.UnaryExpr{Op: e.Op, Expr: inner}

	case *ast.CastExpr:
		value, err := p.substExpr(e.Value, m)
		if err != nil {
			return nil, err
		}
		to, err := p.substType(e.To, m, true)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.CastExpr{Value: value, To: to, ToSpan: e.ToSpan}

	case *ast.ReferenceExpr:
		value, err := p.substExpr(e.Value, m)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.ReferenceExpr{Value: value}

	case *ast.DerefExpr:
		value, err := p.substExpr(e.Value, m)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.DerefExpr{Value: value}

	case *ast.CallExpr:
		args := make([]*ast.TypedExpr, len(e.Args))
		for i, arg := range e.Args {
			args[i], err = p.substExpr(arg, m)
			if err != nil {
				return nil, err
			}
		}

		callee := e.Function
		if callee.IsGeneric() {
			// A nested generic call inside a template specialises with the
			// same binding map; the specialisation joins the program so it
			// is emitted.
			specialised, err := p.subtypeFunction(callee, m, callee.MethodOf, true)
			if err != nil {
				return nil, err
			}
			p.Program.Functions.Set(specialised.Name, specialised)
			callee = specialised
		}
		out.Expr = &ast.CallExpr{Function: callee, Args: args, ArgsSpan: e.ArgsSpan}

	case *ast.BlockExpr:
		body, err := p.substBlock(e.Body, m)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.BlockExpr{Body: body}

	case *ast.IndexExpr:
		base, err := p.substExpr(e.Base, m)
		if err != nil {
			return nil, err
		}
		idx, err := p.substExpr(e.Idx, m)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.IndexExpr{Base: base, Idx: idx}

	case *ast.FieldAccessExpr:
		base, err := p.substExpr(e.Base, m)
		if err != nil {
			return nil, err
		}
		out.Expr = &ast.FieldAccessExpr{Base: base, Field: e.Field, FieldSpan: e.FieldSpan, FieldIdx: e.FieldIdx}

	default:
		out.Expr = te.Expr
	}

	return out, nil
}

// handleGenerics infers a generic binding by walking (actual, parameter)
// pairs, recursing through pointers and class fields. Each fresh generic
// binds to the matching actual once; later occurrences must already agree.
// Explicit annotations seed the binding.
func handleGenerics(args, params []types.DataType, annotations genericMap, annotationOrder []string) ([]types.DataType, genericMap) {
	bindings := make(genericMap)
	var order []string

	for _, g := range annotationOrder {
		if t, ok := annotations[g]; ok {
			if _, seen := bindings[g]; !seen {
				bindings[g] = t
				order = append(order, g)
			}
		}
	}

	n := len(args)
	if len(params) < n {
		n = len(params)
	}

	for i := 0; i < n; i++ {
		inferGeneric(args[i], params[i], bindings, &order)
	}

	specifics := make([]types.DataType, 0, len(order))
	for _, g := range order {
		specifics = append(specifics, bindings[g])
	}
	return specifics, bindings
}

func inferGeneric(arg, param types.DataType, bindings genericMap, order *[]string) {
	switch pt := param.(type) {
	case types.Generic:
		if _, ok := bindings[pt.Name]; !ok {
			bindings[pt.Name] = arg
			*order = append(*order, pt.Name)
		}

	case *types.CustomType:
		argCustom, ok := arg.(*types.CustomType)
		if !ok {
			return
		}
		n := len(pt.Fields)
		if len(argCustom.Fields) < n {
			n = len(argCustom.Fields)
		}
		for i := 0; i < n; i++ {
			inferGeneric(argCustom.Fields[i].Type, pt.Fields[i].Type, bindings, order)
		}

	case types.Pointer:
		if argPtr, ok := arg.(types.Pointer); ok {
			inferGeneric(argPtr.Elem, pt.Elem, bindings, order)
		}
	}
}

// checkAllTypesSame verifies a homogeneous expression list and returns the
// common type.
func checkAllTypesSame(exprs []*ast.TypedExpr) (types.DataType, *diagnostics.Error) {
	common := exprs[0].Type
	for _, e := range exprs {
		if !e.Type.Equal(common) {
			return nil, diagnostics.WrongType(common.String(), e.Type.String(), e.Span)
		}
	}
	return common, nil
}
