package codegen

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseFuncDef lowers a function. Generic templates emit nothing themselves;
// every cached specialisation is emitted instead. Parameters are copied into
// fresh stack slots at entry so they behave like ordinary locals, except the
// receiver, which stays the caller-provided %_self pointer.
func (g *CodeGenerator) parseFuncDef(function *ast.Function) []Instruction {
	if function.IsBuiltin {
		return nil
	}

	if function.IsGeneric() {
		var instructions []Instruction
		for i := 0; i < function.GenericSubtypes.Len(); i++ {
			_, subtype := function.GenericSubtypes.At(i)
			instructions = append(instructions, g.parseFuncDef(subtype)...)
		}
		return instructions
	}

	var paramToVarInstructions []Instruction
	if !function.IsExtern {
		paramToVarInstructions = g.parseFuncParams(function.Params)
	}

	params := make([]IRFunctionParam, len(function.Params))
	for i, p := range function.Params {
		paramType := p.Type
		if function.IsMethod() && !function.IsStaticMethod() && i == 0 {
			paramType = types.NewPointer(p.Type)
		}
		params[i] = IRFunctionParam{Name: p.Name, DataType: paramType}
	}

	body := append(paramToVarInstructions, g.parseBlock(function.Body)...)
	body = killLastUnused(body)

	if types.IsNone(function.ReturnType) {
		body = append(body, Return{Value: VoidValue()})
	}

	return []Instruction{
		DeclareFunction{
			Function: IRFunction{
				Name:       function.Name,
				Params:     params,
				Body:       body,
				ReturnType: function.ReturnType,
				IsExtern:   function.IsExtern,
			},
		},
	}
}

func (g *CodeGenerator) parseFuncParams(params []ast.FunctionParam) []Instruction {
	var instructions []Instruction

	for idx, param := range params {
		isSelfParam := idx == 0 && param.Name == ast.SelfParamName

		var variable Variable
		if isSelfParam {
			variable = Variable{
				Name:     "%_" + param.Name,
				DataType: param.Type,
			}
		} else {
			variable = Variable{
				Name:     "%_" + param.Name + "_0",
				DataType: param.Type,
			}
		}

		g.variableMap[param.Name] = variable

		if !isSelfParam {
			paramVar := Variable{Name: param.Name, DataType: param.Type}
			instructions = append(instructions,
				Assign{
					Variable: variable,
					Value:    Alloca{DataType: variable.DataType},
				},
				Store{
					Value:   paramVar,
					Pointer: variable,
				},
			)
		}
	}

	return instructions
}

// parseFuncCall lowers a call. The receiver argument of an instance method
// is materialised as a pointer at the call site.
func (g *CodeGenerator) parseFuncCall(function *ast.Function, args []*ast.TypedExpr) ComputedExpression {
	if function.IsBuiltin {
		return g.parseBuiltinFuncCall(function, args)
	}

	resultVar := g.nextTmpVar(function.ReturnType)
	var instructions []Instruction
	var argumentValues []Value

	for idx, arg := range args {
		isSelfArg := idx == 0 && function.IsMethod() && !function.IsStaticMethod()

		computed := g.parseExpression(arg, isSelfArg)

		if isSelfArg {
			computed.ResultVar.DataType = types.NewPointer(computed.ResultVar.DataType)
		}

		argumentValues = append(argumentValues, computed.ResultVar)
		instructions = append(instructions, computed.Instructions...)
	}

	call := Call{
		Name:       function.Name,
		ReturnType: function.ReturnType,
		Args:       argumentValues,
	}

	if !types.IsNone(function.ReturnType) {
		instructions = append(instructions, Assign{
			Variable: resultVar,
			Value:    call,
		})
	} else {
		instructions = append(instructions, call)
	}

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

func (g *CodeGenerator) parseBuiltinFuncCall(function *ast.Function, args []*ast.TypedExpr) ComputedExpression {
	switch function.DisplayName {
	case ast.SizeOfName:
		return g.sizeOf(args[0].Expr)
	}
	panic("codegen: unknown builtin " + function.DisplayName)
}
