package codegen

import (
	"fmt"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseVariableDecl lowers `let name = expr`: compute the value, allocate
// the slot, store.
func (g *CodeGenerator) parseVariableDecl(name string, value *ast.TypedExpr) []Instruction {
	variable := Variable{
		Name:     fmt.Sprintf("%%_%s_%d", name, g.nextCount()),
		DataType: value.Type,
	}

	computed := g.parseExpression(value, false)
	instructions := computed.Instructions

	instructions = append(instructions,
		Assign{
			Variable: variable,
			Value:    Alloca{DataType: variable.DataType},
		},
		Store{
			Value:   computed.ResultVar,
			Pointer: variable,
		},
	)

	g.variableMap[name] = variable

	return instructions
}

// parseVariable resolves a variable to its slot; the slot itself is the
// reference.
func (g *CodeGenerator) parseVariable(variable ast.Variable) ComputedExpression {
	resultVar, ok := g.variableMap[variable.Name]
	if !ok {
		panic("codegen: variable " + variable.Name + " has no slot")
	}

	return ComputedExpression{ResultVar: resultVar}
}

// parseVariableMutation lowers `<lvalue> = expr`: the target as a reference,
// the value as a value, one store.
func (g *CodeGenerator) parseVariableMutation(target, newValue *ast.TypedExpr) []Instruction {
	var instructions []Instruction

	targetComputed := g.parseExpression(target, true)
	instructions = append(instructions, targetComputed.Instructions...)

	valueComputed := g.parseExpression(newValue, false)
	instructions = append(instructions, valueComputed.Instructions...)

	instructions = append(instructions, Store{
		Value:   valueComputed.ResultVar,
		Pointer: targetComputed.ResultVar,
	})

	return instructions
}

// parseReference lowers `&expr`: the expression's reference is itself the
// pointer value; it lands in a fresh pointer-typed slot.
func (g *CodeGenerator) parseReference(expr *ast.TypedExpr) ComputedExpression {
	var instructions []Instruction
	pointerType := types.NewPointer(expr.Type)
	resultVar := g.nextTmpVar(pointerType)

	computed := g.parseExpression(expr, true)
	instructions = append(instructions, computed.Instructions...)

	instructions = append(instructions,
		Assign{
			Variable: resultVar,
			Value:    Alloca{DataType: pointerType},
		},
		Store{
			Value: Variable{
				Name:     computed.ResultVar.Name,
				DataType: pointerType,
			},
			Pointer: resultVar,
		},
	)

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}
