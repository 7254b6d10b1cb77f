package codegen

import (
	"fmt"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseExpression lowers an expression and bridges the reference/value
// mismatch between what the expression naturally produces and what the
// caller asked for. Variables, literals, indexing results, field accesses
// and dereferences are naturally references (their result register is a
// pointer to storage); arithmetic, casts, calls and block expressions are
// naturally values. A value wanted as a reference gets a fresh alloca+store;
// a reference wanted as a value gets a load.
func (g *CodeGenerator) parseExpression(expr *ast.TypedExpr, asRef bool) ComputedExpression {
	resultVar := g.nextTmpVar(expr.Type)
	var instructions []Instruction
	isRef := false

	var out ComputedExpression

	switch e := expr.Expr.(type) {
	case *ast.Literal:
		isRef = true
		out = g.parseLiteral(e)

	case *ast.VariableExpr:
		isRef = true
		out = g.parseVariable(e.Variable)

	case *ast.BinaryExpr:
		out = g.parseBinaryExpr(e.Lhs, e.Op, e.Rhs)

	case *ast.UnaryExpr:
		out = g.parseUnaryExpr(e)

	case *ast.CastExpr:
		out = g.parseTypeCast(e.Value, e.To)

	case *ast.CallExpr:
		out = g.parseFuncCall(e.Function, e.Args)

	case *ast.IndexExpr:
		isRef = true
		out = g.parseIndexing(e.Base, e.Idx)

	case *ast.FieldAccessExpr:
		isRef = true
		out = g.parseFieldAccess(e.Base, e.FieldIdx)

	case *ast.DerefExpr:
		isRef = true
		out = g.parseDeref(e.Value)

	case *ast.BlockExpr:
		out = g.parseBlockExpr(e.Body)

	case *ast.ReferenceExpr:
		isRef = true
		out = g.parseReference(e.Value)

	default:
		panic(fmt.Sprintf("codegen: unhandled expression %T", expr.Expr))
	}

	instructions = append(instructions, out.Instructions...)

	switch {
	case asRef && !isRef:
		instructions = append(instructions,
			Assign{
				Variable: resultVar,
				Value:    Alloca{DataType: expr.Type},
			},
			Store{
				Value:   out.ResultVar,
				Pointer: resultVar,
			},
		)
	case !asRef && isRef:
		instructions = append(instructions, Assign{
			Variable: resultVar,
			Value:    Load{Pointer: out.ResultVar},
		})
	default:
		resultVar = out.ResultVar
	}

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

// parseBinaryExpr lowers arithmetic and comparisons. A user trait record on
// the left operand's type rewrites the operator into a call to the override
// function instead of an opcode.
func (g *CodeGenerator) parseBinaryExpr(lhs *ast.TypedExpr, op ast.BinaryOperator, rhs *ast.TypedExpr) ComputedExpression {
	var instructions []Instruction
	resultType := lhs.Type
	lhsInfo := g.Program.GetTypeInfo(lhs.Type)

	trait := op.Trait()

	lhsComputed := g.parseExpression(lhs, false)
	rhsComputed := g.parseExpression(rhs, false)

	instructions = append(instructions, lhsComputed.Instructions...)
	instructions = append(instructions, rhsComputed.Instructions...)

	traitParams := []types.DataType{lhs.Type, rhs.Type}
	if traitFn := g.Program.GetTraitFunction(lhsInfo, trait, traitParams); traitFn != nil {
		call := traitFn.ToCall([]*ast.TypedExpr{lhs, rhs})
		callComputed := g.parseExpression(call, false)

		instructions = append(instructions, callComputed.Instructions...)
		return ComputedExpression{Instructions: instructions, ResultVar: callComputed.ResultVar}
	}

	isFloat := types.IsFloat(resultType)

	var operator Operator
	switch op {
	case ast.OpAdd:
		operator = OpAdd
		if isFloat {
			operator = OpFAdd
		}
	case ast.OpSubtract:
		operator = OpSub
		if isFloat {
			operator = OpFSub
		}
	case ast.OpMultiply:
		operator = OpMul
		if isFloat {
			operator = OpFMul
		}
	case ast.OpDivide:
		operator = OpSDiv
		if isFloat {
			operator = OpFDiv
		}
	case ast.OpModulo:
		operator = OpSRem
		if isFloat {
			operator = OpFRem
		}
	case ast.OpEqual:
		operator = OpEq
	case ast.OpNotEqual:
		operator = OpNe
	case ast.OpGreaterThan:
		operator = OpSgt
	case ast.OpGreaterThanOrEqual:
		operator = OpSge
	case ast.OpLessThan:
		operator = OpSlt
	case ast.OpLessThanOrEqual:
		operator = OpSle
	case ast.OpAnd:
		operator = OpAnd
	case ast.OpOr:
		operator = OpOr
	}

	if operator.IsOrdering() {
		resultType = types.Boolean
	}

	resultVar := g.nextTmpVar(resultType)

	instructions = append(instructions, Assign{
		Variable: resultVar,
		Value: BinaryOperation{
			Lhs:      lhsComputed.ResultVar,
			Operator: operator,
			Rhs:      rhsComputed.ResultVar,
		},
	})

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

// parseUnaryExpr lowers `!expr` as xor with true, or as a call of the user
// BooleanNot override when the operand's type has one.
func (g *CodeGenerator) parseUnaryExpr(e *ast.UnaryExpr) ComputedExpression {
	inner := g.parseExpression(e.Expr, false)
	instructions := inner.Instructions

	info := g.Program.GetTypeInfo(e.Expr.Type)
	traitParams := []types.DataType{e.Expr.Type}
	if traitFn := g.Program.GetTraitFunction(info, types.TraitBooleanNot, traitParams); traitFn != nil {
		call := traitFn.ToCall([]*ast.TypedExpr{e.Expr})
		callComputed := g.parseExpression(call, false)
		instructions = append(instructions, callComputed.Instructions...)
		return ComputedExpression{Instructions: instructions, ResultVar: callComputed.ResultVar}
	}

	resultVar := g.nextTmpVar(types.Boolean)
	instructions = append(instructions, Assign{
		Variable: resultVar,
		Value: BinaryOperation{
			Lhs:      inner.ResultVar,
			Operator: OpXor,
			Rhs:      BoolValue(true),
		},
	})

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

// parseLiteral allocates storage for the literal and stores the constant;
// aggregates delegate to their element-wise lowering.
func (g *CodeGenerator) parseLiteral(literal *ast.Literal) ComputedExpression {
	resultVar := g.nextTmpVar(literal.Type())
	var instructions []Instruction

	switch literal.Kind {
	case ast.LitArray:
		arr := g.parseArrayLiteral(literal.Array)
		instructions = append(instructions, arr.Instructions...)
		resultVar = arr.ResultVar

	case ast.LitClass:
		class := g.parseClassLiteral(literal.Class)
		instructions = append(instructions, class.Instructions...)
		resultVar = class.ResultVar

	default:
		instructions = append(instructions,
			Assign{
				Variable: resultVar,
				Value:    Alloca{DataType: literal.Type()},
			},
			Store{
				Value:   scalarValue(literal),
				Pointer: resultVar,
			},
		)
	}

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

func scalarValue(literal *ast.Literal) Value {
	switch literal.Kind {
	case ast.LitInt:
		return IntValue(literal.Int)
	case ast.LitFloat:
		return FloatValue(literal.Float)
	case ast.LitBool:
		return BoolValue(literal.Bool)
	}
	return VoidValue()
}

func (g *CodeGenerator) parseDeref(base *ast.TypedExpr) ComputedExpression {
	var instructions []Instruction
	resultVar := g.nextTmpVar(base.Type.(types.Pointer).Elem)

	baseComputed := g.parseExpression(base, true)
	instructions = append(instructions, baseComputed.Instructions...)

	instructions = append(instructions, Assign{
		Variable: resultVar,
		Value:    Load{Pointer: baseComputed.ResultVar},
	})

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

// parseBlockExpr lowers an anonymous block by lifting it into a synthetic
// function over its captured variables and calling it.
func (g *CodeGenerator) parseBlockExpr(body *ast.Block) ComputedExpression {
	name := fmt.Sprintf("block_%d", g.nextCount())
	blockFunc := ast.FromBlock(body, name)

	virtualArgs := make([]*ast.TypedExpr, len(blockFunc.Params))
	for i, param := range blockFunc.Params {
		virtualArgs[i] = &ast.TypedExpr{
			Expr: &ast.VariableExpr{
				Variable: ast.Variable{
					Name:     param.Name,
					NameSpan: param.NameSpan,
					Type:     param.Type,
				},
			},
			Type: param.Type,
		}
	}

	g.Program.Functions.Set(blockFunc.Name, blockFunc)

	return g.parseFuncCall(blockFunc, virtualArgs)
}
