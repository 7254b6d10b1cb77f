package codegen

import (
	"fmt"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseTypeCast lowers `v as T`. Pointer-to-pointer round-trips through the
// platform integer; integer widths sext/trunc; int/float convert through
// sitofp and the saturating fptosi intrinsic.
func (g *CodeGenerator) parseTypeCast(value *ast.TypedExpr, to types.DataType) ComputedExpression {
	var instructions []Instruction
	resultVar := g.nextTmpVar(to)
	computed := g.parseExpression(value, false)

	fromType := value.Type

	if types.IsPointer(fromType) && types.IsPointer(to) {
		ptrToInt := &ast.TypedExpr{
			Expr: &ast.CastExpr{
				Value: value,
				To:    types.PlatformInt(),
			},
			Type: types.PlatformInt(),
		}
		return g.parseTypeCast(ptrToInt, to)
	}

	if types.IsPointer(fromType) && types.Equal(to, types.PlatformInt()) {
		instructions = append(instructions, computed.Instructions...)
		instructions = append(instructions, Assign{
			Variable: resultVar,
			Value:    PtrToInt{Pointer: computed.ResultVar},
		})
		return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
	}

	if types.Equal(fromType, types.PlatformInt()) && types.IsPointer(to) {
		instructions = append(instructions, computed.Instructions...)
		instructions = append(instructions, Assign{
			Variable: resultVar,
			Value:    IntToPtr{Value: computed.ResultVar, Pointer: to},
		})
		return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
	}

	if (types.IsInteger(fromType) || types.IsBoolean(fromType)) &&
		(types.IsInteger(to) || types.IsBoolean(to)) {
		instructions = append(instructions, computed.Instructions...)

		if fromType.Equal(to) {
			return ComputedExpression{Instructions: instructions, ResultVar: computed.ResultVar}
		}

		var cast Instruction
		if fromType.Size() < to.Size() {
			cast = SignedExtend{Value: computed.ResultVar, To: to}
		} else {
			cast = Truncate{Value: computed.ResultVar, To: to}
		}

		instructions = append(instructions, Assign{Variable: resultVar, Value: cast})
		return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
	}

	if types.IsInteger(fromType) && types.IsFloat(to) {
		instructions = append(instructions, computed.Instructions...)
		instructions = append(instructions, Assign{
			Variable: resultVar,
			Value:    SignedIntToFloat{Value: computed.ResultVar, To: to},
		})
		return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
	}

	if types.IsFloat(fromType) && types.IsInteger(to) {
		instructions = append(instructions, computed.Instructions...)
		instructions = append(instructions, Assign{
			Variable: resultVar,
			Value:    FloatToSignedInt{Value: computed.ResultVar, To: to},
		})
		return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
	}

	panic(fmt.Sprintf("codegen: no lowering for cast %s to %s", fromType, to))
}
