package codegen

import (
	"fmt"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/types"
)

// parseClassDef emits the type declaration of a concrete class. Generic
// templates never reach the IR; only their specialisations do.
func (g *CodeGenerator) parseClassDef(class types.DataType) []Instruction {
	custom, ok := class.(*types.CustomType)
	if !ok {
		panic("codegen: class table holds a non-class type")
	}

	if custom.IsGeneric() {
		return nil
	}

	return []Instruction{DeclareType{DataType: class}}
}

// parseArrayLiteral allocates the aggregate and stores each element through
// its element pointer.
func (g *CodeGenerator) parseArrayLiteral(arrayLiteral *ast.ArrayLiteral) ComputedExpression {
	arrayType := types.Array{Elem: arrayLiteral.ElemType, Len: len(arrayLiteral.Values)}
	resultVar := g.nextTmpVar(arrayType)

	instructions := []Instruction{
		Assign{
			Variable: resultVar,
			Value:    Alloca{DataType: arrayType},
		},
	}

	for idx, value := range arrayLiteral.Values {
		computed := g.parseExpression(value, false)
		instructions = append(instructions, computed.Instructions...)

		idxPtr := g.getIndexPointer(resultVar, IntValue(int64(idx)), nil)
		instructions = append(instructions, idxPtr.Instructions...)

		instructions = append(instructions, Store{
			Value:   computed.ResultVar,
			Pointer: idxPtr.ResultVar,
		})
	}

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

// getIndexPointer emits the element-pointer computation into an array or a
// class field. For classes the field type must be supplied.
func (g *CodeGenerator) getIndexPointer(arrayLike Variable, idx Value, fieldType types.DataType) ComputedExpression {
	var valueType types.DataType
	switch t := arrayLike.DataType.(type) {
	case types.Array:
		valueType = t.Elem
	case *types.CustomType:
		valueType = fieldType
	default:
		panic(fmt.Sprintf("codegen: cannot index type %s", arrayLike.DataType))
	}

	resultVar := g.nextTmpVar(valueType)

	instructions := []Instruction{
		Assign{
			Variable: resultVar,
			Value: GetElementPointer{
				Base: arrayLike,
				Idx:  idx,
			},
		},
	}

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

// parseIndexing lowers base[idx]. A user Index trait turns into a call to
// the override function; its returned pointer is reinterpreted as a
// reference to the element so reads and writes compose uniformly.
func (g *CodeGenerator) parseIndexing(base, idx *ast.TypedExpr) ComputedExpression {
	var instructions []Instruction

	baseComputed := g.parseExpression(base, true)
	idxComputed := g.parseExpression(idx, false)

	instructions = append(instructions, baseComputed.Instructions...)
	instructions = append(instructions, idxComputed.Instructions...)

	baseInfo := g.Program.GetTypeInfo(base.Type)
	traitParams := []types.DataType{base.Type, idx.Type}

	if traitFn := g.Program.GetTraitFunction(baseInfo, types.TraitIndex, traitParams); traitFn != nil {
		call := traitFn.ToCall([]*ast.TypedExpr{base, idx})
		callComputed := g.parseExpression(call, false)

		instructions = append(instructions, callComputed.Instructions...)

		pointer, ok := callComputed.ResultVar.DataType.(types.Pointer)
		if !ok {
			panic("codegen: Index override must return a pointer")
		}
		callComputed.ResultVar.DataType = pointer.Elem

		return ComputedExpression{Instructions: instructions, ResultVar: callComputed.ResultVar}
	}

	out := g.getIndexPointer(baseComputed.ResultVar, idxComputed.ResultVar, nil)
	instructions = append(instructions, out.Instructions...)

	return ComputedExpression{Instructions: instructions, ResultVar: out.ResultVar}
}

// parseClassLiteral allocates the aggregate and stores every field value.
func (g *CodeGenerator) parseClassLiteral(classLiteral *ast.ClassLiteral) ComputedExpression {
	resultVar := g.nextTmpVar(classLiteral.Type)

	instructions := []Instruction{
		Assign{
			Variable: resultVar,
			Value:    Alloca{DataType: classLiteral.Type},
		},
	}

	for idx, field := range classLiteral.Fields {
		computed := g.parseExpression(field.Value, false)
		instructions = append(instructions, computed.Instructions...)

		idxPtr := g.getIndexPointer(resultVar, IntValue(int64(idx)), field.Value.Type)
		instructions = append(instructions, idxPtr.Instructions...)

		instructions = append(instructions, Store{
			Value:   computed.ResultVar,
			Pointer: idxPtr.ResultVar,
		})
	}

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}

// parseFieldAccess lowers base.field as an element pointer off the base
// reference.
func (g *CodeGenerator) parseFieldAccess(base *ast.TypedExpr, idx int) ComputedExpression {
	custom, ok := base.Type.(*types.CustomType)
	if !ok {
		panic("codegen: field access on a non-class type")
	}

	var instructions []Instruction

	baseComputed := g.parseExpression(base, true)
	instructions = append(instructions, baseComputed.Instructions...)

	fieldType := custom.Fields[idx].Type
	out := g.getIndexPointer(baseComputed.ResultVar, IntValue(int64(idx)), fieldType)
	instructions = append(instructions, out.Instructions...)

	return ComputedExpression{Instructions: instructions, ResultVar: out.ResultVar}
}
