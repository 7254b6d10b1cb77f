package codegen

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/types"
)

// moveAllocationsToTop stably partitions alloca assignments in front of
// everything else. Loop bodies run through this so their stack slots are
// allocated once, in front of the loop, instead of growing the stack every
// iteration. The slots are not moved further up: a loop that sits inside or
// after a conditional keeps them in the block the loop starts in, not in the
// function's entry block.
func moveAllocationsToTop(instructions []Instruction) []Instruction {
	allocas := make([]Instruction, 0, len(instructions))
	rest := make([]Instruction, 0, len(instructions))

	for _, inst := range instructions {
		if assign, ok := inst.(Assign); ok {
			if _, isAlloca := assign.Value.(Alloca); isAlloca {
				allocas = append(allocas, inst)
				continue
			}
		}
		rest = append(rest, inst)
	}

	return append(allocas, rest...)
}

// killLastUnused prunes instructions trailing the last return of a body.
func killLastUnused(instructions []Instruction) []Instruction {
	hasReturn := false
	for _, inst := range instructions {
		if _, ok := inst.(Return); ok {
			hasReturn = true
			break
		}
	}
	if !hasReturn {
		return instructions
	}

	for len(instructions) > 0 {
		if _, ok := instructions[len(instructions)-1].(Return); ok {
			break
		}
		instructions = instructions[:len(instructions)-1]
	}
	return instructions
}

// sizeOf lowers the size_of builtin: a getelementptr off a null pointer
// followed by ptrtoint yields the element size as the platform integer.
func (g *CodeGenerator) sizeOf(typeLiteral ast.Expression) ComputedExpression {
	lit, ok := typeLiteral.(*ast.Literal)
	if !ok || lit.Kind != ast.LitType {
		panic("codegen: size_of expects a type literal")
	}

	resultVar := g.nextTmpVar(types.PlatformInt())
	tmpVar := g.nextTmpVar(types.NewPointer(lit.TypeValue))

	instructions := []Instruction{
		Assign{
			Variable: tmpVar,
			Value:    GetSizeOf{DataType: lit.TypeValue},
		},
		Assign{
			Variable: resultVar,
			Value:    PtrToInt{Pointer: tmpVar},
		},
	}

	return ComputedExpression{Instructions: instructions, ResultVar: resultVar}
}
