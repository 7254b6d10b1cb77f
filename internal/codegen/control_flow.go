package codegen

import (
	"fmt"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/parser"
)

// parseIf lowers an if/else-if/else chain. Branches the return analysis
// proves exhaustive omit the trailing jump; the end block exists only when
// some branch falls through.
func (g *CodeGenerator) parseIf(stmt *ast.IfStatement) []Instruction {
	var instructions []Instruction

	cond := g.parseExpression(stmt.Condition, false)
	count := g.nextCount()

	_, branchReturn, _ := parser.ValidateIfReturn(stmt.TrueBranch, stmt.ElseIfs, stmt.FalseBranch)

	trueLabel := fmt.Sprintf("if_%d", count)
	falseLabel := fmt.Sprintf("else_%d", count)
	endLabel := fmt.Sprintf("end_if_%d", count)

	condFalseLabel := endLabel
	if stmt.FalseBranch != nil || len(stmt.ElseIfs) > 0 {
		condFalseLabel = falseLabel
	}

	endJump := Jump{Label: endLabel}
	requiresEnd := branchReturn != parser.AllReturn

	instructions = append(instructions, cond.Instructions...)
	instructions = append(instructions, CondJump{
		Condition:  cond.ResultVar,
		TrueLabel:  trueLabel,
		FalseLabel: condFalseLabel,
	})
	instructions = append(instructions, BlockDecl{Label: trueLabel})

	instructions = append(instructions, g.parseBlock(stmt.TrueBranch)...)
	if requiresEnd {
		instructions = append(instructions, endJump)
	}

	elseIfLabel := falseLabel
	for idx, elif := range stmt.ElseIfs {
		elifCond := g.parseExpression(elif.Condition, false)

		instructions = append(instructions, BlockDecl{Label: elseIfLabel})
		instructions = append(instructions, elifCond.Instructions...)

		elseIfLabel = fmt.Sprintf("else_%d_%d", count, idx)

		elifTrueLabel := fmt.Sprintf("if_%d_%d", count, idx)
		elifFalseLabel := elseIfLabel
		if idx == len(stmt.ElseIfs)-1 && stmt.FalseBranch == nil {
			elifFalseLabel = endLabel
		}

		instructions = append(instructions, CondJump{
			Condition:  elifCond.ResultVar,
			TrueLabel:  elifTrueLabel,
			FalseLabel: elifFalseLabel,
		})

		instructions = append(instructions, BlockDecl{Label: elifTrueLabel})
		instructions = append(instructions, g.parseBlock(elif.Body)...)

		if requiresEnd {
			instructions = append(instructions, endJump)
		}
	}

	if stmt.FalseBranch != nil {
		instructions = append(instructions, BlockDecl{Label: elseIfLabel})
		instructions = append(instructions, g.parseBlock(stmt.FalseBranch)...)

		if requiresEnd {
			instructions = append(instructions, endJump)
		}
	}

	if requiresEnd {
		instructions = append(instructions, BlockDecl{Label: endLabel})
	}

	return instructions
}

// parseWhile lowers a loop as head/body/end blocks. The body's allocas are
// hoisted in front of the loop so iteration cannot grow the stack.
func (g *CodeGenerator) parseWhile(condition *ast.TypedExpr, body *ast.Block) []Instruction {
	var instructions []Instruction

	cond := g.parseExpression(condition, false)
	count := g.nextCount()

	startLabel := fmt.Sprintf("while_head_%d", count)
	bodyLabel := fmt.Sprintf("while_body_%d", count)
	endLabel := fmt.Sprintf("end_while_%d", count)

	startJump := Jump{Label: startLabel}

	instructions = append(instructions, startJump)
	instructions = append(instructions, BlockDecl{Label: startLabel})
	instructions = append(instructions, cond.Instructions...)
	instructions = append(instructions, CondJump{
		Condition:  cond.ResultVar,
		TrueLabel:  bodyLabel,
		FalseLabel: endLabel,
	})
	instructions = append(instructions, BlockDecl{Label: bodyLabel})

	instructions = append(instructions, g.parseBlock(body)...)

	instructions = append(instructions, startJump)
	instructions = append(instructions, BlockDecl{Label: endLabel})

	return moveAllocationsToTop(instructions)
}

func (g *CodeGenerator) parseReturnStatement(value *ast.TypedExpr) []Instruction {
	expr := g.parseExpression(value, false)

	instructions := expr.Instructions
	instructions = append(instructions, Return{Value: expr.ResultVar})

	return instructions
}
