package codegen

import (
	"fmt"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/types"
)

// ComputedExpression is the result of lowering one expression: the
// instructions that compute it and the register holding the result.
type ComputedExpression struct {
	Instructions []Instruction
	ResultVar    Variable
}

// CodeGenerator lowers a program to textual IR. A single monotonic counter
// names every intermediate register, so output is deterministic regardless of
// how lowering is interleaved.
type CodeGenerator struct {
	Program *ast.Program

	counter     uint64
	variableMap map[string]Variable
	sourceCode  string
}

func New(program *ast.Program) *CodeGenerator {
	return &CodeGenerator{
		Program:     program,
		variableMap: make(map[string]Variable),
	}
}

func (g *CodeGenerator) WithSource(source string) *CodeGenerator {
	g.sourceCode = source
	return g
}

// Generate walks the program tables in definition order: type declarations
// first, then functions. Both walks are index-based because lowering appends
// new entries (anonymous block functions) while it runs.
func (g *CodeGenerator) Generate() string {
	var instructions []Instruction

	for i := 0; i < g.Program.CustomTypes.Len(); i++ {
		_, entry := g.Program.CustomTypes.At(i)
		instructions = append(instructions, g.parseClassDef(entry.Type)...)
	}

	for i := 0; i < g.Program.Functions.Len(); i++ {
		_, function := g.Program.Functions.At(i)
		instructions = append(instructions, g.parseFuncDef(function)...)
	}

	return instructionsToIR(instructions)
}

func (g *CodeGenerator) nextCount() uint64 {
	count := g.counter
	g.counter++
	return count
}

func (g *CodeGenerator) nextVarName() string {
	return fmt.Sprintf("%%_%d", g.nextCount())
}

func (g *CodeGenerator) nextTmpVar(t types.DataType) Variable {
	return Variable{Name: g.nextVarName(), DataType: t}
}

// parseStatement lowers one statement, prefixed by its source text as a
// comment (conditionals excepted; their shape is obvious from the labels).
func (g *CodeGenerator) parseStatement(stmt ast.Statement) []Instruction {
	var comment *Comment
	if g.sourceCode != "" {
		if text := sourceSlice(g.sourceCode, stmt.GetSpan()); text != "" {
			comment = &Comment{Text: text}
		}
	}

	var instructions []Instruction
	switch s := stmt.(type) {
	case *ast.IfStatement:
		comment = nil
		instructions = g.parseIf(s)

	case *ast.VariableDecl:
		instructions = g.parseVariableDecl(s.Name, s.Value)

	case *ast.ReturnStatement:
		instructions = g.parseReturnStatement(s.Value)

	case *ast.ExprStatement:
		if call, ok := s.Expr.Expr.(*ast.CallExpr); ok {
			instructions = g.parseFuncCall(call.Function, call.Args).Instructions
			break
		}
		computed := g.parseExpression(s.Expr, false)
		instructions = computed.Instructions

	case *ast.VariableMutation:
		instructions = g.parseVariableMutation(s.Target, s.Value)

	case *ast.WhileStatement:
		instructions = g.parseWhile(s.Condition, s.Body)
	}

	if comment != nil {
		instructions = append([]Instruction{*comment}, instructions...)
	}

	return instructions
}

func (g *CodeGenerator) parseBlock(block *ast.Block) []Instruction {
	var instructions []Instruction
	for _, stmt := range block.Statements {
		instructions = append(instructions, g.parseStatement(stmt)...)
	}
	return instructions
}

// sourceSlice recovers the text of a span from the original source.
func sourceSlice(source string, span position.Span) string {
	runes := []rune(source)
	start := span.Start.Abs
	end := span.End.Abs
	if start < 0 || end > len(runes) || start >= end {
		return ""
	}
	return string(runes[start:end])
}
