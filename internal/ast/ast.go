// Package ast holds the type-annotated syntax tree the parser produces and
// the code generator consumes. Nodes are built once during parsing; the
// monomorphiser clones whole subtrees instead of mutating shared ones.
package ast

import (
	"sort"

	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/types"
)

// SelfParamName is the receiver parameter of methods.
const SelfParamName = "self"

// Variable is a named local binding. Immutable unless declared `mut`.
type Variable struct {
	Name     string
	NameSpan position.Span
	Mutable  bool
	Type     types.DataType
}

// FunctionParam is a declared function parameter or class field.
type FunctionParam struct {
	Name     string
	NameSpan position.Span
	Type     types.DataType
	TypeSpan position.Span
}

func (p FunctionParam) ToVariable() *Variable {
	return &Variable{
		Name:     p.Name,
		NameSpan: p.NameSpan,
		Mutable:  p.Name == SelfParamName,
		Type:     p.Type,
	}
}

// Block is a brace-delimited statement list. It owns its local variable
// table; inner blocks copy the outer table at entry. ClosureParams carries
// the variables an anonymous block expression captures, in sorted-name order,
// so the block can later be lowered into a standalone function.
type Block struct {
	Statements    []Statement
	Variables     map[string]*Variable
	ClosureParams []FunctionParam
	Generics      []string
	ReturnType    types.DataType
	FunctionDepth int
	Span          position.Span
}

func NewBlock() *Block {
	return &Block{
		Variables:  make(map[string]*Variable),
		ReturnType: types.None,
	}
}

// GetVariable looks up a binding in the block's table.
func (b *Block) GetVariable(name string) (*Variable, bool) {
	v, ok := b.Variables[name]
	return v, ok
}

// SortedVariables returns the bindings ordered by name, the order closure
// parameters are captured in.
func (b *Block) SortedVariables() []*Variable {
	names := make([]string, 0, len(b.Variables))
	for name := range b.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Variable, len(names))
	for i, name := range names {
		out[i] = b.Variables[name]
	}
	return out
}

func (b *Block) HasGeneric(name string) bool {
	for _, g := range b.Generics {
		if g == name {
			return true
		}
	}
	return false
}

// Statement is a sum over the statement forms.
type Statement interface {
	stmtNode()
	GetSpan() position.Span
}

type ElseIfBranch struct {
	Condition *TypedExpr
	Body      *Block
	Span      position.Span
}

type IfStatement struct {
	Condition   *TypedExpr
	TrueBranch  *Block
	ElseIfs     []*ElseIfBranch
	FalseBranch *Block
	Span        position.Span
}

type WhileStatement struct {
	Condition *TypedExpr
	Body      *Block
	Span      position.Span
}

type VariableDecl struct {
	Mutable  bool
	Name     string
	NameSpan position.Span
	// Type is the optional annotation; nil when inferred.
	Type  types.DataType
	Value *TypedExpr
	Span  position.Span
}

type ReturnStatement struct {
	Value *TypedExpr
	Span  position.Span
}

type ExprStatement struct {
	Expr *TypedExpr
	Span position.Span
}

// VariableMutation is `<lvalue> = expr` after any compound operator has been
// folded into Value.
type VariableMutation struct {
	Target *TypedExpr
	Value  *TypedExpr
	Span   position.Span
}

func (*IfStatement) stmtNode()      {}
func (*WhileStatement) stmtNode()   {}
func (*VariableDecl) stmtNode()     {}
func (*ReturnStatement) stmtNode()  {}
func (*ExprStatement) stmtNode()    {}
func (*VariableMutation) stmtNode() {}

func (s *IfStatement) GetSpan() position.Span      { return s.Span }
func (s *WhileStatement) GetSpan() position.Span   { return s.Span }
func (s *VariableDecl) GetSpan() position.Span     { return s.Span }
func (s *ReturnStatement) GetSpan() position.Span  { return s.Span }
func (s *ExprStatement) GetSpan() position.Span    { return s.Span }
func (s *VariableMutation) GetSpan() position.Span { return s.Span }

// TypedExpr is an expression with its inferred type. Raw, when set, carries
// the literal source slice the list macro re-expands.
type TypedExpr struct {
	Expr Expression
	Type types.DataType
	Raw  string
	Span position.Span
}

// Expression is a sum over the expression forms.
type Expression interface {
	exprNode()
}

type LiteralKind int

const (
	LitVoid LiteralKind = iota
	LitInt
	LitFloat
	LitBool
	LitArray
	LitClass
	LitType
)

// Literal is a scalar, array, class or type-value literal.
type Literal struct {
	Kind      LiteralKind
	Int       int64
	Float     float64
	Bool      bool
	Array     *ArrayLiteral
	Class     *ClassLiteral
	TypeValue types.DataType
}

func IntLiteral(v int64) *Literal     { return &Literal{Kind: LitInt, Int: v} }
func FloatLiteral(v float64) *Literal { return &Literal{Kind: LitFloat, Float: v} }
func BoolLiteral(v bool) *Literal     { return &Literal{Kind: LitBool, Bool: v} }

// Type returns the literal's data type.
func (l *Literal) Type() types.DataType {
	switch l.Kind {
	case LitVoid:
		return types.None
	case LitInt:
		return types.PlatformInt()
	case LitFloat:
		return types.Float
	case LitBool:
		return types.Boolean
	case LitArray:
		return types.Array{Elem: l.Array.ElemType, Len: len(l.Array.Values)}
	case LitClass:
		return l.Class.Type
	case LitType:
		return types.TypeValue
	}
	return types.None
}

type ArrayLiteral struct {
	ElemType types.DataType
	Values   []*TypedExpr
	Span     position.Span
}

type ClassLiteralField struct {
	Name     string
	NameSpan position.Span
	Value    *TypedExpr
}

type ClassLiteral struct {
	Type   types.DataType
	Fields []ClassLiteralField
	Span   position.Span
}

type VariableExpr struct {
	Variable Variable
}

type BinaryExpr struct {
	Lhs    *TypedExpr
	Op     BinaryOperator
	OpSpan position.Span
	Rhs    *TypedExpr
}

type UnaryExpr struct {
	Op   UnaryOperator
	Expr *TypedExpr
}

type CastExpr struct {
	Value  *TypedExpr
	To     types.DataType
	ToSpan position.Span
}

// ReferenceExpr is `&expr`: a pointer to the expression's storage.
type ReferenceExpr struct {
	Value *TypedExpr
}

// DerefExpr is `~expr`.
type DerefExpr struct {
	Value *TypedExpr
}

type CallExpr struct {
	Function *Function
	Args     []*TypedExpr
	ArgsSpan position.Span
}

// BlockExpr is an anonymous `{ ... }` expression whose value is that of its
// final return. Lowered into a synthetic function during code generation.
type BlockExpr struct {
	Body *Block
}

type IndexExpr struct {
	Base *TypedExpr
	Idx  *TypedExpr
}

type FieldAccessExpr struct {
	Base      *TypedExpr
	Field     string
	FieldSpan position.Span
	FieldIdx  int
}

// ClassNameExpr is a class used as the receiver of a static call,
// `Name::method(...)`.
type ClassNameExpr struct {
	Name string
}

func (*Literal) exprNode()         {}
func (*VariableExpr) exprNode()    {}
func (*BinaryExpr) exprNode()      {}
func (*UnaryExpr) exprNode()       {}
func (*CastExpr) exprNode()        {}
func (*ReferenceExpr) exprNode()   {}
func (*DerefExpr) exprNode()       {}
func (*CallExpr) exprNode()        {}
func (*BlockExpr) exprNode()       {}
func (*IndexExpr) exprNode()       {}
func (*FieldAccessExpr) exprNode() {}
func (*ClassNameExpr) exprNode()   {}
