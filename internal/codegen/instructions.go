// Package codegen lowers the type-checked AST into textual LLIR: typed
// registers, labelled basic blocks, explicit stack slots and branches.
package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bolt-lang/bolt/internal/types"
)

// Instruction is one line of emitted IR.
type Instruction interface {
	ToIR() string
}

// instructionsToIR joins a sequence into the textual form.
func instructionsToIR(instructions []Instruction) string {
	parts := make([]string, len(instructions))
	for i, inst := range instructions {
		parts[i] = inst.ToIR()
	}
	return strings.Join(parts, "\n")
}

// typeToIR renders a data type in IR syntax.
func typeToIR(t types.DataType) string {
	switch tt := t.(type) {
	case types.Primitive:
		switch tt {
		case types.Int8:
			return "i8"
		case types.Int16:
			return "i16"
		case types.Int32:
			return "i32"
		case types.Int64:
			return "i64"
		case types.Float:
			return "float"
		case types.Boolean:
			return "i1"
		case types.None:
			return "void"
		}
	case types.Pointer:
		return typeToIR(tt.Elem) + "*"
	case types.Array:
		return fmt.Sprintf("[%d x %s]", tt.Len, typeToIR(tt.Elem))
	case *types.CustomType:
		return "%" + tt.Name
	}
	panic(fmt.Sprintf("codegen: type %q has no IR form", t))
}

// Value is an operand: a literal constant or a register.
type Value interface {
	ToIR() string
	Type() types.DataType
}

// LiteralValue is a constant operand.
type LiteralValue struct {
	Kind     LiteralKind
	Int      int64
	FloatVal float64
	Bool     bool
}

type LiteralKind int

const (
	LitVoid LiteralKind = iota
	LitInt
	LitFloat
	LitBool
)

func IntValue(v int64) LiteralValue     { return LiteralValue{Kind: LitInt, Int: v} }
func FloatValue(v float64) LiteralValue { return LiteralValue{Kind: LitFloat, FloatVal: v} }
func BoolValue(v bool) LiteralValue     { return LiteralValue{Kind: LitBool, Bool: v} }
func VoidValue() LiteralValue           { return LiteralValue{Kind: LitVoid} }

func (l LiteralValue) ToIR() string {
	switch l.Kind {
	case LitVoid:
		return "void"
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return floatToLLVM(float32(l.FloatVal))
	case LitBool:
		if l.Bool {
			return "1"
		}
		return "0"
	}
	return "void"
}

func (l LiteralValue) Type() types.DataType {
	switch l.Kind {
	case LitInt:
		return types.PlatformInt()
	case LitFloat:
		return types.Float
	case LitBool:
		return types.Boolean
	}
	return types.None
}

// floatToLLVM renders a single-precision source value in the 64-bit hex form
// the target IR requires.
func floatToLLVM(f float32) string {
	bits := math.Float64bits(float64(f))
	return fmt.Sprintf("0x%X", bits)
}

// Variable is a register operand. Names are emitted with the %_ prefix.
type Variable struct {
	Name     string
	DataType types.DataType
}

func (v Variable) ToIR() string {
	if strings.HasPrefix(v.Name, "%_") {
		return v.Name
	}
	return "%_" + v.Name
}

func (v Variable) Type() types.DataType { return v.DataType }

// Assign binds an instruction's result to a register.
type Assign struct {
	Variable Variable
	Value    Instruction
}

func (a Assign) ToIR() string {
	return fmt.Sprintf("%s = %s", a.Variable.Name, a.Value.ToIR())
}

// Operator is an IR arithmetic, logic or comparison opcode.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpSDiv
	OpSRem
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem
	OpAnd
	OpOr
	OpXor
	OpEq
	OpNe
	OpSgt
	OpSge
	OpSlt
	OpSle
)

func (op Operator) IsOrdering() bool {
	switch op {
	case OpEq, OpNe, OpSgt, OpSge, OpSlt, OpSle:
		return true
	}
	return false
}

func (op Operator) ToIR() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpSDiv:
		return "sdiv"
	case OpSRem:
		return "srem"
	case OpFAdd:
		return "fadd"
	case OpFSub:
		return "fsub"
	case OpFMul:
		return "fmul"
	case OpFDiv:
		return "fdiv"
	case OpFRem:
		return "frem"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpSgt:
		return "sgt"
	case OpSge:
		return "sge"
	case OpSlt:
		return "slt"
	case OpSle:
		return "sle"
	}
	return "?"
}

// BinaryOperation is arithmetic or a comparison; comparisons render as
// icmp/fcmp with signed predicates.
type BinaryOperation struct {
	Lhs      Value
	Operator Operator
	Rhs      Value
}

func (b BinaryOperation) ToIR() string {
	if b.Operator.IsOrdering() {
		comp := "icmp"
		if types.IsFloat(b.Lhs.Type()) {
			comp = "fcmp"
		}
		return fmt.Sprintf("%s %s %s %s, %s",
			comp, b.Operator.ToIR(), typeToIR(b.Lhs.Type()), b.Lhs.ToIR(), b.Rhs.ToIR())
	}
	return fmt.Sprintf("%s %s %s, %s",
		b.Operator.ToIR(), typeToIR(b.Lhs.Type()), b.Lhs.ToIR(), b.Rhs.ToIR())
}

// Memory operations.

type Alloca struct {
	DataType types.DataType
}

func (a Alloca) ToIR() string {
	return "alloca " + typeToIR(a.DataType)
}

type Load struct {
	Pointer Variable
}

func (l Load) ToIR() string {
	t := typeToIR(l.Pointer.DataType)
	return fmt.Sprintf("load %s, %s* %s", t, t, l.Pointer.ToIR())
}

type Store struct {
	Value   Value
	Pointer Variable
}

func (s Store) ToIR() string {
	t := typeToIR(s.Value.Type())
	return fmt.Sprintf("store %s %s, %s* %s", t, s.Value.ToIR(), t, s.Pointer.ToIR())
}

// GetElementPointer computes an element address. Arrays index with the
// platform integer, class fields always with i32.
type GetElementPointer struct {
	Base Value
	Idx  Value
}

func (g GetElementPointer) ToIR() string {
	_, isArray := g.Base.Type().(types.Array)

	idxType := typeToIR(types.PlatformInt())
	if !isArray {
		idxType = typeToIR(types.Int32)
	}

	baseType := typeToIR(g.Base.Type())
	return fmt.Sprintf("getelementptr %s, %s* %s, %s 0, %s %s",
		baseType, baseType, g.Base.ToIR(), idxType, idxType, g.Idx.ToIR())
}

// GetSizeOf is the size_of lowering: the address of element 1 from a null
// base, to be converted to an integer.
type GetSizeOf struct {
	DataType types.DataType
}

func (g GetSizeOf) ToIR() string {
	t := typeToIR(g.DataType)
	return fmt.Sprintf("getelementptr %s, %s* null, %s 1", t, t, typeToIR(types.PlatformInt()))
}

type PtrToInt struct {
	Pointer Value
}

func (p PtrToInt) ToIR() string {
	return fmt.Sprintf("ptrtoint %s %s to %s",
		typeToIR(p.Pointer.Type()), p.Pointer.ToIR(), typeToIR(types.PlatformInt()))
}

type IntToPtr struct {
	Value   Value
	Pointer types.DataType
}

func (i IntToPtr) ToIR() string {
	return fmt.Sprintf("inttoptr %s %s to %s",
		typeToIR(i.Value.Type()), i.Value.ToIR(), typeToIR(i.Pointer))
}

// Casts.

type SignedExtend struct {
	Value Value
	To    types.DataType
}

func (c SignedExtend) ToIR() string {
	return fmt.Sprintf("sext %s %s to %s", typeToIR(c.Value.Type()), c.Value.ToIR(), typeToIR(c.To))
}

type Truncate struct {
	Value Value
	To    types.DataType
}

func (c Truncate) ToIR() string {
	return fmt.Sprintf("trunc %s %s to %s", typeToIR(c.Value.Type()), c.Value.ToIR(), typeToIR(c.To))
}

type SignedIntToFloat struct {
	Value Value
	To    types.DataType
}

func (c SignedIntToFloat) ToIR() string {
	return fmt.Sprintf("sitofp %s %s to %s", typeToIR(c.Value.Type()), c.Value.ToIR(), typeToIR(c.To))
}

// FloatToSignedInt uses the saturating conversion intrinsic.
type FloatToSignedInt struct {
	Value Value
	To    types.DataType
}

func (c FloatToSignedInt) ToIR() string {
	to := typeToIR(c.To)
	from := typeToIR(c.Value.Type())
	return fmt.Sprintf("call %s @llvm.fptosi.sat.%s.%s(%s %s)", to, to, from, from, c.Value.ToIR())
}

// Control flow.

type BlockDecl struct {
	Label string
}

func (b BlockDecl) ToIR() string {
	return b.Label + ":\n"
}

type Jump struct {
	Label string
}

func (j Jump) ToIR() string {
	return "br label %" + j.Label
}

type CondJump struct {
	Condition  Value
	TrueLabel  string
	FalseLabel string
}

func (j CondJump) ToIR() string {
	return fmt.Sprintf("br %s %s, label %%%s, label %%%s",
		typeToIR(j.Condition.Type()), j.Condition.ToIR(), j.TrueLabel, j.FalseLabel)
}

type Return struct {
	Value Value
}

func (r Return) ToIR() string {
	if types.IsNone(r.Value.Type()) {
		return "ret void"
	}
	return fmt.Sprintf("ret %s %s", typeToIR(r.Value.Type()), r.Value.ToIR())
}

// Calls.

type Call struct {
	Name       string
	ReturnType types.DataType
	Args       []Value
}

func (c Call) ToIR() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = fmt.Sprintf("%s %s", typeToIR(arg.Type()), arg.ToIR())
	}
	return fmt.Sprintf("call %s @%s(%s)", typeToIR(c.ReturnType), c.Name, strings.Join(args, ","))
}

// Declarations.

type DeclareType struct {
	DataType types.DataType
}

func (d DeclareType) ToIR() string {
	custom, ok := d.DataType.(*types.CustomType)
	if !ok {
		panic("codegen: only class types are declared")
	}

	var fields strings.Builder
	for i, f := range custom.Fields {
		sep := ""
		if i+1 < len(custom.Fields) {
			sep = ","
		}
		fmt.Fprintf(&fields, "%s ;%s\n%s", typeToIR(f.Type), f.Name, sep)
	}
	return fmt.Sprintf("%s = type {\n%s}", typeToIR(d.DataType), fields.String())
}

// IRFunctionParam is a parameter of an emitted function.
type IRFunctionParam struct {
	Name     string
	DataType types.DataType
}

func paramsToIR(params []IRFunctionParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %%_%s", typeToIR(p.DataType), p.Name)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// IRFunction is a complete function definition or extern declaration.
type IRFunction struct {
	Name       string
	Params     []IRFunctionParam
	Body       []Instruction
	ReturnType types.DataType
	IsExtern   bool
}

type DeclareFunction struct {
	Function IRFunction
}

func (d DeclareFunction) ToIR() string {
	f := d.Function
	if f.IsExtern {
		return fmt.Sprintf("declare %s @%s%s", typeToIR(f.ReturnType), f.Name, paramsToIR(f.Params))
	}

	entry := BlockDecl{Label: "entry"}
	return fmt.Sprintf("define %s @%s%s {\n%s%s\n}",
		typeToIR(f.ReturnType), f.Name, paramsToIR(f.Params), entry.ToIR(), instructionsToIR(f.Body))
}

// Comment reinjects a source slice above its lowered statement.
type Comment struct {
	Text string
}

func (c Comment) ToIR() string {
	return "; " + strings.ReplaceAll(c.Text, "\n", "\n; ")
}
