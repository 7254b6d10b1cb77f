package codegen

import (
	"strings"
	"testing"

	"github.com/bolt-lang/bolt/internal/types"
)

func TestTypeToIR(t *testing.T) {
	cases := []struct {
		dataType types.DataType
		want     string
	}{
		{types.Int8, "i8"},
		{types.Int16, "i16"},
		{types.Int32, "i32"},
		{types.Int64, "i64"},
		{types.Float, "float"},
		{types.Boolean, "i1"},
		{types.None, "void"},
		{types.NewPointer(types.Int64), "i64*"},
		{types.Array{Elem: types.Int8, Len: 4}, "[4 x i8]"},
		{&types.CustomType{Name: "Foo"}, "%Foo"},
	}

	for _, tc := range cases {
		if got := typeToIR(tc.dataType); got != tc.want {
			t.Errorf("typeToIR(%s) = %q, want %q", tc.dataType, got, tc.want)
		}
	}
}

func TestFloatEmission(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{1.0, "0x3FF0000000000000"},
		{-1.0, "0xBFF0000000000000"},
		{2.5, "0x4004000000000000"},
		{0.0, "0x0"},
	}

	for _, tc := range cases {
		if got := FloatValue(tc.value).ToIR(); got != tc.want {
			t.Errorf("FloatValue(%v).ToIR() = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestScalarValues(t *testing.T) {
	if got := IntValue(-15).ToIR(); got != "-15" {
		t.Errorf("int = %q", got)
	}
	if got := BoolValue(true).ToIR(); got != "1" {
		t.Errorf("true = %q", got)
	}
	if got := BoolValue(false).ToIR(); got != "0" {
		t.Errorf("false = %q", got)
	}
	if got := VoidValue().ToIR(); got != "void" {
		t.Errorf("void = %q", got)
	}
}

func TestVariablePrefix(t *testing.T) {
	v := Variable{Name: "x", DataType: types.Int64}
	if got := v.ToIR(); got != "%_x" {
		t.Errorf("ToIR() = %q", got)
	}
	prefixed := Variable{Name: "%_0", DataType: types.Int64}
	if got := prefixed.ToIR(); got != "%_0" {
		t.Errorf("ToIR() = %q", got)
	}
}

func TestBinaryOperations(t *testing.T) {
	a := Variable{Name: "%_0", DataType: types.Int64}
	b := Variable{Name: "%_1", DataType: types.Int64}

	if got := (BinaryOperation{Lhs: a, Operator: OpAdd, Rhs: b}).ToIR(); got != "add i64 %_0, %_1" {
		t.Errorf("add = %q", got)
	}
	if got := (BinaryOperation{Lhs: a, Operator: OpSDiv, Rhs: b}).ToIR(); got != "sdiv i64 %_0, %_1" {
		t.Errorf("sdiv = %q", got)
	}
	if got := (BinaryOperation{Lhs: a, Operator: OpSlt, Rhs: b}).ToIR(); got != "icmp slt i64 %_0, %_1" {
		t.Errorf("icmp = %q", got)
	}

	fa := Variable{Name: "%_2", DataType: types.Float}
	fb := Variable{Name: "%_3", DataType: types.Float}
	if got := (BinaryOperation{Lhs: fa, Operator: OpFMul, Rhs: fb}).ToIR(); got != "fmul float %_2, %_3" {
		t.Errorf("fmul = %q", got)
	}
	if got := (BinaryOperation{Lhs: fa, Operator: OpEq, Rhs: fb}).ToIR(); got != "fcmp eq float %_2, %_3" {
		t.Errorf("fcmp = %q", got)
	}
}

func TestMemoryOperations(t *testing.T) {
	p := Variable{Name: "%_0", DataType: types.Int64}

	if got := (Alloca{DataType: types.Int64}).ToIR(); got != "alloca i64" {
		t.Errorf("alloca = %q", got)
	}
	if got := (Load{Pointer: p}).ToIR(); got != "load i64, i64* %_0" {
		t.Errorf("load = %q", got)
	}
	if got := (Store{Value: IntValue(1), Pointer: p}).ToIR(); got != "store i64 1, i64* %_0" {
		t.Errorf("store = %q", got)
	}

	arr := Variable{Name: "%_1", DataType: types.Array{Elem: types.Int64, Len: 3}}
	if got := (GetElementPointer{Base: arr, Idx: IntValue(2)}).ToIR(); got != "getelementptr [3 x i64], [3 x i64]* %_1, i64 0, i64 2" {
		t.Errorf("array gep = %q", got)
	}

	class := Variable{Name: "%_2", DataType: &types.CustomType{Name: "Foo"}}
	if got := (GetElementPointer{Base: class, Idx: IntValue(1)}).ToIR(); got != "getelementptr %Foo, %Foo* %_2, i32 0, i32 1" {
		t.Errorf("class gep = %q", got)
	}

	if got := (GetSizeOf{DataType: types.Int32}).ToIR(); got != "getelementptr i32, i32* null, i64 1" {
		t.Errorf("sizeof gep = %q", got)
	}

	ptr := Variable{Name: "%_3", DataType: types.NewPointer(types.Int8)}
	if got := (PtrToInt{Pointer: ptr}).ToIR(); got != "ptrtoint i8* %_3 to i64" {
		t.Errorf("ptrtoint = %q", got)
	}
	n := Variable{Name: "%_4", DataType: types.Int64}
	if got := (IntToPtr{Value: n, Pointer: types.NewPointer(types.Int8)}).ToIR(); got != "inttoptr i64 %_4 to i8*" {
		t.Errorf("inttoptr = %q", got)
	}
}

func TestCasts(t *testing.T) {
	v8 := Variable{Name: "%_0", DataType: types.Int8}
	v64 := Variable{Name: "%_1", DataType: types.Int64}
	vf := Variable{Name: "%_2", DataType: types.Float}

	if got := (SignedExtend{Value: v8, To: types.Int64}).ToIR(); got != "sext i8 %_0 to i64" {
		t.Errorf("sext = %q", got)
	}
	if got := (Truncate{Value: v64, To: types.Int8}).ToIR(); got != "trunc i64 %_1 to i8" {
		t.Errorf("trunc = %q", got)
	}
	if got := (SignedIntToFloat{Value: v64, To: types.Float}).ToIR(); got != "sitofp i64 %_1 to float" {
		t.Errorf("sitofp = %q", got)
	}
	if got := (FloatToSignedInt{Value: vf, To: types.Int64}).ToIR(); got != "call i64 @llvm.fptosi.sat.i64.float(float %_2)" {
		t.Errorf("fptosi = %q", got)
	}
}

func TestControlFlowInstructions(t *testing.T) {
	cond := Variable{Name: "%_0", DataType: types.Boolean}

	if got := (Jump{Label: "while_head_3"}).ToIR(); got != "br label %while_head_3" {
		t.Errorf("jump = %q", got)
	}
	if got := (CondJump{Condition: cond, TrueLabel: "if_1", FalseLabel: "end_if_1"}).ToIR(); got != "br i1 %_0, label %if_1, label %end_if_1" {
		t.Errorf("condjump = %q", got)
	}
	if got := (Return{Value: IntValue(1)}).ToIR(); got != "ret i64 1" {
		t.Errorf("ret = %q", got)
	}
	if got := (Return{Value: VoidValue()}).ToIR(); got != "ret void" {
		t.Errorf("ret void = %q", got)
	}
}

func TestCallInstruction(t *testing.T) {
	call := Call{
		Name:       "Foo_Add_Foo_Foo",
		ReturnType: &types.CustomType{Name: "Foo"},
		Args: []Value{
			Variable{Name: "%_0", DataType: types.NewPointer(&types.CustomType{Name: "Foo"})},
			Variable{Name: "%_1", DataType: &types.CustomType{Name: "Foo"}},
		},
	}
	want := "call %Foo @Foo_Add_Foo_Foo(%Foo* %_0,%Foo %_1)"
	if got := call.ToIR(); got != want {
		t.Errorf("call = %q, want %q", got, want)
	}
}

func TestDeclareType(t *testing.T) {
	foo := &types.CustomType{
		Name: "Foo",
		Fields: []types.Field{
			{Name: "data", Type: types.Int64},
			{Name: "flag", Type: types.Boolean},
		},
	}
	got := (DeclareType{DataType: foo}).ToIR()
	if !strings.HasPrefix(got, "%Foo = type {") {
		t.Errorf("declare = %q", got)
	}
	if !strings.Contains(got, "i64 ;data") || !strings.Contains(got, "i1 ;flag") {
		t.Errorf("declare = %q", got)
	}
}

func TestDeclareFunction(t *testing.T) {
	extern := DeclareFunction{Function: IRFunction{
		Name:       "malloc",
		Params:     []IRFunctionParam{{Name: "size", DataType: types.Int64}},
		ReturnType: types.NewPointer(types.Int8),
		IsExtern:   true,
	}}
	if got := extern.ToIR(); got != "declare i8* @malloc(i64 %_size)" {
		t.Errorf("declare = %q", got)
	}

	defined := DeclareFunction{Function: IRFunction{
		Name:       "main",
		ReturnType: types.Int64,
		Body:       []Instruction{Return{Value: IntValue(0)}},
	}}
	got := defined.ToIR()
	if !strings.HasPrefix(got, "define i64 @main() {") {
		t.Errorf("define = %q", got)
	}
	if !strings.Contains(got, "entry:") || !strings.Contains(got, "ret i64 0") {
		t.Errorf("define = %q", got)
	}
}

func TestComment(t *testing.T) {
	if got := (Comment{Text: "let a = 1"}).ToIR(); got != "; let a = 1" {
		t.Errorf("comment = %q", got)
	}
	if got := (Comment{Text: "a\nb"}).ToIR(); got != "; a\n; b" {
		t.Errorf("multiline comment = %q", got)
	}
}

func TestMoveAllocationsToTop(t *testing.T) {
	a := Assign{Variable: Variable{Name: "%_0", DataType: types.Int64}, Value: Alloca{DataType: types.Int64}}
	b := Store{Value: IntValue(1), Pointer: Variable{Name: "%_0", DataType: types.Int64}}
	c := Assign{Variable: Variable{Name: "%_1", DataType: types.Int64}, Value: Alloca{DataType: types.Int64}}
	d := Jump{Label: "while_head_0"}

	out := moveAllocationsToTop([]Instruction{d, a, b, c})

	if _, ok := out[0].(Assign); !ok {
		t.Fatalf("first instruction should be an alloca assign, got %T", out[0])
	}
	if _, ok := out[1].(Assign); !ok {
		t.Fatalf("second instruction should be an alloca assign, got %T", out[1])
	}
	// Stable: %_0 before %_1.
	if out[0].(Assign).Variable.Name != "%_0" || out[1].(Assign).Variable.Name != "%_1" {
		t.Error("hoisting should preserve relative alloca order")
	}
	if _, ok := out[2].(Jump); !ok {
		t.Errorf("non-allocas should keep their order, got %T", out[2])
	}
}

func TestKillLastUnused(t *testing.T) {
	ret := Return{Value: IntValue(1)}
	dead := Store{Value: IntValue(2), Pointer: Variable{Name: "%_0", DataType: types.Int64}}

	out := killLastUnused([]Instruction{ret, dead})
	if len(out) != 1 {
		t.Fatalf("dead instructions after last return should be pruned, got %d", len(out))
	}

	// Without any return nothing is pruned.
	out = killLastUnused([]Instruction{dead})
	if len(out) != 1 {
		t.Fatal("bodies without return are untouched")
	}
}
