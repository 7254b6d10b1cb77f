package codegen_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/bolt-lang/bolt/internal/codegen"
	"github.com/bolt-lang/bolt/internal/lexer"
	"github.com/bolt-lang/bolt/internal/parser"
)

func generate(t *testing.T, source string) string {
	t.Helper()

	tokens, lerr := lexer.Lex(source)
	if lerr != nil {
		t.Fatalf("lex failed: %v", lerr)
	}
	program, perr := parser.New(tokens).WithSourceCode(source).Parse()
	if perr != nil {
		t.Fatalf("parse failed: %v", perr)
	}

	return codegen.New(program).WithSource(source).Generate()
}

func TestSimpleMain(t *testing.T) {
	ir := generate(t, "def main() -> int64 { return 1; }")

	for _, want := range []string{
		"define i64 @main()",
		"entry:",
		"store i64 1",
		"ret i64",
	} {
		if !strings.Contains(ir, want) {
			t.Errorf("IR missing %q:\n%s", want, ir)
		}
	}
}

func TestCommentReinjection(t *testing.T) {
	ir := generate(t, "def main() -> int64 { return 1; }")
	if !strings.Contains(ir, "; return 1") {
		t.Errorf("IR should carry the source comment:\n%s", ir)
	}
}

func TestNegationLowersToMultiplication(t *testing.T) {
	ir := generate(t, "def main() -> int64 { return -(10 + 5); }")

	if !strings.Contains(ir, "store i64 -1") {
		t.Errorf("IR should materialise the -1 factor:\n%s", ir)
	}
	if !strings.Contains(ir, "mul i64") {
		t.Errorf("IR should multiply by -1:\n%s", ir)
	}
}

func TestFloatArithmetic(t *testing.T) {
	ir := generate(t, "def main() -> float { return 1.0 + 2.5; }")

	if !strings.Contains(ir, "store float 0x3FF0000000000000") {
		t.Errorf("IR should store 1.0 in hex form:\n%s", ir)
	}
	if !strings.Contains(ir, "fadd float") {
		t.Errorf("IR should use fadd:\n%s", ir)
	}
}

func TestVoidFunctionGetsTrailingRet(t *testing.T) {
	ir := generate(t, "def noop() { }\ndef main() -> int64 { noop(); return 0; }")

	if !strings.Contains(ir, "define void @noop()") {
		t.Errorf("IR missing noop definition:\n%s", ir)
	}
	if !strings.Contains(ir, "ret void") {
		t.Errorf("void function should fall off into ret void:\n%s", ir)
	}
	if !strings.Contains(ir, "call void @noop()") {
		t.Errorf("void call has no result register:\n%s", ir)
	}
}

func TestExternDeclaration(t *testing.T) {
	ir := generate(t, "extern def putchar(c: int64) -> int64\ndef main() -> int64 { putchar(65); return 0; }")

	if !strings.Contains(ir, "declare i64 @putchar(i64 %_c)") {
		t.Errorf("IR missing extern declaration:\n%s", ir)
	}
	if !strings.Contains(ir, "call i64 @putchar(") {
		t.Errorf("IR missing call:\n%s", ir)
	}
}

func TestParametersBecomeLocals(t *testing.T) {
	ir := generate(t, "def f(a: int64) -> int64 { return a; }\ndef main() -> int64 { return f(1); }")

	if !strings.Contains(ir, "%_a_0 = alloca i64") {
		t.Errorf("parameter should get a stack slot:\n%s", ir)
	}
	if !strings.Contains(ir, "store i64 %_a, i64* %_a_0") {
		t.Errorf("parameter should be copied into its slot:\n%s", ir)
	}
}

func TestIfShape(t *testing.T) {
	ir := generate(t, `
def main() -> int64 {
    let b = 10;
    if b == 10 {
        return 1;
    }
    return 0;
}`)

	for _, want := range []string{
		"icmp eq i64",
		"br i1",
		"if_", "end_if_",
	} {
		if !strings.Contains(ir, want) {
			t.Errorf("IR missing %q:\n%s", want, ir)
		}
	}
}

func TestExhaustiveIfOmitsEndBlock(t *testing.T) {
	ir := generate(t, `
def main() -> int64 {
    if true {
        return 1;
    } else {
        return 2;
    }
}`)

	if strings.Contains(ir, "end_if_") {
		t.Errorf("exhaustive chain should not emit an end block:\n%s", ir)
	}
}

func TestWhileShapeAndHoisting(t *testing.T) {
	ir := generate(t, `
def main() -> int64 {
    let mut i = 0;
    while i < 10 {
        let x = 5;
        i = i + x;
    }
    return i;
}`)

	head := strings.Index(ir, "while_head_")
	end := strings.Index(ir, "end_while_")
	if head == -1 || end == -1 {
		t.Fatalf("IR missing while labels:\n%s", ir)
	}

	// Every alloca of the loop must be hoisted in front of the head label.
	lastLabel := strings.LastIndex(ir, "end_while_")
	section := ir[head:lastLabel]
	if strings.Contains(section, "alloca") {
		t.Errorf("allocas must not remain inside the loop:\n%s", ir)
	}
	if !strings.Contains(ir, "br label %while_head_") {
		t.Errorf("loop should jump back to its head:\n%s", ir)
	}
}

func TestClassDeclarationAndLiteral(t *testing.T) {
	ir := generate(t, `
class Point { x: int64, y: int64, }
def main() -> int64 {
    let p = Point { x: 1, y: 2 };
    return p.x;
}`)

	if !strings.Contains(ir, "%Point = type {") {
		t.Errorf("IR missing type declaration:\n%s", ir)
	}
	if !strings.Contains(ir, "alloca %Point") {
		t.Errorf("literal should allocate the aggregate:\n%s", ir)
	}
	if !strings.Contains(ir, "getelementptr %Point, %Point* ") {
		t.Errorf("field writes go through getelementptr:\n%s", ir)
	}
	if !strings.Contains(ir, "i32 0, i32 1") {
		t.Errorf("class fields index with i32:\n%s", ir)
	}
}

func TestArrayLiteralAndIndexing(t *testing.T) {
	ir := generate(t, `
def main() -> int64 {
    let xs = [1, 2, 3];
    return xs[1];
}`)

	if !strings.Contains(ir, "alloca [3 x i64]") {
		t.Errorf("array literal allocates the aggregate:\n%s", ir)
	}
	if !strings.Contains(ir, "getelementptr [3 x i64], [3 x i64]* ") {
		t.Errorf("indexing goes through getelementptr:\n%s", ir)
	}
	if !strings.Contains(ir, "i64 0, i64 ") {
		t.Errorf("arrays index with the platform int:\n%s", ir)
	}
}

func TestGenericTemplateNotEmitted(t *testing.T) {
	ir := generate(t, `
class Box<T> { value: T, }
def main() -> int64 {
    let b = Box<int64> { value: 10 };
    return b.value;
}`)

	if !strings.Contains(ir, "%Box--int64 = type {") {
		t.Errorf("specialisation should be declared:\n%s", ir)
	}
	if strings.Contains(ir, "%Box = type") {
		t.Errorf("generic template must not be emitted:\n%s", ir)
	}
}

func TestMonomorphisationUniqueInIR(t *testing.T) {
	ir := generate(t, `
def inner<T>(x: T) -> T { return x; }
def outer<T>(x: T) -> T { return inner<T>(x); }
def main() -> int64 {
    let a = outer<int64>(42);
    let b = outer<int64>(7);
    return a + b;
}`)

	if got := strings.Count(ir, "define i64 @outer--int64("); got != 1 {
		t.Errorf("outer--int64 defined %d times:\n%s", got, ir)
	}
	if got := strings.Count(ir, "define i64 @inner--T--int64("); got != 1 {
		t.Errorf("inner specialisation defined %d times:\n%s", got, ir)
	}
	if strings.Contains(ir, "define i64 @inner(") || strings.Contains(ir, "define i64 @outer(") {
		t.Errorf("templates must not be emitted:\n%s", ir)
	}
}

func TestTraitAddLowersToCall(t *testing.T) {
	ir := generate(t, `
class Foo { data: int64, }
def add(self, other: Foo) for Foo -> Foo { return Foo { data: self.data + other.data }; }
def main() -> int64 {
    let c = Foo { data: 10 } + Foo { data: 20 };
    return c.data;
}`)

	if !strings.Contains(ir, "call %Foo @Foo_Add_Foo_Foo(") {
		t.Errorf("operator should lower to the trait call:\n%s", ir)
	}
	if strings.Contains(ir, "add %Foo") {
		t.Errorf("no add opcode on the struct:\n%s", ir)
	}
	if !strings.Contains(ir, "define %Foo @Foo_Add_Foo_Foo(%Foo* %_self,%Foo %_other)") {
		t.Errorf("trait function should take the receiver as a pointer:\n%s", ir)
	}
}

func TestMethodReceiverIsPointer(t *testing.T) {
	ir := generate(t, `
class Counter { value: int64, }
def get(self) for Counter -> int64 { return self.value; }
def main() -> int64 {
    let c = Counter { value: 3 };
    return c.get();
}`)

	if !strings.Contains(ir, "define i64 @Counter_get(%Counter* %_self)") {
		t.Errorf("receiver should be a pointer parameter:\n%s", ir)
	}
	if !strings.Contains(ir, "call i64 @Counter_get(%Counter* ") {
		t.Errorf("call site should pass the receiver pointer:\n%s", ir)
	}
}

func TestBlockExpressionBecomesFunction(t *testing.T) {
	ir := generate(t, `
def main() -> int64 {
    let bar = 10;
    let foo = { return bar + 1; };
    return foo;
}`)

	if !strings.Contains(ir, "call i64 @block_") {
		t.Errorf("block expression should lower to a call:\n%s", ir)
	}
	if !strings.Contains(ir, "define i64 @block_") {
		t.Errorf("block function should be defined:\n%s", ir)
	}
	if !strings.Contains(ir, "(i64 %_bar)") {
		t.Errorf("captured variable should become a parameter:\n%s", ir)
	}
}

func TestSizeOfLowering(t *testing.T) {
	ir := generate(t, "def main() -> int64 { return size_of(int32); }")

	if !strings.Contains(ir, "getelementptr i32, i32* null, i64 1") {
		t.Errorf("size_of should getelementptr off null:\n%s", ir)
	}
	if !strings.Contains(ir, "ptrtoint i32* ") {
		t.Errorf("size_of should convert the address:\n%s", ir)
	}
}

func TestCastLowering(t *testing.T) {
	ir := generate(t, `
def main() -> int64 {
    let a = 1 as int8;
    let b = a as int64;
    let f = 1 as float;
    return b;
}`)

	for _, want := range []string{
		"trunc i64",
		"sext i8",
		"sitofp i64",
	} {
		if !strings.Contains(ir, want) {
			t.Errorf("IR missing %q:\n%s", want, ir)
		}
	}
}

func TestPointerCastLowering(t *testing.T) {
	ir := generate(t, `
def main() -> int64 {
    let x = 42;
    let p = &x;
    let n = p as int64;
    let q = n as *int64;
    return ~q;
}`)

	if !strings.Contains(ir, "ptrtoint i64* ") {
		t.Errorf("pointer to int uses ptrtoint:\n%s", ir)
	}
	if !strings.Contains(ir, "inttoptr i64 ") {
		t.Errorf("int to pointer uses inttoptr:\n%s", ir)
	}
}

var definePattern = regexp.MustCompile(`^define .* @.*\{$`)
var registerDef = regexp.MustCompile(`^(%[^ ]+) = `)

// Registers must be defined exactly once per function.
func TestSSAFreshness(t *testing.T) {
	ir := generate(t, `
class Foo { data: int64, }
def add(self, other: Foo) for Foo -> Foo { return Foo { data: self.data + other.data }; }
def helper(n: int64) -> int64 {
    if n == 0 {
        return 0;
    }
    return n * 2;
}
def main() -> int64 {
    let mut acc = 0;
    while acc < 10 {
        acc = acc + helper(acc);
    }
    let c = Foo { data: acc } + Foo { data: 1 };
    return c.data;
}`)

	inFunction := false
	seen := make(map[string]bool)

	for _, line := range strings.Split(ir, "\n") {
		trimmed := strings.TrimSpace(line)
		if definePattern.MatchString(trimmed) {
			inFunction = true
			seen = make(map[string]bool)
			continue
		}
		if trimmed == "}" {
			inFunction = false
			continue
		}
		if !inFunction {
			continue
		}
		if m := registerDef.FindStringSubmatch(trimmed); m != nil {
			if seen[m[1]] {
				t.Fatalf("register %s defined twice:\n%s", m[1], ir)
			}
			seen[m[1]] = true
		}
	}
}

// Byte-identical IR for identical input.
func TestDeterministicOutput(t *testing.T) {
	source := `
class Box<T> { value: T, }
def id<T>(x: T) -> T { return x; }
def main() -> int64 {
    let b = Box<int64> { value: id(41) };
    return b.value + 1;
}`

	first := generate(t, source)
	second := generate(t, source)
	if first != second {
		t.Error("identical sources should produce byte-identical IR")
	}
}
