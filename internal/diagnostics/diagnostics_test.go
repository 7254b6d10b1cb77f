package diagnostics

import (
	"strings"
	"testing"

	"github.com/bolt-lang/bolt/internal/position"
)

func TestStableIDs(t *testing.T) {
	span := position.Span{}
	cases := []struct {
		err  *Error
		want int
	}{
		{InvalidSyntax("x", span), 0},
		{IllegalIdentifier("x", span), 1},
		{UnexpectedEOF(span), 2},
		{UnexpectedTokenExpected("a", "b", span), 3},
		{UnexpectedToken("a", span), 4},
		{WrongType("a", "b", span), 5},
		{ParamNameAlreadyExists("a", span), 6},
		{FunctionAlreadyExists("a", span), 7},
		{MethodAlreadyExists("a", "b", span), 8},
		{VariableNotFound("a", span), 9},
		{WrongReturnType("a", "b", span), 11},
		{NoMainFunction(span), 12},
		{FunctionDoesNotExist("a", span), 13},
		{MethodDoesNotExist("a", "b", span), 14},
		{WrongArguments(nil, nil, span), 15},
		{FieldNameAlreadyExists("a", span), 16},
		{ClassAlreadyExists("a", span), 17},
		{ClassDoesNotExist("a", span), 18},
		{ClassFieldDoesNotExist("a", "b", span), 19},
		{WrongClassFields(nil, nil, span), 20},
		{EmptyArray(span), 21},
		{IndexError("a", span), 22},
		{VariableNotMutable("a", span), 23},
		{InvalidReassign(span), 24},
		{InvalidCast("a", "b", span), 25},
		{MethodIsNotStatic("a", "b", span), 26},
		{MethodIsStatic("a", "b", span), 27},
		{CannotAccessFields("a", span), 28},
		{CannotDerefType("a", span), 29},
		{ConditionalReturnMismatch(span), 30},
		{FileNotFound("a", span), 31},
		{MacroError("a", span), 32},
		{InvalidOperator("a", span), 33},
		{TraitIsStaticMethod(span), 34},
		{TraitParamCountMismatch("a", 1, 2, span), 35},
		{TraitAlreadyImplemented("a", "b", span), 36},
		{TraitRequirementsNotFulfilled("a", span), 37},
		{CircularDependency("a", span), 38},
		{WrongGenericParamCount(1, 2, span), 39},
		{VoidVariable(span), 40},
	}

	for _, tc := range cases {
		if tc.err.ID != tc.want {
			t.Errorf("%s: id = %d, want %d", tc.err.Name, tc.err.ID, tc.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := InvalidCast("bool", "float", position.Span{})
	if got := err.Error(); got != `[25] invalid type cast: type "bool" can not be casted to "float"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestWithFileKeepsFirst(t *testing.T) {
	err := NoMainFunction(position.Span{}).WithFile("a.bolt")
	err.WithFile("b.bolt")
	if err.File != "a.bolt" {
		t.Errorf("File = %q", err.File)
	}
}

func TestRender(t *testing.T) {
	source := "def main() -> int64 {\n    return true;\n}"
	err := WrongType("int64", "bool", position.Span{
		Start: position.New(33, 1, 11),
		End:   position.New(37, 1, 15),
	})

	out := render("main.bolt", source, err, false)

	if !strings.Contains(out, "error[5]: wrong type") {
		t.Errorf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "main.bolt:2:12") {
		t.Errorf("location missing:\n%s", out)
	}
	if !strings.Contains(out, "return true;") {
		t.Errorf("source line missing:\n%s", out)
	}
	if !strings.Contains(out, "^^^^") {
		t.Errorf("span marker missing:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("colourless render contains escapes:\n%s", out)
	}
}
