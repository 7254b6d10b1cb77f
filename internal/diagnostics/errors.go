package diagnostics

import (
	"fmt"
	"strings"

	"github.com/bolt-lang/bolt/internal/position"
)

// Error is a compiler diagnostic with a stable numeric ID and the source span
// that triggered it. The ID doubles as the process exit code in the driver.
type Error struct {
	ID      int
	Name    string
	Message string
	Span    position.Span
	File    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s: %s", e.ID, e.Name, e.Message)
}

// WithFile sets the originating file if it is not already known.
func (e *Error) WithFile(file string) *Error {
	if e.File == "" {
		e.File = file
	}
	return e
}

func newError(id int, name, message string, span position.Span) *Error {
	return &Error{ID: id, Name: name, Message: message, Span: span}
}

// Lexical errors.

func InvalidSyntax(msg string, span position.Span) *Error {
	return newError(0, "invalid syntax", msg, span)
}

func IllegalIdentifier(msg string, span position.Span) *Error {
	return newError(1, "illegal identifier", msg, span)
}

// Structural errors.

func UnexpectedEOF(span position.Span) *Error {
	return newError(2, "unexpected EOF (end of file)", "parser unexpectedly ran out of tokens", span)
}

func UnexpectedTokenExpected(expected, got string, span position.Span) *Error {
	return newError(3, "unexpected token", fmt.Sprintf("expected: %q, got: %q", expected, got), span)
}

func UnexpectedToken(got string, span position.Span) *Error {
	return newError(4, "unexpected token", fmt.Sprintf("unexpected token: %q", got), span)
}

// Type errors.

func WrongType(expected, got string, span position.Span) *Error {
	return newError(5, "wrong type", fmt.Sprintf("expected: %q, got: %q", expected, got), span)
}

func ParamNameAlreadyExists(name string, span position.Span) *Error {
	return newError(6, "parameter name already used", fmt.Sprintf("parameter with name %q already exists", name), span)
}

func FunctionAlreadyExists(name string, span position.Span) *Error {
	return newError(7, "function name already used", fmt.Sprintf("function with name %q already exists", name), span)
}

func MethodAlreadyExists(method, class string, span position.Span) *Error {
	return newError(8, "method already defined for class", fmt.Sprintf("method with name %q already exists for %q", method, class), span)
}

func VariableNotFound(name string, span position.Span) *Error {
	return newError(9, "unknown variable", fmt.Sprintf("variable not found: %q", name), span)
}

func WrongReturnType(expected, got string, span position.Span) *Error {
	return newError(11, "wrong return type", fmt.Sprintf("expected: %q, got: %q", expected, got), span)
}

func NoMainFunction(span position.Span) *Error {
	return newError(12, "missing main function", "no main function found", span)
}

func FunctionDoesNotExist(name string, span position.Span) *Error {
	return newError(13, "function does not exist", fmt.Sprintf("function %q does not exist", name), span)
}

func MethodDoesNotExist(method, typeName string, span position.Span) *Error {
	return newError(14, "method does not exist", fmt.Sprintf("method %q does not exist for %q", method, typeName), span)
}

func WrongArguments(expected, got []string, span position.Span) *Error {
	return newError(15, "wrong function arguments",
		fmt.Sprintf("expected: (%s), got: (%s)", strings.Join(expected, ", "), strings.Join(got, ", ")), span)
}

func FieldNameAlreadyExists(name string, span position.Span) *Error {
	return newError(16, "field name already used", fmt.Sprintf("field with name %q already exists on this class", name), span)
}

func ClassAlreadyExists(name string, span position.Span) *Error {
	return newError(17, "class name already used", fmt.Sprintf("class with name %q already exists", name), span)
}

func ClassDoesNotExist(name string, span position.Span) *Error {
	return newError(18, "class does not exist", fmt.Sprintf("class %q does not exist", name), span)
}

func ClassFieldDoesNotExist(field, class string, span position.Span) *Error {
	return newError(19, "field does not exist", fmt.Sprintf("field %s does not exist on class %s", field, class), span)
}

func WrongClassFields(expected, got []string, span position.Span) *Error {
	return newError(20, "wrong class fields",
		fmt.Sprintf("expected: (%s), got: (%s)", strings.Join(expected, ", "), strings.Join(got, ", ")), span)
}

func EmptyArray(span position.Span) *Error {
	return newError(21, "array can not be empty", "an array is not allowed to be empty", span)
}

func IndexError(typeName string, span position.Span) *Error {
	return newError(22, "unable to index this type", fmt.Sprintf("cannot index type %q", typeName), span)
}

// Mutation errors.

func VariableNotMutable(name string, span position.Span) *Error {
	return newError(23, "variable is immutable", fmt.Sprintf("variable %q was not defined as mutable", name), span)
}

func InvalidReassign(span position.Span) *Error {
	return newError(24, "reassignment is not valid", "invalid reassign", span)
}

func InvalidCast(from, to string, span position.Span) *Error {
	return newError(25, "invalid type cast", fmt.Sprintf("type %q can not be casted to %q", from, to), span)
}

func MethodIsNotStatic(method, class string, span position.Span) *Error {
	return newError(26, "method was called statically", fmt.Sprintf("method %q of %q is not static", method, class), span)
}

func MethodIsStatic(method, class string, span position.Span) *Error {
	return newError(27, "static method was not called statically", fmt.Sprintf("static method %q of %q was not called statically", method, class), span)
}

func CannotAccessFields(typeName string, span position.Span) *Error {
	return newError(28, "cannot access fields of this type", fmt.Sprintf("cannot access fields of type %q", typeName), span)
}

func CannotDerefType(typeName string, span position.Span) *Error {
	return newError(29, "cannot dereference this type", fmt.Sprintf("cannot dereference type %q", typeName), span)
}

func ConditionalReturnMismatch(span position.Span) *Error {
	return newError(30, "conditional return mismatch", "the branches of this conditional return different types", span)
}

// Module errors.

func FileNotFound(name string, span position.Span) *Error {
	return newError(31, "file not found", fmt.Sprintf("file %q not found", name), span)
}

func MacroError(msg string, span position.Span) *Error {
	return newError(32, "macro error", fmt.Sprintf("macro error: %s", msg), span)
}

// Trait errors.

func InvalidOperator(op string, span position.Span) *Error {
	return newError(33, "invalid operator", fmt.Sprintf("invalid operator: %s", op), span)
}

func TraitIsStaticMethod(span position.Span) *Error {
	return newError(34, "trait implementation must not be a static method", "trait implementation must not be a static method", span)
}

func TraitParamCountMismatch(trait string, want, got int, span position.Span) *Error {
	return newError(35, "trait parameter count mismatch",
		fmt.Sprintf("trait %q requires %d parameters, but the implementation has %d (excluding self)", trait, want, got), span)
}

func TraitAlreadyImplemented(trait, typeName string, span position.Span) *Error {
	return newError(36, "trait already implemented for type", fmt.Sprintf("trait %q is already implemented for type %q", trait, typeName), span)
}

func TraitRequirementsNotFulfilled(msg string, span position.Span) *Error {
	return newError(37, "trait requirements not fulfilled", fmt.Sprintf("trait does not fulfill these requirements: %s", msg), span)
}

func CircularDependency(name string, span position.Span) *Error {
	return newError(38, "circular dependency", fmt.Sprintf("circular dependency: %q", name), span)
}

func WrongGenericParamCount(want, got int, span position.Span) *Error {
	return newError(39, "wrong generic parameter count", fmt.Sprintf("expected: %d, got: %d", want, got), span)
}

func VoidVariable(span position.Span) *Error {
	return newError(40, "variable can not have type void", "variable can not have type \"void\"", span)
}
