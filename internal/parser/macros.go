package parser

import (
	"fmt"
	"strings"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/lexer"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/token"
)

// Macros are compiler-defined spellings for constructing objects that must
// already be defined in the language:
//
//	"text"        -> String::with_capacity(n) + push_char per byte
//	list![1, 2]   -> List::new<T>() + push per element
//
// Each expands into a block expression that is generated as source text and
// re-parsed, so the result goes through the ordinary analysis path.
func (p *Parser) parseMacro(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	next, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch {
	case next.Type == token.STRING:
		return p.parseStringMacro()
	case next.Type == token.MACRO_IDENT && next.Lexeme == "list!":
		return p.parseListMacro(scope)
	}

	return nil, diagnostics.UnexpectedToken(next.String(), next.Span)
}

func (p *Parser) parseStringMacro() (*ast.TypedExpr, *diagnostics.Error) {
	const stringClass = "String"
	stringMethods := []string{"new", "with_capacity", "push_char"}

	tok, err := p.expectNext(token.STRING)
	if err != nil {
		return nil, err
	}

	if merr := p.checkMacroRequirements(stringClass, stringMethods, tok.Span); merr != nil {
		return nil, merr
	}

	bytes := []byte(unescapeString(tok.Lexeme))

	var b strings.Builder
	fmt.Fprintf(&b, "{\n    let s = String::with_capacity(%d);\n", len(bytes))
	for _, c := range bytes {
		fmt.Fprintf(&b, "    s.push_char(%d as int8);\n", c)
	}
	b.WriteString("    return s;\n}")

	return p.blockParse(b.String(), tok.Span)
}

func (p *Parser) parseListMacro(scope *ast.Block) (*ast.TypedExpr, *diagnostics.Error) {
	const listClass = "List"
	listMethods := []string{"new", "push"}

	macroTok, err := p.nextToken() // "list!"
	if err != nil {
		return nil, err
	}
	span := macroTok.Span

	open, err := p.expectNext(token.LBRACKET)
	if err != nil {
		return nil, err
	}
	span = span.Extend(open.Span)

	if merr := p.checkMacroRequirements(listClass, listMethods, span); merr != nil {
		return nil, merr
	}

	var elements []*ast.TypedExpr
	end, err := p.walkSeparatedValues(token.COMMA, token.RBRACKET, func() *diagnostics.Error {
		element, err := p.parseExpression(scope)
		if err != nil {
			return err
		}
		elements = append(elements, element)
		return nil
	})
	if err != nil {
		return nil, err
	}
	span = span.Extend(end)

	if len(elements) == 0 {
		return nil, diagnostics.MacroError(
			"Cannot infer type of empty list, consider using `List::new<T>()`", span)
	}

	elemType, err := checkAllTypesSame(elements)
	if err != nil {
		return nil, err
	}

	elementStrings := make([]string, len(elements))
	for i, element := range elements {
		if element.Raw != "" {
			elementStrings[i] = element.Raw
		} else {
			elementStrings[i] = p.sourceSlice(element.Span)
		}
	}

	listName := fmt.Sprintf("list_%d", p.nextCount())

	var b strings.Builder
	fmt.Fprintf(&b, "{\n    let %s = List::new<%s>();\n", listName, elemType)
	for _, element := range elementStrings {
		fmt.Fprintf(&b, "    %s.push(%s);\n", listName, element)
	}
	fmt.Fprintf(&b, "    return %s;\n}", listName)

	return p.blockParse(b.String(), span)
}

// checkMacroRequirements verifies the class and every required method exist.
func (p *Parser) checkMacroRequirements(class string, methods []string, span position.Span) *diagnostics.Error {
	entry, ok := p.Program.CustomTypes.Get(class)
	if !ok {
		return diagnostics.MacroError(fmt.Sprintf("the struct '%s' is not defined", class), span)
	}

	info := p.Program.GetTypeInfo(entry.Type)
	for _, method := range methods {
		if !info.HasMethod(method) {
			return diagnostics.MacroError(
				fmt.Sprintf("the method '%s' is not defined in the struct '%s'", method, class), span)
		}
	}

	return nil
}

// blockParse lexes and parses generated macro source as a block expression
// against the current program. The generated text is recorded as the
// expression's raw form so nested macro expansions can re-expand it.
func (p *Parser) blockParse(code string, span position.Span) (*ast.TypedExpr, *diagnostics.Error) {
	tokens, err := lexer.Lex(code)
	if err != nil {
		return nil, diagnostics.MacroError(err.Message, span)
	}

	nested := New(tokens)
	nested.Program = p.Program
	nested.count = p.count

	scope := ast.NewBlock()
	block, berr := nested.parseBlock(scope)
	if berr != nil {
		return nil, berr
	}
	p.count = nested.count

	return &ast.TypedExpr{
		Expr: &ast.BlockExpr{Body: block},
		Type: block.ReturnType,
		Raw:  code,
		Span: span,
	}, nil
}

// sourceSlice recovers the literal text of a span from the original source.
func (p *Parser) sourceSlice(span position.Span) string {
	source := []rune(p.Program.SourceCode)
	start := span.Start.Abs
	end := span.End.Abs
	if start < 0 || end > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

// unescapeString resolves the standard escape sequences of a string literal
// body. Unknown escapes are kept verbatim.
func unescapeString(s string) string {
	var b strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '\\' || i+1 >= len(runes) {
			b.WriteRune(c)
			continue
		}

		i++
		switch runes[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		default:
			b.WriteRune('\\')
			b.WriteRune(runes[i])
		}
	}

	return b.String()
}
