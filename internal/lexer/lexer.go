package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/token"
)

// Lexer turns source text into a stream of spanned tokens. Recognition order
// at each position: numeric literal, string literal, fixed-pattern longest
// match, identifier. Whitespace and '#' line comments are skipped; comments
// survive only as source spans.
type Lexer struct {
	chars    []rune
	pos      position.Position
	patterns []token.Pattern
}

func New(input string) *Lexer {
	return &Lexer{
		chars:    []rune(input),
		pos:      position.New(0, 0, 0),
		patterns: token.Patterns(),
	}
}

// Lex tokenises the whole input.
func Lex(input string) ([]token.Token, *diagnostics.Error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return tokens, nil
		}
		tokens = append(tokens, *tok)
	}
}

// LexUnspanned tokenises the input and drops span information. Test helper.
func LexUnspanned(input string) ([]token.Token, *diagnostics.Error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		tokens[i].Span = position.Span{}
	}
	return tokens, nil
}

// NextToken returns the next token, or nil at end of input.
func (l *Lexer) NextToken() (*token.Token, *diagnostics.Error) {
	l.consumeWhitespace()
	start := l.pos

	if l.at(l.pos.Abs) == 0 {
		return nil, nil
	}

	if tok := l.lexFloat(start); tok != nil {
		return tok, nil
	}
	if tok := l.lexInt(start); tok != nil {
		return tok, nil
	}
	if tok := l.lexString(start); tok != nil {
		return tok, nil
	}
	if tok := l.lexFromPattern(start); tok != nil {
		return tok, nil
	}
	tok, err := l.lexIdent(start)
	if err != nil {
		return nil, err
	}
	if tok != nil {
		return tok, nil
	}

	l.advance(1)
	return nil, diagnostics.InvalidSyntax(
		"unknown character: "+strconv.QuoteRune(l.chars[start.Abs]),
		position.NewSpan(start, l.pos),
	)
}

func (l *Lexer) at(idx int) rune {
	if idx < 0 || idx >= len(l.chars) {
		return 0
	}
	return l.chars[idx]
}

func (l *Lexer) consumeWhitespace() {
	for {
		switch l.at(l.pos.Abs) {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		case '#':
			for {
				c := l.at(l.pos.Abs)
				if c == 0 {
					return
				}
				l.advance(1)
				if c == '\n' {
					break
				}
			}
		default:
			return
		}
	}
}

func (l *Lexer) lexFromPattern(start position.Position) *token.Token {
	var matched []rune
	still := make([]token.Pattern, len(l.patterns))
	copy(still, l.patterns)
	cursor := l.pos.Abs
	var last *token.Pattern

	for len(still) > 0 {
		c := l.at(cursor)
		if c == 0 {
			break
		}
		matched = append(matched, c)
		cursor++

		var kept []token.Pattern
		for _, p := range still {
			if strings.HasPrefix(p.Text, string(matched)) {
				kept = append(kept, p)
			}
		}
		still = kept

		for i := range still {
			if still[i].Text == string(matched) {
				p := still[i]
				last = &p
				break
			}
		}
	}

	if last == nil {
		return nil
	}

	// A keyword directly followed by an identifier character is the start of
	// a longer identifier ("classify"), left to lexIdent.
	if unicode.IsLetter(rune(last.Text[len(last.Text)-1])) {
		next := l.at(l.pos.Abs + len(last.Text))
		if unicode.IsLetter(next) || unicode.IsDigit(next) || next == '_' {
			return nil
		}
	}

	l.advance(len(last.Text))
	return &token.Token{
		Type:   last.Type,
		Lexeme: last.Text,
		Span:   position.NewSpan(start, l.pos),
	}
}

func (l *Lexer) lexInt(start position.Position) *token.Token {
	var digits []rune
	cursor := l.pos.Abs

	for {
		c := l.at(cursor)
		if !(unicode.IsDigit(c) || c == '_') {
			break
		}
		if next := l.at(cursor + 1); next != 0 && unicode.IsLetter(next) {
			return nil
		}
		cursor++
		digits = append(digits, c)
	}

	if len(digits) == 0 || digits[0] == '_' {
		return nil
	}

	text := strings.ReplaceAll(string(digits), "_", "")
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil
	}

	l.advance(len(digits))
	return &token.Token{
		Type:   token.INT,
		Lexeme: string(digits),
		Int:    value,
		Span:   position.NewSpan(start, l.pos),
	}
}

func (l *Lexer) lexFloat(start position.Position) *token.Token {
	var digits []rune
	cursor := l.pos.Abs

	for {
		c := l.at(cursor)
		if !(unicode.IsDigit(c) || c == '_' || c == '.') {
			break
		}
		if next := l.at(cursor + 1); next != 0 && unicode.IsLetter(next) {
			return nil
		}
		cursor++
		digits = append(digits, c)
	}

	text := string(digits)
	if len(digits) == 0 || !strings.Contains(text, ".") || len(digits) == 1 || digits[0] == '_' {
		return nil
	}

	consumed := len(digits)
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return nil
	}

	l.advance(consumed)
	return &token.Token{
		Type:   token.FLOAT,
		Lexeme: string(digits),
		Float:  value,
		Span:   position.NewSpan(start, l.pos),
	}
}

func (l *Lexer) lexString(start position.Position) *token.Token {
	if l.at(l.pos.Abs) != '"' {
		return nil
	}

	var body []rune
	cursor := l.pos.Abs + 1
	for {
		c := l.at(cursor)
		if c == '"' || c == 0 {
			break
		}
		cursor++
		body = append(body, c)
	}

	l.advance(len(body) + 2)
	return &token.Token{
		Type:   token.STRING,
		Lexeme: string(body),
		Span:   position.NewSpan(start, l.pos),
	}
}

func (l *Lexer) lexIdent(start position.Position) (*token.Token, *diagnostics.Error) {
	var ident []rune
	cursor := l.pos.Abs

	for {
		c := l.at(cursor)
		if !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '!') {
			break
		}
		// `!` is the macro suffix; `x != y` keeps its comparison.
		if c == '!' && l.at(cursor+1) == '=' {
			break
		}
		cursor++
		ident = append(ident, c)
	}

	if len(ident) == 0 {
		return nil, nil
	}

	l.advance(len(ident))

	if unicode.IsDigit(ident[0]) {
		return nil, diagnostics.IllegalIdentifier(
			"identifier must not start with a number",
			position.NewSpan(start, l.pos),
		)
	}

	tokType := token.IDENT
	if ident[len(ident)-1] == '!' {
		tokType = token.MACRO_IDENT
	}

	return &token.Token{
		Type:   tokType,
		Lexeme: string(ident),
		Span:   position.NewSpan(start, l.pos),
	}, nil
}

func (l *Lexer) advance(amount int) {
	for i := 0; i < amount; i++ {
		c := l.at(l.pos.Abs)
		if c == 0 {
			return
		}
		l.pos.Abs++
		if c == '\n' {
			l.pos.Row++
			l.pos.Column = 0
		} else {
			l.pos.Column++
		}
	}
}
