package lexer

import (
	"testing"

	"github.com/bolt-lang/bolt/internal/token"
)

type tok struct {
	typ token.TokenType
	lex string
}

func assertTokens(t *testing.T, input string, expected []tok) {
	t.Helper()

	tokens, err := LexUnspanned(input)
	if err != nil {
		t.Fatalf("lex(%q) failed: %v", input, err)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("lex(%q) = %d tokens, want %d", input, len(tokens), len(expected))
	}
	for i, want := range expected {
		if tokens[i].Type != want.typ {
			t.Errorf("token %d: type %v, want %v", i, tokens[i].Type, want.typ)
		}
		if want.lex != "" && tokens[i].Lexeme != want.lex {
			t.Errorf("token %d: lexeme %q, want %q", i, tokens[i].Lexeme, want.lex)
		}
	}
}

func TestBasicPunctuation(t *testing.T) {
	assertTokens(t, ";..})", []tok{
		{token.SEMICOLON, ";"},
		{token.PERIOD, "."},
		{token.PERIOD, "."},
		{token.RBRACE, "}"},
		{token.RPAREN, ")"},
	})
}

func TestMixed(t *testing.T) {
	assertTokens(t, "if true false {return;}; .", []tok{
		{token.IF, "if"},
		{token.TRUE, "true"},
		{token.FALSE, "false"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.PERIOD, "."},
	})
}

func TestIntegers(t *testing.T) {
	tokens, err := LexUnspanned("123 1_000 1__2__3")
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{123, 1000, 123}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Type != token.INT || tokens[i].Int != w {
			t.Errorf("token %d = (%v, %d), want INT %d", i, tokens[i].Type, tokens[i].Int, w)
		}
	}
}

func TestLeadingUnderscoreIsIdentifier(t *testing.T) {
	assertTokens(t, "12 _1_2_3", []tok{
		{token.INT, "12"},
		{token.IDENT, "_1_2_3"},
	})
}

func TestFloats(t *testing.T) {
	tokens, err := LexUnspanned("1.23 1.0 0.555 1. .555")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.23, 1.0, 0.555, 1.0, 0.555}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Type != token.FLOAT || tokens[i].Float != w {
			t.Errorf("token %d = (%v, %v), want FLOAT %v", i, tokens[i].Type, tokens[i].Float, w)
		}
	}
}

func TestMixedLiterals(t *testing.T) {
	assertTokens(t, "123 0.15 1. .5 true false", []tok{
		{token.INT, "123"},
		{token.FLOAT, "0.15"},
		{token.FLOAT, "1."},
		{token.FLOAT, ".5"},
		{token.TRUE, "true"},
		{token.FALSE, "false"},
	})
}

func TestOperatorsLongestMatch(t *testing.T) {
	assertTokens(t, "= == < <= ! != - ->", []tok{
		{token.ASSIGN, "="},
		{token.EQ, "=="},
		{token.LT, "<"},
		{token.LTE, "<="},
		{token.BANG, "!"},
		{token.NOT_EQ, "!="},
		{token.MINUS, "-"},
		{token.ARROW, "->"},
	})
}

func TestStringLiteral(t *testing.T) {
	assertTokens(t, `"hello world"`, []tok{
		{token.STRING, "hello world"},
	})
}

func TestMacroKeyword(t *testing.T) {
	assertTokens(t, "list![1]", []tok{
		{token.MACRO_IDENT, "list!"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.RBRACKET, "]"},
	})
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "let a = 1; # trailing comment\n# full line\nlet b = 2;"
	assertTokens(t, input, []tok{
		{token.LET, "let"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "b"},
		{token.ASSIGN, "="},
		{token.INT, "2"},
		{token.SEMICOLON, ";"},
	})
}

func TestIllegalIdentifier(t *testing.T) {
	_, err := Lex("1foo")
	if err == nil {
		t.Fatal("expected IllegalIdentifier error")
	}
	if err.ID != 1 {
		t.Fatalf("error id = %d, want 1", err.ID)
	}
}

func TestUnknownRune(t *testing.T) {
	_, err := Lex("let a = @;")
	if err == nil {
		t.Fatal("expected InvalidSyntax error")
	}
	if err.ID != 0 {
		t.Fatalf("error id = %d, want 0", err.ID)
	}
}

func TestSpansMonotonic(t *testing.T) {
	input := "def main() -> int64 {\n    return 40 + 2;\n}"
	tokens, err := Lex(input)
	if err != nil {
		t.Fatal(err)
	}

	prevEnd := -1
	for i, tok := range tokens {
		if tok.Span.Start.Abs < prevEnd {
			t.Fatalf("token %d span %v overlaps previous end %d", i, tok.Span, prevEnd)
		}
		if tok.Span.End.Abs < tok.Span.Start.Abs {
			t.Fatalf("token %d span %v inverted", i, tok.Span)
		}
		prevEnd = tok.Span.End.Abs
	}
}

func TestSpanPositions(t *testing.T) {
	tokens, err := Lex("let\nx")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens", len(tokens))
	}
	if tokens[1].Span.Start.Row != 1 || tokens[1].Span.Start.Column != 0 {
		t.Errorf("second token start = %v, want row 1 col 0", tokens[1].Span.Start)
	}
}
