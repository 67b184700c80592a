package edn

import (
	"reflect"
	"testing"
)

func TestLexerBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "empty input",
			input: "",
			expected: []Token{
				{Type: TokenEOF, Line: 1, Col: 1},
			},
		},
		{
			name:  "single atom",
			input: "hello",
			expected: []Token{
				{Type: TokenAtom, Value: "hello", Line: 1, Col: 1},
				{Type: TokenEOF, Line: 1, Col: 6},
			},
		},
		{
			name:  "vector",
			input: "[?e ?v]",
			expected: []Token{
				{Type: TokenLeftBracket, Line: 1, Col: 1},
				{Type: TokenAtom, Value: "?e", Line: 1, Col: 2},
				{Type: TokenAtom, Value: "?v", Line: 1, Col: 5},
				{Type: TokenRightBracket, Line: 1, Col: 7},
				{Type: TokenEOF, Line: 1, Col: 8},
			},
		},
		{
			name:  "list with string",
			input: `(f "x")`,
			expected: []Token{
				{Type: TokenLeftParen, Line: 1, Col: 1},
				{Type: TokenAtom, Value: "f", Line: 1, Col: 2},
				{Type: TokenString, Value: "x", Line: 1, Col: 4},
				{Type: TokenRightParen, Line: 1, Col: 7},
				{Type: TokenEOF, Line: 1, Col: 8},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer(tt.input)
			if err := lexer.Lex(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(lexer.tokens, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, lexer.tokens)
			}
		})
	}
}

func TestLexerComments(t *testing.T) {
	lexer := NewLexer("foo ; rest of line\nbar")
	if err := lexer.Lex(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var values []string
	for _, tok := range lexer.tokens {
		if tok.Type == TokenAtom {
			values = append(values, tok.Value)
		}
	}
	if !reflect.DeepEqual(values, []string{"foo", "bar"}) {
		t.Errorf("expected [foo bar], got %v", values)
	}
}

func TestLexerStringEscapes(t *testing.T) {
	lexer := NewLexer(`"a\tb\nc\"d"`)
	if err := lexer.Lex(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lexer.tokens[0].Value != "a\tb\nc\"d" {
		t.Errorf("unexpected string value %q", lexer.tokens[0].Value)
	}
}

func TestLexerInvalidEscape(t *testing.T) {
	lexer := NewLexer(`"a\qb"`)
	if err := lexer.Lex(); err == nil {
		t.Error("expected error for invalid escape")
	}
}
