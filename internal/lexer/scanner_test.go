package lexer

import (
	"testing"

	"github.com/kr/pretty"
)

func scanAll(source string) []Token {
	s := New(source)
	var toks []Token
	for {
		tok := s.ScanToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func types(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestPunctuators(t *testing.T) {
	toks := scanAll("(){},.-+;/* ! != = == > >= < <=")
	want := []TokenType{
		LeftParen, RightParen, LeftBrace, RightBrace, Comma, Dot,
		Minus, Plus, Semicolon, Slash, Star,
		Bang, BangEqual, Equal, EqualEqual,
		Greater, GreaterEqual, Less, LessEqual,
		EOF,
	}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d:\n%s", len(got), len(want), pretty.Sprint(toks))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tests := []struct {
		lexeme string
		want   TokenType
	}{
		{"and", And}, {"class", Class}, {"else", Else}, {"false", False},
		{"for", For}, {"fun", Fun}, {"if", If}, {"nil", Nil},
		{"or", Or}, {"print", Print}, {"return", Return}, {"super", Super},
		{"this", This}, {"true", True}, {"var", Var}, {"while", While},
		{"andd", Identifier},
		{"fo", Identifier},
		{"_var", Identifier},
		{"print2", Identifier},
		{"Fun", Identifier},
	}
	for _, tt := range tests {
		tok := New(tt.lexeme).ScanToken()
		if tok.Type != tt.want {
			t.Errorf("%q scanned as %v, want %v", tt.lexeme, tok.Type, tt.want)
		}
		if tok.Lexeme != tt.lexeme {
			t.Errorf("%q lexeme = %q", tt.lexeme, tok.Lexeme)
		}
	}
}

func TestNumbers(t *testing.T) {
	toks := scanAll("1 12.5 0.0 7.")
	// "7." is a number followed by a dot: the fraction requires a digit
	// after the decimal point.
	want := []TokenType{Number, Number, Number, Number, Dot, EOF}
	got := types(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
	if toks[0].Lexeme != "1" || toks[1].Lexeme != "12.5" {
		t.Errorf("unexpected lexemes: %s", pretty.Sprint(toks[:2]))
	}
}

func TestStringSpansLines(t *testing.T) {
	toks := scanAll("\"a\nb\" x")
	if toks[0].Type != String {
		t.Fatalf("first token = %v, want String", toks[0].Type)
	}
	if toks[0].Lexeme != "\"a\nb\"" {
		t.Errorf("lexeme = %q", toks[0].Lexeme)
	}
	// The identifier after the two-line string is on line 2.
	if toks[1].Line != 2 {
		t.Errorf("line after multi-line string = %d, want 2", toks[1].Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	tok := New("\"abc").ScanToken()
	if tok.Type != Error {
		t.Fatalf("token = %v, want Error", tok.Type)
	}
	if tok.Lexeme != "Unterminated string." {
		t.Errorf("message = %q", tok.Lexeme)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	tok := New("@").ScanToken()
	if tok.Type != Error {
		t.Fatalf("token = %v, want Error", tok.Type)
	}
}

func TestLineCommentsSkipped(t *testing.T) {
	toks := scanAll("1 // everything after is ignored ;;;\n2")
	want := []TokenType{Number, Number, EOF}
	got := types(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
	if toks[1].Line != 2 {
		t.Errorf("second number on line %d, want 2", toks[1].Line)
	}
}

func TestSlashAloneIsDivision(t *testing.T) {
	toks := scanAll("1 / 2")
	want := []TokenType{Number, Slash, Number, EOF}
	got := types(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
}

func TestLineTracking(t *testing.T) {
	toks := scanAll("a\nb\n\nc")
	wantLines := []int{1, 2, 4}
	for i, want := range wantLines {
		if toks[i].Line != want {
			t.Errorf("token %d on line %d, want %d", i, toks[i].Line, want)
		}
	}
}
