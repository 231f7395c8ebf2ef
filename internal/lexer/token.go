package lexer

// TokenType identifies a lexical category. A small int enum so the
// compiler's Pratt rule table can be keyed by it directly.
type TokenType int

const (
	// single-char punctuators
	LeftParen TokenType = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// one or two char punctuators
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// literals
	Identifier
	String
	Number

	// keywords
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	Error
	EOF
)

var keywords = map[string]TokenType{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// keywordTrie dispatches on the first byte, like the punctuator switch in
// ScanToken; the tail of the word is then checked against the few
// candidates sharing that first letter.
var keywordTrie = func() map[byte][]string {
	m := map[byte][]string{}
	for kw := range keywords {
		m[kw[0]] = append(m[kw[0]], kw)
	}
	return m
}()

func lookupKeyword(text string) (TokenType, bool) {
	if len(text) == 0 {
		return Identifier, false
	}
	candidates, ok := keywordTrie[text[0]]
	if !ok {
		return Identifier, false
	}
	for _, kw := range candidates {
		if kw == text {
			return keywords[kw], true
		}
	}
	return Identifier, false
}

// Token carries a slice of the original source (Lexeme) rather than a
// separate copy. For an Error token, Lexeme is the error message.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
}
