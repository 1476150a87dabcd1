package lexer

import (
	"strings"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `var five = 5;
var ten = 10;

fun add(x, y) {
  return x + y;
}

var result = add(five, ten);
!-/*5;
5 < 10 > 5;

if (5 <= 10) {
  print true;
} else {
  print false;
}

10 == 10;
10 != 9;
"foobar"
"foo bar"
nil
`

	tests := []struct {
		expectedType   TokenType
		expectedLexeme string
	}{
		{VAR, "var"},
		{IDENT, "five"},
		{ASSIGN, "="},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{VAR, "var"},
		{IDENT, "ten"},
		{ASSIGN, "="},
		{NUMBER, "10"},
		{SEMICOLON, ";"},
		{FUN, "fun"},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "x"},
		{COMMA, ","},
		{IDENT, "y"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{IDENT, "x"},
		{PLUS, "+"},
		{IDENT, "y"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{VAR, "var"},
		{IDENT, "result"},
		{ASSIGN, "="},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "five"},
		{COMMA, ","},
		{IDENT, "ten"},
		{RPAREN, ")"},
		{SEMICOLON, ";"},
		{BANG, "!"},
		{MINUS, "-"},
		{SLASH, "/"},
		{STAR, "*"},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{NUMBER, "5"},
		{LT, "<"},
		{NUMBER, "10"},
		{GT, ">"},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{IF, "if"},
		{LPAREN, "("},
		{NUMBER, "5"},
		{LTE, "<="},
		{NUMBER, "10"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{PRINT, "print"},
		{TRUE, "true"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{ELSE, "else"},
		{LBRACE, "{"},
		{PRINT, "print"},
		{FALSE, "false"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{NUMBER, "10"},
		{EQ, "=="},
		{NUMBER, "10"},
		{SEMICOLON, ";"},
		{NUMBER, "10"},
		{BANG_EQ, "!="},
		{NUMBER, "9"},
		{SEMICOLON, ";"},
		{STRING, `"foobar"`},
		{STRING, `"foo bar"`},
		{NIL, "nil"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong token type. expected=%s, got=%s (%q)",
				i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - wrong lexeme. expected=%q, got=%q",
				i, tt.expectedLexeme, tok.Lexeme)
		}
	}

	if len(l.Errors()) != 0 {
		t.Errorf("expected no scan errors, got %d", len(l.Errors()))
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"0", 0},
		{"42", 42},
		{"3.14159", 3.14159},
		{"0.5", 0.5},
		{"1000000", 1000000},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != NUMBER {
			t.Errorf("expected NUMBER for %q, got %s", tt.input, tok.Type)
			continue
		}
		value, ok := tok.Literal.(float64)
		if !ok {
			t.Errorf("NUMBER token for %q has no float64 literal", tt.input)
			continue
		}
		if value != tt.expected {
			t.Errorf("expected %v, got %v for input %q", tt.expected, value, tt.input)
		}
	}
}

func TestTrailingDotNotConsumed(t *testing.T) {
	l := New("123.;")
	tok := l.NextToken()
	if tok.Type != NUMBER || tok.Lexeme != "123" {
		t.Fatalf("expected NUMBER '123', got %s %q", tok.Type, tok.Lexeme)
	}
	tok = l.NextToken()
	if tok.Type != DOT {
		t.Fatalf("expected DOT after number, got %s", tok.Type)
	}
	tok = l.NextToken()
	if tok.Type != SEMICOLON {
		t.Fatalf("expected SEMICOLON, got %s", tok.Type)
	}
}

func TestStringLiteral(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal != "hello world" {
		t.Errorf("expected literal %q, got %q", "hello world", tok.Literal)
	}
	if tok.Lexeme != `"hello world"` {
		t.Errorf("lexeme should include quotes, got %q", tok.Lexeme)
	}
}

func TestMultilineStringTracksLines(t *testing.T) {
	l := New("\"one\ntwo\nthree\"\nx")
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Line != 1 {
		t.Errorf("string token should carry its start line, got %d", tok.Line)
	}
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Line != 4 {
		t.Errorf("expected IDENT on line 4, got %s on line %d", tok.Type, tok.Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New("\n\"never closed")
	tok := l.NextToken()
	if tok.Type != EOF {
		t.Fatalf("expected EOF after error, got %s", tok.Type)
	}
	errs := l.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 scan error, got %d", len(errs))
	}
	if errs[0].Line != 2 {
		t.Errorf("error should be at the string's start line 2, got %d", errs[0].Line)
	}
	if !strings.Contains(errs[0].Message, "Unterminated string") {
		t.Errorf("unexpected message: %q", errs[0].Message)
	}
}

func TestUnknownCharacterContinuesScanning(t *testing.T) {
	l := New("@ 1;")
	tokens := l.ScanTokens()

	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 scan error, got %d", len(l.Errors()))
	}
	// The bad character is skipped; scanning continues
	if tokens[0].Type != NUMBER {
		t.Errorf("expected NUMBER after skipped char, got %s", tokens[0].Type)
	}
	if tokens[len(tokens)-1].Type != EOF {
		t.Errorf("token stream must end in EOF")
	}
}

func TestLineComments(t *testing.T) {
	l := New("// a comment\n1 // trailing\n// last")
	tokens := l.ScanTokens()

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	if len(types) != 2 || types[0] != NUMBER || types[1] != EOF {
		t.Fatalf("comments must not produce tokens, got %v", types)
	}
	if tokens[0].Line != 2 {
		t.Errorf("expected NUMBER on line 2, got %d", tokens[0].Line)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"and", AND},
		{"class", CLASS},
		{"else", ELSE},
		{"false", FALSE},
		{"for", FOR},
		{"fun", FUN},
		{"if", IF},
		{"nil", NIL},
		{"or", OR},
		{"print", PRINT},
		{"return", RETURN},
		{"super", SUPER},
		{"this", THIS},
		{"true", TRUE},
		{"var", VAR},
		{"while", WHILE},
		{"variable", IDENT},
		{"form", IDENT},
		{"_under", IDENT},
		{"x1", IDENT},
		{"println", IDENT},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("LookupIdent(%q): expected %s, got %s", tt.input, tt.expected, tok.Type)
		}
	}
}

func TestBooleanLiteralsCarryValues(t *testing.T) {
	l := New("true false")
	tok := l.NextToken()
	if v, ok := tok.Literal.(bool); !ok || !v {
		t.Errorf("true token should carry literal true, got %v", tok.Literal)
	}
	tok = l.NextToken()
	if v, ok := tok.Literal.(bool); !ok || v {
		t.Errorf("false token should carry literal false, got %v", tok.Literal)
	}
}

// Every scan ends with exactly one EOF token, whatever the input.
func TestEOFInvariant(t *testing.T) {
	inputs := []string{"", " ", "\n\n", "1 + 2;", "\"s\"", "@#", "// only a comment"}
	for _, input := range inputs {
		l := New(input)
		tokens := l.ScanTokens()
		eofs := 0
		for _, tok := range tokens {
			if tok.Type == EOF {
				eofs++
			}
		}
		if eofs != 1 {
			t.Errorf("input %q: expected exactly 1 EOF, got %d", input, eofs)
		}
		if tokens[len(tokens)-1].Type != EOF {
			t.Errorf("input %q: EOF must be the final token", input)
		}
	}
}

func TestEOFLineNumber(t *testing.T) {
	l := New("1;\n2;\n")
	tokens := l.ScanTokens()
	eof := tokens[len(tokens)-1]
	if eof.Line != 3 {
		t.Errorf("EOF should be at the final line 3, got %d", eof.Line)
	}
}

// Concatenating the lexemes in order reproduces the source modulo
// skipped whitespace and comments.
func TestLexemesReconstructSource(t *testing.T) {
	input := "var x=1.5;print(x>=2)!=true;\"a b\";"
	l := New(input)
	tokens := l.ScanTokens()

	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Lexeme)
	}
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, input)
	got := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, sb.String())
	if got != stripped {
		t.Errorf("lexemes do not reconstruct source:\nwant %q\ngot  %q", stripped, got)
	}
}

func TestTokenTypeNames(t *testing.T) {
	tests := []struct {
		typ  TokenType
		name string
	}{
		{LPAREN, "LeftParen"},
		{BANG_EQ, "BangEqual"},
		{ASSIGN, "Equal"},
		{EQ, "EqualEqual"},
		{GTE, "GreaterEqual"},
		{IDENT, "Identifier"},
		{SEMICOLON, "SemiColon"},
		{EOF, "Eof"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.name {
			t.Errorf("TokenType(%d).String(): expected %q, got %q", tt.typ, tt.name, got)
		}
	}
}
