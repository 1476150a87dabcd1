package format

import (
	"testing"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors for %q: %v", input, p.Errors())
	}
	if len(l.Errors()) != 0 {
		t.Fatalf("scan errors for %q: %v", input, l.Errors())
	}
	return program
}

func TestFormatStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"var x=1;", "var x = 1;\n"},
		{"var x;", "var x;\n"},
		{"print 1+2;", "print 1 + 2;\n"},
		{"return;", "return;\n"},
		{"return 5;", "return 5;\n"},
		{`print "hi";`, "print \"hi\";\n"},
		{"print nil;", "print nil;\n"},
		{"x = y;", "x = y;\n"},
		{"f(1,2);", "f(1, 2);\n"},
		{"print (1+2)*3;", "print (1 + 2) * 3;\n"},
		{"print -a;", "print -a;\n"},
		{"print a and b or c;", "print a and b or c;\n"},
	}

	for _, tt := range tests {
		got := Program(parse(t, tt.input))
		if got != tt.expected {
			t.Errorf("input %q:\nexpected %q\ngot      %q", tt.input, tt.expected, got)
		}
	}
}

func TestFormatBlockIndentation(t *testing.T) {
	input := "if(x){print 1;print 2;}else{print 3;}"
	expected := "if (x) {\n" +
		"    print 1;\n" +
		"    print 2;\n" +
		"}\n" +
		"else {\n" +
		"    print 3;\n" +
		"}\n"

	got := Program(parse(t, input))
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatFunction(t *testing.T) {
	input := "fun add(a,b){return a+b;}"
	expected := "fun add(a, b) {\n" +
		"    return a + b;\n" +
		"}\n"

	got := Program(parse(t, input))
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatNestedBlocks(t *testing.T) {
	input := "while(x){ { print 1; } }"
	expected := "while (x) {\n" +
		"    {\n" +
		"        print 1;\n" +
		"    }\n" +
		"}\n"

	got := Program(parse(t, input))
	if got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatSingleStatementBody(t *testing.T) {
	input := "while (x) print 1;"
	expected := "while (x) \n    print 1;\n"

	got := Program(parse(t, input))
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// Reparsing formatted output yields a structurally equal AST. The ast
// String form is a faithful structural fingerprint, so comparing those
// compares structure.
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"var x = 1;",
		"print -1 + 2 * 3;",
		"print (1 + 2) * 3;",
		"if (a) print 1; else print 2;",
		"if (a) { print 1; } else { print 2; }",
		"while (i < 10) { i = i + 1; }",
		"fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }",
		"fun make() { var i = 0; fun inc() { i = i + 1; return i; } return inc; }",
		"for (var i = 0; i < 3; i = i + 1) print i;",
		"var s = \"a\" + \"b\";",
		"print a and b or !c;",
		"a = b = c;",
		"f(1)(2)(3);",
		"print nil == false;",
	}

	for _, input := range inputs {
		original := parse(t, input)
		formatted := Program(original)
		reparsed := parse(t, formatted)

		if original.String() != reparsed.String() {
			t.Errorf("round trip changed structure for %q:\noriginal: %s\nformatted: %s\nreparsed: %s",
				input, original.String(), formatted, reparsed.String())
		}
	}
}

// Formatting is idempotent: formatting formatted output is a fixpoint.
func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		"var x=1;print x;",
		"fun f(a){return a;}",
		"if(x){print 1;}else{print 2;}",
		"for(var i=0;i<3;i=i+1)print i;",
	}
	for _, input := range inputs {
		once := Program(parse(t, input))
		twice := Program(parse(t, once))
		if once != twice {
			t.Errorf("formatting is not idempotent for %q:\nonce:  %q\ntwice: %q", input, once, twice)
		}
	}
}
