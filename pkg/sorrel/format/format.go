// Package format renders a parsed program back to canonical source text.
// Formatting is loss-free up to whitespace and literal spelling: reparsing
// the output yields a structurally equal AST.
package format

import (
	"strconv"
	"strings"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
)

// Program formats a whole program, one statement per line.
func Program(program *ast.Program) string {
	p := NewPrinter()
	for _, stmt := range program.Statements {
		p.formatStatement(stmt)
	}
	return p.String()
}

func (p *Printer) formatStatement(stmt ast.Statement) {
	p.writeIndent()
	switch stmt := stmt.(type) {
	case *ast.VarStatement:
		p.write("var ")
		p.write(stmt.Name.Value)
		if stmt.Value != nil {
			p.write(" = ")
			p.formatExpression(stmt.Value)
		}
		p.write(";")
		p.newline()

	case *ast.PrintStatement:
		p.write("print ")
		p.formatExpression(stmt.Value)
		p.write(";")
		p.newline()

	case *ast.ReturnStatement:
		p.write("return")
		if stmt.Value != nil {
			p.write(" ")
			p.formatExpression(stmt.Value)
		}
		p.write(";")
		p.newline()

	case *ast.ExpressionStatement:
		p.formatExpression(stmt.Expression)
		p.write(";")
		p.newline()

	case *ast.BlockStatement:
		p.formatBlock(stmt)
		p.newline()

	case *ast.IfStatement:
		p.write("if (")
		p.formatExpression(stmt.Condition)
		p.write(") ")
		p.formatNestedStatement(stmt.Consequence)
		if stmt.Alternative != nil {
			p.writeIndent()
			p.write("else ")
			p.formatNestedStatement(stmt.Alternative)
		}

	case *ast.WhileStatement:
		p.write("while (")
		p.formatExpression(stmt.Condition)
		p.write(") ")
		p.formatNestedStatement(stmt.Body)

	case *ast.FunctionStatement:
		p.write("fun ")
		p.write(stmt.Name.Value)
		p.write("(")
		params := make([]string, 0, len(stmt.Parameters))
		for _, param := range stmt.Parameters {
			params = append(params, param.Value)
		}
		p.write(strings.Join(params, ", "))
		p.write(") ")
		p.formatBlock(stmt.Body)
		p.newline()
	}
}

// formatNestedStatement renders the body of an if or while. Blocks stay
// on the header line; single statements move to their own indented line.
func (p *Printer) formatNestedStatement(stmt ast.Statement) {
	if block, ok := stmt.(*ast.BlockStatement); ok {
		p.formatBlock(block)
		p.newline()
		return
	}
	p.newline()
	p.indentInc()
	p.formatStatement(stmt)
	p.indentDec()
}

func (p *Printer) formatBlock(block *ast.BlockStatement) {
	p.write("{")
	p.newline()
	p.indentInc()
	for _, stmt := range block.Statements {
		p.formatStatement(stmt)
	}
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

func (p *Printer) formatExpression(expr ast.Expression) {
	switch expr := expr.(type) {
	case *ast.Identifier:
		p.write(expr.Value)

	case *ast.NumberLiteral:
		// Prefer the source spelling; synthesized nodes have no lexeme
		if expr.Token.Lexeme != "" {
			p.write(expr.Token.Lexeme)
		} else {
			p.write(strconv.FormatFloat(expr.Value, 'f', -1, 64))
		}

	case *ast.StringLiteral:
		p.write(`"` + expr.Value + `"`)

	case *ast.BooleanLiteral:
		p.write(strconv.FormatBool(expr.Value))

	case *ast.NilLiteral:
		p.write("nil")

	case *ast.GroupingExpression:
		p.write("(")
		p.formatExpression(expr.Expression)
		p.write(")")

	case *ast.PrefixExpression:
		p.write(expr.Operator)
		p.formatExpression(expr.Right)

	case *ast.InfixExpression:
		p.formatExpression(expr.Left)
		p.write(" " + expr.Operator + " ")
		p.formatExpression(expr.Right)

	case *ast.LogicalExpression:
		p.formatExpression(expr.Left)
		p.write(" " + expr.Operator + " ")
		p.formatExpression(expr.Right)

	case *ast.AssignExpression:
		p.write(expr.Name.Value)
		p.write(" = ")
		p.formatExpression(expr.Value)

	case *ast.CallExpression:
		p.formatExpression(expr.Callee)
		p.write("(")
		for i, arg := range expr.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.formatExpression(arg)
		}
		p.write(")")
	}
}
