package parser

import (
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// maxArguments caps call arguments and function parameters.
const maxArguments = 255

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	LOGIC_OR    // or
	LOGIC_AND   // and
	EQUALS      // == !=
	LESSGREATER // > >= < <=
	SUM         // + -
	PRODUCT     // * /
	PREFIX      // -x or !x
	CALL        // callee(x)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:  ASSIGNMENT,
	lexer.OR:      LOGIC_OR,
	lexer.AND:     LOGIC_AND,
	lexer.EQ:      EQUALS,
	lexer.BANG_EQ: EQUALS,
	lexer.LT:      LESSGREATER,
	lexer.LTE:     LESSGREATER,
	lexer.GT:      LESSGREATER,
	lexer.GTE:     LESSGREATER,
	lexer.PLUS:    SUM,
	lexer.MINUS:   SUM,
	lexer.SLASH:   PRODUCT,
	lexer.STAR:    PRODUCT,
	lexer.LPAREN:  CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes the lexer's token stream with single-token lookahead and
// produces a statement list. It always runs to EOF; errors trigger
// panic-mode synchronization to the next statement boundary so that one
// bad declaration does not hide the rest of the diagnostics.
type Parser struct {
	l *lexer.Lexer

	errors []*serrors.SorrelError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NIL, p.parseNilLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.STAR, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.BANG_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.LTE, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.GTE, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseLogicalExpression)
	p.registerInfix(lexer.OR, p.parseLogicalExpression)
	p.registerInfix(lexer.ASSIGN, p.parseAssignExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)

	// Read two tokens so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns the parse errors collected so far. Scan errors surface
// through the lexer's own sink.
func (p *Parser) Errors() []*serrors.SorrelError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expectPeek advances when the next token matches; otherwise it records a
// parse error and leaves the stream where it is.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	err := serrors.NewWithLine("PARSE-0001", p.peekToken.Line, map[string]any{
		"Expected": "'" + t.String() + "'",
		"Got":      tokenName(p.peekToken),
	})
	err.Lexeme = p.peekToken.Lexeme
	p.errors = append(p.errors, err)
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	err := serrors.NewWithLine("PARSE-0002", tok.Line, map[string]any{
		"Got": tokenName(tok),
	})
	err.Lexeme = tok.Lexeme
	p.errors = append(p.errors, err)
}

// tokenName names a token for diagnostics; EOF has no lexeme.
func tokenName(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end"
	}
	return tok.Lexeme
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses declarations until EOF. It never stops early: on a
// parse error the offending declaration is discarded and the parser
// resynchronizes, so all diagnostics in the file are surfaced in one run.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}

	return program
}

// synchronize advances to the next statement boundary after a parse error.
// It stops with curToken on a ';' (so the caller's advance lands on the
// next statement) or just before a declaration keyword.
func (p *Parser) synchronize() {
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case lexer.CLASS, lexer.FUN, lexer.VAR, lexer.FOR,
			lexer.IF, lexer.WHILE, lexer.PRINT, lexer.RETURN:
			return
		}
		p.nextToken()
	}
}

// parseDeclaration dispatches at program and block level, where var and
// fun declarations are allowed. Each statement parser assumes curToken is
// its first token and finishes with curToken on its last token.
func (p *Parser) parseDeclaration() ast.Statement {
	switch p.curToken.Type {
	case lexer.VAR:
		return p.parseVarStatement()
	case lexer.FUN:
		return p.parseFunctionStatement()
	default:
		return p.parseStatement()
	}
}

// parseStatement dispatches non-declaration statements: the body of an if,
// while, or for is a statement, so a bare declaration there is an error.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.PRINT:
		return p.parsePrintStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.LBRACE:
		if block := p.parseBlockStatement(); block != nil {
			return block
		}
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVarStatement() ast.Statement {
	stmt := &ast.VarStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}

	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}

	if p.curTokenIs(lexer.EOF) {
		p.errors = append(p.errors, serrors.NewWithLine("PARSE-0001",
			p.curToken.Line, map[string]any{"Expected": "'}'", "Got": "end"}))
		return nil
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Consequence = p.parseStatement()
	if stmt.Consequence == nil {
		return nil
	}

	// A dangling else binds to the nearest preceding if.
	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternative = p.parseStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForStatement desugars 'for (init; cond; inc) body' into the
// equivalent while loop:
//
//	{ init; while (cond) { body; inc; } }
//
// A missing condition defaults to true.
func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	var initializer ast.Statement
	switch {
	case p.peekTokenIs(lexer.SEMICOLON):
		p.nextToken()
	case p.peekTokenIs(lexer.VAR):
		p.nextToken()
		initializer = p.parseVarStatement()
		if initializer == nil {
			return nil
		}
	default:
		p.nextToken()
		initializer = p.parseExpressionStatement()
		if initializer == nil {
			return nil
		}
	}

	var condition ast.Expression
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	} else {
		p.nextToken()
		condition = p.parseExpression(LOWEST)
		if condition == nil {
			return nil
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}

	var increment ast.Expression
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
	} else {
		p.nextToken()
		increment = p.parseExpression(LOWEST)
		if increment == nil {
			return nil
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
	}

	p.nextToken()
	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if increment != nil {
		body = &ast.BlockStatement{
			Token: forToken,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: forToken, Expression: increment},
			},
		}
	}

	if condition == nil {
		condition = &ast.BooleanLiteral{
			Token: lexer.Token{Type: lexer.TRUE, Lexeme: "true", Line: forToken.Line, Literal: true},
			Value: true,
		}
	}

	var loop ast.Statement = &ast.WhileStatement{
		Token:     forToken,
		Condition: condition,
		Body:      body,
	}

	if initializer != nil {
		loop = &ast.BlockStatement{
			Token:      forToken,
			Statements: []ast.Statement{initializer, loop},
		}
	}
	return loop
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	stmt.Parameters = params

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	if body == nil {
		return nil
	}
	stmt.Body = body
	return stmt
}

func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	var params []*ast.Identifier

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, true
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil, false
	}
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil, false
		}
		if len(params) == maxArguments {
			p.errors = append(p.errors, serrors.NewWithLine("PARSE-0005",
				p.curToken.Line, map[string]any{"Max": maxArguments}))
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseExpression is the Pratt core: a prefix parse for curToken, then a
// loop folding infix operators while the lookahead binds tighter.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(float64)
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	tok := p.curToken

	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.GroupingExpression{Token: tok, Expression: exp}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}

	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}

	precedence := precedences[p.curToken.Type]
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expr := &ast.LogicalExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}

	precedence := precedences[p.curToken.Type]
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseAssignExpression handles 'target = value'. Assignment is
// right-associative and only a plain variable is a valid target; anything
// else reports an error and the right-hand side is discarded.
func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	assignToken := p.curToken

	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	name, ok := left.(*ast.Identifier)
	if !ok {
		err := serrors.NewWithLine("PARSE-0003", assignToken.Line, nil)
		err.Lexeme = assignToken.Lexeme
		p.errors = append(p.errors, err)
		return left
	}

	return &ast.AssignExpression{Token: assignToken, Name: name, Value: value}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Token: p.curToken, Callee: callee}

	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	expr.Arguments = args
	expr.Paren = p.curToken // the ')' token
	return expr
}

// parseCallArguments reads the argument list. Going past the cap reports
// an error but the call node is still built.
func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	var args []ast.Expression

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		if len(args) == maxArguments {
			p.errors = append(p.errors, serrors.NewWithLine("PARSE-0004",
				p.curToken.Line, map[string]any{"Max": maxArguments}))
		}
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil, false
	}
	return args, true
}
