package evaluator

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// ObjectType represents the type of objects in the language
type ObjectType string

const (
	NUMBER_OBJ   = "NUMBER"
	BOOLEAN_OBJ  = "BOOLEAN"
	STRING_OBJ   = "STRING"
	NIL_OBJ      = "NIL"
	RETURN_OBJ   = "RETURN_VALUE"
	ERROR_OBJ    = "ERROR"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
)

// Object represents all runtime values
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Number represents numeric objects. All numbers are IEEE-754 doubles;
// Inspect uses the minimal round-trip representation.
type Number struct {
	Value float64
}

func (n *Number) Inspect() string  { return FormatNumber(n.Value) }
func (n *Number) Type() ObjectType { return NUMBER_OBJ }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents string objects; Inspect prints the raw contents
// without quotes.
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Nil represents the nil object
type Nil struct{}

func (n *Nil) Inspect() string  { return "nil" }
func (n *Nil) Type() ObjectType { return NIL_OBJ }

// ReturnValue wraps a value travelling up from a return statement. It is a
// control-flow carrier, not a value: blocks and loops pass it straight
// through and the enclosing call frame unwraps it. Keeping it a distinct
// object type is what prevents returns from being caught as errors.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error represents runtime errors with line attribution. Errors propagate
// through the evaluator on the same channel as values and abort every
// enclosing construct up to the interpreter entry point.
type Error struct {
	Message string
	Line    int
	Class   serrors.ErrorClass
	Code    string
	Hints   []string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return "ERROR: " + e.Message
}

// ToSorrelError converts this Error to a SorrelError for the driver.
func (e *Error) ToSorrelError() *serrors.SorrelError {
	class := e.Class
	if class == "" {
		class = serrors.ClassOperator
	}
	serr := serrors.NewSimple(class, e.Line, e.Message)
	serr.Code = e.Code
	serr.Hints = e.Hints
	return serr
}

// Function represents user-defined functions. Env is the environment that
// was current at the declaration site; calls chain their frame off it, not
// off the caller, which is what makes closures lexical.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<fn " + f.Name + ">" }

// Arity returns the number of declared parameters
func (f *Function) Arity() int { return len(f.Parameters) }

// BuiltinFunction is the signature of native functions
type BuiltinFunction func(args ...Object) Object

// Builtin represents a built-in function with a fixed arity
type Builtin struct {
	Name   string
	ArityN int
	Fn     BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<native fn>" }

// Singletons; all nil and boolean results are these exact objects, so
// pointer comparison works for them.
var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Logger is the sink for print statements
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...any) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...any) {
	l.Log(values...)
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Environment represents one frame of the lexical scope chain: a mutable
// name→value map with an optional enclosing frame. Environments are heap
// objects; any function value declared while a frame is current keeps that
// frame alive through its closure reference.
type Environment struct {
	store  map[string]Object
	outer  *Environment
	Logger Logger
}

// NewEnvironment creates a new top-level environment
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object), Logger: DefaultLogger}
}

// NewEnclosedEnvironment creates a child frame of outer
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	if outer != nil {
		env.Logger = outer.Logger
	}
	return env
}

// Get walks the chain outward and returns the innermost binding
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Define unconditionally installs name in this frame, shadowing any
// enclosing binding of the same name.
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

// Assign updates the nearest existing binding of name. It reports false
// when the name was never declared; there are no implicit globals.
func (e *Environment) Assign(name string, val Object) bool {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}

// AllIdentifiers returns every name visible from this frame, sorted.
// Used for "Did you mean" hints.
func (e *Environment) AllIdentifiers() []string {
	seen := make(map[string]bool)
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval walks the AST. Every step returns either a value, a *ReturnValue in
// flight, or an *Error in flight; the two carriers propagate until a call
// frame or the interpreter entry point stops them.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node.Statements, env)

	case *ast.ExpressionStatement:
		result := Eval(node.Expression, env)
		if isError(result) || isReturn(result) {
			return result
		}
		// Expression statements discard their value
		return NIL

	case *ast.PrintStatement:
		value := Eval(node.Value, env)
		if isError(value) || isReturn(value) {
			return value
		}
		env.Logger.LogLine(value.Inspect())
		return NIL

	case *ast.VarStatement:
		var value Object = NIL
		if node.Value != nil {
			value = Eval(node.Value, env)
			if isError(value) || isReturn(value) {
				return value
			}
		}
		env.Define(node.Name.Value, value)
		return NIL

	case *ast.BlockStatement:
		return evalBlockStatement(node, env)

	case *ast.IfStatement:
		return evalIfStatement(node, env)

	case *ast.WhileStatement:
		return evalWhileStatement(node, env)

	case *ast.FunctionStatement:
		fn := &Function{
			Name:       node.Name.Value,
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        env,
		}
		env.Define(node.Name.Value, fn)
		return NIL

	case *ast.ReturnStatement:
		var value Object = NIL
		if node.Value != nil {
			value = Eval(node.Value, env)
			if isError(value) {
				return value
			}
		}
		return &ReturnValue{Value: value}

	// Expressions
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NilLiteral:
		return NIL

	case *ast.GroupingExpression:
		return Eval(node.Expression, env)

	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node, right)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node, left, right)

	case *ast.LogicalExpression:
		return evalLogicalExpression(node, env)

	case *ast.AssignExpression:
		return evalAssignExpression(node, env)

	case *ast.CallExpression:
		return evalCallExpression(node, env)
	}

	return newError("unhandled node %T", node)
}

// evalProgram runs top-level statements. A stray return at the top level
// unwraps to its value; an error stops the program.
func evalProgram(stmts []ast.Statement, env *Environment) Object {
	var result Object = NIL

	for _, statement := range stmts {
		result = Eval(statement, env)

		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		}
	}

	return result
}

// evalBlockStatement executes a block in a fresh child frame. The child is
// local to this call; the caller's environment pointer is untouched on
// every exit path, including error and return unwinds.
func evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	blockEnv := NewEnclosedEnvironment(env)
	return evalStatements(block.Statements, blockEnv)
}

// evalStatements runs statements in the given frame, passing unwind
// carriers (returns and errors) straight through.
func evalStatements(stmts []ast.Statement, env *Environment) Object {
	for _, statement := range stmts {
		result := Eval(statement, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
	return NIL
}

func evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	condition := Eval(node.Condition, env)
	if isError(condition) {
		return condition
	}

	if isTruthy(condition) {
		return Eval(node.Consequence, env)
	}
	if node.Alternative != nil {
		return Eval(node.Alternative, env)
	}
	return NIL
}

func evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	for {
		condition := Eval(node.Condition, env)
		if isError(condition) {
			return condition
		}
		if !isTruthy(condition) {
			return NIL
		}

		result := Eval(node.Body, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	value, ok := env.Get(node.Value)
	if !ok {
		return newUndefinedVariableError(node.Token, env)
	}
	return value
}

func evalAssignExpression(node *ast.AssignExpression, env *Environment) Object {
	value := Eval(node.Value, env)
	if isError(value) {
		return value
	}

	if !env.Assign(node.Name.Value, value) {
		return newUndefinedVariableError(node.Name.Token, env)
	}
	// Assignment is an expression; it yields the assigned value
	return value
}

func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	callee := Eval(node.Callee, env)
	if isError(callee) {
		return callee
	}

	args, errObj := evalExpressions(node.Arguments, env)
	if errObj != nil {
		return errObj
	}

	return applyFunction(callee, args, node.Paren)
}

// evalExpressions evaluates call arguments strictly left to right,
// stopping at the first error.
func evalExpressions(exps []ast.Expression, env *Environment) ([]Object, Object) {
	result := make([]Object, 0, len(exps))

	for _, e := range exps {
		evaluated := Eval(e, env)
		if isError(evaluated) {
			return nil, evaluated
		}
		result = append(result, evaluated)
	}

	return result, nil
}

// applyFunction invokes a callable. User functions run their body in a
// fresh frame chained off the captured closure environment, with
// parameters bound by Define; a ReturnValue coming out of the body is
// unwrapped here and only here.
func applyFunction(fn Object, args []Object, paren lexer.Token) Object {
	switch fn := fn.(type) {
	case *Function:
		if len(args) != fn.Arity() {
			return newArityError(fn.Arity(), len(args), paren)
		}
		frameEnv := NewEnclosedEnvironment(fn.Env)
		for i, param := range fn.Parameters {
			frameEnv.Define(param.Value, args[i])
		}
		evaluated := evalStatements(fn.Body.Statements, frameEnv)
		return unwrapReturnValue(evaluated)
	case *Builtin:
		if len(args) != fn.ArityN {
			return newArityError(fn.ArityN, len(args), paren)
		}
		return fn.Fn(args...)
	default:
		return newErrorWithClassAndPos(serrors.ClassType, paren, "Can only call functions.")
	}
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	if isError(obj) {
		return obj
	}
	// A body that runs off the end yields nil
	return NIL
}

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func isReturn(obj Object) bool {
	if obj != nil {
		return obj.Type() == RETURN_OBJ
	}
	return false
}

// FormatNumber renders a float the way the language prints numbers.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
