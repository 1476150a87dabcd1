package evaluator

import (
	"math"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
)

// isTruthy implements the language's truthiness rule: only nil and false
// are falsy. 0 and "" are truthy.
func isTruthy(obj Object) bool {
	switch obj {
	case NIL:
		return false
	case TRUE:
		return true
	case FALSE:
		return false
	default:
		return true
	}
}

func evalPrefixExpression(node *ast.PrefixExpression, right Object) Object {
	switch node.Operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		num, ok := right.(*Number)
		if !ok {
			return newCatalogError("TYPE-0001", node.Token, nil)
		}
		return &Number{Value: -num.Value}
	default:
		return newErrorWithClassAndPos(serrors.ClassOperator, node.Token,
			"unknown operator: %s", node.Operator)
	}
}

func evalInfixExpression(node *ast.InfixExpression, left, right Object) Object {
	switch node.Operator {
	case "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	case "+":
		return evalPlusOperator(node, left, right)
	case "-", "*", "/", "<", "<=", ">", ">=":
		return evalNumericOperator(node, left, right)
	default:
		return newErrorWithClassAndPos(serrors.ClassOperator, node.Token,
			"unknown operator: %s", node.Operator)
	}
}

// evalPlusOperator adds two Numbers or concatenates two Strings; any
// other combination is a type error.
func evalPlusOperator(node *ast.InfixExpression, left, right Object) Object {
	if l, ok := left.(*Number); ok {
		if r, ok := right.(*Number); ok {
			return &Number{Value: l.Value + r.Value}
		}
	}
	if l, ok := left.(*String); ok {
		if r, ok := right.(*String); ok {
			return &String{Value: l.Value + r.Value}
		}
	}
	return newCatalogError("TYPE-0003", node.Token, nil)
}

// evalNumericOperator handles arithmetic and ordering, both Numbers only.
// Division by zero follows IEEE-754: it yields an infinity or NaN, not an
// error.
func evalNumericOperator(node *ast.InfixExpression, left, right Object) Object {
	l, lok := left.(*Number)
	r, rok := right.(*Number)
	if !lok || !rok {
		return newCatalogError("TYPE-0002", node.Token, nil)
	}

	switch node.Operator {
	case "-":
		return &Number{Value: l.Value - r.Value}
	case "*":
		return &Number{Value: l.Value * r.Value}
	case "/":
		return &Number{Value: l.Value / r.Value}
	case "<":
		return nativeBoolToBooleanObject(l.Value < r.Value)
	case "<=":
		return nativeBoolToBooleanObject(l.Value <= r.Value)
	case ">":
		return nativeBoolToBooleanObject(l.Value > r.Value)
	case ">=":
		return nativeBoolToBooleanObject(l.Value >= r.Value)
	default:
		return newErrorWithClassAndPos(serrors.ClassOperator, node.Token,
			"unknown operator: %s", node.Operator)
	}
}

// objectsEqual implements value equality: different types are never
// equal, numbers compare by IEEE-754 (so NaN != NaN), strings bytewise,
// callables by identity.
func objectsEqual(left, right Object) bool {
	switch l := left.(type) {
	case *Nil:
		_, ok := right.(*Nil)
		return ok
	case *Boolean:
		r, ok := right.(*Boolean)
		return ok && l.Value == r.Value
	case *Number:
		r, ok := right.(*Number)
		if !ok {
			return false
		}
		if math.IsNaN(l.Value) || math.IsNaN(r.Value) {
			return false
		}
		return l.Value == r.Value
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	default:
		// Functions and builtins compare by identity
		return left == right
	}
}

// evalLogicalExpression short-circuits: the right operand is only
// evaluated when the left does not decide the result. The result is the
// boolean projection of the deciding operand, never the operand itself.
func evalLogicalExpression(node *ast.LogicalExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}

	if node.Operator == "or" {
		if isTruthy(left) {
			return TRUE
		}
	} else {
		if !isTruthy(left) {
			return FALSE
		}
	}

	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return nativeBoolToBooleanObject(isTruthy(right))
}
