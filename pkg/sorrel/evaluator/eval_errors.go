package evaluator

import (
	"fmt"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// newError creates a runtime error without position information.
func newError(format string, a ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, a...), Class: serrors.ClassOperator}
}

// newErrorWithClassAndPos creates an error with class and line attribution
// taken from the offending token.
func newErrorWithClassAndPos(class serrors.ErrorClass, tok lexer.Token, format string, a ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(format, a...),
		Class:   class,
		Line:    tok.Line,
	}
}

// newCatalogError renders a catalog message and attributes it to a token.
func newCatalogError(code string, tok lexer.Token, data map[string]any) *Error {
	serr := serrors.NewWithLine(code, tok.Line, data)
	return &Error{
		Message: serr.Message,
		Class:   serr.Class,
		Code:    serr.Code,
		Hints:   serr.Hints,
		Line:    serr.Line,
	}
}

// newArityError reports an argument-count mismatch at the call site.
func newArityError(want, got int, paren lexer.Token) *Error {
	return newCatalogError("ARITY-0001", paren, map[string]any{
		"Want": want,
		"Got":  got,
	})
}

// newUndefinedVariableError reports an unresolved name, with a fuzzy
// suggestion when a nearby binding exists.
func newUndefinedVariableError(tok lexer.Token, env *Environment) *Error {
	serr := serrors.NewUndefinedVariable(tok.Lexeme, tok.Line, env.AllIdentifiers())
	return &Error{
		Message: serr.Message,
		Class:   serr.Class,
		Code:    serr.Code,
		Hints:   serr.Hints,
		Line:    serr.Line,
	}
}
