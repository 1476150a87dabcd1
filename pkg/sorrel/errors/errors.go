// Package errors provides structured error types for the Sorrel language.
//
// This package defines SorrelError, a unified error type that can represent
// scan, parse, and runtime errors with enough metadata for display and
// programmatic handling.
package errors

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassScan      ErrorClass = "scan"      // Lexer errors
	ClassParse     ErrorClass = "parse"     // Parser/syntax errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassOperator  ErrorClass = "operator"  // Invalid operations
)

// SorrelError represents any error from scanning, parsing, or evaluation.
type SorrelError struct {
	Class   ErrorClass // Error category
	Code    string     // Error code (e.g., "TYPE-0001")
	Message string     // Human-readable message
	Hints   []string   // Suggestions for fixing
	Line    int        // 1-based line (0 if unknown)
	Lexeme  string     // Offending lexeme, if any
	File    string     // File path (if known)
}

// Error implements the error interface.
func (e *SorrelError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *SorrelError) String() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// Report returns the wire diagnostic format for this error, as printed on
// stderr by the driver. Scan and parse errors use the compiler-style prefix
// form; runtime errors put the line attribution on a trailing line.
func (e *SorrelError) Report() string {
	if e.IsStaticError() {
		return fmt.Sprintf("[Line: %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Line)
}

// IsStaticError returns true for errors detected before execution.
func (e *SorrelError) IsStaticError() bool {
	return e.Class == ClassScan || e.Class == ClassParse
}

// IsRuntimeError returns true if this is an evaluation-time error.
func (e *SorrelError) IsRuntimeError() bool {
	return !e.IsStaticError()
}

// WithFile returns a copy of the error with the file path set.
func (e *SorrelError) WithFile(file string) *SorrelError {
	copy := *e
	copy.File = file
	return &copy
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Scan errors (SCAN-0xxx)
	"SCAN-0001": {
		Class:    ClassScan,
		Template: "Unexpected character '{{.Char}}'.",
	},
	"SCAN-0002": {
		Class:    ClassScan,
		Template: "Unterminated string.",
	},
	"SCAN-0003": {
		Class:    ClassScan,
		Template: "Invalid number literal '{{.Literal}}'.",
	},

	// Parse errors (PARSE-0xxx)
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "Expect {{.Expected}}, got '{{.Got}}'.",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "Expect expression, got '{{.Got}}'.",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "Invalid assignment target.",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "Can't have more than {{.Max}} arguments.",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "Can't have more than {{.Max}} parameters.",
	},

	// Type errors (TYPE-0xxx)
	"TYPE-0001": {
		Class:    ClassType,
		Template: "Operand must be a Number.",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "Operands must be Numbers.",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "Operands must be two Number or two String.",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "Can only call functions.",
	},

	// Arity errors (ARITY-0xxx)
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "Expected {{.Want}} arguments but got {{.Got}}.",
	},

	// Undefined errors (UNDEF-0xxx)
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "Undefined variable '{{.Name}}'.",
		// Hint "Did you mean `X`?" added dynamically by fuzzy matching
	},
}

// New creates a SorrelError from the catalog, rendering its message and
// hint templates with the given data.
func New(code string, data map[string]any) *SorrelError {
	def, ok := ErrorCatalog[code]
	if !ok {
		return &SorrelError{
			Class:   ClassOperator,
			Code:    code,
			Message: fmt.Sprintf("unknown error code %s", code),
		}
	}

	hints := make([]string, 0, len(def.Hints))
	for _, h := range def.Hints {
		hints = append(hints, renderTemplate(h, data))
	}

	return &SorrelError{
		Class:   def.Class,
		Code:    code,
		Message: renderTemplate(def.Template, data),
		Hints:   hints,
	}
}

// NewWithLine creates a catalog error with line attribution.
func NewWithLine(code string, line int, data map[string]any) *SorrelError {
	err := New(code, data)
	err.Line = line
	return err
}

// NewSimple creates an ad-hoc error without a catalog entry.
func NewSimple(class ErrorClass, line int, message string) *SorrelError {
	return &SorrelError{Class: class, Line: line, Message: message}
}

// renderTemplate renders a message template against data; on template
// failure the raw template text is returned rather than hiding the error.
func renderTemplate(tmplStr string, data map[string]any) string {
	tmpl, err := template.New("msg").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}
	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// FindClosestMatch returns the candidate closest to input, or "" when
// nothing is near enough to be a plausible typo.
func FindClosestMatch(input string, candidates []string) string {
	best := ""
	bestDist := len(input)/2 + 1 // only suggest close matches
	for _, c := range candidates {
		if c == input {
			continue
		}
		d := levenshteinDistance(input, c)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// NewUndefinedVariable builds the undefined-variable error, adding a
// "Did you mean" hint when a nearby name exists in scope.
func NewUndefinedVariable(name string, line int, available []string) *SorrelError {
	err := NewWithLine("UNDEF-0001", line, map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, fmt.Sprintf("Did you mean `%s`?", suggestion))
	}
	return err
}
