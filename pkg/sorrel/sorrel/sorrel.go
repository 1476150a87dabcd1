// Package sorrel provides a public API for embedding the Sorrel language
// interpreter: a Runner that owns the pipeline state and maps errors to
// the standard exit codes.
package sorrel

import (
	"fmt"
	"io"
	"os"

	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/evaluator"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
)

// Exit codes used by the CLI.
const (
	ExitOK           = 0
	ExitUsage        = 64 // command line usage error
	ExitStaticError  = 65 // scan or parse error
	ExitRuntimeError = 70 // runtime error
)

// Runner drives the source → lexer → parser → evaluator pipeline. The
// globals environment persists across Run calls, so a REPL can feed it
// one line at a time and keep definitions; the error flags are fields so
// the REPL can reset them between lines.
type Runner struct {
	globals *evaluator.Environment
	stderr  io.Writer

	HadError        bool // a scan or parse error occurred
	HadRuntimeError bool // a runtime error occurred
}

// New creates a Runner with the built-ins installed in its globals.
func New() *Runner {
	globals := evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(globals)
	return &Runner{globals: globals, stderr: os.Stderr}
}

// SetLogger redirects print output, e.g. to a buffer in tests.
func (r *Runner) SetLogger(logger evaluator.Logger) {
	r.globals.Logger = logger
}

// SetStderr redirects diagnostics.
func (r *Runner) SetStderr(w io.Writer) {
	r.stderr = w
}

// ResetErrors clears the static error flag. The REPL calls this between
// lines; the runtime flag is sticky so the exit code survives.
func (r *Runner) ResetErrors() {
	r.HadError = false
}

// Run executes source. Scan and parse errors are all reported before
// execution is refused; a runtime error stops execution at the failing
// statement. Side effects already performed stay performed.
func (r *Runner) Run(source, filename string) {
	l := lexer.NewWithFilename(source, filename)
	p := parser.New(l)
	program := p.ParseProgram()

	// The parser always runs to EOF to surface every diagnostic;
	// execution only happens on a clean pipeline.
	static := append(append([]*serrors.SorrelError{}, l.Errors()...), p.Errors()...)
	if len(static) > 0 {
		for _, err := range static {
			fmt.Fprintln(r.stderr, err.Report())
		}
		r.HadError = true
		return
	}

	result := evaluator.Eval(program, r.globals)
	if errObj, ok := result.(*evaluator.Error); ok {
		fmt.Fprintln(r.stderr, errObj.ToSorrelError().Report())
		r.HadRuntimeError = true
	}
}

// Check lexes and parses source without executing it, reporting any
// static errors. It returns true when the source is clean.
func (r *Runner) Check(source, filename string) bool {
	l := lexer.NewWithFilename(source, filename)
	p := parser.New(l)
	_ = p.ParseProgram()

	static := append(append([]*serrors.SorrelError{}, l.Errors()...), p.Errors()...)
	for _, err := range static {
		fmt.Fprintln(r.stderr, err.Report())
	}
	if len(static) > 0 {
		r.HadError = true
		return false
	}
	return true
}

// ExitCode maps the error flags to the process exit code.
func (r *Runner) ExitCode() int {
	switch {
	case r.HadError:
		return ExitStaticError
	case r.HadRuntimeError:
		return ExitRuntimeError
	default:
		return ExitOK
	}
}
