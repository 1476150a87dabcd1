package sorrel

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/evaluator"
)

// Logger is an alias for evaluator.Logger for convenience
type Logger = evaluator.Logger

// writerLogger directs print output at an io.Writer
type writerLogger struct {
	w io.Writer
}

func (l *writerLogger) Log(values ...any) {
	io.WriteString(l.w, joinValues(values))
}

func (l *writerLogger) LogLine(values ...any) {
	io.WriteString(l.w, joinValues(values)+"\n")
}

// WriterLogger returns a logger that writes print output to w. The CLI
// and REPL route program output through this.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// BufferedLogger captures print output for later retrieval, line by line.
// A Log without a following LogLine stays pending until the next LogLine
// completes it.
type BufferedLogger struct {
	mu      sync.Mutex
	lines   []string
	pending strings.Builder
}

// NewBufferedLogger creates a new buffered logger
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(joinValues(values))
}

func (l *BufferedLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(joinValues(values))
	l.lines = append(l.lines, l.pending.String())
	l.pending.Reset()
}

// String returns all captured output as a single string
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sb strings.Builder
	for _, line := range l.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(l.pending.String())
	return sb.String()
}

// Lines returns the completed output lines
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]string, len(l.lines))
	copy(result, l.lines)
	return result
}

// Reset clears all captured output
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.pending.Reset()
}

// joinValues renders print arguments the way the print statement joins
// them: space-separated.
func joinValues(values []any) string {
	if len(values) == 1 {
		return fmt.Sprint(values[0])
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
