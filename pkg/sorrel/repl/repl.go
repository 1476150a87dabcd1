// Package repl implements the interactive prompt: line editing, persisted
// history, tab completion, and multi-line input for unclosed blocks.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/sorrel-lang/sorrel/config"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/evaluator"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/sorrel"
)

const CONTINUATION_PROMPT = ".. "

// completionWords lists the keywords and builtins offered by tab
// completion.
var completionWords = buildCompletionWords()

func buildCompletionWords() []string {
	words := append(lexer.Keywords(), evaluator.BuiltinNames()...)
	sort.Strings(words)
	return words
}

// Start runs the read-eval loop until EOF on stdin. The runner's globals
// persist across lines so definitions accumulate; the static error flag
// resets every line so one typo does not poison the session.
func Start(out io.Writer, runner *sorrel.Runner, cfg *config.REPLConfig, version string) {
	runner.SetLogger(sorrel.WriterLogger(out))

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if cfg.Completion {
		line.SetCompleter(func(line string) []string {
			return filterCompletions(line)
		})
	}

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".sorrel_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "sorrel v%s\n", version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := cfg.Prompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C clears any buffered input
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			return
		}
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		line.AppendHistory(fullInput)

		// Each line is a fresh pipeline run against the shared globals;
		// a scan/parse error on this line must not block the next one.
		runner.ResetErrors()
		runner.Run(fullInput, "<repl>")

		inputBuffer.Reset()
	}
}

// needsMoreInput reports whether the buffered input has unclosed braces
// or parens (outside string literals), meaning the statement continues on
// the next line.
func needsMoreInput(input string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if inString {
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		case '/':
			// Line comments hide the rest of the line
			if i+1 < len(input) && input[i+1] == '/' {
				for i < len(input) && input[i] != '\n' {
					i++
				}
			}
		}
	}
	// An unterminated string also waits for more input
	return depth > 0 || inString
}

// filterCompletions returns completion words matching the trailing
// identifier of the current line.
func filterCompletions(line string) []string {
	start := len(line)
	for start > 0 {
		ch := line[start-1]
		if ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' {
			start--
			continue
		}
		break
	}
	prefix := line[start:]
	if prefix == "" {
		return nil
	}

	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, prefix) {
			matches = append(matches, line[:start]+word)
		}
	}
	return matches
}
