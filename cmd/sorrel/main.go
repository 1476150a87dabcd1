package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sorrel-lang/sorrel/config"
	"github.com/sorrel-lang/sorrel/internal/watch"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/format"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/parser"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/repl"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/sorrel"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	// Evaluation flags
	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	checkFlag    = flag.Bool("check", false, "Check syntax without executing")
	watchFlag    = flag.Bool("watch", false, "Re-run the script when it changes")

	// Configuration
	configFlag = flag.String("config", "", "Path to sorrel.yaml")
)

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 && os.Args[1] == "fmt" {
		os.Exit(fmtCommand(os.Args[2:]))
	}

	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(sorrel.ExitOK)
	}
	if *versionFlag || *versionLongFlag {
		fmt.Printf("sorrel version %s\n", Version)
		os.Exit(sorrel.ExitOK)
	}

	cfg, err := config.Load(*configFlag, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(sorrel.ExitUsage)
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		os.Exit(executeInline(evalCode))
	case *checkFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one file")
			os.Exit(sorrel.ExitUsage)
		}
		os.Exit(checkFiles(files))
	case len(flag.Args()) == 1:
		filename := flag.Args()[0]
		if *watchFlag {
			os.Exit(watchFile(filename, cfg))
		}
		os.Exit(executeFile(filename))
	case len(flag.Args()) > 1:
		fmt.Fprintln(os.Stderr, "Usage: sorrel [script]")
		os.Exit(sorrel.ExitUsage)
	default:
		runner := sorrel.New()
		repl.Start(os.Stdout, runner, &cfg.REPL, Version)
		os.Exit(sorrel.ExitOK)
	}
}

func printHelp() {
	fmt.Printf(`sorrel - Sorrel language interpreter version %s

Usage:
  sorrel [options] [file]
  sorrel -e "code"
  sorrel --check <file>...
  sorrel fmt [-w] <file>...

Commands:
  fmt                   Format Sorrel source files

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate a code string
  --check               Check syntax without executing
  --watch               Re-run the script whenever it changes
  --config <path>       Use a specific sorrel.yaml

Examples:
  sorrel                    Start interactive prompt
  sorrel script.sor         Execute a Sorrel script
  sorrel --watch script.sor Re-run script.sor on every save
  sorrel -e "print 1 + 2;"  Evaluate inline code
  sorrel --check script.sor Check syntax without executing
  sorrel fmt -w script.sor  Format a Sorrel file in place

Exit codes:
  0   success
  64  usage error
  65  scan or parse error
  70  runtime error
`, Version)
}

// executeInline evaluates inline code provided via the -e flag
func executeInline(code string) int {
	runner := sorrel.New()
	runner.SetLogger(sorrel.WriterLogger(os.Stdout))
	runner.Run(code, "<eval>")
	return runner.ExitCode()
}

// checkFiles checks the syntax of one or more files without executing them
func checkFiles(files []string) int {
	runner := sorrel.New()
	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return sorrel.ExitUsage
		}
		runner.Check(string(content), filename)
	}
	return runner.ExitCode()
}

// executeFile reads and executes a source file once
func executeFile(filename string) int {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		return sorrel.ExitUsage
	}

	runner := sorrel.New()
	runner.SetLogger(sorrel.WriterLogger(os.Stdout))
	runner.Run(string(content), filename)
	return runner.ExitCode()
}

// watchFile runs the script, then re-runs it on every change until
// interrupted.
func watchFile(filename string, cfg *config.Config) int {
	run := func() {
		if cfg.Watch.ClearScreen {
			fmt.Print("\033[2J\033[H")
		}
		code := executeFile(filename)
		if code != sorrel.ExitOK {
			fmt.Fprintf(os.Stderr, "[exit %d]\n", code)
		}
	}
	run()

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	watcher, err := watch.NewWatcher(filename, debounce, os.Stderr, run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return sorrel.ExitUsage
	}

	fmt.Fprintf(os.Stderr, "watching %s\n", filename)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watcher.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return sorrel.ExitUsage
	}
	return sorrel.ExitOK
}

// fmtCommand implements the 'sorrel fmt' subcommand
func fmtCommand(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	write := fs.Bool("w", false, "Write result to source file instead of stdout")
	fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: sorrel fmt [-w] <file>...")
		return sorrel.ExitUsage
	}

	exitCode := sorrel.ExitOK
	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return sorrel.ExitUsage
		}

		l := lexer.NewWithFilename(string(content), filename)
		p := parser.New(l)
		program := p.ParseProgram()

		static := append(l.Errors(), p.Errors()...)
		if len(static) > 0 {
			for _, serr := range static {
				fmt.Fprintln(os.Stderr, serr.Report())
			}
			exitCode = sorrel.ExitStaticError
			continue
		}

		formatted := format.Program(program)
		if *write {
			if err := os.WriteFile(filename, []byte(formatted), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
				return sorrel.ExitUsage
			}
		} else {
			fmt.Print(formatted)
		}
	}
	return exitCode
}
