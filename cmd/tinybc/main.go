// Command tinybc runs tinybc source files and provides a REPL, following
// spec.md §6's CLI contract: zero args starts the prompt, one arg runs a
// file, more than one is a usage error (exit 64). Subcommands and flags
// layer discoverable diagnostics on top without changing that contract
// (see SPEC_FULL.md §6.1).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kristofer/tinybc/internal/config"
	"github.com/kristofer/tinybc/internal/logging"
	"github.com/kristofer/tinybc/pkg/compiler"
	"github.com/kristofer/tinybc/pkg/debug"
	"github.com/kristofer/tinybc/pkg/scanner"
	"github.com/kristofer/tinybc/pkg/token"
	"github.com/kristofer/tinybc/pkg/value"
	"github.com/kristofer/tinybc/pkg/vm"
)

const (
	exitOK           = 0
	exitUsage        = 64
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runREPL(config.Default().ApplyEnv(false, false, false, false))
	}

	switch args[0] {
	case "repl":
		settings, rest := parseGlobalFlags("repl", args[1:])
		if len(rest) != 0 {
			printUsage()
			return exitUsage
		}
		return runREPL(settings)
	case "run":
		settings, rest := parseGlobalFlags("run", args[1:])
		if len(rest) != 1 {
			printUsage()
			return exitUsage
		}
		return runFile(rest[0], settings)
	case "tokens":
		if len(args) != 2 {
			printUsage()
			return exitUsage
		}
		return runTokens(args[1])
	case "disasm":
		if len(args) != 2 {
			printUsage()
			return exitUsage
		}
		return runDisasm(args[1])
	default:
		if len(args) != 1 {
			printUsage()
			return exitUsage
		}
		return runFile(args[0], config.Default().ApplyEnv(false, false, false, false))
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  tinybc                 start the interactive prompt")
	fmt.Fprintln(os.Stderr, "  tinybc <script>        run a script")
	fmt.Fprintln(os.Stderr, "  tinybc repl            start the interactive prompt")
	fmt.Fprintln(os.Stderr, "  tinybc run <script>    run a script")
	fmt.Fprintln(os.Stderr, "  tinybc tokens <script> print the token stream")
	fmt.Fprintln(os.Stderr, "  tinybc disasm <script> print the compiled bytecode")
}

// parseGlobalFlags parses the -trace/-stack-size/-max-frames/-log-level
// flags shared by the repl and run subcommands, layered over
// config.Default() with env-var fallback (SPEC_FULL.md §6.2).
func parseGlobalFlags(name string, args []string) (config.Settings, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	defaults := config.Default()

	trace := fs.Bool("trace", defaults.Trace, "enable instruction tracing to stderr")
	stackSize := fs.Int("stack-size", defaults.StackSize, "initial value stack capacity")
	maxFrames := fs.Int("max-frames", defaults.MaxFrames, "maximum call-frame depth")
	logLevel := fs.String("log-level", defaults.LogLevel.String(), "tinybc diagnostics level: debug|info|warn|error")

	_ = fs.Parse(args)

	lvl, ok := logging.ParseLevel(*logLevel)
	if !ok {
		lvl = defaults.LogLevel
	}

	settings := config.Settings{
		StackSize: *stackSize,
		MaxFrames: *maxFrames,
		Trace:     *trace,
		LogLevel:  lvl,
	}.ApplyEnv(flagSet(fs, "stack-size"), flagSet(fs, "max-frames"), flagSet(fs, "trace"), flagSet(fs, "log-level"))

	return settings, fs.Args()
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func runFile(path string, settings config.Settings) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tinybc: %v\n", err)
		return exitIOError
	}

	logger := logging.New(os.Stderr, settings.LogLevel)
	logger.Debugf("running %s (stack=%d max-frames=%d trace=%v)", path, settings.StackSize, settings.MaxFrames, settings.Trace)

	machine := vm.New(settings.VMConfig(), os.Stdout, os.Stderr)
	switch machine.Interpret(string(src)) {
	case vm.CompileError:
		return exitCompileError
	case vm.RuntimeError:
		return exitRuntimeError
	default:
		return exitOK
	}
}

// runREPL implements spec.md §6's prompt loop: print "> ", read one line,
// interpret it immediately, repeat until EOF. Globals persist across lines
// because the same *vm.VM runs every line; locals do not, since each line
// is its own top-level script.
func runREPL(settings config.Settings) int {
	logger := logging.New(os.Stderr, settings.LogLevel)
	machine := vm.New(settings.VMConfig(), os.Stdout, os.Stderr)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := in.Text()
		if line == "" {
			continue
		}
		machine.Interpret(line)
	}
	if err := in.Err(); err != nil {
		logger.Errorf("reading stdin: %v", err)
		return exitIOError
	}
	return exitOK
}

func runTokens(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tinybc: %v\n", err)
		return exitIOError
	}
	printTokens(os.Stdout, string(src))
	return exitOK
}

func printTokens(w io.Writer, src string) {
	s := scanner.New(src)
	for {
		t := s.Next()
		fmt.Fprintf(w, "%-20s %4d '%s'\n", t.Kind, t.Line, t.Lexeme)
		if t.Kind == token.EOF {
			return
		}
	}
}

func runDisasm(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tinybc: %v\n", err)
		return exitIOError
	}

	arena := value.NewArena()
	fn, ok := compiler.Compile(string(src), arena, os.Stderr)
	if !ok {
		return exitCompileError
	}
	disassembleFunction(os.Stdout, arena, fn)
	return exitOK
}

func disassembleFunction(w io.Writer, arena *value.Arena, fn *value.FunctionObj) {
	name := "<script>"
	if fn.Name != value.NilRef {
		name = arena.String(fn.Name).Chars
	}
	debug.Disassemble(w, fn.Chunk, arena, name)

	for _, c := range fn.Chunk.Constants {
		if !c.IsObj() || arena.Kind(c.AsRef()) != value.ObjFunction {
			continue
		}
		fmt.Fprintln(w)
		disassembleFunction(w, arena, arena.Function(c.AsRef()))
	}
}
