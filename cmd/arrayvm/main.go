package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/funvibe/arrayvm/internal/config"
	"github.com/funvibe/arrayvm/internal/program"
	"github.com/funvibe/arrayvm/internal/sink"
	"github.com/funvibe/arrayvm/internal/vm"
)

var log = commonlog.GetLogger("arrayvm")

const usage = `Usage: arrayvm [options] <tape.yaml>

Options:
  -config <file>   settings file (arrayvm.yaml or arrayvm.toml is searched for otherwise)
  -v, -vv          increase log verbosity
  -disasm          print the compiled bytecode instead of running it
  -builtins        list the builtin instructions
  -help            show this message
`

// cliOptions holds parsed command-line arguments.
type cliOptions struct {
	tape       string
	configPath string
	verbosity  int
	disasm     bool
	builtins   bool
	help       bool
}

func parseArgs(args []string) (*cliOptions, error) {
	opts := &cliOptions{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-help" || arg == "--help" || arg == "-h":
			opts.help = true
		case arg == "-disasm" || arg == "--disasm":
			opts.disasm = true
		case arg == "-builtins" || arg == "--builtins":
			opts.builtins = true
		case arg == "-config" || arg == "--config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a file", arg)
			}
			i++
			opts.configPath = args[i]
		case strings.HasPrefix(arg, "-v") && strings.Trim(arg[1:], "v") == "":
			opts.verbosity += len(arg) - 1
		case strings.HasPrefix(arg, "-verbosity="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "-verbosity="))
			if err != nil {
				return nil, fmt.Errorf("invalid verbosity: %w", err)
			}
			opts.verbosity = n
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown option %s", arg)
		default:
			if opts.tape != "" {
				return nil, fmt.Errorf("only one tape may be given")
			}
			opts.tape = arg
		}
	}
	return opts, nil
}

// loadSettings reads the settings file named on the command line, or the
// nearest one above the tape, or falls back to defaults.
func loadSettings(opts *cliOptions) (*config.Settings, error) {
	if opts.configPath != "" {
		return config.LoadSettings(opts.configPath)
	}
	dir := "."
	if opts.tape != "" {
		dir = filepath.Dir(opts.tape)
	}
	path, err := config.FindSettings(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadSettings(path)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, usage)
		return 2
	}
	if opts.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if opts.builtins {
		for _, name := range vm.BuiltinNames() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}
	if opts.tape == "" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	settings, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	commonlog.Configure(max(opts.verbosity, settings.Verbosity), nil)

	registry := sink.NewRegistry()
	defer func() {
		if err := registry.CloseAll(); err != nil {
			log.Errorf("closing files: %s", err)
		}
	}()

	std := sink.NewStdoutWriter(stdout, sink.WithSettings(settings))
	defer std.Flush()
	machine := vm.New(std)

	chunk, err := program.CompileFile(opts.tape, machine.HasBuiltin,
		sink.WithSettings(settings), sink.WithRegistry(registry))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.disasm {
		fmt.Fprint(stdout, vm.Disassemble(chunk, opts.tape))
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	machine.SetContext(ctx)

	result, err := machine.Run(chunk)
	if err != nil {
		std.Flush()
		if errors.Is(err, vm.ErrInterrupted) {
			fmt.Fprintln(stderr, "Interrupted")
			return 130
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if !result.IsDefault() && result.Type != vm.ValSink {
		if err := errors.Join(std.WriteString(result.Inspect()), std.WriteLine()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	log.Infof("%s: %d open files at exit", opts.tape, registry.Len())
	return 0
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
