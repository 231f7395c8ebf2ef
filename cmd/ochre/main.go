package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"ochre/internal/debug"
	"ochre/internal/heap"
	"ochre/internal/hostconfig"
	"ochre/internal/repl"
	"ochre/internal/vm"
)

const version = "0.1.0"

// sysexits.h conventions, per the language's CLI contract.
const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitIO      = 74
)

func main() {
	debugMode := false
	traceMode := false
	var paths []string
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-debug", "--debug":
			debugMode = true
		case "-trace", "--trace":
			traceMode = true
		case "-version", "--version":
			fmt.Printf("ochre %s\n", version)
			return
		case "-help", "--help", "-h":
			usage(os.Stdout)
			return
		default:
			if len(arg) > 0 && arg[0] == '-' {
				usage(os.Stderr)
				os.Exit(exitUsage)
			}
			paths = append(paths, arg)
		}
	}

	switch len(paths) {
	case 0:
		cfg := loadConfig("")
		repl.Start(cfg, debugMode, traceMode)
	case 1:
		runFile(paths[0], debugMode, traceMode)
	default:
		usage(os.Stderr)
		os.Exit(exitUsage)
	}
}

func usage(w *os.File) {
	fmt.Fprintln(w, "Usage: ochre [-debug] [-trace] [path]")
	fmt.Fprintln(w, "  ochre            Start interactive REPL")
	fmt.Fprintln(w, "  ochre <path>     Run a script")
	fmt.Fprintln(w, "  ochre -debug     Also print chunk disassembly before running")
	fmt.Fprintln(w, "  ochre -trace     Also print the stack and each instruction as it executes")
	fmt.Fprintln(w, "  ochre -version   Print version and exit")
}

// loadConfig reads the nearest .ochrerc.toml. A broken config file is
// worth a warning with its cause chain, not a refusal to run.
func loadConfig(dir string) hostconfig.Config {
	cfg, err := hostconfig.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ochre: %+v\n", err)
	}
	return cfg
}

func runFile(path string, debugMode, traceMode bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ochre: %v\n", errors.Wrapf(err, "could not read %q", path))
		os.Exit(exitIO)
	}

	cfg := loadConfig(filepath.Dir(path))

	h := heap.New()
	defer h.Free()
	machine := vm.New(h, os.Stdout, os.Stderr)
	if debugMode || cfg.Disassemble {
		machine.Debug = os.Stderr
		debug.Banner(os.Stderr, path)
	}
	if traceMode {
		machine.Trace = os.Stderr
	}

	switch machine.Interpret(string(source)) {
	case vm.ResultCompileError:
		os.Exit(exitCompile)
	case vm.ResultRuntimeError:
		os.Exit(exitRuntime)
	}
}
