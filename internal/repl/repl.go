// Package repl implements the interactive read-eval-print loop. One heap
// and one VM live for the whole session, so globals defined on one line
// are visible on the next.
package repl

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"ochre/internal/debug"
	"ochre/internal/heap"
	"ochre/internal/hostconfig"
	"ochre/internal/vm"
)

// Start runs the REPL over stdin until EOF. When stdin or stdout is not a
// terminal (a script piped in), the banner and prompt are suppressed so
// the output is just the program's own.
func Start(cfg hostconfig.Config, debugMode, traceMode bool) {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	h := heap.New()
	defer h.Free()
	machine := vm.New(h, os.Stdout, os.Stderr)
	if debugMode || cfg.Disassemble {
		machine.Debug = os.Stderr
		debug.Banner(os.Stderr, "repl")
	}
	if traceMode {
		machine.Trace = os.Stderr
	}

	if interactive {
		fmt.Println("ochre repl")
	}

	var transcript []string
	in := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print(cfg.Prompt)
		}
		if !in.Scan() {
			if interactive {
				fmt.Println()
			}
			return
		}
		line := in.Text()

		// Host-side commands, only in an interactive session. "exit"
		// ends the loop; ":history" replays the retained transcript.
		if interactive {
			switch line {
			case "exit":
				return
			case ":history":
				for _, prior := range transcript {
					fmt.Println(prior)
				}
				continue
			}
		}

		transcript = append(transcript, line)
		if len(transcript) > cfg.Scrollback {
			transcript = transcript[len(transcript)-cfg.Scrollback:]
		}

		machine.Interpret(line)
	}
}
