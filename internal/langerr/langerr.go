// Package langerr defines the error types the compiler and VM report to
// the host. Language-level diagnostics (bad syntax, a runtime type
// mismatch) format exactly per the language's own convention and carry no
// Go stack trace; that is host implementation detail the guest program's
// author has no use for. Host-side failures (a file
// that can't be read, a config file that doesn't parse) go through
// github.com/pkg/errors instead, so they carry a stack trace that main can
// print (it does so with %+v for a broken config file).
package langerr

import "fmt"

// CompileError is a single reported compile-time diagnostic, formatted
// "[line N] Error at '<lexeme>': <msg>" or "[line N] Error at end: <msg>"
// for an EOF token.
type CompileError struct {
	Line    int
	Where   string // "" for a lexical error, "at end", or "at '<lexeme>'"
	Message string
}

func (e *CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error %s: %s", e.Line, e.Where, e.Message)
}

// RuntimeFrame is one entry of a runtime error's stack trace.
type RuntimeFrame struct {
	Line int
	Name string // "<name>()" for a function, or "script" for the top-level frame
}

// RuntimeError is raised by the VM. Message is the one-line diagnostic;
// Frames is the call stack at the point of failure, top frame first.
type RuntimeError struct {
	Message string
	Frames  []RuntimeFrame
}

func (e *RuntimeError) Error() string { return e.Message }
