// Package compiler implements a single-pass Pratt parser wired directly to
// a bytecode emitter: there is no intermediate AST. Parsing a rule and
// emitting its bytecode happen in the same call.
package compiler

import (
	"fmt"
	"io"
	"strconv"

	"ochre/internal/bytecode"
	"ochre/internal/heap"
	"ochre/internal/langerr"
	"ochre/internal/lexer"
	"ochre/internal/object"
	"ochre/internal/value"
)

// functionType distinguishes the implicit top-level script frame from a
// user-declared function frame: only the latter may contain a `return`
// statement (bare or with a value), and the former never receives an implicit NIL;RETURN pair
// beyond the one every frame gets anyway.
type functionType int

const (
	typeScript functionType = iota
	typeFunction
)

const maxLocals = 256
const maxCallArgs = 255

// local is a stack-allocated variable known to a single Compiler frame.
// depth == -1 means "declared but not yet initialized" (see
// resolveLocal's self-reference check).
type local struct {
	name  lexer.Token
	depth int
}

// compilerFrame mirrors one nested function body during compilation.
// Frames form a stack through enclosing; the innermost is "current".
type compilerFrame struct {
	enclosing  *compilerFrame
	function   *object.FunctionObj
	kind       functionType
	locals     [maxLocals]local
	localCount int
	scopeDepth int
}

// parser holds all mutable state for one compilation: the token stream,
// panic-mode recovery, and the heap used to intern identifier and literal
// strings into the constant pool.
type parser struct {
	scanner   *lexer.Scanner
	heap      *heap.Heap
	previous  lexer.Token
	current   lexer.Token
	hadError  bool
	panicMode bool
	errOut    io.Writer

	curFrame *compilerFrame
}

// Compile compiles source into the top-level script Function, or reports
// compile errors to errOut and returns ok=false. Every string literal and
// identifier constant created along the way is interned through h.
func Compile(source string, h *heap.Heap, errOut io.Writer) (*object.FunctionObj, bool) {
	p := &parser{scanner: lexer.New(source), heap: h, errOut: errOut}
	p.pushFrame(typeScript, "")

	p.advance()
	for !p.match(lexer.EOF) {
		p.declaration()
	}
	fn := p.endFrame()
	return fn, !p.hadError
}

func (p *parser) pushFrame(kind functionType, name string) {
	f := &compilerFrame{enclosing: p.curFrame, function: p.heap.NewFunction(), kind: kind}
	if name != "" {
		f.function.Name = p.heap.InternString(name)
	}
	// Slot 0 of every frame is reserved for the callee itself, so runtime
	// locals start at index 1 and OP_CALL can find the function value at
	// the base of its own frame.
	f.locals[0] = local{depth: 0}
	f.localCount = 1
	p.curFrame = f
}

func (p *parser) endFrame() *object.FunctionObj {
	p.emitOp(bytecode.OpNil)
	p.emitOp(bytecode.OpReturn)
	fn := p.curFrame.function
	p.curFrame = p.curFrame.enclosing
	return fn
}

func (p *parser) frame() *compilerFrame { return p.curFrame }
func (p *parser) chunk() *bytecode.Chunk { return p.curFrame.function.Chunk }

// --- token stream -----------------------------------------------------

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.ScanToken()
		if p.current.Type != lexer.Error {
			break
		}
		p.errorAt(p.current, p.current.Lexeme)
	}
}

func (p *parser) check(t lexer.TokenType) bool { return p.current.Type == t }

func (p *parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t lexer.TokenType, msg string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAt(p.current, msg)
}

// --- error reporting & recovery ---------------------------------------

func (p *parser) errorAt(tok lexer.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	var where string
	switch tok.Type {
	case lexer.EOF:
		where = "at end"
	case lexer.Error:
		// The lexeme is the scanner's message, not source text.
	default:
		where = fmt.Sprintf("at '%s'", tok.Lexeme)
	}
	if p.errOut != nil {
		fmt.Fprintln(p.errOut, &langerr.CompileError{Line: tok.Line, Where: where, Message: msg})
	}
}

func (p *parser) error(msg string) { p.errorAt(p.previous, msg) }

// synchronize resumes parsing at the next statement boundary after a
// parse error: past a ';', or just before a keyword that starts a new
// declaration or statement.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Type != lexer.EOF {
		if p.previous.Type == lexer.Semicolon {
			return
		}
		switch p.current.Type {
		case lexer.Class, lexer.Fun, lexer.Var, lexer.For,
			lexer.If, lexer.While, lexer.Print, lexer.Return:
			return
		}
		p.advance()
	}
}

// --- emission helpers ---------------------------------------------------

func (p *parser) emitByte(b byte) { p.chunk().Write(b, p.previous.Line) }
func (p *parser) emitOp(op bytecode.OpCode) { p.chunk().WriteOp(op, p.previous.Line) }

func (p *parser) emitConstant(v value.Value) {
	idx, err := p.chunk().AddConstant(v)
	if err != nil {
		p.error(err.Error())
		return
	}
	p.emitOp(bytecode.OpConstant)
	p.emitByte(byte(idx))
}

// emitJump writes op followed by a two-byte placeholder and returns the
// offset of that placeholder, to be filled in later by patchJump.
func (p *parser) emitJump(op bytecode.OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.chunk().Code) - 2
}

func (p *parser) patchJump(offset int) {
	dist := len(p.chunk().Code) - offset - 2
	if dist > 65535 {
		p.error("Too much code to jump over.")
		return
	}
	p.chunk().Code[offset] = byte((dist >> 8) & 0xff)
	p.chunk().Code[offset+1] = byte(dist & 0xff)
}

func (p *parser) emitLoop(loopStart int) {
	p.emitOp(bytecode.OpLoop)
	dist := len(p.chunk().Code) - loopStart + 2
	if dist > 65535 {
		p.error("Loop body too large.")
	}
	p.emitByte(byte((dist >> 8) & 0xff))
	p.emitByte(byte(dist & 0xff))
}

// identifierConstant interns name's bytes and adds them to the current
// chunk's constant pool, returning the pool index used by GET/SET/DEFINE
// _GLOBAL and by function/variable declarations.
func (p *parser) identifierConstant(tok lexer.Token) int {
	s := p.heap.InternString(tok.Lexeme)
	idx, err := p.chunk().AddConstant(value.ObjValue(s))
	if err != nil {
		p.error(err.Error())
		return 0
	}
	return idx
}

func parseNumber(lexeme string) float64 {
	n, _ := strconv.ParseFloat(lexeme, 64)
	return n
}
