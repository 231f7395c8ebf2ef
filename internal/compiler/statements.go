package compiler

import (
	"ochre/internal/bytecode"
	"ochre/internal/lexer"
	"ochre/internal/value"
)

// declaration is the grammar's top level: a var or fun declaration, or any
// other statement. Panic-mode recovery happens here so one bad statement
// doesn't cascade errors into the next.
func (p *parser) declaration() {
	switch {
	case p.match(lexer.Fun):
		p.funDeclaration()
	case p.match(lexer.Var):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(lexer.Print):
		p.printStatement()
	case p.match(lexer.If):
		p.ifStatement()
	case p.match(lexer.While):
		p.whileStatement()
	case p.match(lexer.For):
		p.forStatement()
	case p.match(lexer.Return):
		p.returnStatement()
	case p.match(lexer.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

// --- declarations -------------------------------------------------------

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(lexer.Equal) {
		p.expression()
	} else {
		p.emitOp(bytecode.OpNil)
	}
	p.consume(lexer.Semicolon, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	// A function may refer to itself by name inside its own body, so the
	// local is marked initialized before the body is compiled.
	p.markInitialized()
	p.function(typeFunction)
	p.defineVariable(global)
}

// function compiles a function body in a fresh Compiler frame and emits
// the finished FunctionObj as a constant in the enclosing chunk.
func (p *parser) function(kind functionType) {
	p.pushFrame(kind, p.previous.Lexeme)
	p.beginScope()

	p.consume(lexer.LeftParen, "Expect '(' after function name.")
	if !p.check(lexer.RightParen) {
		for {
			if p.frame().function.Arity == maxCallArgs {
				p.errorAt(p.current, "Can't have more than 255 parameters.")
			}
			p.frame().function.Arity++
			idx := p.parseVariable("Expect parameter name.")
			p.defineVariable(idx)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.consume(lexer.RightParen, "Expect ')' after parameters.")
	p.consume(lexer.LeftBrace, "Expect '{' before function body.")
	p.block()

	// No endScope: popping the frame discards its locals wholesale, and
	// the implicit NIL;RETURN emitted by endFrame resets the runtime
	// stack past them anyway.
	fn := p.endFrame()
	p.emitConstant(value.ObjValue(fn))
}

// parseVariable consumes an identifier. At the top level it returns the
// identifier's constant-pool index for DEFINE_GLOBAL; inside a scope it
// declares a local and the returned index is unused.
func (p *parser) parseVariable(msg string) int {
	p.consume(lexer.Identifier, msg)
	p.declareVariable()
	if p.frame().scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

// declareVariable registers a new local in the current scope, with
// depth -1 ("declared, not initialized") until defineVariable runs. At
// scope depth 0 globals are late-bound by name and nothing is declared.
func (p *parser) declareVariable() {
	f := p.frame()
	if f.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := f.localCount - 1; i >= 0; i-- {
		l := f.locals[i]
		if l.depth != -1 && l.depth < f.scopeDepth {
			break
		}
		if l.name.Lexeme == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name lexer.Token) {
	f := p.frame()
	if f.localCount == maxLocals {
		p.error("Too many local variables in function (max 256).")
		return
	}
	f.locals[f.localCount] = local{name: name, depth: -1}
	f.localCount++
}

func (p *parser) markInitialized() {
	f := p.frame()
	if f.scopeDepth == 0 {
		return
	}
	f.locals[f.localCount-1].depth = f.scopeDepth
}

func (p *parser) defineVariable(global int) {
	if p.frame().scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOp(bytecode.OpDefineGlobal)
	p.emitByte(byte(global))
}

// --- statements ---------------------------------------------------------

func (p *parser) printStatement() {
	p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after value.")
	p.emitOp(bytecode.OpPrint)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after expression.")
	p.emitOp(bytecode.OpPop)
}

func (p *parser) ifStatement() {
	p.consume(lexer.LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(lexer.RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.statement()
	elseJump := p.emitJump(bytecode.OpJump)

	p.patchJump(thenJump)
	p.emitOp(bytecode.OpPop)
	if p.match(lexer.Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(lexer.LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(lexer.RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(bytecode.OpPop)
}

// forStatement desugars for(init; cond; incr) into the while shape, with
// the increment clause routed around the body by a pair of jumps so it
// still executes after the body despite appearing before it in source.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(lexer.LeftParen, "Expect '(' after 'for'.")

	switch {
	case p.match(lexer.Semicolon):
		// no initializer
	case p.match(lexer.Var):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.match(lexer.Semicolon) {
		p.expression()
		p.consume(lexer.Semicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(bytecode.OpJumpIfFalse)
		p.emitOp(bytecode.OpPop)
	}

	if !p.match(lexer.RightParen) {
		bodyJump := p.emitJump(bytecode.OpJump)
		incrStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(bytecode.OpPop)
		p.consume(lexer.RightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(bytecode.OpPop)
	}
	p.endScope()
}

func (p *parser) returnStatement() {
	if p.frame().kind == typeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(lexer.Semicolon) {
		p.emitOp(bytecode.OpNil)
		p.emitOp(bytecode.OpReturn)
		return
	}
	p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after return value.")
	p.emitOp(bytecode.OpReturn)
}

func (p *parser) block() {
	for !p.check(lexer.RightBrace) && !p.check(lexer.EOF) {
		p.declaration()
	}
	p.consume(lexer.RightBrace, "Expect '}' after block.")
}

// --- scopes -------------------------------------------------------------

func (p *parser) beginScope() {
	p.frame().scopeDepth++
}

// endScope pops every local declared in the closing scope, emitting one
// OP_POP per slot so the runtime stack shrinks in step with the compiler's
// bookkeeping.
func (p *parser) endScope() {
	f := p.frame()
	f.scopeDepth--
	for f.localCount > 0 && f.locals[f.localCount-1].depth > f.scopeDepth {
		p.emitOp(bytecode.OpPop)
		f.localCount--
	}
}
