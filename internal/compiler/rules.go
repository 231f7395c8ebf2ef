package compiler

import (
	"ochre/internal/bytecode"
	"ochre/internal/lexer"
	"ochre/internal/value"
)

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[lexer.TokenType]parseRule

func init() {
	rules = map[lexer.TokenType]parseRule{
		lexer.LeftParen:    {prefix: grouping, infix: call, precedence: precCall},
		lexer.Minus:        {prefix: unary, infix: binary, precedence: precTerm},
		lexer.Plus:         {infix: binary, precedence: precTerm},
		lexer.Slash:        {infix: binary, precedence: precFactor},
		lexer.Star:         {infix: binary, precedence: precFactor},
		lexer.Bang:         {prefix: unary},
		lexer.BangEqual:    {infix: binary, precedence: precEquality},
		lexer.EqualEqual:   {infix: binary, precedence: precEquality},
		lexer.Greater:      {infix: binary, precedence: precComparison},
		lexer.GreaterEqual: {infix: binary, precedence: precComparison},
		lexer.Less:         {infix: binary, precedence: precComparison},
		lexer.LessEqual:    {infix: binary, precedence: precComparison},
		lexer.Identifier:   {prefix: variable},
		lexer.String:       {prefix: stringLiteral},
		lexer.Number:       {prefix: number},
		lexer.And:          {infix: and_, precedence: precAnd},
		lexer.Or:           {infix: or_, precedence: precOr},
		lexer.False:        {prefix: literal},
		lexer.Nil:          {prefix: literal},
		lexer.True:         {prefix: literal},
	}
}

func getRule(t lexer.TokenType) parseRule { return rules[t] }

// expression parses and emits the lowest-precedence rule, leaving exactly
// one value on the stack.
func (p *parser) expression() { p.parsePrecedence(precAssignment) }

func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefixRule := getRule(p.previous.Type).prefix
	if prefixRule == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefixRule(p, canAssign)

	for getRule(p.current.Type).precedence >= prec && getRule(p.current.Type).precedence != precNone {
		p.advance()
		infixRule := getRule(p.previous.Type).infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(lexer.Equal) {
		p.error("Invalid assignment target.")
	}
}

func number(p *parser, _ bool) {
	p.emitConstant(value.NumberValue(parseNumber(p.previous.Lexeme)))
}

func stringLiteral(p *parser, _ bool) {
	chars := p.previous.Lexeme[1 : len(p.previous.Lexeme)-1]
	p.emitConstant(value.ObjValue(p.heap.InternString(chars)))
}

func literal(p *parser, _ bool) {
	switch p.previous.Type {
	case lexer.False:
		p.emitOp(bytecode.OpFalse)
	case lexer.True:
		p.emitOp(bytecode.OpTrue)
	case lexer.Nil:
		p.emitOp(bytecode.OpNil)
	}
}

func grouping(p *parser, _ bool) {
	p.expression()
	p.consume(lexer.RightParen, "Expect ')' after expression.")
}

func unary(p *parser, _ bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case lexer.Bang:
		p.emitOp(bytecode.OpNot)
	case lexer.Minus:
		p.emitOp(bytecode.OpNegate)
	}
}

func binary(p *parser, _ bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case lexer.Plus:
		p.emitOp(bytecode.OpAdd)
	case lexer.Minus:
		p.emitOp(bytecode.OpSubtract)
	case lexer.Star:
		p.emitOp(bytecode.OpMultiply)
	case lexer.Slash:
		p.emitOp(bytecode.OpDivide)
	case lexer.EqualEqual:
		p.emitOp(bytecode.OpEqual)
	case lexer.BangEqual:
		p.emitOp(bytecode.OpEqual)
		p.emitOp(bytecode.OpNot)
	case lexer.Greater:
		p.emitOp(bytecode.OpGreater)
	case lexer.GreaterEqual:
		p.emitOp(bytecode.OpLess)
		p.emitOp(bytecode.OpNot)
	case lexer.Less:
		p.emitOp(bytecode.OpLess)
	case lexer.LessEqual:
		p.emitOp(bytecode.OpGreater)
		p.emitOp(bytecode.OpNot)
	}
}

// and_ short-circuits by leaving the false left operand on the stack:
// jump past the right operand if the left one is already falsy.
func and_(p *parser, _ bool) {
	endJump := p.emitJump(bytecode.OpJumpIfFalse)
	p.emitOp(bytecode.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func or_(p *parser, _ bool) {
	elseJump := p.emitJump(bytecode.OpJumpIfFalse)
	endJump := p.emitJump(bytecode.OpJump)
	p.patchJump(elseJump)
	p.emitOp(bytecode.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func variable(p *parser, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *parser) namedVariable(name lexer.Token, canAssign bool) {
	var getOp, setOp bytecode.OpCode
	var idx int
	if slot, ok := p.resolveLocal(p.frame(), name); ok {
		getOp, setOp, idx = bytecode.OpGetLocal, bytecode.OpSetLocal, slot
	} else {
		getOp, setOp, idx = bytecode.OpGetGlobal, bytecode.OpSetGlobal, p.identifierConstant(name)
	}

	if canAssign && p.match(lexer.Equal) {
		p.expression()
		p.emitOp(setOp)
	} else {
		p.emitOp(getOp)
	}
	p.emitByte(byte(idx))
}

// resolveLocal scans the frame's locals top-down (shadowing: the most
// recently declared match wins). depth == -1 on a hit means the variable
// is referenced inside its own initializer, which is an error.
func (p *parser) resolveLocal(f *compilerFrame, name lexer.Token) (int, bool) {
	for i := f.localCount - 1; i >= 0; i-- {
		l := f.locals[i]
		if l.name.Lexeme == name.Lexeme {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i, true
		}
	}
	return 0, false
}

// call parses a comma-separated, parenthesized argument list and emits
// OP_CALL with the argument count.
func call(p *parser, _ bool) {
	argCount := p.argumentList()
	p.emitOp(bytecode.OpCall)
	p.emitByte(byte(argCount))
}

func (p *parser) argumentList() int {
	count := 0
	if !p.check(lexer.RightParen) {
		for {
			p.expression()
			if count == maxCallArgs {
				p.error("Can't have more than 255 arguments.")
			}
			count++
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.consume(lexer.RightParen, "Expect ')' after arguments.")
	return count
}
