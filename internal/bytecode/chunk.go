package bytecode

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"ochre/internal/value"
)

// maxConstants mirrors the single-byte constant pool index: a chunk may
// hold at most 256 distinct constants.
const maxConstants = 256

// Chunk is an append-only array of bytecode bytes, a parallel array of
// source line numbers (one per byte, for error reporting), and a constant
// pool. Chunks are owned by the Function they belong to.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends a single bytecode byte, recording the source line it came
// from. Opcodes and their operand bytes are both written through Write, so
// len(Code) == len(Lines) always holds.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends val to the constant pool and returns its index.
// The pool is capped at 256 entries because OP_CONSTANT and friends
// address it with a single byte.
func (c *Chunk) AddConstant(val value.Value) (int, error) {
	if len(c.Constants) >= maxConstants {
		return 0, errors.New("Too many constants in one chunk.")
	}
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1, nil
}

// LineAt returns the source line of the instruction byte at ip, or 0 if
// ip is out of range.
func (c *Chunk) LineAt(ip int) int {
	if ip < 0 || ip >= len(c.Lines) {
		return 0
	}
	return c.Lines[ip]
}

// Disassemble renders the chunk's instructions for debug output. It is
// never called on the hot path; only the -debug CLI flag or the
// disassemble config option reaches it.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.DisassembleInstruction(w, offset)
	}
}

// DisassembleInstruction renders the single instruction at offset and
// returns the offset of the next one. Exposed on its own for the VM's
// per-instruction execution trace.
func (c *Chunk) DisassembleInstruction(w io.Writer, offset int) int {
	line := c.LineAt(offset)
	op := OpCode(c.Code[offset])
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal:
		idx := c.Code[offset+1]
		fmt.Fprintf(w, "%4d %-18s %4d '%v'\n", line, op.Name(), idx, c.Constants[idx])
		return offset + 2
	case OpGetLocal, OpSetLocal, OpCall:
		slot := c.Code[offset+1]
		fmt.Fprintf(w, "%4d %-18s %4d\n", line, op.Name(), slot)
		return offset + 2
	case OpJump, OpJumpIfFalse:
		hi, lo := c.Code[offset+1], c.Code[offset+2]
		dist := int(hi)<<8 | int(lo)
		fmt.Fprintf(w, "%4d %-18s -> %d\n", line, op.Name(), offset+3+dist)
		return offset + 3
	case OpLoop:
		hi, lo := c.Code[offset+1], c.Code[offset+2]
		dist := int(hi)<<8 | int(lo)
		fmt.Fprintf(w, "%4d %-18s -> %d\n", line, op.Name(), offset+3-dist)
		return offset + 3
	default:
		fmt.Fprintf(w, "%4d %-18s\n", line, op.Name())
		return offset + 1
	}
}
