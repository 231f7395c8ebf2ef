package bytecode

// OpCode is a single instruction's opcode byte. Operands, when present,
// follow the opcode inline in Chunk.Code.
type OpCode byte

const (
	OpConstant OpCode = iota // 1 operand byte: constant pool index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal // 1 operand byte: stack slot
	OpSetLocal // 1 operand byte: stack slot
	OpGetGlobal // 1 operand byte: name constant index
	OpDefineGlobal // 1 operand byte: name constant index
	OpSetGlobal // 1 operand byte: name constant index
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump         // 2 operand bytes: forward offset, big-endian
	OpJumpIfFalse  // 2 operand bytes: forward offset, big-endian
	OpLoop         // 2 operand bytes: backward offset, big-endian
	OpCall         // 1 operand byte: argument count
	OpReturn
)

// Name returns the disassembler-facing mnemonic for op.
func (op OpCode) Name() string {
	switch op {
	case OpConstant:
		return "OP_CONSTANT"
	case OpNil:
		return "OP_NIL"
	case OpTrue:
		return "OP_TRUE"
	case OpFalse:
		return "OP_FALSE"
	case OpPop:
		return "OP_POP"
	case OpGetLocal:
		return "OP_GET_LOCAL"
	case OpSetLocal:
		return "OP_SET_LOCAL"
	case OpGetGlobal:
		return "OP_GET_GLOBAL"
	case OpDefineGlobal:
		return "OP_DEFINE_GLOBAL"
	case OpSetGlobal:
		return "OP_SET_GLOBAL"
	case OpEqual:
		return "OP_EQUAL"
	case OpGreater:
		return "OP_GREATER"
	case OpLess:
		return "OP_LESS"
	case OpAdd:
		return "OP_ADD"
	case OpSubtract:
		return "OP_SUBTRACT"
	case OpMultiply:
		return "OP_MULTIPLY"
	case OpDivide:
		return "OP_DIVIDE"
	case OpNot:
		return "OP_NOT"
	case OpNegate:
		return "OP_NEGATE"
	case OpPrint:
		return "OP_PRINT"
	case OpJump:
		return "OP_JUMP"
	case OpJumpIfFalse:
		return "OP_JUMP_IF_FALSE"
	case OpLoop:
		return "OP_LOOP"
	case OpCall:
		return "OP_CALL"
	case OpReturn:
		return "OP_RETURN"
	default:
		return "OP_UNKNOWN"
	}
}
