// Package vm implements the stack-based bytecode interpreter: a value
// stack, a fixed array of call frames, a globals table, and a dispatch
// loop over the compiled chunk.
package vm

import (
	"fmt"
	"io"

	"ochre/internal/bytecode"
	"ochre/internal/compiler"
	"ochre/internal/debug"
	"ochre/internal/heap"
	"ochre/internal/langerr"
	"ochre/internal/object"
	"ochre/internal/table"
	"ochre/internal/value"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// InterpretResult tells the host how a run ended.
type InterpretResult int

const (
	ResultOK InterpretResult = iota
	ResultCompileError
	ResultRuntimeError
)

// callFrame is one active function invocation: the function being run, an
// instruction pointer into its chunk, and the base of its stack window.
// Frame-relative slot i lives at stack[slotBase+i]; slot 0 holds the
// callee itself.
type callFrame struct {
	function *object.FunctionObj
	ip       int
	slotBase int
}

// VM executes compiled chunks. The stack and frame arrays are fixed-size,
// so overflow is a runtime error rather than a reallocation, and resetting
// after an error is just zeroing two counters.
type VM struct {
	frames     [framesMax]callFrame
	frameCount int
	stack      [stackMax]value.Value
	stackTop   int

	globals *table.Table
	heap    *heap.Heap

	stdout io.Writer
	stderr io.Writer

	// Debug, when non-nil, receives a disassembly of every successfully
	// compiled chunk before it runs.
	Debug io.Writer

	// Trace, when non-nil, receives the stack contents and the
	// disassembled instruction before every dispatch. Far noisier than
	// Debug; meant for stepping through a few lines, not whole programs.
	Trace io.Writer

	// lastError holds the most recent runtime error, kept for callers
	// (tests, the REPL) that want more than the exit status.
	lastError *langerr.RuntimeError
}

// New returns a VM sharing h with the compiler that produced (or will
// produce) its chunks. Guest `print` output goes to stdout; diagnostics
// go to stderr.
func New(h *heap.Heap, stdout, stderr io.Writer) *VM {
	return &VM{globals: table.New(), heap: h, stdout: stdout, stderr: stderr}
}

// LastError returns the runtime error from the most recent Interpret that
// ended in ResultRuntimeError, or nil.
func (vm *VM) LastError() *langerr.RuntimeError { return vm.lastError }

// Interpret compiles source and runs the resulting top-level function.
func (vm *VM) Interpret(source string) InterpretResult {
	fn, ok := compiler.Compile(source, vm.heap, vm.stderr)
	if !ok {
		return ResultCompileError
	}
	if vm.Debug != nil {
		debug.DumpFunction(vm.Debug, fn)
	}

	vm.push(value.ObjValue(fn))
	vm.call(fn, 0)
	return vm.run()
}

// --- stack --------------------------------------------------------------

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// resetStack discards every value and frame, returning the VM to its
// just-initialized shape. Runs after a runtime error so a REPL session
// can keep going.
func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
}

// --- calls --------------------------------------------------------------

func (vm *VM) callValue(callee value.Value, argCount int) bool {
	if callee.IsObj() {
		if fn, ok := callee.AsObj().(*object.FunctionObj); ok {
			return vm.call(fn, argCount)
		}
	}
	vm.runtimeError("Can only call functions.")
	return false
}

func (vm *VM) call(fn *object.FunctionObj, argCount int) bool {
	if argCount != fn.Arity {
		vm.runtimeError(fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity, argCount))
		return false
	}
	if vm.frameCount == framesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.function = fn
	frame.ip = 0
	frame.slotBase = vm.stackTop - argCount - 1
	return true
}

// --- dispatch -----------------------------------------------------------

func (vm *VM) frame() *callFrame { return &vm.frames[vm.frameCount-1] }

func (vm *VM) readByte() byte {
	f := vm.frame()
	b := f.function.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readShort() int {
	f := vm.frame()
	hi := int(f.function.Chunk.Code[f.ip])
	lo := int(f.function.Chunk.Code[f.ip+1])
	f.ip += 2
	return hi<<8 | lo
}

func (vm *VM) readConstant() value.Value {
	return vm.frame().function.Chunk.Constants[vm.readByte()]
}

func (vm *VM) readString() *object.StringObj {
	return vm.readConstant().AsObj().(*object.StringObj)
}

func (vm *VM) run() InterpretResult {
	for {
		if vm.Trace != nil {
			vm.traceInstruction()
		}
		switch op := bytecode.OpCode(vm.readByte()); op {
		case bytecode.OpConstant:
			vm.push(vm.readConstant())

		case bytecode.OpNil:
			vm.push(value.NilValue())
		case bytecode.OpTrue:
			vm.push(value.BoolValue(true))
		case bytecode.OpFalse:
			vm.push(value.BoolValue(false))

		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := int(vm.readByte())
			vm.push(vm.stack[vm.frame().slotBase+slot])

		case bytecode.OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[vm.frame().slotBase+slot] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := vm.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError(fmt.Sprintf("Undefined variable '%s'.", name.Chars))
				return ResultRuntimeError
			}
			vm.push(v)

		case bytecode.OpDefineGlobal:
			name := vm.readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case bytecode.OpSetGlobal:
			name := vm.readString()
			// Assignment never implicitly declares: writing to a name
			// that was never defined is an error, and the table entry
			// created by Set is removed again.
			if isNew := vm.globals.Set(name, vm.peek(0)); isNew {
				vm.globals.Delete(name)
				vm.runtimeError(fmt.Sprintf("Undefined variable '%s'.", name.Chars))
				return ResultRuntimeError
			}

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.BoolValue(value.Equal(a, b)))

		case bytecode.OpGreater:
			if !vm.binaryNumberOp(op) {
				return ResultRuntimeError
			}
		case bytecode.OpLess:
			if !vm.binaryNumberOp(op) {
				return ResultRuntimeError
			}

		case bytecode.OpAdd:
			if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
				b := vm.pop().AsNumber()
				a := vm.pop().AsNumber()
				vm.push(value.NumberValue(a + b))
			} else if isString(vm.peek(0)) && isString(vm.peek(1)) {
				b := vm.pop().AsObj().(*object.StringObj)
				a := vm.pop().AsObj().(*object.StringObj)
				vm.push(value.ObjValue(vm.heap.InternString(a.Chars + b.Chars)))
			} else {
				vm.runtimeError("Operands must be two numbers or two strings.")
				return ResultRuntimeError
			}

		case bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
			if !vm.binaryNumberOp(op) {
				return ResultRuntimeError
			}

		case bytecode.OpNot:
			vm.push(value.BoolValue(vm.pop().IsFalsy()))

		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return ResultRuntimeError
			}
			vm.push(value.NumberValue(-vm.pop().AsNumber()))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop())

		case bytecode.OpJump:
			offset := vm.readShort()
			vm.frame().ip += offset

		case bytecode.OpJumpIfFalse:
			offset := vm.readShort()
			if vm.peek(0).IsFalsy() {
				vm.frame().ip += offset
			}

		case bytecode.OpLoop:
			offset := vm.readShort()
			vm.frame().ip -= offset

		case bytecode.OpCall:
			argCount := int(vm.readByte())
			if !vm.callValue(vm.peek(argCount), argCount) {
				return ResultRuntimeError
			}

		case bytecode.OpReturn:
			result := vm.pop()
			returning := vm.frame()
			vm.frameCount--
			if vm.frameCount == 0 {
				// Pop the script function itself and halt.
				vm.pop()
				return ResultOK
			}
			vm.stackTop = returning.slotBase
			vm.push(result)

		default:
			vm.runtimeError(fmt.Sprintf("Unknown opcode %d.", op))
			return ResultRuntimeError
		}
	}
}

// traceInstruction prints the whole value stack and the instruction about
// to execute.
func (vm *VM) traceInstruction() {
	fmt.Fprint(vm.Trace, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.Trace, "[ %v ]", vm.stack[i])
	}
	fmt.Fprintln(vm.Trace)
	f := vm.frame()
	f.function.Chunk.DisassembleInstruction(vm.Trace, f.ip)
}

func isString(v value.Value) bool {
	if !v.IsObj() {
		return false
	}
	_, ok := v.AsObj().(*object.StringObj)
	return ok
}

func (vm *VM) binaryNumberOp(op bytecode.OpCode) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case bytecode.OpGreater:
		vm.push(value.BoolValue(a > b))
	case bytecode.OpLess:
		vm.push(value.BoolValue(a < b))
	case bytecode.OpSubtract:
		vm.push(value.NumberValue(a - b))
	case bytecode.OpMultiply:
		vm.push(value.NumberValue(a * b))
	case bytecode.OpDivide:
		vm.push(value.NumberValue(a / b))
	}
	return true
}

// runtimeError prints the diagnostic and a frame-by-frame stack trace to
// stderr, records it in lastError, and resets the stack. The line for each
// frame comes from the byte before ip: the last byte read of the failing
// (or calling) instruction, which carries the same line as its opcode.
func (vm *VM) runtimeError(msg string) {
	rerr := &langerr.RuntimeError{Message: msg}
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		name := "script"
		if f.function.Name != nil {
			name = f.function.Name.Chars + "()"
		}
		rerr.Frames = append(rerr.Frames, langerr.RuntimeFrame{
			Line: f.function.Chunk.LineAt(f.ip - 1),
			Name: name,
		})
	}
	vm.lastError = rerr

	fmt.Fprintln(vm.stderr, msg)
	for _, fr := range rerr.Frames {
		fmt.Fprintf(vm.stderr, "[line %d] in %s\n", fr.Line, fr.Name)
	}
	vm.resetStack()
}
