package vm

import (
	"bytes"
	"strings"
	"testing"

	"ochre/internal/heap"
)

func run(t *testing.T, source string) (stdout, stderr string, result InterpretResult) {
	t.Helper()
	var out, errOut bytes.Buffer
	h := heap.New()
	defer h.Free()
	machine := New(h, &out, &errOut)
	result = machine.Interpret(source)
	return out.String(), errOut.String(), result
}

func runExpectOK(t *testing.T, source, wantStdout string) {
	t.Helper()
	out, errOut, result := run(t, source)
	if result != ResultOK {
		t.Fatalf("result = %v, want OK; stderr:\n%s", result, errOut)
	}
	if out != wantStdout {
		t.Errorf("stdout = %q, want %q", out, wantStdout)
	}
}

func runExpectRuntimeError(t *testing.T, source, wantMessage string) string {
	t.Helper()
	out, errOut, result := run(t, source)
	if result != ResultRuntimeError {
		t.Fatalf("result = %v, want RuntimeError; stdout:\n%s", result, out)
	}
	if !strings.Contains(errOut, wantMessage) {
		t.Errorf("stderr = %q, want it to contain %q", errOut, wantMessage)
	}
	return errOut
}

func TestArithmeticPrecedence(t *testing.T) {
	runExpectOK(t, "print 1 + 2 * 3;", "7\n")
	runExpectOK(t, "print (1 + 2) * 3;", "9\n")
	runExpectOK(t, "print 10 - 4 - 3;", "3\n")
	runExpectOK(t, "print 8 / 2 / 2;", "2\n")
	runExpectOK(t, "print -3 + 1;", "-2\n")
	runExpectOK(t, "print 0.1 + 0.25;", "0.35\n")
}

func TestComparisonOperators(t *testing.T) {
	runExpectOK(t, "print 1 < 2;", "true\n")
	runExpectOK(t, "print 2 <= 2;", "true\n")
	runExpectOK(t, "print 3 > 4;", "false\n")
	runExpectOK(t, "print 4 >= 5;", "false\n")
	runExpectOK(t, "print 1 == 1;", "true\n")
	runExpectOK(t, "print 1 != 1;", "false\n")
	runExpectOK(t, "print nil == false;", "false\n")
	runExpectOK(t, "print \"a\" == 1;", "false\n")
}

func TestNotAndFalsiness(t *testing.T) {
	runExpectOK(t, "print !nil;", "true\n")
	runExpectOK(t, "print !false;", "true\n")
	runExpectOK(t, "print !0;", "false\n")
	runExpectOK(t, "print !\"\";", "false\n")
}

func TestStringConcatAndInterning(t *testing.T) {
	runExpectOK(t, `print "foo" + "bar";`, "foobar\n")
	runExpectOK(t, `var a = "foo"; var b = "foo"; print a == b;`, "true\n")
	// A runtime concatenation must intern to the same object as a literal
	// with the same bytes.
	runExpectOK(t, `print "foo" + "bar" == "foobar";`, "true\n")
}

func TestGlobals(t *testing.T) {
	runExpectOK(t, "var x; print x;", "nil\n")
	runExpectOK(t, "var x = 1; x = 2; print x;", "2\n")
	runExpectOK(t, "var x = 1; print x = 3;", "3\n")
}

func TestUndefinedGlobals(t *testing.T) {
	runExpectRuntimeError(t, "print missing;", "Undefined variable 'missing'.")
	runExpectRuntimeError(t, "missing = 1;", "Undefined variable 'missing'.")
	// Assigning to an undefined global from inside a function is the same error.
	runExpectRuntimeError(t, "fun f() { ghost = 1; } f();", "Undefined variable 'ghost'.")
}

func TestLocalScoping(t *testing.T) {
	runExpectOK(t, "var x = 1; { var x = 2; print x; } print x;", "2\n1\n")
	runExpectOK(t, "{ var a = 1; { var b = 2; print a + b; } }", "3\n")
	runExpectOK(t, "{ var a = 1; var b = a + 1; print b; }", "2\n")
}

func TestIfElse(t *testing.T) {
	runExpectOK(t, "if (true) print 1; else print 2;", "1\n")
	runExpectOK(t, "if (false) print 1; else print 2;", "2\n")
	runExpectOK(t, "if (false) print 1;", "")
	runExpectOK(t, "if (nil) print 1; else print 2;", "2\n")
}

func TestLogicalShortCircuit(t *testing.T) {
	runExpectOK(t, "print true and 2;", "2\n")
	runExpectOK(t, "print false and 2;", "false\n")
	runExpectOK(t, "print nil or 3;", "3\n")
	runExpectOK(t, "print 1 or 3;", "1\n")
	// The right operand of a short-circuited `and` must not run.
	runExpectOK(t, "var x = 0; fun bump() { x = 1; return true; } var r = false and bump(); print x;", "0\n")
}

func TestWhileLoop(t *testing.T) {
	runExpectOK(t, "var i = 0; while (i < 3) { print i; i = i + 1; }", "0\n1\n2\n")
	runExpectOK(t, "while (false) print 1;", "")
}

func TestForLoop(t *testing.T) {
	runExpectOK(t, "for (var i = 0; i < 3; i = i + 1) print i;", "0\n1\n2\n")
	runExpectOK(t, "var i = 5; for (i = 0; i < 2; i = i + 1) print i; print i;", "0\n1\n2\n")
	runExpectOK(t, "for (var i = 3; i > 0;) { print i; i = i - 1; }", "3\n2\n1\n")
}

func TestFunctions(t *testing.T) {
	runExpectOK(t, "fun greet() { print \"hi\"; } greet();", "hi\n")
	runExpectOK(t, "fun add(a, b) { return a + b; } print add(1, 2);", "3\n")
	runExpectOK(t, "fun f() {} print f();", "nil\n")
	runExpectOK(t, "fun f() { return; print 1; } print f();", "nil\n")
	runExpectOK(t, "fun f() { print \"fn\"; } print f;", "<fn f>\n")
}

func TestRecursion(t *testing.T) {
	runExpectOK(t,
		"fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } print fib(10);",
		"55\n")
}

func TestFunctionArityMismatch(t *testing.T) {
	runExpectRuntimeError(t, "fun f(a) {} f();", "Expected 1 arguments but got 0.")
	runExpectRuntimeError(t, "fun f() {} f(1);", "Expected 0 arguments but got 1.")
}

func TestCallNonFunction(t *testing.T) {
	runExpectRuntimeError(t, "var x = 1; x();", "Can only call functions.")
	runExpectRuntimeError(t, `"str"();`, "Can only call functions.")
}

func TestStackOverflow(t *testing.T) {
	runExpectRuntimeError(t, "fun f() { f(); } f();", "Stack overflow.")
}

func TestTypeErrors(t *testing.T) {
	runExpectRuntimeError(t, `print "a" + 1;`, "Operands must be two numbers or two strings.")
	runExpectRuntimeError(t, "print 1 - nil;", "Operands must be numbers.")
	runExpectRuntimeError(t, "print true * 2;", "Operands must be numbers.")
	runExpectRuntimeError(t, `print "a" < "b";`, "Operands must be numbers.")
	runExpectRuntimeError(t, "print -\"neg\";", "Operand must be a number.")
}

func TestRuntimeErrorStackTrace(t *testing.T) {
	errOut := runExpectRuntimeError(t,
		"fun inner() { return \"x\" + 1; }\nfun outer() { return inner(); }\nouter();",
		"Operands must be two numbers or two strings.")
	for _, want := range []string{"[line 1] in inner()", "[line 2] in outer()", "[line 3] in script"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stack trace missing %q:\n%s", want, errOut)
		}
	}
}

func TestLastError(t *testing.T) {
	var out, errOut bytes.Buffer
	h := heap.New()
	machine := New(h, &out, &errOut)
	if machine.Interpret("nil - 1;") != ResultRuntimeError {
		t.Fatal("expected a runtime error")
	}
	lastErr := machine.LastError()
	if lastErr == nil {
		t.Fatal("LastError returned nil")
	}
	if lastErr.Message != "Operands must be numbers." {
		t.Errorf("message = %q", lastErr.Message)
	}
	if len(lastErr.Frames) != 1 || lastErr.Frames[0].Name != "script" {
		t.Errorf("frames = %+v", lastErr.Frames)
	}
}

func TestCompileErrorResult(t *testing.T) {
	_, errOut, result := run(t, "print ;")
	if result != ResultCompileError {
		t.Fatalf("result = %v, want CompileError", result)
	}
	if !strings.Contains(errOut, "Expect expression.") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestVMSurvivesRuntimeError(t *testing.T) {
	// A REPL reuses one VM across lines; the reset after an error must
	// leave it able to run the next program.
	var out, errOut bytes.Buffer
	h := heap.New()
	machine := New(h, &out, &errOut)
	machine.Interpret("nil - 1;")
	out.Reset()
	if machine.Interpret("print 1 + 1;") != ResultOK {
		t.Fatalf("VM did not recover; stderr:\n%s", errOut.String())
	}
	if out.String() != "2\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestGlobalsPersistAcrossInterprets(t *testing.T) {
	var out, errOut bytes.Buffer
	h := heap.New()
	machine := New(h, &out, &errOut)
	if machine.Interpret("var x = 40;") != ResultOK {
		t.Fatal("first line failed")
	}
	if machine.Interpret("print x + 2;") != ResultOK {
		t.Fatalf("second line failed: %s", errOut.String())
	}
	if out.String() != "42\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestExecutionTrace(t *testing.T) {
	var out, errOut, trace bytes.Buffer
	h := heap.New()
	machine := New(h, &out, &errOut)
	machine.Trace = &trace
	if machine.Interpret("print 1 + 2;") != ResultOK {
		t.Fatalf("run failed: %s", errOut.String())
	}
	text := trace.String()
	for _, want := range []string{"OP_CONSTANT", "OP_ADD", "OP_PRINT", "[ 1 ][ 2 ]"} {
		if !strings.Contains(text, want) {
			t.Errorf("trace missing %q:\n%s", want, text)
		}
	}
}

func TestDebugDisassembly(t *testing.T) {
	var out, errOut, dbg bytes.Buffer
	h := heap.New()
	machine := New(h, &out, &errOut)
	machine.Debug = &dbg
	if machine.Interpret("fun f() { return 1; } print f();") != ResultOK {
		t.Fatalf("run failed: %s", errOut.String())
	}
	for _, want := range []string{"== <script> ==", "== f ==", "OP_RETURN"} {
		if !strings.Contains(dbg.String(), want) {
			t.Errorf("disassembly missing %q:\n%s", want, dbg.String())
		}
	}
}
