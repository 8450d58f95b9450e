package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func interpret(t *testing.T, src string) (stdout, stderr string, result Result) {
	t.Helper()
	var out, errOut bytes.Buffer
	m := New(DefaultConfig(), &out, &errOut)
	result = m.Interpret(src)
	return out.String(), errOut.String(), result
}

func TestArithmeticAndPrint(t *testing.T) {
	out, _, result := interpret(t, "print 1 + 2 * 3;")
	require.Equal(t, OK, result)
	require.Equal(t, "7\n", out)
}

func TestStringConcatAndEquality(t *testing.T) {
	out, _, result := interpret(t, `var a = "foo"; var b = "bar"; print a + b; print a + b == "foobar";`)
	require.Equal(t, OK, result)
	require.Equal(t, "foobar\ntrue\n", out)
}

func TestForLoop(t *testing.T) {
	out, _, result := interpret(t, "var x = 0; for (var i = 0; i < 5; i = i + 1) { x = x + i; } print x;")
	require.Equal(t, OK, result)
	require.Equal(t, "10\n", out)
}

func TestClosureCapturesGoneOutOfScopeParameter(t *testing.T) {
	out, _, result := interpret(t, `
		fun make(x) { fun get() { return x; } return get; }
		var g = make(42);
		print g();
	`)
	require.Equal(t, OK, result)
	require.Equal(t, "42\n", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, _, result := interpret(t, "fun fib(n) { if (n < 2) return n; return fib(n-1)+fib(n-2); } print fib(10);")
	require.Equal(t, OK, result)
	require.Equal(t, "55\n", out)
}

func TestUndefinedGlobalAssignmentIsRuntimeError(t *testing.T) {
	out, errOut, result := interpret(t, "b = 1;")
	require.Equal(t, RuntimeError, result)
	require.Empty(t, out)
	require.True(t, strings.HasPrefix(errOut, "Undefined variable 'b'."))
}

func TestVarWithoutInitializerIsNil(t *testing.T) {
	out, _, result := interpret(t, "var a; a = 1; print a;")
	require.Equal(t, OK, result)
	require.Equal(t, "1\n", out)
}

func TestUndefinedGlobalReadIsRuntimeError(t *testing.T) {
	_, errOut, result := interpret(t, "print nope;")
	require.Equal(t, RuntimeError, result)
	require.Contains(t, errOut, "Undefined variable 'nope'.")
	require.Contains(t, errOut, "[line 1] in script")
}

func TestTypeMismatchIsRuntimeError(t *testing.T) {
	_, errOut, result := interpret(t, `print 1 + "s";`)
	require.Equal(t, RuntimeError, result)
	require.Contains(t, errOut, "Operands must be two numbers or two strings.")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, errOut, result := interpret(t, "fun f(a, b) { return a + b; } f(1);")
	require.Equal(t, RuntimeError, result)
	require.Contains(t, errOut, "Expected 2 arguments but got 1.")
}

func TestStackOverflowOnUnboundedRecursion(t *testing.T) {
	_, errOut, result := interpret(t, "fun loop() { return loop(); } loop();")
	require.Equal(t, RuntimeError, result)
	require.Contains(t, errOut, "Stack overflow.")
}

func TestCompileErrorSkipsExecution(t *testing.T) {
	out, errOut, result := interpret(t, "print 1 +;")
	require.Equal(t, CompileError, result)
	require.Empty(t, out)
	require.Contains(t, errOut, "[line 1] Error")
}

func TestClockNativeReturnsNumber(t *testing.T) {
	out, _, result := interpret(t, "print clock() >= 0;")
	require.Equal(t, OK, result)
	require.Equal(t, "true\n", out)
}

func TestGlobalsPersistAcrossInterpretCalls(t *testing.T) {
	var out, errOut bytes.Buffer
	m := New(DefaultConfig(), &out, &errOut)

	require.Equal(t, OK, m.Interpret("var counter = 1;"))
	require.Equal(t, OK, m.Interpret("counter = counter + 1;"))
	require.Equal(t, OK, m.Interpret("print counter;"))
	require.Equal(t, "2\n", out.String())
}

func TestWhileLoopAndLogicalOperators(t *testing.T) {
	out, _, result := interpret(t, `
		var i = 0;
		var seen = false;
		while (i < 3) {
			if (i == 2 and true) { seen = true; }
			i = i + 1;
		}
		print seen or false;
	`)
	require.Equal(t, OK, result)
	require.Equal(t, "true\n", out)
}
