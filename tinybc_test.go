// End-to-end source-to-stdout scenarios exercising the scanner, compiler,
// and VM together, the way the teacher's own top-level integration suite
// runs whole programs rather than individual package internals.
package tinybc_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/tinybc/pkg/vm"
)

func run(t *testing.T, src string) (stdout string, result vm.Result) {
	t.Helper()
	var out, errOut bytes.Buffer
	m := vm.New(vm.DefaultConfig(), &out, &errOut)
	result = m.Interpret(src)
	return out.String(), result
}

func TestScenarioArithmeticPrecedence(t *testing.T) {
	out, result := run(t, "print 1 + 2 * 3;")
	require.Equal(t, vm.OK, result)
	require.Equal(t, "7\n", out)
}

func TestScenarioStringConcatAndEquality(t *testing.T) {
	out, result := run(t, `var a = "foo"; var b = "bar"; print a + b; print a + b == "foobar";`)
	require.Equal(t, vm.OK, result)
	require.Equal(t, "foobar\ntrue\n", out)
}

func TestScenarioForLoopAccumulator(t *testing.T) {
	out, result := run(t, "var x = 0; for (var i = 0; i < 5; i = i + 1) { x = x + i; } print x;")
	require.Equal(t, vm.OK, result)
	require.Equal(t, "10\n", out)
}

func TestScenarioClosureOverGoneOutOfScopeParameter(t *testing.T) {
	out, result := run(t, `fun make(x) { fun get() { return x; } return get; } var g = make(42); print g();`)
	require.Equal(t, vm.OK, result)
	require.Equal(t, "42\n", out)
}

func TestScenarioRecursiveFibonacci(t *testing.T) {
	out, result := run(t, "fun fib(n) { if (n < 2) return n; return fib(n-1)+fib(n-2); } print fib(10);")
	require.Equal(t, vm.OK, result)
	require.Equal(t, "55\n", out)
}

func TestScenarioUndefinedGlobalAssignment(t *testing.T) {
	out, result := run(t, "var a; a = 1; print a;")
	require.Equal(t, vm.OK, result)
	require.Equal(t, "1\n", out)

	_, result = run(t, "b = 1;")
	require.Equal(t, vm.RuntimeError, result)
}

func TestScenarioSeparateCallsGetIndependentClosedOverVariables(t *testing.T) {
	// Each call to makeCounter gets its own closed-over `count`.
	out, result := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var c1 = makeCounter();
		var c2 = makeCounter();
		print c1();
		print c1();
		print c2();
	`)
	require.Equal(t, vm.OK, result)
	require.Equal(t, "1\n2\n1\n", out)
}
