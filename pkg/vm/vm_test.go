package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/compiler"
	"github.com/wisplang/wisp/pkg/value"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	interner := value.NewInterner()
	lim := config.VMLimits{MaxStack: 16384, MaxFrames: 64, MaxConstants: 256, MaxLocals: 256}
	fn, err := compiler.Compile(src, interner, lim)
	require.NoError(t, err)

	var out bytes.Buffer
	v := New(lim, interner, &out)
	v.DefineStandardNatives()
	err = v.Run(fn)
	return out.String(), err
}

func TestRunHelloWorld(t *testing.T) {
	out, err := run(t, `print "Hello, World!";`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!\n", out)
}

func TestRunArithmeticAndStringCoercion(t *testing.T) {
	out, err := run(t, `print 6 + 2; print 6 % 2; print "Number: " + 3;`)
	require.NoError(t, err)
	assert.Equal(t, "8\n0\nNumber: 3\n", out)
}

func TestRunShadowing(t *testing.T) {
	out, err := run(t, `var a = 3; { var b = 4; var a = 5; print a; print b; } print a;`)
	require.NoError(t, err)
	assert.Equal(t, "5\n4\n3\n", out)
}

func TestRunWhile(t *testing.T) {
	out, err := run(t, `var a = 0; while (a < 5) { print a; a = a + 1; }`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n3\n4\n", out)
}

func TestRunForDesugaring(t *testing.T) {
	out, err := run(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestRunRecursion(t *testing.T) {
	out, err := run(t, `fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); } print fib(10);`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestRunImplicitNilReturn(t *testing.T) {
	out, err := run(t, `fun f() {} print f();`)
	require.NoError(t, err)
	assert.Equal(t, "nil\n", out)
}

func TestRunRuntimeErrorPath(t *testing.T) {
	_, err := run(t, `print 1 + "a";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or left operand must be a string.")
}

func TestRunArityMismatch(t *testing.T) {
	_, err := run(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 2 arguments but got 1.")
}

func TestRunCallingNonCallableValue(t *testing.T) {
	_, err := run(t, `var x = 1; x();`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can only call functions and classes.")
}

func TestRunClockNative(t *testing.T) {
	out, err := run(t, `print clock() > 0;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestRunStackOverflowOnUnboundedRecursion(t *testing.T) {
	_, err := run(t, `fun rec(n) { return rec(n + 1); } print rec(0);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stack overflow.")
}

func TestRunStackTraceReportsInnermostFrameFirst(t *testing.T) {
	_, err := run(t, "fun a() { return 1 + \"x\"; }\nfun b() { return a(); }\nb();")
	require.Error(t, err)
	rtErr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(rtErr.Trace), 3)
	assert.Contains(t, rtErr.Trace[0], "a()")
	assert.Contains(t, rtErr.Trace[len(rtErr.Trace)-1], "script")
}
