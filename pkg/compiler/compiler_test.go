package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/value"
)

var testLimits = config.VMLimits{MaxStack: 16384, MaxFrames: 64, MaxConstants: 256, MaxLocals: 256}

func compile(t *testing.T, src string) *bytecode.ObjFunction {
	t.Helper()
	fn, err := Compile(src, value.NewInterner(), testLimits)
	require.NoError(t, err)
	require.NotNil(t, fn)
	return fn
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	_, err := Compile(src, value.NewInterner(), testLimits)
	return err
}

func TestCompileArithmeticEmitsExpectedOps(t *testing.T) {
	fn := compile(t, "1 + 2 * 3;")
	ops := opsOf(fn.Chunk.Code)
	assert.Contains(t, ops, bytecode.OpMultiply)
	assert.Contains(t, ops, bytecode.OpAdd)
	assert.Equal(t, bytecode.OpPop, ops[len(ops)-3]) // expression statement pops its value, before the implicit nil return
}

func TestCompileVarDeclarationWithoutInitializerEmitsNil(t *testing.T) {
	fn := compile(t, "var x;")
	ops := opsOf(fn.Chunk.Code)
	assert.Contains(t, ops, bytecode.OpNil)
	assert.Contains(t, ops, bytecode.OpDefineGlobal)
}

func TestCompileLocalShadowingSameScopeErrors(t *testing.T) {
	err := compileErr(t, `{ var a = 1; var a = 2; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Already a variable with this name in this scope.")
}

func TestCompileSelfReferentialInitializerErrors(t *testing.T) {
	err := compileErr(t, `{ var a = a; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't read local variable in its own initializer.")
}

func TestCompileShadowingAcrossScopesIsAllowed(t *testing.T) {
	fn := compile(t, `{ var a = 1; { var a = 2; print a; } print a; }`)
	assert.Contains(t, opsOf(fn.Chunk.Code), bytecode.OpGetLocal)
}

func TestCompileReturnAtTopLevelErrors(t *testing.T) {
	err := compileErr(t, `return 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestCompileReturnInsideFunctionIsAllowed(t *testing.T) {
	fn := compile(t, `fun f() { return 1; }`)
	// constant 0 is the global name "f", constant 1 the compiled function
	require.Len(t, fn.Chunk.Constants, 2)
	nested, ok := fn.Chunk.Constants[1].AsObj().(*bytecode.ObjFunction)
	require.True(t, ok)
	assert.Equal(t, "f", nested.Name)
	assert.Contains(t, opsOf(nested.Chunk.Code), bytecode.OpReturn)
}

func TestCompileInvalidAssignmentTargetErrors(t *testing.T) {
	err := compileErr(t, `1 + 2 = 3;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestCompileFunctionArityTracked(t *testing.T) {
	fn := compile(t, `fun add(a, b) { return a + b; }`)
	nested := fn.Chunk.Constants[1].AsObj().(*bytecode.ObjFunction)
	assert.Equal(t, 2, nested.Arity)
}

func TestCompileWhileLoopEmitsBackwardJump(t *testing.T) {
	fn := compile(t, `var i = 0; while (i < 3) { i = i + 1; }`)
	assert.Contains(t, opsOf(fn.Chunk.Code), bytecode.OpLoop)
}

func TestCompileForLoopDesugarsToLoop(t *testing.T) {
	fn := compile(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	assert.Contains(t, opsOf(fn.Chunk.Code), bytecode.OpLoop)
	assert.Contains(t, opsOf(fn.Chunk.Code), bytecode.OpPrint)
}

func TestCompileMultipleSyntaxErrorsAreAllReported(t *testing.T) {
	err := compileErr(t, "1 +; 2 +;")
	require.Error(t, err)
	list, ok := err.(ErrorList)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(list), 2)
}

func TestCompileCallExpression(t *testing.T) {
	fn := compile(t, `clock();`)
	assert.Contains(t, opsOf(fn.Chunk.Code), bytecode.OpCall)
}

func TestCompileScanErrorMessageHasNoRedundantWhereClause(t *testing.T) {
	err := compileErr(t, "#;")
	require.Error(t, err)
	assert.Equal(t, "[line 1] Error: Unexpected character.", err.Error())
}

func TestCompileUnterminatedStringMessageHasNoRedundantWhereClause(t *testing.T) {
	err := compileErr(t, `"unterminated`)
	require.Error(t, err)
	assert.Equal(t, "[line 1] Error: Unterminated string.", err.Error())
}

func TestCompileErrorMessageIncludesOffendingToken(t *testing.T) {
	err := compileErr(t, "var ;")
	require.Error(t, err)
	assert.Equal(t, "[line 1] Error at ';': Expect variable name.", err.Error())
}

func TestCompileHonorsConfiguredMaxLocals(t *testing.T) {
	lim := config.VMLimits{MaxStack: 16384, MaxFrames: 64, MaxConstants: 256, MaxLocals: 2}
	_, err := Compile(`{ var a = 1; var b = 2; var c = 3; }`, value.NewInterner(), lim)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many local variables in function.")
}

func TestCompileHonorsConfiguredMaxConstants(t *testing.T) {
	lim := config.VMLimits{MaxStack: 16384, MaxFrames: 64, MaxConstants: 2, MaxLocals: 256}
	_, err := Compile(`1; 2; 3;`, value.NewInterner(), lim)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many constants in one chunk.")
}

func TestCompileClampsOutOfRangeConfiguredLimits(t *testing.T) {
	// A configured limit beyond the byte-operand ceiling (or <= 0, unset)
	// clamps to the hard default of 256 rather than over- or under-flowing.
	lim := config.VMLimits{MaxStack: 16384, MaxFrames: 64, MaxConstants: 0, MaxLocals: 100000}
	fn, err := Compile(`fun f() { return 1; }`, value.NewInterner(), lim)
	require.NoError(t, err)
	require.NotNil(t, fn)
}

// opsOf decodes a raw bytecode stream into just its opcodes, skipping over
// operand bytes, for assertions that don't care about operand values.
func opsOf(code []byte) []bytecode.OpCode {
	var ops []bytecode.OpCode
	for i := 0; i < len(code); {
		op := bytecode.OpCode(code[i])
		ops = append(ops, op)
		switch op {
		case bytecode.OpConstant, bytecode.OpGetLocal, bytecode.OpSetLocal,
			bytecode.OpGetGlobal, bytecode.OpSetGlobal, bytecode.OpDefineGlobal,
			bytecode.OpCall:
			i += 2
		case bytecode.OpJump, bytecode.OpJumpIfFalse, bytecode.OpLoop:
			i += 3
		default:
			i++
		}
	}
	return ops
}
