// Package bytecode defines the instruction set, the append-only code buffer
// a function compiles into, and the runtime function object that owns one.
package bytecode

import "fmt"

// OpCode is a single bytecode instruction.
type OpCode uint8

// "x OP y -> z" is a stack picture: values consumed (left of the arrow, top
// of stack last) and produced (right of the arrow) by the instruction.
const ( //nolint:revive
	// OpConstant pushes constants[operand]. Operand: 1-byte constant index.
	OpConstant OpCode = iota
	OpNil     // - -> nil
	OpTrue    // - -> true
	OpFalse   // - -> false
	OpPop     // x ->

	// OpGetLocal / OpSetLocal: 1-byte frame-relative slot index.
	OpGetLocal // - -> frame[slot]
	OpSetLocal // x -> x               (leaves x on the stack)

	// OpGetGlobal / OpSetGlobal / OpDefineGlobal: 1-byte constant index of the
	// global's interned name.
	OpGetGlobal    // - -> globals[name]
	OpSetGlobal    // x -> x           (leaves x on the stack)
	OpDefineGlobal // x ->             (globals[name] = x)

	OpEqual   // x y -> bool
	OpGreater // x y -> bool
	OpLess    // x y -> bool

	OpAdd      // x y -> z
	OpSubtract // x y -> z
	OpMultiply // x y -> z
	OpDivide   // x y -> z
	OpModulo   // x y -> z

	OpNot    // x -> bool
	OpNegate // x -> -x

	OpPrint // x ->

	// OpJump / OpJumpIfFalse: 2-byte (big-endian) forward offset, added to ip
	// immediately after the operand.
	OpJump        // - ->
	OpJumpIfFalse // x -> x           (peeks, does not pop)

	// OpLoop: 2-byte (big-endian) backward offset, subtracted from ip
	// immediately after the operand.
	OpLoop // - ->

	// OpCall: 1-byte argument count. Consumes argc args plus the callee.
	OpCall // callee arg1..argN -> result

	OpReturn // x -> (to caller)

	opCodeCount
)

var opCodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpModulo:       "OP_MODULO",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpReturn:       "OP_RETURN",
}

func (op OpCode) String() string {
	if op < opCodeCount {
		return opCodeNames[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", byte(op))
}
