package bytecode

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Disassemble renders every instruction in c as human-readable text, headed
// by name. An unknown opcode prints as its "illegal opcode" name and the walk
// moves on one byte. Operand bytes are not bounds-checked: an instruction
// whose operands run past the end of the code panics.
func Disassemble(c *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = disassembleInstruction(&b, c, offset)
	}
	return b.String()
}

// jumpTargets collects the resolved byte offsets that OP_JUMP/OP_JUMP_IF_FALSE/
// OP_LOOP instructions in c target, so the disassembly can mark them.
func jumpTargets(c *Chunk) []int {
	var targets []int
	for offset := 0; offset < len(c.Code); {
		op := OpCode(c.Code[offset])
		switch op {
		case OpJump, OpJumpIfFalse:
			jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
			targets = append(targets, offset+3+jump)
			offset += 3
		case OpLoop:
			jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
			targets = append(targets, offset+3-jump)
			offset += 3
		default:
			offset += instructionSize(op)
		}
	}
	return targets
}

func disassembleInstruction(b *strings.Builder, c *Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", c.Lines[offset])
	}

	if slices.Contains(jumpTargets(c), offset) {
		fmt.Fprint(b, "-> ")
	} else {
		fmt.Fprint(b, "   ")
	}

	op := OpCode(c.Code[offset])
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetGlobal, OpSetGlobal,
		OpDefineGlobal, OpCall:
		return byteInstruction(b, op, c, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(b, op, c, offset, 1)
	case OpLoop:
		return jumpInstruction(b, op, c, offset, -1)
	default:
		fmt.Fprintf(b, "%s\n", op)
		return offset + instructionSize(op)
	}
}

func byteInstruction(b *strings.Builder, op OpCode, c *Chunk, offset int) int {
	operand := c.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d", op, operand)
	switch op {
	case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal:
		if int(operand) < len(c.Constants) {
			fmt.Fprintf(b, " '%s'", c.Constants[operand])
		}
	}
	fmt.Fprintln(b)
	return offset + 2
}

func jumpInstruction(b *strings.Builder, op OpCode, c *Chunk, offset, sign int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(b, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

// instructionSize returns the total size in bytes (opcode + operand) of an
// instruction, used when walking a chunk without decoding operand values.
func instructionSize(op OpCode) int {
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetGlobal, OpSetGlobal,
		OpDefineGlobal, OpCall:
		return 2
	case OpJump, OpJumpIfFalse, OpLoop:
		return 3
	default:
		return 1
	}
}
