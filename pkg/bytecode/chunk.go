package bytecode

import (
	"fmt"

	"github.com/wisplang/wisp/pkg/value"
)

// MaxConstants is the hard ceiling on the number of distinct constants a
// single Chunk may hold: constant operands are single bytes. It also
// doubles as Chunk.MaxConstants' default when a caller leaves it unset.
const MaxConstants = 256

// Chunk is an append-only bytecode buffer: a byte-code stream, a parallel
// constant pool, and a parallel line-number table (one entry per code byte)
// used solely to annotate runtime errors with a source line.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value

	// MaxConstants overrides the package default for this chunk; zero means
	// "use MaxConstants". A compiler threading a configured, env-overridable
	// limit sets this directly.
	MaxConstants int
}

func (c *Chunk) maxConstants() int {
	if c.MaxConstants > 0 {
		return c.MaxConstants
	}
	return MaxConstants
}

// Write appends a single byte (an opcode or an operand byte) produced while
// compiling source line, keeping Lines in lockstep with Code.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index, or an
// error if the pool is already at its max (MaxConstants, or Chunk.MaxConstants
// when set).
func (c *Chunk) AddConstant(v value.Value) (int, error) {
	if len(c.Constants) >= c.maxConstants() {
		return 0, fmt.Errorf("too many constants in one chunk")
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, nil
}
