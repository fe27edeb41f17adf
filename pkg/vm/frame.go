package vm

import "github.com/wisplang/wisp/pkg/bytecode"

// callFrame is one active function invocation: which function is running,
// where its instruction pointer is within that function's chunk, and where
// its locals begin in the VM's value stack.
type callFrame struct {
	function *bytecode.ObjFunction
	ip       int
	base     int
}

func (f *callFrame) chunk() *bytecode.Chunk { return &f.function.Chunk }

// readByte returns the byte at ip and advances past it.
func (f *callFrame) readByte() byte {
	b := f.chunk().Code[f.ip]
	f.ip++
	return b
}

// readShort reads a 2-byte big-endian operand and advances past it.
func (f *callFrame) readShort() int {
	hi := f.chunk().Code[f.ip]
	lo := f.chunk().Code[f.ip+1]
	f.ip += 2
	return int(hi)<<8 | int(lo)
}

// line reports the source line of the instruction just executed (ip-1),
// used when annotating a stack-trace frame.
func (f *callFrame) line() int {
	return f.chunk().Lines[f.ip-1]
}
