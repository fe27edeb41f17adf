package bytecode

import (
	"fmt"

	"github.com/wisplang/wisp/pkg/value"
)

// ObjFunction is the compiled, immutable form of a function declaration (or
// the implicit top-level script, which has an empty Name). The enclosing
// function's constant pool owns every nested function value it references,
// so a function's chunk stays reachable for as long as the function that
// declared it does.
type ObjFunction struct {
	Name  string
	Arity int
	Chunk Chunk
}

func (f *ObjFunction) ObjType() value.ObjType { return value.ObjTypeFunction }

func (f *ObjFunction) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
