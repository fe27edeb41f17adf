package vm

import "github.com/wisplang/wisp/pkg/value"

// NativeFn is the signature every native function implements: given its
// arguments (already arity-checked against the Native that owns it), return
// a value or a runtime error that propagates to the caller with the
// native's own message.
type NativeFn func(args []value.Value) (value.Value, error)

// ObjNative is a host-language function exposed to scripts through the same
// calling convention as an ordinary function value, distinguished at the
// call site only by how the VM dispatches it.
type ObjNative struct {
	Name  string
	Arity int
	Fn    NativeFn
}

func (n *ObjNative) ObjType() value.ObjType { return value.ObjTypeNative }
func (n *ObjNative) String() string         { return "<native fn>" }
