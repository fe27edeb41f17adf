// Package value implements the tagged-union value representation shared by
// the compiler and the VM: nil, booleans, 64-bit floats, and heap objects
// (strings, functions, natives). Strings are interned through an Interner so
// that equal contents share one *ObjString.
package value

import (
	"math"
	"strconv"
)

// Type is the tag of a Value.
type Type uint8

const (
	TypeNil Type = iota
	TypeBool
	TypeNumber
	TypeObj
)

// ObjType identifies the concrete kind of a heap Obj.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
)

// Obj is implemented by every heap-allocated value kind. Concrete types live
// in whichever package owns their extra state: ObjString here (it has none
// beyond its content), ObjFunction in pkg/bytecode (it owns a Chunk), and
// ObjNative in pkg/vm (it owns a Go function pointer).
type Obj interface {
	ObjType() ObjType
	String() string
}

// Value is a single wisp runtime value: nil, a bool, a number, or a
// reference to a heap Obj. The zero Value is Nil.
type Value struct {
	typ Type
	num float64
	obj Obj
}

// Nil is the nil value.
var Nil = Value{typ: TypeNil}

// Bool returns the boolean value b.
func Bool(b bool) Value {
	if b {
		return Value{typ: TypeBool, num: 1}
	}
	return Value{typ: TypeBool, num: 0}
}

// Number returns the numeric value f.
func Number(f float64) Value { return Value{typ: TypeNumber, num: f} }

// NewObj returns a Value wrapping the heap object o.
func NewObj(o Obj) Value { return Value{typ: TypeObj, obj: o} }

func (v Value) Type() Type { return v.typ }

func (v Value) IsNil() bool    { return v.typ == TypeNil }
func (v Value) IsBool() bool   { return v.typ == TypeBool }
func (v Value) IsNumber() bool { return v.typ == TypeNumber }
func (v Value) IsObj() bool    { return v.typ == TypeObj }

// AsBool returns the value as a bool. The caller must have checked IsBool.
func (v Value) AsBool() bool { return v.num != 0 }

// AsNumber returns the value as a float64. The caller must have checked
// IsNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsObj returns the value as an Obj. The caller must have checked IsObj.
func (v Value) AsObj() Obj { return v.obj }

// IsObjType reports whether v is a heap object of the given kind.
func (v Value) IsObjType(t ObjType) bool {
	return v.typ == TypeObj && v.obj.ObjType() == t
}

// AsString returns the value as an *ObjString. The caller must have checked
// IsObjType(ObjTypeString).
func (v Value) AsString() *ObjString { return v.obj.(*ObjString) }

// Truthy implements wisp's truthiness rule: only Nil and Bool(false) are
// falsy, everything else (including 0 and the empty string) is truthy.
func Truthy(v Value) bool {
	switch v.typ {
	case TypeNil:
		return false
	case TypeBool:
		return v.AsBool()
	default:
		return true
	}
}

// Equal implements wisp's equality rule: structural for nil/bool/number,
// by content for strings (compared as strings, so an ObjString built outside
// the Interner still compares equal), identity for functions and natives.
// Values of different types are never equal.
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeNil:
		return true
	case TypeBool, TypeNumber:
		return a.num == b.num
	case TypeObj:
		if as, ok := a.obj.(*ObjString); ok {
			bs, ok := b.obj.(*ObjString)
			return ok && *as == *bs
		}
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v using the language's print-sink display rules (§6):
// nil -> "nil", booleans -> "true"/"false", numbers -> shortest decimal
// without a trailing ".0" when integral, strings -> raw content, objects ->
// their own String().
func (v Value) String() string {
	switch v.typ {
	case TypeNil:
		return "nil"
	case TypeBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(v.num)
	case TypeObj:
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

// formatNumber prints f the way the language family conventionally does:
// integral floats without a trailing ".0", everything else in the shortest
// round-tripping decimal form.
func formatNumber(f float64) string {
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) &&
		f >= -1e15 && f <= 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ObjString is an immutable, interned string.
type ObjString struct {
	Chars string
}

func (s *ObjString) ObjType() ObjType { return ObjTypeString }
func (s *ObjString) String() string   { return s.Chars }
