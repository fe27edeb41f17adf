package value

import (
	"github.com/dolthub/swiss"
)

// Interner canonicalizes strings by content so that equal contents share one
// *ObjString. Backed by a swiss-table map rather than a bare Go map: the
// table is consulted for every string literal and global-name constant the
// compiler emits and for every string concatenation the VM performs.
//
// An Interner is shared by the compiler (which interns string literals and
// global-name constants as it emits bytecode) and the VM (which interns
// runtime concatenation results), matching the single persistent string
// table described by the data model.
type Interner struct {
	strings *swiss.Map[string, *ObjString]
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{strings: swiss.NewMap[string, *ObjString](64)}
}

// Intern returns the canonical *ObjString for s, allocating and storing one
// on first use.
func (in *Interner) Intern(s string) *ObjString {
	if obj, ok := in.strings.Get(s); ok {
		return obj
	}
	obj := &ObjString{Chars: s}
	in.strings.Put(s, obj)
	return obj
}

// Len reports the number of distinct strings currently interned.
func (in *Interner) Len() int { return in.strings.Count() }
