// Package driver glues the scanner (invoked implicitly by the compiler),
// the compiler, and the VM into the single entry point external callers
// use: compile source, then run it if compilation succeeded.
package driver

import (
	"io"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/compiler"
	"github.com/wisplang/wisp/pkg/value"
	"github.com/wisplang/wisp/pkg/vm"
)

// Status is the three-way outcome of a single Interpret call.
type Status int

const (
	StatusOK Status = iota
	StatusCompileError
	StatusRuntimeError
)

// Driver holds the VM and interner state that must persist across
// Interpret calls within one session (a file run, or a REPL): the globals
// table and the interned-string set survive from one call to the next,
// giving the REPL "retain globals between lines" convenience.
type Driver struct {
	vm       *vm.VM
	interner *value.Interner
	limits   config.VMLimits
}

// New creates a Driver bounded by lim, with print output going to stdout
// and the standard natives (clock) pre-registered. lim bounds both the
// VM's runtime limits (stack, frames) and the compiler's compile-time
// limits (constants per chunk, locals per function).
func New(lim config.VMLimits, stdout io.Writer) *Driver {
	interner := value.NewInterner()
	v := vm.New(lim, interner, stdout)
	v.DefineStandardNatives()
	return &Driver{vm: v, interner: interner, limits: lim}
}

// Interpret compiles source and, if compilation succeeds, runs it. A
// compile error never invokes the VM. The returned error (if any) is
// already formatted for display to the user; it carries no other
// structured information callers need beyond Status.
func (d *Driver) Interpret(source string) (Status, error) {
	fn, err := compiler.Compile(source, d.interner, d.limits)
	if err != nil {
		return StatusCompileError, err
	}
	if err := d.vm.Run(fn); err != nil {
		return StatusRuntimeError, err
	}
	return StatusOK, nil
}
