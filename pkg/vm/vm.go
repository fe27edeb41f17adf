// Package vm implements the stack-based virtual machine that executes
// compiled chunks: a value stack, a call-frame stack, a global variable
// table, and the native-function calling convention.
package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/dolthub/swiss"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/value"
)

// VM is the persistent, session-long interpreter state: constructed once
// (optionally with pre-registered natives), it runs one compiled function
// per Run call, retaining globals and the interned-string table across
// calls within the same session (the REPL's convenience).
type VM struct {
	stack  []value.Value
	frames []callFrame

	maxStack  int
	maxFrames int

	globals  *swiss.Map[string, value.Value]
	interner *value.Interner

	stdout io.Writer
}

// New creates a VM bounded by lim, writing print-statement output to
// stdout, and sharing interner with the compiler that produced the chunks
// it will run (so literal and runtime-concatenated strings intern into the
// same table).
func New(lim config.VMLimits, interner *value.Interner, stdout io.Writer) *VM {
	return &VM{
		stack:     make([]value.Value, 0, lim.MaxStack),
		frames:    make([]callFrame, 0, lim.MaxFrames),
		maxStack:  lim.MaxStack,
		maxFrames: lim.MaxFrames,
		globals:   swiss.NewMap[string, value.Value](32),
		interner:  interner,
		stdout:    stdout,
	}
}

// DefineNative registers a host function in the globals table under name,
// available to scripts exactly like any other global.
func (vm *VM) DefineNative(name string, arity int, fn NativeFn) {
	vm.globals.Put(name, value.NewObj(&ObjNative{Name: name, Arity: arity, Fn: fn}))
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
}

// Run executes fn as the top-level script: pushes it, invokes it with no
// arguments, and runs the dispatch loop to completion. Any runtime error
// resets the stack and frames before being returned, so the VM is ready
// for the next Run (a fresh REPL line, retaining globals).
func (vm *VM) Run(fn *bytecode.ObjFunction) error {
	vm.resetStack()
	vm.push(value.NewObj(fn))
	if err := vm.call(fn, 0); err != nil {
		vm.resetStack()
		return err
	}
	if err := vm.run(); err != nil {
		vm.resetStack()
		return err
	}
	return nil
}

// call pushes a new frame invoking fn with argCount arguments already on
// the stack (the callee itself sits just below them, at the new frame's
// base), after checking arity and frame-stack capacity.
func (vm *VM) call(fn *bytecode.ObjFunction, argCount int) error {
	if argCount != fn.Arity {
		return vm.runtimeErrorf("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if len(vm.frames) >= vm.maxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, callFrame{
		function: fn,
		base:     len(vm.stack) - argCount - 1,
	})
	return nil
}

// callValue dispatches a Call instruction's callee, which may be a script
// function, a native, or (an error) anything else.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	if callee.IsObjType(value.ObjTypeFunction) {
		fn := callee.AsObj().(*bytecode.ObjFunction)
		return vm.call(fn, argCount)
	}
	if callee.IsObjType(value.ObjTypeNative) {
		native := callee.AsObj().(*ObjNative)
		if argCount != native.Arity {
			return vm.runtimeErrorf("Expected %d arguments but got %d.", native.Arity, argCount)
		}
		args := make([]value.Value, argCount)
		copy(args, vm.stack[len(vm.stack)-argCount:])
		vm.stack = vm.stack[:len(vm.stack)-argCount-1] // drop args and the native itself
		result, err := native.Fn(args)
		if err != nil {
			return vm.runtimeError(err.Error())
		}
		vm.push(result)
		return nil
	}
	return vm.runtimeError("Can only call functions and classes.")
}

func (vm *VM) runtimeError(msg string) error { return vm.buildRuntimeError(msg) }

func (vm *VM) runtimeErrorf(format string, a ...any) error {
	return vm.buildRuntimeError(fmt.Sprintf(format, a...))
}

func (vm *VM) buildRuntimeError(msg string) error {
	trace := make([]string, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := &vm.frames[i]
		name := "script"
		if f.function.Name != "" {
			name = f.function.Name + "()"
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", f.line(), name))
	}
	return &RuntimeError{Message: msg, Trace: trace}
}

// run is the bytecode dispatch loop: read one opcode from the top frame,
// advance past its operands, execute. Returns nil once the top-level
// script frame returns.
func (vm *VM) run() error {
	for {
		if len(vm.stack) > vm.maxStack {
			return vm.runtimeError("Stack overflow.")
		}

		frame := &vm.frames[len(vm.frames)-1]
		op := bytecode.OpCode(frame.readByte())

		switch op {
		case bytecode.OpConstant:
			vm.push(frame.chunk().Constants[frame.readByte()])

		case bytecode.OpNil:
			vm.push(value.Nil)
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := frame.readByte()
			vm.push(vm.stack[frame.base+int(slot)])
		case bytecode.OpSetLocal:
			slot := frame.readByte()
			vm.stack[frame.base+int(slot)] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := frame.chunk().Constants[frame.readByte()].AsString()
			v, ok := vm.globals.Get(name.Chars)
			if !ok {
				return vm.runtimeErrorf("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case bytecode.OpSetGlobal:
			name := frame.chunk().Constants[frame.readByte()].AsString()
			if _, ok := vm.globals.Get(name.Chars); !ok {
				return vm.runtimeErrorf("Undefined variable '%s'.", name.Chars)
			}
			vm.globals.Put(name.Chars, vm.peek(0))
		case bytecode.OpDefineGlobal:
			name := frame.chunk().Constants[frame.readByte()].AsString()
			vm.globals.Put(name.Chars, vm.peek(0))
			vm.pop()

		case bytecode.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OpGreater:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a > b) }); err != nil {
				return err
			}
		case bytecode.OpLess:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a < b) }); err != nil {
				return err
			}

		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case bytecode.OpSubtract:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a - b) }); err != nil {
				return err
			}
		case bytecode.OpMultiply:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a * b) }); err != nil {
				return err
			}
		case bytecode.OpDivide:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a / b) }); err != nil {
				return err
			}
		case bytecode.OpModulo:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(math.Mod(a, b)) }); err != nil {
				return err
			}

		case bytecode.OpNot:
			vm.push(value.Bool(!value.Truthy(vm.pop())))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case bytecode.OpJump:
			offset := frame.readShort()
			frame.ip += offset
		case bytecode.OpJumpIfFalse:
			offset := frame.readShort()
			if !value.Truthy(vm.peek(0)) {
				frame.ip += offset
			}
		case bytecode.OpLoop:
			offset := frame.readShort()
			frame.ip -= offset

		case bytecode.OpCall:
			argCount := int(frame.readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}

		case bytecode.OpReturn:
			result := vm.pop()
			returningBase := frame.base
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.stack = vm.stack[:returningBase]
			vm.push(result)
			if len(vm.frames) == 0 {
				return nil
			}

		default:
			panic("vm: unreachable opcode " + op.String())
		}
	}
}

// add implements the overloaded Add instruction: number+number is
// arithmetic; string+anything coerces the right operand to its display
// form and concatenates; anything else is a runtime error.
func (vm *VM) add() error {
	b, a := vm.pop(), vm.pop()
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
	case a.IsObjType(value.ObjTypeString):
		concat := a.AsString().Chars + b.String()
		vm.push(value.NewObj(vm.interner.Intern(concat)))
	default:
		return vm.runtimeError("Operands must be two numbers or left operand must be a string.")
	}
	return nil
}

func (vm *VM) binaryNumberOp(op func(a, b float64) value.Value) error {
	b, a := vm.pop(), vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.push(op(a.AsNumber(), b.AsNumber()))
	return nil
}
