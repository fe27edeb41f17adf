package vm

import (
	"time"

	"github.com/wisplang/wisp/pkg/value"
)

// DefineStandardNatives registers every native function the language
// requires (just clock, per the non-goal "standard-library breadth beyond
// clock").
func (vm *VM) DefineStandardNatives() {
	vm.DefineNative("clock", 0, nativeClock)
}

func nativeClock(_ []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}
