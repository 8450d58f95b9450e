package vm

import (
	"time"

	"github.com/kristofer/tinybc/pkg/value"
)

// defineNatives installs the native functions every VM starts with
// (spec.md §4.5's clock(), measured from the moment the VM was created
// rather than the Unix epoch since only elapsed time is useful to a script).
func (vm *VM) defineNatives() {
	vm.defineNative("clock", 0, func(args []value.Value) (value.Value, error) {
		return value.Number_(time.Since(vm.processStart).Seconds()), nil
	})
}

func (vm *VM) defineNative(name string, _ int, fn value.NativeFn) {
	nameRef := vm.arena.Intern(name)
	nativeRef := vm.arena.NewNative(name, fn)
	vm.globals.Set(nameRef, value.Obj_(nativeRef), vm.arena)
}
