package vm

import "github.com/kristofer/tinybc/pkg/value"

// callValue dispatches a CALL instruction: callee must be a closure or a
// native function (spec.md §4.5); anything else is a runtime error.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	if !callee.IsObj() {
		return vm.runtimeErrorf("Can only call functions and classes.")
	}
	switch vm.arena.Kind(callee.AsRef()) {
	case value.ObjClosure:
		return vm.call(callee.AsRef(), argCount)
	case value.ObjNative:
		return vm.callNative(callee.AsRef(), argCount)
	default:
		return vm.runtimeErrorf("Can only call functions and classes.")
	}
}

func (vm *VM) callNative(nativeRef value.Ref, argCount int) error {
	native := vm.arena.Native(nativeRef)
	args := make([]value.Value, argCount)
	copy(args, vm.stack[vm.sp-argCount:vm.sp])

	result, err := native.Fn(args)
	if err != nil {
		return vm.runtimeErrorf("%s", err.Error())
	}
	vm.sp -= argCount + 1
	vm.push(result)
	return nil
}

// call pushes a new frame for closureRef, checking arity and the call-depth
// limit (spec.md §4.5's frame stack, max depth configurable, default 64).
func (vm *VM) call(closureRef value.Ref, argCount int) error {
	closure := vm.arena.Closure(closureRef)
	fn := vm.arena.Function(closure.Function)

	if argCount != fn.Arity {
		return vm.runtimeErrorf("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if len(vm.frames) >= vm.cfg.MaxFrames {
		return vm.runtimeErrorf("Stack overflow.")
	}

	vm.frames = append(vm.frames, frame{
		closure: closureRef,
		ip:      0,
		base:    vm.sp - argCount - 1,
	})
	return nil
}

// captureUpvalue returns the open upvalue over stack slot, creating one if
// none yet exists. openUpvalues stays sorted by strictly decreasing slot so
// closeUpvalues can stop at the first slot below its threshold.
func (vm *VM) captureUpvalue(slot int) value.Ref {
	for _, r := range vm.openUpvalues {
		if vm.arena.Upvalue(r).Location == slot {
			return r
		}
	}

	newRef := vm.arena.NewUpvalue(slot)
	insertAt := len(vm.openUpvalues)
	for i, r := range vm.openUpvalues {
		if vm.arena.Upvalue(r).Location < slot {
			insertAt = i
			break
		}
	}
	vm.openUpvalues = append(vm.openUpvalues, value.NilRef)
	copy(vm.openUpvalues[insertAt+1:], vm.openUpvalues[insertAt:])
	vm.openUpvalues[insertAt] = newRef
	return newRef
}

// closeUpvalues closes every open upvalue at or above stack slot last,
// copying its value out of the stack before that slot is reused or
// discarded (called on scope exit and on function return).
func (vm *VM) closeUpvalues(last int) {
	i := 0
	for i < len(vm.openUpvalues) {
		r := vm.openUpvalues[i]
		up := vm.arena.Upvalue(r)
		if up.Location < last {
			break
		}
		up.Value = vm.stack[up.Location]
		up.Closed = true
		vm.openUpvalues = append(vm.openUpvalues[:i], vm.openUpvalues[i+1:]...)
	}
}

func (vm *VM) readUpvalue(r value.Ref) value.Value {
	up := vm.arena.Upvalue(r)
	if up.Closed {
		return up.Value
	}
	return vm.stack[up.Location]
}

func (vm *VM) writeUpvalue(r value.Ref, v value.Value) {
	up := vm.arena.Upvalue(r)
	if up.Closed {
		up.Value = v
	} else {
		vm.stack[up.Location] = v
	}
}
