// Package vm implements tinybc's stack-based bytecode interpreter
// (spec.md §4.5): a call-frame stack, a value stack, and the instruction
// dispatch loop.
//
// The VM is an explicit Go value returned by New, not a package-level
// singleton (spec.md §9's redesign note): globals, the string intern
// table, and the object arena are all fields of *VM, so a process can run
// more than one independently.
package vm

import (
	"fmt"
	"io"
	"time"

	"github.com/kristofer/tinybc/pkg/compiler"
	"github.com/kristofer/tinybc/pkg/debug"
	"github.com/kristofer/tinybc/pkg/op"
	"github.com/kristofer/tinybc/pkg/table"
	"github.com/kristofer/tinybc/pkg/value"
)

// Result is the outcome of an Interpret call (spec.md §6: the exit codes
// the CLI maps these onto).
type Result int

const (
	OK Result = iota
	CompileError
	RuntimeError
)

// Config tunes VM limits. Defaults match spec.md's constants.
type Config struct {
	InitialStackSize int
	MaxFrames        int
	Trace            bool
}

// DefaultConfig returns spec.md's defaults: max call-frame depth 64.
func DefaultConfig() Config {
	return Config{InitialStackSize: 256, MaxFrames: 64, Trace: false}
}

// frame is a call-frame activation record: which closure is executing,
// where its instruction pointer is, and which stack slot is its slot 0.
type frame struct {
	closure value.Ref // ClosureObj
	ip      int
	base    int
}

// VM holds all per-process interpreter state: the value stack, the frame
// stack, globals, the object arena (which also owns the string intern
// table), and the open-upvalue list.
type VM struct {
	cfg Config

	arena *value.Arena

	stack []value.Value
	sp    int

	frames []frame

	globals *table.Table

	// openUpvalues is kept sorted by strictly decreasing stack slot
	// (spec.md §8 invariant), highest slot first, so
	// closeUpvalues can stop walking at the first slot below its target.
	openUpvalues []value.Ref

	processStart time.Time

	stdout io.Writer
	stderr io.Writer
}

// New creates a VM ready to Interpret programs. stdout receives `print`
// output; stderr receives compile/runtime diagnostics and, when
// cfg.Trace is set, the execution trace.
func New(cfg Config, stdout, stderr io.Writer) *VM {
	vm := &VM{
		cfg:          cfg,
		arena:        value.NewArena(),
		stack:        make([]value.Value, cfg.InitialStackSize),
		globals:      table.New(),
		processStart: time.Now(),
		stdout:       stdout,
		stderr:       stderr,
	}
	vm.defineNatives()
	return vm
}

// Arena exposes the VM's object arena so callers can render constants
// compiled into it without executing them.
func (vm *VM) Arena() *value.Arena { return vm.arena }

// Interpret compiles and runs source end to end (spec.md §5's strictly
// serial "compile, then run" pipeline for a single call).
func (vm *VM) Interpret(source string) Result {
	fn, ok := compiler.Compile(source, vm.arena, vm.stderr)
	if !ok {
		return CompileError
	}

	fnRef := vm.arena.NewFunction(fn)
	closureRef := vm.arena.NewClosure(fnRef, nil)

	vm.sp = 0
	vm.frames = vm.frames[:0]
	vm.openUpvalues = vm.openUpvalues[:0]

	vm.push(value.Obj_(closureRef))
	if err := vm.call(closureRef, 0); err != nil {
		vm.reportRuntimeError(err)
		return RuntimeError
	}

	if err := vm.run(); err != nil {
		vm.reportRuntimeError(err)
		return RuntimeError
	}
	return OK
}

// --- value stack ---

func (vm *VM) push(v value.Value) {
	if vm.sp == len(vm.stack) {
		vm.stack = append(vm.stack, v)
	} else {
		vm.stack[vm.sp] = v
	}
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

// --- dispatch loop ---

// run executes instructions starting at the top frame until the outermost
// call frame returns, or a runtime error aborts it.
func (vm *VM) run() error {
	for {
		fr := &vm.frames[len(vm.frames)-1]
		closure := vm.arena.Closure(fr.closure)
		fn := vm.arena.Function(closure.Function)
		chunk := fn.Chunk

		if vm.cfg.Trace {
			vm.traceLine(chunk, fr.ip)
		}

		instr := op.Code(chunk.Code[fr.ip])
		fr.ip++

		switch instr {
		case op.Constant:
			vm.push(chunk.Constants[vm.readByte(fr, chunk)])

		case op.Nil:
			vm.push(value.NilValue)
		case op.True:
			vm.push(value.Bool_(true))
		case op.False:
			vm.push(value.Bool_(false))
		case op.Pop:
			vm.pop()

		case op.GetLocal:
			slot := vm.readByte(fr, chunk)
			vm.push(vm.stack[fr.base+int(slot)])
		case op.SetLocal:
			slot := vm.readByte(fr, chunk)
			vm.stack[fr.base+int(slot)] = vm.peek(0)

		case op.GetGlobal:
			name := chunk.Constants[vm.readByte(fr, chunk)].AsRef()
			v, ok := vm.globals.Get(name, vm.arena)
			if !ok {
				return vm.runtimeErrorf("Undefined variable '%s'.", vm.arena.String(name).Chars)
			}
			vm.push(v)
		case op.DefineGlobal:
			name := chunk.Constants[vm.readByte(fr, chunk)].AsRef()
			vm.globals.Set(name, vm.peek(0), vm.arena)
			vm.pop()
		case op.SetGlobal:
			name := chunk.Constants[vm.readByte(fr, chunk)].AsRef()
			if _, present := vm.globals.Get(name, vm.arena); !present {
				return vm.runtimeErrorf("Undefined variable '%s'.", vm.arena.String(name).Chars)
			}
			// Check-then-set is not re-probed atomically against a
			// concurrent definition: tinybc has no concurrency, so the
			// two-step Get-then-Set here can never race (see DESIGN.md).
			vm.globals.Set(name, vm.peek(0), vm.arena)

		case op.GetUpvalue:
			idx := vm.readByte(fr, chunk)
			vm.push(vm.readUpvalue(closure.Upvalues[idx]))
		case op.SetUpvalue:
			idx := vm.readByte(fr, chunk)
			vm.writeUpvalue(closure.Upvalues[idx], vm.peek(0))

		case op.Equal:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool_(value.Equal(a, b)))
		case op.Greater:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Bool_(a > b) }); err != nil {
				return err
			}
		case op.Less:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Bool_(a < b) }); err != nil {
				return err
			}

		case op.Add:
			if err := vm.add(); err != nil {
				return err
			}
		case op.Subtract:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Number_(a - b) }); err != nil {
				return err
			}
		case op.Multiply:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Number_(a * b) }); err != nil {
				return err
			}
		case op.Divide:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Number_(a / b) }); err != nil {
				return err
			}

		case op.Not:
			vm.push(value.Bool_(!vm.pop().Truthy()))
		case op.Negate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeErrorf("Operand must be a number.")
			}
			vm.push(value.Number_(-vm.pop().AsNumber()))

		case op.Print:
			fmt.Fprintln(vm.stdout, vm.arena.Stringify(vm.pop()))

		case op.Jump:
			offset := vm.readShort(fr, chunk)
			fr.ip += offset
		case op.JumpIfFalse:
			offset := vm.readShort(fr, chunk)
			if !vm.peek(0).Truthy() {
				fr.ip += offset
			}
		case op.Loop:
			offset := vm.readShort(fr, chunk)
			fr.ip -= offset

		case op.Call:
			argc := int(vm.readByte(fr, chunk))
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}

		case op.Closure:
			fnIdx := vm.readByte(fr, chunk)
			fnRef := chunk.Constants[fnIdx].AsRef()
			calleeFn := vm.arena.Function(fnRef)
			upvalues := make([]value.Ref, calleeFn.UpvalueCnt)
			for i := 0; i < calleeFn.UpvalueCnt; i++ {
				isLocal := vm.readByte(fr, chunk)
				index := vm.readByte(fr, chunk)
				if isLocal != 0 {
					upvalues[i] = vm.captureUpvalue(fr.base + int(index))
				} else {
					upvalues[i] = closure.Upvalues[index]
				}
			}
			vm.push(value.Obj_(vm.arena.NewClosure(fnRef, upvalues)))

		case op.CloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case op.Return:
			result := vm.pop()
			vm.closeUpvalues(fr.base)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}
			vm.sp = fr.base
			vm.push(result)

		default:
			return vm.runtimeErrorf("Unknown opcode %d.", instr)
		}
	}
}

func (vm *VM) readByte(fr *frame, chunk *value.Chunk) byte {
	b := chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readShort(fr *frame, chunk *value.Chunk) int {
	hi, lo := chunk.Code[fr.ip], chunk.Code[fr.ip+1]
	fr.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) numericBinary(f func(a, b float64) value.Value) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	b, a := vm.pop(), vm.pop()
	vm.push(f(a.AsNumber(), b.AsNumber()))
	return nil
}

// add implements ADD's dual semantics (spec.md §4.2): numeric addition, or
// string concatenation when both operands are already-interned strings.
func (vm *VM) add() error {
	bv, av := vm.peek(0), vm.peek(1)
	switch {
	case av.IsNumber() && bv.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number_(av.AsNumber() + bv.AsNumber()))
	case av.IsObj() && bv.IsObj() && vm.arena.Kind(av.AsRef()) == value.ObjString && vm.arena.Kind(bv.AsRef()) == value.ObjString:
		vm.pop()
		vm.pop()
		vm.push(value.Obj_(vm.arena.Concat(av.AsRef(), bv.AsRef())))
	default:
		return vm.runtimeErrorf("Operands must be two numbers or two strings.")
	}
	return nil
}

func (vm *VM) traceLine(chunk *value.Chunk, ip int) {
	fmt.Fprint(vm.stderr, "          ")
	for i := 0; i < vm.sp; i++ {
		fmt.Fprintf(vm.stderr, "[ %s ]", vm.arena.Stringify(vm.stack[i]))
	}
	fmt.Fprintln(vm.stderr)
	debug.Instruction(vm.stderr, chunk, vm.arena, ip)
}
