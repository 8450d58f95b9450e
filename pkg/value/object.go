package value

// ObjKind identifies which heap object payload a Ref names.
type ObjKind int

const (
	ObjString ObjKind = iota
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
)

// Ref is a stable index into an Arena naming one heap object. Values carry
// Refs rather than raw pointers (spec.md §9's redesign note): this gives
// reference-sharing identity semantics (two Values with the same Ref are
// the same object) without an intrusive free list walked at shutdown.
type Ref int

// NilRef is never a valid object reference.
const NilRef Ref = -1

// StringObj is a heap string: its content, length, and a precomputed
// FNV-1a hash used both for table probing and to speed up interning.
type StringObj struct {
	Chars string
	Hash  uint32
}

// FunctionObj is a compiled function: its arity, the number of upvalues it
// captures, the chunk of bytecode forming its body, and an optional name
// (NilRef for the implicit top-level script function).
type FunctionObj struct {
	Arity      int
	UpvalueCnt int
	Chunk      *Chunk
	Name       Ref // StringObj ref, or NilRef
}

// NativeFn is a Go-implemented function exposed to tinybc programs, such
// as clock(). It receives its arguments and returns a Value or an error
// (surfaced to the VM as a runtime error).
type NativeFn func(args []Value) (Value, error)

// NativeObj wraps a NativeFn together with its name, for printing.
type NativeObj struct {
	Name string
	Fn   NativeFn
}

// ClosureObj pairs a FunctionObj with the Upvalue refs it captured at
// creation time.
type ClosureObj struct {
	Function Ref // FunctionObj ref
	Upvalues []Ref
}

// UpvalueObj is "open" while Location names a live stack slot (Closed is
// false) and "closed" once that slot has gone out of scope, at which point
// it owns its value directly in Closed/Value.
type UpvalueObj struct {
	Location int // stack slot index, meaningful only while open
	Closed   bool
	Value    Value
}

// object is the union of payloads an Arena slot can hold.
type object struct {
	kind     ObjKind
	str      *StringObj
	fn       *FunctionObj
	native   *NativeObj
	closure  *ClosureObj
	upvalue  *UpvalueObj
}

// FNV1a computes the 32-bit FNV-1a hash of s, matching spec.md §3's String
// payload and §4.3's string-intern hashing.
func FNV1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
