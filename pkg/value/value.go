// Package value implements tinybc's runtime data model: the tagged Value
// union and the heap object kinds (strings, functions, natives, closures,
// upvalues).
//
// Objects are not individually heap-allocated Go pointers wandering free;
// every Object lives in an Arena owned by its VM (see arena.go) and is referred
// to by a stable Ref index. This follows spec.md §9's redesign note: Values
// carry indices, not raw pointers, which sidesteps the intrusive
// free-at-shutdown linked list the original design used while preserving
// reference-identity semantics for interned strings.
package value

import "fmt"

// Kind identifies the payload carried by a Value.
type Kind int

const (
	Nil Kind = iota
	Bool
	Number
	Obj
)

// Value is tinybc's tagged union: nil, bool, float64, or an object Ref.
type Value struct {
	kind Kind
	num  float64
	ref  Ref
}

// NilValue is the canonical nil value.
var NilValue = Value{kind: Nil}

func Bool_(b bool) Value {
	n := 0.0
	if b {
		n = 1.0
	}
	return Value{kind: Bool, num: n}
}

func Number_(n float64) Value { return Value{kind: Number, num: n} }

func Obj_(r Ref) Value { return Value{kind: Obj, ref: r} }

func (v Value) IsNil() bool    { return v.kind == Nil }
func (v Value) IsBool() bool   { return v.kind == Bool }
func (v Value) IsNumber() bool { return v.kind == Number }
func (v Value) IsObj() bool    { return v.kind == Obj }

func (v Value) AsBool() bool     { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsRef() Ref        { return v.ref }

// Truthy implements tinybc's truthiness rule: nil and false are falsy,
// everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case Nil:
		return false
	case Bool:
		return v.AsBool()
	default:
		return true
	}
}

// Equal implements Value equality: same tag and same payload. Two object
// values are equal iff they name the same Ref — which, for strings, holds
// iff they are the same interned string (see Arena.Intern).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Nil:
		return true
	case Bool:
		return a.AsBool() == b.AsBool()
	case Number:
		return a.num == b.num
	case Obj:
		return a.ref == b.ref
	default:
		return false
	}
}

// String renders v the way `print` does: numbers in their shortest exact
// decimal form, true/false/nil literally, strings unquoted, functions as
// "<fn name>" or "<script>". Rendering an Obj value requires the Arena that
// owns it, so callers go through Arena.Stringify instead of this method
// when v might be an object; this method covers the non-object cases and
// panics on Obj (a caller bug, not a runtime error the language should see).
func (v Value) String() string {
	switch v.kind {
	case Nil:
		return "nil"
	case Bool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.num)
	default:
		panic(fmt.Sprintf("value: String() called on Obj Value; use Arena.Stringify"))
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
