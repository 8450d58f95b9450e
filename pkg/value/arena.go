package value

// Arena owns every heap object a running program allocates: strings,
// functions, natives, closures, and upvalues. Objects are addressed by a
// stable Ref rather than a Go pointer, so Values can be copied freely while
// still sharing identity with whatever they reference (spec.md §9).
//
// There is no per-object reclamation: the arena is a simple append-only
// store, released wholesale when the owning VM goes away (spec.md §1's
// "no garbage collector beyond tracked-object free-lists" non-goal,
// realized here as "no free list at all" since Go's own GC reclaims the
// Arena itself once nothing references it).
type Arena struct {
	objects []object
	intern  internTable
}

// NewArena creates an empty Arena.
func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) alloc(o object) Ref {
	a.objects = append(a.objects, o)
	return Ref(len(a.objects) - 1)
}

func (a *Arena) obj(r Ref) *object {
	return &a.objects[r]
}

func (a *Arena) Kind(r Ref) ObjKind { return a.obj(r).kind }

// Intern returns the canonical StringObj Ref for chars, allocating and
// inserting a new one only if no equal string has been interned before.
// This is the operation spec.md §4.3 singles out as comparing by content
// rather than by key identity.
func (a *Arena) Intern(chars string) Ref {
	h := FNV1a(chars)
	if r, ok := a.intern.find(chars, h); ok {
		return r
	}
	r := a.alloc(object{kind: ObjString, str: &StringObj{Chars: chars, Hash: h}})
	a.intern.insert(chars, h, r)
	return r
}

func (a *Arena) NewFunction(fn *FunctionObj) Ref {
	return a.alloc(object{kind: ObjFunction, fn: fn})
}

func (a *Arena) NewNative(name string, fn NativeFn) Ref {
	return a.alloc(object{kind: ObjNative, native: &NativeObj{Name: name, Fn: fn}})
}

func (a *Arena) NewClosure(function Ref, upvalues []Ref) Ref {
	return a.alloc(object{kind: ObjClosure, closure: &ClosureObj{Function: function, Upvalues: upvalues}})
}

func (a *Arena) NewUpvalue(slot int) Ref {
	return a.alloc(object{kind: ObjUpvalue, upvalue: &UpvalueObj{Location: slot}})
}

func (a *Arena) String(r Ref) *StringObj     { return a.obj(r).str }
func (a *Arena) Function(r Ref) *FunctionObj { return a.obj(r).fn }
func (a *Arena) Native(r Ref) *NativeObj     { return a.obj(r).native }
func (a *Arena) Closure(r Ref) *ClosureObj   { return a.obj(r).closure }
func (a *Arena) Upvalue(r Ref) *UpvalueObj   { return a.obj(r).upvalue }

// Concat interns the concatenation of two strings, per spec.md §4.2's ADD
// semantics for (string, string) operands.
func (a *Arena) Concat(x, y Ref) Ref {
	return a.Intern(a.String(x).Chars + a.String(y).Chars)
}

// Stringify renders v the way `print` does (spec.md §6), dereferencing
// Arena objects where Value.String cannot.
func (a *Arena) Stringify(v Value) string {
	if !v.IsObj() {
		return v.String()
	}
	switch o := a.obj(v.AsRef()); o.kind {
	case ObjString:
		return o.str.Chars
	case ObjFunction:
		if o.fn.Name == NilRef {
			return "<script>"
		}
		return "<fn " + a.String(o.fn.Name).Chars + ">"
	case ObjNative:
		return "<native fn " + o.native.Name + ">"
	case ObjClosure:
		return a.Stringify(Obj_(o.closure.Function))
	case ObjUpvalue:
		return "<upvalue>"
	default:
		return "<obj>"
	}
}

// internTable is a dedicated open-addressed table for string interning: it
// probes by (length, byte content) rather than by Ref identity, because at
// intern time there is no Ref yet to compare — that's the question being
// answered. Structurally it mirrors table.Table's open addressing with
// tombstones (spec.md §4.3); it is kept separate because its keys are raw
// bytes rather than already-interned Refs.
type internSlot struct {
	used      bool
	tombstone bool
	hash      uint32
	chars     string
	ref       Ref
}

type internTable struct {
	slots []internSlot
	count int
}

const internInitialCap = 8
const internMaxLoad = 0.75

func (t *internTable) find(chars string, hash uint32) (Ref, bool) {
	if len(t.slots) == 0 {
		return NilRef, false
	}
	mask := uint32(len(t.slots) - 1)
	idx := hash & mask
	for {
		slot := &t.slots[idx]
		if !slot.used {
			if !slot.tombstone {
				return NilRef, false
			}
		} else if slot.hash == hash && slot.chars == chars {
			return slot.ref, true
		}
		idx = (idx + 1) & mask
	}
}

func (t *internTable) insert(chars string, hash uint32, ref Ref) {
	if len(t.slots) == 0 || float64(t.count+1) > float64(len(t.slots))*internMaxLoad {
		t.grow()
	}
	mask := uint32(len(t.slots) - 1)
	idx := hash & mask
	var tombstoneIdx = -1
	for {
		slot := &t.slots[idx]
		if !slot.used {
			if tombstoneIdx == -1 {
				tombstoneIdx = int(idx)
			}
			if !slot.tombstone {
				break
			}
		}
		idx = (idx + 1) & mask
	}
	at := int(idx)
	if tombstoneIdx != -1 {
		at = tombstoneIdx
	}
	t.slots[at] = internSlot{used: true, hash: hash, chars: chars, ref: ref}
	t.count++
}

func (t *internTable) grow() {
	newCap := internInitialCap
	if len(t.slots) > 0 {
		newCap = len(t.slots) * 2
	}
	old := t.slots
	t.slots = make([]internSlot, newCap)
	t.count = 0
	for _, slot := range old {
		if slot.used {
			t.insert(slot.chars, slot.hash, slot.ref)
		}
	}
}
