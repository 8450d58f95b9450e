// Package op defines tinybc's bytecode instruction set (spec §4.2): one
// byte of opcode plus a fixed number of immediate operand bytes.
package op

// Code identifies a single bytecode operation.
type Code byte

const (
	Constant Code = iota // 1 byte: constant pool index
	Nil
	True
	False
	Pop
	GetLocal  // 1 byte: stack slot
	SetLocal  // 1 byte: stack slot
	GetGlobal // 1 byte: name constant index
	DefineGlobal
	SetGlobal
	GetUpvalue // 1 byte: upvalue index
	SetUpvalue
	Equal
	Greater
	Less
	Add
	Subtract
	Multiply
	Divide
	Not
	Negate
	Print
	Jump         // 2 bytes: big-endian forward offset
	JumpIfFalse  // 2 bytes: big-endian forward offset
	Loop         // 2 bytes: big-endian backward offset
	Call         // 1 byte: argument count
	Closure      // 1 byte: function constant index, then (is_local, index) pairs
	CloseUpvalue
	Return
)

// names is indexed by Code for String().
var names = [...]string{
	Constant:     "OP_CONSTANT",
	Nil:          "OP_NIL",
	True:         "OP_TRUE",
	False:        "OP_FALSE",
	Pop:          "OP_POP",
	GetLocal:     "OP_GET_LOCAL",
	SetLocal:     "OP_SET_LOCAL",
	GetGlobal:    "OP_GET_GLOBAL",
	DefineGlobal: "OP_DEFINE_GLOBAL",
	SetGlobal:    "OP_SET_GLOBAL",
	GetUpvalue:   "OP_GET_UPVALUE",
	SetUpvalue:   "OP_SET_UPVALUE",
	Equal:        "OP_EQUAL",
	Greater:      "OP_GREATER",
	Less:         "OP_LESS",
	Add:          "OP_ADD",
	Subtract:     "OP_SUBTRACT",
	Multiply:     "OP_MULTIPLY",
	Divide:       "OP_DIVIDE",
	Not:          "OP_NOT",
	Negate:       "OP_NEGATE",
	Print:        "OP_PRINT",
	Jump:         "OP_JUMP",
	JumpIfFalse:  "OP_JUMP_IF_FALSE",
	Loop:         "OP_LOOP",
	Call:         "OP_CALL",
	Closure:      "OP_CLOSURE",
	CloseUpvalue: "OP_CLOSE_UPVALUE",
	Return:       "OP_RETURN",
}

func (c Code) String() string {
	if int(c) < len(names) && names[c] != "" {
		return names[c]
	}
	return "OP_UNKNOWN"
}
