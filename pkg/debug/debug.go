// Package debug implements tinybc's disassembler (spec.md §4.6): decoding
// a Chunk's bytecode back into a human-readable instruction listing for
// diagnostics and execution tracing.
package debug

import (
	"fmt"
	"io"

	"github.com/kristofer/tinybc/pkg/op"
	"github.com/kristofer/tinybc/pkg/value"
)

// Disassemble prints every instruction in chunk to w, headed by name.
func Disassemble(w io.Writer, chunk *value.Chunk, arena *value.Arena, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = Instruction(w, chunk, arena, offset)
	}
}

// Instruction prints the single instruction at offset and returns the
// offset of the next instruction — the round-trip property spec.md §8
// requires: decoding consumes exactly the bytes the compiler emitted.
func Instruction(w io.Writer, chunk *value.Chunk, arena *value.Arena, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	instr := op.Code(chunk.Code[offset])
	switch instr {
	case op.Constant, op.GetGlobal, op.DefineGlobal, op.SetGlobal:
		return constantInstruction(w, instr.String(), chunk, arena, offset)
	case op.Nil, op.True, op.False, op.Pop, op.Equal, op.Greater, op.Less,
		op.Add, op.Subtract, op.Multiply, op.Divide, op.Not, op.Negate,
		op.Print, op.CloseUpvalue, op.Return:
		return simpleInstruction(w, instr.String(), offset)
	case op.GetLocal, op.SetLocal, op.GetUpvalue, op.SetUpvalue, op.Call:
		return byteInstruction(w, instr.String(), chunk, offset)
	case op.Jump, op.JumpIfFalse:
		return jumpInstruction(w, instr.String(), 1, chunk, offset)
	case op.Loop:
		return jumpInstruction(w, instr.String(), -1, chunk, offset)
	case op.Closure:
		return closureInstruction(w, chunk, arena, offset)
	default:
		fmt.Fprintf(w, "Unknown opcode %d\n", instr)
		return offset + 1
	}
}

func simpleInstruction(w io.Writer, name string, offset int) int {
	fmt.Fprintf(w, "%s\n", name)
	return offset + 1
}

func byteInstruction(w io.Writer, name string, chunk *value.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", name, slot)
	return offset + 2
}

func constantInstruction(w io.Writer, name string, chunk *value.Chunk, arena *value.Arena, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", name, idx, arena.Stringify(chunk.Constants[idx]))
	return offset + 2
}

func jumpInstruction(w io.Writer, name string, sign int, chunk *value.Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%-16s %4d -> %d\n", name, offset, target)
	return offset + 3
}

// closureInstruction prints CLOSURE's own operand plus, per spec.md §4.6,
// one trailing line per captured upvalue showing (is_local, index).
func closureInstruction(w io.Writer, chunk *value.Chunk, arena *value.Arena, offset int) int {
	offset++
	constIdx := chunk.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", "OP_CLOSURE", constIdx, arena.Stringify(chunk.Constants[constIdx]))

	fn := arena.Function(chunk.Constants[constIdx].AsRef())
	for i := 0; i < fn.UpvalueCnt; i++ {
		isLocal := chunk.Code[offset]
		offset++
		index := chunk.Code[offset]
		offset++
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
