package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/tinybc/pkg/compiler"
	"github.com/kristofer/tinybc/pkg/value"
)

func TestDisassembleRoundTripConsumesAllCode(t *testing.T) {
	arena := value.NewArena()
	fn, ok := compiler.Compile(`
		fun add(a, b) { return a + b; }
		print add(1, 2);
	`, arena, nil)
	require.True(t, ok)

	var out bytes.Buffer
	offset := 0
	count := 0
	for offset < len(fn.Chunk.Code) {
		offset = Instruction(&out, fn.Chunk, arena, offset)
		count++
	}
	require.Equal(t, len(fn.Chunk.Code), offset)
	require.Greater(t, count, 0)
}

func TestDisassembleNamesConstants(t *testing.T) {
	arena := value.NewArena()
	fn, ok := compiler.Compile(`var greeting = "hi"; print greeting;`, arena, nil)
	require.True(t, ok)

	var out bytes.Buffer
	Disassemble(&out, fn.Chunk, arena, "<script>")
	require.Contains(t, out.String(), "OP_CONSTANT")
	require.Contains(t, out.String(), "'hi'")
}

func TestClosureInstructionListsUpvalues(t *testing.T) {
	arena := value.NewArena()
	fn, ok := compiler.Compile(`
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`, arena, nil)
	require.True(t, ok)

	// inner's CLOSURE (the one capturing x) is emitted into outer's chunk.
	var outer *value.FunctionObj
	for _, c := range fn.Chunk.Constants {
		if c.IsObj() && arena.Kind(c.AsRef()) == value.ObjFunction {
			outer = arena.Function(c.AsRef())
		}
	}
	require.NotNil(t, outer)

	var out bytes.Buffer
	Disassemble(&out, outer.Chunk, arena, "outer")
	require.True(t, strings.Contains(out.String(), "local") || strings.Contains(out.String(), "upvalue"))
}
