package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternDeduplicatesByContent(t *testing.T) {
	a := NewArena()
	r1 := a.Intern("hello")
	r2 := a.Intern("hello")
	r3 := a.Intern("world")

	require.Equal(t, r1, r2)
	require.NotEqual(t, r1, r3)
}

func TestInternGrowsPastInitialCapacity(t *testing.T) {
	a := NewArena()
	seen := map[Ref]string{}
	for i := 0; i < 200; i++ {
		s := string(rune('a'+(i%26))) + string(rune('A'+(i%13)))
		r := a.Intern(s)
		if prior, ok := seen[r]; ok {
			require.Equal(t, prior, s, "Ref reused for a different string")
		}
		seen[r] = s
	}
	// Re-interning every string still resolves to the same Ref.
	for r, s := range seen {
		require.Equal(t, r, a.Intern(s))
	}
}

func TestConcat(t *testing.T) {
	a := NewArena()
	x := a.Intern("foo")
	y := a.Intern("bar")
	z := a.Concat(x, y)
	require.Equal(t, "foobar", a.String(z).Chars)
}

func TestStringifyFunction(t *testing.T) {
	a := NewArena()
	script := &FunctionObj{Chunk: NewChunk(), Name: NilRef}
	named := &FunctionObj{Chunk: NewChunk(), Name: a.Intern("add")}

	scriptRef := a.NewFunction(script)
	namedRef := a.NewFunction(named)

	require.Equal(t, "<script>", a.Stringify(Obj_(scriptRef)))
	require.Equal(t, "<fn add>", a.Stringify(Obj_(namedRef)))
}

func TestStringifyPrimitives(t *testing.T) {
	a := NewArena()
	require.Equal(t, "nil", a.Stringify(NilValue))
	require.Equal(t, "true", a.Stringify(Bool_(true)))
	require.Equal(t, "42", a.Stringify(Number_(42)))
}

func TestUpvalueOpenThenClose(t *testing.T) {
	a := NewArena()
	r := a.NewUpvalue(3)
	up := a.Upvalue(r)
	require.False(t, up.Closed)
	require.Equal(t, 3, up.Location)

	up.Closed = true
	up.Value = Number_(7)
	require.Equal(t, "7", a.Stringify(up.Value))
}

func TestFNV1aIsDeterministic(t *testing.T) {
	require.Equal(t, FNV1a("hello"), FNV1a("hello"))
	require.NotEqual(t, FNV1a("hello"), FNV1a("world"))
}
