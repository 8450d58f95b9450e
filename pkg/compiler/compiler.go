// Package compiler implements tinybc's single-pass Pratt-parsing compiler:
// scanning, parsing, lexical scope resolution, and bytecode emission all
// happen in one pass with no intermediate AST (spec.md §4.4, §9).
package compiler

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kristofer/tinybc/pkg/op"
	"github.com/kristofer/tinybc/pkg/scanner"
	"github.com/kristofer/tinybc/pkg/token"
	"github.com/kristofer/tinybc/pkg/value"
)

// funcType distinguishes the implicit top-level script from a user-defined
// function, since return-from-top-level is an error only in the script.
// Both kinds reserve slot 0 for the called closure.
type funcType int

const (
	typeFunction funcType = iota
	typeScript
)

const maxLocals = 256
const maxUpvalues = 256
const maxArgs = 255

// local is a compile-time-only record of a declared local variable: its
// name (for resolution by byte-exact match), its scope depth (-1 while its
// initializer is being compiled), and whether any nested function captures
// it as an upvalue.
type local struct {
	name     string
	depth    int
	captured bool
}

// upvalueDesc records how a function's Nth upvalue is sourced: either from
// a local slot in the immediately enclosing function, or from that
// function's own upvalue list.
type upvalueDesc struct {
	index   uint8
	isLocal bool
}

// funcState is one compiler record per function being compiled, chained to
// its lexically enclosing function's record.
type funcState struct {
	enclosing *funcState
	function  *value.FunctionObj
	chunk     *value.Chunk
	kind      funcType

	locals     []local
	upvalues   []upvalueDesc
	scopeDepth int
}

// Compiler performs a single pass over source text, producing either a
// compiled script FunctionObj or a set of reported errors.
type Compiler struct {
	scanner *scanner.Scanner
	arena   *value.Arena
	errOut  io.Writer

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool

	cur *funcState
}

// Compile compiles src into a top-level script FunctionObj. ok is false if
// any compile error was reported (spec.md §7: COMPILE_ERROR, no execution).
// Diagnostics are written to errOut as they're found.
func Compile(src string, arena *value.Arena, errOut io.Writer) (fn *value.FunctionObj, ok bool) {
	c := &Compiler{
		scanner: scanner.New(src),
		arena:   arena,
		errOut:  errOut,
	}
	c.pushFunc(typeScript, "")
	c.advance()

	for !c.match(token.EOF) {
		c.declaration()
	}

	fn = c.endFunc()
	return fn, !c.hadError
}

// --- function compiler state ---

func (c *Compiler) pushFunc(kind funcType, name string) {
	fs := &funcState{
		enclosing:  c.cur,
		function:   &value.FunctionObj{Chunk: value.NewChunk()},
		kind:       kind,
		scopeDepth: 0,
	}
	fs.chunk = fs.function.Chunk
	if name != "" {
		fs.function.Name = c.arena.Intern(name)
	} else {
		fs.function.Name = value.NilRef
	}
	// Slot 0 is reserved for the called closure itself (spec.md §4.5).
	fs.locals = append(fs.locals, local{name: "", depth: 0})
	c.cur = fs
}

func (c *Compiler) endFunc() *value.FunctionObj {
	c.emitReturn()
	fn := c.cur.function
	fn.UpvalueCnt = len(c.cur.upvalues)
	c.cur = c.cur.enclosing
	return fn
}

func (c *Compiler) chunk() *value.Chunk { return c.cur.chunk }

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error_(msg string)         { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(t token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	if c.errOut == nil {
		return
	}
	fmt.Fprintf(c.errOut, "[line %d] Error", t.Line)
	switch t.Kind {
	case token.EOF:
		fmt.Fprint(c.errOut, " at end")
	case token.Error:
		// lexeme IS the message; don't also quote it.
	default:
		fmt.Fprintf(c.errOut, " at '%s'", t.Lexeme)
	}
	fmt.Fprintf(c.errOut, ": %s\n", msg)
}

// --- byte emission ---

func (c *Compiler) emitByte(b byte)  { c.chunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(o op.Code) { c.chunk().WriteOp(o, c.previous.Line) }

func (c *Compiler) emitOpByte(o op.Code, b byte) {
	c.emitOp(o)
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	c.emitOp(op.Nil)
	c.emitOp(op.Return)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(op.Constant, c.makeConstant(v))
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.chunk().AddConstant(v)
	if idx > 255 {
		c.error_("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// emitJump emits a two-byte-operand jump instruction with a placeholder
// offset and returns the offset of the first placeholder byte, to be
// patched once the jump target is known.
func (c *Compiler) emitJump(o op.Code) int {
	c.emitOp(o)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error_("Too much code to jump over.")
	}
	c.chunk().Code[offset] = byte((jump >> 8) & 0xff)
	c.chunk().Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(op.Loop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error_("Loop body too large.")
	}
	c.emitByte(byte((offset >> 8) & 0xff))
	c.emitByte(byte(offset & 0xff))
}

// identifierConstant interns name and returns its constant-pool index.
func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(value.Obj_(c.arena.Intern(name)))
}

// parseNumber parses a numeric lexeme. The scanner guarantees lexeme
// matches spec.md §6's number grammar, so this cannot fail in practice.
func parseNumber(lexeme string) float64 {
	n, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0
	}
	return n
}
