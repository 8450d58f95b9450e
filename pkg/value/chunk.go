package value

import "github.com/kristofer/tinybc/pkg/op"

// Chunk is a dynamic byte array of opcodes (spec.md §4.2), a parallel
// line-number array of the same length, and a pool of constants addressed
// by 8-bit operand indices.
//
// Chunk lives in the value package rather than its own package because a
// FunctionObj owns a *Chunk directly and a Chunk's constant pool holds
// Values — putting them in separate packages would create an import
// cycle (object payloads need Chunk, Chunk needs Value). See DESIGN.md.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// NewChunk returns an empty Chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one byte to Code, recording line as its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(o op.Code, line int) {
	c.Write(byte(o), line)
}

// AddConstant appends v to the constant pool and returns its index.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Len returns the number of bytes of code emitted so far.
func (c *Chunk) Len() int { return len(c.Code) }
