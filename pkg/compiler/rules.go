package compiler

import (
	"github.com/kristofer/tinybc/pkg/op"
	"github.com/kristofer/tinybc/pkg/token"
	"github.com/kristofer/tinybc/pkg/value"
)

// precedence orders operator binding power from loosest to tightest,
// matching spec.md §4.4's Pratt table exactly.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

// parseFn is either a prefix or an infix handler. canAssign is true only
// when the surrounding precedence allows an assignment target, per
// spec.md §4.4's parse_precedence rule.
type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LeftParen:    {grouping, call, precCall},
		token.Minus:        {unary, binary, precTerm},
		token.Plus:         {nil, binary, precTerm},
		token.Slash:        {nil, binary, precFactor},
		token.Star:         {nil, binary, precFactor},
		token.Bang:         {unary, nil, precNone},
		token.BangEqual:    {nil, binary, precEquality},
		token.EqualEqual:   {nil, binary, precEquality},
		token.Greater:      {nil, binary, precComparison},
		token.GreaterEqual: {nil, binary, precComparison},
		token.Less:         {nil, binary, precComparison},
		token.LessEqual:    {nil, binary, precComparison},
		token.Identifier:   {variable, nil, precNone},
		token.String:       {stringLiteral, nil, precNone},
		token.Number:       {number, nil, precNone},
		token.And:          {nil, and_, precAnd},
		token.Or:           {nil, or_, precOr},
		token.False:        {literal, nil, precNone},
		token.Nil:          {literal, nil, precNone},
		token.True:         {literal, nil, precNone},
	}
}

func ruleFor(k token.Kind) rule {
	if r, ok := rules[k]; ok {
		return r
	}
	return rule{}
}

// parsePrecedence is the core Pratt loop (spec.md §4.4).
func (c *Compiler) parsePrecedence(p precedence) {
	c.advance()
	prefix := ruleFor(c.previous.Kind).prefix
	if prefix == nil {
		c.error_("Expect expression.")
		return
	}
	canAssign := p <= precAssignment
	prefix(c, canAssign)

	for p <= ruleFor(c.current.Kind).precedence {
		c.advance()
		infix := ruleFor(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error_("Invalid assignment target.")
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func number(c *Compiler, _ bool) {
	c.emitConstant(value.Number_(parseNumber(c.previous.Lexeme)))
}

func stringLiteral(c *Compiler, _ bool) {
	raw := c.previous.Lexeme
	s := raw[1 : len(raw)-1] // strip surrounding quotes; no escapes (spec.md §4.1)
	c.emitConstant(value.Obj_(c.arena.Intern(s)))
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case token.False:
		c.emitOp(op.False)
	case token.True:
		c.emitOp(op.True)
	case token.Nil:
		c.emitOp(op.Nil)
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.Bang:
		c.emitOp(op.Not)
	case token.Minus:
		c.emitOp(op.Negate)
	}
}

func binary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	r := ruleFor(opKind)
	c.parsePrecedence(r.precedence + 1)

	switch opKind {
	case token.BangEqual:
		c.emitOp(op.Equal)
		c.emitOp(op.Not)
	case token.EqualEqual:
		c.emitOp(op.Equal)
	case token.Greater:
		c.emitOp(op.Greater)
	case token.GreaterEqual:
		c.emitOp(op.Less)
		c.emitOp(op.Not)
	case token.Less:
		c.emitOp(op.Less)
	case token.LessEqual:
		c.emitOp(op.Greater)
		c.emitOp(op.Not)
	case token.Plus:
		c.emitOp(op.Add)
	case token.Minus:
		c.emitOp(op.Subtract)
	case token.Star:
		c.emitOp(op.Multiply)
	case token.Slash:
		c.emitOp(op.Divide)
	}
}

// and_ compiles short-circuit `and`: if the left operand (already on the
// stack) is falsy, skip the right operand entirely, leaving the falsy
// left value as the result.
func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(op.JumpIfFalse)
	c.emitOp(op.Pop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or_ compiles short-circuit `or`: if the left operand is truthy, jump
// past the right operand; otherwise fall through (after popping the falsy
// left value) and evaluate it.
func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(op.JumpIfFalse)
	endJump := c.emitJump(op.Jump)
	c.patchJump(elseJump)
	c.emitOp(op.Pop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func variable(c *Compiler, canAssign bool) {
	namedVariable(c, c.previous.Lexeme, canAssign)
}

func namedVariable(c *Compiler, name string, canAssign bool) {
	var getOp, setOp op.Code
	arg := resolveLocal(c, c.cur, name)
	if arg != -1 {
		getOp, setOp = op.GetLocal, op.SetLocal
	} else if arg = resolveUpvalue(c, c.cur, name); arg != -1 {
		getOp, setOp = op.GetUpvalue, op.SetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = op.GetGlobal, op.SetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

// call compiles the `(` infix rule: a call expression applied to whatever
// expression is already on the stack as the callee.
func call(c *Compiler, _ bool) {
	argc := c.argumentList()
	c.emitOpByte(op.Call, argc)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if count == maxArgs {
				c.error_("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(count)
}
