package compiler

import (
	"github.com/kristofer/tinybc/pkg/op"
	"github.com/kristofer/tinybc/pkg/token"
	"github.com/kristofer/tinybc/pkg/value"
)

// declaration parses a `fun`/`var` declaration, or falls through to
// statement. On error it synchronizes to the next statement boundary so a
// single mistake doesn't cascade into spurious follow-on errors.
func (c *Compiler) declaration() {
	switch {
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.Return):
		c.returnStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(op.Print)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(op.Pop)
}

func (c *Compiler) returnStatement() {
	if c.cur.kind == typeScript {
		c.error_("Can't return from top-level code.")
	}
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emitOp(op.Return)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(op.JumpIfFalse)
	c.emitOp(op.Pop)
	c.statement()

	elseJump := c.emitJump(op.Jump)
	c.patchJump(thenJump)
	c.emitOp(op.Pop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunk().Len()
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(op.JumpIfFalse)
	c.emitOp(op.Pop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(op.Pop)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk().Len()
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(op.JumpIfFalse)
		c.emitOp(op.Pop)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(op.Jump)
		incrementStart := c.chunk().Len()
		c.expression()
		c.emitOp(op.Pop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(op.Pop)
	}
	c.endScope()
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(op.Nil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

// parseVariable consumes an identifier and, at global scope, interns its
// name as a constant (returned for DEFINE_GLOBAL); at local scope it
// declares a Local and returns 0 (unused by defineVariable in that case).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.Identifier, errMsg)

	c.declareVariable()
	if c.cur.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lexeme)
}

func (c *Compiler) defineVariable(global byte) {
	if c.cur.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(op.DefineGlobal, global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

func (c *Compiler) function(kind funcType) {
	name := c.previous.Lexeme
	c.pushFunc(kind, name)
	c.beginScope()

	c.consume(token.LeftParen, "Expect '(' after function name.")
	if !c.check(token.RightParen) {
		for {
			c.cur.function.Arity++
			if c.cur.function.Arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after parameters.")
	c.consume(token.LeftBrace, "Expect '{' before function body.")
	c.block()

	fs := c.cur
	fn := c.endFunc() // switches c.cur back to the enclosing function

	fnRef := c.arena.NewFunction(fn)
	c.emitOpByte(op.Closure, c.makeConstant(value.Obj_(fnRef)))
	for _, up := range fs.upvalues {
		c.emitByte(boolByte(up.isLocal))
		c.emitByte(up.index)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
