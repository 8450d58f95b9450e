package compiler

import "github.com/kristofer/tinybc/pkg/op"

func (c *Compiler) beginScope() { c.cur.scopeDepth++ }

// endScope closes the innermost scope, popping (or, for captured locals,
// closing the upvalue over) each local declared in it.
func (c *Compiler) endScope() {
	c.cur.scopeDepth--
	for len(c.cur.locals) > 0 && c.cur.locals[len(c.cur.locals)-1].depth > c.cur.scopeDepth {
		last := c.cur.locals[len(c.cur.locals)-1]
		if last.captured {
			c.emitOp(op.CloseUpvalue)
		} else {
			c.emitOp(op.Pop)
		}
		c.cur.locals = c.cur.locals[:len(c.cur.locals)-1]
	}
}

// declareVariable registers the identifier in c.previous as a local in the
// current scope (a no-op at global scope, where variables live in the
// globals table instead). Reports "Already a variable with same name in
// this scope." on same-scope duplicates.
func (c *Compiler) declareVariable() {
	if c.cur.scopeDepth == 0 {
		return
	}
	name := c.previous.Lexeme
	for i := len(c.cur.locals) - 1; i >= 0; i-- {
		l := c.cur.locals[i]
		if l.depth != -1 && l.depth < c.cur.scopeDepth {
			break
		}
		if l.name == name {
			c.error_("Already a variable with same name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.cur.locals) >= maxLocals {
		c.error_("Too many local variables in function.")
		return
	}
	c.cur.locals = append(c.cur.locals, local{name: name, depth: -1})
}

// markInitialized flips the most recently declared local's depth from -1
// to the current scope depth, or does nothing at global scope.
func (c *Compiler) markInitialized() {
	if c.cur.scopeDepth == 0 {
		return
	}
	c.cur.locals[len(c.cur.locals)-1].depth = c.cur.scopeDepth
}

// resolveLocal walks fs.locals top to bottom looking for name. Returns -1
// if not found. Reports "Can't read local variable in its own
// initializer." if found but not yet marked initialized.
func resolveLocal(c *Compiler, fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				c.error_("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue recursively resolves name in fs's enclosing function
// chain, registering an upvalue descriptor in fs (and, transitively, in
// any function between fs and where name is actually declared) the first
// time it is found. Returns -1 if name is not found anywhere in the chain
// (meaning it must be a global).
func resolveUpvalue(c *Compiler, fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := resolveLocal(c, fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].captured = true
		return addUpvalue(c, fs, uint8(local), true)
	}
	if up := resolveUpvalue(c, fs.enclosing, name); up != -1 {
		return addUpvalue(c, fs, uint8(up), false)
	}
	return -1
}

// addUpvalue registers (index, isLocal) as an upvalue of fs, reusing an
// existing descriptor if one with the same (index, isLocal) already
// exists (idempotent per spec.md §4.4).
func addUpvalue(c *Compiler, fs *funcState, index uint8, isLocal bool) int {
	for i, up := range fs.upvalues {
		if up.index == index && up.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.error_("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}
