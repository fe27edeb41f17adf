// Package compiler implements the language's single-pass compiler: scanning,
// parsing, and local-variable resolution all happen in one pass over the
// token stream, emitting bytecode directly with no intermediate tree.
package compiler

import (
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/scanner"
	"github.com/wisplang/wisp/pkg/token"
	"github.com/wisplang/wisp/pkg/value"
)

// hardMaxLocals is the byte-operand ceiling: OpGetLocal/OpSetLocal encode a
// local's stack slot in a single byte, so no configured limit can exceed it.
const hardMaxLocals = 256
const maxJump = 1<<16 - 1

// clampMax bounds a configured resource limit to the format's hard ceiling,
// treating a non-positive value (unset or misconfigured) as "use the ceiling".
func clampMax(configured, ceiling int) int {
	if configured <= 0 || configured > ceiling {
		return ceiling
	}
	return configured
}

// funcType distinguishes the implicit top-level script from a nested
// function declaration, so return-statement and slot-0 handling can differ.
type funcType uint8

const (
	typeScript funcType = iota
	typeFunction
)

// local is a compile-time record of one local variable's name and the
// lexical scope depth it was declared at. depth is -1 between declaration
// and initialization ("Can't read local variable in its own initializer.").
type local struct {
	name  string
	depth int
}

// funcState is the per-function compile-time state: the function object
// being built, its locals stack, and its current lexical scope depth.
// funcState forms a chain via enclosing so that compiling a nested function
// declaration can return to the enclosing function's state when it's done.
type funcState struct {
	enclosing  *funcState
	function   *bytecode.ObjFunction
	kind       funcType
	locals     []local
	scopeDepth int
}

// Compiler compiles a single source string into a top-level ObjFunction. It
// holds the scanner and current/previous token pair (the only lookahead the
// grammar needs), plus the chain of funcState for nested function bodies.
type Compiler struct {
	scanner  *scanner.Scanner
	interner *value.Interner

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errors    ErrorList

	fs           *funcState
	maxLocals    int
	maxConstants int
}

// Compile compiles source into the implicit top-level script function. It
// always returns every error it found (possibly more than one - see §7),
// but only returns a non-nil *bytecode.ObjFunction when compilation
// succeeded: callers must treat a non-nil error as "do not run this".
//
// lim bounds the two compile-time resource limits (constants per chunk,
// locals per function); each is clamped to the bytecode format's hard
// single-byte-operand ceiling of 256 regardless of what lim requests.
func Compile(source string, interner *value.Interner, lim config.VMLimits) (*bytecode.ObjFunction, error) {
	c := &Compiler{
		scanner:      scanner.New(source),
		interner:     interner,
		maxLocals:    clampMax(lim.MaxLocals, hardMaxLocals),
		maxConstants: clampMax(lim.MaxConstants, bytecode.MaxConstants),
	}
	c.fs = c.newFuncState(nil, typeScript, "")

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endFuncState()

	if c.hadError {
		return nil, c.errors
	}
	return fn, nil
}

func (c *Compiler) newFuncState(enclosing *funcState, kind funcType, name string) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		kind:      kind,
		function:  &bytecode.ObjFunction{Name: name},
	}
	fs.function.Chunk.MaxConstants = c.maxConstants
	// Slot 0 of every frame is reserved for the callee itself.
	fs.locals = append(fs.locals, local{name: "", depth: 0})
	return fs
}

func (c *Compiler) chunk() *bytecode.Chunk { return &c.fs.function.Chunk }

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Scan()
		if c.current.Kind != token.ERROR {
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
func (c *Compiler) errorPrev(msg string)      { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	where := tok.Lexeme
	if tok.Kind == token.EOF || tok.Kind == token.ERROR {
		where = ""
	}
	c.errors = append(c.errors, &Error{Line: tok.Line, Where: where, Message: msg})
	c.hadError = true
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so one syntax error doesn't cascade into a wall of spurious ones.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- bytecode emission --------------------------------------------------

func (c *Compiler) emitByte(b byte)           { c.chunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op bytecode.OpCode) { c.chunk().WriteOp(op, c.previous.Line) }

func (c *Compiler) emitOpByte(op bytecode.OpCode, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

func (c *Compiler) emitReturn() {
	c.emitOp(bytecode.OpNil)
	c.emitOp(bytecode.OpReturn)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.errorPrev("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(bytecode.OpConstant, c.makeConstant(v))
}

// emitJump emits a two-byte-operand jump instruction with a placeholder
// offset and returns the offset of the first placeholder byte, to be
// backpatched once the jump target is known.
func (c *Compiler) emitJump(op bytecode.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > maxJump {
		c.errorPrev("Too much code to jump over.")
	}
	c.chunk().Code[offset] = byte(jump >> 8 & 0xff)
	c.chunk().Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	jump := len(c.chunk().Code) - loopStart + 2
	if jump > maxJump {
		c.errorPrev("Loop body too large.")
	}
	c.emitByte(byte(jump >> 8 & 0xff))
	c.emitByte(byte(jump & 0xff))
}

// endFuncState finalizes the current function, emits the implicit trailing
// "return nil" every function falls through to, and pops back to the
// enclosing function's state.
func (c *Compiler) endFuncState() *bytecode.ObjFunction {
	c.emitReturn()
	fn := c.fs.function
	c.fs = c.fs.enclosing
	return fn
}

// --- scopes and locals ---------------------------------------------------

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	locals := c.fs.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.fs.scopeDepth {
		c.emitOp(bytecode.OpPop)
		locals = locals[:len(locals)-1]
	}
	c.fs.locals = locals
}

func identifierConstant(c *Compiler, name string) byte {
	return c.makeConstant(value.NewObj(c.interner.Intern(name)))
}

func (c *Compiler) declareVariable(name string) {
	if c.fs.scopeDepth == 0 {
		return // globals are late-bound by name, not declared as slots
	}
	if slices.ContainsFunc(c.fs.locals, func(l local) bool {
		return l.depth == c.fs.scopeDepth && l.name == name
	}) {
		c.errorPrev("Already a variable with this name in this scope.")
		return
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fs.locals) >= c.maxLocals {
		c.errorPrev("Too many local variables in function.")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

// resolveLocal searches fs's locals innermost-scope-first for name, as the
// parser's single pass discovers it: a declaration shadows any local of the
// same name from an enclosing scope within the same function.
func resolveLocal(fs *funcState, c *Compiler, name string) (slot int, ok bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name != name {
			continue
		}
		if fs.locals[i].depth == -1 {
			c.errorPrev("Can't read local variable in its own initializer.")
		}
		return i, true
	}
	return 0, false
}

// parseVariable consumes an identifier, declares it as a local if inside a
// scope, and returns the constant-pool index of its name (used only for
// globals).
func (c *Compiler) parseVariable(msg string) byte {
	c.consume(token.IDENT, msg)
	name := c.previous.Lexeme
	c.declareVariable(name)
	if c.fs.scopeDepth > 0 {
		return 0
	}
	return identifierConstant(c, name)
}

func (c *Compiler) defineVariable(global byte) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.OpDefineGlobal, global)
}

// --- expressions ---------------------------------------------------------

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	prefix := rule(c.previous.Kind).prefix
	if prefix == nil {
		c.errorPrev("Expect expression.")
		return
	}
	canAssign := p <= precAssignment
	prefix(c, canAssign)

	for p <= rule(c.current.Kind).precedence {
		c.advance()
		infix := rule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.errorPrev("Invalid assignment target.")
	}
}

func number(c *Compiler, _ bool) {
	f, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(value.Number(f))
}

func str(c *Compiler, _ bool) {
	raw := c.previous.Lexeme
	s := raw[1 : len(raw)-1] // strip surrounding quotes
	c.emitConstant(value.NewObj(c.interner.Intern(s)))
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(bytecode.OpFalse)
	case token.TRUE:
		c.emitOp(bytecode.OpTrue)
	case token.NIL:
		c.emitOp(bytecode.OpNil)
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	op := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		c.emitOp(bytecode.OpNegate)
	case token.BANG:
		c.emitOp(bytecode.OpNot)
	}
}

func binary(c *Compiler, _ bool) {
	op := c.previous.Kind
	r := rule(op)
	c.parsePrecedence(r.precedence + 1)

	switch op {
	case token.BANGEQ:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case token.EQEQ:
		c.emitOp(bytecode.OpEqual)
	case token.GT:
		c.emitOp(bytecode.OpGreater)
	case token.GTEQ:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case token.LT:
		c.emitOp(bytecode.OpLess)
	case token.LTEQ:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	case token.PLUS:
		c.emitOp(bytecode.OpAdd)
	case token.MINUS:
		c.emitOp(bytecode.OpSubtract)
	case token.STAR:
		c.emitOp(bytecode.OpMultiply)
	case token.SLASH:
		c.emitOp(bytecode.OpDivide)
	case token.PERCENT:
		c.emitOp(bytecode.OpModulo)
	}
}

func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func variable(c *Compiler, canAssign bool) {
	namedVariable(c, c.previous.Lexeme, canAssign)
}

func namedVariable(c *Compiler, name string, canAssign bool) {
	var getOp, setOp bytecode.OpCode
	slot, isLocal := resolveLocal(c.fs, c, name)
	var arg byte
	if isLocal {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
		arg = byte(slot)
	} else {
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
		arg = identifierConstant(c, name)
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, arg)
	} else {
		c.emitOpByte(getOp, arg)
	}
}

const maxArgs = 255

func call(c *Compiler, _ bool) {
	argCount := argumentList(c)
	c.emitOpByte(bytecode.OpCall, argCount)
}

func argumentList(c *Compiler) byte {
	var count int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if count == maxArgs {
				c.errorPrev("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(count)
}

// --- statements and declarations -----------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

func (c *Compiler) function(kind funcType) {
	name := c.previous.Lexeme
	c.fs = c.newFuncState(c.fs, kind, name)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fs.function.Arity++
			if c.fs.function.Arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConst)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	fn := c.endFuncState()
	c.emitConstant(value.NewObj(fn))
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) returnStatement() {
	if c.fs.kind == typeScript {
		c.errorPrev("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(bytecode.OpReturn)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
}

// forStatement desugars "for (init; cond; incr) body" into the equivalent
// while loop: { init; while (cond) { body incr } }. A missing cond simply
// skips the exit jump, so the loop runs unconditionally.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(bytecode.OpPop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPAREN, "Expect ')' after for clauses.")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.OpPop)
	}
	c.endScope()
}
