// Package compiler walks the syntactic tree (internal/ast) and emits
// bytecode (internal/chunk) for internal/vm to execute, generalising the
// teacher's single-file tree-walking emission (estevaofon-noxy doesn't
// have a compiler package at all — it interprets the tree directly —
// so this package's shape instead follows spec.md §4.6 directly,
// written in the teacher's idiom: plain structs, explicit error slices,
// no panics for user-facing errors).
package compiler

import (
	"fmt"

	"github.com/emberlang/ember/internal/ast"
	"github.com/emberlang/ember/internal/chunk"
	"github.com/emberlang/ember/internal/token"
	"github.com/emberlang/ember/internal/value"
)

const maxLocals = 256
const maxUpvalues = 256
const maxArgs = 255

type local struct {
	name     string
	depth    int // -1 = declared but not yet initialised
	captured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

type blockKind int

const (
	blockLoop blockKind = iota
)

// controlBlock tracks a loop's start address (for `continue`) and the
// jump addresses `break` registers for patching at loop exit
// (spec.md §4.6.5).
type controlBlock struct {
	kind   blockKind
	start  int
	breaks []int
}

// classState threads `super`/`this` legality checks down into method
// body compilers without following the function-nesting `enclosing`
// chain, since a class declaration is not itself a function (spec.md
// §4.6.6).
type classState struct {
	hasSuperclass bool
	enclosing     *classState
}

// Compiler compiles one function body; nested functions get a fresh
// Compiler chained via enclosing (spec.md §4.6.1).
type Compiler struct {
	enclosing *Compiler
	function  *value.Function
	chunk     *chunk.Chunk
	fnType    value.FunctionType

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef

	blocks []*controlBlock
	class  *classState

	errors    []string
	panicMode bool
	failed    bool

	module *value.Module
}

func newCompiler(enclosing *Compiler, name string, fnType value.FunctionType, module *value.Module) *Compiler {
	c := &Compiler{
		enclosing: enclosing,
		function:  value.NewFunction(name),
		chunk:     chunk.New(),
		fnType:    fnType,
		module:    module,
	}
	c.function.Type = fnType
	// Slot 0 is reserved: `this` for methods, the empty name (unreachable
	// from user code) otherwise (spec.md §4.6.1).
	slotName := ""
	if fnType == value.FuncMethod || fnType == value.FuncInitializer ||
		fnType == value.FuncStaticMethod || fnType == value.FuncStaticInitializer {
		slotName = "this"
	}
	c.locals = append(c.locals, local{name: slotName, depth: 0})
	return c
}

// Compile compiles a whole program as the top-level Script function
// (spec.md §2 "Compiler → top-level Function").
func Compile(prog *ast.Program, module *value.Module) (*value.Function, []string, bool) {
	c := newCompiler(nil, "", value.FuncScript, module)
	c.compileBlockDecls(prog.Decls)
	fn := c.endCompiler()
	return fn, c.errors, !c.failed
}

// root returns the outermost Compiler in the enclosing chain. Diagnostics
// (errors/panicMode/failed) live there, since every nested function gets
// its own Compiler but a compile run has one shared error sink (clox's
// single Parser plays the same role for its nested compilers).
func (c *Compiler) root() *Compiler {
	for c.enclosing != nil {
		c = c.enclosing
	}
	return c
}

// Errors reports any error messages accumulated so far.
func (c *Compiler) Errors() []string { return c.root().errors }

func (c *Compiler) errorf(line int, format string, args ...interface{}) {
	r := c.root()
	if r.panicMode {
		return
	}
	r.panicMode = true
	r.failed = true
	r.errors = append(r.errors, fmt.Sprintf("[line %d] "+format, append([]interface{}{line}, args...)...))
}

// ---- emission primitives (spec.md §4.6.2) ----

func (c *Compiler) emitByte(b byte, line int) { c.chunk.WriteByte(b, line) }

func (c *Compiler) emitOp(op chunk.OpCode, line int) { c.emitByte(byte(op), line) }

func (c *Compiler) emitBytes(b1, b2 byte, line int) {
	c.emitByte(b1, line)
	c.emitByte(b2, line)
}

func (c *Compiler) emitConstant(v value.Value, line int) {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		c.errorf(line, "%s", err)
		return
	}
	c.emitBytes(byte(chunk.OpLoadConstant), byte(idx), line)
}

// makeConstant adds v to the pool without emitting LOAD_CONSTANT,
// for opcodes that carry a constant-pool index as an operand
// (DEFINE_GLOBAL, LOAD_PROPERTY, CLASS, METHOD, ...).
func (c *Compiler) makeConstant(v value.Value, line int) byte {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		c.errorf(line, "%s", err)
		return 0
	}
	return byte(idx)
}

func (c *Compiler) identifierConstant(name string, line int) byte {
	return c.makeConstant(value.ObjValue(value.NewString(name)), line)
}

func (c *Compiler) emitJump(op chunk.OpCode, line int) int {
	c.emitOp(op, line)
	c.emitBytes(0xff, 0xff, line)
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(offset int, line int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > 0xffff {
		c.errorf(line, "jump target too far (>65535 bytes)")
		return
	}
	// spec.md §3 invariant 6 / §4.7.3: 16-bit operands are little-endian.
	c.chunk.Code[offset] = byte(jump & 0xff)
	c.chunk.Code[offset+1] = byte((jump >> 8) & 0xff)
}

func (c *Compiler) emitLoop(start int, line int) {
	c.emitOp(chunk.OpLoop, line)
	offset := len(c.chunk.Code) - start + 2
	if offset > 0xffff {
		c.errorf(line, "loop body too large (>65535 bytes)")
		offset = 0
	}
	c.emitBytes(byte(offset&0xff), byte((offset>>8)&0xff), line)
}

func (c *Compiler) emitReturn(line int) {
	if c.fnType == value.FuncInitializer || c.fnType == value.FuncStaticInitializer {
		c.emitBytes(byte(chunk.OpLoadLocal), 0, line)
	} else {
		c.emitOp(chunk.OpLoadNil, line)
	}
	c.emitOp(chunk.OpReturn, line)
}

func (c *Compiler) endCompiler() *value.Function {
	c.emitReturn(0)
	c.function.Chunk = c.chunk
	c.function.UpvalueCount = len(c.upvalues)
	c.function.Module = c.module
	return c.function
}

// ---- scopes and locals (spec.md §4.6.3) ----

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.captured {
			c.emitOp(chunk.OpCloseUpvalue, line)
		} else {
			c.emitOp(chunk.OpPop, line)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string, line int) int {
	if c.scopeDepth == 0 {
		return -1
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth != -1 && c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name == name {
			c.errorf(line, "variable %q already declared in this scope", name)
			return -1
		}
	}
	if len(c.locals) >= maxLocals {
		c.errorf(line, "too many local variables in function (max %d)", maxLocals)
		return -1
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
	return len(c.locals) - 1
}

func (c *Compiler) initializeLocal() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// declareVariable declares name either as a local (inside a scope) or
// returns a constant-pool index for DEFINE_GLOBAL (spec.md §4.6.3).
func (c *Compiler) declareVariable(name string, line int) (globalIdx byte, isGlobal bool) {
	if c.scopeDepth > 0 {
		c.declareLocal(name, line)
		return 0, false
	}
	return c.identifierConstant(name, line), true
}

func (c *Compiler) defineVariable(globalIdx byte, isGlobal bool, line int) {
	if isGlobal {
		c.emitBytes(byte(chunk.OpDefineGlobal), globalIdx, line)
		return
	}
	c.initializeLocal()
}

func (c *Compiler) resolveLocal(name string, line int) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.errorf(line, "can't read local variable %q in its own initialiser", name)
			}
			return i
		}
	}
	return -1
}

// ---- upvalue resolution (spec.md §4.6.4) ----

func (c *Compiler) addUpvalue(index byte, isLocal bool, line int) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		c.errorf(line, "too many closure variables in function (max %d)", maxUpvalues)
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}

func (c *Compiler) resolveUpvalue(name string, line int) int {
	if c.enclosing == nil {
		return -1
	}
	if local := c.enclosing.resolveLocal(name, line); local != -1 {
		c.enclosing.locals[local].captured = true
		return c.addUpvalue(byte(local), true, line)
	}
	if up := c.enclosing.resolveUpvalue(name, line); up != -1 {
		return c.addUpvalue(byte(up), false, line)
	}
	return -1
}

// ---- declarations ----

func (c *Compiler) compileDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.ImportDecl:
		c.compileImport(n)
	case *ast.ClassDecl:
		c.compileClass(n)
	case *ast.FunctionDecl:
		c.compileFunctionDecl(n)
	case *ast.VarDecl:
		c.compileVarDecl(n)
	case *ast.StmtDecl:
		c.compileStmt(n.Inner)
	default:
		c.errorf(0, "unhandled declaration %T", d)
	}
}

func (c *Compiler) compileBlockDecls(decls []ast.Decl) {
	for _, d := range decls {
		// Reset panic-mode per declaration (clox's synchronize granularity)
		// so one bad construct doesn't suppress unrelated errors elsewhere.
		c.root().panicMode = false
		c.compileDecl(d)
	}
}

func (c *Compiler) compileImport(n *ast.ImportDecl) {
	pathIdx := c.makeConstant(value.ObjValue(value.NewString(n.Path)), n.Line)
	c.emitOp(chunk.OpImportModule, n.Line)
	c.emitByte(pathIdx, n.Line)
	switch {
	case n.Alias == "*":
		c.emitOp(chunk.OpImportAll, n.Line)
	case n.Alias != "":
		nameIdx := c.identifierConstant(n.Alias, n.Line)
		c.emitOp(chunk.OpImportByName, n.Line)
		c.emitByte(nameIdx, n.Line)
	default:
		c.emitOp(chunk.OpSaveModule, n.Line)
	}
}

func (c *Compiler) compileVarDecl(n *ast.VarDecl) {
	globalIdx, isGlobal := c.declareVariable(n.Name, n.Line)
	if n.Value != nil {
		c.compileExpr(n.Value)
	} else {
		c.emitOp(chunk.OpLoadNil, n.Line)
	}
	c.defineVariable(globalIdx, isGlobal, n.Line)
}

func (c *Compiler) compileFunctionDecl(n *ast.FunctionDecl) {
	globalIdx, isGlobal := c.declareVariable(n.Name, n.Line)
	if !isGlobal {
		c.initializeLocal()
	}
	c.compileFunction(n, c.classifyFunction(n))
	c.defineVariable(globalIdx, isGlobal, n.Line)
}

func (c *Compiler) classifyFunction(n *ast.FunctionDecl) value.FunctionType {
	switch {
	case n.IsStatic && n.Name == "init":
		return value.FuncStaticInitializer
	case n.IsStatic:
		return value.FuncStaticMethod
	case n.IsMethod && n.Name == "init":
		return value.FuncInitializer
	case n.IsMethod:
		return value.FuncMethod
	default:
		return value.FuncFunction
	}
}

func (c *Compiler) compileFunction(n *ast.FunctionDecl, fnType value.FunctionType) {
	fc := newCompiler(c, n.Name, fnType, c.module)
	fc.class = c.class
	fc.blocks = nil
	fc.beginScope()
	for _, p := range n.Params {
		fc.function.Arity++
		fc.declareLocal(p.Name, n.Line)
		fc.initializeLocal()
	}
	if fnType == value.FuncStaticInitializer && fc.function.Arity > 0 {
		fc.errorf(n.Line, "a static initializer takes no parameters")
	}
	if n.IsCoroutine && (fnType == value.FuncInitializer || fnType == value.FuncStaticInitializer) {
		fc.errorf(n.Line, "an initializer cannot be a coroutine")
	}
	fc.function.IsCoroutine = n.IsCoroutine
	fc.compileBlockDecls(n.Body)
	fn := fc.endCompiler()

	idx := c.makeConstant(value.ObjValue(fn), n.Line)
	c.emitBytes(byte(chunk.OpClosure), idx, n.Line)
	for _, uv := range fc.upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitBytes(isLocal, uv.index, n.Line)
	}
}

// compileClass binds the class name to its (still-empty) Class value
// immediately after CLASS, before any method or the superclass is
// touched, so inheritance, each method/static-method, and END_CLASS can
// all safely reload the class by name — the same object METHOD/INHERIT
// mutate in place (spec.md §4.6.6).
func (c *Compiler) compileClass(n *ast.ClassDecl) {
	globalIdx, isGlobal := c.declareVariable(n.Name, n.Line)
	nameIdx := c.identifierConstant(n.Name, n.Line)
	c.emitBytes(byte(chunk.OpClass), nameIdx, n.Line)
	// Bind the name to the (still empty) Class immediately, so every
	// later reload-by-name below — inheritance, each method, END_CLASS —
	// resolves to the same heap object that METHOD/INHERIT then mutate
	// in place.
	c.defineVariable(globalIdx, isGlobal, n.Line)

	cs := &classState{enclosing: c.class}

	if n.Superclass != nil {
		if n.Superclass.Name == n.Name {
			c.errorf(n.Line, "a class can't inherit from itself")
		}
		// Push the superclass once; this exact stack slot becomes the
		// synthetic `super` local below, so it must not be popped by
		// INHERIT (INHERIT pops only the subclass copy).
		c.compileNamedVariable(n.Superclass.Name, n.Line, ast.Load)
		c.beginScope()
		c.locals = append(c.locals, local{name: "super", depth: c.scopeDepth})

		c.compileNamedVariable(n.Name, n.Line, ast.Load)
		c.emitOp(chunk.OpInherit, n.Line)
		cs.hasSuperclass = true
	}

	prevClass := c.class
	c.class = cs

	// Reload the class for the method declarations; METHOD/STATIC_METHOD
	// peek it directly beneath the closure they pop.
	c.compileNamedVariable(n.Name, n.Line, ast.Load)
	for _, m := range n.Methods {
		c.compileFunction(m, c.classifyFunction(m))
		mIdx := c.identifierConstant(m.Name, m.Line)
		c.emitBytes(byte(chunk.OpMethod), mIdx, m.Line)
	}
	for _, m := range n.StaticMethods {
		c.compileFunction(m, c.classifyFunction(m))
		mIdx := c.identifierConstant(m.Name, m.Line)
		c.emitBytes(byte(chunk.OpStaticMethod), mIdx, m.Line)
	}

	c.class = prevClass

	// END_CLASS peeks the reloaded class (runs the static initialiser,
	// if any) then it is discarded; the binding made above already holds
	// the real reference.
	c.emitOp(chunk.OpEndClass, n.Line)
	c.emitOp(chunk.OpPop, n.Line)

	if n.Superclass != nil {
		c.endScope(n.Line)
	}
}

// ---- statements ----

func (c *Compiler) compileStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		c.beginScope()
		c.compileBlockDecls(n.Decls)
		c.endScope(n.Line)
	case *ast.ExprStmt:
		c.compileExpr(n.X)
		c.emitOp(chunk.OpPop, n.Line)
	case *ast.PrintStmt:
		c.compileExpr(n.Value)
		c.emitOp(chunk.OpPrint, n.Line)
	case *ast.IfStmt:
		c.compileIf(n)
	case *ast.WhileStmt:
		c.compileWhile(n)
	case *ast.DoWhileStmt:
		c.compileDoWhile(n)
	case *ast.ForStmt:
		c.compileFor(n)
	case *ast.ForInStmt:
		c.compileForIn(n)
	case *ast.BreakStmt:
		c.compileBreak(n.Line)
	case *ast.ContinueStmt:
		c.compileContinue(n.Line)
	case *ast.ReturnStmt:
		c.compileReturn(n)
	case *ast.WhenStmt:
		c.compileWhen(n)
	default:
		c.errorf(0, "unhandled statement %T", s)
	}
}

func (c *Compiler) compileIf(n *ast.IfStmt) {
	c.compileExpr(n.Cond)
	thenJump := c.emitJump(chunk.OpJumpIfFalse, n.Line)
	c.emitOp(chunk.OpPop, n.Line)
	c.compileStmt(n.Then)
	elseJump := c.emitJump(chunk.OpJump, n.Line)
	c.patchJump(thenJump, n.Line)
	c.emitOp(chunk.OpPop, n.Line)
	if n.Else != nil {
		c.compileStmt(n.Else)
	}
	c.patchJump(elseJump, n.Line)
}

func (c *Compiler) pushLoopBlock(start int) *controlBlock {
	b := &controlBlock{kind: blockLoop, start: start}
	c.blocks = append(c.blocks, b)
	return b
}

func (c *Compiler) popLoopBlock(line int) *controlBlock {
	b := c.blocks[len(c.blocks)-1]
	c.blocks = c.blocks[:len(c.blocks)-1]
	for _, j := range b.breaks {
		c.patchJump(j, line)
	}
	return b
}

func (c *Compiler) compileWhile(n *ast.WhileStmt) {
	loopStart := len(c.chunk.Code)
	c.pushLoopBlock(loopStart)
	c.compileExpr(n.Cond)
	exitJump := c.emitJump(chunk.OpPopJumpIfFalse, n.Line)
	c.compileStmt(n.Body)
	c.emitLoop(loopStart, n.Line)
	c.patchJump(exitJump, n.Line)
	c.popLoopBlock(n.Line)
}

func (c *Compiler) compileDoWhile(n *ast.DoWhileStmt) {
	loopStart := len(c.chunk.Code)
	c.pushLoopBlock(loopStart)
	c.compileStmt(n.Body)
	c.compileExpr(n.Cond)
	c.emitOp(chunk.OpPopLoopIfTrue, n.Line)
	offset := len(c.chunk.Code) - loopStart + 2
	c.emitBytes(byte(offset&0xff), byte((offset>>8)&0xff), n.Line)
	c.popLoopBlock(n.Line)
}

func (c *Compiler) compileFor(n *ast.ForStmt) {
	c.beginScope()
	if n.Init != nil {
		c.compileDecl(n.Init)
	}
	loopStart := len(c.chunk.Code)
	exitJump := -1
	if n.Cond != nil {
		c.compileExpr(n.Cond)
		exitJump = c.emitJump(chunk.OpPopJumpIfFalse, n.Line)
	}
	bodyJump := c.emitJump(chunk.OpJump, n.Line)
	incrStart := len(c.chunk.Code)
	if n.Post != nil {
		c.compileExpr(n.Post)
		c.emitOp(chunk.OpPop, n.Line)
	}
	c.emitLoop(loopStart, n.Line)
	c.patchJump(bodyJump, n.Line)

	c.pushLoopBlock(incrStart)
	c.compileStmt(n.Body)
	c.popLoopBlock(n.Line)

	c.emitLoop(incrStart, n.Line)
	if exitJump != -1 {
		c.patchJump(exitJump, n.Line)
	}
	c.endScope(n.Line)
}

func (c *Compiler) compileForIn(n *ast.ForInStmt) {
	c.compileExpr(n.Collection)
	c.emitOp(chunk.OpIterator, n.Line)

	c.beginScope()
	loopStart := len(c.chunk.Code)
	c.pushLoopBlock(loopStart)
	exitJump := c.emitJump(chunk.OpForIterator, n.Line)

	if len(n.Targets) == 1 {
		c.declareLocal(n.Targets[0], n.Line)
		c.initializeLocal()
	} else {
		c.emitBytes(byte(chunk.OpTupleUnpack), byte(len(n.Targets)), n.Line)
		for _, t := range n.Targets {
			c.declareLocal(t, n.Line)
			c.initializeLocal()
		}
	}

	c.compileStmt(n.Body)

	// restore the stack to "iterator only" depth so the next FOR_ITERATOR
	// overwrites the same slot(s) rather than growing unboundedly.
	for range n.Targets {
		c.emitOp(chunk.OpPop, n.Line)
	}
	c.locals = c.locals[:len(c.locals)-len(n.Targets)]

	c.emitLoop(loopStart, n.Line)
	c.patchJump(exitJump, n.Line)
	c.popLoopBlock(n.Line)
	c.endScope(n.Line)
}

func (c *Compiler) compileBreak(line int) {
	for i := len(c.blocks) - 1; i >= 0; i-- {
		if c.blocks[i].kind == blockLoop {
			j := c.emitJump(chunk.OpJump, line)
			c.blocks[i].breaks = append(c.blocks[i].breaks, j)
			return
		}
	}
	c.errorf(line, "'break' outside a loop")
}

func (c *Compiler) compileContinue(line int) {
	for i := len(c.blocks) - 1; i >= 0; i-- {
		if c.blocks[i].kind == blockLoop {
			c.emitLoop(c.blocks[i].start, line)
			return
		}
	}
	c.errorf(line, "'continue' outside a loop")
}

func (c *Compiler) compileReturn(n *ast.ReturnStmt) {
	if c.fnType == value.FuncScript {
		c.errorf(n.Line, "can't return from top-level script")
		return
	}
	isInit := c.fnType == value.FuncInitializer || c.fnType == value.FuncStaticInitializer
	if isInit {
		if n.Value != nil {
			c.errorf(n.Line, "can't return a value from an initializer")
		}
		c.emitBytes(byte(chunk.OpLoadLocal), 0, n.Line)
		c.emitOp(chunk.OpReturn, n.Line)
		return
	}
	if n.Value != nil {
		c.compileExpr(n.Value)
	} else {
		c.emitOp(chunk.OpLoadNil, n.Line)
	}
	c.emitOp(chunk.OpReturn, n.Line)
}

func (c *Compiler) compileWhen(n *ast.WhenStmt) {
	c.compileExpr(n.Control)
	var endJumps []int
	for _, cs := range n.Cases {
		var matchJumps []int
		for _, val := range cs.Values {
			c.compileExpr(val)
			matchJumps = append(matchJumps, c.emitJump(chunk.OpPopJumpIfEqual, n.Line))
		}
		nextCase := c.emitJump(chunk.OpJump, n.Line)
		for _, j := range matchJumps {
			c.patchJump(j, n.Line)
		}
		c.compileBlockDecls(cs.Body)
		endJumps = append(endJumps, c.emitJump(chunk.OpJump, n.Line))
		c.patchJump(nextCase, n.Line)
	}
	// no case matched: ctrl is still on the stack (POP_JUMP_IF_EQUAL only
	// drops its own operand on a miss) — discard it before the else arm.
	c.emitOp(chunk.OpPop, n.Line)
	if n.Else != nil {
		c.compileBlockDecls(n.Else)
	}
	for _, j := range endJumps {
		c.patchJump(j, n.Line)
	}
}

// ---- expressions ----

func (c *Compiler) compileExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		c.compileLiteral(n)
	case *ast.Identifier:
		c.compileNamedVariable(n.Name, n.Line, n.Ctx)
	case *ast.StringInterpExpr:
		c.compileStringInterp(n)
	case *ast.RangeExpr:
		c.compileRange(n)
	case *ast.LambdaExpr:
		c.compileLambda(n)
	case *ast.ListExpr:
		for _, el := range n.Elements {
			c.compileExpr(el)
		}
		c.emitBytes(byte(chunk.OpList), byte(len(n.Elements)), n.Line)
	case *ast.MapExpr:
		for _, entry := range n.Entries {
			c.compileExpr(entry.Key)
			c.compileExpr(entry.Value)
		}
		c.emitBytes(byte(chunk.OpMap), byte(len(n.Entries)), n.Line)
	case *ast.TupleExpr:
		for _, el := range n.Elements {
			c.compileExpr(el)
		}
		c.emitBytes(byte(chunk.OpTuple), byte(len(n.Elements)), n.Line)
	case *ast.CallExpr:
		c.compileCall(n)
	case *ast.PropertyExpr:
		c.compileProperty(n, nil)
	case *ast.SubscriptExpr:
		c.compileSubscript(n, nil)
	case *ast.SuperExpr:
		c.compileSuperGet(n)
	case *ast.AssignExpr:
		c.compileAssign(n)
	case *ast.CompoundAssignExpr:
		c.compileCompoundAssign(n)
	case *ast.UnpackAssignExpr:
		c.compileUnpackAssign(n)
	case *ast.CoroutineExpr:
		c.compileExpr(n.Callee)
		c.emitOp(chunk.OpCoroutine, n.Line)
	case *ast.YieldExpr:
		c.compileYield(n)
	case *ast.PrefixIncExpr:
		c.compilePrefixInc(n)
	case *ast.PostfixIncExpr:
		c.compilePostfixInc(n)
	case *ast.LogicalExpr:
		c.compileLogical(n)
	case *ast.ConditionalExpr:
		c.compileConditional(n)
	case *ast.ElvisExpr:
		c.compileElvis(n)
	case *ast.BinaryExpr:
		c.compileBinary(n)
	case *ast.UnaryExpr:
		c.compileUnary(n)
	default:
		c.errorf(0, "unhandled expression %T", e)
	}
}

func (c *Compiler) compileLiteral(n *ast.Literal) {
	switch n.Kind {
	case ast.LitNumber:
		c.emitConstant(value.NumberValue(n.Number), n.Line)
	case ast.LitString:
		c.emitConstant(value.ObjValue(value.NewString(n.Str)), n.Line)
	case ast.LitBool:
		if n.Bool {
			c.emitOp(chunk.OpLoadTrue, n.Line)
		} else {
			c.emitOp(chunk.OpLoadFalse, n.Line)
		}
	case ast.LitNil:
		c.emitOp(chunk.OpLoadNil, n.Line)
	}
}

func (c *Compiler) compileStringInterp(n *ast.StringInterpExpr) {
	count := 0
	for _, seg := range n.Segments {
		if seg.IsExpr {
			c.compileExpr(seg.Expr)
		} else {
			if seg.Text == "" {
				continue
			}
			c.emitConstant(value.ObjValue(value.NewString(seg.Text)), n.Line)
		}
		count++
	}
	if count == 0 {
		c.emitConstant(value.ObjValue(value.NewString("")), n.Line)
		count = 1
	}
	c.emitBytes(byte(chunk.OpBuildString), byte(count), n.Line)
}

func (c *Compiler) compileRange(n *ast.RangeExpr) {
	c.compileExpr(n.Begin)
	c.compileExpr(n.End)
	if n.Step != nil {
		c.compileExpr(n.Step)
	} else {
		c.emitConstant(value.NumberValue(1), n.Line)
	}
	c.emitOp(chunk.OpRange, n.Line)
}

func (c *Compiler) compileLambda(n *ast.LambdaExpr) {
	fd := &ast.FunctionDecl{Line: n.Line, Name: "", Params: n.Params, IsCoroutine: n.IsCoroutine}
	if n.BlockBody != nil {
		fd.Body = n.BlockBody
	} else {
		fd.Body = []ast.Decl{&ast.StmtDecl{Inner: &ast.ReturnStmt{Line: n.Line, Value: n.ExprBody}}}
	}
	c.compileFunction(fd, value.FuncLambda)
}

func (c *Compiler) compileCall(n *ast.CallExpr) {
	if argc := len(n.Args); argc > maxArgs {
		c.errorf(n.Line, "too many arguments (max %d)", maxArgs)
	}
	switch callee := n.Callee.(type) {
	case *ast.PropertyExpr:
		c.compileExpr(callee.Object)
		for _, a := range n.Args {
			c.compileExpr(a)
		}
		nameIdx := c.identifierConstant(callee.Name, n.Line)
		op := chunk.OpInvoke
		if callee.Safe {
			op = chunk.OpInvokeSafe
		}
		c.emitOp(op, n.Line)
		c.emitBytes(nameIdx, byte(len(n.Args)), n.Line)
	case *ast.SuperExpr:
		c.compileSuperCall(callee, n.Args, n.Line)
	default:
		c.compileExpr(n.Callee)
		for _, a := range n.Args {
			c.compileExpr(a)
		}
		c.emitBytes(byte(chunk.OpCall), byte(len(n.Args)), n.Line)
	}
}

func (c *Compiler) compileProperty(n *ast.PropertyExpr, _ *ast.AssignExpr) {
	c.compileExpr(n.Object)
	nameIdx := c.identifierConstant(n.Name, n.Line)
	op := chunk.OpLoadProperty
	if n.Safe {
		op = chunk.OpLoadPropertySafe
	}
	c.emitOp(op, n.Line)
	c.emitByte(nameIdx, n.Line)
}

func (c *Compiler) compileSubscript(n *ast.SubscriptExpr, _ ast.Expr) {
	c.compileExpr(n.Object)
	c.compileExpr(n.Index)
	op := chunk.OpLoadSubscript
	if n.Safe {
		op = chunk.OpLoadSubscriptSafe
	}
	c.emitOp(op, n.Line)
}

func (c *Compiler) compileSuperGet(n *ast.SuperExpr) {
	if !c.checkSuperContext(n.Line) {
		return
	}
	c.compileNamedVariable("this", n.Line, ast.Load)
	c.compileNamedVariable("super", n.Line, ast.Load)
	nameIdx := c.identifierConstant(n.Method, n.Line)
	c.emitOp(chunk.OpGetSuper, n.Line)
	c.emitByte(nameIdx, n.Line)
}

func (c *Compiler) compileSuperCall(n *ast.SuperExpr, args []ast.Expr, line int) {
	if !c.checkSuperContext(line) {
		return
	}
	c.compileNamedVariable("this", line, ast.Load)
	for _, a := range args {
		c.compileExpr(a)
	}
	c.compileNamedVariable("super", line, ast.Load)
	nameIdx := c.identifierConstant(n.Method, line)
	c.emitOp(chunk.OpSuperInvoke, line)
	c.emitBytes(nameIdx, byte(len(args)), line)
}

func (c *Compiler) checkSuperContext(line int) bool {
	if c.class == nil {
		c.errorf(line, "'super' used outside a class")
		return false
	}
	if !c.class.hasSuperclass {
		c.errorf(line, "'super' used in a class with no superclass")
		return false
	}
	if c.fnType == value.FuncStaticMethod || c.fnType == value.FuncStaticInitializer {
		c.errorf(line, "'super' used in a static method")
		return false
	}
	return true
}

// compileNamedVariable handles both Load and Store contexts for plain
// identifiers, resolving local > upvalue > global in that order
// (spec.md §4.6.3/§4.6.4).
func (c *Compiler) compileNamedVariable(name string, line int, ctx ast.ExprContext) {
	if slot := c.resolveLocal(name, line); slot != -1 {
		if ctx == ast.Store {
			c.emitBytes(byte(chunk.OpStoreLocal), byte(slot), line)
		} else {
			c.emitBytes(byte(chunk.OpLoadLocal), byte(slot), line)
		}
		return
	}
	if slot := c.resolveUpvalue(name, line); slot != -1 {
		if ctx == ast.Store {
			c.emitBytes(byte(chunk.OpStoreUpvalue), byte(slot), line)
		} else {
			c.emitBytes(byte(chunk.OpLoadUpvalue), byte(slot), line)
		}
		return
	}
	idx := c.identifierConstant(name, line)
	if ctx == ast.Store {
		c.emitBytes(byte(chunk.OpStoreGlobal), idx, line)
	} else {
		c.emitBytes(byte(chunk.OpLoadGlobal), idx, line)
	}
}

func (c *Compiler) compileAssign(n *ast.AssignExpr) {
	switch t := n.Target.(type) {
	case *ast.Identifier:
		c.compileExpr(n.Value)
		c.compileNamedVariable(t.Name, n.Line, ast.Store)
	case *ast.PropertyExpr:
		c.compileExpr(t.Object)
		c.compileExpr(n.Value)
		nameIdx := c.identifierConstant(t.Name, n.Line)
		op := chunk.OpStoreProperty
		if t.Safe {
			op = chunk.OpStorePropertySafe
		}
		c.emitOp(op, n.Line)
		c.emitByte(nameIdx, n.Line)
	case *ast.SubscriptExpr:
		c.compileExpr(t.Object)
		c.compileExpr(t.Index)
		c.compileExpr(n.Value)
		op := chunk.OpStoreSubscript
		if t.Safe {
			op = chunk.OpStoreSubscriptSafe
		}
		c.emitOp(op, n.Line)
	default:
		c.errorf(n.Line, "invalid assignment target")
	}
}

var compoundBaseOp = map[token.Type]chunk.OpCode{
	token.PLUS_EQUAL:      chunk.OpAdd,
	token.MINUS_EQUAL:     chunk.OpSubtract,
	token.STAR_EQUAL:      chunk.OpMultiply,
	token.SLASH_EQUAL:     chunk.OpDivide,
	token.PERCENT_EQUAL:   chunk.OpModulo,
	token.STAR_STAR_EQUAL: chunk.OpPower,
	token.AMP_EQUAL:       chunk.OpBitwiseAnd,
	token.PIPE_EQUAL:      chunk.OpBitwiseOr,
	token.CARET_EQUAL:     chunk.OpBitwiseXor,
	token.LSHIFT_EQUAL:    chunk.OpBitwiseLeftShift,
	token.RSHIFT_EQUAL:    chunk.OpBitwiseRightShift,
}

func (c *Compiler) compileCompoundAssign(n *ast.CompoundAssignExpr) {
	op, ok := compoundBaseOp[n.Op]
	if !ok {
		c.errorf(n.Line, "unknown compound-assignment operator %s", n.Op)
		return
	}
	switch t := n.Target.(type) {
	case *ast.Identifier:
		c.compileNamedVariable(t.Name, n.Line, ast.Load)
		c.compileExpr(n.Value)
		c.emitOp(op, n.Line)
		c.compileNamedVariable(t.Name, n.Line, ast.Store)
	case *ast.PropertyExpr:
		c.compileCompoundProperty(t, op, n.Value, n.Line)
	case *ast.SubscriptExpr:
		c.compileCompoundSubscript(t, op, n.Value, n.Line)
	default:
		c.errorf(n.Line, "invalid compound-assignment target")
	}
}

// compileCompoundProperty implements spec.md §4.6.7's property shape:
// load obj / DUP / LOAD_PROPERTY / rhs / <op> / STORE_PROPERTY, with the
// operand order for STORE_PROPERTY chosen (DESIGN.md) so neither this
// nor the plain-assignment path needs an extra SWAP.
func (c *Compiler) compileCompoundProperty(t *ast.PropertyExpr, op chunk.OpCode, rhs ast.Expr, line int) {
	nameIdx := c.identifierConstant(t.Name, line)
	c.compileExpr(t.Object)
	if !t.Safe {
		c.emitOp(chunk.OpDup, line)
		c.emitOp(chunk.OpLoadProperty, line)
		c.emitByte(nameIdx, line)
		c.compileExpr(rhs)
		c.emitOp(op, line)
		c.emitOp(chunk.OpStoreProperty, line)
		c.emitByte(nameIdx, line)
		return
	}
	c.emitOp(chunk.OpDup, line)
	notNilJump := c.emitJump(chunk.OpJumpIfNotNil, line)
	c.emitOp(chunk.OpPop, line)
	c.emitOp(chunk.OpPop, line)
	c.emitOp(chunk.OpLoadNil, line)
	endJump := c.emitJump(chunk.OpJump, line)
	c.patchJump(notNilJump, line)
	// the duplicate used for the nil check stays as STORE's receiver
	c.emitOp(chunk.OpLoadProperty, line)
	c.emitByte(nameIdx, line)
	c.compileExpr(rhs)
	c.emitOp(op, line)
	c.emitOp(chunk.OpStorePropertySafe, line)
	c.emitByte(nameIdx, line)
	c.patchJump(endJump, line)
}

func (c *Compiler) compileCompoundSubscript(t *ast.SubscriptExpr, op chunk.OpCode, rhs ast.Expr, line int) {
	if !t.Safe {
		c.compileExpr(t.Object)
		c.compileExpr(t.Index)
		c.emitOp(chunk.OpDupTwo, line)
		c.emitOp(chunk.OpLoadSubscript, line)
		c.compileExpr(rhs)
		c.emitOp(op, line)
		c.emitOp(chunk.OpStoreSubscript, line)
		return
	}
	c.compileExpr(t.Object)
	c.emitOp(chunk.OpDup, line)
	notNilJump := c.emitJump(chunk.OpJumpIfNotNil, line)
	c.emitOp(chunk.OpPop, line)
	c.emitOp(chunk.OpPop, line)
	c.emitOp(chunk.OpLoadNil, line)
	endJump := c.emitJump(chunk.OpJump, line)
	c.patchJump(notNilJump, line)
	c.emitOp(chunk.OpPop, line) // drop the nil-check duplicate
	c.compileExpr(t.Index)
	c.emitOp(chunk.OpDupTwo, line)
	c.emitOp(chunk.OpLoadSubscript, line)
	c.compileExpr(rhs)
	c.emitOp(op, line)
	c.emitOp(chunk.OpStoreSubscript, line)
	c.patchJump(endJump, line)
}

func (c *Compiler) compileUnpackAssign(n *ast.UnpackAssignExpr) {
	c.compileExpr(n.Value)
	c.emitOp(chunk.OpDup, n.Line)
	c.emitBytes(byte(chunk.OpTupleUnpack), byte(len(n.Targets)), n.Line)
	// TUPLE_UNPACK pushes N elements in source order; assign in reverse
	// so positions line up (spec.md §4.6.7).
	for i := len(n.Targets) - 1; i >= 0; i-- {
		switch t := n.Targets[i].(type) {
		case *ast.Identifier:
			c.compileNamedVariable(t.Name, n.Line, ast.Store)
			c.emitOp(chunk.OpPop, n.Line)
		case *ast.PropertyExpr:
			// value is already on top from TUPLE_UNPACK; push obj above
			// it then SWAP so STORE_PROPERTY sees (obj, value).
			c.compileExpr(t.Object)
			c.emitOp(chunk.OpSwap, n.Line)
			nameIdx := c.identifierConstant(t.Name, n.Line)
			c.emitOp(chunk.OpStoreProperty, n.Line)
			c.emitByte(nameIdx, n.Line)
			c.emitOp(chunk.OpPop, n.Line)
		case *ast.SubscriptExpr:
			c.compileExpr(t.Object)
			c.compileExpr(t.Index)
			// stack is (value, obj, idx); STORE_SUBSCRIPT wants
			// (obj, idx, value) — two rotate-rights of the top three
			// compose into the rotate-left we need here.
			c.emitOp(chunk.OpSwapThree, n.Line)
			c.emitOp(chunk.OpSwapThree, n.Line)
			c.emitOp(chunk.OpStoreSubscript, n.Line)
			c.emitOp(chunk.OpPop, n.Line)
		default:
			c.errorf(n.Line, "invalid unpack-assignment target")
		}
	}
	// the leading DUP kept the original tuple as the expression's value.
}

func (c *Compiler) compileYield(n *ast.YieldExpr) {
	if c.fnType == value.FuncScript {
		c.errorf(n.Line, "'yield' at top level")
		return
	}
	if c.fnType == value.FuncInitializer || c.fnType == value.FuncStaticInitializer {
		c.errorf(n.Line, "'yield' in an initializer")
		return
	}
	if n.Value != nil {
		c.compileExpr(n.Value)
	} else {
		c.emitOp(chunk.OpLoadNil, n.Line)
	}
	c.emitOp(chunk.OpYield, n.Line)
}

func (c *Compiler) compilePrefixInc(n *ast.PrefixIncExpr) {
	op := chunk.OpInc
	if n.Op == token.MINUS_MINUS {
		op = chunk.OpDec
	}
	c.compileIncDecTarget(n.Target, op, n.Line, false)
}

func (c *Compiler) compilePostfixInc(n *ast.PostfixIncExpr) {
	op := chunk.OpInc
	if n.Op == token.MINUS_MINUS {
		op = chunk.OpDec
	}
	c.compileIncDecTarget(n.Target, op, n.Line, true)
}

// compileIncDecTarget desugars `++x`/`x++` (and `--`) the same way as
// identifier compound-assignment: load, INC/DEC, store; for postfix,
// the pre-increment value is kept as the expression's result via DUP
// before the mutation.
func (c *Compiler) compileIncDecTarget(target ast.Expr, op chunk.OpCode, line int, postfix bool) {
	switch t := target.(type) {
	case *ast.Identifier:
		// Load, (Dup), op, Store (peek-write, leaves its operand), Pop
		// the now-redundant copy when postfix needs the pre-mutation
		// value as the expression result.
		c.compileNamedVariable(t.Name, line, ast.Load)
		if postfix {
			c.emitOp(chunk.OpDup, line)
		}
		c.emitOp(op, line)
		c.compileNamedVariable(t.Name, line, ast.Store)
		if postfix {
			c.emitOp(chunk.OpPop, line)
		}
	case *ast.PropertyExpr:
		nameIdx := c.identifierConstant(t.Name, line)
		c.compileExpr(t.Object)
		c.emitOp(chunk.OpDup, line)
		c.emitOp(chunk.OpLoadProperty, line)
		c.emitByte(nameIdx, line)
		if postfix {
			// (obj, v) -> Dup -> (obj, v, v) -> rotate-right -> (v, obj, v):
			// buries the kept copy below the (obj, v) window STORE_PROPERTY
			// needs, so the op+store below only ever see that window.
			c.emitOp(chunk.OpDup, line)
			c.emitOp(chunk.OpSwapThree, line)
		}
		c.emitOp(op, line)
		c.emitOp(chunk.OpStoreProperty, line)
		c.emitByte(nameIdx, line)
		if postfix {
			c.emitOp(chunk.OpPop, line)
		}
	case *ast.SubscriptExpr:
		c.compileExpr(t.Object)
		c.compileExpr(t.Index)
		c.emitOp(chunk.OpDupTwo, line)
		c.emitOp(chunk.OpLoadSubscript, line)
		if postfix {
			// (obj, idx, v) -> Dup -> (obj, idx, v, v) -> rotate-right ->
			// (v, obj, idx, v): same trick as property, one element wider.
			c.emitOp(chunk.OpDup, line)
			c.emitOp(chunk.OpSwapFour, line)
		}
		c.emitOp(op, line)
		c.emitOp(chunk.OpStoreSubscript, line)
		if postfix {
			c.emitOp(chunk.OpPop, line)
		}
	default:
		c.errorf(line, "invalid increment/decrement target")
	}
}

func (c *Compiler) compileLogical(n *ast.LogicalExpr) {
	c.compileExpr(n.Left)
	if n.Op == token.AND {
		endJump := c.emitJump(chunk.OpJumpIfFalse, n.Line)
		c.emitOp(chunk.OpPop, n.Line)
		c.compileExpr(n.Right)
		c.patchJump(endJump, n.Line)
		return
	}
	elseJump := c.emitJump(chunk.OpJumpIfFalse, n.Line)
	endJump := c.emitJump(chunk.OpJump, n.Line)
	c.patchJump(elseJump, n.Line)
	c.emitOp(chunk.OpPop, n.Line)
	c.compileExpr(n.Right)
	c.patchJump(endJump, n.Line)
}

func (c *Compiler) compileConditional(n *ast.ConditionalExpr) {
	c.compileExpr(n.Cond)
	elseJump := c.emitJump(chunk.OpPopJumpIfFalse, n.Line)
	c.compileExpr(n.Then)
	endJump := c.emitJump(chunk.OpJump, n.Line)
	c.patchJump(elseJump, n.Line)
	if n.Else != nil {
		c.compileExpr(n.Else)
	} else {
		c.emitOp(chunk.OpLoadNil, n.Line)
	}
	c.patchJump(endJump, n.Line)
}

func (c *Compiler) compileElvis(n *ast.ElvisExpr) {
	c.compileExpr(n.Left)
	keepJump := c.emitJump(chunk.OpJumpIfNotNil, n.Line)
	c.emitOp(chunk.OpPop, n.Line)
	c.compileExpr(n.Right)
	c.patchJump(keepJump, n.Line)
}

var binaryOp = map[token.Type]chunk.OpCode{
	token.PLUS: chunk.OpAdd, token.MINUS: chunk.OpSubtract,
	token.STAR: chunk.OpMultiply, token.SLASH: chunk.OpDivide,
	token.PERCENT: chunk.OpModulo, token.STAR_STAR: chunk.OpPower,
	token.EQUAL_EQUAL: chunk.OpEqual, token.BANG_EQUAL: chunk.OpNotEqual,
	token.LESS: chunk.OpLess, token.LESS_EQUAL: chunk.OpLessEqual,
	token.GREATER: chunk.OpGreater, token.GREATER_EQUAL: chunk.OpGreaterEqual,
	token.AMP: chunk.OpBitwiseAnd, token.BAR: chunk.OpBitwiseOr, token.CARET: chunk.OpBitwiseXor,
	token.LSHIFT: chunk.OpBitwiseLeftShift, token.RSHIFT: chunk.OpBitwiseRightShift,
}

func (c *Compiler) compileBinary(n *ast.BinaryExpr) {
	c.compileExpr(n.Left)
	c.compileExpr(n.Right)
	op, ok := binaryOp[n.Op]
	if !ok {
		c.errorf(n.Line, "unknown binary operator %s", n.Op)
		return
	}
	c.emitOp(op, n.Line)
}

func (c *Compiler) compileUnary(n *ast.UnaryExpr) {
	c.compileExpr(n.Right)
	switch n.Op {
	case token.MINUS:
		c.emitOp(chunk.OpNegate, n.Line)
	case token.BANG:
		c.emitOp(chunk.OpNot, n.Line)
	case token.TILDE:
		c.emitOp(chunk.OpBitwiseNot, n.Line)
	default:
		c.errorf(n.Line, "unknown unary operator %s", n.Op)
	}
}
