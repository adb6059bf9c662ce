package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/ast"
	"github.com/emberlang/ember/internal/lexer"
	"github.com/emberlang/ember/internal/parser"
	"github.com/emberlang/ember/internal/value"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.False(t, p.Failed(), "parse errors for %q: %v", src, p.Errors())
	return prog
}

func compileOK(t *testing.T, src string) (*value.Function, string) {
	t.Helper()
	prog := parseOK(t, src)
	fn, errs, ok := Compile(prog, value.NewModule("<test>", "<test>"))
	require.True(t, ok, "compile errors for %q: %v", src, errs)
	// include every nested function's chunk, not just the top level
	var dis func(f *value.Function, name string) string
	dis = func(f *value.Function, name string) string {
		out := f.Chunk.Disassemble(name)
		for _, k := range f.Chunk.Values() {
			if nested, ok := k.AsObj().(*value.Function); k.IsObj() && ok {
				out += dis(nested, nested.Name)
			}
		}
		return out
	}
	return fn, dis(fn, "<test>")
}

func compileErr(t *testing.T, src string) []string {
	t.Helper()
	prog := parseOK(t, src)
	_, errs, ok := Compile(prog, value.NewModule("<test>", "<test>"))
	require.False(t, ok, "expected compile failure for %q", src)
	return errs
}

func TestGlobalVarDecl(t *testing.T) {
	_, out := compileOK(t, `var x = 1;`)
	require.Contains(t, out, "DEFINE_GLOBAL")
	require.Contains(t, out, "LOAD_CONSTANT")
}

func TestLocalScopeUsesLocalSlots(t *testing.T) {
	_, out := compileOK(t, `
{
	fun f() {
		var a = 1;
		var b = a + 2;
		return b;
	}
}`)
	require.Contains(t, out, "LOAD_LOCAL")
	require.NotContains(t, out, "DEFINE_GLOBAL")
}

func TestUpvalueCaptureAcrossNestedFunction(t *testing.T) {
	_, out := compileOK(t, `
fun outer() {
	var x = 1;
	fun inner() {
		return x;
	}
	return inner;
}`)
	require.Contains(t, out, "CLOSURE")
	require.Contains(t, out, "LOAD_UPVALUE")
}

func TestUpvalueCaptureAcrossLambda(t *testing.T) {
	_, out := compileOK(t, `
fun outer() {
	var x = 1;
	var f = \y -> x + y;
	return f;
}`)
	require.Contains(t, out, "LOAD_UPVALUE")
}

func TestIfElseEmitsJumps(t *testing.T) {
	_, out := compileOK(t, `
fun f(a) {
	if (a) {
		print "yes";
	} else {
		print "no";
	}
}`)
	require.Contains(t, out, "JUMP_IF_FALSE")
	require.Contains(t, out, "JUMP ")
}

func TestWhileBreakContinue(t *testing.T) {
	_, out := compileOK(t, `
fun f() {
	var i = 0;
	while (i < 10) {
		if (i == 5) { break; }
		if (i == 2) { i = i + 1; continue; }
		i = i + 1;
	}
}`)
	require.Contains(t, out, "POP_JUMP_IF_FALSE")
	require.Contains(t, out, "LOOP")
}

func TestBreakOutsideLoopIsCompileError(t *testing.T) {
	errs := compileErr(t, `fun f() { break; }`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "break")
}

func TestForLoopDesugars(t *testing.T) {
	_, out := compileOK(t, `
fun f() {
	for (var i = 0; i < 10; i = i + 1) {
		print i;
	}
}`)
	require.Contains(t, out, "POP_JUMP_IF_FALSE")
	require.Contains(t, out, "LOOP")
}

func TestForInSingleTarget(t *testing.T) {
	_, out := compileOK(t, `
fun f(xs) {
	for (var x in xs) {
		print x;
	}
}`)
	require.Contains(t, out, "ITERATOR")
	require.Contains(t, out, "FOR_ITERATOR")
}

func TestForInMultiTargetUnpacksTuple(t *testing.T) {
	_, out := compileOK(t, `
fun f(xs) {
	for (var |k, v| in xs) {
		print k;
		print v;
	}
}`)
	require.Contains(t, out, "TUPLE_UNPACK")
}

func TestWhenUsesPopJumpIfEqual(t *testing.T) {
	_, out := compileOK(t, `
fun f(x) {
	when (x) {
		case 1, 2 -> print "small";
		case 3 -> print "three";
		default -> print "other";
	}
}`)
	require.Contains(t, out, "POP_JUMP_IF_EQUAL")
}

func TestClassWithInheritanceAndSuperCall(t *testing.T) {
	_, out := compileOK(t, `
class Animal {
	fun speak() { print "..."; }
}
class Dog < Animal {
	fun speak() {
		super.speak();
		print "woof";
	}
}`)
	require.Contains(t, out, "CLASS")
	require.Contains(t, out, "INHERIT")
	require.Contains(t, out, "METHOD")
	require.Contains(t, out, "SUPER_INVOKE")
	require.Contains(t, out, "END_CLASS")
}

func TestClassStaticInitializer(t *testing.T) {
	_, out := compileOK(t, `
class Counter {
	static fun init() {
		print "built";
	}
}`)
	require.Contains(t, out, "STATIC_METHOD")
	require.Contains(t, out, "END_CLASS")
}

func TestSuperOutsideClassIsCompileError(t *testing.T) {
	errs := compileErr(t, `fun f() { super.speak(); }`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "super")
}

func TestSuperWithNoSuperclassIsCompileError(t *testing.T) {
	errs := compileErr(t, `
class Animal {
	fun speak() { super.speak(); }
}`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "super")
}

func TestSuperInStaticMethodIsCompileError(t *testing.T) {
	errs := compileErr(t, `
class Animal {
	fun speak() { print "..."; }
}
class Dog < Animal {
	static fun make() { super.speak(); }
}`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "static")
}

func TestClassInheritingFromItselfIsCompileError(t *testing.T) {
	errs := compileErr(t, `class Loop < Loop { }`)
	require.NotEmpty(t, errs)
}

func TestCompoundPropertyAssignment(t *testing.T) {
	_, out := compileOK(t, `
class Box { }
fun f(b) {
	b.count += 1;
}`)
	require.Contains(t, out, "LOAD_PROPERTY")
	require.Contains(t, out, "STORE_PROPERTY")
	require.Contains(t, out, "ADD")
}

func TestSafeCompoundPropertyAssignmentUsesJumpIfNotNil(t *testing.T) {
	_, out := compileOK(t, `
fun f(b) {
	b?.count += 1;
}`)
	require.Contains(t, out, "JUMP_IF_NOT_NIL")
	require.Contains(t, out, "STORE_PROPERTY_SAFE")
}

func TestCompoundSubscriptAssignment(t *testing.T) {
	_, out := compileOK(t, `
fun f(xs) {
	xs[0] += 1;
}`)
	require.Contains(t, out, "LOAD_SUBSCRIPT")
	require.Contains(t, out, "STORE_SUBSCRIPT")
	require.Contains(t, out, "DUP_TWO")
}

func TestPostfixIncOnIdentifier(t *testing.T) {
	_, out := compileOK(t, `
fun f() {
	var i = 0;
	var j = i++;
	return j;
}`)
	require.Contains(t, out, "DUP")
	require.Contains(t, out, "INC")
}

func TestPostfixIncOnProperty(t *testing.T) {
	_, out := compileOK(t, `
fun f(b) {
	return b.count++;
}`)
	require.Contains(t, out, "SWAP_THREE")
	require.Contains(t, out, "STORE_PROPERTY")
}

func TestPostfixIncOnSubscript(t *testing.T) {
	_, out := compileOK(t, `
fun f(xs) {
	return xs[0]++;
}`)
	require.Contains(t, out, "SWAP_FOUR")
	require.Contains(t, out, "STORE_SUBSCRIPT")
}

func TestTupleUnpackAssignment(t *testing.T) {
	_, out := compileOK(t, `
fun f(pair) {
	var a = 0;
	var b = 0;
	|a, b| = pair;
}`)
	require.Contains(t, out, "TUPLE_UNPACK")
}

func TestCoroutineDeclarationCompiles(t *testing.T) {
	_, out := compileOK(t, `
coroutine fun gen() {
	yield 1;
	yield 2;
}`)
	require.Contains(t, out, "YIELD")
	require.Contains(t, out, "CLOSURE")
}

func TestExplicitCoroutineExpr(t *testing.T) {
	_, out := compileOK(t, `
fun gen() { yield 1; }
var g = coroutine gen;`)
	require.Contains(t, out, "COROUTINE")
	require.NotContains(t, out, "CALL")
}

func TestYieldAtTopLevelIsCompileError(t *testing.T) {
	errs := compileErr(t, `yield 1;`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "yield")
}

func TestYieldInInitializerIsCompileError(t *testing.T) {
	errs := compileErr(t, `
class Box {
	fun init() { yield 1; }
}`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "yield")
}

func TestReturnAtTopLevelIsCompileError(t *testing.T) {
	errs := compileErr(t, `return 1;`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "return")
}

func TestReturnValueFromInitializerIsCompileError(t *testing.T) {
	errs := compileErr(t, `
class Box {
	fun init() { return 5; }
}`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "initializer")
}

func TestStringInterpolationBuildsString(t *testing.T) {
	_, out := compileOK(t, `
fun f(name) {
	print "hi ${name}!";
}`)
	require.Contains(t, out, "BUILD_STRING")
}

func TestElvisShortCircuits(t *testing.T) {
	_, out := compileOK(t, `
fun f(a, b) {
	return a ?: b;
}`)
	require.Contains(t, out, "JUMP_IF_NOT_NIL")
}

func TestRangeExprEmitsRange(t *testing.T) {
	_, out := compileOK(t, `var r = 1..10;`)
	require.Contains(t, out, "RANGE")
}

func TestImportDeclVariants(t *testing.T) {
	_, out := compileOK(t, `import "math";`)
	require.Contains(t, out, "IMPORT_MODULE")
	require.Contains(t, out, "SAVE_MODULE")

	_, out = compileOK(t, `import "math" as m;`)
	require.Contains(t, out, "IMPORT_BY_NAME")

	_, out = compileOK(t, `import "math" as *;`)
	require.Contains(t, out, "IMPORT_ALL")
}

func TestDuplicateLocalDeclarationIsCompileError(t *testing.T) {
	errs := compileErr(t, `
fun f() {
	var a = 1;
	var a = 2;
}`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "already declared")
}

func TestRecursiveLocalFunctionCanReferToItself(t *testing.T) {
	_, out := compileOK(t, `
fun outer() {
	fun fact(n) {
		if (n < 2) { return 1; }
		return n * fact(n - 1);
	}
	return fact;
}`)
	require.Contains(t, out, "CALL")
}
