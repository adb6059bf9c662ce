package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/compiler"
	"github.com/emberlang/ember/internal/lexer"
	"github.com/emberlang/ember/internal/parser"
	"github.com/emberlang/ember/internal/value"
)

// runSrc compiles and interprets src on a fresh VM, returning whatever
// it printed to stdout.
func runSrc(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.False(t, p.Failed(), "parse errors for %q: %v", src, p.Errors())
	fn, errs, ok := compiler.Compile(prog, value.NewModule("<test>", "<test>"))
	require.True(t, ok, "compile errors for %q: %v", src, errs)

	machine := New()
	var out bytes.Buffer
	machine.Stdout = &out
	require.NoError(t, machine.Interpret(fn))
	return out.String()
}

func TestArithmeticAndPrint(t *testing.T) {
	out := runSrc(t, `print 1 + 2 * 3;`)
	require.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out := runSrc(t, `print "foo" + "bar";`)
	require.Equal(t, "foobar\n", out)
}

func TestGlobalAndLocalVariables(t *testing.T) {
	out := runSrc(t, `
var x = 10;
fun addFive() {
	var y = 5;
	return x + y;
}
print addFive();`)
	require.Equal(t, "15\n", out)
}

func TestClosureCapturesUpvalue(t *testing.T) {
	out := runSrc(t, `
fun makeCounter() {
	var count = 0;
	fun increment() {
		count = count + 1;
		return count;
	}
	return increment;
}
var c = makeCounter();
print c();
print c();
print c();`)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestClassInstanceAndMethod(t *testing.T) {
	out := runSrc(t, `
class Greeter {
	fun init(name) {
		this.name = name;
	}
	fun greet() {
		print "hello, " + this.name;
	}
}
var g = Greeter("world");
g.greet();`)
	require.Equal(t, "hello, world\n", out)
}

func TestSingleInheritance(t *testing.T) {
	out := runSrc(t, `
class Animal {
	fun speak() {
		print "...";
	}
}
class Dog < Animal {
	fun speak() {
		super.speak();
		print "woof";
	}
}
Dog().speak();`)
	require.Equal(t, "...\nwoof\n", out)
}

func TestListIndexingAndIteration(t *testing.T) {
	out := runSrc(t, `
var xs = [1, 2, 3];
for (x in xs) {
	print x;
}
print xs[1];`)
	require.Equal(t, "1\n2\n3\n2\n", out)
}

func TestRangeIteration(t *testing.T) {
	out := runSrc(t, `
for (i in 0..3) {
	print i;
}`)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestMapGetAndSet(t *testing.T) {
	out := runSrc(t, `
var m = @{"a": 1, "b": 2};
m["c"] = 3;
print m["c"];`)
	require.Equal(t, "3\n", out)
}

func TestCoroutineYieldResume(t *testing.T) {
	out := runSrc(t, `
fun gen() {
	yield 1;
	yield 2;
}
var g = coroutine gen;
print g();
print g();`)
	require.Equal(t, "1\n2\n", out)
}

func TestCoroutineDeclaredFunctionBareCall(t *testing.T) {
	out := runSrc(t, `
coroutine fun gen() {
	yield 1;
	yield 2;
	yield 3;
}
var g = gen();
print g();
print g();
print g();`)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestSafeNavigationOnNil(t *testing.T) {
	out := runSrc(t, `
var x = nil;
print x?.y;`)
	require.Equal(t, "nil\n", out)
}

func TestTupleUnpacking(t *testing.T) {
	out := runSrc(t, `
var a;
var b;
|a, b| = (1, 2);
print a + b;`)
	require.Equal(t, "3\n", out)
}
