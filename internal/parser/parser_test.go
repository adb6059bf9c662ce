package parser

import (
	"testing"

	"github.com/emberlang/ember/internal/ast"
	"github.com/emberlang/ember/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if p.Failed() {
		t.Fatalf("parse errors for %q: %v", src, p.Errors())
	}
	return prog
}

func TestVarDecl(t *testing.T) {
	prog := parse(t, `var x = 1 + 2;`)
	if len(prog.Decls) != 1 {
		t.Fatalf("got %d decls", len(prog.Decls))
	}
	v, ok := prog.Decls[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("not a VarDecl: %T", prog.Decls[0])
	}
	if v.Name != "x" {
		t.Errorf("name = %q", v.Name)
	}
	bin, ok := v.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("value not BinaryExpr: %T", v.Value)
	}
	if bin.Op != "PLUS" {
		t.Errorf("op = %s", bin.Op)
	}
}

func TestFunctionDecl(t *testing.T) {
	prog := parse(t, `fun add(a, b) { return a + b; }`)
	fn, ok := prog.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("not a FunctionDecl: %T", prog.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v", fn)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("body len = %d", len(fn.Body))
	}
}

func TestClassDecl(t *testing.T) {
	prog := parse(t, `
class Animal {
	fun speak() { print "..."; }
}
class Dog < Animal {
	static fun create() { return Dog(); }
	fun speak() { print "Woof"; }
}
`)
	if len(prog.Decls) != 2 {
		t.Fatalf("got %d decls", len(prog.Decls))
	}
	dog, ok := prog.Decls[1].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("not ClassDecl: %T", prog.Decls[1])
	}
	if dog.Superclass == nil || dog.Superclass.Name != "Animal" {
		t.Fatalf("superclass = %+v", dog.Superclass)
	}
	if len(dog.Methods) != 1 || len(dog.StaticMethods) != 1 {
		t.Fatalf("methods=%d static=%d", len(dog.Methods), len(dog.StaticMethods))
	}
}

func TestIfElse(t *testing.T) {
	prog := parse(t, `if (a > b) { print a; } else { print b; }`)
	decl, ok := prog.Decls[0].(*ast.StmtDecl)
	if !ok {
		t.Fatalf("not StmtDecl: %T", prog.Decls[0])
	}
	ifs, ok := decl.Inner.(*ast.IfStmt)
	if !ok {
		t.Fatalf("not IfStmt: %T", decl.Inner)
	}
	if ifs.Else == nil {
		t.Fatal("expected else branch")
	}
}

func TestForInTuple(t *testing.T) {
	prog := parse(t, `for (var |k, v| in pairs) { print k; }`)
	decl := prog.Decls[0].(*ast.StmtDecl)
	fi, ok := decl.Inner.(*ast.ForInStmt)
	if !ok {
		t.Fatalf("not ForInStmt: %T", decl.Inner)
	}
	if len(fi.Targets) != 2 || fi.Targets[0] != "k" || fi.Targets[1] != "v" {
		t.Fatalf("targets = %v", fi.Targets)
	}
}

func TestGeneralFor(t *testing.T) {
	prog := parse(t, `for (var i = 0; i < 10; i++) { print i; }`)
	decl := prog.Decls[0].(*ast.StmtDecl)
	fs, ok := decl.Inner.(*ast.ForStmt)
	if !ok {
		t.Fatalf("not ForStmt: %T", decl.Inner)
	}
	if fs.Cond == nil || fs.Post == nil || fs.Init == nil {
		t.Fatalf("for stmt incomplete: %+v", fs)
	}
}

func TestWhenStmt(t *testing.T) {
	prog := parse(t, `
when (x) {
	case 1, 2 -> { print "small"; }
	default -> { print "other"; }
}
`)
	decl := prog.Decls[0].(*ast.StmtDecl)
	ws, ok := decl.Inner.(*ast.WhenStmt)
	if !ok {
		t.Fatalf("not WhenStmt: %T", decl.Inner)
	}
	if len(ws.Cases) != 1 || len(ws.Cases[0].Values) != 2 {
		t.Fatalf("cases = %+v", ws.Cases)
	}
	if ws.Else == nil {
		t.Fatal("expected default body")
	}
}

func TestTupleVsGrouping(t *testing.T) {
	prog := parse(t, `var a = (1); var b = (1, 2);`)
	a := prog.Decls[0].(*ast.VarDecl)
	if _, ok := a.Value.(*ast.Literal); !ok {
		t.Fatalf("expected grouping to collapse to literal, got %T", a.Value)
	}
	b := prog.Decls[1].(*ast.VarDecl)
	tup, ok := b.Value.(*ast.TupleExpr)
	if !ok || len(tup.Elements) != 2 {
		t.Fatalf("expected 2-tuple, got %+v", b.Value)
	}
}

func TestUnpackAssign(t *testing.T) {
	prog := parse(t, `var a; var b; |a, b| = pair;`)
	decl := prog.Decls[2].(*ast.StmtDecl)
	es := decl.Inner.(*ast.ExprStmt)
	ua, ok := es.X.(*ast.UnpackAssignExpr)
	if !ok {
		t.Fatalf("not UnpackAssignExpr: %T", es.X)
	}
	if len(ua.Targets) != 2 {
		t.Fatalf("targets = %+v", ua.Targets)
	}
}

func TestLambdaExprBody(t *testing.T) {
	prog := parse(t, `var f = \x, y -> x + y;`)
	v := prog.Decls[0].(*ast.VarDecl)
	lam, ok := v.Value.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("not LambdaExpr: %T", v.Value)
	}
	if len(lam.Params) != 2 || lam.ExprBody == nil {
		t.Fatalf("lambda = %+v", lam)
	}
}

func TestPropertyAndSafeSubscript(t *testing.T) {
	prog := parse(t, `var x = a?.b?[0];`)
	v := prog.Decls[0].(*ast.VarDecl)
	sub, ok := v.Value.(*ast.SubscriptExpr)
	if !ok || !sub.Safe {
		t.Fatalf("expected safe subscript, got %+v", v.Value)
	}
	prop, ok := sub.Object.(*ast.PropertyExpr)
	if !ok || !prop.Safe || prop.Name != "b" {
		t.Fatalf("expected safe property b, got %+v", sub.Object)
	}
}

func TestRangeAndConditional(t *testing.T) {
	prog := parse(t, `var r = 1..10:2; var c = x > 0 ? 1 : -1;`)
	r := prog.Decls[0].(*ast.VarDecl).Value.(*ast.RangeExpr)
	if r.Step == nil {
		t.Fatal("expected step")
	}
	c := prog.Decls[1].(*ast.VarDecl).Value.(*ast.ConditionalExpr)
	if c.Else == nil {
		t.Fatal("expected else branch of conditional")
	}
}

func TestCoroutineAndYield(t *testing.T) {
	prog := parse(t, `
coroutine fun gen() {
	yield 1;
	yield;
}
var g = coroutine gen();
`)
	fn := prog.Decls[0].(*ast.FunctionDecl)
	if !fn.IsCoroutine {
		t.Fatal("expected IsCoroutine")
	}
	v := prog.Decls[1].(*ast.VarDecl)
	if _, ok := v.Value.(*ast.CoroutineExpr); !ok {
		t.Fatalf("expected CoroutineExpr, got %T", v.Value)
	}
}

func TestStringInterpolationParses(t *testing.T) {
	prog := parse(t, `var s = "sum=${a + b}!";`)
	v := prog.Decls[0].(*ast.VarDecl)
	si, ok := v.Value.(*ast.StringInterpExpr)
	if !ok {
		t.Fatalf("not StringInterpExpr: %T", v.Value)
	}
	if len(si.Segments) != 3 {
		t.Fatalf("segments = %+v", si.Segments)
	}
}

func TestCompoundAssign(t *testing.T) {
	prog := parse(t, `x += 1;`)
	decl := prog.Decls[0].(*ast.StmtDecl)
	es := decl.Inner.(*ast.ExprStmt)
	ca, ok := es.X.(*ast.CompoundAssignExpr)
	if !ok {
		t.Fatalf("not CompoundAssignExpr: %T", es.X)
	}
	if ca.Op != "PLUS_EQUAL" {
		t.Errorf("op = %s", ca.Op)
	}
}

func TestSuperCall(t *testing.T) {
	prog := parse(t, `class A < B { fun f() { super.f(); } }`)
	cls := prog.Decls[0].(*ast.ClassDecl)
	body := cls.Methods[0].Body
	es := body[0].(*ast.StmtDecl).Inner.(*ast.ExprStmt)
	call := es.X.(*ast.CallExpr)
	if _, ok := call.Callee.(*ast.SuperExpr); !ok {
		t.Fatalf("callee not SuperExpr: %T", call.Callee)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	p := New(lexer.New(`var = ; var y = 1;`))
	prog := p.ParseProgram()
	if !p.Failed() {
		t.Fatal("expected parse failure")
	}
	if len(prog.Decls) == 0 {
		t.Fatal("expected recovery to keep parsing after the error")
	}
}
