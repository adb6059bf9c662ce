package lexer

import (
	"testing"

	"github.com/emberlang/ember/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func assertTypes(t *testing.T, src string, want []token.Type) {
	t.Helper()
	toks := collect(src)
	if len(toks) != len(want) {
		t.Fatalf("%q: got %d tokens %v, want %d types %v", src, len(toks), toks, len(want), want)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("%q: token %d = %s, want %s", src, i, toks[i].Type, tt)
		}
	}
}

func TestOperators(t *testing.T) {
	assertTypes(t, "+ - * / % ** += -= **=", []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.STAR_STAR, token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_STAR_EQUAL,
		token.EOF,
	})
}

func TestSafeNavigation(t *testing.T) {
	assertTypes(t, "a?.b?[0]?:c", []token.Type{
		token.IDENT, token.QUESTION_DOT, token.IDENT, token.QUESTION_LBRACKET,
		token.INT, token.RBRACKET, token.QUESTION_COLON, token.IDENT, token.EOF,
	})
}

func TestKeywords(t *testing.T) {
	assertTypes(t, "class fun var coroutine yield", []token.Type{
		token.CLASS, token.FUN, token.VAR, token.COROUTINE, token.YIELD, token.EOF,
	})
}

func TestPlainString(t *testing.T) {
	toks := collect(`"hello world"`)
	if len(toks) != 2 || toks[0].Type != token.STRING || toks[0].Literal != "hello world" {
		t.Fatalf("got %v", toks)
	}
}

func TestInterpolatedSimple(t *testing.T) {
	toks := collect(`"n=$n!"`)
	want := []token.Type{token.STRING_INTERP_BEGIN, token.IDENT, token.STRING_INTERP_END, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens: %v", len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d = %s, want %s", i, toks[i].Type, tt)
		}
	}
	if toks[0].Literal != "n=" {
		t.Errorf("prefix literal = %q", toks[0].Literal)
	}
	if toks[1].Literal != "n" {
		t.Errorf("ident literal = %q", toks[1].Literal)
	}
	if toks[2].Literal != "!" {
		t.Errorf("suffix literal = %q", toks[2].Literal)
	}
}

func TestInterpolatedBlock(t *testing.T) {
	toks := collect(`"sum=${a + b}."`)
	want := []token.Type{
		token.STRING_INTERP_BEGIN, token.IDENT, token.PLUS, token.IDENT,
		token.STRING_INTERP_END, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens: %v", len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d = %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestEscapes(t *testing.T) {
	toks := collect(`"a\tb\n\"c\""`)
	if toks[0].Type != token.STRING {
		t.Fatalf("got %v", toks)
	}
	want := "a\tb\n\"c\""
	if toks[0].Literal != want {
		t.Errorf("literal = %q, want %q", toks[0].Literal, want)
	}
}

func TestLineTracking(t *testing.T) {
	toks := collect("var a\nvar b")
	if toks[0].Line != 1 {
		t.Errorf("first line = %d", toks[0].Line)
	}
	// find second "var"
	for i, tok := range toks {
		if i > 0 && tok.Type == token.VAR && tok.Line != 2 {
			t.Errorf("second var line = %d", tok.Line)
		}
	}
}

func TestComments(t *testing.T) {
	assertTypes(t, "var a // comment\nvar /* block */ b", []token.Type{
		token.VAR, token.IDENT, token.VAR, token.IDENT, token.EOF,
	})
}
