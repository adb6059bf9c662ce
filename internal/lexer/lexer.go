// Package lexer turns Ember source text into a stream of tokens.
//
// Shaped after the teacher's hand-written char-at-a-time scanner
// (estevaofon-noxy/internal/lexer), generalised with a small internal
// token queue so that string interpolation (spec.md §4.1) can splice a
// sub-expression's own token stream into the middle of a string literal
// without the parser needing to know anything about it.
package lexer

import (
	"strings"

	"github.com/emberlang/ember/internal/token"
)

type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int

	// queue holds tokens already scanned but not yet returned by
	// NextToken — populated while unwinding a string literal that
	// contains one or more interpolation splices.
	queue []token.Token
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken drains the interpolation queue before scanning fresh input.
func (l *Lexer) NextToken() token.Token {
	if len(l.queue) > 0 {
		t := l.queue[0]
		l.queue = l.queue[1:]
		return t
	}
	return l.scanOne()
}

func (l *Lexer) scanOne() token.Token {
	l.skipWhitespaceAndComments()

	line := l.line
	var tok token.Token

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Literal: "", Line: line}
	case l.ch == '"':
		return l.scanString()
	case isDigit(l.ch):
		return l.scanNumber()
	case isIdentStart(l.ch):
		return l.scanIdentifier()
	}

	switch l.ch {
	case '+':
		if l.peekChar() == '+' {
			tok = l.two(token.PLUS_PLUS)
		} else if l.peekChar() == '=' {
			tok = l.two(token.PLUS_EQUAL)
		} else {
			tok = l.one(token.PLUS)
		}
	case '-':
		if l.peekChar() == '-' {
			tok = l.two(token.MINUS_MINUS)
		} else if l.peekChar() == '=' {
			tok = l.two(token.MINUS_EQUAL)
		} else if l.peekChar() == '>' {
			tok = l.two(token.ARROW)
		} else {
			tok = l.one(token.MINUS)
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			if l.peekChar() == '=' {
				tok = token.Token{Type: token.STAR_STAR_EQUAL, Literal: "**=", Line: line}
				l.readChar()
			} else {
				tok = token.Token{Type: token.STAR_STAR, Literal: "**", Line: line}
			}
			l.readChar()
		} else if l.peekChar() == '=' {
			tok = l.two(token.STAR_EQUAL)
		} else {
			tok = l.one(token.STAR)
		}
	case '/':
		if l.peekChar() == '=' {
			tok = l.two(token.SLASH_EQUAL)
		} else {
			tok = l.one(token.SLASH)
		}
	case '%':
		if l.peekChar() == '=' {
			tok = l.two(token.PERCENT_EQUAL)
		} else {
			tok = l.one(token.PERCENT)
		}
	case '=':
		if l.peekChar() == '=' {
			tok = l.two(token.EQUAL_EQUAL)
		} else {
			tok = l.one(token.EQUAL)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.two(token.BANG_EQUAL)
		} else {
			tok = l.one(token.BANG)
		}
	case '<':
		if l.peekChar() == '=' {
			tok = l.two(token.LESS_EQUAL)
		} else if l.peekChar() == '<' {
			l.readChar()
			if l.peekChar() == '=' {
				tok = token.Token{Type: token.LSHIFT_EQUAL, Literal: "<<=", Line: line}
				l.readChar()
			} else {
				tok = token.Token{Type: token.LSHIFT, Literal: "<<", Line: line}
			}
			l.readChar()
		} else {
			tok = l.one(token.LESS)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.two(token.GREATER_EQUAL)
		} else if l.peekChar() == '>' {
			l.readChar()
			if l.peekChar() == '=' {
				tok = token.Token{Type: token.RSHIFT_EQUAL, Literal: ">>=", Line: line}
				l.readChar()
			} else {
				tok = token.Token{Type: token.RSHIFT, Literal: ">>", Line: line}
			}
			l.readChar()
		} else {
			tok = l.one(token.GREATER)
		}
	case '~':
		tok = l.one(token.TILDE)
	case '&':
		if l.peekChar() == '=' {
			tok = l.two(token.AMP_EQUAL)
		} else {
			tok = l.one(token.AMP)
		}
	case '^':
		if l.peekChar() == '=' {
			tok = l.two(token.CARET_EQUAL)
		} else {
			tok = l.one(token.CARET)
		}
	case '|':
		if l.peekChar() == '=' {
			tok = l.two(token.PIPE_EQUAL)
		} else {
			tok = l.one(token.BAR)
		}
	case '.':
		if l.peekChar() == '.' {
			tok = l.two(token.DOT_DOT)
		} else {
			tok = l.one(token.DOT)
		}
	case ':':
		tok = l.one(token.COLON)
	case '?':
		if l.peekChar() == '.' {
			tok = l.two(token.QUESTION_DOT)
		} else if l.peekChar() == '[' {
			tok = l.two(token.QUESTION_LBRACKET)
		} else if l.peekChar() == ':' {
			tok = l.two(token.QUESTION_COLON)
		} else {
			tok = l.one(token.QUESTION)
		}
	case '\\':
		tok = l.one(token.BACKSLASH)
	case '(':
		tok = l.one(token.LPAREN)
	case ')':
		tok = l.one(token.RPAREN)
	case '{':
		tok = l.one(token.LBRACE)
	case '}':
		tok = l.one(token.RBRACE)
	case '[':
		tok = l.one(token.LBRACKET)
	case ']':
		tok = l.one(token.RBRACKET)
	case ',':
		tok = l.one(token.COMMA)
	case ';':
		tok = l.one(token.SEMICOLON)
	case '@':
		if l.peekChar() == '{' {
			tok = l.two(token.AT_LBRACE)
		} else {
			tok = token.Token{Type: token.ILLEGAL, Literal: "unexpected '@'", Line: line}
			l.readChar()
		}
	case '\n':
		l.line++
		l.readChar()
		return l.scanOne()
	default:
		tok = token.Token{Type: token.ILLEGAL, Literal: string(l.ch), Line: line}
		l.readChar()
	}

	return tok
}

func (l *Lexer) one(t token.Type) token.Token {
	lit := string(l.ch)
	tok := token.Token{Type: t, Literal: lit, Line: l.line}
	l.readChar()
	return tok
}

func (l *Lexer) two(t token.Type) token.Token {
	first := l.ch
	l.readChar()
	lit := string(first) + string(l.ch)
	tok := token.Token{Type: t, Literal: lit, Line: l.line}
	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.line++
			l.readChar()
		case '/':
			if l.peekChar() == '/' {
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
			} else if l.peekChar() == '*' {
				l.readChar()
				l.readChar()
				for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
					if l.ch == '\n' {
						l.line++
					}
					l.readChar()
				}
				if l.ch != 0 {
					l.readChar()
					l.readChar()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func isDigit(ch byte) bool      { return ch >= '0' && ch <= '9' }
func isIdentStart(ch byte) bool { return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isIdentPart(ch byte) bool  { return isIdentStart(ch) || isDigit(ch) }

func (l *Lexer) scanNumber() token.Token {
	line := l.line
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lit := l.input[start:l.position]
	typ := token.INT
	if isFloat {
		typ = token.FLOAT
	}
	return token.Token{Type: typ, Literal: lit, Line: line}
}

func (l *Lexer) scanIdentifier() token.Token {
	line := l.line
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	return token.Token{Type: token.LookupIdent(lit), Literal: lit, Line: line}
}

// scanString scans a whole string literal (possibly containing one or more
// `$name` / `${expr}` interpolation splices), returning the first token and
// queueing the rest. See the package doc for the approach.
func (l *Lexer) scanString() token.Token {
	line := l.line
	l.readChar() // consume opening quote

	var buf strings.Builder
	var segments []token.Token
	interpolated := false

	for {
		switch l.ch {
		case 0:
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Line: line}
		case '"':
			l.readChar()
			kind := token.STRING
			if interpolated {
				kind = token.STRING_INTERP_END
			}
			segments = append(segments, token.Token{Type: kind, Literal: buf.String(), Line: line})
			return l.flush(segments)
		case '\\':
			l.readChar()
			buf.WriteByte(l.escape())
		case '$':
			kind := token.STRING_INTERP_BEGIN
			if interpolated {
				kind = token.STRING_INTERP
			}
			interpolated = true
			segments = append(segments, token.Token{Type: kind, Literal: buf.String(), Line: l.line})
			buf.Reset()
			l.readChar() // consume '$'
			if l.ch == '{' {
				l.readChar() // consume '{'
				segments = append(segments, l.scanSpliceBlock()...)
			} else {
				segments = append(segments, l.scanIdentifier())
			}
		default:
			if l.ch == '\n' {
				l.line++
			}
			buf.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// scanSpliceBlock scans the tokens of a `${ ... }` splice, stopping at (and
// consuming) its matching closing brace.
func (l *Lexer) scanSpliceBlock() []token.Token {
	var out []token.Token
	depth := 0
	for {
		tok := l.scanOne()
		switch tok.Type {
		case token.LBRACE, token.AT_LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return out
			}
			depth--
		case token.EOF:
			return out
		}
		out = append(out, tok)
	}
}

func (l *Lexer) flush(segments []token.Token) token.Token {
	if len(segments) == 0 {
		return token.Token{Type: token.ILLEGAL, Literal: "empty string scan", Line: l.line}
	}
	if len(segments) > 1 {
		l.queue = append(segments[1:], l.queue...)
	}
	return segments[0]
}

func (l *Lexer) escape() byte {
	ch := l.ch
	l.readChar()
	switch ch {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	case '$':
		return '$'
	default:
		return ch
	}
}
