// Package token defines the lexical tokens produced by the Ember lexer.
package token

import "fmt"

type Type string

const (
	// Literals.
	INT    Type = "INT"
	FLOAT  Type = "FLOAT"
	STRING Type = "STRING"
	IDENT  Type = "IDENT"

	// String interpolation segments (spec.md §4.1): a plain string emits a
	// single STRING token; an interpolated one emits BEGIN, zero or more
	// INTERP segments (each followed by the spliced expression's tokens),
	// and a closing END segment.
	STRING_INTERP_BEGIN Type = "STRING_INTERP_BEGIN"
	STRING_INTERP       Type = "STRING_INTERP"
	STRING_INTERP_END   Type = "STRING_INTERP_END"

	// Keywords (spec.md §6).
	AND       Type = "AND"
	OR        Type = "OR"
	CLASS     Type = "CLASS"
	STATIC    Type = "STATIC"
	FUN       Type = "FUN"
	VAR       Type = "VAR"
	IF        Type = "IF"
	ELSE      Type = "ELSE"
	FOR       Type = "FOR"
	IN        Type = "IN"
	WHEN      Type = "WHEN"
	CASE      Type = "CASE"
	DEFAULT   Type = "DEFAULT"
	BREAK     Type = "BREAK"
	CONTINUE  Type = "CONTINUE"
	RETURN    Type = "RETURN"
	COROUTINE Type = "COROUTINE"
	YIELD     Type = "YIELD"
	IMPORT    Type = "IMPORT"
	AS        Type = "AS"
	PRINT     Type = "PRINT"
	THIS      Type = "THIS"
	SUPER     Type = "SUPER"
	TRUE      Type = "TRUE"
	FALSE     Type = "FALSE"
	NIL       Type = "NIL"
	DO        Type = "DO"
	WHILE     Type = "WHILE"

	// Operators & punctuation.
	PLUS            Type = "PLUS"
	MINUS           Type = "MINUS"
	STAR            Type = "STAR"
	SLASH           Type = "SLASH"
	PERCENT         Type = "PERCENT"
	STAR_STAR       Type = "STAR_STAR"
	PLUS_EQUAL      Type = "PLUS_EQUAL"
	MINUS_EQUAL     Type = "MINUS_EQUAL"
	STAR_EQUAL      Type = "STAR_EQUAL"
	SLASH_EQUAL     Type = "SLASH_EQUAL"
	PERCENT_EQUAL   Type = "PERCENT_EQUAL"
	STAR_STAR_EQUAL Type = "STAR_STAR_EQUAL"
	AMP_EQUAL       Type = "AMP_EQUAL"
	PIPE_EQUAL      Type = "PIPE_EQUAL"
	CARET_EQUAL     Type = "CARET_EQUAL"
	LSHIFT_EQUAL    Type = "LSHIFT_EQUAL"
	RSHIFT_EQUAL    Type = "RSHIFT_EQUAL"
	EQUAL           Type = "EQUAL"
	EQUAL_EQUAL     Type = "EQUAL_EQUAL"
	BANG            Type = "BANG"
	BANG_EQUAL      Type = "BANG_EQUAL"
	LESS            Type = "LESS"
	LESS_EQUAL      Type = "LESS_EQUAL"
	GREATER         Type = "GREATER"
	GREATER_EQUAL   Type = "GREATER_EQUAL"
	TILDE           Type = "TILDE"
	AMP             Type = "AMP"
	PIPE            Type = "PIPE"
	CARET           Type = "CARET"
	LSHIFT          Type = "LSHIFT"
	RSHIFT          Type = "RSHIFT"
	PLUS_PLUS       Type = "PLUS_PLUS"
	MINUS_MINUS     Type = "MINUS_MINUS"
	DOT             Type = "DOT"
	DOT_DOT         Type = "DOT_DOT"
	COLON           Type = "COLON"
	QUESTION        Type = "QUESTION"
	QUESTION_DOT    Type = "QUESTION_DOT"
	QUESTION_LBRACKET Type = "QUESTION_LBRACKET"
	QUESTION_COLON  Type = "QUESTION_COLON"
	BACKSLASH       Type = "BACKSLASH"
	ARROW           Type = "ARROW"

	LPAREN    Type = "LPAREN"
	RPAREN    Type = "RPAREN"
	LBRACE    Type = "LBRACE"
	RBRACE    Type = "RBRACE"
	LBRACKET  Type = "LBRACKET"
	RBRACKET  Type = "RBRACKET"
	AT_LBRACE Type = "AT_LBRACE"
	COMMA     Type = "COMMA"
	SEMICOLON Type = "SEMICOLON"
	BAR       Type = "BAR"

	NEWLINE Type = "NEWLINE"
	EOF     Type = "EOF"
	ILLEGAL Type = "ILLEGAL"
)

var keywords = map[string]Type{
	"and":       AND,
	"or":        OR,
	"class":     CLASS,
	"static":    STATIC,
	"fun":       FUN,
	"var":       VAR,
	"if":        IF,
	"else":      ELSE,
	"for":       FOR,
	"in":        IN,
	"when":      WHEN,
	"case":      CASE,
	"default":   DEFAULT,
	"break":     BREAK,
	"continue":  CONTINUE,
	"return":    RETURN,
	"coroutine": COROUTINE,
	"yield":     YIELD,
	"import":    IMPORT,
	"as":        AS,
	"print":     PRINT,
	"this":      THIS,
	"super":     SUPER,
	"true":      TRUE,
	"false":     FALSE,
	"nil":       NIL,
	"do":        DO,
	"while":     WHILE,
}

// LookupIdent classifies ident as a keyword token type, or IDENT otherwise.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

type Token struct {
	Type    Type
	Literal string
	Line    int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, line %d)", t.Type, t.Literal, t.Line)
}
