// Package parser is a Pratt-expression / recursive-descent-statement parser
// producing the internal/ast tree, shaped after the teacher's
// estevaofon-noxy/internal/parser (registerPrefix/registerInfix tables,
// precedence climbing via curPrecedence/peekPrecedence).
package parser

import (
	"fmt"

	"github.com/emberlang/ember/internal/ast"
	"github.com/emberlang/ember/internal/lexer"
	"github.com/emberlang/ember/internal/token"
)

// Precedence levels, low to high (spec.md §4.2).
const (
	PrecNone = iota
	PrecAssignment
	PrecRange
	PrecConditional
	PrecOr
	PrecAnd
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecEquality
	PrecRelational
	PrecShift
	PrecAdditive
	PrecMultiplicative
	PrecExponent
	PrecUnary
	PrecPostfix
	PrecPrimary
)

var precedences = map[token.Type]int{
	token.EQUAL:           PrecAssignment,
	token.PLUS_EQUAL:      PrecAssignment,
	token.MINUS_EQUAL:     PrecAssignment,
	token.STAR_EQUAL:      PrecAssignment,
	token.SLASH_EQUAL:     PrecAssignment,
	token.PERCENT_EQUAL:   PrecAssignment,
	token.STAR_STAR_EQUAL: PrecAssignment,
	token.AMP_EQUAL:       PrecAssignment,
	token.PIPE_EQUAL:      PrecAssignment,
	token.CARET_EQUAL:     PrecAssignment,
	token.LSHIFT_EQUAL:    PrecAssignment,
	token.RSHIFT_EQUAL:    PrecAssignment,
	token.DOT_DOT:         PrecRange,
	token.QUESTION:        PrecConditional,
	token.QUESTION_COLON:  PrecConditional,
	token.OR:              PrecOr,
	token.AND:             PrecAnd,
	token.BAR:             PrecBitOr,
	token.CARET:           PrecBitXor,
	token.AMP:             PrecBitAnd,
	token.EQUAL_EQUAL:     PrecEquality,
	token.BANG_EQUAL:      PrecEquality,
	token.LESS:            PrecRelational,
	token.LESS_EQUAL:      PrecRelational,
	token.GREATER:         PrecRelational,
	token.GREATER_EQUAL:   PrecRelational,
	token.LSHIFT:          PrecShift,
	token.RSHIFT:          PrecShift,
	token.PLUS:            PrecAdditive,
	token.MINUS:           PrecAdditive,
	token.STAR:            PrecMultiplicative,
	token.SLASH:           PrecMultiplicative,
	token.PERCENT:         PrecMultiplicative,
	token.STAR_STAR:       PrecExponent,
	token.PLUS_PLUS:       PrecPostfix,
	token.MINUS_MINUS:     PrecPostfix,
	token.DOT:             PrecPostfix,
	token.QUESTION_DOT:    PrecPostfix,
	token.LBRACKET:        PrecPostfix,
	token.QUESTION_LBRACKET: PrecPostfix,
	token.LPAREN:          PrecPostfix,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// statementStarters are the tokens synchronize() treats as resumption
// points after a parse error (spec.md §4.2 panic mode).
var statementStarters = map[token.Type]bool{
	token.CLASS: true, token.FUN: true, token.VAR: true, token.FOR: true,
	token.IF: true, token.WHILE: true, token.DO: true, token.PRINT: true,
	token.RETURN: true, token.WHEN: true, token.BREAK: true,
	token.CONTINUE: true, token.IMPORT: true, token.COROUTINE: true,
}

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors    []string
	panicMode bool
	failed    bool

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()

	p.prefixFns = map[token.Type]prefixParseFn{}
	p.infixFns = map[token.Type]infixParseFn{}

	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseNumber)
	p.registerPrefix(token.FLOAT, p.parseNumber)
	p.registerPrefix(token.TRUE, p.parseBool)
	p.registerPrefix(token.FALSE, p.parseBool)
	p.registerPrefix(token.NIL, p.parseNil)
	p.registerPrefix(token.THIS, p.parseThis)
	p.registerPrefix(token.SUPER, p.parseSuper)
	p.registerPrefix(token.STRING, p.parsePlainString)
	p.registerPrefix(token.STRING_INTERP_BEGIN, p.parseInterpString)
	p.registerPrefix(token.BANG, p.parseUnary)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.TILDE, p.parseUnary)
	p.registerPrefix(token.PLUS_PLUS, p.parsePrefixInc)
	p.registerPrefix(token.MINUS_MINUS, p.parsePrefixInc)
	p.registerPrefix(token.LPAREN, p.parseGroupOrTuple)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.AT_LBRACE, p.parseMapLiteral)
	p.registerPrefix(token.BACKSLASH, p.parseLambda)
	p.registerPrefix(token.BAR, p.parseUnpackAssign)
	p.registerPrefix(token.COROUTINE, p.parseCoroutineExpr)
	p.registerPrefix(token.YIELD, p.parseYield)

	p.registerInfix(token.PLUS, p.parseBinary)
	p.registerInfix(token.MINUS, p.parseBinary)
	p.registerInfix(token.STAR, p.parseBinary)
	p.registerInfix(token.SLASH, p.parseBinary)
	p.registerInfix(token.PERCENT, p.parseBinary)
	p.registerInfix(token.STAR_STAR, p.parseExponent)
	p.registerInfix(token.EQUAL_EQUAL, p.parseBinary)
	p.registerInfix(token.BANG_EQUAL, p.parseBinary)
	p.registerInfix(token.LESS, p.parseBinary)
	p.registerInfix(token.LESS_EQUAL, p.parseBinary)
	p.registerInfix(token.GREATER, p.parseBinary)
	p.registerInfix(token.GREATER_EQUAL, p.parseBinary)
	p.registerInfix(token.LSHIFT, p.parseBinary)
	p.registerInfix(token.RSHIFT, p.parseBinary)
	p.registerInfix(token.AMP, p.parseBinary)
	p.registerInfix(token.BAR, p.parseBinary)
	p.registerInfix(token.CARET, p.parseBinary)
	p.registerInfix(token.AND, p.parseLogical)
	p.registerInfix(token.OR, p.parseLogical)
	p.registerInfix(token.DOT_DOT, p.parseRange)
	p.registerInfix(token.QUESTION, p.parseConditional)
	p.registerInfix(token.QUESTION_COLON, p.parseElvis)
	p.registerInfix(token.DOT, p.parseProperty)
	p.registerInfix(token.QUESTION_DOT, p.parseProperty)
	p.registerInfix(token.LBRACKET, p.parseSubscript)
	p.registerInfix(token.QUESTION_LBRACKET, p.parseSubscript)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.PLUS_PLUS, p.parsePostfixInc)
	p.registerInfix(token.MINUS_MINUS, p.parsePostfixInc)
	for _, t := range []token.Type{
		token.EQUAL, token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL,
		token.SLASH_EQUAL, token.PERCENT_EQUAL, token.STAR_STAR_EQUAL,
		token.AMP_EQUAL, token.PIPE_EQUAL, token.CARET_EQUAL,
		token.LSHIFT_EQUAL, token.RSHIFT_EQUAL,
	} {
		p.registerInfix(t, p.parseAssign)
	}

	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixFns[t] = fn }

func (p *Parser) Errors() []string { return p.errors }
func (p *Parser) Failed() bool     { return p.failed }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.peekToken.Type)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.failed = true
	msg := fmt.Sprintf("[line %d] "+format, append([]interface{}{p.curToken.Line}, args...)...)
	p.errors = append(p.errors, msg)
}

func (p *Parser) synchronize() {
	p.panicMode = false
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			return
		}
		if p.curTokenIs(token.RBRACE) {
			return
		}
		if statementStarters[p.peekToken.Type] {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return PrecNone
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return PrecNone
}

// ParseProgram parses the whole token stream into a Program. It never
// returns nil; on error it has recorded diagnostics accessible via
// Errors()/Failed() and still produced the best-effort tree it could.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		decl := p.parseDeclaration()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		if p.panicMode {
			p.synchronize()
			continue
		}
		p.nextToken()
	}
	return prog
}

// ---- declarations ----

func (p *Parser) parseDeclaration() ast.Decl {
	switch p.curToken.Type {
	case token.IMPORT:
		return p.parseImportDecl()
	case token.CLASS:
		return p.parseClassDecl()
	case token.VAR:
		return p.parseVarDecl()
	case token.COROUTINE:
		if p.peekTokenIs(token.FUN) {
			p.nextToken()
			return p.parseFunctionDecl(true)
		}
		return &ast.StmtDecl{Inner: p.parseStatement()}
	case token.FUN:
		return p.parseFunctionDecl(false)
	default:
		return &ast.StmtDecl{Inner: p.parseStatement()}
	}
}

func (p *Parser) parseImportDecl() ast.Decl {
	line := p.curToken.Line
	if !p.expectPeek(token.STRING) {
		return &ast.ImportDecl{Line: line}
	}
	path := p.curToken.Literal
	alias := ""
	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if p.peekTokenIs(token.STAR) {
			p.nextToken()
			alias = "*"
		} else if p.expectPeek(token.IDENT) {
			alias = p.curToken.Literal
		}
	}
	p.expectPeek(token.SEMICOLON)
	return &ast.ImportDecl{Line: line, Path: path, Alias: alias}
}

func (p *Parser) parseVarDecl() ast.Decl {
	line := p.curToken.Line
	if !p.expectPeek(token.IDENT) {
		return &ast.VarDecl{Line: line}
	}
	name := p.curToken.Literal
	var value ast.Expr
	if p.peekTokenIs(token.EQUAL) {
		p.nextToken()
		p.nextToken()
		value = p.parseExpression(PrecAssignment)
	}
	p.expectPeek(token.SEMICOLON)
	return &ast.VarDecl{Line: line, Name: name, Value: value}
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, ast.Param{Name: p.curToken.Literal})
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, ast.Param{Name: p.curToken.Literal})
	}
	p.expectPeek(token.RPAREN)
	return params
}

// parseFunctionDecl assumes p.curToken == FUN.
func (p *Parser) parseFunctionDecl(isCoroutine bool) *ast.FunctionDecl {
	line := p.curToken.Line
	if !p.expectPeek(token.IDENT) {
		return &ast.FunctionDecl{Line: line}
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.LPAREN) {
		return &ast.FunctionDecl{Line: line, Name: name}
	}
	params := p.parseParamList()
	if !p.expectPeek(token.LBRACE) {
		return &ast.FunctionDecl{Line: line, Name: name, Params: params}
	}
	body := p.parseBlockDecls()
	return &ast.FunctionDecl{Line: line, Name: name, Params: params, Body: body, IsCoroutine: isCoroutine}
}

func (p *Parser) parseClassDecl() ast.Decl {
	line := p.curToken.Line
	if !p.expectPeek(token.IDENT) {
		return &ast.ClassDecl{Line: line}
	}
	name := p.curToken.Literal
	var super *ast.Identifier
	if p.peekTokenIs(token.LESS) {
		p.nextToken()
		if p.expectPeek(token.IDENT) {
			super = &ast.Identifier{Line: p.curToken.Line, Name: p.curToken.Literal, Ctx: ast.Load}
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return &ast.ClassDecl{Line: line, Name: name, Superclass: super}
	}
	p.nextToken()
	var methods, staticMethods []*ast.FunctionDecl
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		isStatic := false
		isCoro := false
		if p.curTokenIs(token.STATIC) {
			isStatic = true
			p.nextToken()
		}
		if p.curTokenIs(token.COROUTINE) {
			isCoro = true
			p.nextToken()
		}
		if !p.curTokenIs(token.FUN) {
			p.errorf("expected method declaration in class body, got %s", p.curToken.Type)
			p.nextToken()
			continue
		}
		m := p.parseFunctionDecl(isCoro)
		m.IsMethod = true
		m.IsStatic = isStatic
		if isStatic {
			staticMethods = append(staticMethods, m)
		} else {
			methods = append(methods, m)
		}
		p.nextToken()
	}
	return &ast.ClassDecl{Line: line, Name: name, Superclass: super, Methods: methods, StaticMethods: staticMethods}
}

// parseBlockDecls assumes p.curToken == LBRACE and ends with p.curToken == RBRACE.
func (p *Parser) parseBlockDecls() []ast.Decl {
	var decls []ast.Decl
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		decl := p.parseDeclaration()
		decls = append(decls, decl)
		if p.panicMode {
			p.synchronize()
			continue
		}
		p.nextToken()
	}
	return decls
}

// ---- statements ----

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlockStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.DO:
		return p.parseDoWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.BREAK:
		line := p.curToken.Line
		p.expectPeek(token.SEMICOLON)
		return &ast.BreakStmt{Line: line}
	case token.CONTINUE:
		line := p.curToken.Line
		p.expectPeek(token.SEMICOLON)
		return &ast.ContinueStmt{Line: line}
	case token.WHEN:
		return p.parseWhenStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.PRINT:
		return p.parsePrintStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlockStmt() ast.Stmt {
	line := p.curToken.Line
	decls := p.parseBlockDecls()
	return &ast.BlockStmt{Line: line, Decls: decls}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	line := p.curToken.Line
	expr := p.parseExpression(PrecAssignment)
	p.expectPeek(token.SEMICOLON)
	return &ast.ExprStmt{Line: line, X: expr}
}

func (p *Parser) parsePrintStmt() ast.Stmt {
	line := p.curToken.Line
	p.nextToken()
	val := p.parseExpression(PrecAssignment)
	p.expectPeek(token.SEMICOLON)
	return &ast.PrintStmt{Line: line, Value: val}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	line := p.curToken.Line
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return &ast.ReturnStmt{Line: line}
	}
	p.nextToken()
	val := p.parseExpression(PrecAssignment)
	p.expectPeek(token.SEMICOLON)
	return &ast.ReturnStmt{Line: line, Value: val}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	line := p.curToken.Line
	if !p.expectPeek(token.LPAREN) {
		return &ast.IfStmt{Line: line}
	}
	p.nextToken()
	cond := p.parseExpression(PrecAssignment)
	if !p.expectPeek(token.RPAREN) {
		return &ast.IfStmt{Line: line, Cond: cond}
	}
	p.nextToken()
	then := p.parseStatement()
	var els ast.Stmt
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		els = p.parseStatement()
	}
	return &ast.IfStmt{Line: line, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	line := p.curToken.Line
	if !p.expectPeek(token.LPAREN) {
		return &ast.WhileStmt{Line: line}
	}
	p.nextToken()
	cond := p.parseExpression(PrecAssignment)
	if !p.expectPeek(token.RPAREN) {
		return &ast.WhileStmt{Line: line, Cond: cond}
	}
	p.nextToken()
	body := p.parseStatement()
	return &ast.WhileStmt{Line: line, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhileStmt() ast.Stmt {
	line := p.curToken.Line
	p.nextToken()
	body := p.parseStatement()
	if !p.expectPeek(token.WHILE) {
		return &ast.DoWhileStmt{Line: line, Body: body}
	}
	if !p.expectPeek(token.LPAREN) {
		return &ast.DoWhileStmt{Line: line, Body: body}
	}
	p.nextToken()
	cond := p.parseExpression(PrecAssignment)
	p.expectPeek(token.RPAREN)
	p.expectPeek(token.SEMICOLON)
	return &ast.DoWhileStmt{Line: line, Body: body, Cond: cond}
}

func (p *Parser) parseForStmt() ast.Stmt {
	line := p.curToken.Line
	if !p.expectPeek(token.LPAREN) {
		return &ast.ForStmt{Line: line}
	}

	var initDecl ast.Decl

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken() // cur = ';'
	} else {
		p.nextToken() // move to first token of init clause
		if p.curTokenIs(token.VAR) {
			p.nextToken() // move past 'var'
			if p.curTokenIs(token.BAR) {
				var names []string
				p.nextToken()
				names = append(names, p.curToken.Literal)
				for p.peekTokenIs(token.COMMA) {
					p.nextToken()
					p.nextToken()
					names = append(names, p.curToken.Literal)
				}
				p.expectPeek(token.BAR)
				p.expectPeek(token.IN)
				p.nextToken()
				collection := p.parseExpression(PrecAssignment)
				p.expectPeek(token.RPAREN)
				p.nextToken()
				body := p.parseStatement()
				return &ast.ForInStmt{Line: line, Targets: names, Collection: collection, Body: body}
			}
			name := p.curToken.Literal
			if p.peekTokenIs(token.IN) {
				p.nextToken()
				p.nextToken()
				collection := p.parseExpression(PrecAssignment)
				p.expectPeek(token.RPAREN)
				p.nextToken()
				body := p.parseStatement()
				return &ast.ForInStmt{Line: line, Targets: []string{name}, Collection: collection, Body: body}
			}
			var val ast.Expr
			if p.peekTokenIs(token.EQUAL) {
				p.nextToken()
				p.nextToken()
				val = p.parseExpression(PrecAssignment)
			}
			p.expectPeek(token.SEMICOLON)
			initDecl = &ast.VarDecl{Line: line, Name: name, Value: val}
		} else {
			expr := p.parseExpression(PrecAssignment)
			p.expectPeek(token.SEMICOLON)
			initDecl = &ast.StmtDecl{Inner: &ast.ExprStmt{Line: line, X: expr}}
		}
	}

	var cond ast.Expr
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		cond = p.parseExpression(PrecAssignment)
	}
	p.expectPeek(token.SEMICOLON)

	var post ast.Expr
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		post = p.parseExpression(PrecAssignment)
	}
	p.expectPeek(token.RPAREN)

	p.nextToken()
	body := p.parseStatement()
	return &ast.ForStmt{Line: line, Init: initDecl, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseCaseBody() []ast.Decl {
	if p.curTokenIs(token.LBRACE) {
		return p.parseBlockDecls()
	}
	return []ast.Decl{&ast.StmtDecl{Inner: p.parseStatement()}}
}

func (p *Parser) parseWhenStmt() ast.Stmt {
	line := p.curToken.Line
	if !p.expectPeek(token.LPAREN) {
		return &ast.WhenStmt{Line: line}
	}
	p.nextToken()
	ctrl := p.parseExpression(PrecAssignment)
	p.expectPeek(token.RPAREN)
	if !p.expectPeek(token.LBRACE) {
		return &ast.WhenStmt{Line: line, Control: ctrl}
	}
	p.nextToken()

	var cases []ast.WhenCase
	var elseBody []ast.Decl
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.CASE:
			var values []ast.Expr
			p.nextToken()
			values = append(values, p.parseExpression(PrecAssignment))
			for p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				values = append(values, p.parseExpression(PrecAssignment))
			}
			p.expectPeek(token.ARROW)
			p.nextToken()
			body := p.parseCaseBody()
			cases = append(cases, ast.WhenCase{Values: values, Body: body})
			p.nextToken()
		case token.DEFAULT:
			p.expectPeek(token.ARROW)
			p.nextToken()
			elseBody = p.parseCaseBody()
			p.nextToken()
		default:
			p.errorf("expected case/default in when block, got %s", p.curToken.Type)
			p.nextToken()
		}
	}
	return &ast.WhenStmt{Line: line, Control: ctrl, Cases: cases, Else: elseBody}
}

// ---- expressions ----

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorf("unexpected token %s in expression", p.curToken.Type)
		return &ast.Literal{Line: p.curToken.Line, Kind: ast.LitNil}
	}
	left := prefix()

	// PrecAssignment is the entry level for a full expression, and a full
	// expression admits assignment operators (which share that level).
	if precedence == PrecAssignment {
		precedence = PrecNone
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseCommaList(end token.Type) []ast.Expr {
	var list []ast.Expr
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(PrecAssignment))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(PrecAssignment))
	}
	p.expectPeek(end)
	return list
}

func (p *Parser) parseIdentifier() ast.Expr {
	return &ast.Identifier{Line: p.curToken.Line, Name: p.curToken.Literal, Ctx: ast.Load}
}

func (p *Parser) parseThis() ast.Expr {
	return &ast.Identifier{Line: p.curToken.Line, Name: "this", Ctx: ast.Load}
}

func (p *Parser) parseSuper() ast.Expr {
	line := p.curToken.Line
	if !p.expectPeek(token.DOT) {
		return &ast.SuperExpr{Line: line}
	}
	if !p.expectPeek(token.IDENT) {
		return &ast.SuperExpr{Line: line}
	}
	return &ast.SuperExpr{Line: line, Method: p.curToken.Literal}
}

func (p *Parser) parseNumber() ast.Expr {
	var n float64
	fmt.Sscanf(p.curToken.Literal, "%g", &n)
	return &ast.Literal{Line: p.curToken.Line, Kind: ast.LitNumber, Number: n}
}

func (p *Parser) parseBool() ast.Expr {
	return &ast.Literal{Line: p.curToken.Line, Kind: ast.LitBool, Bool: p.curToken.Type == token.TRUE}
}

func (p *Parser) parseNil() ast.Expr {
	return &ast.Literal{Line: p.curToken.Line, Kind: ast.LitNil}
}

func (p *Parser) parsePlainString() ast.Expr {
	return &ast.Literal{Line: p.curToken.Line, Kind: ast.LitString, Str: p.curToken.Literal}
}

func (p *Parser) parseInterpString() ast.Expr {
	line := p.curToken.Line
	var segs []ast.InterpSegment
	segs = append(segs, ast.InterpSegment{Text: p.curToken.Literal})
	for {
		p.nextToken()
		expr := p.parseExpression(PrecAssignment)
		segs = append(segs, ast.InterpSegment{IsExpr: true, Expr: expr})
		if p.peekTokenIs(token.STRING_INTERP) {
			p.nextToken()
			segs = append(segs, ast.InterpSegment{Text: p.curToken.Literal})
			continue
		}
		if p.peekTokenIs(token.STRING_INTERP_END) {
			p.nextToken()
			segs = append(segs, ast.InterpSegment{Text: p.curToken.Literal})
			break
		}
		p.errorf("unterminated string interpolation")
		break
	}
	return &ast.StringInterpExpr{Line: line, Segments: segs}
}

func (p *Parser) markStoreTarget(e ast.Expr) {
	switch t := e.(type) {
	case *ast.Identifier:
		t.Ctx = ast.Store
	case *ast.PropertyExpr:
		t.Ctx = ast.Store
	case *ast.SubscriptExpr:
		t.Ctx = ast.Store
	default:
		p.errorf("invalid assignment target")
	}
}

func (p *Parser) parseUnpackAssign() ast.Expr {
	line := p.curToken.Line
	var targets []ast.Expr
	p.nextToken()
	targets = append(targets, p.parseExpression(PrecPostfix))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		targets = append(targets, p.parseExpression(PrecPostfix))
	}
	p.expectPeek(token.BAR)
	p.expectPeek(token.EQUAL)
	p.nextToken()
	value := p.parseExpression(PrecAssignment)
	for _, t := range targets {
		p.markStoreTarget(t)
	}
	return &ast.UnpackAssignExpr{Line: line, Targets: targets, Value: value}
}

func (p *Parser) parseUnary() ast.Expr {
	op := p.curToken.Type
	line := p.curToken.Line
	p.nextToken()
	right := p.parseExpression(PrecUnary)
	return &ast.UnaryExpr{Line: line, Op: op, Right: right}
}

func (p *Parser) parsePrefixInc() ast.Expr {
	op := p.curToken.Type
	line := p.curToken.Line
	p.nextToken()
	target := p.parseExpression(PrecUnary)
	return &ast.PrefixIncExpr{Line: line, Op: op, Target: target}
}

func (p *Parser) parsePostfixInc(left ast.Expr) ast.Expr {
	return &ast.PostfixIncExpr{Line: p.curToken.Line, Op: p.curToken.Type, Target: left}
}

func (p *Parser) parseGroupOrTuple() ast.Expr {
	line := p.curToken.Line
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.TupleExpr{Line: line}
	}
	p.nextToken()
	first := p.parseExpression(PrecAssignment)
	if p.peekTokenIs(token.COMMA) {
		elems := []ast.Expr{first}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			elems = append(elems, p.parseExpression(PrecAssignment))
		}
		p.expectPeek(token.RPAREN)
		return &ast.TupleExpr{Line: line, Elements: elems}
	}
	p.expectPeek(token.RPAREN)
	return first
}

func (p *Parser) parseListLiteral() ast.Expr {
	line := p.curToken.Line
	elems := p.parseCommaList(token.RBRACKET)
	return &ast.ListExpr{Line: line, Elements: elems}
}

func (p *Parser) parseMapLiteral() ast.Expr {
	line := p.curToken.Line
	var entries []ast.MapEntry
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return &ast.MapExpr{Line: line}
	}
	p.nextToken()
	for {
		key := p.parseExpression(PrecAssignment)
		if !p.expectPeek(token.COLON) {
			break
		}
		p.nextToken()
		val := p.parseExpression(PrecAssignment)
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RBRACE)
	return &ast.MapExpr{Line: line, Entries: entries}
}

func (p *Parser) parseLambda() ast.Expr {
	line := p.curToken.Line
	var params []ast.Param
	for !p.peekTokenIs(token.ARROW) && !p.peekTokenIs(token.EOF) {
		if !p.expectPeek(token.IDENT) {
			break
		}
		params = append(params, ast.Param{Name: p.curToken.Literal})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.ARROW) {
		return &ast.LambdaExpr{Line: line, Params: params}
	}
	p.nextToken()
	if p.curTokenIs(token.LBRACE) {
		body := p.parseBlockDecls()
		return &ast.LambdaExpr{Line: line, Params: params, BlockBody: body}
	}
	expr := p.parseExpression(PrecAssignment)
	return &ast.LambdaExpr{Line: line, Params: params, ExprBody: expr}
}

func (p *Parser) parseCoroutineExpr() ast.Expr {
	line := p.curToken.Line
	p.nextToken()
	callee := p.parseExpression(PrecUnary)
	return &ast.CoroutineExpr{Line: line, Callee: callee}
}

func (p *Parser) parseYield() ast.Expr {
	line := p.curToken.Line
	switch p.peekToken.Type {
	case token.SEMICOLON, token.RPAREN, token.RBRACE, token.COMMA, token.EOF:
		return &ast.YieldExpr{Line: line}
	}
	p.nextToken()
	val := p.parseExpression(PrecAssignment)
	return &ast.YieldExpr{Line: line, Value: val}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	op := p.curToken.Type
	line := p.curToken.Line
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Line: line, Op: op, Left: left, Right: right}
}

func (p *Parser) parseExponent(left ast.Expr) ast.Expr {
	op := p.curToken.Type
	line := p.curToken.Line
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec - 1) // right-associative
	return &ast.BinaryExpr{Line: line, Op: op, Left: left, Right: right}
}

func (p *Parser) parseLogical(left ast.Expr) ast.Expr {
	op := p.curToken.Type
	line := p.curToken.Line
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.LogicalExpr{Line: line, Op: op, Left: left, Right: right}
}

func (p *Parser) parseRange(left ast.Expr) ast.Expr {
	line := p.curToken.Line
	p.nextToken()
	end := p.parseExpression(PrecRange)
	var step ast.Expr
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		step = p.parseExpression(PrecRange)
	}
	return &ast.RangeExpr{Line: line, Begin: left, End: end, Step: step}
}

func (p *Parser) parseConditional(left ast.Expr) ast.Expr {
	line := p.curToken.Line
	p.nextToken()
	then := p.parseExpression(PrecAssignment)
	if !p.expectPeek(token.COLON) {
		return &ast.ConditionalExpr{Line: line, Cond: left, Then: then}
	}
	p.nextToken()
	els := p.parseExpression(PrecConditional - 1)
	return &ast.ConditionalExpr{Line: line, Cond: left, Then: then, Else: els}
}

func (p *Parser) parseElvis(left ast.Expr) ast.Expr {
	line := p.curToken.Line
	p.nextToken()
	right := p.parseExpression(PrecConditional - 1)
	return &ast.ElvisExpr{Line: line, Left: left, Right: right}
}

func (p *Parser) parseProperty(left ast.Expr) ast.Expr {
	safe := p.curToken.Type == token.QUESTION_DOT
	line := p.curToken.Line
	if !p.expectPeek(token.IDENT) {
		return &ast.PropertyExpr{Line: line, Object: left, Safe: safe}
	}
	return &ast.PropertyExpr{Line: line, Object: left, Name: p.curToken.Literal, Ctx: ast.Load, Safe: safe}
}

func (p *Parser) parseSubscript(left ast.Expr) ast.Expr {
	safe := p.curToken.Type == token.QUESTION_LBRACKET
	line := p.curToken.Line
	p.nextToken()
	index := p.parseExpression(PrecAssignment)
	p.expectPeek(token.RBRACKET)
	return &ast.SubscriptExpr{Line: line, Object: left, Index: index, Ctx: ast.Load, Safe: safe}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	line := p.curToken.Line
	args := p.parseCommaList(token.RPAREN)
	return &ast.CallExpr{Line: line, Callee: left, Args: args}
}

func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	op := p.curToken.Type
	line := p.curToken.Line
	prec := p.curPrecedence()
	p.nextToken()
	value := p.parseExpression(prec - 1) // right-associative
	p.markStoreTarget(left)
	if op == token.EQUAL {
		return &ast.AssignExpr{Line: line, Target: left, Value: value}
	}
	return &ast.CompoundAssignExpr{Line: line, Target: left, Op: op, Value: value}
}
