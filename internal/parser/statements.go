package parser

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/token"
)

// parseIndentedBlock parses `: NEWLINE INDENT stmt* DEDENT`.
func (p *Parser) parseIndentedBlock() *ast.Block {
	start := p.expect(token.COLON)
	p.skipNewlines()
	p.expect(token.INDENT)
	blk := &ast.Block{}
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		before := p.pos
		st := p.parseStatement()
		if st != nil {
			blk.Statements = append(blk.Statements, st)
		}
		if p.pos == before {
			p.advance()
		}
		p.skipNewlines()
	}
	end := p.cur()
	if p.at(token.DEDENT) {
		p.advance()
	}
	blk.Span = span(start, end)
	return blk
}

// parseBraceBlock parses `{ stmt* }`, used for control-flow bodies written
// on one line or where indentation would be ambiguous (match arms, etc).
func (p *Parser) parseBraceBlock() *ast.Block {
	start := p.expect(token.LBRACE)
	p.skipNewlinesAndIndent()
	blk := &ast.Block{}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		before := p.pos
		st := p.parseStatement()
		if st != nil {
			blk.Statements = append(blk.Statements, st)
		}
		if p.pos == before {
			p.advance()
		}
		p.skipNewlines()
	}
	p.skipDedentsAndNewlines()
	end := p.expect(token.RBRACE)
	blk.Span = span(start, end)
	return blk
}

// parseBlock accepts either form.
func (p *Parser) parseBlock() *ast.Block {
	if p.at(token.COLON) {
		return p.parseIndentedBlock()
	}
	return p.parseBraceBlock()
}

func (p *Parser) recoverToStatementStart() {
	for !p.at(token.EOF) && !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.RBRACE) {
		p.advance()
	}
	if p.at(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.atKeyword("let"):
		return p.parseLet()
	case p.atKeyword("return"):
		return p.parseReturn()
	case p.atKeyword("break"):
		return p.parseBreak()
	case p.atKeyword("continue"):
		return p.parseContinue()
	case p.atKeyword("while"):
		return p.parseWhile()
	case p.atKeyword("loop"):
		return p.parseLoop()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.isItemStart():
		return p.parseItem()
	}
	start := p.cur()
	expr := p.parseExpr()
	if expr == nil {
		p.recoverToStatementStart()
		return nil
	}
	if op, ok := assignOp(p.cur().Type); ok {
		p.advance()
		val := p.parseExpr()
		as := &ast.AssignStatement{Target: expr, Op: op, Value: val}
		as.Span = span(start, p.cur())
		return as
	}
	es := &ast.ExprStatement{X: expr}
	es.Span = span(start, p.cur())
	return es
}

func assignOp(t token.Type) (string, bool) {
	switch t {
	case token.ASSIGN:
		return "=", true
	case token.PLUS_ASSIGN:
		return "+=", true
	case token.MINUS_ASSIGN:
		return "-=", true
	case token.ASTERISK_ASSIGN:
		return "*=", true
	case token.SLASH_ASSIGN:
		return "/=", true
	case token.PERCENT_ASSIGN:
		return "%=", true
	case token.POWER_ASSIGN:
		return "**=", true
	}
	return "", false
}

func (p *Parser) parseLet() ast.Statement {
	start := p.advance() // 'let'
	mutable := false
	if p.atKeyword("mut") {
		mutable = true
		p.advance()
	}
	ls := &ast.LetStatement{Mutable: mutable}
	if p.at(token.LPAREN) {
		ls.Pattern = p.parsePattern()
	} else {
		ls.Name = p.expect(token.IDENT).Lexeme
	}
	if p.at(token.COLON) {
		p.advance()
		ls.TypeAnnotation = p.parseType()
	}
	p.expect(token.ASSIGN)
	ls.Value = p.parseExpr()
	ls.Span = span(start, p.cur())
	return ls
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.advance()
	rs := &ast.ReturnStatement{}
	if !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		rs.Value = p.parseExpr()
	}
	rs.Span = span(start, p.cur())
	return rs
}

func (p *Parser) parseBreak() ast.Statement {
	start := p.advance()
	bs := &ast.BreakStatement{}
	if !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		bs.Value = p.parseExpr()
	}
	bs.Span = span(start, p.cur())
	return bs
}

func (p *Parser) parseContinue() ast.Statement {
	start := p.advance()
	cs := &ast.ContinueStatement{}
	cs.Span = span(start, start)
	return cs
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.advance()
	cond := p.parseExpr()
	body := p.parseBlock()
	ws := &ast.WhileStatement{Cond: cond, Body: body}
	ws.Span = span(start, p.cur())
	return ws
}

func (p *Parser) parseLoop() ast.Statement {
	start := p.advance()
	body := p.parseBlock()
	ls := &ast.LoopStatement{Body: body}
	ls.Span = span(start, p.cur())
	return ls
}

func (p *Parser) parseFor() ast.Statement {
	start := p.advance()
	pat := p.parsePattern()
	if !p.atKeyword("in") {
		p.errorf("expected 'in' in for loop")
	} else {
		p.advance()
	}
	iter := p.parseExpr()
	body := p.parseBlock()
	fs := &ast.ForStatement{Pattern: pat, Iter: iter, Body: body}
	fs.Span = span(start, p.cur())
	return fs
}
