// Package parser builds a FORMA ast.Program from a token stream, recovering
// from errors at statement/item boundaries so that a single run reports
// every syntax problem instead of just the first (spec §4.2).
package parser

import (
	"fmt"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/lexer"
	"github.com/formalang/forma/internal/token"
)

// Parser holds the token cursor and accumulated diagnostics.
type Parser struct {
	file   string
	toks   []token.Token
	pos    int
	diags  diagnostics.Bag
}

// Parse lexes and parses a complete source file, returning the AST and all
// diagnostics collected by both phases.
func Parse(file, src string) (*ast.Program, []diagnostics.Diagnostic) {
	lx := lexer.New(file, src)
	toks, lexDiags := lx.Tokenize()
	p := &Parser{file: file, toks: filterForParser(toks)}
	p.diags.Extend(lexDiags)
	prog := p.parseProgram()
	return prog, p.diags.All()
}

// filterForParser drops blank-line-adjacent NEWLINE runs is unnecessary here
// since the lexer already suppresses blank/comment-only lines; kept as an
// explicit seam for future whitespace-policy changes.
func filterForParser(toks []token.Token) []token.Token { return toks }

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) atKeyword(lit string) bool {
	return p.cur().Type == token.KEYWORD && p.cur().Lexeme == lit
}

func (p *Parser) expect(t token.Type) token.Token {
	if p.at(t) {
		return p.advance()
	}
	p.errorf("expected %s, got %s %q", t, p.cur().Type, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.diags.Add(diagnostics.Diagnostic{
		Code:     "PARSE",
		Category: diagnostics.CatParse,
		Message:  fmt.Sprintf(format, args...),
		Primary:  p.cur().Span,
		File:     p.file,
	})
}

// skipNewlines consumes any run of NEWLINE tokens (blank separators between
// top-level items, statements, etc).
func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

// recoverToItemStart skips tokens until the next item-start keyword, EOF, or
// a NEWLINE/DEDENT boundary (which it consumes), matching spec §4.2's
// statement/item resync rule.
func (p *Parser) recoverToItemStart() {
	for !p.at(token.EOF) {
		if p.at(token.NEWLINE) || p.at(token.DEDENT) {
			p.advance()
			return
		}
		if p.isItemStart() {
			return
		}
		p.advance()
	}
}

func (p *Parser) isItemStart() bool {
	switch {
	case p.looksLikeFunctionStart():
		return true
	case p.looksLikeStructStart():
		return true
	case p.looksLikeEnumStart():
		return true
	case p.looksLikeTraitStart():
		return true
	case p.looksLikeImplStart():
		return true
	case p.looksLikeModuleStart():
		return true
	case p.atKeyword("us") || p.atKeyword("type") || p.atKeyword("let") || p.at(token.AT):
		return true
	}
	return false
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{File: p.file}
	p.skipNewlines()

	for !p.at(token.EOF) {
		p.skipNewlines()
		if p.at(token.EOF) {
			break
		}
		if p.atKeyword("mod") {
			prog.Module = p.parseModuleDecl()
			p.skipNewlines()
			continue
		}
		if p.atKeyword("us") {
			prog.Imports = append(prog.Imports, p.parseImport())
			p.skipNewlines()
			continue
		}
		before := p.pos
		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		}
		if p.pos == before {
			// Guard against infinite loops on unparseable input.
			p.errorf("unexpected token %s %q", p.cur().Type, p.cur().Lexeme)
			p.advance()
		}
		p.skipNewlines()
	}
	return prog
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	start := p.advance() // 'mod' keyword
	name := p.expect(token.IDENT)
	d := &ast.ModuleDecl{Name: name.Lexeme}
	d.Span = span(start, name)
	return d
}

func (p *Parser) parseImport() *ast.ImportDecl {
	start := p.advance() // 'us'
	pathTok := p.expect(token.IDENT)
	path := pathTok.Lexeme
	last := pathTok
	for p.at(token.DOT) {
		p.advance()
		seg := p.expect(token.IDENT)
		path += "." + seg.Lexeme
		last = seg
	}
	alias := ""
	if p.atKeyword("as") {
		p.advance()
		aliasTok := p.expect(token.IDENT)
		alias = aliasTok.Lexeme
		last = aliasTok
	}
	d := &ast.ImportDecl{Path: path, Alias: alias}
	d.Span = span(start, last)
	return d
}

// parseItem dispatches on contextual keywords and `@` attributes; resyncs to
// the next item boundary on failure so a single bad declaration doesn't stop
// the whole file from being diagnosed.
func (p *Parser) parseItem() ast.Statement {
	if p.at(token.AT) {
		return p.parseAttributedItem()
	}
	switch {
	case p.looksLikeFunctionStart():
		return p.parseFunction(false)
	case p.looksLikeStructStart():
		return p.parseStruct()
	case p.looksLikeEnumStart():
		return p.parseEnum()
	case p.looksLikeTraitStart():
		return p.parseTrait()
	case p.looksLikeImplStart():
		return p.parseImpl()
	case p.atKeyword("type"):
		return p.parseTypeAlias()
	case p.atKeyword("let"):
		return p.parseLet()
	}
	p.errorf("expected item, got %s %q", p.cur().Type, p.cur().Lexeme)
	p.recoverToItemStart()
	return nil
}

// span builds a token.Span covering [start, end] inclusive of both tokens.
func span(start, end token.Token) token.Span {
	return token.Span{Start: start.Span.Start, End: end.Span.End}
}
