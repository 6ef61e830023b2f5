package parser

import "github.com/formalang/forma/internal/ast"
import "github.com/formalang/forma/internal/token"

// parseType parses a type annotation, including the shortcut sugar forms
// `[T]`, `{K:V}`, `{T}`, `T?`, `T!E`, `T!` (spec §3).
func (p *Parser) parseType() ast.Type {
	t := p.parseTypeAtom()
	for {
		switch {
		case p.at(token.QUESTION):
			start := p.advance()
			ot := &ast.OptionType{Inner: t}
			ot.Span = span(tokenForType(t), start)
			t = ot
		case p.at(token.BANG):
			start := p.advance()
			rt := &ast.ResultType{Ok: t}
			if p.canStartType() {
				rt.Err = p.parseTypeAtom()
			}
			rt.Span = span(tokenForType(t), start)
			t = rt
		default:
			return t
		}
	}
}

func (p *Parser) canStartType() bool {
	switch p.cur().Type {
	case token.IDENT_UPPER, token.LPAREN, token.LBRACKET, token.LBRACE, token.AMPERSAND:
		return true
	}
	return false
}

func tokenForType(t ast.Type) token.Token {
	sp := t.GetSpan()
	return token.Token{Span: sp}
}

func (p *Parser) parseTypeAtom() ast.Type {
	start := p.cur()
	switch {
	case p.at(token.AMPERSAND):
		p.advance()
		mutable := false
		if p.atKeyword("mut") {
			mutable = true
			p.advance()
		}
		inner := p.parseTypeAtom()
		rt := &ast.RefType{Mutable: mutable, Inner: inner}
		rt.Span = span(start, p.cur())
		return rt
	case p.at(token.LBRACKET):
		p.advance()
		elem := p.parseType()
		p.expect(token.RBRACKET)
		lt := &ast.ListType{Elem: elem}
		lt.Span = span(start, p.cur())
		return lt
	case p.at(token.LBRACE):
		p.advance()
		key := p.parseType()
		if p.at(token.COLON) {
			p.advance()
			val := p.parseType()
			p.expect(token.RBRACE)
			mt := &ast.MapType{Key: key, Value: val}
			mt.Span = span(start, p.cur())
			return mt
		}
		p.expect(token.RBRACE)
		st := &ast.SetType{Elem: key}
		st.Span = span(start, p.cur())
		return st
	case p.at(token.LPAREN):
		p.advance()
		var elems []ast.Type
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			elems = append(elems, p.parseType())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
		if p.at(token.ARROW) {
			p.advance()
			ret := p.parseType()
			ft := &ast.FunctionType{Params: elems, ReturnType: ret}
			ft.Span = span(start, p.cur())
			return ft
		}
		if len(elems) == 1 {
			return elems[0]
		}
		tt := &ast.TupleType{Elements: elems}
		tt.Span = span(start, p.cur())
		return tt
	case p.at(token.IDENT_UPPER) || p.at(token.IDENT):
		name := p.advance()
		nt := &ast.NamedType{Name: name.Lexeme}
		if p.at(token.LT) {
			p.advance()
			for !p.at(token.GT) && !p.at(token.EOF) {
				nt.Args = append(nt.Args, p.parseType())
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.GT)
		}
		nt.Span = span(name, p.cur())
		return nt
	}
	p.errorf("expected type, got %s %q", p.cur().Type, p.cur().Lexeme)
	p.advance()
	nt := &ast.NamedType{Name: "?"}
	nt.Span = span(start, start)
	return nt
}
