package parser

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/token"
)

func (p *Parser) parsePattern() ast.Pattern {
	pat := p.parsePatternAtom()
	if p.at(token.PIPE) {
		alts := []ast.Pattern{pat}
		for p.at(token.PIPE) {
			p.advance()
			alts = append(alts, p.parsePatternAtom())
		}
		op := &ast.OrPattern{Alternatives: alts}
		op.Span = alts[0].GetSpan()
		pat = op
	}
	if p.atKeyword("if") {
		p.advance()
		guard := p.parseExpr()
		setGuard(pat, guard)
	}
	return pat
}

func setGuard(pat ast.Pattern, guard ast.Expression) {
	switch pp := pat.(type) {
	case *ast.WildcardPattern:
		pp.Guard = guard
	case *ast.LiteralPattern:
		pp.Guard = guard
	case *ast.IdentPattern:
		pp.Guard = guard
	case *ast.TuplePattern:
		pp.Guard = guard
	case *ast.StructPattern:
		pp.Guard = guard
	case *ast.EnumPattern:
		pp.Guard = guard
	case *ast.OrPattern:
		pp.Guard = guard
	case *ast.RangePattern:
		pp.Guard = guard
	case *ast.RefPattern:
		pp.Guard = guard
	}
}

func (p *Parser) parsePatternAtom() ast.Pattern {
	start := p.cur()
	switch {
	case p.at(token.IDENT) && p.cur().Lexeme == "_":
		p.advance()
		wp := &ast.WildcardPattern{}
		wp.Span = span(start, start)
		return wp
	case p.at(token.INT) || p.at(token.FLOAT) || p.at(token.STRING) || p.at(token.CHAR) || p.at(token.BOOL):
		lit := p.parseLiteralExprAtom()
		lp := &ast.LiteralPattern{Value: lit}
		lp.Span = lit.GetSpan()
		if p.at(token.DOT_DOT) || p.at(token.DOT_DOT_EQ) {
			inclusive := p.at(token.DOT_DOT_EQ)
			p.advance()
			hi := p.parseLiteralExprAtom()
			rp := &ast.RangePattern{Lo: lit, Hi: hi, Inclusive: inclusive}
			rp.Span = span(start, p.cur())
			return rp
		}
		return lp
	case p.at(token.AMPERSAND):
		p.advance()
		mutable := false
		if p.atKeyword("mut") {
			mutable = true
			p.advance()
		}
		inner := p.parsePatternAtom()
		rp := &ast.RefPattern{Mutable: mutable, Inner: inner}
		rp.Span = span(start, p.cur())
		return rp
	case p.at(token.LPAREN):
		p.advance()
		var elems []ast.Pattern
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			elems = append(elems, p.parsePattern())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
		tp := &ast.TuplePattern{Elements: elems}
		tp.Span = span(start, p.cur())
		return tp
	case p.at(token.IDENT_UPPER):
		name := p.advance()
		return p.parseStructOrEnumPattern(name)
	case p.at(token.IDENT):
		name := p.advance()
		ip := &ast.IdentPattern{Name: name.Lexeme}
		ip.Span = span(name, name)
		if p.at(token.AT) {
			p.advance()
			ip.Sub = p.parsePatternAtom()
		}
		return ip
	}
	p.errorf("expected pattern, got %s %q", p.cur().Type, p.cur().Lexeme)
	p.advance()
	wp := &ast.WildcardPattern{}
	wp.Span = span(start, start)
	return wp
}

func (p *Parser) parseStructOrEnumPattern(name token.Token) ast.Pattern {
	typeOrVariant := name.Lexeme
	variant := ""
	if p.at(token.DOT) {
		p.advance()
		variant = p.expect(token.IDENT_UPPER).Lexeme
	}
	if p.at(token.LPAREN) {
		p.advance()
		var elems []ast.Pattern
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			elems = append(elems, p.parsePattern())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
		ep := &ast.EnumPattern{VariantName: nonEmpty(variant, typeOrVariant), TupleElems: elems, Kind: ast.TupleVariant}
		if variant != "" {
			ep.EnumName = typeOrVariant
		}
		ep.Span = span(name, p.cur())
		return ep
	}
	if p.at(token.LBRACE) {
		p.advance()
		p.skipNewlinesAndIndent()
		var fields []ast.StructFieldPattern
		hasRest := false
		for !p.at(token.RBRACE) && !p.at(token.EOF) {
			if p.at(token.DOT_DOT) {
				p.advance()
				hasRest = true
				p.consumeFieldSeparator()
				continue
			}
			fname := p.expect(token.IDENT).Lexeme
			var fpat ast.Pattern
			if p.at(token.COLON) {
				p.advance()
				fpat = p.parsePattern()
			} else {
				ip := &ast.IdentPattern{Name: fname}
				fpat = ip
			}
			fields = append(fields, ast.StructFieldPattern{Name: fname, Pattern: fpat})
			p.consumeFieldSeparator()
		}
		p.skipDedentsAndNewlines()
		p.expect(token.RBRACE)
		if variant != "" {
			ep := &ast.EnumPattern{EnumName: typeOrVariant, VariantName: variant, Fields: fields, Kind: ast.RecordVariant}
			ep.Span = span(name, p.cur())
			return ep
		}
		sp := &ast.StructPattern{TypeName: typeOrVariant, Fields: fields, HasRest: hasRest}
		sp.Span = span(name, p.cur())
		return sp
	}
	// Bare `Variant` (unit) or a nullary struct reference used as a constant pattern.
	ep := &ast.EnumPattern{VariantName: nonEmpty(variant, typeOrVariant), Kind: ast.UnitVariant}
	if variant != "" {
		ep.EnumName = typeOrVariant
	}
	ep.Span = span(name, name)
	return ep
}

func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
