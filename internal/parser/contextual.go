package parser

import "github.com/formalang/forma/internal/token"

// Contextual keyword resolution (spec §4.1, §4.2): `f s e t i m` lex as plain
// identifiers carrying MayBeKeyword=true. The parser commits to the keyword
// reading only when the token stream at a statement boundary matches the
// declaration's follow-set, e.g. `f IDENT (` for a function. Everywhere else
// the lexeme is just an identifier.

func (p *Parser) contextualLexeme() (string, bool) {
	t := p.cur()
	if t.Type != token.IDENT || !t.MayBeKeyword {
		return "", false
	}
	return t.Lexeme, true
}

// looksLikeFunctionStart matches `f IDENT (` or `f IDENT<...>(`.
func (p *Parser) looksLikeFunctionStart() bool {
	lex, ok := p.contextualLexeme()
	if !ok || lex != "f" {
		return false
	}
	n1 := p.peek(1)
	if n1.Type != token.IDENT && n1.Type != token.IDENT_UPPER {
		return false
	}
	n2 := p.peek(2)
	return n2.Type == token.LPAREN || n2.Type == token.LT
}

// looksLikeStructStart matches `s IDENT_UPPER {` or `<`.
func (p *Parser) looksLikeStructStart() bool {
	lex, ok := p.contextualLexeme()
	if !ok || lex != "s" {
		return false
	}
	n1 := p.peek(1)
	if n1.Type != token.IDENT_UPPER {
		return false
	}
	n2 := p.peek(2)
	return n2.Type == token.LBRACE || n2.Type == token.LT
}

// looksLikeEnumStart matches `e IDENT_UPPER {` or `<`.
func (p *Parser) looksLikeEnumStart() bool {
	lex, ok := p.contextualLexeme()
	if !ok || lex != "e" {
		return false
	}
	n1 := p.peek(1)
	if n1.Type != token.IDENT_UPPER {
		return false
	}
	n2 := p.peek(2)
	return n2.Type == token.LBRACE || n2.Type == token.LT
}

// looksLikeTraitStart matches `t IDENT_UPPER {` `<` or `:`.
func (p *Parser) looksLikeTraitStart() bool {
	lex, ok := p.contextualLexeme()
	if !ok || lex != "t" {
		return false
	}
	n1 := p.peek(1)
	if n1.Type != token.IDENT_UPPER {
		return false
	}
	n2 := p.peek(2)
	return n2.Type == token.LBRACE || n2.Type == token.LT || n2.Type == token.COLON
}

// looksLikeImplStart matches `i IDENT_UPPER` or `i <`; the tokens after
// them are not checked.
func (p *Parser) looksLikeImplStart() bool {
	lex, ok := p.contextualLexeme()
	if !ok || lex != "i" {
		return false
	}
	n1 := p.peek(1)
	return n1.Type == token.IDENT_UPPER || n1.Type == token.LT
}

// looksLikeModuleStart matches `m IDENT` (module declaration uses the long
// spelling `mod` as a reserved keyword; `m` contextual form is an
// abbreviation parsers may also accept).
func (p *Parser) looksLikeModuleStart() bool {
	lex, ok := p.contextualLexeme()
	if !ok || lex != "m" {
		return false
	}
	return p.peek(1).Type == token.IDENT
}
