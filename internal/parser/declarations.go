package parser

import (
	"strconv"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/token"
)

func (p *Parser) parseGenerics() []string {
	if !p.at(token.LT) {
		return nil
	}
	p.advance()
	var out []string
	for !p.at(token.GT) && !p.at(token.EOF) {
		out = append(out, p.expect(token.IDENT).Lexeme)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.GT)
	return out
}

func (p *Parser) parseWhereClauses() []ast.WhereClause {
	if !p.atKeyword("where") {
		return nil
	}
	p.advance()
	var out []ast.WhereClause
	for {
		tp := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		trait := p.expect(token.IDENT_UPPER).Lexeme
		var args []ast.Type
		if p.at(token.LT) {
			p.advance()
			for !p.at(token.GT) && !p.at(token.EOF) {
				args = append(args, p.parseType())
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.GT)
		}
		out = append(out, ast.WhereClause{TypeParam: tp, Trait: trait, TraitArgs: args})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return out
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LPAREN)
	var out []ast.Param
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		name := p.expect(token.IDENT).Lexeme
		var typ ast.Type
		if p.at(token.COLON) {
			p.advance()
			typ = p.parseType()
		}
		var def ast.Expression
		if p.at(token.ASSIGN) {
			p.advance()
			def = p.parseExpr()
		}
		out = append(out, ast.Param{Name: name, Type: typ, Default: def})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return out
}

// parseFunction parses `f name<generics>(params) -> ret where ... [contracts]
// = body` or an indented-block body. asMethod marks methods nested in an
// impl/trait (no leading visibility handling differs).
func (p *Parser) parseFunction(asMethod bool) *ast.Function {
	start := p.advance() // 'f'
	name := p.expect(token.IDENT)
	fn := &ast.Function{Name: name.Lexeme, IsMethod: asMethod}
	fn.Generics = p.parseGenerics()
	fn.Params = p.parseParams()
	if p.at(token.ARROW) {
		p.advance()
		fn.ReturnType = p.parseType()
	} else {
		nt := &ast.NamedType{Name: "Unit"}
		nt.Span = span(name, name)
		fn.ReturnType = nt
	}
	fn.WhereClauses = p.parseWhereClauses()

	for p.at(token.AT) {
		pre, post := p.parseContractAttribute()
		if pre != nil {
			fn.Preconditions = append(fn.Preconditions, *pre)
		}
		if post != nil {
			fn.Postconditions = append(fn.Postconditions, *post)
		}
	}

	var end token.Token = name
	if p.at(token.ASSIGN) {
		p.advance()
		body := p.parseExpr()
		blk := &ast.Block{Statements: []ast.Statement{&ast.ExprStatement{X: body}}}
		blk.Span = body.GetSpan()
		fn.Body = blk
		end = p.cur()
	} else if p.at(token.COLON) {
		fn.Body = p.parseIndentedBlock()
		end = p.cur()
	} else {
		p.errorf("expected '=' or ':' to start function body")
	}
	fn.Span = span(start, end)
	return fn
}

func (p *Parser) parseFields() []ast.Field {
	p.expect(token.LBRACE)
	p.skipNewlinesAndIndent()
	var out []ast.Field
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		name := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		typ := p.parseType()
		var def ast.Expression
		if p.at(token.ASSIGN) {
			p.advance()
			def = p.parseExpr()
		}
		out = append(out, ast.Field{Name: name, Type: typ, Default: def})
		p.consumeFieldSeparator()
	}
	p.skipDedentsAndNewlines()
	p.expect(token.RBRACE)
	return out
}

// skipNewlinesAndIndent / skipDedentsAndNewlines let struct/enum/trait bodies
// be either brace-delimited-on-one-line or indented across several.
func (p *Parser) skipNewlinesAndIndent() {
	for p.at(token.NEWLINE) || p.at(token.INDENT) {
		p.advance()
	}
}

func (p *Parser) skipDedentsAndNewlines() {
	for p.at(token.NEWLINE) || p.at(token.DEDENT) {
		p.advance()
	}
}

func (p *Parser) consumeFieldSeparator() {
	for p.at(token.COMMA) || p.at(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseStruct() *ast.Struct {
	start := p.advance() // 's'
	name := p.expect(token.IDENT_UPPER)
	st := &ast.Struct{Name: name.Lexeme}
	st.Generics = p.parseGenerics()
	st.Fields = p.parseFields()
	st.Span = span(start, p.cur())
	return st
}

func (p *Parser) parseEnum() *ast.Enum {
	start := p.advance() // 'e'
	name := p.expect(token.IDENT_UPPER)
	en := &ast.Enum{Name: name.Lexeme}
	en.Generics = p.parseGenerics()
	p.expect(token.LBRACE)
	p.skipNewlinesAndIndent()
	idx := 0
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		vname := p.expect(token.IDENT_UPPER).Lexeme
		v := ast.Variant{Name: vname, Kind: ast.UnitVariant, Discriminant: idx}
		if p.at(token.LPAREN) {
			v.Kind = ast.TupleVariant
			p.advance()
			for !p.at(token.RPAREN) && !p.at(token.EOF) {
				v.TupleTypes = append(v.TupleTypes, p.parseType())
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RPAREN)
		} else if p.at(token.LBRACE) {
			v.Kind = ast.RecordVariant
			p.advance()
			p.skipNewlinesAndIndent()
			for !p.at(token.RBRACE) && !p.at(token.EOF) {
				fname := p.expect(token.IDENT).Lexeme
				p.expect(token.COLON)
				ftype := p.parseType()
				v.Fields = append(v.Fields, ast.Field{Name: fname, Type: ftype})
				p.consumeFieldSeparator()
			}
			p.skipDedentsAndNewlines()
			p.expect(token.RBRACE)
		}
		en.Variants = append(en.Variants, v)
		idx++
		p.consumeFieldSeparator()
	}
	p.skipDedentsAndNewlines()
	p.expect(token.RBRACE)
	en.Span = span(start, p.cur())
	return en
}

func (p *Parser) parseTrait() *ast.Trait {
	start := p.advance() // 't'
	name := p.expect(token.IDENT_UPPER)
	tr := &ast.Trait{Name: name.Lexeme}
	tr.Generics = p.parseGenerics()
	if p.at(token.COLON) {
		p.advance()
		for {
			tr.Supertraits = append(tr.Supertraits, p.expect(token.IDENT_UPPER).Lexeme)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(token.LBRACE)
	p.skipNewlinesAndIndent()
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.atKeyword("type") {
			p.advance()
			aname := p.expect(token.IDENT_UPPER).Lexeme
			var bound ast.Type
			if p.at(token.COLON) {
				p.advance()
				bound = p.parseType()
			}
			tr.AssocTypes = append(tr.AssocTypes, ast.AssocType{Name: aname, Bound: bound})
			p.skipDedentsAndNewlines()
			continue
		}
		if p.looksLikeFunctionStart() {
			p.advance() // 'f'
			mname := p.expect(token.IDENT).Lexeme
			sig := ast.MethodSig{Name: mname}
			_ = p.parseGenerics()
			sig.Params = p.parseParams()
			if p.at(token.ARROW) {
				p.advance()
				sig.ReturnType = p.parseType()
			} else {
				nt := &ast.NamedType{Name: "Unit"}
				sig.ReturnType = nt
			}
			if p.at(token.ASSIGN) {
				p.advance()
				body := p.parseExpr()
				sig.Default = &ast.Block{Statements: []ast.Statement{&ast.ExprStatement{X: body}}}
			} else if p.at(token.COLON) {
				sig.Default = p.parseIndentedBlock()
			}
			tr.Methods = append(tr.Methods, sig)
			p.skipDedentsAndNewlines()
			continue
		}
		p.errorf("expected trait item, got %s %q", p.cur().Type, p.cur().Lexeme)
		p.advance()
	}
	p.skipDedentsAndNewlines()
	p.expect(token.RBRACE)
	tr.Span = span(start, p.cur())
	return tr
}

func (p *Parser) parseImpl() *ast.Impl {
	start := p.advance() // 'i'
	im := &ast.Impl{}
	im.Generics = p.parseGenerics()
	first := p.parseType()
	if p.atKeyword("for") {
		p.advance()
		if nt, ok := first.(*ast.NamedType); ok {
			im.TraitRef = nt.Name
			im.TraitArgs = nt.Args
		}
		im.SelfType = p.parseType()
	} else {
		im.SelfType = first
	}
	im.WhereClauses = p.parseWhereClauses()
	p.expect(token.LBRACE)
	p.skipNewlinesAndIndent()
	im.AssocTypes = map[string]ast.Type{}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.atKeyword("type") {
			p.advance()
			aname := p.expect(token.IDENT_UPPER).Lexeme
			p.expect(token.ASSIGN)
			im.AssocTypes[aname] = p.parseType()
			p.skipDedentsAndNewlines()
			continue
		}
		if p.looksLikeFunctionStart() {
			im.Methods = append(im.Methods, p.parseFunction(true))
			p.skipDedentsAndNewlines()
			continue
		}
		p.errorf("expected impl item, got %s %q", p.cur().Type, p.cur().Lexeme)
		p.advance()
	}
	p.skipDedentsAndNewlines()
	p.expect(token.RBRACE)
	im.Span = span(start, p.cur())
	return im
}

func (p *Parser) parseTypeAlias() *ast.TypeAlias {
	start := p.advance() // 'type'
	name := p.expect(token.IDENT_UPPER)
	ta := &ast.TypeAlias{Name: name.Lexeme}
	ta.Generics = p.parseGenerics()
	p.expect(token.ASSIGN)
	ta.Target = p.parseType()
	ta.Span = span(start, p.cur())
	return ta
}

// parseAttributedItem parses one or more leading `@name(args)` attributes
// followed by the item they annotate. Contract attributes on functions are
// handled inline by parseFunction; this path covers item-level attributes
// such as `@derive(Eq, Show)` preceding a struct/enum.
func (p *Parser) parseAttributedItem() ast.Statement {
	start := p.cur()
	var attrs []ast.Attribute
	for p.at(token.AT) {
		atTok := p.advance()
		aname := p.expect(token.IDENT).Lexeme
		var args []ast.Expression
		if p.at(token.LPAREN) {
			p.advance()
			for !p.at(token.RPAREN) && !p.at(token.EOF) {
				args = append(args, p.parseExpr())
				if p.at(token.COMMA) {
					p.advance()
				}
			}
			p.expect(token.RPAREN)
		}
		attrs = append(attrs, ast.Attribute{Name: aname, Args: args, Span: span(atTok, p.cur())})
		p.skipNewlines()
	}
	inner := p.parseItem()
	if inner == nil {
		return nil
	}
	item := &ast.AttributedItem{Attributes: attrs, Item: inner}
	item.Span = span(start, p.cur())
	return item
}

// parseIntLiteral parses an integer literal lexeme, supporting underscores already
// stripped by the lexer.
func parseIntLiteral(lit string) (int64, error) {
	return strconv.ParseInt(lit, 10, 64)
}
