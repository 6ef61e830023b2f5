package parser

import (
	"strconv"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/lexer"
	"github.com/formalang/forma/internal/token"
)

// Binding powers for Pratt/precedence-climbing expression parsing, lowest to
// highest. Matches spec §4.2's left-biased pipeline/operator family.
const (
	lowest = iota
	pipePrec
	coalescePrec
	orPrec
	andPrec
	equalityPrec
	comparePrec
	rangePrec
	additivePrec
	multiplicativePrec
	powerPrec
	unaryPrec
	postfixPrec
)

func binPrecedence(t token.Type) int {
	switch t {
	case token.PIPE:
		return pipePrec
	case token.QUESTION_QUESTION:
		return coalescePrec
	case token.OR:
		return orPrec
	case token.AND:
		return andPrec
	case token.EQ, token.NOT_EQ:
		return equalityPrec
	case token.LT, token.GT, token.LTE, token.GTE:
		return comparePrec
	case token.DOT_DOT, token.DOT_DOT_EQ:
		return rangePrec
	case token.PLUS, token.MINUS:
		return additivePrec
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return multiplicativePrec
	case token.POWER:
		return powerPrec
	}
	return lowest
}

func (p *Parser) parseExpr() ast.Expression {
	return p.parseExprPrec(lowest)
}

func (p *Parser) parseExprPrec(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		prec := binPrecedence(p.cur().Type)
		if prec <= minPrec {
			break
		}
		opTok := p.advance()
		switch opTok.Type {
		case token.PIPE:
			left = p.finishPipeline(left)
			continue
		case token.QUESTION_QUESTION:
			right := p.parseExprPrec(coalescePrec)
			ce := &ast.CoalesceExpr{Left: left, Right: right}
			ce.Span = span(tokenForExpr(left), p.cur())
			left = ce
			continue
		case token.DOT_DOT, token.DOT_DOT_EQ:
			right := p.parseExprPrec(rangePrec)
			re := &ast.RangeExpr{Lo: left, Hi: right, Inclusive: opTok.Type == token.DOT_DOT_EQ}
			re.Span = span(tokenForExpr(left), p.cur())
			left = re
			continue
		}
		nextMin := prec
		if opTok.Type != token.POWER {
			// left-associative
		} else {
			nextMin = prec - 1 // right-associative power
		}
		right := p.parseExprPrec(nextMin)
		be := &ast.BinaryExpr{Left: left, Right: right, Op: string(opTok.Type)}
		be.Span = span(tokenForExpr(left), p.cur())
		left = be
	}
	return left
}

func tokenForExpr(e ast.Expression) token.Token {
	return token.Token{Span: e.GetSpan()}
}

// finishPipeline desugars `x | f` -> f(x) and `x | f arg` -> f(x, arg)
// (spec §3, §4.2: left-biased first-arg injection).
func (p *Parser) finishPipeline(left ast.Expression) ast.Expression {
	start := tokenForExpr(left)
	fn := p.parseUnary()
	var call *ast.CallExpr
	if existing, ok := fn.(*ast.CallExpr); ok {
		args := append([]ast.Arg{{Value: left}}, existing.Args...)
		call = &ast.CallExpr{Callee: existing.Callee, Args: args}
	} else {
		call = &ast.CallExpr{Callee: fn, Args: []ast.Arg{{Value: left}}}
	}
	call.Span = span(start, p.cur())
	pe := &ast.PipelineExpr{Desugared: call}
	pe.Span = call.Span
	return pe
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.cur()
	switch p.cur().Type {
	case token.MINUS, token.BANG:
		op := p.advance()
		operand := p.parseUnary()
		ue := &ast.UnaryExpr{Op: string(op.Type), Operand: operand}
		ue.Span = span(start, p.cur())
		return ue
	case token.AMPERSAND:
		// Reference-taking is parsed as a unary operator; the inferencer
		// assigns it a reference type. Represented with Op "&" / "&mut".
		p.advance()
		mutable := false
		if p.atKeyword("mut") {
			mutable = true
			p.advance()
		}
		operand := p.parseUnary()
		op := "&"
		if mutable {
			op = "&mut"
		}
		ue := &ast.UnaryExpr{Op: op, Operand: operand}
		ue.Span = span(start, p.cur())
		return ue
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur().Type {
		case token.DOT:
			p.advance()
			fname := p.expect(token.IDENT).Lexeme
			if p.at(token.LPAREN) {
				args := p.parseArgs()
				mc := &ast.MethodCallExpr{Receiver: expr, Method: fname, Args: args}
				mc.Span = span(tokenForExpr(expr), p.cur())
				expr = mc
				continue
			}
			fa := &ast.FieldAccessExpr{Receiver: expr, Field: fname}
			fa.Span = span(tokenForExpr(expr), p.cur())
			expr = fa
		case token.LPAREN:
			args := p.parseArgs()
			ce := &ast.CallExpr{Callee: expr, Args: args}
			ce.Span = span(tokenForExpr(expr), p.cur())
			expr = ce
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET)
			ie := &ast.IndexExpr{Receiver: expr, Index: idx}
			ie.Span = span(tokenForExpr(expr), p.cur())
			expr = ie
		case token.QUESTION:
			p.advance()
			te := &ast.TryExpr{X: expr}
			te.Span = span(tokenForExpr(expr), p.cur())
			expr = te
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []ast.Arg {
	p.expect(token.LPAREN)
	var out []ast.Arg
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		name := ""
		if p.at(token.IDENT) && p.peek(1).Type == token.COLON {
			name = p.advance().Lexeme
			p.advance() // ':'
		}
		val := p.parseExpr()
		out = append(out, ast.Arg{Name: name, Value: val})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return out
}

func (p *Parser) parseLiteralExprAtom() ast.Expression {
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expression {
	start := p.cur()
	switch start.Type {
	case token.INT:
		p.advance()
		v, _ := strconv.ParseInt(start.Literal, 10, 64)
		lit := &ast.IntLit{Value: v}
		lit.Span = span(start, start)
		return lit
	case token.FLOAT:
		p.advance()
		v, _ := strconv.ParseFloat(start.Literal, 64)
		lit := &ast.FloatLit{Value: v}
		lit.Span = span(start, start)
		return lit
	case token.STRING:
		p.advance()
		lit := &ast.StringLit{Value: start.Literal}
		lit.Span = span(start, start)
		return lit
	case token.CHAR:
		p.advance()
		r := rune(0)
		for _, c := range start.Literal {
			r = c
			break
		}
		lit := &ast.CharLit{Value: r}
		lit.Span = span(start, start)
		return lit
	case token.BOOL:
		p.advance()
		lit := &ast.BoolLit{Value: start.Lexeme == "true"}
		lit.Span = span(start, start)
		return lit
	case token.FSTRING:
		return p.parseFString(start)
	case token.IDENT_UPPER:
		name := p.advance()
		if p.at(token.LBRACE) {
			return p.parseStructLiteral(name)
		}
		id := &ast.Identifier{Name: name.Lexeme}
		id.Span = span(name, name)
		return id
	case token.IDENT:
		name := p.advance()
		id := &ast.Identifier{Name: name.Lexeme}
		id.Span = span(name, name)
		return id
	case token.KEYWORD:
		return p.parseKeywordExpr()
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACKET:
		return p.parseBracketExpr()
	case token.LBRACE:
		return p.parseBraceExpr()
	case token.PIPE:
		return p.parseClosure()
	}
	p.errorf("expected expression, got %s %q", start.Type, start.Lexeme)
	p.advance()
	lit := &ast.IntLit{Value: 0}
	lit.Span = span(start, start)
	return lit
}

func (p *Parser) parseFString(start token.Token) ast.Expression {
	p.advance()
	fl := &ast.FStringLit{}
	fl.Span = span(start, start)
	for _, frag := range start.FStringFragments {
		if !frag.IsExpr {
			fl.Fragments = append(fl.Fragments, ast.FStringFragment{IsExpr: false, Text: frag.Text})
			continue
		}
		subToks, subDiags := lexer.New(p.file, frag.Text).Tokenize()
		sub := &Parser{file: p.file, toks: subToks}
		sub.diags.Extend(subDiags)
		expr := sub.parseExpr()
		p.diags.Extend(sub.diags.All())
		fl.Fragments = append(fl.Fragments, ast.FStringFragment{IsExpr: true, Text: frag.Text, Expr: expr})
	}
	fl.Desugared = desugarFString(fl)
	return fl
}

// desugarFString builds the left-associative concatenation of fragments
// coerced to Str via `str(...)` (spec §4.2).
func desugarFString(fl *ast.FStringLit) ast.Expression {
	var acc ast.Expression
	appendFrag := func(e ast.Expression) {
		if acc == nil {
			acc = e
			return
		}
		be := &ast.BinaryExpr{Left: acc, Right: e, Op: "++"}
		be.Span = fl.Span
		acc = be
	}
	for _, frag := range fl.Fragments {
		if !frag.IsExpr {
			lit := &ast.StringLit{Value: frag.Text}
			lit.Span = fl.Span
			appendFrag(lit)
			continue
		}
		callee := &ast.Identifier{Name: "str"}
		callee.Span = fl.Span
		call := &ast.CallExpr{Callee: callee, Args: []ast.Arg{{Value: frag.Expr}}}
		call.Span = fl.Span
		appendFrag(call)
	}
	if acc == nil {
		lit := &ast.StringLit{Value: ""}
		lit.Span = fl.Span
		return lit
	}
	return acc
}

// parseStructLiteral parses `Name { field: value, ..., ..base }` when an
// upper-case type name is immediately followed by `{` in expression
// position (spec §4.2 distinguishes this from a bare type reference by
// lookahead, same as looksLikeStructStart does at item level).
func (p *Parser) parseStructLiteral(name token.Token) ast.Expression {
	start := p.advance() // '{'
	p.skipNewlinesAndIndent()
	if p.at(token.DOT_DOT) {
		sl := p.parseStructUpdate(start, name.Lexeme)
		return sl
	}
	sl := &ast.StructLit{TypeName: name.Lexeme}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		fname := p.expect(token.IDENT).Lexeme
		var val ast.Expression
		if p.at(token.COLON) {
			p.advance()
			val = p.parseExpr()
		} else {
			id := &ast.Identifier{Name: fname}
			val = id
		}
		sl.Fields = append(sl.Fields, ast.FieldInit{Name: fname, Value: val})
		p.consumeFieldSeparator()
	}
	p.skipDedentsAndNewlines()
	p.expect(token.RBRACE)
	sl.Span = span(name, p.cur())
	return sl
}

func (p *Parser) parseKeywordExpr() ast.Expression {
	start := p.cur()
	switch start.Lexeme {
	case "if":
		return p.parseIf()
	case "match":
		return p.parseMatch()
	case "none":
		p.advance()
		n := &ast.NoneLit{}
		n.Span = span(start, start)
		return n
	case "async":
		p.advance()
		body := p.parseBlock()
		ae := &ast.AsyncBlockExpr{Body: body}
		ae.Span = span(start, p.cur())
		return ae
	case "await":
		p.advance()
		x := p.parseUnary()
		ae := &ast.AwaitExpr{X: x}
		ae.Span = span(start, p.cur())
		return ae
	case "spawn":
		p.advance()
		x := p.parseUnary()
		se := &ast.SpawnExpr{X: x}
		se.Span = span(start, p.cur())
		return se
	case "forall", "exists":
		return p.parseQuantifier()
	case "old":
		p.advance()
		p.expect(token.LPAREN)
		name := p.expect(token.IDENT).Lexeme
		p.expect(token.RPAREN)
		oe := &ast.OldExpr{Name: name}
		oe.Span = span(start, p.cur())
		return oe
	case "result":
		p.advance()
		re := &ast.ResultExpr{}
		re.Span = span(start, start)
		return re
	case "self", "Self":
		p.advance()
		id := &ast.Identifier{Name: start.Lexeme}
		id.Span = span(start, start)
		return id
	}
	p.errorf("unexpected keyword %q in expression position", start.Lexeme)
	p.advance()
	lit := &ast.IntLit{}
	lit.Span = span(start, start)
	return lit
}

func (p *Parser) parseIf() ast.Expression {
	start := p.advance() // 'if'
	cond := p.parseExpr()
	var thenExpr ast.Expression
	if p.atKeyword("then") {
		p.advance()
		thenExpr = p.parseExpr()
	} else {
		thenExpr = &ast.BlockExpr{Body: p.parseBlock()}
	}
	var elseExpr ast.Expression
	if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			elseExpr = p.parseIf()
		} else if p.atKeyword("then") {
			// `else then expr` is not valid grammar; fall through to generic parse
			elseExpr = p.parseExpr()
		} else if p.at(token.COLON) {
			elseExpr = &ast.BlockExpr{Body: p.parseBlock()}
		} else {
			elseExpr = p.parseExpr()
		}
	}
	ie := &ast.IfExpr{Cond: cond, Then: thenExpr, Else: elseExpr}
	ie.Span = span(start, p.cur())
	return ie
}

func (p *Parser) parseMatch() ast.Expression {
	start := p.advance() // 'match'
	scrutinee := p.parseExpr()
	p.expect(token.LBRACE)
	p.skipNewlinesAndIndent()
	me := &ast.MatchExpr{Scrutinee: scrutinee}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		pat := p.parsePattern()
		var guard ast.Expression
		if p.atKeyword("if") {
			p.advance()
			guard = p.parseExpr()
		}
		p.expect(token.FAT_ARROW)
		var body ast.Expression
		if p.at(token.LBRACE) {
			body = &ast.BlockExpr{Body: p.parseBraceBlock()}
		} else {
			body = p.parseExpr()
		}
		me.Arms = append(me.Arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		p.consumeFieldSeparator()
	}
	p.skipDedentsAndNewlines()
	p.expect(token.RBRACE)
	me.Span = span(start, p.cur())
	return me
}

func (p *Parser) parseQuantifier() ast.Expression {
	start := p.advance() // 'forall'/'exists'
	universal := start.Lexeme == "forall"
	v := p.expect(token.IDENT).Lexeme
	if !p.atKeyword("in") {
		p.errorf("expected 'in' in quantifier")
	} else {
		p.advance()
	}
	rangeExpr := p.parseExprPrec(rangePrec - 1)
	p.expect(token.COLON)
	body := p.parseExpr()
	qe := &ast.QuantifierExpr{Universal: universal, Var: v, Range: rangeExpr, Body: body}
	qe.Span = span(start, p.cur())
	return qe
}

func (p *Parser) parseParenExpr() ast.Expression {
	start := p.advance() // '('
	if p.at(token.RPAREN) {
		p.advance()
		te := &ast.TupleExpr{}
		te.Span = span(start, p.cur())
		return te
	}
	first := p.parseExpr()
	if p.at(token.COMMA) {
		elems := []ast.Expression{first}
		for p.at(token.COMMA) {
			p.advance()
			if p.at(token.RPAREN) {
				break
			}
			elems = append(elems, p.parseExpr())
		}
		p.expect(token.RPAREN)
		te := &ast.TupleExpr{Elements: elems}
		te.Span = span(start, p.cur())
		return te
	}
	p.expect(token.RPAREN)
	return first
}

func (p *Parser) parseBracketExpr() ast.Expression {
	start := p.advance() // '['
	if p.at(token.RBRACKET) {
		p.advance()
		al := &ast.ArrayLit{}
		al.Span = span(start, p.cur())
		return al
	}
	first := p.parseExpr()
	if p.atKeyword("for") {
		p.advance()
		pat := p.parsePattern()
		if !p.atKeyword("in") {
			p.errorf("expected 'in' in list comprehension")
		} else {
			p.advance()
		}
		iter := p.parseExpr()
		var cond ast.Expression
		if p.atKeyword("if") {
			p.advance()
			cond = p.parseExpr()
		}
		p.expect(token.RBRACKET)
		lc := &ast.ListCompExpr{Result: first, Pattern: pat, Iter: iter, Cond: cond}
		lc.Span = span(start, p.cur())
		return lc
	}
	elems := []ast.Expression{first}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBRACKET)
	al := &ast.ArrayLit{Elements: elems}
	al.Span = span(start, p.cur())
	return al
}

func (p *Parser) parseBraceExpr() ast.Expression {
	start := p.advance() // '{'
	if p.at(token.RBRACE) {
		p.advance()
		ml := &ast.MapLit{}
		ml.Span = span(start, p.cur())
		return ml
	}
	if p.at(token.DOT_DOT) {
		return p.parseStructUpdate(start, "")
	}
	first := p.parseExpr()
	if p.at(token.COLON) {
		p.advance()
		val := p.parseExpr()
		ml := &ast.MapLit{Entries: []ast.MapEntry{{Key: first, Value: val}}}
		for p.at(token.COMMA) {
			p.advance()
			if p.at(token.RBRACE) {
				break
			}
			k := p.parseExpr()
			p.expect(token.COLON)
			v := p.parseExpr()
			ml.Entries = append(ml.Entries, ast.MapEntry{Key: k, Value: v})
		}
		p.expect(token.RBRACE)
		ml.Span = span(start, p.cur())
		return ml
	}
	elems := []ast.Expression{first}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RBRACE) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBRACE)
	sl := &ast.SetLit{Elements: elems}
	sl.Span = span(start, p.cur())
	return sl
}

// parseStructUpdate handles the `{..base, k: v}` builder form (spec §4.2:
// recorded for MIR to emit a copy-and-override sequence).
func (p *Parser) parseStructUpdate(start token.Token, typeName string) ast.Expression {
	p.advance() // '..'
	base := p.parseExpr()
	sl := &ast.StructLit{TypeName: typeName, BaseExpr: base}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RBRACE) {
			break
		}
		fname := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		val := p.parseExpr()
		sl.Fields = append(sl.Fields, ast.FieldInit{Name: fname, Value: val})
	}
	p.expect(token.RBRACE)
	sl.Span = span(start, p.cur())
	return sl
}

func (p *Parser) parseClosure() ast.Expression {
	start := p.advance() // '|'
	var params []ast.Param
	for !p.at(token.PIPE) && !p.at(token.EOF) {
		name := p.expect(token.IDENT).Lexeme
		var typ ast.Type
		if p.at(token.COLON) {
			p.advance()
			typ = p.parseType()
		}
		params = append(params, ast.Param{Name: name, Type: typ})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.PIPE)
	body := p.parseExpr()
	ce := &ast.ClosureExpr{Params: params, Body: body}
	ce.Span = span(start, p.cur())
	return ce
}
