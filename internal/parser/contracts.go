package parser

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/lexer"
	"github.com/formalang/forma/internal/token"
)

// namedContracts maps a `@name(args)` attribute to the boolean expression it
// expands into, with the argument expressions substituted for bare `argN`
// identifier placeholders. Expansion happens at parse time so the inferencer
// and interpreter only ever see ordinary contract expressions (spec §6).
var namedContracts = map[string]string{
	"positive":    "arg0 > 0",
	"nonnegative": "arg0 >= 0",
	"nonempty":    "arg0.len() > 0",
	"sorted":      "forall i in 0..arg0.len() - 1: arg0[i] <= arg0[i + 1]",
	"permutation": "permutation(arg0, arg1)",
	"stable":      "stable_sort(arg0, arg1, arg2)",
	"rotated":     "rotated(arg0, arg1, arg2)",
	"partitioned": "partitioned(arg0, arg1)",
	"inbounds":    "arg0 >= 0 && arg0 < arg1.len()",
}

// postContractNames are named contracts whose expansion references the
// post-call state (result or the sortedness of an out-parameter), so they
// attach as postconditions rather than preconditions.
var postContractNames = map[string]bool{
	"permutation": true,
	"stable":      true,
	"rotated":     true,
	"partitioned": true,
}

// parseContractAttribute parses one `@name(args)` appearing after a function
// signature, returning the precondition or postcondition it produces (never
// both). `@requires(expr)`/`@ensures(expr)` pass their argument through
// unchanged; any other name is looked up in namedContracts and expanded with
// the call's own arguments spliced in for the template's placeholders.
func (p *Parser) parseContractAttribute() (pre, post *ast.Contract) {
	start := p.advance() // '@'
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	end := p.expect(token.RPAREN)
	sourceSpan := span(start, end)

	switch name {
	case "requires":
		if len(args) != 1 {
			p.errorf("@requires takes exactly one expression")
			return nil, nil
		}
		return &ast.Contract{Span: sourceSpan, Expr: args[0], SourceText: name}, nil
	case "ensures":
		if len(args) != 1 {
			p.errorf("@ensures takes exactly one expression")
			return nil, nil
		}
		return nil, &ast.Contract{Span: sourceSpan, Expr: args[0], SourceText: name, IsPost: true}
	}

	tmpl, ok := namedContracts[name]
	if !ok {
		p.errorf("unknown contract attribute @%s", name)
		return nil, nil
	}
	expr := p.expandContractTemplate(tmpl, args)
	setSpanDeep(expr, sourceSpan)
	c := &ast.Contract{Span: sourceSpan, Expr: expr, SourceText: name, IsPost: postContractNames[name]}
	if c.IsPost {
		return nil, c
	}
	return c, nil
}

// expandContractTemplate lexes and parses a namedContracts template with an
// independent sub-parser, then splices the caller's own argument ASTs in for
// each bare `argN` placeholder identifier.
func (p *Parser) expandContractTemplate(tmpl string, args []ast.Expression) ast.Expression {
	toks, lexDiags := lexer.New(p.file, tmpl).Tokenize()
	sub := &Parser{file: p.file, toks: toks}
	sub.diags.Extend(lexDiags)
	expr := sub.parseExpr()
	p.diags.Extend(sub.diags.All())
	return substitutePlaceholders(expr, args)
}

// substitutePlaceholders walks expr, replacing any bare `argN` identifier with
// args[N]. Recurses through every expression kind a template can contain.
func substitutePlaceholders(e ast.Expression, args []ast.Expression) ast.Expression {
	if e == nil {
		return nil
	}
	if repl, ok := placeholderArg(e, args); ok {
		return repl
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Left = substitutePlaceholders(n.Left, args)
		n.Right = substitutePlaceholders(n.Right, args)
	case *ast.UnaryExpr:
		n.Operand = substitutePlaceholders(n.Operand, args)
	case *ast.CallExpr:
		n.Callee = substitutePlaceholders(n.Callee, args)
		for i := range n.Args {
			n.Args[i].Value = substitutePlaceholders(n.Args[i].Value, args)
		}
	case *ast.MethodCallExpr:
		n.Receiver = substitutePlaceholders(n.Receiver, args)
		for i := range n.Args {
			n.Args[i].Value = substitutePlaceholders(n.Args[i].Value, args)
		}
	case *ast.IndexExpr:
		n.Receiver = substitutePlaceholders(n.Receiver, args)
		n.Index = substitutePlaceholders(n.Index, args)
	case *ast.QuantifierExpr:
		n.Range = substitutePlaceholders(n.Range, args)
		n.Body = substitutePlaceholders(n.Body, args)
	case *ast.RangeExpr:
		n.Lo = substitutePlaceholders(n.Lo, args)
		n.Hi = substitutePlaceholders(n.Hi, args)
	}
	return e
}

func placeholderArg(e ast.Expression, args []ast.Expression) (ast.Expression, bool) {
	id, ok := e.(*ast.Identifier)
	if !ok || len(id.Name) < 4 || id.Name[:3] != "arg" {
		return nil, false
	}
	idx := 0
	for _, c := range id.Name[3:] {
		if c < '0' || c > '9' {
			return nil, false
		}
		idx = idx*10 + int(c-'0')
	}
	if idx < len(args) {
		return args[idx], true
	}
	return nil, false
}

// setSpanDeep overwrites every node's span in the expanded template with the
// source `@name(...)` attribute's span, so diagnostics point at the
// attribute rather than the invisible template text.
func setSpanDeep(e ast.Expression, sp token.Span) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Span = sp
		setSpanDeep(n.Left, sp)
		setSpanDeep(n.Right, sp)
	case *ast.UnaryExpr:
		n.Span = sp
		setSpanDeep(n.Operand, sp)
	case *ast.CallExpr:
		n.Span = sp
		setSpanDeep(n.Callee, sp)
		for _, a := range n.Args {
			setSpanDeep(a.Value, sp)
		}
	case *ast.MethodCallExpr:
		n.Span = sp
		setSpanDeep(n.Receiver, sp)
		for _, a := range n.Args {
			setSpanDeep(a.Value, sp)
		}
	case *ast.IndexExpr:
		n.Span = sp
		setSpanDeep(n.Receiver, sp)
		setSpanDeep(n.Index, sp)
	case *ast.QuantifierExpr:
		n.Span = sp
		setSpanDeep(n.Range, sp)
		setSpanDeep(n.Body, sp)
	case *ast.RangeExpr:
		n.Span = sp
		setSpanDeep(n.Lo, sp)
		setSpanDeep(n.Hi, sp)
	case *ast.Identifier:
		n.Span = sp
	}
}
