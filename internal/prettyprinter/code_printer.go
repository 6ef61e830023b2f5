// Package prettyprinter re-serializes a parsed program back into source
// text, the engine behind `forma fmt`.
package prettyprinter

import (
	"bytes"
	"fmt"

	"github.com/formalang/forma/internal/ast"
)

// operatorPrecedence mirrors the parser's own binding-power table closely
// enough to decide when a nested BinaryExpr needs parentheses to round-trip.
var operatorPrecedence = map[string]int{
	"||": 1, "&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"++": 5, "|": 5,
	"+": 6, "-": 6,
	"*": 7, "/": 7, "%": 7,
	"**": 8,
}

var rightAssoc = map[string]bool{"**": true}

func precedenceOf(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 9
}

// CodePrinter accumulates re-serialized source into an internal buffer,
// tracking indentation the way the interpreter's own evaluator tracks
// lexical nesting: one stack depth per indented block.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter { return &CodePrinter{} }

func (p *CodePrinter) String() string { return p.buf.String() }

func (p *CodePrinter) write(s string)          { p.buf.WriteString(s) }
func (p *CodePrinter) writef(f string, a ...any) { fmt.Fprintf(&p.buf, f, a...) }

func (p *CodePrinter) newline() {
	p.buf.WriteByte('\n')
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// PrintProgram re-serializes every top-level item, separated by a blank
// line, matching the vertical spacing a hand-formatted .forma file uses
// between declarations.
func PrintProgram(prog *ast.Program) string {
	p := NewCodePrinter()
	for i, item := range prog.Items {
		if i > 0 {
			p.write("\n\n")
		}
		p.printItem(item)
	}
	p.write("\n")
	return p.String()
}

func (p *CodePrinter) printItem(item ast.Statement) {
	switch n := item.(type) {
	case *ast.AttributedItem:
		for _, attr := range n.Attributes {
			p.printAttribute(attr)
			p.newline()
		}
		p.printItem(n.Item)
	case *ast.Function:
		p.printFunction(n)
	case *ast.Struct:
		p.printStruct(n)
	case *ast.Enum:
		p.printEnum(n)
	case *ast.Trait:
		p.printTrait(n)
	case *ast.Impl:
		p.printImpl(n)
	case *ast.TypeAlias:
		p.writef("type %s", n.Name)
		p.printGenerics(n.Generics)
		p.writef(" = %s", n.Target.String())
	default:
		p.printStatement(item)
	}
}

func (p *CodePrinter) printAttribute(a ast.Attribute) {
	p.writef("@%s", a.Name)
	if len(a.Args) > 0 {
		p.write("(")
		for i, arg := range a.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(arg, 0, false)
		}
		p.write(")")
	}
}

func (p *CodePrinter) printGenerics(generics []string) {
	if len(generics) == 0 {
		return
	}
	p.write("<")
	for i, g := range generics {
		if i > 0 {
			p.write(", ")
		}
		p.write(g)
	}
	p.write(">")
}

func (p *CodePrinter) printParams(params []ast.Param) {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name)
		if param.Type != nil {
			p.writef(": %s", param.Type.String())
		}
		if param.Default != nil {
			p.write(" = ")
			p.printExpr(param.Default, 0, false)
		}
	}
	p.write(")")
}

func (p *CodePrinter) printWhere(clauses []ast.WhereClause) {
	if len(clauses) == 0 {
		return
	}
	p.write(" where ")
	for i, c := range clauses {
		if i > 0 {
			p.write(", ")
		}
		p.writef("%s: %s", c.TypeParam, c.Trait)
	}
}

func (p *CodePrinter) printContracts(contracts []ast.Contract) {
	for _, c := range contracts {
		p.newline()
		if c.IsPost {
			p.write("@post(")
		} else {
			p.write("@pre(")
		}
		p.printExpr(c.Expr, 0, false)
		p.write(")")
	}
}

func (p *CodePrinter) printFunction(fn *ast.Function) {
	vis := ""
	if fn.Visibility == ast.Public {
		vis = "pub "
	}
	p.writef("%sf %s", vis, fn.Name)
	p.printGenerics(fn.Generics)
	p.printParams(fn.Params)
	if fn.ReturnType != nil {
		p.writef(" -> %s", fn.ReturnType.String())
	}
	p.printWhere(fn.WhereClauses)
	p.printContracts(fn.Preconditions)
	p.printContracts(fn.Postconditions)
	p.write(":")
	p.indent++
	p.printBlock(fn.Body)
	p.indent--
}

func (p *CodePrinter) printStruct(s *ast.Struct) {
	vis := ""
	if s.Visibility == ast.Public {
		vis = "pub "
	}
	p.writef("%ss %s", vis, s.Name)
	p.printGenerics(s.Generics)
	p.write(" {")
	p.indent++
	for _, f := range s.Fields {
		p.newline()
		p.writef("%s: %s", f.Name, f.Type.String())
		if f.Default != nil {
			p.write(" = ")
			p.printExpr(f.Default, 0, false)
		}
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *CodePrinter) printEnum(e *ast.Enum) {
	vis := ""
	if e.Visibility == ast.Public {
		vis = "pub "
	}
	p.writef("%se %s", vis, e.Name)
	p.printGenerics(e.Generics)
	p.write(" {")
	p.indent++
	for _, v := range e.Variants {
		p.newline()
		p.write(v.Name)
		switch v.Kind {
		case ast.TupleVariant:
			p.write("(")
			for i, t := range v.TupleTypes {
				if i > 0 {
					p.write(", ")
				}
				p.write(t.String())
			}
			p.write(")")
		case ast.RecordVariant:
			p.write(" { ")
			for i, f := range v.Fields {
				if i > 0 {
					p.write(", ")
				}
				p.writef("%s: %s", f.Name, f.Type.String())
			}
			p.write(" }")
		}
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *CodePrinter) printTrait(t *ast.Trait) {
	p.writef("t %s", t.Name)
	p.printGenerics(t.Generics)
	if len(t.Supertraits) > 0 {
		p.write(": ")
		for i, s := range t.Supertraits {
			if i > 0 {
				p.write(", ")
			}
			p.write(s)
		}
	}
	p.write(" {")
	p.indent++
	for _, m := range t.Methods {
		p.newline()
		p.writef("f %s", m.Name)
		p.printParams(m.Params)
		if m.ReturnType != nil {
			p.writef(" -> %s", m.ReturnType.String())
		}
		if m.Default != nil {
			p.write(" =")
			p.indent++
			p.printBlock(m.Default)
			p.indent--
		}
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *CodePrinter) printImpl(impl *ast.Impl) {
	p.write("i ")
	p.printGenerics(impl.Generics)
	if impl.TraitRef != "" {
		p.write(impl.TraitRef)
		if len(impl.TraitArgs) > 0 {
			p.write("<")
			for i, a := range impl.TraitArgs {
				if i > 0 {
					p.write(", ")
				}
				p.write(a.String())
			}
			p.write(">")
		}
		p.write(" for ")
	}
	p.write(impl.SelfType.String())
	p.printWhere(impl.WhereClauses)
	p.write(" {")
	p.indent++
	for _, m := range impl.Methods {
		p.newline()
		p.printFunction(m)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *CodePrinter) printBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		p.newline()
		p.printStatement(stmt)
	}
}

func (p *CodePrinter) printStatement(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.ExprStatement:
		p.printExpr(n.X, 0, false)
	case *ast.LetStatement:
		p.write("let ")
		if n.Mutable {
			p.write("mut ")
		}
		p.write(n.Name)
		if n.TypeAnnotation != nil {
			p.writef(": %s", n.TypeAnnotation.String())
		}
		p.write(" = ")
		p.printExpr(n.Value, 0, false)
	case *ast.AssignStatement:
		p.printExpr(n.Target, 0, false)
		p.writef(" %s ", n.Op)
		p.printExpr(n.Value, 0, false)
	case *ast.ReturnStatement:
		p.write("return")
		if n.Value != nil {
			p.write(" ")
			p.printExpr(n.Value, 0, false)
		}
	case *ast.BreakStatement:
		p.write("break")
		if n.Value != nil {
			p.write(" ")
			p.printExpr(n.Value, 0, false)
		}
	case *ast.ContinueStatement:
		p.write("continue")
	case *ast.WhileStatement:
		p.write("while ")
		p.printExpr(n.Cond, 0, false)
		p.write(":")
		p.indent++
		p.printBlock(n.Body)
		p.indent--
	case *ast.LoopStatement:
		p.write("loop:")
		p.indent++
		p.printBlock(n.Body)
		p.indent--
	case *ast.ForStatement:
		p.write("for ")
		p.printPattern(n.Pattern)
		p.write(" in ")
		p.printExpr(n.Iter, 0, false)
		p.write(":")
		p.indent++
		p.printBlock(n.Body)
		p.indent--
	case *ast.Block:
		p.printBlock(n)
	default:
		p.printItem(stmt)
	}
}

func (p *CodePrinter) printPattern(pat ast.Pattern) {
	switch n := pat.(type) {
	case *ast.WildcardPattern:
		p.write("_")
	case *ast.LiteralPattern:
		p.printExpr(n.Value, 0, false)
	case *ast.IdentPattern:
		p.write(n.Name)
		if n.Sub != nil {
			p.write(" @ ")
			p.printPattern(n.Sub)
		}
	case *ast.TuplePattern:
		p.write("(")
		for i, e := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printPattern(e)
		}
		p.write(")")
	case *ast.StructPattern:
		p.writef("%s { ", n.TypeName)
		for i, f := range n.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.writef("%s: ", f.Name)
			p.printPattern(f.Pattern)
		}
		if n.HasRest {
			if len(n.Fields) > 0 {
				p.write(", ")
			}
			p.write("..")
		}
		p.write(" }")
	case *ast.EnumPattern:
		p.write(n.VariantName)
		switch n.Kind {
		case ast.TupleVariant:
			p.write("(")
			for i, e := range n.TupleElems {
				if i > 0 {
					p.write(", ")
				}
				p.printPattern(e)
			}
			p.write(")")
		case ast.RecordVariant:
			p.write(" { ")
			for i, f := range n.Fields {
				if i > 0 {
					p.write(", ")
				}
				p.writef("%s: ", f.Name)
				p.printPattern(f.Pattern)
			}
			p.write(" }")
		}
	case *ast.OrPattern:
		for i, alt := range n.Alternatives {
			if i > 0 {
				p.write(" | ")
			}
			p.printPattern(alt)
		}
	case *ast.RangePattern:
		p.printExpr(n.Lo, 0, false)
		if n.Inclusive {
			p.write("..=")
		} else {
			p.write("..")
		}
		p.printExpr(n.Hi, 0, false)
	case *ast.RefPattern:
		p.write("&")
		if n.Mutable {
			p.write("mut ")
		}
		p.printPattern(n.Inner)
	}
}

// printExpr renders expr, parenthesizing a nested BinaryExpr only when
// parentPrec demands it, the same minimal-parens discipline as the
// teacher's own printExpr.
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<?>")
		return
	}
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		prec := precedenceOf(e.Op)
		needParens := prec < parentPrec || (prec == parentPrec && isRight && !rightAssoc[e.Op])
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Left, prec, false)
		p.writef(" %s ", e.Op)
		p.printExpr(e.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.UnaryExpr:
		p.write(e.Op)
		p.printExpr(e.Operand, 9, false)
	case *ast.Identifier:
		p.write(e.Name)
	case *ast.PathExpr:
		for i, seg := range e.Segments {
			if i > 0 {
				p.write(".")
			}
			p.write(seg)
		}
	case *ast.IntLit:
		p.writef("%d", e.Value)
	case *ast.FloatLit:
		p.writef("%g", e.Value)
	case *ast.BoolLit:
		p.writef("%t", e.Value)
	case *ast.CharLit:
		p.writef("'%c'", e.Value)
	case *ast.StringLit:
		p.writef("%q", e.Value)
	case *ast.NoneLit:
		p.write("none")
	case *ast.FStringLit:
		p.write(`f"`)
		for _, frag := range e.Fragments {
			if frag.IsExpr {
				p.write("{")
				p.printExpr(frag.Expr, 0, false)
				p.write("}")
			} else {
				p.write(frag.Text)
			}
		}
		p.write(`"`)
	case *ast.CallExpr:
		p.printExpr(e.Callee, 9, false)
		p.printArgs(e.Args)
	case *ast.FieldAccessExpr:
		p.printExpr(e.Receiver, 9, false)
		p.writef(".%s", e.Field)
	case *ast.MethodCallExpr:
		p.printExpr(e.Receiver, 9, false)
		p.writef(".%s", e.Method)
		p.printArgs(e.Args)
	case *ast.IndexExpr:
		p.printExpr(e.Receiver, 9, false)
		p.write("[")
		p.printExpr(e.Index, 0, false)
		p.write("]")
	case *ast.TupleExpr:
		p.write("(")
		for i, el := range e.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el, 0, false)
		}
		p.write(")")
	case *ast.ArrayLit:
		p.write("[")
		for i, el := range e.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el, 0, false)
		}
		p.write("]")
	case *ast.MapLit:
		p.write("{")
		for i, ent := range e.Entries {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(ent.Key, 0, false)
			p.write(": ")
			p.printExpr(ent.Value, 0, false)
		}
		p.write("}")
	case *ast.SetLit:
		p.write("{")
		for i, el := range e.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el, 0, false)
		}
		p.write("}")
	case *ast.RangeExpr:
		p.printExpr(e.Lo, 0, false)
		if e.Inclusive {
			p.write("..=")
		} else {
			p.write("..")
		}
		p.printExpr(e.Hi, 0, false)
	case *ast.IfExpr:
		p.write("if ")
		p.printExpr(e.Cond, 0, false)
		p.write(" then ")
		p.printExpr(e.Then, 0, false)
		if e.Else != nil {
			p.write(" else ")
			p.printExpr(e.Else, 0, false)
		}
	case *ast.MatchExpr:
		p.write("match ")
		p.printExpr(e.Scrutinee, 0, false)
		p.write(" {")
		p.indent++
		for _, arm := range e.Arms {
			p.newline()
			p.printPattern(arm.Pattern)
			if arm.Guard != nil {
				p.write(" if ")
				p.printExpr(arm.Guard, 0, false)
			}
			p.write(" => ")
			p.printExpr(arm.Body, 0, false)
		}
		p.indent--
		p.newline()
		p.write("}")
	case *ast.ClosureExpr:
		p.write("|")
		for i, param := range e.Params {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Name)
			if param.Type != nil {
				p.writef(": %s", param.Type.String())
			}
		}
		p.write("| ")
		p.printExpr(e.Body, 0, false)
	case *ast.StructLit:
		p.writef("%s { ", e.TypeName)
		for i, f := range e.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.writef("%s: ", f.Name)
			p.printExpr(f.Value, 0, false)
		}
		if e.BaseExpr != nil {
			if len(e.Fields) > 0 {
				p.write(", ")
			}
			p.write("..")
			p.printExpr(e.BaseExpr, 0, false)
		}
		p.write(" }")
	case *ast.PipelineExpr:
		p.printExpr(e.Desugared, parentPrec, isRight)
	case *ast.TryExpr:
		p.printExpr(e.X, 9, false)
		p.write("?")
	case *ast.CoalesceExpr:
		p.printExpr(e.Left, 0, false)
		p.write(" ?? ")
		p.printExpr(e.Right, 0, false)
	case *ast.AsyncBlockExpr:
		p.write("async:")
		p.indent++
		p.printBlock(e.Body)
		p.indent--
	case *ast.AwaitExpr:
		p.write("await ")
		p.printExpr(e.X, 9, false)
	case *ast.SpawnExpr:
		p.write("spawn ")
		p.printExpr(e.X, 9, false)
	case *ast.BlockExpr:
		p.write(":")
		p.indent++
		p.printBlock(e.Body)
		p.indent--
	case *ast.QuantifierExpr:
		if e.Universal {
			p.write("forall ")
		} else {
			p.write("exists ")
		}
		p.writef("%s in ", e.Var)
		p.printExpr(e.Range, 0, false)
		p.write(": ")
		p.printExpr(e.Body, 0, false)
	case *ast.OldExpr:
		p.writef("old(%s)", e.Name)
	case *ast.ResultExpr:
		p.write("result")
	default:
		p.write("<?>")
	}
}

func (p *CodePrinter) printArgs(args []ast.Arg) {
	p.write("(")
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		if a.Name != "" {
			p.writef("%s: ", a.Name)
		}
		p.printExpr(a.Value, 0, false)
	}
	p.write(")")
}
