package infer

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/types"
)

// Checker type-checks every function body in a program against the
// global signatures BuildGlobals collected, reporting CatType diagnostics
// the way internal/parser's Parser reports CatParse ones.
type Checker struct {
	Globals *Globals
	Diags   diagnostics.Bag
	File    string
}

func NewChecker(file string, g *Globals) *Checker {
	return &Checker{Globals: g, File: file}
}

// CheckProgram type-checks every function declared at top level (recursing
// into impls' methods), skipping items BuildGlobals already fully resolved
// (structs/enums/traits carry no executable body to check).
func (c *Checker) CheckProgram(items []ast.Statement) {
	for _, item := range items {
		c.checkItem(item)
	}
	c.checkTraitImpls()
}

// checkTraitImpls verifies every `i Trait for SelfType` block supplies all
// of the trait's required (non-default) methods with a compatible arity.
// Unlike checkItem's per-method body check, this runs once over the whole
// program since a trait's required-method set only depends on BuildGlobals,
// not on any one function's body.
func (c *Checker) checkTraitImpls() {
	for _, impl := range c.Globals.Impls {
		if impl.TraitRef == "" {
			continue
		}
		tr, ok := c.Globals.Traits[impl.TraitRef]
		if !ok {
			continue
		}
		selfName := ""
		if nt, ok := impl.SelfType.(*ast.NamedType); ok {
			selfName = nt.Name
		}
		have := map[string]*ast.Function{}
		for _, m := range impl.Methods {
			have[m.Name] = m
		}
		for _, req := range tr.Methods {
			if req.Default != nil {
				continue
			}
			got, ok := have[req.Name]
			if !ok {
				c.Diags.Addf("MISSING_TRAIT_METHOD", diagnostics.CatType, impl.GetSpan(), c.File,
					"impl %s for %s is missing required method %s", impl.TraitRef, selfName, req.Name)
				continue
			}
			if len(got.Params) != len(req.Params) {
				c.Diags.Addf("TRAIT_METHOD_SIGNATURE_MISMATCH", diagnostics.CatType, got.GetSpan(), c.File,
					"%s.%s has %d parameter(s), trait %s declares %d", selfName, req.Name, len(got.Params), impl.TraitRef, len(req.Params))
			}
		}
	}
}

func (c *Checker) checkItem(item ast.Statement) {
	switch n := item.(type) {
	case *ast.Function:
		c.checkFunction(n)
	case *ast.Impl:
		for _, m := range n.Methods {
			c.checkFunction(m)
		}
	case *ast.AttributedItem:
		c.checkItem(n.Item)
	}
}

func (c *Checker) checkFunction(fn *ast.Function) {
	sig := FuncSignature(fn)
	env := NewEnv(c.Globals)
	for idx, p := range fn.Params {
		env.Define(p.Name, sig.Params[idx])
	}
	if fn.IsMethod {
		env.Define("self", types.TCon{Name: "Self"})
	}
	for _, pre := range fn.Preconditions {
		c.checkExpr(pre.Expr, env)
	}
	if fn.Body == nil {
		return
	}
	bodyType := c.checkBlock(fn.Body, env)
	if sig.ReturnType != nil && !isUnit(sig.ReturnType) {
		if _, err := types.Unify(sig.ReturnType, bodyType); err != nil {
			c.Diags.Addf("TYPE_MISMATCH", diagnostics.CatType, fn.GetSpan(), c.File,
				"function %s: body type %s does not match declared return type %s", fn.Name, bodyType, sig.ReturnType)
		}
	}
	if len(fn.Postconditions) > 0 {
		post := env.Child()
		post.Define("result", sig.ReturnType)
		for _, p := range fn.Params {
			post.Define("old$"+p.Name, env.vars[p.Name])
		}
		for _, postc := range fn.Postconditions {
			c.checkExpr(postc.Expr, post)
		}
	}
}

func isUnit(t types.Type) bool {
	con, ok := t.(types.TCon)
	return ok && con.Name == "Unit"
}

func (c *Checker) checkBlock(b *ast.Block, env *Env) types.Type {
	scope := env.Child()
	var last types.Type = types.Unit
	for _, stmt := range b.Statements {
		last = c.checkStatement(stmt, scope)
	}
	return last
}

func (c *Checker) checkStatement(stmt ast.Statement, env *Env) types.Type {
	switch n := stmt.(type) {
	case *ast.ExprStatement:
		return c.checkExpr(n.X, env)
	case *ast.LetStatement:
		vt := c.checkExpr(n.Value, env)
		if n.TypeAnnotation != nil {
			declared := Convert(n.TypeAnnotation, nil)
			if _, err := types.Unify(declared, vt); err != nil {
				c.Diags.Addf("TYPE_MISMATCH", diagnostics.CatType, n.GetSpan(), c.File,
					"let %s: initializer type %s does not match annotation %s", n.Name, vt, declared)
			}
			vt = declared
		}
		if n.Name != "" {
			env.Define(n.Name, vt)
		}
		return types.Unit
	case *ast.AssignStatement:
		c.checkExpr(n.Value, env)
		if n.Target != nil {
			c.checkExpr(n.Target, env)
		}
		return types.Unit
	case *ast.ReturnStatement:
		if n.Value != nil {
			return c.checkExpr(n.Value, env)
		}
		return types.Unit
	case *ast.BreakStatement:
		if n.Value != nil {
			return c.checkExpr(n.Value, env)
		}
		return types.Unit
	case *ast.ContinueStatement:
		return types.Unit
	case *ast.WhileStatement:
		c.checkExpr(n.Cond, env)
		c.checkBlock(n.Body, env)
		return types.Unit
	case *ast.LoopStatement:
		return c.checkBlock(n.Body, env)
	case *ast.ForStatement:
		iterT := c.checkExpr(n.Iter, env)
		bodyEnv := env.Child()
		c.bindPattern(n.Pattern, elementType(iterT), bodyEnv)
		c.checkBlock(n.Body, bodyEnv)
		return types.Unit
	case *ast.Function:
		env.Define(n.Name, FuncSignature(n))
		return types.Unit
	case *ast.AttributedItem:
		return c.checkStatement(n.Item, env)
	case *ast.Block:
		return c.checkBlock(n, env)
	}
	return types.Unit
}

func elementType(t types.Type) types.Type {
	if app, ok := t.(types.TApp); ok && len(app.Args) >= 1 {
		return app.Args[0]
	}
	return types.NewTVar("_elem")
}

func (c *Checker) bindPattern(p ast.Pattern, t types.Type, env *Env) {
	switch pat := p.(type) {
	case *ast.IdentPattern:
		env.Define(pat.Name, t)
	case *ast.TuplePattern:
		tup, ok := t.(types.TTuple)
		for idx, sub := range pat.Elements {
			elemT := types.Type(types.NewTVar("_t"))
			if ok && idx < len(tup.Elements) {
				elemT = tup.Elements[idx]
			}
			c.bindPattern(sub, elemT, env)
		}
	case *ast.WildcardPattern:
	case *ast.RefPattern:
		c.bindPattern(pat.Inner, t, env)
	}
}
