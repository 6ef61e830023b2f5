package infer

import (
	"fmt"
	"strings"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/token"
	"github.com/formalang/forma/internal/types"
)

// checkExpr infers an expression's type, reporting mismatches against env
// and the global tables as it goes. It never aborts on error: like the
// parser, it records a diagnostic and keeps going with a best-effort type
// (usually a fresh type variable) so one bad expression doesn't suppress
// every later one in the same function.
func (c *Checker) checkExpr(expr ast.Expression, env *Env) types.Type {
	switch n := expr.(type) {
	case *ast.Identifier:
		if t, ok := env.Lookup(n.Name); ok {
			return t
		}
		if owner, ok := c.Globals.Variants[n.Name]; ok {
			return c.variantType(owner)
		}
		c.Diags.Addf("UNDEFINED_NAME", diagnostics.CatType, n.GetSpan(), c.File, "undefined name %q", n.Name)
		return types.NewTVar("_undef")
	case *ast.PathExpr:
		joined := strings.Join(n.Segments, ".")
		if t, ok := env.Lookup(joined); ok {
			return t
		}
		last := n.Segments[len(n.Segments)-1]
		if t, ok := env.Lookup(last); ok {
			return t
		}
		return types.NewTVar("_path")
	case *ast.IntLit:
		return types.Int
	case *ast.FloatLit:
		return types.Float
	case *ast.BoolLit:
		return types.Bool
	case *ast.CharLit:
		return types.Char
	case *ast.StringLit:
		return types.Str
	case *ast.FStringLit:
		return c.checkExpr(n.Desugared, env)
	case *ast.NoneLit:
		return types.OptionOf(types.NewTVar("_none"))
	case *ast.BinaryExpr:
		return c.checkBinary(n, env)
	case *ast.UnaryExpr:
		operand := c.checkExpr(n.Operand, env)
		if n.Op == "!" {
			return types.Bool
		}
		return operand
	case *ast.CallExpr:
		return c.checkCall(n, env)
	case *ast.FieldAccessExpr:
		return c.checkFieldAccess(n, env)
	case *ast.MethodCallExpr:
		return c.checkMethodCall(n, env)
	case *ast.IndexExpr:
		recv := c.checkExpr(n.Receiver, env)
		c.checkExpr(n.Index, env)
		return elementType(recv)
	case *ast.TupleExpr:
		elems := make([]types.Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = c.checkExpr(e, env)
		}
		return types.TTuple{Elements: elems}
	case *ast.ArrayLit:
		if len(n.Elements) == 0 {
			return types.ListOf(types.NewTVar("_elem"))
		}
		elem := c.checkExpr(n.Elements[0], env)
		for _, e := range n.Elements[1:] {
			c.checkExpr(e, env)
		}
		return types.ListOf(elem)
	case *ast.MapLit:
		if len(n.Entries) == 0 {
			return types.TApp{Constructor: types.TCon{Name: "Map"}, Args: []types.Type{types.NewTVar("_k"), types.NewTVar("_v")}}
		}
		k := c.checkExpr(n.Entries[0].Key, env)
		v := c.checkExpr(n.Entries[0].Value, env)
		for _, e := range n.Entries[1:] {
			c.checkExpr(e.Key, env)
			c.checkExpr(e.Value, env)
		}
		return types.TApp{Constructor: types.TCon{Name: "Map"}, Args: []types.Type{k, v}}
	case *ast.SetLit:
		if len(n.Elements) == 0 {
			return types.TApp{Constructor: types.TCon{Name: "Set"}, Args: []types.Type{types.NewTVar("_elem")}}
		}
		elem := c.checkExpr(n.Elements[0], env)
		for _, e := range n.Elements[1:] {
			c.checkExpr(e, env)
		}
		return types.TApp{Constructor: types.TCon{Name: "Set"}, Args: []types.Type{elem}}
	case *ast.RangeExpr:
		c.checkExpr(n.Lo, env)
		c.checkExpr(n.Hi, env)
		return types.ListOf(types.Int)
	case *ast.IfExpr:
		c.checkExpr(n.Cond, env)
		thenT := c.checkExpr(n.Then, env)
		if n.Else == nil {
			return types.Unit
		}
		elseT := c.checkExpr(n.Else, env)
		if _, err := types.Unify(thenT, elseT); err != nil {
			c.Diags.Addf("TYPE_MISMATCH", diagnostics.CatType, n.GetSpan(), c.File,
				"if branches disagree: %s vs %s", thenT, elseT)
		}
		return thenT
	case *ast.MatchExpr:
		return c.checkMatch(n, env)
	case *ast.ClosureExpr:
		scope := env.Child()
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			pt := types.Type(types.NewTVar("_p" + p.Name))
			if p.Type != nil {
				pt = Convert(p.Type, nil)
			}
			params[i] = pt
			scope.Define(p.Name, pt)
		}
		ret := c.checkExpr(n.Body, scope)
		return types.TFunc{Params: params, ReturnType: ret}
	case *ast.StructLit:
		return c.checkStructLit(n, env)
	case *ast.PipelineExpr:
		return c.checkExpr(n.Desugared, env)
	case *ast.TryExpr:
		inner := c.checkExpr(n.X, env)
		if app, ok := inner.(types.TApp); ok && len(app.Args) >= 1 {
			return app.Args[0]
		}
		return inner
	case *ast.CoalesceExpr:
		left := c.checkExpr(n.Left, env)
		right := c.checkExpr(n.Right, env)
		if app, ok := left.(types.TApp); ok && len(app.Args) >= 1 {
			return app.Args[0]
		}
		return right
	case *ast.AsyncBlockExpr:
		inner := c.checkBlock(n.Body, env)
		return types.TApp{Constructor: types.TCon{Name: "Task"}, Args: []types.Type{inner}}
	case *ast.AwaitExpr:
		t := c.checkExpr(n.X, env)
		if app, ok := t.(types.TApp); ok && len(app.Args) >= 1 {
			return app.Args[0]
		}
		return t
	case *ast.SpawnExpr:
		inner := c.checkExpr(n.X, env)
		return types.TApp{Constructor: types.TCon{Name: "Task"}, Args: []types.Type{inner}}
	case *ast.BlockExpr:
		return c.checkBlock(n.Body, env)
	case *ast.QuantifierExpr:
		scope := env.Child()
		rangeT := c.checkExpr(n.Range, env)
		scope.Define(n.Var, elementType(rangeT))
		c.checkExpr(n.Body, scope)
		return types.Bool
	case *ast.OldExpr:
		if t, ok := env.Lookup("old$" + n.Name); ok {
			return t
		}
		if t, ok := env.Lookup(n.Name); ok {
			return t
		}
		c.Diags.Addf("UNDEFINED_NAME", diagnostics.CatContract, n.GetSpan(), c.File, "old(%s): no such parameter", n.Name)
		return types.NewTVar("_old")
	case *ast.ResultExpr:
		if t, ok := env.Lookup("result"); ok {
			return t
		}
		return types.NewTVar("_result")
	case *ast.ListCompExpr:
		scope := env.Child()
		iterT := c.checkExpr(n.Iter, env)
		c.bindPattern(n.Pattern, elementType(iterT), scope)
		if n.Cond != nil {
			c.checkExpr(n.Cond, scope)
		}
		resT := c.checkExpr(n.Result, scope)
		return types.ListOf(resT)
	}
	return types.NewTVar("_unknown")
}

func (c *Checker) variantType(owner VariantOwner) types.Type {
	args := make([]types.Type, len(owner.Enum.Generics))
	for i, g := range owner.Enum.Generics {
		args[i] = types.NewTVar(g)
	}
	con := types.TCon{Name: owner.Enum.Name}
	if len(args) == 0 {
		return con
	}
	return types.TApp{Constructor: con, Args: args}
}

func (c *Checker) checkBinary(n *ast.BinaryExpr, env *Env) types.Type {
	l := c.checkExpr(n.Left, env)
	r := c.checkExpr(n.Right, env)
	switch n.Op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return types.Bool
	case "++":
		return l
	default:
		if _, err := types.Unify(l, r); err != nil {
			if lc, lok := l.(types.TCon); lok && lc.Name == "Int" {
				if rc, rok := r.(types.TCon); rok && rc.Name == "Float" {
					return types.Float
				}
			}
		}
		return l
	}
}

func (c *Checker) checkCall(n *ast.CallExpr, env *Env) types.Type {
	if ident, ok := n.Callee.(*ast.Identifier); ok {
		if owner, ok := c.Globals.Variants[ident.Name]; ok {
			c.checkArgs(n.Args, env)
			return c.variantType(owner)
		}
		if _, ok := c.Globals.Structs[ident.Name]; ok {
			c.checkArgs(n.Args, env)
			return types.TCon{Name: ident.Name}
		}
	}
	calleeT := c.checkExpr(n.Callee, env)
	if fn, ok := calleeT.(types.TFunc); ok {
		return instantiateReturn(fn, n.Args, env, c, n.GetSpan())
	}
	c.checkArgs(n.Args, env)
	return types.NewTVar("_callresult")
}

func (c *Checker) checkArgs(args []ast.Arg, env *Env) {
	for _, a := range args {
		c.checkExpr(a.Value, env)
	}
}

// instantiateReturn unifies the callee's declared parameter types against
// the actual argument types, producing the substitution used to specialize
// the return type for this call site -- the whole of the "generic
// instantiation" work this checker performs instead of full HM inference.
// Once the substitution settles, every where-clause constraint the callee
// carries is checked against that instantiation (spec's trait-bound-checking
// requirement: an obligation recorded at signature-conversion time must
// actually hold once the generic is resolved to a concrete type).
func instantiateReturn(fn types.TFunc, args []ast.Arg, env *Env, c *Checker, span token.Span) types.Type {
	subst := types.Subst{}
	for i, a := range args {
		if i >= len(fn.Params) {
			break
		}
		argT := c.checkExpr(a.Value, env)
		s, err := types.Unify(fn.Params[i].Apply(subst), argT)
		if err == nil {
			subst = types.Compose(subst, s)
		}
	}
	c.checkConstraints(fn.Constraints, subst, span)
	return fn.ReturnType.Apply(subst)
}

// checkConstraints verifies every recorded where-clause obligation holds for
// the type a generic parameter was instantiated to at this call site.
func (c *Checker) checkConstraints(constraints []types.Constraint, subst types.Subst, span token.Span) {
	for _, con := range constraints {
		resolved, ok := subst[con.TypeVar]
		if !ok {
			continue // never instantiated at this call site (unused generic)
		}
		name := typeConName(resolved)
		if name == "" {
			continue // still a variable/unresolved shape -- nothing to falsify
		}
		if !c.traitImplementedFor(name, con.Trait) {
			c.Diags.Addf("TRAIT_BOUND_NOT_SATISFIED", diagnostics.CatType, span, c.File,
				"%s does not implement %s", resolved, con.Trait)
		}
	}
}

func (c *Checker) traitImplementedFor(typeName, traitName string) bool {
	for _, impl := range c.Globals.Impls {
		if impl.TraitRef != traitName {
			continue
		}
		if nt, ok := impl.SelfType.(*ast.NamedType); ok && nt.Name == typeName {
			return true
		}
	}
	return false
}

func typeConName(t types.Type) string {
	switch tt := t.(type) {
	case types.TCon:
		return tt.Name
	case types.TApp:
		if con, ok := tt.Constructor.(types.TCon); ok {
			return con.Name
		}
	}
	return ""
}

func (c *Checker) checkFieldAccess(n *ast.FieldAccessExpr, env *Env) types.Type {
	recvT := c.checkExpr(n.Receiver, env)
	con, ok := recvT.(types.TCon)
	if !ok {
		if app, ok := recvT.(types.TApp); ok {
			con, ok = app.Constructor.(types.TCon)
			if !ok {
				return types.NewTVar("_field")
			}
		} else {
			return types.NewTVar("_field")
		}
	}
	st, ok := c.Globals.Structs[con.Name]
	if !ok {
		return types.NewTVar("_field")
	}
	generics := genericSet(st.Generics)
	for _, f := range st.Fields {
		if f.Name == n.Field {
			return Convert(f.Type, generics)
		}
	}
	c.Diags.Addf("UNKNOWN_FIELD", diagnostics.CatType, n.GetSpan(), c.File, "%s has no field %q", con.Name, n.Field)
	return types.NewTVar("_field")
}

func (c *Checker) checkMethodCall(n *ast.MethodCallExpr, env *Env) types.Type {
	recvT := c.checkExpr(n.Receiver, env)
	for _, a := range n.Args {
		c.checkExpr(a.Value, env)
	}
	con, ok := recvT.(types.TCon)
	if !ok {
		if app, ok := recvT.(types.TApp); ok {
			con, _ = app.Constructor.(types.TCon)
		}
	}
	if con.Name == "" {
		// receiver type never resolved (unbound generic, earlier error) --
		// reporting unknown-method here would just pile on a second
		// diagnostic for the same root cause.
		return types.NewTVar("_method")
	}
	var matches []*ast.Function
	for _, impl := range c.Globals.Impls {
		named, ok := impl.SelfType.(*ast.NamedType)
		if !ok || named.Name != con.Name {
			continue
		}
		for _, m := range impl.Methods {
			if m.Name == n.Method {
				matches = append(matches, m)
			}
		}
	}
	switch len(matches) {
	case 0:
		c.Diags.Addf("UNKNOWN_METHOD", diagnostics.CatType, n.GetSpan(), c.File,
			"%s has no method %q", con.Name, n.Method)
		return types.NewTVar("_method")
	case 1:
		return FuncSignature(matches[0]).ReturnType
	default:
		c.Diags.Addf("AMBIGUOUS_METHOD", diagnostics.CatType, n.GetSpan(), c.File,
			"%d trait methods named %q apply to %s", len(matches), n.Method, con.Name)
		return FuncSignature(matches[0]).ReturnType
	}
}

func (c *Checker) checkStructLit(n *ast.StructLit, env *Env) types.Type {
	if n.BaseExpr != nil {
		c.checkExpr(n.BaseExpr, env)
	}
	st, ok := c.Globals.Structs[n.TypeName]
	generics := map[string]bool{}
	if ok {
		generics = genericSet(st.Generics)
	}
	for _, f := range n.Fields {
		argT := c.checkExpr(f.Value, env)
		if ok {
			for _, decl := range st.Fields {
				if decl.Name == f.Name {
					declared := Convert(decl.Type, generics)
					if _, err := types.Unify(declared, argT); err != nil {
						c.Diags.Addf("TYPE_MISMATCH", diagnostics.CatType, n.GetSpan(), c.File,
							"%s.%s: expected %s, got %s", n.TypeName, f.Name, declared, argT)
					}
				}
			}
		}
	}
	if !ok || len(st.Generics) == 0 {
		return types.TCon{Name: n.TypeName}
	}
	args := make([]types.Type, len(st.Generics))
	for i, g := range st.Generics {
		args[i] = types.NewTVar(g)
	}
	return types.TApp{Constructor: types.TCon{Name: n.TypeName}, Args: args}
}

func (c *Checker) checkMatch(n *ast.MatchExpr, env *Env) types.Type {
	scrutT := c.checkExpr(n.Scrutinee, env)
	var result types.Type
	for idx, arm := range n.Arms {
		scope := env.Child()
		c.bindMatchPattern(arm.Pattern, scrutT, scope)
		if arm.Guard != nil {
			c.checkExpr(arm.Guard, scope)
		}
		armT := c.checkExpr(arm.Body, scope)
		if idx == 0 {
			result = armT
			continue
		}
		if _, err := types.Unify(result, armT); err != nil {
			c.Diags.Addf("TYPE_MISMATCH", diagnostics.CatType, arm.Body.GetSpan(), c.File,
				"match arm type %s does not match earlier arm type %s", armT, result)
		}
	}
	c.checkExhaustiveness(n, scrutT)
	if result == nil {
		return types.Unit
	}
	return result
}

func (c *Checker) bindMatchPattern(p ast.Pattern, scrutT types.Type, env *Env) {
	switch pat := p.(type) {
	case *ast.IdentPattern:
		env.Define(pat.Name, scrutT)
		if pat.Sub != nil {
			c.bindMatchPattern(pat.Sub, scrutT, env)
		}
	case *ast.TuplePattern:
		c.bindPattern(pat, scrutT, env)
	case *ast.StructPattern:
		st, ok := c.Globals.Structs[pat.TypeName]
		generics := map[string]bool{}
		if ok {
			generics = genericSet(st.Generics)
		}
		for _, fp := range pat.Fields {
			var ft types.Type = types.NewTVar("_f")
			if ok {
				for _, decl := range st.Fields {
					if decl.Name == fp.Name {
						ft = Convert(decl.Type, generics)
					}
				}
			}
			if fp.Pattern != nil {
				c.bindMatchPattern(fp.Pattern, ft, env)
			} else {
				env.Define(fp.Name, ft)
			}
		}
	case *ast.EnumPattern:
		owner, ok := c.Globals.Variants[pat.VariantName]
		for i, sub := range pat.TupleElems {
			var et types.Type = types.NewTVar("_e")
			if ok && i < len(owner.Variant.TupleTypes) {
				et = Convert(owner.Variant.TupleTypes[i], genericSet(owner.Enum.Generics))
			}
			c.bindMatchPattern(sub, et, env)
		}
		for _, fp := range pat.Fields {
			var ft types.Type = types.NewTVar("_f")
			if ok {
				for _, decl := range owner.Variant.Fields {
					if decl.Name == fp.Name {
						ft = Convert(decl.Type, genericSet(owner.Enum.Generics))
					}
				}
			}
			if fp.Pattern != nil {
				c.bindMatchPattern(fp.Pattern, ft, env)
			} else {
				env.Define(fp.Name, ft)
			}
		}
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			c.bindMatchPattern(alt, scrutT, env)
		}
	case *ast.RefPattern:
		c.bindMatchPattern(pat.Inner, scrutT, env)
	case *ast.WildcardPattern, *ast.LiteralPattern, *ast.RangePattern:
	}
}

// checkExhaustiveness reports a single witness-style diagnostic when an enum
// match is missing variants, grounded on the teacher's declarations-pattern
// exhaustiveness pass: collect the enum's declared variant set, subtract the
// ones a concrete EnumPattern (or an Ident/Wildcard catch-all) covers, and
// name the first uncovered variant as a witness rather than enumerating
// every missing case.
func (c *Checker) checkExhaustiveness(n *ast.MatchExpr, scrutT types.Type) {
	var enumName string
	switch t := scrutT.(type) {
	case types.TCon:
		enumName = t.Name
	case types.TApp:
		if con, ok := t.Constructor.(types.TCon); ok {
			enumName = con.Name
		}
	}
	en, ok := c.Globals.Enums[enumName]
	if !ok {
		return
	}
	covered := map[string]bool{}
	catchAll := false
	for _, arm := range n.Arms {
		markCovered(arm.Pattern, covered, &catchAll)
	}
	if catchAll {
		return
	}
	for _, v := range en.Variants {
		if !covered[v.Name] {
			c.Diags.Addf("NON_EXHAUSTIVE_MATCH", diagnostics.CatType, n.GetSpan(), c.File,
				"match on %s is not exhaustive: missing variant %s", enumName, witnessPattern(v))
			return
		}
	}
}

// witnessPattern renders a concrete example of the pattern a missing
// variant would need, with one wildcard per payload slot, so a
// NON_EXHAUSTIVE_MATCH diagnostic reads like `Rect(_, _)` rather than just
// the bare variant name.
func witnessPattern(v ast.Variant) string {
	switch v.Kind {
	case ast.TupleVariant:
		placeholders := make([]string, len(v.TupleTypes))
		for i := range placeholders {
			placeholders[i] = "_"
		}
		return fmt.Sprintf("%s(%s)", v.Name, strings.Join(placeholders, ", "))
	case ast.RecordVariant:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.Name + ": _"
		}
		return fmt.Sprintf("%s { %s }", v.Name, strings.Join(parts, ", "))
	default:
		return v.Name
	}
}

func markCovered(p ast.Pattern, covered map[string]bool, catchAll *bool) {
	switch pat := p.(type) {
	case *ast.EnumPattern:
		covered[pat.VariantName] = true
	case *ast.WildcardPattern:
		*catchAll = true
	case *ast.IdentPattern:
		if pat.Sub != nil {
			markCovered(pat.Sub, covered, catchAll)
		} else {
			*catchAll = true
		}
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			markCovered(alt, covered, catchAll)
		}
	case *ast.RefPattern:
		markCovered(pat.Inner, covered, catchAll)
	}
}
