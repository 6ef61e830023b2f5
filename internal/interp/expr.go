package interp

import (
	"fmt"
	"strings"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/token"
)

func (i *Interp) evalExpr(expr ast.Expression, scope *Env) (Value, error) {
	switch n := expr.(type) {
	case *ast.Identifier:
		if v, ok := scope.Get(n.Name); ok {
			return v, nil
		}
		return nil, newErr(ErrUndefinedName, n.GetSpan(), "undefined name %q", n.Name)

	case *ast.PathExpr:
		name := strings.Join(n.Segments, ".")
		if v, ok := scope.Get(name); ok {
			return v, nil
		}
		// fall back to resolving the last segment (e.g. `math.sqrt` where
		// the module loader already flattened imports into scope by name).
		if v, ok := scope.Get(n.Segments[len(n.Segments)-1]); ok {
			return v, nil
		}
		return nil, newErr(ErrUndefinedName, n.GetSpan(), "undefined path %q", name)

	case *ast.IntLit:
		return Int{V: n.Value}, nil
	case *ast.FloatLit:
		return Float{V: n.Value}, nil
	case *ast.BoolLit:
		return Bool{V: n.Value}, nil
	case *ast.CharLit:
		return Char{V: n.Value}, nil
	case *ast.StringLit:
		return Str{V: n.Value}, nil
	case *ast.NoneLit:
		return None{}, nil

	case *ast.FStringLit:
		return i.evalExpr(n.Desugared, scope)

	case *ast.BinaryExpr:
		return i.evalBinary(n, scope)

	case *ast.UnaryExpr:
		return i.evalUnary(n, scope)

	case *ast.CallExpr:
		return i.evalCall(n, scope)

	case *ast.FieldAccessExpr:
		return i.evalFieldAccess(n, scope)

	case *ast.MethodCallExpr:
		return i.evalMethodCall(n, scope)

	case *ast.IndexExpr:
		return i.evalIndex(n, scope)

	case *ast.TupleExpr:
		elems := make([]Value, len(n.Elements))
		for idx, e := range n.Elements {
			v, err := i.evalExpr(e, scope)
			if err != nil {
				return nil, err
			}
			elems[idx] = v
		}
		return Tuple{Elements: elems}, nil

	case *ast.ArrayLit:
		elems := make([]Value, len(n.Elements))
		for idx, e := range n.Elements {
			v, err := i.evalExpr(e, scope)
			if err != nil {
				return nil, err
			}
			elems[idx] = v
		}
		return List{Elements: elems}, nil

	case *ast.MapLit:
		m := Map{}
		for _, e := range n.Entries {
			k, err := i.evalExpr(e.Key, scope)
			if err != nil {
				return nil, err
			}
			v, err := i.evalExpr(e.Value, scope)
			if err != nil {
				return nil, err
			}
			m = m.Set(k, v)
		}
		return m, nil

	case *ast.SetLit:
		var s Set
		for _, e := range n.Elements {
			v, err := i.evalExpr(e, scope)
			if err != nil {
				return nil, err
			}
			if !s.Has(v) {
				s.Elements = append(s.Elements, v)
			}
		}
		return s, nil

	case *ast.RangeExpr:
		lo, err := i.evalExpr(n.Lo, scope)
		if err != nil {
			return nil, err
		}
		hi, err := i.evalExpr(n.Hi, scope)
		if err != nil {
			return nil, err
		}
		return rangeToList(lo, hi, n.Inclusive)

	case *ast.IfExpr:
		cond, err := i.evalExpr(n.Cond, scope)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return i.evalExpr(n.Then, scope)
		}
		if n.Else != nil {
			return i.evalExpr(n.Else, scope)
		}
		return Unit{}, nil

	case *ast.MatchExpr:
		return i.evalMatch(n, scope)

	case *ast.ClosureExpr:
		return Func{Decl: closureAsFunction(n), Env: scope}, nil

	case *ast.StructLit:
		return i.evalStructLit(n, scope)

	case *ast.PipelineExpr:
		return i.evalExpr(n.Desugared, scope)

	case *ast.TryExpr:
		return i.evalTry(n, scope)

	case *ast.CoalesceExpr:
		l, err := i.evalExpr(n.Left, scope)
		if err != nil {
			return nil, err
		}
		if l.Kind() != NoneVal {
			return l, nil
		}
		return i.evalExpr(n.Right, scope)

	case *ast.AsyncBlockExpr:
		return i.evalAsync(n, scope)

	case *ast.AwaitExpr:
		return i.evalAwait(n, scope)

	case *ast.SpawnExpr:
		return i.evalAsync(&ast.AsyncBlockExpr{Body: bodyOf(n.X)}, scope)

	case *ast.BlockExpr:
		return i.evalBlock(n.Body, scope)

	case *ast.QuantifierExpr:
		return i.evalQuantifier(n, scope)

	case *ast.OldExpr:
		if v, ok := scope.Old(n.Name); ok {
			return v, nil
		}
		return nil, newErr(ErrUndefinedName, n.GetSpan(), "old(%s) has no recorded value", n.Name)

	case *ast.ResultExpr:
		if v, ok := scope.Get("result"); ok {
			return v, nil
		}
		return nil, newErr(ErrUndefinedName, n.GetSpan(), "result is only valid in a postcondition")

	case *ast.ListCompExpr:
		return i.evalListComp(n, scope)
	}
	return nil, newErr(ErrHostFailure, expr.GetSpan(), "unsupported expression %T", expr)
}

func bodyOf(x ast.Expression) *ast.Block {
	if be, ok := x.(*ast.BlockExpr); ok {
		return be.Body
	}
	return &ast.Block{Statements: []ast.Statement{&ast.ExprStatement{X: x}}}
}

// closureAsFunction adapts a ClosureExpr into the ast.Function shape
// CallFunction already knows how to invoke.
func closureAsFunction(c *ast.ClosureExpr) *ast.Function {
	body := bodyOf(c.Body)
	if _, isBlock := c.Body.(*ast.BlockExpr); !isBlock {
		body = &ast.Block{Statements: []ast.Statement{&ast.ReturnStatement{Value: c.Body}}}
	}
	return &ast.Function{Name: "<closure>", Params: c.Params, Body: body}
}

func (i *Interp) evalListComp(n *ast.ListCompExpr, scope *Env) (Value, error) {
	iterVal, err := i.evalExpr(n.Iter, scope)
	if err != nil {
		return nil, err
	}
	elems, err := toIterable(iterVal)
	if err != nil {
		return nil, err
	}
	var out []Value
	for _, elem := range elems {
		iterScope := NewEnclosedEnv(scope)
		bound, ok := i.matchPattern(n.Pattern, elem, iterScope)
		if !ok {
			continue
		}
		for k, v := range bound {
			iterScope.Define(k, v)
		}
		if n.Cond != nil {
			cv, err := i.evalExpr(n.Cond, iterScope)
			if err != nil {
				return nil, err
			}
			if !truthy(cv) {
				continue
			}
		}
		rv, err := i.evalExpr(n.Result, iterScope)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return List{Elements: out}, nil
}

func (i *Interp) evalQuantifier(n *ast.QuantifierExpr, scope *Env) (Value, error) {
	rangeVal, err := i.evalExpr(n.Range, scope)
	if err != nil {
		return nil, err
	}
	elems, err := toIterable(rangeVal)
	if err != nil {
		return nil, err
	}
	for _, elem := range elems {
		qScope := NewEnclosedEnv(scope)
		qScope.Define(n.Var, elem)
		v, err := i.evalExpr(n.Body, qScope)
		if err != nil {
			return nil, err
		}
		if n.Universal && !truthy(v) {
			return Bool{V: false}, nil
		}
		if !n.Universal && truthy(v) {
			return Bool{V: true}, nil
		}
	}
	return Bool{V: n.Universal}, nil
}

// earlyReturn unwinds an in-progress call when `expr?` hits a None/Err,
// carried through the normal (Value, error) return channel so every
// intermediate evalExpr/evalStatement call propagates it automatically.
type earlyReturn struct{ Value Value }

func (e *earlyReturn) Error() string { return "early return: " + e.Value.Inspect() }

func (i *Interp) evalTry(n *ast.TryExpr, scope *Env) (Value, error) {
	v, err := i.evalExpr(n.X, scope)
	if err != nil {
		return nil, err
	}
	if v.Kind() == NoneVal {
		return nil, &earlyReturn{Value: None{}}
	}
	if e, ok := v.(Enum); ok && e.VariantName == "Err" {
		return nil, &earlyReturn{Value: e}
	}
	if e, ok := v.(Enum); ok && e.VariantName == "Ok" && len(e.TupleElems) == 1 {
		return e.TupleElems[0], nil
	}
	return v, nil
}

func (i *Interp) evalStructLit(n *ast.StructLit, scope *Env) (Value, error) {
	fields := map[string]Value{}
	if n.BaseExpr != nil {
		base, err := i.evalExpr(n.BaseExpr, scope)
		if err != nil {
			return nil, err
		}
		if st, ok := base.(Struct); ok {
			for k, v := range st.Fields {
				fields[k] = v
			}
		}
	}
	for _, f := range n.Fields {
		v, err := i.evalExpr(f.Value, scope)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = v
	}
	if decl, ok := i.Structs[n.TypeName]; ok {
		for _, f := range decl.Fields {
			if _, ok := fields[f.Name]; !ok && f.Default != nil {
				v, err := i.evalExpr(f.Default, scope)
				if err != nil {
					return nil, err
				}
				fields[f.Name] = v
			}
		}
	}
	return Struct{TypeName: n.TypeName, Fields: fields}, nil
}

func (i *Interp) evalMatch(n *ast.MatchExpr, scope *Env) (Value, error) {
	scrutinee, err := i.evalExpr(n.Scrutinee, scope)
	if err != nil {
		return nil, err
	}
	for _, arm := range n.Arms {
		armScope := NewEnclosedEnv(scope)
		bound, ok := i.matchPattern(arm.Pattern, scrutinee, armScope)
		if !ok {
			continue
		}
		for k, v := range bound {
			armScope.Define(k, v)
		}
		if arm.Guard != nil {
			gv, err := i.evalExpr(arm.Guard, armScope)
			if err != nil {
				return nil, err
			}
			if !truthy(gv) {
				continue
			}
		}
		return i.evalExpr(arm.Body, armScope)
	}
	return nil, newErr(ErrNoMatchingArm, n.GetSpan(), "no match arm matched %s", scrutinee.Inspect())
}

func (i *Interp) evalFieldAccess(n *ast.FieldAccessExpr, scope *Env) (Value, error) {
	recv, err := i.evalExpr(n.Receiver, scope)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case Struct:
		if v, ok := r.Fields[n.Field]; ok {
			return v, nil
		}
		return nil, newErr(ErrUnknownField, n.GetSpan(), "struct %s has no field %q", r.TypeName, n.Field)
	case Enum:
		if v, ok := r.Fields[n.Field]; ok {
			return v, nil
		}
		return nil, newErr(ErrUnknownField, n.GetSpan(), "%s.%s has no field %q", r.TypeName, r.VariantName, n.Field)
	case Tuple:
		var idx int
		if _, err := fmt.Sscanf(n.Field, "%d", &idx); err == nil && idx >= 0 && idx < len(r.Elements) {
			return r.Elements[idx], nil
		}
	}
	return nil, newErr(ErrUnknownField, n.GetSpan(), "cannot access field %q on %s", n.Field, recv.Kind())
}

func (i *Interp) evalIndex(n *ast.IndexExpr, scope *Env) (Value, error) {
	recv, err := i.evalExpr(n.Receiver, scope)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(n.Index, scope)
	if err != nil {
		return nil, err
	}
	switch base := recv.(type) {
	case List:
		ix, ok := idx.(Int)
		if !ok || ix.V < 0 || int(ix.V) >= len(base.Elements) {
			return nil, newErr(ErrIndexOutOfBounds, n.GetSpan(), "list index %v out of bounds", idx.Inspect())
		}
		return base.Elements[ix.V], nil
	case Map:
		if v, ok := base.Get(idx); ok {
			return v, nil
		}
		return nil, newErr(ErrKeyNotFound, n.GetSpan(), "key %s not found", idx.Inspect())
	case Str:
		ix, ok := idx.(Int)
		runes := []rune(base.V)
		if !ok || ix.V < 0 || int(ix.V) >= len(runes) {
			return nil, newErr(ErrIndexOutOfBounds, n.GetSpan(), "string index out of bounds")
		}
		return Char{V: runes[ix.V]}, nil
	case Tuple:
		ix, ok := idx.(Int)
		if !ok || ix.V < 0 || int(ix.V) >= len(base.Elements) {
			return nil, newErr(ErrIndexOutOfBounds, n.GetSpan(), "tuple index out of bounds")
		}
		return base.Elements[ix.V], nil
	}
	return nil, newErr(ErrNotCallable, n.GetSpan(), "value of kind %s is not indexable", recv.Kind())
}

func rangeToList(lo, hi Value, inclusive bool) (Value, error) {
	l, ok1 := lo.(Int)
	h, ok2 := hi.(Int)
	if !ok1 || !ok2 {
		return nil, newErr(ErrNotCallable, token.Span{}, "range bounds must be Int")
	}
	end := h.V
	if inclusive {
		end++
	}
	var elems []Value
	for v := l.V; v < end; v++ {
		elems = append(elems, Int{V: v})
	}
	return List{Elements: elems}, nil
}
