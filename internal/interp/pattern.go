package interp

import "github.com/formalang/forma/internal/ast"

// matchPattern attempts to match val against pat. On success it returns the
// bindings pat introduces (evaluated against scope for any pattern guard)
// and true; on failure it returns false with no side effects.
func (i *Interp) matchPattern(pat ast.Pattern, val Value, scope *Env) (map[string]Value, bool) {
	bound, ok := i.matchPatternNoGuard(pat, val, scope)
	if !ok {
		return nil, false
	}
	if guard := patternGuard(pat); guard != nil {
		guardScope := NewEnclosedEnv(scope)
		for k, v := range bound {
			guardScope.Define(k, v)
		}
		gv, err := i.evalExpr(guard, guardScope)
		if err != nil || !truthy(gv) {
			return nil, false
		}
	}
	return bound, true
}

func patternGuard(pat ast.Pattern) ast.Expression {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return p.Guard
	case *ast.LiteralPattern:
		return p.Guard
	case *ast.IdentPattern:
		return p.Guard
	case *ast.TuplePattern:
		return p.Guard
	case *ast.StructPattern:
		return p.Guard
	case *ast.EnumPattern:
		return p.Guard
	case *ast.OrPattern:
		return p.Guard
	case *ast.RangePattern:
		return p.Guard
	case *ast.RefPattern:
		return p.Guard
	}
	return nil
}

func (i *Interp) matchPatternNoGuard(pat ast.Pattern, val Value, scope *Env) (map[string]Value, bool) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return map[string]Value{}, true

	case *ast.LiteralPattern:
		lit, err := i.evalExpr(p.Value, scope)
		if err != nil {
			return nil, false
		}
		return map[string]Value{}, valuesEqual(lit, val)

	case *ast.IdentPattern:
		if p.Name == "none" && val.Kind() == NoneVal {
			return map[string]Value{}, true
		}
		if p.Name == "true" || p.Name == "false" {
			b, ok := val.(Bool)
			return map[string]Value{}, ok && b.Inspect() == p.Name
		}
		out := map[string]Value{p.Name: val}
		if p.Sub != nil {
			sub, ok := i.matchPatternNoGuard(p.Sub, val, scope)
			if !ok {
				return nil, false
			}
			for k, v := range sub {
				out[k] = v
			}
		}
		return out, true

	case *ast.TuplePattern:
		t, ok := val.(Tuple)
		if !ok || len(t.Elements) != len(p.Elements) {
			return nil, false
		}
		out := map[string]Value{}
		for idx, sub := range p.Elements {
			bound, ok := i.matchPatternNoGuard(sub, t.Elements[idx], scope)
			if !ok {
				return nil, false
			}
			for k, v := range bound {
				out[k] = v
			}
		}
		return out, true

	case *ast.StructPattern:
		st, ok := val.(Struct)
		if !ok || (p.TypeName != "" && st.TypeName != p.TypeName) {
			return nil, false
		}
		out := map[string]Value{}
		for _, f := range p.Fields {
			fv, ok := st.Fields[f.Name]
			if !ok {
				return nil, false
			}
			sub := f.Pattern
			if sub == nil {
				out[f.Name] = fv
				continue
			}
			bound, ok := i.matchPatternNoGuard(sub, fv, scope)
			if !ok {
				return nil, false
			}
			for k, v := range bound {
				out[k] = v
			}
		}
		return out, true

	case *ast.EnumPattern:
		e, ok := val.(Enum)
		if !ok || e.VariantName != p.VariantName {
			return nil, false
		}
		if p.EnumName != "" && e.TypeName != p.EnumName {
			return nil, false
		}
		out := map[string]Value{}
		if len(p.TupleElems) > 0 {
			if len(e.TupleElems) != len(p.TupleElems) {
				return nil, false
			}
			for idx, sub := range p.TupleElems {
				bound, ok := i.matchPatternNoGuard(sub, e.TupleElems[idx], scope)
				if !ok {
					return nil, false
				}
				for k, v := range bound {
					out[k] = v
				}
			}
		}
		for _, f := range p.Fields {
			fv, ok := e.Fields[f.Name]
			if !ok {
				return nil, false
			}
			sub := f.Pattern
			if sub == nil {
				out[f.Name] = fv
				continue
			}
			bound, ok := i.matchPatternNoGuard(sub, fv, scope)
			if !ok {
				return nil, false
			}
			for k, v := range bound {
				out[k] = v
			}
		}
		return out, true

	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			if bound, ok := i.matchPatternNoGuard(alt, val, scope); ok {
				return bound, true
			}
		}
		return nil, false

	case *ast.RangePattern:
		lo, err := i.evalExpr(p.Lo, scope)
		if err != nil {
			return nil, false
		}
		hi, err := i.evalExpr(p.Hi, scope)
		if err != nil {
			return nil, false
		}
		return map[string]Value{}, inRange(val, lo, hi, p.Inclusive)

	case *ast.RefPattern:
		return i.matchPatternNoGuard(p.Inner, val, scope)
	}
	return nil, false
}

func valuesEqual(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	return a.Hash() == b.Hash() && a.Inspect() == b.Inspect()
}

func inRange(v, lo, hi Value, inclusive bool) bool {
	vi, ok1 := v.(Int)
	li, ok2 := lo.(Int)
	hi2, ok3 := hi.(Int)
	if ok1 && ok2 && ok3 {
		if inclusive {
			return vi.V >= li.V && vi.V <= hi2.V
		}
		return vi.V >= li.V && vi.V < hi2.V
	}
	vf, ok1 := v.(Float)
	lf, ok2 := lo.(Float)
	hf, ok3 := hi.(Float)
	if ok1 && ok2 && ok3 {
		if inclusive {
			return vf.V >= lf.V && vf.V <= hf.V
		}
		return vf.V >= lf.V && vf.V < hf.V
	}
	return false
}
