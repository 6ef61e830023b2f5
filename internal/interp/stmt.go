package interp

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/token"
)

// evalBlock runs each statement in a fresh enclosed scope, returning a
// signal Value (ReturnSignal/BreakSignal/ContinueSignal) the moment one
// surfaces, otherwise the last expression statement's value.
func (i *Interp) evalBlock(b *ast.Block, outer *Env) (Value, error) {
	scope := NewEnclosedEnv(outer)
	var last Value = Unit{}
	for _, stmt := range b.Statements {
		v, err := i.evalStatement(stmt, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(v) {
			return v, nil
		}
		last = v
	}
	return last, nil
}

func (i *Interp) evalStatement(stmt ast.Statement, scope *Env) (Value, error) {
	switch n := stmt.(type) {
	case *ast.ExprStatement:
		return i.evalExpr(n.X, scope)

	case *ast.LetStatement:
		val, err := i.evalExpr(n.Value, scope)
		if err != nil {
			return nil, err
		}
		if n.Pattern != nil {
			bound, ok := i.matchPattern(n.Pattern, val, scope)
			if !ok {
				return nil, newErr(ErrNoMatchingArm, n.GetSpan(), "let pattern did not match")
			}
			for k, v := range bound {
				scope.Define(k, v)
			}
			return Unit{}, nil
		}
		scope.Define(n.Name, val)
		return Unit{}, nil

	case *ast.AssignStatement:
		return i.evalAssign(n, scope)

	case *ast.ReturnStatement:
		var v Value = Unit{}
		if n.Value != nil {
			var err error
			v, err = i.evalExpr(n.Value, scope)
			if err != nil {
				return nil, err
			}
		}
		return ReturnSignal{Value: v}, nil

	case *ast.BreakStatement:
		var v Value = Unit{}
		if n.Value != nil {
			var err error
			v, err = i.evalExpr(n.Value, scope)
			if err != nil {
				return nil, err
			}
		}
		return BreakSignal{Value: v}, nil

	case *ast.ContinueStatement:
		return ContinueSignal{}, nil

	case *ast.WhileStatement:
		for {
			cond, err := i.evalExpr(n.Cond, scope)
			if err != nil {
				return nil, err
			}
			if !truthy(cond) {
				break
			}
			v, err := i.evalBlock(n.Body, scope)
			if err != nil {
				return nil, err
			}
			if bs, ok := v.(BreakSignal); ok {
				return bs.Value, nil
			}
			if rs, ok := v.(ReturnSignal); ok {
				return rs, nil
			}
		}
		return Unit{}, nil

	case *ast.LoopStatement:
		for {
			v, err := i.evalBlock(n.Body, scope)
			if err != nil {
				return nil, err
			}
			if bs, ok := v.(BreakSignal); ok {
				return bs.Value, nil
			}
			if rs, ok := v.(ReturnSignal); ok {
				return rs, nil
			}
		}

	case *ast.ForStatement:
		iterVal, err := i.evalExpr(n.Iter, scope)
		if err != nil {
			return nil, err
		}
		elems, err := toIterable(iterVal)
		if err != nil {
			return nil, err
		}
		for _, elem := range elems {
			iterScope := NewEnclosedEnv(scope)
			bound, ok := i.matchPattern(n.Pattern, elem, iterScope)
			if !ok {
				continue
			}
			for k, v := range bound {
				iterScope.Define(k, v)
			}
			v, err := i.evalBlock(n.Body, iterScope)
			if err != nil {
				return nil, err
			}
			if bs, ok := v.(BreakSignal); ok {
				return bs.Value, nil
			}
			if rs, ok := v.(ReturnSignal); ok {
				return rs, nil
			}
		}
		return Unit{}, nil

	case *ast.Function:
		scope.Define(n.Name, Func{Decl: n, Env: scope})
		return Unit{}, nil

	case *ast.AttributedItem:
		return i.evalStatement(n.Item, scope)

	case *ast.Block:
		return i.evalBlock(n, scope)
	}
	return nil, newErr(ErrHostFailure, stmt.GetSpan(), "unsupported statement %T", stmt)
}

func toIterable(v Value) ([]Value, error) {
	switch x := v.(type) {
	case List:
		return x.Elements, nil
	case Set:
		return x.Elements, nil
	case Map:
		out := make([]Value, len(x.Entries))
		for i, e := range x.Entries {
			out[i] = Tuple{Elements: []Value{e.Key, e.Value}}
		}
		return out, nil
	case Str:
		runes := []rune(x.V)
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = Char{V: r}
		}
		return out, nil
	}
	return nil, newErr(ErrNotCallable, token.Span{}, "value of kind %s is not iterable", v.Kind())
}

func (i *Interp) evalAssign(n *ast.AssignStatement, scope *Env) (Value, error) {
	rhs, err := i.evalExpr(n.Value, scope)
	if err != nil {
		return nil, err
	}
	if n.Op != "=" {
		cur, err := i.evalExpr(n.Target, scope)
		if err != nil {
			return nil, err
		}
		rhs, err = i.applyBinOp(n.Op[:len(n.Op)-1], cur, rhs, n.GetSpan())
		if err != nil {
			return nil, err
		}
	}
	switch target := n.Target.(type) {
	case *ast.Identifier:
		if !scope.Assign(target.Name, rhs) {
			scope.Define(target.Name, rhs)
		}
		return Unit{}, nil
	case *ast.FieldAccessExpr:
		return i.assignField(target, rhs, scope)
	case *ast.IndexExpr:
		return i.assignIndex(target, rhs, scope)
	}
	return nil, newErr(ErrNotCallable, n.GetSpan(), "invalid assignment target")
}

func (i *Interp) assignField(target *ast.FieldAccessExpr, rhs Value, scope *Env) (Value, error) {
	recv, err := i.evalExpr(target.Receiver, scope)
	if err != nil {
		return nil, err
	}
	st, ok := recv.(Struct)
	if !ok {
		return nil, newErr(ErrUnknownField, target.GetSpan(), "cannot assign field on non-struct value")
	}
	fields := make(map[string]Value, len(st.Fields))
	for k, v := range st.Fields {
		fields[k] = v
	}
	fields[target.Field] = rhs
	updated := Struct{TypeName: st.TypeName, Fields: fields}
	if id, ok := target.Receiver.(*ast.Identifier); ok {
		scope.Assign(id.Name, updated)
	}
	return Unit{}, nil
}

func (i *Interp) assignIndex(target *ast.IndexExpr, rhs Value, scope *Env) (Value, error) {
	recv, err := i.evalExpr(target.Receiver, scope)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(target.Index, scope)
	if err != nil {
		return nil, err
	}
	var updated Value
	switch base := recv.(type) {
	case List:
		ix, ok := idx.(Int)
		if !ok || ix.V < 0 || int(ix.V) >= len(base.Elements) {
			return nil, newErr(ErrIndexOutOfBounds, target.GetSpan(), "list index out of bounds")
		}
		elems := append([]Value{}, base.Elements...)
		elems[int(ix.V)] = rhs
		updated = List{Elements: elems}
	case Map:
		updated = base.Set(idx, rhs)
	default:
		return nil, newErr(ErrNotCallable, target.GetSpan(), "value of kind %s is not indexable for assignment", recv.Kind())
	}
	if id, ok := target.Receiver.(*ast.Identifier); ok {
		scope.Assign(id.Name, updated)
	}
	return Unit{}, nil
}
