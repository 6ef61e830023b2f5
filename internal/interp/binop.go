package interp

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/token"
)

func (i *Interp) evalBinary(n *ast.BinaryExpr, scope *Env) (Value, error) {
	if n.Op == "&&" {
		l, err := i.evalExpr(n.Left, scope)
		if err != nil {
			return nil, err
		}
		if !truthy(l) {
			return Bool{V: false}, nil
		}
		r, err := i.evalExpr(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return Bool{V: truthy(r)}, nil
	}
	if n.Op == "||" {
		l, err := i.evalExpr(n.Left, scope)
		if err != nil {
			return nil, err
		}
		if truthy(l) {
			return Bool{V: true}, nil
		}
		r, err := i.evalExpr(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return Bool{V: truthy(r)}, nil
	}
	l, err := i.evalExpr(n.Left, scope)
	if err != nil {
		return nil, err
	}
	r, err := i.evalExpr(n.Right, scope)
	if err != nil {
		return nil, err
	}
	return i.applyBinOp(n.Op, l, r, n.GetSpan())
}

func (i *Interp) applyBinOp(op string, l, r Value, span token.Span) (Value, error) {
	switch op {
	case "++":
		return concat(l, r, span)
	case "==":
		return Bool{V: valuesEqual(l, r)}, nil
	case "!=":
		return Bool{V: !valuesEqual(l, r)}, nil
	}

	if li, lok := l.(Int); lok {
		if ri, rok := r.(Int); rok {
			return intOp(op, li.V, ri.V, span)
		}
		if rf, rok := r.(Float); rok {
			return floatOp(op, float64(li.V), rf.V, span)
		}
	}
	if lf, lok := l.(Float); lok {
		if rf, rok := r.(Float); rok {
			return floatOp(op, lf.V, rf.V, span)
		}
		if ri, rok := r.(Int); rok {
			return floatOp(op, lf.V, float64(ri.V), span)
		}
	}
	if ls, lok := l.(Str); lok {
		if rs, rok := r.(Str); rok {
			return strOp(op, ls.V, rs.V, span)
		}
	}
	return nil, newErr(ErrNotCallable, span, "unsupported operands for %q: %s, %s", op, l.Kind(), r.Kind())
}

func concat(l, r Value, span token.Span) (Value, error) {
	switch lv := l.(type) {
	case Str:
		rs, ok := r.(Str)
		if !ok {
			return nil, newErr(ErrNotCallable, span, "++ requires Str, Str")
		}
		return Str{V: lv.V + rs.V}, nil
	case List:
		rl, ok := r.(List)
		if !ok {
			return nil, newErr(ErrNotCallable, span, "++ requires List, List")
		}
		out := make([]Value, 0, len(lv.Elements)+len(rl.Elements))
		out = append(out, lv.Elements...)
		out = append(out, rl.Elements...)
		return List{Elements: out}, nil
	}
	return nil, newErr(ErrNotCallable, span, "++ not supported for %s", l.Kind())
}

func intOp(op string, a, b int64, span token.Span) (Value, error) {
	switch op {
	case "+":
		return Int{V: a + b}, nil
	case "-":
		return Int{V: a - b}, nil
	case "*":
		return Int{V: a * b}, nil
	case "/":
		if b == 0 {
			return nil, newErr(ErrDivByZero, span, "integer division by zero")
		}
		return Int{V: a / b}, nil
	case "%":
		if b == 0 {
			return nil, newErr(ErrDivByZero, span, "integer modulo by zero")
		}
		return Int{V: a % b}, nil
	case "**":
		result := int64(1)
		for n := int64(0); n < b; n++ {
			result *= a
		}
		return Int{V: result}, nil
	case "<":
		return Bool{V: a < b}, nil
	case "<=":
		return Bool{V: a <= b}, nil
	case ">":
		return Bool{V: a > b}, nil
	case ">=":
		return Bool{V: a >= b}, nil
	case "&":
		return Int{V: a & b}, nil
	case "|":
		return Int{V: a | b}, nil
	case "^":
		return Int{V: a ^ b}, nil
	case "<<":
		return Int{V: a << uint(b)}, nil
	case ">>":
		return Int{V: a >> uint(b)}, nil
	}
	return nil, newErr(ErrNotCallable, span, "unsupported Int operator %q", op)
}

func floatOp(op string, a, b float64, span token.Span) (Value, error) {
	switch op {
	case "+":
		return Float{V: a + b}, nil
	case "-":
		return Float{V: a - b}, nil
	case "*":
		return Float{V: a * b}, nil
	case "/":
		if b == 0 {
			return nil, newErr(ErrDivByZero, span, "float division by zero")
		}
		return Float{V: a / b}, nil
	case "<":
		return Bool{V: a < b}, nil
	case "<=":
		return Bool{V: a <= b}, nil
	case ">":
		return Bool{V: a > b}, nil
	case ">=":
		return Bool{V: a >= b}, nil
	}
	return nil, newErr(ErrNotCallable, span, "unsupported Float operator %q", op)
}

func strOp(op string, a, b string, span token.Span) (Value, error) {
	switch op {
	case "<":
		return Bool{V: a < b}, nil
	case "<=":
		return Bool{V: a <= b}, nil
	case ">":
		return Bool{V: a > b}, nil
	case ">=":
		return Bool{V: a >= b}, nil
	}
	return nil, newErr(ErrNotCallable, span, "unsupported Str operator %q", op)
}

func (i *Interp) evalUnary(n *ast.UnaryExpr, scope *Env) (Value, error) {
	v, err := i.evalExpr(n.Operand, scope)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		switch x := v.(type) {
		case Int:
			return Int{V: -x.V}, nil
		case Float:
			return Float{V: -x.V}, nil
		}
	case "!":
		return Bool{V: !truthy(v)}, nil
	case "&", "&mut":
		return v, nil // second-class refs are erased at runtime; borrow checking is static
	}
	return nil, newErr(ErrNotCallable, n.GetSpan(), "unsupported unary operator %q on %s", n.Op, v.Kind())
}
