package interp

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/token"
)

func (i *Interp) evalCall(n *ast.CallExpr, scope *Env) (Value, error) {
	args, err := i.evalArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	if ident, ok := n.Callee.(*ast.Identifier); ok {
		if owner, ok := i.Variants[ident.Name]; ok {
			return i.constructVariant(owner, args)
		}
		if _, ok := i.Structs[ident.Name]; ok {
			return i.constructStructPositional(ident.Name, args), nil
		}
	}
	callee, err := i.evalExpr(n.Callee, scope)
	if err != nil {
		return nil, err
	}
	return i.invoke(callee, args, n.GetSpan())
}

func (i *Interp) evalArgs(rawArgs []ast.Arg, scope *Env) ([]Value, error) {
	args := make([]Value, len(rawArgs))
	for idx, a := range rawArgs {
		v, err := i.evalExpr(a.Value, scope)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}

func (i *Interp) invoke(callee Value, args []Value, span token.Span) (Value, error) {
	switch fn := callee.(type) {
	case Func:
		return i.CallFunction(fn, args)
	case Builtin:
		if cap, needs := RequiredCapability(fn.Name); needs && !i.Caps.Has(cap) {
			return nil, newErr(ErrCapabilityDenied, span, "builtin %q requires capability %q", fn.Name, cap)
		}
		return fn.Fn(i, args)
	}
	return nil, newErr(ErrNotCallable, span, "value of kind %s is not callable", callee.Kind())
}

func (i *Interp) constructVariant(owner variantOwner, args []Value) (Value, error) {
	e := Enum{TypeName: owner.Enum.Name, VariantName: owner.Variant.Name}
	switch owner.Variant.Kind {
	case ast.TupleVariant:
		e.TupleElems = args
	case ast.RecordVariant:
		fields := map[string]Value{}
		for idx, f := range owner.Variant.Fields {
			if idx < len(args) {
				fields[f.Name] = args[idx]
			}
		}
		e.Fields = fields
	}
	return e, nil
}

func (i *Interp) constructStructPositional(name string, args []Value) Value {
	decl := i.Structs[name]
	fields := map[string]Value{}
	for idx, f := range decl.Fields {
		if idx < len(args) {
			fields[f.Name] = args[idx]
		}
	}
	return Struct{TypeName: name, Fields: fields}
}

func (i *Interp) evalMethodCall(n *ast.MethodCallExpr, scope *Env) (Value, error) {
	recv, err := i.evalExpr(n.Receiver, scope)
	if err != nil {
		return nil, err
	}
	args, err := i.evalArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	if b, ok := builtinMethod(n.Method, recv); ok {
		if cap, needs := RequiredCapability(b.Name); needs && !i.Caps.Has(cap) {
			return nil, newErr(ErrCapabilityDenied, n.GetSpan(), "method %q requires capability %q", n.Method, cap)
		}
		return b.Fn(i, append([]Value{recv}, args...))
	}
	if fn, ok := i.lookupImplMethod(recv, n.Method); ok {
		fn.Self = recv
		return i.CallFunction(fn, args)
	}
	return nil, newErr(ErrUnknownField, n.GetSpan(), "no method %q on %s", n.Method, recv.Kind())
}

func (i *Interp) lookupImplMethod(recv Value, method string) (Func, bool) {
	typeName := runtimeTypeName(recv)
	for _, impl := range i.Impls {
		named, ok := impl.SelfType.(*ast.NamedType)
		if !ok || named.Name != typeName {
			continue
		}
		for _, m := range impl.Methods {
			if m.Name == method {
				return Func{Decl: m, Env: i.Globals}, true
			}
		}
	}
	return Func{}, false
}

func runtimeTypeName(v Value) string {
	switch x := v.(type) {
	case Struct:
		return x.TypeName
	case Enum:
		return x.TypeName
	}
	return string(v.Kind())
}
