// Package infer is FORMA's static type checker: it converts the parser's
// AST type syntax into internal/types.Type values, builds a global
// environment of struct/enum/function signatures, and walks every function
// body checking expressions against that environment with
// internal/types.Unify standing in for Hindley-Milner constraint solving at
// generic call sites (spec §4 requires explicit signatures on every
// function, so there is no top-level let-generalization to perform — only
// per-call instantiation of a function's own generics).
package infer

import (
	"fmt"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/types"
)

// Convert turns a parsed type annotation into its internal/types
// representation, instantiating any name present in generics as a TVar.
func Convert(t ast.Type, generics map[string]bool) types.Type {
	switch n := t.(type) {
	case *ast.NamedType:
		if generics[n.Name] {
			return types.NewTVar(n.Name)
		}
		if len(n.Args) == 0 {
			return builtinCon(n.Name)
		}
		args := make([]types.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = Convert(a, generics)
		}
		return types.TApp{Constructor: builtinCon(n.Name), Args: args}
	case *ast.TupleType:
		elems := make([]types.Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Convert(e, generics)
		}
		return types.TTuple{Elements: elems}
	case *ast.FunctionType:
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = Convert(p, generics)
		}
		return types.TFunc{Params: params, ReturnType: Convert(n.ReturnType, generics)}
	case *ast.RefType:
		return Convert(n.Inner, generics)
	case *ast.ListType:
		return types.ListOf(Convert(n.Elem, generics))
	case *ast.MapType:
		return types.TApp{Constructor: types.TCon{Name: "Map"}, Args: []types.Type{Convert(n.Key, generics), Convert(n.Value, generics)}}
	case *ast.SetType:
		return types.TApp{Constructor: types.TCon{Name: "Set"}, Args: []types.Type{Convert(n.Elem, generics)}}
	case *ast.OptionType:
		return types.OptionOf(Convert(n.Inner, generics))
	case *ast.ResultType:
		errType := types.Type(types.TCon{Name: "Error"})
		if n.Err != nil {
			errType = Convert(n.Err, generics)
		}
		return types.ResultOf(Convert(n.Ok, generics), errType)
	case *ast.TypeVarType:
		return types.NewTVar(n.Name)
	}
	panic(fmt.Sprintf("infer: unhandled type syntax %T", t))
}

func builtinCon(name string) types.TCon {
	switch name {
	case "Int":
		return types.Int
	case "Float":
		return types.Float
	case "Bool":
		return types.Bool
	case "Str":
		return types.Str
	case "Char":
		return types.Char
	case "Unit":
		return types.Unit
	}
	return types.TCon{Name: name}
}

func genericSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// FuncSignature converts a declared function into its TFunc type, honoring
// generics, default-valued trailing parameters, and where-clause
// constraints.
func FuncSignature(fn *ast.Function) types.TFunc {
	generics := genericSet(fn.Generics)
	params := make([]types.Type, len(fn.Params))
	defaults := 0
	for i, p := range fn.Params {
		params[i] = Convert(p.Type, generics)
		if p.Default != nil {
			defaults++
		}
	}
	var ret types.Type = types.Unit
	if fn.ReturnType != nil {
		ret = Convert(fn.ReturnType, generics)
	}
	var constraints []types.Constraint
	for _, wc := range fn.WhereClauses {
		args := make([]types.Type, len(wc.TraitArgs))
		for i, a := range wc.TraitArgs {
			args[i] = Convert(a, generics)
		}
		constraints = append(constraints, types.Constraint{TypeVar: wc.TypeParam, Trait: wc.Trait, Args: args})
	}
	return types.TFunc{Params: params, ReturnType: ret, DefaultCount: defaults, Constraints: constraints}
}
