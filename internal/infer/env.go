package infer

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/types"
)

// Env is the static environment a function body is checked against: a
// lexical scope of variable types chained to an outer scope, plus the
// always-visible global tables (functions, structs, enums, traits).
type Env struct {
	vars  map[string]types.Type
	outer *Env
	g     *Globals
}

// Globals collects every top-level declaration of a program, shared by
// every function's Env chain (the static analogue of interp.Interp's
// Structs/Enums/Variants/Impls tables).
type Globals struct {
	Funcs    map[string]types.Type
	Structs  map[string]*ast.Struct
	Enums    map[string]*ast.Enum
	Variants map[string]VariantOwner
	Traits   map[string]*ast.Trait
	Impls    []*ast.Impl
	Aliases  map[string]types.TCon
}

type VariantOwner struct {
	Enum    *ast.Enum
	Variant *ast.Variant
}

func NewGlobals() *Globals {
	return &Globals{
		Funcs:    map[string]types.Type{},
		Structs:  map[string]*ast.Struct{},
		Enums:    map[string]*ast.Enum{},
		Variants: map[string]VariantOwner{},
		Traits:   map[string]*ast.Trait{},
		Aliases:  map[string]types.TCon{},
	}
}

func NewEnv(g *Globals) *Env {
	return &Env{vars: map[string]types.Type{}, g: g}
}

func (e *Env) Child() *Env {
	return &Env{vars: map[string]types.Type{}, outer: e, g: e.g}
}

func (e *Env) Define(name string, t types.Type) {
	e.vars[name] = t
}

func (e *Env) Lookup(name string) (types.Type, bool) {
	if t, ok := e.vars[name]; ok {
		return t, true
	}
	if e.outer != nil {
		return e.outer.Lookup(name)
	}
	if t, ok := e.g.Funcs[name]; ok {
		return t, true
	}
	return nil, false
}

// BuildGlobals walks every top-level item of a program, registering
// function/struct/enum/variant/trait/impl signatures, mirroring
// interp.Interp.LoadModule's declaration pass at the type level.
func BuildGlobals(items []ast.Statement, g *Globals) {
	for _, item := range items {
		registerItem(item, g)
	}
}

func registerItem(item ast.Statement, g *Globals) {
	switch n := item.(type) {
	case *ast.Function:
		g.Funcs[n.Name] = FuncSignature(n)
	case *ast.Struct:
		g.Structs[n.Name] = n
	case *ast.Enum:
		g.Enums[n.Name] = n
		for idx := range n.Variants {
			v := &n.Variants[idx]
			g.Variants[v.Name] = VariantOwner{Enum: n, Variant: v}
		}
	case *ast.Trait:
		g.Traits[n.Name] = n
	case *ast.Impl:
		g.Impls = append(g.Impls, n)
	case *ast.TypeAlias:
		generics := genericSet(n.Generics)
		target := Convert(n.Target, generics)
		g.Aliases[n.Name] = types.TCon{Name: n.Name, UnderlyingType: target, TypeParams: n.Generics}
	case *ast.LetStatement:
		// top-level constant: best-effort, typed by its annotation, or by a
		// fresh type variable when it has none; the initializer is not checked
		if n.Name != "" {
			if n.TypeAnnotation != nil {
				g.Funcs[n.Name] = Convert(n.TypeAnnotation, nil)
			} else {
				g.Funcs[n.Name] = types.NewTVar("_const_" + n.Name)
			}
		}
	case *ast.AttributedItem:
		registerItem(n.Item, g)
	}
}
