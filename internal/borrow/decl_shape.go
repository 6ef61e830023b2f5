package borrow

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/diagnostics"
)

// checkDeclShapes rejects every reference type (ast.RefType) appearing
// anywhere a value could outlive the stack frame that produced it: a struct
// field, an enum variant payload, or a collection element type. FORMA has no
// lifetime parameters, so the only sound rule is "references never escape
// into the heap" -- they may only appear in parameter and local-variable
// position, which is why this pass never has to look inside function bodies.
func checkDeclShapes(bag *diagnostics.Bag, file string, items []ast.Statement) {
	var walk func(ast.Statement)
	walk = func(item ast.Statement) {
		switch n := item.(type) {
		case *ast.Struct:
			for _, f := range n.Fields {
				if ref, ok := containsRef(f.Type); ok {
					addf(bag, file, ref, "struct field %q.%q may not hold a reference type; store an owned value instead", n.Name, f.Name)
				}
			}
		case *ast.Enum:
			for _, v := range n.Variants {
				for _, t := range v.TupleTypes {
					if ref, ok := containsRef(t); ok {
						addf(bag, file, ref, "variant %q.%q may not hold a reference type; store an owned value instead", n.Name, v.Name)
					}
				}
				for _, f := range v.Fields {
					if ref, ok := containsRef(f.Type); ok {
						addf(bag, file, ref, "variant %q.%q field %q may not hold a reference type; store an owned value instead", n.Name, v.Name, f.Name)
					}
				}
			}
		case *ast.AttributedItem:
			walk(n.Item)
		}
	}
	for _, item := range items {
		walk(item)
	}
}

// containsRef reports whether t is, or transitively contains, a RefType --
// a Ref nested inside a List/Set/Map/Tuple/Option/Result element is just as
// unsound to store as a bare Ref field, since the collection itself can
// outlive the borrow.
func containsRef(t ast.Type) (*ast.RefType, bool) {
	switch n := t.(type) {
	case nil:
		return nil, false
	case *ast.RefType:
		return n, true
	case *ast.ListType:
		return containsRef(n.Elem)
	case *ast.SetType:
		return containsRef(n.Elem)
	case *ast.MapType:
		if ref, ok := containsRef(n.Key); ok {
			return ref, true
		}
		return containsRef(n.Value)
	case *ast.TupleType:
		for _, el := range n.Elements {
			if ref, ok := containsRef(el); ok {
				return ref, true
			}
		}
	case *ast.OptionType:
		return containsRef(n.Inner)
	case *ast.ResultType:
		if ref, ok := containsRef(n.Ok); ok {
			return ref, true
		}
		return containsRef(n.Err)
	}
	return nil, false
}
