package interp

import (
	"fmt"
	"os"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/modules"
)

// Interp is the root of one program run: global scope, struct/enum
// declarations for constructor/pattern lookup, and the capability set the
// driver granted it.
type Interp struct {
	Globals  *Env
	Caps     CapabilitySet
	Structs  map[string]*ast.Struct
	Enums    map[string]*ast.Enum
	Variants map[string]variantOwner // variant name -> owning enum, for bare `Variant(...)` construction
	Impls    []*ast.Impl
	Stdout   func(string)
	Stderr   func(string)
}

type variantOwner struct {
	Enum    *ast.Enum
	Variant *ast.Variant
}

func New(caps CapabilitySet) *Interp {
	i := &Interp{
		Globals:  NewEnv(),
		Caps:     caps,
		Structs:  map[string]*ast.Struct{},
		Enums:    map[string]*ast.Enum{},
		Variants: map[string]variantOwner{},
		Stdout:   func(s string) { fmt.Print(s) },
		Stderr:   func(s string) { fmt.Fprint(os.Stderr, s) },
	}
	RegisterBuiltins(i.Globals)
	return i
}

// LoadModule registers every top-level declaration of a loaded module
// (functions, structs, enums, impls) into the global scope, mirroring
// how the teacher's pipeline walks a *ast.Program into its Environment.
func (i *Interp) LoadModule(mod *modules.Module) error {
	for _, file := range mod.Files {
		for _, item := range file.Items {
			if err := i.declareItem(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeclareTop registers a single top-level item into the global scope,
// exported for callers outside the package that load declarations
// incrementally (a REPL accumulating one parsed line at a time) rather than
// all at once through LoadModule.
func (i *Interp) DeclareTop(item ast.Statement) error {
	return i.declareItem(item)
}

func (i *Interp) declareItem(item ast.Statement) error {
	switch n := item.(type) {
	case *ast.Function:
		i.Globals.Define(n.Name, Func{Decl: n, Env: i.Globals})
	case *ast.Struct:
		i.Structs[n.Name] = n
	case *ast.Enum:
		i.Enums[n.Name] = n
		for idx := range n.Variants {
			v := &n.Variants[idx]
			i.Variants[v.Name] = variantOwner{Enum: n, Variant: v}
		}
	case *ast.Impl:
		i.Impls = append(i.Impls, n)
		for _, m := range n.Methods {
			// Inherent/trait methods are dispatched by receiver type at call
			// time (see evalMethodCall/lookupImplMethod in call.go); nothing
			// to define globally.
			_ = m
		}
	case *ast.TypeAlias:
		// purely a typesystem concern; no runtime representation needed.
	case *ast.AttributedItem:
		return i.declareItem(n.Item)
	case *ast.LetStatement:
		val, err := i.evalExpr(n.Value, i.Globals)
		if err != nil {
			return err
		}
		i.Globals.Define(n.Name, val)
	default:
		return fmt.Errorf("cannot declare top-level item of type %T", item)
	}
	return nil
}

// CallFunction invokes decl with args in a fresh scope enclosed over its
// closure environment, the interpreter's equivalent of the teacher's
// applyFunction in apply.go.
func (i *Interp) CallFunction(fn Func, args []Value) (Value, error) {
	scope := NewEnclosedEnv(fn.Env)
	if fn.Self != nil {
		scope.Define("self", fn.Self)
	}
	if err := i.bindParams(fn.Decl.Params, args, scope); err != nil {
		return nil, err
	}
	if err := i.checkPreconditions(fn.Decl, scope); err != nil {
		return nil, err
	}
	oldSnapshot := snapshotEnv(scope)
	var result Value = Unit{}
	if fn.Decl.Body != nil {
		v, err := i.evalBlock(fn.Decl.Body, scope)
		if err != nil {
			if er, ok := err.(*earlyReturn); ok {
				result = er.Value
			} else {
				return nil, err
			}
		} else if rs, ok := v.(ReturnSignal); ok {
			result = rs.Value
		} else {
			result = v
		}
	}
	if err := i.checkPostconditions(fn.Decl, scope, result, oldSnapshot); err != nil {
		return nil, err
	}
	return result, nil
}

func snapshotEnv(e *Env) map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Value, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}

func (i *Interp) bindParams(params []ast.Param, args []Value, scope *Env) error {
	for idx, p := range params {
		if idx < len(args) {
			scope.Define(p.Name, args[idx])
			continue
		}
		if p.Default != nil {
			v, err := i.evalExpr(p.Default, scope)
			if err != nil {
				return err
			}
			scope.Define(p.Name, v)
			continue
		}
		return fmt.Errorf("missing argument %q", p.Name)
	}
	return nil
}

func (i *Interp) checkPreconditions(fn *ast.Function, scope *Env) error {
	for _, c := range fn.Preconditions {
		v, err := i.evalExpr(c.Expr, scope)
		if err != nil {
			return err
		}
		if !truthy(v) {
			return newErr(ErrContractViolated, c.Span, "precondition failed in %s: %s", fn.Name, c.SourceText)
		}
	}
	return nil
}

func (i *Interp) checkPostconditions(fn *ast.Function, scope *Env, result Value, oldSnapshot map[string]Value) error {
	if len(fn.Postconditions) == 0 {
		return nil
	}
	post := NewEnclosedEnv(scope)
	post.Define("result", result)
	post.oldValues = oldSnapshot
	for _, c := range fn.Postconditions {
		v, err := i.evalExpr(c.Expr, post)
		if err != nil {
			return err
		}
		if !truthy(v) {
			return newErr(ErrContractViolated, c.Span, "postcondition failed in %s: %s", fn.Name, c.SourceText)
		}
	}
	return nil
}
