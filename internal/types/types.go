// Package types implements FORMA's type representation: the substitution
// machinery and concrete type constructors shared by the inferencer
// (internal/infer) and the interpreter's static checks.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is any FORMA type: a variable, a nominal constructor, an
// application of one, a tuple, a function signature, or a quantified
// (generic) scheme.
type Type interface {
	String() string
	Apply(s Subst) Type
	FreeTypeVariables() []string
	Kind() Kind
}

// TVar is an inference variable, e.g. the `A` introduced for `f<A>(x: A) -> A`.
type TVar struct {
	Name    string
	KindVal Kind
}

func NewTVar(name string) TVar { return TVar{Name: name, KindVal: Star} }

func (t TVar) String() string { return t.Name }
func (t TVar) Apply(s Subst) Type {
	if repl, ok := s[t.Name]; ok {
		return repl
	}
	return t
}
func (t TVar) FreeTypeVariables() []string { return []string{t.Name} }
func (t TVar) Kind() Kind {
	if t.KindVal != nil {
		return t.KindVal
	}
	return Star
}

// TCon is a nominal type constructor: a builtin (Int, Bool, Str), a
// user struct/enum name, or a generic constructor awaiting arguments
// via TApp (e.g. bare `List` before `List<Int>`).
type TCon struct {
	Name string
	// UnderlyingType is set for `type Meters = Float`-style aliases; TApp
	// and Unify transparently expand through it.
	UnderlyingType Type
	// TypeParams names the alias's own generic parameters, used when the
	// alias is partially applied (`type Pair<A> = (A, A)`).
	TypeParams []string
}

func NewTCon(name string) TCon { return TCon{Name: name} }

func (t TCon) String() string { return t.Name }
func (t TCon) Apply(s Subst) Type {
	if t.UnderlyingType == nil {
		return t
	}
	return TCon{Name: t.Name, UnderlyingType: t.UnderlyingType.Apply(s), TypeParams: t.TypeParams}
}
func (t TCon) FreeTypeVariables() []string { return nil }
func (t TCon) Kind() Kind {
	if k, ok := builtinKinds[t.Name]; ok {
		return k
	}
	return Star
}

// ExpandTypeAlias unwraps a single level of `type X = ...` aliasing,
// substituting TypeParams -> the supplied arguments into UnderlyingType.
func ExpandTypeAlias(con TCon, args []Type) (Type, bool) {
	if con.UnderlyingType == nil {
		return con, false
	}
	if len(con.TypeParams) == 0 {
		return con.UnderlyingType, true
	}
	s := Subst{}
	for i, p := range con.TypeParams {
		if i < len(args) {
			s[p] = args[i]
		}
	}
	return con.UnderlyingType.Apply(s), true
}

// TApp applies a type constructor to arguments: List<Int>, Map<Str, Int>,
// Result<T, Error>, or a not-yet-resolved `F<A>` while F is still a TVar.
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	if con, ok := t.Constructor.(TCon); ok && con.Name == "List" && len(t.Args) == 1 {
		if elem, ok := t.Args[0].(TCon); ok && elem.Name == "Char" {
			return "Str"
		}
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Constructor, strings.Join(parts, ", "))
}
func (t TApp) Apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return TApp{Constructor: t.Constructor.Apply(s), Args: args}
}
func (t TApp) FreeTypeVariables() []string {
	vars := t.Constructor.FreeTypeVariables()
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueVars(vars)
}
func (t TApp) Kind() Kind {
	k := t.Constructor.Kind()
	for range t.Args {
		if arrow, ok := k.(KArrow); ok {
			k = arrow.To
		} else {
			return Star
		}
	}
	return k
}

// TTuple is a fixed-arity product type: (Int, Str).
type TTuple struct {
	Elements []Type
}

func (t TTuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t TTuple) Apply(s Subst) Type {
	elems := make([]Type, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.Apply(s)
	}
	return TTuple{Elements: elems}
}
func (t TTuple) FreeTypeVariables() []string {
	var vars []string
	for _, e := range t.Elements {
		vars = append(vars, e.FreeTypeVariables()...)
	}
	return uniqueVars(vars)
}
func (t TTuple) Kind() Kind { return Star }

// Constraint is a trait bound on a type variable, e.g. `where A: Ord`.
type Constraint struct {
	TypeVar string
	Trait   string
	Args    []Type
}

func (c Constraint) String() string {
	if len(c.Args) == 0 {
		return fmt.Sprintf("%s: %s", c.TypeVar, c.Trait)
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s: %s<%s>", c.TypeVar, c.Trait, strings.Join(parts, ", "))
}
func (c Constraint) Apply(s Subst) Constraint {
	args := make([]Type, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Apply(s)
	}
	return Constraint{TypeVar: c.TypeVar, Trait: c.Trait, Args: args}
}

// TFunc is a function signature: parameter types, result type, and the
// constraints any generic parameters are bound by.
type TFunc struct {
	Params       []Type
	ReturnType   Type
	IsVariadic   bool
	DefaultCount int
	Constraints  []Constraint
}

func (t TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		marker := ""
		if i >= len(t.Params)-t.DefaultCount {
			marker = "?"
		}
		if t.IsVariadic && i == len(t.Params)-1 {
			parts[i] = "..." + p.String()
		} else {
			parts[i] = p.String() + marker
		}
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.ReturnType)
}
func (t TFunc) Apply(s Subst) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Apply(s)
	}
	constraints := make([]Constraint, len(t.Constraints))
	for i, c := range t.Constraints {
		constraints[i] = c.Apply(s)
	}
	return TFunc{
		Params:       params,
		ReturnType:   t.ReturnType.Apply(s),
		IsVariadic:   t.IsVariadic,
		DefaultCount: t.DefaultCount,
		Constraints:  constraints,
	}
}
func (t TFunc) FreeTypeVariables() []string {
	var vars []string
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	return uniqueVars(vars)
}
func (t TFunc) Kind() Kind { return Star }

// TForall is a universally quantified scheme produced by generalization,
// e.g. the inferred type of `f<A>(x: A) -> A`.
type TForall struct {
	Vars        []string
	Constraints []Constraint
	Type        Type
}

func (t TForall) String() string {
	if len(t.Vars) == 0 {
		return t.Type.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(t.Vars, " "), t.Type)
}
func (t TForall) Apply(s Subst) Type {
	inner := Subst{}
	for k, v := range s {
		inner[k] = v
	}
	for _, v := range t.Vars {
		delete(inner, v)
	}
	constraints := make([]Constraint, len(t.Constraints))
	for i, c := range t.Constraints {
		constraints[i] = c.Apply(inner)
	}
	return TForall{Vars: t.Vars, Constraints: constraints, Type: t.Type.Apply(inner)}
}
func (t TForall) FreeTypeVariables() []string {
	bound := map[string]bool{}
	for _, v := range t.Vars {
		bound[v] = true
	}
	var free []string
	for _, v := range t.Type.FreeTypeVariables() {
		if !bound[v] {
			free = append(free, v)
		}
	}
	return uniqueVars(free)
}
func (t TForall) Kind() Kind { return Star }

func uniqueVars(vars []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range vars {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Common builtin constructors, reused by the inferencer (internal/infer).
var (
	Int    = TCon{Name: "Int"}
	Float  = TCon{Name: "Float"}
	Bool   = TCon{Name: "Bool"}
	Str    = TCon{Name: "Str"}
	Char   = TCon{Name: "Char"}
	Unit   = TCon{Name: "Unit"}
	Never  = TCon{Name: "Never"}
)

func ListOf(elem Type) Type   { return TApp{Constructor: TCon{Name: "List"}, Args: []Type{elem}} }
func OptionOf(elem Type) Type { return TApp{Constructor: TCon{Name: "Option"}, Args: []Type{elem}} }
func ResultOf(ok, err Type) Type {
	return TApp{Constructor: TCon{Name: "Result"}, Args: []Type{ok, err}}
}
