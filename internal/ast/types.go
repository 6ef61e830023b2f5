package ast

import "github.com/formalang/forma/internal/token"

// Type is the AST-level syntax for a type annotation, as written by the
// user (before the inferencer resolves it into a typesystem.Type).
type Type interface {
	Node
	typeNode()
	String() string
}

type typeBase struct {
	Span token.Span
}

func (t typeBase) GetSpan() token.Span  { return t.Span }
func (t typeBase) TokenLiteral() string { return "type" }
func (t typeBase) typeNode()            {}

// NamedType is `Path<Arg1, Arg2>`, e.g. `Int`, `List<Int>`, `Option<T>`.
type NamedType struct {
	typeBase
	Name string
	Args []Type
}

func (t *NamedType) String() string {
	s := t.Name
	if len(t.Args) > 0 {
		s += "<"
		for i, a := range t.Args {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		s += ">"
	}
	return s
}

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	typeBase
	Elements []Type
}

func (t *TupleType) String() string {
	s := "("
	for i, e := range t.Elements {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}

// FunctionType is `(P1, P2) -> R`.
type FunctionType struct {
	typeBase
	Params     []Type
	ReturnType Type
}

func (t *FunctionType) String() string {
	s := "("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") -> " + t.ReturnType.String()
}

// RefType is `&T` (shared) or `&mut T` (unique).
type RefType struct {
	typeBase
	Mutable bool
	Inner   Type
}

func (t *RefType) String() string {
	if t.Mutable {
		return "&mut " + t.Inner.String()
	}
	return "&" + t.Inner.String()
}

// ListType is sugar `[T]` for `List<T>`.
type ListType struct {
	typeBase
	Elem Type
}

func (t *ListType) String() string { return "[" + t.Elem.String() + "]" }

// MapType is sugar `{K: V}` for `Map<K, V>`.
type MapType struct {
	typeBase
	Key, Value Type
}

func (t *MapType) String() string { return "{" + t.Key.String() + ": " + t.Value.String() + "}" }

// SetType is sugar `{T}` for `Set<T>`.
type SetType struct {
	typeBase
	Elem Type
}

func (t *SetType) String() string { return "{" + t.Elem.String() + "}" }

// OptionType is sugar `T?` for `Option<T>`.
type OptionType struct {
	typeBase
	Inner Type
}

func (t *OptionType) String() string { return t.Inner.String() + "?" }

// ResultType is sugar `T!E` (or `T!` for `Result<T, Error>`).
type ResultType struct {
	typeBase
	Ok  Type
	Err Type // nil means the default `Error` type
}

func (t *ResultType) String() string {
	if t.Err == nil {
		return t.Ok.String() + "!"
	}
	return t.Ok.String() + "!" + t.Err.String()
}

// TypeVarType appears only post-inference (fresh type variables during
// solving); the parser never produces one.
type TypeVarType struct {
	typeBase
	Name string
}

func (t *TypeVarType) String() string { return t.Name }
