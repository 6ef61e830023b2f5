package ast

import "github.com/formalang/forma/internal/token"

type patBase struct {
	Span  token.Span
	Guard Expression
	Typ   Type
}

func (p *patBase) GetSpan() token.Span  { return p.Span }
func (p *patBase) TokenLiteral() string { return "pattern" }
func (p *patBase) patternNode()         {}
func (p *patBase) SetType(t Type)       { p.Typ = t }
func (p *patBase) GetType() Type        { return p.Typ }

// WildcardPattern is `_`.
type WildcardPattern struct{ patBase }

// LiteralPattern matches a literal Int/Float/Str/Char/Bool value.
type LiteralPattern struct {
	patBase
	Value Expression // a literal expression node
}

// IdentPattern binds the scrutinee to a name, with an optional `@` subpattern.
type IdentPattern struct {
	patBase
	Name string
	Sub  Pattern // non-nil for `name @ subpattern`
}

// TuplePattern matches `(p1, p2, ...)`.
type TuplePattern struct {
	patBase
	Elements []Pattern
}

// StructFieldPattern is one `name: pattern` entry in a struct pattern (or
// just `name` as shorthand for `name: name`).
type StructFieldPattern struct {
	Name    string
	Pattern Pattern
}

// StructPattern matches `Name { field: pat, ..., .. }`.
type StructPattern struct {
	patBase
	TypeName string
	Fields   []StructFieldPattern
	HasRest  bool // true if `..` present (partial match)
}

// EnumPattern matches `Variant`, `Variant(p1, p2)`, or `Variant { f: p }`.
type EnumPattern struct {
	patBase
	EnumName    string // may be empty if unresolved at parse time
	VariantName string
	TupleElems  []Pattern
	Fields      []StructFieldPattern
	Kind        VariantKind
}

// OrPattern matches `p1 | p2 | ...`.
type OrPattern struct {
	patBase
	Alternatives []Pattern
}

// RangePattern matches `lo..hi` or `lo..=hi`.
type RangePattern struct {
	patBase
	Lo, Hi    Expression
	Inclusive bool
}

// RefPattern matches `&pattern` or `&mut pattern`.
type RefPattern struct {
	patBase
	Mutable bool
	Inner   Pattern
}
