package ast

import "github.com/formalang/forma/internal/token"

// Visibility marks whether an item is exported from its module.
type Visibility int

const (
	Private Visibility = iota
	Public
)

// Param is one function parameter: name, declared type, and optional default.
type Param struct {
	Name    string
	Type    Type
	Default Expression
}

// Contract is one precondition or postcondition expression, either written
// directly by the user or expanded at parse time from a named pattern like
// `@sorted(x)`.
type Contract struct {
	Span       token.Span
	Expr       Expression
	SourceText string // original @name(args) text, empty for freehand contracts
	IsPost     bool   // true if the expansion referenced `result`
}

// Function declares `f name(params) -> ret where ... = body` (or an indented
// block body).
type Function struct {
	base
	Name         string
	Generics     []string
	Params       []Param
	ReturnType   Type
	WhereClauses []WhereClause
	Preconditions  []Contract
	Postconditions []Contract
	Visibility   Visibility
	Body         *Block
	IsMethod     bool // true when declared inside an impl/trait block
}

func (f *Function) statementNode()       {}
func (f *Function) TokenLiteral() string { return "f" }

// WhereClause restricts a generic parameter to implement a trait.
type WhereClause struct {
	TypeParam string
	Trait     string
	TraitArgs []Type
}

// Field is one struct field or enum record-variant field.
type Field struct {
	Name    string
	Type    Type
	Default Expression
}

// Struct declares `s Name<generics> { fields }`.
type Struct struct {
	base
	Name       string
	Generics   []string
	Fields     []Field
	Visibility Visibility
}

func (s *Struct) statementNode()       {}
func (s *Struct) TokenLiteral() string { return "s" }

// VariantKind distinguishes the three enum payload shapes.
type VariantKind int

const (
	UnitVariant VariantKind = iota
	TupleVariant
	RecordVariant
)

// Variant is one arm of an enum declaration. Discriminant is assigned at
// inference time by declaration order (spec §9).
type Variant struct {
	Name        string
	Kind        VariantKind
	TupleTypes  []Type
	Fields      []Field
	Discriminant int
}

// Enum declares `e Name<generics> { variants }`.
type Enum struct {
	base
	Name       string
	Generics   []string
	Variants   []Variant
	Visibility Visibility
}

func (e *Enum) statementNode()       {}
func (e *Enum) TokenLiteral() string { return "e" }

// MethodSig is a trait method signature, with an optional default body.
type MethodSig struct {
	Name       string
	Params     []Param
	ReturnType Type
	Default    *Block
}

// AssocType declares a trait's associated type slot, optionally bound.
type AssocType struct {
	Name  string
	Bound Type
}

// Trait declares `t Name<generics>: Super1, Super2 { items }`.
type Trait struct {
	base
	Name        string
	Generics    []string
	Supertraits []string
	Methods     []MethodSig
	AssocTypes  []AssocType
}

func (t *Trait) statementNode()       {}
func (t *Trait) TokenLiteral() string { return "t" }

// Impl declares `i Trait for SelfType where ... { items }`, or an inherent
// impl when TraitRef is empty.
type Impl struct {
	base
	Generics     []string
	TraitRef     string
	TraitArgs    []Type
	SelfType     Type
	WhereClauses []WhereClause
	Methods      []*Function
	AssocTypes   map[string]Type
}

func (i *Impl) statementNode()       {}
func (i *Impl) TokenLiteral() string { return "i" }

// TypeAlias declares `type Name<generics> = Type`.
type TypeAlias struct {
	base
	Name     string
	Generics []string
	Target   Type
}

func (t *TypeAlias) statementNode()       {}
func (t *TypeAlias) TokenLiteral() string { return "type" }

// Attribute is a `@name(args)` annotation on an item (contracts are the main
// use; derive/extension attributes reuse the same syntax).
type Attribute struct {
	Name string
	Args []Expression
	Span token.Span
}

// AttributedItem wraps any item with its parsed attributes.
type AttributedItem struct {
	base
	Attributes []Attribute
	Item       Statement
}

func (a *AttributedItem) statementNode()       {}
func (a *AttributedItem) TokenLiteral() string { return "@" }

// Block is a sequence of statements (indent-delimited or brace-delimited).
type Block struct {
	base
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) TokenLiteral() string { return "{" }

// ExprStatement wraps an expression used as a statement.
type ExprStatement struct {
	base
	X Expression
}

func (e *ExprStatement) statementNode()       {}
func (e *ExprStatement) TokenLiteral() string { return "expr" }

// LetStatement is `let [mut] pattern [: Type] = value`.
type LetStatement struct {
	base
	Mutable        bool
	Name           string
	Pattern        Pattern
	TypeAnnotation Type
	Value          Expression
}

func (l *LetStatement) statementNode()       {}
func (l *LetStatement) TokenLiteral() string { return "let" }

// AssignStatement is `place = value` or `place += value` etc.
type AssignStatement struct {
	base
	Target Expression
	Op     string // "=", "+=", "-=", ...
	Value  Expression
}

func (a *AssignStatement) statementNode()       {}
func (a *AssignStatement) TokenLiteral() string { return "=" }

// ReturnStatement is `return [value]`.
type ReturnStatement struct {
	base
	Value Expression
}

func (r *ReturnStatement) statementNode()       {}
func (r *ReturnStatement) TokenLiteral() string { return "return" }

// BreakStatement / ContinueStatement terminate or continue the nearest loop.
type BreakStatement struct {
	base
	Value Expression
}

func (b *BreakStatement) statementNode()       {}
func (b *BreakStatement) TokenLiteral() string { return "break" }

type ContinueStatement struct {
	base
}

func (c *ContinueStatement) statementNode()       {}
func (c *ContinueStatement) TokenLiteral() string { return "continue" }

// WhileStatement is `while cond: body`.
type WhileStatement struct {
	base
	Cond Expression
	Body *Block
}

func (w *WhileStatement) statementNode()       {}
func (w *WhileStatement) TokenLiteral() string { return "while" }

// LoopStatement is `loop: body` (break provides the loop's value).
type LoopStatement struct {
	base
	Body *Block
}

func (l *LoopStatement) statementNode()       {}
func (l *LoopStatement) TokenLiteral() string { return "loop" }

// ForStatement is `for pattern in iter: body`.
type ForStatement struct {
	base
	Pattern Pattern
	Iter    Expression
	Body    *Block
}

func (f *ForStatement) statementNode()       {}
func (f *ForStatement) TokenLiteral() string { return "for" }
