package ast

import "github.com/formalang/forma/internal/token"

// Identifier is a bare name reference.
type Identifier struct {
	base
	Name string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Name }

// PathExpr is a qualified reference like `module.Name` or `Type::method`.
type PathExpr struct {
	base
	Segments []string
}

func (p *PathExpr) expressionNode()      {}
func (p *PathExpr) TokenLiteral() string { return "path" }

// Literal kinds.
type IntLit struct {
	base
	Value int64
}

func (l *IntLit) expressionNode()      {}
func (l *IntLit) TokenLiteral() string { return "int" }

type FloatLit struct {
	base
	Value float64
}

func (l *FloatLit) expressionNode()      {}
func (l *FloatLit) TokenLiteral() string { return "float" }

type BoolLit struct {
	base
	Value bool
}

func (l *BoolLit) expressionNode()      {}
func (l *BoolLit) TokenLiteral() string { return "bool" }

type CharLit struct {
	base
	Value rune
}

func (l *CharLit) expressionNode()      {}
func (l *CharLit) TokenLiteral() string { return "char" }

type StringLit struct {
	base
	Value string
}

func (l *StringLit) expressionNode()      {}
func (l *StringLit) TokenLiteral() string { return "string" }

// FStringFragment mirrors token.FStringFragment but with the expr fragment
// already parsed.
type FStringFragment struct {
	IsExpr bool
	Text   string
	Expr   Expression
}

// FStringLit is `f"...{expr}..."`; the parser desugars this to a
// left-associative concatenation of `str(...)`-coerced fragments (spec
// §4.2), but the original fragment list is kept for `explain`/`fmt`.
type FStringLit struct {
	base
	Fragments []FStringFragment
	Desugared Expression
}

func (l *FStringLit) expressionNode()      {}
func (l *FStringLit) TokenLiteral() string { return "fstring" }

// NoneLit is the bare `none` literal (Option's None, pre-unification).
type NoneLit struct{ base }

func (l *NoneLit) expressionNode()      {}
func (l *NoneLit) TokenLiteral() string { return "none" }

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	base
	Left, Right Expression
	Op          string
}

func (b *BinaryExpr) expressionNode()      {}
func (b *BinaryExpr) TokenLiteral() string { return b.Op }

// UnaryExpr is `op operand` (`-x`, `!x`).
type UnaryExpr struct {
	base
	Op      string
	Operand Expression
}

func (u *UnaryExpr) expressionNode()      {}
func (u *UnaryExpr) TokenLiteral() string { return u.Op }

// CallExpr is `callee(args)`, with optional named arguments.
type Arg struct {
	Name  string // empty for positional
	Value Expression
}

type CallExpr struct {
	base
	Callee Expression
	Args   []Arg
}

func (c *CallExpr) expressionNode()      {}
func (c *CallExpr) TokenLiteral() string { return "call" }

// FieldAccessExpr is `recv.field`.
type FieldAccessExpr struct {
	base
	Receiver Expression
	Field    string
}

func (f *FieldAccessExpr) expressionNode()      {}
func (f *FieldAccessExpr) TokenLiteral() string { return "." }

// MethodCallExpr is `recv.method(args)`.
type MethodCallExpr struct {
	base
	Receiver Expression
	Method   string
	Args     []Arg
}

func (m *MethodCallExpr) expressionNode()      {}
func (m *MethodCallExpr) TokenLiteral() string { return ".()" }

// IndexExpr is `base[index]`.
type IndexExpr struct {
	base
	Receiver Expression
	Index    Expression
}

func (i *IndexExpr) expressionNode()      {}
func (i *IndexExpr) TokenLiteral() string { return "[]" }

// TupleExpr is `(e1, e2, ...)`.
type TupleExpr struct {
	base
	Elements []Expression
}

func (t *TupleExpr) expressionNode()      {}
func (t *TupleExpr) TokenLiteral() string { return "tuple" }

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	base
	Elements []Expression
}

func (a *ArrayLit) expressionNode()      {}
func (a *ArrayLit) TokenLiteral() string { return "[]" }

// MapEntry is one `key: value` pair in a map literal.
type MapEntry struct {
	Key, Value Expression
}

// MapLit is `{k1: v1, k2: v2}`.
type MapLit struct {
	base
	Entries []MapEntry
}

func (m *MapLit) expressionNode()      {}
func (m *MapLit) TokenLiteral() string { return "{}" }

// SetLit is `{e1, e2, ...}`.
type SetLit struct {
	base
	Elements []Expression
}

func (s *SetLit) expressionNode()      {}
func (s *SetLit) TokenLiteral() string { return "{}" }

// RangeExpr is `a..b` or `a..=b`.
type RangeExpr struct {
	base
	Lo, Hi    Expression
	Inclusive bool
}

func (r *RangeExpr) expressionNode()      {}
func (r *RangeExpr) TokenLiteral() string { return ".." }

// IfExpr is `if cond then a else b`, also used for statement-form `if cond:
// block [else: block]`.
type IfExpr struct {
	base
	Cond Expression
	Then Expression
	Else Expression
}

func (i *IfExpr) expressionNode()      {}
func (i *IfExpr) TokenLiteral() string { return "if" }

// MatchArm is one `pattern [if guard] => body` arm.
type MatchArm struct {
	Pattern Pattern
	Guard   Expression
	Body    Expression
}

// MatchExpr is `match scrutinee { arms }`.
type MatchExpr struct {
	base
	Scrutinee Expression
	Arms      []MatchArm
}

func (m *MatchExpr) expressionNode()      {}
func (m *MatchExpr) TokenLiteral() string { return "match" }

// ClosureExpr is `|params| body` or `|typed: params| -> Ret body`.
type ClosureExpr struct {
	base
	Params []Param
	Body   Expression
}

func (c *ClosureExpr) expressionNode()      {}
func (c *ClosureExpr) TokenLiteral() string { return "|...|" }

// FieldInit is one `name: value` entry in a struct literal.
type FieldInit struct {
	Name  string
	Value Expression
}

// StructLit is `Name { field: value, ..base }`.
type StructLit struct {
	base
	TypeName string
	Fields   []FieldInit
	BaseExpr Expression // non-nil for `..base` struct-update syntax
}

func (s *StructLit) expressionNode()      {}
func (s *StructLit) TokenLiteral() string { return "struct-lit" }

// PipelineExpr is `x | f` or `x | f arg` (spec §3, desugars at parse time).
type PipelineExpr struct {
	base
	Desugared Expression // the equivalent CallExpr, filled in by the parser
}

func (p *PipelineExpr) expressionNode()      {}
func (p *PipelineExpr) TokenLiteral() string { return "|" }

// TryExpr is `expr?`.
type TryExpr struct {
	base
	X Expression
}

func (t *TryExpr) expressionNode()      {}
func (t *TryExpr) TokenLiteral() string { return "?" }

// CoalesceExpr is `a ?? b`.
type CoalesceExpr struct {
	base
	Left, Right Expression
}

func (c *CoalesceExpr) expressionNode()      {}
func (c *CoalesceExpr) TokenLiteral() string { return "??" }

// AsyncBlockExpr is `async: block`, evaluating to a future whose body is
// scheduled on its own goroutine as soon as the expression is evaluated.
type AsyncBlockExpr struct {
	base
	Body *Block
}

func (a *AsyncBlockExpr) expressionNode()      {}
func (a *AsyncBlockExpr) TokenLiteral() string { return "async" }

// AwaitExpr is `await task`.
type AwaitExpr struct {
	base
	X Expression
}

func (a *AwaitExpr) expressionNode()      {}
func (a *AwaitExpr) TokenLiteral() string { return "await" }

// SpawnExpr is `spawn expr`.
type SpawnExpr struct {
	base
	X Expression
}

func (s *SpawnExpr) expressionNode()      {}
func (s *SpawnExpr) TokenLiteral() string { return "spawn" }

// BlockExpr wraps a Block used in expression position (if/match arm bodies).
type BlockExpr struct {
	base
	Body *Block
}

func (b *BlockExpr) expressionNode()      {}
func (b *BlockExpr) TokenLiteral() string { return "block" }

// QuantifierExpr is `forall v in range: body` / `exists v in range: body`,
// used only inside contract expressions.
type QuantifierExpr struct {
	base
	Universal bool // true = forall, false = exists
	Var       string
	Range     Expression
	Body      Expression
}

func (q *QuantifierExpr) expressionNode()      {}
func (q *QuantifierExpr) TokenLiteral() string { return "forall" }

// OldExpr is `old(x)`, valid only in postconditions.
type OldExpr struct {
	base
	Name string
}

func (o *OldExpr) expressionNode()      {}
func (o *OldExpr) TokenLiteral() string { return "old" }

// ResultExpr is the bare `result` reference, valid only in postconditions.
type ResultExpr struct{ base }

func (r *ResultExpr) expressionNode()      {}
func (r *ResultExpr) TokenLiteral() string { return "result" }

// ListCompExpr is `[expr for pattern in iter if cond]`.
type ListCompExpr struct {
	base
	Result  Expression
	Pattern Pattern
	Iter    Expression
	Cond    Expression // nil if absent
}

func (l *ListCompExpr) expressionNode()      {}
func (l *ListCompExpr) TokenLiteral() string { return "[for]" }

// helper to build a span from a token
func SpanOf(t token.Token) token.Span { return t.Span }
