// Package ast defines the FORMA abstract syntax tree: top-level items,
// expressions, patterns, and type syntax, following the teacher's Node/
// Statement/Expression interface shape (TokenLiteral/GetToken/Accept) with a
// Span added to every node so diagnostics always have a precise source range.
package ast

import (
	"github.com/formalang/forma/internal/token"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	TokenLiteral() string
	GetSpan() token.Span
}

// Statement is a Node appearing at statement position (includes items).
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node appearing at expression position.
type Expression interface {
	Node
	expressionNode()
	SetType(Type)
	GetType() Type
}

// Pattern is a Node appearing in match arms, let-bindings, and function
// parameters.
type Pattern interface {
	Node
	patternNode()
}

// base embeds the common span/type bookkeeping every concrete node needs.
type base struct {
	Span token.Span
	Typ  Type // filled in by the inferencer; nil until then
}

func (b *base) GetSpan() token.Span { return b.Span }
func (b *base) SetType(t Type)      { b.Typ = t }
func (b *base) GetType() Type       { return b.Typ }

// Program is the root of a single parsed source file.
type Program struct {
	File       string
	Module     *ModuleDecl
	Imports    []*ImportDecl
	Items      []Statement
	Span       token.Span
}

func (p *Program) TokenLiteral() string { return "" }
func (p *Program) GetSpan() token.Span  { return p.Span }

// ModuleDecl declares the package/module name for this file.
type ModuleDecl struct {
	base
	Name string
}

func (d *ModuleDecl) statementNode()       {}
func (d *ModuleDecl) TokenLiteral() string { return "mod" }

// ImportDecl is a `us path` import, optionally aliased.
type ImportDecl struct {
	base
	Path  string
	Alias string
}

func (d *ImportDecl) statementNode()       {}
func (d *ImportDecl) TokenLiteral() string { return "us" }
