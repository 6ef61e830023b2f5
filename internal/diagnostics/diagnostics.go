// Package diagnostics defines the shared diagnostic type produced by every
// compiler phase (lexer through interpreter) and the JSON error envelope the
// driver emits for `forma check --json`, per spec §6-§7.
package diagnostics

import (
	"fmt"

	"github.com/formalang/forma/internal/token"
)

// Category groups diagnostics by the phase that raised them; it also
// doubles as the JSON envelope's "code" family prefix.
type Category string

const (
	CatLex      Category = "lex"
	CatParse    Category = "parse"
	CatModule   Category = "module"
	CatType     Category = "type"
	CatBorrow   Category = "borrow"
	CatContract Category = "contract"
	CatCapability Category = "capability"
	CatRuntime  Category = "runtime"
)

// LabeledSpan attaches an explanatory label to a secondary span.
type LabeledSpan struct {
	Span  token.Span
	Label string
}

// Diagnostic is one compiler error or warning, carrying enough structure to
// render either a human-readable message or the JSON envelope of spec §6.
type Diagnostic struct {
	Code      string // e.g. "PARSE", "TYPE", "MODULE_NOT_FOUND", "BORROW", "CONTRACT_VIOLATED"
	Category  Category
	Message   string
	File      string
	Primary   token.Span
	Secondary []LabeledSpan
	Help      string
	Warning   bool
}

func (d Diagnostic) Error() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%s: %s: %s", d.File, d.Primary.Start, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Bag accumulates diagnostics across a phase that must report all errors
// instead of stopping at the first (lexer, parser, inferencer, borrow
// checker all use this).
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Addf(code string, cat Category, span token.Span, file, format string, args ...interface{}) {
	b.Add(Diagnostic{Code: code, Category: cat, Message: fmt.Sprintf(format, args...), Primary: span, File: file})
}

func (b *Bag) Extend(ds []Diagnostic) { b.items = append(b.items, ds...) }

func (b *Bag) All() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if !d.Warning {
			return true
		}
	}
	return false
}

func (b *Bag) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if !d.Warning {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Warning {
			out = append(out, d)
		}
	}
	return out
}
