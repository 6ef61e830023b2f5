// Package modules resolves `us` import statements into a loaded, acyclic
// module graph, mirroring the teacher's loader.go/module.go split
// (internal/modules in funvibe-funxy) but keyed on FORMA's dotted import
// paths instead of directory package names.
package modules

import (
	"github.com/formalang/forma/internal/ast"
)

// Module is one loaded FORMA source unit: either a directory of .forma
// files sharing an import path, or a virtual std.* module backed by
// go:embed'd stdlib sources.
type Module struct {
	Path      string // dotted import path, e.g. "std.list" or "app.util"
	Dir       string // absolute directory on disk, empty for virtual modules
	Files     []*ast.Program
	Exports   map[string]bool
	Imports   map[string]*Module // resolved direct imports, keyed by alias (or by path when there is none)
	IsVirtual bool
}

// NewModule creates an empty module ready to receive parsed files.
func NewModule(path string) *Module {
	return &Module{
		Path:    path,
		Exports: make(map[string]bool),
		Imports: make(map[string]*Module),
	}
}

// AllItems concatenates every file's top-level items in file order, the
// unit the type inferencer and interpreter consume.
func (m *Module) AllItems() []ast.Statement {
	var out []ast.Statement
	for _, f := range m.Files {
		out = append(out, f.Items...)
	}
	return out
}
