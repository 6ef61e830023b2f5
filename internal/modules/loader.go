package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/config"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/parser"
)

// Loader resolves `us path` imports into a cached, cycle-checked module
// graph. The three-map cycle-tracking shape (LoadedModules/ModulesByName/
// Processing) is kept from the teacher's loader.go verbatim; FORMA resolves
// paths against a project root plus the embedded std.* tree instead of the
// teacher's directory-per-package virtual registry.
type Loader struct {
	Root          string
	LoadedModules map[string]*Module // keyed by resolved absolute path or "std:"+name
	ModulesByName map[string]*Module
	Processing    map[string]bool
}

func NewLoader(root string) *Loader {
	return &Loader{
		Root:          root,
		LoadedModules: make(map[string]*Module),
		ModulesByName: make(map[string]*Module),
		Processing:    make(map[string]bool),
	}
}

// Load resolves a dotted import path (e.g. "std.list" or "app.util") to a
// Module, loading and parsing its source files on first reference and
// returning the cached Module on subsequent references. Cycle detection
// marks the path while in progress and always clears it on exit, including
// on error, matching the teacher's defer-based discipline.
func (l *Loader) Load(path string) (*Module, []diagnostics.Diagnostic, error) {
	if mod, ok := l.LoadedModules[path]; ok {
		return mod, nil, nil
	}
	if strings.HasPrefix(path, "std.") || path == "std" {
		return l.loadStd(path)
	}
	if l.Processing[path] {
		return nil, nil, fmt.Errorf("circular import detected loading module %q", path)
	}
	l.Processing[path] = true
	defer delete(l.Processing, path)

	dir := filepath.Join(append([]string{l.Root}, strings.Split(path, ".")...)...)
	mod, diags, err := l.loadDir(path, dir)
	if err != nil {
		return nil, diags, err
	}
	l.LoadedModules[path] = mod
	l.ModulesByName[path] = mod
	return mod, diags, nil
}

// loadDir parses every *.forma file directly inside dir (non-recursive,
// "one package per directory", same rule the teacher enforces) into a
// single Module, in filename order for determinism.
func (l *Loader) loadDir(path, dir string) (*Module, []diagnostics.Diagnostic, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("module %q not found (looked in %s): %w", path, dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if config.HasSourceExt(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("module %q: no source files in %s", path, dir)
	}

	mod := NewModule(path)
	mod.Dir = dir
	var allDiags []diagnostics.Diagnostic
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, allDiags, err
		}
		prog, diags := parser.Parse(f, string(src))
		allDiags = append(allDiags, diags...)
		mod.Files = append(mod.Files, prog)
	}

	for _, f := range mod.Files {
		for _, item := range f.Items {
			if name, ok := exportedName(item); ok {
				mod.Exports[name] = true
			}
		}
	}

	for _, f := range mod.Files {
		for _, imp := range f.Imports {
			depPath := imp.Path
			dep, depDiags, err := l.Load(depPath)
			allDiags = append(allDiags, depDiags...)
			if err != nil {
				allDiags = append(allDiags, diagnostics.Diagnostic{
					Code:     "MODULE_NOT_FOUND",
					Category: diagnostics.CatModule,
					Message:  err.Error(),
					File:     f.File,
					Primary:  imp.Span,
				})
				continue
			}
			key := imp.Alias
			if key == "" {
				key = depPath
			}
			mod.Imports[key] = dep
		}
	}

	return mod, allDiags, nil
}

// exportedName reports the top-level binding name an item contributes to
// its module's export surface: every named item is exported, unlike the
// teacher's `pub(...)` package declarations — FORMA's import model has no
// explicit export list, and an item's `pub` marker is not consulted here.
func exportedName(item ast.Statement) (string, bool) {
	switch n := item.(type) {
	case *ast.Function:
		return n.Name, true
	case *ast.Struct:
		return n.Name, true
	case *ast.Enum:
		return n.Name, true
	case *ast.Trait:
		return n.Name, true
	case *ast.TypeAlias:
		return n.Name, true
	case *ast.AttributedItem:
		return exportedName(n.Item)
	case *ast.Impl:
		return "", false
	}
	return "", false
}
