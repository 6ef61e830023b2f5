// Package driver centralizes verb→phase wiring so every `cmd/forma` cobra
// command and any future library embedding share one lex→parse→check→
// borrow-check→run pipeline, grounded on the teacher's cmd/funxy/main.go
// verb dispatch (internal/driver generalizes that dispatch table into a
// package cmd/forma's cobra commands and a future embedding caller can both
// call into).
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/borrow"
	"github.com/formalang/forma/internal/config"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/infer"
	"github.com/formalang/forma/internal/interp"
	"github.com/formalang/forma/internal/manifest"
	"github.com/formalang/forma/internal/modules"
	"github.com/formalang/forma/internal/parser"
)

// Pipeline holds everything a single invocation of the driver needs: the
// project root, its parsed manifest (or a default one if forma.toml is
// absent), and the module loader every phase shares so a module is parsed
// only once regardless of how many phases run.
type Pipeline struct {
	Root     string
	Manifest *manifest.Manifest
	Loader   *modules.Loader
}

// NewPipeline resolves root's forma.toml (if present) and returns a ready
// Pipeline. A missing manifest is not an error -- a bare directory of
// .forma files with no capabilities granted is a valid, if powerless,
// program, matching the teacher's own willingness to run a single file with
// no project scaffolding at all.
func NewPipeline(root string) (*Pipeline, error) {
	m := manifest.New()
	manifestPath := filepath.Join(root, "forma.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		parsed, err := manifest.Parse(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", manifestPath, err)
		}
		m = parsed
	}
	return &Pipeline{Root: root, Manifest: m, Loader: modules.NewLoader(root)}, nil
}

// LoadRoot parses every source file directly inside the project root into
// one Module (the root package), resolving its imports through Loader the
// same way modules.Loader.loadDir resolves a named package's imports --
// duplicated here rather than exported from modules because the project
// root is addressed by filesystem path, not by the dotted import-path
// vocabulary every other module is keyed by.
func (p *Pipeline) LoadRoot() (*modules.Module, []diagnostics.Diagnostic, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("reading project root %s: %w", p.Root, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if config.HasSourceExt(e.Name()) {
			files = append(files, filepath.Join(p.Root, e.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no %s source files found in %s", config.SourceFileExt, p.Root)
	}

	mod := modules.NewModule("")
	mod.Dir = p.Root
	var diags []diagnostics.Diagnostic
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, diags, err
		}
		prog, fileDiags := parser.Parse(f, string(src))
		diags = append(diags, fileDiags...)
		mod.Files = append(mod.Files, prog)
	}
	for _, prog := range mod.Files {
		for _, imp := range prog.Imports {
			dep, depDiags, err := p.Loader.Load(imp.Path)
			diags = append(diags, depDiags...)
			if err != nil {
				diags = append(diags, diagnostics.Diagnostic{
					Code: "MODULE_NOT_FOUND", Category: diagnostics.CatModule,
					Message: err.Error(), File: prog.File, Primary: imp.Span,
				})
				continue
			}
			key := imp.Alias
			if key == "" {
				key = imp.Path
			}
			mod.Imports[key] = dep
		}
	}
	return mod, diags, nil
}

// TypeCheck seeds global signatures from every reachable module (mod's own
// items plus every transitively imported module) and then checks mod's own
// function bodies, mirroring the teacher's two-pass analyzer (collect
// signatures, then check bodies against them).
func TypeCheck(mod *modules.Module) *diagnostics.Bag {
	g := infer.NewGlobals()
	seen := map[*modules.Module]bool{}
	var seed func(*modules.Module)
	seed = func(m *modules.Module) {
		if seen[m] {
			return
		}
		seen[m] = true
		for _, dep := range m.Imports {
			seed(dep)
		}
		infer.BuildGlobals(m.AllItems(), g)
	}
	seed(mod)

	c := infer.NewChecker(mod.Files[0].File, g)
	c.CheckProgram(mod.AllItems())
	return &c.Diags
}

// BorrowCheck runs every internal/borrow pass against mod's own items; its
// imported dependencies are not borrow-checked.
func BorrowCheck(mod *modules.Module) *diagnostics.Bag {
	bag := &diagnostics.Bag{}
	for _, prog := range mod.Files {
		bag.Extend(borrow.Check(prog.File, prog.Items).All())
	}
	return bag
}

// Capabilities converts the manifest's capability name list into the
// CapabilitySet the interpreter enforces against, accepting exactly the
// vocabulary in config.AllCapabilities.
func (p *Pipeline) Capabilities() (interp.CapabilitySet, error) {
	set := interp.CapabilitySet{}
	for _, name := range p.Manifest.Capabilities {
		valid := false
		for _, known := range config.AllCapabilities {
			if known == name {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("forma.toml grants unknown capability %q", name)
		}
		set[interp.Capability(name)] = true
	}
	return set, nil
}

// Run loads mod into a fresh interpreter and calls its `main` function with
// no arguments, the driver-level equivalent of the teacher's evaluateModule
// + applyFunction(main) combination in cmd/funxy/main.go.
func Run(mod *modules.Module, caps interp.CapabilitySet) (interp.Value, error) {
	i := interp.New(caps)
	if err := i.LoadModule(mod); err != nil {
		return nil, err
	}
	main, ok := i.Globals.Get("main")
	if !ok {
		return nil, fmt.Errorf("no `main` function declared")
	}
	fn, ok := main.(interp.Func)
	if !ok {
		return nil, fmt.Errorf("`main` is not a function")
	}
	return i.CallFunction(fn, nil)
}

// FindFunction looks up a top-level function by name across mod's own items,
// used by `typeof` to resolve a name the user named on the command line.
func FindFunction(mod *modules.Module, name string) *ast.Function {
	for _, item := range mod.AllItems() {
		if fn, ok := item.(*ast.Function); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

// topLevelName extracts the declared name from any top-level item that
// binds one, unwrapping AttributedItem wrappers, for `complete`'s
// in-scope-declaration candidates.
func topLevelName(item ast.Statement) string {
	if attr, ok := item.(*ast.AttributedItem); ok {
		return topLevelName(attr.Item)
	}
	switch n := item.(type) {
	case *ast.Function:
		return n.Name
	case *ast.Struct:
		return n.Name
	case *ast.Enum:
		return n.Name
	case *ast.Trait:
		return n.Name
	case *ast.TypeAlias:
		return n.Name
	}
	return ""
}
