package modules

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/parser"
)

// loadStd resolves a `std` or `std.<name>` import against the embedded
// stdlib tree, the FORMA-native analogue of the teacher's GetVirtualPackage
// registry (funvibe-funxy's internal/modules/virtual_*.go), except every
// std.* module here is itself FORMA source rather than a Go-native shim.
func (l *Loader) loadStd(path string) (*Module, []diagnostics.Diagnostic, error) {
	rel := strings.TrimPrefix(path, "std")
	rel = strings.TrimPrefix(rel, ".")
	dir := "stdlib/std"
	if rel != "" {
		dir = "stdlib/std/" + strings.ReplaceAll(rel, ".", "/")
	}

	entries, err := fs.ReadDir(stdlibFS, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("unknown standard library module %q: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".forma") {
			files = append(files, dir+"/"+e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("standard library module %q has no sources", path)
	}

	mod := NewModule(path)
	mod.IsVirtual = true
	var allDiags []diagnostics.Diagnostic
	for _, f := range files {
		src, err := fs.ReadFile(stdlibFS, f)
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

	l.LoadedModules[path] = mod
	l.ModulesByName[path] = mod
	return mod, allDiags, nil
}
