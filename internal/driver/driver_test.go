package driver

import (
	"testing"

	"github.com/formalang/forma/internal/modules"
	"github.com/formalang/forma/internal/parser"
	"github.com/stretchr/testify/require"
)

func parseModule(t *testing.T, src string) *modules.Module {
	t.Helper()
	prog, diags := parser.Parse("test.forma", src)
	require.Empty(t, diags)
	mod := modules.NewModule("test")
	mod.Files = append(mod.Files, prog)
	return mod
}

func TestFindFunctionLocatesTopLevelFunc(t *testing.T) {
	mod := parseModule(t, `
f add(a: Int, b: Int) -> Int:
    return a + b
`)
	fn := FindFunction(mod, "add")
	require.NotNil(t, fn)
	require.Equal(t, "add", fn.Name)
}

func TestFindFunctionMissingReturnsNil(t *testing.T) {
	mod := parseModule(t, `
f add(a: Int, b: Int) -> Int:
    return a + b
`)
	require.Nil(t, FindFunction(mod, "subtract"))
}

func TestTopLevelNameCoversEveryDeclKind(t *testing.T) {
	mod := parseModule(t, `
f greet() -> Unit =
    println("hi")

s Point { x: Int, y: Int }

e Color { Red, Green }

t Shape { f area(self) -> Int }

type Meters = Int
`)
	var names []string
	for _, item := range mod.AllItems() {
		if n := topLevelName(item); n != "" {
			names = append(names, n)
		}
	}
	require.ElementsMatch(t, []string{"greet", "Point", "Color", "Shape", "Meters"}, names)
}
