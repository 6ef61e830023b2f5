package infer

import (
	"testing"

	"github.com/formalang/forma/internal/parser"
	"github.com/stretchr/testify/require"
)

func checkSource(t *testing.T, src string) *Checker {
	t.Helper()
	prog, parseDiags := parser.Parse("test.forma", src)
	require.Empty(t, parseDiags, "source failed to parse")

	g := NewGlobals()
	BuildGlobals(prog.Items, g)
	c := NewChecker("test.forma", g)
	c.CheckProgram(prog.Items)
	return c
}

func TestCheckFunctionBodyMatchesReturnType(t *testing.T) {
	c := checkSource(t, `
f add(a: Int, b: Int) -> Int:
    return a + b
`)
	require.Empty(t, c.Diags.All())
}

func TestCheckFunctionReturnMismatchReported(t *testing.T) {
	c := checkSource(t, `
f broken(a: Int) -> Str = a + 1
`)
	require.NotEmpty(t, c.Diags.All())
	require.Equal(t, "TYPE_MISMATCH", c.Diags.All()[0].Code)
}

func TestCheckUndefinedNameReported(t *testing.T) {
	c := checkSource(t, `
f oops() -> Int = missing_name
`)
	found := false
	for _, d := range c.Diags.All() {
		if d.Code == "UNDEFINED_NAME" {
			found = true
		}
	}
	require.True(t, found)
}

func TestCheckStructFieldAccess(t *testing.T) {
	c := checkSource(t, `
s Point { x: Int, y: Int }

f sum(p: Point) -> Int = p.x + p.y
`)
	require.Empty(t, c.Diags.All())
}

func TestCheckUnknownFieldReported(t *testing.T) {
	c := checkSource(t, `
s Point { x: Int, y: Int }

f bad(p: Point) -> Int = p.z
`)
	require.NotEmpty(t, c.Diags.All())
	require.Equal(t, "UNKNOWN_FIELD", c.Diags.All()[0].Code)
}

func TestCheckEnumMatchExhaustive(t *testing.T) {
	c := checkSource(t, `
e Color { Red, Green, Blue }

f name(c: Color) -> Str:
    return match c {
        Red => "red"
        Green => "green"
        Blue => "blue"
    }
`)
	require.Empty(t, c.Diags.All())
}

func TestCheckEnumMatchNonExhaustiveReported(t *testing.T) {
	c := checkSource(t, `
e Color { Red, Green, Blue }

f name(c: Color) -> Str:
    return match c {
        Red => "red"
        Green => "green"
    }
`)
	require.NotEmpty(t, c.Diags.All())
	require.Equal(t, "NON_EXHAUSTIVE_MATCH", c.Diags.All()[0].Code)
}

func TestCheckEnumMatchWildcardSatisfiesExhaustiveness(t *testing.T) {
	c := checkSource(t, `
e Color { Red, Green, Blue }

f name(c: Color) -> Str:
    return match c {
        Red => "red"
        _ => "other"
    }
`)
	require.Empty(t, c.Diags.All())
}

func TestCheckGenericCallInstantiatesReturnType(t *testing.T) {
	c := checkSource(t, `
f identity<A>(x: A) -> A = x

f use_it() -> Int = identity(5)
`)
	require.Empty(t, c.Diags.All())
}
