package prettyprinter

import (
	"testing"

	"github.com/formalang/forma/internal/parser"
	"github.com/stretchr/testify/require"
)

func TestPrintProgramRoundTripsFunction(t *testing.T) {
	prog, diags := parser.Parse("test.forma", `
f add(a: Int, b: Int) -> Int:
    return a + b * 2
`)
	require.Empty(t, diags)

	printed := PrintProgram(prog)
	require.Contains(t, printed, "f add(a: Int, b: Int) -> Int")

	reprog, reparseDiags := parser.Parse("roundtrip.forma", printed)
	require.Empty(t, reparseDiags, "re-parsing printed source must not fail: %s", printed)
	require.Len(t, reprog.Items, 1)
}

func TestPrintProgramPreservesOperatorPrecedence(t *testing.T) {
	prog, diags := parser.Parse("test.forma", `
f calc() -> Int = (1 + 2) * 3
`)
	require.Empty(t, diags)
	printed := PrintProgram(prog)

	_, reparseDiags := parser.Parse("roundtrip.forma", printed)
	require.Empty(t, reparseDiags)
}

func TestPrintProgramRoundTripsStruct(t *testing.T) {
	prog, diags := parser.Parse("test.forma", `
s Point { x: Int, y: Int }
`)
	require.Empty(t, diags)
	printed := PrintProgram(prog)
	require.Contains(t, printed, "Point")

	_, reparseDiags := parser.Parse("roundtrip.forma", printed)
	require.Empty(t, reparseDiags)
}
