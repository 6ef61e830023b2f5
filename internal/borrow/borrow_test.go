package borrow

import (
	"testing"

	"github.com/formalang/forma/internal/parser"
	"github.com/stretchr/testify/require"
)

func checkSource(t *testing.T, src string) []string {
	t.Helper()
	prog, diags := parser.Parse("test.forma", src)
	require.Empty(t, diags, "source failed to parse")
	bag := Check("test.forma", prog.Items)
	codes := make([]string, 0, len(bag.All()))
	for _, d := range bag.All() {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestCheckFlagsUseAfterMove(t *testing.T) {
	codes := checkSource(t, `
f consume(a: Int) -> Int:
    let x = a
    let y = x
    return x
`)
	require.Contains(t, codes, "BORROW_USE_AFTER_MOVE")
}

func TestCheckAllowsReassignAfterMove(t *testing.T) {
	codes := checkSource(t, `
f consume(a: Int) -> Int:
    let mut x = a
    let y = x
    x = 2
    return x
`)
	require.NotContains(t, codes, "BORROW_USE_AFTER_MOVE")
}

func TestCheckRejectsRefStructField(t *testing.T) {
	codes := checkSource(t, `
s Holder { inner: &Int }
`)
	require.Contains(t, codes, "BORROW")
}

func TestCheckRejectsReturnedLocalRef(t *testing.T) {
	codes := checkSource(t, `
f dangling() -> &Int:
    let x = 1
    return &x
`)
	require.Contains(t, codes, "BORROW")
}

func TestCheckAllowsReturnedParamRef(t *testing.T) {
	codes := checkSource(t, `
f passthrough(a: Int) -> &Int:
    return &a
`)
	require.Empty(t, codes)
}
