package lexer

import (
	"testing"

	"github.com/formalang/forma/internal/token"
	"github.com/stretchr/testify/require"
)

func tokenTypes(t *testing.T, src string) []token.Type {
	t.Helper()
	toks, diags := New("test.forma", src).Tokenize()
	require.Empty(t, diags)
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeSimpleBinding(t *testing.T) {
	types := tokenTypes(t, "let x = 1 + 2\n")
	require.Contains(t, types, token.INT)
	require.Contains(t, types, token.PLUS)
	require.Equal(t, token.EOF, types[len(types)-1])
}

func TestTokenizeIndentDedent(t *testing.T) {
	types := tokenTypes(t, "f add(a: Int) -> Int:\n    return a\n")
	require.Contains(t, types, token.INDENT)
	require.Contains(t, types, token.DEDENT)
}

func TestTokenizeContextualKeywordAsIdent(t *testing.T) {
	toks, diags := New("test.forma", "let f = 1\n").Tokenize()
	require.Empty(t, diags)
	require.Equal(t, "f", toks[1].Lexeme)
	require.True(t, toks[1].MayBeKeyword)
}

func TestNormalizeStripsBOM(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("let x = 1\n")...)
	got := Normalize(withBOM)
	require.Equal(t, "let x = 1\n", string(got))
}

func TestNormalizeComposesNFC(t *testing.T) {
	// An ASCII "e" followed by the standalone combining acute accent
	// U+0301 is the NFD spelling of e-acute; Normalize must fold the pair
	// into the single precomposed U+00E9 codepoint.
	decomposed := string([]rune{'e', rune(0x0301)})
	precomposed := string([]rune{rune(0x00E9)})
	require.Equal(t, precomposed, string(Normalize([]byte(decomposed))))
}
