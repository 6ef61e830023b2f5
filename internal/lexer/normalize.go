package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize strips a leading UTF-8 byte-order mark and applies Unicode NFC
// normalization, so that source written in NFD (common on macOS filesystems)
// and source written in NFC tokenize identically -- an identifier typed as
// "café" must lex to the same token regardless of which way the terminal
// composed the é.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}
