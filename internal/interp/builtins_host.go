package interp

import "github.com/formalang/forma/internal/token"

// token0 is the zero Span used by native builtins that fail: host-library
// errors (I/O, network, db) have no FORMA source location of their own, so
// they report at the call site via the wrapping InterpError's message
// instead of a real span.
func token0() token.Span { return token.Span{} }
