// Package borrow checks the ownership invariants spec §4.5/§8 require a
// tree-walking, GC-backed interpreter can't enforce on its own: no reference
// type may be stored where it could outlive its referent (a struct field, an
// enum payload, a collection element), no function may return a reference to
// one of its own locals, and no moved-from local may be read again.
//
// All three checks are static, file-scoped passes over the AST and over the
// internal/mir lowering of each function body; none of them execute FORMA
// code. The move-tracking pass in particular is a single forward walk over
// each function's basic blocks in ID order rather than a fixed-point
// dataflow analysis over the full control-flow graph -- a function whose
// only path to a use is through a loop back-edge the walk hasn't processed
// yet is approximated as "not yet moved", so this pass can under-report on
// pathological loop shapes. It can also over-report: an identifier read
// anywhere inside an if or match expression, including a branch that is not
// taken, counts as a use of that place.
package borrow

import (
	"fmt"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/mir"
)

// Check runs every borrow pass over one module's top-level items and
// returns the accumulated diagnostics. file labels every diagnostic raised.
func Check(file string, items []ast.Statement) *diagnostics.Bag {
	bag := &diagnostics.Bag{}
	checkDeclShapes(bag, file, items)
	checkReturnedLocalRefs(bag, file, items)

	prog := mir.Lower(items)
	for _, fn := range prog.Funcs {
		checkMoves(bag, file, fn)
	}
	return bag
}

func addf(bag *diagnostics.Bag, file string, span ast.Node, format string, args ...interface{}) {
	bag.Addf("BORROW", diagnostics.CatBorrow, span.GetSpan(), file, format, args...)
}
