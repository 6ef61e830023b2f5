package borrow

import (
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/mir"
	"github.com/formalang/forma/internal/token"
)

// checkMoves walks fn's lowered basic blocks in ID order -- the order
// mir.Lower emits them in, which is the order control reaches them on the
// common (non-loop-back) path -- tracking which locals have been moved from
// and flagging any later read of one. A bare `RUse` of a place (binding its
// current value into a new place, e.g. `let y = x` or passing x by value)
// moves it; taking a reference (`RRef`) does not. Reassigning a place
// through SAssign clears its moved state, since the place now holds a fresh
// value again.
func checkMoves(bag *diagnostics.Bag, file string, fn *mir.FuncMir) {
	moved := map[string]token.Span{}
	params := map[string]bool{}
	for _, p := range fn.Params {
		params[p] = true
		// Parameters start initialized, never "moved-from" at entry.
	}

	use := func(places []mir.Place, span token.Span) {
		for _, pl := range places {
			if pl.Field != "" {
				continue // field-projection reads are approximated as always fresh
			}
			if at, ok := moved[pl.Local]; ok {
				bag.Addf("BORROW_USE_AFTER_MOVE", diagnostics.CatBorrow, span, file,
					"use of %q in %q after it was moved at %s", pl.Local, fn.Name, at.Start)
			}
		}
	}

	for _, blk := range fn.Blocks {
		for _, stmt := range blk.Stmts {
			switch stmt.Value.Kind {
			case mir.RUse:
				use([]mir.Place{stmt.Value.Place}, stmt.Span)
			case mir.RRef:
				// borrowing doesn't consume the place
			default:
				use(stmt.Value.Operands, stmt.Span)
			}

			if stmt.Kind == mir.SAssign {
				delete(moved, stmt.Dest.Local)
				if stmt.Value.Kind == mir.RUse && stmt.Value.Place.Local != "" && stmt.Value.Place.Local != stmt.Dest.Local {
					moved[stmt.Value.Place.Local] = stmt.Span
				}
			}
		}
		if blk.Term.Value != nil {
			if blk.Term.Value.Kind == mir.RUse {
				use([]mir.Place{blk.Term.Value.Place}, blk.Term.Value.Span)
			} else {
				use(blk.Term.Value.Operands, blk.Term.Value.Span)
			}
		}
		if blk.Term.Cond != nil {
			use(blk.Term.Cond.Operands, blk.Term.Cond.Span)
		}
	}
}
