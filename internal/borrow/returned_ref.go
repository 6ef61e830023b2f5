package borrow

import (
	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/diagnostics"
)

// checkReturnedLocalRefs rejects `return &local` (or the implicit tail-
// expression equivalent) when local names a let-bound variable rather than
// a parameter: the local's storage is popped when the function returns, so
// a reference to it is already dangling at the call site. Returning a
// reference to a parameter is fine -- the caller's frame outlives the call.
func checkReturnedLocalRefs(bag *diagnostics.Bag, file string, items []ast.Statement) {
	var walk func(ast.Statement)
	walk = func(item ast.Statement) {
		switch n := item.(type) {
		case *ast.Function:
			checkFunctionReturns(bag, file, n)
		case *ast.Impl:
			for _, m := range n.Methods {
				checkFunctionReturns(bag, file, m)
			}
		case *ast.AttributedItem:
			walk(n.Item)
		}
	}
	for _, item := range items {
		walk(item)
	}
}

func checkFunctionReturns(bag *diagnostics.Bag, file string, fn *ast.Function) {
	if fn.Body == nil {
		return
	}
	params := map[string]bool{}
	for _, p := range fn.Params {
		params[p.Name] = true
	}
	locals := map[string]bool{}

	var walkBlock func(*ast.Block, bool)
	var walkStmt func(ast.Statement, bool)
	var checkTailExpr func(ast.Expression)

	checkTailExpr = func(e ast.Expression) {
		u, ok := e.(*ast.UnaryExpr)
		if !ok || (u.Op != "&" && u.Op != "&mut") {
			return
		}
		id, ok := u.Operand.(*ast.Identifier)
		if !ok {
			return
		}
		if locals[id.Name] && !params[id.Name] {
			addf(bag, file, u, "function %q returns a reference to local %q, which does not outlive the call", fn.Name, id.Name)
		}
	}

	walkStmt = func(stmt ast.Statement, isTail bool) {
		switch n := stmt.(type) {
		case *ast.LetStatement:
			if n.Name != "" {
				locals[n.Name] = true
			}
		case *ast.ReturnStatement:
			if n.Value != nil {
				checkTailExpr(n.Value)
			}
		case *ast.ExprStatement:
			if isTail {
				checkTailExpr(n.X)
			}
			if ifx, ok := n.X.(*ast.IfExpr); ok {
				checkIfTail(ifx, isTail, checkTailExpr)
			}
		case *ast.Block:
			walkBlock(n, isTail)
		case *ast.AttributedItem:
			walkStmt(n.Item, isTail)
		}
	}

	walkBlock = func(blk *ast.Block, isTail bool) {
		for i, s := range blk.Statements {
			walkStmt(s, isTail && i == len(blk.Statements)-1)
		}
	}

	walkBlock(fn.Body, true)
}

// checkIfTail recurses into an if-expression's branches when it sits in
// tail position, so `return if cond: &x else: &y` (or the bare statement
// form, which implicitly yields its last branch's value) is also checked.
func checkIfTail(n *ast.IfExpr, isTail bool, check func(ast.Expression)) {
	if !isTail {
		return
	}
	for _, branch := range []ast.Expression{n.Then, n.Else} {
		switch b := branch.(type) {
		case *ast.BlockExpr:
			if len(b.Body.Statements) == 0 {
				continue
			}
			last, ok := b.Body.Statements[len(b.Body.Statements)-1].(*ast.ExprStatement)
			if !ok {
				continue
			}
			if inner, ok := last.X.(*ast.IfExpr); ok {
				checkIfTail(inner, true, check)
				continue
			}
			check(last.X)
		case nil:
			// no else branch
		default:
			check(b)
		}
	}
}
