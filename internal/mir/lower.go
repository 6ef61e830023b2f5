package mir

import (
	"github.com/formalang/forma/internal/ast"
)

// Lower lowers every top-level function and impl method in prog into a
// Program of FuncMir block graphs, the single entry point internal/borrow
// calls before its dataflow passes.
func Lower(items []ast.Statement) *Program {
	p := &Program{}
	var walk func(ast.Statement)
	walk = func(item ast.Statement) {
		switch n := item.(type) {
		case *ast.Function:
			if fm := LowerFunction(n); fm != nil {
				p.Funcs = append(p.Funcs, fm)
			}
		case *ast.Impl:
			for _, m := range n.Methods {
				if fm := LowerFunction(m); fm != nil {
					p.Funcs = append(p.Funcs, fm)
				}
			}
		case *ast.AttributedItem:
			walk(n.Item)
		}
	}
	for _, item := range items {
		walk(item)
	}
	return p
}

// loopCtx records the Goto targets `break`/`continue` resolve to inside the
// loop currently being lowered, the MIR counterpart of the teacher's
// compiler_loops.go break/continue patch-list stack.
type loopCtx struct {
	continueTarget int
	breakTarget    int
}

type builder struct {
	fn      *FuncMir
	cur     *BasicBlock
	loops   []loopCtx
	termSet bool
}

// LowerFunction lowers one function's body into a FuncMir. A function with
// no body (a trait's required method signature) lowers to nil.
func LowerFunction(fn *ast.Function) *FuncMir {
	if fn.Body == nil {
		return nil
	}
	fm := &FuncMir{Name: fn.Name, IsMethod: fn.IsMethod}
	for _, p := range fn.Params {
		fm.Params = append(fm.Params, p.Name)
	}
	b := &builder{fn: fm}
	entry := b.newBlock()
	fm.Entry = entry.ID
	b.cur = entry
	b.lowerBlock(fn.Body)
	if !b.termSet {
		b.cur.Term = Term{Kind: TReturn}
	}
	return fm
}

func (b *builder) newBlock() *BasicBlock {
	bb := &BasicBlock{ID: len(b.fn.Blocks)}
	b.fn.Blocks = append(b.fn.Blocks, bb)
	return bb
}

func (b *builder) emit(s Stmt) {
	b.cur.Stmts = append(b.cur.Stmts, s)
}

func (b *builder) lowerBlock(blk *ast.Block) {
	for _, stmt := range blk.Statements {
		if b.termSet {
			return
		}
		b.lowerStmt(stmt)
	}
}

func (b *builder) lowerStmt(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.ExprStatement:
		if ifx, ok := n.X.(*ast.IfExpr); ok {
			b.lowerIf(ifx)
			return
		}
		b.emit(Stmt{Kind: SEval, Value: b.lowerExpr(n.X), Span: n.GetSpan()})
	case *ast.LetStatement:
		rv := b.lowerExpr(n.Value)
		if n.Name != "" {
			b.emit(Stmt{Kind: SAssign, Dest: Place{Local: n.Name}, Value: rv, Span: n.GetSpan()})
		} else if n.Pattern != nil {
			for _, name := range patternLocals(n.Pattern) {
				b.emit(Stmt{Kind: SAssign, Dest: Place{Local: name}, Value: rv, Span: n.GetSpan()})
			}
		}
	case *ast.AssignStatement:
		rv := b.lowerExpr(n.Value)
		dest := placeOf(n.Target)
		b.emit(Stmt{Kind: SAssign, Dest: dest, Value: rv, Span: n.GetSpan()})
	case *ast.ReturnStatement:
		var rv *RValue
		if n.Value != nil {
			v := b.lowerExpr(n.Value)
			rv = &v
		}
		b.setTerm(Term{Kind: TReturn, Value: rv})
	case *ast.BreakStatement:
		if len(b.loops) == 0 {
			return
		}
		b.setTerm(Term{Kind: TGoto, Target: b.loops[len(b.loops)-1].breakTarget})
	case *ast.ContinueStatement:
		if len(b.loops) == 0 {
			return
		}
		b.setTerm(Term{Kind: TGoto, Target: b.loops[len(b.loops)-1].continueTarget})
	case *ast.WhileStatement:
		b.lowerWhile(n)
	case *ast.LoopStatement:
		b.lowerLoop(n)
	case *ast.ForStatement:
		b.lowerFor(n)
	case *ast.Block:
		b.lowerBlock(n)
	case *ast.AttributedItem:
		b.lowerStmt(n.Item)
	case *ast.Function:
		// nested function declarations are not lowered: Lower walks only
		// top-level items and impl methods, so a nested body is not
		// move-checked.
	}
}

func (b *builder) setTerm(t Term) {
	b.cur.Term = t
	b.termSet = true
}

func (b *builder) lowerIf(n *ast.IfExpr) {
	condRV := b.lowerExpr(n.Cond)
	thenB := b.newBlock()
	elseB := b.newBlock()
	mergeB := b.newBlock()
	b.setTerm(Term{Kind: TBranch, Cond: &condRV, Then: thenB.ID, Else: elseB.ID})

	b.cur = thenB
	b.termSet = false
	b.lowerExprAsStmt(n.Then)
	if !b.termSet {
		b.setTerm(Term{Kind: TGoto, Target: mergeB.ID})
	}

	b.cur = elseB
	b.termSet = false
	if n.Else != nil {
		b.lowerExprAsStmt(n.Else)
	}
	if !b.termSet {
		b.setTerm(Term{Kind: TGoto, Target: mergeB.ID})
	}

	b.cur = mergeB
	b.termSet = false
}

// lowerExprAsStmt lowers an expression appearing in statement position
// (an if/match arm body), unwrapping a BlockExpr/Block the way the parser
// produces for braces-or-indent bodies.
func (b *builder) lowerExprAsStmt(e ast.Expression) {
	switch n := e.(type) {
	case *ast.BlockExpr:
		b.lowerBlock(n.Body)
	case *ast.IfExpr:
		b.lowerIf(n)
	default:
		b.emit(Stmt{Kind: SEval, Value: b.lowerExpr(e), Span: e.GetSpan()})
	}
}

func (b *builder) lowerWhile(n *ast.WhileStatement) {
	head := b.newBlock()
	body := b.newBlock()
	exit := b.newBlock()
	b.setTerm(Term{Kind: TGoto, Target: head.ID})

	b.cur = head
	b.termSet = false
	cond := b.lowerExpr(n.Cond)
	b.setTerm(Term{Kind: TBranch, Cond: &cond, Then: body.ID, Else: exit.ID})

	b.loops = append(b.loops, loopCtx{continueTarget: head.ID, breakTarget: exit.ID})
	b.cur = body
	b.termSet = false
	b.lowerBlock(n.Body)
	if !b.termSet {
		b.setTerm(Term{Kind: TGoto, Target: head.ID})
	}
	b.loops = b.loops[:len(b.loops)-1]

	b.cur = exit
	b.termSet = false
}

func (b *builder) lowerLoop(n *ast.LoopStatement) {
	head := b.newBlock()
	exit := b.newBlock()
	b.setTerm(Term{Kind: TGoto, Target: head.ID})

	b.loops = append(b.loops, loopCtx{continueTarget: head.ID, breakTarget: exit.ID})
	b.cur = head
	b.termSet = false
	b.lowerBlock(n.Body)
	if !b.termSet {
		b.setTerm(Term{Kind: TGoto, Target: head.ID})
	}
	b.loops = b.loops[:len(b.loops)-1]

	b.cur = exit
	b.termSet = false
}

func (b *builder) lowerFor(n *ast.ForStatement) {
	iterRV := b.lowerExpr(n.Iter)
	head := b.newBlock()
	body := b.newBlock()
	exit := b.newBlock()
	b.emit(Stmt{Kind: SEval, Value: iterRV, Span: n.GetSpan()})
	b.setTerm(Term{Kind: TGoto, Target: head.ID})

	b.cur = head
	b.termSet = false
	b.setTerm(Term{Kind: TBranch, Then: body.ID, Else: exit.ID})

	b.loops = append(b.loops, loopCtx{continueTarget: head.ID, breakTarget: exit.ID})
	b.cur = body
	b.termSet = false
	for _, name := range patternLocals(n.Pattern) {
		b.emit(Stmt{Kind: SAssign, Dest: Place{Local: name}, Value: RValue{Kind: ROther}, Span: n.GetSpan()})
	}
	b.lowerBlock(n.Body)
	if !b.termSet {
		b.setTerm(Term{Kind: TGoto, Target: head.ID})
	}
	b.loops = b.loops[:len(b.loops)-1]

	b.cur = exit
	b.termSet = false
}

func patternLocals(p ast.Pattern) []string {
	switch pat := p.(type) {
	case *ast.IdentPattern:
		return []string{pat.Name}
	case *ast.TuplePattern:
		var out []string
		for _, e := range pat.Elements {
			out = append(out, patternLocals(e)...)
		}
		return out
	case *ast.RefPattern:
		return patternLocals(pat.Inner)
	}
	return nil
}

func placeOf(e ast.Expression) Place {
	switch n := e.(type) {
	case *ast.Identifier:
		return Place{Local: n.Name}
	case *ast.FieldAccessExpr:
		if id, ok := n.Receiver.(*ast.Identifier); ok {
			return Place{Local: id.Name, Field: n.Field}
		}
	}
	return Place{Local: "<expr>"}
}

// lowerExpr collects every place an expression reads (its recursive
// identifier set) into RValue.Operands, the conservative over-approximation
// internal/borrow's move checker uses: an identifier read anywhere inside an
// expression -- including inside a branch never taken at runtime -- counts
// as a potential use, trading a few false positives in asymmetric
// branches for never missing a real use-after-move.
func (b *builder) lowerExpr(e ast.Expression) RValue {
	rv := RValue{Kind: RUse, Span: e.GetSpan()}
	if id, ok := e.(*ast.Identifier); ok {
		rv.Place = Place{Local: id.Name}
		rv.Operands = []Place{{Local: id.Name}}
		return rv
	}
	rv.Kind = ROther
	rv.Operands = collectPlaces(e, nil)
	if call, ok := e.(*ast.CallExpr); ok {
		rv.Kind = RCall
		if callee, ok := call.Callee.(*ast.Identifier); ok {
			rv.Callee = callee.Name
		}
	}
	if u, ok := e.(*ast.UnaryExpr); ok && (u.Op == "&" || u.Op == "&mut") {
		rv.Kind = RRef
		rv.RefMutable = u.Op == "&mut"
		if id, ok := u.Operand.(*ast.Identifier); ok {
			rv.Place = Place{Local: id.Name}
		}
	}
	return rv
}

// collectPlaces walks every identifier reachable from e, recursing through
// every expression/pattern-bearing field FORMA's AST exposes.
func collectPlaces(e ast.Expression, out []Place) []Place {
	switch n := e.(type) {
	case nil:
		return out
	case *ast.Identifier:
		out = append(out, Place{Local: n.Name})
	case *ast.BinaryExpr:
		out = collectPlaces(n.Left, out)
		out = collectPlaces(n.Right, out)
	case *ast.UnaryExpr:
		out = collectPlaces(n.Operand, out)
	case *ast.CallExpr:
		out = collectPlaces(n.Callee, out)
		for _, a := range n.Args {
			out = collectPlaces(a.Value, out)
		}
	case *ast.MethodCallExpr:
		out = collectPlaces(n.Receiver, out)
		for _, a := range n.Args {
			out = collectPlaces(a.Value, out)
		}
	case *ast.FieldAccessExpr:
		out = collectPlaces(n.Receiver, out)
	case *ast.IndexExpr:
		out = collectPlaces(n.Receiver, out)
		out = collectPlaces(n.Index, out)
	case *ast.TupleExpr:
		for _, el := range n.Elements {
			out = collectPlaces(el, out)
		}
	case *ast.ArrayLit:
		for _, el := range n.Elements {
			out = collectPlaces(el, out)
		}
	case *ast.StructLit:
		for _, f := range n.Fields {
			out = collectPlaces(f.Value, out)
		}
		out = collectPlaces(n.BaseExpr, out)
	case *ast.IfExpr:
		out = collectPlaces(n.Cond, out)
		out = collectPlaces(n.Then, out)
		out = collectPlaces(n.Else, out)
	case *ast.MatchExpr:
		out = collectPlaces(n.Scrutinee, out)
		for _, arm := range n.Arms {
			out = collectPlaces(arm.Guard, out)
			out = collectPlaces(arm.Body, out)
		}
	case *ast.BlockExpr:
		for _, s := range n.Body.Statements {
			if es, ok := s.(*ast.ExprStatement); ok {
				out = collectPlaces(es.X, out)
			}
		}
	case *ast.TryExpr:
		out = collectPlaces(n.X, out)
	case *ast.CoalesceExpr:
		out = collectPlaces(n.Left, out)
		out = collectPlaces(n.Right, out)
	case *ast.AwaitExpr:
		out = collectPlaces(n.X, out)
	}
	return out
}
