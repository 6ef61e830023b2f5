// Package mir lowers a type-checked function body into a small
// control-flow-graph intermediate form: basic blocks of straight-line
// statements ending in an explicit jump/branch/return terminator. Modeled
// on the teacher's internal/vm compiler, which already compiles AST
// directly into basic blocks of bytecode with jump targets
// (compiler.go/compiler_loops.go); MIR generalizes that same block-graph
// shape from a flat opcode tape to an explicit graph of Stmt/Term nodes
// internal/borrow walks instead of executing.
package mir

import "github.com/formalang/forma/internal/token"

// Place is an assignable storage location: a local variable, or one field
// projected off it (`x.field`). FORMA has no raw pointer arithmetic, so a
// Place never needs more than one level of field projection to describe
// the borrow-relevant locations the checker cares about.
type Place struct {
	Local string
	Field string // empty for a bare local
}

func (p Place) String() string {
	if p.Field == "" {
		return p.Local
	}
	return p.Local + "." + p.Field
}

// RValueKind tags which shape an RValue carries.
type RValueKind int

const (
	RUse RValueKind = iota
	RConst
	RBinary
	RUnary
	RCall
	RRef
	ROther
)

// RValue is the right-hand side of an assignment: using a place's current
// value (a potential move), a literal, an operator application, a call, or
// taking a reference to a place.
type RValue struct {
	Kind       RValueKind
	Place      Place   // RUse, RRef
	Operands   []Place // RUse/ROther/RCall/RRef: every place read, in order (moves/borrows to check)
	Callee     string  // RCall
	RefMutable bool    // RRef
	Span       token.Span
}

// StmtKind tags which shape a Stmt carries.
type StmtKind int

const (
	SAssign StmtKind = iota
	SEval // an expression evaluated for effect, not stored anywhere
)

// Stmt is one straight-line instruction inside a BasicBlock.
type Stmt struct {
	Kind  StmtKind
	Dest  Place // SAssign only
	Value RValue
	Span  token.Span
}

// TermKind tags how a BasicBlock hands control to its successor(s).
type TermKind int

const (
	TReturn TermKind = iota
	TGoto
	TBranch
	TUnreachable
)

// Term is a BasicBlock's terminator: the teacher's compiler_loops.go patches
// jump offsets after compiling a loop body the same way Then/Else/Target
// here name successor block indices once every block has been lowered.
type Term struct {
	Kind        TermKind
	Value       *RValue // TReturn
	Cond        *RValue // TBranch
	Then, Else  int     // TBranch: successor block indices
	Target      int      // TGoto: successor block index
}

// BasicBlock is a maximal straight-line run of Stmts ending in one Term.
type BasicBlock struct {
	ID    int
	Stmts []Stmt
	Term  Term
}

// FuncMir is one function's lowered body: its parameter names (each an
// implicit local already live in the entry block) and its block graph.
type FuncMir struct {
	Name    string
	Params  []string
	Blocks  []*BasicBlock
	Entry   int
	IsMethod bool
}

func (f *FuncMir) Block(id int) *BasicBlock {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Program is every function's MIR in one unit, the input to internal/borrow.
type Program struct {
	Funcs []*FuncMir
}
