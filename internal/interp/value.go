// Package interp is FORMA's tree-walking evaluator: it runs a type-checked
// program directly off its AST, the runtime counterpart to internal/infer's
// static pass.
package interp

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/formalang/forma/internal/ast"
)

// ValueKind tags the runtime representation of a FORMA value.
type ValueKind string

const (
	IntVal      ValueKind = "Int"
	FloatVal    ValueKind = "Float"
	BoolVal     ValueKind = "Bool"
	CharVal     ValueKind = "Char"
	StrVal      ValueKind = "Str"
	UnitVal     ValueKind = "Unit"
	NoneVal     ValueKind = "None"
	ListVal     ValueKind = "List"
	TupleVal    ValueKind = "Tuple"
	MapVal      ValueKind = "Map"
	SetVal      ValueKind = "Set"
	StructVal   ValueKind = "Struct"
	EnumVal     ValueKind = "Enum"
	FuncVal     ValueKind = "Func"
	BuiltinVal  ValueKind = "Builtin"
	TaskVal     ValueKind = "Task"
	ChannelVal  ValueKind = "Channel"
	MutexVal    ValueKind = "Mutex"
	FileVal     ValueKind = "File"
	SocketVal   ValueKind = "Socket"
	DbVal       ValueKind = "Db"
	OpaqueVal   ValueKind = "Opaque"
	ReturnSig   ValueKind = "ReturnSignal"
	BreakSig    ValueKind = "BreakSignal"
	ContinueSig ValueKind = "ContinueSignal"
)

// Value is any runtime value produced by the evaluator.
type Value interface {
	Kind() ValueKind
	Inspect() string
	Hash() uint64
}

type Int struct{ V int64 }

func (Int) Kind() ValueKind   { return IntVal }
func (i Int) Inspect() string { return fmt.Sprintf("%d", i.V) }
func (i Int) Hash() uint64    { return uint64(i.V) }

type Float struct{ V float64 }

func (Float) Kind() ValueKind   { return FloatVal }
func (f Float) Inspect() string { return fmt.Sprintf("%g", f.V) }
func (f Float) Hash() uint64    { return hashString(fmt.Sprintf("%g", f.V)) }

type Bool struct{ V bool }

func (Bool) Kind() ValueKind   { return BoolVal }
func (b Bool) Inspect() string { return fmt.Sprintf("%t", b.V) }
func (b Bool) Hash() uint64 {
	if b.V {
		return 1
	}
	return 0
}

type Char struct{ V rune }

func (Char) Kind() ValueKind   { return CharVal }
func (c Char) Inspect() string { return fmt.Sprintf("'%c'", c.V) }
func (c Char) Hash() uint64    { return uint64(c.V) }

type Str struct{ V string }

func (Str) Kind() ValueKind   { return StrVal }
func (s Str) Inspect() string { return s.V }
func (s Str) Hash() uint64    { return hashString(s.V) }

type Unit struct{}

func (Unit) Kind() ValueKind   { return UnitVal }
func (Unit) Inspect() string   { return "()" }
func (Unit) Hash() uint64      { return 0 }

// None is the empty Option; Some is any other value wrapped implicitly
// (FORMA does not box Some - a present Option value IS the inner value,
// matching how `match` patterns distinguish `none` from a binding pattern).
type None struct{}

func (None) Kind() ValueKind   { return NoneVal }
func (None) Inspect() string   { return "none" }
func (None) Hash() uint64      { return 0 }

type List struct{ Elements []Value }

func (List) Kind() ValueKind { return ListVal }
func (l List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l List) Hash() uint64 {
	h := fnv.New64a()
	for _, e := range l.Elements {
		fmt.Fprintf(h, "%d,", e.Hash())
	}
	return h.Sum64()
}

type Tuple struct{ Elements []Value }

func (Tuple) Kind() ValueKind { return TupleVal }
func (t Tuple) Inspect() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Inspect()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t Tuple) Hash() uint64 {
	h := fnv.New64a()
	for _, e := range t.Elements {
		fmt.Fprintf(h, "%d,", e.Hash())
	}
	return h.Sum64()
}

// MapEntry preserves insertion order for deterministic Inspect output.
type MapEntry struct {
	Key, Value Value
}

type Map struct{ Entries []MapEntry }

func (Map) Kind() ValueKind { return MapVal }
func (m Map) Inspect() string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		parts[i] = e.Key.Inspect() + ": " + e.Value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (m Map) Hash() uint64 {
	h := fnv.New64a()
	for _, e := range m.Entries {
		fmt.Fprintf(h, "%d=%d,", e.Key.Hash(), e.Value.Hash())
	}
	return h.Sum64()
}

func (m Map) Get(key Value) (Value, bool) {
	for _, e := range m.Entries {
		if e.Key.Hash() == key.Hash() {
			return e.Value, true
		}
	}
	return nil, false
}

func (m Map) Set(key, val Value) Map {
	out := make([]MapEntry, 0, len(m.Entries)+1)
	replaced := false
	for _, e := range m.Entries {
		if e.Key.Hash() == key.Hash() {
			out = append(out, MapEntry{key, val})
			replaced = true
		} else {
			out = append(out, e)
		}
	}
	if !replaced {
		out = append(out, MapEntry{key, val})
	}
	return Map{Entries: out}
}

type Set struct{ Elements []Value }

func (Set) Kind() ValueKind { return SetVal }
func (s Set) Inspect() string {
	parts := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		parts[i] = e.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (s Set) Hash() uint64 {
	h := fnv.New64a()
	for _, e := range s.Elements {
		fmt.Fprintf(h, "%d,", e.Hash())
	}
	return h.Sum64()
}

func (s Set) Has(v Value) bool {
	for _, e := range s.Elements {
		if e.Hash() == v.Hash() {
			return true
		}
	}
	return false
}

type Struct struct {
	TypeName string
	Fields   map[string]Value
}

func (Struct) Kind() ValueKind { return StructVal }
func (s Struct) Inspect() string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + s.Fields[k].Inspect()
	}
	return s.TypeName + " { " + strings.Join(parts, ", ") + " }"
}
func (s Struct) Hash() uint64 { return hashString(s.Inspect()) }

type Enum struct {
	TypeName    string
	VariantName string
	TupleElems  []Value
	Fields      map[string]Value
}

func (Enum) Kind() ValueKind { return EnumVal }
func (e Enum) Inspect() string {
	if len(e.TupleElems) > 0 {
		parts := make([]string, len(e.TupleElems))
		for i, v := range e.TupleElems {
			parts[i] = v.Inspect()
		}
		return fmt.Sprintf("%s.%s(%s)", e.TypeName, e.VariantName, strings.Join(parts, ", "))
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + e.Fields[k].Inspect()
		}
		return fmt.Sprintf("%s.%s { %s }", e.TypeName, e.VariantName, strings.Join(parts, ", "))
	}
	return e.TypeName + "." + e.VariantName
}
func (e Enum) Hash() uint64 { return hashString(e.Inspect()) }

// Func is a user-defined closure: the declaration plus the environment it
// closed over.
type Func struct {
	Decl *ast.Function
	Env  *Env
	Self Value // bound receiver for method values, nil otherwise
}

func (Func) Kind() ValueKind   { return FuncVal }
func (f Func) Inspect() string { return "<fn " + f.Decl.Name + ">" }
func (f Func) Hash() uint64    { return hashString(f.Decl.Name) }

// Builtin wraps a natively implemented function (the `native_*` family the
// stdlib sources call, plus I/O, task, and capability-gated operations).
type Builtin struct {
	Name string
	Fn   func(i *Interp, args []Value) (Value, error)
}

func (Builtin) Kind() ValueKind   { return BuiltinVal }
func (b Builtin) Inspect() string { return "<builtin " + b.Name + ">" }
func (b Builtin) Hash() uint64    { return hashString(b.Name) }

// Opaque wraps a host resource (file handle, socket, db connection, task,
// channel, mutex) that the evaluator cannot introspect structurally.
type Opaque struct {
	Tag  ValueKind
	Data interface{}
}

func (o Opaque) Kind() ValueKind   { return o.Tag }
func (o Opaque) Inspect() string   { return fmt.Sprintf("<%s>", o.Tag) }
func (o Opaque) Hash() uint64      { return hashString(fmt.Sprintf("%p", o.Data)) }

// control-flow signals, carried as Values through statement evaluation so
// the block evaluator can unwind loops/functions without panics.
type ReturnSignal struct{ Value Value }

func (ReturnSignal) Kind() ValueKind { return ReturnSig }
func (r ReturnSignal) Inspect() string { return "return " + r.Value.Inspect() }
func (r ReturnSignal) Hash() uint64    { return 0 }

type BreakSignal struct{ Value Value }

func (BreakSignal) Kind() ValueKind { return BreakSig }
func (b BreakSignal) Inspect() string { return "break" }
func (b BreakSignal) Hash() uint64    { return 0 }

type ContinueSignal struct{}

func (ContinueSignal) Kind() ValueKind   { return ContinueSig }
func (ContinueSignal) Inspect() string { return "continue" }
func (ContinueSignal) Hash() uint64    { return 0 }

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func isSignal(v Value) bool {
	switch v.Kind() {
	case ReturnSig, BreakSig, ContinueSig:
		return true
	}
	return false
}

func truthy(v Value) bool {
	if b, ok := v.(Bool); ok {
		return b.V
	}
	return v.Kind() != NoneVal
}
