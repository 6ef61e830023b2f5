package interp

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// RegisterBuiltins seeds scope with every global builtin function: the
// native surface the stdlib's .forma sources call by name (native_sqrt,
// native_str_*, ...), the always-visible free functions (print, println,
// str, read_line, the named-contract predicates, the channel/mutex/await
// helpers), and the io/net/process/db/codec/bits/rpc categories: about 70
// entries in all.
func RegisterBuiltins(scope *Env) {
	for name, fn := range globalBuiltins {
		scope.Define(name, Builtin{Name: name, Fn: fn})
	}
	for _, category := range builtinCategories() {
		for name, fn := range category {
			scope.Define(name, Builtin{Name: name, Fn: fn})
		}
	}
}

func builtinCategories() []map[string]func(i *Interp, args []Value) (Value, error) {
	return []map[string]func(i *Interp, args []Value) (Value, error){
		ioBuiltins(),
		netBuiltins(),
		processBuiltins(),
		dbBuiltins(),
		codecBuiltins(),
		bitsBuiltins(),
		rpcBuiltins(),
	}
}

// BuiltinNames returns every registered builtin's name, sorted, for tools
// like `forma complete` that need the surface without spinning up an Env.
func BuiltinNames() []string {
	names := make([]string, 0, len(globalBuiltins))
	for name := range globalBuiltins {
		names = append(names, name)
	}
	for _, category := range builtinCategories() {
		for name := range category {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

var stdin = bufio.NewReader(os.Stdin)

var globalBuiltins = map[string]func(i *Interp, args []Value) (Value, error){
	"print":   func(i *Interp, args []Value) (Value, error) { i.Stdout(joinInspect(args)); return Unit{}, nil },
	"println": func(i *Interp, args []Value) (Value, error) { i.Stdout(joinInspect(args) + "\n"); return Unit{}, nil },
	"eprint":  func(i *Interp, args []Value) (Value, error) { i.Stderr(joinInspect(args)); return Unit{}, nil },
	"eprintln": func(i *Interp, args []Value) (Value, error) {
		i.Stderr(joinInspect(args) + "\n")
		return Unit{}, nil
	},
	"read_line": func(i *Interp, args []Value) (Value, error) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return None{}, nil
		}
		return Str{V: strings.TrimRight(line, "\r\n")}, nil
	},
	"str": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("str() takes exactly one argument")
		}
		return Str{V: displayString(args[0])}, nil
	},

	"native_sqrt": func(i *Interp, args []Value) (Value, error) { return floatFn1(args, math.Sqrt) },
	"native_pow": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("native_pow() takes two arguments")
		}
		base, ok1 := args[0].(Float)
		exp, ok2 := args[1].(Float)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("native_pow() requires Float arguments")
		}
		return Float{V: math.Pow(base.V, exp.V)}, nil
	},
	"native_floor": func(i *Interp, args []Value) (Value, error) { return floatFn1(args, math.Floor) },
	"native_ceil":  func(i *Interp, args []Value) (Value, error) { return floatFn1(args, math.Ceil) },

	"native_str_contains": func(i *Interp, args []Value) (Value, error) {
		s, needle, err := strFn2(args)
		if err != nil {
			return nil, err
		}
		return Bool{V: strings.Contains(s, needle)}, nil
	},
	"native_str_starts_with": func(i *Interp, args []Value) (Value, error) {
		s, p, err := strFn2(args)
		if err != nil {
			return nil, err
		}
		return Bool{V: strings.HasPrefix(s, p)}, nil
	},
	"native_str_ends_with": func(i *Interp, args []Value) (Value, error) {
		s, p, err := strFn2(args)
		if err != nil {
			return nil, err
		}
		return Bool{V: strings.HasSuffix(s, p)}, nil
	},
	"native_str_trim": func(i *Interp, args []Value) (Value, error) {
		s, err := strFn1(args)
		if err != nil {
			return nil, err
		}
		return Str{V: strings.TrimSpace(s)}, nil
	},
	"native_str_upper": func(i *Interp, args []Value) (Value, error) {
		s, err := strFn1(args)
		if err != nil {
			return nil, err
		}
		return Str{V: strings.ToUpper(s)}, nil
	},
	"native_str_lower": func(i *Interp, args []Value) (Value, error) {
		s, err := strFn1(args)
		if err != nil {
			return nil, err
		}
		return Str{V: strings.ToLower(s)}, nil
	},
	"native_str_split": func(i *Interp, args []Value) (Value, error) {
		s, sep, err := strFn2(args)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, sep)
		elems := make([]Value, len(parts))
		for idx, p := range parts {
			elems[idx] = Str{V: p}
		}
		return List{Elements: elems}, nil
	},
	"native_str_join": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("native_str_join() takes two arguments")
		}
		list, ok := args[0].(List)
		sep, ok2 := args[1].(Str)
		if !ok || !ok2 {
			return nil, fmt.Errorf("native_str_join() requires (List, Str)")
		}
		parts := make([]string, len(list.Elements))
		for idx, e := range list.Elements {
			s, ok := e.(Str)
			if !ok {
				return nil, fmt.Errorf("native_str_join() requires a list of Str")
			}
			parts[idx] = s.V
		}
		return Str{V: strings.Join(parts, sep.V)}, nil
	},

	"permutation": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("permutation() takes two arguments")
		}
		a, ok1 := args[0].(List)
		b, ok2 := args[1].(List)
		if !ok1 || !ok2 {
			return Bool{V: false}, nil
		}
		return Bool{V: isPermutation(a.Elements, b.Elements)}, nil
	},
	"stable_sort": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("stable_sort() takes three arguments")
		}
		orig, ok1 := args[0].(List)
		sorted, ok2 := args[1].(List)
		key, ok3 := args[2].(Str)
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("stable_sort() requires (List, List, Str)")
		}
		if len(orig.Elements) != len(sorted.Elements) {
			return Bool{V: false}, nil
		}
		// The only valid stable-sort order is "sort by key, ties broken by
		// original position" -- recompute it and compare element-for-element
		// rather than separately checking sortedness and permutation-ness.
		idx := make([]int, len(orig.Elements))
		for n := range idx {
			idx[n] = n
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return lessValue(keyOf(orig.Elements[idx[a]], key.V), keyOf(orig.Elements[idx[b]], key.V))
		})
		for n, origIdx := range idx {
			if !valuesEqual(sorted.Elements[n], orig.Elements[origIdx]) {
				return Bool{V: false}, nil
			}
		}
		return Bool{V: true}, nil
	},
	"rotated": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("rotated() takes three arguments")
		}
		a, ok1 := args[0].(List)
		b, ok2 := args[1].(List)
		n, ok3 := args[2].(Int)
		if !ok1 || !ok2 || !ok3 || len(a.Elements) != len(b.Elements) || len(a.Elements) == 0 {
			return Bool{V: false}, nil
		}
		k := int(n.V) % len(a.Elements)
		if k < 0 {
			k += len(a.Elements)
		}
		for idx, v := range a.Elements {
			target := (idx + k) % len(a.Elements)
			if !valuesEqual(v, b.Elements[target]) {
				return Bool{V: false}, nil
			}
		}
		return Bool{V: true}, nil
	},
	"partitioned": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("partitioned() takes two arguments")
		}
		arr, ok1 := args[0].(List)
		pivot, ok2 := args[1].(Int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("partitioned() requires (List, Int)")
		}
		p := int(pivot.V)
		if p < 0 || p >= len(arr.Elements) {
			return Bool{V: false}, nil
		}
		pv := arr.Elements[p]
		for idx, e := range arr.Elements {
			if idx < p && lessValue(pv, e) {
				return Bool{V: false}, nil
			}
			if idx > p && lessValue(e, pv) {
				return Bool{V: false}, nil
			}
		}
		return Bool{V: true}, nil
	},

	"channel": func(i *Interp, args []Value) (Value, error) {
		capacity := 0
		if len(args) == 1 {
			n, ok := args[0].(Int)
			if !ok {
				return nil, fmt.Errorf("channel() capacity must be an Int")
			}
			capacity = int(n.V)
		}
		return newChannel(capacity), nil
	},
	"mutex": func(i *Interp, args []Value) (Value, error) { return newMutex(), nil },
	"await_all": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("await_all() takes one argument")
		}
		tasks, ok := asTasks(args[0])
		if !ok {
			return nil, fmt.Errorf("await_all() requires a List of Task")
		}
		return awaitAll(tasks)
	},
	"await_any": func(i *Interp, args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("await_any() takes one argument")
		}
		tasks, ok := asTasks(args[0])
		if !ok || len(tasks) == 0 {
			return nil, fmt.Errorf("await_any() requires a nonempty List of Task")
		}
		return awaitAny(tasks)
	},
}

// keyOf extracts the sort key a @stable contract's key argument names: the
// element itself for the empty key (sorting plain values), or one of its
// struct fields for record elements.
func keyOf(v Value, key string) Value {
	if key == "" {
		return v
	}
	if s, ok := v.(Struct); ok {
		if fv, ok := s.Fields[key]; ok {
			return fv
		}
	}
	return v
}

func floatFn1(args []Value, f func(float64) float64) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one Float argument")
	}
	x, ok := args[0].(Float)
	if !ok {
		return nil, fmt.Errorf("expected a Float argument")
	}
	return Float{V: f(x.V)}, nil
}

func strFn1(args []Value) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected one Str argument")
	}
	s, ok := args[0].(Str)
	if !ok {
		return "", fmt.Errorf("expected a Str argument")
	}
	return s.V, nil
}

func strFn2(args []Value) (string, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("expected two Str arguments")
	}
	a, ok1 := args[0].(Str)
	b, ok2 := args[1].(Str)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("expected two Str arguments")
	}
	return a.V, b.V, nil
}

func joinInspect(args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = displayString(a)
	}
	return strings.Join(parts, " ")
}

func displayString(v Value) string {
	if s, ok := v.(Str); ok {
		return s.V
	}
	return v.Inspect()
}

func isPermutation(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for idx, bv := range b {
			if !used[idx] && valuesEqual(av, bv) {
				used[idx] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// builtinMethod dispatches the fixed set of methods FORMA values support
// directly (list/map/set/string operations the stdlib sources and user
// programs call as `recv.method(...)`).
func builtinMethod(name string, recv Value) (Builtin, bool) {
	key := string(recv.Kind()) + "." + name
	fn, ok := methodTable[key]
	if !ok {
		return Builtin{}, false
	}
	return Builtin{Name: name, Fn: fn}, true
}

var methodTable = map[string]func(i *Interp, args []Value) (Value, error){
	"List.len": func(i *Interp, args []Value) (Value, error) {
		return Int{V: int64(len(args[0].(List).Elements))}, nil
	},
	"List.sort": func(i *Interp, args []Value) (Value, error) {
		l := args[0].(List)
		out := append([]Value{}, l.Elements...)
		sort.SliceStable(out, func(a, b int) bool { return lessValue(out[a], out[b]) })
		return List{Elements: out}, nil
	},
	"List.push": func(i *Interp, args []Value) (Value, error) {
		l := args[0].(List)
		out := append(append([]Value{}, l.Elements...), args[1])
		return List{Elements: out}, nil
	},
	"List.contains": func(i *Interp, args []Value) (Value, error) {
		l := args[0].(List)
		for _, e := range l.Elements {
			if valuesEqual(e, args[1]) {
				return Bool{V: true}, nil
			}
		}
		return Bool{V: false}, nil
	},
	"Str.len": func(i *Interp, args []Value) (Value, error) {
		return Int{V: int64(len([]rune(args[0].(Str).V)))}, nil
	},
	"Map.len": func(i *Interp, args []Value) (Value, error) {
		return Int{V: int64(len(args[0].(Map).Entries))}, nil
	},
	"Map.contains_key": func(i *Interp, args []Value) (Value, error) {
		_, ok := args[0].(Map).Get(args[1])
		return Bool{V: ok}, nil
	},
	"Set.len": func(i *Interp, args []Value) (Value, error) {
		return Int{V: int64(len(args[0].(Set).Elements))}, nil
	},
	"Set.contains": func(i *Interp, args []Value) (Value, error) {
		return Bool{V: args[0].(Set).Has(args[1])}, nil
	},
	"Int.to_str": func(i *Interp, args []Value) (Value, error) {
		return Str{V: strconv.FormatInt(args[0].(Int).V, 10)}, nil
	},

	"Channel.send": func(i *Interp, args []Value) (Value, error) {
		args[0].(Opaque).Data.(*channel).send(args[1])
		return Unit{}, nil
	},
	"Channel.recv": func(i *Interp, args []Value) (Value, error) {
		return args[0].(Opaque).Data.(*channel).recv(), nil
	},
	"Channel.try_send": func(i *Interp, args []Value) (Value, error) {
		return Bool{V: args[0].(Opaque).Data.(*channel).trySend(args[1])}, nil
	},
	"Channel.try_recv": func(i *Interp, args []Value) (Value, error) {
		v, ok := args[0].(Opaque).Data.(*channel).tryRecv()
		if !ok {
			return None{}, nil
		}
		return v, nil
	},
	"Mutex.lock": func(i *Interp, args []Value) (Value, error) {
		args[0].(Opaque).Data.(*mutexBox).acquire()
		return Unit{}, nil
	},
	"Mutex.unlock": func(i *Interp, args []Value) (Value, error) {
		args[0].(Opaque).Data.(*mutexBox).release()
		return Unit{}, nil
	},
	"Mutex.try_lock": func(i *Interp, args []Value) (Value, error) {
		return Bool{V: args[0].(Opaque).Data.(*mutexBox).tryAcquire()}, nil
	},
}

func lessValue(a, b Value) bool {
	if ai, ok := a.(Int); ok {
		if bi, ok := b.(Int); ok {
			return ai.V < bi.V
		}
	}
	if af, ok := a.(Float); ok {
		if bf, ok := b.(Float); ok {
			return af.V < bf.V
		}
	}
	if as, ok := a.(Str); ok {
		if bs, ok := b.(Str); ok {
			return as.V < bs.V
		}
	}
	return false
}
