package interp

import (
	"fmt"
	"os"
	"path/filepath"
)

// ioBuiltins holds the filesystem-facing native surface: read/write/append
// whole files, and the path helpers FORMA's `std.fs` module calls by name.
// The file entries are capability-gated through builtinCapability the way
// the teacher gates its own builtins_io.go entries through an
// evaluator-side sandbox flag; the path_* helpers only manipulate strings
// and are not gated.
func ioBuiltins() map[string]func(i *Interp, args []Value) (Value, error) {
	return map[string]func(i *Interp, args []Value) (Value, error){
		"read_file": func(i *Interp, args []Value) (Value, error) {
			path, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("read_file() takes one Str argument")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "read_file(%q): %v", path, err)
			}
			return Str{V: string(data)}, nil
		},
		"write_file": func(i *Interp, args []Value) (Value, error) {
			path, content, ok := twoStrArgs(args)
			if !ok {
				return nil, fmt.Errorf("write_file() takes (Str, Str)")
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "write_file(%q): %v", path, err)
			}
			return Unit{}, nil
		},
		"append_file": func(i *Interp, args []Value) (Value, error) {
			path, content, ok := twoStrArgs(args)
			if !ok {
				return nil, fmt.Errorf("append_file() takes (Str, Str)")
			}
			f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "append_file(%q): %v", path, err)
			}
			defer f.Close()
			if _, err := f.WriteString(content); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "append_file(%q): %v", path, err)
			}
			return Unit{}, nil
		},
		"file_exists": func(i *Interp, args []Value) (Value, error) {
			path, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("file_exists() takes one Str argument")
			}
			_, err := os.Stat(path)
			return Bool{V: err == nil}, nil
		},
		"remove_file": func(i *Interp, args []Value) (Value, error) {
			path, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("remove_file() takes one Str argument")
			}
			if err := os.Remove(path); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "remove_file(%q): %v", path, err)
			}
			return Unit{}, nil
		},
		"path_join": func(i *Interp, args []Value) (Value, error) {
			parts := make([]string, len(args))
			for idx, a := range args {
				s, ok := a.(Str)
				if !ok {
					return nil, fmt.Errorf("path_join() requires Str arguments")
				}
				parts[idx] = s.V
			}
			return Str{V: filepath.Join(parts...)}, nil
		},
		"path_basename": func(i *Interp, args []Value) (Value, error) {
			path, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("path_basename() takes one Str argument")
			}
			return Str{V: filepath.Base(path)}, nil
		},
		"path_dirname": func(i *Interp, args []Value) (Value, error) {
			path, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("path_dirname() takes one Str argument")
			}
			return Str{V: filepath.Dir(path)}, nil
		},
		"unsafe_cast": func(i *Interp, args []Value) (Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("unsafe_cast() takes (value, target Str)")
			}
			target, ok := args[1].(Str)
			if !ok {
				return nil, fmt.Errorf("unsafe_cast() target must be a Str naming the type")
			}
			return castValue(args[0], target.V)
		},
	}
}

// castValue reinterprets v's underlying Go representation as target,
// FORMA's only escape hatch past the type checker -- guarded at the call
// site by CapUnsafe, not by any runtime soundness check.
func castValue(v Value, target string) (Value, error) {
	switch target {
	case "Int":
		switch x := v.(type) {
		case Int:
			return x, nil
		case Float:
			return Int{V: int64(x.V)}, nil
		case Char:
			return Int{V: int64(x.V)}, nil
		case Bool:
			if x.V {
				return Int{V: 1}, nil
			}
			return Int{V: 0}, nil
		}
	case "Float":
		switch x := v.(type) {
		case Float:
			return x, nil
		case Int:
			return Float{V: float64(x.V)}, nil
		}
	case "Char":
		if x, ok := v.(Int); ok {
			return Char{V: rune(x.V)}, nil
		}
	case "Str":
		return Str{V: displayString(v)}, nil
	}
	return nil, fmt.Errorf("unsafe_cast: cannot reinterpret %s as %s", v.Kind(), target)
}

func oneStrArg(args []Value) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	s, ok := args[0].(Str)
	return s.V, ok
}

func twoStrArgs(args []Value) (string, string, bool) {
	if len(args) != 2 {
		return "", "", false
	}
	a, ok1 := args[0].(Str)
	b, ok2 := args[1].(Str)
	return a.V, b.V, ok1 && ok2
}
