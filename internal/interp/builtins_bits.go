package interp

import (
	"fmt"

	"github.com/funvibe/funbit"
)

// bitsBuiltins covers FORMA's `std.bits` surface: packing a list of
// fixed-width integer fields into a byte string and unpacking one back out,
// the runtime counterpart to Erlang-style bit syntax. Built on funbit's
// builder/matcher pair rather than hand-rolled bit shifting, the same way
// the rest of this registry reaches for an ecosystem package over stdlib
// bit-twiddling wherever one is already a declared dependency.
func bitsBuiltins() map[string]func(i *Interp, args []Value) (Value, error) {
	return map[string]func(i *Interp, args []Value) (Value, error){
		"bits_pack": func(i *Interp, args []Value) (Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("bits_pack() takes (List of Int, Int width)")
			}
			fields, ok1 := args[0].(List)
			width, ok2 := args[1].(Int)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("bits_pack() requires (List, Int)")
			}
			builder := funbit.NewBuilder()
			for _, f := range fields.Elements {
				n, ok := f.(Int)
				if !ok {
					return nil, fmt.Errorf("bits_pack() requires every field to be an Int")
				}
				builder.AddInteger(n.V, funbit.WithSize(int(width.V)))
			}
			packed, err := builder.Build()
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "bits_pack: %v", err)
			}
			return Str{V: string(packed)}, nil
		},
		"bits_unpack": func(i *Interp, args []Value) (Value, error) {
			if len(args) != 3 {
				return nil, fmt.Errorf("bits_unpack() takes (Str data, Int width, Int count)")
			}
			data, ok1 := args[0].(Str)
			width, ok2 := args[1].(Int)
			count, ok3 := args[2].(Int)
			if !ok1 || !ok2 || !ok3 {
				return nil, fmt.Errorf("bits_unpack() requires (Str, Int, Int)")
			}
			matcher := funbit.NewMatcher()
			targets := make([]uint64, count.V)
			for idx := range targets {
				matcher.Integer(&targets[idx], funbit.WithSize(int(width.V)))
			}
			if _, err := matcher.Match([]byte(data.V)); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "bits_unpack: %v", err)
			}
			out := make([]Value, len(targets))
			for idx, t := range targets {
				out[idx] = Int{V: int64(t)}
			}
			return List{Elements: out}, nil
		},
	}
}
