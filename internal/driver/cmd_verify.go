package driver

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/config"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/interp"
)

// NewVerifyCmd fuzzes every contract-bearing top-level function with random
// arguments, relying entirely on interp.CallFunction's existing pre/post-
// condition enforcement (checkPreconditions/checkPostconditions) rather than
// re-implementing contract evaluation: a precondition failure just means
// this example didn't satisfy the function's domain and is skipped, while a
// postcondition failure is a real property violation worth reporting.
func NewVerifyCmd() *cobra.Command {
	var examples int
	cmd := &cobra.Command{
		Use:   "verify [path]",
		Short: "Fuzz-check every function's contracts against random inputs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			bag, err := checkProject(root)
			if err != nil {
				return err
			}
			if bag.HasErrors() {
				diagnostics.PrintHuman(cmd.ErrOrStderr(), bag)
				os.Exit(1)
			}

			p, err := NewPipeline(root)
			if err != nil {
				return err
			}
			mod, _, err := p.LoadRoot()
			if err != nil {
				return err
			}
			caps, err := p.Capabilities()
			if err != nil {
				return err
			}
			i := interp.New(caps)
			if err := i.LoadModule(mod); err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(1))
			checked, violations := 0, 0
			for _, item := range mod.AllItems() {
				fn, ok := item.(*ast.Function)
				if !ok || fn.IsMethod || fn.Body == nil {
					continue
				}
				if len(fn.Preconditions) == 0 && len(fn.Postconditions) == 0 {
					continue
				}
				checked++
				satisfied := 0
				for attempt := 0; attempt < examples && satisfied < examples; attempt++ {
					args, ok := genArgs(rng, fn.Params)
					if !ok {
						break // a parameter type this fuzzer can't generate; skip the function
					}
					gfn, _ := i.Globals.Get(fn.Name)
					_, err := i.CallFunction(gfn.(interp.Func), args)
					if err == nil {
						satisfied++
						continue
					}
					if ie, ok := err.(*interp.InterpError); ok && ie.Kind == interp.ErrContractViolated {
						// Could be a precondition (this example outside the domain)
						// or a postcondition (a real property violation); only the
						// latter is worth reporting, distinguished by message text
						// since checkPreconditions/checkPostconditions share one
						// error kind.
						if isPostconditionFailure(ie, fn) {
							satisfied++
							violations++
							fmt.Fprintf(cmd.ErrOrStderr(), "property violated in %s: %s\n", fn.Name, ie.Message)
						}
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d examples satisfied preconditions\n", fn.Name, satisfied, examples)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d contract-bearing functions, %d violations\n", checked, violations)
			if violations > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&examples, "examples", config.DefaultVerifyExamples, "random examples per function")
	return cmd
}

func isPostconditionFailure(ie *interp.InterpError, fn *ast.Function) bool {
	for _, c := range fn.Postconditions {
		if c.SourceText != "" && containsText(ie.Message, c.SourceText) {
			return true
		}
	}
	return false
}

func containsText(haystack, needle string) bool {
	return needle != "" && len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// genArgs generates one random Value per parameter, failing (ok=false) the
// first time it meets a type it doesn't know how to generate -- generic
// type variables and user-defined structs/enums chiefly, left as future
// work since a general fuzzer would need a type-directed generator derived
// from the full struct/enum registry.
func genArgs(rng *rand.Rand, params []ast.Param) ([]interp.Value, bool) {
	args := make([]interp.Value, 0, len(params))
	for _, p := range params {
		v, ok := genValue(rng, p.Type)
		if !ok {
			return nil, false
		}
		args = append(args, v)
	}
	return args, true
}

func genValue(rng *rand.Rand, t ast.Type) (interp.Value, bool) {
	named, ok := t.(*ast.NamedType)
	if !ok {
		return nil, false
	}
	switch named.Name {
	case "Int":
		return interp.Int{V: rng.Int63n(2001) - 1000}, true
	case "Float":
		return interp.Float{V: rng.Float64()*2000 - 1000}, true
	case "Bool":
		return interp.Bool{V: rng.Intn(2) == 0}, true
	case "Char":
		return interp.Char{V: rune('a' + rng.Intn(26))}, true
	case "Str":
		n := rng.Intn(8)
		b := make([]byte, n)
		for i := range b {
			b[i] = byte('a' + rng.Intn(26))
		}
		return interp.Str{V: string(b)}, true
	case "List":
		if len(named.Args) != 1 {
			return nil, false
		}
		n := rng.Intn(5)
		elems := make([]interp.Value, 0, n)
		for i := 0; i < n; i++ {
			v, ok := genValue(rng, named.Args[0])
			if !ok {
				return nil, false
			}
			elems = append(elems, v)
		}
		return interp.List{Elements: elems}, true
	}
	return nil, false
}
