package driver

import (
	"fmt"

	"github.com/spf13/cobra"
)

// explanations documents every diagnostic code the checker and borrow
// passes can emit, in the spirit of rustc --explain: a short paragraph a
// user can read without cross-referencing the implementation.
var explanations = map[string]string{
	"TYPE_MISMATCH": `A value's inferred type does not match the type required by its
context (a function's declared return type, a let annotation, a struct
literal field, the other branch of an if, or the other arms of a match).
Check the declared types on both sides of the mismatch. Arithmetic that
mixes Int and Float is accepted and yields Float.`,

	"UNDEFINED_NAME": `A name was referenced that is not declared in any enclosing scope,
module import, or the builtin registry. Check for a missing import or a typo.`,

	"UNKNOWN_FIELD": `A field access named a field that does not exist on the struct's
declaration. An undeclared field name inside a struct literal is not
reported under this code.`,

	"UNKNOWN_METHOD": `A method call named a method that is not defined as an inherent
method or by any trait implementation in scope for the receiver's type.`,

	"AMBIGUOUS_METHOD": `More than one trait implementation in scope provides a method with
this name for the receiver's type, and the call did not disambiguate which
one to use.`,

	"NON_EXHAUSTIVE_MATCH": `A match expression does not cover every possible value of its
scrutinee's type. The diagnostic's witness shows one concrete value no arm
handles; add an arm for it or a wildcard/binding pattern.`,

	"TRAIT_BOUND_NOT_SATISFIED": `A generic function or impl requires its type parameter to
implement a trait, and the type it was instantiated with has no such
implementation.`,

	"MISSING_TRAIT_METHOD": `An impl block for a trait does not define every method the trait
declares, and the trait supplies no default body for the missing one.`,

	"TRAIT_METHOD_SIGNATURE_MISMATCH": `An impl method takes a different number of parameters than the
trait it implements declares for that method. Parameter and return types
are not compared.`,

	"BORROW_USE_AFTER_MOVE": `A value was used after ownership of it was already moved into
another binding, a function call, or a struct literal. Clone the value
before the move if both uses are needed, or restructure so the move happens
last.`,

	"BORROW": `A reference-shape rule was violated: a struct or enum field may not
hold a reference type, and a function may not return a reference to one of
its own local variables (the referent would not outlive the reference).`,

	"CONTRACT_VIOLATED": `A function's @pre or @post contract evaluated to false at runtime.
Preconditions are the caller's fault; postconditions are the function's own
fault. Run 'forma verify' to search for inputs that trigger this.`,

	"MODULE_NOT_FOUND": `An import path does not resolve to any module reachable from the
project root or the standard library prefix.`,

	"PARSE": `The lexer or parser could not make sense of the source text at this
location. Check for mismatched indentation, an unterminated string or
f-string, or a missing expected token.`,
}

func NewExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <code>",
		Short: "Print a detailed explanation of a diagnostic code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			text, ok := explanations[code]
			if !ok {
				return fmt.Errorf("no explanation for diagnostic code %q", code)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
