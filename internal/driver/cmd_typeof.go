package driver

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/infer"
)

// NewTypeofCmd prints a top-level function's inferred signature without
// running it, reusing the same infer.FuncSignature conversion the checker
// itself seeds globals from.
func NewTypeofCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typeof <name> [path]",
		Short: "Print a top-level function's inferred type signature",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			root := "."
			if len(args) == 2 {
				root = args[1]
			}
			p, err := NewPipeline(root)
			if err != nil {
				return err
			}
			mod, loadDiags, err := p.LoadRoot()
			if err != nil {
				return err
			}
			if len(loadDiags) > 0 {
				bag := &diagnostics.Bag{}
				bag.Extend(loadDiags)
				diagnostics.PrintHuman(cmd.ErrOrStderr(), bag)
				if bag.HasErrors() {
					os.Exit(1)
				}
			}
			fn := FindFunction(mod, name)
			if fn == nil {
				return fmt.Errorf("no top-level function named %q", name)
			}
			sig := infer.FuncSignature(fn)
			fmt.Fprintln(cmd.OutOrStdout(), sig.String())
			return nil
		},
	}
	return cmd
}
