package driver

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/interp"
)

// NewRunCmd runs a project's `main` function after a full check pass,
// refusing to execute a program that fails type- or borrow-checking --
// the teacher's own cmd/funxy never executes a module that failed analysis
// either.
func NewRunCmd() *cobra.Command {
	var allowAll bool
	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Check and run a project's main function",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			p, err := NewPipeline(root)
			if err != nil {
				return err
			}
			mod, loadDiags, err := p.LoadRoot()
			if err != nil {
				return err
			}
			bag := &diagnostics.Bag{}
			bag.Extend(loadDiags)
			bag.Extend(TypeCheck(mod).All())
			bag.Extend(BorrowCheck(mod).All())
			if bag.HasErrors() {
				diagnostics.PrintHuman(cmd.ErrOrStderr(), bag)
				os.Exit(1)
			}

			caps, err := p.Capabilities()
			if err != nil {
				return err
			}
			if allowAll {
				for _, name := range []interp.Capability{interp.CapRead, interp.CapWrite, interp.CapNetwork, interp.CapExec, interp.CapEnv, interp.CapUnsafe, interp.CapDb} {
					caps[name] = true
				}
			}
			result, err := Run(mod, caps)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(1)
			}
			if _, isUnit := result.(interp.Unit); !isUnit {
				fmt.Fprintln(cmd.OutOrStdout(), result.Inspect())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowAll, "allow-all", false, "grant every capability regardless of forma.toml")
	return cmd
}
