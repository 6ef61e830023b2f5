package driver

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/diagnostics"
)

// NewBuildCmd runs the full front-end (load, type-check, borrow-check)
// without executing the program. With the tree-walking backend (the only
// backend this repo ships; --backend=vm is reserved for a future bytecode
// backend) there is no separate artifact to emit, so a successful build
// means exactly what `check` means: the program is ready to run. The verb
// is kept distinct from `check` because a future `--backend=vm` build will
// additionally serialize compiled internal/vm bytecode to disk.
func NewBuildCmd() *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Validate a project and prepare it to run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if backend == "vm" {
				return fmt.Errorf("--backend=vm is not yet implemented; use the default tree-walking backend")
			}
			bag, err := checkProject(root)
			if err != nil {
				return err
			}
			diagnostics.PrintHuman(cmd.ErrOrStderr(), bag)
			if bag.HasErrors() {
				os.Exit(1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "build ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "tree", "execution backend: tree (default) or vm")
	return cmd
}
