package driver

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/diagnostics"
)

// NewCheckCmd validates a project's type and borrow rules without running
// it: load, type-check, borrow-check, report. Exits 1 on any error
// diagnostic, matching the teacher's own check-before-run discipline in
// cmd/funxy/main.go's "check" verb.
func NewCheckCmd() *cobra.Command {
	var jsonFormat bool
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Type-check and borrow-check a project without running it",
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
			report(cmd, bag, jsonFormat)
			if bag.HasErrors() {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonFormat, "json", false, "emit the diagnostic envelope as JSON instead of human-readable text")
	return cmd
}

// checkProject runs load+type-check+borrow-check and merges every phase's
// diagnostics into one bag, the shared core `check`, `build`, and `verify`
// all call before doing their own verb-specific work (`run` performs the
// same steps inline).
func checkProject(root string) (*diagnostics.Bag, error) {
	p, err := NewPipeline(root)
	if err != nil {
		return nil, err
	}
	mod, loadDiags, err := p.LoadRoot()
	if err != nil {
		return nil, err
	}
	bag := &diagnostics.Bag{}
	bag.Extend(loadDiags)
	if bag.HasErrors() {
		return bag, nil
	}
	bag.Extend(TypeCheck(mod).All())
	bag.Extend(BorrowCheck(mod).All())
	return bag, nil
}

func report(cmd *cobra.Command, bag *diagnostics.Bag, jsonFormat bool) {
	if jsonFormat {
		env := diagnostics.NewEnvelope(bag)
		data, err := env.Marshal()
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return
	}
	diagnostics.PrintHuman(cmd.ErrOrStderr(), bag)
	if !bag.HasErrors() {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
	}
}
