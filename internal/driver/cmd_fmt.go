package driver

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/parser"
	"github.com/formalang/forma/internal/prettyprinter"
)

// NewFmtCmd re-serializes a single .forma file through internal/prettyprinter
// and either prints the result (default) or rewrites the file in place
// (--write), the same two modes the teacher's cmd/lsp formatting handler
// exposes over LSP requests.
func NewFmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Re-format a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			prog, diags := parser.Parse(path, string(src))
			if len(diags) > 0 {
				bag := &diagnostics.Bag{}
				bag.Extend(diags)
				diagnostics.PrintHuman(cmd.ErrOrStderr(), bag)
				if bag.HasErrors() {
					os.Exit(1)
				}
			}
			formatted := prettyprinter.PrintProgram(prog)
			if write {
				return os.WriteFile(path, []byte(formatted), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place instead of printing to stdout")
	return cmd
}
