package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/ast"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/interp"
	"github.com/formalang/forma/internal/parser"
)

// NewReplCmd starts a line-oriented read-eval-print loop backed by
// peterh/liner for history and editing, the same pair of dependencies
// (liner + fatih/color) the sunholo-data-ailang REPL uses for its own
// prompt. Each line is first tried as a top-level declaration (function,
// struct, let-binding, ...); if that fails to parse, it's retried as a bare
// expression wrapped in a throwaway function body and evaluated.
func NewReplCmd() *cobra.Command {
	var allowAll bool
	cmd := &cobra.Command{
		Use:   "repl [path]",
		Short: "Start an interactive read-eval-print loop",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i := interp.New(interp.CapabilitySet{})
			if allowAll {
				for _, name := range []interp.Capability{interp.CapRead, interp.CapWrite, interp.CapNetwork, interp.CapExec, interp.CapEnv, interp.CapUnsafe, interp.CapDb} {
					i.Caps[name] = true
				}
			}
			if len(args) == 1 {
				p, err := NewPipeline(args[0])
				if err != nil {
					return err
				}
				mod, _, err := p.LoadRoot()
				if err != nil {
					return err
				}
				if err := i.LoadModule(mod); err != nil {
					return err
				}
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			prompt := color.New(color.FgCyan).Sprint("forma> ")
			counter := 0
			for {
				text, err := line.Prompt(prompt)
				if err == liner.ErrPromptAborted || err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if strings.TrimSpace(text) == "" {
					continue
				}
				line.AppendHistory(text)
				counter++
				replEval(cmd, i, text, counter)
			}
		},
	}
	cmd.Flags().BoolVar(&allowAll, "allow-all", false, "grant every capability to the session")
	return cmd
}

func replEval(cmd *cobra.Command, i *interp.Interp, text string, n int) {
	errOut := color.New(color.FgRed)

	prog, diags := parser.Parse("<repl>", text)
	declBag := &diagnostics.Bag{}
	declBag.Extend(diags)
	if !declBag.HasErrors() && len(prog.Items) > 0 {
		for _, item := range prog.Items {
			if err := i.DeclareTop(item); err != nil {
				errOut.Fprintln(cmd.ErrOrStderr(), err)
				return
			}
			if let, ok := item.(*ast.LetStatement); ok {
				if v, ok := i.Globals.Get(let.Name); ok {
					fmt.Fprintln(cmd.OutOrStdout(), v.Inspect())
				}
			}
		}
		return
	}

	wrapped := fmt.Sprintf("f __repl_%d__() =\n    %s\n", n, text)
	prog, diags = parser.Parse("<repl>", wrapped)
	bag := &diagnostics.Bag{}
	bag.Extend(diags)
	if bag.HasErrors() || len(prog.Items) != 1 {
		diagnostics.PrintHuman(cmd.ErrOrStderr(), bag)
		return
	}
	fn, ok := prog.Items[0].(*ast.Function)
	if !ok {
		errOut.Fprintln(cmd.ErrOrStderr(), "not an expression")
		return
	}
	result, err := i.CallFunction(interp.Func{Decl: fn, Env: i.Globals}, nil)
	if err != nil {
		errOut.Fprintln(cmd.ErrOrStderr(), err)
		return
	}
	if _, isUnit := result.(interp.Unit); !isUnit {
		fmt.Fprintln(cmd.OutOrStdout(), result.Inspect())
	}
}
