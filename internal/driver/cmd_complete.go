package driver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/interp"
	"github.com/formalang/forma/internal/token"
)

// NewCompleteCmd lists every keyword, builtin, and in-scope top-level
// declaration name starting with prefix, the line-oriented completion
// surface an editor plugin can shell out to (cmd/forma-lsp's completion
// handler builds its own candidate list in-process instead).
func NewCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <prefix> [path]",
		Short: "List candidate names starting with prefix",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := args[0]
			root := "."
			if len(args) == 2 {
				root = args[1]
			}

			var candidates []string
			for k := range token.Keywords {
				candidates = append(candidates, k)
			}
			candidates = append(candidates, interp.BuiltinNames()...)

			if p, err := NewPipeline(root); err == nil {
				if mod, _, err := p.LoadRoot(); err == nil {
					for _, item := range mod.AllItems() {
						if name := topLevelName(item); name != "" {
							candidates = append(candidates, name)
						}
					}
				}
			}

			seen := map[string]bool{}
			var out []string
			for _, c := range candidates {
				if strings.HasPrefix(c, prefix) && !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
			sort.Strings(out)
			for _, c := range out {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
	return cmd
}
