package driver

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/config"
	"github.com/formalang/forma/internal/token"
)

// NewGrammarCmd lists the reserved and contextual keyword vocabulary the
// lexer recognizes, the cheapest grammar surface a tool outside this repo
// can consume without vendoring the parser -- grounded on token.Keywords and
// token.LookupIdent's contextual-keyword switch.
func NewGrammarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammar",
		Short: "Print the language's reserved and contextual keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(token.Keywords))
			for k := range token.Keywords {
				names = append(names, k)
			}
			sort.Strings(names)
			fmt.Fprintln(cmd.OutOrStdout(), "reserved keywords:")
			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", n)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "contextual keywords (only at a declaration-start follow set):")
			for _, n := range []string{config.KeywordF, config.KeywordS, config.KeywordE, config.KeywordT, config.KeywordI, config.KeywordM} {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", n)
			}
			return nil
		},
	}
}
