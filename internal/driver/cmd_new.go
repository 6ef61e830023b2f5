package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewNewCmd scaffolds a fresh project directory: forma.toml plus a
// one-function main.forma, the two files LoadRoot/NewPipeline need to find
// something runnable.
func NewNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Scaffold a new project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if _, err := os.Stat(dir); err == nil {
				return fmt.Errorf("%s already exists", dir)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			name := filepath.Base(dir)
			manifestPath := filepath.Join(dir, "forma.toml")
			if err := os.WriteFile(manifestPath, []byte(fmt.Sprintf(manifestTemplate, name)), 0o644); err != nil {
				return err
			}
			mainPath := filepath.Join(dir, "main.forma")
			if err := os.WriteFile(mainPath, []byte(mainTemplate), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created", dir)
			return nil
		},
	}
	return cmd
}

const mainTemplate = `f main() -> Unit =
    println("hello, forma")
`
