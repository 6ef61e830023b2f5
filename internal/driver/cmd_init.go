package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewInitCmd writes a forma.toml into an already-existing directory,
// matching the minimal hand-rolled TOML subset internal/manifest.Parse
// understands: a [package] block, an empty capability grant list, and no
// [deps] table.
func NewInitCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a forma.toml into an existing directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if name == "" {
				abs, err := filepath.Abs(root)
				if err != nil {
					return err
				}
				name = filepath.Base(abs)
			}
			path := filepath.Join(root, "forma.toml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			contents := fmt.Sprintf(manifestTemplate, name)
			if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "package name (default: directory name)")
	return cmd
}

const manifestTemplate = `[package]
name = %q
version = "0.1.0"
entry = "main.forma"

[capabilities]
grant = []
`
