// Command forma is the compiler/interpreter/tooling entry point: run,
// check, build, verify, explain, grammar, fmt, typeof, complete, repl, new,
// and init, each a cobra subcommand wired to internal/driver, the way
// termfx-morfx's demo/cmd/main.go wires its own subcommands onto one root
// cobra.Command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formalang/forma/internal/config"
	"github.com/formalang/forma/internal/driver"
)

func main() {
	root := &cobra.Command{
		Use:     "forma",
		Short:   "The forma language compiler, interpreter, and tooling",
		Version: config.Version,
	}

	root.AddCommand(
		driver.NewRunCmd(),
		driver.NewCheckCmd(),
		driver.NewBuildCmd(),
		driver.NewVerifyCmd(),
		driver.NewExplainCmd(),
		driver.NewGrammarCmd(),
		driver.NewFmtCmd(),
		driver.NewTypeofCmd(),
		driver.NewCompleteCmd(),
		driver.NewReplCmd(),
		driver.NewNewCmd(),
		driver.NewInitCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
