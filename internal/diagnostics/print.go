package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	dimColor  = color.New(color.Faint)
	helpColor = color.New(color.FgCyan)
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// PrintHuman renders diagnostics in the teacher's human-readable style:
// one line per diagnostic, colorized by severity when stdout is a TTY.
func PrintHuman(w io.Writer, b *Bag) {
	for _, d := range b.All() {
		label := errColor.Sprint("error")
		if d.Warning {
			label = warnColor.Sprint("warning")
		}
		loc := ""
		if d.File != "" {
			loc = dimColor.Sprintf("%s:%s: ", d.File, d.Primary.Start)
		}
		fmt.Fprintf(w, "%s%s[%s]: %s\n", loc, label, d.Code, d.Message)
		for _, s := range d.Secondary {
			fmt.Fprintf(w, "  %s %s\n", dimColor.Sprint(s.Span.Start), s.Label)
		}
		if d.Help != "" {
			fmt.Fprintf(w, "  %s %s\n", helpColor.Sprint("help:"), d.Help)
		}
	}
}
