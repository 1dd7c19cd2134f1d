package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/teemow/calimport/internal/batch"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	boldColor = color.New(color.Bold)
)

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		_, _ = warnColor.Fprintf(w, "warning: %s\n", msg)
	}
}

// progressPrinter reports each attempt of a batch on its own line.
func progressPrinter(w io.Writer) batch.ProgressFunc {
	return func(done, total int, last batch.Result) {
		if last.OK() {
			_, _ = okColor.Fprintf(w, "[%d/%d] ok     %s\n", done, total, last.Result)
			return
		}
		_, _ = failColor.Fprintf(w, "[%d/%d] failed %s: %s\n", done, total, last.ID, last.Error)
	}
}

func printTotals(w io.Writer, verb string, succeeded, total, failed int) {
	c := okColor
	if failed > 0 {
		c = failColor
	}
	_, _ = c.Fprintf(w, "%s %d of %d event(s)", verb, succeeded, total)
	if failed > 0 {
		_, _ = c.Fprintf(w, ", %d failed", failed)
	}
	fmt.Fprintln(w)
}
