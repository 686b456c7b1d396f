package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"omnibust/internal/engine"
)

// TextReporter renders a colored, human-readable run report. Color is
// disabled when the output is not a terminal.
type TextReporter struct {
	w io.Writer

	bold   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	faint  *color.Color
}

func NewTextReporter(w io.Writer) *TextReporter {
	r := &TextReporter{
		w:      w,
		bold:   color.New(color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		faint:  color.New(color.Faint),
	}
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		for _, c := range []*color.Color{r.bold, r.green, r.yellow, r.red, r.faint} {
			c.DisableColor()
		}
	}
	return r
}

func (r *TextReporter) Report(data Data) error {
	res := data.Result
	for _, file := range res.Files {
		if file.Err != "" {
			fmt.Fprintf(r.w, "%s: %s\n", r.bold.Sprint(file.Path), r.red.Sprintf("skipped (%s)", file.Err))
			continue
		}
		if len(file.Changes) == 0 {
			continue
		}
		fmt.Fprintln(r.w, r.bold.Sprint(file.Path))
		for _, c := range file.Changes {
			r.printChange(c)
		}
	}
	r.printSummary(data)
	return nil
}

func (r *TextReporter) printChange(c engine.Change) {
	switch c.Status {
	case engine.StatusBusted:
		fmt.Fprintf(r.w, "  %s L%d %s\n", r.green.Sprint("busted   "), c.Line, c.Old)
		fmt.Fprintf(r.w, "  %s      -> %s\n", r.faint.Sprint("         "), c.New)
	case engine.StatusUnchanged:
		fmt.Fprintf(r.w, "  %s L%d %s\n", r.faint.Sprint("unchanged"), c.Line, c.Old)
	case engine.StatusMissing:
		fmt.Fprintf(r.w, "  %s L%d %s\n", r.red.Sprint("missing  "), c.Line, c.Old)
	}
}

func (r *TextReporter) printSummary(data Data) {
	s := data.Result.Summary
	fmt.Fprintln(r.w)
	if data.DryRun {
		fmt.Fprintln(r.w, r.yellow.Sprint("Dry run, no files were written."))
	}
	fmt.Fprintf(r.w, "Scanned %d files: %s, %s, %s, %s\n",
		s.FilesScanned,
		r.green.Sprintf("%d busted", s.RefsBusted),
		r.faint.Sprintf("%d unchanged", s.RefsUnchanged),
		r.red.Sprintf("%d missing", s.RefsMissing),
		r.bold.Sprintf("%d files changed", s.FilesChanged))
	if s.FilesSkipped > 0 {
		fmt.Fprintf(r.w, "%s\n", r.yellow.Sprintf("%d files skipped", s.FilesSkipped))
	}
}
