package report

import (
	"fmt"
	"io"
)

// WriteText writes human-readable report output to w.
func (r *Report) WriteText(w io.Writer) {
	for _, iss := range r.Issues {
		fmt.Fprintln(w, iss.String())
	}
	switch {
	case len(r.Issues) == 0:
		fmt.Fprintf(w, "No errors or warnings detected (%s).\n", r.Profile)
	case r.Passed():
		fmt.Fprintf(w, "Passed with warnings (%s). Warnings: %d\n", r.Profile, r.WarningCount())
	default:
		fmt.Fprintf(w, "Check failed (%s). Errors: %d, Warnings: %d\n",
			r.Profile, r.ErrorCount(), r.WarningCount())
	}
}
