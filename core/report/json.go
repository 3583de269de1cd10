package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gaurav-prasanna/bulletinpipe/core"
)

// JSONOutput is the JSON structure written for a report.
type JSONOutput struct {
	Passed       bool         `json:"passed"`
	Profile      core.Profile `json:"profile"`
	Issues       []Issue      `json:"issues"`
	ErrorCount   int          `json:"error_count"`
	WarningCount int          `json:"warning_count"`
}

// WriteJSON writes the report in JSON format to w.
func (r *Report) WriteJSON(w io.Writer) error {
	out := JSONOutput{
		Passed:       r.Passed(),
		Profile:      r.Profile,
		Issues:       r.Issues,
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
