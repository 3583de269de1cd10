// Package report holds the validation report produced for a bulletin.
package report

import (
	"fmt"
	"sort"

	"github.com/gaurav-prasanna/bulletinpipe/core"
)

// Severity levels for validation issues.
type Severity string

const (
	Error   Severity = "ERROR"
	Warning Severity = "WARNING"
)

// Issue is a single finding. Offset is the byte position in the checked
// HTML and only orders issues; Location is the human form (line:col).
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
	Offset   int      `json:"-"`
}

func (i Issue) String() string {
	if i.Location != "" {
		return fmt.Sprintf("%s(%s): %s [%s]", i.Severity, i.Code, i.Message, i.Location)
	}
	return fmt.Sprintf("%s(%s): %s", i.Severity, i.Code, i.Message)
}

// Warn builds a Warning issue without a location.
func Warn(code, msg string) Issue {
	return Issue{Severity: Warning, Code: code, Message: msg}
}

// Report collects the issues found for one profile.
type Report struct {
	Profile core.Profile `json:"profile"`
	Issues  []Issue      `json:"issues"`
}

// New creates an empty report for the given profile.
func New(p core.Profile) *Report {
	return &Report{Profile: p}
}

// Add appends an issue.
func (r *Report) Add(iss Issue) {
	r.Issues = append(r.Issues, iss)
}

// Sort orders issues by document position, then by code.
func (r *Report) Sort() {
	sort.SliceStable(r.Issues, func(a, b int) bool {
		if r.Issues[a].Offset != r.Issues[b].Offset {
			return r.Issues[a].Offset < r.Issues[b].Offset
		}
		return r.Issues[a].Code < r.Issues[b].Code
	})
}

// Errors returns the ERROR issues in report order.
func (r *Report) Errors() []Issue {
	var out []Issue
	for _, iss := range r.Issues {
		if iss.Severity == Error {
			out = append(out, iss)
		}
	}
	return out
}

// ErrorCount returns the number of ERROR issues.
func (r *Report) ErrorCount() int {
	return r.count(Error)
}

// WarningCount returns the number of WARNING issues.
func (r *Report) WarningCount() int {
	return r.count(Warning)
}

func (r *Report) count(sev Severity) int {
	n := 0
	for _, iss := range r.Issues {
		if iss.Severity == sev {
			n++
		}
	}
	return n
}

// Passed is true iff the report holds no ERROR issue.
func (r *Report) Passed() bool {
	return r.ErrorCount() == 0
}

// Has reports whether any issue carries the given code.
func (r *Report) Has(code string) bool {
	for _, iss := range r.Issues {
		if iss.Code == code {
			return true
		}
	}
	return false
}

// ByCode returns the issues carrying the given code.
func (r *Report) ByCode(code string) []Issue {
	var out []Issue
	for _, iss := range r.Issues {
		if iss.Code == code {
			out = append(out, iss)
		}
	}
	return out
}
