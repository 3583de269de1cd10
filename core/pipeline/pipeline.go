// Package pipeline sequences the transform stages for a profile.
//
//	web:   ensure shell → upgrade URLs → normalize styles
//	email: strip web scope → upgrade URLs → normalize styles → substitute AVIF → inline CSS
//
// The pipeline is the only place that knows about profiles. Each stage is a
// tree-to-tree function; the document is parsed once on the way in and
// serialized once on the way out. A Pipeline holds no per-call state and is
// safe for concurrent use.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/document"
	"github.com/gaurav-prasanna/bulletinpipe/core/inline"
	"github.com/gaurav-prasanna/bulletinpipe/core/media"
	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"github.com/gaurav-prasanna/bulletinpipe/core/strip"
	"github.com/gaurav-prasanna/bulletinpipe/core/style"
	"github.com/gaurav-prasanna/bulletinpipe/core/urls"
	"github.com/gaurav-prasanna/bulletinpipe/core/validate"
)

// Transform note codes.
const (
	CodeParseFailed     = "parse-failed"
	CodeSerializeFailed = "serialize-failed"
)

// Pipeline normalizes bulletin HTML for a profile.
type Pipeline struct {
	logger   *slog.Logger
	policy   urls.Policy
	resolver media.Resolver
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Stage summaries are logged at debug level and
// transform warnings at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithURLPolicy sets the policy used by the URL upgrader and the validator.
func WithURLPolicy(policy urls.Policy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithMediaResolver sets how AVIF references are mapped to raster assets.
func WithMediaResolver(r media.Resolver) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.resolver = r
		}
	}
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:   slog.New(slog.DiscardHandler),
		policy:   urls.DefaultPolicy(),
		resolver: media.DefaultResolver(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of a full run.
type Result struct {
	HTML string
	// Report is the validation of HTML followed by the transform notes.
	Report *report.Report
	// Notes are the warnings raised while transforming.
	Notes []report.Issue
}

// Normalize returns src rewritten for profile. Running it again on its own
// output yields the same bytes. The only errors are contract violations:
// an unknown profile or unusable settings.
func (p *Pipeline) Normalize(src string, profile core.Profile, settings *core.ThemeSettings) (string, error) {
	out, _, err := p.transform(src, profile, settings)
	return out, err
}

// Run normalizes src and validates the result.
func (p *Pipeline) Run(src string, profile core.Profile, settings *core.ThemeSettings) (*Result, error) {
	out, notes, err := p.transform(src, profile, settings)
	if err != nil {
		return nil, err
	}
	rep, err := validate.Validate(out, profile, validate.WithURLPolicy(p.policy))
	if err != nil {
		return nil, fmt.Errorf("validating output: %w", err)
	}
	rep.Issues = append(rep.Issues, notes...)

	p.logger.Debug("bulletin validated",
		"profile", profile, "passed", rep.Passed(),
		"errors", rep.ErrorCount(), "warnings", rep.WarningCount())
	return &Result{HTML: out, Report: rep, Notes: notes}, nil
}

func (p *Pipeline) transform(src string, profile core.Profile, settings *core.ThemeSettings) (string, []report.Issue, error) {
	if !profile.Valid() {
		return "", nil, fmt.Errorf("%w: %q", core.ErrInvalidProfile, profile)
	}
	accent, err := settings.Accent()
	if err != nil {
		return "", nil, err
	}

	var notes []report.Issue
	doc, err := document.Parse(src)
	if err != nil {
		notes = p.note(notes, report.Warn(CodeParseFailed, fmt.Sprintf("input left untouched: %v", err)))
		return src, notes, nil
	}
	log := p.logger.With("profile", profile)

	switch profile {
	case core.ProfileWeb:
		if doc.EnsureDoctype() {
			log.Debug("doctype added")
		}
		n := urls.Upgrade(doc.Root, p.policy)
		log.Debug("urls upgraded", "count", n)
		st := style.Normalize(doc.Root, accent)
		log.Debug("styles normalized", "changed", st.Changed(), "buttons", st.Buttons)

	case core.ProfileEmail:
		sr := strip.WebScope(doc.Root)
		log.Debug("web scope stripped",
			"doctypes", sr.Doctypes, "heads", sr.Heads, "scripts", sr.Scripts,
			"links", sr.Links, "handlers", sr.Handlers, "head_stylesheets", len(sr.Stylesheets))
		n := urls.Upgrade(doc.Root, p.policy)
		for i, css := range sr.Stylesheets {
			var m int
			sr.Stylesheets[i], m = urls.UpgradeCSS(css, p.policy)
			n += m
		}
		log.Debug("urls upgraded", "count", n)
		st := style.Normalize(doc.Root, accent)
		log.Debug("styles normalized", "changed", st.Changed(), "buttons", st.Buttons)
		mr := media.DowngradeAVIF(doc.Root, p.resolver)
		for i, css := range sr.Stylesheets {
			var sheet media.Result
			sr.Stylesheets[i], sheet = media.DowngradeStylesheet(css, p.resolver)
			mr.Rewritten += sheet.Rewritten
			mr.Dropped += sheet.Dropped
			mr.Issues = append(mr.Issues, sheet.Issues...)
		}
		log.Debug("media substituted", "rewritten", mr.Rewritten, "dropped", mr.Dropped)
		notes = p.note(notes, mr.Issues...)
		ir := inline.Styles(doc.Root, sr.Stylesheets...)
		log.Debug("css inlined", "rules", ir.Rules, "elements", ir.Elements, "removed", ir.Removed, "kept", ir.Kept)
		notes = p.note(notes, ir.Issues...)
	}

	out, err := doc.Render(profile == core.ProfileEmail && doc.Fragment)
	if err != nil {
		notes = p.note(notes, report.Warn(CodeSerializeFailed, fmt.Sprintf("input returned unchanged: %v", err)))
		return src, notes, nil
	}
	return out, notes, nil
}

func (p *Pipeline) note(notes []report.Issue, issues ...report.Issue) []report.Issue {
	for _, iss := range issues {
		p.logger.Warn("transform warning", "code", iss.Code, "message", iss.Message)
	}
	return append(notes, issues...)
}

var defaultPipeline = New()

// Normalize runs the default pipeline.
func Normalize(src string, profile core.Profile, settings *core.ThemeSettings) (string, error) {
	return defaultPipeline.Normalize(src, profile, settings)
}

// Run runs the default pipeline and validates the output.
func Run(src string, profile core.Profile, settings *core.ThemeSettings) (*Result, error) {
	return defaultPipeline.Run(src, profile, settings)
}
