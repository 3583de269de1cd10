// Package validate checks finished bulletin HTML against the compatibility
// rules of a profile. It never modifies its input: the markup is tokenized
// once and every finding carries the byte offset it was found at, so the
// report order is the document order.
package validate

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/media"
	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"github.com/gaurav-prasanna/bulletinpipe/core/strip"
	"github.com/gaurav-prasanna/bulletinpipe/core/urls"
	"golang.org/x/net/html"
)

// unbalancedThreshold is how far opening and closing tag counts may drift.
const unbalancedThreshold = 3

const (
	boxPrefix  = "margin:0;padding:0;"
	cellPrefix = "border:none;"
	collapse   = "border-collapse:collapse"
	titleClass = "event-card__title"
)

var (
	layoutCSS   = regexp.MustCompile(`(?i)display\s*:\s*(?:inline-)?(?:flex|grid)\b`)
	positionCSS = regexp.MustCompile(`(?i)position\s*:\s*(?:absolute|fixed|sticky)\b`)
	floatCSS    = regexp.MustCompile(`(?i)float\s*:\s*(?:left|right)\b`)
)

// rawTextElements hold text that is never rendered as prose.
var rawTextElements = map[string]bool{"style": true, "script": true, "title": true}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Option configures a validation run.
type Option func(*options)

type options struct {
	policy urls.Policy
}

// WithURLPolicy sets the policy that decides whether an http:// URL has a
// secure form (an error) or not (a warning). Defaults to urls.DefaultPolicy.
func WithURLPolicy(p urls.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// Validate checks src against the rule table of profile. The only error is
// an invalid profile; rule violations are reported, never returned.
func Validate(src string, profile core.Profile, opts ...Option) (*report.Report, error) {
	if !profile.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidProfile, profile)
	}
	o := options{policy: urls.DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &checker{
		src:        src,
		email:      profile == core.ProfileEmail,
		policy:     o.policy,
		rep:        report.New(profile),
		lineStarts: lineStarts(src),
	}
	c.scan()
	c.rep.Sort()
	return c.rep, nil
}

type titleState struct {
	offset int
	depth  int
	text   strings.Builder
}

type checker struct {
	src        string
	email      bool
	policy     urls.Policy
	rep        *report.Report
	lineStarts []int

	sawDoctype bool
	sawHead    bool
	raw        string
	opens      int
	closes     int
	title      *titleState

	heading   *headingState
	lastLevel int
	link      *linkState
	tables    []tableState

	visible strings.Builder
	images  int
}

func (c *checker) scan() {
	z := html.NewTokenizer(strings.NewReader(c.src))
	offset := 0
	for {
		tt := z.Next()
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				c.add(report.Warning, CodeParseError, fmt.Sprintf("tokenizer stopped: %v", err), start)
			}
			c.finish(offset)
			return
		case html.DoctypeToken:
			c.sawDoctype = true
			if c.email {
				c.add(report.Error, CodeDoctypePresent, "<!doctype> present", start)
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			c.startTag(z.Token(), start, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			c.endTag(z.Token())
		case html.TextToken:
			c.text(z.Token().Data, start)
		}
	}
}

func (c *checker) startTag(tok html.Token, off int, selfClosing bool) {
	name := tok.Data
	empty := selfClosing || voidElements[name]
	if !empty {
		c.opens++
	}

	if c.title != nil && !empty {
		c.title.depth++
	} else if c.title == nil && !c.email && hasClass(tok, titleClass) {
		c.title = &titleState{offset: off}
		if empty {
			c.closeTitle()
		}
	}

	if name == "head" {
		c.sawHead = true
	}
	if rawTextElements[name] && !selfClosing {
		c.raw = name
	}

	c.checkURLs(tok, off)
	c.startA11y(tok, off)
	if !c.email {
		return
	}
	c.startSpam(tok, off)

	switch name {
	case "head":
		c.add(report.Error, CodeHeadPresent, "<head> present", off)
	case "script":
		c.add(report.Error, CodeScriptPresent, "<script> present", off)
	case "link":
		if strip.IsStylesheetLink(attr(tok, "rel")) {
			c.add(report.Error, CodeStylesheetLink, `<link rel="stylesheet"> present`, off)
		}
	case "style":
		c.add(report.Warning, CodeStyleBlock, "<style> block will be stripped by many email clients", off)
	case "iframe":
		c.add(report.Warning, CodeIframe, "<iframe> is not rendered by email clients", off)
	case "video", "audio":
		c.add(report.Warning, CodeEmbeddedMedia, fmt.Sprintf("<%s> is not supported by most email clients", name), off)
	case "img":
		if _, ok := attrOK(tok, "alt"); !ok {
			c.add(report.Warning, CodeImgAltMissing, fmt.Sprintf("<img src=%q> has no alt attribute", attr(tok, "src")), off)
		}
	}

	style := attr(tok, "style")
	switch name {
	case "a":
		if !strings.HasPrefix(compact(style), boxPrefix) {
			c.add(report.Error, CodeAnchorStylePrefix, fmt.Sprintf("<a> style %q does not start with margin:0; padding:0;", style), off)
		}
	case "img":
		if !strings.HasPrefix(compact(style), boxPrefix) {
			c.add(report.Error, CodeImageStylePrefix, fmt.Sprintf("<img> style %q does not start with margin:0; padding:0;", style), off)
		}
	case "table":
		if !strings.Contains(compact(style), collapse) {
			c.add(report.Error, CodeTableCollapse, fmt.Sprintf("<table> style %q lacks border-collapse:collapse;", style), off)
		}
	case "td":
		if !strings.HasPrefix(compact(style), cellPrefix) {
			c.add(report.Error, CodeCellStylePrefix, fmt.Sprintf("<td> style %q does not start with border:none;", style), off)
		}
	}

	avif := false
	for _, a := range tok.Attr {
		if strip.IsEventHandler(a.Key) {
			c.add(report.Error, CodeEventHandler, fmt.Sprintf("inline handler %s on <%s>", a.Key, name), off)
		}
		if !avif && media.AttrReferencesAVIF(a.Key, a.Val) {
			avif = true
			c.add(report.Error, CodeAVIFReference, fmt.Sprintf("<%s %s> references AVIF", name, a.Key), off)
		}
	}
	if style != "" {
		c.checkCSS(style, "<"+name+"> style", off)
	}
}

func (c *checker) endTag(tok html.Token) {
	if !voidElements[tok.Data] {
		c.closes++
	}
	if tok.Data == c.raw {
		c.raw = ""
	}
	c.endA11y(tok.Data)
	if c.title != nil {
		if c.title.depth == 0 {
			c.closeTitle()
		} else {
			c.title.depth--
		}
	}
}

func (c *checker) text(data string, off int) {
	if c.title != nil {
		c.title.text.WriteString(data)
	}
	if c.raw == "" {
		c.visible.WriteString(data)
		c.visible.WriteByte(' ')
		c.textA11y(data)
	}
	if !c.email || c.raw != "style" {
		return
	}
	if media.ReferencesAVIF(data) {
		c.add(report.Error, CodeAVIFReference, "<style> block references AVIF", off)
	}
	c.checkCSS(data, "<style> block", off)
}

func (c *checker) closeTitle() {
	if strings.TrimSpace(c.title.text.String()) == "" {
		c.add(report.Warning, CodeEventTitleEmpty, "empty ."+titleClass+" element", c.title.offset)
	}
	c.title = nil
}

func (c *checker) finish(end int) {
	if c.title != nil {
		c.closeTitle()
	}
	c.finishA11y()
	if c.email {
		c.finishSpam(end)
		diff := c.opens - c.closes
		if diff < 0 {
			diff = -diff
		}
		if diff > unbalancedThreshold {
			c.add(report.Warning, CodeUnbalanced,
				fmt.Sprintf("unbalanced tags: %d opening, %d closing", c.opens, c.closes), end)
		}
		return
	}
	if !c.sawDoctype {
		c.add(report.Error, CodeDoctypeMissing, "<!doctype> is missing", 0)
	}
	if !c.sawHead {
		c.add(report.Error, CodeHeadMissing, "<head> is missing", 0)
	}
}

// checkURLs reports http:// URLs in resource attributes.
func (c *checker) checkURLs(tok html.Token, off int) {
	for _, a := range tok.Attr {
		if !urls.Attributes[a.Key] {
			continue
		}
		values := []string{a.Val}
		if a.Key == "srcset" {
			values = urls.SrcsetURLs(a.Val)
		}
		for _, v := range values {
			if !urls.IsInsecure(v) {
				continue
			}
			if _, ok := c.policy.Secure(v); ok {
				c.add(report.Error, CodeMixedContent, fmt.Sprintf("<%s %s=%q> uses http://", tok.Data, a.Key, v), off)
			} else {
				c.add(report.Warning, CodeInsecureURL, fmt.Sprintf("<%s %s=%q> uses http:// and no secure form is known", tok.Data, a.Key, v), off)
			}
		}
	}
}

func (c *checker) checkCSS(css, where string, off int) {
	if !c.email {
		return
	}
	if m := layoutCSS.FindString(css); m != "" {
		c.add(report.Warning, CodeCSSLayout, fmt.Sprintf("%s uses %q; flex and grid are unsupported in most email clients", where, m), off)
	}
	if m := positionCSS.FindString(css); m != "" {
		c.add(report.Warning, CodeCSSPosition, fmt.Sprintf("%s uses %q; use table layout instead", where, m), off)
	}
	if m := floatCSS.FindString(css); m != "" {
		c.add(report.Warning, CodeCSSFloat, fmt.Sprintf("%s uses %q; use table columns instead", where, m), off)
	}
}

func (c *checker) add(sev report.Severity, code, msg string, off int) {
	c.rep.Add(report.Issue{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Location: c.location(off),
		Offset:   off,
	})
}

// location converts a byte offset into line:col, both 1-based.
func (c *checker) location(off int) string {
	line := sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > off })
	col := off - c.lineStarts[line-1] + 1
	return fmt.Sprintf("%d:%d", line, col)
}

func lineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// compact lowercases a style value and drops all whitespace.
func compact(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

func attr(tok html.Token, key string) string {
	v, _ := attrOK(tok, key)
	return v
}

func attrOK(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(tok html.Token, class string) bool {
	for _, token := range strings.Fields(attr(tok, "class")) {
		if token == class {
			return true
		}
	}
	return false
}
