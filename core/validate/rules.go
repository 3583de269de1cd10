package validate

import (
	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/report"
)

// Rule codes.
const (
	CodeDoctypeMissing  = "doctype-missing"
	CodeHeadMissing     = "head-missing"
	CodeMixedContent    = "mixed-content"
	CodeInsecureURL     = "insecure-url"
	CodeEventTitleEmpty = "event-title-empty"

	CodeDoctypePresent    = "doctype-present"
	CodeHeadPresent       = "head-present"
	CodeScriptPresent     = "script-present"
	CodeStylesheetLink    = "stylesheet-link"
	CodeEventHandler      = "event-handler"
	CodeAVIFReference     = "avif-reference"
	CodeAnchorStylePrefix = "anchor-style-prefix"
	CodeImageStylePrefix  = "image-style-prefix"
	CodeTableCollapse     = "table-border-collapse"
	CodeCellStylePrefix   = "cell-style-prefix"

	CodeStyleBlock    = "style-block"
	CodeCSSLayout     = "css-layout"
	CodeCSSPosition   = "css-position"
	CodeCSSFloat      = "css-float"
	CodeIframe        = "iframe"
	CodeEmbeddedMedia = "embedded-media"
	CodeImgAltMissing = "img-alt-missing"
	CodeUnbalanced    = "unbalanced-tags"
	CodeParseError    = "parse-error"

	CodeHeadingStart    = "heading-start"
	CodeHeadingSkip     = "heading-skip"
	CodeHeadingEmpty    = "heading-empty"
	CodeLinkText        = "link-text"
	CodeLinkDestination = "link-destination"
	CodeTableHeaders    = "table-headers"

	CodeSpamCaps        = "spam-caps"
	CodeSpamWords       = "spam-words"
	CodeSpamPunctuation = "spam-punctuation"
	CodeSpamImages      = "spam-image-ratio"
	CodeURLShortener    = "url-shortener"
)

// Rule is one row of a profile's rule table.
type Rule struct {
	Code        string
	Severity    report.Severity
	Description string
}

var accessibilityRules = []Rule{
	{CodeHeadingStart, report.Warning, "the first heading is an <h1>"},
	{CodeHeadingSkip, report.Warning, "heading levels do not skip"},
	{CodeHeadingEmpty, report.Warning, "no empty headings"},
	{CodeLinkText, report.Warning, `link text is descriptive (not "click here")`},
	{CodeLinkDestination, report.Warning, "every link has a destination"},
	{CodeTableHeaders, report.Warning, `data tables have <th> cells; layout tables are role="presentation"`},
}

var spamRules = []Rule{
	{CodeSpamCaps, report.Warning, "at most 30% of words are ALL CAPS"},
	{CodeSpamWords, report.Warning, "at most 5 spam trigger phrases"},
	{CodeSpamPunctuation, report.Warning, "at most 2 runs of !! or ??"},
	{CodeSpamImages, report.Warning, "at most 2 images per 100 characters of text"},
	{CodeURLShortener, report.Warning, "no URL shortener links"},
}

var webRules = []Rule{
	{CodeDoctypeMissing, report.Error, "document declares a doctype"},
	{CodeHeadMissing, report.Error, "document has a <head>"},
	{CodeMixedContent, report.Error, "no http:// URLs with a secure form in href/src"},
	{CodeEventTitleEmpty, report.Warning, "no empty .event-card__title elements"},
	{CodeInsecureURL, report.Warning, "no http:// URLs without a secure form"},
	{CodeParseError, report.Warning, "markup tokenizes cleanly"},
}

var emailRules = []Rule{
	{CodeDoctypePresent, report.Error, "no <!doctype>"},
	{CodeHeadPresent, report.Error, "no <head>"},
	{CodeScriptPresent, report.Error, "no <script>"},
	{CodeStylesheetLink, report.Error, `no <link rel="stylesheet">`},
	{CodeEventHandler, report.Error, "no inline on* handlers"},
	{CodeMixedContent, report.Error, "no http:// URLs with a secure form in href/src"},
	{CodeAVIFReference, report.Error, "no .avif references"},
	{CodeAnchorStylePrefix, report.Error, "every <a> style starts with margin:0; padding:0;"},
	{CodeImageStylePrefix, report.Error, "every <img> style starts with margin:0; padding:0;"},
	{CodeTableCollapse, report.Error, "every <table> style contains border-collapse:collapse;"},
	{CodeCellStylePrefix, report.Error, "every <td> style starts with border:none;"},
	{CodeInsecureURL, report.Warning, "no http:// URLs without a secure form"},
	{CodeStyleBlock, report.Warning, "no <style> blocks"},
	{CodeCSSLayout, report.Warning, "no flex or grid layout"},
	{CodeCSSPosition, report.Warning, "no absolute, fixed or sticky positioning"},
	{CodeCSSFloat, report.Warning, "no floats"},
	{CodeIframe, report.Warning, "no <iframe>"},
	{CodeEmbeddedMedia, report.Warning, "no <video> or <audio>"},
	{CodeImgAltMissing, report.Warning, "every <img> has an alt attribute"},
	{CodeUnbalanced, report.Warning, "opening and closing tags roughly balance"},
	{CodeParseError, report.Warning, "markup tokenizes cleanly"},
}

// Rules returns the rule table for a profile, errors first.
func Rules(p core.Profile) []Rule {
	var out []Rule
	switch p {
	case core.ProfileWeb:
		out = append(out, webRules...)
		out = append(out, accessibilityRules...)
	case core.ProfileEmail:
		out = append(out, emailRules...)
		out = append(out, accessibilityRules...)
		out = append(out, spamRules...)
	}
	return out
}
