// Package inline moves stylesheet rules into element style attributes.
// Most email clients drop <style> blocks, so every rule that can be
// expressed inline is applied to the elements it matches.
package inline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	cssast "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/gaurav-prasanna/bulletinpipe/core/report"
	"github.com/gaurav-prasanna/bulletinpipe/core/style"
	"golang.org/x/net/html"
)

// Issue codes.
const (
	CodeUnparsable = "css-unparsable"
	CodeDropped    = "css-rule-dropped"
)

// dynamicPseudo matches states that only exist in a live browser.
var dynamicPseudo = regexp.MustCompile(`(?i):(?:hover|focus|focus-within|focus-visible|active|visited|target|checked)\b`)

// skipElements never receive inline styles.
var skipElements = map[string]bool{
	"html": true, "head": true, "title": true, "meta": true,
	"style": true, "script": true, "link": true, "base": true,
}

type rule struct {
	sel   cascadia.Sel
	spec  cascadia.Specificity
	decls style.Declarations
	order int
}

// Result reports the inlining outcome.
type Result struct {
	Rules    int // selector rules applied to the tree
	Elements int // elements whose style attribute changed
	Removed  int // <style> blocks removed after inlining
	Kept     int // <style> blocks kept for rules that cannot be inlined
	Issues   []report.Issue
}

// sheet is one stylesheet source: a <style> element or detached text.
type sheet struct {
	node     *html.Node
	label    string
	detached bool
	keep     bool
}

// Styles inlines every <style> block under root plus the detached
// stylesheets in extra (typically the styles of a removed head).
// Existing inline declarations always win; only properties an element does
// not declare yet are appended. Blocks left with at-rules or selectors that
// cannot be inlined are kept verbatim. Detached rules that cannot be
// inlined are reported as dropped.
func Styles(root *html.Node, extra ...string) Result {
	var res Result
	doc := goquery.NewDocumentFromNode(root)

	var rules []rule
	order := 0
	collect := func(sh *sheet, text string) {
		parsed, err := parser.Parse(text)
		if err != nil {
			sh.keep = true
			res.warn(CodeUnparsable, fmt.Sprintf("%s: %v; left un-inlined", sh.label, err))
			return
		}
		rs := res.rules(sh, parsed.Rules, &order)
		rules = append(rules, rs...)
	}

	for i, text := range extra {
		collect(&sheet{label: fmt.Sprintf("head stylesheet %d", i+1), detached: true}, text)
	}

	var blocks []*sheet
	doc.Find("style").Each(func(i int, s *goquery.Selection) {
		sh := &sheet{node: s.Get(0), label: fmt.Sprintf("<style> block %d", i+1)}
		blocks = append(blocks, sh)
		collect(sh, s.Text())
	})
	res.Rules = len(rules)

	if len(rules) > 0 {
		doc.Find("*").Each(func(_ int, s *goquery.Selection) {
			if apply(s.Get(0), rules) {
				res.Elements++
			}
		})
	}

	for _, sh := range blocks {
		if sh.keep {
			res.Kept++
			continue
		}
		if sh.node.Parent != nil {
			sh.node.Parent.RemoveChild(sh.node)
		}
		res.Removed++
	}
	return res
}

// rules flattens parsed CSS into inlinable selector rules. Anything that
// cannot be inlined marks the sheet as kept.
func (res *Result) rules(sh *sheet, list []*cssast.Rule, order *int) []rule {
	var out []rule
	for _, r := range list {
		if r == nil {
			continue
		}
		if r.Kind == cssast.AtRule {
			res.notInlined(sh, r.Name+" "+strings.TrimSpace(r.Prelude))
			continue
		}
		decls := convert(r.Declarations)
		if len(decls) == 0 {
			continue
		}
		for _, text := range r.Selectors {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if dynamicPseudo.MatchString(text) {
				res.notInlined(sh, text)
				continue
			}
			sel, err := cascadia.ParseWithPseudoElement(text)
			if err != nil {
				sh.keep = true
				res.warn(CodeUnparsable, fmt.Sprintf("%s: selector %q: %v; left un-inlined", sh.label, text, err))
				continue
			}
			if sel.PseudoElement() != "" {
				res.notInlined(sh, text)
				continue
			}
			out = append(out, rule{sel: sel, spec: sel.Specificity(), decls: decls, order: *order})
			*order++
		}
	}
	return out
}

// notInlined keeps an in-document sheet or reports a detached rule as lost.
func (res *Result) notInlined(sh *sheet, what string) {
	if sh.detached {
		res.warn(CodeDropped, fmt.Sprintf("%s: %s cannot be inlined and was dropped with the head", sh.label, what))
		return
	}
	sh.keep = true
}

type candidate struct {
	decl  style.Declaration
	spec  cascadia.Specificity
	order int
}

// wins reports whether c overrides cur in the cascade.
func (c candidate) wins(cur candidate) bool {
	if c.decl.Important != cur.decl.Important {
		return c.decl.Important
	}
	if c.spec != cur.spec {
		return cur.spec.Less(c.spec)
	}
	return c.order > cur.order
}

// apply merges the winning declarations into n's style attribute and
// reports whether it changed.
func apply(n *html.Node, rules []rule) bool {
	if skipElements[n.Data] {
		return false
	}
	winners := map[string]candidate{}
	var props []string
	for _, r := range rules {
		if !r.sel.Match(n) {
			continue
		}
		for _, d := range r.decls {
			c := candidate{decl: d, spec: r.spec, order: r.order}
			cur, seen := winners[d.Property]
			if !seen {
				props = append(props, d.Property)
				winners[d.Property] = c
				continue
			}
			if c.wins(cur) {
				winners[d.Property] = c
			}
		}
	}
	if len(props) == 0 {
		return false
	}

	idx := -1
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "style" {
			idx = i
			break
		}
	}
	var existing style.Declarations
	if idx >= 0 {
		existing = style.Parse(n.Attr[idx].Val)
	}

	added := false
	for _, p := range props {
		if existing.Has(p) {
			continue
		}
		existing = append(existing, winners[p].decl)
		added = true
	}
	if !added {
		return false
	}
	if idx >= 0 {
		n.Attr[idx].Val = existing.String()
	} else {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: existing.String()})
	}
	return true
}

func convert(list []*cssast.Declaration) style.Declarations {
	var out style.Declarations
	for _, d := range list {
		if d == nil {
			continue
		}
		if decl, ok := style.NewDeclaration(d.Property, d.Value, d.Important); ok {
			out = append(out, decl)
		}
	}
	return out
}

func (res *Result) warn(code, msg string) {
	res.Issues = append(res.Issues, report.Warn(code, msg))
}
